// ARM processor support
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm

package arm

// defined in cache.s
func cache_enable()
func cache_disable()
func cache_flush_data()
func cache_flush_instruction()

// CacheEnable activates the ARM instruction and data caches.
func CacheEnable() {
	cache_enable()
}

// CacheDisable disables the ARM instruction and data caches.
func CacheDisable() {
	cache_disable()
}

// CacheFlushData flushes the ARM data cache. Called around every register
// access since the peripheral address space is otherwise left cacheable on
// this SoC (see internal/reg).
func CacheFlushData() {
	cache_flush_data()
}

// CacheFlushInstruction flushes the ARM instruction cache.
func CacheFlushInstruction() {
	cache_flush_instruction()
}
