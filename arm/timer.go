// ARM timer support
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm

package arm

import (
	_ "unsafe"
)

const refFreq int64 = 1000000000

// TimerFn returns the current value of the free-running hardware counter,
// in counter ticks, set by InitTimer during SoC initialization.
var TimerFn func() int64

// TimerMultiplier converts a counter tick into nanoseconds, derived from
// the counter frequency passed to InitTimer.
var TimerMultiplier int64

// InitTimer configures the Go runtime monotonic clock source to the given
// free-running counter function and frequency (Hz).
func InitTimer(fn func() int64, freq int64) {
	TimerFn = fn
	TimerMultiplier = refFreq / freq
}

//go:linkname nanotime1 runtime.nanotime1
func nanotime1() int64 {
	return TimerFn() * TimerMultiplier
}
