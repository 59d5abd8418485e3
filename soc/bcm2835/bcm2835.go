// BCM2835 SoC support
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm

// Package bcm2835 provides the hardware glue — system timer, GPIO and PL011
// UART — for driving DMX512/RDM over a Broadcom BCM2835 class SoC (as found
// on the Raspberry Pi 1 and Pi Zero). It implements the four interfaces
// dmx.Clock, dmx.Line, dmx.FIQController and dmx.DirectionPin declared by
// the hardware-agnostic core in package dmx.
package bcm2835

import (
	_ "unsafe"

	"github.com/kfriesth/rpidmx512/arm"
)

// SysTimerFreq is the frequency (Hz) of the BCM2835 free-running system
// timer counter (fixed at 1MHz, i.e. microsecond resolution).
const SysTimerFreq = 1000000

// PeripheralBase is the (remapped) peripheral base address. It varies by
// board model: 0x20000000 on Pi Zero/Pi 1, 0x3f000000 on Pi 2+.
//
//go:linkname PeripheralBase runtime.PeripheralBase
var PeripheralBase uint32

// defined in systimer.s
func read_systimer() int64

// Init performs the lower level SoC initialization. Triggered early in
// runtime setup (no heap allocation is permitted at this point).
func Init(peripheralBase uint32) {
	PeripheralBase = peripheralBase

	arm.CacheEnable()
	arm.InitTimer(read_systimer, SysTimerFreq)
}

// PeripheralAddress computes the absolute MMIO address of a peripheral
// register given its offset from PeripheralBase.
func PeripheralAddress(offset uint32) uint32 {
	return PeripheralBase + offset
}
