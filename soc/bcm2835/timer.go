// BCM2835 system timer support
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm

package bcm2835

import (
	"github.com/kfriesth/rpidmx512/internal/reg"
)

// ARM System Timer registers (BCM2835-ARM-Peripherals.pdf §12).
const (
	st_cs  = 0x003000 // control/status, one match bit per channel
	st_clo = 0x003004 // free-running counter, low 32 bits
	st_chi = 0x003008 // free-running counter, high 32 bits
	st_c0  = 0x00300c // compare 0 (used by the GPU, do not touch)
	st_c1  = 0x003010 // compare 1 — receive watchdog / transmit tick
	st_c2  = 0x003014 // compare 2 (used by the GPU, do not touch)
	st_c3  = 0x003018 // compare 3 — throughput meter tick
)

// Channel identifies one of the two ARM-owned system timer compare
// channels available for driver use (0 and 2 are reserved by the GPU
// firmware on this SoC).
type Channel int

const (
	ChannelReceiveOrTransmit Channel = 1
	ChannelThroughput        Channel = 3
)

// Timer drives the dmx.Clock interface from the BCM2835 free-running
// microsecond counter and its compare-match channels 1 and 3.
type Timer struct{}

// NewTimer returns a Timer bound to the system timer of the current SoC.
func NewTimer() *Timer {
	return &Timer{}
}

// NowMicros returns the current free-running microsecond counter value.
func (t *Timer) NowMicros() uint32 {
	return reg.Read(PeripheralAddress(st_clo))
}

// ArmCompare arms the given compare channel to match at deadlineMicros,
// triggering an IRQ when the free-running counter reaches it.
func (t *Timer) ArmCompare(channel int, deadlineMicros uint32) {
	t.armCompare(Channel(channel), deadlineMicros)
}

func (t *Timer) armCompare(channel Channel, deadlineMicros uint32) {
	switch channel {
	case ChannelReceiveOrTransmit:
		reg.Write(PeripheralAddress(st_c1), deadlineMicros)
	case ChannelThroughput:
		reg.Write(PeripheralAddress(st_c3), deadlineMicros)
	}
}

// MatchedAndClear reports whether the given channel's compare match flag
// is set in the control/status register, clearing it (write-1-to-clear)
// if so. The IRQ trampoline uses this to decide which timer role fired.
func (t *Timer) MatchedAndClear(channel Channel) bool {
	matched := reg.Get(PeripheralAddress(st_cs), int(channel), 1) == 1

	if matched {
		reg.Write(PeripheralAddress(st_cs), 1<<uint(channel))
	}

	return matched
}
