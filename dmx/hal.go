// DMX512/RDM line driver core
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dmx implements the DMX512/RDM line driver: the receive and
// transmit state machines, the packet rings, the direction controller,
// the statistics/throughput meter and the public API surface described
// by the driver's design. It is hardware-agnostic — all register-level
// access is abstracted behind the four interfaces in this file, whose
// concrete implementations live in package bcm2835.
package dmx

// Clock is the microsecond timebase and the two hardware compare
// channels the state machines arm deadlines against. Channel numbers are
// caller-defined; this package only ever uses ChannelTimer1 (receive
// watchdog / transmit tick) and ChannelTimer3 (1Hz throughput tick).
type Clock interface {
	// NowMicros returns the current free-running microsecond counter.
	NowMicros() uint32
	// ArmCompare arms the given channel to fire at deadlineMicros.
	ArmCompare(channel int, deadlineMicros uint32)
}

// Compare channel identifiers, named after the hardware timer channels
// used by the original firmware this driver is ported from.
const (
	ChannelTimer1 = 1
	ChannelTimer3 = 3
)

// Line is the UART glue: BREAK control, the transmit FIFO and the
// received byte plus its framing flag.
type Line interface {
	// BreakOn asserts a BREAK condition on the line.
	BreakOn()
	// BreakOff deasserts BREAK, returning the line to MARK.
	BreakOff()
	// WriteByte pushes one byte into the TX FIFO, blocking while full.
	WriteByte(b byte)
	// TxFIFOFull reports whether the TX FIFO has no room for another byte.
	TxFIFOFull() bool
	// TxBusy reports whether the UART is still shifting out a byte.
	TxBusy() bool
}

// FIQController enables or disables delivery of the UART RX fast
// interrupt that drives the receive state machine.
type FIQController interface {
	Enable()
	Disable()
}

// DirectionPin drives the transceiver direction control line: true
// selects transmit (output), false selects receive (input).
type DirectionPin interface {
	SetOutput(output bool)
}

// Direction names the two directions the transceiver can be switched to.
type Direction int

const (
	Input Direction = iota
	Output
)

// timerRole tags what a single shared compare-channel deadline is for,
// dispatched from one trampoline rather than via a function-pointer
// callback — see DESIGN.md for the rationale (no heap allocation, no
// closures, on the interrupt path).
type timerRole int

const (
	roleNone timerRole = iota
	roleRxWatchdog
	roleTxTick
	roleThroughputTick
)
