// DMX512/RDM board wiring for the Raspberry Pi 1 / Pi Zero
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm

// Package dmxhat provides hardware initialization, automatically on
// import, for a BCM2835-based Raspberry Pi carrying a DMX512/RDM
// transceiver HAT: a PL011 UART wired to the transceiver's serial lines
// and a single GPIO driving its direction-select pin.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=arm` as
// supported by the TamaGo framework for bare metal Go on ARM SoCs.
package dmxhat

import (
	_ "unsafe"

	"github.com/kfriesth/rpidmx512/arm"
	"github.com/kfriesth/rpidmx512/dmx"
	"github.com/kfriesth/rpidmx512/soc/bcm2835"
)

const (
	peripheralBase = 0x20000000

	// uartClockHz is the PL011 reference clock rate on this SoC once the
	// VideoCore firmware has fixed it at boot (see pl011_init in the
	// original firmware this is ported from).
	uartClockHz = 48000000

	// directionGPIO is the GPIO line toggling the transceiver between
	// input and output.
	directionGPIO = 17
)

// Driver is the DMX512/RDM controller wired to this board's hardware.
// Valid for use once Init (run automatically via runtime.hwinit) has
// completed.
var Driver *dmx.Controller

var timer *bcm2835.Timer
var line *bcm2835.DMXLine

//go:linkname Init runtime.hwinit
func Init() {
	bcm2835.Init(peripheralBase)

	timer = bcm2835.NewTimer()
	line = bcm2835.NewDMXLine(uartClockHz)
	fiq := bcm2835.NewFIQ()

	dirPin, err := bcm2835.NewDirectionPin(directionGPIO)
	if err != nil {
		panic(err)
	}

	Driver = dmx.NewController(timer, line, fiq, dirPin)
	Driver.Init()

	arm.ExceptionHandler(dispatch)
}

// dispatch routes the two exception vectors this driver cares about: FIQ
// carries UART RX events, IRQ carries the timer-1/timer-3 compare matches
// that drive the transmit, receive watchdog and throughput meter state
// machines.
func dispatch(vector int) {
	switch vector {
	case arm.FIQ:
		now := timer.NowMicros()
		data, isBreak := line.ReadByte()
		Driver.HandleUARTEvent(data, isBreak, now)

	case arm.IRQ:
		now := timer.NowMicros()

		if timer.MatchedAndClear(bcm2835.ChannelReceiveOrTransmit) {
			Driver.HandleTimerDeadline(dmx.ChannelTimer1, now)
		}

		if timer.MatchedAndClear(bcm2835.ChannelThroughput) {
			Driver.HandleTimerDeadline(dmx.ChannelTimer3, now)
		}
	}
}
