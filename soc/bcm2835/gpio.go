// BCM2835 GPIO support
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
	"fmt"

	"github.com/kfriesth/rpidmx512/internal/reg"
)

const (
	gpfsel0 = 0x200000
	gpset0  = 0x20001c
	gpclr0  = 0x200028
)

// GPIOFunction represents the mode of a GPIO line.
type GPIOFunction uint32

const (
	GPIOFunctionInput  GPIOFunction = 0
	GPIOFunctionOutput GPIOFunction = 1
)

// GPIO is a single GPIO line.
type GPIO struct {
	num int
}

// NewGPIO gets access to a single GPIO line.
func NewGPIO(num int) (*GPIO, error) {
	if num > 54 || num < 0 {
		return nil, fmt.Errorf("invalid GPIO number %d", num)
	}

	return &GPIO{num: num}, nil
}

// SelectFunction selects the function of a GPIO line.
func (gpio *GPIO) SelectFunction(fn GPIOFunction) {
	addr := PeripheralAddress(gpfsel0 + uint32(gpio.num/10)*4)
	pos := (gpio.num % 10) * 3

	reg.SetN(addr, pos, 0b111, uint32(fn))
}

// out and in are thin aliases kept for readability at call sites.
func (gpio *GPIO) Out() { gpio.SelectFunction(GPIOFunctionOutput) }
func (gpio *GPIO) In()  { gpio.SelectFunction(GPIOFunctionInput) }

// High drives the GPIO line high.
func (gpio *GPIO) High() {
	reg.Set(PeripheralAddress(gpset0+uint32(gpio.num/32)*4), gpio.num%32)
}

// Low drives the GPIO line low.
func (gpio *GPIO) Low() {
	reg.Set(PeripheralAddress(gpclr0+uint32(gpio.num/32)*4), gpio.num%32)
}

// DirectionPin wraps a GPIO line used as the DMX transceiver direction
// control: driven low selects receive (input), driven high selects
// transmit (output), matching GPIO_DMX_DATA_DIRECTION in the original
// firmware this driver is ported from.
type DirectionPin struct {
	gpio *GPIO
}

// NewDirectionPin configures the given GPIO line as the transceiver
// direction control output, defaulting to input (receive).
func NewDirectionPin(num int) (*DirectionPin, error) {
	gpio, err := NewGPIO(num)
	if err != nil {
		return nil, err
	}

	gpio.Out()
	gpio.Low()

	return &DirectionPin{gpio: gpio}, nil
}

// SetOutput drives the transceiver direction pin: true selects transmit,
// false selects receive.
func (d *DirectionPin) SetOutput(output bool) {
	if output {
		d.gpio.High()
	} else {
		d.gpio.Low()
	}
}
