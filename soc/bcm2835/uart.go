// BCM2835 PL011 UART support for DMX512/RDM framing
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
	"github.com/kfriesth/rpidmx512/arm"
	"github.com/kfriesth/rpidmx512/bits"
	"github.com/kfriesth/rpidmx512/internal/reg"
)

// PL011 UART registers (ARM PrimeCell PL011 Technical Reference Manual).
const (
	pl011_dr   = 0x201000
	pl011_fr   = 0x201018
	pl011_ibrd = 0x201024
	pl011_fbrd = 0x201028
	pl011_lcrh = 0x20102c
	pl011_cr   = 0x201030
	pl011_imsc = 0x201038
	pl011_icr  = 0x201044

	dr_be = 10 // break error, set for the byte that signalled a BREAK condition
	dr_data_mask = 0xff

	fr_busy  = 3
	fr_txff  = 5 // TX FIFO full

	lcrh_brk  = 0 // send BREAK
	lcrh_fen  = 4 // enable FIFOs
	lcrh_stp2 = 3 // 2 stop bits
	lcrh_wlen = 5 // word length, 2 bits, 0b11 = 8 bits

	cr_uarten = 0
	cr_txe    = 8
	cr_rxe    = 9

	imsc_rxim = 4 // RX interrupt mask

	// BCM2835 interrupt controller, used to route the UART RX interrupt
	// to FIQ instead of IRQ so reception gets priority over the transmit
	// and watchdog timer callbacks (§5 of the driver design: FIQ > IRQ).
	irq_fiq_control = 0x00b20c
	fiq_enable_bit  = 7
	uart_fiq_source = 57
)

// DMXLine drives the dmx.Line interface over a PL011 UART configured for
// 250kbaud 8N2, the DMX512/RDM wire format.
type DMXLine struct{}

// NewDMXLine configures and returns the PL011 UART for DMX512/RDM use.
// clockHz is the UART reference clock rate.
func NewDMXLine(clockHz uint32) *DMXLine {
	l := &DMXLine{}
	l.setup(clockHz)
	return l
}

func (l *DMXLine) setup(clockHz uint32) {
	reg.Write(PeripheralAddress(pl011_cr), 0)

	// 250000 baud, 16x oversampling divisor split into integer/fractional
	// parts as required by the PL011 baud rate generator.
	div := (clockHz * 4) / 250000
	reg.Write(PeripheralAddress(pl011_ibrd), div>>6)
	reg.Write(PeripheralAddress(pl011_fbrd), div&0x3f)

	var lcrh uint32
	bits.SetN(&lcrh, lcrh_wlen, 0b11, 0b11)
	bits.Set(&lcrh, lcrh_stp2)
	// FIFOs disabled: character mode is required to see the break flag
	// (dr_be) on the very byte it applies to, which the frame-start (BREAK)
	// detection in the receive state machine depends on.
	reg.Write(PeripheralAddress(pl011_lcrh), lcrh)

	reg.Write(PeripheralAddress(pl011_imsc), 1<<imsc_rxim)
	reg.Set(PeripheralAddress(irq_fiq_control), fiq_enable_bit)
	reg.SetN(PeripheralAddress(irq_fiq_control), 0, 0x7f, uart_fiq_source)

	var cr uint32
	bits.Set(&cr, cr_uarten)
	bits.Set(&cr, cr_txe)
	bits.Set(&cr, cr_rxe)
	reg.Write(PeripheralAddress(pl011_cr), cr)
}

// BreakOn asserts a BREAK condition on the line, used at the start of
// every transmitted DMX512/RDM frame.
func (l *DMXLine) BreakOn() {
	reg.Set(PeripheralAddress(pl011_lcrh), lcrh_brk)
}

// BreakOff deasserts BREAK, returning the line to MARK (idle high), the
// start of the Mark-After-Break period.
func (l *DMXLine) BreakOff() {
	reg.Clear(PeripheralAddress(pl011_lcrh), lcrh_brk)
}

// WriteByte pushes a single byte into the TX FIFO, blocking the caller
// (interrupt context, during the bounded transmit burst) while the FIFO
// is full.
func (l *DMXLine) WriteByte(b byte) {
	for l.TxFIFOFull() {
	}

	reg.Write(PeripheralAddress(pl011_dr), uint32(b))
}

// TxFIFOFull reports whether the TX FIFO has no room for another byte.
func (l *DMXLine) TxFIFOFull() bool {
	return reg.Get(PeripheralAddress(pl011_fr), fr_txff, 1) == 1
}

// TxBusy reports whether the UART is still shifting out the last byte.
func (l *DMXLine) TxBusy() bool {
	return reg.Get(PeripheralAddress(pl011_fr), fr_busy, 1) == 1
}

// ReadByte returns the next received byte together with whether it
// carried the BREAK flag (dr_be) — the FIQ handler's sole RX primitive.
func (l *DMXLine) ReadByte() (b byte, isBreak bool) {
	dr := reg.Read(PeripheralAddress(pl011_dr))
	return byte(dr & dr_data_mask), bits.Get(&dr, dr_be, 1) == 1
}

// FIQ gives access to the FIQ enable/disable control associated with this
// line's RX interrupt source, satisfying dmx.FIQController.
type FIQ struct{}

// NewFIQ returns a FIQController bound to the ARM core's FIQ line.
func NewFIQ() *FIQ {
	return &FIQ{}
}

// Enable unmasks FIQ delivery, starting reception.
func (f *FIQ) Enable() {
	arm.EnableFIQ()
}

// Disable masks FIQ delivery, stopping reception deterministically: no
// more receive-state mutation can occur once this returns.
func (f *FIQ) Disable() {
	arm.DisableFIQ()
}
