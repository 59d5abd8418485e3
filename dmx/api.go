// DMX512/RDM controller public API
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dmx

// DefaultRingCapacity is the ring size used by NewController when the
// caller does not need more headroom than the default double-buffering;
// it must be a power of two.
const DefaultRingCapacity = 4

// Controller is the DMX512/RDM line driver: it owns the receive and
// transmit state machines, the packet rings, the direction control and
// the statistics, and is the type the public API (this file) is defined
// on. Construct one with NewController and call Init before use.
type Controller struct {
	cfg Config

	clock  Clock
	line   Line
	fiq    FIQController
	dirPin DirectionPin

	dmxRing *ring[DMXFrame]
	rdmRing *ring[RDMFrame]

	rx receiver
	tx transmitter

	direction Direction

	timer1Role timerRole
	timer3Role timerRole

	total              TotalStatistics
	dmxPacketsSnapshot uint32
	updatesPerSecond   uint32

	previousSlotsInPacket uint16
	previousPayload       [UniverseSize]byte
}

// NewController constructs a driver bound to the given hardware
// abstractions, using the default ring capacities. All buffers are
// allocated here; nothing allocates afterwards on the FIQ/IRQ paths.
func NewController(clock Clock, line Line, fiq FIQController, dirPin DirectionPin) *Controller {
	return NewControllerWithCapacity(clock, line, fiq, dirPin, DefaultRingCapacity, DefaultRingCapacity)
}

// NewControllerWithCapacity is NewController with explicit ring
// capacities (each rounded up to a power of two, minimum 2).
func NewControllerWithCapacity(clock Clock, line Line, fiq FIQController, dirPin DirectionPin, dmxRingCapacity, rdmRingCapacity int) *Controller {
	return &Controller{
		cfg:     DefaultConfig(),
		clock:   clock,
		line:    line,
		fiq:     fiq,
		dirPin:  dirPin,
		dmxRing: newRing[DMXFrame](dmxRingCapacity),
		rdmRing: newRing[RDMFrame](rdmRingCapacity),
	}
}

// Init brings the driver to its post-reset state: buffers zeroed,
// direction input, data disabled. Hardware setup (UART, GPIO, timer) is
// expected to already have been performed by the board's HAL
// implementations before this is called.
func (c *Controller) Init() {
	c.rx = receiver{}
	c.tx = transmitter{}
	c.tx.length = c.cfg.SendDataLength
	c.total = TotalStatistics{}
	c.dmxPacketsSnapshot = 0
	c.updatesPerSecond = 0
	c.previousSlotsInPacket = 0

	c.dmxRing = newRing[DMXFrame](len(c.dmxRing.slots))
	c.rdmRing = newRing[RDMFrame](len(c.rdmRing.slots))

	c.dirPin.SetOutput(false)
	c.direction = Input
}

// SetOutputBreakTime sets the transmit BREAK duration, clamped to the
// DMX512 minimum of 92us, and recomputes the effective output period.
func (c *Controller) SetOutputBreakTime(us uint32) {
	if us < MinBreakTimeUs {
		us = MinBreakTimeUs
	}

	c.cfg.BreakTimeUs = us
}

// GetOutputBreakTime returns the configured transmit BREAK duration.
func (c *Controller) GetOutputBreakTime() uint32 {
	return c.cfg.BreakTimeUs
}

// SetOutputMABTime sets the transmit Mark-After-Break duration, clamped
// to the DMX512 minimum of 12us.
func (c *Controller) SetOutputMABTime(us uint32) {
	if us < MinMABTimeUs {
		us = MinMABTimeUs
	}

	c.cfg.MABTimeUs = us
}

// GetOutputMABTime returns the configured transmit MAB duration.
func (c *Controller) GetOutputMABTime() uint32 {
	return c.cfg.MABTimeUs
}

// SetOutputPeriod sets the requested transmit period; the value actually
// used is available via GetOutputPeriod once clamped against the current
// break/mab/send-length configuration.
func (c *Controller) SetOutputPeriod(us uint32) {
	c.cfg.OutputPeriodUs = us
}

// GetOutputPeriod returns the effective (clamped) transmit period.
func (c *Controller) GetOutputPeriod() uint32 {
	return c.cfg.EffectiveOutputPeriod()
}

// SetSendData copies the given payload (including its start code at
// index 0) into the transmit buffer and updates the send length, which
// in turn affects the effective output period.
func (c *Controller) SetSendData(data []byte) {
	c.setSendData(data)
}

// GetSendDataLength returns the number of bytes transmitted per packet.
func (c *Controller) GetSendDataLength() uint16 {
	return c.cfg.SendDataLength
}

// HandleUARTEvent is the single entry point the FIQ handler calls for
// every byte received on the line: isBreak is the hardware's BREAK
// framing flag, now the free-running microsecond counter at the moment
// of reception. It must never allocate or block.
func (c *Controller) HandleUARTEvent(data byte, isBreak bool, now uint32) {
	c.onUARTEvent(data, isBreak, now)
}

// DMXAvailable pops and returns the oldest unconsumed DMX frame, or false
// if the ring is empty.
func (c *Controller) DMXAvailable() (DMXFrame, bool) {
	return c.dmxRing.pop()
}

// RDMAvailable pops and returns the oldest unconsumed RDM frame, or false
// if the ring is empty.
func (c *Controller) RDMAvailable() (RDMFrame, bool) {
	return c.rdmRing.pop()
}

// IsDataChanged implements the foreground "data changed" idiom: it pops
// the next available DMX frame (returning false if none is available)
// and reports whether its slot count or payload differs from the last
// frame observed through this method. When the slot count changes the
// snapshot is unconditionally refreshed; otherwise a full payload compare
// is performed and the snapshot updated in place.
func (c *Controller) IsDataChanged() (DMXFrame, bool) {
	frame, ok := c.DMXAvailable()
	if !ok {
		return DMXFrame{}, false
	}

	if frame.SlotsInPacket != c.previousSlotsInPacket {
		c.previousSlotsInPacket = frame.SlotsInPacket
		copy(c.previousPayload[:], frame.Data[1:])
		return frame, true
	}

	changed := false

	for i := 0; i < UniverseSize; i++ {
		if c.previousPayload[i] != frame.Data[i+1] {
			c.previousPayload[i] = frame.Data[i+1]
			changed = true
		}
	}

	return frame, changed
}
