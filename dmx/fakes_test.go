// Hardware abstraction fakes for tests
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dmx

// fakeClock is a manually-advanced Clock for tests: NowMicros returns
// whatever was last set, ArmCompare just records the latest deadline per
// channel so tests can assert on it without a real timer.
type fakeClock struct {
	now       uint32
	armed     map[int]uint32
	armCalled map[int]int
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		armed:     make(map[int]uint32),
		armCalled: make(map[int]int),
	}
}

func (f *fakeClock) NowMicros() uint32 { return f.now }

func (f *fakeClock) ArmCompare(channel int, deadlineMicros uint32) {
	f.armed[channel] = deadlineMicros
	f.armCalled[channel]++
}

func (f *fakeClock) advance(us uint32) { f.now += us }

// fakeLine records everything written to the TX FIFO and never reports
// busy, so transmit tests can run sendBurst synchronously to completion.
type fakeLine struct {
	breakOn  bool
	breakLog []bool
	written  []byte
}

func (f *fakeLine) BreakOn() {
	f.breakOn = true
	f.breakLog = append(f.breakLog, true)
}

func (f *fakeLine) BreakOff() {
	f.breakOn = false
	f.breakLog = append(f.breakLog, false)
}

func (f *fakeLine) WriteByte(b byte)  { f.written = append(f.written, b) }
func (f *fakeLine) TxFIFOFull() bool  { return false }
func (f *fakeLine) TxBusy() bool      { return false }

type fakeFIQ struct {
	enabled bool
}

func (f *fakeFIQ) Enable()  { f.enabled = true }
func (f *fakeFIQ) Disable() { f.enabled = false }

type fakeDirectionPin struct {
	output bool
}

func (f *fakeDirectionPin) SetOutput(output bool) { f.output = output }

// newTestController wires a Controller to the fakes above and runs Init,
// returning the fakes alongside it so tests can drive and inspect them.
func newTestController() (*Controller, *fakeClock, *fakeLine, *fakeFIQ, *fakeDirectionPin) {
	clock := newFakeClock()
	line := &fakeLine{}
	fiq := &fakeFIQ{}
	pin := &fakeDirectionPin{}

	c := NewController(clock, line, fiq, pin)
	c.Init()

	return c, clock, line, fiq, pin
}

// sendDMXFrame drives a BREAK followed by a DMX start code and n data
// slots through the receive state machine, 44us apart.
func sendDMXFrame(c *Controller, clock *fakeClock, slots ...byte) {
	clock.advance(100)
	c.onUARTEvent(0, true, clock.now)

	clock.advance(12)
	c.onUARTEvent(StartCodeDMX, false, clock.now)

	for _, b := range slots {
		clock.advance(44)
		c.onUARTEvent(b, false, clock.now)
	}
}

// sendShortDMXFrame drives a BREAK + start code + slots as sendDMXFrame
// does, then fires the end-of-packet watchdog so the short frame (fewer
// than UniverseSize slots) is published, the way it would be in the
// field when the source stops early.
func sendShortDMXFrame(c *Controller, clock *fakeClock, slots ...byte) {
	sendDMXFrame(c, clock, slots...)
	clock.advance(c.rx.dmxFrame.SlotToSlotUs + 1)
	c.onRxWatchdog(clock.now)
}
