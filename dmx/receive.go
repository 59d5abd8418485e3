// DMX512/RDM receive state machine
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dmx

// receiveState is the state of the receive state machine, driven from
// UART RX events (delivered via FIQ) and from the timer-1 end-of-packet
// watchdog deadline.
type receiveState int

const (
	rxIdle receiveState = iota
	rxBreak
	rxDMXData
	rxRDMData
	rxChecksumH
	rxChecksumL
	rxRDMDiscFE
	rxRDMDiscEUID
	rxRDMDiscECS
)

// receiver holds all state mutated only from FIQ context (and from the
// timer-1 callback while FIQ is disabled or the machine is idle — see
// direction.go). It is a separate, embeddable type so its field-ownership
// discipline (§5 of the design) is visible at a glance.
type receiver struct {
	state receiveState

	dmxFrame     *DMXFrame
	dmxRingFull  bool
	rdmFrame     *RDMFrame
	rdmRingFull  bool

	index      uint16
	checksum   uint16
	discIndex  uint8

	lastEventMicros    uint32
	breakTimestamp     uint32
	prevBreakTimestamp uint32
	isPreviousBreakDMX bool

	scratchDMX DMXFrame
	scratchRDM RDMFrame
}

// onBreak handles the RX-byte-with-BREAK-flag event: any state
// transitions unconditionally to rxBreak and the break timestamp is
// recorded for break-to-break measurement.
func (c *Controller) onBreak(now uint32) {
	c.rx.state = rxBreak
	c.rx.breakTimestamp = now
	c.rx.lastEventMicros = now
}

// onByte handles the RX-byte-without-BREAK-flag event. It is called by
// onUARTEvent for every received byte that did not carry the BREAK flag;
// isBreak must have already been checked by the caller.
func (c *Controller) onByte(data byte, now uint32) {
	switch c.rx.state {
	case rxIdle:
		c.onByteIdle(data)
	case rxBreak:
		c.onByteBreak(data)
	case rxDMXData:
		c.onByteDMXData(data, now)
	case rxRDMData:
		c.onByteRDMData(data)
	case rxChecksumH:
		c.onByteChecksumH(data)
	case rxChecksumL:
		c.onByteChecksumL(data, now)
	case rxRDMDiscFE:
		c.onByteRDMDiscFE(data)
	case rxRDMDiscEUID:
		c.onByteRDMDiscEUID(data)
	case rxRDMDiscECS:
		c.onByteRDMDiscECS(data, now)
	}

	c.rx.lastEventMicros = now
}

// onUARTEvent is the single entry point called from the FIQ handler for
// every byte received on the line, with the hardware's BREAK framing
// flag. It must never allocate or block.
func (c *Controller) onUARTEvent(data byte, isBreak bool, now uint32) {
	if isBreak {
		c.onBreak(now)
		return
	}

	c.onByte(data, now)
}

func (c *Controller) onByteIdle(data byte) {
	if data == 0xfe {
		c.rx.state = rxRDMDiscFE
		c.beginRDMDiscovery()
		c.rx.rdmFrame.Data[0] = 0xfe
		c.rx.index = 1
	}
}

func (c *Controller) onByteBreak(data byte) {
	switch data {
	case StartCodeDMX:
		c.rx.state = rxDMXData
		c.beginDMX()
		c.rx.dmxFrame.Data[0] = StartCodeDMX
		c.rx.index = 1

		c.total.DMXPackets++

		if c.rx.isPreviousBreakDMX {
			c.rx.dmxFrame.BreakToBreakUs = c.rx.breakTimestamp - c.rx.prevBreakTimestamp
		}

		c.rx.isPreviousBreakDMX = true
		c.rx.prevBreakTimestamp = c.rx.breakTimestamp

	case StartCodeRDM:
		c.rx.state = rxRDMData
		c.beginRDM()
		c.rx.rdmFrame.Data[0] = StartCodeRDM
		c.rx.checksum = StartCodeRDM
		c.rx.index = 1

		c.total.RDMPackets++
		c.rx.isPreviousBreakDMX = false

	default:
		c.rx.state = rxIdle
		c.rx.isPreviousBreakDMX = false
	}
}

func (c *Controller) onByteDMXData(data byte, now uint32) {
	gap := now - c.rx.lastEventMicros
	if gap < minSlotToSlotMicros {
		gap = minSlotToSlotMicros
	}

	c.rx.dmxFrame.SlotToSlotUs = gap
	c.rx.dmxFrame.Data[c.rx.index] = data
	c.rx.index++

	c.clock.ArmCompare(ChannelTimer1, now+gap+endOfPacketSlackMicros)

	if int(c.rx.index) > UniverseSize {
		c.rx.dmxFrame.SlotsInPacket = UniverseSize
		c.publishDMX()
		c.rx.state = rxIdle
	}
}

func (c *Controller) onByteRDMData(data byte) {
	if int(c.rx.index) >= RDMBufferSize {
		c.rx.state = rxIdle
		return
	}

	c.rx.rdmFrame.Data[c.rx.index] = data
	c.rx.checksum += uint16(data)
	c.rx.index++

	if c.rx.index == uint16(c.rx.rdmFrame.Data[2]) {
		c.rx.state = rxChecksumH
	}
}

func (c *Controller) onByteChecksumH(data byte) {
	c.rx.rdmFrame.Data[c.rx.index] = data
	c.rx.index++
	c.rx.checksum -= uint16(data) << 8
	c.rx.state = rxChecksumL
}

func (c *Controller) onByteChecksumL(data byte, now uint32) {
	c.rx.rdmFrame.Data[c.rx.index] = data
	c.rx.index++
	c.rx.checksum -= uint16(data)

	if c.rx.checksum == 0 && c.rx.rdmFrame.Data[1] == SubStartCodeRDM {
		c.rx.rdmFrame.Length = c.rx.index
		c.rx.rdmFrame.ReceiveEndMicros = now
		c.publishRDM()
	}

	c.rx.state = rxIdle
}

func (c *Controller) onByteRDMDiscFE(data byte) {
	switch data {
	case 0xfe:
		c.rx.rdmFrame.Data[c.rx.index] = 0xfe
		c.rx.index++
	case 0xaa:
		c.rx.rdmFrame.Data[c.rx.index] = 0xaa
		c.rx.index++
		c.rx.state = rxRDMDiscEUID
		c.rx.discIndex = 0
	default:
		c.rx.state = rxIdle
	}
}

func (c *Controller) onByteRDMDiscEUID(data byte) {
	c.rx.rdmFrame.Data[c.rx.index] = data
	c.rx.index++
	c.rx.discIndex++

	if int(c.rx.discIndex) == discoveryEUIDBytes {
		c.rx.state = rxRDMDiscECS
		c.rx.discIndex = 0
	}
}

func (c *Controller) onByteRDMDiscECS(data byte, now uint32) {
	c.rx.rdmFrame.Data[c.rx.index] = data
	c.rx.index++
	c.rx.discIndex++

	if int(c.rx.discIndex) == discoveryChecksumBytes {
		c.rx.rdmFrame.Length = c.rx.index
		c.rx.rdmFrame.ReceiveEndMicros = now
		c.publishRDM()
		c.rx.state = rxIdle
	}
}

// onRxWatchdog is the timer-1 deadline handler used while the driver is
// receiving: if no byte has arrived since the window armed by the last
// onByteDMXData call, the in-progress DMX frame is published as a short
// packet. It is a no-op in every other receive state, so it is safe to
// arm unconditionally and let stale deadlines fire harmlessly.
func (c *Controller) onRxWatchdog(now uint32) {
	if c.rx.state != rxDMXData {
		return
	}

	if now-c.rx.lastEventMicros > c.rx.dmxFrame.SlotToSlotUs {
		c.rx.dmxFrame.SlotsInPacket = c.rx.index - 1
		c.publishDMX()
		c.rx.state = rxIdle
	} else {
		c.clock.ArmCompare(ChannelTimer1, now+c.rx.dmxFrame.SlotToSlotUs)
	}
}

func (c *Controller) beginDMX() {
	if frame, ok := c.dmxRing.reserve(); ok {
		c.rx.dmxFrame = frame
		c.rx.dmxRingFull = false
	} else {
		c.rx.dmxFrame = &c.rx.scratchDMX
		c.rx.dmxRingFull = true
	}

	*c.rx.dmxFrame = DMXFrame{}
}

func (c *Controller) beginRDM() {
	if frame, ok := c.rdmRing.reserve(); ok {
		c.rx.rdmFrame = frame
		c.rx.rdmRingFull = false
	} else {
		c.rx.rdmFrame = &c.rx.scratchRDM
		c.rx.rdmRingFull = true
	}

	*c.rx.rdmFrame = RDMFrame{}
}

func (c *Controller) beginRDMDiscovery() {
	c.beginRDM()
}

func (c *Controller) publishDMX() {
	if !c.rx.dmxRingFull {
		c.dmxRing.publish()
	}
}

func (c *Controller) publishRDM() {
	if !c.rx.rdmRingFull {
		c.rdmRing.publish()
	}
}

// resetReceiveState discards any in-progress frame and returns the
// machine to idle, used when the direction controller quiesces reception
// (§5: "direction switch cancels any in-flight RX packet").
func (c *Controller) resetReceiveState() {
	c.rx.state = rxIdle
}
