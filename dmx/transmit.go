// DMX512/RDM transmit state machine
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dmx

// transmitState is the state of the transmit state machine, entirely
// driven by timer-1 compare deadlines.
type transmitState int

const (
	txIdle transmitState = iota
	txBreak
	txMAB
)

// transmitter holds the state mutated by the transmit tick callback.
// always tracks whether the tick is currently bound to timer-1 (so
// direction.stop can tell whether there is a transmit cycle to drain).
type transmitter struct {
	state      transmitState
	breakStart uint32
	always     bool

	payload [UniverseSize + 1]byte
	length  uint16
}

// onTxTick is the timer-1 deadline handler while the driver is
// transmitting. It advances BREAK -> MAB -> (synchronous data burst) ->
// IDLE, rearming timer-1 for the next deadline at every step.
func (c *Controller) onTxTick(now uint32) {
	switch c.tx.state {
	case txIdle:
		c.line.BreakOn()
		c.clock.ArmCompare(ChannelTimer1, now+c.cfg.BreakTimeUs)
		c.tx.breakStart = now
		c.tx.state = txBreak

	case txBreak:
		c.line.BreakOff()
		c.clock.ArmCompare(ChannelTimer1, now+c.cfg.MABTimeUs)
		c.tx.state = txMAB

	case txMAB:
		c.clock.ArmCompare(ChannelTimer1, c.tx.breakStart+c.cfg.EffectiveOutputPeriod())
		c.sendBurst()
		c.tx.state = txIdle
	}
}

// sendBurst pushes the configured payload onto the UART TX FIFO,
// blocking while it is full, and waits for the line to fall idle. It runs
// synchronously inside the timer-1 callback because the FIFO is too
// shallow to hold a full frame; the period clamp in Config guarantees it
// completes before the next scheduled BREAK deadline.
func (c *Controller) sendBurst() {
	for i := uint16(0); i < c.tx.length; i++ {
		c.line.WriteByte(c.tx.payload[i])
	}

	for c.line.TxBusy() {
	}
}

// setSendData copies up to len(UniverseSize+1) bytes into the transmit
// payload buffer and updates the send length (and, through it, the
// effective output period).
func (c *Controller) setSendData(data []byte) {
	n := copy(c.tx.payload[:], data)
	c.tx.length = uint16(n)
	c.cfg.SendDataLength = uint16(n)
}
