// DMX512/RDM direction control and timer-role dispatch
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dmx

// SetDirection switches the transceiver between input (receive) and
// output (transmit), first fully quiescing whichever direction is
// currently active (§5: send and receive never run concurrently). If
// enableData is true the new direction is started immediately; otherwise
// the transceiver is left idle with the pin set but no interrupts bound.
func (c *Controller) SetDirection(dir Direction, enableData bool) {
	c.stop()

	c.direction = dir
	c.dirPin.SetOutput(dir == Output)

	if enableData {
		c.start()
	}
}

// Direction reports the transceiver's current direction.
func (c *Controller) Direction() Direction {
	return c.direction
}

// stop quiesces whichever of the transmit or receive state machines is
// currently running, per §4.F and §5: bounded spin for TX idle, then
// unbind timer-1, disable FIQ, reset receive state, and clear the
// slots-in-packet of every ring entry so a consumer cannot observe a
// stale count from before the switch.
func (c *Controller) stop() {
	if c.tx.always {
		start := c.clock.NowMicros()
		timeout := c.cfg.EffectiveOutputPeriod()

		for c.tx.state != txIdle {
			if c.clock.NowMicros()-start >= timeout {
				// TX stuck: proceed regardless (§7 error handling).
				break
			}
		}

		c.tx.always = false
		c.timer1Role = roleNone
	}

	c.fiq.Disable()
	c.resetReceiveState()

	for i := range c.dmxRing.slots {
		c.dmxRing.slots[i].SlotsInPacket = 0
	}

	c.timer3Role = roleNone
}

// start arms the interrupts for the direction most recently set by
// SetDirection.
func (c *Controller) start() {
	now := c.clock.NowMicros()

	switch c.direction {
	case Output:
		c.tx.always = true
		c.tx.state = txIdle
		c.timer1Role = roleTxTick

		period := c.cfg.EffectiveOutputPeriod()

		if now-c.tx.breakStart > period {
			c.clock.ArmCompare(ChannelTimer1, now+4)
		} else {
			c.clock.ArmCompare(ChannelTimer1, c.tx.breakStart+period+4)
		}

	case Input:
		c.resetReceiveState()
		c.timer1Role = roleRxWatchdog
		c.timer3Role = roleThroughputTick

		c.clock.ArmCompare(ChannelTimer3, now+1000000)

		c.fiq.Enable()
	}
}

// HandleTimerDeadline dispatches a fired compare-channel deadline to
// whichever role is currently bound to it — the tagged-variant dispatch
// described in DESIGN.md, used in place of a function-pointer callback so
// nothing on the interrupt path allocates.
func (c *Controller) HandleTimerDeadline(channel int, now uint32) {
	var role timerRole

	switch channel {
	case ChannelTimer1:
		role = c.timer1Role
	case ChannelTimer3:
		role = c.timer3Role
	default:
		return
	}

	switch role {
	case roleRxWatchdog:
		c.onRxWatchdog(now)
	case roleTxTick:
		c.onTxTick(now)
	case roleThroughputTick:
		c.onThroughputTick(now)
	}
}
