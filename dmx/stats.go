// DMX512 throughput statistics
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dmx

// onThroughputTick is the timer-3 1Hz deadline handler: it samples the
// DMX packet counter delta since the previous tick as the updates/sec
// meter, and re-arms itself.
func (c *Controller) onThroughputTick(now uint32) {
	c.clock.ArmCompare(ChannelTimer3, now+1000000)

	c.updatesPerSecond = c.total.DMXPackets - c.dmxPacketsSnapshot
	c.dmxPacketsSnapshot = c.total.DMXPackets
}

// GetTotalStatistics returns the cumulative DMX/RDM packet arrival
// counts. Counters are incremented only from the receive state machine,
// at BREAK admission (§9: preserved intentionally — a malformed RDM
// frame with a valid start code still counts as an arrival).
func (c *Controller) GetTotalStatistics() TotalStatistics {
	return c.total
}

// ResetTotalStatistics zeroes the cumulative packet counters.
func (c *Controller) ResetTotalStatistics() {
	c.total = TotalStatistics{}
	c.dmxPacketsSnapshot = 0
}

// GetUpdatesPerSecond returns the most recently measured DMX frame rate.
func (c *Controller) GetUpdatesPerSecond() uint32 {
	return c.updatesPerSecond
}
