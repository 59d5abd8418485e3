// DMX512/RDM wire format data model
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dmx

// Wire-level constants for DMX512 (ANSI E1.11) and RDM (ANSI E1.20).
const (
	// UniverseSize is the number of channel slots in a DMX512 universe,
	// not counting the start code.
	UniverseSize = 512

	// StartCodeDMX marks a standard DMX512 data packet.
	StartCodeDMX = 0x00
	// StartCodeRDM marks an RDM packet.
	StartCodeRDM = 0xcc
	// SubStartCodeRDM is the only sub-start code this driver accepts.
	SubStartCodeRDM = 0x01

	// RDMBufferSize is the largest raw RDM frame this driver will
	// buffer, generous enough for the maximum PDL (231) plus header and
	// checksum.
	RDMBufferSize = 260

	// UIDSize is the length, in bytes, of an RDM UID (2-byte
	// manufacturer ID + 4-byte device ID).
	UIDSize = 6

	discoveryPreambleMax = 7
	discoveryEUIDBytes   = 2 * UIDSize
	discoveryChecksumBytes = 4

	// minSlotToSlotMicros is the physical floor below which a measured
	// slot-to-slot gap is known to be a late-FIQ artifact rather than a
	// real timing value, and is clamped up to this value.
	minSlotToSlotMicros = 44

	// endOfPacketSlackMicros is added on top of the measured slot gap
	// when arming the end-of-packet watchdog, absorbing jitter without
	// ever shortening the window below one slot time.
	endOfPacketSlackMicros = 12
)

// DMXFrame is one received DMX512 packet: the 513-byte slot array (index
// 0 is the start code) plus its per-frame timing statistics.
type DMXFrame struct {
	Data [UniverseSize + 1]byte

	SlotsInPacket  uint16
	SlotToSlotUs   uint32
	BreakToBreakUs uint32
}

// RDMFrame is one received RDM packet (command or discovery response),
// stored verbatim including start code, checksum and — for discovery
// responses — the 0xFE preamble and 0xAA separator.
type RDMFrame struct {
	Data   [RDMBufferSize]byte
	Length uint16

	ReceiveEndMicros uint32
}

// TotalStatistics accumulates packet arrival counts across the lifetime
// of the driver (or since the last ResetTotalStatistics call).
type TotalStatistics struct {
	DMXPackets uint32
	RDMPackets uint32
}

// Config holds the transmit timing and payload configuration described
// in the driver's data model.
type Config struct {
	BreakTimeUs     uint32
	MABTimeUs       uint32
	SendDataLength  uint16
	OutputPeriodUs  uint32 // requested value, clamped at use via EffectiveOutputPeriod
}

// DMX512 minimums and defaults.
const (
	MinBreakTimeUs = 92
	MinMABTimeUs   = 12

	DefaultBreakTimeUs    = 92
	DefaultMABTimeUs      = 12
	DefaultSendDataLength = UniverseSize + 1
	DefaultOutputPeriodUs = 0

	minOutputPeriodUs = 1204
)

// DefaultConfig returns the driver's default transmit configuration.
func DefaultConfig() Config {
	return Config{
		BreakTimeUs:    DefaultBreakTimeUs,
		MABTimeUs:      DefaultMABTimeUs,
		SendDataLength: DefaultSendDataLength,
		OutputPeriodUs: DefaultOutputPeriodUs,
	}
}

// packetLengthUs returns the time needed to send break + mab + the
// configured number of slots (44us per byte at 250kbaud 8N2).
func (c Config) packetLengthUs() uint32 {
	return c.BreakTimeUs + c.MABTimeUs + uint32(c.SendDataLength)*44
}

// EffectiveOutputPeriod returns the period actually used for
// transmission: the requested period, unless it is zero or too short to
// fit a full packet at the configured break/mab/length, in which case it
// is clamped up so the bus is never oversubscribed.
func (c Config) EffectiveOutputPeriod() uint32 {
	packetLen := c.packetLengthUs()

	if c.OutputPeriodUs == 0 || c.OutputPeriodUs < packetLen {
		period := packetLen + 44

		if period < minOutputPeriodUs {
			period = minOutputPeriodUs
		}

		return period
	}

	return c.OutputPeriodUs
}
