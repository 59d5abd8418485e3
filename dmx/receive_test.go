// Receive state machine tests
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dmx

import "testing"

// buildRDMCommand returns a minimal, checksum-valid RDM GET_COMMAND frame
// (24-byte header, no parameter data) as the bytes that would arrive on
// the wire after the BREAK: start code through the trailing checksum.
func buildRDMCommand() []byte {
	header := []byte{
		StartCodeRDM, SubStartCodeRDM, 24, // SC, SUB_SC, MSG_LEN
		0x7a, 0x70, 0x00, 0x00, 0x00, 0x01, // destination UID
		0x7a, 0x70, 0x00, 0x00, 0x00, 0x02, // source UID
		0x00,       // transaction number
		0x01,       // port / response type
		0x00,       // message count
		0x00, 0x00, // sub-device
		0x20,       // command class: GET_COMMAND
		0x00, 0x60, // parameter ID: DEVICE_INFO
		0x00, // parameter data length
	}

	var sum uint16
	for _, b := range header {
		sum += uint16(b)
	}

	return append(header, byte(sum>>8), byte(sum))
}

// sendRDMFrame drives a BREAK followed by the given raw RDM bytes (as
// built by buildRDMCommand, starting with the start code) through the
// receive state machine.
func sendRDMFrame(c *Controller, clock *fakeClock, raw []byte) {
	clock.advance(100)
	c.onUARTEvent(0, true, clock.now)

	for _, b := range raw {
		clock.advance(44)
		c.onUARTEvent(b, false, clock.now)
	}
}

func TestReceiveFullDMXFramePublishesAutomatically(t *testing.T) {
	c, clock, _, _, _ := newTestController()

	slots := make([]byte, UniverseSize)
	for i := range slots {
		slots[i] = byte(i)
	}

	sendDMXFrame(c, clock, slots...)

	frame, ok := c.DMXAvailable()
	if !ok {
		t.Fatal("expected a published DMX frame after a full 512-slot packet")
	}

	if frame.SlotsInPacket != UniverseSize {
		t.Fatalf("SlotsInPacket = %d, want %d", frame.SlotsInPacket, UniverseSize)
	}

	if frame.Data[0] != StartCodeDMX {
		t.Fatalf("Data[0] = %#x, want start code %#x", frame.Data[0], StartCodeDMX)
	}

	for i, want := range slots {
		if frame.Data[i+1] != want {
			t.Fatalf("Data[%d] = %#x, want %#x", i+1, frame.Data[i+1], want)
		}
	}

	if stats := c.GetTotalStatistics(); stats.DMXPackets != 1 {
		t.Fatalf("DMXPackets = %d, want 1", stats.DMXPackets)
	}
}

func TestReceiveShortDMXFramePublishesOnWatchdog(t *testing.T) {
	c, clock, _, _, _ := newTestController()

	slots := []byte{10, 20, 30, 40}
	sendShortDMXFrame(c, clock, slots...)

	frame, ok := c.DMXAvailable()
	if !ok {
		t.Fatal("expected the short DMX frame to be published by the watchdog")
	}

	if int(frame.SlotsInPacket) != len(slots) {
		t.Fatalf("SlotsInPacket = %d, want %d", frame.SlotsInPacket, len(slots))
	}

	for i, want := range slots {
		if frame.Data[i+1] != want {
			t.Fatalf("Data[%d] = %#x, want %#x", i+1, frame.Data[i+1], want)
		}
	}
}

func TestReceiveValidRDMCommandIsPublished(t *testing.T) {
	c, clock, _, _, _ := newTestController()

	raw := buildRDMCommand()
	sendRDMFrame(c, clock, raw)

	frame, ok := c.RDMAvailable()
	if !ok {
		t.Fatal("expected a published RDM frame for a checksum-valid command")
	}

	if int(frame.Length) != len(raw) {
		t.Fatalf("Length = %d, want %d", frame.Length, len(raw))
	}

	for i, want := range raw {
		if frame.Data[i] != want {
			t.Fatalf("Data[%d] = %#x, want %#x", i, frame.Data[i], want)
		}
	}

	if stats := c.GetTotalStatistics(); stats.RDMPackets != 1 {
		t.Fatalf("RDMPackets = %d, want 1", stats.RDMPackets)
	}
}

func TestReceiveRDMCommandWithBadChecksumIsDropped(t *testing.T) {
	c, clock, _, _, _ := newTestController()

	raw := buildRDMCommand()
	raw[len(raw)-1] ^= 0xff // corrupt the checksum low byte

	sendRDMFrame(c, clock, raw)

	if _, ok := c.RDMAvailable(); ok {
		t.Fatal("a checksum-invalid RDM command must not be published")
	}

	// The arrival is still counted at BREAK admission, before validity is
	// known — this is intentional, not a bug (see DESIGN.md).
	if stats := c.GetTotalStatistics(); stats.RDMPackets != 1 {
		t.Fatalf("RDMPackets = %d, want 1 (counted at admission)", stats.RDMPackets)
	}
}

func TestReceiveDiscoveryResponseIsPublishedWithoutBreak(t *testing.T) {
	c, _, _, _, _ := newTestController()

	now := uint32(1000)

	c.onUARTEvent(0xfe, false, now) // single preamble byte
	c.onUARTEvent(0xaa, false, now+1)

	euid := []byte{0x01, 0x02, 0x7a, 0x70, 0x00, 0x00, 0x00, 0x01, 0xfe, 0xfe, 0xfe, 0xfe}
	for i, b := range euid {
		c.onUARTEvent(b, false, now+2+uint32(i))
	}

	checksum := []byte{0x00, 0xff, 0x00, 0xff}
	for i, b := range checksum {
		c.onUARTEvent(b, false, now+20+uint32(i))
	}

	frame, ok := c.RDMAvailable()
	if !ok {
		t.Fatal("expected a published discovery response")
	}

	wantLength := 2 + len(euid) + len(checksum)
	if int(frame.Length) != wantLength {
		t.Fatalf("Length = %d, want %d", frame.Length, wantLength)
	}

	if frame.Data[0] != 0xfe || frame.Data[1] != 0xaa {
		t.Fatalf("Data[0:2] = %#x %#x, want fe aa", frame.Data[0], frame.Data[1])
	}
}

func TestDirectionSwitchCancelsInFlightReceive(t *testing.T) {
	c, clock, _, fiq, _ := newTestController()

	c.SetDirection(Input, true)
	if !fiq.enabled {
		t.Fatal("expected FIQ enabled after switching to input with data enabled")
	}

	sendDMXFrame(c, clock, 1, 2, 3)
	if c.rx.state == rxIdle {
		t.Fatal("test setup: expected the receive machine mid-frame")
	}

	c.SetDirection(Output, false)

	if c.rx.state != rxIdle {
		t.Fatalf("rx.state = %v after direction switch, want rxIdle", c.rx.state)
	}
	if fiq.enabled {
		t.Fatal("expected FIQ disabled after switching away from input")
	}
}
