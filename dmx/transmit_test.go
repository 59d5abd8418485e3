// Transmit state machine and timing tests
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dmx

import "testing"

func TestEffectiveOutputPeriodClampsShortRequests(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SendDataLength = 24 // start code + 23 slots

	// packetLength = 92 + 12 + 24*44 = 1160; clamp floor is minOutputPeriodUs.
	if got := cfg.EffectiveOutputPeriod(); got < minOutputPeriodUs {
		t.Fatalf("EffectiveOutputPeriod() = %d, want >= %d", got, minOutputPeriodUs)
	}

	cfg.SendDataLength = 513 // full universe
	want := uint32(22720)   // 92 + 12 + 513*44 + 44, above the 1204us floor
	if got := cfg.EffectiveOutputPeriod(); got != want {
		t.Fatalf("EffectiveOutputPeriod() = %d, want %d", got, want)
	}
}

func TestEffectiveOutputPeriodRespectsExplicitRequest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SendDataLength = 24
	cfg.OutputPeriodUs = 50000

	if got := cfg.EffectiveOutputPeriod(); got != 50000 {
		t.Fatalf("EffectiveOutputPeriod() = %d, want the explicit 50000 request honoured", got)
	}
}

func TestTransmitCycleSendsBreakMABThenBurst(t *testing.T) {
	c, clock, line, _, _ := newTestController()

	c.SetSendData([]byte{StartCodeDMX, 0x11, 0x22, 0x33})
	c.SetDirection(Output, true)

	c.onTxTick(clock.now) // IDLE -> BREAK
	if !line.breakOn {
		t.Fatal("expected BREAK asserted on the first transmit tick")
	}

	clock.advance(c.cfg.BreakTimeUs)
	c.onTxTick(clock.now) // BREAK -> MAB
	if line.breakOn {
		t.Fatal("expected BREAK deasserted entering MAB")
	}

	clock.advance(c.cfg.MABTimeUs)
	c.onTxTick(clock.now) // MAB -> burst -> IDLE

	if c.tx.state != txIdle {
		t.Fatalf("tx.state = %v after burst, want txIdle", c.tx.state)
	}

	want := []byte{StartCodeDMX, 0x11, 0x22, 0x33}
	if len(line.written) != len(want) {
		t.Fatalf("wrote %d bytes, want %d", len(line.written), len(want))
	}
	for i, b := range want {
		if line.written[i] != b {
			t.Fatalf("written[%d] = %#x, want %#x", i, line.written[i], b)
		}
	}
}

func TestSetSendDataUpdatesLengthAndPeriod(t *testing.T) {
	c, _, _, _, _ := newTestController()

	data := make([]byte, 25)
	c.SetSendData(data)

	if c.GetSendDataLength() != 25 {
		t.Fatalf("GetSendDataLength() = %d, want 25", c.GetSendDataLength())
	}

	if period := c.GetOutputPeriod(); period < minOutputPeriodUs {
		t.Fatalf("GetOutputPeriod() = %d, want >= %d", period, minOutputPeriodUs)
	}
}

func TestSetOutputBreakAndMABTimesClampToMinimums(t *testing.T) {
	c, _, _, _, _ := newTestController()

	c.SetOutputBreakTime(10)
	if got := c.GetOutputBreakTime(); got != MinBreakTimeUs {
		t.Fatalf("GetOutputBreakTime() = %d, want clamped to %d", got, MinBreakTimeUs)
	}

	c.SetOutputMABTime(1)
	if got := c.GetOutputMABTime(); got != MinMABTimeUs {
		t.Fatalf("GetOutputMABTime() = %d, want clamped to %d", got, MinMABTimeUs)
	}
}
