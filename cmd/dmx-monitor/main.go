// dmx-monitor: live statistics front-end
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Command dmx-monitor is a host-side (non-tamago) companion tool: it
// loads the reader application's key=value config file, feeds a simulated
// DMX512 source into a controller and logs its updates/sec and packet
// counters once a second, and serves debugcharts' Go runtime charts on
// /debug/charts (the DMX counters are not plotted there). It
// does not implement any of the console/LCD/7-segment/MIDI/Art-Net
// front-ends named in the driver's config — it only parses their on/off
// switches and logs them, so a real front-end can be wired in later
// without touching this package.
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	_ "github.com/mkevac/debugcharts"

	"github.com/kfriesth/rpidmx512/config"
	"github.com/kfriesth/rpidmx512/dmx"
)

func main() {
	configPath := flag.String("config", "rpidmx512.cfg", "path to the reader application config file")
	listen := flag.String("listen", "localhost:6060", "address to serve /debug/charts on")
	universePeriod := flag.Duration("period", 23*time.Millisecond, "simulated DMX frame period")
	flag.Parse()

	if cfg, err := config.Load(*configPath); err != nil {
		log.Printf("config: %v (continuing with no front-ends enabled)", err)
	} else {
		log.Printf("console_output=%v lcd_output=%v 7segment_output=%v midi_output=%v artnet_output=%v",
			cfg.Bool(config.KeyConsoleOutput),
			cfg.Bool(config.KeyLCDOutput),
			cfg.Bool(config.Key7SegmentOutput),
			cfg.Bool(config.KeyMIDIOutput),
			cfg.Bool(config.KeyArtNetOutput),
		)
	}

	clock := &wallClock{start: time.Now()}
	line := &discardLine{}
	controller := dmx.NewController(clock, line, noopFIQ{}, noopDirectionPin{})
	controller.Init()
	controller.SetDirection(dmx.Input, true)

	go simulateSource(controller, clock, *universePeriod)

	go func() {
		for range time.Tick(time.Second) {
			log.Printf("updates/sec=%d total dmx=%d rdm=%d",
				controller.GetUpdatesPerSecond(),
				controller.GetTotalStatistics().DMXPackets,
				controller.GetTotalStatistics().RDMPackets,
			)
		}
	}()

	log.Printf("serving /debug/charts on %s", *listen)
	log.Fatal(http.ListenAndServe(*listen, nil))
}

// simulateSource feeds synthetic DMX512 BREAK + 24-slot frames into the
// controller at the requested period, standing in for a real UART RX
// FIQ source so the chart has something to show without hardware.
func simulateSource(c *dmx.Controller, clock *wallClock, period time.Duration) {
	for range time.Tick(period) {
		now := clock.NowMicros()
		c.HandleUARTEvent(0, true, now)
		c.HandleUARTEvent(dmx.StartCodeDMX, false, now+1)

		for i := 0; i < 24; i++ {
			c.HandleUARTEvent(byte(i), false, clock.NowMicros())
			time.Sleep(48 * time.Microsecond)
		}
	}
}

// wallClock adapts time.Now to dmx.Clock for host-side simulation; it has
// no real compare-channel hardware so ArmCompare is a no-op (the
// simulator drives the state machine directly, it doesn't rely on the
// watchdog deadline firing).
type wallClock struct{ start time.Time }

func (w *wallClock) NowMicros() uint32 {
	return uint32(time.Since(w.start).Microseconds())
}

func (w *wallClock) ArmCompare(channel int, deadlineMicros uint32) {}

type discardLine struct{}

func (discardLine) BreakOn()        {}
func (discardLine) BreakOff()       {}
func (discardLine) WriteByte(byte)  {}
func (discardLine) TxFIFOFull() bool { return false }
func (discardLine) TxBusy() bool     { return false }

type noopFIQ struct{}

func (noopFIQ) Enable()  {}
func (noopFIQ) Disable() {}

type noopDirectionPin struct{}

func (noopDirectionPin) SetOutput(bool) {}
