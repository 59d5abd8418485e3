// Reader application configuration file support
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package config reads the `key=value` configuration file consumed by
// the DMX reader application (console_output, lcd_output, 7segment_output,
// midi_output, artnet_output — each "0" or "1"). Unrecognised keys are
// ignored by construction: callers only ever ask Reader for the keys they
// ship, nothing is validated against a master key list.
//
// This is explicitly an external collaborator from the line driver's
// point of view (see dmx package): the driver core never reads a config
// file, and this package never decides driver behaviour — it only turns
// the on-disk "0"/"1" switches into booleans for whatever foreground
// front-end chooses to act on them.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Known keys. Listed for documentation purposes only — Bool accepts any
// key, recognised or not, and simply returns false for one that was
// never set.
const (
	KeyConsoleOutput   = "console_output"
	KeyLCDOutput       = "lcd_output"
	Key7SegmentOutput  = "7segment_output"
	KeyMIDIOutput      = "midi_output"
	KeyArtNetOutput    = "artnet_output"
)

// Reader gives boolean access to a parsed key=value configuration file.
type Reader struct {
	v *viper.Viper
}

// Load reads and parses the configuration file at path. The file format
// is plain `key=value` lines, one per line, matched by viper's
// "properties" config type.
func Load(path string) (*Reader, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("properties")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return &Reader{v: v}, nil
}

// Bool returns the boolean value of key, treating "1" as true and
// anything else (including an unset key) as false, matching the
// reader application's 0/1 convention.
func (r *Reader) Bool(key string) bool {
	raw := strings.TrimSpace(r.v.GetString(key))
	return raw == "1"
}
