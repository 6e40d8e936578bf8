// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/ibusd/pkg/headunit"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, headunit.HijackAux, cfg.HijackTarget())
	assert.Equal(t, headunit.CharTimeout(9600), cfg.CharTimeout())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: /dev/ttyAMA0
hijack: tape
video:
  line: DTR
keys:
  sink: log
timing:
  char_timeout: 5ms
  idle_timeout: 0s
logging:
  level: debug
  trace_mask: 14
metrics:
  listen: ":9105"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyAMA0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate, "unset keys keep defaults")
	assert.Equal(t, headunit.HijackTape, cfg.HijackTarget())
	assert.Equal(t, "DTR", cfg.Video.Line)
	assert.Equal(t, SinkLog, cfg.Keys.Sink)
	assert.Equal(t, 5*time.Millisecond, cfg.CharTimeout())
	assert.Zero(t, cfg.Timing.IdleTimeout)
	assert.Equal(t, headunit.TraceAll, cfg.TraceMask())
	assert.Equal(t, ":9105", cfg.Metrics.Listen)
}

func TestLoad_UnknownHijackDisables(t *testing.T) {
	cfg, err := Load(writeConfig(t, "hijack: CD\n"))
	require.NoError(t, err)
	assert.Equal(t, headunit.HijackNone, cfg.HijackTarget())
}

func TestLoad_ParseError(t *testing.T) {
	_, err := Load(writeConfig(t, "serial: [unterminated\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero baud", func(c *Config) { c.Serial.BaudRate = 0 }, false},
		{"bad parity", func(c *Config) { c.Serial.Parity = "mark" }, false},
		{"small buffer", func(c *Config) { c.Buffer.Capacity = 256 }, false},
		{"minimum buffer", func(c *Config) { c.Buffer.Capacity = 257 }, true},
		{"cts line", func(c *Config) { c.Video.Line = "CTS" }, false},
		{"no line", func(c *Config) { c.Video.Line = "none" }, true},
		{"unknown sink", func(c *Config) { c.Keys.Sink = "x11" }, false},
		{"negative idle", func(c *Config) { c.Timing.IdleTimeout = -time.Second }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
