// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the ibusd YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/ibusd/internal/videoline"
	"github.com/Thermoquad/ibusd/pkg/headunit"
	"github.com/Thermoquad/ibusd/pkg/ibus"
)

// DefaultPath is read when no --config flag is given
const DefaultPath = "/etc/ibusd/config.yaml"

// Key sink names
const (
	SinkUinput = "uinput"
	SinkLog    = "log"
)

// Config holds the daemon configuration
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Hijack  string        `yaml:"hijack"`
	Video   VideoConfig   `yaml:"video"`
	Keys    KeysConfig    `yaml:"keys"`
	Timing  TimingConfig  `yaml:"timing"`
	Buffer  BufferConfig  `yaml:"buffer"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
	Parity   string `yaml:"parity"` // even, odd, none
}

type VideoConfig struct {
	Line string `yaml:"line"` // RTS, DTR or none
}

type KeysConfig struct {
	Sink       string `yaml:"sink"`
	DeviceName string `yaml:"device_name"`
}

// TimingConfig holds the bus silence timeouts. A zero CharTimeout is derived
// from the baud rate; a zero IdleTimeout disables idle shutdown.
type TimingConfig struct {
	CharTimeout time.Duration `yaml:"char_timeout"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type BufferConfig struct {
	Capacity int `yaml:"capacity"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	TraceMask  uint32 `yaml:"trace_mask"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables the endpoint
}

// Defaults returns the configuration used when no file exists
func Defaults() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: headunit.DefaultBaudRate,
			Parity:   "even",
		},
		Hijack: "AUX",
		Video:  VideoConfig{Line: "RTS"},
		Keys: KeysConfig{
			Sink:       SinkUinput,
			DeviceName: "BMW IBUS",
		},
		Timing: TimingConfig{
			IdleTimeout: headunit.DefaultIdleTimeout,
		},
		Buffer: BufferConfig{Capacity: ibus.DefaultCapacity},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and names
func (c *Config) Validate() error {
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", c.Serial.BaudRate)
	}
	switch strings.ToLower(c.Serial.Parity) {
	case "even", "odd", "none":
	default:
		return fmt.Errorf("unknown parity %q", c.Serial.Parity)
	}
	if c.Buffer.Capacity < ibus.MaxFrameSize {
		return fmt.Errorf("buffer capacity must be at least %d, got %d", ibus.MaxFrameSize, c.Buffer.Capacity)
	}
	if _, err := videoline.ParseLine(c.Video.Line); err != nil {
		return err
	}
	switch c.Keys.Sink {
	case SinkUinput, SinkLog:
	default:
		return fmt.Errorf("unknown key sink %q", c.Keys.Sink)
	}
	if c.Timing.CharTimeout < 0 || c.Timing.IdleTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

// HijackTarget parses the hijack setting; unknown names disable hijacking
func (c *Config) HijackTarget() headunit.HijackTarget {
	return headunit.ParseHijackTarget(c.Hijack)
}

// CharTimeout returns the configured frame boundary silence, derived from
// the baud rate when unset
func (c *Config) CharTimeout() time.Duration {
	if c.Timing.CharTimeout > 0 {
		return c.Timing.CharTimeout
	}
	return headunit.CharTimeout(c.Serial.BaudRate)
}

// TraceMask returns the logging trace categories
func (c *Config) TraceMask() headunit.TraceMask {
	return headunit.TraceMask(c.Logging.TraceMask)
}
