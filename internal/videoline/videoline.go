// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package videoline switches the video input selector wired to a serial
// modem control line.
package videoline

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrInputLine is returned for modem lines that cannot be driven
var ErrInputLine = errors.New("input line cannot be driven")

// Line is a serial modem control output
type Line uint8

const (
	LineNone Line = iota
	LineRTS
	LineDTR
)

// String returns the configuration token for the line
func (l Line) String() string {
	switch l {
	case LineRTS:
		return "RTS"
	case LineDTR:
		return "DTR"
	default:
		return "none"
	}
}

// ParseLine parses a line name. An empty name means LineNone.
func ParseLine(s string) (Line, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return LineNone, nil
	case "RTS":
		return LineRTS, nil
	case "DTR":
		return LineDTR, nil
	case "CTS", "DSR", "DCD", "RI":
		return LineNone, fmt.Errorf("%w: %s", ErrInputLine, s)
	default:
		return LineNone, fmt.Errorf("unknown video line %q", s)
	}
}

// ModemLines is the part of serial.Port used to drive the line
type ModemLines interface {
	SetRTS(rts bool) error
	SetDTR(dtr bool) error
}

// SerialLine drives one modem line of a serial port. The line is only
// written when the requested value differs from the last one written.
type SerialLine struct {
	port    ModemLines
	line    Line
	log     *zap.Logger
	written bool
	enabled bool
}

// New creates a line driver. log may be nil.
func New(port ModemLines, line Line, log *zap.Logger) *SerialLine {
	if log == nil {
		log = zap.NewNop()
	}
	return &SerialLine{port: port, line: line, log: log}
}

// Line returns the driven line
func (s *SerialLine) Line() Line {
	return s.line
}

// Enabled returns the last value written
func (s *SerialLine) Enabled() bool {
	return s.enabled
}

// SetVideoEnabled asserts the line when enabled and clears it otherwise
func (s *SerialLine) SetVideoEnabled(enabled bool) error {
	if s.written && s.enabled == enabled {
		return nil
	}

	var err error
	switch s.line {
	case LineRTS:
		err = s.port.SetRTS(enabled)
	case LineDTR:
		err = s.port.SetDTR(enabled)
	}
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", s.line, err)
	}

	s.written = true
	s.enabled = enabled
	s.log.Debug("Video line", zap.Stringer("line", s.line), zap.Bool("enabled", enabled))
	return nil
}
