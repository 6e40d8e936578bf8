// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package uinput

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/Thermoquad/ibusd/pkg/headunit"
)

// ErrNoKey is returned for buttons without a key mapping
var ErrNoKey = errors.New("button has no key mapping")

// timeFieldSize is the size of a C long, one timeval field
const timeFieldSize = strconv.IntSize / 8

// EventSize is the size of struct input_event
const EventSize = 2*timeFieldSize + 8

// appendEvent encodes a struct input_event with a zero timestamp; the
// kernel stamps injected events itself
func appendEvent(buf []byte, typ, code uint16, value int32) []byte {
	buf = append(buf, make([]byte, 2*timeFieldSize)...)
	buf = binary.NativeEndian.AppendUint16(buf, typ)
	buf = binary.NativeEndian.AppendUint16(buf, code)
	return binary.NativeEndian.AppendUint32(buf, uint32(value))
}

// KeySink writes key events followed by a sync report
type KeySink struct {
	w   io.Writer
	log *zap.Logger
}

var _ headunit.KeySink = (*KeySink)(nil)

// NewKeySink creates a sink writing input events to w. log may be nil.
func NewKeySink(w io.Writer, log *zap.Logger) *KeySink {
	if log == nil {
		log = zap.NewNop()
	}
	return &KeySink{w: w, log: log}
}

// EmitKey writes the key event for ev. Press, long press and release map
// to the values 1, 2 and 0.
func (s *KeySink) EmitKey(ev headunit.ButtonEvent) error {
	code, ok := KeyCode(ev.Button)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoKey, ev.Button)
	}

	buf := make([]byte, 0, 2*EventSize)
	buf = appendEvent(buf, EvKey, code, ev.Phase.Value())
	buf = appendEvent(buf, EvSyn, SynReport, 0)
	if _, err := s.w.Write(buf); err != nil {
		return fmt.Errorf("failed to write key event: %w", err)
	}

	s.log.Debug("Key event",
		zap.Stringer("button", ev.Button),
		zap.Uint16("key", code),
		zap.Int32("value", ev.Phase.Value()),
	)
	return nil
}

// LogSink logs key events instead of injecting them
type LogSink struct {
	log *zap.Logger
}

// NewLogSink creates a sink that logs at info level
func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log}
}

// EmitKey logs the key code the event would produce
func (s *LogSink) EmitKey(ev headunit.ButtonEvent) error {
	code, ok := KeyCode(ev.Button)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoKey, ev.Button)
	}
	s.log.Info("Key event",
		zap.Stringer("button", ev.Button),
		zap.Stringer("phase", ev.Phase),
		zap.Uint16("key", code),
	)
	return nil
}
