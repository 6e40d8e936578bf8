// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package headunit

import "time"

// Bus timing
const (
	DefaultBaudRate    = 9600
	BitsPerChar        = 11 // start, 8 data, even parity, stop
	BoundaryChars      = 2  // silence that ends a frame, in characters
	DefaultIdleTimeout = 10 * time.Minute
)

// CharTimeout returns the inter-character silence that ends a frame at the
// given baud rate: two characters of 11 bits, about 2.3ms at 9600 baud
func CharTimeout(baud int) time.Duration {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return time.Duration(int64(time.Second) * BoundaryChars * BitsPerChar / int64(baud))
}

// Expiry is what a SilenceTimer deadline stands for
type Expiry uint8

const (
	ExpiryNone     Expiry = iota
	ExpiryBoundary        // bytes are buffered and the bus went quiet
	ExpiryIdle            // no traffic for the idle timeout
)

// SilenceTimer decides when buffered bytes should be extracted and when the
// bus counts as idle. It works on caller supplied times and never sleeps, so
// it runs the same against the wall clock and against recorded timestamps.
type SilenceTimer struct {
	charTimeout time.Duration
	idleTimeout time.Duration
	last        time.Time
	pending     bool
}

// NewSilenceTimer creates a timer. An idle timeout of zero disables idle
// detection.
func NewSilenceTimer(charTimeout, idleTimeout time.Duration) *SilenceTimer {
	return &SilenceTimer{charTimeout: charTimeout, idleTimeout: idleTimeout}
}

// CharTimeout returns the frame boundary silence
func (t *SilenceTimer) CharTimeout() time.Duration {
	return t.charTimeout
}

// Reset starts idle tracking at now with nothing pending
func (t *SilenceTimer) Reset(now time.Time) {
	t.last = now
	t.pending = false
}

// Received records bus activity at the given time
func (t *SilenceTimer) Received(at time.Time) {
	t.last = at
	t.pending = true
}

// Pending reports whether bytes arrived since the last boundary
func (t *SilenceTimer) Pending() bool {
	return t.pending
}

// Deadline returns the next expiry and what it stands for
func (t *SilenceTimer) Deadline() (time.Time, Expiry) {
	if t.pending {
		return t.last.Add(t.charTimeout), ExpiryBoundary
	}
	if t.idleTimeout > 0 {
		return t.last.Add(t.idleTimeout), ExpiryIdle
	}
	return time.Time{}, ExpiryNone
}

// Expired returns what has expired at now. A boundary expiry is consumed so
// it fires once per burst of bytes.
func (t *SilenceTimer) Expired(now time.Time) Expiry {
	deadline, kind := t.Deadline()
	if kind == ExpiryNone || now.Before(deadline) {
		return ExpiryNone
	}
	if kind == ExpiryBoundary {
		t.pending = false
	}
	return kind
}
