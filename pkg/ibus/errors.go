// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ibus

import (
	"errors"
	"fmt"
)

// Protocol conditions. None of them is fatal: the decoder recovers from each
// one locally and the error values only feed statistics and tracing.
var (
	ErrFrameIncomplete  = errors.New("frame incomplete")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrBufferOverflow   = errors.New("buffer overflow")
	ErrMalformedLength  = errors.New("malformed length")
)

// FrameError describes a discarded candidate frame
type FrameError struct {
	Err      error  // one of the sentinel errors above
	Raw      []byte // bytes that were discarded
	Length   int    // declared total frame length
	Expected byte   // computed checksum (checksum mismatch only)
	Got      byte   // received checksum (checksum mismatch only)
}

// Error implements the error interface
func (e *FrameError) Error() string {
	switch e.Err {
	case ErrChecksumMismatch:
		return fmt.Sprintf("checksum mismatch: expected 0x%02X, got 0x%02X", e.Expected, e.Got)
	case ErrMalformedLength:
		return fmt.Sprintf("malformed length: frame of %d bytes (valid %d-%d)", e.Length, MinFrameSize, MaxFrameSize)
	case ErrBufferOverflow:
		return fmt.Sprintf("buffer overflow: %d bytes discarded", len(e.Raw))
	case ErrFrameIncomplete:
		if e.Length > len(e.Raw) {
			return fmt.Sprintf("frame incomplete: have %d of %d bytes", len(e.Raw), e.Length)
		}
		return fmt.Sprintf("frame incomplete: %d stray bytes", len(e.Raw))
	default:
		return fmt.Sprintf("frame error: %v", e.Err)
	}
}

// Unwrap returns the sentinel error so errors.Is works
func (e *FrameError) Unwrap() error {
	return e.Err
}
