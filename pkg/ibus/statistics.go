// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ibus

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks frame statistics and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	BytesReceived    uint64
	TotalFrames      uint64 // candidates consumed by the decoder
	ValidFrames      uint64
	ChecksumErrors   uint64
	MalformedLengths uint64
	IncompleteFrames uint64 // partial candidates discarded at a frame boundary
	BufferOverflows  uint64
	BytesDiscarded   uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// AddBytes counts received bytes
func (s *Statistics) AddBytes(n int) {
	s.BytesReceived += uint64(n)
}

// Update records the outcome of one decoder step. A nil frame with a nil
// error (incomplete data) is ignored.
func (s *Statistics) Update(frame *Frame, err error) {
	if frame == nil && err == nil {
		return
	}

	if err != nil {
		var fe *FrameError
		if errors.As(err, &fe) {
			s.BytesDiscarded += uint64(len(fe.Raw))
		}

		switch {
		case errors.Is(err, ErrBufferOverflow):
			// Overflow drops raw bytes, not a candidate frame
			s.BufferOverflows++
		case errors.Is(err, ErrChecksumMismatch):
			s.TotalFrames++
			s.ChecksumErrors++
		case errors.Is(err, ErrMalformedLength):
			s.TotalFrames++
			s.MalformedLengths++
		case errors.Is(err, ErrFrameIncomplete):
			s.TotalFrames++
			s.IncompleteFrames++
		}
	} else {
		s.TotalFrames++
		s.ValidFrames++
	}

	s.LastUpdateTime = time.Now()
}

// Errors returns the number of discarded candidates and overflows
func (s *Statistics) Errors() uint64 {
	return s.ChecksumErrors + s.MalformedLengths + s.IncompleteFrames + s.BufferOverflows
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.Errors()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, checksumPercent, malformedPercent float64
	if s.TotalFrames > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalFrames)
		checksumPercent = float64(s.ChecksumErrors) * 100.0 / float64(s.TotalFrames)
		malformedPercent = float64(s.MalformedLengths) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Bytes Received:  %8d\n", s.BytesReceived)
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)

	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d (%.1f%%)\n", s.ChecksumErrors, checksumPercent)
	}
	if s.MalformedLengths > 0 {
		result += fmt.Sprintf("Bad Lengths:     %8d (%.1f%%)\n", s.MalformedLengths, malformedPercent)
	}
	if s.IncompleteFrames > 0 {
		result += fmt.Sprintf("Incomplete:      %8d\n", s.IncompleteFrames)
	}
	if s.BufferOverflows > 0 {
		result += fmt.Sprintf("Overflows:       %8d\n", s.BufferOverflows)
	}
	if s.BytesDiscarded > 0 {
		result += fmt.Sprintf("  Bytes Dropped:  %7d\n", s.BytesDiscarded)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
