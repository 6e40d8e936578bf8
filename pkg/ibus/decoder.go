// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ibus

import "bytes"

// Decoder accumulates bus bytes and extracts frames on demand. The caller
// appends bytes as they arrive and calls Next after a period of bus silence,
// repeating until Next reports no frame and no error.
type Decoder struct {
	acc *Accumulator
}

// NewDecoder creates a decoder with the default buffer capacity
func NewDecoder() *Decoder {
	return NewDecoderSize(DefaultCapacity)
}

// NewDecoderSize creates a decoder with the given buffer capacity
func NewDecoderSize(capacity int) *Decoder {
	return &Decoder{acc: NewAccumulator(capacity)}
}

// AppendByte adds one received byte. A full buffer is cleared and
// ErrBufferOverflow is returned.
func (d *Decoder) AppendByte(b byte) error {
	return d.acc.Append(b)
}

// Buffered returns the number of bytes waiting for extraction
func (d *Decoder) Buffered() int {
	return d.acc.Len()
}

// Capacity returns the buffer capacity
func (d *Decoder) Capacity() int {
	return d.acc.Cap()
}

// GetRawBytes returns a copy of the bytes waiting for extraction
func (d *Decoder) GetRawBytes() []byte {
	return bytes.Clone(d.acc.Bytes())
}

// Flush discards every buffered byte. It returns a *FrameError wrapping
// ErrFrameIncomplete describing the discarded bytes, or nil when the buffer
// was empty.
func (d *Decoder) Flush() error {
	n := d.acc.Len()
	if n == 0 {
		return nil
	}

	fe := &FrameError{Err: ErrFrameIncomplete, Raw: d.GetRawBytes()}
	if n > PosLength {
		fe.Length = int(d.acc.At(PosLength)) + HeaderSize
	}
	d.acc.Reset()
	return fe
}

// Reset discards all buffered bytes
func (d *Decoder) Reset() {
	d.acc.Reset()
}

// Next extracts one candidate frame from the front of the buffer.
//
// It returns (nil, nil) when the buffer does not yet hold a whole candidate;
// those bytes stay buffered. Otherwise the candidate is consumed and either a
// frame or a *FrameError (checksum mismatch or malformed length) is returned.
// A failed candidate is dropped whole; the decoder never slides one byte to
// resynchronise.
func (d *Decoder) Next() (*Frame, error) {
	n := d.acc.Len()
	if n < MinFrameSize {
		return nil, nil
	}

	declared := int(d.acc.At(PosLength)) + HeaderSize
	if declared < MinFrameSize {
		raw := bytes.Clone(d.acc.Bytes()[:declared])
		d.acc.Discard(declared)
		return nil, &FrameError{Err: ErrMalformedLength, Raw: raw, Length: declared}
	}
	if n < declared {
		return nil, nil
	}

	raw := bytes.Clone(d.acc.Bytes()[:declared])
	d.acc.Discard(declared)
	return ParseFrame(raw)
}
