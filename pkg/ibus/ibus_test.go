// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ibus

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ============================================================
// Test Helpers
// ============================================================

// feed appends every byte to the decoder and fails on overflow
func feed(t *testing.T, d *Decoder, data []byte) {
	t.Helper()
	for _, b := range data {
		if err := d.AppendByte(b); err != nil {
			t.Fatalf("unexpected append error: %v", err)
		}
	}
}

// drain extracts candidates until the decoder reports incomplete data
func drain(d *Decoder) ([]*Frame, []error) {
	var frames []*Frame
	var errs []error
	for {
		frame, err := d.Next()
		if frame == nil && err == nil {
			return frames, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		frames = append(frames, frame)
	}
}

// ============================================================
// Checksum Tests
// ============================================================

func TestCalculateChecksum_Empty(t *testing.T) {
	if sum := CalculateChecksum(nil); sum != 0 {
		t.Errorf("checksum of empty data should be 0, got 0x%02X", sum)
	}
}

func TestCalculateChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{"BMBT arrow right", []byte{0xF0, 0x04, 0x68, 0x47, 0x00}, 0xDB},
		{"radio power", []byte{0xF0, 0x04, 0x68, 0x48, 0x06}, 0xD2},
		{"knob", []byte{0xF0, 0x04, 0x3B, 0x49, 0x82}, 0x04},
		{"no payload", []byte{0x50, 0x03, 0x68, 0x32}, 0x09},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := CalculateChecksum(tt.data)
			if sum != tt.expected {
				t.Errorf("checksum mismatch: expected 0x%02X, got 0x%02X", tt.expected, sum)
			}
		})
	}
}

func TestValidateChecksum(t *testing.T) {
	if err := ValidateChecksum([]byte{0xF0, 0x04, 0x68, 0x47, 0x00, 0xDB}); err != nil {
		t.Errorf("expected valid checksum, got %v", err)
	}

	err := ValidateChecksum([]byte{0xF0, 0x04, 0x68, 0x47, 0x00, 0xDC})
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
	var fe *FrameError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FrameError, got %T", err)
	}
	if fe.Expected != 0xDB || fe.Got != 0xDC {
		t.Errorf("expected 0xDB/0xDC, got 0x%02X/0x%02X", fe.Expected, fe.Got)
	}
	if !strings.Contains(fe.Error(), "expected 0xDB, got 0xDC") {
		t.Errorf("unexpected error text: %s", fe.Error())
	}
}

// ============================================================
// Frame Tests
// ============================================================

func TestNewFrame(t *testing.T) {
	frame, err := NewFrame(DevBMBT, DevRAD, MsgBMBTButtons0, []byte{0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []byte{0xF0, 0x04, 0x68, 0x47, 0x00, 0xDB}
	if !bytes.Equal(frame.Bytes(), expected) {
		t.Errorf("expected % X, got % X", expected, frame.Bytes())
	}
	if frame.Sender() != DevBMBT {
		t.Errorf("expected sender 0x%02X, got 0x%02X", DevBMBT, frame.Sender())
	}
	if frame.Receiver() != DevRAD {
		t.Errorf("expected receiver 0x%02X, got 0x%02X", DevRAD, frame.Receiver())
	}
	if frame.Type() != MsgBMBTButtons0 {
		t.Errorf("expected type 0x%02X, got 0x%02X", MsgBMBTButtons0, frame.Type())
	}
	if frame.Length() != 0x04 {
		t.Errorf("expected length 0x04, got 0x%02X", frame.Length())
	}
	if frame.Checksum() != 0xDB {
		t.Errorf("expected checksum 0xDB, got 0x%02X", frame.Checksum())
	}
	if frame.Size() != 6 {
		t.Errorf("expected size 6, got %d", frame.Size())
	}
	if frame.Timestamp().IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestNewFrame_EmptyPayload(t *testing.T) {
	frame, err := NewFrame(DevMFL, DevRAD, MsgMFLButtons, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Size() != MinFrameSize {
		t.Errorf("expected size %d, got %d", MinFrameSize, frame.Size())
	}
	if len(frame.Payload()) != 0 {
		t.Errorf("expected empty payload, got % X", frame.Payload())
	}
	if _, ok := frame.DataByte(0); ok {
		t.Error("DataByte(0) should fail on empty payload")
	}
}

func TestNewFrame_MaxPayload(t *testing.T) {
	frame, err := NewFrame(DevRAD, DevGT, MsgScreenText, make([]byte, MaxPayloadSize))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Size() != MaxFrameSize {
		t.Errorf("expected size %d, got %d", MaxFrameSize, frame.Size())
	}
	if frame.Length() != 0xFF {
		t.Errorf("expected length 0xFF, got 0x%02X", frame.Length())
	}

	_, err = NewFrame(DevRAD, DevGT, MsgScreenText, make([]byte, MaxPayloadSize+1))
	if !errors.Is(err, ErrMalformedLength) {
		t.Errorf("expected ErrMalformedLength for oversized payload, got %v", err)
	}
}

func TestParseFrame_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{"too short", []byte{0xF0, 0x04, 0x68}, ErrFrameIncomplete},
		{"shorter than declared", []byte{0xF0, 0x05, 0x68, 0x47, 0x00, 0xDB}, ErrFrameIncomplete},
		{"length below minimum", []byte{0xF0, 0x02, 0x68, 0x47, 0x00}, ErrMalformedLength},
		{"bad checksum", []byte{0xF0, 0x04, 0x68, 0x47, 0x00, 0xDC}, ErrChecksumMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := ParseFrame(tt.raw)
			if frame != nil {
				t.Errorf("expected no frame, got % X", frame.Bytes())
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFrame_ContainsText(t *testing.T) {
	frame, err := NewFrame(DevRAD, DevGT, MsgDisplayText, []byte{0x62, 0x30, 'A', 'U', 'X', ' ', '1'})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !frame.ContainsText("AUX") {
		t.Error("expected payload to contain AUX")
	}
	if frame.ContainsText("TAPE") {
		t.Error("payload should not contain TAPE")
	}
	if !frame.Is(DevRAD, DevGT) {
		t.Error("expected RAD -> GT")
	}
	if b, ok := frame.DataByte(0); !ok || b != LayoutRadioDisplay {
		t.Errorf("expected data byte 0x62, got 0x%02X (%v)", b, ok)
	}
}

// ============================================================
// Accumulator Tests
// ============================================================

func TestAccumulator_MinimumCapacity(t *testing.T) {
	a := NewAccumulator(10)
	if a.Cap() != MaxFrameSize {
		t.Errorf("expected capacity raised to %d, got %d", MaxFrameSize, a.Cap())
	}
}

func TestAccumulator_DiscardAndCompact(t *testing.T) {
	a := NewAccumulator(MaxFrameSize)

	for i := range 200 {
		if err := a.Append(byte(i)); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}
	if n := a.Discard(150); n != 150 {
		t.Fatalf("expected 150 discarded, got %d", n)
	}
	for i := range 200 {
		if err := a.Append(byte(200 + i)); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}

	if a.Len() != 250 {
		t.Fatalf("expected 250 bytes, got %d", a.Len())
	}
	for i, b := range a.Bytes() {
		if b != byte(150+i) {
			t.Fatalf("byte %d: expected 0x%02X, got 0x%02X", i, byte(150+i), b)
		}
	}
}

func TestAccumulator_DiscardBounds(t *testing.T) {
	a := NewAccumulator(MaxFrameSize)
	a.Append(0x01)
	a.Append(0x02)

	if n := a.Discard(10); n != 2 {
		t.Errorf("expected 2 discarded, got %d", n)
	}
	if n := a.Discard(-1); n != 0 {
		t.Errorf("expected 0 discarded, got %d", n)
	}
	if a.Len() != 0 {
		t.Errorf("expected empty accumulator, got %d bytes", a.Len())
	}
}

func TestAccumulator_Overflow(t *testing.T) {
	a := NewAccumulator(MaxFrameSize)
	for i := range MaxFrameSize {
		if err := a.Append(0xFF); err != nil {
			t.Fatalf("unexpected overflow at byte %d", i)
		}
	}

	err := a.Append(0xFF)
	if !errors.Is(err, ErrBufferOverflow) {
		t.Fatalf("expected ErrBufferOverflow, got %v", err)
	}
	if a.Len() != 0 {
		t.Errorf("expected empty accumulator after overflow, got %d bytes", a.Len())
	}

	var fe *FrameError
	if errors.As(err, &fe) && len(fe.Raw) != MaxFrameSize {
		t.Errorf("expected %d dropped bytes, got %d", MaxFrameSize, len(fe.Raw))
	}
}

// ============================================================
// Decoder Tests
// ============================================================

func TestDecoder_ValidFrame(t *testing.T) {
	d := NewDecoder()
	feed(t, d, []byte{0xF0, 0x04, 0x68, 0x47, 0x00, 0xDB})

	frame, err := d.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame == nil {
		t.Fatal("expected frame, got nil")
	}
	if frame.Sender() != DevBMBT || frame.Receiver() != DevRAD || frame.Type() != MsgBMBTButtons0 {
		t.Errorf("unexpected frame % X", frame.Bytes())
	}
	if d.Buffered() != 0 {
		t.Errorf("expected empty buffer, got %d bytes", d.Buffered())
	}

	frame, err = d.Next()
	if frame != nil || err != nil {
		t.Errorf("expected nil, nil on empty buffer, got %v, %v", frame, err)
	}
}

func TestDecoder_ChecksumMismatchConsumesFrame(t *testing.T) {
	d := NewDecoder()
	feed(t, d, []byte{0xF0, 0x04, 0x68, 0x47, 0x00, 0xDC})

	frame, err := d.Next()
	if frame != nil {
		t.Errorf("expected no frame, got % X", frame.Bytes())
	}
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
	if d.Buffered() != 0 {
		t.Errorf("expected whole candidate consumed, %d bytes left", d.Buffered())
	}
}

func TestDecoder_IncompleteKeepsBytes(t *testing.T) {
	d := NewDecoder()

	// Fewer than the minimum
	feed(t, d, []byte{0xF0, 0x04, 0x68})
	if frame, err := d.Next(); frame != nil || err != nil {
		t.Fatalf("expected nil, nil, got %v, %v", frame, err)
	}
	if d.Buffered() != 3 {
		t.Fatalf("expected 3 bytes kept, got %d", d.Buffered())
	}

	// Rest of the frame arrives after the boundary
	feed(t, d, []byte{0x47, 0x00, 0xDB})
	frame, err := d.Next()
	if err != nil || frame == nil {
		t.Fatalf("expected frame, got %v, %v", frame, err)
	}
	if frame.Checksum() != 0xDB {
		t.Errorf("expected checksum 0xDB, got 0x%02X", frame.Checksum())
	}
}

func TestDecoder_ShorterThanDeclared(t *testing.T) {
	d := NewDecoder()
	feed(t, d, []byte{0xF0, 0x05, 0x68, 0x47, 0x00})

	if frame, err := d.Next(); frame != nil || err != nil {
		t.Fatalf("expected nil, nil, got %v, %v", frame, err)
	}
	if d.Buffered() != 5 {
		t.Errorf("expected 5 bytes kept, got %d", d.Buffered())
	}
	if !bytes.Equal(d.GetRawBytes(), []byte{0xF0, 0x05, 0x68, 0x47, 0x00}) {
		t.Errorf("unexpected raw bytes % X", d.GetRawBytes())
	}
}

func TestDecoder_MalformedLength(t *testing.T) {
	d := NewDecoder()
	// Declared total of 3 bytes, followed by a valid frame
	feed(t, d, []byte{0x00, 0x01, 0xAA})
	feed(t, d, []byte{0xF0, 0x04, 0x68, 0x47, 0x00, 0xDB})

	frames, errs := drain(d)
	if len(errs) != 1 || !errors.Is(errs[0], ErrMalformedLength) {
		t.Fatalf("expected one ErrMalformedLength, got %v", errs)
	}
	var fe *FrameError
	if errors.As(errs[0], &fe) && !bytes.Equal(fe.Raw, []byte{0x00, 0x01, 0xAA}) {
		t.Errorf("expected 3 discarded bytes, got % X", fe.Raw)
	}
	if len(frames) != 1 || frames[0].Type() != MsgBMBTButtons0 {
		t.Fatalf("expected the following frame to decode, got %d frames", len(frames))
	}
}

func TestDecoder_BackToBackFrames(t *testing.T) {
	d := NewDecoder()
	first, _ := NewFrame(DevBMBT, DevRAD, MsgBMBTButtons1, []byte{0x06})
	second, _ := NewFrame(DevRAD, DevGT, MsgDisplayText, []byte{0x62, 0x30, 'T', 'A', 'P', 'E'})
	third, _ := NewFrame(DevMFL, DevRAD, MsgMFLButtons2, []byte{0x01})

	feed(t, d, first.Bytes())
	feed(t, d, second.Bytes())
	feed(t, d, third.Bytes())

	frames, errs := drain(d)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	for i, want := range []*Frame{first, second, third} {
		if !bytes.Equal(frames[i].Bytes(), want.Bytes()) {
			t.Errorf("frame %d: expected % X, got % X", i, want.Bytes(), frames[i].Bytes())
		}
	}
}

func TestDecoder_EveryLength(t *testing.T) {
	for length := 3; length <= 255; length++ {
		frame, err := NewFrame(DevRAD, DevGT, MsgScreenText, bytes.Repeat([]byte{byte(length)}, length-3))
		if err != nil {
			t.Fatalf("L=%d: failed to build frame: %v", length, err)
		}
		// Pair it with a frame of the mirrored length
		next, err := NewFrame(DevBMBT, DevRAD, MsgBMBTButtons1, bytes.Repeat([]byte{0x11}, 255-length))
		if err != nil {
			t.Fatalf("L=%d: failed to build second frame: %v", length, err)
		}

		d := NewDecoder()
		feed(t, d, frame.Bytes())
		frames, errs := drain(d)
		if len(errs) != 0 || len(frames) != 1 {
			t.Fatalf("L=%d: expected one frame, got %d frames, errors %v", length, len(frames), errs)
		}
		if frames[0].Size() != length+2 || d.Buffered() != 0 {
			t.Errorf("L=%d: expected %d bytes and empty buffer, got %d bytes, %d left", length, length+2, frames[0].Size(), d.Buffered())
		}

		feed(t, d, frame.Bytes())
		feed(t, d, next.Bytes())
		frames, errs = drain(d)
		if len(errs) != 0 || len(frames) != 2 {
			t.Fatalf("L=%d: expected two frames, got %d frames, errors %v", length, len(frames), errs)
		}
		if !bytes.Equal(frames[0].Bytes(), frame.Bytes()) || !bytes.Equal(frames[1].Bytes(), next.Bytes()) {
			t.Errorf("L=%d: frames out of order", length)
		}
		if d.Buffered() != 0 {
			t.Errorf("L=%d: %d bytes left over", length, d.Buffered())
		}
	}
}

func TestDecoder_Flush(t *testing.T) {
	d := NewDecoder()
	if err := d.Flush(); err != nil {
		t.Errorf("expected nil on empty buffer, got %v", err)
	}

	// Stray byte shifts the length field onto the sender of a real frame
	feed(t, d, []byte{0x00, 0xF0, 0x04, 0x68, 0x47, 0x00, 0xDB})
	if frame, err := d.Next(); frame != nil || err != nil {
		t.Fatalf("expected nil, nil, got %v, %v", frame, err)
	}

	err := d.Flush()
	if !errors.Is(err, ErrFrameIncomplete) {
		t.Fatalf("expected ErrFrameIncomplete, got %v", err)
	}
	var fe *FrameError
	if !errors.As(err, &fe) || len(fe.Raw) != 7 || fe.Length != 0xF0+HeaderSize {
		t.Errorf("unexpected flush error %+v", fe)
	}
	if err.Error() != "frame incomplete: have 7 of 242 bytes" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if d.Buffered() != 0 {
		t.Errorf("expected empty buffer after flush, got %d", d.Buffered())
	}

	feed(t, d, []byte{0xF0, 0x04, 0x68, 0x47, 0x00, 0xDB})
	if frame, err := d.Next(); err != nil || frame == nil {
		t.Errorf("expected frame after flush, got %v, %v", frame, err)
	}
}

func TestDecoder_FlushSingleByte(t *testing.T) {
	d := NewDecoder()
	feed(t, d, []byte{0x55})

	err := d.Flush()
	if err == nil || err.Error() != "frame incomplete: 1 stray bytes" {
		t.Errorf("unexpected flush error %v", err)
	}
}

func TestDecoder_MaxSizeFrame(t *testing.T) {
	d := NewDecoderSize(MaxFrameSize)
	frame, _ := NewFrame(DevRAD, DevGT, MsgScreenText, bytes.Repeat([]byte{'A'}, MaxPayloadSize))
	feed(t, d, frame.Bytes())

	got, err := d.Next()
	if err != nil || got == nil {
		t.Fatalf("expected max size frame, got %v, %v", got, err)
	}
	if got.Size() != MaxFrameSize {
		t.Errorf("expected %d bytes, got %d", MaxFrameSize, got.Size())
	}
}

func TestDecoder_OverflowOnce(t *testing.T) {
	d := NewDecoderSize(MaxFrameSize)

	overflows := 0
	for range d.Capacity() + 1 {
		if err := d.AppendByte(0xFF); err != nil {
			if !errors.Is(err, ErrBufferOverflow) {
				t.Fatalf("unexpected error: %v", err)
			}
			overflows++
		}
	}

	if overflows != 1 {
		t.Errorf("expected exactly one overflow, got %d", overflows)
	}
	if d.Buffered() != 0 {
		t.Errorf("expected empty buffer after overflow, got %d bytes", d.Buffered())
	}
}

func TestDecoder_Reset(t *testing.T) {
	d := NewDecoder()
	feed(t, d, []byte{0xF0, 0x04, 0x68})
	d.Reset()
	if d.Buffered() != 0 {
		t.Errorf("expected empty buffer after reset, got %d", d.Buffered())
	}
	if d.Capacity() != DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultCapacity, d.Capacity())
	}
}

// ============================================================
// Formatter Tests
// ============================================================

func TestNames(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{DeviceName(DevRAD), "Radio"},
		{DeviceName(DevBMBT), "On-board monitor operating part"},
		{DeviceName(0x01), "0x01"},
		{MessageName(MsgLCDClear), "LCD Clear"},
		{MessageName(MsgMFLButtons2), "MFL buttons 2"},
		{MessageName(0xFC), "0xFC"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, tt.got)
		}
	}
}

func TestFormatHex(t *testing.T) {
	tests := []struct {
		raw  []byte
		want string
	}{
		{[]byte{0x50, 0x03, 0x68, 0x32, 0x09}, "50 03 68 32 09"},
		{[]byte{0xF0, 0x04, 0x68, 0x47, 0x00, 0xDB}, "f0 04 68 47 00 db"},
		{[]byte{0x68, 0x05, 0x3B, 0x23, 0x62, 0x41, 0x56}, "68 05 3b 23 6241 56"},
	}
	for _, tt := range tests {
		if got := FormatHex(tt.raw); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestFormatFrame(t *testing.T) {
	frame, _ := NewFrame(DevBMBT, DevRAD, MsgBMBTButtons0, []byte{0x00})
	out := FormatFrame(frame)

	if !strings.Contains(out, "= On-board monitor operating part SENT BMBT buttons TO Radio") {
		t.Errorf("unexpected format: %s", out)
	}
	if !strings.HasSuffix(out, " DATA: 0x00") {
		t.Errorf("expected data section, got: %s", out)
	}
}

func TestFormatFrame_TextPayload(t *testing.T) {
	frame, _ := NewFrame(DevRAD, DevGT, MsgDisplayText, []byte{0x10, 'A', 'U', 'X'})
	out := FormatFrame(frame)
	if !strings.HasSuffix(out, "DATA: 0x10 AUX") {
		t.Errorf("expected text rendering, got: %s", out)
	}
}

func TestFormatFrame_CassetteHex(t *testing.T) {
	frame, _ := NewFrame(DevRAD, DevBMBT, MsgCassetteStatus, []byte{0x41, 0xFF})
	if got := FormatPayload(frame); got != "0x41 0xff" {
		t.Errorf("expected hex rendering, got %q", got)
	}
}

func TestFormatFrameWith_Describer(t *testing.T) {
	frame, _ := NewFrame(DevBMBT, DevRAD, MsgBMBTButtons1, []byte{0x06})
	out := FormatFrameWith(frame, func(*Frame) string { return "button RadioPower pressed" })

	if !strings.Contains(out, "SENT button RadioPower pressed TO Radio") {
		t.Errorf("expected description, got: %s", out)
	}
	if strings.Contains(out, "DATA:") {
		t.Errorf("described frame should not carry DATA: %s", out)
	}

	// Empty description falls back to the message name
	out = FormatFrameWith(frame, func(*Frame) string { return "" })
	if !strings.Contains(out, "SENT BMBT buttons TO Radio DATA:") {
		t.Errorf("expected fallback, got: %s", out)
	}
}

// ============================================================
// Statistics Tests
// ============================================================

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()
	frame, _ := NewFrame(DevBMBT, DevRAD, MsgBMBTButtons0, []byte{0x00})

	s.AddBytes(6)
	s.Update(frame, nil)
	s.Update(nil, ValidateChecksum([]byte{0xF0, 0x04, 0x68, 0x47, 0x00, 0xDC}))
	s.Update(nil, &FrameError{Err: ErrMalformedLength, Raw: []byte{0x00, 0x01, 0xAA}})
	s.Update(nil, &FrameError{Err: ErrBufferOverflow, Raw: make([]byte, 10)})
	s.Update(nil, &FrameError{Err: ErrFrameIncomplete, Raw: []byte{0x55}})
	s.Update(nil, nil)

	if s.BytesReceived != 6 {
		t.Errorf("expected 6 bytes, got %d", s.BytesReceived)
	}
	if s.TotalFrames != 4 {
		t.Errorf("expected 4 candidates, got %d", s.TotalFrames)
	}
	if s.ValidFrames != 1 || s.ChecksumErrors != 1 || s.MalformedLengths != 1 || s.IncompleteFrames != 1 || s.BufferOverflows != 1 {
		t.Errorf("unexpected counters: %+v", s)
	}
	if s.BytesDiscarded != 6+3+10+1 {
		t.Errorf("expected 20 discarded bytes, got %d", s.BytesDiscarded)
	}
	if s.Errors() != 4 {
		t.Errorf("expected 4 errors, got %d", s.Errors())
	}

	out := s.String()
	if !strings.Contains(out, "Checksum Errors:") || !strings.Contains(out, "Overflows:") || !strings.Contains(out, "Incomplete:") {
		t.Errorf("summary missing error lines:\n%s", out)
	}

	s.Reset()
	if s.TotalFrames != 0 || s.BytesReceived != 0 {
		t.Errorf("expected counters cleared after reset: %+v", s)
	}
}
