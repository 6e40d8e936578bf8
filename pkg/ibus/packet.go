// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ibus

import (
	"bytes"
	"time"
)

// Frame represents a validated IBus frame
type Frame struct {
	sender    byte
	length    byte
	receiver  byte
	msgType   byte
	payload   []byte
	checksum  byte
	raw       []byte
	timestamp time.Time
}

// NewFrame builds a frame from its fields and computes the length byte and
// checksum. The payload may be empty but not longer than MaxPayloadSize.
func NewFrame(sender, receiver, msgType byte, payload []byte) (*Frame, error) {
	if len(payload) > MaxPayloadSize {
		return nil, &FrameError{Err: ErrMalformedLength, Length: len(payload) + MinFrameSize}
	}

	raw := make([]byte, 0, len(payload)+MinFrameSize)
	raw = append(raw, sender, byte(len(payload)+MinFrameSize-HeaderSize), receiver, msgType)
	raw = append(raw, payload...)
	raw = append(raw, CalculateChecksum(raw))

	return ParseFrame(raw)
}

// ParseFrame validates a complete candidate and returns the frame it holds.
// The candidate must be exactly one frame long as declared by its length byte.
func ParseFrame(raw []byte) (*Frame, error) {
	if len(raw) < MinFrameSize {
		return nil, &FrameError{Err: ErrFrameIncomplete, Raw: raw, Length: MinFrameSize}
	}

	declared := int(raw[PosLength]) + HeaderSize
	if declared < MinFrameSize {
		return nil, &FrameError{Err: ErrMalformedLength, Raw: raw, Length: declared}
	}
	if len(raw) < declared {
		return nil, &FrameError{Err: ErrFrameIncomplete, Raw: raw, Length: declared}
	}
	raw = raw[:declared]

	if err := ValidateChecksum(raw); err != nil {
		return nil, err
	}

	frame := &Frame{
		sender:    raw[PosSender],
		length:    raw[PosLength],
		receiver:  raw[PosReceiver],
		msgType:   raw[PosMessage],
		checksum:  raw[declared-1],
		raw:       bytes.Clone(raw),
		timestamp: time.Now(),
	}
	frame.payload = frame.raw[PosDataStart : declared-1]
	return frame, nil
}

// Sender returns the transmitting device id
func (f *Frame) Sender() byte {
	return f.sender
}

// Length returns the length byte as transmitted
func (f *Frame) Length() byte {
	return f.length
}

// Receiver returns the destination device id
func (f *Frame) Receiver() byte {
	return f.receiver
}

// Type returns the message type
func (f *Frame) Type() byte {
	return f.msgType
}

// Payload returns the data bytes between the message type and the checksum
func (f *Frame) Payload() []byte {
	return f.payload
}

// Checksum returns the frame's checksum byte
func (f *Frame) Checksum() byte {
	return f.checksum
}

// Bytes returns the complete frame as it appeared on the bus
func (f *Frame) Bytes() []byte {
	return f.raw
}

// Size returns the total frame size in bytes
func (f *Frame) Size() int {
	return len(f.raw)
}

// Timestamp returns the frame's decode timestamp
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}

// SetTimestamp overrides the decode timestamp, used when replaying captures
func (f *Frame) SetTimestamp(t time.Time) {
	f.timestamp = t
}

// DataByte returns payload byte i, or false if the payload is shorter
func (f *Frame) DataByte(i int) (byte, bool) {
	if i < 0 || i >= len(f.payload) {
		return 0, false
	}
	return f.payload[i], true
}

// Is reports whether the frame travels from sender to receiver
func (f *Frame) Is(sender, receiver byte) bool {
	return f.sender == sender && f.receiver == receiver
}

// ContainsText reports whether text appears anywhere in the payload
func (f *Frame) ContainsText(text string) bool {
	return bytes.Contains(f.payload, []byte(text))
}
