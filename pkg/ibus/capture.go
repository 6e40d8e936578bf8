// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ibus

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Capture files are a CBOR sequence of [record_type, payload_map] arrays.
// The first record is a header; every following record is one chunk of bytes
// as returned by a single serial read.
const (
	RecordHeader = 0
	RecordChunk  = 1
)

// Payload map keys
const (
	keyHeaderVersion = 0
	keyHeaderBaud    = 1
	keyHeaderStart   = 2

	keyChunkOffset = 0
	keyChunkData   = 1
)

// CaptureVersion is the capture file format version
const CaptureVersion = 1

// CaptureHeader describes a capture file
type CaptureHeader struct {
	Version  uint64
	BaudRate int
	Start    time.Time
}

// Chunk is one recorded read
type Chunk struct {
	At   time.Time
	Data []byte
}

// CaptureWriter writes a capture file
type CaptureWriter struct {
	enc    *cbor.Encoder
	header CaptureHeader
}

// NewCaptureWriter writes the header record and returns a writer for chunks
func NewCaptureWriter(w io.Writer, baudRate int, start time.Time) (*CaptureWriter, error) {
	cw := &CaptureWriter{
		enc: cbor.NewEncoder(w),
		header: CaptureHeader{
			Version:  CaptureVersion,
			BaudRate: baudRate,
			Start:    start,
		},
	}

	header := []interface{}{
		RecordHeader,
		map[int]interface{}{
			keyHeaderVersion: uint64(CaptureVersion),
			keyHeaderBaud:    uint64(baudRate),
			keyHeaderStart:   start.UnixNano(),
		},
	}
	if err := cw.enc.Encode(header); err != nil {
		return nil, fmt.Errorf("failed to write capture header: %w", err)
	}
	return cw, nil
}

// Header returns the header written at creation
func (cw *CaptureWriter) Header() CaptureHeader {
	return cw.header
}

// Write records one chunk received at the given time
func (cw *CaptureWriter) Write(chunk []byte, at time.Time) error {
	if chunk == nil {
		chunk = []byte{}
	}
	record := []interface{}{
		RecordChunk,
		map[int]interface{}{
			keyChunkOffset: at.Sub(cw.header.Start).Nanoseconds(),
			keyChunkData:   chunk,
		},
	}
	if err := cw.enc.Encode(record); err != nil {
		return fmt.Errorf("failed to write capture chunk: %w", err)
	}
	return nil
}

// CaptureReader reads a capture file
type CaptureReader struct {
	dec    *cbor.Decoder
	header CaptureHeader
}

// NewCaptureReader reads and validates the header record
func NewCaptureReader(r io.Reader) (*CaptureReader, error) {
	cr := &CaptureReader{dec: cbor.NewDecoder(r)}

	recordType, payload, err := cr.readRecord()
	if err != nil {
		return nil, fmt.Errorf("failed to read capture header: %w", err)
	}
	if recordType != RecordHeader {
		return nil, fmt.Errorf("expected header record, got type %d", recordType)
	}

	version, ok := getMapUint(payload, keyHeaderVersion)
	if !ok || version != CaptureVersion {
		return nil, fmt.Errorf("unsupported capture version %d", version)
	}
	baud, _ := getMapUint(payload, keyHeaderBaud)
	start, _ := getMapInt(payload, keyHeaderStart)

	cr.header = CaptureHeader{
		Version:  version,
		BaudRate: int(baud),
		Start:    time.Unix(0, start),
	}
	return cr, nil
}

// Header returns the capture header
func (cr *CaptureReader) Header() CaptureHeader {
	return cr.header
}

// Next returns the next chunk, or io.EOF at the end of the capture
func (cr *CaptureReader) Next() (Chunk, error) {
	for {
		recordType, payload, err := cr.readRecord()
		if err != nil {
			return Chunk{}, err
		}
		if recordType != RecordChunk {
			// Unknown record types are skipped
			continue
		}

		offset, ok := getMapInt(payload, keyChunkOffset)
		if !ok {
			return Chunk{}, fmt.Errorf("chunk record missing offset")
		}
		data, ok := getMapBytes(payload, keyChunkData)
		if !ok {
			return Chunk{}, fmt.Errorf("chunk record missing data")
		}
		return Chunk{
			At:   cr.header.Start.Add(time.Duration(offset)),
			Data: data,
		}, nil
	}
}

// readRecord decodes one [record_type, payload_map] array
func (cr *CaptureReader) readRecord() (uint8, map[int]interface{}, error) {
	var msg []interface{}
	if err := cr.dec.Decode(&msg); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil, io.EOF
		}
		return 0, nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}

	if len(msg) != 2 {
		return 0, nil, fmt.Errorf("expected 2-element array, got %d elements", len(msg))
	}

	var recordType uint8
	switch v := msg[0].(type) {
	case uint64:
		if v > 255 {
			return 0, nil, fmt.Errorf("record type out of range: %d", v)
		}
		recordType = uint8(v)
	default:
		return 0, nil, fmt.Errorf("expected uint for record type, got %T", msg[0])
	}

	if msg[1] == nil {
		return recordType, nil, nil
	}

	raw, ok := msg[1].(map[interface{}]interface{})
	if !ok {
		return 0, nil, fmt.Errorf("expected map or nil for payload, got %T", msg[1])
	}
	payload := make(map[int]interface{}, len(raw))
	for key, val := range raw {
		switch k := key.(type) {
		case uint64:
			payload[int(k)] = val
		case int64:
			payload[int(k)] = val
		default:
			return 0, nil, fmt.Errorf("expected integer map key, got %T", key)
		}
	}
	return recordType, payload, nil
}

func getMapUint(m map[int]interface{}, key int) (uint64, bool) {
	switch val := m[key].(type) {
	case uint64:
		return val, true
	case int64:
		if val >= 0 {
			return uint64(val), true
		}
	}
	return 0, false
}

func getMapInt(m map[int]interface{}, key int) (int64, bool) {
	switch val := m[key].(type) {
	case int64:
		return val, true
	case uint64:
		return int64(val), true
	}
	return 0, false
}

func getMapBytes(m map[int]interface{}, key int) ([]byte, bool) {
	val, ok := m[key].([]byte)
	return val, ok
}
