// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ibus

// CalculateChecksum computes the IBus XOR checksum for the given data
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// ValidateChecksum checks that the last byte of candidate equals the XOR of
// all bytes before it
func ValidateChecksum(candidate []byte) error {
	if len(candidate) == 0 {
		return &FrameError{Err: ErrMalformedLength}
	}
	last := len(candidate) - 1
	expected := CalculateChecksum(candidate[:last])
	if expected != candidate[last] {
		return &FrameError{
			Err:      ErrChecksumMismatch,
			Raw:      candidate,
			Length:   len(candidate),
			Expected: expected,
			Got:      candidate[last],
		}
	}
	return nil
}
