// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build linux

package uinput

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeUserDev(t *testing.T) {
	raw := encodeUserDev("BMW IBUS")

	assert.Len(t, raw, 1116)
	assert.Equal(t, "BMW IBUS", string(raw[:8]))
	assert.Zero(t, raw[8])
	assert.Equal(t, uint16(busRS232), binary.NativeEndian.Uint16(raw[80:]))
	assert.Equal(t, uint16(0x0100), binary.NativeEndian.Uint16(raw[86:]))
}

func TestEncodeUserDev_TruncatesName(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'x'
	}
	raw := encodeUserDev(string(long))

	assert.Len(t, raw, 1116)
	assert.Zero(t, raw[maxNameSize-1], "name stays NUL terminated")
}

func TestIoctlNumbers(t *testing.T) {
	assert.Equal(t, uint(0x5501), uiDevCreate)
	assert.Equal(t, uint(0x5502), uiDevDestroy)
	assert.Equal(t, uint(0x40045564), uiSetEvBit)
	assert.Equal(t, uint(0x40045565), uiSetKeyBit)
}
