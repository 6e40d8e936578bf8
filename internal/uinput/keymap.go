// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package uinput injects head-unit buttons as Linux key events.
package uinput

import (
	"slices"

	"github.com/Thermoquad/ibusd/pkg/headunit"
)

// Linux input event types and codes
const (
	EvSyn     = 0x00
	EvKey     = 0x01
	SynReport = 0x00

	KeyEsc       = 1
	Key4         = 5
	Key5         = 6
	Key6         = 7
	KeyBackspace = 14
	KeyEnter     = 28
	KeySpace     = 57
	KeyUp        = 103
	KeyLeft      = 105
	KeyRight     = 106
	KeyDown      = 108
	KeyMenu      = 139
	KeySetup     = 141
)

var keyMap = map[headunit.ButtonID]uint16{
	headunit.ButtonArrowRight:           KeyUp,
	headunit.Button2:                    KeyBackspace,
	headunit.Button4:                    Key4,
	headunit.Button6:                    Key6,
	headunit.ButtonMenuKnob:             KeyEnter,
	headunit.ButtonClock:                KeySetup,
	headunit.ButtonTelephone:            KeySetup,
	headunit.ButtonArrowLeft:            KeyDown,
	headunit.Button1:                    KeyMenu,
	headunit.Button3:                    KeySpace,
	headunit.Button5:                    Key5,
	headunit.ButtonReversePlay:          KeySetup,
	headunit.ButtonKnobClockwise:        KeyRight,
	headunit.ButtonKnobCounterClockwise: KeyLeft,
	headunit.ButtonSelectInTape:         KeyEsc,
	headunit.ButtonChannelUp:            KeyUp,
	headunit.ButtonChannelDown:          KeyDown,
}

// KeyCode returns the key a button is injected as
func KeyCode(b headunit.ButtonID) (uint16, bool) {
	code, ok := keyMap[b]
	return code, ok
}

// KeyCodes returns every mapped key once, in ascending order
func KeyCodes() []uint16 {
	codes := make([]uint16, 0, len(keyMap))
	for _, code := range keyMap {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return slices.Compact(codes)
}
