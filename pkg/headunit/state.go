// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package headunit

import (
	"strings"

	"github.com/Thermoquad/ibusd/pkg/ibus"
)

// Mode is the head-unit operating mode
type Mode uint8

const (
	ModeUnknown Mode = iota
	ModePowerOff
	ModeMenu // display shows a menu, audio stays on the previous source
	ModeFM
	ModeTape
	ModeAux
	ModeCDChanger
)

var modeNames = [...]string{
	ModeUnknown:   "UNKNOWN",
	ModePowerOff:  "POWEROFF",
	ModeMenu:      "MENU",
	ModeFM:        "FM",
	ModeTape:      "TAPE",
	ModeAux:       "AUX",
	ModeCDChanger: "CDCHANGER",
}

// String returns the mode name
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "INVALID"
}

// HijackTarget is the mode in which buttons and the video line are taken over
type HijackTarget uint8

const (
	HijackNone HijackTarget = iota
	HijackTape
	HijackAux
)

// ParseHijackTarget parses TAPE or AUX; anything else disables hijacking
func ParseHijackTarget(s string) HijackTarget {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TAPE":
		return HijackTape
	case "AUX":
		return HijackAux
	default:
		return HijackNone
	}
}

// Mode returns the operating mode the target corresponds to
func (h HijackTarget) Mode() (Mode, bool) {
	switch h {
	case HijackTape:
		return ModeTape, true
	case HijackAux:
		return ModeAux, true
	default:
		return ModeUnknown, false
	}
}

// Matches reports whether the gate opens in mode m
func (h HijackTarget) Matches(m Mode) bool {
	target, ok := h.Mode()
	return ok && target == m
}

// String returns the configuration token for the target
func (h HijackTarget) String() string {
	switch h {
	case HijackTape:
		return "TAPE"
	case HijackAux:
		return "AUX"
	default:
		return "NONE"
	}
}

// Screen text tokens that identify the FM source
var fmTokens = []string{"RDS", "FM", "REG", "MWA"}

// StateMachine tracks the head-unit operating mode from radio display traffic
type StateMachine struct {
	mode Mode
}

// NewStateMachine creates a state machine in ModeUnknown
func NewStateMachine() *StateMachine {
	return &StateMachine{mode: ModeUnknown}
}

// Mode returns the current mode
func (sm *StateMachine) Mode() Mode {
	return sm.mode
}

// Transition moves to mode to. It returns false for a self-transition.
func (sm *StateMachine) Transition(to Mode) bool {
	if sm.mode == to {
		return false
	}
	sm.mode = to
	return true
}

// RequestedMode returns the mode a frame asks for, or false if the frame
// does not qualify. Only radio to graphics driver frames qualify.
func RequestedMode(f *ibus.Frame) (Mode, bool) {
	if !f.Is(ibus.DevRAD, ibus.DevGT) {
		return ModeUnknown, false
	}

	switch f.Type() {
	case ibus.MsgDisplayText:
		if layout, ok := f.DataByte(0); !ok || layout != ibus.LayoutRadioDisplay {
			return ModeUnknown, false
		}
		if f.ContainsText("AUX") {
			return ModeAux, true
		}
		if f.ContainsText("TAPE") {
			return ModeTape, true
		}

	case ibus.MsgScreenText:
		if layout, ok := f.DataByte(0); !ok || layout != ibus.LayoutRadioDisplay {
			return ModeUnknown, false
		}
		for _, token := range fmTokens {
			if f.ContainsText(token) {
				return ModeFM, true
			}
		}

	case ibus.MsgLCDClear:
		if len(f.Payload()) != 1 {
			return ModeUnknown, false
		}
		switch f.Payload()[0] {
		case ibus.LCDNoDisplayRequired, ibus.LCDRadioDisplayOff:
			return ModeMenu, true
		}
	}

	return ModeUnknown, false
}

// Evaluate applies the transition rules to a frame. It returns the new mode
// and whether the mode changed.
func (sm *StateMachine) Evaluate(f *ibus.Frame) (Mode, bool) {
	to, ok := RequestedMode(f)
	if !ok {
		return sm.mode, false
	}
	return to, sm.Transition(to)
}
