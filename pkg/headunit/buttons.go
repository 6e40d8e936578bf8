// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package headunit

import (
	"errors"
	"fmt"
)

// ErrUnmappedButton is reported for button codes without an identity
var ErrUnmappedButton = errors.New("unmapped button code")

// ButtonID identifies a head-unit button. Values 0x00-0x34 are the raw
// codes of the primary button bank; 0x35-0x39 are synthetic identities for
// controls reported by other messages. The identity table spans 0x00-0x39.
type ButtonID uint8

// Primary bank
const (
	ButtonArrowRight  ButtonID = 0x00
	Button2           ButtonID = 0x01
	Button4           ButtonID = 0x02
	Button6           ButtonID = 0x03
	ButtonTone        ButtonID = 0x04
	ButtonMenuKnob    ButtonID = 0x05 // knob push
	ButtonRadioPower  ButtonID = 0x06
	ButtonClock       ButtonID = 0x07
	ButtonTelephone   ButtonID = 0x08
	ButtonArrowLeft   ButtonID = 0x10
	Button1           ButtonID = 0x11
	Button3           ButtonID = 0x12
	Button5           ButtonID = 0x13
	ButtonReversePlay ButtonID = 0x14 // small arrows next to the clock button
	ButtonAM          ButtonID = 0x21
	ButtonRDS         ButtonID = 0x22
	ButtonMode        ButtonID = 0x23
	ButtonEject       ButtonID = 0x24
	ButtonSwitch      ButtonID = 0x30 // icon next to the mode button
	ButtonFM          ButtonID = 0x31
	ButtonTP          ButtonID = 0x32
	ButtonDolby       ButtonID = 0x33
	ButtonMenu        ButtonID = 0x34
)

// Synthetic identities
const (
	ButtonKnobClockwise        ButtonID = 0x35
	ButtonKnobCounterClockwise ButtonID = 0x36
	ButtonSelectInTape         ButtonID = 0x37
	ButtonChannelUp            ButtonID = 0x38
	ButtonChannelDown          ButtonID = 0x39

	// ButtonUnmapped is the sentinel for codes without an identity
	ButtonUnmapped ButtonID = 0xFF
)

// Raw payload bits
const (
	phaseLongPressBit = 0x40
	phaseReleaseBit   = 0x80

	knobClockwiseBit = 0x80
	knobCountMask    = 0x7F

	selectInTapeCode = 0x0F // second data byte of the bank 0 message

	mfl2ReleaseBit   = 0x20
	mfl2ChannelUp    = 0x01
	mfl2ChannelDown  = 0x08
	mfl2AnswerButton = 0x80
)

type buttonKind uint8

const (
	kindUnmapped buttonKind = iota
	kindAction              // forwarded as a key event
	kindReserved            // drives state or diagnostics only
)

type buttonInfo struct {
	name string
	kind buttonKind
}

// buttonTable is indexed by ButtonID; absent entries are unmapped
var buttonTable = [...]buttonInfo{
	ButtonArrowRight:           {"ArrowRight", kindAction},
	Button2:                    {"Button2", kindAction},
	Button4:                    {"Button4", kindAction},
	Button6:                    {"Button6", kindAction},
	ButtonTone:                 {"Tone", kindReserved},
	ButtonMenuKnob:             {"MenuKnob", kindAction},
	ButtonRadioPower:           {"RadioPower", kindReserved},
	ButtonClock:                {"Clock", kindAction},
	ButtonTelephone:            {"Telephone", kindAction},
	ButtonArrowLeft:            {"ArrowLeft", kindAction},
	Button1:                    {"Button1", kindAction},
	Button3:                    {"Button3", kindAction},
	Button5:                    {"Button5", kindAction},
	ButtonReversePlay:          {"ReversePlay", kindAction},
	ButtonAM:                   {"AM", kindReserved},
	ButtonRDS:                  {"RDS", kindReserved},
	ButtonMode:                 {"Mode", kindReserved},
	ButtonEject:                {"Eject", kindReserved},
	ButtonSwitch:               {"Switch", kindReserved},
	ButtonFM:                   {"FM", kindReserved},
	ButtonTP:                   {"TP", kindReserved},
	ButtonDolby:                {"Dolby", kindReserved},
	ButtonMenu:                 {"Menu", kindReserved},
	ButtonKnobClockwise:        {"KnobClockwise", kindAction},
	ButtonKnobCounterClockwise: {"KnobCounterClockwise", kindAction},
	ButtonSelectInTape:         {"SelectInTape", kindAction},
	ButtonChannelUp:            {"ChannelUp", kindAction},
	ButtonChannelDown:          {"ChannelDown", kindAction},
}

func (b ButtonID) info() buttonInfo {
	if int(b) < len(buttonTable) {
		return buttonTable[b]
	}
	return buttonInfo{}
}

// String returns the button name, or the raw code for unmapped codes
func (b ButtonID) String() string {
	if b == ButtonUnmapped {
		return "Unmapped"
	}
	if name := b.info().name; name != "" {
		return name
	}
	return fmt.Sprintf("0x%02X", uint8(b))
}

// Mapped reports whether b has an identity
func (b ButtonID) Mapped() bool {
	return b.info().kind != kindUnmapped
}

// Reserved reports whether b is recognised but never forwarded as a key
func (b ButtonID) Reserved() bool {
	return b.info().kind == kindReserved
}

// Forwardable reports whether b may be forwarded to a key sink
func (b ButtonID) Forwardable() bool {
	return b.info().kind == kindAction
}

// LookupButton maps a code from the identity table range to its identity
func LookupButton(code byte) (ButtonID, error) {
	id := ButtonID(code)
	if !id.Mapped() {
		return ButtonUnmapped, fmt.Errorf("%w: 0x%02X", ErrUnmappedButton, code)
	}
	return id, nil
}

// Phase is the stage of a button interaction
type Phase uint8

const (
	PhasePress Phase = iota
	PhaseLongPress
	PhaseRelease
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhasePress:
		return "pressed"
	case PhaseLongPress:
		return "pressed long"
	case PhaseRelease:
		return "released"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Value returns the Linux input event value for the phase:
// 1 press, 2 autorepeat, 0 release
func (p Phase) Value() int32 {
	switch p {
	case PhaseLongPress:
		return 2
	case PhaseRelease:
		return 0
	default:
		return 1
	}
}

// ButtonEvent is one decoded button interaction
type ButtonEvent struct {
	Button ButtonID
	Phase  Phase
	Code   byte // raw code after phase bits were cleared
}

// String renders the event for trace output
func (ev ButtonEvent) String() string {
	if ev.Button == ButtonUnmapped {
		return fmt.Sprintf("button 0x%02X %s", ev.Code, ev.Phase)
	}
	return fmt.Sprintf("button %s %s", ev.Button, ev.Phase)
}

// SplitPhase extracts the phase bits from a raw button byte. The long press
// bit takes precedence over the release bit.
func SplitPhase(raw byte) (byte, Phase) {
	if raw&phaseLongPressBit != 0 {
		return raw &^ phaseLongPressBit, PhaseLongPress
	}
	if raw&phaseReleaseBit != 0 {
		return raw &^ phaseReleaseBit, PhaseRelease
	}
	return raw, PhasePress
}

// DecodePrimary decodes a primary bank byte. Unknown codes decode to
// ButtonUnmapped.
func DecodePrimary(raw byte) ButtonEvent {
	code, phase := SplitPhase(raw)
	id, err := LookupButton(code)
	if err != nil {
		id = ButtonUnmapped
	}
	return ButtonEvent{Button: id, Phase: phase, Code: code}
}

// DecodeSelect decodes the second data byte of a bank 0 message. Only the
// tape mode select code has an identity.
func DecodeSelect(raw byte) ButtonEvent {
	code, phase := SplitPhase(raw)
	if code == selectInTapeCode {
		return ButtonEvent{Button: ButtonSelectInTape, Phase: phase, Code: code}
	}
	return ButtonEvent{Button: ButtonUnmapped, Phase: phase, Code: code}
}

// DecodeKnob decodes a knob rotation byte into one press and release pair
// per detent
func DecodeKnob(raw byte) []ButtonEvent {
	id := ButtonKnobCounterClockwise
	if raw&knobClockwiseBit != 0 {
		id = ButtonKnobClockwise
	}
	count := int(raw & knobCountMask)

	events := make([]ButtonEvent, 0, count*2)
	for range count {
		events = append(events,
			ButtonEvent{Button: id, Phase: PhasePress, Code: byte(id)},
			ButtonEvent{Button: id, Phase: PhaseRelease, Code: byte(id)},
		)
	}
	return events
}

// KnobTurn returns the direction and detent count of a knob rotation byte
func KnobTurn(raw byte) (clockwise bool, count int) {
	return raw&knobClockwiseBit != 0, int(raw & knobCountMask)
}

// DecodeMFL2 decodes a steering wheel channel byte. ok is false when neither
// channel bit is set.
func DecodeMFL2(raw byte) (ev ButtonEvent, ok bool) {
	phase := PhasePress
	if raw&mfl2ReleaseBit != 0 {
		raw &^= mfl2ReleaseBit
		phase = PhaseRelease
	}

	switch {
	case raw&mfl2ChannelUp != 0:
		return ButtonEvent{Button: ButtonChannelUp, Phase: phase, Code: byte(ButtonChannelUp)}, true
	case raw&mfl2ChannelDown != 0:
		return ButtonEvent{Button: ButtonChannelDown, Phase: phase, Code: byte(ButtonChannelDown)}, true
	}
	return ButtonEvent{}, false
}

// MFL2Answer reports whether the answer button bit is set
func MFL2Answer(raw byte) bool {
	return raw&mfl2AnswerButton != 0
}

// Volume is a decoded volume change
type Volume struct {
	Up    bool
	Steps int // 0-15
}

// String renders the volume step for trace output
func (v Volume) String() string {
	if v.Up {
		return fmt.Sprintf("volume up %d steps", v.Steps)
	}
	return fmt.Sprintf("volume down %d steps", v.Steps)
}

// DecodeVolume decodes a volume bank byte: the high nibble is the step
// count, a non-zero low nibble means up
func DecodeVolume(raw byte) Volume {
	return Volume{Up: raw&0x0F != 0, Steps: int(raw >> 4)}
}
