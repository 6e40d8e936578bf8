// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package headunit

// KeySink receives forwarded button events
type KeySink interface {
	EmitKey(ev ButtonEvent) error
}

// VideoLine drives the auxiliary video input line
type VideoLine interface {
	SetVideoEnabled(enabled bool) error
}

// NopKeySink drops every event
type NopKeySink struct{}

// EmitKey implements KeySink
func (NopKeySink) EmitKey(ButtonEvent) error { return nil }

// NopVideoLine ignores every change
type NopVideoLine struct{}

// SetVideoEnabled implements VideoLine
func (NopVideoLine) SetVideoEnabled(bool) error { return nil }

// Gate decides whether key events and the video line are active. It is
// enabled exactly when the current mode equals the hijack target.
type Gate struct {
	target  HijackTarget
	enabled bool
	keys    KeySink
	video   VideoLine
}

// NewGate creates a closed gate
func NewGate(target HijackTarget, keys KeySink, video VideoLine) *Gate {
	if keys == nil {
		keys = NopKeySink{}
	}
	if video == nil {
		video = NopVideoLine{}
	}
	return &Gate{target: target, keys: keys, video: video}
}

// Target returns the configured hijack target
func (g *Gate) Target() HijackTarget {
	return g.target
}

// Enabled reports whether the gate is open
func (g *Gate) Enabled() bool {
	return g.enabled
}

// Update re-derives the gate for mode m and drives the video line if the
// decision changed
func (g *Gate) Update(m Mode) (changed bool, err error) {
	enabled := g.target.Matches(m)
	if enabled == g.enabled {
		return false, nil
	}
	g.enabled = enabled
	return true, g.video.SetVideoEnabled(enabled)
}

// Sync drives the video line to the current decision unconditionally
func (g *Gate) Sync() error {
	return g.video.SetVideoEnabled(g.enabled)
}

// Forward passes ev to the key sink if the gate is open and the button is
// forwardable. Reserved and unmapped buttons are never forwarded.
func (g *Gate) Forward(ev ButtonEvent) (bool, error) {
	if !g.enabled || !ev.Button.Forwardable() {
		return false, nil
	}
	return true, g.keys.EmitKey(ev)
}
