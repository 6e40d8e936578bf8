// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package headunit

import (
	"errors"
	"testing"
)

// recordingKeys records forwarded events
type recordingKeys struct {
	events []ButtonEvent
	err    error
}

func (r *recordingKeys) EmitKey(ev ButtonEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

// recordingVideo records line changes
type recordingVideo struct {
	calls []bool
	err   error
}

func (r *recordingVideo) SetVideoEnabled(enabled bool) error {
	r.calls = append(r.calls, enabled)
	return r.err
}

// ============================================================
// Gate Decision
// ============================================================

func TestGate_Combinations(t *testing.T) {
	tests := []struct {
		name    string
		target  HijackTarget
		mode    Mode
		enabled bool
	}{
		{"target set, mode matches", HijackAux, ModeAux, true},
		{"target set, mode differs", HijackAux, ModeTape, false},
		{"no target, mode unknown", HijackNone, ModeUnknown, false},
		{"no target, mode aux", HijackNone, ModeAux, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := &recordingKeys{}
			video := &recordingVideo{}
			g := NewGate(tt.target, keys, video)

			g.Update(tt.mode)
			if g.Enabled() != tt.enabled {
				t.Errorf("expected enabled=%v, got %v", tt.enabled, g.Enabled())
			}

			forwarded, _ := g.Forward(ButtonEvent{Button: ButtonArrowRight})
			if forwarded != tt.enabled {
				t.Errorf("expected forwarded=%v, got %v", tt.enabled, forwarded)
			}

			if tt.enabled {
				if len(video.calls) != 1 || !video.calls[0] {
					t.Errorf("expected one enable call, got %v", video.calls)
				}
				if len(keys.events) != 1 {
					t.Errorf("expected one key event, got %d", len(keys.events))
				}
			} else {
				if len(video.calls) != 0 {
					t.Errorf("expected no video calls, got %v", video.calls)
				}
				if len(keys.events) != 0 {
					t.Errorf("expected no key events, got %d", len(keys.events))
				}
			}
		})
	}
}

func TestGate_UpdateOnlyOnChange(t *testing.T) {
	video := &recordingVideo{}
	g := NewGate(HijackTape, nil, video)

	steps := []struct {
		mode    Mode
		changed bool
	}{
		{ModeTape, true},
		{ModeTape, false},
		{ModeMenu, true},
		{ModeFM, false},
		{ModeTape, true},
	}
	for i, s := range steps {
		changed, err := g.Update(s.mode)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if changed != s.changed {
			t.Errorf("step %d: expected changed=%v, got %v", i, s.changed, changed)
		}
	}

	expected := []bool{true, false, true}
	if len(video.calls) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, video.calls)
	}
	for i := range expected {
		if video.calls[i] != expected[i] {
			t.Errorf("call %d: expected %v, got %v", i, expected[i], video.calls[i])
		}
	}
}

func TestGate_NeverForwardsReservedOrUnmapped(t *testing.T) {
	keys := &recordingKeys{}
	g := NewGate(HijackAux, keys, nil)
	g.Update(ModeAux)

	for _, ev := range []ButtonEvent{
		{Button: ButtonRadioPower},
		{Button: ButtonTone},
		{Button: ButtonDolby},
		{Button: ButtonUnmapped, Code: 0x09},
		{Button: ButtonID(0x09)},
	} {
		if forwarded, _ := g.Forward(ev); forwarded {
			t.Errorf("%s should not be forwarded", ev)
		}
	}
	if len(keys.events) != 0 {
		t.Errorf("expected no key events, got %v", keys.events)
	}
}

func TestGate_SinkErrors(t *testing.T) {
	boom := errors.New("boom")
	g := NewGate(HijackAux, &recordingKeys{err: boom}, &recordingVideo{err: boom})

	if _, err := g.Update(ModeAux); !errors.Is(err, boom) {
		t.Errorf("expected video error, got %v", err)
	}
	if !g.Enabled() {
		t.Error("gate decision should stand even when the line fails")
	}
	if _, err := g.Forward(ButtonEvent{Button: Button1}); !errors.Is(err, boom) {
		t.Errorf("expected key error, got %v", err)
	}
}
