// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package headunit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Thermoquad/ibusd/pkg/ibus"
)

// dispatch routes a validated frame to the button decoders and, when a
// hijack target is set, to the state machine
func (e *Engine) dispatch(f *ibus.Frame) {
	e.obs.FrameDecoded(f)
	if ce := e.log.Check(e.level(TraceIBus), "Frame"); ce != nil {
		ce.Write(zap.String("frame", ibus.FormatFrameWith(f, Describe)))
	}

	switch {
	case f.Sender() == ibus.DevBMBT:
		e.handleMonitor(f)
	case f.Is(ibus.DevMFL, ibus.DevRAD):
		e.handleSteeringWheel(f)
	}

	if e.gate.Target() == HijackNone {
		return
	}
	if to, ok := RequestedMode(f); ok {
		e.changeMode(to)
	}
}

// handleMonitor decodes on-board monitor button traffic
func (e *Engine) handleMonitor(f *ibus.Frame) {
	payload := f.Payload()

	switch f.Type() {
	case ibus.MsgBMBTButtons1:
		if len(payload) == 1 {
			e.handlePrimary(payload[0])
		}

	case ibus.MsgBMBTButtons0:
		switch {
		case len(payload) == 1:
			e.handlePrimary(payload[0])
		case len(payload) >= 2:
			ev := DecodeSelect(payload[1])
			if ev.Button == ButtonUnmapped {
				e.report("Select bank code",
					zap.String("code", fmt.Sprintf("0x%02X", ev.Code)),
					zap.Stringer("phase", ev.Phase),
				)
				return
			}
			e.emit(ev)
		}

	case ibus.MsgKnob:
		if len(payload) == 1 {
			for _, ev := range DecodeKnob(payload[0]) {
				e.emit(ev)
			}
		}

	case ibus.MsgMFLButtons:
		if len(payload) == 1 {
			e.report("Volume", zap.Stringer("volume", DecodeVolume(payload[0])))
		}
	}
}

// handleSteeringWheel decodes steering wheel traffic addressed to the radio
func (e *Engine) handleSteeringWheel(f *ibus.Frame) {
	raw, ok := f.DataByte(0)
	if !ok {
		return
	}

	switch f.Type() {
	case ibus.MsgMFLButtons:
		e.report("Volume", zap.Stringer("volume", DecodeVolume(raw)))

	case ibus.MsgMFLButtons2:
		if len(f.Payload()) != 1 {
			return
		}
		if ev, ok := DecodeMFL2(raw); ok {
			e.emit(ev)
		}
		if MFL2Answer(raw) {
			e.report("Answer button", zap.String("code", fmt.Sprintf("0x%02X", raw)))
		}
	}
}

// handlePrimary decodes a primary bank byte. Radio power switches the mode
// to PowerOff before the event reaches the gate.
func (e *Engine) handlePrimary(raw byte) {
	ev := DecodePrimary(raw)
	if ev.Button == ButtonRadioPower {
		e.changeMode(ModePowerOff)
	}
	e.emit(ev)
}

// emit passes a decoded event through the gate
func (e *Engine) emit(ev ButtonEvent) {
	if ev.Button == ButtonUnmapped {
		e.obs.ButtonDecoded(ev, false)
		if ce := e.log.Check(e.level(TraceInput), "Unmapped button"); ce != nil {
			ce.Write(
				zap.Error(fmt.Errorf("%w: 0x%02X", ErrUnmappedButton, ev.Code)),
				zap.Stringer("phase", ev.Phase),
			)
		}
		return
	}

	forwarded, err := e.gate.Forward(ev)
	if err != nil {
		e.log.Warn("Key sink failed", zap.Stringer("button", ev.Button), zap.Error(err))
	}
	e.obs.ButtonDecoded(ev, forwarded)

	if ce := e.log.Check(e.level(TraceInput), "Button"); ce != nil {
		ce.Write(
			zap.Stringer("button", ev.Button),
			zap.Stringer("phase", ev.Phase),
			zap.Bool("forwarded", forwarded),
		)
	}
}

// changeMode applies a transition and re-derives the gate
func (e *Engine) changeMode(to Mode) {
	from := e.state.Mode()
	if !e.state.Transition(to) {
		return
	}
	e.obs.ModeChanged(from, to)
	if ce := e.log.Check(e.level(TraceState), "Mode changed"); ce != nil {
		ce.Write(zap.Stringer("from", from), zap.Stringer("to", to))
	}

	changed, err := e.gate.Update(to)
	if err != nil {
		e.log.Warn("Video line failed", zap.Bool("enabled", e.gate.Enabled()), zap.Error(err))
	}
	if !changed {
		return
	}
	e.obs.GateChanged(e.gate.Enabled())
	if ce := e.log.Check(e.level(TraceState), "Gate changed"); ce != nil {
		ce.Write(zap.Bool("enabled", e.gate.Enabled()))
	}
}

// report logs a recognised control that is never turned into a key event
func (e *Engine) report(msg string, fields ...zap.Field) {
	if ce := e.log.Check(e.level(TraceInput), msg); ce != nil {
		ce.Write(fields...)
	}
}

// Describe renders button and knob frames for trace output. It returns ""
// for other frames.
func Describe(f *ibus.Frame) string {
	payload := f.Payload()
	if len(payload) == 0 {
		return ""
	}

	switch f.Type() {
	case ibus.MsgBMBTButtons1:
		if len(payload) == 1 {
			return DecodePrimary(payload[0]).String()
		}
	case ibus.MsgBMBTButtons0:
		if len(payload) == 1 {
			return DecodePrimary(payload[0]).String()
		}
		return DecodeSelect(payload[1]).String()
	case ibus.MsgKnob:
		if len(payload) != 1 {
			return ""
		}
		clockwise, count := KnobTurn(payload[0])
		if clockwise {
			return fmt.Sprintf("Menu knob turned clockwise %d time(s)", count)
		}
		return fmt.Sprintf("Menu knob turned counter clockwise %d time(s)", count)
	}
	return ""
}
