// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package headunit interprets BMW IBus traffic from the on-board monitor,
// the steering wheel and the radio. It tracks the head-unit operating mode
// and forwards button events while the configured hijack mode is active.
package headunit

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Thermoquad/ibusd/pkg/ibus"
)

// TraceMask selects which categories are logged at info level. Categories
// not in the mask are logged at debug level.
type TraceMask uint32

const (
	TraceIBus  TraceMask = 1 << 1 // every decoded frame
	TraceInput TraceMask = 1 << 2 // button events and reports
	TraceState TraceMask = 1 << 3 // mode and gate changes
	TraceAll             = TraceIBus | TraceInput | TraceState
)

// Has reports whether every category in c is selected
func (m TraceMask) Has(c TraceMask) bool {
	return m&c == c
}

// Observer receives engine events. Calls happen on the goroutine driving the
// engine.
type Observer interface {
	FrameDecoded(f *ibus.Frame)
	FrameDropped(err error)
	ButtonDecoded(ev ButtonEvent, forwarded bool)
	ModeChanged(from, to Mode)
	GateChanged(enabled bool)
}

// NopObserver ignores every event
type NopObserver struct{}

// FrameDecoded implements Observer
func (NopObserver) FrameDecoded(*ibus.Frame) {}

// FrameDropped implements Observer
func (NopObserver) FrameDropped(error) {}

// ButtonDecoded implements Observer
func (NopObserver) ButtonDecoded(ButtonEvent, bool) {}

// ModeChanged implements Observer
func (NopObserver) ModeChanged(Mode, Mode) {}

// GateChanged implements Observer
func (NopObserver) GateChanged(bool) {}

// Observers fans every event out to each observer in order
type Observers []Observer

// FrameDecoded passes a valid frame to every observer
func (o Observers) FrameDecoded(f *ibus.Frame) {
	for _, obs := range o {
		obs.FrameDecoded(f)
	}
}

// FrameDropped passes a discarded candidate to every observer
func (o Observers) FrameDropped(err error) {
	for _, obs := range o {
		obs.FrameDropped(err)
	}
}

// ButtonDecoded passes a button event to every observer
func (o Observers) ButtonDecoded(ev ButtonEvent, forwarded bool) {
	for _, obs := range o {
		obs.ButtonDecoded(ev, forwarded)
	}
}

// ModeChanged passes a mode transition to every observer
func (o Observers) ModeChanged(from, to Mode) {
	for _, obs := range o {
		obs.ModeChanged(from, to)
	}
}

// GateChanged passes a gate change to every observer
func (o Observers) GateChanged(enabled bool) {
	for _, obs := range o {
		obs.GateChanged(enabled)
	}
}

// Options configures an Engine
type Options struct {
	Target   HijackTarget
	Keys     KeySink
	Video    VideoLine
	Capacity int // accumulator capacity, ibus.DefaultCapacity if zero
	Logger   *zap.Logger
	Trace    TraceMask
	Observer Observer
}

// Engine owns all protocol state: the accumulator, the operating mode and
// the gate. It is not safe for concurrent use; one control loop drives it.
type Engine struct {
	decoder *ibus.Decoder
	state   *StateMachine
	gate    *Gate
	stats   *ibus.Statistics
	log     *zap.Logger
	trace   TraceMask
	obs     Observer

	// arrival time of the newest byte, stamped onto extracted frames
	lastByte time.Time
}

// NewEngine creates an engine in ModeUnknown with a closed gate
func NewEngine(opts Options) *Engine {
	capacity := opts.Capacity
	if capacity == 0 {
		capacity = ibus.DefaultCapacity
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}

	return &Engine{
		decoder: ibus.NewDecoderSize(capacity),
		state:   NewStateMachine(),
		gate:    NewGate(opts.Target, opts.Keys, opts.Video),
		stats:   ibus.NewStatistics(),
		log:     log,
		trace:   opts.Trace,
		obs:     obs,
	}
}

// Start drives the video line to the initial gate decision
func (e *Engine) Start() error {
	e.log.Info("Engine started",
		zap.Stringer("hijack", e.gate.Target()),
		zap.Stringer("mode", e.state.Mode()),
		zap.Int("capacity", e.decoder.Capacity()),
	)
	return e.gate.Sync()
}

// FeedByte appends one received byte. A full accumulator is cleared.
func (e *Engine) FeedByte(b byte) {
	e.stats.AddBytes(1)
	if err := e.decoder.AppendByte(b); err != nil {
		e.drop(err)
	}
}

// Feed appends every byte of p, received now
func (e *Engine) Feed(p []byte) {
	e.FeedAt(p, time.Now())
}

// FeedAt appends every byte of p, received at the given time
func (e *Engine) FeedAt(p []byte, at time.Time) {
	e.lastByte = at
	for _, b := range p {
		e.FeedByte(b)
	}
}

// FrameBoundary extracts and dispatches every complete frame in the
// accumulator, then discards whatever is left. A checksum or length error
// discards the rest of the burst as well. It returns the number of valid
// frames dispatched.
func (e *Engine) FrameBoundary() int {
	dispatched := 0
	for {
		frame, err := e.decoder.Next()
		if err != nil {
			e.drop(err)
			break
		}
		if frame == nil {
			break
		}
		if !e.lastByte.IsZero() {
			frame.SetTimestamp(e.lastByte)
		}
		e.stats.Update(frame, nil)
		e.dispatch(frame)
		dispatched++
	}

	if err := e.decoder.Flush(); err != nil {
		e.drop(err)
	}
	return dispatched
}

// Buffered returns the number of bytes waiting for a frame boundary
func (e *Engine) Buffered() int {
	return e.decoder.Buffered()
}

// Mode returns the current operating mode
func (e *Engine) Mode() Mode {
	return e.state.Mode()
}

// GateEnabled reports whether keys and the video line are active
func (e *Engine) GateEnabled() bool {
	return e.gate.Enabled()
}

// Statistics returns the live frame statistics
func (e *Engine) Statistics() *ibus.Statistics {
	return e.stats
}

// Snapshot is a point-in-time copy of the engine state
type Snapshot struct {
	Mode        Mode
	Target      HijackTarget
	GateEnabled bool
	Buffered    int
	Stats       ibus.Statistics
}

// Snapshot copies the engine state
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Mode:        e.state.Mode(),
		Target:      e.gate.Target(),
		GateEnabled: e.gate.Enabled(),
		Buffered:    e.decoder.Buffered(),
		Stats:       *e.stats,
	}
}

func (e *Engine) drop(err error) {
	e.stats.Update(nil, err)
	e.obs.FrameDropped(err)

	if errors.Is(err, ibus.ErrBufferOverflow) {
		e.log.Warn("Buffer full, discarding", zap.Error(err))
		return
	}

	fields := []zap.Field{zap.Error(err)}
	var fe *ibus.FrameError
	if errors.As(err, &fe) {
		fields = append(fields, zap.String("raw", ibus.FormatHex(fe.Raw)))
	}
	if ce := e.log.Check(e.level(TraceIBus), "Invalid frame"); ce != nil {
		ce.Write(fields...)
	}
}

// level returns the log level for a trace category
func (e *Engine) level(c TraceMask) zapcore.Level {
	if e.trace.Has(c) {
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}
