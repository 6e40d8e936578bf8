// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package headunit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/ibusd/pkg/ibus"
)

// ErrBusIdle is returned by Run when no byte arrived for the idle timeout
var ErrBusIdle = errors.New("bus idle")

// readBufferSize bounds one read from the byte source
const readBufferSize = 256

// Run drives the engine from src until ctx is cancelled, the source ends or
// the bus goes idle. Reads happen on a separate goroutine; the engine is only
// touched by the calling goroutine. Bytes buffered at cancellation are
// abandoned.
//
// Run returns nil when src reports io.EOF, ErrBusIdle after the idle timeout
// and ctx.Err() on cancellation.
func Run(ctx context.Context, e *Engine, src io.Reader, timer *SilenceTimer) error {
	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		buf := make([]byte, readBufferSize)
		for {
			n, err := src.Read(buf)
			if n > 0 {
				select {
				case chunks <- bytes.Clone(buf[:n]):
				case <-done:
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	wake := time.NewTimer(time.Hour)
	wake.Stop()
	defer wake.Stop()

	timer.Reset(time.Now())

	for {
		var wakeC <-chan time.Time
		if deadline, kind := timer.Deadline(); kind != ExpiryNone {
			wake.Reset(time.Until(deadline))
			wakeC = wake.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case chunk := <-chunks:
			now := time.Now()
			// A late wakeup must not merge two bursts
			if timer.Expired(now) == ExpiryBoundary {
				e.FrameBoundary()
			}
			e.FeedAt(chunk, now)
			timer.Received(now)

		case now := <-wakeC:
			switch timer.Expired(now) {
			case ExpiryBoundary:
				e.FrameBoundary()
			case ExpiryIdle:
				return ErrBusIdle
			}

		case err := <-readErr:
			e.FrameBoundary()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("bus read failed: %w", err)
		}
	}
}

// Replay drives the engine from a capture, inserting a frame boundary
// wherever the recorded gap between chunks exceeds the timer's character
// timeout. It returns the number of chunks replayed.
func Replay(e *Engine, r *ibus.CaptureReader, timer *SilenceTimer) (int, error) {
	timer.Reset(r.Header().Start)

	count := 0
	for {
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			e.FrameBoundary()
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("failed to read capture: %w", err)
		}

		if timer.Expired(chunk.At) == ExpiryBoundary {
			e.FrameBoundary()
		}
		e.FeedAt(chunk.Data, chunk.At)
		timer.Received(chunk.At)
		count++
	}
}
