// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ibusd/pkg/headunit"
	"github.com/Thermoquad/ibusd/pkg/ibus"
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display bus frames in human-readable format",
	Long: `Continuously decode and display IBus frames as they arrive.

Each frame is shown with its timestamp, the raw bytes, the sender and
receiver names and either the decoded button or the message name and data.
Nothing is forwarded and the video line is left alone.

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
}

// framePrinter writes every frame and discarded candidate to w
type framePrinter struct {
	headunit.NopObserver
	w      io.Writer
	frames bool
}

func (p framePrinter) FrameDecoded(f *ibus.Frame) {
	if p.frames {
		fmt.Fprintln(p.w, ibus.FormatFrameWith(f, headunit.Describe))
	}
}

func (p framePrinter) FrameDropped(err error) {
	fmt.Fprintf(p.w, "[ERROR] %v\n", err)
	var fe *ibus.FrameError
	if errors.As(err, &fe) && len(fe.Raw) > 0 {
		fmt.Fprintf(p.w, "  raw: %s\n", ibus.FormatHex(fe.Raw))
	}
}

func (p framePrinter) ModeChanged(from, to headunit.Mode) {
	fmt.Fprintf(p.w, "[MODE] %s -> %s\n", from, to)
}

func runRawLog(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("ibusd - Raw Frame Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	engine := headunit.NewEngine(headunit.Options{
		Target:   cfg.HijackTarget(),
		Capacity: cfg.Buffer.Capacity,
		Observer: framePrinter{w: os.Stdout, frames: true},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Idle shutdown is a daemon concern
	timer := headunit.NewSilenceTimer(cfg.CharTimeout(), 0)
	err = headunit.Run(ctx, engine, conn, timer)
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrConnectionClosed) {
		return nil
	}
	return err
}
