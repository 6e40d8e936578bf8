// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ibusd/pkg/headunit"
	"github.com/Thermoquad/ibusd/pkg/ibus"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var errorDetectionCmd = &cobra.Command{
	Use:   "error_detection",
	Short: "Detect and analyze corrupted frames",
	Long: `Track discarded frame candidates with statistics.

This command reports:
  - Checksum mismatches (expected and received checksum, raw bytes)
  - Candidates with an impossible length byte
  - Accumulator overflows (no frame boundary for too long)
  - Statistics and trends (frame rate, error rate, success rate)

By default, only errors are displayed. Use --show-all to display valid frames too.

Statistics are printed at the configured interval while traffic arrives.`,
	RunE: runErrorDetection,
}

func init() {
	rootCmd.AddCommand(errorDetectionCmd)
	errorDetectionCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all frames (not just errors)")
	errorDetectionCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	errorDetectionCmd.Flags().BoolVar(&useTUI, "tui", false, "Use terminal UI")
}

func runErrorDetection(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if useTUI {
		return runMonitorTUI(conn, connInfo, showAll)
	}
	return runTextMode(conn, connInfo)
}

// printFrameError prints a discarded candidate in highlighted format
func printFrameError(err error) {
	timestamp := time.Now().Format("15:04:05.000")

	var fe *ibus.FrameError
	if !errors.As(err, &fe) {
		fmt.Printf("[%s] \033[1;31mERROR:\033[0m %v\n\n", timestamp, err)
		return
	}

	switch {
	case errors.Is(err, ibus.ErrChecksumMismatch):
		fmt.Printf("[%s] \033[1;31mCHECKSUM ERROR:\033[0m expected 0x%02X, got 0x%02X\n", timestamp, fe.Expected, fe.Got)
		if len(fe.Raw) > ibus.PosMessage {
			fmt.Printf("  %s -> %s, %s\n",
				ibus.DeviceName(fe.Raw[ibus.PosSender]),
				ibus.DeviceName(fe.Raw[ibus.PosReceiver]),
				ibus.MessageName(fe.Raw[ibus.PosMessage]))
		}
	case errors.Is(err, ibus.ErrMalformedLength):
		fmt.Printf("[%s] \033[1;31mBAD LENGTH:\033[0m %v\n", timestamp, err)
	case errors.Is(err, ibus.ErrBufferOverflow):
		fmt.Printf("[%s] \033[1;33mOVERFLOW:\033[0m %v\n", timestamp, err)
	case errors.Is(err, ibus.ErrFrameIncomplete):
		fmt.Printf("[%s] \033[1;33mINCOMPLETE:\033[0m %v\n", timestamp, err)
	default:
		fmt.Printf("[%s] \033[1;31mERROR:\033[0m %v\n", timestamp, err)
	}

	if len(fe.Raw) > 0 && !errors.Is(err, ibus.ErrBufferOverflow) {
		fmt.Printf("  Raw: %s\n", ibus.FormatHex(fe.Raw))
	}
	fmt.Printf("  >>> FRAME DISCARDED <<<\n\n")
}

// errorReporter prints errors, optionally frames, and periodic statistics
type errorReporter struct {
	headunit.NopObserver
	stats     *ibus.Statistics
	showAll   bool
	interval  time.Duration
	lastStats time.Time
	synced    bool
	dropped   int
}

func (r *errorReporter) maybePrintStats() {
	if r.stats == nil || time.Since(r.lastStats) < r.interval {
		return
	}
	r.lastStats = time.Now()
	fmt.Println()
	fmt.Print(r.stats.String())
	fmt.Println()
}

func (r *errorReporter) FrameDecoded(f *ibus.Frame) {
	if !r.synced {
		r.synced = true
		if r.dropped > 0 {
			fmt.Printf("[SYNC] Synchronized after discarding %d candidates\n\n", r.dropped)
		} else {
			fmt.Printf("[SYNC] Synchronized\n\n")
		}
	}
	if r.showAll {
		fmt.Println(ibus.FormatFrameWith(f, headunit.Describe))
	}
	r.maybePrintStats()
}

func (r *errorReporter) FrameDropped(err error) {
	r.dropped++
	printFrameError(err)
	r.maybePrintStats()
}

// runTextMode runs error detection in text mode
func runTextMode(conn Connection, connInfo string) error {
	fmt.Printf("ibusd - Error Detection Mode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All frames\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	reporter := &errorReporter{
		showAll:   showAll,
		interval:  time.Duration(statsInterval) * time.Second,
		lastStats: time.Now(),
	}
	engine := headunit.NewEngine(headunit.Options{
		Capacity: cfg.Buffer.Capacity,
		Observer: reporter,
	})
	reporter.stats = engine.Statistics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := headunit.Run(ctx, engine, conn, headunit.NewSilenceTimer(cfg.CharTimeout(), 0))

	fmt.Println()
	fmt.Print(engine.Statistics().String())

	if errors.Is(err, context.Canceled) || errors.Is(err, ErrConnectionClosed) {
		return nil
	}
	return err
}
