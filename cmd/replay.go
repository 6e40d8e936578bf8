// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ibusd/internal/logging"
	"github.com/Thermoquad/ibusd/internal/uinput"
	"github.com/Thermoquad/ibusd/pkg/headunit"
	"github.com/Thermoquad/ibusd/pkg/ibus"
)

var replayQuiet bool

var replayCmd = &cobra.Command{
	Use:   "replay <capture>",
	Short: "Replay a capture file through the engine",
	Long: `Feed a recorded capture through the protocol engine offline.

Frame boundaries are placed wherever the recorded gap between chunks exceeds
the inter-character timeout. Frames, mode changes and the key events the
daemon would have injected are printed; nothing is injected and the video
line is not touched.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVar(&hijackFlag, "hijack", "", "Hijack mode: AUX, TAPE or none")
	replayCmd.Flags().BoolVarP(&replayQuiet, "quiet", "q", false, "Only print the summary")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("hijack") {
		cfg.Hijack = hijackFlag
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	r, err := ibus.NewCaptureReader(bufio.NewReader(f))
	if err != nil {
		return err
	}
	header := r.Header()

	var obs headunit.Observer = headunit.NopObserver{}
	if !replayQuiet {
		obs = framePrinter{w: os.Stdout, frames: true}
		fmt.Printf("Capture: %s, %d baud, started %s\n\n", args[0], header.BaudRate, header.Start.Format("2006-01-02 15:04:05"))
	}

	log := logging.GetLogger()
	engine := headunit.NewEngine(headunit.Options{
		Target:   cfg.HijackTarget(),
		Keys:     uinput.NewLogSink(log),
		Capacity: cfg.Buffer.Capacity,
		Logger:   log,
		Trace:    cfg.TraceMask(),
		Observer: obs,
	})

	timer := headunit.NewSilenceTimer(headunit.CharTimeout(header.BaudRate), 0)
	count, err := headunit.Replay(engine, r, timer)
	if err != nil {
		return err
	}

	snap := engine.Snapshot()
	fmt.Printf("\nReplayed %d chunks, final mode %s, gate %v\n", count, snap.Mode, snap.GateEnabled)
	fmt.Print(engine.Statistics().String())
	return nil
}
