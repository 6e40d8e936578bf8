// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/ibusd/internal/logging"
	"github.com/Thermoquad/ibusd/pkg/headunit"
)

var monitorShowAll bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Terminal UI showing head-unit mode, gate and bus statistics",
	Long: `Follow the bus in a terminal UI.

The header shows the head-unit mode, the hijack target, whether forwarding is
active and the frame statistics. The event log below lists mode changes,
discarded candidates and, with --show-all, every frame and button.

Nothing is forwarded and the video line is left alone.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorShowAll, "show-all", true, "Log every frame and button, not just errors")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	return runMonitorTUI(conn, connInfo, monitorShowAll)
}

// runMonitorTUI drives an engine from conn and shows its state until the
// user quits
func runMonitorTUI(conn Connection, connInfo string, showAll bool) error {
	// Log output would corrupt the screen
	logging.SetLogger(nil)

	target := cfg.HijackTarget()
	p := tea.NewProgram(initialMonitorModel(connInfo, target, showAll))

	obs := newMonitorObserver(p, showAll, 100*time.Millisecond)
	engine := headunit.NewEngine(headunit.Options{
		Target:   target,
		Capacity: cfg.Buffer.Capacity,
		Observer: obs,
	})
	obs.engine = engine

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := headunit.Run(ctx, engine, conn, headunit.NewSilenceTimer(cfg.CharTimeout(), 0))
		if ctx.Err() == nil {
			p.Send(snapshotMsg(engine.Snapshot()))
			p.Send(runDoneMsg{err: err})
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
