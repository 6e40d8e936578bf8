// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ibusd/pkg/headunit"
	"github.com/Thermoquad/ibusd/pkg/ibus"
)

var (
	packetTestTimeout int
)

var packetTestCmd = &cobra.Command{
	Use:   "packet_test",
	Short: "Test connection by waiting for a valid IBus frame",
	Long: `Wait for a valid IBus frame on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any frame
whose checksum matches. Discarded candidates before the first valid frame
are counted.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for checking the bus adapter wiring and serial settings.`,
	RunE: runPacketTest,
}

func init() {
	rootCmd.AddCommand(packetTestCmd)
	packetTestCmd.Flags().IntVar(&packetTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

// firstFrame reports the first valid frame and counts drops before it
type firstFrame struct {
	headunit.NopObserver
	frames  chan *ibus.Frame
	dropped int
}

func (o *firstFrame) FrameDecoded(f *ibus.Frame) {
	select {
	case o.frames <- f:
	default:
	}
}

func (o *firstFrame) FrameDropped(error) {
	o.dropped++
}

func runPacketTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("ibusd - Frame Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", packetTestTimeout)
	fmt.Printf("Waiting for valid IBus frame...\n\n")

	obs := &firstFrame{frames: make(chan *ibus.Frame, 1)}
	engine := headunit.NewEngine(headunit.Options{Capacity: cfg.Buffer.Capacity, Observer: obs})

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(packetTestTimeout)*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- headunit.Run(ctx, engine, conn, headunit.NewSilenceTimer(cfg.CharTimeout(), 0))
	}()

	select {
	case frame := <-obs.frames:
		cancel()
		<-errChan
		if obs.dropped > 0 {
			fmt.Printf("(discarded %d candidates before the first frame)\n", obs.dropped)
		}
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Sender:   %s (0x%02X)\n", ibus.DeviceName(frame.Sender()), frame.Sender())
		fmt.Printf("  Receiver: %s (0x%02X)\n", ibus.DeviceName(frame.Receiver()), frame.Receiver())
		fmt.Printf("  Message:  %s (0x%02X)\n", ibus.MessageName(frame.Type()), frame.Type())
		fmt.Printf("  Length:   %d bytes\n", frame.Size())
		fmt.Printf("  Checksum: 0x%02X\n", frame.Checksum())
		os.Exit(0)

	case err := <-errChan:
		if ctx.Err() != nil {
			fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", packetTestTimeout)
			os.Exit(1)
		}
		if err == nil {
			err = io.EOF
		}
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)
	}

	return nil
}
