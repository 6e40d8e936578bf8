// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Thermoquad/ibusd/internal/logging"
	"github.com/Thermoquad/ibusd/pkg/ibus"
)

var (
	recordOutput   string
	recordDuration time.Duration
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record raw bus traffic to a capture file",
	Long: `Write every chunk read from the connection, with its arrival time, to a
CBOR capture file. Frame boundaries are not decided while recording; the
timestamps let replay find them later.

Recording stops on Ctrl+C, at the end of the stream or after --duration.`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "ibus.cbor", "Capture file")
	recordCmd.Flags().DurationVar(&recordDuration, "duration", 0, "Stop after this long (0 records until interrupted)")
}

// recordChunks copies src to the capture writer until ctx ends or src fails
func recordChunks(ctx context.Context, src io.Reader, cw *ibus.CaptureWriter) (int, error) {
	type chunk struct {
		data []byte
		at   time.Time
		err  error
	}
	chunks := make(chan chunk)

	go func() {
		buf := make([]byte, 256)
		for {
			n, err := src.Read(buf)
			c := chunk{data: append([]byte(nil), buf[:n]...), at: time.Now(), err: err}
			select {
			case chunks <- c:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	count := 0
	for {
		select {
		case <-ctx.Done():
			return count, nil
		case c := <-chunks:
			if len(c.data) > 0 {
				logging.LogRawBytes("Read", c.data)
				if err := cw.Write(c.data, c.at); err != nil {
					return count, err
				}
				count++
			}
			if errors.Is(c.err, io.EOF) || errors.Is(c.err, ErrConnectionClosed) {
				return count, nil
			}
			if c.err != nil {
				return count, fmt.Errorf("bus read failed: %w", c.err)
			}
		}
	}
}

func runRecord(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	f, err := os.Create(recordOutput)
	if err != nil {
		return fmt.Errorf("failed to create capture: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	cw, err := ibus.NewCaptureWriter(w, cfg.Serial.BaudRate, time.Now())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if recordDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, recordDuration)
		defer cancel()
	}

	fmt.Printf("Recording %s to %s, press Ctrl+C to stop\n", connInfo, recordOutput)
	count, recErr := recordChunks(ctx, conn, cw)

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write capture: %w", err)
	}
	if recErr != nil {
		logging.Error("Recording stopped early", zap.Error(recErr), zap.Int("chunks", count))
	} else {
		logging.Info("Recording finished", zap.Int("chunks", count), zap.String("file", recordOutput))
	}
	fmt.Printf("Recorded %d chunks\n", count)
	return recErr
}
