// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Thermoquad/ibusd/internal/config"
	"github.com/Thermoquad/ibusd/internal/logging"
	"github.com/Thermoquad/ibusd/internal/metrics"
	"github.com/Thermoquad/ibusd/internal/uinput"
	"github.com/Thermoquad/ibusd/internal/videoline"
	"github.com/Thermoquad/ibusd/pkg/headunit"
)

var (
	hijackFlag     string
	videoLineFlag  string
	keySinkFlag    string
	metricsListen  string
	idleTimeoutArg time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the head-unit daemon",
	Long: `Listen to the bus and act on head-unit traffic.

While the head unit shows the hijack mode (AUX or TAPE) the video line is
asserted and buttons from the on-board monitor and the steering wheel are
injected as key events through a uinput virtual keyboard. Any other mode
clears the line and stops forwarding.

The daemon exits after --idle-timeout without bus traffic, which normally
means the car has gone to sleep.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&hijackFlag, "hijack", "", "Hijack mode: AUX, TAPE or none")
	runCmd.Flags().StringVar(&videoLineFlag, "video-line", "", "Video switch line: RTS, DTR or none")
	runCmd.Flags().StringVar(&keySinkFlag, "keys", "", "Key sink: uinput or log")
	runCmd.Flags().StringVar(&metricsListen, "metrics", "", "Serve Prometheus metrics on this address")
	runCmd.Flags().DurationVar(&idleTimeoutArg, "idle-timeout", 0, "Exit after this long without traffic (0 keeps the config value)")
}

// applyRunFlags overrides config values with the run flags that were set
func applyRunFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("hijack") {
		cfg.Hijack = hijackFlag
	}
	if flags.Changed("video-line") {
		cfg.Video.Line = videoLineFlag
	}
	if flags.Changed("keys") {
		cfg.Keys.Sink = keySinkFlag
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Listen = metricsListen
	}
	if flags.Changed("idle-timeout") {
		cfg.Timing.IdleTimeout = idleTimeoutArg
	}
	return cfg.Validate()
}

// newSilenceTimer builds the frame boundary and idle timer from the config
func newSilenceTimer() *headunit.SilenceTimer {
	return headunit.NewSilenceTimer(cfg.CharTimeout(), cfg.Timing.IdleTimeout)
}

// openKeySink creates the configured key sink and its cleanup
func openKeySink(log *zap.Logger) (headunit.KeySink, func(), error) {
	if cfg.Keys.Sink == config.SinkLog {
		return uinput.NewLogSink(log), func() {}, nil
	}

	dev, err := uinput.Open(cfg.Keys.DeviceName)
	if err != nil {
		return nil, nil, err
	}
	closeDev := func() {
		if err := dev.Close(); err != nil {
			log.Warn("Failed to destroy uinput device", zap.Error(err))
		}
	}
	return uinput.NewKeySink(dev, log), closeDev, nil
}

// openVideoLine drives the configured modem line of a serial connection
func openVideoLine(conn Connection, log *zap.Logger) (headunit.VideoLine, error) {
	line, err := videoline.ParseLine(cfg.Video.Line)
	if err != nil {
		return nil, err
	}
	if line == videoline.LineNone {
		return headunit.NopVideoLine{}, nil
	}

	serialConn, ok := conn.(*SerialConnection)
	if !ok {
		log.Warn("Video line needs a serial port, line disabled", zap.Stringer("line", line))
		return headunit.NopVideoLine{}, nil
	}
	return videoline.New(serialConn.ModemLines(), line, log), nil
}

// serveMetrics starts the metrics endpoint when an address is configured
func serveMetrics(ctx context.Context, handler http.Handler, log *zap.Logger) {
	if cfg.Metrics.Listen == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("Metrics listening", zap.String("addr", cfg.Metrics.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownMetrics(srv, 2*time.Second, log)
	}()
}

// shutdownMetrics stops srv, waiting up to timeout for open requests
func shutdownMetrics(srv *http.Server, timeout time.Duration, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("Metrics server shutdown failed", zap.Error(err))
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := applyRunFlags(cmd); err != nil {
		return err
	}
	log := logging.GetLogger()

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	keys, closeKeys, err := openKeySink(log)
	if err != nil {
		return err
	}
	defer closeKeys()

	video, err := openVideoLine(conn, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(reg)
	serveMetrics(ctx, metrics.Handler(reg), log)

	engine := headunit.NewEngine(headunit.Options{
		Target:   cfg.HijackTarget(),
		Keys:     keys,
		Video:    video,
		Capacity: cfg.Buffer.Capacity,
		Logger:   log,
		Trace:    cfg.TraceMask(),
		Observer: engineMetrics,
	})

	log.Info("Connected", zap.String("connection", connInfo))
	if err := engine.Start(); err != nil {
		return fmt.Errorf("failed to initialise video line: %w", err)
	}

	err = headunit.Run(ctx, engine, conn, newSilenceTimer())
	log.Info("Statistics", zap.String("summary", engine.Statistics().String()))

	switch {
	case errors.Is(err, headunit.ErrBusIdle):
		log.Info("Bus idle, exiting", zap.Duration("idle_timeout", cfg.Timing.IdleTimeout))
		return nil
	case errors.Is(err, context.Canceled):
		log.Info("Shutting down")
		return nil
	default:
		return err
	}
}
