// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/ibusd/internal/config"
	"github.com/Thermoquad/ibusd/internal/logging"
)

var (
	configPath string
	cfg        *config.Config

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Logging flags
	logLevel  string
	logFile   string
	traceMask uint32
)

var rootCmd = &cobra.Command{
	Use:   "ibusd",
	Short: "BMW IBus head-unit daemon",
	Long: `ibusd - Listen to the BMW IBus and turn on-board monitor and steering
wheel buttons into Linux key events while the head unit shows a chosen mode.

The daemon never transmits on the bus. It follows the radio display to learn
the head-unit mode, switches the video input line when the hijack mode is
shown and forwards buttons as uinput key events while it stays shown.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the IBUSD_PASSWORD
environment variable, or prompted interactively if not set.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Configuration file")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 9600, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Logging flags
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVarP(&logFile, "trace-file", "f", "", "Also write the log to this file")
	rootCmd.PersistentFlags().Uint32VarP(&traceMask, "trace", "t", 0, "Trace mask: 2 frames, 4 buttons, 8 mode changes")
}

// loadConfig reads the config file, applies flag overrides and sets up
// logging
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Serial.Port = portName
	}
	if flags.Changed("baud") {
		cfg.Serial.BaudRate = baudRate
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	} else if level := os.Getenv(logging.LogLevelEnvVar); level != "" {
		cfg.Logging.Level = level
	}
	if flags.Changed("trace-file") {
		cfg.Logging.File = logFile
	}
	if flags.Changed("trace") {
		cfg.Logging.TraceMask = traceMask
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return logging.Initialize(logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// Execute runs the root command
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}
