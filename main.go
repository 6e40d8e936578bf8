// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// ibusd - BMW IBus head-unit daemon

package main

import (
	"os"

	"github.com/Thermoquad/ibusd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
