// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build !linux

package uinput

import "errors"

// Device is a virtual keyboard created through uinput
type Device struct{}

// Open fails outside Linux
func Open(string) (*Device, error) {
	return nil, errors.New("uinput is only available on linux")
}

// Write fails outside Linux
func (d *Device) Write(p []byte) (int, error) {
	return 0, errors.New("uinput is only available on linux")
}

// Close is a no-op outside Linux
func (d *Device) Close() error {
	return nil
}
