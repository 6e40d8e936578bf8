// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build linux

package uinput

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Device nodes tried in order
var devicePaths = []string{"/dev/uinput", "/dev/input/uinput", "/dev/misc/uinput"}

const (
	maxNameSize = 80 // UINPUT_MAX_NAME_SIZE
	absCount    = 64 // ABS_CNT
	busRS232    = 0x13
	version     = 0x0100
)

// ioctl request encoding (Linux _IOC macro)
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocNone  = 0
	iocWrite = 1
)

func ioc(dir, typ, nr, size uint32) uint {
	return uint(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift)
}

var (
	uiDevCreate  = ioc(iocNone, 'U', 1, 0)
	uiDevDestroy = ioc(iocNone, 'U', 2, 0)
	uiSetEvBit   = ioc(iocWrite, 'U', 100, uint32(unsafe.Sizeof(int32(0))))
	uiSetKeyBit  = ioc(iocWrite, 'U', 101, uint32(unsafe.Sizeof(int32(0))))
)

// Device is a virtual keyboard created through uinput
type Device struct {
	fd int
}

// encodeUserDev encodes struct uinput_user_dev
func encodeUserDev(name string) []byte {
	buf := make([]byte, maxNameSize, maxNameSize+8+4+4*absCount*4)
	copy(buf[:maxNameSize-1], name)
	buf = binary.NativeEndian.AppendUint16(buf, busRS232)
	buf = binary.NativeEndian.AppendUint16(buf, 0) // vendor
	buf = binary.NativeEndian.AppendUint16(buf, 0) // product
	buf = binary.NativeEndian.AppendUint16(buf, version)
	buf = binary.NativeEndian.AppendUint32(buf, 0) // ff_effects_max
	return append(buf, make([]byte, 4*absCount*4)...)
}

// Open creates a virtual keyboard registering every mapped key
func Open(name string) (*Device, error) {
	fd := -1
	var err error
	for _, path := range devicePaths {
		fd, err = unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err == nil {
			break
		}
	}
	if fd < 0 {
		return nil, fmt.Errorf("failed to open uinput: %w", err)
	}

	if err := setup(fd, name); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Device{fd: fd}, nil
}

func setup(fd int, name string) error {
	if _, err := unix.Write(fd, encodeUserDev(name)); err != nil {
		return fmt.Errorf("failed to write device information: %w", err)
	}
	if err := unix.IoctlSetInt(fd, uiSetEvBit, EvKey); err != nil {
		return fmt.Errorf("failed to set event bit: %w", err)
	}
	for _, code := range KeyCodes() {
		if err := unix.IoctlSetInt(fd, uiSetKeyBit, int(code)); err != nil {
			return fmt.Errorf("failed to set key bit %d: %w", code, err)
		}
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("failed to create uinput device: %w", err)
	}
	return nil
}

// Write writes raw input events
func (d *Device) Write(p []byte) (int, error) {
	return unix.Write(d.fd, p)
}

// Close destroys the virtual device
func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}
	unix.IoctlSetInt(d.fd, uiDevDestroy, 0)
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
