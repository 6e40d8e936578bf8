// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ibus

import (
	"fmt"
	"strings"
)

// Describer returns a description of the frame's message to use in place of
// the message name, or "" to fall back to MessageName. Describers also
// suppress the DATA section since they already render the payload.
type Describer func(f *Frame) string

// FormatFrame formats a frame into a human-readable trace line
func FormatFrame(f *Frame) string {
	return FormatFrameWith(f, nil)
}

// FormatFrameWith formats a frame, letting describe override the message
// description
func FormatFrameWith(f *Frame, describe Describer) string {
	var sb strings.Builder

	sb.WriteString(f.timestamp.Format("15:04:05.000"))
	sb.WriteString(": ")
	sb.WriteString(FormatHex(f.raw))

	sb.WriteString(" = ")
	sb.WriteString(DeviceName(f.sender))
	sb.WriteString(" SENT ")

	desc := ""
	if describe != nil {
		desc = describe(f)
	}
	if desc != "" {
		sb.WriteString(desc)
	} else {
		sb.WriteString(MessageName(f.msgType))
	}

	sb.WriteString(" TO ")
	sb.WriteString(DeviceName(f.receiver))

	if desc == "" && len(f.payload) > 0 {
		sb.WriteString(" DATA: ")
		sb.WriteString(FormatPayload(f))
	}

	return sb.String()
}

// FormatHex renders frame bytes with header bytes and the checksum spaced
// and the data run together, e.g. "68 05 3b 23 6241 56"
func FormatHex(raw []byte) string {
	var sb strings.Builder
	for i, b := range raw {
		if i > 0 && (i <= PosDataStart || i == len(raw)-1) {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}

// FormatPayload renders the payload as text where printable. Cassette
// traffic from the radio to the monitor is rendered as hex only.
func FormatPayload(f *Frame) string {
	var sb strings.Builder

	if f.Is(DevRAD, DevBMBT) && (f.msgType == MsgCassetteControl || f.msgType == MsgCassetteStatus) {
		for i, b := range f.payload {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "0x%02x", b)
		}
		return sb.String()
	}

	for _, b := range f.payload {
		if b < 0x20 || b > 0x7F {
			fmt.Fprintf(&sb, "0x%02x ", b)
		} else {
			sb.WriteByte(b)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}
