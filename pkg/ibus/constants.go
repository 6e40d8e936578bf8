// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package ibus decodes the BMW IBus serial protocol.
//
// IBus frames are not delimited by a terminator. Each frame starts with the
// sender id followed by a length byte that counts every byte after itself:
//
//	sender | length | receiver | message | data (0-252 bytes) | checksum
//
// The checksum is the XOR of every preceding byte of the frame. The driving
// loop decides when a frame may be complete (inter-character silence) and the
// length byte gives the exact frame boundary.
package ibus

// Frame field offsets
const (
	PosSender    = 0
	PosLength    = 1
	PosReceiver  = 2
	PosMessage   = 3
	PosDataStart = 4
)

// Frame size limits
const (
	HeaderSize      = 2   // sender + length, not counted by the length byte
	MinFrameSize    = 5   // sender, length, receiver, message, checksum
	MaxFrameSize    = 257 // length byte 0xFF + HeaderSize
	MaxPayloadSize  = MaxFrameSize - MinFrameSize
	DefaultCapacity = MaxFrameSize * 8
)

// Device ids
const (
	DevGM   = 0x00 // Body module
	DevSHD  = 0x08 // Sunroof control
	DevCDC  = 0x18 // CD changer
	DevFUH  = 0x28 // Radio controlled clock
	DevCCM  = 0x30 // Check control module
	DevGT   = 0x3B // Graphics driver (navigation system)
	DevDIA  = 0x3F // Diagnostic
	DevFBZV = 0x40 // Remote control central locking
	DevGTF  = 0x43 // Graphics driver for rear screen
	DevEWS  = 0x44 // Immobiliser
	DevCID  = 0x46 // Central information display
	DevMFL  = 0x50 // Multi function steering wheel
	DevMM0  = 0x51 // Mirror memory
	DevIHK  = 0x5B // Integrated heating and air conditioning
	DevPDC  = 0x60 // Park distance control
	DevONL  = 0x67
	DevRAD  = 0x68 // Radio
	DevDSP  = 0x6A // DSP audio amplifier
	DevSM0  = 0x72 // Seat memory
	DevSDRS = 0x73 // Sirius radio
	DevCDCD = 0x76 // CD changer, DIN size
	DevNAVE = 0x7F // Navigation (Europe)
	DevIKE  = 0x80 // Instrument cluster electronics
	DevMM1  = 0x9B
	DevMM2  = 0x9C
	DevFMID = 0xA0 // Rear multi-info display
	DevABM  = 0xA4 // Air bag module
	DevKAM  = 0xA8
	DevASP  = 0xAC
	DevSES  = 0xB0 // Speed recognition system
	DevNAVJ = 0xBB // Navigation (Japan)
	DevGLO  = 0xBF // Global broadcast
	DevMID  = 0xC0 // Multi-info display
	DevTEL  = 0xC8 // Telephone
	DevTCU  = 0xCA
	DevLCM  = 0xD0 // Light control module
	DevGTHL = 0xDA
	DevIRIS = 0xE0 // Integrated radio information system
	DevANZV = 0xE7 // Front display
	DevRLS  = 0xE8 // Rain/light sensor
	DevTV   = 0xED // Television
	DevBMBT = 0xF0 // On-board monitor operating part
	DevCSU  = 0xF5
	DevLOC  = 0xFF // Local
)

// Message types
const (
	MsgDeviceStatusRequest = 0x01
	MsgDeviceStatusReady   = 0x02
	MsgBusStatusRequest    = 0x03
	MsgBusStatus           = 0x04
	MsgDiagReadMemory      = 0x06
	MsgDiagWriteMemory     = 0x07
	MsgDiagReadCoding      = 0x08
	MsgDiagWriteCoding     = 0x09
	MsgVehicleControl      = 0x0C
	MsgIgnitionRequest     = 0x10
	MsgIgnitionStatus      = 0x11
	MsgIKESensorRequest    = 0x12
	MsgIKESensorStatus     = 0x13
	MsgCountryCodingReq    = 0x14
	MsgCountryCoding       = 0x15
	MsgOdometerRequest     = 0x16
	MsgOdometer            = 0x17
	MsgSpeedRPM            = 0x18
	MsgTemperature         = 0x19
	MsgIKETextDisplay      = 0x1A
	MsgIKETextStatus       = 0x1B
	MsgGong                = 0x1C
	MsgTemperatureRequest  = 0x1D
	MsgUTCTimeDate         = 0x1F
	MsgRadioShortcuts      = 0x21
	MsgTextConfirmation    = 0x22
	MsgDisplayText         = 0x23
	MsgUpdateANZV          = 0x24
	MsgOBCStateUpdate      = 0x2A
	MsgTelephoneIndicators = 0x2B
	MsgMFLButtons          = 0x32 // volume bank
	MsgDSPEqualizerButton  = 0x34
	MsgCDStatusRequest     = 0x38
	MsgCDStatus            = 0x39
	MsgMFLButtons2         = 0x3B // channel / answer bank
	MsgSDRSStatusRequest   = 0x3D
	MsgSDRSStatus          = 0x3E
	MsgSetOBCData          = 0x40
	MsgOBCDataRequest      = 0x41
	MsgLCDClear            = 0x46
	MsgBMBTButtons0        = 0x47
	MsgBMBTButtons1        = 0x48
	MsgKnob                = 0x49
	MsgCassetteControl     = 0x4A
	MsgCassetteStatus      = 0x4B
	MsgRGBControl          = 0x4F
	MsgVehicleDataRequest  = 0x53
	MsgVehicleDataStatus   = 0x54
	MsgLampStatusRequest   = 0x5A
	MsgLampStatus          = 0x5B
	MsgClusterLighting     = 0x5C
	MsgRainSensorRequest   = 0x71
	MsgRemoteKeyButtons    = 0x72
	MsgEWSKeyStatus        = 0x74
	MsgDoorsWindowsRequest = 0x79
	MsgDoorsWindowsStatus  = 0x7A
	MsgSHDStatus           = 0x7C
	MsgDiagData            = 0xA0
	MsgPositionAndTime     = 0xA2
	MsgCurrentLocation     = 0xA4
	MsgScreenText          = 0xA5
	MsgTMCStatusRequest    = 0xA7
	MsgNavigationControl   = 0xAA
	MsgRDSChannelList      = 0xD4
)

// Display payload codes
const (
	LayoutRadioDisplay   = 0x62
	LCDNoDisplayRequired = 0x01
	LCDRadioDisplayOff   = 0x02
)
