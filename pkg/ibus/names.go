// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ibus

import "fmt"

var deviceNames = map[byte]string{
	DevGM:   "Body module",
	DevSHD:  "Sunroof Control",
	DevCDC:  "CD Changer",
	DevFUH:  "Radio controlled clock",
	DevCCM:  "Check control module",
	DevGT:   "Graphics driver",
	DevDIA:  "Diagnostic",
	DevFBZV: "Remote control central locking",
	DevGTF:  "Graphics driver for rear screen",
	DevEWS:  "Immobiliser",
	DevCID:  "Central information display",
	DevMFL:  "Multi function steering wheel",
	DevMM0:  "Mirror memory",
	DevIHK:  "Integrated heating and air conditioning",
	DevPDC:  "Park distance control",
	DevRAD:  "Radio",
	DevDSP:  "Digital signal processing audio amplifier",
	DevSM0:  "Seat memory",
	DevSDRS: "Sirius Radio",
	DevCDCD: "CD changer, DIN size",
	DevNAVE: "Navigation",
	DevIKE:  "Instrument cluster electronics",
	DevMM1:  "Mirror memory",
	DevMM2:  "Mirror memory",
	DevFMID: "Rear multi-info-display",
	DevABM:  "Air bag module",
	DevSES:  "Speed recognition system",
	DevNAVJ: "Navigation",
	DevGLO:  "Global, broadcast address",
	DevMID:  "Multi-info display",
	DevTEL:  "Telephone",
	DevLCM:  "Light control module",
	DevIRIS: "Integrated radio information system",
	DevANZV: "Front display",
	DevRLS:  "Rain/Light Sensor",
	DevTV:   "Television",
	DevBMBT: "On-board monitor operating part",
	DevLOC:  "Local",
}

var messageNames = map[byte]string{
	MsgDeviceStatusRequest: "Device status request",
	MsgDeviceStatusReady:   "Device status ready",
	MsgBusStatusRequest:    "Bus status request",
	MsgBusStatus:           "Bus status",
	MsgDiagReadMemory:      "DIAG read memory",
	MsgDiagWriteMemory:     "DIAG write memory",
	MsgDiagReadCoding:      "DIAG read coding data",
	MsgDiagWriteCoding:     "DIAG write coding data",
	MsgVehicleControl:      "Vehicle control",
	MsgIgnitionRequest:     "Ignition status request",
	MsgIgnitionStatus:      "Ignition status",
	MsgIKESensorRequest:    "IKE sensor status request",
	MsgIKESensorStatus:     "IKE sensor status",
	MsgCountryCodingReq:    "Country coding status request",
	MsgCountryCoding:       "Country coding status",
	MsgOdometerRequest:     "Odometer request",
	MsgOdometer:            "Odometer",
	MsgSpeedRPM:            "Speed/RPM",
	MsgTemperature:         "Temperature",
	MsgIKETextDisplay:      "IKE text display/Gong",
	MsgIKETextStatus:       "IKE text status",
	MsgGong:                "Gong",
	MsgTemperatureRequest:  "Temperature request",
	MsgUTCTimeDate:         "UTC time and date",
	MsgRadioShortcuts:      "Radio Short cuts",
	MsgTextConfirmation:    "Text display confirmation",
	MsgDisplayText:         "Display Text",
	MsgUpdateANZV:          "Update ANZV",
	MsgOBCStateUpdate:      "On-Board Computer State Update",
	MsgTelephoneIndicators: "Telephone indicators",
	MsgMFLButtons:          "MFL buttons",
	MsgDSPEqualizerButton:  "DSP Equalizer Button",
	MsgCDStatusRequest:     "CD status request",
	MsgCDStatus:            "CD status",
	MsgMFLButtons2:         "MFL buttons 2",
	MsgSDRSStatusRequest:   "SDRS status request",
	MsgSDRSStatus:          "SDRS status",
	MsgSetOBCData:          "Set On-Board Computer Data",
	MsgOBCDataRequest:      "On-Board Computer Data Request",
	MsgLCDClear:            "LCD Clear",
	MsgBMBTButtons0:        "BMBT buttons",
	MsgBMBTButtons1:        "BMBT buttons",
	MsgKnob:                "KNOB button",
	MsgCassetteControl:     "Cassette control",
	MsgCassetteStatus:      "Cassette status",
	MsgRGBControl:          "RGB Control",
	MsgVehicleDataRequest:  "Vehicle data request",
	MsgVehicleDataStatus:   "Vehicle data status",
	MsgLampStatusRequest:   "Lamp status request",
	MsgLampStatus:          "Lamp status",
	MsgClusterLighting:     "Instrument cluster lighting status",
	MsgRainSensorRequest:   "Rain sensor status request",
	MsgRemoteKeyButtons:    "Remote Key buttons",
	MsgEWSKeyStatus:        "EWS key status",
	MsgDoorsWindowsRequest: "Doors/windows status request",
	MsgDoorsWindowsStatus:  "Doors/windows status",
	MsgSHDStatus:           "SHD status",
	MsgDiagData:            "DIAG data",
	MsgPositionAndTime:     "Current position and time",
	MsgCurrentLocation:     "Current location",
	MsgScreenText:          "Screen text",
	MsgTMCStatusRequest:    "TMC status request",
	MsgNavigationControl:   "Navigation Control",
	MsgRDSChannelList:      "RDS channel list",
}

// Lookup tables covering every byte value; unnamed ids render as hex
var (
	deviceTable  [256]string
	messageTable [256]string
)

func init() {
	for i := range 256 {
		deviceTable[i] = fmt.Sprintf("0x%02X", i)
		messageTable[i] = fmt.Sprintf("0x%02X", i)
	}
	for id, name := range deviceNames {
		deviceTable[id] = name
	}
	for id, name := range messageNames {
		messageTable[id] = name
	}
}

// DeviceName returns the human-readable name for a device id
func DeviceName(id byte) string {
	return deviceTable[id]
}

// MessageName returns the human-readable name for a message type
func MessageName(msgType byte) string {
	return messageTable[msgType]
}
