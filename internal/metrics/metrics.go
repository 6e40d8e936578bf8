// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package metrics exports engine activity to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Thermoquad/ibusd/pkg/headunit"
	"github.com/Thermoquad/ibusd/pkg/ibus"
)

// NewRegistry creates a registry with the Go and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus text format
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// EngineMetrics implements headunit.Observer
type EngineMetrics struct {
	FramesTotal  *prometheus.CounterVec // labels: message
	DropsTotal   *prometheus.CounterVec // labels: reason
	ButtonsTotal *prometheus.CounterVec // labels: button, forwarded
	ModeChanges  prometheus.Counter
	Mode         *prometheus.GaugeVec // labels: mode, 1 for the current mode
	GateEnabled  prometheus.Gauge
}

var _ headunit.Observer = (*EngineMetrics)(nil)

// NewEngineMetrics registers and returns the engine metrics
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ibusd_frames_total",
			Help: "Valid frames by message type.",
		}, []string{"message"}),
		DropsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ibusd_frame_drops_total",
			Help: "Discarded candidates by reason.",
		}, []string{"reason"}),
		ButtonsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ibusd_button_events_total",
			Help: "Decoded button events.",
		}, []string{"button", "forwarded"}),
		ModeChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ibusd_mode_changes_total",
			Help: "Operating mode transitions.",
		}),
		Mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ibusd_mode",
			Help: "Current head-unit operating mode.",
		}, []string{"mode"}),
		GateEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ibusd_gate_enabled",
			Help: "1 while button forwarding and the video line are active.",
		}),
	}
	reg.MustRegister(m.FramesTotal, m.DropsTotal, m.ButtonsTotal, m.ModeChanges, m.Mode, m.GateEnabled)

	m.Mode.WithLabelValues(headunit.ModeUnknown.String()).Set(1)
	return m
}

// FrameDecoded counts a valid frame by message type
func (m *EngineMetrics) FrameDecoded(f *ibus.Frame) {
	m.FramesTotal.WithLabelValues(fmt.Sprintf("0x%02X", f.Type())).Inc()
}

// FrameDropped counts a discarded candidate by reason
func (m *EngineMetrics) FrameDropped(err error) {
	m.DropsTotal.WithLabelValues(DropReason(err)).Inc()
}

// ButtonDecoded counts a button event
func (m *EngineMetrics) ButtonDecoded(ev headunit.ButtonEvent, forwarded bool) {
	m.ButtonsTotal.WithLabelValues(ev.Button.String(), strconv.FormatBool(forwarded)).Inc()
}

// ModeChanged counts a transition and moves the mode gauge
func (m *EngineMetrics) ModeChanged(from, to headunit.Mode) {
	m.ModeChanges.Inc()
	m.Mode.WithLabelValues(from.String()).Set(0)
	m.Mode.WithLabelValues(to.String()).Set(1)
}

// GateChanged sets the gate gauge
func (m *EngineMetrics) GateChanged(enabled bool) {
	if enabled {
		m.GateEnabled.Set(1)
	} else {
		m.GateEnabled.Set(0)
	}
}

// DropReason labels a frame error
func DropReason(err error) string {
	switch {
	case errors.Is(err, ibus.ErrChecksumMismatch):
		return "checksum"
	case errors.Is(err, ibus.ErrMalformedLength):
		return "malformed_length"
	case errors.Is(err, ibus.ErrBufferOverflow):
		return "overflow"
	case errors.Is(err, ibus.ErrFrameIncomplete):
		return "incomplete"
	default:
		return "other"
	}
}
