// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/time/rate"

	"github.com/Thermoquad/ibusd/pkg/headunit"
	"github.com/Thermoquad/ibusd/pkg/ibus"
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// monitorModel is the Bubble Tea model for the bus monitor
type monitorModel struct {
	connInfo      string
	showAll       bool
	snapshot      headunit.Snapshot
	synchronized  bool
	eventLog      []eventLogEntry
	maxLogEntries int
	logView       viewport.Model
	width         int
	height        int
	quitting      bool
	runErr        error
}

// Messages
type tickMsg time.Time
type snapshotMsg headunit.Snapshot
type eventMsg eventLogEntry
type runDoneMsg struct{ err error }

// headerLines is the height of everything above the event log
const headerLines = 14

func initialMonitorModel(connInfo string, target headunit.HijackTarget, showAll bool) monitorModel {
	vp := viewport.New(76, 10)
	return monitorModel{
		connInfo:      connInfo,
		showAll:       showAll,
		snapshot:      headunit.Snapshot{Target: target, Stats: *ibus.NewStatistics()},
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 500,
		logView:       vp,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = max(msg.Width-4, 20)
		m.logView.Height = max(msg.Height-headerLines, 5)
		m.refreshLog()

	case tickMsg:
		return m, tickCmd()

	case snapshotMsg:
		m.snapshot = headunit.Snapshot(msg)
		if m.snapshot.Stats.ValidFrames > 0 {
			m.synchronized = true
		}
		return m, nil

	case eventMsg:
		m.addLogEntry(eventLogEntry(msg))
		return m, nil

	case runDoneMsg:
		m.runErr = msg.err
		text := "Connection closed"
		if msg.err != nil {
			text = fmt.Sprintf("Stopped: %v", msg.err)
		}
		m.addLogEntry(eventLogEntry{timestamp: time.Now(), message: text, isError: msg.err != nil})
		return m, nil
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m *monitorModel) addLogEntry(entry eventLogEntry) {
	m.eventLog = append(m.eventLog, entry)
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
	m.refreshLog()
}

// refreshLog re-renders the log, following the tail unless scrolled back
func (m *monitorModel) refreshLog() {
	follow := m.logView.AtBottom()

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	var b strings.Builder
	if len(m.eventLog) == 0 {
		b.WriteString(headerStyle.Render("  (no events yet)"))
	}
	for _, entry := range m.eventLog {
		ts := headerStyle.Render(entry.timestamp.Format("15:04:05.000"))
		if entry.isError {
			fmt.Fprintf(&b, "%s %s\n", ts, errorStyle.Render("✗ "+entry.message))
		} else {
			fmt.Fprintf(&b, "%s %s\n", ts, infoStyle.Render("ℹ "+entry.message))
		}
	}
	m.logView.SetContent(b.String())
	if follow {
		m.logView.GotoBottom()
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("IBUSD - BUS MONITOR"))
	s.WriteString("\n")
	mode := "Errors only"
	if m.showAll {
		mode = "All frames"
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Log: %s | Press 'q' to quit, arrows to scroll", m.connInfo, mode)))
	s.WriteString("\n\n")

	if !m.synchronized {
		s.WriteString(warningStyle.Render("⏳ Waiting for a valid frame..."))
	} else {
		s.WriteString(statsValueStyle.Render("✓ Synchronized"))
	}
	s.WriteString("\n\n")

	// Head unit state
	gate := warningStyle.Render("closed")
	if m.snapshot.GateEnabled {
		gate = statsValueStyle.Render("open")
	}
	state := fmt.Sprintf("%s %s   %s %s   %s %s   %s %s",
		statsLabelStyle.Render("Mode:"), statsValueStyle.Render(m.snapshot.Mode.String()),
		statsLabelStyle.Render("Hijack:"), statsValueStyle.Render(m.snapshot.Target.String()),
		statsLabelStyle.Render("Gate:"), gate,
		statsLabelStyle.Render("Buffered:"), statsValueStyle.Render(fmt.Sprintf("%d", m.snapshot.Buffered)),
	)

	// Statistics
	stats := m.snapshot.Stats
	stats.CalculateRates()
	var validPercent float64
	if stats.TotalFrames > 0 {
		validPercent = float64(stats.ValidFrames) * 100.0 / float64(stats.TotalFrames)
	}
	errCount := fmt.Sprintf("%d", stats.Errors())
	errRendered := statsValueStyle.Render(errCount)
	if stats.Errors() > 0 {
		errRendered = errorStyle.Render(errCount)
	}

	content := strings.Builder{}
	content.WriteString(state)
	content.WriteString("\n")
	fmt.Fprintf(&content, "%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Frames:"), statsValueStyle.Render(fmt.Sprintf("%d", stats.TotalFrames)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", stats.ValidFrames, validPercent)),
		statsLabelStyle.Render("Errors:"), errRendered,
	)
	fmt.Fprintf(&content, "%s %d   %s %d   %s %d\n",
		statsLabelStyle.Render("Checksum:"), stats.ChecksumErrors,
		statsLabelStyle.Render("Bad length:"), stats.MalformedLengths,
		statsLabelStyle.Render("Overflows:"), stats.BufferOverflows,
	)
	fmt.Fprintf(&content, "%s %s   %s %s",
		statsLabelStyle.Render("Frame Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f frames/s", stats.FrameRate)),
		statsLabelStyle.Render("Error Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f err/s", stats.ErrorRate)),
	)

	s.WriteString(boxStyle.Render(content.String()))
	s.WriteString("\n\n")

	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Width(m.width - 4).Render(m.logView.View()))

	return s.String()
}

// monitorObserver forwards engine events to the TUI. It runs on the engine
// goroutine, which is the only place a snapshot may be taken.
type monitorObserver struct {
	program  *tea.Program
	engine   *headunit.Engine
	showAll  bool
	snapshot *rate.Limiter
}

func newMonitorObserver(p *tea.Program, showAll bool, interval time.Duration) *monitorObserver {
	return &monitorObserver{
		program:  p,
		showAll:  showAll,
		snapshot: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (o *monitorObserver) send(entry *eventLogEntry) {
	if entry != nil {
		entry.timestamp = time.Now()
		o.program.Send(eventMsg(*entry))
	}
	if o.engine != nil && o.snapshot.Allow() {
		o.program.Send(snapshotMsg(o.engine.Snapshot()))
	}
}

// sendNow sends the entry with a snapshot regardless of the rate limit
func (o *monitorObserver) sendNow(entry *eventLogEntry) {
	entry.timestamp = time.Now()
	o.program.Send(eventMsg(*entry))
	if o.engine != nil {
		o.program.Send(snapshotMsg(o.engine.Snapshot()))
	}
}

func (o *monitorObserver) FrameDecoded(f *ibus.Frame) {
	if !o.showAll {
		o.send(nil)
		return
	}
	desc := headunit.Describe(f)
	if desc == "" {
		desc = ibus.MessageName(f.Type())
	}
	o.send(&eventLogEntry{message: fmt.Sprintf("%s -> %s: %s %s",
		ibus.DeviceName(f.Sender()), ibus.DeviceName(f.Receiver()), desc, ibus.FormatHex(f.Bytes()))})
}

func (o *monitorObserver) FrameDropped(err error) {
	o.send(&eventLogEntry{message: err.Error(), isError: true})
}

func (o *monitorObserver) ButtonDecoded(ev headunit.ButtonEvent, forwarded bool) {
	if !o.showAll {
		return
	}
	status := "ignored"
	if forwarded {
		status = "forwarded"
	}
	o.send(&eventLogEntry{message: fmt.Sprintf("%s (%s)", ev, status)})
}

func (o *monitorObserver) ModeChanged(from, to headunit.Mode) {
	o.sendNow(&eventLogEntry{message: fmt.Sprintf("Mode %s -> %s", from, to)})
}

func (o *monitorObserver) GateChanged(enabled bool) {
	if enabled {
		o.sendNow(&eventLogEntry{message: "Gate open"})
	} else {
		o.sendNow(&eventLogEntry{message: "Gate closed"})
	}
}
