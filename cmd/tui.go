// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/dactyl/pkg/zw101"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Error log entry
type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for warnings
}

// Last exchange seen on the line
type exchangeData struct {
	timestamp   time.Time
	opcode      uint8
	confirm     zw101.ConfirmCode
	answered    bool
	libraryUsed uint16
	hasCount    bool
	params      *zw101.SystemParameters
}

// TUI model
type model struct {
	connInfo      string
	statsInterval int
	showAll       bool
	stats         *zw101.Statistics
	errorLog      []errorLogEntry
	maxLogEntries int
	synchronized  bool
	invalidBytes  int
	width         int
	height        int
	quitting      bool
	lastExchange  *exchangeData
}

// Messages
type tickMsg time.Time
type serialDataMsg struct {
	packet           *zw101.Packet
	decodeErr        error
	validationErrors []zw101.ValidationError
}
type syncMsg struct {
	invalidBytes int
}

// formatUptime formats a duration in milliseconds to human-friendly string
func formatUptime(ms uint64) string {
	if ms == 0 {
		return "0 seconds"
	}

	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	seconds %= 60
	minutes %= 60
	hours %= 24

	plural := func(n uint64, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	parts := []string{}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

func initialModel(connInfo string, statsInterval int, showAll bool) model {
	return model{
		connInfo:      connInfo,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         zw101.NewStatistics(),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m model) Init() tea.Cmd {
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

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.addLogEntry("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case syncMsg:
		m.synchronized = true
		m.invalidBytes = msg.invalidBytes
		if msg.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.invalidBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case serialDataMsg:
		if msg.decodeErr != nil {
			if m.synchronized {
				m.stats.Update(nil, msg.decodeErr, nil)
				m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", msg.decodeErr), true)
			}
		} else if msg.packet != nil {
			m.stats.Update(msg.packet, nil, msg.validationErrors)
			m.trackExchange(msg.packet)

			name := frameName(msg.packet)
			if len(msg.validationErrors) > 0 {
				for _, err := range msg.validationErrors {
					m.addLogEntry(fmt.Sprintf("%s: %s", name, err.Message), true)
				}
			} else if msg.packet.IsAck() && msg.packet.Confirm() != zw101.ConfirmOK {
				m.addLogEntry(fmt.Sprintf("%s: %s", name, msg.packet.Confirm()), false)
			} else if m.showAll {
				m.addLogEntry(fmt.Sprintf("%s (valid)", name), false)
			}
		}
	}

	return m, nil
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

// frameName names a frame by its opcode or identifier
func frameName(p *zw101.Packet) string {
	if p.IsCommand() {
		return zw101.OpcodeName(p.Opcode())
	}
	return zw101.FormatIdentifier(p.ID())
}

// trackExchange pairs commands with their acks and keeps library details
// the host asked for
func (m *model) trackExchange(p *zw101.Packet) {
	switch {
	case p.IsCommand():
		prev := m.lastExchange
		m.lastExchange = &exchangeData{timestamp: p.Timestamp(), opcode: p.Opcode()}
		if prev != nil {
			m.lastExchange.libraryUsed = prev.libraryUsed
			m.lastExchange.hasCount = prev.hasCount
			m.lastExchange.params = prev.params
		}

	case p.IsAck():
		if m.lastExchange == nil {
			return
		}
		m.lastExchange.confirm = p.Confirm()
		m.lastExchange.answered = true
		if p.Confirm() != zw101.ConfirmOK {
			return
		}
		switch m.lastExchange.opcode {
		case zw101.CmdValidTemplates:
			if n, ok := zw101.ParseTemplateCount(p.Payload()); ok {
				m.lastExchange.libraryUsed = n
				m.lastExchange.hasCount = true
			}
		case zw101.CmdReadSysPara:
			if params, ok := zw101.ParseSystemParameters(p.Payload()); ok {
				m.lastExchange.params = &params
			}
		}
	}
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
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

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("DACTYL - ERROR DETECTION"))
	s.WriteString("\n")
	mode := "Errors only"
	if m.showAll {
		mode = "All frames"
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | 'r' reset | 'q' quit", m.connInfo, mode)))
	s.WriteString("\n\n")

	// Sync status
	if !m.synchronized {
		s.WriteString(warningStyle.Render("⏳ Waiting for synchronization..."))
		s.WriteString("\n\n")
	} else {
		s.WriteString(statsValueStyle.Render("✓ Synchronized"))
		if m.invalidBytes > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d invalid bytes)", m.invalidBytes)))
		}
		s.WriteString("\n\n")
	}

	// Statistics
	m.stats.CalculateRates()
	totalErrors := m.stats.ChecksumErrors + m.stats.DecodeErrors + m.stats.Anomalies
	var validPercent, errorPercent float64
	if m.stats.TotalFrames > 0 {
		validPercent = float64(m.stats.ValidFrames) * 100.0 / float64(m.stats.TotalFrames)
		errorPercent = float64(totalErrors) * 100.0 / float64(m.stats.TotalFrames)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidFrames, validPercent)),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", totalErrors, errorPercent)),
	))
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Commands:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.Commands)),
		statsLabelStyle.Render("Acks:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.Acks)),
		statsLabelStyle.Render("Failed:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.Failures)),
	))

	if m.stats.ChecksumErrors > 0 || m.stats.DecodeErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Checksum Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.ChecksumErrors)),
			statsLabelStyle.Render("Decode Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.DecodeErrors)),
		))
	}

	if m.stats.Anomalies > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s (%s: %d, %s: %d)\n",
			statsLabelStyle.Render("Anomalies:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.Anomalies)),
			headerStyle.Render("unknown opcode"), m.stats.UnknownOpcodes,
			headerStyle.Render("length mismatch"), m.stats.LengthMismatches,
		))
	}

	errorRate := statsValueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
	if m.stats.ErrorRate > 0 {
		errorRate = errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
	}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		statsLabelStyle.Render("Frame Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f frames/s", m.stats.FrameRate)),
		statsLabelStyle.Render("Error Rate:"), errorRate,
	))
	statsContent.WriteString(fmt.Sprintf("%s %s",
		statsLabelStyle.Render("Monitoring:"),
		statsValueStyle.Render(formatUptime(uint64(time.Since(m.stats.StartTime).Milliseconds()))),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Last exchange (only shown once a command was seen)
	if ex := m.lastExchange; ex != nil {
		s.WriteString(statsLabelStyle.Render("Latest Exchange:"))
		s.WriteString("\n")

		exContent := strings.Builder{}
		reply := headerStyle.Render("(waiting)")
		if ex.answered {
			if ex.confirm == zw101.ConfirmOK {
				reply = statsValueStyle.Render(ex.confirm.String())
			} else {
				reply = errorStyle.Render(ex.confirm.String())
			}
		}
		exContent.WriteString(fmt.Sprintf("%s %s   %s %s",
			statsLabelStyle.Render("Command:"), statsValueStyle.Render(zw101.OpcodeName(ex.opcode)),
			statsLabelStyle.Render("Reply:"), reply,
		))
		if ex.hasCount {
			exContent.WriteString(fmt.Sprintf("\n%s %s",
				statsLabelStyle.Render("Enrolled:"), statsValueStyle.Render(fmt.Sprintf("%d", ex.libraryUsed)),
			))
		}
		if ex.params != nil {
			exContent.WriteString(fmt.Sprintf("\n%s %s   %s %s",
				statsLabelStyle.Render("Library:"), statsValueStyle.Render(fmt.Sprintf("%d", ex.params.LibrarySize)),
				statsLabelStyle.Render("Security:"), statsValueStyle.Render(fmt.Sprintf("%d", ex.params.SecurityLevel)),
			))
		}

		s.WriteString(boxStyle.Render(exContent.String()))
		s.WriteString("\n\n")
	}

	// Error log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 18 // Reserve space for header and stats
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
