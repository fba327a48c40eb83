// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/dactyl/pkg/sensor"
	"github.com/Thermoquad/dactyl/pkg/zw101"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const snapshotInterval = 250 * time.Millisecond

// Focus states
const (
	focusActionList = iota
	focusArgInput
	focusButton
)

// Argument an action reads from the input field
type argKind int

const (
	argNone argKind = iota
	argTemplateID
	argTimeout
	argLED
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// action is one entry of the action list
type action struct {
	key         string
	title       string
	description string
	arg         argKind
	placeholder string
}

// Implement list.Item interface
func (a action) Title() string       { return fmt.Sprintf("[%s] %s", a.key, a.title) }
func (a action) Description() string { return a.description }
func (a action) FilterValue() string { return a.title }

var controlActions = []action{
	{key: "e", title: "Enroll", description: "Five-sample enrollment"},
	{key: "d", title: "Delete", description: "Remove one template", arg: argTemplateID, placeholder: "0"},
	{key: "c", title: "Clear", description: "Erase the library"},
	{key: "i", title: "Index", description: "List enrolled ids"},
	{key: "t", title: "Count", description: "Read template count"},
	{key: "p", title: "Parameters", description: "Read system parameters"},
	{key: "a", title: "Auto Enroll", description: "Module-driven enroll", arg: argTimeout, placeholder: "10"},
	{key: "m", title: "Auto Match", description: "Module-driven search"},
	{key: "x", title: "Cancel Auto", description: "Abort auto mode"},
	{key: "l", title: "LED", description: "Ring light", arg: argLED, placeholder: "breathing blue 128"},
	{key: "s", title: "Sleep", description: "Enter low-power sleep"},
	{key: "w", title: "Wake", description: "Resume searching"},
	{key: "h", title: "Handshake", description: "Check the module"},
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	// Connection manager (for running actions and reconnection)
	connMgr  *connectionManager
	connInfo string

	// Actions
	actionList   list.Model
	argInput     textinput.Model
	focusedField int
	busy         string

	// Device state
	snap     *sensor.Snapshot
	enrolled []uint16
	hasIndex bool

	// Monitoring
	errorLog      []errorLogEntry
	maxLogEntries int
	lastMatchAt   time.Time

	// UI state
	width          int
	height         int
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

type controlEventKind int

const (
	eventStatus controlEventKind = iota
	eventPresence
	eventMatch
	eventError
)

type controlEventMsg struct {
	at      time.Time
	kind    controlEventKind
	text    string
	present bool
	id      uint16
	score   uint16
}

type controlBatchMsg struct {
	events []controlEventMsg
}

type snapshotMsg sensor.Snapshot

type actionResultMsg struct {
	label  string
	detail string
	ids    []uint16
	index  bool
	err    error
}

type connectionLostMsg struct{}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(connMgr *connectionManager, connInfo string) controlModel {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 24

	items := make([]list.Item, len(controlActions))
	for i, a := range controlActions {
		items[i] = a
	}
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	actionList := list.New(items, delegate, 30, 10)
	actionList.Title = "Actions"
	actionList.SetShowStatusBar(false)
	actionList.SetShowHelp(false)
	actionList.SetFilteringEnabled(false)

	m := controlModel{
		connMgr:       connMgr,
		connInfo:      connInfo,
		actionList:    actionList,
		argInput:      ti,
		focusedField:  focusActionList,
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
	m.syncArgInput()
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return controlTickCmd()
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(snapshotInterval, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()

	case controlTickMsg:
		return m, tea.Batch(controlTickCmd(), m.connMgr.snapshot())

	case snapshotMsg:
		snap := sensor.Snapshot(msg)
		m.snap = &snap

	case controlBatchMsg:
		for _, ev := range msg.events {
			m.processEvent(ev)
		}

	case actionResultMsg:
		m.processResult(msg)

	case connectionLostMsg:
		m.connectionLost = true
		m.busy = ""
		m.addLogEntry("Connection lost - reconnecting...", true)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.snap = nil
		m.hasIndex = false
		m.addLogEntry("Reconnected", false)
	}

	if m.focusedField == focusArgInput {
		var cmd tea.Cmd
		m.argInput, cmd = m.argInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		return m.cycleFocus(1), nil

	case "shift+tab":
		return m.cycleFocus(-1), nil

	case "enter":
		return m.runSelected()

	case "esc":
		m.focusedField = focusActionList
		m.argInput.Blur()
		return m, nil
	}

	if m.focusedField == focusArgInput {
		var cmd tea.Cmd
		m.argInput, cmd = m.argInput.Update(msg)
		return m, cmd
	}

	if msg.String() == "q" {
		m.quitting = true
		return m, tea.Quit
	}

	// Hotkeys select and run an action from the list
	for i, a := range controlActions {
		if msg.String() == a.key {
			m.actionList.Select(i)
			m.syncArgInput()
			if a.arg != argNone && m.argInput.Value() == "" {
				m.focusedField = focusArgInput
				m.argInput.Focus()
				return m, textinput.Blink
			}
			return m.runSelected()
		}
	}

	if m.focusedField == focusActionList {
		m.actionList, _ = m.actionList.Update(msg)
		m.syncArgInput()
	}
	return m, nil
}

func (m *controlModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	m.actionList, _ = m.actionList.Update(msg)
	m.syncArgInput()
	return m, nil
}

func (m *controlModel) cycleFocus(delta int) *controlModel {
	maxFocus := focusButton
	m.focusedField = (m.focusedField + delta + maxFocus + 1) % (maxFocus + 1)

	// Skip the argument field for actions without one
	if m.focusedField == focusArgInput && m.selectedAction().arg == argNone {
		m.focusedField = (m.focusedField + delta + maxFocus + 1) % (maxFocus + 1)
	}

	if m.focusedField == focusArgInput {
		m.argInput.Focus()
	} else {
		m.argInput.Blur()
	}
	return m
}

// syncArgInput resets the argument field when the selection changes
func (m *controlModel) syncArgInput() {
	a := m.selectedAction()
	if m.argInput.Placeholder != a.placeholder {
		m.argInput.Placeholder = a.placeholder
		m.argInput.SetValue("")
	}
}

func (m *controlModel) selectedAction() action {
	idx := m.actionList.Index()
	if idx < 0 || idx >= len(controlActions) {
		return controlActions[0]
	}
	return controlActions[idx]
}

// argValue returns the typed argument, or the placeholder when empty
func (m *controlModel) argValue() string {
	if v := strings.TrimSpace(m.argInput.Value()); v != "" {
		return v
	}
	return m.argInput.Placeholder
}

//////////////////////////////////////////////////////////////
// Actions
//////////////////////////////////////////////////////////////

func (m *controlModel) runSelected() (tea.Model, tea.Cmd) {
	if m.connectionLost {
		m.addLogEntry("Cannot run action: connection lost", true)
		return m, nil
	}
	if m.busy != "" {
		m.addLogEntry(fmt.Sprintf("Busy: %s", m.busy), true)
		return m, nil
	}

	a := m.selectedAction()
	cmd, err := m.actionCmd(a)
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}

	m.busy = a.title
	m.focusedField = focusActionList
	m.argInput.Blur()
	return m, cmd
}

// actionCmd builds the command for a, validating its argument first
func (m *controlModel) actionCmd(a action) (tea.Cmd, error) {
	cm := m.connMgr
	switch a.key {
	case "e":
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			return fmt.Sprintf("place finger (slot %d)", d.NextID()), d.RegisterFingerprint()
		}), nil

	case "d":
		id, err := parseTemplateID(m.argValue())
		if err != nil {
			return nil, err
		}
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			return fmt.Sprintf("id %d", id), d.Delete(id)
		}), nil

	case "c":
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			return "", d.ClearLibrary()
		}), nil

	case "i":
		return func() tea.Msg {
			var ids []uint16
			msg := cm.do(a.title, func(d *sensor.Device) (string, error) {
				var err error
				ids, err = readEnrolledIDs(d)
				return zw101.FormatIDList(ids), err
			})()
			res := msg.(actionResultMsg)
			res.ids, res.index = ids, res.err == nil
			return res
		}, nil

	case "t":
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			n, err := d.ReadValidTemplateCount()
			return fmt.Sprintf("%d enrolled", n), err
		}), nil

	case "p":
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			p, err := d.ReadSystemParameters()
			return fmt.Sprintf("library %d, security %d, %d baud", p.LibrarySize, p.SecurityLevel, p.BaudRate()), err
		}), nil

	case "a":
		timeout, err := parseAutoTimeout(m.argValue())
		if err != nil {
			return nil, err
		}
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			return timeout.String(), d.StartAutoEnroll(timeout)
		}), nil

	case "m":
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			return "", d.StartAutoMatch()
		}), nil

	case "x":
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			return "", d.CancelAutoMode()
		}), nil

	case "l":
		mode, color, duty, err := parseLEDArgs(strings.Fields(m.argValue()))
		if err != nil {
			return nil, err
		}
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			detail := fmt.Sprintf("%s %s duty=%d", zw101.FormatLEDMode(mode), zw101.FormatLEDColor(color), duty)
			return detail, d.SetLED(mode, color, duty)
		}), nil

	case "s":
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			return "", d.EnterSleep()
		}), nil

	case "w":
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			d.EnableSearch()
			return "search resumed", nil
		}), nil

	case "h":
		return cm.do(a.title, func(d *sensor.Device) (string, error) {
			return "", d.Handshake()
		}), nil
	}
	return nil, fmt.Errorf("unknown action %q", a.key)
}

//////////////////////////////////////////////////////////////
// Data Processing
//////////////////////////////////////////////////////////////

func (m *controlModel) processEvent(ev controlEventMsg) {
	switch ev.kind {
	case eventStatus:
		m.addLogEntryAt(ev.at, ev.text, false)
	case eventPresence:
		if ev.present {
			m.addLogEntryAt(ev.at, "Finger recognized", false)
		} else {
			m.addLogEntryAt(ev.at, "Finger cleared", false)
		}
	case eventMatch:
		m.lastMatchAt = ev.at
		m.addLogEntryAt(ev.at, fmt.Sprintf("Match: ID %d (score %d)", ev.id, ev.score), false)
	case eventError:
		m.addLogEntryAt(ev.at, ev.text, true)
	}
}

func (m *controlModel) processResult(res actionResultMsg) {
	if res.label == m.busy {
		m.busy = ""
	}
	if res.index {
		m.enrolled = res.ids
		m.hasIndex = true
	}

	if res.err != nil {
		m.addLogEntry(fmt.Sprintf("%s failed: %v", res.label, res.err), true)
		return
	}
	if res.detail != "" {
		m.addLogEntry(fmt.Sprintf("%s: %s", res.label, res.detail), false)
	} else {
		m.addLogEntry(fmt.Sprintf("%s: ok", res.label), false)
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

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

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	buttonStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("12")).
		Padding(0, 2)

	focusedButtonStyle := buttonStyle.
		Background(lipgloss.Color("10"))

	// Header
	s.WriteString(titleStyle.Render("DACTYL CONTROL"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit Tab=switch Enter=run", connStatus)))
	s.WriteString("\n\n")

	// Layout: left panel (actions) | right panel (device)
	leftWidth := 30
	rightWidth := m.width - leftWidth - 6

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusActionList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	actionPanel := listStyle.Render(m.actionList.View())

	devicePanel := boxStyle.Width(rightWidth).Render(
		m.renderDevicePanel(statsLabelStyle, statsValueStyle, errorStyle, warningStyle, headerStyle, buttonStyle, focusedButtonStyle))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, actionPanel, " ", devicePanel))
	s.WriteString("\n\n")

	s.WriteString(m.renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle))
	s.WriteString("\n\n")

	s.WriteString(m.renderEventLog(statsLabelStyle, warningStyle, boxStyle))

	return s.String()
}

func (m controlModel) renderDevicePanel(statsLabelStyle, statsValueStyle, errorStyle, warningStyle, headerStyle, buttonStyle, focusedButtonStyle lipgloss.Style) string {
	var s strings.Builder

	if m.snap == nil {
		s.WriteString(warningStyle.Render("Waiting for module..."))
		s.WriteString("\n\n")
	} else {
		snap := m.snap
		status := snap.Status
		if status == "" {
			status = "-"
		}
		s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Status:"), statsValueStyle.Render(status)))

		finger := headerStyle.Render("none")
		if snap.FingerPresent {
			finger = statsValueStyle.Render(fmt.Sprintf("ID %d (score %d)", snap.MatchID, snap.MatchScore))
		}
		s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Finger:"), finger))

		s.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Library:"), statsValueStyle.Render(fmt.Sprintf("%d slots", snap.Capacity)),
			statsLabelStyle.Render("Next ID:"), statsValueStyle.Render(fmt.Sprintf("%d", snap.NextID)),
		))

		mode := snap.SearchStage.String()
		switch {
		case snap.Sleeping:
			mode = warningStyle.Render("SLEEPING")
		case snap.EnrollStage != sensor.EnrollIdle:
			mode = warningStyle.Render(fmt.Sprintf("ENROLL %s (%d/%d)", snap.EnrollStage, snap.EnrollSamples, sensor.EnrollSamples))
		case snap.AutoMode != sensor.AutoNone:
			mode = warningStyle.Render(snap.AutoMode.String())
			if !snap.AutoDeadline.IsZero() {
				mode += headerStyle.Render(fmt.Sprintf(" (%ds left)", int(time.Until(snap.AutoDeadline).Seconds())))
			}
		default:
			mode = statsValueStyle.Render("SEARCH " + mode)
		}
		s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Mode:"), mode))

		if m.hasIndex {
			s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Enrolled:"), statsValueStyle.Render(zw101.FormatIDList(m.enrolled))))
		}
		if !m.lastMatchAt.IsZero() {
			s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Last Match:"), headerStyle.Render(m.lastMatchAt.Format("15:04:05"))))
		}
		s.WriteString("\n")
	}

	// Argument and run button for the selected action
	a := m.selectedAction()
	if a.arg != argNone {
		s.WriteString(statsLabelStyle.Render("Argument: "))
		if m.focusedField == focusArgInput {
			s.WriteString(m.argInput.View())
		} else {
			s.WriteString(fmt.Sprintf("[%s]", m.argValue()))
		}
		s.WriteString("\n\n")
	}

	btnText := fmt.Sprintf("[ %s ]", a.title)
	if m.busy != "" {
		btnText = fmt.Sprintf("[ %s... ]", m.busy)
	}
	if m.focusedField == focusButton {
		s.WriteString(focusedButtonStyle.Render(btnText))
	} else {
		s.WriteString(buttonStyle.Render(btnText))
	}
	if m.connectionLost {
		s.WriteString(" ")
		s.WriteString(errorStyle.Render("offline"))
	}

	return s.String()
}

func (m controlModel) renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle lipgloss.Style) string {
	var stats zw101.Statistics
	if m.snap != nil {
		stats = m.snap.Stats
	}

	failures := statsValueStyle.Render("0")
	if stats.Failures > 0 {
		failures = errorStyle.Render(fmt.Sprintf("%d", stats.Failures))
	}
	timeouts := statsValueStyle.Render("0")
	if stats.Timeouts > 0 {
		timeouts = errorStyle.Render(fmt.Sprintf("%d", stats.Timeouts))
	}

	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s",
		statsLabelStyle.Render("Commands:"), statsValueStyle.Render(fmt.Sprintf("%d", stats.Commands)),
		statsLabelStyle.Render("Acks:"), statsValueStyle.Render(fmt.Sprintf("%d", stats.Acks)),
		statsLabelStyle.Render("Failed:"), failures,
		statsLabelStyle.Render("Timeouts:"), timeouts,
		statsLabelStyle.Render("Checksum:"), statsValueStyle.Render(fmt.Sprintf("%d", stats.ChecksumErrors)),
	)

	return boxStyle.Width(m.width - 4).Render(content)
}

func (m controlModel) renderEventLog(statsLabelStyle, warningStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyleLocal := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	logHeight := 8
	if len(m.errorLog) < logHeight {
		logHeight = len(m.errorLog)
	}
	startIdx := len(m.errorLog) - logHeight

	if len(m.errorLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyleLocal
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(timestamp),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.addLogEntryAt(time.Now(), message, isError)
}

func (m *controlModel) addLogEntryAt(at time.Time, message string, isError bool) {
	if at.IsZero() {
		at = time.Now()
	}
	m.errorLog = append(m.errorLog, errorLogEntry{
		timestamp: at,
		message:   message,
		isError:   isError,
	})

	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

func (m *controlModel) updateListSize() {
	listHeight := m.height / 2
	if listHeight < 6 {
		listHeight = 6
	}
	m.actionList.SetSize(28, listHeight)
}
