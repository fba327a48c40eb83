// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Thermoquad/dactyl/pkg/sensor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for operating a fingerprint module",
	Long: `Operate a ZW101 fingerprint module via an interactive terminal UI.

The module runs its search loop continuously while the TUI is open. Matches,
finger presence and status changes appear live, and every library operation
can be triggered from the action list.

Features:
  - Live status, match and enrollment progress
  - Enroll, delete and clear templates
  - Module-driven auto enroll and auto match
  - Ring light control and sleep
  - Exchange statistics and event logging
  - Automatic reconnection on connection loss

Tab switches between the action list, the argument field and the run button.

Supports both serial and WebSocket connections.`,
	Annotations: map[string]string{"tui": "true"},
	RunE:        runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// errConnectionLost is reported for actions issued while reconnecting
var errConnectionLost = errors.New("connection lost")

// actionTimeout bounds one action, including waiting for the device goroutine
const actionTimeout = 10 * time.Second

// connectionManager handles the device session lifecycle and reconnection
type connectionManager struct {
	mu       sync.RWMutex
	runner   *sensor.Runner
	connInfo string
	p        *tea.Program
	events   chan controlEventMsg
	done     chan struct{}
}

func (cm *connectionManager) getRunner() *sensor.Runner {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.runner
}

func (cm *connectionManager) setRunner(r *sensor.Runner, connInfo string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.runner = r
	if connInfo != "" {
		cm.connInfo = connInfo
	}
}

func runControl(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		exitConnectionError(err)
	}

	cm := &connectionManager{
		connInfo: connInfo,
		events:   make(chan controlEventMsg, 100),
		done:     make(chan struct{}),
	}

	m := initialControlModel(cm, connInfo)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	cm.p = p

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		cm.sessionLoop(conn, connInfo)
	}()
	go func() {
		defer wg.Done()
		cm.batchLoop()
	}()

	_, err = p.Run()
	close(cm.done)
	wg.Wait()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// sessionLoop drives device sessions until shutdown, reconnecting on loss
func (cm *connectionManager) sessionLoop(conn Connection, connInfo string) {
	for {
		if !cm.runSession(conn, connInfo) {
			return
		}
		cm.p.Send(connectionLostMsg{})

		var ok bool
		conn, connInfo, ok = cm.reconnect()
		if !ok {
			return
		}
		cm.p.Send(reconnectedMsg{connInfo: connInfo})
	}
}

// runSession runs one device on conn until the stream fails or shutdown.
// Returns true if the connection was lost, false if shutdown requested.
func (cm *connectionManager) runSession(conn Connection, connInfo string) bool {
	defer conn.Close()

	tr := sensor.NewStreamTransport(conn)
	dev, err := sensor.New(opts.sensorConfig(tr, &tuiObserver{events: cm.events}))
	if err != nil {
		cm.emit(controlEventMsg{kind: eventError, text: err.Error()})
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	runner := sensor.NewRunner(dev, opts.Tick)
	errc := make(chan error, 1)
	go func() { errc <- runner.Run(ctx) }()
	cm.setRunner(runner, connInfo)

	stop := func() {
		cm.setRunner(nil, "")
		cancel()
		<-errc
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-cm.done:
			stop()
			return false
		case <-ticker.C:
			if err := tr.Err(); err != nil {
				logger.Warn().Err(err).Msg("connection lost")
				stop()
				return true
			}
		}
	}
}

// reconnect attempts to reconnect with exponential backoff
// Returns false if shutdown was requested during reconnection
func (cm *connectionManager) reconnect() (Connection, string, bool) {
	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return nil, "", false
		case <-time.After(backoff):
		}

		conn, connInfo, err := OpenConnection()
		if err == nil {
			return conn, connInfo, true
		}
		logger.Debug().Err(err).Dur("backoff", backoff).Msg("reconnect failed")

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// batchLoop forwards observer events to the TUI at a fixed rate
func (cm *connectionManager) batchLoop() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-cm.done:
			return
		case <-ticker.C:
			var batch controlBatchMsg
		drainLoop:
			for {
				select {
				case ev := <-cm.events:
					batch.events = append(batch.events, ev)
				default:
					break drainLoop
				}
			}
			if len(batch.events) > 0 {
				cm.p.Send(batch)
			}
		}
	}
}

func (cm *connectionManager) emit(ev controlEventMsg) {
	ev.at = time.Now()
	select {
	case cm.events <- ev:
	default:
	}
}

// do returns a command running fn on the device goroutine
func (cm *connectionManager) do(label string, fn func(*sensor.Device) (string, error)) tea.Cmd {
	return func() tea.Msg {
		runner := cm.getRunner()
		if runner == nil {
			return actionResultMsg{label: label, err: errConnectionLost}
		}

		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		var detail string
		err := runner.Do(ctx, func(d *sensor.Device) error {
			var err error
			detail, err = fn(d)
			return err
		})
		return actionResultMsg{label: label, detail: detail, err: err}
	}
}

// snapshot returns a command fetching the device state
func (cm *connectionManager) snapshot() tea.Cmd {
	return func() tea.Msg {
		runner := cm.getRunner()
		if runner == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()

		var snap sensor.Snapshot
		if err := runner.Do(ctx, func(d *sensor.Device) error {
			snap = d.Snapshot()
			return nil
		}); err != nil {
			return nil
		}
		return snapshotMsg(snap)
	}
}

// tuiObserver queues device outputs for the TUI. Updates are dropped when
// the queue is full.
type tuiObserver struct {
	events chan<- controlEventMsg
}

func (o *tuiObserver) send(ev controlEventMsg) {
	ev.at = time.Now()
	select {
	case o.events <- ev:
	default:
	}
}

func (o *tuiObserver) FingerprintPresent(present bool) {
	o.send(controlEventMsg{kind: eventPresence, present: present})
}

func (o *tuiObserver) MatchFound(id, score uint16) {
	o.send(controlEventMsg{kind: eventMatch, id: id, score: score})
}

func (o *tuiObserver) StatusChanged(status string) {
	o.send(controlEventMsg{kind: eventStatus, text: status})
}
