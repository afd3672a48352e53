// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connectivity

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/protocol"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultReconnectInterval is how often a reload is attempted while offline.
	DefaultReconnectInterval = 10 * time.Second

	// counterInterval is the offline overlay refresh period.
	counterInterval = time.Second
)

// =============================================================================
// TYPES
// =============================================================================

// State is the supervisor's view of the connection.
type State int

const (
	Connecting State = iota
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Sender delivers outbound frames.
type Sender interface {
	Send(f protocol.Frame) error
}

// CounterTickMsg refreshes the offline counter.
type CounterTickMsg struct {
	Epoch string
	Time  time.Time
}

// ReconnectTickMsg fires once per reconnect interval while offline.
type ReconnectTickMsg struct {
	Epoch string
}

// ReloadMsg asks the application to rebuild the client.
type ReloadMsg struct {
	Reason string
}

// Supervisor owns the connection state. It runs on the UI event loop.
type Supervisor struct {
	state        State
	offlineSince time.Time
	lastTick     time.Time
	epoch        string

	reconnectEvery time.Duration
	now            func() time.Time
	sender         Sender
	logger         *zap.Logger
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithReconnectInterval sets the reload period while offline.
func WithReconnectInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.reconnectEvery = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the supervisor's logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Supervisor) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSupervisor creates a supervisor in the Connecting state.
func NewSupervisor(sender Sender, opts ...Option) *Supervisor {
	s := &Supervisor{
		state:          Connecting,
		reconnectEvery: DefaultReconnectInterval,
		now:            time.Now,
		sender:         sender,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current connection state.
func (s *Supervisor) State() State { return s.state }

// Offline reports whether the offline overlay should be shown.
func (s *Supervisor) Offline() bool { return s.state == Closed }

// OfflineSince returns when the connection was lost, or the zero time.
func (s *Supervisor) OfflineSince() time.Time { return s.offlineSince }

// Epoch identifies the current offline period.
func (s *Supervisor) Epoch() string { return s.epoch }

// ReconnectInterval returns the reload period.
func (s *Supervisor) ReconnectInterval() time.Duration { return s.reconnectEvery }

// OfflineSeconds returns the whole seconds spent offline as of the last
// counter tick.
func (s *Supervisor) OfflineSeconds() int {
	if s.state != Closed || s.offlineSince.IsZero() {
		return 0
	}
	d := s.lastTick.Sub(s.offlineSince)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Opened handles the channel's opened event.
func (s *Supervisor) Opened() tea.Cmd {
	prev := s.state
	s.state = Open
	s.offlineSince = time.Time{}
	s.lastTick = time.Time{}
	s.epoch = ""

	if prev == Closed {
		s.logger.Info("connection recovered")
		s.requestState()
	} else {
		s.logger.Info("connection open")
	}
	return nil
}

// Lost handles the channel's closed or error event.
func (s *Supervisor) Lost(reason string) tea.Cmd {
	if s.state == Closed {
		return nil
	}

	now := s.now()
	s.state = Closed
	s.offlineSince = now
	s.lastTick = now
	s.epoch = uuid.NewString()
	s.logger.Warn("connection lost",
		zap.String("reason", reason),
		zap.Duration("reconnect_every", s.reconnectEvery))

	return tea.Batch(
		counterTick(s.epoch),
		reconnectTick(s.epoch, s.reconnectEvery),
	)
}

// Inbound handles any inbound frame. A frame while Closed forces a reload.
func (s *Supervisor) Inbound() tea.Cmd {
	if s.state != Closed {
		return nil
	}
	s.logger.Info("frame received while offline, reloading")
	return reload("frame received while offline")
}

// CounterTick refreshes the offline counter and schedules the next tick.
func (s *Supervisor) CounterTick(msg CounterTickMsg) tea.Cmd {
	if s.state != Closed || msg.Epoch != s.epoch {
		return nil
	}
	s.lastTick = msg.Time
	return counterTick(s.epoch)
}

// ReconnectTick requests a reload and re-arms the timer.
func (s *Supervisor) ReconnectTick(msg ReconnectTickMsg) tea.Cmd {
	if s.state != Closed || msg.Epoch != s.epoch {
		return nil
	}
	s.logger.Info("reconnect attempt", zap.Int("offline_secs", s.OfflineSeconds()))
	return tea.Batch(
		reload("reconnect interval elapsed"),
		reconnectTick(s.epoch, s.reconnectEvery),
	)
}

func (s *Supervisor) requestState() {
	if s.sender == nil {
		return
	}
	if err := s.sender.Send(protocol.RequestState{}); err != nil {
		s.logger.Warn("state refresh not sent", zap.Error(err))
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func counterTick(epoch string) tea.Cmd {
	return tea.Tick(counterInterval, func(t time.Time) tea.Msg {
		return CounterTickMsg{Epoch: epoch, Time: t}
	})
}

func reconnectTick(epoch string, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return ReconnectTickMsg{Epoch: epoch}
	})
}

func reload(reason string) tea.Cmd {
	return func() tea.Msg {
		return ReloadMsg{Reason: reason}
	}
}
