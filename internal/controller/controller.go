// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/protocol"
)

const (
	// MaxHistory is the number of exchanges kept.
	MaxHistory = 20

	// MaintenanceInterval is how long after the last service the next is due.
	MaintenanceInterval = 30 * 24 * time.Hour

	// initialMaintenanceAge is how long ago the last service happened at startup.
	initialMaintenanceAge = 7 * 24 * time.Hour
)

// =============================================================================
// TYPES
// =============================================================================

// StateSource provides the current house state for templated answers.
type StateSource interface {
	Snapshot() protocol.Snapshot
}

// StateFunc adapts a function to StateSource.
type StateFunc func() protocol.Snapshot

// Snapshot implements StateSource.
func (f StateFunc) Snapshot() protocol.Snapshot { return f() }

// Exchange is one user message and its answer.
type Exchange struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Bot       string    `json:"bot"`
	Intent    Intent    `json:"intent"`
}

// SystemStatus is the controller's view of the house.
type SystemStatus struct {
	LastMaintenance time.Time `json:"last_maintenance"`
	Alerts          []string  `json:"alerts"`
	Mode            string    `json:"mode"`
}

// Status is the controller's introspection report.
type Status struct {
	SystemStatus    SystemStatus      `json:"system_status"`
	UserPreferences map[string]string `json:"user_preferences"`
	ActivePatterns  int               `json:"active_patterns"`
}

// Response is the result of processing a message.
type Response struct {
	Text     string   `json:"response"`
	Analysis Analysis `json:"intent"`
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller holds the conversation state. Safe for concurrent use.
type Controller struct {
	state  StateSource
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	rng     *rand.Rand
	history []Exchange
	status  SystemStatus
	prefs   map[string]string
}

// Option configures a Controller.
type Option func(*Controller)

// WithRand sets the source used to pick among equivalent answers.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) { c.rng = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller answering from state.
func New(state StateSource, opts ...Option) *Controller {
	c := &Controller{
		state:  state,
		logger: zap.NewNop(),
		now:    time.Now,
		prefs:  map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(c.now().UnixNano()))
	}
	c.status = SystemStatus{
		LastMaintenance: c.now().Add(-initialMaintenanceAge),
		Alerts:          []string{},
		Mode:            "normal",
	}
	return c
}

// Process classifies a message, answers it, and records the exchange.
func (c *Controller) Process(message string) Response {
	analysis := Classify(message)

	c.mu.Lock()
	defer c.mu.Unlock()

	text := c.respond(analysis.Intent)
	c.history = append(c.history, Exchange{
		ID:        uuid.NewString(),
		Timestamp: c.now(),
		User:      message,
		Bot:       text,
		Intent:    analysis.Intent,
	})
	if len(c.history) > MaxHistory {
		c.history = append([]Exchange(nil), c.history[len(c.history)-MaxHistory:]...)
	}

	c.logger.Debug("message processed",
		zap.String("intent", string(analysis.Intent)),
		zap.Float64("confidence", analysis.Confidence))
	return Response{Text: text, Analysis: analysis}
}

// respond must be called with c.mu held.
func (c *Controller) respond(intent Intent) string {
	switch intent {
	case IntentGreeting, IntentStatus, IntentUnknown:
		return c.pick(intent)

	case IntentPower, IntentBattery:
		snap := c.state.Snapshot()
		r := strings.NewReplacer(
			"{load_w}", fmt.Sprint(int(snap.LoadW)),
			"{sun_w}", fmt.Sprint(int(snap.SunW)),
			"{battery_pct}", fmt.Sprint(int(snap.BatteryPct)),
		)
		return r.Replace(c.pick(intent))

	case IntentWater:
		return "I don't have access to water system sensors at the moment. My current monitoring is limited to power systems."

	case IntentMaintenance:
		days := int(c.now().Sub(c.status.LastMaintenance) / (24 * time.Hour))
		due := int(MaintenanceInterval / (24 * time.Hour))
		if days > due {
			return fmt.Sprintf("System maintenance is overdue by %d days. Recommend scheduling a service check.", days-due)
		}
		return fmt.Sprintf("Last maintenance was %d days ago. Next scheduled maintenance in %d days.", days, due-days)
	}
	return c.pick(IntentUnknown)
}

func (c *Controller) pick(intent Intent) string {
	choices := templates[intent]
	return choices[c.rng.Intn(len(choices))]
}

// History returns a copy of the recorded exchanges, oldest first.
func (c *Controller) History() []Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Exchange(nil), c.history...)
}

// Status returns the controller's current status report.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefs := make(map[string]string, len(c.prefs))
	for k, v := range c.prefs {
		prefs[k] = v
	}
	st := c.status
	st.Alerts = append([]string{}, c.status.Alerts...)
	return Status{
		SystemStatus:    st,
		UserPreferences: prefs,
		ActivePatterns:  len(templates),
	}
}

// RecordMaintenance marks a service as done at the given time.
func (c *Controller) RecordMaintenance(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.LastMaintenance = at
}
