// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hud

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/connectivity"
	"github.com/jeranaias/astrid-tui/internal/presentation"
	"github.com/jeranaias/astrid-tui/internal/protocol"
	"github.com/jeranaias/astrid-tui/internal/reveal"
	"github.com/jeranaias/astrid-tui/internal/transport"
	"github.com/jeranaias/astrid-tui/internal/ui/components"
	"github.com/jeranaias/astrid-tui/internal/viewguard"
)

// =============================================================================
// MESSAGES
// =============================================================================

// linkEventMsg carries a channel event to the model that owns the channel.
type linkEventMsg struct {
	instance string
	event    transport.Event
}

// greetingMsg fires once, GreetingDelay after startup.
type greetingMsg struct {
	instance string
}

// clockTickMsg refreshes the clock. Ticks from an earlier instance are
// dropped so each instance runs one clock.
type clockTickMsg struct {
	instance string
	Time     time.Time
}

// =============================================================================
// MODEL
// =============================================================================

// Model is one client instance: one channel, one presentation state.
type Model struct {
	instance string
	opts     Options
	logger   *zap.Logger

	link       Link
	supervisor *connectivity.Supervisor
	presenter  *presentation.Presenter
	keys       presentation.KeyMap

	verdict  viewguard.Verdict
	offline  components.OfflineOverlay
	tooSmall components.TooSmallOverlay

	snapshot    protocol.Snapshot
	hasSnapshot bool
	userLine    string

	now     time.Time
	greeted bool
	status  string
	width   int
	height  int
}

// New builds a fresh client instance. Nothing connects until Init runs.
func New(opts Options) Model {
	opts = opts.withDefaults()
	instance := uuid.NewString()
	logger := opts.Logger.With(zap.String("instance", instance[:8]))

	link := opts.NewLink()
	anim := reveal.New(opts.Speech,
		reveal.WithWordsPerMinute(opts.WordsPerMinute),
		reveal.WithIndicator(opts.Indicator))

	m := Model{
		instance: instance,
		opts:     opts,
		logger:   logger,
		link:     link,
		supervisor: connectivity.NewSupervisor(link,
			connectivity.WithReconnectInterval(opts.ReconnectInterval),
			connectivity.WithLogger(logger)),
		presenter: presentation.NewPresenter(anim, opts.Speech, link, logger),
		keys:      presentation.DefaultKeyMap(),
		offline:   components.NewOfflineOverlay(reconnectInterval(opts)),
		tooSmall:  components.NewTooSmallOverlay(),
		now:       time.Now(),
	}
	m.resize(opts.Guard.MinWidth, opts.Guard.MinHeight)
	return m
}

func reconnectInterval(opts Options) time.Duration {
	if opts.ReconnectInterval > 0 {
		return opts.ReconnectInterval
	}
	return connectivity.DefaultReconnectInterval
}

// Init connects the channel and starts the clock and greeting timers.
func (m Model) Init() tea.Cmd {
	link := m.link
	cmds := []tea.Cmd{
		func() tea.Msg {
			link.Connect(context.Background())
			return nil
		},
		m.listen(),
		clockTick(m.instance),
	}
	if m.opts.Greeting != "" {
		instance := m.instance
		cmds = append(cmds, tea.Tick(m.opts.GreetingDelay, func(time.Time) tea.Msg {
			return greetingMsg{instance: instance}
		}))
	}
	return tea.Batch(cmds...)
}

// listen waits for the next channel event.
func (m Model) listen() tea.Cmd {
	events, instance := m.link.Events(), m.instance
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return linkEventMsg{instance: instance, event: ev}
	}
}

func clockTick(instance string) tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg{instance: instance, Time: t}
	})
}

// Close releases the channel and silences speech.
func (m Model) Close() {
	m.presenter.Animator().Interrupt()
	if err := m.link.Close(); err != nil {
		m.logger.Debug("link close", zap.Error(err))
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.update(msg)
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, m.presenter.HandleKey(msg)

	case linkEventMsg:
		if msg.instance != m.instance {
			return m, nil
		}
		cmd := m.handleLinkEvent(msg.event)
		return m, tea.Batch(cmd, m.listen())

	case reveal.StepMsg:
		return m, m.presenter.Step(msg)

	case connectivity.CounterTickMsg:
		cmd := m.supervisor.CounterTick(msg)
		m.offline.SetElapsed(m.supervisor.OfflineSeconds())
		return m, cmd

	case connectivity.ReconnectTickMsg:
		return m, m.supervisor.ReconnectTick(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.offline, cmd = m.offline.Update(msg)
		return m, cmd

	case clockTickMsg:
		if msg.instance != m.instance {
			return m, nil
		}
		m.now = msg.Time
		return m, clockTick(m.instance)

	case greetingMsg:
		return m, m.greet(msg)

	case presentation.SpeechToggledMsg:
		if msg.Enabled {
			m.status = "speech on"
		} else {
			m.status = "speech off"
		}
		m.logger.Info("speech toggled", zap.Bool("enabled", msg.Enabled))
		return m, nil

	case presentation.SubmittedMsg:
		m.status = ""
		m.logger.Info("user message submitted", zap.Int("chars", len(msg.Text)))
		return m, nil
	}

	return m, nil
}

func (m *Model) handleLinkEvent(ev transport.Event) tea.Cmd {
	switch ev := ev.(type) {
	case transport.Opened:
		m.supervisor.Opened()
		m.offline.Hide()
		return nil

	case transport.Closed:
		return m.goOffline("closed: " + ev.Reason)

	case transport.Errored:
		m.logger.Warn("channel error", zap.Error(ev.Err))
		return m.goOffline("error: " + ev.Err.Error())

	case transport.Inbound:
		if cmd := m.supervisor.Inbound(); cmd != nil {
			return cmd
		}
		return m.applyFrame(ev.Frame)
	}
	return nil
}

func (m *Model) goOffline(reason string) tea.Cmd {
	cmd := m.supervisor.Lost(reason)
	if cmd == nil {
		return nil
	}
	m.offline.SetElapsed(0)
	return tea.Batch(cmd, m.offline.Show())
}

func (m *Model) applyFrame(f protocol.Frame) tea.Cmd {
	switch f := f.(type) {
	case protocol.State:
		m.snapshot = f.Snapshot
		m.hasSnapshot = true
		m.userLine = ""
	case protocol.UserLine:
		m.userLine = f.Text
	case protocol.ClearCenter:
		m.presenter.ClearCenter()
	case protocol.BotReply:
		m.greeted = true
		return m.presenter.BotReply(f.Text)
	}
	return nil
}

func (m *Model) greet(msg greetingMsg) tea.Cmd {
	if msg.instance != m.instance || m.greeted {
		return nil
	}
	m.greeted = true
	a := m.presenter.Animator()
	if m.presenter.Mode() != presentation.Idle || a.Text() != "" || a.Complete() {
		return nil
	}
	return m.presenter.BotReply(m.opts.Greeting)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.verdict = m.opts.Guard.Evaluate(width, height)
	m.tooSmall.SetVerdict(m.verdict)
	m.offline.SetSize(width, height)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Mode returns the presentation mode.
func (m Model) Mode() presentation.Mode { return m.presenter.Mode() }

// Connection returns the supervisor's connection state.
func (m Model) Connection() connectivity.State { return m.supervisor.State() }

// Verdict returns the latest viewport check.
func (m Model) Verdict() viewguard.Verdict { return m.verdict }

// CenterText returns the raw centre text, including the indicator once a
// reply is complete.
func (m Model) CenterText() string { return m.presenter.CenterText() }

// Snapshot returns the current snapshot and whether one has arrived.
func (m Model) Snapshot() (protocol.Snapshot, bool) { return m.snapshot, m.hasSnapshot }

// OfflineVisible reports whether the offline overlay is shown.
func (m Model) OfflineVisible() bool { return m.offline.IsVisible() }

// OfflineSeconds returns the offline counter value.
func (m Model) OfflineSeconds() int { return m.offline.Elapsed() }

// Instance identifies this client instance.
func (m Model) Instance() string { return m.instance }
