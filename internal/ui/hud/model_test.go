// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hud

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/astrid-tui/internal/connectivity"
	"github.com/jeranaias/astrid-tui/internal/presentation"
	"github.com/jeranaias/astrid-tui/internal/protocol"
	"github.com/jeranaias/astrid-tui/internal/reveal"
	"github.com/jeranaias/astrid-tui/internal/speech"
	"github.com/jeranaias/astrid-tui/internal/transport"
	"github.com/jeranaias/astrid-tui/internal/viewguard"
)

// =============================================================================
// FAKE LINK
// =============================================================================

type fakeLink struct {
	mu        sync.Mutex
	events    chan transport.Event
	sent      []protocol.Frame
	open      bool
	connected bool
	closed    bool
}

func newFakeLink() *fakeLink {
	return &fakeLink{events: make(chan transport.Event, 8)}
}

func (f *fakeLink) Connect(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
}

func (f *fakeLink) Events() <-chan transport.Event { return f.events }

func (f *fakeLink) Send(fr protocol.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return transport.ErrNotOpen
	}
	f.sent = append(f.sent, fr)
	return nil
}

func (f *fakeLink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

func (f *fakeLink) setOpen(open bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = open
}

func (f *fakeLink) frames() []protocol.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]protocol.Frame(nil), f.sent...)
}

// =============================================================================
// HELPERS
// =============================================================================

type harness struct {
	links []*fakeLink
	opts  Options
}

func newHarness(t *testing.T) *harness {
	h := &harness{}
	h.opts = Options{
		NewLink: func() Link {
			l := newFakeLink()
			h.links = append(h.links, l)
			return l
		},
		Guard:             viewguard.Guard{MinWidth: 80, MinHeight: 24},
		ReconnectInterval: 10 * time.Second,
		Greeting:          "Good evening",
		Speech:            speech.NewDriver(speech.NullEngine{}),
		Logger:            zaptest.NewLogger(t),
	}
	return h
}

func (h *harness) lastLink() *fakeLink {
	return h.links[len(h.links)-1]
}

func send(m Model, ev transport.Event) Model {
	m, _ = m.update(linkEventMsg{instance: m.instance, event: ev})
	return m
}

func open(m Model, l *fakeLink) Model {
	l.setOpen(true)
	return send(m, transport.Opened{})
}

func stepAll(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; i < 100; i++ {
		a := m.presenter.Animator()
		if !a.Active() {
			return m
		}
		m, _ = m.update(reveal.StepMsg{Session: a.SessionID()})
	}
	t.Fatal("reveal did not finish")
	return m
}

// =============================================================================
// TESTS
// =============================================================================

func TestBotReplyEndToEnd(t *testing.T) {
	h := newHarness(t)
	m := New(h.opts)
	m, _ = m.update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = open(m, h.lastLink())

	m = send(m, transport.Inbound{Frame: protocol.BotReply{Text: "Hello there"}})
	assert.Equal(t, presentation.BotSpeaking, m.Mode())

	m = stepAll(t, m)
	assert.Equal(t, "Hello there"+reveal.DefaultIndicator, m.CenterText())
	assert.Equal(t, presentation.Idle, m.Mode())
	assert.Contains(t, m.View(), "Hello there")
}

func TestStateFrameReplacesSnapshot(t *testing.T) {
	h := newHarness(t)
	m := New(h.opts)
	m, _ = m.update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = open(m, h.lastLink())

	first := protocol.DefaultSnapshot()
	m = send(m, transport.Inbound{Frame: protocol.State{Snapshot: first}})
	m = send(m, transport.Inbound{Frame: protocol.UserLine{Text: "WHAT ABOUT SOLAR"}})
	assert.Contains(t, m.View(), "WHAT ABOUT SOLAR")

	second := protocol.Snapshot{Headline: "Cabin", BatteryPct: 10}
	m = send(m, transport.Inbound{Frame: protocol.State{Snapshot: second}})
	snap, ok := m.Snapshot()
	require.True(t, ok)
	assert.Equal(t, second, snap, "no partial merge with the previous snapshot")

	view := m.View()
	assert.Contains(t, view, "CABIN")
	assert.NotContains(t, view, "WHAT ABOUT SOLAR")
}

func TestReconnectOverlayAndRefresh(t *testing.T) {
	h := newHarness(t)
	m := New(h.opts)
	l := h.lastLink()
	m, _ = m.update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = open(m, l)

	l.setOpen(false)
	m = send(m, transport.Closed{Code: 1006, Reason: "gone"})
	require.True(t, m.OfflineVisible(), "overlay must appear on the closing event")
	assert.Contains(t, m.View(), "Connection lost")

	epoch := m.supervisor.Epoch()
	since := m.supervisor.OfflineSince()
	prev := m.OfflineSeconds()
	for i := 1; i <= 3; i++ {
		m, _ = m.update(connectivity.CounterTickMsg{Epoch: epoch, Time: since.Add(time.Duration(i) * time.Second)})
		assert.Equal(t, prev+1, m.OfflineSeconds())
		prev = m.OfflineSeconds()
	}

	m = open(m, l)
	assert.False(t, m.OfflineVisible())
	assert.Equal(t, []protocol.Frame{protocol.RequestState{}}, l.frames())
}

func TestViewportGuard(t *testing.T) {
	h := newHarness(t)
	h.opts.Guard = viewguard.Guard{MinWidth: 1267, MinHeight: 850}
	m := New(h.opts)

	m, _ = m.update(tea.WindowSizeMsg{Width: 1266, Height: 900})
	assert.True(t, m.Verdict().TooSmall)
	assert.Contains(t, m.View(), "Window too small")

	m, _ = m.update(tea.WindowSizeMsg{Width: 1267, Height: 850})
	assert.False(t, m.Verdict().TooSmall)
	assert.Equal(t, 1.0, m.Verdict().Scale)
	assert.NotContains(t, m.View(), "Window too small")

	m, _ = m.update(tea.WindowSizeMsg{Width: 2534, Height: 1700})
	assert.Equal(t, 2.0, m.Verdict().Scale)
}

func TestTypingSendsUserMessage(t *testing.T) {
	h := newHarness(t)
	m := New(h.opts)
	l := h.lastLink()
	m = open(m, l)

	for _, r := range "battery" {
		m, _ = m.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, presentation.UserComposing, m.Mode())
	assert.Contains(t, m.View(), "battery")

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, presentation.Idle, m.Mode())
	assert.Equal(t, []protocol.Frame{protocol.UserMessage{Text: "battery"}}, l.frames())
}

func TestQuitKey(t *testing.T) {
	h := newHarness(t)
	m := New(h.opts)
	_, cmd := m.update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestStaleInstanceEventsIgnored(t *testing.T) {
	h := newHarness(t)
	m := New(h.opts)
	m, _ = m.update(linkEventMsg{instance: "other", event: transport.Closed{Code: 1006}})
	assert.False(t, m.OfflineVisible())
	assert.Equal(t, connectivity.Connecting, m.Connection())
}

func TestGreeting(t *testing.T) {
	h := newHarness(t)
	m := New(h.opts)
	m, _ = m.update(greetingMsg{instance: m.instance})
	assert.Equal(t, presentation.BotSpeaking, m.Mode())
	m = stepAll(t, m)
	assert.True(t, strings.HasPrefix(m.CenterText(), "Good evening"))

	// a reply that arrived first suppresses the greeting
	m2 := New(h.opts)
	m2 = open(m2, h.lastLink())
	m2 = send(m2, transport.Inbound{Frame: protocol.BotReply{Text: "Already here"}})
	m2 = stepAll(t, m2)
	m2, _ = m2.update(greetingMsg{instance: m2.instance})
	assert.Equal(t, "Already here"+reveal.DefaultIndicator, m2.CenterText())
}

// =============================================================================
// APP / RELOAD
// =============================================================================

func TestFrameWhileOfflineReloads(t *testing.T) {
	h := newHarness(t)
	app := NewApp(h.opts)
	first := h.lastLink()
	firstInstance := app.Model().Instance()

	var model tea.Model = app
	model, _ = model.Update(linkEventMsg{instance: firstInstance, event: transport.Closed{Code: 1006}})
	require.True(t, model.(App).Model().OfflineVisible())

	_, cmd := model.Update(linkEventMsg{instance: firstInstance, event: transport.Inbound{Frame: protocol.ClearCenter{}}})
	require.NotNil(t, cmd)

	// the command batch contains the reload request alongside the listener
	var reload connectivity.ReloadMsg
	found := false
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if r, ok := runWithTimeout(c).(connectivity.ReloadMsg); ok {
				reload, found = r, true
			}
		}
	}
	require.True(t, found, "expected a reload request")

	model, _ = model.Update(reload)
	a := model.(App)
	assert.Equal(t, 1, a.Reloads())
	assert.NotEqual(t, firstInstance, a.Model().Instance())
	assert.Len(t, h.links, 2)
	assert.True(t, first.closed, "old channel must be closed")
	assert.False(t, a.Model().OfflineVisible(), "fresh client starts connecting")
	assert.Equal(t, connectivity.Connecting, a.Model().Connection())
}

func TestSettingsApplied(t *testing.T) {
	h := newHarness(t)
	app := NewApp(h.opts)

	model, _ := app.Update(SettingsMsg{SpeechEnabled: false, WordsPerMinute: 120})
	a := model.(App)
	assert.False(t, h.opts.Speech.Enabled())
	assert.Equal(t, 500*time.Millisecond, a.Model().presenter.Animator().Interval())
	assert.Contains(t, a.View(), "muted")
}

func TestClockTicksFromReplacedInstanceDropped(t *testing.T) {
	h := newHarness(t)
	app := NewApp(h.opts)
	oldInstance := app.Model().Instance()

	var model tea.Model = app
	model, _ = model.Update(connectivity.ReloadMsg{Reason: "test"})
	a := model.(App)
	require.NotEqual(t, oldInstance, a.Model().Instance())

	_, cmd := a.Update(clockTickMsg{instance: oldInstance, Time: time.Now()})
	assert.Nil(t, cmd, "a replaced instance's clock must not be re-armed")

	_, cmd = a.Update(clockTickMsg{instance: a.Model().Instance(), Time: time.Now()})
	assert.NotNil(t, cmd, "the live instance keeps its clock running")
}

// runWithTimeout runs a command that may block (such as a listener on an
// idle channel) and returns nil if it does not finish promptly.
func runWithTimeout(c tea.Cmd) tea.Msg {
	out := make(chan tea.Msg, 1)
	go func() { out <- c() }()
	select {
	case msg := <-out:
		return msg
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}
