// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hud

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/connectivity"
	"github.com/jeranaias/astrid-tui/internal/speech"
)

// voiceLoadTimeout bounds the engine's voice listing.
const voiceLoadTimeout = 10 * time.Second

// SettingsMsg carries settings changed while the display runs, typically
// from a config file reload.
type SettingsMsg struct {
	SpeechEnabled  bool
	Hint           speech.Hint
	WordsPerMinute int
}

// voicesLoadedMsg reports the result of the asynchronous voice listing.
type voicesLoadedMsg struct {
	voice speech.Voice
	err   error
}

// App owns the current Model and replaces it on reload.
type App struct {
	opts    Options
	model   Model
	reloads int
}

// NewApp builds the first client instance.
func NewApp(opts Options) App {
	opts = opts.withDefaults()
	return App{opts: opts, model: New(opts)}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.model.Init(), a.loadVoices())
}

func (a App) loadVoices() tea.Cmd {
	driver := a.opts.Speech
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), voiceLoadTimeout)
		defer cancel()
		v, err := driver.LoadVoices(ctx)
		return voicesLoadedMsg{voice: v, err: err}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case connectivity.ReloadMsg:
		return a.reload(msg.Reason)

	case voicesLoadedMsg:
		if msg.err != nil {
			a.opts.Logger.Warn("voice list unavailable, using engine default", zap.Error(msg.err))
		} else {
			a.opts.Logger.Info("voice ready",
				zap.String("engine", a.opts.Speech.Engine().Name()),
				zap.String("voice", msg.voice.Name),
				zap.String("language", msg.voice.Language))
		}
		return a, nil

	case SettingsMsg:
		a.applySettings(msg)
		return a, nil
	}

	var cmd tea.Cmd
	a.model, cmd = a.model.update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	return a.model.View()
}

// Model returns the current client instance.
func (a App) Model() Model {
	return a.model
}

// Reloads returns how many times the client has been rebuilt.
func (a App) Reloads() int {
	return a.reloads
}

// Close releases the current instance.
func (a App) Close() {
	a.model.Close()
}

// reload discards the current instance and starts a fresh one, keeping
// only the terminal size.
func (a App) reload(reason string) (App, tea.Cmd) {
	a.reloads++
	a.opts.Logger.Info("reloading client",
		zap.String("reason", reason),
		zap.Int("reloads", a.reloads))

	width, height := a.model.width, a.model.height
	a.model.Close()

	a.model = New(a.opts)
	a.model.resize(width, height)
	return a, a.model.Init()
}

func (a *App) applySettings(s SettingsMsg) {
	a.opts.Speech.SetEnabled(s.SpeechEnabled)
	a.opts.Speech.SetHint(s.Hint)
	if s.WordsPerMinute > 0 {
		a.opts.WordsPerMinute = s.WordsPerMinute
		a.model.presenter.Animator().SetWordsPerMinute(s.WordsPerMinute)
	}
	a.opts.Logger.Info("settings applied",
		zap.Bool("speech", s.SpeechEnabled),
		zap.Int("wpm", a.opts.WordsPerMinute))
}
