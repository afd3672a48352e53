// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package presentation

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"
	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/protocol"
	"github.com/jeranaias/astrid-tui/internal/reveal"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Sender delivers outbound frames. Sends may fail silently.
type Sender interface {
	Send(f protocol.Frame) error
}

// SpeechControl is the part of the speech driver the shortcuts reach.
type SpeechControl interface {
	Cancel()
	Toggle() bool
}

// SpeechToggledMsg reports the speech setting after the toggle shortcut.
type SpeechToggledMsg struct {
	Enabled bool
}

// SubmittedMsg reports a line that was sent to the backend.
type SubmittedMsg struct {
	Text string
}

// =============================================================================
// PRESENTER
// =============================================================================

// Presenter owns the Mode, the user's line buffer and the reveal animator.
// All methods run on the UI event loop.
type Presenter struct {
	mode   Mode
	buffer LineBuffer
	anim   *reveal.Animator
	speech SpeechControl
	sender Sender
	keys   KeyMap
	logger *zap.Logger
}

// NewPresenter creates an idle presenter.
func NewPresenter(anim *reveal.Animator, sp SpeechControl, sender Sender, logger *zap.Logger) *Presenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Presenter{
		mode:   Idle,
		anim:   anim,
		speech: sp,
		sender: sender,
		keys:   DefaultKeyMap(),
		logger: logger,
	}
}

// Mode returns the active presentation mode.
func (p *Presenter) Mode() Mode {
	return p.mode
}

// Keys returns the key map.
func (p *Presenter) Keys() KeyMap {
	return p.keys
}

// Line returns the user's line as typed.
func (p *Presenter) Line() string {
	return p.buffer.String()
}

// CenterText returns what belongs in the centre text area for the current
// mode.
func (p *Presenter) CenterText() string {
	if p.mode == UserComposing {
		return p.buffer.String()
	}
	return p.anim.Rendered()
}

// Animator exposes the reveal animator.
func (p *Presenter) Animator() *reveal.Animator {
	return p.anim
}

// =============================================================================
// INBOUND EVENTS
// =============================================================================

// BotReply starts revealing text. A half-typed line is discarded first.
func (p *Presenter) BotReply(text string) tea.Cmd {
	if p.mode == UserComposing {
		p.logger.Debug("reply discards composing line", zap.Int("runes", p.buffer.Len()))
		p.buffer.Reset()
		p.mode = Idle
	}

	cmd := p.anim.Reveal(text)
	if p.anim.Active() {
		p.mode = BotSpeaking
	} else {
		p.mode = Idle
	}
	return cmd
}

// Step advances the reveal. A completed reveal returns to Idle.
func (p *Presenter) Step(msg reveal.StepMsg) tea.Cmd {
	done, cmd := p.anim.Step(msg)
	if done && p.mode == BotSpeaking {
		p.mode = Idle
	}
	return cmd
}

// ClearCenter empties the centre text area. A line being typed is kept.
func (p *Presenter) ClearCenter() {
	if p.mode == UserComposing {
		return
	}
	p.anim.Interrupt()
	p.mode = Idle
}

// =============================================================================
// KEYBOARD
// =============================================================================

// HandleKey applies one keystroke.
func (p *Presenter) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if runes := printable(msg); len(runes) > 0 {
		if p.mode != UserComposing {
			p.beginComposing()
		}
		p.buffer.Append(runes...)
		return nil
	}

	if p.mode == UserComposing {
		switch {
		case key.Matches(msg, p.keys.Backspace):
			p.buffer.Backspace()
		case key.Matches(msg, p.keys.Submit):
			return p.submit()
		}
		return nil
	}

	if p.mode != Idle {
		return nil
	}
	switch {
	case key.Matches(msg, p.keys.StopSpeech):
		if p.speech != nil {
			p.speech.Cancel()
		}
	case key.Matches(msg, p.keys.ToggleSpeech):
		if p.speech != nil {
			on := p.speech.Toggle()
			return func() tea.Msg { return SpeechToggledMsg{Enabled: on} }
		}
	}
	return nil
}

// beginComposing preempts any reply in progress.
func (p *Presenter) beginComposing() {
	p.anim.Interrupt()
	if p.speech != nil {
		p.speech.Cancel()
	}
	p.buffer.Reset()
	p.mode = UserComposing
}

func (p *Presenter) submit() tea.Cmd {
	text := p.buffer.Trimmed()
	p.buffer.Reset()
	p.mode = Idle
	p.anim.Clear()

	if text == "" {
		return nil
	}
	if p.sender != nil {
		if err := p.sender.Send(protocol.UserMessage{Text: text}); err != nil {
			p.logger.Warn("user message dropped", zap.Error(err))
		}
	}
	return func() tea.Msg { return SubmittedMsg{Text: text} }
}
