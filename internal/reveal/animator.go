// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/astrid-tui/internal/speech"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultWordsPerMinute approximates the speech engines' default pace.
	DefaultWordsPerMinute = 165

	// DefaultIndicator is appended once a reply has been fully revealed.
	DefaultIndicator = "▌"
)

// sessionSeq numbers sessions across every animator in the process, so a
// step scheduled by a discarded animator can never match a live session.
var sessionSeq atomic.Uint64

// IntervalFor converts a words-per-minute rate to a per-word delay.
func IntervalFor(wpm int) time.Duration {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	return time.Minute / time.Duration(wpm)
}

// =============================================================================
// TYPES
// =============================================================================

// Speaker is the slice of the speech driver the animator needs.
type Speaker interface {
	Speak(text string, hint speech.Hint)
	Cancel()
}

// StepMsg advances the session it names by one word.
type StepMsg struct {
	Session uint64
}

// Session is one in-flight reply.
type Session struct {
	ID        uint64
	Text      string
	Words     []string
	Index     int
	Cancelled bool
}

// Animator reveals one reply at a time.
type Animator struct {
	speaker   Speaker
	interval  time.Duration
	indicator string

	session  *Session
	visible  string
	complete bool
}

// Option configures an Animator.
type Option func(*Animator)

// WithWordsPerMinute sets the reveal pace.
func WithWordsPerMinute(wpm int) Option {
	return func(a *Animator) {
		a.interval = IntervalFor(wpm)
	}
}

// WithIndicator sets the trailing insertion-point indicator.
func WithIndicator(s string) Option {
	return func(a *Animator) {
		if s != "" {
			a.indicator = s
		}
	}
}

// New creates an animator. A nil speaker reveals silently.
func New(speaker Speaker, opts ...Option) *Animator {
	if speaker == nil {
		speaker = speech.NewDriver(nil)
	}
	a := &Animator{
		speaker:   speaker,
		interval:  IntervalFor(DefaultWordsPerMinute),
		indicator: DefaultIndicator,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Reveal starts a new session for text. Any live session is cancelled
// before this returns. Speech starts now, and the returned command delivers
// the first step without delay. Empty text completes at once; check Active.
func (a *Animator) Reveal(text string) tea.Cmd {
	a.cancelSession()
	a.visible = ""
	a.complete = false

	words := strings.Fields(text)
	if len(words) == 0 {
		a.complete = true
		return nil
	}

	s := &Session{ID: sessionSeq.Add(1), Text: text, Words: words}
	a.session = s
	// A zero hint speaks with the driver's current voice, which tracks
	// settings reloads.
	a.speaker.Speak(text, speech.Hint{})

	return func() tea.Msg {
		return StepMsg{Session: s.ID}
	}
}

// Step handles a StepMsg. Steps for a session that is no longer live change
// nothing. done is true when this step revealed the final word.
func (a *Animator) Step(msg StepMsg) (done bool, cmd tea.Cmd) {
	s := a.session
	if s == nil || s.Cancelled || s.ID != msg.Session {
		return false, nil
	}

	if s.Index < len(s.Words) {
		s.Index++
		a.visible = strings.Join(s.Words[:s.Index], " ")
	}
	if s.Index >= len(s.Words) {
		a.session = nil
		a.complete = true
		return true, nil
	}

	id := s.ID
	return false, tea.Tick(a.interval, func(time.Time) tea.Msg {
		return StepMsg{Session: id}
	})
}

// Interrupt cancels the live session, clears the visible text and silences
// speech. It is safe to call when nothing is being revealed.
func (a *Animator) Interrupt() {
	a.cancelSession()
	a.visible = ""
	a.complete = false
	a.speaker.Cancel()
}

// Clear empties the text area without touching speech.
func (a *Animator) Clear() {
	a.cancelSession()
	a.visible = ""
	a.complete = false
}

func (a *Animator) cancelSession() {
	if a.session != nil {
		a.session.Cancelled = true
		a.session = nil
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Active reports whether a session is live.
func (a *Animator) Active() bool {
	return a.session != nil
}

// SessionID returns the live session's identity, or 0.
func (a *Animator) SessionID() uint64 {
	if a.session == nil {
		return 0
	}
	return a.session.ID
}

// Text returns the revealed words without the indicator.
func (a *Animator) Text() string {
	return a.visible
}

// Complete reports whether the last reply was revealed in full.
func (a *Animator) Complete() bool {
	return a.complete
}

// Indicator returns the trailing indicator string.
func (a *Animator) Indicator() string {
	return a.indicator
}

// Rendered returns the visible text with the indicator appended once the
// reply is complete.
func (a *Animator) Rendered() string {
	if a.complete {
		return a.visible + a.indicator
	}
	return a.visible
}

// SetWordsPerMinute changes the pace of the next step onwards.
func (a *Animator) SetWordsPerMinute(wpm int) {
	a.interval = IntervalFor(wpm)
}

// Interval returns the per-word delay.
func (a *Animator) Interval() time.Duration {
	return a.interval
}
