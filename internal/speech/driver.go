// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// =============================================================================
// DRIVER
// =============================================================================

// Driver speaks one utterance at a time through an Engine.
//
// The driver is called from the UI event loop and its utterances finish on
// engine goroutines, so all mutable fields are guarded by mu.
type Driver struct {
	engine   Engine
	selector Selector
	hint     Hint
	logger   *zap.Logger

	mu      sync.Mutex
	enabled bool
	voices  []Voice
	voice   Voice
	cancel  context.CancelFunc
	done    chan struct{} // closed when the current utterance has stopped
}

// Option configures a Driver.
type Option func(*Driver)

// WithSelector replaces the voice selection strategy.
func WithSelector(s Selector) Option {
	return func(d *Driver) {
		if s != nil {
			d.selector = s
		}
	}
}

// WithHint sets the preferred voice.
func WithHint(h Hint) Option {
	return func(d *Driver) {
		d.hint = h
	}
}

// WithLogger sets the driver's logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDriver creates an enabled driver. A nil engine is replaced by the
// NullEngine.
func NewDriver(engine Engine, opts ...Option) *Driver {
	if engine == nil {
		engine = NullEngine{}
	}
	d := &Driver{
		engine:   engine,
		selector: DefaultSelector(),
		logger:   zap.NewNop(),
		enabled:  true,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.voice, _ = d.selector.Select(nil, d.hint)
	return d
}

// Engine returns the engine in use.
func (d *Driver) Engine() Engine {
	return d.engine
}

// LoadVoices fetches the engine's voice list and re-runs voice selection.
// It blocks; the UI runs it from a command.
func (d *Driver) LoadVoices(ctx context.Context) (Voice, error) {
	voices, err := d.engine.Voices(ctx)
	if err != nil {
		return d.Voice(), err
	}
	return d.SetVoices(voices), nil
}

// SetVoices installs a voice list and returns the newly selected voice.
func (d *Driver) SetVoices(voices []Voice) Voice {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.voices = voices
	d.voice, _ = d.selector.Select(voices, d.hint)
	d.logger.Debug("voice selected",
		zap.Int("available", len(voices)),
		zap.String("voice", d.voice.Name),
		zap.String("language", d.voice.Language))
	return d.voice
}

// SetHint changes the preferred voice and re-runs selection.
func (d *Driver) SetHint(h Hint) Voice {
	d.mu.Lock()
	d.hint = h
	voices := d.voices
	d.mu.Unlock()
	return d.SetVoices(voices)
}

// Voice returns the currently selected voice.
func (d *Driver) Voice() Voice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.voice
}

// Enabled reports whether Speak produces audio.
func (d *Driver) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// SetEnabled turns speech on or off. Turning it off silences the current
// utterance.
func (d *Driver) SetEnabled(on bool) {
	d.mu.Lock()
	d.enabled = on
	d.mu.Unlock()
	if !on {
		d.Cancel()
	}
}

// Toggle flips Enabled and returns the new value.
func (d *Driver) Toggle() bool {
	on := !d.Enabled()
	d.SetEnabled(on)
	return on
}

// Speak silences the current utterance and starts speaking text. It never
// blocks on the engine. A zero hint uses the driver's configured voice.
func (d *Driver) Speak(text string, hint Hint) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	if !d.enabled || text == "" {
		return
	}

	voice := d.voice
	if hint != (Hint{}) {
		voice, _ = d.selector.Select(d.voices, hint)
	}

	ctx, cancel := context.WithCancel(context.Background())
	prev := d.done
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done

	go func() {
		defer close(done)
		defer cancel()
		// the previous utterance must be gone before this one is audible
		if prev != nil {
			select {
			case <-prev:
			case <-ctx.Done():
				return
			}
		}
		if err := d.engine.Say(ctx, text, voice); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Warn("speech failed", zap.String("engine", d.engine.Name()), zap.Error(err))
		}
	}()
}

// Cancel silences the current utterance. It is safe to call at any time.
func (d *Driver) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Wait blocks until the current utterance has stopped.
func (d *Driver) Wait() {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (d *Driver) cancelLocked() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
