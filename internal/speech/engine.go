// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"errors"
)

// ErrNoEngine is returned when no speech engine is installed.
var ErrNoEngine = errors.New("speech: no engine available")

// Engine is a text-to-speech backend.
type Engine interface {
	// Name identifies the engine in logs and status output.
	Name() string

	// Voices lists the installed voices. It may be slow.
	Voices(ctx context.Context) ([]Voice, error)

	// Say speaks text and returns when the utterance ends or ctx is
	// cancelled. Cancelling ctx must silence the utterance.
	Say(ctx context.Context, text string, v Voice) error
}

// NullEngine speaks nothing. It keeps the display working on hosts without
// a synthesizer.
type NullEngine struct{}

// Name implements Engine.
func (NullEngine) Name() string { return "none" }

// Voices implements Engine.
func (NullEngine) Voices(context.Context) ([]Voice, error) { return nil, nil }

// Say implements Engine.
func (NullEngine) Say(context.Context, string, Voice) error { return nil }
