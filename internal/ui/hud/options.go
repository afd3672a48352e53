// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hud

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/protocol"
	"github.com/jeranaias/astrid-tui/internal/reveal"
	"github.com/jeranaias/astrid-tui/internal/speech"
	"github.com/jeranaias/astrid-tui/internal/transport"
	"github.com/jeranaias/astrid-tui/internal/ui/styles"
	"github.com/jeranaias/astrid-tui/internal/viewguard"
)

// Link is the duplex connection the model talks through.
// *transport.Channel implements it.
type Link interface {
	Connect(ctx context.Context)
	Events() <-chan transport.Event
	Send(f protocol.Frame) error
	Close() error
}

// DefaultGreetingDelay is how long after startup the greeting is revealed.
const DefaultGreetingDelay = 1200 * time.Millisecond

// Options configures a Model. The same Options are reused for every
// rebuild after a reload.
type Options struct {
	// Endpoint is the stream endpoint, e.g. ws://127.0.0.1:8000/ws.
	Endpoint string

	// NewLink creates the connection for a model. Defaults to a
	// transport.Channel for Endpoint.
	NewLink func() Link

	Guard             viewguard.Guard
	ReconnectInterval time.Duration
	ClockFormat       string

	// Greeting is revealed GreetingDelay after startup if nothing else
	// has been shown. Empty disables it.
	Greeting      string
	GreetingDelay time.Duration

	// WordsPerMinute paces the reveal animation.
	WordsPerMinute int
	Indicator      string

	// Speech is shared by every rebuilt model. Nil means silent.
	Speech *speech.Driver

	Theme  *styles.Theme
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Theme == nil {
		o.Theme = styles.NewTheme()
	}
	if o.Speech == nil {
		o.Speech = speech.NewDriver(nil)
	}
	if o.GreetingDelay <= 0 {
		o.GreetingDelay = DefaultGreetingDelay
	}
	if o.WordsPerMinute <= 0 {
		o.WordsPerMinute = reveal.DefaultWordsPerMinute
	}
	o.Guard = viewguard.New(o.Guard.MinWidth, o.Guard.MinHeight)
	if o.NewLink == nil {
		endpoint, logger := o.Endpoint, o.Logger
		o.NewLink = func() Link {
			return transport.New(endpoint, transport.WithLogger(logger))
		}
	}
	return o
}
