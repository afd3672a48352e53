// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/protocol"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultHandshakeTimeout bounds the websocket opening handshake.
	DefaultHandshakeTimeout = 10 * time.Second

	// writeTimeout bounds a single outbound frame write.
	writeTimeout = 5 * time.Second

	// eventBuffer is the capacity of the event stream.
	eventBuffer = 64

	// closeAbnormal is reported when the connection drops without a close frame.
	closeAbnormal = websocket.CloseAbnormalClosure
)

// ErrNotOpen is returned by Send when the channel is not open. The frame is
// dropped, never queued.
var ErrNotOpen = errors.New("transport: channel not open")

// =============================================================================
// CHANNEL
// =============================================================================

// Channel is one duplex connection to the backend.
type Channel struct {
	endpoint string
	dialer   *websocket.Dialer
	logger   *zap.Logger
	hello    protocol.Frame

	events chan Event
	done   chan struct{}

	mu     sync.Mutex // guards conn, state, cancel and writes
	conn   *websocket.Conn
	state  State
	cancel context.CancelFunc

	closeOnce sync.Once
}

// Option configures a Channel.
type Option func(*Channel)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithHello sets the frame sent as soon as the channel opens. Passing nil
// disables the hello frame.
func WithHello(f protocol.Frame) Option {
	return func(c *Channel) {
		c.hello = f
	}
}

// New creates a channel for endpoint. It does not connect.
func New(endpoint string, opts ...Option) *Channel {
	c := &Channel{
		endpoint: endpoint,
		dialer: &websocket.Dialer{
			HandshakeTimeout: DefaultHandshakeTimeout,
		},
		logger: zap.NewNop(),
		hello:  protocol.RequestState{},
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("endpoint", endpoint))
	return c
}

// Endpoint returns the endpoint the channel dials.
func (c *Channel) Endpoint() string {
	return c.endpoint
}

// Events returns the event stream. It is closed once the channel has
// finished after a Connect.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// State returns the channel's connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts dialing in the background and returns immediately. Only the
// first call has any effect.
func (c *Channel) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return
	}
	select {
	case <-c.done:
		c.state = StateClosed
		c.mu.Unlock()
		return
	default:
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = StateConnecting
	c.mu.Unlock()

	go c.run(ctx)
}

// Send writes a frame if the channel is open. It returns ErrNotOpen
// otherwise and the frame is discarded.
func (c *Channel) Send(f protocol.Frame) error {
	data, err := protocol.Encode(f)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen || c.conn == nil {
		return ErrNotOpen
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close shuts the channel down. It is safe to call more than once and from
// any goroutine. No events are delivered after Close returns.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.cancel != nil {
			c.cancel()
		}
		if c.conn != nil {
			deadline := time.Now().Add(time.Second)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
			err = c.conn.Close()
		}
		c.state = StateClosed
	})
	return err
}

// =============================================================================
// CONNECTION LOOP
// =============================================================================

func (c *Channel) run(ctx context.Context) {
	defer close(c.events)

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		c.logger.Debug("dial failed", zap.Error(err))
		c.finish(Errored{Err: err}, Closed{Code: closeAbnormal, Reason: err.Error()})
		return
	}

	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		conn.Close()
		return
	default:
	}
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	c.logger.Info("channel open")
	c.emit(Opened{})

	if c.hello != nil {
		if err := c.Send(c.hello); err != nil {
			c.logger.Warn("hello frame not sent", zap.Error(err))
		}
	}

	c.readLoop(conn)
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		frame, err := protocol.Decode(raw)
		if err != nil {
			c.logger.Warn("dropping inbound frame",
				zap.Error(err),
				zap.Int("bytes", len(raw)))
			continue
		}
		c.emit(Inbound{Frame: frame})
	}
}

func (c *Channel) handleReadError(err error) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		c.logger.Info("channel closed",
			zap.Int("code", ce.Code),
			zap.String("reason", ce.Text))
		if ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway {
			c.finish(Closed{Code: ce.Code, Reason: ce.Text})
			return
		}
		c.finish(Errored{Err: err}, Closed{Code: ce.Code, Reason: ce.Text})
		return
	}

	c.logger.Info("channel dropped", zap.Error(err))
	c.finish(Errored{Err: err}, Closed{Code: closeAbnormal, Reason: err.Error()})
}

// finish marks the channel closed and reports the final events.
func (c *Channel) finish(events ...Event) {
	c.mu.Lock()
	c.state = StateClosed
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()

	for _, ev := range events {
		c.emit(ev)
	}
}

// emit delivers ev unless the channel has been closed.
func (c *Channel) emit(ev Event) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.events <- ev:
	case <-c.done:
	}
}
