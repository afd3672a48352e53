// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/protocol"
)

const writeTimeout = 5 * time.Second

// client is one connected display.
type client struct {
	id   string
	conn *websocket.Conn

	// gorilla connections allow one concurrent writer
	mu sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks the live displays and fans frames out to them.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{logger: logger, clients: make(map[string]*client)}
}

func (h *Hub) add(conn *websocket.Conn) *client {
	c := &client{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("display connected",
		zap.String("client", c.id),
		zap.String("remote", conn.RemoteAddr().String()),
		zap.Int("connections", n))
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		c.conn.Close()
		h.logger.Info("display disconnected",
			zap.String("client", c.id),
			zap.Int("connections", n))
	}
}

// Len returns the number of live displays.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send writes a frame to one display. A failed write drops the display.
func (h *Hub) Send(c *client, f protocol.Frame) error {
	data, err := protocol.Encode(f)
	if err != nil {
		return err
	}
	if err := c.write(data); err != nil {
		h.logger.Debug("send failed", zap.String("client", c.id), zap.Error(err))
		h.remove(c)
		return err
	}
	return nil
}

// Broadcast writes a frame to every display, dropping those whose write
// fails. It returns how many displays received the frame.
func (h *Hub) Broadcast(f protocol.Frame) int {
	data, err := protocol.Encode(f)
	if err != nil {
		h.logger.Error("broadcast encode failed", zap.String("type", f.Type()), zap.Error(err))
		return 0
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if err := c.write(data); err != nil {
			h.logger.Debug("broadcast write failed", zap.String("client", c.id), zap.Error(err))
			h.remove(c)
			continue
		}
		delivered++
	}
	return delivered
}

// CloseAll sends a going-away close to every display and drops them.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	targets := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range targets {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
	}
}
