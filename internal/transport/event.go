// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import "github.com/jeranaias/astrid-tui/internal/protocol"

// State is the channel's own view of its connection.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is anything a Channel reports on its event stream.
type Event interface {
	isEvent()
}

// Opened reports that the connection is established.
type Opened struct{}

// Closed reports that the connection ended. Code follows the websocket close
// codes; 1006 means the connection dropped without a close frame.
type Closed struct {
	Code   int
	Reason string
}

// Errored reports a transport failure. A Closed event always follows.
type Errored struct {
	Err error
}

// Inbound carries a decoded frame from the backend.
type Inbound struct {
	Frame protocol.Frame
}

func (Opened) isEvent()  {}
func (Closed) isEvent()  {}
func (Errored) isEvent() {}
func (Inbound) isEvent() {}
