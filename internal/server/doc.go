// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server implements the household backend the display talks to.
//
// It holds the house state, answers typed questions through the
// controller, and pushes frames to every connected display over a
// websocket.
//
// # Routes
//
//	GET  /ws                       websocket channel
//	GET  /api/state                current state
//	PUT  /api/state                partial state update, broadcast to displays
//	POST /api/bot_reply            push a reply to every display
//	GET  /api/controller/history   recent exchanges
//	GET  /api/controller/status    controller status
//	POST /api/controller/process   answer a message without broadcasting
//	GET  /health                   liveness
//
// # Middleware
//
// Every route runs behind panic recovery, request logging and a per-client
// token bucket rate limiter.
package server
