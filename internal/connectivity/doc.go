// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package connectivity tracks whether the display is connected and drives
// the offline overlay and the reconnect protocol.
//
// # State Machine
//
//	Connecting --opened--> Open
//	Connecting --closed/error--> Closed
//	Open --closed/error--> Closed
//	Closed --opened--> Open (state refresh requested)
//
// While Closed, a counter tick fires every second to refresh the overlay
// and a reconnect tick fires every ReconnectInterval to request a reload.
// A reload rebuilds the whole client with a fresh channel; there is no
// backoff. An inbound frame seen while Closed also forces a reload, since
// it proves the link is alive even though no opened event arrived.
//
// Every offline period gets its own epoch. Ticks carry the epoch that
// armed them and are ignored once that period is over.
package connectivity
