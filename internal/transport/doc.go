// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport maintains the display's single duplex connection to the
// backend.
//
// A Channel never returns transport failures to its caller. Dial errors,
// abrupt closes and protocol errors arrive as Errored and Closed events on
// Events(), next to Opened and Inbound. Retry policy belongs to the caller:
// a Channel connects once and is discarded after it closes.
//
// # Usage
//
//	endpoint, _ := transport.EndpointFromOrigin("https://hud.local")
//	ch := transport.New(endpoint, transport.WithLogger(logger))
//	ch.Connect(ctx)
//	for ev := range ch.Events() {
//		...
//	}
package transport
