// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the JSON frames exchanged between the astrid
// display and its backend over the duplex stream.
//
// Every frame is a JSON object with a "type" discriminant.
//
// # Inbound (backend to display)
//
//   - state: dashboard snapshot, carried under "data"
//   - user_line: {"text": ...} secondary display line
//   - clear_center: no payload, clears the animated text area
//   - bot_reply: {"text": ...} starts the reveal animation
//
// # Outbound (display to backend)
//
//   - request_state: no payload, asks for a full snapshot
//   - user_message: {"text": ...} a submitted user line
//
// # Usage
//
//	frame, err := protocol.Decode(raw)
//	if errors.Is(err, protocol.ErrUnknownType) {
//		// log and drop
//	}
//
//	data, err := protocol.Encode(protocol.UserMessage{Text: "hello"})
package protocol
