// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package presentation

// Mode is the display's single active presentation activity.
type Mode int

const (
	// Idle shows the last completed reply (or nothing) and waits.
	Idle Mode = iota
	// BotSpeaking reveals a reply word by word while it is spoken.
	BotSpeaking
	// UserComposing shows the line the user is typing.
	UserComposing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case BotSpeaking:
		return "bot_speaking"
	case UserComposing:
		return "user_composing"
	default:
		return "unknown"
	}
}
