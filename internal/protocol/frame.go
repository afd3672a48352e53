// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

// =============================================================================
// FRAME TYPES
// =============================================================================

// Frame type discriminants as they appear on the wire.
const (
	TypeState        = "state"
	TypeUserLine     = "user_line"
	TypeClearCenter  = "clear_center"
	TypeBotReply     = "bot_reply"
	TypeRequestState = "request_state"
	TypeUserMessage  = "user_message"
)

// Frame is any message that travels over the duplex stream.
type Frame interface {
	// Type returns the wire discriminant for the frame.
	Type() string
}

// Snapshot is the dashboard's external state. A new snapshot always replaces
// the previous one wholesale.
type Snapshot struct {
	Headline     string  `json:"headline"`
	Eve          string  `json:"eve"`
	BatteryPct   float64 `json:"battery_pct"`
	LoadW        float64 `json:"load_w"`
	LoadMinW     float64 `json:"load_min_w"`
	LoadMaxW     float64 `json:"load_max_w"`
	SunW         float64 `json:"sun_w"`
	SunMinW      float64 `json:"sun_min_w"`
	SunMaxW      float64 `json:"sun_max_w"`
	LastUserLine string  `json:"last_user_line"`
}

// DefaultSnapshot returns the household defaults the backend starts with.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Headline:     "BRAM HOUSE",
		Eve:          "EVE",
		BatteryPct:   76,
		LoadW:        1344,
		LoadMinW:     0,
		LoadMaxW:     5000,
		SunW:         8000,
		SunMinW:      0,
		SunMaxW:      8000,
		LastUserLine: "HELLO ASTRID, HOW ARE MY RESERVE WATER LEVELS?",
	}
}

// State carries a full dashboard snapshot.
type State struct {
	Snapshot Snapshot
}

// UserLine updates the secondary "last user line" display.
type UserLine struct {
	Text string
}

// ClearCenter clears the animated centre text.
type ClearCenter struct{}

// BotReply is a reply to reveal word by word.
type BotReply struct {
	Text string
}

// RequestState asks the backend to send a State frame.
type RequestState struct{}

// UserMessage is a submitted user line.
type UserMessage struct {
	Text string
}

func (State) Type() string        { return TypeState }
func (UserLine) Type() string     { return TypeUserLine }
func (ClearCenter) Type() string  { return TypeClearCenter }
func (BotReply) Type() string     { return TypeBotReply }
func (RequestState) Type() string { return TypeRequestState }
func (UserMessage) Type() string  { return TypeUserMessage }
