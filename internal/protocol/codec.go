// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMalformed is returned for payloads that are not a JSON object with
	// a string "type" field, or whose fields do not fit the frame.
	ErrMalformed = errors.New("protocol: malformed frame")

	// ErrUnknownType is returned for well-formed frames with a type this
	// side of the connection does not handle.
	ErrUnknownType = errors.New("protocol: unknown frame type")
)

// =============================================================================
// WIRE ENVELOPE
// =============================================================================

// envelope is the superset of every field any frame carries.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	Text *string         `json:"text,omitempty"`
}

// =============================================================================
// DECODING
// =============================================================================

// Decode parses a frame sent by the backend to the display: state,
// user_line, clear_center or bot_reply.
func Decode(raw []byte) (Frame, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case TypeState:
		snap, err := decodeSnapshot(env, raw)
		if err != nil {
			return nil, err
		}
		return State{Snapshot: snap}, nil
	case TypeUserLine:
		return UserLine{Text: textOf(env)}, nil
	case TypeClearCenter:
		return ClearCenter{}, nil
	case TypeBotReply:
		return BotReply{Text: textOf(env)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

// DecodeClient parses a frame sent by the display to the backend:
// request_state or user_message.
func DecodeClient(raw []byte) (Frame, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case TypeRequestState:
		return RequestState{}, nil
	case TypeUserMessage:
		return UserMessage{Text: textOf(env)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func parseEnvelope(raw []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env, nil
}

// decodeSnapshot reads the snapshot from "data", or from the top level of
// the frame when a producer sends the fields flat.
func decodeSnapshot(env envelope, raw []byte) (Snapshot, error) {
	src := []byte(env.Data)
	if len(src) == 0 || bytes.Equal(src, []byte("null")) {
		src = raw
	}
	var snap Snapshot
	if err := json.Unmarshal(src, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: state payload: %v", ErrMalformed, err)
	}
	return snap, nil
}

func textOf(env envelope) string {
	if env.Text == nil {
		return ""
	}
	return *env.Text
}

// =============================================================================
// ENCODING
// =============================================================================

// Encode serializes a frame into its wire form.
func Encode(f Frame) ([]byte, error) {
	var env any
	switch v := f.(type) {
	case State:
		env = struct {
			Type string   `json:"type"`
			Data Snapshot `json:"data"`
		}{TypeState, v.Snapshot}
	case UserLine:
		env = textFrame(TypeUserLine, v.Text)
	case BotReply:
		env = textFrame(TypeBotReply, v.Text)
	case UserMessage:
		env = textFrame(TypeUserMessage, v.Text)
	case ClearCenter, RequestState:
		env = struct {
			Type string `json:"type"`
		}{v.Type()}
	case nil:
		return nil, fmt.Errorf("%w: nil frame", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, f.Type())
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return nil, fmt.Errorf("encode %s: %w", f.Type(), err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

type textPayload struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textFrame(typ, text string) textPayload {
	return textPayload{Type: typ, Text: text}
}
