// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/jeranaias/astrid-tui/internal/protocol"
)

// StateUpdate is a partial state change. Nil fields are left alone.
type StateUpdate struct {
	Headline     *string  `json:"headline,omitempty"`
	Eve          *string  `json:"eve,omitempty"`
	BatteryPct   *float64 `json:"battery_pct,omitempty"`
	LoadW        *float64 `json:"load_w,omitempty"`
	SunW         *float64 `json:"sun_w,omitempty"`
	LoadMinW     *float64 `json:"load_min_w,omitempty"`
	LoadMaxW     *float64 `json:"load_max_w,omitempty"`
	SunMinW      *float64 `json:"sun_min_w,omitempty"`
	SunMaxW      *float64 `json:"sun_max_w,omitempty"`
	LastUserLine *string  `json:"last_user_line,omitempty"`
}

// Validate checks the fields that carry constraints.
func (u StateUpdate) Validate() error {
	if u.Eve != nil {
		if n := utf8.RuneCountInString(*u.Eve); n < 1 || n > 3 {
			return fmt.Errorf("eve must be 1 to 3 characters, got %d", n)
		}
	}
	return nil
}

// Store holds the house state. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	snap protocol.Snapshot
}

// NewStore creates a store seeded with initial.
func NewStore(initial protocol.Snapshot) *Store {
	return &Store{snap: initial}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() protocol.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Apply validates and merges u, returning the resulting state.
func (s *Store) Apply(u StateUpdate) (protocol.Snapshot, error) {
	if err := u.Validate(); err != nil {
		return protocol.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	setString(&s.snap.Headline, u.Headline)
	setString(&s.snap.Eve, u.Eve)
	setString(&s.snap.LastUserLine, u.LastUserLine)
	setFloat(&s.snap.BatteryPct, u.BatteryPct)
	setFloat(&s.snap.LoadW, u.LoadW)
	setFloat(&s.snap.SunW, u.SunW)
	setFloat(&s.snap.LoadMinW, u.LoadMinW)
	setFloat(&s.snap.LoadMaxW, u.LoadMaxW)
	setFloat(&s.snap.SunMinW, u.SunMinW)
	setFloat(&s.snap.SunMaxW, u.SunMaxW)
	return s.snap, nil
}

// SetLastUserLine records the most recent typed message.
func (s *Store) SetLastUserLine(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.LastUserLine = text
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
