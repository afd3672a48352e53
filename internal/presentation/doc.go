// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package presentation owns the display's activity state: whether it is
// idle, revealing a bot reply, or capturing the user's typing.
//
// The three activities are one Mode value rather than separate flags, so a
// reply and a user line can never be on screen at the same time. Any
// character-producing keystroke preempts a reply; a reply arriving while
// the user types discards the half-typed line and takes over the centre.
//
// Keystroke handling follows a fixed order:
//
//  1. Printable key, not composing: interrupt the reply, silence speech,
//     enter UserComposing with the key as the first character.
//  2. Composing: printable appends, Backspace removes the last character,
//     Enter submits the trimmed line (if non-empty) and returns to Idle.
//  3. Idle only: Esc stops speech, Ctrl+T toggles speech.
//  4. Everything else is ignored.
package presentation
