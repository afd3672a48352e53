// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal implements the word-by-word typewriter rendering of bot
// replies, paced to match speech and started together with it.
//
// The Animator owns at most one live Session. Steps are Bubble Tea messages
// tagged with the session identity, and every step checks that identity
// before touching the visible text. A step scheduled by a superseded or
// interrupted session is a no-op, so nothing from an old reply can appear
// once Reveal or Interrupt has returned.
package reveal
