// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech drives the platform text-to-speech engine.
//
// A Driver keeps at most one utterance audible: Speak cancels the current
// utterance before starting the next, and Cancel is idempotent. Engines are
// external programs (espeak-ng, espeak, macOS say) or the silent NullEngine
// used when nothing is installed, in which case replies are revealed as
// text only.
//
// Voice choice is a Selector chain, by default exact voice name, then
// language match, then the engine default. The chain runs again whenever
// LoadVoices delivers the engine's voice list.
package speech
