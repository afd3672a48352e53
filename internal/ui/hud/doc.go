// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hud is the astrid display's root Bubble Tea model.
//
// Model is the single event-dispatch point: channel events, keystrokes,
// reveal steps, timers and resizes all arrive through Model.Update, which
// routes them to the connectivity supervisor, the presenter and the
// viewport guard. No other code mutates display state.
//
// App wraps Model and implements the reconnect strategy. On a ReloadMsg it
// closes the current channel, discards the model with all of its state and
// builds a fresh one, exactly as if the display had been restarted.
//
// # Message Flow
//
//	transport.Channel --linkEventMsg--> Model --> Supervisor / Presenter
//	tea.KeyMsg -----------------------> Model --> Presenter --> Channel.Send
//	tea.WindowSizeMsg ----------------> Model --> viewguard.Guard
//	connectivity.ReloadMsg -----------> App   --> new Model
package hud
