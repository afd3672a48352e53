// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller answers household questions typed at the display.
//
// Messages are classified by keyword into an intent, answered from a
// template filled with the current house state, and recorded in a bounded
// conversation history.
//
// # Intents
//
// Rules are evaluated in order and the first match wins:
//
//	greeting     hello, hi, hey, greetings
//	status       status, how, what, condition, state
//	power        power, electricity, watt, consumption, generation
//	battery      battery, capacity, charge, energy, storage
//	water        water, reserve, level, tank
//	maintenance  maintenance, service, check, inspect
//	unknown      anything else
package controller
