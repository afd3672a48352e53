// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

// templates holds the interchangeable answers per intent. Placeholders
// {load_w}, {sun_w} and {battery_pct} are filled from the house state as
// whole numbers.
var templates = map[Intent][]string{
	IntentGreeting: {
		"Greetings, human. How may I assist you today?",
		"Hello there. What would you like to know about your systems?",
		"ASTRID online and ready. What's your query?",
	},
	IntentStatus: {
		"Current system status: All systems operational.",
		"Status check complete. Everything is running within normal parameters.",
		"Systems are functioning at optimal levels.",
	},
	IntentPower: {
		"Power consumption is currently at {load_w}W with {sun_w}W solar generation.",
		"Your power grid shows {load_w}W load against {sun_w}W solar input.",
		"Power status: {battery_pct}% battery, {load_w}W consumption, {sun_w}W generation.",
	},
	IntentBattery: {
		"Battery capacity is at {battery_pct}%.",
		"Your energy storage shows {battery_pct}% remaining.",
		"Battery status: {battery_pct}% capacity available.",
	},
	IntentUnknown: {
		"I'm not sure I understand that query. Could you rephrase?",
		"That's outside my current knowledge base. Try asking about power, battery, or system status.",
		"I need more context to help you with that request.",
	},
}
