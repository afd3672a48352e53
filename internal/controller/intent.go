// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"strings"
	"unicode"
)

// Intent is what a message is asking about.
type Intent string

const (
	IntentGreeting    Intent = "greeting"
	IntentStatus      Intent = "status"
	IntentPower       Intent = "power"
	IntentBattery     Intent = "battery"
	IntentWater       Intent = "water"
	IntentMaintenance Intent = "maintenance"
	IntentUnknown     Intent = "unknown"
)

// Analysis is the classification result.
type Analysis struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

type rule struct {
	intent     Intent
	confidence float64
	keywords   []string
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{IntentGreeting, 0.9, []string{"hello", "hi", "hey", "greetings"}},
	{IntentStatus, 0.8, []string{"status", "how", "what", "condition", "state"}},
	{IntentPower, 0.85, []string{"power", "electricity", "watt", "consumption", "generation"}},
	{IntentBattery, 0.9, []string{"battery", "capacity", "charge", "energy", "storage"}},
	{IntentWater, 0.7, []string{"water", "reserve", "level", "tank"}},
	{IntentMaintenance, 0.8, []string{"maintenance", "service", "check", "inspect"}},
}

// Classify determines the intent of a message.
//
// Short keywords (three letters or fewer) must match a whole word so that
// "hi" does not fire on "this". Longer keywords match the start of a word,
// so "watt" covers "watts" and "level" covers "levels".
func Classify(message string) Analysis {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, r := range rules {
		if matchesAny(words, r.keywords) {
			return Analysis{Intent: r.intent, Confidence: r.confidence}
		}
	}
	return Analysis{Intent: IntentUnknown, Confidence: 0.3}
}

func matchesAny(words, keywords []string) bool {
	for _, w := range words {
		for _, kw := range keywords {
			if w == kw || (len(kw) > 3 && strings.HasPrefix(w, kw)) {
				return true
			}
		}
	}
	return false
}
