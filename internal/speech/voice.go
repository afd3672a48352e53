// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"strings"

	"golang.org/x/text/language"
)

// =============================================================================
// VOICES
// =============================================================================

// Voice is one voice an engine can speak with. The zero Voice means the
// engine's own default.
type Voice struct {
	Name     string
	Language string
	Default  bool
}

// IsZero reports whether v is the engine default placeholder.
func (v Voice) IsZero() bool {
	return v.Name == "" && v.Language == ""
}

// Hint describes the preferred voice.
type Hint struct {
	Name     string // exact voice name, e.g. "Daniel" or "English_(Great_Britain)"
	Language string // BCP 47 tag, e.g. "en-GB"
}

// =============================================================================
// SELECTION STRATEGIES
// =============================================================================

// Selector picks a voice from the available list. ok is false when the
// strategy has no opinion and the next one in a chain should run.
type Selector interface {
	Select(voices []Voice, hint Hint) (v Voice, ok bool)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(voices []Voice, hint Hint) (Voice, bool)

// Select implements Selector.
func (f SelectorFunc) Select(voices []Voice, hint Hint) (Voice, bool) {
	return f(voices, hint)
}

// Chain tries each selector in order.
type Chain []Selector

// Select implements Selector.
func (c Chain) Select(voices []Voice, hint Hint) (Voice, bool) {
	for _, s := range c {
		if v, ok := s.Select(voices, hint); ok {
			return v, true
		}
	}
	return Voice{}, false
}

// DefaultSelector prefers the named voice, then the closest language, then
// the platform default.
func DefaultSelector() Selector {
	return Chain{ExactName(), LanguageMatch(), PlatformDefault()}
}

// ExactName matches the hint's voice name, ignoring case.
func ExactName() Selector {
	return SelectorFunc(func(voices []Voice, hint Hint) (Voice, bool) {
		if hint.Name == "" {
			return Voice{}, false
		}
		for _, v := range voices {
			if strings.EqualFold(v.Name, hint.Name) {
				return v, true
			}
		}
		return Voice{}, false
	})
}

// LanguageMatch picks the voice whose language best matches the hint's.
// A voice in the same language but another region still matches.
func LanguageMatch() Selector {
	return SelectorFunc(func(voices []Voice, hint Hint) (Voice, bool) {
		if hint.Language == "" {
			return Voice{}, false
		}
		want, err := language.Parse(hint.Language)
		if err != nil {
			return Voice{}, false
		}

		var tags []language.Tag
		var candidates []Voice
		for _, v := range voices {
			tag, err := language.Parse(normalizeLanguage(v.Language))
			if err != nil {
				continue
			}
			tags = append(tags, tag)
			candidates = append(candidates, v)
		}
		if len(tags) == 0 {
			return Voice{}, false
		}

		_, idx, conf := language.NewMatcher(tags).Match(want)
		if conf == language.No || idx < 0 || idx >= len(candidates) {
			return Voice{}, false
		}
		return candidates[idx], true
	})
}

// PlatformDefault returns the voice the engine flags as default, or the
// engine default placeholder. It always succeeds.
func PlatformDefault() Selector {
	return SelectorFunc(func(voices []Voice, _ Hint) (Voice, bool) {
		for _, v := range voices {
			if v.Default {
				return v, true
			}
		}
		return Voice{}, true
	})
}

// normalizeLanguage turns engine spellings such as "en_GB" into BCP 47.
func normalizeLanguage(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
}
