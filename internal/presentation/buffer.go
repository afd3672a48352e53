// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package presentation

import "strings"

// LineBuffer accumulates the user's line one rune at a time.
type LineBuffer struct {
	runes []rune
}

// Append adds runes to the end of the line.
func (b *LineBuffer) Append(r ...rune) {
	b.runes = append(b.runes, r...)
}

// Backspace removes the last rune, if any.
func (b *LineBuffer) Backspace() {
	if len(b.runes) > 0 {
		b.runes = b.runes[:len(b.runes)-1]
	}
}

// Reset empties the line.
func (b *LineBuffer) Reset() {
	b.runes = b.runes[:0]
}

// String returns the line as typed.
func (b *LineBuffer) String() string {
	return string(b.runes)
}

// Trimmed returns the line without surrounding whitespace.
func (b *LineBuffer) Trimmed() string {
	return strings.TrimSpace(string(b.runes))
}

// Len returns the number of runes in the line.
func (b *LineBuffer) Len() int {
	return len(b.runes)
}
