// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/astrid-tui/internal/ui/styles"
	"github.com/jeranaias/astrid-tui/internal/viewguard"
)

// TooSmallOverlay blocks the display while the terminal is below its
// minimum operating size.
type TooSmallOverlay struct {
	verdict viewguard.Verdict
}

// NewTooSmallOverlay creates an overlay with no verdict yet.
func NewTooSmallOverlay() TooSmallOverlay {
	return TooSmallOverlay{}
}

// SetVerdict records the latest viewport check.
func (o *TooSmallOverlay) SetVerdict(v viewguard.Verdict) {
	o.verdict = v
}

// IsVisible reports whether the viewport is too small.
func (o TooSmallOverlay) IsVisible() bool {
	return o.verdict.TooSmall
}

// View renders the overlay, or nothing when the viewport is large enough.
func (o TooSmallOverlay) View() string {
	v := o.verdict
	if !v.TooSmall {
		return ""
	}

	lines := []string{
		styles.RenderWarning("Window too small"),
		"",
		fmt.Sprintf("Current:  %d x %d", v.Width, v.Height),
		fmt.Sprintf("Required: %d x %d", v.MinWidth, v.MinHeight),
	}

	// the box itself may not fit; fall back to plain centred lines
	if v.Width < 34 || v.Height < 10 {
		return lipgloss.Place(v.Width, v.Height, lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center, lines...))
	}

	lines = append(lines, "", lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("Enlarge the terminal to continue"))
	return placeBox(v.Width, v.Height, styles.Amber, lipgloss.JoinVertical(lipgloss.Center, lines...))
}
