// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the display.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// DASHBOARD STYLES
	// ==========================================================================

	Headline   lipgloss.Style
	Eve        lipgloss.Style
	Label      lipgloss.Style
	Value      lipgloss.Style
	Clock      lipgloss.Style
	ClockDim   lipgloss.Style
	UserLine   lipgloss.Style
	Panel      lipgloss.Style
	DotFull    lipgloss.Style
	DotEmpty   lipgloss.Style
	StatusLine lipgloss.Style

	// ==========================================================================
	// CENTRE TEXT STYLES
	// ==========================================================================

	Reply     lipgloss.Style
	Composing lipgloss.Style
	Indicator lipgloss.Style
	Prompt    lipgloss.Style

	// ==========================================================================
	// OVERLAY STYLES
	// ==========================================================================

	OverlayBox   lipgloss.Style
	OverlayTitle lipgloss.Style
	OverlayBody  lipgloss.Style
	OverlayHint  lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Headline = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Eve = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim)

	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Value = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.Clock = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.ClockDim = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UserLine = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.DotFull = lipgloss.NewStyle().Foreground(Emerald)
	t.DotEmpty = lipgloss.NewStyle().Foreground(Overlay)

	t.StatusLine = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Reply = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Composing = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.Indicator = lipgloss.NewStyle().
		Foreground(Cyan).
		Blink(true)

	t.Prompt = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.OverlayBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		Padding(1, 3).
		Align(lipgloss.Center)

	t.OverlayTitle = lipgloss.NewStyle().
		Bold(true)

	t.OverlayBody = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Align(lipgloss.Center)

	t.OverlayHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Align(lipgloss.Center)
}
