// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/astrid-tui/internal/ui/styles"
)

// =============================================================================
// OFFLINE OVERLAY
// =============================================================================

// OfflineOverlay covers the screen while the backend is unreachable. It shows
// how long the display has been offline and when the next reconnect attempt
// is due.
type OfflineOverlay struct {
	// State
	visible        bool
	elapsed        int // whole seconds offline
	reconnectEvery time.Duration

	spinner spinner.Model

	// Dimensions
	width  int
	height int
}

// NewOfflineOverlay creates a hidden offline overlay.
func NewOfflineOverlay(reconnectEvery time.Duration) OfflineOverlay {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Rose)
	return OfflineOverlay{
		reconnectEvery: reconnectEvery,
		spinner:        s,
	}
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// SetSize sets the overlay dimensions.
func (o *OfflineOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// Show displays the overlay and starts the spinner.
func (o *OfflineOverlay) Show() tea.Cmd {
	if o.visible {
		return nil
	}
	o.visible = true
	o.elapsed = 0
	return o.spinner.Tick
}

// Hide removes the overlay.
func (o *OfflineOverlay) Hide() {
	o.visible = false
	o.elapsed = 0
}

// SetElapsed updates the offline counter.
func (o *OfflineOverlay) SetElapsed(secs int) {
	o.elapsed = secs
}

// IsVisible returns whether the overlay is shown.
func (o *OfflineOverlay) IsVisible() bool {
	return o.visible
}

// Elapsed returns the displayed offline seconds.
func (o *OfflineOverlay) Elapsed() int {
	return o.elapsed
}

// Update advances the spinner while visible.
func (o OfflineOverlay) Update(msg tea.Msg) (OfflineOverlay, tea.Cmd) {
	if !o.visible {
		return o, nil
	}
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		o.spinner, cmd = o.spinner.Update(tick)
		return o, cmd
	}
	return o, nil
}

// =============================================================================
// RENDER
// =============================================================================

// View renders the overlay, or nothing when hidden.
func (o OfflineOverlay) View() string {
	if !o.visible {
		return ""
	}
	width, height := sizeOr(o.width, o.height)

	title := lipgloss.NewStyle().
		Foreground(styles.Rose).
		Bold(true).
		Render(o.spinner.View() + " " + styles.StatusIndicators.Offline + " Connection lost")

	counter := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Render(fmt.Sprintf("Offline for %s", FormatElapsed(o.elapsed)))

	hint := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render(fmt.Sprintf("Reconnecting every %d seconds", int(o.reconnectEvery/time.Second)))

	content := lipgloss.JoinVertical(lipgloss.Center, title, "", counter, "", hint)
	return placeBox(width, height, styles.Rose, content)
}

// FormatElapsed formats seconds as M:SS, or H:MM:SS past an hour.
func FormatElapsed(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// =============================================================================
// HELPERS
// =============================================================================

func sizeOr(width, height int) (int, int) {
	if width <= 0 {
		width = 60
	}
	if height <= 0 {
		height = 24
	}
	return width, height
}

// placeBox centres content in a double-bordered box over a dimmed screen.
func placeBox(width, height int, border lipgloss.AdaptiveColor, content string) string {
	maxWidth := width - 8
	if maxWidth < 30 {
		maxWidth = 30
	}
	if maxWidth > 60 {
		maxWidth = 60
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}
