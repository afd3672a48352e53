// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hud

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/astrid-tui/internal/dashboard"
	"github.com/jeranaias/astrid-tui/internal/presentation"
	"github.com/jeranaias/astrid-tui/internal/ui/styles"
	"github.com/jeranaias/astrid-tui/internal/util"
)

// View implements tea.Model. The too-small overlay wins over the offline
// overlay, which wins over the dashboard.
func (m Model) View() string {
	if m.tooSmall.IsVisible() {
		return m.tooSmall.View()
	}
	if m.offline.IsVisible() {
		return m.offline.View()
	}
	return m.viewDashboard()
}

func (m Model) viewDashboard() string {
	t := m.opts.Theme
	v := m.verdict

	// content is laid out for the minimum size and grown by the scale
	contentWidth := v.Fit(v.MinWidth) - 2
	if contentWidth > m.width-2 {
		contentWidth = m.width - 2
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	snap := m.snapshot
	if m.userLine != "" {
		snap.LastUserLine = m.userLine
	}
	board := dashboard.Render(snap, dashboard.Layout{
		Width:       contentWidth,
		Scale:       v.Scale,
		ClockFormat: m.opts.ClockFormat,
		Theme:       t,
	}, m.now)

	center := m.viewCenter(contentWidth)
	footer := m.viewFooter(contentWidth)

	body := lipgloss.JoinVertical(lipgloss.Left, board, "", center, "", footer)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m Model) viewCenter(width int) string {
	t := m.opts.Theme
	style := lipgloss.NewStyle().Width(width)

	if m.presenter.Mode() == presentation.UserComposing {
		line := util.TailWidth(m.presenter.Line(), width-3)
		return style.Render(t.Prompt.Render("> ") + t.Composing.Render(line) + t.Indicator.Render(" "))
	}

	a := m.presenter.Animator()
	text := t.Reply.Render(a.Text())
	if a.Complete() {
		if a.Text() != "" {
			text += " "
		}
		text += t.Indicator.Render(a.Indicator())
	}
	return style.Render(text)
}

func (m Model) viewFooter(width int) string {
	t := m.opts.Theme

	var parts []string
	if !m.opts.Speech.Enabled() {
		parts = append(parts, styles.StatusIndicators.Muted+" muted")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	var help []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	parts = append(parts, strings.Join(help, " · "))

	return t.StatusLine.Render(util.TruncateWidth(strings.Join(parts, "  "), width))
}
