// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/astrid-tui/internal/protocol"
	"github.com/jeranaias/astrid-tui/internal/ui/styles"
	"github.com/jeranaias/astrid-tui/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

const (
	// DefaultClockFormat is a 24-hour clock with seconds.
	DefaultClockFormat = "15:04:05"

	// baseGaugeWidth is the gauge width at scale 1.
	baseGaugeWidth = 30

	// labelWidth is the fixed width of the metric labels.
	labelWidth = 9

	dotFull  = "●"
	dotEmpty = "○"
)

// Layout controls how a snapshot is drawn.
type Layout struct {
	// Width is the number of columns available.
	Width int
	// Scale is the viewport scale; gauges grow with it.
	Scale float64
	// ClockFormat is a time.Format layout.
	ClockFormat string
	Theme       *styles.Theme
}

func (l Layout) normalized() Layout {
	if l.Scale <= 0 {
		l.Scale = 1
	}
	if l.ClockFormat == "" {
		l.ClockFormat = DefaultClockFormat
	}
	if l.Theme == nil {
		l.Theme = styles.NewTheme()
	}
	return l
}

func (l Layout) gaugeWidth() int {
	w := int(float64(baseGaugeWidth) * l.Scale)
	if maxW := l.Width - labelWidth - 14; l.Width > 0 && w > maxW {
		w = maxW
	}
	if w < 5 {
		w = 5
	}
	return w
}

// =============================================================================
// RENDER
// =============================================================================

// Render draws the dashboard for a snapshot. It has no side effects.
func Render(s protocol.Snapshot, l Layout, now time.Time) string {
	l = l.normalized()
	m := Compute(s)
	t := l.Theme

	header := renderHeader(m, l, now)

	rows := []string{
		metricRow(t, "BATTERY", renderDots(t, m.BatteryDots), fmt.Sprintf("%.0f%%", m.BatteryPct)),
		metricRow(t, "LOAD", renderGauge(styles.Rose.Dark, l.gaugeWidth(), m.LoadFraction), FormatWatts(m.LoadW)),
		metricRow(t, "SUN", renderGauge(styles.Amber.Dark, l.gaugeWidth(), m.SunFraction), FormatWatts(m.SunW)),
	}
	panel := t.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	parts := []string{header, panel}
	if m.LastUserLine != "" {
		width := l.Width - 4
		if width < 10 {
			width = 10
		}
		parts = append(parts, t.UserLine.Render("“"+util.TruncateWidth(m.LastUserLine, width)+"”"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderHeader(m Metrics, l Layout, now time.Time) string {
	t := l.Theme
	left := t.Headline.Render(m.Headline)
	if m.Eve != "" {
		left = lipgloss.JoinHorizontal(lipgloss.Center, left, "  ", t.Eve.Render(m.Eve))
	}
	clock := t.Clock.Render(now.Format(l.ClockFormat))

	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(clock)
	if gap < 2 {
		gap = 2
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, left, strings.Repeat(" ", gap), clock)
}

func metricRow(t *styles.Theme, label, gauge, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		t.Label.Width(labelWidth).Render(label),
		gauge,
		"  ",
		t.Value.Render(value),
	)
}

func renderDots(t *styles.Theme, filled int) string {
	var b strings.Builder
	for i := 0; i < BatteryDotCount; i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		if i < filled {
			b.WriteString(t.DotFull.Render(dotFull))
		} else {
			b.WriteString(t.DotEmpty.Render(dotEmpty))
		}
	}
	return b.String()
}

func renderGauge(color string, width int, fraction float64) string {
	bar := progress.New(
		progress.WithSolidFill(color),
		progress.WithoutPercentage(),
		progress.WithWidth(width),
	)
	bar.EmptyColor = styles.Overlay.Dark
	return bar.ViewAs(fraction)
}
