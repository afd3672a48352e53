// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package viewguard decides whether the viewport is large enough to run the
// dashboard and how far to scale it.
//
// The scale is always computed, even when the viewport is too small, so the
// dashboard stays centred and fully visible behind the too-small notice.
package viewguard

import "math"

// Default minimums, in terminal cells.
const (
	DefaultMinWidth  = 80
	DefaultMinHeight = 24
)

// Guard holds the minimum operating size.
type Guard struct {
	MinWidth  int
	MinHeight int
}

// Verdict is the result of checking one viewport size.
type Verdict struct {
	Width     int
	Height    int
	MinWidth  int
	MinHeight int

	// TooSmall is set when either dimension is below its minimum.
	TooSmall bool

	// Scale is min(width/minWidth, height/minHeight).
	Scale float64
}

// New returns a guard, substituting defaults for non-positive minimums.
func New(minWidth, minHeight int) Guard {
	if minWidth <= 0 {
		minWidth = DefaultMinWidth
	}
	if minHeight <= 0 {
		minHeight = DefaultMinHeight
	}
	return Guard{MinWidth: minWidth, MinHeight: minHeight}
}

// Evaluate checks a viewport size.
func (g Guard) Evaluate(width, height int) Verdict {
	g = New(g.MinWidth, g.MinHeight)
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	sx := float64(width) / float64(g.MinWidth)
	sy := float64(height) / float64(g.MinHeight)

	return Verdict{
		Width:     width,
		Height:    height,
		MinWidth:  g.MinWidth,
		MinHeight: g.MinHeight,
		TooSmall:  width < g.MinWidth || height < g.MinHeight,
		Scale:     math.Min(sx, sy),
	}
}

// Fit scales a length laid out for the minimum viewport, rounding down and
// never returning less than 1.
func (v Verdict) Fit(n int) int {
	scaled := int(math.Floor(float64(n) * v.Scale))
	if scaled < 1 {
		return 1
	}
	return scaled
}
