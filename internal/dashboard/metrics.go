// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/astrid-tui/internal/protocol"
)

// BatteryDotCount is the number of dots in the battery gauge.
const BatteryDotCount = 10

// Metrics are the display values derived from a snapshot.
type Metrics struct {
	Headline     string
	Eve          string
	BatteryPct   float64
	BatteryDots  int
	LoadW        float64
	LoadFraction float64
	LoadMaxW     float64
	SunW         float64
	SunFraction  float64
	SunMaxW      float64
	LastUserLine string
}

var upper = cases.Upper(language.Und)

// Compute derives the display values from a snapshot.
func Compute(s protocol.Snapshot) Metrics {
	headline := strings.TrimSpace(s.Headline)
	if headline == "" {
		headline = "ASTRID"
	}

	return Metrics{
		Headline:     upper.String(headline),
		Eve:          upper.String(strings.TrimSpace(s.Eve)),
		BatteryPct:   clamp(s.BatteryPct, 0, 100),
		BatteryDots:  BatteryDots(s.BatteryPct, BatteryDotCount),
		LoadW:        s.LoadW,
		LoadFraction: Fraction(s.LoadW, s.LoadMinW, s.LoadMaxW),
		LoadMaxW:     s.LoadMaxW,
		SunW:         s.SunW,
		SunFraction:  Fraction(s.SunW, s.SunMinW, s.SunMaxW),
		SunMaxW:      s.SunMaxW,
		LastUserLine: strings.TrimSpace(s.LastUserLine),
	}
}

// Fraction maps v from [lo, hi] onto [0, 1], clamping outside values. A
// degenerate range (hi <= lo) yields 0.
func Fraction(v, lo, hi float64) float64 {
	if hi <= lo || math.IsNaN(v) {
		return 0
	}
	return clamp((v-lo)/(hi-lo), 0, 1)
}

// BatteryDots returns how many of n dots a charge percentage fills.
func BatteryDots(pct float64, n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Round(Fraction(pct, 0, 100) * float64(n)))
}

// FormatWatts renders a power reading, e.g. "850 W" or "1.3 kW".
func FormatWatts(w float64) string {
	if math.Abs(w) < 1000 {
		return humanize.FormatFloat("#,###.", w) + " W"
	}
	return humanize.SIWithDigits(w, 1, "W")
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
