// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package viewguard

import "testing"

func TestEvaluate_DisplayMinimums(t *testing.T) {
	g := Guard{MinWidth: 1267, MinHeight: 850}

	tests := []struct {
		name      string
		w, h      int
		tooSmall  bool
		wantScale float64
	}{
		{"one column short", 1266, 900, true, 0},
		{"exact minimum", 1267, 850, false, 1.0},
		{"double", 2534, 1700, false, 2.0},
		{"height limits scale", 2534, 850, false, 1.0},
		{"short height", 1267, 849, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := g.Evaluate(tt.w, tt.h)
			if v.TooSmall != tt.tooSmall {
				t.Errorf("TooSmall = %v, want %v", v.TooSmall, tt.tooSmall)
			}
			if tt.wantScale != 0 && v.Scale != tt.wantScale {
				t.Errorf("Scale = %v, want %v", v.Scale, tt.wantScale)
			}
			if v.Width != tt.w || v.Height != tt.h {
				t.Errorf("verdict size = %dx%d, want %dx%d", v.Width, v.Height, tt.w, tt.h)
			}
		})
	}
}

func TestEvaluate_ScaleComputedWhenTooSmall(t *testing.T) {
	v := Guard{MinWidth: 100, MinHeight: 50}.Evaluate(50, 50)
	if !v.TooSmall {
		t.Fatal("expected too small")
	}
	if v.Scale != 0.5 {
		t.Errorf("Scale = %v, want 0.5", v.Scale)
	}
	if v.MinWidth != 100 || v.MinHeight != 50 {
		t.Errorf("required size not reported: %+v", v)
	}
}

func TestNew_Defaults(t *testing.T) {
	g := New(0, -3)
	if g.MinWidth != DefaultMinWidth || g.MinHeight != DefaultMinHeight {
		t.Errorf("New(0,-3) = %+v", g)
	}
	v := Guard{}.Evaluate(DefaultMinWidth, DefaultMinHeight)
	if v.TooSmall || v.Scale != 1 {
		t.Errorf("zero guard should use defaults: %+v", v)
	}
}

func TestFit(t *testing.T) {
	v := Guard{MinWidth: 80, MinHeight: 24}.Evaluate(120, 36)
	if got := v.Fit(40); got != 60 {
		t.Errorf("Fit(40) = %d, want 60", got)
	}
	small := Guard{MinWidth: 80, MinHeight: 24}.Evaluate(1, 1)
	if got := small.Fit(10); got != 1 {
		t.Errorf("Fit floor = %d, want 1", got)
	}
}
