// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/astrid-tui/internal/viewguard"
)

func TestOfflineOverlay_ShowHide(t *testing.T) {
	o := NewOfflineOverlay(10 * time.Second)
	o.SetSize(80, 24)

	if o.View() != "" {
		t.Fatal("hidden overlay should render nothing")
	}
	if cmd := o.Show(); cmd == nil {
		t.Error("Show should start the spinner")
	}
	if cmd := o.Show(); cmd != nil {
		t.Error("second Show should be a no-op")
	}

	o.SetElapsed(7)
	view := o.View()
	for _, want := range []string{"Connection lost", "0:07", "10 seconds"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	o.Hide()
	if o.IsVisible() || o.View() != "" || o.Elapsed() != 0 {
		t.Error("Hide should clear the overlay")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := map[int]string{
		-1:   "0:00",
		0:    "0:00",
		59:   "0:59",
		61:   "1:01",
		3725: "1:02:05",
	}
	for in, want := range tests {
		if got := FormatElapsed(in); got != want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestTooSmallOverlay(t *testing.T) {
	o := NewTooSmallOverlay()
	g := viewguard.Guard{MinWidth: 80, MinHeight: 24}

	o.SetVerdict(g.Evaluate(70, 24))
	if !o.IsVisible() {
		t.Fatal("70x24 should be too small")
	}
	view := o.View()
	if !strings.Contains(view, "70 x 24") || !strings.Contains(view, "80 x 24") {
		t.Errorf("overlay should report current and required size:\n%s", view)
	}

	o.SetVerdict(g.Evaluate(20, 5))
	if !strings.Contains(o.View(), "20 x 5") {
		t.Error("tiny viewport should still report its size")
	}

	o.SetVerdict(g.Evaluate(80, 24))
	if o.IsVisible() || o.View() != "" {
		t.Error("overlay should be absent at the minimum size")
	}
}
