// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"github.com/jeranaias/astrid-tui/internal/controller"
)

// renderMarkdown renders history for terminals, wrapped to width.
func renderMarkdown(content string, width int) string {
	if !ColorsEnabled() {
		return content
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}

// HistoryMarkdown formats exchanges oldest first as a markdown document.
func HistoryMarkdown(history []controller.Exchange, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Recent conversation\n\n")
	if len(history) == 0 {
		b.WriteString("_Nothing has been asked yet._\n")
		return b.String()
	}
	for _, ex := range history {
		fmt.Fprintf(&b, "## %s\n\n", quoteLine(ex.User))
		fmt.Fprintf(&b, "%s\n\n", ex.Bot)
		fmt.Fprintf(&b, "*%s, %s*\n\n", ex.Intent, humanize.RelTime(ex.Timestamp, now, "ago", "from now"))
	}
	return b.String()
}

// quoteLine keeps a user line on one markdown heading line.
func quoteLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(strings.TrimLeft(s, "#"))
}

// HandleHistory prints the backend's recent exchanges.
func HandleHistory(args Args, w io.Writer) error {
	client, err := newClient(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	history, err := client.History(ctx)
	if err != nil {
		return err
	}

	if args.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}
	fmt.Fprint(w, renderMarkdown(HistoryMarkdown(history, time.Now()), GetTerminalWidth()))
	return nil
}
