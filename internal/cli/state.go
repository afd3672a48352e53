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

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/astrid-tui/internal/apiclient"
	"github.com/jeranaias/astrid-tui/internal/dashboard"
	"github.com/jeranaias/astrid-tui/internal/protocol"
	"github.com/jeranaias/astrid-tui/internal/server"
)

// requestTimeout bounds each one-shot backend call.
const requestTimeout = 10 * time.Second

func newClient(args Args) (*apiclient.Client, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}
	client, err := apiclient.New(cfg.Client.Origin, requestTimeout)
	if err != nil {
		return nil, &UsageError{Message: err.Error(), Hint: "--origin http://host:8000"}
	}
	return client, nil
}

// =============================================================================
// STATE
// =============================================================================

// HandleState prints the backend's current house state.
func HandleState(args Args, w io.Writer) error {
	client, err := newClient(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	snap, err := client.State(ctx)
	if err != nil {
		return err
	}

	if args.JSON {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		if ColorsEnabled() {
			fmt.Fprintln(w, highlightJSON(string(data)))
		} else {
			fmt.Fprintln(w, string(data))
		}
		return nil
	}

	fmt.Fprint(w, formatSnapshot(snap))
	return nil
}

// formatSnapshot renders a snapshot as a label/value table.
func formatSnapshot(s protocol.Snapshot) string {
	m := dashboard.Compute(s)
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.Headline) + "\n")

	row := func(label, value string) {
		b.WriteString(RenderLabel(label) + ValueStyle.Render(value) + "\n")
	}
	row("Assistant", m.Eve)
	row("Battery", fmt.Sprintf("%.0f%%", m.BatteryPct))
	row("Load", fmt.Sprintf("%s  (%s to %s)",
		dashboard.FormatWatts(s.LoadW), dashboard.FormatWatts(s.LoadMinW), dashboard.FormatWatts(s.LoadMaxW)))
	row("Solar", fmt.Sprintf("%s  (%s to %s)",
		dashboard.FormatWatts(s.SunW), dashboard.FormatWatts(s.SunMinW), dashboard.FormatWatts(s.SunMaxW)))
	if m.LastUserLine != "" {
		row("Last asked", m.LastUserLine)
	}
	return b.String()
}

// highlightJSON applies terminal syntax highlighting to a JSON document.
func highlightJSON(code string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// =============================================================================
// PUSH
// =============================================================================

// pushFlags maps command-line flags onto state fields.
var pushFlags = []struct {
	flag string
	set  func(u *server.StateUpdate, v *float64)
}{
	{"battery", func(u *server.StateUpdate, v *float64) { u.BatteryPct = v }},
	{"load", func(u *server.StateUpdate, v *float64) { u.LoadW = v }},
	{"load-min", func(u *server.StateUpdate, v *float64) { u.LoadMinW = v }},
	{"load-max", func(u *server.StateUpdate, v *float64) { u.LoadMaxW = v }},
	{"sun", func(u *server.StateUpdate, v *float64) { u.SunW = v }},
	{"sun-min", func(u *server.StateUpdate, v *float64) { u.SunMinW = v }},
	{"sun-max", func(u *server.StateUpdate, v *float64) { u.SunMaxW = v }},
}

// BuildStateUpdate turns push arguments into a partial state change.
func BuildStateUpdate(raw []string) (server.StateUpdate, error) {
	p := NewArgParser(raw)
	var u server.StateUpdate

	for _, f := range pushFlags {
		v, err := p.FloatFlag(f.flag)
		if err != nil {
			return u, err
		}
		if v != nil {
			f.set(&u, v)
		}
	}
	u.Headline = p.StringFlag("headline")
	u.Eve = p.StringFlag("eve")
	u.LastUserLine = p.StringFlag("line")

	if u == (server.StateUpdate{}) {
		return u, ErrMissingArgument("field", "astrid push --battery 80 --load 950")
	}
	if err := u.Validate(); err != nil {
		return u, NewValidationErrorWithExample("eve", *u.Eve, err.Error(), "--eve EVE")
	}
	return u, nil
}

// HandlePush sends a partial state change to the backend.
func HandlePush(args Args, w io.Writer) error {
	u, err := BuildStateUpdate(args.Raw)
	if err != nil {
		return err
	}
	client, err := newClient(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := client.PushState(ctx, u); err != nil {
		return err
	}
	if !args.Quiet {
		fmt.Fprintln(w, SuccessStyle.Render("[OK]")+" state updated")
	}
	return nil
}

// =============================================================================
// SAY
// =============================================================================

// HandleSay shows a reply on every connected display.
func HandleSay(args Args, w io.Writer) error {
	text := strings.TrimSpace(args.Text)
	if text == "" {
		return ErrMissingArgument("text", `astrid say "Dinner is ready."`)
	}
	client, err := newClient(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := client.Say(ctx, text); err != nil {
		return err
	}
	if !args.Quiet {
		fmt.Fprintln(w, SuccessStyle.Render("[OK]")+" sent")
	}
	return nil
}
