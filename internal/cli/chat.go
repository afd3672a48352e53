// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/config"
	"github.com/jeranaias/astrid-tui/internal/logging"
	"github.com/jeranaias/astrid-tui/internal/protocol"
	"github.com/jeranaias/astrid-tui/internal/transport"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides line editing and input history for chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads saved history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// ReadInput reads a line with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// CHAT
// =============================================================================

// FormatChatEvent renders a channel event as a chat line. ok is false for
// events that print nothing.
func FormatChatEvent(ev transport.Event) (line string, ok bool) {
	switch ev := ev.(type) {
	case transport.Opened:
		return DimStyle.Render("[connected]"), true
	case transport.Closed:
		return WarningStyle.Render(fmt.Sprintf("[disconnected: %d]", ev.Code)), true
	case transport.Errored:
		return ErrorStyle.Render("[error]") + " " + ev.Err.Error(), true
	case transport.Inbound:
		switch f := ev.Frame.(type) {
		case protocol.BotReply:
			return BotStyle.Render("astrid> ") + f.Text, true
		case protocol.State:
			return DimStyle.Render(fmt.Sprintf("[state: battery %.0f%%]", f.Snapshot.BatteryPct)), true
		}
	}
	return "", false
}

// drainTimeout bounds the wait for buffered events after the channel closes.
const drainTimeout = 2 * time.Second

// HandleChat opens a websocket to the backend and relays typed lines.
func HandleChat(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	endpoint, err := transport.EndpointFromOrigin(cfg.Client.Origin)
	if err != nil {
		return &UsageError{Message: err.Error(), Hint: "--origin http://host:8000"}
	}

	logger := zap.NewNop()
	if args.Verbose {
		if l, err := logging.New(logging.Options{Level: "debug", Sink: logging.SinkStderr}); err == nil {
			logger = l
		}
	}
	defer logger.Sync() //nolint:errcheck

	ch := transport.New(endpoint, transport.WithLogger(logger))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch.Connect(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		printChatEvents(os.Stdout, ch.Events(), args.Quiet)
	}()
	defer func() {
		ch.Close()
		// The event stream ends once the connection goroutine exits; let the
		// final disconnect line print before returning.
		select {
		case <-done:
		case <-time.After(drainTimeout):
		}
	}()

	if !args.Quiet {
		fmt.Println(TitleStyle.Render("astrid chat") + DimStyle.Render("  "+endpoint))
		fmt.Println(DimStyle.Render("Type a question. /state refreshes, /quit leaves."))
	}

	input := NewChatCLI()
	defer input.Close()

	for {
		text, err := input.ReadInput("you> ")
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				return err
			}
			fmt.Println()
			return nil
		}

		text = strings.TrimSpace(text)
		switch {
		case text == "":
			continue
		case text == "/quit" || text == "/exit":
			return nil
		case text == "/state":
			err = ch.Send(protocol.RequestState{})
		default:
			err = ch.Send(protocol.UserMessage{Text: text})
		}
		if errors.Is(err, transport.ErrNotOpen) {
			fmt.Println(WarningStyle.Render("[not connected]"))
		} else if err != nil {
			fmt.Println(ErrorStyle.Render("[error]"), err)
		}
	}
}

func printChatEvents(w io.Writer, events <-chan transport.Event, quiet bool) {
	for ev := range events {
		if quiet {
			if in, ok := ev.(transport.Inbound); !ok {
				continue
			} else if _, isReply := in.Frame.(protocol.BotReply); !isReply {
				continue
			}
		}
		if line, ok := FormatChatEvent(ev); ok {
			fmt.Fprintln(w, line)
		}
	}
}
