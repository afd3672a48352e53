// astrid - household dashboard for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/cli"
	"github.com/jeranaias/astrid-tui/internal/config"
	"github.com/jeranaias/astrid-tui/internal/logging"
	"github.com/jeranaias/astrid-tui/internal/protocol"
	"github.com/jeranaias/astrid-tui/internal/speech"
	"github.com/jeranaias/astrid-tui/internal/transport"
	"github.com/jeranaias/astrid-tui/internal/ui/hud"
	"github.com/jeranaias/astrid-tui/internal/viewguard"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	if cmd != cli.CmdTUI {
		os.Exit(cli.Run(cmd, args))
	}
	if err := runTUI(args); err != nil {
		cli.DisplayError(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

// runTUI starts the full-screen display.
func runTUI(args cli.Args) error {
	if err := cli.RequiresTTY("open the display"); err != nil {
		return err
	}
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}

	// The display owns the terminal, so logs go to a file.
	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Sink: logging.SinkFile, Path: logPath})
	if err != nil {
		return &cli.ConfigError{Err: err}
	}
	defer logger.Sync() //nolint:errcheck

	endpoint, err := transport.EndpointFromOrigin(cfg.Client.Origin)
	if err != nil {
		return &cli.UsageError{Message: err.Error(), Hint: "--origin http://host:8000"}
	}

	driver := newSpeechDriver(cfg, logger)
	defer driver.Cancel()

	app := hud.NewApp(hud.Options{
		Endpoint: endpoint,
		NewLink: func() hud.Link {
			return transport.New(endpoint,
				transport.WithLogger(logger.Named("transport")),
				transport.WithHello(protocol.RequestState{}))
		},
		Guard:             viewguard.New(cfg.Display.MinWidth, cfg.Display.MinHeight),
		ReconnectInterval: cfg.ReconnectInterval(),
		ClockFormat:       cfg.Display.ClockFormat,
		Greeting:          cfg.Display.Greeting,
		GreetingDelay:     cfg.GreetingDelay(),
		WordsPerMinute:    cfg.Reveal.WordsPerMinute,
		Indicator:         cfg.Reveal.Cursor,
		Speech:            driver,
		Logger:            logger,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())

	if w := watchConfig(args, logger, p); w != nil {
		defer w.Close()
	}

	logger.Info("display starting",
		zap.String("endpoint", endpoint),
		zap.String("version", Version),
		zap.String("speech", driver.Engine().Name()))

	final, err := p.Run()
	if a, ok := final.(hud.App); ok {
		a.Close()
	}
	if err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

func newSpeechDriver(cfg *config.Config, logger *zap.Logger) *speech.Driver {
	engine, err := speech.Detect(cfg.Speech.Engine, cfg.Reveal.WordsPerMinute)
	if err != nil {
		logger.Warn("speech engine unavailable, staying silent",
			zap.String("engine", cfg.Speech.Engine), zap.Error(err))
		engine = speech.NullEngine{}
	}
	driver := speech.NewDriver(engine,
		speech.WithHint(speech.Hint{Name: cfg.Speech.Voice, Language: cfg.Speech.Language}),
		speech.WithLogger(logger.Named("speech")))
	driver.SetEnabled(cfg.Speech.Enabled)
	return driver
}

// watchConfig forwards config file edits to the running display. A nil
// result means no file is watched.
func watchConfig(args cli.Args, logger *zap.Logger, p *tea.Program) *config.Watcher {
	path := args.ConfigPath
	if path == "" {
		if err := config.EnsureConfigDir(); err != nil {
			logger.Warn("config directory unavailable", zap.Error(err))
			return nil
		}
		var err error
		if path, err = config.ConfigPathTOML(); err != nil {
			return nil
		}
	}

	w, err := config.NewWatcher(path, logger, func(cfg *config.Config) {
		p.Send(hud.SettingsMsg{
			SpeechEnabled:  cfg.Speech.Enabled,
			Hint:           speech.Hint{Name: cfg.Speech.Voice, Language: cfg.Speech.Language},
			WordsPerMinute: cfg.Reveal.WordsPerMinute,
		})
	})
	if err != nil {
		logger.Warn("config watch disabled", zap.String("path", path), zap.Error(err))
		return nil
	}
	return w
}
