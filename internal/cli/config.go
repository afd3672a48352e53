// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/astrid-tui/internal/config"
)

// HandleConfig handles "astrid config [show|path|init]".
func HandleConfig(args Args, w io.Writer) error {
	switch args.Subcommand {
	case "", "show":
		return showConfig(args, w)
	case "path":
		return showConfigPath(args, w)
	case "init":
		return initConfig(args, w)
	default:
		return &UsageError{
			Message: fmt.Sprintf("unknown config subcommand %q", args.Subcommand),
			Hint:    "astrid config show|path|init",
		}
	}
}

func showConfig(args Args, w io.Writer) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	if args.JSON {
		fmt.Fprintln(w, cfg.String())
		return nil
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	return path, nil
}

func showConfigPath(args Args, w io.Writer) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, path)
	return nil
}

// initConfig writes the defaults. An existing file is left alone.
func initConfig(args Args, w io.Writer) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return &ConfigError{Err: fmt.Errorf("%s already exists", path)}
	}
	if err := config.SaveTOML(config.Default(), path); err != nil {
		return &ConfigError{Err: err}
	}
	if !args.Quiet {
		fmt.Fprintln(w, SuccessStyle.Render("[OK]")+" wrote "+path)
	}
	return nil
}
