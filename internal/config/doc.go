// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for astrid.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, validation, and hot reload.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ASTRID_*)
//   - ~/.astrid/config.toml
//   - ~/.astrid/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	origin := cfg.Client.Origin
//
// Watch for edits while the display runs:
//
//	w, _ := config.NewWatcher(path, logger, func(c *config.Config) { ... })
//	defer w.Close()
package config
