// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/astrid-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	dirName      = ".astrid"
	fileNameTOML = "config.toml"
	fileNameJSON = "config.json"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the main configuration structure.
type Config struct {
	Client       ClientConfig       `toml:"client" json:"client"`
	Display      DisplayConfig      `toml:"display" json:"display"`
	Reveal       RevealConfig       `toml:"reveal" json:"reveal"`
	Speech       SpeechConfig       `toml:"speech" json:"speech"`
	Connectivity ConnectivityConfig `toml:"connectivity" json:"connectivity"`
	Server       ServerConfig       `toml:"server" json:"server"`
	Logging      LoggingConfig      `toml:"logging" json:"logging"`
}

// ClientConfig says where the display finds its backend.
type ClientConfig struct {
	// Origin is the page origin the channel endpoint is derived from,
	// e.g. "http://127.0.0.1:8000". An https origin selects wss.
	Origin string `toml:"origin" json:"origin"`
}

// DisplayConfig contains layout and startup settings.
type DisplayConfig struct {
	MinWidth        int    `toml:"min_width" json:"min_width"`
	MinHeight       int    `toml:"min_height" json:"min_height"`
	ClockFormat     string `toml:"clock_format" json:"clock_format"`
	Greeting        string `toml:"greeting" json:"greeting"`
	GreetingDelayMs int    `toml:"greeting_delay_ms" json:"greeting_delay_ms"`
}

// RevealConfig controls the word-by-word reveal.
type RevealConfig struct {
	WordsPerMinute int    `toml:"words_per_minute" json:"words_per_minute"`
	Cursor         string `toml:"cursor" json:"cursor"`
}

// SpeechConfig selects the speech engine and voice.
type SpeechConfig struct {
	Enabled  bool   `toml:"enabled" json:"enabled"`
	Engine   string `toml:"engine" json:"engine"`     // auto, espeak, say, none
	Voice    string `toml:"voice" json:"voice"`       // exact voice name, optional
	Language string `toml:"language" json:"language"` // BCP 47 tag
}

// ConnectivityConfig controls recovery after the channel drops.
type ConnectivityConfig struct {
	ReconnectIntervalSecs int `toml:"reconnect_interval_secs" json:"reconnect_interval_secs"`
}

// ServerConfig configures `astrid serve`.
type ServerConfig struct {
	Host            string  `toml:"host" json:"host"`
	Port            int     `toml:"port" json:"port"`
	ThinkingDelayMs int     `toml:"thinking_delay_ms" json:"thinking_delay_ms"`
	RateLimit       float64 `toml:"rate_limit" json:"rate_limit"` // requests per second per client
	RateBurst       int     `toml:"rate_burst" json:"rate_burst"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `toml:"level" json:"level"` // debug, info, warn, error
	File  string `toml:"file" json:"file"`   // TUI log file; empty means ~/.astrid/astrid.log
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			Origin: "http://127.0.0.1:8000",
		},
		Display: DisplayConfig{
			MinWidth:        80,
			MinHeight:       24,
			ClockFormat:     "15:04",
			Greeting:        "Good evening. All systems are running normally.",
			GreetingDelayMs: 1200,
		},
		Reveal: RevealConfig{
			WordsPerMinute: 165,
			Cursor:         "▌",
		},
		Speech: SpeechConfig{
			Enabled:  true,
			Engine:   "auto",
			Language: "en-GB",
		},
		Connectivity: ConnectivityConfig{
			ReconnectIntervalSecs: 10,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8000,
			ThinkingDelayMs: 1500,
			RateLimit:       20,
			RateBurst:       40,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory (~/.astrid).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileNameTOML), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileNameJSON), nil
}

// LogPath returns the log file path: the configured one, or
// ~/.astrid/astrid.log.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "astrid.log"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default locations. TOML is tried
// first, then JSON. A missing file yields the defaults.
func Load() (*Config, error) {
	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg. Keys absent from the file keep
// the values already in cfg.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path, layered
// over the defaults, with env overrides and validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults restores defaults for string and numeric keys that a file
// set to their zero value.
func fillDefaults(cfg *Config) {
	d := Default()

	if cfg.Client.Origin == "" {
		cfg.Client.Origin = d.Client.Origin
	}
	if cfg.Display.MinWidth == 0 {
		cfg.Display.MinWidth = d.Display.MinWidth
	}
	if cfg.Display.MinHeight == 0 {
		cfg.Display.MinHeight = d.Display.MinHeight
	}
	if cfg.Display.ClockFormat == "" {
		cfg.Display.ClockFormat = d.Display.ClockFormat
	}
	if cfg.Reveal.WordsPerMinute == 0 {
		cfg.Reveal.WordsPerMinute = d.Reveal.WordsPerMinute
	}
	if cfg.Reveal.Cursor == "" {
		cfg.Reveal.Cursor = d.Reveal.Cursor
	}
	if cfg.Speech.Engine == "" {
		cfg.Speech.Engine = d.Speech.Engine
	}
	if cfg.Connectivity.ReconnectIntervalSecs == 0 {
		cfg.Connectivity.ReconnectIntervalSecs = d.Connectivity.ReconnectIntervalSecs
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = d.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = d.Server.Port
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = d.Server.RateLimit
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = d.Server.RateBurst
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# astrid configuration file\n")
	buf.WriteString("# Edits are picked up by a running display.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidateErrors listing
// every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(c.Client.Origin) == "" || strings.ContainsAny(c.Client.Origin, " \t\n") {
		add("client.origin", "invalid origin '%s'", c.Client.Origin)
	}

	if c.Display.MinWidth < 20 || c.Display.MinWidth > 1000 {
		add("display.min_width", "must be between 20 and 1000, got %d", c.Display.MinWidth)
	}
	if c.Display.MinHeight < 10 || c.Display.MinHeight > 500 {
		add("display.min_height", "must be between 10 and 500, got %d", c.Display.MinHeight)
	}
	if c.Display.GreetingDelayMs < 0 {
		add("display.greeting_delay_ms", "cannot be negative")
	}

	if c.Reveal.WordsPerMinute < 30 || c.Reveal.WordsPerMinute > 1000 {
		add("reveal.words_per_minute", "must be between 30 and 1000, got %d", c.Reveal.WordsPerMinute)
	}

	validEngines := map[string]bool{"auto": true, "espeak": true, "say": true, "none": true}
	if !validEngines[strings.ToLower(c.Speech.Engine)] {
		add("speech.engine", "invalid engine '%s', must be one of: auto, espeak, say, none", c.Speech.Engine)
	}

	if c.Connectivity.ReconnectIntervalSecs < 1 || c.Connectivity.ReconnectIntervalSecs > 3600 {
		add("connectivity.reconnect_interval_secs", "must be between 1 and 3600, got %d", c.Connectivity.ReconnectIntervalSecs)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("server.port", "must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ThinkingDelayMs < 0 {
		add("server.thinking_delay_ms", "cannot be negative")
	}
	if c.Server.RateLimit <= 0 {
		add("server.rate_limit", "must be positive")
	}
	if c.Server.RateBurst < 1 {
		add("server.rate_burst", "must be at least 1")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		add("logging.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - ASTRID_ORIGIN: overrides client.origin
//   - ASTRID_SPEECH: "0"/"false"/"off" disables speech, anything else enables it
//   - ASTRID_VOICE: overrides speech.voice
//   - ASTRID_LOG_LEVEL: overrides logging.level
//   - ASTRID_PORT: overrides server.port
func (c *Config) ApplyEnvOverrides() {
	if origin := os.Getenv("ASTRID_ORIGIN"); origin != "" {
		c.Client.Origin = origin
	}

	if speech := os.Getenv("ASTRID_SPEECH"); speech != "" {
		switch strings.ToLower(speech) {
		case "0", "false", "off", "no":
			c.Speech.Enabled = false
		default:
			c.Speech.Enabled = true
		}
	}

	if voice := os.Getenv("ASTRID_VOICE"); voice != "" {
		c.Speech.Voice = voice
	}

	if level := os.Getenv("ASTRID_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}

	if port := os.Getenv("ASTRID_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// GreetingDelay returns display.greeting_delay_ms as a duration.
func (c *Config) GreetingDelay() time.Duration {
	return time.Duration(c.Display.GreetingDelayMs) * time.Millisecond
}

// ReconnectInterval returns connectivity.reconnect_interval_secs as a duration.
func (c *Config) ReconnectInterval() time.Duration {
	return time.Duration(c.Connectivity.ReconnectIntervalSecs) * time.Second
}

// ThinkingDelay returns server.thinking_delay_ms as a duration.
func (c *Config) ThinkingDelay() time.Duration {
	return time.Duration(c.Server.ThinkingDelayMs) * time.Millisecond
}

// ListenAddr returns host:port for the backend.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. A load failure falls back to the defaults.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
