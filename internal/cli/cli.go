// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/jeranaias/astrid-tui/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdServe
	CmdChat
	CmdState
	CmdPush
	CmdSay
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Origin     string // overrides client.origin
	ConfigPath string // explicit config file
	JSON       bool
	Verbose    bool
	Quiet      bool

	// Command-specific
	Name       string // the command word as typed
	Subcommand string
	Text       string

	// Raw args (remaining after the command word)
	Raw []string
}

const usageText = `astrid - household display and backend
Version: %s

USAGE:
  astrid [global flags] [command] [args]

COMMANDS:
  (none)            Open the full-screen display
  serve             Run the household backend
  chat              Type to the backend from a plain terminal
  state [--json]    Print the current house state
  push [fields]     Change the house state
                      --headline TEXT  --eve ABC  --battery PCT
                      --load W  --load-min W  --load-max W
                      --sun W   --sun-min W   --sun-max W
                      --line TEXT
  say TEXT          Show a reply on every connected display
  history           Show recent questions and answers
  config show       Print the effective configuration
  config path       Print the configuration file path
  config init       Write a default configuration file
  version           Print version information
  help              Show this help

GLOBAL FLAGS:
  --origin URL      Backend origin (default from config, http://127.0.0.1:8000)
  --config PATH     Use this configuration file
  --json            Machine-readable output where supported
  -v, --verbose     Debug logging
  -q, --quiet       Less output

KEYS (display):
  type to compose   Enter sends, Backspace edits
  Esc               stop the current reply
  Ctrl+T            toggle speech
  Ctrl+C            quit

ENVIRONMENT:
  ASTRID_ORIGIN, ASTRID_SPEECH, ASTRID_VOICE, ASTRID_LOG_LEVEL, ASTRID_PORT
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "astrid version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments and returns the command and args.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	parsed.Name = cmd
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui", "display":
		return CmdTUI, parsed
	case "serve", "server":
		return CmdServe, parsed
	case "chat":
		return CmdChat, parsed
	case "state", "s":
		return CmdState, parsed
	case "push":
		return CmdPush, parsed
	case "say":
		parsed.Text = strings.Join(remaining, " ")
		return CmdSay, parsed
	case "history":
		return CmdHistory, parsed
	case "config":
		if len(remaining) > 0 {
			parsed.Subcommand = strings.ToLower(remaining[0])
		} else {
			parsed.Subcommand = "show"
		}
		return CmdConfig, parsed
	case "version", "--version", "-V":
		return CmdVersion, parsed
	case "help", "--help", "-h":
		return CmdHelp, parsed
	}
	return CmdUnknown, parsed
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
// Global flags may appear anywhere on the line.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--json":
			parsed.JSON = true
		case arg == "-v" || arg == "--verbose":
			parsed.Verbose = true
		case arg == "-q" || arg == "--quiet":
			parsed.Quiet = true
		case arg == "--origin" && i+1 < len(args):
			i++
			parsed.Origin = args[i]
		case strings.HasPrefix(arg, "--origin="):
			parsed.Origin = strings.TrimPrefix(arg, "--origin=")
		case arg == "--config" && i+1 < len(args):
			i++
			parsed.ConfigPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsed
}

// LoadConfig loads the configuration the command line selects and applies
// the flag overrides. The result also becomes the global configuration.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	if args.Origin != "" {
		cfg.Client.Origin = args.Origin
	}
	if args.Verbose {
		cfg.Logging.Level = "debug"
	}
	config.SetGlobal(cfg)
	return cfg, nil
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// Run executes a line-mode command and returns the process exit code.
// CmdTUI is handled by the caller.
func Run(cmd Command, args Args) int {
	var err error
	switch cmd {
	case CmdServe:
		err = HandleServe(args)
	case CmdChat:
		err = HandleChat(args)
	case CmdState:
		err = HandleState(args, os.Stdout)
	case CmdPush:
		err = HandlePush(args, os.Stdout)
	case CmdSay:
		err = HandleSay(args, os.Stdout)
	case CmdHistory:
		err = HandleHistory(args, os.Stdout)
	case CmdConfig:
		err = HandleConfig(args, os.Stdout)
	case CmdVersion:
		PrintVersion(os.Stdout)
	case CmdHelp:
		PrintUsage(os.Stdout)
	default:
		err = &UsageError{Message: fmt.Sprintf("unknown command %q", args.Name), Hint: "astrid help"}
	}

	if err != nil {
		if args.JSON {
			DisplayErrorJSON(os.Stdout, err)
		} else {
			DisplayError(os.Stderr, err)
		}
		return GetExitCode(err)
	}
	return ExitSuccess
}
