// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits command arguments into flags and positional values.
// It accepts these forms:
//
//	--flag value     long flag with a separate value
//	--flag=value     long flag with an equals sign
//	-f value         short flag with a separate value
//	--flag           boolean flag
//
// A value that looks like a number is taken as a value even when it starts
// with a dash, so "--load -5" is rejected by validation rather than read as
// a boolean flag.
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw.
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			p.positional = append(p.positional, arg)
			continue
		}

		if name, value, ok := strings.Cut(arg, "="); ok {
			name = strings.TrimLeft(name, "-")
			if value == "true" || value == "false" {
				p.boolFlags[name] = value == "true"
			} else {
				p.flags[name] = value
			}
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if i+1 < len(raw) && isValue(raw[i+1]) {
			p.flags[name] = raw[i+1]
			i++
			continue
		}
		p.boolFlags[name] = true
	}

	if len(p.positional) > 0 {
		p.subcommand = p.positional[0]
	}
	return p
}

func isValue(s string) bool {
	if !strings.HasPrefix(s, "-") {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// Subcommand returns the first positional argument.
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Positional returns all positional arguments.
func (p *ArgParser) Positional() []string {
	return p.positional
}

// Flag returns a string flag, or "" when absent.
func (p *ArgParser) Flag(name string) string {
	return p.flags[name]
}

// HasFlag reports whether a string flag was given.
func (p *ArgParser) HasFlag(name string) bool {
	_, ok := p.flags[name]
	return ok
}

// BoolFlag returns a boolean flag.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[name]
}

// FloatFlag returns a numeric flag. A nil result means the flag was absent.
func (p *ArgParser) FloatFlag(name string) (*float64, error) {
	raw, ok := p.flags[name]
	if !ok {
		if p.boolFlags[name] {
			return nil, NewValidationErrorWithExample(name, "", "a number is required", "--"+name+" 42")
		}
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, NewValidationErrorWithExample(name, raw, "not a number", "--"+name+" 42")
	}
	return &v, nil
}

// StringFlag returns a string flag. A nil result means the flag was absent.
func (p *ArgParser) StringFlag(name string) *string {
	v, ok := p.flags[name]
	if !ok {
		return nil
	}
	return &v
}
