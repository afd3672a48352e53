// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// =============================================================================
// EXTERNAL PROGRAM ENGINES
// =============================================================================

// Engine kinds accepted by Detect.
const (
	KindAuto    = "auto"
	KindEspeak  = "espeak"
	KindSay     = "say"
	KindNone    = "none"
	DefaultRate = 165
)

// ExecEngine speaks through an external synthesizer program.
type ExecEngine struct {
	kind string // KindEspeak or KindSay
	path string
	rate int // words per minute
}

// Name implements Engine.
func (e *ExecEngine) Name() string {
	return e.kind + " (" + e.path + ")"
}

// Voices implements Engine.
func (e *ExecEngine) Voices(ctx context.Context) ([]Voice, error) {
	var args []string
	if e.kind == KindSay {
		args = []string{"-v", "?"}
	} else {
		args = []string{"--voices"}
	}

	cmd := exec.CommandContext(ctx, e.path, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	if e.kind == KindSay {
		return parseSayVoices(out), nil
	}
	return parseEspeakVoices(out), nil
}

// Say implements Engine.
func (e *ExecEngine) Say(ctx context.Context, text string, v Voice) error {
	cmd := exec.CommandContext(ctx, e.path, e.sayArgs(text, v)...)
	prepareCommand(cmd)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", e.kind, err)
	}
	return nil
}

func (e *ExecEngine) sayArgs(text string, v Voice) []string {
	rate := e.rate
	if rate <= 0 {
		rate = DefaultRate
	}

	var args []string
	if e.kind == KindSay {
		args = append(args, "-r", strconv.Itoa(rate))
		if v.Name != "" {
			args = append(args, "-v", v.Name)
		}
		return append(args, "--", text)
	}

	args = append(args, "-s", strconv.Itoa(rate))
	switch {
	case v.Language != "":
		args = append(args, "-v", v.Language)
	case v.Name != "":
		args = append(args, "-v", v.Name)
	}
	return append(args, "--", text)
}

// Detect finds an engine of the given kind. KindAuto tries espeak-ng,
// espeak and say in that order. KindNone returns the NullEngine.
func Detect(kind string, rate int) (Engine, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = KindAuto
	}

	switch kind {
	case KindNone:
		return NullEngine{}, nil
	case KindEspeak:
		return findEngine(rate, KindEspeak, "espeak-ng", "espeak")
	case KindSay:
		return findEngine(rate, KindSay, "say")
	case KindAuto:
		if e, err := findEngine(rate, KindEspeak, "espeak-ng", "espeak"); err == nil {
			return e, nil
		}
		return findEngine(rate, KindSay, "say")
	default:
		return nil, fmt.Errorf("unknown speech engine %q", kind)
	}
}

func findEngine(rate int, kind string, programs ...string) (Engine, error) {
	for _, p := range programs {
		if path, err := findExecutable(p); err == nil {
			return &ExecEngine{kind: kind, path: path, rate: rate}, nil
		}
	}
	return nil, fmt.Errorf("%w: tried %s", ErrNoEngine, strings.Join(programs, ", "))
}

// =============================================================================
// VOICE LIST PARSING
// =============================================================================

// parseEspeakVoices reads `espeak-ng --voices` output:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  en-gb           --/M      English_(Great_Britain) gmw/en
func parseEspeakVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		voices = append(voices, Voice{
			Name:     fields[3],
			Language: fields[1],
		})
	}
	return voices
}

// parseSayVoices reads `say -v ?` output:
//
//	Daniel              en_GB    # Hello, my name is Daniel.
//	Bad News            en_US    # The light you see...
func parseSayVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "#")
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		lang := fields[len(fields)-1]
		voices = append(voices, Voice{
			Name:     strings.Join(fields[:len(fields)-1], " "),
			Language: normalizeLanguage(lang),
		})
	}
	return voices
}
