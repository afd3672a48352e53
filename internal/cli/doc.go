// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the line-mode commands for
// astrid.
//
// With no command astrid opens the full-screen display. The other commands
// run the household backend or talk to one:
//
//	astrid                      full-screen display
//	astrid serve                run the backend
//	astrid chat                 type to the backend from a plain terminal
//	astrid state [--json]       print the house state
//	astrid push --battery 80    change the house state
//	astrid say TEXT             show a reply on every display
//	astrid history              recent questions and answers
//	astrid config show|path|init
//	astrid version
//	astrid help
package cli
