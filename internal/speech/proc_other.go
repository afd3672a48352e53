// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !unix

package speech

import (
	"os/exec"
	"time"
)

func findExecutable(name string) (string, error) {
	return exec.LookPath(name)
}

func prepareCommand(cmd *exec.Cmd) {
	cmd.WaitDelay = time.Second
}
