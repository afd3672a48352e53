// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestFileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "astrid.log")
	logger, err := New(Options{Level: "debug", Sink: SinkFile, Path: path})
	require.NoError(t, err)

	logger.Debug("channel opened", zap.String("endpoint", "ws://127.0.0.1:8000/ws"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"channel opened"`)
	assert.Contains(t, string(data), `"endpoint":"ws://127.0.0.1:8000/ws"`)
}

func TestFileSinkHonoursLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astrid.log")
	logger, err := New(Options{Level: "error", Sink: SinkFile, Path: path})
	require.NoError(t, err)

	logger.Info("dropped")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
}

func TestFileSinkRequiresPath(t *testing.T) {
	_, err := New(Options{Sink: SinkFile})
	assert.Error(t, err)
}
