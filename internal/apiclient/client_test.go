// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/astrid-tui/internal/server"
)

func TestBaseURLFromOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{"http://127.0.0.1:8000", "http://127.0.0.1:8000"},
		{"https://hud.example.net/some/page?x=1", "https://hud.example.net"},
		{"ws://kitchen.local:8000/ws", "http://kitchen.local:8000"},
		{"wss://hud.example.net/ws", "https://hud.example.net"},
		{"kitchen.local:8000", "http://kitchen.local:8000"},
	}
	for _, tt := range tests {
		got, err := BaseURLFromOrigin(tt.origin)
		require.NoError(t, err, tt.origin)
		assert.Equal(t, tt.want, got, tt.origin)
	}

	_, err := BaseURLFromOrigin("")
	assert.Error(t, err)
	_, err = BaseURLFromOrigin("ftp://host")
	assert.Error(t, err)
}

func newBackend(t *testing.T) (*server.Server, *Client) {
	t.Helper()
	s := server.New(server.Options{Logger: zaptest.NewLogger(t)})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	c, err := New(ts.URL, 2*time.Second)
	require.NoError(t, err)
	return s, c
}

func TestStateAndPush(t *testing.T) {
	s, c := newBackend(t)
	ctx := context.Background()

	snap, err := c.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BRAM HOUSE", snap.Headline)

	battery := 12.0
	require.NoError(t, c.PushState(ctx, server.StateUpdate{BatteryPct: &battery}))
	assert.Equal(t, 12.0, s.Store().Snapshot().BatteryPct)
}

func TestPushRejected(t *testing.T) {
	_, c := newBackend(t)
	eve := "TOOLONG"
	err := c.PushState(context.Background(), server.StateUpdate{Eve: &eve})
	require.Error(t, err)

	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrTypeRejected, ce.Type)
	assert.Equal(t, http.StatusUnprocessableEntity, ce.Status)
	assert.Contains(t, ce.Error(), "eve must be 1 to 3 characters")
}

func TestSayAndHistory(t *testing.T) {
	_, c := newBackend(t)
	ctx := context.Background()

	require.NoError(t, c.Say(ctx, "Hello from the kitchen"))

	h, err := c.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, h)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
}

func TestUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := New(url, time.Second)
	require.NoError(t, err)
	_, err = c.State(context.Background())
	assert.True(t, IsUnreachable(err))
}
