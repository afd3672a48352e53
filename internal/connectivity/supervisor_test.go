// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package connectivity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/astrid-tui/internal/protocol"
)

type recordingSender struct {
	sent []protocol.Frame
}

func (r *recordingSender) Send(f protocol.Frame) error {
	r.sent = append(r.sent, f)
	return nil
}

var base = time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC)

func newTestSupervisor(t *testing.T) (*Supervisor, *recordingSender) {
	tx := &recordingSender{}
	s := NewSupervisor(tx,
		WithClock(func() time.Time { return base }),
		WithLogger(zaptest.NewLogger(t)),
		WithReconnectInterval(10*time.Second))
	return s, tx
}

func TestInitialOpenDoesNotDuplicateRefresh(t *testing.T) {
	s, tx := newTestSupervisor(t)
	assert.Equal(t, Connecting, s.State())

	s.Opened()
	assert.Equal(t, Open, s.State())
	assert.False(t, s.Offline())
	assert.Empty(t, tx.sent, "the channel's hello frame covers the first refresh")
}

func TestCloseShowsOverlayAndCounts(t *testing.T) {
	s, _ := newTestSupervisor(t)
	s.Opened()

	cmd := s.Lost("closed 1006")
	require.NotNil(t, cmd)
	assert.True(t, s.Offline())
	assert.Equal(t, base, s.OfflineSince())
	assert.Equal(t, 0, s.OfflineSeconds())

	epoch := s.Epoch()
	prev := s.OfflineSeconds()
	for i := 1; i <= 5; i++ {
		next := s.CounterTick(CounterTickMsg{Epoch: epoch, Time: base.Add(time.Duration(i) * time.Second)})
		require.NotNil(t, next, "counter must keep ticking while offline")
		assert.Equal(t, prev+1, s.OfflineSeconds())
		prev = s.OfflineSeconds()
	}
}

func TestReopenDismissesOverlayAndRequestsState(t *testing.T) {
	s, tx := newTestSupervisor(t)
	s.Lost("connection refused")
	epoch := s.Epoch()

	s.Opened()
	assert.False(t, s.Offline())
	assert.True(t, s.OfflineSince().IsZero())
	assert.Equal(t, []protocol.Frame{protocol.RequestState{}}, tx.sent)

	// ticks from the finished offline period are ignored
	assert.Nil(t, s.CounterTick(CounterTickMsg{Epoch: epoch, Time: base.Add(3 * time.Second)}))
	assert.Nil(t, s.ReconnectTick(ReconnectTickMsg{Epoch: epoch}))
	assert.Equal(t, 0, s.OfflineSeconds())
}

func TestRepeatedLossKeepsFirstTimestamp(t *testing.T) {
	s, _ := newTestSupervisor(t)
	s.Lost("error")
	epoch := s.Epoch()

	assert.Nil(t, s.Lost("closed"), "error followed by closed is one offline period")
	assert.Equal(t, epoch, s.Epoch())
	assert.Equal(t, base, s.OfflineSince())
}

func TestReconnectTickRequestsReload(t *testing.T) {
	s, _ := newTestSupervisor(t)
	s.Lost("closed")

	cmd := s.ReconnectTick(ReconnectTickMsg{Epoch: s.Epoch()})
	require.NotNil(t, cmd)
	assert.Nil(t, s.ReconnectTick(ReconnectTickMsg{Epoch: "someone-else"}))
}

func TestInboundWhileClosedForcesReload(t *testing.T) {
	s, _ := newTestSupervisor(t)
	assert.Nil(t, s.Inbound())

	s.Lost("closed")
	cmd := s.Inbound()
	require.NotNil(t, cmd)
	msg, ok := cmd().(ReloadMsg)
	require.True(t, ok)
	assert.NotEmpty(t, msg.Reason)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "closed", Closed.String())
}
