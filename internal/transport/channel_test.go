// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/astrid-tui/internal/protocol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// TEST BACKEND
// =============================================================================

// backend is a websocket server that records what the display sends and lets
// the test push raw frames.
type backend struct {
	srv      *httptest.Server
	received chan []byte
	conns    chan *websocket.Conn
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		received: make(chan []byte, 16),
		conns:    make(chan *websocket.Conn, 1),
	}
	upgrader := websocket.Upgrader{}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.conns <- conn
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			b.received <- data
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) endpoint() string {
	return "ws" + strings.TrimPrefix(b.srv.URL, "http") + StreamPath
}

func (b *backend) conn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-b.conns:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("backend never accepted a connection")
		return nil
	}
}

func nextEvent(t *testing.T, ch *Channel) Event {
	t.Helper()
	select {
	case ev, ok := <-ch.Events():
		require.True(t, ok, "event stream closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func drain(ch *Channel) {
	for range ch.Events() {
	}
}

// =============================================================================
// TESTS
// =============================================================================

func TestEndpointFromOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{"http://127.0.0.1:8000", "ws://127.0.0.1:8000/ws"},
		{"https://hud.example.com", "wss://hud.example.com/ws"},
		{"https://hud.example.com/dashboard/?x=1#top", "wss://hud.example.com/ws"},
		{"localhost:8000", "ws://localhost:8000/ws"},
		{"wss://already.example.com/other", "wss://already.example.com/ws"},
	}
	for _, tt := range tests {
		got, err := EndpointFromOrigin(tt.origin)
		require.NoError(t, err, tt.origin)
		assert.Equal(t, tt.want, got, tt.origin)
	}

	for _, bad := range []string{"", "ftp://host", "http://"} {
		_, err := EndpointFromOrigin(bad)
		assert.Error(t, err, bad)
	}
}

func TestChannel_OpenSendsHello(t *testing.T) {
	b := newBackend(t)
	ch := New(b.endpoint(), WithLogger(zaptest.NewLogger(t)))
	ch.Connect(context.Background())
	defer func() {
		ch.Close()
		drain(ch)
	}()

	assert.Equal(t, Opened{}, nextEvent(t, ch))
	assert.Equal(t, StateOpen, ch.State())

	select {
	case data := <-b.received:
		assert.JSONEq(t, `{"type":"request_state"}`, string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("hello frame never arrived")
	}
}

func TestChannel_InboundFramesAndMalformedDropped(t *testing.T) {
	b := newBackend(t)
	ch := New(b.endpoint(), WithLogger(zaptest.NewLogger(t)))
	ch.Connect(context.Background())
	defer func() {
		ch.Close()
		drain(ch)
	}()

	require.Equal(t, Opened{}, nextEvent(t, ch))
	server := b.conn(t)

	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(`{"type":"mystery"}`)))
	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(`{"type":"bot_reply","text":"Hello there"}`)))

	ev := nextEvent(t, ch)
	assert.Equal(t, Inbound{Frame: protocol.BotReply{Text: "Hello there"}}, ev)
}

func TestChannel_SendUserMessage(t *testing.T) {
	b := newBackend(t)
	ch := New(b.endpoint(), WithHello(nil))
	ch.Connect(context.Background())
	defer func() {
		ch.Close()
		drain(ch)
	}()

	require.Equal(t, Opened{}, nextEvent(t, ch))
	require.NoError(t, ch.Send(protocol.UserMessage{Text: "battery?"}))

	select {
	case data := <-b.received:
		assert.JSONEq(t, `{"type":"user_message","text":"battery?"}`, string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("user message never arrived")
	}
}

func TestChannel_SendBeforeOpenIsDropped(t *testing.T) {
	ch := New("ws://127.0.0.1:1/ws")
	assert.ErrorIs(t, ch.Send(protocol.RequestState{}), ErrNotOpen)
	assert.Equal(t, StateIdle, ch.State())
}

func TestChannel_ServerCloseReportsCodeAndReason(t *testing.T) {
	b := newBackend(t)
	ch := New(b.endpoint(), WithHello(nil))
	ch.Connect(context.Background())
	defer ch.Close()

	require.Equal(t, Opened{}, nextEvent(t, ch))
	server := b.conn(t)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	require.NoError(t, server.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)))

	assert.Equal(t, Closed{Code: websocket.CloseNormalClosure, Reason: "bye"}, nextEvent(t, ch))
	drain(ch)
	assert.Equal(t, StateClosed, ch.State())
	assert.ErrorIs(t, ch.Send(protocol.RequestState{}), ErrNotOpen)
}

func TestChannel_AbruptDropReportsErrorThenClose(t *testing.T) {
	b := newBackend(t)
	ch := New(b.endpoint(), WithHello(nil))
	ch.Connect(context.Background())
	defer ch.Close()

	require.Equal(t, Opened{}, nextEvent(t, ch))
	b.conn(t).Close()

	_, isErr := nextEvent(t, ch).(Errored)
	assert.True(t, isErr)
	closed, ok := nextEvent(t, ch).(Closed)
	require.True(t, ok)
	assert.Equal(t, websocket.CloseAbnormalClosure, closed.Code)
	drain(ch)
}

func TestChannel_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http") + StreamPath
	srv.Close()

	ch := New(endpoint)
	ch.Connect(context.Background())
	defer ch.Close()

	_, isErr := nextEvent(t, ch).(Errored)
	assert.True(t, isErr)
	_, isClosed := nextEvent(t, ch).(Closed)
	assert.True(t, isClosed)
	drain(ch)
}

func TestChannel_CloseIsIdempotent(t *testing.T) {
	b := newBackend(t)
	ch := New(b.endpoint())
	ch.Connect(context.Background())
	require.Equal(t, Opened{}, nextEvent(t, ch))

	assert.NoError(t, ch.Close())
	assert.NoError(t, ch.Close())
	drain(ch)
	assert.Equal(t, StateClosed, ch.State())
}
