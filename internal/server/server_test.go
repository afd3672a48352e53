// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/astrid-tui/internal/controller"
	"github.com/jeranaias/astrid-tui/internal/protocol"
)

// =============================================================================
// HELPERS
// =============================================================================

func newTestServer(t *testing.T, mutate func(*Options)) (*Server, *httptest.Server) {
	t.Helper()
	opts := Options{
		ThinkingDelay: 10 * time.Millisecond,
		Controller:    []controller.Option{controller.WithRand(rand.New(rand.NewSource(7)))},
		Logger:        zaptest.NewLogger(t),
	}
	if mutate != nil {
		mutate(&opts)
	}
	s := New(opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) protocol.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	f, err := protocol.Decode(data)
	require.NoError(t, err)
	return f
}

func sendFrame(t *testing.T, conn *websocket.Conn, f protocol.Frame) {
	t.Helper()
	data, err := protocol.Encode(f)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// =============================================================================
// WEBSOCKET
// =============================================================================

func TestConnectSendsState(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)

	f := readFrame(t, conn)
	require.IsType(t, protocol.State{}, f)
	assert.Equal(t, protocol.DefaultSnapshot(), f.(protocol.State).Snapshot)
}

func TestUserMessageExchangeReachesEveryDisplay(t *testing.T) {
	s, ts := newTestServer(t, nil)
	a := dial(t, ts)
	b := dial(t, ts)
	readFrame(t, a)
	readFrame(t, b)

	sendFrame(t, a, protocol.UserMessage{Text: "  battery status please  "})

	for _, conn := range []*websocket.Conn{a, b} {
		assert.Equal(t, protocol.UserLine{Text: "battery status please"}, readFrame(t, conn))
		assert.Equal(t, protocol.ClearCenter{}, readFrame(t, conn))
		reply := readFrame(t, conn)
		require.IsType(t, protocol.BotReply{}, reply)
		assert.NotEmpty(t, reply.(protocol.BotReply).Text)
	}

	assert.Equal(t, "battery status please", s.Store().Snapshot().LastUserLine)
	assert.Len(t, s.controller.History(), 1)
}

func TestBlankAndMalformedMessagesIgnored(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	readFrame(t, conn)

	sendFrame(t, conn, protocol.UserMessage{Text: "   "})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`)))
	sendFrame(t, conn, protocol.RequestState{})

	// the next frame is the state reply, nothing from the ignored messages
	assert.IsType(t, protocol.State{}, readFrame(t, conn))
}

func TestMessagesDuringShutdownAreSafe(t *testing.T) {
	s, _ := newTestServer(t, func(o *Options) { o.ThinkingDelay = time.Hour })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.HandleUserMessage("status please")
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	wg.Wait()

	assert.False(t, s.schedule(), "no replies are scheduled after shutdown")
	s.HandleUserMessage("too late")
}

// =============================================================================
// STATE API
// =============================================================================

func TestPutStateMergesAndBroadcasts(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	readFrame(t, conn)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/state", map[string]any{
		"battery_pct": 42.5,
		"eve":         "NTE",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	pushed := readFrame(t, conn)
	require.IsType(t, protocol.State{}, pushed)
	snap := pushed.(protocol.State).Snapshot
	assert.Equal(t, 42.5, snap.BatteryPct)
	assert.Equal(t, "NTE", snap.Eve)
	assert.Equal(t, "BRAM HOUSE", snap.Headline, "unset fields are kept")

	get := doJSON(t, http.MethodGet, ts.URL+"/api/state", nil)
	var got protocol.Snapshot
	require.NoError(t, json.NewDecoder(get.Body).Decode(&got))
	assert.Equal(t, snap, got)
}

func TestPutStateRejectsBadEve(t *testing.T) {
	s, ts := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/state", map[string]any{"eve": "LONG"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/state", map[string]any{"eve": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/state", []string{"not", "an", "object"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, "EVE", s.Store().Snapshot().Eve)
}

func TestExtraFieldsIgnored(t *testing.T) {
	s, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	readFrame(t, conn)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/state", map[string]any{
		"battery_pct":       50,
		"bot_reply_pending": nil,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 50.0, s.Store().Snapshot().BatteryPct)
	assert.IsType(t, protocol.State{}, readFrame(t, conn))

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/bot_reply", map[string]any{"text": "hi", "source": "ha"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, protocol.BotReply{Text: "hi"}, readFrame(t, conn))
}

func TestBotReplyBroadcast(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	readFrame(t, conn)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/bot_reply", TextRequest{Text: "Dinner is ready."})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, protocol.BotReply{Text: "Dinner is ready."}, readFrame(t, conn))
}

// =============================================================================
// CONTROLLER API
// =============================================================================

func TestControllerEndpoints(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/controller/process", TextRequest{Text: "check the tank"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var processed controller.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&processed))
	assert.Equal(t, controller.IntentWater, processed.Analysis.Intent)
	assert.Contains(t, processed.Text, "water")

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/controller/history", nil)
	var history HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	assert.Equal(t, 1, history.TotalExchanges)
	assert.Equal(t, "check the tank", history.History[0].User)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/controller/status", nil)
	var status controller.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "normal", status.SystemStatus.Mode)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	readFrame(t, conn)

	resp := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	var h HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 1, h.Displays)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestRateLimit(t *testing.T) {
	_, ts := newTestServer(t, func(o *Options) {
		o.RateLimit = 0.001
		o.RateBurst = 2
	})

	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/health", nil).StatusCode)
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/health", nil).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(t, http.MethodGet, ts.URL+"/health", nil).StatusCode)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(zaptest.NewLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:5555"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "203.0.113.9", GetClientIP(r), "untrusted peers cannot forward")

	r.RemoteAddr = "127.0.0.1:5555"
	assert.Equal(t, "198.51.100.1", GetClientIP(r))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(mw("a"), mw("b"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}
