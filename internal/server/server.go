// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jeranaias/astrid-tui/internal/controller"
	"github.com/jeranaias/astrid-tui/internal/protocol"
)

// Version is reported by /health.
var Version = "dev"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// DefaultThinkingDelay is the pause before a typed question is answered.
const DefaultThinkingDelay = 1500 * time.Millisecond

// ============================================================================
// OPTIONS
// ============================================================================

// Options configures a Server.
type Options struct {
	Addr          string
	ThinkingDelay time.Duration
	RateLimit     float64 // requests per second per client; 0 disables limiting
	RateBurst     int
	Initial       *protocol.Snapshot // nil means protocol.DefaultSnapshot
	Controller    []controller.Option
	Logger        *zap.Logger
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the household backend.
type Server struct {
	opts       Options
	logger     *zap.Logger
	router     *http.ServeMux
	handler    http.Handler
	store      *Store
	hub        *Hub
	controller *controller.Controller
	limiter    *RateLimiter
	upgrader   websocket.Upgrader

	// pending replies are cancelled on shutdown
	ctx     context.Context
	cancel  context.CancelFunc
	pending sync.WaitGroup

	mu      sync.Mutex
	server  *http.Server
	closing bool // set by Shutdown; no replies are scheduled after it
}

// New creates a Server. Nothing listens until Start or Serve.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ThinkingDelay < 0 {
		opts.ThinkingDelay = 0
	}
	initial := protocol.DefaultSnapshot()
	if opts.Initial != nil {
		initial = *opts.Initial
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:   opts,
		logger: opts.Logger.Named("server"),
		router: http.NewServeMux(),
		store:  NewStore(initial),
		ctx:    ctx,
		cancel: cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// displays on the household network load from any origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.hub = NewHub(s.logger)

	ctrlOpts := append([]controller.Option{controller.WithLogger(s.logger.Named("controller"))}, opts.Controller...)
	s.controller = controller.New(s.store, ctrlOpts...)

	s.setupRoutes()

	middlewares := []func(http.Handler) http.Handler{
		RecoveryMiddleware(s.logger),
		LoggingMiddleware(s.logger),
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = NewRateLimiter(opts.RateLimit, burst)
		middlewares = append(middlewares, RateLimitMiddleware(s.limiter, s.logger))
	}
	s.handler = Chain(middlewares...)(s.router)
	return s
}

// Handler returns the full handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store exposes the house state.
func (s *Server) Store() *Store {
	return s.store
}

// Hub exposes the connected displays.
func (s *Server) Hub() *Hub {
	return s.hub
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /ws", s.handleWebSocket)

	s.router.HandleFunc("GET /api/state", s.handleGetState)
	s.router.HandleFunc("PUT /api/state", s.handlePutState)
	s.router.HandleFunc("POST /api/bot_reply", s.handleBotReply)

	s.router.HandleFunc("GET /api/controller/history", s.handleHistory)
	s.router.HandleFunc("GET /api/controller/status", s.handleControllerStatus)
	s.router.HandleFunc("POST /api/controller/process", s.handleProcess)

	s.router.HandleFunc("GET /health", s.handleHealth)
}

// ============================================================================
// WEBSOCKET
// ============================================================================

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := s.hub.add(conn)
	defer s.hub.remove(c)

	if err := s.hub.Send(c, protocol.State{Snapshot: s.store.Snapshot()}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info("websocket read ended", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
		s.handleClientFrame(c, data)
	}
}

func (s *Server) handleClientFrame(c *client, data []byte) {
	f, err := protocol.DecodeClient(data)
	switch {
	case errors.Is(err, protocol.ErrUnknownType):
		s.logger.Info("unknown message type", zap.String("client", c.id), zap.Error(err))
		return
	case err != nil:
		s.logger.Warn("malformed message", zap.String("client", c.id), zap.Error(err))
		return
	}

	switch f := f.(type) {
	case protocol.RequestState:
		_ = s.hub.Send(c, protocol.State{Snapshot: s.store.Snapshot()})
	case protocol.UserMessage:
		s.HandleUserMessage(f.Text)
	}
}

// HandleUserMessage runs a typed message through the exchange: the line is
// recorded and shown, the centre is cleared, and the answer follows after
// the thinking delay. Blank messages are ignored.
func (s *Server) HandleUserMessage(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.store.SetLastUserLine(text)
	s.hub.Broadcast(protocol.UserLine{Text: text})
	s.hub.Broadcast(protocol.ClearCenter{})

	resp := s.controller.Process(text)
	s.logger.Info("user message",
		zap.String("intent", string(resp.Analysis.Intent)),
		zap.Int("chars", len(text)))

	if !s.schedule() {
		s.logger.Debug("reply dropped, server shutting down")
		return
	}
	go func() {
		defer s.pending.Done()
		timer := time.NewTimer(s.opts.ThinkingDelay)
		defer timer.Stop()
		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
		}
		n := s.hub.Broadcast(protocol.BotReply{Text: resp.Text})
		s.logger.Debug("bot reply sent", zap.Int("clients", n))
	}()
}

// ============================================================================
// STATE API
// ============================================================================

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	var u StateUpdate
	if err := s.decodeBody(w, r, &u); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := s.store.Apply(u)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.hub.Broadcast(protocol.State{Snapshot: snap})
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// TextRequest is the body of bot_reply and process requests.
type TextRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleBotReply(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.hub.Broadcast(protocol.BotReply{Text: req.Text})
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ============================================================================
// CONTROLLER API
// ============================================================================

// HistoryResponse is the body of GET /api/controller/history.
type HistoryResponse struct {
	History        []controller.Exchange `json:"history"`
	TotalExchanges int                   `json:"total_exchanges"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	h := s.controller.History()
	if h == nil {
		h = []controller.Exchange{}
	}
	s.writeJSON(w, http.StatusOK, HistoryResponse{History: h, TotalExchanges: len(h)})
}

func (s *Server) handleControllerStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.controller.Status())
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.controller.Process(req.Text))
}

// ============================================================================
// HEALTH
// ============================================================================

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Displays int    `json:"displays"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  Version,
		Displays: s.hub.Len(),
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on Options.Addr and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.Info("server started", zap.String("addr", ln.Addr().String()), zap.String("version", Version))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, closes every display connection and
// cancels replies that have not been sent yet.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")

	s.mu.Lock()
	s.closing = true
	srv := s.server
	s.mu.Unlock()
	s.cancel()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.hub.CloseAll()
	s.pending.Wait()
	if s.limiter != nil {
		s.limiter.Close()
	}
	return err
}

// ============================================================================
// HELPERS
// ============================================================================

// schedule reserves a pending reply. It fails once Shutdown has begun, so
// pending.Add never races pending.Wait.
func (s *Server) schedule() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.pending.Add(1)
	return true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	// fields the backend does not use, such as bot_reply_pending from a
	// full state document, are ignored
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    status,
		},
	})
}
