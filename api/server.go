package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/shanghai-tycoon/game/config"
	"github.com/wricardo/shanghai-tycoon/game/engine"
	"github.com/wricardo/shanghai-tycoon/game/service"
	"github.com/wricardo/shanghai-tycoon/game/session"
	"github.com/wricardo/shanghai-tycoon/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service   service.GameService
	hub       *websocket.Hub
	router    *mux.Router
	seats     *SeatIssuer
	logger    *slog.Logger
	staticDir string
}

// Option configures a Server
type Option func(*Server)

// WithSeatIssuer turns on seat tokens: sessions with an external player
// return a token, and turn actions must present it.
func WithSeatIssuer(issuer *SeatIssuer) Option {
	return func(s *Server) { s.seats = issuer }
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithStaticDir serves files from dir for paths outside /api
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/logs", s.handleGetLogs).Methods("GET")
	api.HandleFunc("/sessions/{id}/roll", s.requireSeat(s.handleRoll)).Methods("POST")
	api.HandleFunc("/sessions/{id}/branch", s.requireSeat(s.handleChooseBranch)).Methods("POST")
	api.HandleFunc("/sessions/{id}/decide", s.requireSeat(s.handleDecide)).Methods("POST")
	api.HandleFunc("/sessions/{id}/acknowledge", s.requireSeat(s.handleAcknowledge)).Methods("POST")
	api.HandleFunc("/sessions/{id}/autoplay", s.handleAutoPlay).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/configs/{name}/characters", s.handleListCharacters).Methods("GET")
	api.HandleFunc("/characters", s.handleListCharacters).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)

	if s.staticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service and engine errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvariantViolation):
		return http.StatusInternalServerError
	case errors.Is(err, engine.ErrActionNotAllowed),
		errors.Is(err, engine.ErrNoPendingDecision),
		errors.Is(err, engine.ErrUnaffordable),
		errors.Is(err, session.ErrSessionAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidChoice),
		errors.Is(err, engine.ErrInvalidRoster),
		errors.Is(err, service.ErrUnknownCharacter),
		errors.Is(err, config.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingSeatToken), errors.Is(err, ErrInvalidSeatToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondError(w, status, err.Error())
}

// decodeBody decodes an optional JSON body; an empty body leaves v untouched
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Session Handlers

// createSessionResponse adds the seat token to the created session
type createSessionResponse struct {
	*service.SessionInfo
	SeatToken string `json:"seat_token,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.CreateSessionRequest
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ConfigID == "" && req.ConfigName != "" {
		req.ConfigID = req.ConfigName
	}

	info, err := s.service.CreateSession(r.Context(), req.CreateSessionRequest)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	resp := createSessionResponse{SessionInfo: info}
	if s.seats != nil && info.HumanPlayerID != nil {
		token, err := s.seats.Issue(info.ID, *info.HumanPlayerID)
		if err != nil {
			s.respondServiceError(w, r, fmt.Errorf("failed to issue seat token: %w", err))
			return
		}
		resp.SeatToken = token
	}

	s.logger.Info("session created", "session", info.ID, "config", info.ConfigName, "seat", resp.SeatToken != "")
	respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventSessionGone, map[string]string{"session_id": sessionID})
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// respondAction broadcasts the new snapshot and writes the result
func (s *Server) respondAction(w http.ResponseWriter, sessionID, op string, result *service.ActionResult, payload any) {
	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, result.GameState, result.Events)
	}
	attrs := []any{"session", sessionID, "op", op, "events", len(result.Events), "concluded", result.Concluded}
	if result.Roll != nil {
		attrs = append(attrs, "player", result.Roll.PlayerID, "roll", result.Roll.Value)
	}
	if result.Pending != nil {
		attrs = append(attrs, "pending", result.Pending.Kind)
	}
	s.logger.Info("action", attrs...)
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Roll(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondAction(w, sessionID, "roll", result, result)
}

func (s *Server) handleChooseBranch(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		SpaceID *int `json:"space_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SpaceID == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: space_id is required")
		return
	}

	result, err := s.service.ChooseBranch(r.Context(), sessionID, *req.SpaceID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondAction(w, sessionID, "choose_branch", result, result)
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Accept *bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Accept == nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: accept is required")
		return
	}

	result, err := s.service.Decide(r.Context(), sessionID, *req.Accept)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondAction(w, sessionID, "decide", result, result)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Acknowledge(r.Context(), sessionID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondAction(w, sessionID, "acknowledge", result, result)
}

func (s *Server) handleAutoPlay(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		MaxActions int `json:"max_actions"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.AutoPlay(r.Context(), sessionID, req.MaxActions)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondAction(w, sessionID, "autoplay", &result.ActionResult, result)
}

func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.LogOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}
	opts.Category = query.Get("category")

	logs, err := s.service.GetLogs(r.Context(), sessionID, opts)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	cfg, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id"`
		engine.GameConfig
	}
	// Omitted rules, or omitted fields inside rules, keep their defaults
	req.Rules = engine.DefaultRules()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}
	configID := req.ConfigID
	if configID == "" {
		configID = req.Name
	}

	cfg := req.GameConfig
	if err := s.service.SaveConfig(r.Context(), configID, &cfg); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.respondServiceError(w, r, fmt.Errorf("failed to save config: %w", err))
			return
		}
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := s.service.ListCharacters(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, characters)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session parameter required")
		return
	}
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "live updates are disabled")
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
