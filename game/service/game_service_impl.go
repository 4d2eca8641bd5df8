package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/wricardo/shanghai-tycoon/game/engine"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrConfigNotFound   = errors.New("configuration not found")
	ErrUnknownCharacter = errors.New("unknown character")
)

const (
	defaultPlayers       = 4
	defaultAutoPlaySteps = 50
	maxAutoPlaySteps     = 1000
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, logger *slog.Logger) GameService {
	if logger == nil {
		logger = slog.Default()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) resolveConfig(configID string) (*engine.GameConfig, string, error) {
	if configID == "" {
		config := s.configs.GetDefault()
		return config, s.getConfigID(config.Name), nil
	}
	config, err := s.configs.LoadConfig(configID)
	if err == nil {
		return config, configID, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, "", fmt.Errorf("failed to load config %s: %w", configID, err)
	}
	// Provide helpful error message with available options
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr == nil && len(availableConfigs) > 0 {
		var configIDs []string
		for _, cfg := range availableConfigs {
			configIDs = append(configIDs, cfg.ConfigID)
		}
		return nil, "", fmt.Errorf("%w: '%s' (available configs: %v)", ErrConfigNotFound, configID, configIDs)
	}
	return nil, "", fmt.Errorf("%w: '%s'", ErrConfigNotFound, configID)
}

// buildRoster seats the caller first and fills the rest of the table with
// autonomous opponents drawn at random from the character pool.
func buildRoster(pool []engine.Profile, req CreateSessionRequest) ([]engine.Seat, *int, error) {
	n := req.Players
	if n == 0 {
		n = defaultPlayers
	}
	if n < engine.MinPlayers || n > engine.MaxPlayers {
		return nil, nil, fmt.Errorf("%w: need between %d and %d players, got %d",
			engine.ErrInvalidRoster, engine.MinPlayers, engine.MaxPlayers, n)
	}
	if len(pool) < n {
		return nil, nil, fmt.Errorf("%w: character pool has %d profiles, %d needed", engine.ErrInvalidRoster, len(pool), n)
	}

	var seats []engine.Seat
	var humanID *int
	rest := pool
	if !req.AutonomousOnly {
		idx := 0
		if req.CharacterID != "" {
			idx = -1
			for i, p := range pool {
				if strings.EqualFold(p.CharacterID, req.CharacterID) {
					idx = i
					break
				}
			}
			if idx < 0 {
				return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCharacter, req.CharacterID)
			}
		}
		seats = append(seats, engine.Seat{Profile: pool[idx]})
		id := 0
		humanID = &id
		rest = make([]engine.Profile, 0, len(pool)-1)
		rest = append(rest, pool[:idx]...)
		rest = append(rest, pool[idx+1:]...)
	}

	order := engine.NewRandomSource(req.Seed).Perm(len(rest))
	for _, i := range order {
		if len(seats) == n {
			break
		}
		seats = append(seats, engine.Seat{Profile: rest[i], Autonomous: true})
	}
	return seats, humanID, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	config, configID, err := s.resolveConfig(req.ConfigID)
	if err != nil {
		return nil, err
	}

	seats, humanID, err := buildRoster(config.CharacterPool(), req)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	s.mu.Lock()
	session, err := s.sessions.Create("", SessionSpec{
		ConfigID:      configID,
		Config:        config,
		Seats:         seats,
		HumanPlayerID: humanID,
		Seed:          req.Seed,
	})
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created", "session", session.ID, "config", configID, "players", len(seats))
	session.Lock()
	defer session.Unlock()
	return toInfo(session, true), nil
}

// toInfo snapshots a session. The caller holds the session's lock.
func toInfo(sess *Session, withConfig bool) *SessionInfo {
	info := &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		HumanPlayerID:  sess.HumanPlayerID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccess(),
		GameState:      sess.Engine.GetState().Clone(),
	}
	if withConfig {
		info.GameConfig = sess.Config
	}
	return info
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	session.Lock()
	defer session.Unlock()
	return toInfo(session, true), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	sessions := s.sessions.List()
	s.mu.RUnlock()

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.Lock()
		result = append(result, toInfo(sess, false))
		sess.Unlock()
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// getSession looks a session up and records the access. The service lock
// covers the lookup only; callers take the session's lock for engine work.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, err := s.sessions.Get(sessionID)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// act runs one engine operation under the session lock and reports the log
// entries it produced.
func (s *gameServiceImpl) act(ctx context.Context, sessionID, op string, fn func(*Session) (*engine.RollResult, error)) (*ActionResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()

	since := lastSequence(sess.Engine.GetState())
	roll, err := fn(sess)
	if err != nil {
		level := slog.LevelDebug
		if errors.Is(err, engine.ErrInvariantViolation) {
			level = slog.LevelError
		}
		s.logger.Log(ctx, level, "action rejected", "session", sessionID, "op", op, "error", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := buildResult(sess.Engine, since)
	result.Roll = roll
	s.persist(sessionID)
	s.logger.Debug("action applied", "session", sessionID, "op", op, "events", len(result.Events))
	return result, nil
}

func (s *gameServiceImpl) persist(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn("failed to persist session", "session", sessionID, "error", err)
	}
}

func lastSequence(state *engine.GameState) int {
	if n := len(state.Logs); n > 0 {
		return state.Logs[n-1].Sequence
	}
	return 0
}

func buildResult(e *engine.GameEngine, since int) *ActionResult {
	state := e.GetState().Clone()
	events := []engine.LogEntry{}
	for _, entry := range state.Logs {
		if entry.Sequence > since {
			events = append(events, entry)
		}
	}
	return &ActionResult{
		GameState: state,
		Events:    events,
		Move:      state.LastMove,
		Pending:   state.Pending,
		CanRoll:   e.CanRoll(),
		Active:    state.ActivePlayer(),
		Concluded: state.Status == engine.StatusConcluded,
		WinnerID:  state.WinnerID,
	}
}

// Roll rolls the dice for the active external player
func (s *gameServiceImpl) Roll(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(ctx, sessionID, "roll", func(sess *Session) (*engine.RollResult, error) {
		if p := sess.Engine.GetState().ActivePlayer(); p != nil && p.Autonomous && !sess.Engine.IsConcluded() {
			return nil, fmt.Errorf("%w: %s is autonomous; use autoplay", engine.ErrActionNotAllowed, p.Profile.Name)
		}
		return sess.Engine.Roll(ctx)
	})
}

// ChooseBranch resumes a movement suspended at a fork
func (s *gameServiceImpl) ChooseBranch(ctx context.Context, sessionID string, spaceID int) (*ActionResult, error) {
	return s.act(ctx, sessionID, "choose_branch", func(sess *Session) (*engine.RollResult, error) {
		return nil, sess.Engine.ResolveBranchChoice(ctx, spaceID)
	})
}

// Decide answers a purchase or upgrade offer
func (s *gameServiceImpl) Decide(ctx context.Context, sessionID string, accept bool) (*ActionResult, error) {
	return s.act(ctx, sessionID, "decide", func(sess *Session) (*engine.RollResult, error) {
		return nil, sess.Engine.Decide(ctx, accept)
	})
}

// Acknowledge dismisses a pending event
func (s *gameServiceImpl) Acknowledge(ctx context.Context, sessionID string) (*ActionResult, error) {
	return s.act(ctx, sessionID, "acknowledge", func(sess *Session) (*engine.RollResult, error) {
		return nil, sess.Engine.Acknowledge(ctx)
	})
}

// AutoPlay drives autonomous players until an external player must act,
// the game ends or maxActions actions have been taken.
func (s *gameServiceImpl) AutoPlay(ctx context.Context, sessionID string, maxActions int) (*AutoPlayResult, error) {
	if maxActions <= 0 {
		maxActions = defaultAutoPlaySteps
	}
	if maxActions > maxAutoPlaySteps {
		maxActions = maxAutoPlaySteps
	}

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()

	e := sess.Engine
	since := lastSequence(e.GetState())
	actions := 0
	reason := StopLimit
	for actions < maxActions {
		if e.IsConcluded() {
			reason = StopConcluded
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		acted, err := e.StepAutonomous(ctx)
		if err != nil {
			s.logger.Error("autoplay failed", "session", sessionID, "actions", actions, "error", err)
			return nil, fmt.Errorf("autoplay: %w", err)
		}
		if !acted {
			reason = StopHumanTurn
			break
		}
		actions++
	}
	if reason == StopLimit && e.IsConcluded() {
		reason = StopConcluded
	}

	s.persist(sessionID)
	s.logger.Debug("autoplay finished", "session", sessionID, "actions", actions, "reason", reason)
	return &AutoPlayResult{
		ActionResult:  *buildResult(e, since),
		Actions:       actions,
		StoppedReason: reason,
	}, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	return sess.Engine.GetState().Clone(), nil
}

// GetLogs returns a page of the session's game log
func (s *gameServiceImpl) GetLogs(ctx context.Context, sessionID string, opts LogOptions) (*LogResponse, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var history []engine.LogEntry
	sess.Lock()
	for _, entry := range sess.Engine.GetState().Logs {
		if opts.Category == "" || string(entry.Category) == opts.Category {
			history = append(history, entry)
		}
	}
	sess.Unlock()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	entries := []engine.LogEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			entries = append(entries, history[i])
		}
	} else if start < total {
		entries = append(entries, history[start:end]...)
	}

	return &LogResponse{
		Entries:     entries,
		Total:       total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// ListCharacters returns the character pool of a configuration
func (s *gameServiceImpl) ListCharacters(ctx context.Context, configName string) ([]engine.Profile, error) {
	config, _, err := s.resolveConfig(configName)
	if err != nil {
		return nil, err
	}
	return config.CharacterPool(), nil
}
