package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	GetConfig() *GameConfig
	Start() error
	IsConcluded() bool

	// Turn operations
	CanRoll() bool
	Roll(ctx context.Context) (*RollResult, error)
	AdvanceTurn(ctx context.Context) error
	StepAutonomous(ctx context.Context) (bool, error)

	// Movement and landing
	ResolveMovement(ctx context.Context, playerID, steps int) error
	ResolveBranchChoice(ctx context.Context, spaceID int) error
	ApplyLanding(ctx context.Context, playerID, spaceID int) error

	// Decisions
	PendingDecision() *PendingDecision
	Decide(ctx context.Context, accept bool) error
	Acknowledge(ctx context.Context) error
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize access.
type GameEngine struct {
	state   *GameState
	config  *GameConfig
	rules   Rules
	rng     RandomSource
	content ContentProvider
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithRandomSource routes every random draw through src
func WithRandomSource(src RandomSource) Option {
	return func(e *GameEngine) { e.rng = src }
}

// WithContentProvider sets the narrative provider. FallbackContent covers failures.
func WithContentProvider(p ContentProvider) Option {
	return func(e *GameEngine) { e.content = p }
}

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option {
	return func(e *GameEngine) { e.logger = l }
}

// WithContentTimeout bounds each content provider call
func WithContentTimeout(d time.Duration) Option {
	return func(e *GameEngine) { e.timeout = d }
}

// WithClock overrides the time source used for log timestamps
func WithClock(now func() time.Time) Option {
	return func(e *GameEngine) { e.now = now }
}

func newGameEngine(config *GameConfig, opts []Option) *GameEngine {
	e := &GameEngine{
		config:  config,
		rules:   config.Rules,
		content: FallbackContent{},
		timeout: 10 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = NewRandomSource(0)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// NewEngine creates a session for the given roster on a fresh copy of the
// configured board. The session starts in awaiting_setup.
func NewEngine(config *GameConfig, seats []Seat, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, fmt.Errorf("%w: need between %d and %d players, got %d", ErrInvalidRoster, MinPlayers, MaxPlayers, len(seats))
	}

	board, err := NewBoard(config.Board, config.StartSpace, config.Rules)
	if err != nil {
		return nil, err
	}

	e := newGameEngine(config, opts)
	players := make([]*Player, len(seats))
	for i, seat := range seats {
		if seat.Profile.Name == "" {
			return nil, fmt.Errorf("%w: seat %d has no name", ErrInvalidRoster, i)
		}
		players[i] = &Player{
			ID:         i,
			Profile:    seat.Profile,
			Cash:       config.Rules.StartingCash,
			NetWorth:   config.Rules.StartingCash,
			Position:   config.StartSpace,
			Owned:      []int{},
			Autonomous: seat.Autonomous,
		}
	}

	e.state = &GameState{
		ConfigName: config.Name,
		Players:    players,
		Board:      board,
		Status:     StatusAwaitingSetup,
		Blocking:   BlockNone,
		Logs:       []LogEntry{},
	}
	return e, nil
}

// RestoreEngine rebuilds an engine around a previously saved snapshot
func RestoreEngine(config *GameConfig, state *GameState, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if state == nil || state.Board == nil || len(state.Players) == 0 {
		return nil, fmt.Errorf("state cannot be empty")
	}
	e := newGameEngine(config, opts)
	e.state = state
	if e.state.Blocking == "" {
		e.state.Blocking = BlockNone
	}
	return e, nil
}

// Start moves a fresh session into play with the first player active in round 1
func (e *GameEngine) Start() error {
	if e.state.Status != StatusAwaitingSetup {
		return fmt.Errorf("%w: session already started", ErrActionNotAllowed)
	}
	e.state.Status = StatusInProgress
	e.state.Round = 1
	e.state.ActivePlayerIndex = 0
	e.state.StartedAt = e.now()
	e.recordf(LogInfo, nil, "Game started on %s with %d players", e.config.Name, len(e.state.Players))
	e.logger.Info("game started", "config", e.config.Name, "players", len(e.state.Players))
	return nil
}

// GetState returns the live game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// GetConfig returns the game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// IsConcluded reports whether the game is over
func (e *GameEngine) IsConcluded() bool {
	return e.state.Status == StatusConcluded
}

// PendingDecision returns the decision the boundary must supply, if any
func (e *GameEngine) PendingDecision() *PendingDecision {
	return e.state.Pending
}

// StepAutonomous performs one action on behalf of an autonomous active
// player: acknowledging a macro event left pending, or rolling. It reports
// whether anything happened.
func (e *GameEngine) StepAutonomous(ctx context.Context) (bool, error) {
	p := e.state.ActivePlayer()
	if p == nil || !p.Autonomous || e.IsConcluded() {
		return false, nil
	}
	if e.state.Blocking == BlockEventResolution {
		return true, e.Acknowledge(ctx)
	}
	if !e.CanRoll() {
		return false, nil
	}
	_, err := e.Roll(ctx)
	return true, err
}

func (e *GameEngine) requireActive(op string, playerID int) (*Player, error) {
	p := e.state.ActivePlayer()
	if p == nil {
		return nil, invariant(op, playerID, -1, "no active player")
	}
	if p.ID != playerID {
		if e.state.Player(playerID) == nil {
			return nil, invariant(op, playerID, -1, "player not found")
		}
		return nil, invariant(op, playerID, p.Position, "player %d is not the active player", playerID)
	}
	if p.Eliminated {
		return nil, invariant(op, playerID, p.Position, "player is eliminated")
	}
	return p, nil
}

func (e *GameEngine) contentCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *GameEngine) personalEvent(ctx context.Context, req PersonalEventRequest) EventDescriptor {
	cctx, cancel := e.contentCtx(ctx)
	defer cancel()
	d, err := e.content.PersonalEvent(cctx, req)
	if err == nil {
		d, err = normalizePersonal(d, req)
	}
	if err != nil {
		e.logger.Warn("content provider failed, using fallback", "kind", CategoryPersonal, "error", err)
		d, _ = FallbackContent{}.PersonalEvent(ctx, req)
	}
	return d
}

func (e *GameEngine) globalEvent(ctx context.Context, req GlobalEventRequest) EventDescriptor {
	cctx, cancel := e.contentCtx(ctx)
	defer cancel()
	d, err := e.content.GlobalEvent(cctx, req)
	if err == nil {
		d, err = normalizeGlobal(d, req, e.rules.MaxGlobalPercentage)
	}
	if err != nil {
		e.logger.Warn("content provider failed, using fallback", "kind", CategoryGlobal, "error", err)
		d, _ = FallbackContent{}.GlobalEvent(ctx, req)
	}
	return d
}

func (e *GameEngine) catastrophe(ctx context.Context, req CatastropheRequest) EventDescriptor {
	cctx, cancel := e.contentCtx(ctx)
	defer cancel()
	d, err := e.content.Catastrophe(cctx, req)
	if err == nil && d.Title == "" {
		err = fmt.Errorf("catastrophe: empty title")
	}
	if err != nil {
		e.logger.Warn("content provider failed, using fallback", "kind", CategoryCatastrophe, "error", err)
		d, _ = FallbackContent{}.Catastrophe(ctx, req)
	}
	// The action is always the one the engine drew.
	d.Category = CategoryCatastrophe
	d.Action = req.Action
	return d
}

func (e *GameEngine) banter(ctx context.Context, speaker *Player, situation, subject string) {
	req := BanterRequest{Speaker: speaker.Profile, Situation: situation, Subject: subject}
	cctx, cancel := e.contentCtx(ctx)
	defer cancel()
	line, err := e.content.Banter(cctx, req)
	if err != nil || line == "" {
		if err != nil {
			e.logger.Warn("content provider failed, using fallback", "kind", "banter", "error", err)
		}
		line, _ = FallbackContent{}.Banter(ctx, req)
	}
	e.recordf(LogBanter, []logOpt{forPlayer(speaker.ID)}, "%s: %q", speaker.Profile.Name, line)
}
