package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/shanghai-tycoon/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Roll(ctx context.Context, sessionID string) (*ActionResult, error)
	ChooseBranch(ctx context.Context, sessionID string, spaceID int) (*ActionResult, error)
	Decide(ctx context.Context, sessionID string, accept bool) (*ActionResult, error)
	Acknowledge(ctx context.Context, sessionID string) (*ActionResult, error)
	AutoPlay(ctx context.Context, sessionID string, maxActions int) (*AutoPlayResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetLogs(ctx context.Context, sessionID string, opts LogOptions) (*LogResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
	ListCharacters(ctx context.Context, configName string) ([]engine.Profile, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, spec SessionSpec) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// SessionSpec is everything a session manager needs to seat a new game
type SessionSpec struct {
	ConfigID      string
	Config        *engine.GameConfig
	Seats         []engine.Seat
	HumanPlayerID *int
	Seed          int64
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	HumanPlayerID  *int
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu       sync.Mutex // serializes use of Engine
	accessMu sync.Mutex // guards LastAccessedAt once the session is shared
}

// Lock takes the session's engine lock. The engine is not safe for
// concurrent use; every reader and writer of Engine holds this lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the engine lock
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.accessMu.Lock()
	s.LastAccessedAt = t
	s.accessMu.Unlock()
}

// LastAccess returns the time of the most recent access
func (s *Session) LastAccess() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.LastAccessedAt
}
