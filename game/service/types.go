package service

import (
	"time"

	"github.com/wricardo/shanghai-tycoon/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	HumanPlayerID  *int               `json:"human_player_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config,omitempty"`
}

// CreateSessionRequest describes the roster of a new session.
//
// With AutonomousOnly unset the caller takes one seat as CharacterID (or the
// first character of the pool) and the remaining seats are filled with
// autonomous opponents drawn from the pool.
type CreateSessionRequest struct {
	ConfigID       string `json:"config_id,omitempty"`
	CharacterID    string `json:"character_id,omitempty"`
	Players        int    `json:"players,omitempty"`
	AutonomousOnly bool   `json:"autonomous_only,omitempty"`
	Seed           int64  `json:"seed,omitempty"`
}

// ActionResult is returned by every game action
type ActionResult struct {
	GameState *engine.GameState       `json:"game_state"`
	Events    []engine.LogEntry       `json:"events"`
	Roll      *engine.RollResult      `json:"roll,omitempty"`
	Move      *engine.MoveTrace       `json:"move,omitempty"`
	Pending   *engine.PendingDecision `json:"pending,omitempty"`
	CanRoll   bool                    `json:"can_roll"`
	Active    *engine.Player          `json:"active_player,omitempty"`
	Concluded bool                    `json:"concluded"`
	WinnerID  *int                    `json:"winner_id,omitempty"`
}

// AutoPlayResult reports what an AutoPlay call did
type AutoPlayResult struct {
	ActionResult
	Actions       int    `json:"actions"`
	StoppedReason string `json:"stopped_reason"`
}

// AutoPlay stop reasons
const (
	StopHumanTurn = "human_turn"
	StopConcluded = "concluded"
	StopLimit     = "limit"
)

// LogOptions configures log retrieval
type LogOptions struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Order    string `json:"order"` // "asc" or "desc"
	Category string `json:"category,omitempty"`
}

// LogResponse contains a page of game log entries
type LogResponse struct {
	Entries     []engine.LogEntry `json:"entries"`
	Total       int               `json:"total"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	TotalPages  int               `json:"total_pages"`
	HasNext     bool              `json:"has_next"`
	HasPrevious bool              `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Spaces      int    `json:"spaces"`
	Branches    int    `json:"branches"`
	Characters  int    `json:"characters"`
}
