package engine

import "time"

// SpaceKind represents the type of a board space
type SpaceKind string

const (
	KindStart         SpaceKind = "start"
	KindOwnable       SpaceKind = "ownable"
	KindRandomEvent   SpaceKind = "random_event"
	KindIncarceration SpaceKind = "incarceration"
	KindBankBonus     SpaceKind = "bank_bonus"
	KindTaxLevy       SpaceKind = "tax_levy"
	KindShop          SpaceKind = "shop"
	KindRestArea      SpaceKind = "rest_area"
)

// Valid reports whether k is one of the known space kinds
func (k SpaceKind) Valid() bool {
	switch k {
	case KindStart, KindOwnable, KindRandomEvent, KindIncarceration,
		KindBankBonus, KindTaxLevy, KindShop, KindRestArea:
		return true
	}
	return false
}

// Status is the session lifecycle state
type Status string

const (
	StatusAwaitingSetup        Status = "awaiting_setup"
	StatusInProgress           Status = "in_progress"
	StatusAwaitingBranchChoice Status = "awaiting_branch_choice"
	StatusConcluded            Status = "concluded"
)

// BlockingAction is non-none while the active player's turn cannot advance
type BlockingAction string

const (
	BlockNone             BlockingAction = "none"
	BlockPurchaseDecision BlockingAction = "awaiting_purchase_decision"
	BlockEventResolution  BlockingAction = "awaiting_external_event_resolution"
)

// DecisionKind identifies what the boundary must supply to resume the game
type DecisionKind string

const (
	DecisionBranch   DecisionKind = "branch"
	DecisionPurchase DecisionKind = "purchase"
	DecisionUpgrade  DecisionKind = "upgrade"
	DecisionEvent    DecisionKind = "event"
	DecisionMacro    DecisionKind = "macro"
)

// Validation constants
const (
	MinPlayers    = 2
	MaxPlayers    = 6
	MaxBoardSize  = 500
	MaxLogEntries = 500
)

// Space is a node of the board graph
type Space struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Kind         SpaceKind `json:"kind"`
	District     string    `json:"district,omitempty"`
	Successors   []int     `json:"successors"`
	BasePrice    int64     `json:"base_price,omitempty"`
	BaseRent     int64     `json:"base_rent,omitempty"`
	OwnerID      *int      `json:"owner_id"`
	UpgradeLevel int       `json:"upgrade_level"`
}

// IsBranch reports whether moving off this space needs a choice
func (s *Space) IsBranch() bool {
	return len(s.Successors) > 1
}

// IsOwned reports whether a player holds the space
func (s *Space) IsOwned() bool {
	return s.OwnerID != nil
}

// Profile holds the static character attributes of a player
type Profile struct {
	CharacterID  string `json:"character_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Catchphrase  string `json:"catchphrase,omitempty"`
	Intelligence int    `json:"intelligence"`
	Charisma     int    `json:"charisma"`
	Luck         int    `json:"luck"`
}

// Seat is one roster entry used to start a session
type Seat struct {
	Profile    Profile `json:"profile"`
	Autonomous bool    `json:"autonomous"`
}

// Player is the per-player economic and position state
type Player struct {
	ID                int     `json:"id"`
	Profile           Profile `json:"profile"`
	Cash              int64   `json:"cash"`
	PropertyValue     int64   `json:"property_value"`
	NetWorth          int64   `json:"net_worth"`
	Position          int     `json:"position"`
	Owned             []int   `json:"owned"`
	IncarceratedTurns int     `json:"incarcerated_turns"`
	Eliminated        bool    `json:"eliminated"`
	Autonomous        bool    `json:"autonomous"`
}

// PendingDecision is the shape of the choice the boundary must supply
type PendingDecision struct {
	Kind       DecisionKind     `json:"kind"`
	PlayerID   int              `json:"player_id"`
	SpaceID    int              `json:"space_id"`
	Cost       int64            `json:"cost,omitempty"`
	Affordable bool             `json:"affordable"`
	Level      int              `json:"level,omitempty"`
	Options    []int            `json:"options,omitempty"`
	Event      *EventDescriptor `json:"event,omitempty"`
}

// MoveTrace records how the last movement resolution went
type MoveTrace struct {
	PlayerID       int   `json:"player_id"`
	From           int   `json:"from"`
	Steps          int   `json:"steps"`
	Path           []int `json:"path"`
	StartCrossings int   `json:"start_crossings"`
	Suspended      bool  `json:"suspended"`
	Remaining      int   `json:"remaining"`
}

// Hops returns the number of hops actually taken
func (m *MoveTrace) Hops() int {
	return len(m.Path)
}

// RollResult describes a single roll request
type RollResult struct {
	PlayerID int  `json:"player_id"`
	Value    int  `json:"value"`
	Skipped  bool `json:"skipped"`
}

// GameState represents the complete session snapshot
type GameState struct {
	ConfigName        string           `json:"config_name"`
	Players           []*Player        `json:"players"`
	Board             *Board           `json:"board"`
	ActivePlayerIndex int              `json:"active_player_index"`
	Round             int              `json:"round"`
	TurnsPlayed       int              `json:"turns_played"`
	PendingSteps      int              `json:"pending_steps"`
	Status            Status           `json:"status"`
	Blocking          BlockingAction   `json:"blocking"`
	Pending           *PendingDecision `json:"pending,omitempty"`
	LastRoll          int              `json:"last_roll"`
	Moving            bool             `json:"moving"`
	WinnerID          *int             `json:"winner_id,omitempty"`
	LastMacroRound    int              `json:"last_macro_round"`
	LastMove          *MoveTrace       `json:"last_move,omitempty"`
	Logs              []LogEntry       `json:"logs"`
	StartedAt         time.Time        `json:"started_at"`
}

// ActivePlayer returns the player whose turn it is
func (gs *GameState) ActivePlayer() *Player {
	if gs.ActivePlayerIndex < 0 || gs.ActivePlayerIndex >= len(gs.Players) {
		return nil
	}
	return gs.Players[gs.ActivePlayerIndex]
}

// Player looks a player up by id
func (gs *GameState) Player(id int) *Player {
	for _, p := range gs.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActivePlayers returns the players that are still in the game, in turn order
func (gs *GameState) ActivePlayers() []*Player {
	var out []*Player
	for _, p := range gs.Players {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy of the snapshot
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	out := *gs
	out.Players = make([]*Player, len(gs.Players))
	for i, p := range gs.Players {
		cp := *p
		cp.Owned = append([]int{}, p.Owned...)
		out.Players[i] = &cp
	}
	out.Board = gs.Board.Clone()
	if gs.Pending != nil {
		pd := *gs.Pending
		pd.Options = append([]int(nil), gs.Pending.Options...)
		if gs.Pending.Event != nil {
			ev := gs.Pending.Event.clone()
			pd.Event = &ev
		}
		out.Pending = &pd
	}
	if gs.WinnerID != nil {
		w := *gs.WinnerID
		out.WinnerID = &w
	}
	if gs.LastMove != nil {
		lm := *gs.LastMove
		lm.Path = append([]int(nil), gs.LastMove.Path...)
		out.LastMove = &lm
	}
	out.Logs = append([]LogEntry(nil), gs.Logs...)
	return &out
}
