package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation marks a corrupted board or a caller that broke the
	// engine's preconditions. It is never a game outcome.
	ErrInvariantViolation = errors.New("engine invariant violation")

	// ErrActionNotAllowed is returned when an action is attempted in a state
	// that does not permit it (rolling while blocked, acting after the end).
	ErrActionNotAllowed = errors.New("action not allowed in current state")

	// ErrInvalidChoice is returned for a branch choice that is not a successor
	// of the current branch space.
	ErrInvalidChoice = errors.New("invalid branch choice")

	// ErrUnaffordable is returned when accepting an offer the player cannot pay for.
	ErrUnaffordable = errors.New("offer is not affordable")

	// ErrNoPendingDecision is returned when a decision is supplied but none is pending.
	ErrNoPendingDecision = errors.New("no pending decision")

	// ErrInvalidRoster is returned when a session is created with a bad seat list.
	ErrInvalidRoster = errors.New("invalid roster")
)

// InvariantError carries the context needed to diagnose a bad graph or bad
// caller input.
type InvariantError struct {
	Op       string
	PlayerID int
	SpaceID  int
	Reason   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: player %d, space %d: %s", e.Op, e.PlayerID, e.SpaceID, e.Reason)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolation
}

func invariant(op string, playerID, spaceID int, format string, args ...any) error {
	return &InvariantError{
		Op:       op,
		PlayerID: playerID,
		SpaceID:  spaceID,
		Reason:   fmt.Sprintf(format, args...),
	}
}
