package engine

import (
	"context"
	"fmt"
)

// CanRoll reports whether the active player may roll right now
func (e *GameEngine) CanRoll() bool {
	s := e.state
	if s.Status != StatusInProgress || s.Blocking != BlockNone || s.Moving || s.Pending != nil {
		return false
	}
	p := s.ActivePlayer()
	return p != nil && !p.Eliminated
}

// Roll takes the active player's turn. An incarcerated player spends the
// turn serving one unit of the sentence instead of rolling.
func (e *GameEngine) Roll(ctx context.Context) (*RollResult, error) {
	if !e.CanRoll() {
		return nil, fmt.Errorf("%w: cannot roll while %s/%s", ErrActionNotAllowed, e.state.Status, e.state.Blocking)
	}
	p := e.state.ActivePlayer()

	if p.IncarceratedTurns > 0 {
		p.IncarceratedTurns--
		e.recordf(LogDanger, []logOpt{forPlayer(p.ID), atSpace(p.Position)},
			"%s sits out the turn (%d left)", p.Profile.Name, p.IncarceratedTurns)
		return &RollResult{PlayerID: p.ID, Skipped: true}, e.AdvanceTurn(ctx)
	}

	value := e.rng.Intn(e.rules.DiceSides) + 1
	e.state.LastRoll = value
	e.recordf(LogInfo, []logOpt{forPlayer(p.ID)}, "%s rolled a %d", p.Profile.Name, value)

	if err := e.ResolveMovement(ctx, p.ID, value); err != nil {
		return nil, err
	}
	return &RollResult{PlayerID: p.ID, Value: value}, nil
}

// AdvanceTurn passes the turn to the next non-eliminated player. The round
// counter increments when the search wraps past the end of the roster, and
// the new round's macro check runs for the player holding that first turn.
func (e *GameEngine) AdvanceTurn(ctx context.Context) error {
	s := e.state
	if s.Status == StatusConcluded {
		return nil
	}
	s.LastRoll = 0
	s.Blocking = BlockNone
	s.Pending = nil
	s.Moving = false
	s.PendingSteps = 0
	if s.Status == StatusAwaitingBranchChoice {
		s.Status = StatusInProgress
	}
	if e.checkConclusion() {
		return nil
	}

	n := len(s.Players)
	idx := s.ActivePlayerIndex
	wrapped := false
	for attempt := 0; attempt < n; attempt++ {
		idx++
		if idx >= n {
			idx = 0
			wrapped = true
		}
		if !s.Players[idx].Eliminated {
			break
		}
	}
	s.ActivePlayerIndex = idx
	s.TurnsPlayed++

	if wrapped {
		s.Round++
		e.recordf(LogInfo, nil, "Round %d begins", s.Round)
		return e.maybeTriggerMacroEvent(ctx)
	}
	return nil
}

// Acknowledge closes an event prompt. A personal event ends the turn; a
// macro event hands control back to the same player.
func (e *GameEngine) Acknowledge(ctx context.Context) error {
	s := e.state
	if s.Blocking != BlockEventResolution || s.Pending == nil {
		return fmt.Errorf("%w: no event awaits acknowledgement", ErrNoPendingDecision)
	}
	kind := s.Pending.Kind
	s.Blocking = BlockNone
	s.Pending = nil

	if kind == DecisionMacro {
		// A macro event may have eliminated the player holding the turn.
		if p := s.ActivePlayer(); p != nil && p.Eliminated {
			return e.AdvanceTurn(ctx)
		}
		return nil
	}
	return e.AdvanceTurn(ctx)
}
