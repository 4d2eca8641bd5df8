package engine

import (
	"context"
	"fmt"
	"slices"
)

// ResolveMovement advances the player one hop at a time. A branch space
// suspends the walk with the remaining steps stored in the snapshot; an
// autonomous player picks a successor at random and the walk resumes
// immediately. Once all steps are consumed the landing effect is applied.
func (e *GameEngine) ResolveMovement(ctx context.Context, playerID, steps int) error {
	const op = "resolve_movement"
	p, err := e.requireActive(op, playerID)
	if err != nil {
		return err
	}
	if steps <= 0 {
		return invariant(op, playerID, p.Position, "step count must be positive, got %d", steps)
	}
	if e.state.Status != StatusInProgress {
		return invariant(op, playerID, p.Position, "cannot move while %s", e.state.Status)
	}
	if _, ok := e.state.Board.Space(p.Position); !ok {
		return invariant(op, playerID, p.Position, "player is on an unknown space")
	}

	e.state.LastMove = &MoveTrace{PlayerID: p.ID, From: p.Position, Steps: steps, Path: []int{}}
	return e.walk(ctx, p, steps)
}

// ResolveBranchChoice moves the suspended player onto the chosen successor,
// counts that hop as a step and resumes the walk.
func (e *GameEngine) ResolveBranchChoice(ctx context.Context, spaceID int) error {
	const op = "resolve_branch_choice"
	s := e.state
	if s.Status != StatusAwaitingBranchChoice || s.Pending == nil || s.Pending.Kind != DecisionBranch {
		return fmt.Errorf("%w: not awaiting a branch choice", ErrNoPendingDecision)
	}
	p, err := e.requireActive(op, s.Pending.PlayerID)
	if err != nil {
		return err
	}
	cur, ok := s.Board.Space(p.Position)
	if !ok {
		return invariant(op, p.ID, p.Position, "player is on an unknown space")
	}
	if !slices.Contains(cur.Successors, spaceID) {
		return fmt.Errorf("%w: space %d is not reachable from %s (options %v)", ErrInvalidChoice, spaceID, cur.Name, cur.Successors)
	}
	if s.PendingSteps <= 0 {
		return invariant(op, p.ID, p.Position, "branch suspended with %d steps owed", s.PendingSteps)
	}

	remaining := s.PendingSteps
	s.Status = StatusInProgress
	s.PendingSteps = 0
	s.Pending = nil
	if s.LastMove != nil {
		s.LastMove.Suspended = false
		s.LastMove.Remaining = 0
	}

	if err := e.hop(p, spaceID); err != nil {
		return err
	}
	return e.walk(ctx, p, remaining-1)
}

func (e *GameEngine) walk(ctx context.Context, p *Player, steps int) error {
	const op = "resolve_movement"
	s := e.state
	s.Moving = true
	for steps > 0 {
		cur, ok := s.Board.Space(p.Position)
		if !ok {
			return invariant(op, p.ID, p.Position, "player is on an unknown space")
		}
		if cur.IsBranch() {
			e.suspend(p, cur, steps)
			if p.Autonomous {
				choice := cur.Successors[e.rng.Intn(len(cur.Successors))]
				return e.ResolveBranchChoice(ctx, choice)
			}
			return nil
		}
		if err := e.hop(p, cur.Successors[0]); err != nil {
			return err
		}
		steps--
	}
	s.Moving = false
	return e.ApplyLanding(ctx, p.ID, p.Position)
}

// hop moves the player onto an adjacent space, paying the pass-start bonus
// when that space is start.
func (e *GameEngine) hop(p *Player, to int) error {
	next, ok := e.state.Board.Space(to)
	if !ok {
		return invariant("resolve_movement", p.ID, to, "successor does not exist")
	}
	p.Position = next.ID
	if lm := e.state.LastMove; lm != nil {
		lm.Path = append(lm.Path, next.ID)
	}
	if next.Kind == KindStart && e.rules.PassStartBonus > 0 {
		p.Cash += e.rules.PassStartBonus
		refreshWorth(p, e.state.Board, e.rules)
		if lm := e.state.LastMove; lm != nil {
			lm.StartCrossings++
		}
		e.recordf(LogSuccess, []logOpt{forPlayer(p.ID), atSpace(next.ID), withAmount(e.rules.PassStartBonus)},
			"%s passed %s and collected %s", p.Profile.Name, next.Name, Money(e.rules.PassStartBonus))
	}
	return nil
}

func (e *GameEngine) suspend(p *Player, at *Space, steps int) {
	s := e.state
	s.Status = StatusAwaitingBranchChoice
	s.PendingSteps = steps
	s.Moving = false
	s.Pending = &PendingDecision{
		Kind:       DecisionBranch,
		PlayerID:   p.ID,
		SpaceID:    at.ID,
		Affordable: true,
		Options:    append([]int(nil), at.Successors...),
	}
	if lm := s.LastMove; lm != nil {
		lm.Suspended = true
		lm.Remaining = steps
	}
	e.recordf(LogInfo, []logOpt{forPlayer(p.ID), atSpace(at.ID)},
		"%s reached the fork at %s with %d steps left", p.Profile.Name, at.Name, steps)
}
