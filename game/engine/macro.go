package engine

import (
	"context"
)

// maybeTriggerMacroEvent runs once per round value (from round 2 on) when
// the new round's first turn begins. That turn belongs to the first seat
// still playing, so the prompt goes to that player even when seat 0 is out. Every GlobalEventPeriod-th round fires
// a global economic event; any other round fires a catastrophe with
// probability CatastropheChance. Neither passes the turn on.
func (e *GameEngine) maybeTriggerMacroEvent(ctx context.Context) error {
	s := e.state
	if s.Status != StatusInProgress || s.Round <= 1 || s.LastMacroRound == s.Round {
		return nil
	}
	s.LastMacroRound = s.Round
	lead := s.ActivePlayer()
	if lead == nil {
		return invariant("macro_event", -1, -1, "no active player at round start")
	}

	var d EventDescriptor
	if s.Round%e.rules.GlobalEventPeriod == 0 {
		d = e.applyGlobalEvent(ctx)
	} else if e.rng.Float64() < e.rules.CatastropheChance {
		d = e.applyCatastrophe(ctx)
	} else {
		return nil
	}

	for _, eff := range d.Effects {
		if p := s.Player(eff.PlayerID); p != nil {
			e.checkInsolvency(p)
		}
	}
	if s.Status == StatusConcluded {
		return nil
	}

	s.Blocking = BlockEventResolution
	s.Pending = &PendingDecision{
		Kind:       DecisionMacro,
		PlayerID:   lead.ID,
		SpaceID:    lead.Position,
		Affordable: true,
		Event:      &d,
	}
	if lead.Autonomous {
		return e.Acknowledge(ctx)
	}
	return nil
}

// applyGlobalEvent draws whether the event targets a cohort, asks the
// provider for flavor and applies the percentage to every matching player.
func (e *GameEngine) applyGlobalEvent(ctx context.Context) EventDescriptor {
	s := e.state
	partial := e.rng.Float64() < e.rules.PartialTargetChance
	d := e.globalEvent(ctx, GlobalEventRequest{Round: s.Round, Partial: partial})

	active := s.ActivePlayers()
	median := MedianCash(active)
	for _, p := range active {
		if !e.matchesTarget(p, d.Target, median) {
			continue
		}
		change := ClampMinChange(PercentChange(p.Cash, d.Percentage), d.Percentage, e.rules.GlobalMinChange)
		before := p.Cash
		p.Cash += change
		refreshWorth(p, s.Board, e.rules)
		d.Effects = append(d.Effects, CashEffect{PlayerID: p.ID, Before: before, After: p.Cash})
	}

	e.recordf(LogEvent, nil, "Global event: %s (%s, %+d%% cash, %d players affected)",
		d.Title, d.Target, d.Percentage, len(d.Effects))
	e.logger.Info("global event", "round", s.Round, "target", d.Target, "percentage", d.Percentage, "affected", len(d.Effects))
	return d
}

func (e *GameEngine) matchesTarget(p *Player, target GlobalTarget, median int64) bool {
	switch target {
	case TargetBelowMedian:
		return p.Cash <= median
	case TargetAboveMedian:
		return p.Cash > median
	case TargetLandlords:
		return len(p.Owned) > e.rules.LandlordThreshold
	case TargetOddID:
		return p.ID%2 != 0
	}
	return true
}

// applyCatastrophe picks an action uniformly and applies it to every
// player still in the game.
func (e *GameEngine) applyCatastrophe(ctx context.Context) EventDescriptor {
	s := e.state
	action := CatastropheActions[e.rng.Intn(len(CatastropheActions))]
	d := e.catastrophe(ctx, CatastropheRequest{Round: s.Round, Action: action})

	active := s.ActivePlayers()
	before := make([]int64, len(active))
	for i, p := range active {
		before[i] = p.Cash
	}

	switch action {
	case ResetCashToFloor:
		for _, p := range active {
			p.Cash = e.rules.CashFloor
		}
	case ZeroPropertyLevels:
		// Owned spaces drop to the purchase tier; a level of zero is reserved
		// for unowned spaces.
		for _, sp := range s.Board.Spaces {
			if sp.OwnerID != nil {
				sp.UpgradeLevel = 1
			} else {
				sp.UpgradeLevel = 0
			}
		}
	case ShuffleCash:
		perm := e.rng.Perm(len(active))
		for i, p := range active {
			p.Cash = before[perm[i]]
		}
	case HalveCash:
		for _, p := range active {
			p.Cash = HalveFloor(p.Cash)
		}
	}

	for i, p := range active {
		refreshWorth(p, s.Board, e.rules)
		if p.Cash != before[i] {
			d.Effects = append(d.Effects, CashEffect{PlayerID: p.ID, Before: before[i], After: p.Cash})
		}
	}

	e.recordf(LogCatastrophe, nil, "Catastrophe: %s (%s)", d.Title, action)
	e.logger.Info("catastrophe", "round", s.Round, "action", action)
	return d
}
