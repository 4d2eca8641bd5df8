package engine

import (
	"context"
	"fmt"
)

// ApplyLanding dispatches the effect of the space a movement ended on
func (e *GameEngine) ApplyLanding(ctx context.Context, playerID, spaceID int) error {
	const op = "apply_landing"
	p, err := e.requireActive(op, playerID)
	if err != nil {
		return err
	}
	sp, ok := e.state.Board.Space(spaceID)
	if !ok {
		return invariant(op, playerID, spaceID, "space does not exist")
	}
	e.state.Moving = false

	who := []logOpt{forPlayer(p.ID), atSpace(sp.ID)}
	switch sp.Kind {
	case KindOwnable:
		return e.landOwnable(ctx, p, sp)

	case KindRandomEvent:
		return e.landRandomEvent(ctx, p, sp)

	case KindIncarceration:
		if e.rules.IncarcerationTurns > 0 {
			p.IncarceratedTurns = e.rules.IncarcerationTurns
			e.recordf(LogDanger, who, "%s is locked up at %s for %d turns", p.Profile.Name, sp.Name, p.IncarceratedTurns)
		} else {
			e.recordf(LogDanger, who, "%s is visiting %s", p.Profile.Name, sp.Name)
		}
		return e.endAction(ctx, true)

	case KindTaxLevy:
		p.Cash -= e.rules.TaxAmount
		refreshWorth(p, e.state.Board, e.rules)
		e.recordf(LogDanger, append(who, withAmount(-e.rules.TaxAmount)), "%s paid %s in tax at %s", p.Profile.Name, Money(e.rules.TaxAmount), sp.Name)
		e.checkInsolvency(p)
		return e.endAction(ctx, true)

	case KindBankBonus:
		p.Cash += e.rules.BankBonus
		refreshWorth(p, e.state.Board, e.rules)
		e.recordf(LogSuccess, append(who, withAmount(e.rules.BankBonus)), "%s collected a %s bank bonus at %s", p.Profile.Name, Money(e.rules.BankBonus), sp.Name)
		return e.endAction(ctx, true)

	case KindStart, KindShop, KindRestArea:
		e.recordf(LogInfo, who, "%s stops at %s", p.Profile.Name, sp.Name)
		return e.endAction(ctx, true)
	}
	return invariant(op, playerID, spaceID, "unknown space kind %q", sp.Kind)
}

func (e *GameEngine) landOwnable(ctx context.Context, p *Player, sp *Space) error {
	who := []logOpt{forPlayer(p.ID), atSpace(sp.ID)}

	if sp.OwnerID == nil {
		return e.offer(ctx, p, sp, DecisionPurchase, sp.BasePrice, e.rules.PurchaseMargin)
	}

	if *sp.OwnerID == p.ID {
		if sp.UpgradeLevel >= e.rules.MaxUpgradeLevel {
			e.recordf(LogInfo, who, "%s is already fully developed", sp.Name)
			return e.endAction(ctx, true)
		}
		return e.offer(ctx, p, sp, DecisionUpgrade, UpgradeCost(sp, e.rules), e.rules.UpgradeMargin)
	}

	owner := e.state.Player(*sp.OwnerID)
	if owner == nil {
		return invariant("apply_landing", p.ID, sp.ID, "space owned by unknown player %d", *sp.OwnerID)
	}
	if owner.Eliminated || owner.IncarceratedTurns > 0 {
		e.recordf(LogInfo, who, "%s is away, %s stays free of rent at %s", owner.Profile.Name, p.Profile.Name, sp.Name)
		return e.endAction(ctx, true)
	}

	rent := RentFor(sp, e.rules)
	if p.Profile.Charisma > e.rules.CharismaThreshold && e.rng.Float64() < e.rules.CharismaHalvingChance {
		rent /= 2
		e.recordf(LogInfo, who, "%s charmed %s into halving the rent", p.Profile.Name, owner.Profile.Name)
	}
	p.Cash -= rent
	owner.Cash += rent
	refreshWorth(p, e.state.Board, e.rules)
	refreshWorth(owner, e.state.Board, e.rules)
	e.recordf(LogDanger, append(who, withAmount(-rent)), "%s paid %s rent to %s for %s",
		p.Profile.Name, Money(rent), owner.Profile.Name, sp.Name)
	e.banter(ctx, owner, SituationCollectRent, sp.Name)

	e.checkInsolvency(p)
	return e.endAction(ctx, true)
}

// offer presents a purchase or upgrade. Autonomous players decide on the
// spot; external players block the turn until Decide.
func (e *GameEngine) offer(ctx context.Context, p *Player, sp *Space, kind DecisionKind, cost int64, margin float64) error {
	if p.Autonomous {
		if WithinMargin(p.Cash, cost, margin) {
			return e.completeOffer(ctx, p, sp, kind, cost)
		}
		e.recordf(LogInfo, []logOpt{forPlayer(p.ID), atSpace(sp.ID)}, "%s passes on %s", p.Profile.Name, sp.Name)
		return e.endAction(ctx, true)
	}

	level := 1
	if kind == DecisionUpgrade {
		level = sp.UpgradeLevel + 1
	}
	e.state.Blocking = BlockPurchaseDecision
	e.state.Pending = &PendingDecision{
		Kind:       kind,
		PlayerID:   p.ID,
		SpaceID:    sp.ID,
		Cost:       cost,
		Affordable: p.Cash >= cost,
		Level:      level,
	}
	return nil
}

// Decide resolves a purchase or upgrade prompt. Accepting an unaffordable
// offer is rejected without changing state; either answer ends the turn.
func (e *GameEngine) Decide(ctx context.Context, accept bool) error {
	const op = "decide"
	s := e.state
	if s.Blocking != BlockPurchaseDecision || s.Pending == nil {
		return fmt.Errorf("%w: no purchase or upgrade offer is open", ErrNoPendingDecision)
	}
	pd := s.Pending
	p, err := e.requireActive(op, pd.PlayerID)
	if err != nil {
		return err
	}
	sp, ok := s.Board.Space(pd.SpaceID)
	if !ok {
		return invariant(op, p.ID, pd.SpaceID, "offer references unknown space")
	}

	if !accept {
		e.recordf(LogInfo, []logOpt{forPlayer(p.ID), atSpace(sp.ID)}, "%s declined %s", p.Profile.Name, sp.Name)
		return e.endAction(ctx, true)
	}
	if p.Cash < pd.Cost {
		return fmt.Errorf("%w: %s costs %s, %s has %s", ErrUnaffordable, sp.Name, Money(pd.Cost), p.Profile.Name, Money(p.Cash))
	}
	return e.completeOffer(ctx, p, sp, pd.Kind, pd.Cost)
}

func (e *GameEngine) completeOffer(ctx context.Context, p *Player, sp *Space, kind DecisionKind, cost int64) error {
	who := []logOpt{forPlayer(p.ID), atSpace(sp.ID), withAmount(-cost)}
	p.Cash -= cost
	switch kind {
	case DecisionPurchase:
		owner := p.ID
		sp.OwnerID = &owner
		sp.UpgradeLevel = 1
		e.recordf(LogSuccess, who, "%s bought %s for %s", p.Profile.Name, sp.Name, Money(cost))
	case DecisionUpgrade:
		sp.UpgradeLevel++
		e.recordf(LogSuccess, who, "%s upgraded %s to level %d for %s", p.Profile.Name, sp.Name, sp.UpgradeLevel, Money(cost))
	default:
		return invariant("decide", p.ID, sp.ID, "unexpected offer kind %q", kind)
	}
	refreshWorth(p, e.state.Board, e.rules)
	if kind == DecisionPurchase {
		e.banter(ctx, p, SituationPurchase, sp.Name)
	}
	return e.endAction(ctx, true)
}

func (e *GameEngine) landRandomEvent(ctx context.Context, p *Player, sp *Space) error {
	band := e.drawBand()
	d := e.personalEvent(ctx, PersonalEventRequest{
		Player: p.Profile,
		Band:   band,
		Round:  e.state.Round,
		Cash:   p.Cash,
		Space:  sp.Name,
	})

	before := p.Cash
	p.Cash += d.CashDelta
	refreshWorth(p, e.state.Board, e.rules)
	d.Effects = []CashEffect{{PlayerID: p.ID, Before: before, After: p.Cash}}
	e.recordf(LogEvent, []logOpt{forPlayer(p.ID), atSpace(sp.ID), withAmount(d.CashDelta)},
		"%s: %s (%s)", p.Profile.Name, d.Title, signedMoney(d.CashDelta))

	if e.checkInsolvency(p) {
		return e.endAction(ctx, true)
	}

	e.state.Blocking = BlockEventResolution
	e.state.Pending = &PendingDecision{
		Kind:       DecisionEvent,
		PlayerID:   p.ID,
		SpaceID:    sp.ID,
		Affordable: true,
		Event:      &d,
	}
	if p.Autonomous {
		return e.Acknowledge(ctx)
	}
	return nil
}

// drawBand splits a single draw into favorable, unfavorable and severe
func (e *GameEngine) drawBand() EventBand {
	r := e.rng.Float64()
	switch {
	case r < e.rules.FavorableChance:
		return BandFavorable
	case r >= 1-e.rules.SevereChance:
		return BandSevere
	}
	return BandUnfavorable
}

// checkInsolvency eliminates a player whose cash fell below zero and
// returns their spaces to the bank. It reports whether elimination happened.
func (e *GameEngine) checkInsolvency(p *Player) bool {
	if p.Eliminated || p.Cash >= 0 {
		return false
	}
	debt := p.Cash
	p.Eliminated = true
	p.Cash = 0
	p.IncarceratedTurns = 0
	released := e.state.Board.Release(p.ID)
	refreshWorth(p, e.state.Board, e.rules)
	e.recordf(LogDanger, []logOpt{forPlayer(p.ID), withAmount(debt)},
		"%s went bankrupt owing %s; %d properties return to the bank", p.Profile.Name, Money(-debt), len(released))
	e.logger.Info("player eliminated", "player", p.ID, "name", p.Profile.Name, "released", len(released))
	e.checkConclusion()
	return true
}

// checkConclusion ends the game when at most one player remains
func (e *GameEngine) checkConclusion() bool {
	s := e.state
	if s.Status == StatusConcluded {
		return true
	}
	active := s.ActivePlayers()
	if len(active) > 1 {
		return false
	}
	s.Status = StatusConcluded
	s.Blocking = BlockNone
	s.Pending = nil
	s.PendingSteps = 0
	s.Moving = false
	winner := -1
	if len(active) == 1 {
		winner = active[0].ID
		s.WinnerID = &winner
		e.recordf(LogSuccess, []logOpt{forPlayer(winner)}, "%s wins with a net worth of %s", active[0].Profile.Name, Money(active[0].NetWorth))
	} else {
		e.record(LogInfo, "Game over with no survivors")
	}
	e.logger.Info("game concluded", "winner", winner, "round", s.Round)
	return true
}

// endAction clears the current block and, when asked, passes the turn on
func (e *GameEngine) endAction(ctx context.Context, advance bool) error {
	if e.state.Status == StatusConcluded {
		return nil
	}
	e.state.Blocking = BlockNone
	e.state.Pending = nil
	if !advance {
		return nil
	}
	return e.AdvanceTurn(ctx)
}

func signedMoney(v int64) string {
	if v > 0 {
		return "+" + Money(v)
	}
	return Money(v)
}
