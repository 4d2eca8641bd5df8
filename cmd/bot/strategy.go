package main

import (
	"fmt"
	"sort"

	"github.com/wricardo/shanghai-tycoon/game/engine"
)

// lookahead is how many spaces past a fork a strategy inspects
const lookahead = 6

// Strategy makes the bot's choices. Rolling and acknowledging need no
// judgement, so only offers and forks are delegated.
type Strategy interface {
	Name() string
	Decide(state *engine.GameState, me *engine.Player, offer *engine.PendingDecision) bool
	Branch(state *engine.GameState, me *engine.Player, options []int) int
}

// Landlord buys everything it can afford and heads for unowned land
type Landlord struct{}

func (Landlord) Name() string { return "landlord" }

func (Landlord) Decide(_ *engine.GameState, _ *engine.Player, offer *engine.PendingDecision) bool {
	return offer.Affordable
}

func (Landlord) Branch(state *engine.GameState, me *engine.Player, options []int) int {
	return bestRoute(state.Board, options, func(sp *engine.Space) int {
		switch {
		case sp.Kind != engine.KindOwnable:
			return 0
		case sp.OwnerID == nil:
			return 2
		case *sp.OwnerID == me.ID:
			return 1
		default:
			return -1
		}
	})
}

// Saver keeps a cash reserve and avoids other players' property
type Saver struct {
	Reserve int64
}

func (s Saver) Name() string { return fmt.Sprintf("saver(%s)", engine.Money(s.Reserve)) }

func (s Saver) Decide(_ *engine.GameState, me *engine.Player, offer *engine.PendingDecision) bool {
	return offer.Affordable && me.Cash-offer.Cost >= s.Reserve
}

func (s Saver) Branch(state *engine.GameState, me *engine.Player, options []int) int {
	return bestRoute(state.Board, options, func(sp *engine.Space) int {
		switch sp.Kind {
		case engine.KindBankBonus:
			return 2
		case engine.KindTaxLevy, engine.KindIncarceration:
			return -2
		case engine.KindOwnable:
			if sp.OwnerID != nil && *sp.OwnerID != me.ID {
				return -(sp.UpgradeLevel + 1)
			}
		}
		return 0
	})
}

// bestRoute scores the next few spaces behind each option and returns the
// highest scoring one. Ties go to the option listed first.
func bestRoute(board *engine.Board, options []int, score func(*engine.Space) int) int {
	if len(options) == 0 {
		return -1
	}
	scores := make(map[int]int, len(options))
	for _, opt := range options {
		scores[opt] = routeScore(board, opt, score)
	}
	ranked := append([]int(nil), options...)
	sort.SliceStable(ranked, func(i, j int) bool { return scores[ranked[i]] > scores[ranked[j]] })
	return ranked[0]
}

// routeScore walks the first successor from id, stopping at start
func routeScore(board *engine.Board, id int, score func(*engine.Space) int) int {
	total := 0
	for i := 0; i < lookahead; i++ {
		sp, ok := board.Space(id)
		if !ok || sp.Kind == engine.KindStart {
			break
		}
		total += score(sp)
		if len(sp.Successors) == 0 {
			break
		}
		id = sp.Successors[0]
	}
	return total
}

func strategyByName(name string, reserve int64) (Strategy, error) {
	switch name {
	case "landlord":
		return Landlord{}, nil
	case "saver":
		return Saver{Reserve: reserve}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (landlord, saver)", name)
	}
}
