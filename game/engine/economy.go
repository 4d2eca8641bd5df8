package engine

import (
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DeriveRent returns floor(price × ratio)
func DeriveRent(price int64, ratio float64) int64 {
	return decimal.NewFromInt(price).Mul(decimal.NewFromFloat(ratio)).Floor().IntPart()
}

// RentFor returns the rent owed on an owned space:
// baseRent × growth^(level−1). Level 0 owes nothing.
func RentFor(sp *Space, rules Rules) int64 {
	if sp.UpgradeLevel < 1 {
		return 0
	}
	growth := decimal.NewFromFloat(rules.RentGrowthFactor)
	rent := decimal.NewFromInt(sp.BaseRent)
	for i := 1; i < sp.UpgradeLevel; i++ {
		rent = rent.Mul(growth)
	}
	return rent.Floor().IntPart()
}

// UpgradeCost returns the price of one upgrade tier
func UpgradeCost(sp *Space, rules Rules) int64 {
	return decimal.NewFromInt(sp.BasePrice).Mul(decimal.NewFromFloat(rules.UpgradeCostRatio)).Floor().IntPart()
}

// PropertyValue is the invested value of an owned space: purchase price plus
// every upgrade paid for.
func PropertyValue(sp *Space, rules Rules) int64 {
	if sp.OwnerID == nil || sp.UpgradeLevel < 1 {
		return 0
	}
	return sp.BasePrice + int64(sp.UpgradeLevel-1)*UpgradeCost(sp, rules)
}

// PercentChange returns floor(cash × pct / 100)
func PercentChange(cash int64, pct int) int64 {
	return decimal.NewFromInt(cash).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
}

// ClampMinChange enforces the signed minimum magnitude of a global event change.
// A zero percentage never moves cash.
func ClampMinChange(change int64, pct int, minimum int64) int64 {
	if pct == 0 {
		return 0
	}
	if abs64(change) < minimum {
		if pct > 0 {
			return minimum
		}
		return -minimum
	}
	return change
}

// WithinMargin reports whether cash strictly exceeds cost × margin
func WithinMargin(cash, cost int64, margin float64) bool {
	threshold := decimal.NewFromInt(cost).Mul(decimal.NewFromFloat(margin))
	return decimal.NewFromInt(cash).GreaterThan(threshold)
}

// HalveFloor returns floor(v / 2) for any sign
func HalveFloor(v int64) int64 {
	return decimal.NewFromInt(v).Div(decimal.NewFromInt(2)).Floor().IntPart()
}

// MedianCash returns the cash of the player at position n/2 once sorted ascending
func MedianCash(players []*Player) int64 {
	if len(players) == 0 {
		return 0
	}
	values := make([]int64, len(players))
	for i, p := range players {
		values[i] = p.Cash
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values[len(values)/2]
}

// refreshWorth recomputes property value and net worth from the board.
// net worth = cash + invested property value.
func refreshWorth(p *Player, b *Board, rules Rules) {
	var value int64
	owned := b.OwnedBy(p.ID)
	p.Owned = make([]int, 0, len(owned))
	for _, sp := range owned {
		value += PropertyValue(sp, rules)
		p.Owned = append(p.Owned, sp.ID)
	}
	p.PropertyValue = value
	p.NetWorth = p.Cash + value
}

// Money formats an amount for log messages
func Money(v int64) string {
	return humanize.Comma(v)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
