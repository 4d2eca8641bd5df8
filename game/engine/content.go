package engine

import (
	"context"
	"fmt"
)

// EventBand is the severity band the engine draws before asking for a personal event
type EventBand string

const (
	BandFavorable   EventBand = "favorable"
	BandUnfavorable EventBand = "unfavorable"
	BandSevere      EventBand = "severe"
)

// GlobalTarget is the cohort a global economic event applies to
type GlobalTarget string

const (
	TargetAll         GlobalTarget = "all"
	TargetBelowMedian GlobalTarget = "below_median_cash"
	TargetAboveMedian GlobalTarget = "above_median_cash"
	TargetLandlords   GlobalTarget = "landlords"
	TargetOddID       GlobalTarget = "odd_id"
)

// PartialTargets lists the cohorts a partial global event may pick
var PartialTargets = []GlobalTarget{TargetBelowMedian, TargetAboveMedian, TargetLandlords, TargetOddID}

// CatastropheAction is one of the fixed catastrophic effects
type CatastropheAction string

const (
	ResetCashToFloor   CatastropheAction = "reset_cash_to_floor"
	ZeroPropertyLevels CatastropheAction = "zero_property_levels"
	ShuffleCash        CatastropheAction = "shuffle_cash"
	HalveCash          CatastropheAction = "halve_cash"
)

// CatastropheActions is the taxonomy the engine draws from
var CatastropheActions = []CatastropheAction{ResetCashToFloor, ZeroPropertyLevels, ShuffleCash, HalveCash}

// Event categories carried by descriptors
const (
	CategoryPersonal    = "personal"
	CategoryGlobal      = "global"
	CategoryCatastrophe = "catastrophe"
)

// CashEffect records a cash change applied by an event
type CashEffect struct {
	PlayerID int   `json:"player_id"`
	Before   int64 `json:"before"`
	After    int64 `json:"after"`
}

// EventDescriptor is the flavor plus numeric effect of an event
type EventDescriptor struct {
	Category    string            `json:"category"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Band        EventBand         `json:"band,omitempty"`
	CashDelta   int64             `json:"cash_delta,omitempty"`
	Target      GlobalTarget      `json:"target,omitempty"`
	Percentage  int               `json:"percentage,omitempty"`
	Action      CatastropheAction `json:"action,omitempty"`
	Effects     []CashEffect      `json:"effects,omitempty"`
	Fallback    bool              `json:"fallback,omitempty"`
}

func (d EventDescriptor) clone() EventDescriptor {
	d.Effects = append([]CashEffect(nil), d.Effects...)
	return d
}

// PersonalEventRequest asks for a random-event space descriptor
type PersonalEventRequest struct {
	Player Profile   `json:"player"`
	Band   EventBand `json:"band"`
	Round  int       `json:"round"`
	Cash   int64     `json:"cash"`
	Space  string    `json:"space"`
}

// GlobalEventRequest asks for a global economic event
type GlobalEventRequest struct {
	Round   int  `json:"round"`
	Partial bool `json:"partial"`
}

// CatastropheRequest asks for the flavor of an already chosen catastrophe
type CatastropheRequest struct {
	Round  int               `json:"round"`
	Action CatastropheAction `json:"action"`
}

// BanterRequest asks for a one-line remark from a character
type BanterRequest struct {
	Speaker   Profile `json:"speaker"`
	Situation string  `json:"situation"`
	Subject   string  `json:"subject,omitempty"`
}

// Banter situations
const (
	SituationPurchase    = "purchase"
	SituationCollectRent = "collect_rent"
)

// ContentProvider supplies narrative flavor. The engine decides every
// numeric effect band itself; implementations may fail at any time.
type ContentProvider interface {
	PersonalEvent(ctx context.Context, req PersonalEventRequest) (EventDescriptor, error)
	GlobalEvent(ctx context.Context, req GlobalEventRequest) (EventDescriptor, error)
	Catastrophe(ctx context.Context, req CatastropheRequest) (EventDescriptor, error)
	Banter(ctx context.Context, req BanterRequest) (string, error)
}

// Band ranges for personal event cash deltas
var bandRanges = map[EventBand][2]int64{
	BandFavorable:   {1_000_000, 10_000_000},
	BandUnfavorable: {-5_000_000, -500_000},
	BandSevere:      {-50_000_000, -10_000_000},
}

// BandRange returns the inclusive delta range allowed for a band
func BandRange(band EventBand) (lo, hi int64) {
	r := bandRanges[band]
	return r[0], r[1]
}

// FallbackContent is the deterministic provider used whenever the real one
// is missing or fails.
type FallbackContent struct{}

func (FallbackContent) PersonalEvent(_ context.Context, req PersonalEventRequest) (EventDescriptor, error) {
	d := EventDescriptor{Category: CategoryPersonal, Band: req.Band, Fallback: true}
	switch req.Band {
	case BandSevere:
		d.Title = "Market Crash"
		d.Description = "A risky bet goes badly wrong."
		d.CashDelta = -10_000_000
	case BandUnfavorable:
		d.Title = "Parking Ticket"
		d.Description = "A fine for blocking the street."
		d.CashDelta = -1_000_000
	default:
		d.Band = BandFavorable
		d.Title = "Lucky Find"
		d.Description = "An old lottery ticket turns out to be a winner."
		d.CashDelta = 2_000_000
	}
	return d, nil
}

func (FallbackContent) GlobalEvent(_ context.Context, req GlobalEventRequest) (EventDescriptor, error) {
	return EventDescriptor{
		Category:    CategoryGlobal,
		Title:       "Market Adjustment",
		Description: "Markets drift upward across the city.",
		Target:      TargetAll,
		Percentage:  5,
		Fallback:    true,
	}, nil
}

var catastropheTitles = map[CatastropheAction][2]string{
	ResetCashToFloor:   {"Bank Run", "Every account is frozen down to pocket money."},
	ZeroPropertyLevels: {"Typhoon", "Storm damage strips every upgrade from the city."},
	ShuffleCash:        {"Ledger Mix-up", "A banking glitch swaps fortunes around."},
	HalveCash:          {"Super Tax", "An emergency levy takes half of everyone's cash."},
}

func (FallbackContent) Catastrophe(_ context.Context, req CatastropheRequest) (EventDescriptor, error) {
	t, ok := catastropheTitles[req.Action]
	if !ok {
		t = catastropheTitles[HalveCash]
	}
	return EventDescriptor{
		Category:    CategoryCatastrophe,
		Title:       t[0],
		Description: t[1],
		Action:      req.Action,
		Fallback:    true,
	}, nil
}

func (FallbackContent) Banter(_ context.Context, req BanterRequest) (string, error) {
	if req.Speaker.Catchphrase != "" {
		return req.Speaker.Catchphrase, nil
	}
	return "...", nil
}

// normalizePersonal clamps a provider reply into the requested band
func normalizePersonal(d EventDescriptor, req PersonalEventRequest) (EventDescriptor, error) {
	if d.Title == "" {
		return d, fmt.Errorf("personal event: empty title")
	}
	lo, hi := BandRange(req.Band)
	if d.CashDelta < lo {
		d.CashDelta = lo
	}
	if d.CashDelta > hi {
		d.CashDelta = hi
	}
	d.Category = CategoryPersonal
	d.Band = req.Band
	return d, nil
}

// normalizeGlobal forces the target to all for a non-partial event, maps
// unknown targets to all and clamps the percentage.
func normalizeGlobal(d EventDescriptor, req GlobalEventRequest, maxPct int) (EventDescriptor, error) {
	if d.Title == "" {
		return d, fmt.Errorf("global event: empty title")
	}
	known := d.Target == TargetAll
	for _, t := range PartialTargets {
		if d.Target == t {
			known = true
		}
	}
	if !req.Partial || !known {
		d.Target = TargetAll
	}
	if d.Percentage > maxPct {
		d.Percentage = maxPct
	}
	if d.Percentage < -maxPct {
		d.Percentage = -maxPct
	}
	d.Category = CategoryGlobal
	return d, nil
}
