package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// Rules holds every economic and pacing constant of a game
type Rules struct {
	StartingCash          int64   `json:"starting_cash"`
	PassStartBonus        int64   `json:"pass_start_bonus"`
	RentRatio             float64 `json:"rent_ratio"`
	RentGrowthFactor      float64 `json:"rent_growth_factor"`
	UpgradeCostRatio      float64 `json:"upgrade_cost_ratio"`
	MaxUpgradeLevel       int     `json:"max_upgrade_level"`
	PurchaseMargin        float64 `json:"purchase_margin"`
	UpgradeMargin         float64 `json:"upgrade_margin"`
	CharismaThreshold     int     `json:"charisma_threshold"`
	CharismaHalvingChance float64 `json:"charisma_halving_chance"`
	TaxAmount             int64   `json:"tax_amount"`
	BankBonus             int64   `json:"bank_bonus"`
	IncarcerationTurns    int     `json:"incarceration_turns"`
	DiceSides             int     `json:"dice_sides"`
	FavorableChance       float64 `json:"favorable_chance"`
	SevereChance          float64 `json:"severe_chance"`
	GlobalEventPeriod     int     `json:"global_event_period"`
	CatastropheChance     float64 `json:"catastrophe_chance"`
	PartialTargetChance   float64 `json:"partial_target_chance"`
	GlobalMinChange       int64   `json:"global_min_change"`
	MaxGlobalPercentage   int     `json:"max_global_percentage"`
	LandlordThreshold     int     `json:"landlord_threshold"`
	CashFloor             int64   `json:"cash_floor"`
}

// DefaultRules returns the standard rule set
func DefaultRules() Rules {
	return Rules{
		StartingCash:          100_000_000,
		PassStartBonus:        10_000_000,
		RentRatio:             0.15,
		RentGrowthFactor:      2.2,
		UpgradeCostRatio:      0.5,
		MaxUpgradeLevel:       5,
		PurchaseMargin:        1.2,
		UpgradeMargin:         1.5,
		CharismaThreshold:     90,
		CharismaHalvingChance: 0.3,
		TaxAmount:             5_000_000,
		BankBonus:             5_000_000,
		IncarcerationTurns:    0,
		DiceSides:             6,
		FavorableChance:       0.70,
		SevereChance:          0.05,
		GlobalEventPeriod:     20,
		CatastropheChance:     0.05,
		PartialTargetChance:   0.3,
		GlobalMinChange:       2_000_000,
		MaxGlobalPercentage:   30,
		LandlordThreshold:     3,
		CashFloor:             100_000,
	}
}

// SpaceConfig describes one space in a board layout
type SpaceConfig struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Kind       SpaceKind `json:"kind"`
	District   string    `json:"district,omitempty"`
	Successors []int     `json:"successors"`
	Price      int64     `json:"price,omitempty"`
	Rent       int64     `json:"rent,omitempty"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Rules       Rules         `json:"rules"`
	StartSpace  int           `json:"start_space"`
	Board       []SpaceConfig `json:"board"`
	Characters  []Profile     `json:"characters,omitempty"`
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if err := validateRules(config.Rules); err != nil {
		return err
	}
	if err := ValidateBoard(config.Board, config.StartSpace); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	ids := make(map[string]bool, len(config.Characters))
	for i, c := range config.Characters {
		if c.CharacterID == "" || c.Name == "" {
			return fmt.Errorf("config validation: character %d needs an id and a name", i)
		}
		if ids[c.CharacterID] {
			return fmt.Errorf("config validation: duplicate character id %q", c.CharacterID)
		}
		ids[c.CharacterID] = true
	}
	return nil
}

func validateRules(r Rules) error {
	switch {
	case r.StartingCash <= 0:
		return fmt.Errorf("config validation: starting_cash must be positive")
	case r.PassStartBonus < 0 || r.TaxAmount < 0 || r.BankBonus < 0 || r.GlobalMinChange < 0 || r.CashFloor < 0:
		return fmt.Errorf("config validation: bonus, tax, minimum change and cash floor amounts cannot be negative")
	case r.RentRatio <= 0:
		return fmt.Errorf("config validation: rent_ratio must be positive")
	case r.RentGrowthFactor < 1:
		return fmt.Errorf("config validation: rent_growth_factor must be at least 1, got %v", r.RentGrowthFactor)
	case r.UpgradeCostRatio <= 0:
		return fmt.Errorf("config validation: upgrade_cost_ratio must be positive")
	case r.MaxUpgradeLevel < 1:
		return fmt.Errorf("config validation: max_upgrade_level must be at least 1")
	case r.PurchaseMargin < 0 || r.UpgradeMargin < 0:
		return fmt.Errorf("config validation: decision margins cannot be negative")
	case r.IncarcerationTurns < 0:
		return fmt.Errorf("config validation: incarceration_turns cannot be negative")
	case r.DiceSides < 1:
		return fmt.Errorf("config validation: dice_sides must be at least 1")
	case r.GlobalEventPeriod < 1:
		return fmt.Errorf("config validation: global_event_period must be at least 1")
	case r.MaxGlobalPercentage < 0 || r.MaxGlobalPercentage > 100:
		return fmt.Errorf("config validation: max_global_percentage must be between 0 and 100")
	case r.LandlordThreshold < 0:
		return fmt.Errorf("config validation: landlord_threshold cannot be negative")
	}
	for name, p := range map[string]float64{
		"charisma_halving_chance": r.CharismaHalvingChance,
		"favorable_chance":        r.FavorableChance,
		"severe_chance":           r.SevereChance,
		"catastrophe_chance":      r.CatastropheChance,
		"partial_target_chance":   r.PartialTargetChance,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("config validation: %s must be between 0 and 1, got %v", name, p)
		}
	}
	if r.FavorableChance+r.SevereChance > 1 {
		return fmt.Errorf("config validation: favorable_chance + severe_chance cannot exceed 1")
	}
	return nil
}

// ParseGameConfig decodes a JSON config. Rule fields missing from the
// document keep their default values.
func ParseGameConfig(data []byte) (*GameConfig, error) {
	config := GameConfig{Rules: DefaultRules()}
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	config, err := ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filename, err)
	}
	return config, nil
}

// CharacterPool returns the config's characters or the built-in roster
func (c *GameConfig) CharacterPool() []Profile {
	if len(c.Characters) > 0 {
		return c.Characters
	}
	return DefaultCharacters()
}
