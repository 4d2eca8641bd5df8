package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/shanghai-tycoon/game/engine"
)

// forkedRing is a six-space board: 0 start, 1 forks to 2 or 4, both
// routes rejoin at 3 which leads back to start.
func forkedRing() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Forked Ring",
		Description: "Tiny test board",
		Rules:       engine.DefaultRules(),
		StartSpace:  0,
		Board: []engine.SpaceConfig{
			{ID: 0, Name: "Start", Kind: engine.KindStart, Successors: []int{1}},
			{ID: 1, Name: "Fork", Kind: engine.KindOwnable, District: "North", Price: 1_000_000, Successors: []int{2, 4}},
			{ID: 2, Name: "Short", Kind: engine.KindOwnable, District: "North", Price: 2_000_000, Successors: []int{3}},
			{ID: 3, Name: "Chance", Kind: engine.KindRandomEvent, Successors: []int{0}},
			{ID: 4, Name: "Long", Kind: engine.KindOwnable, District: "South", Price: 3_000_000, Successors: []int{5}},
			{ID: 5, Name: "Tax Office", Kind: engine.KindTaxLevy, Successors: []int{3}},
		},
	}
}

func writeConfig(t *testing.T, dir, name string, v any) string {
	t.Helper()
	var data []byte
	switch c := v.(type) {
	case string:
		data = []byte(c)
	default:
		var err error
		data, err = json.Marshal(c)
		if err != nil {
			t.Fatalf("Failed to marshal config: %v", err)
		}
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func contains(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "ring.json", forkedRing())

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "ring.json" {
		t.Errorf("Expected file name ring.json, got %s", result.File)
	}

	for _, want := range []string{
		"Name: Forked Ring",
		"Spaces: 6, forks: 1",
		"Lap: 4 to 5 spaces",
		"Ownable: 3 worth 6,000,000",
		"Districts: North (2), South (1)",
	} {
		if !contains(result.Info, want) {
			t.Errorf("Expected info %q, got %v", want, result.Info)
		}
	}
}

func TestValidateConfig_Warnings(t *testing.T) {
	cfg := forkedRing()
	cfg.Characters = []engine.Profile{
		{CharacterID: "a", Name: "A"},
		{CharacterID: "b", Name: "B"},
	}
	path := writeConfig(t, t.TempDir(), "ring.json", cfg)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Warnings should not invalidate a config: %v", result.Errors)
	}
	if !contains(result.Warnings, "within one roll") {
		t.Errorf("Expected a short lap warning, got %v", result.Warnings)
	}
	if !contains(result.Warnings, "Only 2 characters") {
		t.Errorf("Expected a small pool warning, got %v", result.Warnings)
	}
}

func TestValidateConfig_NoOwnableWarning(t *testing.T) {
	cfg := forkedRing()
	for i := range cfg.Board {
		if cfg.Board[i].Kind == engine.KindOwnable {
			cfg.Board[i].Kind = engine.KindRestArea
			cfg.Board[i].Price = 0
		}
	}
	result := validateConfig(writeConfig(t, t.TempDir(), "bare.json", cfg))

	if !result.Valid {
		t.Fatalf("Expected valid config, got %v", result.Errors)
	}
	if !contains(result.Warnings, "no ownable spaces") {
		t.Errorf("Expected no-ownable warning, got %v", result.Warnings)
	}
}

func TestValidateConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "broken.json", `{"name": "test", invalid json}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid result for malformed JSON")
	}
	if len(result.Errors) != 1 {
		t.Errorf("Expected one error, got %v", result.Errors)
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "missing.json"))
	if result.Valid {
		t.Error("Expected invalid result for a missing file")
	}
	if !contains(result.Errors, "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateConfig_BoardErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*engine.GameConfig)
		want   string
	}{
		{
			name:   "unknown successor",
			mutate: func(c *engine.GameConfig) { c.Board[2].Successors = []int{42} },
			want:   "unknown space 42",
		},
		{
			name: "unreachable space",
			mutate: func(c *engine.GameConfig) {
				c.Board = append(c.Board, engine.SpaceConfig{ID: 6, Name: "Island", Kind: engine.KindRestArea, Successors: []int{0}})
			},
			want: "unreachable",
		},
		{
			name:   "two starts",
			mutate: func(c *engine.GameConfig) { c.Board[3].Kind = engine.KindStart },
			want:   "exactly one start",
		},
		{
			name:   "loop that skips start",
			mutate: func(c *engine.GameConfig) { c.Board[5].Successors = []int{4} },
			want:   "never returns to start",
		},
		{
			name:   "bad rules",
			mutate: func(c *engine.GameConfig) { c.Rules.DiceSides = 0 },
			want:   "dice_sides",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := forkedRing()
			tt.mutate(cfg)
			result := validateConfig(writeConfig(t, t.TempDir(), "bad.json", cfg))

			if result.Valid {
				t.Fatal("Expected invalid result")
			}
			if !contains(result.Errors, tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestLapLengths_DefaultBoard(t *testing.T) {
	cfg := engine.DefaultGameConfig()
	byID := make(map[int]engine.SpaceConfig, len(cfg.Board))
	for _, sc := range cfg.Board {
		byID[sc.ID] = sc
	}

	shortest, longest := lapLengths(byID, cfg.StartSpace)
	if longest != 56 {
		t.Errorf("Expected the outer loop to be 56 spaces, got %d", longest)
	}
	if shortest != 49 {
		t.Errorf("Expected the shortcut lap to be 49 spaces, got %d", shortest)
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "ring.json", forkedRing())
	writeConfig(t, dir, "shanghai.json", engine.DefaultGameConfig())
	writeConfig(t, dir, "notes.txt", "ignored")

	var out bytes.Buffer
	ok, err := validateDir(dir, &out)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if !ok {
		t.Errorf("Expected all configs to be valid:\n%s", out.String())
	}
	for _, want := range []string{"ring.json", "shanghai.json", "All configurations are valid"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output:\n%s", want, out.String())
		}
	}
	if strings.Contains(out.String(), "notes.txt") {
		t.Error("Non-JSON files should be skipped")
	}
}

func TestValidateDir_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "ring.json", forkedRing())
	writeConfig(t, dir, "broken.json", `{}`)

	var out bytes.Buffer
	ok, err := validateDir(dir, &out)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if ok {
		t.Error("Expected an invalid result")
	}
	if !strings.Contains(out.String(), "❌ INVALID") {
		t.Errorf("Expected invalid marker in output:\n%s", out.String())
	}
}

func TestValidateDir_Empty(t *testing.T) {
	if _, err := validateDir(t.TempDir(), &bytes.Buffer{}); err == nil {
		t.Error("Expected an error for a directory without configs")
	}
}

func TestCommand(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "ring.json", forkedRing())

	var out bytes.Buffer
	if err := newCommand(&out).Run(context.Background(), []string{"validate", dir}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "✅ VALID") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}

	writeConfig(t, dir, "broken.json", `{}`)
	err := newCommand(&bytes.Buffer{}).Run(context.Background(), []string{"validate", "--config-dir", dir})
	if !errors.Is(err, errInvalid) {
		t.Errorf("Expected errInvalid, got %v", err)
	}
}

func TestShippedConfigs(t *testing.T) {
	var out bytes.Buffer
	ok, err := validateDir(filepath.Join("..", "..", "configs"), &out)
	if err != nil {
		t.Fatalf("validateDir failed: %v", err)
	}
	if !ok {
		t.Errorf("Shipped configs should be valid:\n%s", out.String())
	}
}
