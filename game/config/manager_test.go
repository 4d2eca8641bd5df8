package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/shanghai-tycoon/game/engine"
)

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Test Ring",
		Description: "Test configuration",
		Rules:       engine.DefaultRules(),
		StartSpace:  0,
		Board: []engine.SpaceConfig{
			{ID: 0, Name: "Start", Kind: engine.KindStart, Successors: []int{1}},
			{ID: 1, Name: "Lot", Kind: engine.KindOwnable, Price: 10_000_000, Successors: []int{2}},
			{ID: 2, Name: "Fork", Kind: engine.KindRestArea, Successors: []int{3, 0}},
			{ID: 3, Name: "Tax", Kind: engine.KindTaxLevy, Successors: []int{0}},
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config any) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("empty directory falls back to the built-in board", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		def := manager.GetDefault()
		if def == nil || def.Name != "shanghai" {
			t.Fatalf("Expected built-in shanghai default, got %+v", def)
		}
		if len(def.Board) != 62 {
			t.Errorf("Expected 62 spaces, got %d", len(def.Board))
		}
	})

	t.Run("shanghai file overrides the built-in", func(t *testing.T) {
		dir := t.TempDir()
		custom := createValidConfig()
		custom.Name = "My Shanghai"
		writeConfigFile(t, dir, "shanghai", custom)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "My Shanghai" {
			t.Errorf("Expected file config as default, got %q", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "ring", createValidConfig())

	invalid := createValidConfig()
	invalid.Board[1].Successors = []int{42}
	writeConfigFile(t, dir, "broken", invalid)

	if err := os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		wantErr error
		anyErr  bool
	}{
		{"valid", "ring", nil, false},
		{"with extension", "ring.json", nil, false},
		{"built-in", "shanghai", nil, false},
		{"missing", "nope", ErrConfigNotFound, true},
		{"path traversal", "../ring", ErrConfigNotFound, true},
		{"invalid board", "broken", ErrInvalidConfig, true},
		{"bad json", "garbage", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := manager.LoadConfig(tt.id)
			if !tt.anyErr {
				if err != nil {
					t.Fatalf("LoadConfig(%q) failed: %v", tt.id, err)
				}
				if config == nil {
					t.Fatal("Expected config")
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error for %q", tt.id)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestManager_LoadConfigKeepsDefaultRules(t *testing.T) {
	dir := t.TempDir()
	raw := map[string]any{
		"name":        "Sparse",
		"description": "only overrides tax",
		"rules":       map[string]any{"tax_amount": 1},
		"start_space": 0,
		"board": []map[string]any{
			{"id": 0, "name": "Start", "kind": "start", "successors": []int{1}},
			{"id": 1, "name": "Tax", "kind": "tax_levy", "successors": []int{0}},
		},
	}
	writeConfigFile(t, dir, "sparse", raw)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	config, err := manager.LoadConfig("sparse")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Rules.TaxAmount != 1 {
		t.Errorf("Expected tax override 1, got %d", config.Rules.TaxAmount)
	}
	if config.Rules.StartingCash != engine.DefaultRules().StartingCash {
		t.Errorf("Expected default starting cash, got %d", config.Rules.StartingCash)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "ring", createValidConfig())
	invalid := createValidConfig()
	invalid.Name = ""
	writeConfigFile(t, dir, "invalid", invalid)
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}

	if len(configs) != 2 {
		t.Fatalf("Expected ring and built-in shanghai, got %d configs", len(configs))
	}
	if configs[0].ConfigID != "ring" || configs[1].ConfigID != "shanghai" {
		t.Errorf("Unexpected order: %s, %s", configs[0].ConfigID, configs[1].ConfigID)
	}
	ring := configs[0]
	if ring.Filename != "ring.json" || ring.Spaces != 4 || ring.Branches != 1 {
		t.Errorf("Unexpected ring info: %+v", ring)
	}
	if ring.Characters != len(engine.DefaultCharacters()) {
		t.Errorf("Expected default character pool, got %d", ring.Characters)
	}
	if configs[1].Filename != "" || configs[1].Spaces != 62 {
		t.Errorf("Unexpected built-in info: %+v", configs[1])
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SaveConfig("mine", createValidConfig()); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "mine.json")); err != nil {
		t.Errorf("Expected file on disk: %v", err)
	}

	// a fresh manager reads it back from disk
	other, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	loaded, err := other.LoadConfig("mine")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Name != "Test Ring" {
		t.Errorf("Expected 'Test Ring', got %q", loaded.Name)
	}

	bad := createValidConfig()
	bad.Board = nil
	if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := manager.SaveConfig("../escape", createValidConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for path name, got %v", err)
	}
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "ring", createValidConfig())
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("ring"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Test Ring" {
		t.Errorf("Expected ring default, got %q", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("nope"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	changed := createValidConfig()
	changed.Description = "changed on disk"
	writeConfigFile(t, dir, "ring", changed)

	cached, _ := manager.LoadConfig("ring")
	if cached.Description == "changed on disk" {
		t.Error("Expected cached config before refresh")
	}
	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	fresh, _ := manager.LoadConfig("ring")
	if fresh.Description != "changed on disk" {
		t.Errorf("Expected refreshed config, got %q", fresh.Description)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "ring", createValidConfig())
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				if _, err := manager.LoadConfig("ring"); err != nil {
					t.Errorf("LoadConfig failed: %v", err)
				}
				return
			}
			if _, err := manager.ListConfigs(); err != nil {
				t.Errorf("ListConfigs failed: %v", err)
			}
		}(i)
	}
	wg.Wait()
}
