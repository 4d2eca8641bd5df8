// Package config provides configuration management for Shanghai Tycoon.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation through engine.ValidateGameConfig
//   - The built-in Shanghai board as the default
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Each file in the config directory is one engine.GameConfig: a name, a
// description, rule overrides (missing rules keep their defaults), the start
// space and the board as a list of spaces with their successors. A space with
// more than one successor is a fork.
//
//	{
//	  "name": "ring",
//	  "description": "Compact loop",
//	  "rules": {"starting_cash": 50000000},
//	  "start_space": 0,
//	  "board": [
//	    {"id": 0, "name": "Start", "kind": "start", "successors": [1]},
//	    {"id": 1, "name": "Lot", "kind": "ownable", "price": 10000000, "successors": [0]}
//	  ]
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameConfig, err := manager.LoadConfig("ring")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
