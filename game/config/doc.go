// Package config provides puzzle definition management for the word search game.
//
// The config package handles:
//   - Loading puzzle definitions from JSON files (Manager)
//   - Storing definitions in a SQLite catalog (SQLiteStore)
//   - Default definition selection and listing
//   - Process settings from environment variables (Settings)
//
// Definition Format:
//
// A definition names a word list, an optional hint per word, the grid size,
// a locale for the built-in messages and optional message overrides:
//
//	{
//	  "name": "Virtues",
//	  "description": "Find the virtues",
//	  "grid_size": 10,
//	  "words": ["FAITH", "HOPE", "LOVE"],
//	  "hints": {"FAITH": "Trusting in what we cannot see"},
//	  "locale": "en"
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	puzzle, err := manager.LoadConfig("virtues")
//	defaultPuzzle := manager.GetDefault()
//	infos, err := manager.ListConfigs()
//
// Both Manager and SQLiteStore satisfy service.ConfigManager.
package config
