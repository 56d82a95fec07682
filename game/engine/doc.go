// Package engine provides the core game logic for the word search game.
//
// The engine package implements the puzzle mechanics including:
//   - Random placement of words on a square letter grid
//   - The drag-to-select state machine (engage, enter, commit, leave)
//   - Bidirectional, case-insensitive word matching
//   - Found-word tracking, highlighting and completion detection
//   - Configuration loading and validation
//
// Core Types:
//
// Generate builds a Puzzle (grid plus placed words) from a word list. A
// Selector tracks the cells a player is dragging across. GameEngine ties both
// together for one play session and is driven by the host through
// EngageCell, EnterCell, CommitSelection and LeaveGrid. PuzzleConfig defines
// the word list, hints and messages and is loaded from JSON files.
//
// Usage:
//
//	config, err := engine.LoadPuzzleConfig("configs/virtues.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Drag from (0,0) to (0,3) and release
//	gameEngine.EngageCell(0, 0)
//	for col := 1; col <= 3; col++ {
//		gameEngine.EnterCell(0, col)
//	}
//	events := gameEngine.CommitSelection()
//
// Game Rules:
//
// Words are hidden left-to-right, top-to-bottom or along either downward
// diagonal. A player selects a straight run of at least two cells; the run
// matches a hidden word when its letters spell the word forwards or
// backwards. The puzzle is complete when every placed word has been found.
// Words that could not be placed are dropped and never count toward
// completion. The engine does no locking; callers serialize access per
// session.
package engine
