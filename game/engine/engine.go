package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/word-search-game/game/i18n"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() *GameState
	IsCompleted() bool
	GetSeed() int64

	// Selection input
	EngageCell(row, col int) bool
	EnterCell(row, col int) bool
	CommitSelection() []Event
	LeaveGrid()
	SelectPath(cells []Position) []Event
	GetSelection() []Position
	GetSelectionState() SelectionState

	// Puzzle
	GetPuzzle() *Puzzle
	GetPlaced() []PlacedWord
	GetFoundWords() []string
	HighlightedCells() []Position
	IsCellHighlighted(row, col int) bool

	// Configuration
	GetConfig() *PuzzleConfig

	// Events
	GetEventLog() []Event
	Subscribe(fn func(Event))
}

var _ Engine = (*GameEngine)(nil)

// GameEngine implements the Engine interface for a single play session.
// It is not safe for concurrent use.
type GameEngine struct {
	config    *PuzzleConfig
	seed      int64
	round     int
	createdAt time.Time

	puzzle        *Puzzle
	selector      *Selector
	found         mapset.Set[string]
	completed     bool
	message       string
	lastCandidate string

	events    []Event
	listeners []func(Event)
}

// NewEngine creates a new game engine with a randomly seeded puzzle
func NewEngine(config *PuzzleConfig) (*GameEngine, error) {
	return NewEngineWithSeed(config, NewSeed())
}

// NewEngineWithSeed creates a new game engine whose puzzle is generated from seed
func NewEngineWithSeed(config *PuzzleConfig, seed int64) (*GameEngine, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := ValidatePuzzleConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{
		config:    config.WithDefaults(),
		createdAt: time.Now(),
	}
	engine.start(seed)
	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in puzzle
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return engine
}

func (e *GameEngine) start(seed int64) {
	e.seed = seed
	e.round++
	e.puzzle = GenerateWithHints(e.config.Words, e.config.Hints, e.config.GridSize, NewRand(seed))
	e.selector = NewSelector(e.puzzle.Grid.Size())
	e.found = mapset.New[string]()
	e.completed = false
	e.lastCandidate = ""
	if len(e.puzzle.Placed) == 0 {
		e.message = i18n.Get(e.config.Locale, i18n.NoWordsPlaced)
	} else {
		e.message = e.config.Messages.Welcome
	}
}

// Reset regenerates the puzzle with a fresh seed. The event log is kept
// across rounds.
func (e *GameEngine) Reset() *GameState {
	return e.ResetWithSeed(NewSeed())
}

// ResetWithSeed regenerates the puzzle from seed
func (e *GameEngine) ResetWithSeed(seed int64) *GameState {
	e.start(seed)
	return e.GetState()
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	words := make([]WordStatus, 0, len(e.puzzle.Placed))
	for _, p := range e.puzzle.Placed {
		status := WordStatus{Word: p.Word, Hint: p.Hint}
		if e.found.Has(p.Word) {
			start, end := p.Start, p.End
			status.Found = true
			status.Start = &start
			status.End = &end
		}
		words = append(words, status)
	}

	found := e.GetFoundWords()
	var dropped []string
	if len(e.puzzle.Dropped) > 0 {
		dropped = append(dropped, e.puzzle.Dropped...)
	}

	return &GameState{
		Grid:           e.puzzle.Grid.Rows(),
		GridSize:       e.puzzle.Grid.Size(),
		Words:          words,
		FoundWords:     found,
		WordsFound:     len(found),
		WordsTotal:     len(e.puzzle.Placed),
		Dropped:        dropped,
		Selection:      e.selector.Cells(),
		SelectionState: e.selector.State().String(),
		Highlighted:    e.HighlightedCells(),
		Completed:      e.completed,
		Message:        e.message,
		LastCandidate:  e.lastCandidate,
		ConfigName:     e.config.Name,
		Locale:         e.config.Locale,
		Seed:           e.seed,
		Round:          e.round,
		CreatedAt:      e.createdAt,
	}
}

// IsCompleted returns whether every placed word has been found
func (e *GameEngine) IsCompleted() bool {
	return e.completed
}

// GetSeed returns the seed of the current puzzle
func (e *GameEngine) GetSeed() int64 {
	return e.seed
}

// EngageCell starts a selection at (row, col)
func (e *GameEngine) EngageCell(row, col int) bool {
	return e.selector.Engage(Position{Row: row, Col: col})
}

// EnterCell extends the selection with (row, col) when it is on the grid,
// not yet selected and the next step along the selection's direction
func (e *GameEngine) EnterCell(row, col int) bool {
	return e.selector.Enter(Position{Row: row, Col: col})
}

// CommitSelection ends the selection and checks it against the placed words
func (e *GameEngine) CommitSelection() []Event {
	cells, ok := e.selector.Commit()
	if !ok {
		return nil
	}
	return e.evaluate(cells)
}

// LeaveGrid discards the selection in progress
func (e *GameEngine) LeaveGrid() {
	e.selector.Leave()
}

// SelectPath engages the first cell, enters the rest and commits
func (e *GameEngine) SelectPath(cells []Position) []Event {
	if len(cells) == 0 {
		return nil
	}
	if !e.selector.Engage(cells[0]) {
		return nil
	}
	for _, c := range cells[1:] {
		e.selector.Enter(c)
	}
	return e.CommitSelection()
}

// GetSelection returns the cells currently selected
func (e *GameEngine) GetSelection() []Position {
	return e.selector.Cells()
}

// GetSelectionState returns whether a drag is in progress
func (e *GameEngine) GetSelectionState() SelectionState {
	return e.selector.State()
}

func (e *GameEngine) evaluate(cells []Position) []Event {
	candidate := e.puzzle.Grid.Word(cells)
	e.lastCandidate = candidate

	// Every forward reading is tried before any reversed one.
	alreadyFound := ""
	for _, reading := range []string{candidate, Reverse(candidate)} {
		for _, p := range e.puzzle.Placed {
			if !strings.EqualFold(p.Word, reading) {
				continue
			}
			if e.found.Has(p.Word) {
				if alreadyFound == "" {
					alreadyFound = p.Word
				}
				continue
			}
			return e.markFound(p)
		}
	}

	if alreadyFound != "" {
		e.message = fmt.Sprintf(e.config.Messages.WordAlreadyFound, alreadyFound)
	} else {
		e.message = e.config.Messages.NoMatch
	}
	return nil
}

func (e *GameEngine) markFound(p PlacedWord) []Event {
	e.found.Put(p.Word)
	e.message = fmt.Sprintf(e.config.Messages.WordFound, p.Word)
	events := []Event{e.emit(Event{
		Type:    EventWordFound,
		Word:    p.Word,
		Message: e.message,
		Cells:   p.Cells(),
	})}

	if !e.completed && len(e.puzzle.Placed) > 0 && e.found.Size() == len(e.puzzle.Placed) {
		e.completed = true
		e.message = e.config.Messages.Completed
		events = append(events, e.emit(Event{
			Type:    EventPuzzleCompleted,
			Message: e.message,
		}))
	}
	return events
}

func (e *GameEngine) emit(ev Event) Event {
	ev.Round = e.round
	ev.Timestamp = time.Now()
	e.events = append(e.events, ev)
	for _, fn := range e.listeners {
		fn(ev)
	}
	return ev
}

// GetPuzzle returns the generated puzzle
func (e *GameEngine) GetPuzzle() *Puzzle {
	return e.puzzle
}

// GetPlaced returns the words that made it onto the grid
func (e *GameEngine) GetPlaced() []PlacedWord {
	placed := make([]PlacedWord, len(e.puzzle.Placed))
	copy(placed, e.puzzle.Placed)
	return placed
}

// GetFoundWords returns the found words in placement order
func (e *GameEngine) GetFoundWords() []string {
	found := make([]string, 0, e.found.Size())
	for _, p := range e.puzzle.Placed {
		if e.found.Has(p.Word) {
			found = append(found, p.Word)
		}
	}
	return found
}

// HighlightedCells returns the cells of every found word
func (e *GameEngine) HighlightedCells() []Position {
	seen := mapset.New[Position]()
	cells := []Position{}
	for _, p := range e.puzzle.Placed {
		if !e.found.Has(p.Word) {
			continue
		}
		for _, c := range p.Cells() {
			if !seen.Has(c) {
				seen.Put(c)
				cells = append(cells, c)
			}
		}
	}
	return cells
}

// IsCellHighlighted returns whether (row, col) belongs to a found word
func (e *GameEngine) IsCellHighlighted(row, col int) bool {
	target := Position{Row: row, Col: col}
	for _, p := range e.puzzle.Placed {
		if !e.found.Has(p.Word) {
			continue
		}
		for _, c := range p.Cells() {
			if c == target {
				return true
			}
		}
	}
	return false
}

// GetConfig returns the puzzle configuration with defaults applied
func (e *GameEngine) GetConfig() *PuzzleConfig {
	return e.config
}

// GetEventLog returns every event emitted since the engine was created
func (e *GameEngine) GetEventLog() []Event {
	events := make([]Event, len(e.events))
	copy(events, e.events)
	return events
}

// Subscribe registers fn to be called for every emitted event
func (e *GameEngine) Subscribe(fn func(Event)) {
	if fn != nil {
		e.listeners = append(e.listeners, fn)
	}
}
