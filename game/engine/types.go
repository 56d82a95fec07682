package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// Validation constants
const (
	MinGridSize          = 4
	MaxGridSize          = 30
	MaxWords             = 40
	MinSelectionLength   = 2
	MaxPlacementAttempts = 100
	WebSocketBufferSize  = 256
)

// Position is a cell coordinate on the grid. Row 0 is the top row.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Step returns the position n cells away from p along d.
func (p Position) Step(d Direction, n int) Position {
	return Position{Row: p.Row + d.DR*n, Col: p.Col + d.DC*n}
}

// Direction is a unit step between adjacent cells.
type Direction struct {
	DR int `json:"dr"`
	DC int `json:"dc"`
}

// Compass directions
var (
	Right     = Direction{DR: 0, DC: 1}
	Left      = Direction{DR: 0, DC: -1}
	Down      = Direction{DR: 1, DC: 0}
	Up        = Direction{DR: -1, DC: 0}
	DownRight = Direction{DR: 1, DC: 1}
	DownLeft  = Direction{DR: 1, DC: -1}
	UpRight   = Direction{DR: -1, DC: 1}
	UpLeft    = Direction{DR: -1, DC: -1}
)

// PlacementDirections are the directions words are written in. Selections
// may run in any of the eight compass directions, so a word is also found
// when read backwards.
var PlacementDirections = []Direction{Right, Down, DownRight, DownLeft}

var directionNames = map[Direction]string{
	Right:     "right",
	Left:      "left",
	Down:      "down",
	Up:        "up",
	DownRight: "down-right",
	DownLeft:  "down-left",
	UpRight:   "up-right",
	UpLeft:    "up-left",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("(%d,%d)", d.DR, d.DC)
}

// Grid is a square matrix of uppercase letters.
type Grid [][]rune

// NewGrid allocates an empty size×size grid.
func NewGrid(size int) Grid {
	if size < 0 {
		size = 0
	}
	g := make(Grid, size)
	for i := range g {
		g[i] = make([]rune, size)
	}
	return g
}

// Size returns the side length of the grid.
func (g Grid) Size() int {
	return len(g)
}

// InBounds reports whether p lies on the grid.
func (g Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < len(g) && p.Col >= 0 && p.Col < len(g)
}

// At returns the letter at p, or 0 when p is off the grid.
func (g Grid) At(p Position) rune {
	if !g.InBounds(p) {
		return 0
	}
	return g[p.Row][p.Col]
}

// Word reads the letters along cells in order.
func (g Grid) Word(cells []Position) string {
	runes := make([]rune, 0, len(cells))
	for _, c := range cells {
		if r := g.At(c); r != 0 {
			runes = append(runes, r)
		}
	}
	return string(runes)
}

// Rows renders each row as a string.
func (g Grid) Rows() []string {
	rows := make([]string, len(g))
	for i, row := range g {
		rows[i] = string(row)
	}
	return rows
}

// MarshalJSON encodes the grid as a list of row strings.
func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Rows())
}

// UnmarshalJSON decodes a list of row strings.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	grid := make(Grid, len(rows))
	for i, row := range rows {
		grid[i] = []rune(row)
		if len(grid[i]) != len(rows) {
			return fmt.Errorf("grid row %d has %d letters, want %d", i, len(grid[i]), len(rows))
		}
	}
	*g = grid
	return nil
}

// PlacedWord records where a word was written on the grid.
type PlacedWord struct {
	Word      string    `json:"word"`
	Start     Position  `json:"start"`
	End       Position  `json:"end"`
	Direction Direction `json:"direction"`
	Hint      string    `json:"hint,omitempty"`
}

// Cells returns the positions the word occupies from Start to End.
func (p PlacedWord) Cells() []Position {
	return LineCells(p.Start, p.End)
}

// Puzzle is the output of the generator.
type Puzzle struct {
	Grid    Grid         `json:"grid"`
	Placed  []PlacedWord `json:"placed"`
	Dropped []string     `json:"dropped,omitempty"`
}

// EventType identifies what happened in a session.
type EventType string

const (
	EventWordFound       EventType = "word_found"
	EventPuzzleCompleted EventType = "puzzle_completed"
)

// Event is emitted to hosts when a word is found or the puzzle is finished.
type Event struct {
	Type      EventType  `json:"type"`
	Word      string     `json:"word,omitempty"`
	Message   string     `json:"message"`
	Cells     []Position `json:"cells,omitempty"`
	Round     int        `json:"round"`
	Timestamp time.Time  `json:"timestamp"`
}

// WordStatus is the player-visible view of a placed word. The location is
// only revealed once the word has been found.
type WordStatus struct {
	Word  string    `json:"word"`
	Hint  string    `json:"hint,omitempty"`
	Found bool      `json:"found"`
	Start *Position `json:"start,omitempty"`
	End   *Position `json:"end,omitempty"`
}

// GameState is a snapshot of a session for clients.
type GameState struct {
	Grid           []string     `json:"grid"`
	GridSize       int          `json:"grid_size"`
	Words          []WordStatus `json:"words"`
	FoundWords     []string     `json:"found_words"`
	WordsFound     int          `json:"words_found"`
	WordsTotal     int          `json:"words_total"`
	Dropped        []string     `json:"dropped,omitempty"`
	Selection      []Position   `json:"selection"`
	SelectionState string       `json:"selection_state"`
	Highlighted    []Position   `json:"highlighted"`
	Completed      bool         `json:"completed"`
	Message        string       `json:"message"`
	LastCandidate  string       `json:"last_candidate,omitempty"`
	ConfigName     string       `json:"config_name"`
	Locale         string       `json:"locale"`
	Seed           int64        `json:"seed"`
	Round          int          `json:"round"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Messages holds the player-facing strings of a puzzle. WordFound and
// WordAlreadyFound take the word as their only %s argument.
type Messages struct {
	Welcome          string `json:"welcome"`
	WordFound        string `json:"word_found"`
	WordAlreadyFound string `json:"word_already_found"`
	NoMatch          string `json:"no_match"`
	Completed        string `json:"completed"`
}

// PuzzleConfig defines a puzzle: its word list, hints and messages.
type PuzzleConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	GridSize    int               `json:"grid_size"`
	Words       []string          `json:"words"`
	Hints       map[string]string `json:"hints,omitempty"`
	Locale      string            `json:"locale,omitempty"`
	Messages    Messages          `json:"messages"`
}
