package service

import (
	"time"

	"github.com/wricardo/word-search-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	GameState      *engine.GameState    `json:"game_state"`
	GameConfig     *engine.PuzzleConfig `json:"game_config"`
	Warnings       []string             `json:"warnings,omitempty"`
}

// CreateOptions selects the puzzle for a new session. When Words is set an
// ad-hoc puzzle is built from it; otherwise ConfigID (or the default
// definition) is used, with GridSize and Locale as optional overrides.
type CreateOptions struct {
	ConfigID string            `json:"config_id,omitempty"`
	Name     string            `json:"name,omitempty"`
	Words    []string          `json:"words,omitempty"`
	Hints    map[string]string `json:"hints,omitempty"`
	GridSize int               `json:"grid_size,omitempty"`
	Locale   string            `json:"locale,omitempty"`
	Seed     int64             `json:"seed,omitempty"`
}

// Selection actions
const (
	ActionEngage = "engage"
	ActionEnter  = "enter"
	ActionCommit = "commit"
	ActionLeave  = "leave"
	ActionSelect = "select"
)

// SelectionResult contains the outcome of one pointer input
type SelectionResult struct {
	Action    string            `json:"action"`
	Accepted  bool              `json:"accepted"`
	Selection []engine.Position `json:"selection"`
	Candidate string            `json:"candidate,omitempty"`
	WordFound string            `json:"word_found,omitempty"`
	Completed bool              `json:"completed"`
	Events    []GameEvent       `json:"events,omitempty"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string            `json:"type"` // "word_found", "puzzle_completed", "reset"
	Word      string            `json:"word,omitempty"`
	Message   string            `json:"message"`
	Cells     []engine.Position `json:"cells,omitempty"`
	Round     int               `json:"round,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// HistoryOptions configures event history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated event history
type HistoryResponse struct {
	Events      []engine.Event `json:"events"`
	TotalEvents int            `json:"total_events"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// ConfigInfo provides information about a puzzle definition
type ConfigInfo struct {
	Filename    string `json:"filename,omitempty"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	GridSize    int    `json:"grid_size"`
	WordCount   int    `json:"word_count"`
	Locale      string `json:"locale,omitempty"`
	Source      string `json:"source,omitempty"`
}

// GenerateRequest asks the word list generator for a new definition
type GenerateRequest struct {
	Theme    string `json:"theme"`
	Count    int    `json:"count,omitempty"`
	GridSize int    `json:"grid_size,omitempty"`
	Locale   string `json:"locale,omitempty"`
	Audience string `json:"audience,omitempty"`
	SaveAs   string `json:"save_as,omitempty"`
}

// GenerateResult is a generated definition, saved when SaveAs was given
type GenerateResult struct {
	ConfigID string               `json:"config_id,omitempty"`
	Saved    bool                 `json:"saved"`
	Config   *engine.PuzzleConfig `json:"config"`
}
