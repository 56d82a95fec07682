package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/word-search-game/game/engine"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrGeneratorUnavailable = errors.New("word list generator is not configured")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Selection input
	Engage(ctx context.Context, sessionID string, cell engine.Position) (*SelectionResult, error)
	Enter(ctx context.Context, sessionID string, cell engine.Position) (*SelectionResult, error)
	Commit(ctx context.Context, sessionID string) (*SelectionResult, error)
	Leave(ctx context.Context, sessionID string) (*SelectionResult, error)
	SelectPath(ctx context.Context, sessionID string, cells []engine.Position) (*SelectionResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetEventHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error
	GenerateConfig(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.PuzzleConfig, seed int64) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	LastAccessed(id string) (time.Time, error)
}

// ConfigManager handles puzzle definition loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.PuzzleConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.PuzzleConfig
	SaveConfig(name string, config *engine.PuzzleConfig) error
}

// WordListGenerator builds a puzzle definition around a theme
type WordListGenerator interface {
	GenerateWordList(ctx context.Context, req GenerateRequest) (*engine.PuzzleConfig, error)
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.PuzzleConfig
	ConfigID       string
	CreatedAt      time.Time
	LastAccessedAt time.Time // guarded by the SessionManager; read it through LastAccessed
}
