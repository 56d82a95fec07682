package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/word-search-game/game/engine"
)

// DefaultCustomGridSize is used for ad-hoc word lists without a grid size.
const DefaultCustomGridSize = 12

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	generator WordListGenerator
	locale    string
	mu        sync.RWMutex
}

// Option configures a GameService
type Option func(*gameServiceImpl)

// WithGenerator enables GenerateConfig
func WithGenerator(g WordListGenerator) Option {
	return func(s *gameServiceImpl) {
		s.generator = g
	}
}

// WithDefaultLocale sets the locale of ad-hoc word lists and generated
// definitions when the request names none
func WithDefaultLocale(locale string) Option {
	return func(s *gameServiceImpl) {
		s.locale = locale
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) resolveConfig(opts CreateOptions) (*engine.PuzzleConfig, string, error) {
	if len(opts.Words) > 0 {
		name := opts.Name
		if name == "" {
			name = "custom"
		}
		gridSize := opts.GridSize
		if gridSize == 0 {
			gridSize = DefaultCustomGridSize
		}
		config := &engine.PuzzleConfig{
			Name:        name,
			Description: "Custom word list",
			GridSize:    gridSize,
			Words:       opts.Words,
			Hints:       opts.Hints,
			Locale:      opts.Locale,
		}
		if config.Locale == "" {
			config.Locale = s.locale
		}
		if err := engine.ValidatePuzzleConfig(config); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return config, "custom", nil
	}

	var config *engine.PuzzleConfig
	configID := opts.ConfigID
	if configID != "" {
		loaded, err := s.configs.LoadConfig(configID)
		if err != nil {
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, "", fmt.Errorf("%w: config '%s' not found. Available configs: %v", ErrInvalidRequest, configID, configIDs)
				}
				return nil, "", fmt.Errorf("%w: config '%s' not found. Use /api/configs to list available configurations", ErrInvalidRequest, configID)
			}
			return nil, "", fmt.Errorf("failed to load config %s: %w", configID, err)
		}
		config = loaded
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	if opts.GridSize != 0 || opts.Locale != "" {
		override := *config
		if opts.GridSize != 0 {
			override.GridSize = opts.GridSize
		}
		if opts.Locale != "" {
			override.Locale = opts.Locale
		}
		if err := engine.ValidatePuzzleConfig(&override); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		config = &override
	}
	return config, configID, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts CreateOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, configID, err := s.resolveConfig(opts)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = configID

	id := sess.ID
	sess.Engine.Subscribe(func(ev engine.Event) {
		log.Printf("[EVENT] session=%s type=%s word=%s round=%d", id, ev.Type, ev.Word, ev.Round)
	})

	info := s.toSessionInfo(sess)
	for _, w := range info.Warnings {
		log.Printf("Warning: session %s (%s): %s", sess.ID, configID, w)
	}
	return info, nil
}

func (s *gameServiceImpl) toSessionInfo(sess *Session) *SessionInfo {
	configID := sess.ConfigID
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	lastAccessed, err := s.sessions.LastAccessed(sess.ID)
	if err != nil {
		lastAccessed = sess.CreatedAt
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: lastAccessed,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
		Warnings:       warningsFor(sess.Engine),
	}
}

func warningsFor(eng *engine.GameEngine) []string {
	var warnings []string
	puzzle := eng.GetPuzzle()
	if len(puzzle.Placed) == 0 {
		warnings = append(warnings, "no words could be placed; the puzzle cannot be completed, check the word list and grid size")
	}
	if len(puzzle.Dropped) > 0 {
		warnings = append(warnings, fmt.Sprintf("words not placed: %s", strings.Join(puzzle.Dropped, ", ")))
	}
	return warnings
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.toSessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.toSessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return nil
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func newSelectionResult(action string, accepted bool, eng *engine.GameEngine, events []engine.Event) *SelectionResult {
	state := eng.GetState()
	result := &SelectionResult{
		Action:    action,
		Accepted:  accepted,
		Selection: state.Selection,
		Completed: state.Completed,
		GameState: state,
		Message:   state.Message,
	}
	for _, ev := range events {
		if ev.Type == engine.EventWordFound {
			result.WordFound = ev.Word
		}
		result.Events = append(result.Events, toGameEvent(ev))
	}
	return result
}

func toGameEvent(ev engine.Event) GameEvent {
	return GameEvent{
		Type:      string(ev.Type),
		Word:      ev.Word,
		Message:   ev.Message,
		Cells:     ev.Cells,
		Round:     ev.Round,
		Timestamp: ev.Timestamp,
	}
}

// Engage starts a selection at cell
func (s *gameServiceImpl) Engage(ctx context.Context, sessionID string, cell engine.Position) (*SelectionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	accepted := sess.Engine.EngageCell(cell.Row, cell.Col)
	return newSelectionResult(ActionEngage, accepted, sess.Engine, nil), nil
}

// Enter extends the selection with cell
func (s *gameServiceImpl) Enter(ctx context.Context, sessionID string, cell engine.Position) (*SelectionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	accepted := sess.Engine.EnterCell(cell.Row, cell.Col)
	return newSelectionResult(ActionEnter, accepted, sess.Engine, nil), nil
}

// Commit releases the selection and evaluates it
func (s *gameServiceImpl) Commit(ctx context.Context, sessionID string) (*SelectionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	selection := sess.Engine.GetSelection()
	evaluated := len(selection) >= engine.MinSelectionLength
	candidate := ""
	if evaluated {
		candidate = sess.Engine.GetPuzzle().Grid.Word(selection)
	}

	events := sess.Engine.CommitSelection()
	result := newSelectionResult(ActionCommit, evaluated, sess.Engine, events)
	result.Selection = selection
	result.Candidate = candidate
	return result, nil
}

// Leave discards the selection in progress
func (s *gameServiceImpl) Leave(ctx context.Context, sessionID string) (*SelectionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	hadSelection := sess.Engine.GetSelectionState() == engine.Selecting
	sess.Engine.LeaveGrid()
	return newSelectionResult(ActionLeave, hadSelection, sess.Engine, nil), nil
}

// SelectPath runs a complete drag over cells: engage the first, enter the
// rest, commit. Cells rejected by the selection rules are skipped.
func (s *gameServiceImpl) SelectPath(ctx context.Context, sessionID string, cells []engine.Position) (*SelectionResult, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: at least one cell is required", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	eng := sess.Engine
	if !eng.EngageCell(cells[0].Row, cells[0].Col) {
		result := newSelectionResult(ActionSelect, false, eng, nil)
		result.Message = fmt.Sprintf("cell %v is outside the %dx%d grid", cells[0], eng.GetPuzzle().Grid.Size(), eng.GetPuzzle().Grid.Size())
		return result, nil
	}
	for _, c := range cells[1:] {
		eng.EnterCell(c.Row, c.Col)
	}

	selection := eng.GetSelection()
	evaluated := len(selection) >= engine.MinSelectionLength
	candidate := ""
	if evaluated {
		candidate = eng.GetPuzzle().Grid.Word(selection)
	}

	events := eng.CommitSelection()
	result := newSelectionResult(ActionSelect, evaluated, eng, events)
	result.Selection = selection
	result.Candidate = candidate
	return result, nil
}

// Reset regenerates the puzzle for a session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Reset(), nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetEventHistory returns paginated event history
func (s *gameServiceImpl) GetEventHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetEventLog()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	events := []engine.Event{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			events = append(events, history[i])
		}
	} else if start < total {
		events = append(events, history[start:end]...)
	}

	return &HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available puzzle definitions
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific puzzle definition
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig stores a puzzle definition
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// GenerateConfig asks the word list generator for a definition and saves it
// when req.SaveAs is set
func (s *gameServiceImpl) GenerateConfig(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if s.generator == nil {
		return nil, ErrGeneratorUnavailable
	}
	if strings.TrimSpace(req.Theme) == "" {
		return nil, fmt.Errorf("%w: theme is required", ErrInvalidRequest)
	}

	if req.Locale == "" {
		req.Locale = s.locale
	}

	start := time.Now()
	config, err := s.generator.GenerateWordList(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate word list: %w", err)
	}
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return nil, fmt.Errorf("generated config is invalid: %w", err)
	}
	log.Printf("[GENERATE] theme=%q words=%d took=%s", req.Theme, len(config.Words), time.Since(start).Round(time.Millisecond))

	result := &GenerateResult{Config: config}
	if req.SaveAs != "" {
		if err := s.configs.SaveConfig(req.SaveAs, config); err != nil {
			return nil, fmt.Errorf("save generated config: %w", err)
		}
		result.ConfigID = req.SaveAs
		result.Saved = true
	}
	return result, nil
}
