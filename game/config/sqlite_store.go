package config

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/word-search-game/game/config/migrations"
	"github.com/wricardo/word-search-game/game/engine"
	"github.com/wricardo/word-search-game/game/service"
)

// Definition sources recorded in the catalog.
const (
	SourceManual    = "manual"
	SourceImport    = "import"
	SourceGenerated = "generated"
)

// SQLiteStore keeps puzzle definitions in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the catalog at path and applies
// pending migrations. Use ":memory:" for a throwaway catalog.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ApplyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadConfig loads a definition by id
func (s *SQLiteStore) LoadConfig(name string) (*engine.PuzzleConfig, error) {
	return s.loadConfig(context.Background(), strings.TrimSuffix(name, ".json"))
}

func (s *SQLiteStore) loadConfig(ctx context.Context, id string) (*engine.PuzzleConfig, error) {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM puzzles WHERE id = ?", id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query puzzle %s: %w", id, err)
	}

	var config engine.PuzzleConfig
	if err := json.Unmarshal([]byte(body), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := engine.ValidatePuzzleConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// ListConfigs returns every definition in the catalog ordered by id
func (s *SQLiteStore) ListConfigs() ([]*service.ConfigInfo, error) {
	rows, err := s.db.Query(
		"SELECT id, name, description, grid_size, word_count, locale, source FROM puzzles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list puzzles: %w", err)
	}
	defer rows.Close()

	var configs []*service.ConfigInfo
	for rows.Next() {
		info := &service.ConfigInfo{}
		if err := rows.Scan(&info.ConfigID, &info.Name, &info.Description, &info.GridSize,
			&info.WordCount, &info.Locale, &info.Source); err != nil {
			return nil, fmt.Errorf("scan puzzle: %w", err)
		}
		configs = append(configs, info)
	}
	return configs, rows.Err()
}

// GetDefault returns the preferred default definition, the first stored one,
// or the built-in puzzle when the catalog is empty
func (s *SQLiteStore) GetDefault() *engine.PuzzleConfig {
	if config, err := s.LoadConfig(DefaultConfigName); err == nil {
		return config
	}

	var id string
	if err := s.db.QueryRow("SELECT id FROM puzzles ORDER BY id LIMIT 1").Scan(&id); err == nil {
		if config, err := s.LoadConfig(id); err == nil {
			return config
		}
	}
	return engine.DefaultConfig()
}

// SaveConfig stores a definition under name, replacing any existing one
func (s *SQLiteStore) SaveConfig(name string, config *engine.PuzzleConfig) error {
	return s.SaveConfigFrom(context.Background(), name, config, SourceManual)
}

// SaveConfigFrom stores a definition and records where it came from
func (s *SQLiteStore) SaveConfigFrom(ctx context.Context, name string, config *engine.PuzzleConfig, source string) error {
	name = strings.TrimSuffix(name, ".json")
	if err := ValidateConfigName(name); err != nil {
		return err
	}
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	body, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	now := time.Now().UTC().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO puzzles (id, name, description, grid_size, word_count, locale, body, source, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    description = excluded.description,
    grid_size = excluded.grid_size,
    word_count = excluded.word_count,
    locale = excluded.locale,
    body = excluded.body,
    source = excluded.source,
    updated_at = excluded.updated_at`,
		name, config.Name, config.Description, config.GridSize, len(config.Words), config.Locale,
		string(body), source, now, now)
	if err != nil {
		return fmt.Errorf("save puzzle %s: %w", name, err)
	}
	return nil
}

// DeleteConfig removes a definition
func (s *SQLiteStore) DeleteConfig(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM puzzles WHERE id = ?", name)
	if err != nil {
		return fmt.Errorf("delete puzzle %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConfigNotFound
	}
	return nil
}

// Import copies every definition from src that is not already in the
// catalog and returns how many were added
func (s *SQLiteStore) Import(ctx context.Context, src service.ConfigManager) (int, error) {
	infos, err := src.ListConfigs()
	if err != nil {
		return 0, fmt.Errorf("list source configs: %w", err)
	}

	imported := 0
	for _, info := range infos {
		if _, err := s.loadConfig(ctx, info.ConfigID); err == nil {
			continue
		}
		config, err := src.LoadConfig(info.ConfigID)
		if err != nil {
			return imported, fmt.Errorf("load %s: %w", info.ConfigID, err)
		}
		if err := s.SaveConfigFrom(ctx, info.ConfigID, config, SourceImport); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

var _ service.ConfigManager = (*SQLiteStore)(nil)
