package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wricardo/word-search-game/game/i18n"
)

// ValidatePuzzleConfig validates a puzzle configuration. An empty word list
// is accepted: it produces a grid of random letters that can never be
// completed, which hosts report as a configuration problem.
func ValidatePuzzleConfig(config *PuzzleConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if strings.TrimSpace(config.Name) == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}

	if len(config.Words) > MaxWords {
		return fmt.Errorf("config validation: at most %d words are allowed, got %d", MaxWords, len(config.Words))
	}
	for i, w := range config.Words {
		if !IsLetters(NormalizeWord(w)) {
			return fmt.Errorf("config validation: word %d (%q) must contain only letters", i+1, w)
		}
	}

	if config.Locale != "" && !i18n.IsSupported(config.Locale) {
		return fmt.Errorf("config validation: locale %q is not supported (available: %s)",
			config.Locale, strings.Join(i18n.Supported(), ", "))
	}

	if config.Messages.WordFound != "" && strings.Count(config.Messages.WordFound, "%s") != 1 {
		return fmt.Errorf("config validation: messages.word_found must contain exactly one %%s for the word")
	}
	if config.Messages.WordAlreadyFound != "" && strings.Count(config.Messages.WordAlreadyFound, "%s") != 1 {
		return fmt.Errorf("config validation: messages.word_already_found must contain exactly one %%s for the word")
	}

	return nil
}

// WithDefaults returns a copy of config with the locale resolved and empty
// messages filled from the locale's catalog.
func (c *PuzzleConfig) WithDefaults() *PuzzleConfig {
	out := *c
	out.Words = append([]string(nil), c.Words...)
	if c.Hints != nil {
		out.Hints = make(map[string]string, len(c.Hints))
		for k, v := range c.Hints {
			out.Hints[k] = v
		}
	}

	out.Locale = i18n.Normalize(c.Locale)
	if !i18n.IsSupported(out.Locale) {
		out.Locale = i18n.DefaultLocale
	}

	m := &out.Messages
	if m.Welcome == "" {
		m.Welcome = i18n.Get(out.Locale, i18n.Welcome)
	}
	if m.WordFound == "" {
		m.WordFound = i18n.Get(out.Locale, i18n.WordFound)
	}
	if m.WordAlreadyFound == "" {
		m.WordAlreadyFound = i18n.Get(out.Locale, i18n.WordAlreadyFound)
	}
	if m.NoMatch == "" {
		m.NoMatch = i18n.Get(out.Locale, i18n.NoMatch)
	}
	if m.Completed == "" {
		m.Completed = i18n.Get(out.Locale, i18n.PuzzleCompleted)
	}
	return &out
}

// LoadPuzzleConfig reads and validates a definition file
func LoadPuzzleConfig(path string) (*PuzzleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePuzzleConfig(data)
}

// ParsePuzzleConfig decodes and validates a JSON puzzle definition
func ParsePuzzleConfig(data []byte) (*PuzzleConfig, error) {
	var config PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if err := ValidatePuzzleConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// DefaultConfig returns the built-in puzzle used when no definition is available
func DefaultConfig() *PuzzleConfig {
	return &PuzzleConfig{
		Name:        "virtues",
		Description: "Find the virtues hidden in the grid",
		GridSize:    10,
		Words:       []string{"FAITH", "HOPE", "LOVE", "JOY", "PEACE", "GRACE", "KINDNESS"},
		Hints: map[string]string{
			"FAITH":    "Trusting in what we cannot see",
			"HOPE":     "Looking forward to good things",
			"LOVE":     "The greatest of these",
			"JOY":      "Gladness of heart",
			"PEACE":    "Calm instead of worry",
			"GRACE":    "A gift we did not earn",
			"KINDNESS": "Being gentle and caring to others",
		},
		Locale: i18n.DefaultLocale,
	}
}
