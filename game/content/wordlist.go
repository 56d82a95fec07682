package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wricardo/word-search-game/game/engine"
	"github.com/wricardo/word-search-game/game/i18n"
	"github.com/wricardo/word-search-game/game/service"
)

const (
	DefaultWordCount = 8
	DefaultGridSize  = 12
	DefaultAudience  = "children aged 6 to 10"
)

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"pt": "Portuguese",
}

// WithDefaults fills the zero fields of req and clamps the word count so
// the list can plausibly fit in the grid.
func WithDefaults(req service.GenerateRequest) service.GenerateRequest {
	if req.GridSize == 0 {
		req.GridSize = DefaultGridSize
	}
	if req.Count <= 0 {
		req.Count = DefaultWordCount
	}
	if max := req.GridSize * 2; req.Count > max {
		req.Count = max
	}
	if req.Count > engine.MaxWords {
		req.Count = engine.MaxWords
	}
	req.Locale = i18n.Normalize(req.Locale)
	if !i18n.IsSupported(req.Locale) {
		req.Locale = i18n.DefaultLocale
	}
	if req.Audience == "" {
		req.Audience = DefaultAudience
	}
	return req
}

// BuildPrompt renders the generation prompt for req. req is expected to have
// its defaults applied.
func BuildPrompt(req service.GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a word search puzzle about %q for %s.\n\n", req.Theme, req.Audience)
	fmt.Fprintf(&b, "Write everything in %s.\n", languageNames[req.Locale])
	fmt.Fprintf(&b, "Give exactly %d words. Each word must be a single word of letters only, ", req.Count)
	fmt.Fprintf(&b, "no spaces, digits or punctuation, and at most %d letters long.\n", req.GridSize)
	b.WriteString("Give each word a short, gentle hint (one sentence) that helps a child guess it.\n\n")
	b.WriteString(`Answer with JSON in this format:
{
  "name": "<short title>",
  "description": "<one sentence for the player>",
  "words": [
    {"word": "<WORD>", "hint": "<hint>"}
  ]
}

Answer ONLY with the JSON, without comments or markdown.`)
	return b.String()
}

type generatedList struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Words       []generatedWord `json:"words"`
}

type generatedWord struct {
	Word string `json:"word"`
	Hint string `json:"hint"`
}

// ParseWordList decodes a model answer into a valid puzzle definition.
// Words that are not letters only, do not fit the grid or repeat an earlier
// word are skipped.
func ParseWordList(data []byte, req service.GenerateRequest) (*engine.PuzzleConfig, error) {
	req = WithDefaults(req)

	var list generatedList
	if err := json.Unmarshal(stripFences(data), &list); err != nil {
		return nil, fmt.Errorf("parse word list JSON: %w\nraw response: %s", err, data)
	}

	config := &engine.PuzzleConfig{
		Name:        strings.TrimSpace(list.Name),
		Description: strings.TrimSpace(list.Description),
		GridSize:    req.GridSize,
		Hints:       make(map[string]string),
		Locale:      req.Locale,
	}
	if config.Name == "" {
		config.Name = req.Theme
	}

	seen := make(map[string]bool)
	for _, w := range list.Words {
		word := engine.NormalizeWord(w.Word)
		if word == "" || seen[word] || !engine.IsLetters(word) || len([]rune(word)) > req.GridSize {
			continue
		}
		seen[word] = true
		config.Words = append(config.Words, word)
		if hint := strings.TrimSpace(w.Hint); hint != "" {
			config.Hints[word] = hint
		}
		if len(config.Words) == req.Count {
			break
		}
	}

	if len(config.Words) == 0 {
		return nil, fmt.Errorf("word list for %q has no usable words", req.Theme)
	}
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(data []byte) []byte {
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "```") {
		return data
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}
