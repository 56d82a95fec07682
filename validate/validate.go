// Package validate checks puzzle definition JSON files before they are
// served. It checks:
//   - JSON structure and the fields accepted by the engine
//   - Words that cannot fit the grid, duplicates and hints for unknown words
//   - An empty word list, which produces a puzzle that can never be completed
//   - Placement: how often every word lands in a generated grid
package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/word-search-game/game/engine"
)

// DefaultTrials is the number of seeded grids generated per definition.
const DefaultTrials = 50

// Result captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found. Warnings never make a
// definition invalid.
type Result struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// File loads and validates a single definition file.
func File(path string, trials int) Result {
	result := Result{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	Config(&config, trials, &result)
	return result
}

// Config validates a decoded definition and appends its findings to result.
func Config(config *engine.PuzzleConfig, trials int, result *Result) {
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return
	}

	if len(config.Words) == 0 {
		result.fail("Word list is empty: the puzzle could never be completed")
		return
	}

	seen := make(map[string]bool, len(config.Words))
	for _, w := range config.Words {
		word := engine.NormalizeWord(w)
		if seen[word] {
			result.fail("Duplicate word: %s", word)
			continue
		}
		seen[word] = true

		if n := len([]rune(word)); n > config.GridSize {
			result.fail("Word %s has %d letters and cannot fit a %dx%d grid", word, n, config.GridSize, config.GridSize)
		}
		if engine.HintFor(config.Hints, word) == "" {
			result.warn("No hint for %s", word)
		}
	}

	for key := range config.Hints {
		if !seen[engine.NormalizeWord(key)] {
			result.fail("Hint for unknown word: %s", key)
		}
	}

	if !result.Valid {
		return
	}

	placement := Placement(config, trials)
	if len(placement.Dropped) > 0 {
		words := make([]string, 0, len(placement.Dropped))
		for w := range placement.Dropped {
			words = append(words, w)
		}
		sort.Strings(words)
		for _, w := range words {
			result.warn("%s was dropped in %d/%d generated grids", w, placement.Dropped[w], placement.Trials)
		}
	}

	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Grid: %dx%d", config.GridSize, config.GridSize),
		fmt.Sprintf("✓ Words: %d", len(seen)),
		fmt.Sprintf("✓ Placement: all words placed in %d/%d grids", placement.Complete, placement.Trials),
	)
	if config.Locale != "" {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Locale: %s", config.Locale))
	}
}

// PlacementStats summarizes how a definition behaves across seeded grids.
type PlacementStats struct {
	Trials   int
	Complete int            // grids where every word was placed
	Dropped  map[string]int // word -> number of grids that dropped it
}

// Rate is the share of grids that placed every word.
func (p PlacementStats) Rate() float64 {
	if p.Trials == 0 {
		return 0
	}
	return float64(p.Complete) / float64(p.Trials)
}

// Placement generates trials grids with seeds 1..trials and counts the
// words the generator had to drop.
func Placement(config *engine.PuzzleConfig, trials int) PlacementStats {
	if trials <= 0 {
		trials = DefaultTrials
	}
	stats := PlacementStats{Trials: trials, Dropped: make(map[string]int)}
	for seed := int64(1); seed <= int64(trials); seed++ {
		puzzle := engine.Generate(config.Words, config.GridSize, engine.NewRand(seed))
		if len(puzzle.Dropped) == 0 {
			stats.Complete++
		}
		for _, w := range puzzle.Dropped {
			stats.Dropped[w]++
		}
	}
	return stats
}

// Dir validates every *.json file in dir, sorted by name.
func Dir(dir string, trials int) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("finding definition files: %w", err)
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, File(file, trials))
	}
	return results, nil
}

// Report prints results in a concise form and returns whether all are valid.
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(w, "  ❌ "+err)
				}
			}
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ⚠️  "+warning)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All definitions are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some definitions have errors")
	}
	return allValid
}
