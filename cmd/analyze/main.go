// Command analyze prints quick, human-readable heuristics about the puzzle
// definitions in the configs directory. For each definition it generates a
// batch of seeded grids and summarizes letter density, how often every word
// was placed, which words get dropped, shared cells and direction spread.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/word-search-game/game/engine"
)

// Analysis aggregates the grids generated for one definition.
type Analysis struct {
	Name       string
	GridSize   int
	Words      int
	Letters    int
	Trials     int
	Complete   int
	Dropped    map[string]int
	Shared     int // cells used by more than one word, summed over trials
	Directions map[engine.Direction]int
}

// Density is the share of grid cells the word letters would need without
// any overlap.
func (a *Analysis) Density() float64 {
	return float64(a.Letters) / float64(a.GridSize*a.GridSize)
}

// AverageShared is the mean number of crossing cells per grid.
func (a *Analysis) AverageShared() float64 {
	if a.Trials == 0 {
		return 0
	}
	return float64(a.Shared) / float64(a.Trials)
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Summarize how puzzle definitions behave in generated grids",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "configs", Usage: "directory with definition files"},
			&cli.IntFlag{Name: "trials", Value: 200, Usage: "seeded grids per definition"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files, err := filepath.Glob(filepath.Join(cmd.String("dir"), "*.json"))
			if err != nil {
				return err
			}
			sort.Strings(files)
			for _, file := range files {
				fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
				if err := analyzeConfig(os.Stdout, file, cmd.Int("trials")); err != nil {
					fmt.Printf("Error: %v\n", err)
				}
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func analyzeConfig(w io.Writer, path string, trials int) error {
	config, err := engine.LoadPuzzleConfig(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", filepath.Base(path), err)
	}

	a := analyze(config, trials)

	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.GridSize, a.GridSize)
	fmt.Fprintf(w, "Words: %d (%d letters, density %.0f%%)\n", a.Words, a.Letters, a.Density()*100)
	fmt.Fprintf(w, "Trials: %d\n", a.Trials)

	if a.Words == 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: no words, the puzzle can never be completed\n")
		return nil
	}

	rate := float64(a.Complete) / float64(a.Trials)
	if a.Complete == a.Trials {
		fmt.Fprintf(w, "✅ Every word placed in all %d grids\n", a.Trials)
	} else {
		fmt.Fprintf(w, "⚠️  WARNING: all words placed in only %d/%d grids (%.0f%%)\n", a.Complete, a.Trials, rate*100)
		words := make([]string, 0, len(a.Dropped))
		for word := range a.Dropped {
			words = append(words, word)
		}
		sort.Slice(words, func(i, j int) bool {
			if a.Dropped[words[i]] != a.Dropped[words[j]] {
				return a.Dropped[words[i]] > a.Dropped[words[j]]
			}
			return words[i] < words[j]
		})
		for i, word := range words {
			if i < 5 { // Show the 5 most dropped words
				fmt.Fprintf(w, "   Dropped: %s in %d grids\n", word, a.Dropped[word])
			}
		}
		if len(words) > 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(words)-5)
		}
	}

	if a.Density() > 0.6 {
		fmt.Fprintf(w, "⚠️  Dense grid: consider a larger grid_size\n")
	}

	fmt.Fprintf(w, "Shared cells per grid: %.1f\n", a.AverageShared())

	var spread []string
	for _, d := range engine.PlacementDirections {
		spread = append(spread, fmt.Sprintf("%s=%d", d, a.Directions[d]))
	}
	fmt.Fprintf(w, "Directions: %s\n", strings.Join(spread, " "))
	return nil
}

// analyze generates trials grids with seeds 1..trials.
func analyze(config *engine.PuzzleConfig, trials int) *Analysis {
	if trials <= 0 {
		trials = 1
	}

	a := &Analysis{
		Name:       config.Name,
		GridSize:   config.GridSize,
		Trials:     trials,
		Dropped:    make(map[string]int),
		Directions: make(map[engine.Direction]int),
	}

	seen := make(map[string]bool)
	for _, w := range config.Words {
		word := engine.NormalizeWord(w)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		a.Words++
		a.Letters += len([]rune(word))
	}

	for seed := int64(1); seed <= int64(trials); seed++ {
		puzzle := engine.Generate(config.Words, config.GridSize, engine.NewRand(seed))
		if len(puzzle.Dropped) == 0 {
			a.Complete++
		}
		for _, word := range puzzle.Dropped {
			a.Dropped[word]++
		}

		used := make(map[engine.Position]int)
		for _, p := range puzzle.Placed {
			a.Directions[p.Direction]++
			for _, c := range p.Cells() {
				used[c]++
			}
		}
		for _, n := range used {
			if n > 1 {
				a.Shared++
			}
		}
	}
	return a
}
