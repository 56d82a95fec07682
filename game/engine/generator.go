package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewSeed returns a random seed from crypto/rand, falling back to the clock.
func NewSeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

// NewRand returns a generator seeded with seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Generate places words on a gridSize×gridSize grid and fills the rest with
// random letters. Words that cannot be placed within MaxPlacementAttempts
// tries are left out of the grid and reported in Puzzle.Dropped.
func Generate(words []string, gridSize int, rng *rand.Rand) *Puzzle {
	return GenerateWithHints(words, nil, gridSize, rng)
}

// GenerateWithHints is Generate with a hint attached to each placed word.
func GenerateWithHints(words []string, hints map[string]string, gridSize int, rng *rand.Rand) *Puzzle {
	if rng == nil {
		rng = NewRand(NewSeed())
	}
	grid := NewGrid(gridSize)
	puzzle := &Puzzle{Grid: grid, Placed: []PlacedWord{}}

	seen := make(map[string]bool, len(words))
	for _, raw := range words {
		word := NormalizeWord(raw)
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true

		letters := []rune(word)
		if !IsLetters(word) || len(letters) > gridSize {
			puzzle.Dropped = append(puzzle.Dropped, word)
			continue
		}

		placed, ok := placeWord(grid, letters, rng)
		if !ok {
			puzzle.Dropped = append(puzzle.Dropped, word)
			continue
		}
		placed.Word = word
		placed.Hint = HintFor(hints, word)
		puzzle.Placed = append(puzzle.Placed, placed)
	}

	fillEmpty(grid, rng)
	return puzzle
}

func placeWord(grid Grid, letters []rune, rng *rand.Rand) (PlacedWord, bool) {
	n := grid.Size()
	for attempt := 0; attempt < MaxPlacementAttempts; attempt++ {
		dir := PlacementDirections[rng.Intn(len(PlacementDirections))]
		start := Position{Row: rng.Intn(n), Col: rng.Intn(n)}
		if !canPlace(grid, letters, start, dir) {
			continue
		}
		for i, r := range letters {
			p := start.Step(dir, i)
			grid[p.Row][p.Col] = r
		}
		return PlacedWord{
			Start:     start,
			End:       start.Step(dir, len(letters)-1),
			Direction: dir,
		}, true
	}
	return PlacedWord{}, false
}

func canPlace(grid Grid, letters []rune, start Position, dir Direction) bool {
	for i, r := range letters {
		p := start.Step(dir, i)
		if !grid.InBounds(p) {
			return false
		}
		if c := grid[p.Row][p.Col]; c != 0 && c != r {
			return false
		}
	}
	return true
}

func fillEmpty(grid Grid, rng *rand.Rand) {
	for _, row := range grid {
		for j := range row {
			if row[j] == 0 {
				row[j] = rune(alphabet[rng.Intn(len(alphabet))])
			}
		}
	}
}
