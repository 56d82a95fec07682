package render

import (
	"strings"
	"testing"

	"github.com/wricardo/word-search-game/game/engine"
)

func testState() *engine.GameState {
	start, end := engine.Position{Row: 0, Col: 0}, engine.Position{Row: 0, Col: 3}
	return &engine.GameState{
		Grid:       []string{"AMORX", "ZZZZZ", "ZFZZZ", "ZZEZZ", "ZZZZZ"},
		GridSize:   5,
		ConfigName: "virtues",
		Words: []engine.WordStatus{
			{Word: "AMOR", Hint: "Love", Found: true, Start: &start, End: &end},
			{Word: "FE", Hint: "Faith"},
		},
		WordsFound:  1,
		WordsTotal:  2,
		Highlighted: []engine.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}},
		Selection:   []engine.Position{{Row: 2, Col: 1}},
		Message:     "You found AMOR!",
	}
}

func TestRenderer_StatePlain(t *testing.T) {
	out := New(false).State(testState())

	tests := []struct {
		name string
		want string
	}{
		{"title with progress", "virtues (1/2)"},
		{"found cells bracketed", "[A][M][O][R] X "},
		{"selected cell marked", "<F>"},
		{"found word checked", "[x] AMOR (0,0)-(0,3) - Love"},
		{"open word unchecked", "[ ] FE - Faith"},
		{"message", "You found AMOR!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(out, tt.want) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.want, out)
			}
		})
	}

	if strings.Contains(out, "\x1b[") {
		t.Error("Plain renderer must not emit escape codes")
	}
}

func TestRenderer_StateColor(t *testing.T) {
	out := New(true).State(testState())
	for _, letter := range []string{"A", "M", "O", "R", "F", "E"} {
		if !strings.Contains(out, letter) {
			t.Errorf("Expected letter %s in colored output", letter)
		}
	}
	if strings.Contains(out, "[A]") {
		t.Error("Colored renderer should not use bracket markers")
	}
}

func TestRenderer_Puzzle(t *testing.T) {
	puzzle := engine.Generate([]string{"LUZ", "PAN", "VIDAETERNAMENTE"}, 6, engine.NewRand(4))

	t.Run("hidden", func(t *testing.T) {
		out := New(false).Puzzle(puzzle, false)
		if strings.Contains(out, "[x]") {
			t.Error("Unrevealed puzzle must not mark words as found")
		}
		if !strings.Contains(out, "Not placed: VIDAETERNAMENTE") {
			t.Errorf("Expected dropped words to be listed, got:\n%s", out)
		}
	})

	t.Run("revealed", func(t *testing.T) {
		out := New(false).Puzzle(puzzle, true)
		for _, p := range puzzle.Placed {
			if !strings.Contains(out, "[x] "+p.Word) {
				t.Errorf("Expected %s to be revealed, got:\n%s", p.Word, out)
			}
		}
	})
}

func TestRenderer_WordListWraps(t *testing.T) {
	r := New(false)
	r.width = 20
	words := []engine.WordStatus{{Word: "FAITH"}, {Word: "HOPE"}, {Word: "LOVE"}, {Word: "GRACE"}}

	out := r.WordList(words)
	if lines := strings.Count(out, "\n"); lines < 2 {
		t.Errorf("Expected word list to wrap at width 20, got:\n%s", out)
	}
}
