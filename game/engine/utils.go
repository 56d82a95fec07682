package engine

import (
	"strings"
	"unicode"
)

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// Collinear reports whether p lies on a row, column or diagonal through anchor.
func Collinear(anchor, p Position) bool {
	dr := p.Row - anchor.Row
	dc := p.Col - anchor.Col
	return dr == 0 || dc == 0 || abs(dr) == abs(dc)
}

// DirectionBetween returns the unit direction from a to b and whether the two
// cells are distinct and collinear.
func DirectionBetween(a, b Position) (Direction, bool) {
	if a == b || !Collinear(a, b) {
		return Direction{}, false
	}
	return Direction{DR: sign(b.Row - a.Row), DC: sign(b.Col - a.Col)}, true
}

// LineCells returns every cell from start to end inclusive. It returns nil
// when the two cells are not on a common row, column or diagonal.
func LineCells(start, end Position) []Position {
	if start == end {
		return []Position{start}
	}
	dir, ok := DirectionBetween(start, end)
	if !ok {
		return nil
	}
	n := abs(end.Row - start.Row)
	if m := abs(end.Col - start.Col); m > n {
		n = m
	}
	cells := make([]Position, 0, n+1)
	for i := 0; i <= n; i++ {
		cells = append(cells, start.Step(dir, i))
	}
	return cells
}

// NormalizeWord trims and uppercases a word.
func NormalizeWord(word string) string {
	return strings.ToUpper(strings.TrimSpace(word))
}

// IsLetters reports whether word is non-empty and made only of letters.
func IsLetters(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Reverse returns word with its letters in reverse order.
func Reverse(word string) string {
	runes := []rune(word)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// HintFor looks up the hint for word, ignoring case.
func HintFor(hints map[string]string, word string) string {
	if len(hints) == 0 {
		return ""
	}
	if h, ok := hints[word]; ok {
		return h
	}
	for k, h := range hints {
		if strings.EqualFold(strings.TrimSpace(k), word) {
			return h
		}
	}
	return ""
}
