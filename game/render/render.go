// Package render draws word search puzzles as text for terminals and for
// plain-text clients such as MCP tool results.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"golang.org/x/term"

	"github.com/wricardo/word-search-game/game/engine"
)

const DefaultWidth = 80

// Renderer formats puzzles and game states.
type Renderer struct {
	color bool
	width int

	colorLetter   color.Style
	colorFound    color.Style
	colorSelected color.Style
	colorHeader   color.Style
	colorSubtle   color.Style
	colorDone     color.Style
}

// New returns a renderer. When useColor is false the output is plain ASCII
// with brackets marking found and selected cells.
func New(useColor bool) *Renderer {
	return &Renderer{
		color:         useColor,
		width:         DefaultWidth,
		colorLetter:   color.Style{color.FgWhite},
		colorFound:    color.Style{color.FgGreen, color.OpBold},
		colorSelected: color.Style{color.FgBlack, color.BgYellow, color.OpBold},
		colorHeader:   color.Style{color.FgCyan, color.OpBold},
		colorSubtle:   color.Style{color.FgGray},
		colorDone:     color.Style{color.FgGreen},
	}
}

// ForFile returns a renderer that uses color only when f is a terminal and
// wraps word lists to the terminal width.
func ForFile(f *os.File) *Renderer {
	fd := int(f.Fd())
	r := New(term.IsTerminal(fd))
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		r.width = w
	}
	return r
}

func (r *Renderer) paint(s color.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Sprint(text)
}

type cellMark int

const (
	markNone cellMark = iota
	markFound
	markSelected
)

func (r *Renderer) grid(rows []string, marks map[engine.Position]cellMark) string {
	var b strings.Builder
	size := len(rows)

	b.WriteString("    ")
	for c := 0; c < size; c++ {
		b.WriteString(r.paint(r.colorSubtle, fmt.Sprintf("%2d ", c)))
	}
	b.WriteString("\n")

	for row, line := range rows {
		b.WriteString(r.paint(r.colorSubtle, fmt.Sprintf("%2d  ", row)))
		for col, letter := range []rune(line) {
			cell := string(letter)
			switch marks[engine.Position{Row: row, Col: col}] {
			case markSelected:
				if r.color {
					b.WriteString(" " + r.paint(r.colorSelected, cell) + " ")
				} else {
					b.WriteString("<" + cell + ">")
				}
			case markFound:
				if r.color {
					b.WriteString(" " + r.paint(r.colorFound, cell) + " ")
				} else {
					b.WriteString("[" + cell + "]")
				}
			default:
				b.WriteString(" " + r.paint(r.colorLetter, cell) + " ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// State renders the grid with found words highlighted and the current
// selection marked, followed by the word list.
func (r *Renderer) State(state *engine.GameState) string {
	marks := make(map[engine.Position]cellMark)
	for _, p := range state.Highlighted {
		marks[p] = markFound
	}
	for _, p := range state.Selection {
		marks[p] = markSelected
	}

	var b strings.Builder
	title := state.ConfigName
	if title == "" {
		title = "Word Search"
	}
	b.WriteString(r.paint(r.colorHeader, fmt.Sprintf("%s (%d/%d)", title, state.WordsFound, state.WordsTotal)))
	b.WriteString("\n\n")
	b.WriteString(r.grid(state.Grid, marks))
	b.WriteString("\n")
	b.WriteString(r.WordList(state.Words))
	if state.Message != "" {
		b.WriteString("\n")
		b.WriteString(state.Message)
		b.WriteString("\n")
	}
	return b.String()
}

// Puzzle renders a generated puzzle. With reveal set the placed words are
// highlighted and listed with their positions.
func (r *Renderer) Puzzle(p *engine.Puzzle, reveal bool) string {
	marks := make(map[engine.Position]cellMark)
	words := make([]engine.WordStatus, 0, len(p.Placed))
	for _, w := range p.Placed {
		status := engine.WordStatus{Word: w.Word, Hint: w.Hint}
		if reveal {
			for _, c := range w.Cells() {
				marks[c] = markFound
			}
			start, end := w.Start, w.End
			status.Found = true
			status.Start = &start
			status.End = &end
		}
		words = append(words, status)
	}

	var b strings.Builder
	b.WriteString(r.grid(p.Grid.Rows(), marks))
	b.WriteString("\n")
	b.WriteString(r.WordList(words))
	if len(p.Dropped) > 0 {
		b.WriteString(r.paint(r.colorSubtle, "Not placed: "+strings.Join(p.Dropped, ", ")))
		b.WriteString("\n")
	}
	return b.String()
}

// WordList renders the words to find, one per line when hints or positions
// are present and packed to the renderer width otherwise.
func (r *Renderer) WordList(words []engine.WordStatus) string {
	detailed := false
	for _, w := range words {
		if w.Hint != "" || w.Start != nil {
			detailed = true
			break
		}
	}

	var b strings.Builder
	if detailed {
		for _, w := range words {
			b.WriteString(r.wordLabel(w))
			if w.Start != nil && w.End != nil {
				b.WriteString(r.paint(r.colorSubtle, fmt.Sprintf(" %v-%v", *w.Start, *w.End)))
			}
			if w.Hint != "" {
				b.WriteString(r.paint(r.colorSubtle, " - "+w.Hint))
			}
			b.WriteString("\n")
		}
		return b.String()
	}

	lineLen := 0
	for i, w := range words {
		n := len([]rune(w.Word)) + 4
		if i > 0 && lineLen+n > r.width {
			b.WriteString("\n")
			lineLen = 0
		}
		b.WriteString(r.wordLabel(w))
		b.WriteString("  ")
		lineLen += n
	}
	if len(words) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) wordLabel(w engine.WordStatus) string {
	if !w.Found {
		return "[ ] " + w.Word
	}
	return r.paint(r.colorDone, "[x] "+w.Word)
}
