package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/word-search-game/game/engine"
	"github.com/wricardo/word-search-game/game/render"
	"github.com/wricardo/word-search-game/game/service"
)

const gameInstructions = `Word Search Game - Complete Instructions

GAME OBJECTIVE:
Find every hidden word in the square letter grid. The puzzle is complete when
all listed words have been found.

HOW WORDS ARE HIDDEN:
• Words are placed in a straight line: left to right, top to bottom, or
  diagonally (down-right or down-left)
• Words may share letters where they cross
• Every other cell is a random letter A-Z

HOW TO SELECT:
• Use select_word with the cell of the first letter and the cell of the last
  letter. Coordinates are (row, col), 0-based, (0,0) is the top-left corner
• The line may run in any of the 8 directions, so a word can also be selected
  from its last letter back to its first
• Start and end must be in the same row, the same column, or on a 45° diagonal
• Single-cell selections are ignored

READING THE GRID:
• game_state shows column numbers on top and row numbers on the left
• Letters of found words are shown as [A]
• The word list marks found words with [x] and shows their start and end
• describe_cell shows one cell and its 8 neighbours to double-check coordinates

STRATEGY:
1. Call game_state and read the word list
2. Look for the first letter of a word, then check its 8 neighbours for the
   second letter to get the direction
3. Compute the end cell: start + (length-1) * direction
4. Call select_word with start and end
5. If the result says no match, use describe_cell to verify the letters

OTHER TOOLS:
• reset_game generates a new grid for the same words and clears progress
• event_history lists the words found so far
• list_configs and create_session start other puzzles; create_session also
  accepts your own word list
• generate_config creates a new themed word list when a generator is configured`

func formatSessionInfo(r *render.Renderer, session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if !session.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Created: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	for _, w := range session.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w)
	}
	if session.GameState != nil {
		b.WriteString("\n")
		b.WriteString(r.State(session.GameState))
	}
	return b.String()
}

func formatSelectionResult(r *render.Renderer, result *service.SelectionResult) string {
	var b strings.Builder

	switch {
	case result.WordFound != "":
		fmt.Fprintf(&b, "✓ Found %s\n", result.WordFound)
	case !result.Accepted:
		b.WriteString("✗ Selection ignored\n")
	default:
		fmt.Fprintf(&b, "✗ %q is not a hidden word you still need\n", result.Candidate)
	}

	if len(result.Selection) > 0 {
		cells := make([]string, len(result.Selection))
		for i, c := range result.Selection {
			cells[i] = c.String()
		}
		fmt.Fprintf(&b, "Cells: %s\n", strings.Join(cells, " "))
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	if result.GameState != nil {
		b.WriteString("\n")
		b.WriteString(r.State(result.GameState))
	} else if result.Message != "" {
		b.WriteString(result.Message)
		b.WriteString("\n")
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalEvents)

	if len(history.Events) == 0 {
		b.WriteString("(no events yet)\n")
	}
	for i, ev := range history.Events {
		num := (history.Page-1)*history.PageSize + i + 1
		switch ev.Type {
		case engine.EventWordFound:
			fmt.Fprintf(&b, "%d. [round %d] found %s", num, ev.Round, ev.Word)
			if len(ev.Cells) > 0 {
				fmt.Fprintf(&b, " %v-%v", ev.Cells[0], ev.Cells[len(ev.Cells)-1])
			}
			b.WriteString("\n")
		case engine.EventPuzzleCompleted:
			fmt.Fprintf(&b, "%d. [round %d] puzzle completed\n", num, ev.Round)
		default:
			fmt.Fprintf(&b, "%d. [round %d] %s\n", num, ev.Round, ev.Type)
		}
	}
	return b.String()
}

func formatGenerateResult(result *service.GenerateResult) string {
	var b strings.Builder
	cfg := result.Config
	if cfg == nil {
		return "Generator returned no definition\n"
	}

	fmt.Fprintf(&b, "Generated: %s\n", cfg.Name)
	if cfg.Description != "" {
		fmt.Fprintf(&b, "%s\n", cfg.Description)
	}
	fmt.Fprintf(&b, "Grid: %dx%d, Locale: %s\n\n", cfg.GridSize, cfg.GridSize, cfg.Locale)
	for _, w := range cfg.Words {
		if hint := engine.HintFor(cfg.Hints, w); hint != "" {
			fmt.Fprintf(&b, "• %s - %s\n", w, hint)
		} else {
			fmt.Fprintf(&b, "• %s\n", w)
		}
	}
	if result.Saved {
		fmt.Fprintf(&b, "\nSaved as config_id: %s (use create_session)\n", result.ConfigID)
	} else {
		b.WriteString("\nNot saved. Pass save_as to keep it, or create_session with these words.\n")
	}
	return b.String()
}

// describeCell reports the letter at p, its neighbours and the found words
// that cover it.
func describeCell(state *engine.GameState, p engine.Position) (string, error) {
	size := len(state.Grid)
	if p.Row < 0 || p.Row >= size || p.Col < 0 || p.Col >= size {
		return "", fmt.Errorf("cell %v is out of bounds. Grid size is %dx%d (0-%d for both row and col)",
			p, size, size, size-1)
	}

	letterAt := func(q engine.Position) string {
		if q.Row < 0 || q.Row >= size || q.Col < 0 || q.Col >= size {
			return "·"
		}
		return string([]rune(state.Grid[q.Row])[q.Col])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell %v: %s\n\n", p, letterAt(p))

	b.WriteString("Neighbours:\n")
	for dr := -1; dr <= 1; dr++ {
		b.WriteString("  ")
		for dc := -1; dc <= 1; dc++ {
			q := engine.Position{Row: p.Row + dr, Col: p.Col + dc}
			if dr == 0 && dc == 0 {
				b.WriteString("[" + letterAt(q) + "]")
				continue
			}
			b.WriteString(" " + letterAt(q) + " ")
		}
		b.WriteString("\n")
	}

	var covering []string
	for _, w := range state.Words {
		if !w.Found || w.Start == nil || w.End == nil {
			continue
		}
		for _, c := range engine.LineCells(*w.Start, *w.End) {
			if c == p {
				covering = append(covering, w.Word)
				break
			}
		}
	}
	if len(covering) > 0 {
		fmt.Fprintf(&b, "\nPart of found word(s): %s\n", strings.Join(covering, ", "))
	}

	for _, c := range state.Selection {
		if c == p {
			b.WriteString("\nPart of the current selection\n")
			break
		}
	}
	return b.String(), nil
}
