package engine

// SelectionState is the state of a Selector.
type SelectionState int

const (
	Idle SelectionState = iota
	Selecting
)

func (s SelectionState) String() string {
	if s == Selecting {
		return "selecting"
	}
	return "idle"
}

// Selector tracks the cells a player drags across. The first cell is the
// anchor and the second fixes the direction; every later cell must be the
// next step along that ray, so the selection is always one gap-free line.
type Selector struct {
	size  int
	state SelectionState
	cells []Position
}

// NewSelector returns an idle selector for a size×size grid.
func NewSelector(size int) *Selector {
	return &Selector{size: size}
}

// State returns the current state.
func (s *Selector) State() SelectionState {
	return s.state
}

// Cells returns a copy of the current selection.
func (s *Selector) Cells() []Position {
	out := make([]Position, len(s.cells))
	copy(out, s.cells)
	return out
}

// Len returns the number of selected cells.
func (s *Selector) Len() int {
	return len(s.cells)
}

// Contains reports whether p is already selected.
func (s *Selector) Contains(p Position) bool {
	for _, c := range s.cells {
		if c == p {
			return true
		}
	}
	return false
}

func (s *Selector) inBounds(p Position) bool {
	return p.Row >= 0 && p.Row < s.size && p.Col >= 0 && p.Col < s.size
}

// Engage starts a new selection at p, discarding any selection in progress.
// Off-grid cells are ignored.
func (s *Selector) Engage(p Position) bool {
	if !s.inBounds(p) {
		return false
	}
	s.state = Selecting
	s.cells = []Position{p}
	return true
}

// Direction returns the direction fixed by the first two cells.
func (s *Selector) Direction() (Direction, bool) {
	if len(s.cells) < 2 {
		return Direction{}, false
	}
	return DirectionBetween(s.cells[0], s.cells[1])
}

// CanExtend reports whether Enter(p) would add p to the selection.
func (s *Selector) CanExtend(p Position) bool {
	if s.state != Selecting || !s.inBounds(p) || s.Contains(p) {
		return false
	}
	last := s.cells[len(s.cells)-1]
	step, ok := DirectionBetween(last, p)
	if !ok || last.Step(step, 1) != p {
		return false
	}
	locked, ok := s.Direction()
	return !ok || step == locked
}

// Enter appends p to the selection when CanExtend allows it.
func (s *Selector) Enter(p Position) bool {
	if !s.CanExtend(p) {
		return false
	}
	s.cells = append(s.cells, p)
	return true
}

// Commit ends the selection and returns its cells. The second result is
// false when there was nothing long enough to evaluate.
func (s *Selector) Commit() ([]Position, bool) {
	if s.state != Selecting {
		return nil, false
	}
	cells := s.cells
	s.state = Idle
	s.cells = nil
	return cells, len(cells) >= MinSelectionLength
}

// Leave discards the selection without evaluating it.
func (s *Selector) Leave() {
	s.state = Idle
	s.cells = nil
}
