// internal/game/engine.go
//
// Round engine for a single Nerdle grid.
// Responsibilities:
//   - Own the ROWS×COLS grid, the cursor and the derived status.
//   - Apply one token at a time (character, Enter, Delete).
//   - On Enter with a full row, call the injected evaluator and write back
//     per-cell states; then derive won / lost / next row.
//   - Emit an immutable Event per token, returned and sent to subscribers.
//
// Notes:
//   - The engine is not safe for concurrent use; Game serializes access.
//   - Nothing here renders. Presentation layers read Board() or subscribe.

package game

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Engine is the round state machine.
type Engine struct {
	cfg    Config
	target Target
	eval   EvaluateFunc

	cells  [][]Cell
	cursor Cursor
	status Status
	err    string // last evaluation error, cleared by the next input

	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewEngine constructs an engine in AwaitingInput(0, 0).
// A nil eval defaults to NewEvaluator(target).
func NewEngine(cfg Config, target Target, eval EvaluateFunc) (*Engine, error) {
	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		return nil, fmt.Errorf("%w: rows and cols must be positive (got %dx%d)", ErrInvalidConfig, cfg.Rows, cfg.Cols)
	}
	if n := utf8.RuneCountInString(target.Formula); n != cfg.Cols {
		return nil, fmt.Errorf("%w: target formula has %d characters, want %d", ErrInvalidConfig, n, cfg.Cols)
	}
	if eval == nil {
		eval = NewEvaluator(target)
	}

	cells := make([][]Cell, cfg.Rows)
	for r := range cells {
		cells[r] = make([]Cell, cfg.Cols)
	}
	return &Engine{
		cfg:    cfg,
		target: target,
		eval:   eval,
		cells:  cells,
		status: StatusInProgress,
	}, nil
}

// Config returns the grid dimensions.
func (e *Engine) Config() Config { return e.cfg }

// Target returns the target this engine was built for.
func (e *Engine) Target() Target { return e.target }

// Status returns the current game status.
func (e *Engine) Status() Status { return e.status }

// Cursor returns the current write position.
func (e *Engine) Cursor() Cursor { return e.cursor }

// Error returns the error recorded by the last Enter, if any.
func (e *Engine) Error() string { return e.err }

// Subscribe registers fn to receive every Event. The returned func removes it.
func (e *Engine) Subscribe(fn func(Event)) (cancel func()) {
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// AddInput applies token and returns the resulting Event.
//
// State transitions from AwaitingInput(row, col):
//   - Delete with col > 0 → clear (row, col-1), col--.
//   - character with col < COLS → store at (row, col), col++.
//   - Enter with col == COLS → evaluate; on error stay put and keep the row,
//     otherwise won / lost / AwaitingInput(row+1, 0).
//   - everything else is ignored.
//
// Won and Lost are terminal: input after them changes nothing.
func (e *Engine) AddInput(token string) Event {
	ev := e.apply(token)
	for _, s := range append([]subscriber(nil), e.subs...) {
		s.fn(ev)
	}
	return ev
}

func (e *Engine) apply(token string) Event {
	ev := Event{Token: token}
	if e.status.Terminal() {
		return e.finish(ev)
	}
	e.err = ""

	row, col := e.cursor.Row, e.cursor.Col
	switch token {
	case TokenDelete:
		if col > 0 {
			e.cells[row][col-1] = Cell{}
			e.cursor.Col--
			ev.Accepted = true
		}

	case TokenEnter:
		if col == e.cfg.Cols {
			e.submitRow(&ev)
			ev.Accepted = true
		}

	default:
		if utf8.RuneCountInString(token) != 1 {
			break
		}
		if col < e.cfg.Cols {
			e.cells[row][col] = Cell{Char: token}
			e.cursor.Col++
			ev.Accepted = true
		}
	}
	return e.finish(ev)
}

// submitRow evaluates the complete current row.
func (e *Engine) submitRow(ev *Event) {
	row := e.cursor.Row
	var sb strings.Builder
	for _, c := range e.cells[row] {
		sb.WriteString(c.Char)
	}

	fb := e.eval(sb.String(), e.target.Result)
	if fb.Error == "" && len(fb.Chars) != e.cfg.Cols {
		fb = Feedback{Error: MsgCouldNotEvaluate}
	}
	if fb.Error != "" {
		e.err = fb.Error
		return
	}

	for c, ch := range fb.Chars {
		e.cells[row][c].State = ch.State
	}
	ev.Row = row
	ev.Feedback = append([]CharFeedback(nil), fb.Chars...)

	switch {
	case fb.AllCorrect():
		e.status = StatusWon
	case row == e.cfg.Rows-1:
		e.status = StatusLost
	default:
		e.cursor = Cursor{Row: row + 1}
	}
}

func (e *Engine) finish(ev Event) Event {
	ev.Cursor = e.cursor
	ev.Status = e.status
	ev.Error = e.err
	return ev
}

// Board returns a deep copy of the grid and its derived state.
func (e *Engine) Board() Board {
	cells := make([][]Cell, len(e.cells))
	for r := range e.cells {
		cells[r] = append([]Cell(nil), e.cells[r]...)
	}
	evaluated := e.cursor.Row
	if e.status.Terminal() {
		evaluated++
	}
	return Board{
		Rows:      e.cfg.Rows,
		Cols:      e.cfg.Cols,
		Cells:     cells,
		Cursor:    e.cursor,
		Status:    e.status,
		Error:     e.err,
		evaluated: evaluated,
	}
}
