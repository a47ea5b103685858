// internal/game/types.go
//
// Core type definitions for the Nerdle round engine.
// Defines:
//   - CellState: per-character verdict (correctSpot/wrongSpot/notInSolution).
//   - Cell, Cursor, Board: the grid and its read-only snapshot.
//   - Target, Feedback, Event, Status: values exchanged with the outside.

package game

import "errors"

// CellState represents the evaluation result for a single grid cell.
// Possible values:
//   - "":              not evaluated yet.
//   - "correctSpot":   character matches the target at the same position.
//   - "wrongSpot":     character occurs at another unmatched target position.
//   - "notInSolution": no unmatched target position holds this character.
type CellState string

const (
	StateUnset         CellState = ""
	StateCorrectSpot   CellState = "correctSpot"
	StateWrongSpot     CellState = "wrongSpot"
	StateNotInSolution CellState = "notInSolution"
)

// Status is the derived game status.
type Status string

const (
	StatusInProgress Status = "inProgress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Terminal reports whether no further input can change the game.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// Command tokens. Every other accepted token is a single character.
const (
	TokenEnter  = "Enter"
	TokenDelete = "Delete"
)

// Error messages surfaced to players.
const (
	MsgCouldNotEvaluate = "Could not evaluate input."
	MsgNotValid         = "Input is not valid"
)

// ErrInvalidConfig is returned for non-positive dimensions or a target
// formula whose length does not match the column count.
var ErrInvalidConfig = errors.New("invalid game config")

// Target is the formula/result pair the player must match.
type Target struct {
	Formula string `json:"formula"`
	Result  int    `json:"result"`
}

// Config fixes the grid dimensions for one game.
type Config struct {
	Rows int `json:"rows"` // maximum number of guesses
	Cols int `json:"cols"` // formula length
}

// DefaultConfig matches the generated challenges: six guesses of seven characters.
func DefaultConfig() Config { return Config{Rows: 6, Cols: 7} }

// Cell is one grid position. Char is empty until typed.
type Cell struct {
	Char  string    `json:"char,omitempty"`
	State CellState `json:"state,omitempty"`
}

// Cursor is the current write position.
type Cursor struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// CharFeedback is the verdict for one character of an evaluated row.
type CharFeedback struct {
	Char  string    `json:"char"`
	State CellState `json:"state"`
}

// Feedback is the result of evaluating one completed row.
// Exactly one of Error and Chars is populated.
type Feedback struct {
	Error string         `json:"error,omitempty"`
	Chars []CharFeedback `json:"chars,omitempty"`
}

// AllCorrect reports whether every character landed on its exact spot.
func (f Feedback) AllCorrect() bool {
	if len(f.Chars) == 0 {
		return false
	}
	for _, c := range f.Chars {
		if c.State != StateCorrectSpot {
			return false
		}
	}
	return true
}

// EvaluateFunc evaluates a candidate formula against an expected result.
type EvaluateFunc func(candidate string, expected int) Feedback

// Event is emitted for every token that reaches the engine.
type Event struct {
	Token    string `json:"token"`
	Accepted bool   `json:"accepted"` // false when the token was ignored
	Cursor   Cursor `json:"cursor"`
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`

	// Row and Feedback are set only when a row was just evaluated.
	Row      int            `json:"row"`
	Feedback []CharFeedback `json:"feedback,omitempty"`
}

// Board is a deep copy of the grid for presentation layers.
type Board struct {
	Rows   int      `json:"rows"`
	Cols   int      `json:"cols"`
	Cells  [][]Cell `json:"cells"`
	Cursor Cursor   `json:"cursor"`
	Status Status   `json:"status"`
	Error  string   `json:"error,omitempty"`

	evaluated int
}

// Evaluated returns the (character, state) list of every evaluated row, in order.
func (b Board) Evaluated() [][]CharFeedback {
	out := make([][]CharFeedback, 0, b.evaluated)
	for r := 0; r < b.evaluated && r < len(b.Cells); r++ {
		row := make([]CharFeedback, len(b.Cells[r]))
		for c, cell := range b.Cells[r] {
			row[c] = CharFeedback{Char: cell.Char, State: cell.State}
		}
		out = append(out, row)
	}
	return out
}

// InProgress returns the characters typed so far on the current row.
// It is empty once the game has ended.
func (b Board) InProgress() string {
	if b.Status.Terminal() || b.Cursor.Row >= len(b.Cells) {
		return ""
	}
	s := ""
	for c := 0; c < b.Cursor.Col; c++ {
		s += b.Cells[b.Cursor.Row][c].Char
	}
	return s
}
