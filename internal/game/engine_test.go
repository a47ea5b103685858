package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// e2eTarget is "1+23" padded to five characters.
var e2eTarget = Target{Formula: "01+23", Result: 24}

func newTestEngine(t *testing.T, rows int) *Engine {
	t.Helper()
	e, err := NewEngine(Config{Rows: rows, Cols: 5}, e2eTarget, nil)
	require.NoError(t, err)
	return e
}

func typeRow(e *Engine, s string) {
	for _, r := range s {
		e.AddInput(string(r))
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		target Target
	}{
		{"zero rows", Config{Rows: 0, Cols: 5}, e2eTarget},
		{"negative cols", Config{Rows: 6, Cols: -1}, e2eTarget},
		{"short target", Config{Rows: 6, Cols: 7}, e2eTarget},
		{"long target", Config{Rows: 6, Cols: 4}, e2eTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewEngine(tt.cfg, tt.target, nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestEngine_InitialState(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 6)
	assert.Equal(t, StatusInProgress, e.Status())
	assert.Equal(t, Cursor{}, e.Cursor())

	b := e.Board()
	assert.Equal(t, 6, b.Rows)
	assert.Equal(t, 5, b.Cols)
	require.Len(t, b.Cells, 6)
	for _, row := range b.Cells {
		require.Len(t, row, 5)
		for _, c := range row {
			assert.Equal(t, Cell{}, c)
		}
	}
	assert.Empty(t, b.Evaluated())
	assert.Empty(t, b.InProgress())
}

func TestEngine_TypingAndFullRow(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 6)
	typeRow(e, "12+12")
	assert.Equal(t, Cursor{Row: 0, Col: 5}, e.Cursor())
	assert.Equal(t, "12+12", e.Board().InProgress())

	// Row full: further characters are ignored.
	before := e.Board()
	ev := e.AddInput("9")
	assert.False(t, ev.Accepted)
	assert.Equal(t, before, e.Board())
}

func TestEngine_EnterOnIncompleteRowIsIgnored(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 6)
	typeRow(e, "12")
	before := e.Board()

	ev := e.AddInput(TokenEnter)
	assert.False(t, ev.Accepted)
	assert.Equal(t, Cursor{Row: 0, Col: 2}, ev.Cursor)
	assert.Equal(t, before, e.Board())
}

func TestEngine_DeleteBoundary(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 6)

	before := e.Board()
	ev := e.AddInput(TokenDelete)
	assert.False(t, ev.Accepted)
	assert.Equal(t, before, e.Board())

	typeRow(e, "123")
	ev = e.AddInput(TokenDelete)
	assert.True(t, ev.Accepted)
	assert.Equal(t, Cursor{Row: 0, Col: 2}, e.Cursor())

	b := e.Board()
	assert.Equal(t, "1", b.Cells[0][0].Char)
	assert.Equal(t, "2", b.Cells[0][1].Char)
	assert.Equal(t, Cell{}, b.Cells[0][2])
	assert.Equal(t, "12", b.InProgress())
}

func TestEngine_EvaluationErrorKeepsRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		guess string
		want  string
	}{
		{"malformed", "12++3", MsgCouldNotEvaluate},
		{"wrong value", "12+13", MsgNotValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t, 6)
			typeRow(e, tt.guess)

			ev := e.AddInput(TokenEnter)
			assert.True(t, ev.Accepted)
			assert.Equal(t, tt.want, ev.Error)
			assert.Nil(t, ev.Feedback)
			assert.Equal(t, StatusInProgress, ev.Status)
			assert.Equal(t, Cursor{Row: 0, Col: 5}, e.Cursor())
			assert.Equal(t, tt.guess, e.Board().InProgress())
			assert.Equal(t, tt.want, e.Board().Error)

			// The next input clears the error; Delete edits in place.
			ev = e.AddInput(TokenDelete)
			assert.Empty(t, ev.Error)
			assert.Empty(t, e.Error())
			assert.Equal(t, Cursor{Row: 0, Col: 4}, e.Cursor())
		})
	}
}

func TestEngine_AllCorrectWins(t *testing.T) {
	t.Parallel()

	for _, row := range []int{0, 3, 5} {
		e := newTestEngine(t, 6)
		for i := 0; i < row; i++ {
			typeRow(e, "12+12")
			e.AddInput(TokenEnter)
		}
		typeRow(e, "01+23")
		ev := e.AddInput(TokenEnter)

		assert.Equal(t, StatusWon, ev.Status, "row %d", row)
		assert.Equal(t, StatusWon, e.Status())
		assert.Equal(t, row, ev.Row)
		assert.Equal(t, []CellState{C, C, C, C, C}, states(ev.Feedback))
	}
}

func TestEngine_ExhaustionLoses(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 6)
	for row := 0; row < 6; row++ {
		typeRow(e, "12+12")
		ev := e.AddInput(TokenEnter)
		require.Empty(t, ev.Error)
		if row < 5 {
			assert.Equal(t, StatusInProgress, ev.Status)
			assert.Equal(t, Cursor{Row: row + 1}, ev.Cursor)
		} else {
			assert.Equal(t, StatusLost, ev.Status)
		}
	}
	assert.Equal(t, StatusLost, e.Status())
	assert.Len(t, e.Board().Evaluated(), 6)
}

func TestEngine_TerminalImmutability(t *testing.T) {
	t.Parallel()

	finish := map[string]func(e *Engine){
		"won": func(e *Engine) {
			typeRow(e, "01+23")
			e.AddInput(TokenEnter)
		},
		"lost": func(e *Engine) {
			typeRow(e, "12+12")
			e.AddInput(TokenEnter)
		},
	}

	for name, fn := range finish {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t, 1)
			fn(e)
			require.True(t, e.Status().Terminal())

			before := e.Board()
			cursor := e.Cursor()
			for _, tok := range []string{"1", "+", TokenDelete, TokenEnter, "x", ""} {
				ev := e.AddInput(tok)
				assert.False(t, ev.Accepted)
			}
			assert.Equal(t, before, e.Board())
			assert.Equal(t, cursor, e.Cursor())
			assert.Equal(t, before.Status, e.Status())
		})
	}
}

func TestEngine_EndToEnd(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 6)

	typeRow(e, "12+12")
	ev := e.AddInput(TokenEnter)
	require.Empty(t, ev.Error)
	assert.Equal(t, StatusInProgress, ev.Status)
	assert.Equal(t, 0, ev.Row)
	assert.Equal(t, []CellState{W, W, C, N, N}, states(ev.Feedback))
	assert.Equal(t, Cursor{Row: 1, Col: 0}, e.Cursor())

	b := e.Board()
	require.Len(t, b.Evaluated(), 1)
	assert.Equal(t, ev.Feedback, b.Evaluated()[0])
	assert.Equal(t, StateWrongSpot, b.Cells[0][0].State)

	typeRow(e, "01+23")
	ev = e.AddInput(TokenEnter)
	assert.Equal(t, 1, ev.Row)
	assert.Equal(t, []CellState{C, C, C, C, C}, states(ev.Feedback))
	assert.Equal(t, StatusWon, e.Status())
	assert.Len(t, e.Board().Evaluated(), 2)
}

func TestEngine_InjectedEvaluator(t *testing.T) {
	t.Parallel()

	var gotCandidate string
	var gotExpected int
	eval := func(candidate string, expected int) Feedback {
		gotCandidate, gotExpected = candidate, expected
		return Feedback{Chars: []CharFeedback{{Char: "9", State: StateNotInSolution}}}
	}
	e, err := NewEngine(Config{Rows: 2, Cols: 5}, e2eTarget, eval)
	require.NoError(t, err)

	typeRow(e, "99999")
	ev := e.AddInput(TokenEnter)

	assert.Equal(t, "99999", gotCandidate)
	assert.Equal(t, 24, gotExpected)
	// Feedback of the wrong length is treated as an evaluation failure.
	assert.Equal(t, MsgCouldNotEvaluate, ev.Error)
	assert.Equal(t, Cursor{Row: 0, Col: 5}, e.Cursor())
}

func TestEngine_Subscribe(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 6)
	var got []Event
	cancel := e.Subscribe(func(ev Event) { got = append(got, ev) })

	ev1 := e.AddInput("1")
	ev2 := e.AddInput(TokenEnter)
	assert.Equal(t, []Event{ev1, ev2}, got)

	cancel()
	e.AddInput("2")
	assert.Len(t, got, 2)
}

func TestBoard_IsACopy(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 6)
	typeRow(e, "1")
	b := e.Board()
	b.Cells[0][0].Char = "7"
	assert.Equal(t, "1", e.Board().Cells[0][0].Char)
}
