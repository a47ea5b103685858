// internal/game/evaluator.go
//
// Guess evaluation for a single target.
// Responsibilities:
//   - Reject candidates that do not evaluate (sandboxed arithmetic, see expr).
//   - Reject candidates whose value differs from the expected result.
//   - Score accepted candidates with the duplicate-aware two-pass matcher.

package game

import (
	"github.com/robalobadob/nerdle/internal/expr"
)

// NewEvaluator returns the EvaluateFunc for target.
func NewEvaluator(target Target) EvaluateFunc {
	return func(candidate string, expected int) Feedback {
		v, err := expr.Eval(candidate)
		if err != nil {
			return Feedback{Error: MsgCouldNotEvaluate}
		}
		if !expr.EqualsInt(v, expected) {
			return Feedback{Error: MsgNotValid}
		}
		return Feedback{Chars: Score(target.Formula, candidate)}
	}
}

// Score compares candidate with the target formula position by position.
//
// Pass 1:
//   - Collect the target characters at every position the candidate misses
//     (the available multiset).
//
// Pass 2, left to right:
//   - Exact match → correctSpot.
//   - Character still available → wrongSpot, and one occurrence is consumed.
//   - Otherwise → notInSolution.
//
// A character that occurs once among the unmatched target positions is
// therefore reported as wrongSpot at most once.
func Score(target, candidate string) []CharFeedback {
	t := []rune(target)
	c := []rune(candidate)
	out := make([]CharFeedback, len(c))

	available := make(map[rune]int, len(t))
	for i, r := range t {
		if i >= len(c) || c[i] != r {
			available[r]++
		}
	}

	for i, r := range c {
		out[i].Char = string(r)
		switch {
		case i < len(t) && t[i] == r:
			out[i].State = StateCorrectSpot
		case available[r] > 0:
			out[i].State = StateWrongSpot
			available[r]--
		default:
			out[i].State = StateNotInSolution
		}
	}
	return out
}
