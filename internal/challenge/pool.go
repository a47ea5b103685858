// internal/challenge/pool.go
//
// Curated challenge pool for the daily mode.
//
// Loading behavior (Load):
//   1. If path is non-empty, read one formula per line from that file.
//   2. Otherwise use the embedded assets/challenges.txt.
//
// Every formula must use only keypad symbols, be DefaultLength long and
// evaluate to a whole number in [0,100). Blank lines and lines starting with #
// are skipped.

package challenge

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/robalobadob/nerdle/assets"
	"github.com/robalobadob/nerdle/internal/daily"
	"github.com/robalobadob/nerdle/internal/expr"
	"github.com/robalobadob/nerdle/internal/game"
)

var (
	// ErrEmptyPool is returned when no usable formula was found.
	ErrEmptyPool = errors.New("challenge: pool is empty")
	// ErrUntypeable marks a formula the keypad cannot enter.
	ErrUntypeable = errors.New("challenge: formula cannot be typed")
	// ErrPoolRule marks a formula outside the daily pool's length or range.
	ErrPoolRule = errors.New("challenge: formula breaks pool rules")
)

// Pool is an immutable, ordered list of targets.
type Pool struct {
	targets []game.Target
}

// Load builds a pool from path, or from the embedded list when path is empty.
func Load(path string) (*Pool, error) {
	var lines []string
	var err error
	if path != "" {
		lines, err = readFile(path)
	} else {
		lines, err = assets.ChallengeList()
	}
	if err != nil {
		return nil, fmt.Errorf("load challenges: %w", err)
	}
	return NewPool(lines)
}

// NewPool validates formulas and returns a pool of their targets.
func NewPool(formulas []string) (*Pool, error) {
	p := &Pool{}
	for _, f := range formulas {
		t, err := Parse(f)
		if err != nil {
			return nil, err
		}
		if n := utf8.RuneCountInString(f); n != DefaultLength {
			return nil, fmt.Errorf("%w: %q has %d symbols, want %d", ErrPoolRule, f, n, DefaultLength)
		}
		if t.Result < 0 || t.Result >= 100 {
			return nil, fmt.Errorf("%w: %q = %d, want 0..99", ErrPoolRule, f, t.Result)
		}
		p.targets = append(p.targets, t)
	}
	if len(p.targets) == 0 {
		return nil, ErrEmptyPool
	}
	return p, nil
}

// Parse evaluates formula and returns it as a target. Only symbols the input
// controller forwards are allowed, so every target stays winnable.
func Parse(formula string) (game.Target, error) {
	for _, r := range formula {
		if !game.ValidToken(string(r)) {
			return game.Target{}, fmt.Errorf("%w: %q contains %q", ErrUntypeable, formula, r)
		}
	}
	v, err := expr.Eval(formula)
	if err != nil {
		return game.Target{}, fmt.Errorf("challenge %q: %w", formula, err)
	}
	n, ok := expr.Int(v)
	if !ok {
		return game.Target{}, fmt.Errorf("challenge %q: result %s is not a whole number", formula, v.RatString())
	}
	return game.Target{Formula: formula, Result: n}, nil
}

// Len reports the number of targets.
func (p *Pool) Len() int { return len(p.targets) }

// At returns the i-th target.
func (p *Pool) At(i int) game.Target { return p.targets[i] }

// Daily returns the deterministic target for date and its index.
func (p *Pool) Daily(date time.Time, salt string) (game.Target, int) {
	i := daily.Index(date, salt, len(p.targets))
	return p.targets[i], i
}

// readFile loads one trimmed formula per line, skipping blanks and comments.
func readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
