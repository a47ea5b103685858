// internal/challenge/generate.go
//
// Random target generation.
//
// Rules (kept from the original generator):
//   - Three operands, each a single-digit (1–9) or double-digit (10–99)
//     value with equal probability.
//   - Two operators drawn from + - * /.
//   - The formula is exactly DefaultLength characters long.
//   - Every division is exact at the step where it is applied.
//   - The result lies in [0, 100).

package challenge

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/robalobadob/nerdle/internal/game"
)

// DefaultLength is the formula length of generated challenges.
const DefaultLength = 7

var errRemainder = errors.New("division with remainder")

var operators = [...]byte{'+', '-', '*', '/'}

// Generate draws targets from r until one satisfies every rule.
func Generate(r *rand.Rand) game.Target {
	for {
		var vals [3]int
		for i := range vals {
			if r.IntN(2) == 0 {
				vals[i] = 1 + r.IntN(9)
			} else {
				vals[i] = 10 + r.IntN(90)
			}
		}
		ops := [2]byte{operators[r.IntN(4)], operators[r.IntN(4)]}

		formula := fmt.Sprintf("%d%c%d%c%d", vals[0], ops[0], vals[1], ops[1], vals[2])
		if len(formula) != DefaultLength {
			continue
		}
		res, err := calculate(ops, vals)
		if err != nil || res < 0 || res >= 100 {
			continue
		}
		return game.Target{Formula: formula, Result: res}
	}
}

// Random generates a target from a crypto-seeded source.
func Random() game.Target {
	var seed [16]byte
	_, _ = crand.Read(seed[:])
	r := rand.New(rand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:])))
	return Generate(r)
}

// calculate evaluates a op0 b op1 c with standard precedence.
func calculate(ops [2]byte, vals [3]int) (int, error) {
	if isMulDiv(ops[0]) || !isMulDiv(ops[1]) {
		left, err := apply(ops[0], vals[0], vals[1])
		if err != nil {
			return 0, err
		}
		return apply(ops[1], left, vals[2])
	}
	right, err := apply(ops[1], vals[1], vals[2])
	if err != nil {
		return 0, err
	}
	return apply(ops[0], vals[0], right)
}

func isMulDiv(op byte) bool { return op == '*' || op == '/' }

func apply(op byte, l, r int) (int, error) {
	switch op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	}
	if r == 0 || l%r != 0 {
		return 0, errRemainder
	}
	return l / r, nil
}
