// internal/expr/expr.go
//
// Sandboxed arithmetic for submitted formulas.
// Responsibilities:
//   - Restrict input to decimal integers, + - * / and parentheses.
//   - Parse with the HCL expression grammar (standard precedence, left assoc).
//   - Reject every syntax node that is not a number, a parenthesised group,
//     unary minus or one of the four binary operators.
//   - Evaluate exactly over rationals, so 7/2 is 3.5 and never an integer.
//
// Notes:
//   - No EvalContext is ever built: variables and function calls cannot resolve.
//   - Division by zero is reported as malformed input.

package expr

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// MaxLength bounds the accepted source so evaluation always fails fast.
const MaxLength = 64

// ErrMalformed is wrapped by every error Eval returns.
var ErrMalformed = errors.New("malformed expression")

// Allowed reports whether r may appear in a formula.
func Allowed(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '(', ')':
		return true
	}
	return r >= '0' && r <= '9'
}

// Eval parses and evaluates src.
func Eval(src string) (*big.Rat, error) {
	if src == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	if len(src) > MaxLength {
		return nil, fmt.Errorf("%w: longer than %d characters", ErrMalformed, MaxLength)
	}
	for i, r := range src {
		if !Allowed(r) {
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrMalformed, r, i)
		}
	}

	e, diags := hclsyntax.ParseExpression([]byte(src), "formula", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, diags.Error())
	}
	return eval(e)
}

// EqualsInt reports whether v is exactly the integer n.
func EqualsInt(v *big.Rat, n int) bool {
	if v == nil {
		return false
	}
	return v.Cmp(new(big.Rat).SetInt64(int64(n))) == 0
}

// Int returns v as an int when it is integral.
func Int(v *big.Rat) (int, bool) {
	if v == nil || !v.IsInt() || !v.Num().IsInt64() {
		return 0, false
	}
	return int(v.Num().Int64()), true
}

// eval walks the syntax tree. Anything outside the arithmetic subset fails.
func eval(e hclsyntax.Expression) (*big.Rat, error) {
	switch n := e.(type) {
	case *hclsyntax.LiteralValueExpr:
		return literal(n.Val)

	case *hclsyntax.ParenthesesExpr:
		return eval(n.Expression)

	case *hclsyntax.UnaryOpExpr:
		if n.Op != hclsyntax.OpNegate {
			return nil, fmt.Errorf("%w: unsupported unary operator", ErrMalformed)
		}
		v, err := eval(n.Val)
		if err != nil {
			return nil, err
		}
		return new(big.Rat).Neg(v), nil

	case *hclsyntax.BinaryOpExpr:
		lhs, err := eval(n.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := eval(n.RHS)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case hclsyntax.OpAdd:
			return new(big.Rat).Add(lhs, rhs), nil
		case hclsyntax.OpSubtract:
			return new(big.Rat).Sub(lhs, rhs), nil
		case hclsyntax.OpMultiply:
			return new(big.Rat).Mul(lhs, rhs), nil
		case hclsyntax.OpDivide:
			if rhs.Sign() == 0 {
				return nil, fmt.Errorf("%w: division by zero", ErrMalformed)
			}
			return new(big.Rat).Quo(lhs, rhs), nil
		}
		return nil, fmt.Errorf("%w: unsupported binary operator", ErrMalformed)
	}
	return nil, fmt.Errorf("%w: unsupported syntax %T", ErrMalformed, e)
}

// literal converts a parsed number literal into an exact rational.
func literal(v cty.Value) (*big.Rat, error) {
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.Number {
		return nil, fmt.Errorf("%w: not a number", ErrMalformed)
	}
	r, _ := v.AsBigFloat().Rat(nil)
	if r == nil || !r.IsInt() {
		return nil, fmt.Errorf("%w: not an integer literal", ErrMalformed)
	}
	return r, nil
}
