package eval

import (
	"github.com/mqlang/mq/internal/ast"
	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/value"
)

// evalBinary evaluates a binary operator expression, short-circuiting
// `&&`/`||` so the right operand is only evaluated when it can affect the
// result.
func (ev *Evaluator) evalBinary(n *ast.BinaryExpr, env Env) (value.Value, error) {
	left, err := ev.evalValue(n.Left, env)
	if err != nil {
		return value.None, err
	}

	switch n.Op {
	case "&&":
		if !left.Truthy() {
			return value.Bool(false), nil
		}
		right, err := ev.evalValue(n.Right, env)
		if err != nil {
			return value.None, err
		}
		return value.Bool(right.Truthy()), nil
	case "||":
		if left.Truthy() {
			return value.Bool(true), nil
		}
		right, err := ev.evalValue(n.Right, env)
		if err != nil {
			return value.None, err
		}
		return value.Bool(right.Truthy()), nil
	}

	right, err := ev.evalValue(n.Right, env)
	if err != nil {
		return value.None, err
	}

	switch n.Op {
	case "==":
		return value.Bool(value.Equal(left, right)), nil
	case "!=":
		return value.Bool(!value.Equal(left, right)), nil
	case "<":
		return value.Bool(value.Compare(left, right) < 0), nil
	case "<=":
		return value.Bool(value.Compare(left, right) <= 0), nil
	case ">":
		return value.Bool(value.Compare(left, right) > 0), nil
	case ">=":
		return value.Bool(value.Compare(left, right) >= 0), nil
	case "+":
		return addValues(left, right)
	case "-":
		ln, rn, err := bothNumbers("-", left, right)
		if err != nil {
			return value.None, err
		}
		return value.Number(ln - rn), nil
	case "*":
		ln, rn, err := bothNumbers("*", left, right)
		if err != nil {
			return value.None, err
		}
		return value.Number(ln * rn), nil
	case "/":
		ln, rn, err := bothNumbers("/", left, right)
		if err != nil {
			return value.None, err
		}
		if rn == 0 {
			return value.None, mqerr.New(mqerr.KindDivByZero, mqerr.Span{}, "division by zero")
		}
		return value.Number(ln / rn), nil
	case "%":
		ln, rn, err := bothNumbers("%", left, right)
		if err != nil {
			return value.None, err
		}
		if rn == 0 {
			return value.None, mqerr.New(mqerr.KindDivByZero, mqerr.Span{}, "division by zero")
		}
		return value.Number(float64(int64(ln) % int64(rn))), nil
	default:
		return value.None, mqerr.New(mqerr.KindType, mqerr.Span{}, "internal: unhandled operator %q", n.Op)
	}
}

// addValues implements `+` across the kinds the grammar actually applies
// it to: numeric addition, string/array concatenation, and string
// coercion when one side is a string (so `"n=" + 1` reads naturally).
func addValues(left, right value.Value) (value.Value, error) {
	switch {
	case left.Kind() == value.KindNumber && right.Kind() == value.KindNumber:
		return value.Number(left.Number() + right.Number()), nil
	case left.Kind() == value.KindString || right.Kind() == value.KindString:
		return value.String(value.ToString(left) + value.ToString(right)), nil
	case left.Kind() == value.KindArray && right.Kind() == value.KindArray:
		return value.ArrayNoCopy(append(append([]value.Value{}, left.Array()...), right.Array()...)), nil
	default:
		return value.None, mqerr.New(mqerr.KindType, mqerr.Span{}, "'+' not defined for %s and %s", value.TypeName(left), value.TypeName(right))
	}
}

func bothNumbers(op string, left, right value.Value) (float64, float64, error) {
	if left.Kind() != value.KindNumber || right.Kind() != value.KindNumber {
		return 0, 0, mqerr.New(mqerr.KindType, mqerr.Span{}, "'%s' expected two numbers, got %s and %s", op, value.TypeName(left), value.TypeName(right))
	}
	return left.Number(), right.Number(), nil
}

func (ev *Evaluator) evalUnary(n *ast.UnaryExpr, env Env) (value.Value, error) {
	v, err := ev.evalValue(n.Operand, env)
	if err != nil {
		return value.None, err
	}
	switch n.Op {
	case "!":
		return value.Bool(!v.Truthy()), nil
	case "-":
		if v.Kind() != value.KindNumber {
			return value.None, mqerr.New(mqerr.KindType, mqerr.Span{}, "unary '-' expected a number, got %s", value.TypeName(v))
		}
		return value.Number(-v.Number()), nil
	default:
		return value.None, mqerr.New(mqerr.KindType, mqerr.Span{}, "internal: unhandled unary operator %q", n.Op)
	}
}
