package style

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadExpression reports an expression array that does not parse.
var ErrBadExpression = errors.New("style: invalid data expression")

type exprKind uint8

const (
	exprConstant exprKind = iota
	exprAll
	exprAny
	exprIn
	exprHas
	exprGet
	exprCmp
	exprToBoolean
	exprMatch
	exprCase
)

type exprBranch struct {
	test  Expression
	value Expression
}

// Expression is a parsed data expression evaluated per feature. The zero
// value is the constant null.
type Expression struct {
	kind     exprKind
	constant Value
	list     []Expression
	first    *Expression
	second   *Expression
	cases    []exprBranch
	fallback *Expression
	cmp      Comparison
}

// ConstantExpr wraps a value into a constant expression.
func ConstantExpr(v Value) *Expression {
	return &Expression{constant: v}
}

// Eval evaluates the expression against a feature's attributes.
func (e *Expression) Eval(feature Feature) Value {
	switch e.kind {
	case exprConstant:
		return e.constant

	case exprAll:
		for i := range e.list {
			if !e.list[i].Eval(feature).Truthy() {
				return BoolValue(false)
			}
		}
		return BoolValue(true)

	case exprAny:
		for i := range e.list {
			if e.list[i].Eval(feature).Truthy() {
				return BoolValue(true)
			}
		}
		return BoolValue(false)

	case exprIn:
		needle := e.first.Eval(feature)
		for i := range e.list {
			if e.list[i].Eval(feature).Equal(needle) {
				return BoolValue(true)
			}
		}
		return BoolValue(false)

	case exprHas:
		key, ok := e.first.Eval(feature).AsStr()
		if !ok {
			return BoolValue(false)
		}
		_, present := feature.Key(key)
		return BoolValue(present)

	case exprGet:
		key, ok := e.first.Eval(feature).AsStr()
		if !ok {
			return Null()
		}
		v, present := feature.Key(key)
		if !present {
			return Null()
		}
		return v

	case exprCmp:
		l := e.first.Eval(feature)
		r := e.second.Eval(feature)
		return BoolValue(e.cmp.cmp(l, r))

	case exprToBoolean:
		return BoolValue(e.first.Eval(feature).Truthy())

	case exprMatch:
		input := e.first.Eval(feature)
		for i := range e.cases {
			if e.cases[i].test.Eval(feature).Equal(input) {
				return e.cases[i].value.Eval(feature)
			}
		}
		return e.fallback.Eval(feature)

	case exprCase:
		for i := range e.cases {
			if e.cases[i].test.Eval(feature).Truthy() {
				return e.cases[i].value.Eval(feature)
			}
		}
		return e.fallback.Eval(feature)
	}
	return Null()
}

// ComputedFromFeature reports whether any evaluation path reads feature
// attributes. Expressions that do not can be folded once per layer
// instead of once per feature.
func (e *Expression) ComputedFromFeature() bool {
	anyOf := func(exprs []Expression) bool {
		for i := range exprs {
			if exprs[i].ComputedFromFeature() {
				return true
			}
		}
		return false
	}
	branches := func(cases []exprBranch) bool {
		for i := range cases {
			if cases[i].test.ComputedFromFeature() || cases[i].value.ComputedFromFeature() {
				return true
			}
		}
		return false
	}

	switch e.kind {
	case exprConstant:
		return false
	case exprGet, exprHas:
		return true
	case exprAll, exprAny:
		return anyOf(e.list)
	case exprIn:
		return e.first.ComputedFromFeature() || anyOf(e.list)
	case exprCmp:
		return e.first.ComputedFromFeature() || e.second.ComputedFromFeature()
	case exprToBoolean:
		return e.first.ComputedFromFeature()
	case exprMatch:
		return e.first.ComputedFromFeature() || e.fallback.ComputedFromFeature() || branches(e.cases)
	case exprCase:
		return e.fallback.ComputedFromFeature() || branches(e.cases)
	}
	return false
}

// UnmarshalJSON parses a JSON scalar as a constant or an array as an
// operator expression.
func (e *Expression) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] != '[' {
		v, err := parseLiteral(data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadExpression, err)
		}
		*e = Expression{kind: exprConstant, constant: v}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrBadExpression, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing operator", ErrBadExpression)
	}

	var op string
	if err := json.Unmarshal(raw[0], &op); err != nil {
		return fmt.Errorf("%w: %v", ErrBadExpression, err)
	}
	args := raw[1:]

	parseOne := func(raw json.RawMessage) (*Expression, error) {
		sub := &Expression{}
		if err := sub.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return sub, nil
	}
	parseList := func(raws []json.RawMessage) ([]Expression, error) {
		out := make([]Expression, len(raws))
		for i, r := range raws {
			if err := out[i].UnmarshalJSON(r); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	switch op {
	case "all", "any":
		list, err := parseList(args)
		if err != nil {
			return err
		}
		kind := exprAll
		if op == "any" {
			kind = exprAny
		}
		*e = Expression{kind: kind, list: list}

	case "in":
		if len(args) == 0 {
			return fmt.Errorf("%w: in without needle", ErrBadExpression)
		}
		needle, err := parseOne(args[0])
		if err != nil {
			return err
		}
		list, err := parseList(args[1:])
		if err != nil {
			return err
		}
		*e = Expression{kind: exprIn, first: needle, list: list}

	case "has", "get", "to-boolean":
		if len(args) == 0 {
			return fmt.Errorf("%w: %s without operand", ErrBadExpression, op)
		}
		operand, err := parseOne(args[0])
		if err != nil {
			return err
		}
		kind := exprHas
		switch op {
		case "get":
			kind = exprGet
		case "to-boolean":
			kind = exprToBoolean
		}
		*e = Expression{kind: kind, first: operand}

	case "case":
		if len(args)%2 == 0 {
			return fmt.Errorf("%w: case needs condition/value pairs and a fallback", ErrBadExpression)
		}
		cases := make([]exprBranch, 0, len(args)/2)
		for i := 0; i+1 < len(args); i += 2 {
			test, err := parseOne(args[i])
			if err != nil {
				return err
			}
			value, err := parseOne(args[i+1])
			if err != nil {
				return err
			}
			cases = append(cases, exprBranch{test: *test, value: *value})
		}
		fallback, err := parseOne(args[len(args)-1])
		if err != nil {
			return err
		}
		*e = Expression{kind: exprCase, cases: cases, fallback: fallback}

	case "match":
		if len(args) < 2 || len(args)%2 != 0 {
			return fmt.Errorf("%w: match needs an input, label/value pairs and a fallback", ErrBadExpression)
		}
		input, err := parseOne(args[0])
		if err != nil {
			return err
		}
		cases := make([]exprBranch, 0, (len(args)-2)/2)
		for i := 1; i+1 < len(args)-1; i += 2 {
			label, err := parseOne(args[i])
			if err != nil {
				return err
			}
			if label.kind != exprConstant {
				return fmt.Errorf("%w: match labels must be constant", ErrBadExpression)
			}
			value, err := parseOne(args[i+1])
			if err != nil {
				return err
			}
			cases = append(cases, exprBranch{test: *label, value: *value})
		}
		fallback, err := parseOne(args[len(args)-1])
		if err != nil {
			return err
		}
		*e = Expression{kind: exprMatch, first: input, cases: cases, fallback: fallback}

	default:
		cmp, ok := parseComparison(op)
		if !ok {
			return fmt.Errorf("%w: unknown operator %q", ErrBadExpression, op)
		}
		if len(args) < 2 {
			return fmt.Errorf("%w: comparison needs two operands", ErrBadExpression)
		}
		left, err := parseOne(args[0])
		if err != nil {
			return err
		}
		right, err := parseOne(args[1])
		if err != nil {
			return err
		}
		*e = Expression{kind: exprCmp, cmp: cmp, first: left, second: right}
	}
	return nil
}
