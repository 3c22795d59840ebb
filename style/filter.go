package style

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadFilter reports a filter array that does not parse.
var ErrBadFilter = errors.New("style: invalid filter expression")

type filterKind uint8

const (
	filterTrue filterKind = iota
	filterAll
	filterAny
	filterIn
	filterNotIn
	filterHas
	filterNotHas
	filterCmp
)

// Filter is a legacy-syntax layer filter. The zero value matches every
// feature.
type Filter struct {
	kind     filterKind
	children []Filter
	key      string
	tag      Value
	values   []Value
	cmp      Comparison
	value    Value
}

// Eval reports whether the feature passes the filter.
//
// Comparison filters place the literal on the left-hand side of the
// operator, so ["<", "rank", 5] holds when 5 < rank.
func (f *Filter) Eval(feature Feature) bool {
	switch f.kind {
	case filterAll:
		for i := range f.children {
			if !f.children[i].Eval(feature) {
				return false
			}
		}
		return true

	case filterAny:
		for i := range f.children {
			if f.children[i].Eval(feature) {
				return true
			}
		}
		return false

	case filterIn:
		v, ok := feature.Key(f.key)
		if !ok {
			return false
		}
		for _, candidate := range f.values {
			if candidate.Equal(v) {
				return true
			}
		}
		return false

	case filterNotIn:
		v, ok := feature.Key(f.key)
		if !ok {
			return true
		}
		for _, candidate := range f.values {
			if candidate.Equal(v) {
				return false
			}
		}
		return true

	case filterHas:
		key, ok := f.tag.AsStr()
		if !ok {
			return false
		}
		_, present := feature.Key(key)
		return present

	case filterNotHas:
		key, ok := f.tag.AsStr()
		if !ok {
			return true
		}
		_, present := feature.Key(key)
		return !present

	case filterCmp:
		v, ok := feature.Key(f.key)
		if !ok {
			return f.cmp.defaultResult()
		}
		return f.cmp.cmp(f.value, v)

	default:
		return true
	}
}

// UnmarshalJSON parses a filter array expression.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFilter, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing operator", ErrBadFilter)
	}

	var op string
	if err := json.Unmarshal(raw[0], &op); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFilter, err)
	}
	args := raw[1:]

	switch op {
	case "all", "any":
		children := make([]Filter, len(args))
		for i, arg := range args {
			if err := children[i].UnmarshalJSON(arg); err != nil {
				return err
			}
		}
		if op == "all" {
			*f = Filter{kind: filterAll, children: children}
		} else {
			*f = Filter{kind: filterAny, children: children}
		}

	case "in", "!in":
		if len(args) == 0 {
			return fmt.Errorf("%w: in without key", ErrBadFilter)
		}
		var key string
		if err := json.Unmarshal(args[0], &key); err != nil {
			return fmt.Errorf("%w: %v", ErrBadFilter, err)
		}
		values := make([]Value, len(args)-1)
		for i, arg := range args[1:] {
			v, err := parseLiteral(arg)
			if err != nil {
				return err
			}
			values[i] = v
		}
		kind := filterIn
		if op == "!in" {
			kind = filterNotIn
		}
		*f = Filter{kind: kind, key: key, values: values}

	case "has", "!has":
		if len(args) == 0 {
			return fmt.Errorf("%w: has without key", ErrBadFilter)
		}
		tag, err := parseLiteral(args[0])
		if err != nil {
			return err
		}
		kind := filterHas
		if op == "!has" {
			kind = filterNotHas
		}
		*f = Filter{kind: kind, tag: tag}

	default:
		cmp, ok := parseComparison(op)
		if !ok {
			return fmt.Errorf("%w: unknown operator %q", ErrBadFilter, op)
		}
		if len(args) < 2 {
			return fmt.Errorf("%w: comparison needs a key and a value", ErrBadFilter)
		}
		var key string
		if err := json.Unmarshal(args[0], &key); err != nil {
			return fmt.Errorf("%w: %v", ErrBadFilter, err)
		}
		value, err := parseLiteral(args[1])
		if err != nil {
			return err
		}
		*f = Filter{kind: filterCmp, key: key, cmp: cmp, value: value}
	}
	return nil
}

// parseLiteral reads a JSON scalar into a Value.
func parseLiteral(raw json.RawMessage) (Value, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return StringValue(s), nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return NumberValue(n), nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return BoolValue(b), nil
	}
	return Value{}, fmt.Errorf("%w: literal %s", ErrBadFilter, raw)
}
