package style

import (
	"encoding/json"
	"fmt"
	"math"
)

// Interpolater constrains the value types a Param can interpolate
// between zoom stops. Implementations must be comparable so resolved
// paints can be checked for batching equality.
type Interpolater[T any] interface {
	comparable
	Interpolate(factor float32, next T) T
}

// Number is a float-valued parameter channel.
type Number float32

func (n Number) Interpolate(factor float32, next Number) Number {
	return Number(lerp(float32(n), factor, float32(next)))
}

// Boolean is a flag-valued parameter channel. Interpolation snaps at the
// halfway point.
type Boolean bool

func (b Boolean) Interpolate(factor float32, next Boolean) Boolean {
	if factor < 0.5 {
		return b
	}
	return next
}

// Str is a string-valued parameter channel. Interpolation snaps at the
// halfway point.
type Str string

func (s Str) Interpolate(factor float32, next Str) Str {
	if factor < 0.5 {
		return s
	}
	return next
}

// Offset is a two-component parameter channel, serialized as [x, y].
type Offset struct {
	X, Y float32
}

func (o Offset) Interpolate(factor float32, next Offset) Offset {
	return Offset{
		X: lerp(o.X, factor, next.X),
		Y: lerp(o.Y, factor, next.Y),
	}
}

func (o *Offset) UnmarshalJSON(data []byte) error {
	var pair [2]float32
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	o.X, o.Y = pair[0], pair[1]
	return nil
}

// Stop is one zoom breakpoint of a stop function, serialized as
// [zoom, value].
type Stop[T Interpolater[T]] struct {
	Zoom  float32
	Value T
}

func (s *Stop[T]) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &s.Zoom); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &s.Value)
}

type paramKind uint8

const (
	paramAbsent paramKind = iota
	paramConstant
	paramStops
	paramExpr
)

// Param is a style parameter: absent, a constant, a zoom stop function,
// or a per-feature data expression. Expressions must be folded with
// Resolve before zoom evaluation.
type Param[T Interpolater[T]] struct {
	kind     paramKind
	constant T
	base     float32
	stops    []Stop[T]
	expr     *Expression
}

// Constant builds a constant parameter.
func Constant[T Interpolater[T]](v T) Param[T] {
	return Param[T]{kind: paramConstant, constant: v}
}

// Set reports whether the parameter carries any value source.
func (p Param[T]) Set() bool {
	return p.kind != paramAbsent
}

// Eval returns the parameter value at a zoom level. Absent parameters and
// unresolved expressions report false.
func (p Param[T]) Eval(zoom float32) (T, bool) {
	switch p.kind {
	case paramConstant:
		return p.constant, true
	case paramStops:
		return p.evalStops(zoom), true
	default:
		var zero T
		return zero, false
	}
}

// EvalOr returns the parameter value at a zoom level, or fallback.
func (p Param[T]) EvalOr(zoom float32, fallback T) T {
	if v, ok := p.Eval(zoom); ok {
		return v
	}
	return fallback
}

// evalStops interpolates between the bracketing stops. A base other than
// one eases exponentially between breakpoints.
func (p Param[T]) evalStops(zoom float32) T {
	stops := p.stops
	if len(stops) == 1 || zoom <= stops[0].Zoom {
		return stops[0].Value
	}
	last := stops[len(stops)-1]
	if zoom >= last.Zoom {
		return last.Value
	}

	i := 0
	for i+1 < len(stops) && stops[i+1].Zoom <= zoom {
		i++
	}
	z0, z1 := stops[i].Zoom, stops[i+1].Zoom

	var factor float32
	if p.base == 1 {
		factor = (zoom - z0) / (z1 - z0)
	} else {
		b := float64(p.base)
		factor = float32((math.Pow(b, float64(zoom-z0)) - 1) / (math.Pow(b, float64(z1-z0)) - 1))
	}
	return stops[i].Value.Interpolate(factor, stops[i+1].Value)
}

// Resolve folds an expression parameter into a constant for one feature.
// Results that conv cannot represent fold to absent. Non-expression
// parameters pass through unchanged.
func (p Param[T]) Resolve(feature Feature, conv func(Value) (T, bool)) Param[T] {
	if p.kind != paramExpr {
		return p
	}
	v, ok := conv(p.expr.Eval(feature))
	if !ok {
		return Param[T]{}
	}
	return Param[T]{kind: paramConstant, constant: v}
}

// Equal reports whether two parameters evaluate identically. Expression
// parameters compare by identity.
func (p Param[T]) Equal(o Param[T]) bool {
	if p.kind != o.kind {
		return false
	}
	switch p.kind {
	case paramConstant:
		return p.constant == o.constant
	case paramStops:
		if p.base != o.base || len(p.stops) != len(o.stops) {
			return false
		}
		for i := range p.stops {
			if p.stops[i] != o.stops[i] {
				return false
			}
		}
		return true
	case paramExpr:
		return p.expr == o.expr
	}
	return true
}

type stopsSpec[T Interpolater[T]] struct {
	Base  *float32  `json:"base"`
	Stops []Stop[T] `json:"stops"`
}

// UnmarshalJSON accepts a bare constant, a {base, stops} object, or a
// data expression array.
func (p *Param[T]) UnmarshalJSON(data []byte) error {
	var constant T
	if err := json.Unmarshal(data, &constant); err == nil {
		*p = Param[T]{kind: paramConstant, constant: constant}
		return nil
	}

	var spec stopsSpec[T]
	if err := json.Unmarshal(data, &spec); err == nil && len(spec.Stops) > 0 {
		base := float32(1)
		if spec.Base != nil {
			base = *spec.Base
		}
		*p = Param[T]{kind: paramStops, base: base, stops: spec.Stops}
		return nil
	}

	expr := &Expression{}
	if err := expr.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("style: invalid parameter %s: %w", data, err)
	}
	*p = Param[T]{kind: paramExpr, expr: expr}
	return nil
}

// NumberFrom converts an expression result into a Number.
func NumberFrom(v Value) (Number, bool) {
	n, ok := v.AsNumber()
	return Number(n), ok
}

// BooleanFrom converts an expression result into a Boolean.
func BooleanFrom(v Value) (Boolean, bool) {
	b, ok := v.AsBool()
	return Boolean(b), ok
}

// StrFrom converts an expression result into a Str.
func StrFrom(v Value) (Str, bool) {
	s, ok := v.AsStr()
	return Str(s), ok
}

// ColorFrom converts an expression result into a Color. String results
// are parsed as CSS colors.
func ColorFrom(v Value) (Color, bool) {
	if c, ok := v.AsColor(); ok {
		return c, true
	}
	if s, ok := v.AsStr(); ok {
		c, err := ParseColor(s)
		return c, err == nil
	}
	return Color{}, false
}

// OffsetFrom rejects expression results; array-valued expressions are not
// supported.
func OffsetFrom(Value) (Offset, bool) {
	return Offset{}, false
}
