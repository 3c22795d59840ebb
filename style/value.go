// Package style models a map style document: sources, layers, filters,
// data expressions, and zoom-interpolated parameters. A style is parsed
// once and then evaluated per feature and per zoom while tessellating.
package style

// Feature is the attribute view expressions and filters evaluate against.
// The pseudo key "$type" resolves to the geometry kind name.
type Feature interface {
	Key(name string) (Value, bool)
}

// ValueKind tags the variants of Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindColor
)

// Value is one attribute or expression result. The zero value is Null.
// Null compares unequal to everything, including another Null.
type Value struct {
	kind  ValueKind
	str   string
	num   float64
	b     bool
	color Color
}

// StringValue builds a string value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number builds a numeric value.
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Bool builds a boolean value.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// ColorValue wraps a color.
func ColorValue(c Color) Value {
	return Value{kind: KindColor, color: c}
}

// Null is the absent value.
func Null() Value {
	return Value{}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind {
	return v.kind
}

// AsStr returns the string content for string values.
func (v Value) AsStr() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the numeric content for number values.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsBool returns the boolean content for bool values.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsColor returns the color content for color values.
func (v Value) AsColor() (Color, bool) {
	return v.color, v.kind == KindColor
}

// Truthy converts the value to a boolean. Strings are truthy when
// non-empty, numbers when non-zero and not NaN. Colors and Null are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0 && v.num == v.num
	case KindBool:
		return v.b
	default:
		return false
	}
}

// Equal reports whether two values are equal. Values of different kinds
// never compare equal, and neither does Null.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind || v.kind == KindNull {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == w.str
	case KindNumber:
		return v.num == w.num
	case KindBool:
		return v.b == w.b
	case KindColor:
		return v.color == w.color
	}
	return false
}

// Comparison is one of the six relational operators shared by filters and
// data expressions.
type Comparison uint8

const (
	CmpEq Comparison = iota
	CmpNeq
	CmpLtEq
	CmpGtEq
	CmpLt
	CmpGt
)

func parseComparison(s string) (Comparison, bool) {
	switch s {
	case "==":
		return CmpEq, true
	case "!=":
		return CmpNeq, true
	case "<=":
		return CmpLtEq, true
	case ">=":
		return CmpGtEq, true
	case "<":
		return CmpLt, true
	case ">":
		return CmpGt, true
	}
	return 0, false
}

// cmp evaluates l <op> r. Ordering is only defined between numbers; any
// other ordered comparison is false.
func (c Comparison) cmp(l, r Value) bool {
	switch c {
	case CmpEq:
		return l.Equal(r)
	case CmpNeq:
		return !l.Equal(r)
	}

	ln, lok := l.AsNumber()
	rn, rok := r.AsNumber()
	if !lok || !rok {
		return false
	}
	switch c {
	case CmpLtEq:
		return ln <= rn
	case CmpGtEq:
		return ln >= rn
	case CmpLt:
		return ln < rn
	case CmpGt:
		return ln > rn
	}
	return false
}

// defaultResult is the comparison outcome when the feature lacks the key.
func (c Comparison) defaultResult() bool {
	return c == CmpNeq
}
