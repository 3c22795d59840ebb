// Package mvt models vector-tile layers and decodes their wire format.
//
// The decoder keeps string attribute values as raw bytes: real-world tile
// sets contain label data that is not valid UTF-8, and forcing a string
// conversion would fail whole tiles over a single bad attribute.
package mvt

// GeomType identifies the geometry encoding of a feature.
type GeomType uint8

const (
	GeomTypeUnknown GeomType = iota
	GeomTypePoint
	GeomTypeLineString
	GeomTypePolygon
)

func (g GeomType) String() string {
	switch g {
	case GeomTypePoint:
		return "Point"
	case GeomTypeLineString:
		return "LineString"
	case GeomTypePolygon:
		return "Polygon"
	default:
		return "Unknown"
	}
}

// Tile is one decoded vector tile.
type Tile struct {
	Layers []Layer
}

// Layer returns the named layer, or nil when the tile does not carry it.
func (t *Tile) Layer(name string) *Layer {
	for i := range t.Layers {
		if t.Layers[i].Name == name {
			return &t.Layers[i]
		}
	}
	return nil
}

// Layer is one named feature collection inside a tile. Keys and Values
// form the attribute table that feature tag pairs index into.
type Layer struct {
	Version  uint32
	Name     string
	Features []Feature
	Keys     []string
	Values   []Value
	Extent   uint32
}

// Feature is one geometry with attribute tag pairs. Tags holds
// (key index, value index) pairs into the owning layer's table.
type Feature struct {
	ID       uint64
	HasID    bool
	Tags     []uint32
	Type     GeomType
	Geometry []uint32
}

type valueKind uint8

const (
	valueNone valueKind = iota
	valueString
	valueNumber
	valueBool
)

// Value is one attribute value from a layer's value table. Exactly one of
// the three typed accessors reports ok for a well-formed value.
type Value struct {
	kind valueKind
	str  []byte
	num  float64
	b    bool
}

// StringValue builds a string-typed value from raw bytes.
func StringValue(b []byte) Value {
	return Value{kind: valueString, str: b}
}

// NumberValue builds a number-typed value.
func NumberValue(n float64) Value {
	return Value{kind: valueNumber, num: n}
}

// BoolValue builds a boolean-typed value.
func BoolValue(b bool) Value {
	return Value{kind: valueBool, b: b}
}

// Str returns the raw string bytes when the value is string-typed.
func (v Value) Str() ([]byte, bool) {
	return v.str, v.kind == valueString
}

// Number returns the numeric value when the value is number-typed. All
// integer wire representations widen to float64.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == valueNumber
}

// Bool returns the boolean value when the value is bool-typed.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == valueBool
}
