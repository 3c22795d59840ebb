package mvt

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed reports a tile blob that does not parse as the vector-tile
// wire format.
var ErrMalformed = errors.New("mvt: malformed tile")

// Decode parses a vector-tile protobuf blob.
func Decode(data []byte) (*Tile, error) {
	t := &Tile{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		if num == 3 && typ == protowire.BytesType {
			b, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			layer, err := decodeLayer(b)
			if err != nil {
				return nil, err
			}
			t.Layers = append(t.Layers, layer)
			data = data[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]
	}
	return t, nil
}

func decodeLayer(data []byte) (Layer, error) {
	layer := Layer{Extent: 4096}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return layer, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return layer, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			layer.Name = string(b)
			data = data[m:]

		case num == 2 && typ == protowire.BytesType:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return layer, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			feature, err := decodeFeature(b)
			if err != nil {
				return layer, err
			}
			layer.Features = append(layer.Features, feature)
			data = data[m:]

		case num == 3 && typ == protowire.BytesType:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return layer, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			layer.Keys = append(layer.Keys, string(b))
			data = data[m:]

		case num == 4 && typ == protowire.BytesType:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return layer, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			value, err := decodeValue(b)
			if err != nil {
				return layer, err
			}
			layer.Values = append(layer.Values, value)
			data = data[m:]

		case num == 5 && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return layer, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			layer.Extent = uint32(v)
			data = data[m:]

		case num == 15 && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return layer, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			layer.Version = uint32(v)
			data = data[m:]

		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return layer, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			data = data[m:]
		}
	}
	return layer, nil
}

func decodeFeature(data []byte) (Feature, error) {
	var feature Feature
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return feature, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return feature, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			feature.ID = v
			feature.HasID = true
			data = data[m:]

		case num == 2 && typ == protowire.BytesType:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return feature, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			for len(b) > 0 {
				v, k := protowire.ConsumeVarint(b)
				if k < 0 {
					return feature, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(k))
				}
				feature.Tags = append(feature.Tags, uint32(v))
				b = b[k:]
			}
			data = data[m:]

		case num == 3 && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return feature, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			if v <= uint64(GeomTypePolygon) {
				feature.Type = GeomType(v)
			}
			data = data[m:]

		case num == 4 && typ == protowire.BytesType:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return feature, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			for len(b) > 0 {
				v, k := protowire.ConsumeVarint(b)
				if k < 0 {
					return feature, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(k))
				}
				feature.Geometry = append(feature.Geometry, uint32(v))
				b = b[k:]
			}
			data = data[m:]

		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return feature, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			data = data[m:]
		}
	}
	return feature, nil
}

// decodeValue keeps the first typed field it sees. Well-formed values
// carry exactly one field; extra fields are ignored rather than rejected.
func decodeValue(data []byte) (Value, error) {
	var value Value
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return value, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return value, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			if value.kind == valueNone {
				value = StringValue(b)
			}
			data = data[m:]

		case num == 2 && typ == protowire.Fixed32Type:
			v, m := protowire.ConsumeFixed32(data)
			if m < 0 {
				return value, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			if value.kind == valueNone {
				value = NumberValue(float64(math.Float32frombits(v)))
			}
			data = data[m:]

		case num == 3 && typ == protowire.Fixed64Type:
			v, m := protowire.ConsumeFixed64(data)
			if m < 0 {
				return value, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			if value.kind == valueNone {
				value = NumberValue(math.Float64frombits(v))
			}
			data = data[m:]

		case num == 4 && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return value, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			if value.kind == valueNone {
				value = NumberValue(float64(int64(v)))
			}
			data = data[m:]

		case num == 5 && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return value, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			if value.kind == valueNone {
				value = NumberValue(float64(v))
			}
			data = data[m:]

		case num == 6 && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return value, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			if value.kind == valueNone {
				value = NumberValue(float64(protowire.DecodeZigZag(v)))
			}
			data = data[m:]

		case num == 7 && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return value, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			if value.kind == valueNone {
				value = BoolValue(v != 0)
			}
			data = data[m:]

		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return value, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			data = data[m:]
		}
	}
	return value, nil
}
