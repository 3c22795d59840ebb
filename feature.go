package tilemap

import (
	"github.com/gogpu/tilemap/mvt"
	"github.com/gogpu/tilemap/style"
)

// FeatureView adapts one decoded feature to style evaluation. Beyond
// the feature's own attributes it answers the synthetic $type key with
// the geometry kind, which style filters match against.
//
// The zero FeatureView has no attributes at all; background layers
// resolve their paint against it.
type FeatureView struct {
	layer   *mvt.Layer
	feature *mvt.Feature
}

// NewFeatureView wraps a feature of layer.
func NewFeatureView(layer *mvt.Layer, feature *mvt.Feature) FeatureView {
	return FeatureView{layer: layer, feature: feature}
}

// Key implements style.Feature.
func (v FeatureView) Key(key string) (style.Value, bool) {
	if v.feature == nil {
		return style.Value{}, false
	}
	if key == "$type" {
		return style.StringValue(v.feature.Type.String()), true
	}

	tags := v.feature.Tags
	for i := 0; i+1 < len(tags); i += 2 {
		k := tags[i]
		if int(k) >= len(v.layer.Keys) || v.layer.Keys[k] != key {
			continue
		}
		val := tags[i+1]
		if int(val) >= len(v.layer.Values) {
			return style.Value{}, false
		}
		return styleValue(v.layer.Values[val])
	}
	return style.Value{}, false
}

func styleValue(v mvt.Value) (style.Value, bool) {
	if s, ok := v.Str(); ok {
		return style.StringValue(string(s)), true
	}
	if n, ok := v.Number(); ok {
		return style.NumberValue(n), true
	}
	if b, ok := v.Bool(); ok {
		return style.BoolValue(b), true
	}
	return style.Value{}, false
}
