package tilemap

import (
	"testing"

	"github.com/gogpu/tilemap/mvt"
	"github.com/gogpu/tilemap/style"
)

func TestFeatureViewKeys(t *testing.T) {
	layer := &mvt.Layer{
		Keys: []string{"class", "lanes", "oneway"},
		Values: []mvt.Value{
			mvt.StringValue([]byte("motorway")),
			mvt.NumberValue(4),
			mvt.BoolValue(true),
		},
	}
	feature := &mvt.Feature{
		Type: mvt.GeomTypeLineString,
		Tags: []uint32{0, 0, 1, 1, 2, 2},
	}
	view := NewFeatureView(layer, feature)

	if v, ok := view.Key("class"); !ok || !v.Equal(style.StringValue("motorway")) {
		t.Errorf("class = %v, %v", v, ok)
	}
	if v, ok := view.Key("lanes"); !ok || !v.Equal(style.NumberValue(4)) {
		t.Errorf("lanes = %v, %v", v, ok)
	}
	if v, ok := view.Key("oneway"); !ok || !v.Equal(style.BoolValue(true)) {
		t.Errorf("oneway = %v, %v", v, ok)
	}
	if _, ok := view.Key("surface"); ok {
		t.Error("unknown keys must miss")
	}
}

func TestFeatureViewGeometryType(t *testing.T) {
	layer := &mvt.Layer{}
	tests := []struct {
		geom mvt.GeomType
		want string
	}{
		{mvt.GeomTypePolygon, "Polygon"},
		{mvt.GeomTypeLineString, "LineString"},
		{mvt.GeomTypePoint, "Point"},
		{mvt.GeomTypeUnknown, "Unknown"},
	}
	for _, tt := range tests {
		view := NewFeatureView(layer, &mvt.Feature{Type: tt.geom})
		if v, ok := view.Key("$type"); !ok || !v.Equal(style.StringValue(tt.want)) {
			t.Errorf("$type for %v = %v, %v", tt.geom, v, ok)
		}
	}
}

func TestFeatureViewEmpty(t *testing.T) {
	var view FeatureView
	if _, ok := view.Key("$type"); ok {
		t.Error("the empty view has no keys at all")
	}
}

func TestFeatureViewIgnoresBadIndices(t *testing.T) {
	layer := &mvt.Layer{Keys: []string{"class"}}
	feature := &mvt.Feature{Tags: []uint32{0, 9}}
	view := NewFeatureView(layer, feature)
	if _, ok := view.Key("class"); ok {
		t.Error("out-of-range value indices must miss")
	}
}
