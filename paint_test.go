package tilemap

import (
	"testing"

	"github.com/gogpu/tilemap/style"
)

func parsePaintLayers(t *testing.T) []style.Layer {
	t.Helper()
	st, err := style.Parse([]byte(`{
		"version": 8,
		"sources": {},
		"layers": [
			{"id": "bg", "type": "background",
				"paint": {"background-color": "#204060"}},
			{"id": "park", "type": "fill", "source": "osm", "source-layer": "parks",
				"paint": {"fill-color": "#00ff00", "fill-outline-color": "#003300"}},
			{"id": "water", "type": "fill", "source": "osm", "source-layer": "water",
				"paint": {"fill-color": "#0000ff"}},
			{"id": "road", "type": "line", "source": "osm", "source-layer": "roads",
				"paint": {"line-color": "#ffffff", "line-width": 3}}
		]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	return st.Layers
}

func featureStyle(layer *style.Layer, zoom float32) FeatureStyle {
	paint := FeaturePaint{Kind: layer.Kind, Paint: layer.Paint.Resolve(FeatureView{})}
	return paint.StyleAt(zoom)
}

func TestStyleAtBackgroundFillsWithBackgroundColor(t *testing.T) {
	layers := parsePaintLayers(t)
	s := featureStyle(&layers[0], 5)

	want := s.Background
	if s.FillColor() != want {
		t.Errorf("FillColor = %v, want the background color %v", s.FillColor(), want)
	}
}

func TestStyleAtFillOutline(t *testing.T) {
	layers := parsePaintLayers(t)

	park := featureStyle(&layers[1], 5)
	if !park.HasOutline {
		t.Fatal("the park layer declares an outline")
	}
	if park.LineColor() != park.Outline {
		t.Errorf("LineColor = %v, want the outline color %v", park.LineColor(), park.Outline)
	}

	water := featureStyle(&layers[2], 5)
	if water.HasOutline {
		t.Error("the water layer has no outline")
	}
	if water.LineColor() != water.Line {
		t.Errorf("LineColor = %v, want the line color", water.LineColor())
	}
}

func TestStyleAtLineWidth(t *testing.T) {
	layers := parsePaintLayers(t)
	road := featureStyle(&layers[3], 5)
	if road.LineWidth != 3 {
		t.Errorf("LineWidth = %v, want 3", road.LineWidth)
	}
	if road.Kind != style.LayerLine {
		t.Errorf("Kind = %v", road.Kind)
	}
}
