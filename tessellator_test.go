package tilemap

import (
	"reflect"
	"testing"

	"github.com/gogpu/tilemap/geom"
	"github.com/gogpu/tilemap/mvt"
	"github.com/gogpu/tilemap/style"
	"github.com/gogpu/tilemap/text"
	"github.com/gogpu/tilemap/tile"
)

const testStyle = `{
	"version": 8,
	"sources": {
		"osm": {"type": "vector", "tiles": []}
	},
	"layers": [
		{"id": "bg", "type": "background",
			"paint": {"background-color": "#112233"}},
		{"id": "water", "type": "fill", "source": "osm", "source-layer": "water",
			"paint": {"fill-color": "#0044ff"}},
		{"id": "roads", "type": "line", "source": "osm", "source-layer": "roads",
			"filter": ["==", "class", "motorway"],
			"paint": {"line-color": "#ffffff", "line-width": 2}},
		{"id": "places", "type": "symbol", "source": "osm", "source-layer": "places",
			"layout": {"text-field": "{name}"}}
	]
}`

func cw(cmd, count uint32) uint32 { return cmd | count<<3 }

func zz(v int32) uint32 { return uint32((v << 1) ^ (v >> 31)) }

func testTile() *mvt.Tile {
	return &mvt.Tile{Layers: []mvt.Layer{
		{
			Name: "water", Version: 2, Extent: 4096,
			Features: []mvt.Feature{{
				Type: mvt.GeomTypePolygon,
				Geometry: []uint32{
					cw(1, 1), zz(0), zz(0),
					cw(2, 3), zz(1024), zz(0), zz(0), zz(1024), zz(-1024), zz(0),
					cw(7, 1),
				},
			}},
		},
		{
			Name: "roads", Version: 2, Extent: 4096,
			Keys: []string{"class"},
			Values: []mvt.Value{
				mvt.StringValue([]byte("motorway")),
				mvt.StringValue([]byte("path")),
			},
			Features: []mvt.Feature{
				{
					Type: mvt.GeomTypeLineString,
					Tags: []uint32{0, 0},
					Geometry: []uint32{
						cw(1, 1), zz(0), zz(0),
						cw(2, 1), zz(2048), zz(0),
					},
				},
				{
					Type: mvt.GeomTypeLineString,
					Tags: []uint32{0, 1},
					Geometry: []uint32{
						cw(1, 1), zz(0), zz(4095),
						cw(2, 1), zz(2048), zz(0),
					},
				},
			},
		},
		{
			Name: "places", Version: 2, Extent: 4096,
			Keys: []string{"name"},
			Values: []mvt.Value{
				mvt.StringValue([]byte("Springfield")),
			},
			Features: []mvt.Feature{{
				Type: mvt.GeomTypePoint,
				Tags: []uint32{0, 0},
				// The second anchor lands outside the tile.
				Geometry: []uint32{
					cw(1, 2), zz(2048), zz(2048), zz(-4096), zz(0),
				},
			}},
		},
	}}
}

type fakeQuerier struct {
	tile *mvt.Tile
}

func (q fakeQuerier) QueryTile(source string, id tile.ID) (*mvt.Tile, tile.Rect, bool) {
	if source != "osm" {
		return nil, tile.Rect{}, false
	}
	return q.tile, tile.Unit(), true
}

func newTestTessellator(t *testing.T) *Tessellator {
	t.Helper()
	st, err := style.Parse([]byte(testStyle))
	if err != nil {
		t.Fatal(err)
	}
	fonts, err := text.NewCollection()
	if err != nil {
		t.Fatal(err)
	}
	return NewTessellator(st, fakeQuerier{tile: testTile()}, fonts, nil)
}

func TestTessellateBackground(t *testing.T) {
	geometry := newTestTessellator(t).Tessellate(tile.ID{Zoom: 1})

	if len(geometry.Features) == 0 {
		t.Fatal("no draws produced")
	}
	bg := geometry.Features[0]
	if bg.Paint.Kind != style.LayerBackground {
		t.Fatalf("first draw kind = %v", bg.Paint.Kind)
	}
	if bg.Indices != (Range{Start: 0, End: 6}) {
		t.Errorf("background range = %+v", bg.Indices)
	}

	// The quad overshoots the tile on every side.
	if geometry.Vertices[0].Position != geom.V(-0.1, -0.1) {
		t.Errorf("first corner = %v", geometry.Vertices[0].Position)
	}
	if geometry.Vertices[2].Position != geom.V(1.1, 1.1) {
		t.Errorf("third corner = %v", geometry.Vertices[2].Position)
	}
}

func TestTessellateFill(t *testing.T) {
	geometry := newTestTessellator(t).Tessellate(tile.ID{Zoom: 1})

	var fill *FeatureDraw
	for i := range geometry.Features {
		if geometry.Features[i].Paint.Kind == style.LayerFill {
			fill = &geometry.Features[i]
		}
	}
	if fill == nil {
		t.Fatal("no fill draw produced")
	}
	// A quad triangulates into two triangles.
	if fill.Indices.Len() != 6 {
		t.Errorf("fill range holds %d indices, want 6", fill.Indices.Len())
	}
	for _, n := range geometry.Indices[fill.Indices.Start:fill.Indices.End] {
		v := geometry.Vertices[n]
		if v.Fill != FillModePolygon {
			t.Fatalf("fill vertex mode = %v", v.Fill)
		}
		if v.Position.X < 0 || v.Position.X > 0.25 || v.Position.Y < 0 || v.Position.Y > 0.25 {
			t.Errorf("fill vertex %v outside the ring", v.Position)
		}
	}
}

func TestTessellateLine(t *testing.T) {
	geometry := newTestTessellator(t).Tessellate(tile.ID{Zoom: 1})

	var line *FeatureDraw
	for i := range geometry.Features {
		if geometry.Features[i].Paint.Kind == style.LayerLine {
			line = &geometry.Features[i]
		}
	}
	if line == nil {
		t.Fatal("no line draw produced")
	}

	var maxAdv float32
	for _, n := range geometry.Indices[line.Indices.Start:line.Indices.End] {
		v := geometry.Vertices[n]
		if v.Fill != FillModeLine {
			t.Fatalf("line vertex mode = %v", v.Fill)
		}
		if v.Advancement > maxAdv {
			maxAdv = v.Advancement
		}
	}
	// Only the motorway passes the filter; it spans half the tile.
	if maxAdv < 0.49 || maxAdv > 0.51 {
		t.Errorf("max advancement = %v, want 0.5", maxAdv)
	}
}

func TestTessellateLabels(t *testing.T) {
	geometry := newTestTessellator(t).Tessellate(tile.ID{Zoom: 1})

	if len(geometry.Labels) != 1 {
		t.Fatalf("got %d label layers, want 1", len(geometry.Labels))
	}
	layer := geometry.Labels[0]
	if layer.Paint.Kind != style.LayerSymbol {
		t.Errorf("label paint kind = %v", layer.Paint.Kind)
	}
	// The out-of-tile anchor is dropped.
	if len(layer.Labels) != 1 {
		t.Fatalf("got %d labels, want 1", len(layer.Labels))
	}

	label := layer.Labels[0]
	if label.Offset != geom.V(0.5, 0.5) {
		t.Errorf("anchor = %v", label.Offset)
	}
	if label.TextSize != 16 {
		t.Errorf("text size = %v", label.TextSize)
	}
	if len(label.Lines) != 1 || len(label.Lines[0].Glyphs) == 0 {
		t.Errorf("lines = %+v", label.Lines)
	}
}

func TestTessellateDeterministic(t *testing.T) {
	tess := newTestTessellator(t)
	a := tess.Tessellate(tile.ID{Zoom: 1})
	b := tess.Tessellate(tile.ID{Zoom: 1})

	if !reflect.DeepEqual(a.Vertices, b.Vertices) {
		t.Error("vertices differ between runs")
	}
	if !reflect.DeepEqual(a.Indices, b.Indices) {
		t.Error("indices differ between runs")
	}
	if len(a.Features) != len(b.Features) {
		t.Fatalf("draw counts differ: %d vs %d", len(a.Features), len(b.Features))
	}
	for i := range a.Features {
		if a.Features[i].Indices != b.Features[i].Indices {
			t.Errorf("draw %d range differs", i)
		}
		if !a.Features[i].Paint.Equal(b.Features[i].Paint) {
			t.Errorf("draw %d paint differs", i)
		}
	}
}
