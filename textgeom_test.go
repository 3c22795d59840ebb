package tilemap

import (
	"image"
	"testing"

	"github.com/gogpu/tilemap/geom"
	"github.com/gogpu/tilemap/style"
	"github.com/gogpu/tilemap/text"
)

func testLabels(t *testing.T, fonts *text.Collection, content string) []LayerLabelDraw {
	t.Helper()
	lines, bounds, ok := text.LayoutLabel(fonts, text.FontRegular, content, 16, 400)
	if !ok {
		t.Fatalf("label %q did not lay out", content)
	}
	return []LayerLabelDraw{{
		Paint: &FeaturePaint{Kind: style.LayerSymbol},
		Labels: []LabelDraw{{
			TextSize: 16,
			Offset:   geom.V(0.5, 0.25),
			Bounds:   bounds,
			Lines:    lines,
		}},
	}}
}

func TestTextGeometryRoundTrip(t *testing.T) {
	fonts, err := text.NewCollection()
	if err != nil {
		t.Fatal(err)
	}
	atlas := text.NewAtlas(fonts, 0, nil)
	labels := testLabels(t, fonts, "AB")

	if PrepareGlyphs(atlas, labels) {
		t.Fatal("cold glyphs cannot be ready")
	}

	// Before the upload the geometry is incomplete and empty.
	if _, complete := BuildTextGeometry(atlas, labels); complete {
		t.Fatal("geometry cannot be complete before the upload")
	}

	atlas.Upload(func(image.Point, *image.Alpha) {})
	if !PrepareGlyphs(atlas, labels) {
		t.Fatal("uploaded glyphs must be ready")
	}

	buf, complete := BuildTextGeometry(atlas, labels)
	if !complete {
		t.Fatal("geometry must be complete after the upload")
	}
	if len(buf.Layers) != 1 || len(buf.Layers[0].Labels) != 1 {
		t.Fatalf("layers = %+v", buf.Layers)
	}

	label := buf.Layers[0].Labels[0]

	// Two glyphs: 2 quads of glyph geometry, 8 of halo geometry.
	if label.Elements.Len() != 2*6 {
		t.Errorf("element indices = %d, want 12", label.Elements.Len())
	}
	if label.HaloElements.Len() != 2*4*6 {
		t.Errorf("halo indices = %d, want 48", label.HaloElements.Len())
	}
	// Halos are emitted first so one draw call covers halo plus glyphs.
	if label.HaloElements.End != label.Elements.Start {
		t.Errorf("halo range %+v does not abut element range %+v",
			label.HaloElements, label.Elements)
	}

	for _, n := range buf.Indices[label.Elements.Start:label.Elements.End] {
		v := buf.Vertices[n]
		if v.Halo != 0 {
			t.Fatalf("element vertex halo = %d", v.Halo)
		}
		if v.LabelOffset != geom.V(0.5, 0.25) {
			t.Fatalf("label offset = %v", v.LabelOffset)
		}
		if v.UV.X < 0 || v.UV.X > 1 || v.UV.Y < 0 || v.UV.Y > 1 {
			t.Fatalf("uv %v outside the atlas", v.UV)
		}
	}

	haloSeen := map[uint32]bool{}
	for _, n := range buf.Indices[label.HaloElements.Start:label.HaloElements.End] {
		v := buf.Vertices[n]
		if v.Halo == 0 {
			t.Fatal("halo range holds a non-halo vertex")
		}
		haloSeen[v.Halo] = true
	}
	if len(haloSeen) != 4 {
		t.Errorf("halo directions seen = %v, want all 4", haloSeen)
	}
}

func TestTextGeometryCentersOnAnchor(t *testing.T) {
	fonts, err := text.NewCollection()
	if err != nil {
		t.Fatal(err)
	}
	atlas := text.NewAtlas(fonts, 0, nil)
	labels := testLabels(t, fonts, "AB")

	PrepareGlyphs(atlas, labels)
	atlas.Upload(func(image.Point, *image.Alpha) {})
	buf, _ := BuildTextGeometry(atlas, labels)

	label := buf.Layers[0].Labels[0]
	raw := labels[0].Labels[0].Bounds

	// The recorded bounds are the layout bounds shifted by the anchor.
	if w, rw := label.Bounds.Width(), raw.Width(); abs32(w-rw) > 1e-3 {
		t.Errorf("bounds width = %v, want %v", w, rw)
	}
	// Shifting by half the width centers the box horizontally around the
	// first glyph's left bearing.
	if got, want := label.Bounds.Min.X, raw.Min.X-raw.Width()/2; abs32(got-want) > 1e-3 {
		t.Errorf("bounds min x = %v, want %v", got, want)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
