package text

import (
	"image"
	"testing"

	"github.com/gogpu/tilemap/geom"
)

func testAtlas(t *testing.T) *Atlas {
	t.Helper()
	fonts, err := NewCollection()
	if err != nil {
		t.Fatal(err)
	}
	return NewAtlas(fonts, 0, nil)
}

func TestAtlasPrepareProtocol(t *testing.T) {
	atlas := testAtlas(t)
	glyph := GlyphID{Font: FontRegular, Rune: 'A'}

	if atlas.Prepare(16, glyph) {
		t.Fatal("a cold glyph must be queued, not resident")
	}
	if atlas.Prepare(16, glyph) {
		t.Fatal("a queued glyph stays pending until Upload")
	}

	var placed int
	atlas.Upload(func(offset image.Point, img *image.Alpha) {
		placed++
		if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
			t.Error("placed bitmap must not be empty")
		}
	})
	if placed != 1 {
		t.Fatalf("placed %d bitmaps, want 1", placed)
	}

	if !atlas.Prepare(16, glyph) {
		t.Error("an uploaded glyph must be resident")
	}
	key := glyph.WithSize(16)
	entry, ok := atlas.Entry(key)
	if !ok {
		t.Fatal("resident glyph must resolve an entry")
	}
	if entry.Dims.X == 0 || entry.Dims.Y == 0 {
		t.Errorf("entry dims = %v", entry.Dims)
	}
}

func TestAtlasSpaceNeedsNoRoom(t *testing.T) {
	atlas := testAtlas(t)
	if !atlas.Prepare(16, GlyphID{Font: FontRegular, Rune: ' '}) {
		t.Error("spaces are always ready")
	}
}

func TestAtlasKeyFloorsSize(t *testing.T) {
	g := GlyphID{Font: FontBold, Rune: 'x'}
	if g.WithSize(15.9) != (GlyphKey{Glyph: g, Size: 15}) {
		t.Errorf("WithSize(15.9) = %+v", g.WithSize(15.9))
	}
	if g.WithSize(15.2) != g.WithSize(15.8) {
		t.Error("sizes within one pixel share a key")
	}
}

func TestAtlasPacksSeparateSpots(t *testing.T) {
	atlas := testAtlas(t)
	a := GlyphID{Font: FontRegular, Rune: 'a'}
	b := GlyphID{Font: FontRegular, Rune: 'b'}
	atlas.Prepare(16, a)
	atlas.Prepare(16, b)

	offsets := map[image.Point]bool{}
	atlas.Upload(func(offset image.Point, img *image.Alpha) {
		offsets[offset] = true
	})
	if len(offsets) != 2 {
		t.Errorf("got %d distinct offsets, want 2", len(offsets))
	}

	ea, _ := atlas.Entry(a.WithSize(16))
	eb, _ := atlas.Entry(b.WithSize(16))
	if ea.Offset == eb.Offset {
		t.Error("two glyphs must not share a spot")
	}
}

func TestAtlasEntryUV(t *testing.T) {
	entry := AtlasEntry{Offset: geom.V(512, 1024), Dims: geom.V(64, 32)}
	uv := entry.UV(2048)

	if uv[1] != geom.V(0.25, 0.5) {
		t.Errorf("top-left uv = %v", uv[1])
	}
	if uv[2] != geom.V((512.0+64)/2048, (1024.0+32)/2048) {
		t.Errorf("bottom-right uv = %v", uv[2])
	}
}
