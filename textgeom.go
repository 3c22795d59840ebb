package tilemap

import (
	"github.com/gogpu/tilemap/geom"
	"github.com/gogpu/tilemap/text"
)

// TextVertex is one glyph quad corner. LabelOffset carries the label's
// anchor point in tile space so the whole label moves as one unit when
// the map pans. Halo 0 draws the glyph itself; 1 through 4 draw the four
// offset copies forming the halo.
type TextVertex struct {
	Position    geom.Vec2
	UV          geom.Vec2
	LabelOffset geom.Vec2
	Halo        uint32
}

// LabelGeometry locates one placed label inside the text buffers. The
// halo range is drawn before the glyph range whenever the paint's halo
// width is positive.
type LabelGeometry struct {
	Elements     Range
	HaloElements Range
	Bounds       geom.Rect
	Point        geom.Vec2
}

// LayerTextDraw groups the label geometry that shares a paint.
type LayerTextDraw struct {
	Paint  *FeaturePaint
	Labels []LabelGeometry
}

// TextBuffers holds a tile's glyph quads.
type TextBuffers struct {
	Vertices []TextVertex
	Indices  []uint32
	Layers   []LayerTextDraw
}

// PrepareGlyphs requests every glyph the tile's labels need. It reports
// true when all of them are already resident in the atlas; otherwise the
// missing glyphs are queued and the caller retries after the next atlas
// upload. All glyphs are requested even once one is found missing, so a
// single upload settles the whole tile.
func PrepareGlyphs(atlas *text.Atlas, labels []LayerLabelDraw) bool {
	ready := true
	for _, layer := range labels {
		for _, label := range layer.Labels {
			for _, line := range label.Lines {
				for _, glyph := range line.Glyphs {
					if !atlas.Prepare(label.TextSize, glyph.Glyph) {
						ready = false
					}
				}
			}
		}
	}
	return ready
}

// BuildTextGeometry turns laid-out labels into glyph quads against the
// atlas's current placements. The second result reports whether every
// glyph was resident; quads for missing glyphs are simply absent.
func BuildTextGeometry(atlas *text.Atlas, labels []LayerLabelDraw) (*TextBuffers, bool) {
	buf := &TextBuffers{}
	extent := float32(atlas.Extent())
	complete := true

	for _, layer := range labels {
		draw := LayerTextDraw{Paint: layer.Paint}

		for _, label := range layer.Labels {
			haloStart := len(buf.Indices)

			// The anchor centers the label on its point: half the width
			// and, accounting for the baseline of the first line, half
			// the height.
			lineHeight := label.Bounds.Height() / float32(len(label.Lines))
			anchor := geom.V(label.Bounds.Width()/2, -label.Bounds.Height()/2+lineHeight)

			for halo := uint32(1); halo <= 4; halo++ {
				complete = buf.labelQuads(atlas, extent, label, anchor, halo) && complete
			}
			elementStart := len(buf.Indices)
			complete = buf.labelQuads(atlas, extent, label, anchor, 0) && complete

			draw.Labels = append(draw.Labels, LabelGeometry{
				Elements:     Range{Start: elementStart, End: len(buf.Indices)},
				HaloElements: Range{Start: haloStart, End: elementStart},
				Bounds:       label.Bounds.Translate(anchor.Neg()),
				Point:        label.Offset,
			})
		}

		buf.Layers = append(buf.Layers, draw)
	}
	return buf, complete
}

// labelQuads emits one quad per resident glyph of the label.
func (b *TextBuffers) labelQuads(atlas *text.Atlas, extent float32, label LabelDraw, anchor geom.Vec2, halo uint32) bool {
	complete := true
	for _, line := range label.Lines {
		for _, glyph := range line.Glyphs {
			entry, ok := atlas.Entry(glyph.Glyph.WithSize(label.TextSize))
			if !ok {
				complete = false
				continue
			}
			if entry.Dims.X == 0 || entry.Dims.Y == 0 {
				continue
			}

			bounds := glyph.Bounds
			corners := [4]geom.Vec2{
				bounds.Min,
				geom.V(bounds.Min.X, bounds.Max.Y),
				geom.V(bounds.Max.X, bounds.Min.Y),
				bounds.Max,
			}
			uv := entry.UV(extent)

			idx := uint32(len(b.Vertices))
			for i := range corners {
				b.Vertices = append(b.Vertices, TextVertex{
					Position:    corners[i].Sub(anchor),
					UV:          uv[i],
					LabelOffset: label.Offset,
					Halo:        halo,
				})
			}
			b.Indices = append(b.Indices,
				idx+2, idx+1, idx,
				idx+1, idx+2, idx+3)
		}
	}
	return complete
}
