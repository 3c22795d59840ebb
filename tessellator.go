package tilemap

import (
	"log/slog"

	"github.com/gogpu/tilemap/geom"
	"github.com/gogpu/tilemap/internal/tess"
	"github.com/gogpu/tilemap/mvt"
	"github.com/gogpu/tilemap/style"
	"github.com/gogpu/tilemap/text"
	"github.com/gogpu/tilemap/tile"
)

// TileQuerier resolves a style source's tile. The rect re-projects the
// returned tile's coordinates when a pyramid fallback substituted an
// ancestor.
type TileQuerier interface {
	QueryTile(source string, id tile.ID) (*mvt.Tile, tile.Rect, bool)
}

// TileGeometry is the renderer-agnostic output for one tile: vertex and
// index buffers plus the batched draws and laid-out labels referencing
// them.
type TileGeometry struct {
	Vertices []GeoVertex
	Indices  []uint32
	Features []FeatureDraw
	Labels   []LayerLabelDraw
}

// Tessellator turns one tile into draw data by walking the style's
// layers. It reuses its scratch buffers across tiles and is therefore
// not safe for concurrent use; the TileLoader gives each worker its own.
type Tessellator struct {
	style   *style.Style
	sources TileQuerier
	fonts   *text.Collection
	log     *slog.Logger

	fill   *tess.FillTessellator
	stroke *tess.StrokeTessellator

	vertices []GeoVertex
	indices  []uint32
	draws    DrawCommands
}

// NewTessellator builds a tessellator over a parsed style. A nil logger
// uses the package logger.
func NewTessellator(st *style.Style, sources TileQuerier, fonts *text.Collection, log *slog.Logger) *Tessellator {
	if log == nil {
		log = Logger()
	}
	return &Tessellator{
		style:   st,
		sources: sources,
		fonts:   fonts,
		log:     log,
		fill:    tess.NewFillTessellator(),
		stroke:  tess.NewStrokeTessellator(),
	}
}

// tileSlot memoizes one source query for the duration of a tile so that
// layers sharing a source do not query it repeatedly.
type tileSlot struct {
	tile *mvt.Tile
	rect tile.Rect
	ok   bool
}

// Tessellate produces the draw data for one tile.
func (t *Tessellator) Tessellate(id tile.ID) *TileGeometry {
	t.vertices = t.vertices[:0]
	t.indices = t.indices[:0]
	t.draws.clear()

	zoom := id.ZoomLevel()
	slots := map[string]*tileSlot{}

	for i := range t.style.Layers {
		layer := &t.style.Layers[i]

		if layer.Kind == style.LayerBackground {
			t.background(layer)
			continue
		}
		if layer.Source == "" || layer.SourceLayer == "" {
			continue
		}

		slot, ok := slots[layer.Source]
		if !ok {
			slot = &tileSlot{}
			slot.tile, slot.rect, slot.ok = t.sources.QueryTile(layer.Source, id)
			slots[layer.Source] = slot
		}
		if !slot.ok {
			continue
		}
		source := slot.tile.Layer(layer.SourceLayer)
		if source == nil {
			continue
		}

		t.draws.layerLabels = t.draws.layerLabels[:0]

		for fi := range source.Features {
			feature := &source.Features[fi]
			view := NewFeatureView(source, feature)
			if !layer.Visible(view, zoom) {
				continue
			}

			paint := &FeaturePaint{Kind: layer.Kind, Paint: layer.Paint.Resolve(view)}
			t.draws.add(paint, len(t.indices))

			switch feature.Type {
			case mvt.GeomTypePolygon:
				t.polygon(layer, paint, feature, slot.rect, zoom)
			case mvt.GeomTypeLineString:
				if layer.Kind == style.LayerLine {
					t.strokePath(layer, mvt.NewLineStringIter(feature.Geometry, slot.rect))
				}
			case mvt.GeomTypePoint:
				if layer.Kind == style.LayerSymbol {
					t.layoutLabels(layer, view, feature, slot.rect, zoom)
				}
			}
		}

		t.draws.add(nil, len(t.indices))
	}
	t.draws.add(nil, len(t.indices))

	return &TileGeometry{
		Vertices: append([]GeoVertex(nil), t.vertices...),
		Indices:  append([]uint32(nil), t.indices...),
		Features: append([]FeatureDraw(nil), t.draws.FeatureDraws...),
		Labels:   append([]LayerLabelDraw(nil), t.draws.Labels...),
	}
}

// background emits the oversized quad every background layer draws.
func (t *Tessellator) background(layer *style.Layer) {
	t.draws.add(nil, len(t.indices))

	start := len(t.indices)
	base := uint32(len(t.vertices))
	t.vertices = append(t.vertices, backgroundVertices[:]...)
	for _, n := range backgroundIndices {
		t.indices = append(t.indices, base+n)
	}

	paint := &FeaturePaint{Kind: style.LayerBackground, Paint: layer.Paint.Resolve(FeatureView{})}
	t.draws.FeatureDraws = append(t.draws.FeatureDraws, FeatureDraw{
		Paint:   paint,
		Indices: Range{Start: start, End: len(t.indices)},
	})
	t.draws.rangeStart = len(t.indices)
}

// polygon fills a polygon feature and strokes its rings when the layer
// asks for an outline.
func (t *Tessellator) polygon(layer *style.Layer, paint *FeaturePaint, feature *mvt.Feature, rect tile.Rect, zoom float32) {
	if layer.Kind == style.LayerFill {
		vertexMark := len(t.vertices)
		indexMark := len(t.indices)

		err := t.fill.Tessellate(
			mvt.NewPolygonIter(feature.Geometry, rect),
			func(p geom.Vec2) uint32 {
				t.vertices = append(t.vertices, GeoVertex{Position: p, Fill: FillModePolygon})
				return uint32(len(t.vertices) - 1)
			},
			t.addTriangle,
		)
		if err != nil {
			t.vertices = t.vertices[:vertexMark]
			t.indices = t.indices[:indexMark]
			t.log.Warn("fill tessellation failed, skipping feature",
				"layer", layer.ID, "error", err)
		}
	}

	outline := false
	if layer.Kind == style.LayerFill {
		_, outline = paint.Paint.FillOutlineColorAt(zoom)
	}
	if layer.Kind == style.LayerLine || outline {
		t.strokePath(layer, mvt.NewPolygonIter(feature.Geometry, rect))
	}
}

func (t *Tessellator) strokePath(layer *style.Layer, path tess.PathIter) {
	err := t.stroke.Tessellate(path, strokeOptions(&layer.Layout),
		func(p, normal geom.Vec2, advancement float32) uint32 {
			t.vertices = append(t.vertices, GeoVertex{
				Position:    p,
				Normal:      normal,
				Advancement: advancement,
				Fill:        FillModeLine,
			})
			return uint32(len(t.vertices) - 1)
		},
		t.addTriangle,
	)
	if err != nil {
		t.log.Warn("stroke tessellation failed", "layer", layer.ID, "error", err)
	}
}

func (t *Tessellator) addTriangle(a, b, c uint32) {
	t.indices = append(t.indices, a, b, c)
}

func strokeOptions(layout *style.Layout) tess.StrokeStyle {
	opts := tess.DefaultStrokeStyle()
	switch layout.LineCap {
	case style.CapRound:
		opts.Cap = tess.CapRound
	case style.CapSquare:
		opts.Cap = tess.CapSquare
	}
	switch layout.LineJoin {
	case style.JoinBevel:
		opts.Join = tess.JoinBevel
	case style.JoinRound:
		opts.Join = tess.JoinRound
	}
	return opts
}

// layoutLabels lays the feature's label out once and places a copy at
// every in-tile anchor point.
func (t *Tessellator) layoutLabels(layer *style.Layer, view FeatureView, feature *mvt.Feature, rect tile.Rect, zoom float32) {
	label, ok := layer.Layout.Text(view)
	if !ok {
		return
	}

	font := t.fonts.Select(layer.Layout.TextFont)
	size := layer.Layout.TextSizeAt(zoom)
	maxWidth := layer.Layout.MaxWidth() * size

	lines, bounds, ok := text.LayoutLabel(t.fonts, font, label, size, maxWidth)
	if !ok {
		return
	}

	points := mvt.NewPointIter(feature.Geometry, rect)
	for {
		p, ok := points.Next()
		if !ok {
			break
		}
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			continue
		}
		t.draws.layerLabels = append(t.draws.layerLabels, LabelDraw{
			TextSize: size,
			Offset:   p,
			Bounds:   bounds,
			Lines:    lines,
		})
	}
}
