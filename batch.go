package tilemap

import (
	"github.com/gogpu/tilemap/geom"
	"github.com/gogpu/tilemap/text"
)

// Range is a half-open span into an index buffer.
type Range struct {
	Start, End int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// FeatureDraw is one batched draw call: an index range plus the paint it
// draws with.
type FeatureDraw struct {
	Paint   *FeaturePaint
	Indices Range
}

// LabelDraw is one label placed at an anchor point, laid out but not yet
// turned into glyph quads. Lines are shared between the anchors of a
// multi-point feature.
type LabelDraw struct {
	TextSize float32
	Offset   geom.Vec2
	Bounds   geom.Rect
	Lines    []text.LineDraw
}

// LayerLabelDraw groups the labels that share a paint.
type LayerLabelDraw struct {
	Paint  *FeaturePaint
	Labels []LabelDraw
}

// DrawCommands batches consecutive equal-paint features into single draw
// ranges while a tile is tessellated.
type DrawCommands struct {
	FeatureDraws []FeatureDraw
	Labels       []LayerLabelDraw

	layerLabels []LabelDraw
	lastPaint   *FeaturePaint
	rangeStart  int
}

// add records that the index buffer has grown to indices entries under
// next's paint. A change of paint closes the open batch; passing nil
// closes it unconditionally.
func (d *DrawCommands) add(next *FeaturePaint, indices int) {
	if (next == nil || !next.Equal(d.lastPaint)) && d.lastPaint != nil {
		if len(d.layerLabels) > 0 {
			labels := make([]LabelDraw, len(d.layerLabels))
			copy(labels, d.layerLabels)
			d.Labels = append(d.Labels, LayerLabelDraw{Paint: d.lastPaint, Labels: labels})
			d.layerLabels = d.layerLabels[:0]
		}
		if indices > d.rangeStart {
			d.FeatureDraws = append(d.FeatureDraws, FeatureDraw{
				Paint:   d.lastPaint,
				Indices: Range{Start: d.rangeStart, End: indices},
			})
			d.rangeStart = indices
		}
		d.lastPaint = next
	} else if d.lastPaint == nil {
		d.lastPaint = next
	}
}

func (d *DrawCommands) clear() {
	d.FeatureDraws = d.FeatureDraws[:0]
	d.Labels = d.Labels[:0]
	d.layerLabels = d.layerLabels[:0]
	d.lastPaint = nil
	d.rangeStart = 0
}
