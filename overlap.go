package tilemap

import "github.com/gogpu/tilemap/geom"

// LabelPlacer suppresses labels whose screen rectangles collide within
// one tile's draw pass. The accepted set is cleared on every call, so
// labels from neighbouring tiles can still overlap near seams; the
// scratch buffer is kept to avoid reallocating per tile.
type LabelPlacer struct {
	accepted []geom.Rect
}

// NewLabelPlacer returns an empty placer.
func NewLabelPlacer() *LabelPlacer {
	return &LabelPlacer{}
}

// Visible returns, per layer, the indices of the labels to draw.
// Layers are scanned topmost first so labels of later style layers claim
// their space before the layers beneath them. tileDims is the tile's
// screen size in pixels and scale the current zoom factor; the y axis is
// flipped going from tile space to screen space.
func (p *LabelPlacer) Visible(layers []LayerTextDraw, tileDims geom.Vec2, scale float32) [][]int {
	p.accepted = p.accepted[:0]
	visible := make([][]int, len(layers))

	for li := len(layers) - 1; li >= 0; li-- {
		for i, label := range layers[li].Labels {
			offset := tileDims.Mul(scale).MulV(label.Point).MulV(geom.V(1, -1))
			bounds := label.Bounds.Translate(offset)

			if p.overlaps(bounds) {
				continue
			}
			p.accepted = append(p.accepted, bounds)
			visible[li] = append(visible[li], i)
		}
	}
	return visible
}

func (p *LabelPlacer) overlaps(bounds geom.Rect) bool {
	for _, r := range p.accepted {
		if r.Overlaps(bounds) {
			return true
		}
	}
	return false
}
