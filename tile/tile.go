// Package tile defines slippy-map tile addressing and the transform used
// to re-project an ancestor tile's content into a descendant's local space.
package tile

import (
	"fmt"

	"github.com/gogpu/tilemap/geom"
)

// ID addresses one tile in the zoom pyramid. Column counts from the west
// edge, row from the north edge. A valid ID has Column < 2^Zoom and
// Row < 2^Zoom.
type ID struct {
	Zoom   uint16
	Column uint32
	Row    uint32
}

// Normalize builds an ID from possibly out-of-range coordinates, wrapping
// the column around the antimeridian. The row is kept as-is; callers check
// Valid before use.
func Normalize(zoom uint16, column, row int32) ID {
	limit := int64(1) << zoom

	c := int64(column) % limit
	if c < 0 {
		c += limit
	}

	return ID{
		Zoom:   zoom,
		Column: uint32(c),
		Row:    uint32(row),
	}
}

// Valid reports whether both coordinates are inside the pyramid level.
func (id ID) Valid() bool {
	return id.Column < id.Limit() && id.Row < id.Limit()
}

// Limit returns the number of tiles along one axis at this zoom level.
func (id ID) Limit() uint32 {
	return uint32(1) << id.Zoom
}

// Parent returns the tile covering this one at the next coarser zoom
// level. The second result is false at zoom 0.
func (id ID) Parent() (ID, bool) {
	if id.Zoom == 0 {
		return ID{}, false
	}
	return ID{
		Zoom:   id.Zoom - 1,
		Column: id.Column / 2,
		Row:    id.Row / 2,
	}, true
}

// ZoomLevel returns the zoom as a float for style evaluation.
func (id ID) ZoomLevel() float32 {
	return float32(id.Zoom)
}

func (id ID) String() string {
	return fmt.Sprintf("%d/%d/%d", id.Zoom, id.Column, id.Row)
}

// Rect maps a found ancestor tile's local [0,1]² coordinates into the
// originally requested tile's [0,1]² space. The zero offset with scale 1
// is the identity transform used when no pyramid fallback happened.
type Rect struct {
	Offset geom.Vec2
	Scale  float32
}

// Unit returns the identity transform.
func Unit() Rect {
	return Rect{Scale: 1}
}

// Project transforms a point from the ancestor tile's space into the
// requested tile's space.
func (r Rect) Project(p geom.Vec2) geom.Vec2 {
	return p.Sub(r.Offset).Mul(r.Scale)
}

// RectBuilder accumulates the tile-ID bits discarded while walking up the
// pyramid, so the quadrant the requested tile occupies inside the ancestor
// can be reconstructed once a hit is found.
type RectBuilder struct {
	column  uint32
	row     uint32
	parents uint16
}

// Parent records the bits lost stepping from id to its parent and returns
// the parent. The second result is false at zoom 0.
func (b *RectBuilder) Parent(id ID) (ID, bool) {
	parent, ok := id.Parent()
	if !ok {
		return ID{}, false
	}

	b.parents++
	b.column = b.column<<1 | id.Column&1
	b.row = b.row<<1 | id.Row&1

	return parent, true
}

// Rect converts the accumulated bit history into a single offset+scale
// transform. Row offsets are inverted because tile rows grow southward
// while the render space's y axis grows upward.
func (b RectBuilder) Rect() Rect {
	var offset geom.Vec2
	scale := float32(1)

	for b.parents > 0 {
		scale *= 2
		dim := 1 / scale

		var columnOff, rowOff float32
		if b.column&1 != 0 {
			columnOff = dim
		}
		if b.row&1 == 0 {
			rowOff = dim
		}

		offset = offset.Add(geom.V(columnOff, rowOff))
		b.column >>= 1
		b.row >>= 1
		b.parents--
	}

	return Rect{Offset: offset, Scale: scale}
}
