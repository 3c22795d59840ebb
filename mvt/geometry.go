package mvt

import (
	"github.com/gogpu/tilemap/geom"
	"github.com/gogpu/tilemap/tile"
)

// PathEventKind tags the three events a geometry iterator can emit.
type PathEventKind uint8

const (
	EventBegin PathEventKind = iota
	EventLine
	EventEnd
)

// PathEvent is one step of a decoded geometry. Begin carries the start
// point in Point. Line carries the previous point in From and the new one
// in Point. End carries the subpath's first point in First and whether the
// subpath closes back onto it.
type PathEvent struct {
	Kind  PathEventKind
	From  geom.Vec2
	Point geom.Vec2
	First geom.Vec2
	Close bool
}

const (
	cmdMoveTo    = 1
	cmdLineTo    = 2
	cmdClosePath = 7

	geomExtent = 4096
)

// geoCursor walks the packed command stream, decoding zigzag deltas into
// points projected through the pyramid fallback transform.
type geoCursor struct {
	data []uint32
	rect tile.Rect
	x, y int64
}

// next returns the following command and its repeat count, or false at the
// end of the stream.
func (c *geoCursor) next() (cmd uint32, count uint32, ok bool) {
	if len(c.data) == 0 {
		return 0, 0, false
	}
	n := c.data[0]
	c.data = c.data[1:]
	return n & 7, n >> 3, true
}

// point consumes one zigzag-encoded coordinate pair. A truncated pair ends
// the stream silently.
func (c *geoCursor) point() (geom.Vec2, bool) {
	if len(c.data) < 2 {
		c.data = nil
		return geom.Vec2{}, false
	}
	dx := int64(c.data[0])
	dy := int64(c.data[1])
	c.data = c.data[2:]

	c.x += (dx >> 1) ^ (-(dx & 1))
	c.y += (dy >> 1) ^ (-(dy & 1))

	p := geom.V(float32(c.x)/geomExtent, float32(c.y)/geomExtent)
	return c.rect.Project(p), true
}

// PolygonIter decodes a polygon command stream into path events. Every ring
// closes, either through an explicit ClosePath or at the end of the stream.
type PolygonIter struct {
	cursor  geoCursor
	pending uint32
	open    bool
	first   geom.Vec2
	last    geom.Vec2
}

// NewPolygonIter builds an iterator over a polygon geometry, projecting
// points through rect.
func NewPolygonIter(data []uint32, rect tile.Rect) *PolygonIter {
	return &PolygonIter{cursor: geoCursor{data: data, rect: rect}}
}

// Next returns the next path event. The second result is false once the
// stream is exhausted.
func (it *PolygonIter) Next() (PathEvent, bool) {
	for {
		if it.pending > 0 {
			it.pending--
			p, ok := it.cursor.point()
			if !ok {
				break
			}
			ev := PathEvent{Kind: EventLine, From: it.last, Point: p}
			it.last = p
			return ev, true
		}

		cmd, count, ok := it.cursor.next()
		if !ok {
			break
		}
		switch cmd {
		case cmdMoveTo:
			p, ok := it.cursor.point()
			if !ok {
				break
			}
			it.open = true
			it.first = p
			it.last = p
			return PathEvent{Kind: EventBegin, Point: p}, true
		case cmdLineTo:
			it.pending = count
		case cmdClosePath:
			if it.open {
				it.open = false
				return PathEvent{Kind: EventEnd, First: it.first, Close: true}, true
			}
		}
	}

	if it.open {
		it.open = false
		return PathEvent{Kind: EventEnd, First: it.first, Close: true}, true
	}
	return PathEvent{}, false
}

// LineStringIter decodes a line-string command stream into path events.
// A MoveTo while a subpath is open ends the current subpath without
// closing it and starts the next one.
type LineStringIter struct {
	cursor  geoCursor
	pending uint32
	replay  uint32
	open    bool
	first   geom.Vec2
	last    geom.Vec2
}

// NewLineStringIter builds an iterator over a line-string geometry,
// projecting points through rect.
func NewLineStringIter(data []uint32, rect tile.Rect) *LineStringIter {
	return &LineStringIter{cursor: geoCursor{data: data, rect: rect}}
}

// Next returns the next path event. The second result is false once the
// stream is exhausted.
func (it *LineStringIter) Next() (PathEvent, bool) {
	for {
		if it.pending > 0 {
			it.pending--
			p, ok := it.cursor.point()
			if !ok {
				break
			}
			ev := PathEvent{Kind: EventLine, From: it.last, Point: p}
			it.last = p
			return ev, true
		}

		var cmd, count uint32
		if it.replay != 0 {
			cmd, count = it.replay&7, it.replay>>3
			it.replay = 0
		} else {
			var ok bool
			cmd, count, ok = it.cursor.next()
			if !ok {
				break
			}
		}
		switch cmd {
		case cmdMoveTo:
			if it.open {
				// Hold the command back so the MoveTo runs again after
				// the open subpath is flushed.
				it.replay = cmd | count<<3
				it.open = false
				return PathEvent{Kind: EventEnd, First: it.first, Close: false}, true
			}
			p, ok := it.cursor.point()
			if !ok {
				break
			}
			it.open = true
			it.first = p
			it.last = p
			return PathEvent{Kind: EventBegin, Point: p}, true
		case cmdLineTo:
			it.pending = count
		case cmdClosePath:
			// Not part of line-string geometry, skipped.
		}
	}

	if it.open {
		it.open = false
		return PathEvent{Kind: EventEnd, First: it.first, Close: false}, true
	}
	return PathEvent{}, false
}

// PointIter decodes a point command stream. Each MoveTo repetition yields
// one projected point.
type PointIter struct {
	cursor  geoCursor
	pending uint32
}

// NewPointIter builds an iterator over a point geometry, projecting points
// through rect.
func NewPointIter(data []uint32, rect tile.Rect) *PointIter {
	return &PointIter{cursor: geoCursor{data: data, rect: rect}}
}

// Next returns the next point. The second result is false once the stream
// is exhausted.
func (it *PointIter) Next() (geom.Vec2, bool) {
	for {
		if it.pending > 0 {
			it.pending--
			p, ok := it.cursor.point()
			if !ok {
				return geom.Vec2{}, false
			}
			return p, true
		}

		cmd, count, ok := it.cursor.next()
		if !ok {
			return geom.Vec2{}, false
		}
		if cmd == cmdMoveTo {
			it.pending = count
		}
	}
}
