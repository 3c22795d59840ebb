// Package tess converts decoded tile geometry into triangle meshes.
//
// Fill tessellation uses ear clipping with hole bridging. Stroke
// tessellation emits a width-independent mesh: vertices carry the
// position on the path plus a unit extrusion normal, so one mesh serves
// every stroke width.
package tess

import (
	"errors"

	"github.com/gogpu/tilemap/geom"
	"github.com/gogpu/tilemap/mvt"
)

// ErrDegenerate reports geometry the fill tessellator cannot triangulate,
// usually self-intersecting rings. Callers skip the feature.
var ErrDegenerate = errors.New("tess: degenerate polygon")

// PathIter yields the events of one feature geometry.
type PathIter interface {
	Next() (mvt.PathEvent, bool)
}

// FillVertexFunc appends a fill vertex and returns its index.
type FillVertexFunc func(position geom.Vec2) uint32

// TriangleFunc appends one triangle by vertex indices.
type TriangleFunc func(a, b, c uint32)

const fillTolerance = 0.001

// FillTessellator triangulates polygon interiors.
type FillTessellator struct {
	rings []ring
}

type ring struct {
	points []geom.Vec2
	area   float32
}

// NewFillTessellator returns a tessellator whose scratch buffers are
// reused across calls.
func NewFillTessellator() *FillTessellator {
	return &FillTessellator{}
}

// Tessellate triangulates the polygon described by path. Rings winding
// like the first ring open new polygons; rings winding the other way cut
// holes into the polygon before them.
func (t *FillTessellator) Tessellate(path PathIter, addVertex FillVertexFunc, addTriangle TriangleFunc) error {
	t.rings = t.rings[:0]

	var current []geom.Vec2
	for {
		ev, ok := path.Next()
		if !ok {
			break
		}
		switch ev.Kind {
		case mvt.EventBegin:
			current = []geom.Vec2{ev.Point}
		case mvt.EventLine:
			current = append(current, ev.Point)
		case mvt.EventEnd:
			if len(current) >= 3 {
				t.rings = append(t.rings, ring{points: current, area: signedArea(current)})
			}
			current = nil
		}
	}
	if len(t.rings) == 0 {
		return nil
	}

	outerSign := t.rings[0].area >= 0

	var err error
	for i := 0; i < len(t.rings); {
		j := i + 1
		for j < len(t.rings) && (t.rings[j].area >= 0) != outerSign {
			j++
		}
		if e := earcut(t.rings[i], t.rings[i+1:j], addVertex, addTriangle); e != nil {
			err = e
		}
		i = j
	}
	return err
}

func signedArea(points []geom.Vec2) float32 {
	var sum float32
	for i := range points {
		j := (i + 1) % len(points)
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return sum / 2
}

// node is one vertex in the circular ear-clipping list.
type node struct {
	pt         geom.Vec2
	index      uint32
	hasIndex   bool
	prev, next *node
}

type earcutState struct {
	addVertex   FillVertexFunc
	addTriangle TriangleFunc
}

func (s *earcutState) emit(a, b, c *node) {
	s.addTriangle(s.vertex(a), s.vertex(b), s.vertex(c))
}

func (s *earcutState) vertex(n *node) uint32 {
	if !n.hasIndex {
		n.index = s.addVertex(n.pt)
		n.hasIndex = true
	}
	return n.index
}

// earcut triangulates one outer ring with its holes.
func earcut(outer ring, holes []ring, addVertex FillVertexFunc, addTriangle TriangleFunc) error {
	state := &earcutState{addVertex: addVertex, addTriangle: addTriangle}

	head := linkRing(outer.points, outer.area < 0)
	head = filterPoints(head, nil)
	if head == nil {
		return nil
	}

	for i := range holes {
		hole := linkRing(holes[i].points, holes[i].area >= 0)
		hole = filterPoints(hole, nil)
		if hole == nil {
			continue
		}
		head = eliminateHole(hole, head)
	}
	if head == nil {
		return ErrDegenerate
	}

	return earcutLinked(head, state, false)
}

// linkRing builds the circular list, reversing when the winding does not
// match ear clipping's counter-clockwise convention.
func linkRing(points []geom.Vec2, reversed bool) *node {
	var head *node
	insert := func(pt geom.Vec2) {
		n := &node{pt: pt}
		if head == nil {
			n.prev = n
			n.next = n
			head = n
			return
		}
		n.next = head.next
		n.prev = head
		head.next.prev = n
		head.next = n
		head = n
	}

	if reversed {
		for i := len(points) - 1; i >= 0; i-- {
			insert(points[i])
		}
	} else {
		for _, pt := range points {
			insert(pt)
		}
	}
	return head
}

// filterPoints drops duplicate and collinear vertices.
func filterPoints(start, end *node) *node {
	if start == nil {
		return nil
	}
	if end == nil {
		end = start
	}

	p := start
	for {
		again := false
		if samePoint(p.pt, p.next.pt) || abs(area2(p.prev.pt, p.pt, p.next.pt)) < fillTolerance*fillTolerance {
			p.prev.next = p.next
			p.next.prev = p.prev
			p = p.prev
			end = p
			if p == p.next {
				return nil
			}
			again = true
		}
		if !again {
			p = p.next
			if p == end {
				return end
			}
		}
	}
}

// earcutLinked clips ears until the polygon collapses into a triangle.
func earcutLinked(ear *node, state *earcutState, retried bool) error {
	stop := ear

	for ear.prev != ear.next {
		prev, next := ear.prev, ear.next

		if isEar(ear) {
			state.emit(prev, ear, next)

			prev.next = next
			next.prev = prev

			ear = next.next
			stop = next.next
			continue
		}

		ear = next
		if ear == stop {
			if retried {
				return ErrDegenerate
			}
			ear = filterPoints(ear, nil)
			if ear == nil || ear.prev == ear.next {
				return nil
			}
			return earcutLinked(ear, state, true)
		}
	}
	return nil
}

// isEar reports whether the triangle at ear is convex and empty.
func isEar(ear *node) bool {
	a, b, c := ear.prev.pt, ear.pt, ear.next.pt
	if area2(a, b, c) <= 0 {
		return false
	}

	p := ear.next.next
	for p != ear.prev {
		// Only reflex vertices can sit inside a valid ear.
		if pointInTriangle(a, b, c, p.pt) && area2(p.prev.pt, p.pt, p.next.pt) <= 0 {
			return false
		}
		p = p.next
	}
	return true
}

// eliminateHole splices a hole ring into the outer polygon through a
// bridge edge.
func eliminateHole(hole, outer *node) *node {
	bridge := findHoleBridge(hole, outer)
	if bridge == nil {
		return outer
	}
	merged := splitPolygon(bridge, hole)
	filterPoints(merged, merged.next)
	return outer
}

// findHoleBridge locates the outer vertex that can see the hole's
// leftmost vertex, following the standard ray-cast construction.
func findHoleBridge(hole, outer *node) *node {
	// Leftmost hole vertex.
	leftmost := hole
	for p := hole.next; p != hole; p = p.next {
		if p.pt.X < leftmost.pt.X {
			leftmost = p
		}
	}
	hx, hy := leftmost.pt.X, leftmost.pt.Y

	// Cast a ray leftward; the closest intersected edge bounds the
	// candidate vertex.
	qx := float32(-maxFloat)
	var candidate *node
	p := outer
	for {
		a, b := p.pt, p.next.pt
		if hy <= a.Y && hy >= b.Y && b.Y != a.Y {
			x := a.X + (hy-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if x <= hx && x > qx {
				qx = x
				if a.X < b.X {
					candidate = p
				} else {
					candidate = p.next
				}
				if x == hx {
					// The ray hits the vertex itself.
					return candidate
				}
			}
		}
		p = p.next
		if p == outer {
			break
		}
	}
	if candidate == nil {
		return nil
	}

	// The bridge may still cross edges; prefer the reflex vertex inside
	// the triangle (hole point, intersection, candidate) closest in
	// angle.
	stop := candidate
	mx, my := candidate.pt.X, candidate.pt.Y
	tanMin := float32(maxFloat)

	p = candidate
	for {
		inside := false
		if hx >= p.pt.X && p.pt.X >= mx && hx != p.pt.X {
			if hy < my {
				inside = pointInTriangle(geom.V(hx, hy), geom.V(mx, my), geom.V(qx, hy), p.pt)
			} else {
				inside = pointInTriangle(geom.V(qx, hy), geom.V(mx, my), geom.V(hx, hy), p.pt)
			}
		}
		if inside {
			tan := abs(hy-p.pt.Y) / (hx - p.pt.X)
			if tan < tanMin || (tan == tanMin && p.pt.X > candidate.pt.X) {
				candidate = p
				tanMin = tan
			}
		}
		p = p.next
		if p == stop {
			break
		}
	}
	return candidate
}

// splitPolygon joins two rings with a bridge edge, returning the node on
// the second ring side.
func splitPolygon(a, b *node) *node {
	a2 := &node{pt: a.pt}
	b2 := &node{pt: b.pt}
	an := a.next
	bp := b.prev

	a.next = b
	b.prev = a

	a2.next = an
	an.prev = a2

	b2.next = a2
	a2.prev = b2

	bp.next = b2
	b2.prev = bp

	return b2
}

func area2(a, b, c geom.Vec2) float32 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

func samePoint(a, b geom.Vec2) bool {
	return abs(a.X-b.X) < fillTolerance && abs(a.Y-b.Y) < fillTolerance
}

func pointInTriangle(a, b, c, p geom.Vec2) bool {
	return (c.X-p.X)*(a.Y-p.Y)-(a.X-p.X)*(c.Y-p.Y) >= 0 &&
		(a.X-p.X)*(b.Y-p.Y)-(b.X-p.X)*(a.Y-p.Y) >= 0 &&
		(b.X-p.X)*(c.Y-p.Y)-(c.X-p.X)*(b.Y-p.Y) >= 0
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

const maxFloat = float32(3.4e38)
