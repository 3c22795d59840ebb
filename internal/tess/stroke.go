package tess

import (
	"math"

	"github.com/gogpu/tilemap/geom"
	"github.com/gogpu/tilemap/mvt"
)

// LineCap describes how open path ends are finished.
type LineCap uint8

const (
	// CapButt ends the stroke flat at the endpoint.
	CapButt LineCap = iota
	// CapSquare extends the stroke by half its width past the endpoint.
	CapSquare
	// CapRound closes the endpoint with a half circle.
	CapRound
)

// LineJoin describes how segments are connected.
type LineJoin uint8

const (
	// JoinMiter extends the segment edges to their intersection, falling
	// back to a bevel past the miter limit.
	JoinMiter LineJoin = iota
	// JoinBevel connects the segment edges with a single triangle.
	JoinBevel
	// JoinRound connects the segment edges with an arc.
	JoinRound
)

// StrokeStyle configures stroke tessellation. The stroke width is not
// part of the style: vertices carry unit normals and the extrusion
// distance is applied at draw time, so one mesh serves any width.
type StrokeStyle struct {
	Cap        LineCap
	Join       LineJoin
	MiterLimit float32
}

// DefaultStrokeStyle returns butt caps and miter joins with the
// conventional limit of 4.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{Cap: CapButt, Join: JoinMiter, MiterLimit: 4}
}

// StrokeVertexFunc appends a stroke vertex and returns its index. The
// position sits on the path centerline; normal is the unit extrusion
// direction and advancement the distance traveled along the path.
type StrokeVertexFunc func(position, normal geom.Vec2, advancement float32) uint32

const strokeTolerance = 0.0001

// Arc joins and round caps subdivide at this step angle. The extrusion
// radius is unknown until draw time, so the subdivision cannot adapt to
// it.
const arcStep = math.Pi / 8

// StrokeTessellator builds stroke meshes for line and polygon outline
// features.
type StrokeTessellator struct {
	points []geom.Vec2
	adv    []float32
}

// NewStrokeTessellator returns a tessellator whose scratch buffers are
// reused across calls.
func NewStrokeTessellator() *StrokeTessellator {
	return &StrokeTessellator{}
}

// Tessellate strokes every subpath of path. Closed subpaths are joined
// back to their start and receive no caps.
func (t *StrokeTessellator) Tessellate(path PathIter, style StrokeStyle, addVertex StrokeVertexFunc, addTriangle TriangleFunc) error {
	if style.MiterLimit <= 0 {
		style.MiterLimit = 4
	}

	t.points = t.points[:0]
	closed := false
	for {
		ev, ok := path.Next()
		if !ok {
			break
		}
		switch ev.Kind {
		case mvt.EventBegin:
			t.points = append(t.points[:0], ev.Point)
		case mvt.EventLine:
			if len(t.points) == 0 || ev.Point.Distance(t.points[len(t.points)-1]) > strokeTolerance {
				t.points = append(t.points, ev.Point)
			}
		case mvt.EventEnd:
			closed = ev.Close
			if closed && len(t.points) > 1 && t.points[0].Distance(t.points[len(t.points)-1]) <= strokeTolerance {
				t.points = t.points[:len(t.points)-1]
			}
			t.strokeSubpath(closed, style, addVertex, addTriangle)
			t.points = t.points[:0]
		}
	}
	return nil
}

func (t *StrokeTessellator) strokeSubpath(closed bool, style StrokeStyle, addVertex StrokeVertexFunc, addTriangle TriangleFunc) {
	pts := t.points
	if len(pts) < 2 {
		return
	}

	t.adv = t.adv[:0]
	total := float32(0)
	t.adv = append(t.adv, 0)
	for i := 1; i < len(pts); i++ {
		total += pts[i].Distance(pts[i-1])
		t.adv = append(t.adv, total)
	}
	closeLen := float32(0)
	if closed {
		closeLen = pts[0].Distance(pts[len(pts)-1])
	}

	segments := len(pts) - 1
	if closed {
		segments = len(pts)
	}

	// One quad per segment. Vertices on the left edge carry +normal,
	// the right edge -normal. Joins fill the outer wedge behind each
	// interior point, plus the wrap-around point on closed paths.
	for i := 0; i < segments; i++ {
		p0 := pts[i]
		p1 := pts[(i+1)%len(pts)]
		a0 := t.adv[i]
		a1 := total + closeLen
		if i+1 < len(pts) {
			a1 = t.adv[i+1]
		}

		n := p1.Sub(p0).Normalize().Perp()
		l0 := addVertex(p0, n, a0)
		r0 := addVertex(p0, n.Neg(), a0)
		l1 := addVertex(p1, n, a1)
		r1 := addVertex(p1, n.Neg(), a1)
		addTriangle(l0, r0, l1)
		addTriangle(r0, r1, l1)

		if i+1 < segments {
			joinSegments(p0, p1, pts[(i+2)%len(pts)], a1, style, addVertex, addTriangle)
		}
	}
	if closed {
		joinSegments(pts[len(pts)-1], pts[0], pts[1], total+closeLen, style, addVertex, addTriangle)
		return
	}

	if style.Cap == CapButt {
		return
	}
	first := pts[1].Sub(pts[0]).Normalize()
	last := pts[len(pts)-1].Sub(pts[len(pts)-2]).Normalize()
	capEnd(pts[0], first.Neg(), 0, style.Cap, addVertex, addTriangle)
	capEnd(pts[len(pts)-1], last, total, style.Cap, addVertex, addTriangle)
}

// joinSegments fills the outer wedge between two segments meeting at p.
// The wedge fans around a center vertex whose normal is zero, so it
// stays put while the edge vertices extrude.
func joinSegments(prev, p, next geom.Vec2, adv float32, style StrokeStyle, addVertex StrokeVertexFunc, addTriangle TriangleFunc) {
	d0 := p.Sub(prev).Normalize()
	d1 := next.Sub(p).Normalize()
	cross := d0.Cross(d1)
	if abs(cross) < strokeTolerance {
		return
	}

	// The outer side of a left turn is the right edge.
	o0 := d0.Perp()
	o1 := d1.Perp()
	if cross > 0 {
		o0 = o0.Neg()
		o1 = o1.Neg()
	}

	center := addVertex(p, geom.Vec2{}, adv)
	v0 := addVertex(p, o0, adv)
	v1 := addVertex(p, o1, adv)

	switch style.Join {
	case JoinMiter:
		m := o0.Add(o1).Normalize()
		if cos := m.Dot(o0); cos > 0 && 1/cos <= style.MiterLimit {
			vm := addVertex(p, m.Mul(1/cos), adv)
			addTriangle(center, v0, vm)
			addTriangle(center, vm, v1)
			return
		}
		addTriangle(center, v0, v1)
	case JoinRound:
		arcFan(p, o0, o1, adv, center, v0, v1, addVertex, addTriangle)
	default:
		addTriangle(center, v0, v1)
	}
}

// capEnd finishes an open path end. dir points out of the path.
func capEnd(p, dir geom.Vec2, adv float32, style LineCap, addVertex StrokeVertexFunc, addTriangle TriangleFunc) {
	n := dir.Perp()
	switch style {
	case CapSquare:
		// Extend the edge vertices past the endpoint by the extrusion
		// distance along dir.
		a := addVertex(p, n, adv)
		b := addVertex(p, n.Neg(), adv)
		a2 := addVertex(p, n.Add(dir), adv)
		b2 := addVertex(p, n.Neg().Add(dir), adv)
		addTriangle(a, b, a2)
		addTriangle(b, b2, a2)
	case CapRound:
		center := addVertex(p, geom.Vec2{}, adv)
		v0 := addVertex(p, n, adv)
		v1 := addVertex(p, n.Neg(), adv)
		arcFan(p, n, n.Neg(), adv, center, v0, v1, addVertex, addTriangle)
	}
}

// arcFan triangulates the arc from normal o0 to o1 around center,
// rotating the short way through the outer side.
func arcFan(p, o0, o1 geom.Vec2, adv float32, center, v0, v1 uint32, addVertex StrokeVertexFunc, addTriangle TriangleFunc) {
	dot := clamp(o0.Dot(o1), -1, 1)
	angle := float32(math.Acos(float64(dot)))
	steps := int(angle/arcStep) + 1

	sign := float32(1)
	if o0.Cross(o1) < 0 {
		sign = -1
	}

	last := v0
	for i := 1; i < steps; i++ {
		a := sign * angle * float32(i) / float32(steps)
		sin, cos := math.Sincos(float64(a))
		n := geom.V(
			o0.X*float32(cos)-o0.Y*float32(sin),
			o0.X*float32(sin)+o0.Y*float32(cos),
		)
		v := addVertex(p, n, adv)
		addTriangle(center, last, v)
		last = v
	}
	addTriangle(center, last, v1)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
