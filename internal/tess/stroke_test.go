package tess

import (
	"testing"

	"github.com/gogpu/tilemap/geom"
	"github.com/gogpu/tilemap/mvt"
)

func lineEvents(closed bool, pts ...geom.Vec2) *eventIter {
	var events []mvt.PathEvent
	for i, pt := range pts {
		kind := mvt.EventLine
		if i == 0 {
			kind = mvt.EventBegin
		}
		events = append(events, mvt.PathEvent{Kind: kind, Point: pt})
	}
	events = append(events, mvt.PathEvent{Kind: mvt.EventEnd, Close: closed})
	return &eventIter{events: events}
}

type strokeVertex struct {
	pos, normal geom.Vec2
	adv         float32
}

type strokeMesh struct {
	vertices  []strokeVertex
	triangles [][3]uint32
}

func (m *strokeMesh) addVertex(pos, normal geom.Vec2, adv float32) uint32 {
	m.vertices = append(m.vertices, strokeVertex{pos: pos, normal: normal, adv: adv})
	return uint32(len(m.vertices) - 1)
}

func (m *strokeMesh) addTriangle(a, b, c uint32) {
	m.triangles = append(m.triangles, [3]uint32{a, b, c})
}

func stroke(t *testing.T, style StrokeStyle, closed bool, pts ...geom.Vec2) *strokeMesh {
	t.Helper()
	mesh := &strokeMesh{}
	err := NewStrokeTessellator().Tessellate(lineEvents(closed, pts...), style, mesh.addVertex, mesh.addTriangle)
	if err != nil {
		t.Fatal(err)
	}
	return mesh
}

func TestStrokeSingleSegment(t *testing.T) {
	mesh := stroke(t, DefaultStrokeStyle(), false, geom.V(0, 0), geom.V(10, 0))

	if len(mesh.vertices) != 4 || len(mesh.triangles) != 2 {
		t.Fatalf("got %d vertices, %d triangles", len(mesh.vertices), len(mesh.triangles))
	}

	// All normals are unit length and perpendicular to the segment.
	for _, v := range mesh.vertices {
		if abs(v.normal.Length()-1) > 1e-5 {
			t.Errorf("normal %v is not unit length", v.normal)
		}
		if abs(v.normal.X) > 1e-5 {
			t.Errorf("normal %v is not perpendicular to the segment", v.normal)
		}
	}

	// Advancement runs from 0 at the start to the path length at the end.
	if mesh.vertices[0].adv != 0 || mesh.vertices[2].adv != 10 {
		t.Errorf("advancements = %v, %v", mesh.vertices[0].adv, mesh.vertices[2].adv)
	}
}

func TestStrokeAdvancementMonotonic(t *testing.T) {
	mesh := stroke(t, DefaultStrokeStyle(), false,
		geom.V(0, 0), geom.V(3, 4), geom.V(6, 0), geom.V(10, 0))

	var last float32
	for _, v := range mesh.vertices {
		if v.adv+1e-5 < last {
			t.Fatalf("advancement went backwards: %v after %v", v.adv, last)
		}
		if v.adv > last {
			last = v.adv
		}
	}
	// Total length is 5 + 5 + 4.
	if last != 14 {
		t.Errorf("final advancement = %v, want 14", last)
	}
}

func TestStrokeMiterJoin(t *testing.T) {
	mesh := stroke(t, DefaultStrokeStyle(), false,
		geom.V(0, 0), geom.V(10, 0), geom.V(10, 10))

	// Two quads plus a two-triangle miter wedge.
	if len(mesh.triangles) != 6 {
		t.Fatalf("got %d triangles, want 6", len(mesh.triangles))
	}

	// The wedge fans around a pinned center vertex at the corner.
	var center, miter bool
	for _, v := range mesh.vertices {
		if v.pos != geom.V(10, 0) {
			continue
		}
		if v.normal == (geom.Vec2{}) {
			center = true
		}
		if v.normal.Length() > 1+1e-5 {
			miter = true
		}
	}
	if !center {
		t.Error("missing zero-normal center vertex at the corner")
	}
	if !miter {
		t.Error("missing extended miter vertex at the corner")
	}
}

func TestStrokeSharpCornerBevels(t *testing.T) {
	// A near-reversal exceeds the miter limit.
	mesh := stroke(t, DefaultStrokeStyle(), false,
		geom.V(0, 0), geom.V(10, 0), geom.V(0, 1))

	for _, v := range mesh.vertices {
		if v.normal.Length() > 1+1e-5 {
			t.Fatalf("normal %v exceeds unit length despite the miter limit", v.normal)
		}
	}
	if len(mesh.triangles) != 5 {
		t.Errorf("got %d triangles, want 5", len(mesh.triangles))
	}
}

func TestStrokeRoundJoinFans(t *testing.T) {
	style := DefaultStrokeStyle()
	style.Join = JoinRound
	mesh := stroke(t, style, false,
		geom.V(0, 0), geom.V(10, 0), geom.V(10, 10))

	bevel := stroke(t, StrokeStyle{Join: JoinBevel, MiterLimit: 4}, false,
		geom.V(0, 0), geom.V(10, 0), geom.V(10, 10))
	if len(mesh.triangles) <= len(bevel.triangles) {
		t.Errorf("round join produced %d triangles, bevel %d", len(mesh.triangles), len(bevel.triangles))
	}
}

func TestStrokeSquareCaps(t *testing.T) {
	style := DefaultStrokeStyle()
	style.Cap = CapSquare
	mesh := stroke(t, style, false, geom.V(0, 0), geom.V(10, 0))

	// The segment quad plus one quad per end.
	if len(mesh.triangles) != 6 {
		t.Fatalf("got %d triangles, want 6", len(mesh.triangles))
	}

	// Cap vertices extend along the path direction as well as sideways.
	var longitudinal int
	for _, v := range mesh.vertices {
		if abs(v.normal.X) > 1e-5 {
			longitudinal++
		}
	}
	if longitudinal != 4 {
		t.Errorf("got %d extended cap vertices, want 4", longitudinal)
	}
}

func TestStrokeClosedRingHasNoCaps(t *testing.T) {
	style := DefaultStrokeStyle()
	style.Cap = CapSquare
	mesh := stroke(t, style, true,
		geom.V(0, 0), geom.V(10, 0), geom.V(10, 10), geom.V(0, 10))

	// Four segment quads and four right-angle miter joins, no caps.
	if len(mesh.triangles) != 4*2+4*2 {
		t.Errorf("got %d triangles, want 16", len(mesh.triangles))
	}
	for _, v := range mesh.vertices {
		if v.normal.X != 0 && v.normal.Y != 0 && abs(v.normal.Length()-1) > 1e-5 {
			// Right angles miter at sqrt 2.
			if abs(v.normal.Length()-1.4142135) > 1e-4 {
				t.Errorf("unexpected normal %v", v.normal)
			}
		}
	}
}

func TestStrokeDropsDuplicatePoints(t *testing.T) {
	mesh := stroke(t, DefaultStrokeStyle(), false,
		geom.V(0, 0), geom.V(0, 0), geom.V(10, 0))
	if len(mesh.vertices) != 4 || len(mesh.triangles) != 2 {
		t.Errorf("got %d vertices, %d triangles", len(mesh.vertices), len(mesh.triangles))
	}
}

func TestStrokeSinglePointIsEmpty(t *testing.T) {
	mesh := stroke(t, DefaultStrokeStyle(), false, geom.V(5, 5))
	if len(mesh.vertices) != 0 {
		t.Errorf("got %d vertices, want 0", len(mesh.vertices))
	}
}
