package mvt

import (
	"testing"

	"github.com/gogpu/tilemap/geom"
	"github.com/gogpu/tilemap/tile"
)

func cmdWord(cmd, count uint32) uint32 {
	return cmd | count<<3
}

func zz(d int32) uint32 {
	return uint32((d << 1) ^ (d >> 31))
}

func collect(t *testing.T, next func() (PathEvent, bool)) []PathEvent {
	t.Helper()
	var events []PathEvent
	for {
		ev, ok := next()
		if !ok {
			return events
		}
		events = append(events, ev)
		if len(events) > 100 {
			t.Fatal("iterator did not terminate")
		}
	}
}

func TestPolygonClosePath(t *testing.T) {
	data := []uint32{
		cmdWord(cmdMoveTo, 1), zz(0), zz(0),
		cmdWord(cmdLineTo, 2), zz(4096), zz(0), zz(0), zz(4096),
		cmdWord(cmdClosePath, 1),
	}
	events := collect(t, NewPolygonIter(data, tile.Unit()).Next)

	want := []PathEvent{
		{Kind: EventBegin, Point: geom.V(0, 0)},
		{Kind: EventLine, From: geom.V(0, 0), Point: geom.V(1, 0)},
		{Kind: EventLine, From: geom.V(1, 0), Point: geom.V(1, 1)},
		{Kind: EventEnd, First: geom.V(0, 0), Close: true},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(events), len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestPolygonClosesAtStreamEnd(t *testing.T) {
	data := []uint32{
		cmdWord(cmdMoveTo, 1), zz(1024), zz(1024),
		cmdWord(cmdLineTo, 1), zz(1024), zz(0),
	}
	events := collect(t, NewPolygonIter(data, tile.Unit()).Next)

	last := events[len(events)-1]
	if last.Kind != EventEnd || !last.Close {
		t.Errorf("final event = %+v, want closing End", last)
	}
	if last.First != geom.V(0.25, 0.25) {
		t.Errorf("First = %v, want (0.25, 0.25)", last.First)
	}
}

func TestLineStringReopens(t *testing.T) {
	// Two subpaths back to back. The second MoveTo must flush the first
	// as an open End before beginning again.
	data := []uint32{
		cmdWord(cmdMoveTo, 1), zz(0), zz(0),
		cmdWord(cmdLineTo, 1), zz(4096), zz(0),
		cmdWord(cmdMoveTo, 1), zz(0), zz(4096),
		cmdWord(cmdLineTo, 1), zz(-4096), zz(0),
	}
	events := collect(t, NewLineStringIter(data, tile.Unit()).Next)

	want := []PathEvent{
		{Kind: EventBegin, Point: geom.V(0, 0)},
		{Kind: EventLine, From: geom.V(0, 0), Point: geom.V(1, 0)},
		{Kind: EventEnd, First: geom.V(0, 0), Close: false},
		{Kind: EventBegin, Point: geom.V(1, 1)},
		{Kind: EventLine, From: geom.V(1, 1), Point: geom.V(0, 1)},
		{Kind: EventEnd, First: geom.V(1, 1), Close: false},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(events), len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestLineStringIgnoresClosePath(t *testing.T) {
	data := []uint32{
		cmdWord(cmdMoveTo, 1), zz(0), zz(0),
		cmdWord(cmdLineTo, 1), zz(4096), zz(4096),
		cmdWord(cmdClosePath, 1),
	}
	events := collect(t, NewLineStringIter(data, tile.Unit()).Next)

	last := events[len(events)-1]
	if last.Kind != EventEnd || last.Close {
		t.Errorf("final event = %+v, want open End", last)
	}
}

func TestLineStringTruncatedPair(t *testing.T) {
	// LineTo promises two pairs but the stream holds one and a half.
	data := []uint32{
		cmdWord(cmdMoveTo, 1), zz(0), zz(0),
		cmdWord(cmdLineTo, 2), zz(4096), zz(0), zz(512),
	}
	events := collect(t, NewLineStringIter(data, tile.Unit()).Next)

	want := []PathEvent{
		{Kind: EventBegin, Point: geom.V(0, 0)},
		{Kind: EventLine, From: geom.V(0, 0), Point: geom.V(1, 0)},
		{Kind: EventEnd, First: geom.V(0, 0), Close: false},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(events), len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestPointIterDeltas(t *testing.T) {
	// Deltas accumulate: the second point is relative to the first.
	data := []uint32{
		cmdWord(cmdMoveTo, 2), zz(2048), zz(2048), zz(-1024), zz(1024),
	}
	it := NewPointIter(data, tile.Unit())

	p, ok := it.Next()
	if !ok || p != geom.V(0.5, 0.5) {
		t.Fatalf("first point = %v, %v", p, ok)
	}
	p, ok = it.Next()
	if !ok || p != geom.V(0.25, 0.75) {
		t.Fatalf("second point = %v, %v", p, ok)
	}
	if _, ok := it.Next(); ok {
		t.Error("iterator must end after two points")
	}
}

func TestPointIterProjects(t *testing.T) {
	// A fallback transform scales and offsets the decoded point.
	rect := tile.Rect{Offset: geom.V(0.5, 0), Scale: 2}
	data := []uint32{cmdWord(cmdMoveTo, 1), zz(3072), zz(1024)}

	p, ok := NewPointIter(data, rect).Next()
	if !ok || p != geom.V(0.5, 0.5) {
		t.Errorf("point = %v, %v, want (0.5, 0.5)", p, ok)
	}
}

func TestPointIterTruncated(t *testing.T) {
	data := []uint32{cmdWord(cmdMoveTo, 2), zz(0), zz(0), zz(7)}
	it := NewPointIter(data, tile.Unit())

	if _, ok := it.Next(); !ok {
		t.Fatal("first point should decode")
	}
	if _, ok := it.Next(); ok {
		t.Error("truncated pair must end the stream silently")
	}
}
