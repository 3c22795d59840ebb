package tilemap

import (
	"reflect"
	"testing"

	"github.com/gogpu/tilemap/geom"
	"github.com/gogpu/tilemap/style"
)

func TestDrawCommandsBatchesEqualPaints(t *testing.T) {
	fill := &FeaturePaint{Kind: style.LayerFill}
	fillAgain := &FeaturePaint{Kind: style.LayerFill}
	line := &FeaturePaint{Kind: style.LayerLine}

	var d DrawCommands
	d.add(fill, 0)
	d.add(fillAgain, 30)
	d.add(line, 60)
	d.add(nil, 90)

	want := []FeatureDraw{
		{Paint: fill, Indices: Range{Start: 0, End: 60}},
		{Paint: line, Indices: Range{Start: 60, End: 90}},
	}
	if !reflect.DeepEqual(d.FeatureDraws, want) {
		t.Errorf("draws = %+v, want %+v", d.FeatureDraws, want)
	}
}

func TestDrawCommandsSkipsEmptyRanges(t *testing.T) {
	symbol := &FeaturePaint{Kind: style.LayerSymbol}

	var d DrawCommands
	d.add(symbol, 0)
	d.add(nil, 0)

	if len(d.FeatureDraws) != 0 {
		t.Errorf("draws = %+v, want none", d.FeatureDraws)
	}
	if d.lastPaint != nil {
		t.Error("closing the batch must drop the paint")
	}
}

func TestDrawCommandsFlushesLabels(t *testing.T) {
	symbol := &FeaturePaint{Kind: style.LayerSymbol}

	var d DrawCommands
	d.add(symbol, 0)
	d.layerLabels = append(d.layerLabels, LabelDraw{
		TextSize: 16,
		Offset:   geom.V(0.5, 0.5),
	})
	d.add(nil, 0)

	if len(d.Labels) != 1 || d.Labels[0].Paint != symbol {
		t.Fatalf("labels = %+v", d.Labels)
	}
	if len(d.Labels[0].Labels) != 1 {
		t.Errorf("got %d labels, want 1", len(d.Labels[0].Labels))
	}
	if len(d.layerLabels) != 0 {
		t.Error("flushing must drain the open label list")
	}
}

func TestDrawCommandsClear(t *testing.T) {
	fill := &FeaturePaint{Kind: style.LayerFill}

	var d DrawCommands
	d.add(fill, 0)
	d.add(nil, 12)
	d.clear()

	if len(d.FeatureDraws) != 0 || len(d.Labels) != 0 || d.lastPaint != nil || d.rangeStart != 0 {
		t.Errorf("clear left state behind: %+v", d)
	}
}

func TestFeaturePaintEqual(t *testing.T) {
	fill := &FeaturePaint{Kind: style.LayerFill}
	line := &FeaturePaint{Kind: style.LayerLine}

	if !fill.Equal(&FeaturePaint{Kind: style.LayerFill}) {
		t.Error("identical paints must compare equal")
	}
	if fill.Equal(line) {
		t.Error("different kinds must not compare equal")
	}
	if fill.Equal(nil) {
		t.Error("nil never equals a paint")
	}
	var nilPaint *FeaturePaint
	if !nilPaint.Equal(nil) {
		t.Error("nil equals nil")
	}
}
