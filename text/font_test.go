package text

import "testing"

func TestCollectionSelect(t *testing.T) {
	fonts, err := NewCollection()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		names []string
		want  FontID
	}{
		{[]string{"Noto Sans Regular"}, FontRegular},
		{[]string{"Noto Sans Bold"}, FontBold},
		{[]string{"Noto Sans Italic"}, FontItalic},
		{[]string{"Open Sans Oblique"}, FontItalic},
		{[]string{"Missing Font", "Roboto Bold"}, FontBold},
		{nil, FontRegular},
	}
	for _, tt := range tests {
		if got := fonts.Select(tt.names); got != tt.want {
			t.Errorf("Select(%v) = %v, want %v", tt.names, got, tt.want)
		}
	}
}

func TestFaceMetrics(t *testing.T) {
	fonts, err := NewCollection()
	if err != nil {
		t.Fatal(err)
	}
	face := fonts.Face(FontRegular)

	if !face.HasGlyph('A') {
		t.Fatal("regular face must map 'A'")
	}

	m, ok := face.Metrics('A', 16)
	if !ok {
		t.Fatal("metrics for 'A' must resolve")
	}
	if m.AdvanceWidth <= 0 || m.Width <= 0 || m.Height <= 0 {
		t.Errorf("degenerate metrics: %+v", m)
	}

	if face.LineHeight(16) <= 0 {
		t.Error("line height must be positive")
	}
}

func TestFaceRasterize(t *testing.T) {
	fonts, err := NewCollection()
	if err != nil {
		t.Fatal(err)
	}
	face := fonts.Face(FontRegular)

	img, ok := face.Rasterize('A', 16)
	if !ok || img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Fatalf("rasterize 'A' = %v, ok %v", img.Bounds(), ok)
	}

	var ink bool
	for _, p := range img.Pix {
		if p != 0 {
			ink = true
			break
		}
	}
	if !ink {
		t.Error("rasterized glyph must contain coverage")
	}
}
