package text

import (
	"unicode"

	"github.com/gogpu/tilemap/geom"
)

// MetricsSource supplies the font measurements line layout needs. It is
// implemented by Collection and by test fakes.
type MetricsSource interface {
	HasGlyph(font FontID, r rune) bool
	Metrics(font FontID, r rune, size float32) (Metrics, bool)
	Kern(font FontID, prev, next rune, size float32) float32
	LineHeight(font FontID, size float32) float32
}

// GlyphDraw is one positioned glyph inside a label, in label-local
// baseline-up coordinates.
type GlyphDraw struct {
	Bounds geom.Rect
	Glyph  GlyphID
}

// LineDraw is one laid-out line of a label.
type LineDraw struct {
	Width  float32
	Glyphs []GlyphDraw
}

// LayoutLabel breaks a label into lines and positions each glyph. The
// text wraps at spaces once a line exceeds maxWidth (in pixels) and at
// explicit newlines. With multiple lines, shorter ones are centered under
// the widest. The returned bounds cover every glyph box including
// whitespace advances; ok is false when nothing is drawable.
func LayoutLabel(fonts MetricsSource, font FontID, label string, size, maxWidth float32) ([]LineDraw, geom.Rect, bool) {
	vAdvance := fonts.LineHeight(font, size)

	var hOffset, vOffset float32
	var glyphs []GlyphDraw
	var lines []LineDraw
	var widest float32

	boundsMin := geom.V(maxFloat, maxFloat)
	boundsMax := geom.V(-maxFloat, -maxFloat)

	var lastGlyph rune
	hasLast := false

	idx := 0
	for _, c := range label {
		// Wrapping skips the breaking character. Very short remainders
		// stay on the current line.
		if ((hOffset > maxWidth && c == ' ') || c == '\n') && len(label) > idx+2 {
			widest = maxf(widest, hOffset)
			lines = append(lines, LineDraw{Width: hOffset, Glyphs: glyphs})
			glyphs = nil
			hasLast = false
			hOffset = 0
			vOffset -= vAdvance
			idx++
			continue
		}
		idx++

		if unicode.IsControl(c) || !fonts.HasGlyph(font, c) {
			hasLast = false
			continue
		}

		var kern float32
		if hasLast {
			kern = fonts.Kern(font, lastGlyph, c, size)
		}
		lastGlyph = c
		hasLast = true

		m, ok := fonts.Metrics(font, c, size)
		if !ok {
			continue
		}

		min := geom.V(m.XMin+hOffset+kern, m.YMin+vOffset)
		bounds := geom.Rect{Min: min, Max: min.Add(geom.V(m.Width, m.Height))}

		boundsMin = boundsMin.MinV(bounds.Min).MinV(bounds.Max)
		boundsMax = boundsMax.MaxV(bounds.Max).MaxV(bounds.Min)

		if !unicode.IsSpace(c) {
			glyphs = append(glyphs, GlyphDraw{Bounds: bounds, Glyph: GlyphID{Font: font, Rune: c}})
		}

		hOffset += m.AdvanceWidth
	}

	if len(glyphs) > 0 {
		widest = maxf(widest, hOffset)
		lines = append(lines, LineDraw{Width: hOffset, Glyphs: glyphs})
	}
	if len(lines) == 0 {
		return nil, geom.Rect{}, false
	}

	if len(lines) > 1 {
		for li := range lines {
			adjust := (widest - lines[li].Width) / 2
			for gi := range lines[li].Glyphs {
				lines[li].Glyphs[gi].Bounds.Min.X += adjust
				lines[li].Glyphs[gi].Bounds.Max.X += adjust
			}
		}
	}

	return lines, geom.Rect{Min: boundsMin, Max: boundsMax}, true
}

const maxFloat = float32(3.4e38)

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
