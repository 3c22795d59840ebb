package tilemap

import "github.com/gogpu/tilemap/style"

// FeaturePaint is a layer's paint with every data-driven expression
// already folded in for one concrete feature. Consecutive features whose
// paints compare equal share a draw call.
type FeaturePaint struct {
	Kind  style.LayerKind
	Paint style.Paint
}

// Equal reports whether two paints draw identically. Nil paints only
// equal other nil paints.
func (p *FeaturePaint) Equal(o *FeaturePaint) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Kind == o.Kind && p.Paint.Equal(&o.Paint)
}

// StyleAt evaluates the paint at a zoom level.
func (p *FeaturePaint) StyleAt(zoom float32) FeatureStyle {
	outline, hasOutline := p.Paint.FillOutlineColorAt(zoom)
	return FeatureStyle{
		Kind:          p.Kind,
		Background:    p.Paint.BackgroundColorAt(zoom),
		Fill:          p.Paint.FillColorAt(zoom),
		Outline:       outline,
		HasOutline:    hasOutline,
		Line:          p.Paint.LineColorAt(zoom),
		LineWidth:     p.Paint.LineWidthAt(zoom),
		FillTranslate: p.Paint.FillTranslateAt(zoom),
		Text:          p.Paint.TextColorAt(zoom),
		Halo:          p.Paint.TextHaloColorAt(zoom),
		HaloWidth:     p.Paint.TextHaloWidthAt(zoom),
		HaloBlur:      p.Paint.TextHaloBlurAt(zoom),
	}
}

// FeatureStyle is a FeaturePaint evaluated at one zoom level, the form
// uniform buffers are filled from.
type FeatureStyle struct {
	Kind          style.LayerKind
	Background    style.Color
	Fill          style.Color
	Outline       style.Color
	HasOutline    bool
	Line          style.Color
	LineWidth     float32
	FillTranslate style.Offset
	Text          style.Color
	Halo          style.Color
	HaloWidth     float32
	HaloBlur      float32
}

// FillColor returns the color polygon geometry fills with. Background
// layers fill their quad with the background color.
func (s FeatureStyle) FillColor() style.Color {
	if s.Kind == style.LayerBackground {
		return s.Background
	}
	return s.Fill
}

// LineColor returns the color stroke geometry draws with. Fill layers
// stroke their outline color when one is set.
func (s FeatureStyle) LineColor() style.Color {
	if s.Kind == style.LayerFill && s.HasOutline {
		return s.Outline
	}
	return s.Line
}
