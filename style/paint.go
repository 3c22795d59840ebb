package style

// Exists records that a property was present in the style without
// interpreting its value. Some properties only matter for feature-support
// detection.
type Exists struct {
	Present bool
}

func (e *Exists) UnmarshalJSON([]byte) error {
	e.Present = true
	return nil
}

// Paint holds the color and width properties of a layer. Fields mirror
// the kebab-case style JSON names.
type Paint struct {
	BackgroundColor  Param[Color]   `json:"background-color"`
	LineColor        Param[Color]   `json:"line-color"`
	LineOpacity      Param[Number]  `json:"line-opacity"`
	LineWidth        Param[Number]  `json:"line-width"`
	LineDashArray    Exists         `json:"line-dasharray"`
	FillAntialias    Param[Boolean] `json:"fill-antialias"`
	FillColor        Param[Color]   `json:"fill-color"`
	FillOpacity      Param[Number]  `json:"fill-opacity"`
	FillOutlineColor Param[Color]   `json:"fill-outline-color"`
	FillTranslate    Param[Offset]  `json:"fill-translate"`
	FillPattern      Exists         `json:"fill-pattern"`
	TextColor        Param[Color]   `json:"text-color"`
	TextHaloBlur     Param[Number]  `json:"text-halo-blur"`
	TextHaloColor    Param[Color]   `json:"text-halo-color"`
	TextHaloWidth    Param[Number]  `json:"text-halo-width"`
}

// BackgroundColorAt returns the background color, defaulting to black.
func (p *Paint) BackgroundColorAt(zoom float32) Color {
	return p.BackgroundColor.EvalOr(zoom, Black())
}

// FillColorAt returns the fill color with the fill opacity applied. An
// unset color is black; an unset opacity keeps the color's own alpha.
func (p *Paint) FillColorAt(zoom float32) Color {
	color, ok := p.FillColor.Eval(zoom)
	if !ok {
		return Black()
	}
	return applyOpacity(color, p.FillOpacity, zoom)
}

// FillOutlineColorAt returns the outline color with fill opacity applied,
// reporting false when the style sets none.
func (p *Paint) FillOutlineColorAt(zoom float32) (Color, bool) {
	color, ok := p.FillOutlineColor.Eval(zoom)
	if !ok {
		return Color{}, false
	}
	return applyOpacity(color, p.FillOpacity, zoom), true
}

// FillTranslateAt returns the fill offset in ems.
func (p *Paint) FillTranslateAt(zoom float32) Offset {
	return p.FillTranslate.EvalOr(zoom, Offset{})
}

// LineColorAt returns the line color with the line opacity applied.
func (p *Paint) LineColorAt(zoom float32) Color {
	color, ok := p.LineColor.Eval(zoom)
	if !ok {
		return Black()
	}
	return applyOpacity(color, p.LineOpacity, zoom)
}

// LineWidthAt returns the stroke width, defaulting to 1.
func (p *Paint) LineWidthAt(zoom float32) float32 {
	return float32(p.LineWidth.EvalOr(zoom, 1))
}

// TextColorAt returns the label color, defaulting to black.
func (p *Paint) TextColorAt(zoom float32) Color {
	return p.TextColor.EvalOr(zoom, Black())
}

// TextHaloColorAt returns the halo color, defaulting to black.
func (p *Paint) TextHaloColorAt(zoom float32) Color {
	return p.TextHaloColor.EvalOr(zoom, Black())
}

// TextHaloWidthAt returns the halo width, defaulting to 0.
func (p *Paint) TextHaloWidthAt(zoom float32) float32 {
	return float32(p.TextHaloWidth.EvalOr(zoom, 0))
}

// TextHaloBlurAt returns the halo blur radius, defaulting to 0.
func (p *Paint) TextHaloBlurAt(zoom float32) float32 {
	return float32(p.TextHaloBlur.EvalOr(zoom, 0))
}

// Unsupported reports whether the paint uses features the pipeline cannot
// render. Patterned fills have no tessellated form.
func (p *Paint) Unsupported() bool {
	return p.FillPattern.Present
}

// Resolve folds every expression parameter against one feature so the
// result can be evaluated by zoom alone and compared for batching.
func (p *Paint) Resolve(feature Feature) Paint {
	out := *p
	out.BackgroundColor = p.BackgroundColor.Resolve(feature, ColorFrom)
	out.LineColor = p.LineColor.Resolve(feature, ColorFrom)
	out.LineOpacity = p.LineOpacity.Resolve(feature, NumberFrom)
	out.LineWidth = p.LineWidth.Resolve(feature, NumberFrom)
	out.FillAntialias = p.FillAntialias.Resolve(feature, BooleanFrom)
	out.FillColor = p.FillColor.Resolve(feature, ColorFrom)
	out.FillOpacity = p.FillOpacity.Resolve(feature, NumberFrom)
	out.FillOutlineColor = p.FillOutlineColor.Resolve(feature, ColorFrom)
	out.FillTranslate = p.FillTranslate.Resolve(feature, OffsetFrom)
	out.TextColor = p.TextColor.Resolve(feature, ColorFrom)
	out.TextHaloBlur = p.TextHaloBlur.Resolve(feature, NumberFrom)
	out.TextHaloColor = p.TextHaloColor.Resolve(feature, ColorFrom)
	out.TextHaloWidth = p.TextHaloWidth.Resolve(feature, NumberFrom)
	return out
}

// Equal reports whether two paints evaluate identically at every zoom.
func (p *Paint) Equal(o *Paint) bool {
	return p.BackgroundColor.Equal(o.BackgroundColor) &&
		p.LineColor.Equal(o.LineColor) &&
		p.LineOpacity.Equal(o.LineOpacity) &&
		p.LineWidth.Equal(o.LineWidth) &&
		p.LineDashArray == o.LineDashArray &&
		p.FillAntialias.Equal(o.FillAntialias) &&
		p.FillColor.Equal(o.FillColor) &&
		p.FillOpacity.Equal(o.FillOpacity) &&
		p.FillOutlineColor.Equal(o.FillOutlineColor) &&
		p.FillTranslate.Equal(o.FillTranslate) &&
		p.FillPattern == o.FillPattern &&
		p.TextColor.Equal(o.TextColor) &&
		p.TextHaloBlur.Equal(o.TextHaloBlur) &&
		p.TextHaloColor.Equal(o.TextHaloColor) &&
		p.TextHaloWidth.Equal(o.TextHaloWidth)
}

func applyOpacity(color Color, opacity Param[Number], zoom float32) Color {
	if o, ok := opacity.Eval(zoom); ok {
		return color.WithAlpha(float32(o))
	}
	return color
}
