package style

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Visibility toggles a layer on or off. The zero value is visible.
type Visibility uint8

const (
	VisibilityVisible Visibility = iota
	VisibilityNone
)

func (v *Visibility) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "visible":
		*v = VisibilityVisible
	case "none":
		*v = VisibilityNone
	default:
		return fmt.Errorf("style: unknown visibility %q", s)
	}
	return nil
}

// LineCap selects the stroke end-cap shape. The zero value is butt.
type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

func (c *LineCap) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "butt":
		*c = CapButt
	case "round":
		*c = CapRound
	case "square":
		*c = CapSquare
	default:
		return fmt.Errorf("style: unknown line cap %q", s)
	}
	return nil
}

// LineJoin selects the stroke corner shape. The zero value is miter.
type LineJoin uint8

const (
	JoinMiter LineJoin = iota
	JoinBevel
	JoinRound
)

func (j *LineJoin) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "miter":
		*j = JoinMiter
	case "bevel":
		*j = JoinBevel
	case "round":
		*j = JoinRound
	default:
		return fmt.Errorf("style: unknown line join %q", s)
	}
	return nil
}

// TextTransform adjusts label casing. The zero value leaves text as-is.
type TextTransform uint8

const (
	TransformNone TextTransform = iota
	TransformUppercase
	TransformLowercase
)

func (t *TextTransform) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "none":
		*t = TransformNone
	case "uppercase":
		*t = TransformUppercase
	case "lowercase":
		*t = TransformLowercase
	default:
		return fmt.Errorf("style: unknown text transform %q", s)
	}
	return nil
}

func (t TextTransform) apply(s string) string {
	switch t {
	case TransformUppercase:
		return cases.Upper(language.Und).String(s)
	case TransformLowercase:
		return cases.Lower(language.Und).String(s)
	default:
		return s
	}
}

// Layout holds the layer properties that shape geometry rather than color
// it. Several symbol fields are parsed for completeness but only the text
// subset drives label layout.
type Layout struct {
	Visibility        Visibility    `json:"visibility"`
	LineCap           LineCap       `json:"line-cap"`
	LineJoin          LineJoin      `json:"line-join"`
	TextAllowOverlap  *bool         `json:"text-allow-overlap"`
	TextField         string        `json:"text-field"`
	TextFont          []string      `json:"text-font"`
	TextLetterSpacing *float32      `json:"text-letter-spacing"`
	TextMaxWidth      *float32      `json:"text-max-width"`
	TextOffset        *Offset       `json:"text-offset"`
	TextPadding       *float32      `json:"text-padding"`
	TextSize          Param[Number] `json:"text-size"`
	TextTransform     TextTransform `json:"text-transform"`
	SymbolSpacing     *float32      `json:"symbol-spacing"`
}

// TextSizeAt returns the label size in ems at a zoom level. Unset sizes
// default to 16.
func (l *Layout) TextSizeAt(zoom float32) float32 {
	return float32(l.TextSize.EvalOr(zoom, 16))
}

// MaxWidth returns the wrap width in ems, defaulting to 10.
func (l *Layout) MaxWidth() float32 {
	if l.TextMaxWidth != nil {
		return *l.TextMaxWidth
	}
	return 10
}

// Text renders the text-field template for a feature. Fields wrapped in
// braces substitute string-typed attributes; other attribute types
// substitute nothing. The result is case-transformed and trimmed, and an
// effectively empty label reports false.
func (l *Layout) Text(feature Feature) (string, bool) {
	if l.TextField == "" {
		return "", false
	}

	var b strings.Builder
	format := l.TextField
	inField := false
	spanStart := 0
	for i := 0; i < len(format); i++ {
		switch c := format[i]; {
		case c == '{' && !inField:
			spanStart = i + 1
			inField = true
		case c == '}' && inField:
			if v, ok := feature.Key(format[spanStart:i]); ok {
				if s, ok := v.AsStr(); ok {
					b.WriteString(s)
				}
			}
			inField = false
		case !inField:
			b.WriteByte(c)
		}
	}

	text := strings.TrimSpace(l.TextTransform.apply(b.String()))
	if text == "" {
		return "", false
	}
	return text, true
}
