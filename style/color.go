package style

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ColorKind tags the color space a Color's channels live in.
type ColorKind uint8

const (
	ColorRGBA ColorKind = iota
	ColorHSLA
)

// Color is a style color in either RGBA or HSLA form. RGBA channels and
// HSLA saturation/lightness are normalized to [0,1]; hue is stored divided
// by 360 so all channels interpolate uniformly. The zero value is
// transparent black; Black is the usual default for unset paint colors.
type Color struct {
	Kind     ColorKind
	Channels [4]float32
}

// Black returns opaque black, the default for unset color parameters.
func Black() Color {
	return Color{Channels: [4]float32{0, 0, 0, 1}}
}

// RGB builds an opaque RGBA color from [0,1] channels.
func RGB(r, g, b float32) Color {
	return Color{Channels: [4]float32{r, g, b, 1}}
}

// Alpha returns the alpha channel.
func (c Color) Alpha() float32 {
	return c.Channels[3]
}

// WithAlpha returns the color with its alpha channel replaced.
func (c Color) WithAlpha(a float32) Color {
	c.Channels[3] = a
	return c
}

// ToRGBA converts the color into RGBA form. RGBA colors pass through.
func (c Color) ToRGBA() Color {
	if c.Kind == ColorRGBA {
		return c
	}

	h := clamp01(c.Channels[0]) * 360
	s := clamp01(c.Channels[1])
	l := clamp01(c.Channels[2])

	chroma := (1 - abs32(2*l-1)) * s
	hp := h / 60
	x := chroma * (1 - abs32(float32(math.Mod(float64(hp), 2))-1))

	var r, g, b float32
	switch {
	case hp <= 1:
		r, g, b = chroma, x, 0
	case hp <= 2:
		r, g, b = x, chroma, 0
	case hp <= 3:
		r, g, b = 0, chroma, x
	case hp <= 4:
		r, g, b = 0, x, chroma
	case hp <= 5:
		r, g, b = x, 0, chroma
	case hp <= 6:
		r, g, b = chroma, 0, x
	}

	m := l - chroma/2
	return Color{Channels: [4]float32{r + m, g + m, b + m, c.Channels[3]}}
}

// Interpolate blends toward next. Colors of the same kind blend per
// channel in their own space; mixed kinds blend in RGBA.
func (c Color) Interpolate(factor float32, next Color) Color {
	if c.Kind != next.Kind {
		c = c.ToRGBA()
		next = next.ToRGBA()
	}
	out := Color{Kind: c.Kind}
	for i := range c.Channels {
		out.Channels[i] = lerp(c.Channels[i], factor, next.Channels[i])
	}
	return out
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func lerp(last, factor, next float32) float32 {
	return last*(1-factor) + next*factor
}

var errInvalidColor = errors.New("style: invalid color")

// ParseColor parses a CSS-style color string: #rgb, #rrggbb, rgb(),
// rgba(), hsl() or hsla(). Component parsing is lenient and ignores
// whitespace and units.
func ParseColor(s string) (Color, error) {
	switch {
	case len(s) == 4 && s[0] == '#':
		return Color{Channels: [4]float32{
			float32(hexNibble(s[1])<<4) / 255,
			float32(hexNibble(s[2])<<4) / 255,
			float32(hexNibble(s[3])<<4) / 255,
			1,
		}}, nil

	case len(s) == 7 && s[0] == '#':
		return Color{Channels: [4]float32{
			float32(hexNibble(s[1])<<4|hexNibble(s[2])) / 255,
			float32(hexNibble(s[3])<<4|hexNibble(s[4])) / 255,
			float32(hexNibble(s[5])<<4|hexNibble(s[6])) / 255,
			1,
		}}, nil

	case hasFunc(s, "rgba("):
		p := funcArgs(s, "rgba(")
		return Color{Channels: [4]float32{p[0] / 255, p[1] / 255, p[2] / 255, p[3]}}, nil

	case hasFunc(s, "rgb("):
		p := funcArgs(s, "rgb(")
		return Color{Channels: [4]float32{p[0] / 255, p[1] / 255, p[2] / 255, 1}}, nil

	case hasFunc(s, "hsla("):
		p := funcArgs(s, "hsla(")
		return Color{Kind: ColorHSLA, Channels: [4]float32{p[0] / 360, p[1] / 100, p[2] / 100, p[3]}}, nil

	case hasFunc(s, "hsl("):
		p := funcArgs(s, "hsl(")
		return Color{Kind: ColorHSLA, Channels: [4]float32{p[0] / 360, p[1] / 100, p[2] / 100, 1}}, nil
	}
	return Color{}, fmt.Errorf("%w: %q", errInvalidColor, s)
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

func hasFunc(s, prefix string) bool {
	return len(s) > len(prefix) && s[:len(prefix)] == prefix
}

// funcArgs splits the comma-separated arguments of a color function into
// up to four numbers. Missing arguments read as zero.
func funcArgs(s, prefix string) [4]float32 {
	var out [4]float32

	body := s[len(prefix):]
	for i := 0; i < len(body); i++ {
		if body[i] == ')' {
			body = body[:i]
			break
		}
	}

	part := 0
	start := 0
	for i := 0; i <= len(body) && part < 4; i++ {
		if i == len(body) || body[i] == ',' {
			out[part] = lenientFloat(body[start:i])
			part++
			start = i + 1
		}
	}
	return out
}

// lenientFloat reads digits and at most one decimal point, skipping every
// other byte. Percent signs, spaces and units all fall away.
func lenientFloat(s string) float32 {
	var whole, frac float32
	fracScale := float32(1)
	inFrac := false

	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= '0' && b <= '9':
			n := float32(b - '0')
			if inFrac {
				fracScale *= 0.1
				frac += fracScale * n
			} else {
				whole = whole*10 + n
			}
		case b == '.':
			inFrac = true
		}
	}
	return whole + frac
}

// UnmarshalJSON parses a color from a JSON string.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
