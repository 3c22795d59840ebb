// Package text provides font access, label line layout and the glyph
// atlas used to draw map labels. Glyph metrics follow the baseline-up
// convention: YMin is the distance from the baseline to the bottom of the
// glyph box, positive above the baseline.
package text

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// FontID selects one of the bundled faces.
type FontID uint8

const (
	FontRegular FontID = iota
	FontBold
	FontItalic

	fontCount
)

// GlyphID identifies a glyph independent of size.
type GlyphID struct {
	Font FontID
	Rune rune
}

// Metrics describes one glyph at a concrete pixel size.
type Metrics struct {
	AdvanceWidth float32
	XMin         float32
	YMin         float32
	Width        float32
	Height       float32
}

// Face wraps a parsed font. All methods are safe for concurrent use; the
// underlying shaping buffer is guarded by a mutex.
type Face struct {
	font *sfnt.Font

	mu  sync.Mutex
	buf sfnt.Buffer
}

// NewFace parses TTF or OTF font data.
func NewFace(data []byte) (*Face, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	return &Face{font: f}, nil
}

func ppem(size float32) fixed.Int26_6 {
	return fixed.Int26_6(size * 64)
}

func fromFixed(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func (f *Face) glyphIndex(r rune) sfnt.GlyphIndex {
	x, err := f.font.GlyphIndex(&f.buf, r)
	if err != nil {
		return 0
	}
	return x
}

// HasGlyph reports whether the face maps the rune to a real glyph.
func (f *Face) HasGlyph(r rune) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.glyphIndex(r) != 0
}

// Metrics returns the glyph box and advance at a pixel size. Unknown
// runes report false.
func (f *Face) Metrics(r rune, size float32) (Metrics, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	x := f.glyphIndex(r)
	if x == 0 {
		return Metrics{}, false
	}
	bounds, advance, err := f.font.GlyphBounds(&f.buf, x, ppem(size), font.HintingNone)
	if err != nil {
		return Metrics{}, false
	}

	// Font space grows downward, so the glyph bottom is the bounds max.
	return Metrics{
		AdvanceWidth: fromFixed(advance),
		XMin:         fromFixed(bounds.Min.X),
		YMin:         -fromFixed(bounds.Max.Y),
		Width:        fromFixed(bounds.Max.X - bounds.Min.X),
		Height:       fromFixed(bounds.Max.Y - bounds.Min.Y),
	}, true
}

// Kern returns the kerning adjustment between two runes at a pixel size.
func (f *Face) Kern(prev, next rune, size float32) float32 {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.glyphIndex(prev)
	n := f.glyphIndex(next)
	if p == 0 || n == 0 {
		return 0
	}
	k, err := f.font.Kern(&f.buf, p, n, ppem(size), font.HintingNone)
	if err != nil {
		return 0
	}
	return fromFixed(k)
}

// LineHeight returns the vertical advance between baselines at a pixel
// size.
func (f *Face) LineHeight(size float32) float32 {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.font.Metrics(&f.buf, ppem(size), font.HintingNone)
	if err != nil {
		return 0
	}
	return fromFixed(m.Height)
}

// Rasterize renders a glyph into an alpha bitmap at a pixel size. Glyphs
// without ink, like spaces, return an empty image.
func (f *Face) Rasterize(r rune, size float32) (*image.Alpha, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	x := f.glyphIndex(r)
	if x == 0 {
		return nil, false
	}

	segments, err := f.font.LoadGlyph(&f.buf, x, ppem(size), nil)
	if err != nil {
		return nil, false
	}
	bounds, _, err := f.font.GlyphBounds(&f.buf, x, ppem(size), font.HintingNone)
	if err != nil {
		return nil, false
	}

	width := (bounds.Max.X - bounds.Min.X).Ceil()
	height := (bounds.Max.Y - bounds.Min.Y).Ceil()
	if width <= 0 || height <= 0 {
		return image.NewAlpha(image.Rect(0, 0, 0, 0)), true
	}

	at := func(p fixed.Point26_6) (float32, float32) {
		return fromFixed(p.X - bounds.Min.X), fromFixed(p.Y - bounds.Min.Y)
	}

	ras := vector.NewRasterizer(width, height)
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			x, y := at(seg.Args[0])
			ras.MoveTo(x, y)
		case sfnt.SegmentOpLineTo:
			x, y := at(seg.Args[0])
			ras.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			cx, cy := at(seg.Args[0])
			x, y := at(seg.Args[1])
			ras.QuadTo(cx, cy, x, y)
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := at(seg.Args[0])
			c2x, c2y := at(seg.Args[1])
			x, y := at(seg.Args[2])
			ras.CubeTo(c1x, c1y, c2x, c2y, x, y)
		}
	}

	dst := image.NewAlpha(image.Rect(0, 0, width, height))
	ras.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst, true
}

// Collection bundles the built-in regular, bold and italic faces and
// resolves style font stacks onto them.
type Collection struct {
	faces [fontCount]*Face
}

// NewCollection parses the bundled Go fonts.
func NewCollection() (*Collection, error) {
	c := &Collection{}
	for id, data := range map[FontID][]byte{
		FontRegular: goregular.TTF,
		FontBold:    gobold.TTF,
		FontItalic:  goitalic.TTF,
	} {
		face, err := NewFace(data)
		if err != nil {
			return nil, err
		}
		c.faces[id] = face
	}
	return c, nil
}

// Face returns the face for an ID.
func (c *Collection) Face(id FontID) *Face {
	return c.faces[id]
}

// Select maps a style font stack onto a bundled face by name. Names
// containing "bold" pick the bold face, "italic" or "oblique" the italic
// one; everything else falls back to regular.
func (c *Collection) Select(names []string) FontID {
	for _, name := range names {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "bold") {
			return FontBold
		}
		if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
			return FontItalic
		}
	}
	return FontRegular
}

// HasGlyph reports whether the selected face maps the rune.
func (c *Collection) HasGlyph(font FontID, r rune) bool {
	return c.faces[font].HasGlyph(r)
}

// Metrics returns glyph metrics from the selected face.
func (c *Collection) Metrics(font FontID, r rune, size float32) (Metrics, bool) {
	return c.faces[font].Metrics(r, size)
}

// Kern returns the kerning adjustment from the selected face.
func (c *Collection) Kern(font FontID, prev, next rune, size float32) float32 {
	return c.faces[font].Kern(prev, next, size)
}

// LineHeight returns the baseline advance of the selected face.
func (c *Collection) LineHeight(font FontID, size float32) float32 {
	return c.faces[font].LineHeight(size)
}

// Rasterize renders a glyph from the selected face.
func (c *Collection) Rasterize(glyph GlyphID, size float32) (*image.Alpha, bool) {
	return c.faces[glyph.Font].Rasterize(glyph.Rune, size)
}
