package text

import (
	"image"
	"log/slog"
	"math"
	"sync"

	"github.com/gogpu/tilemap/geom"
)

// DefaultAtlasExtent is the side length of the glyph atlas in pixels.
const DefaultAtlasExtent = 2048

// GlyphKey addresses one rasterized glyph: a glyph at an integral pixel
// size.
type GlyphKey struct {
	Glyph GlyphID
	Size  int32
}

// WithSize builds the atlas key for a glyph at a pixel size.
func (g GlyphID) WithSize(size float32) GlyphKey {
	return GlyphKey{Glyph: g, Size: int32(math.Floor(float64(size)))}
}

// AtlasEntry locates a resident glyph inside the atlas texture, in
// pixels.
type AtlasEntry struct {
	Offset geom.Vec2
	Dims   geom.Vec2
}

// UV returns the texture coordinates of the entry's four quad corners in
// the order bottom-left, top-left, bottom-right, top-right.
func (e AtlasEntry) UV(extent float32) [4]geom.Vec2 {
	u0 := e.Offset.Mul(1 / extent)
	u1 := e.Offset.Add(e.Dims).Mul(1 / extent)
	return [4]geom.Vec2{
		geom.V(u0.X, u1.Y),
		geom.V(u0.X, u0.Y),
		geom.V(u1.X, u1.Y),
		geom.V(u1.X, u0.Y),
	}
}

// Atlas packs rasterized glyphs into one square texture. Workers call
// Prepare concurrently while tessellating; the render thread calls Upload
// to place the queued bitmaps and Entry to resolve texture coordinates.
// When the texture fills up the atlas is cleared and repopulated on
// demand.
type Atlas struct {
	fonts  *Collection
	extent int
	log    *slog.Logger

	residentMu sync.RWMutex
	resident   map[GlyphKey]AtlasEntry

	pendingMu sync.RWMutex
	pending   map[GlyphKey]*image.Alpha

	cursor    image.Point
	rowHeight int
}

// NewAtlas builds an empty atlas rasterizing from fonts. An extent of
// zero uses DefaultAtlasExtent.
func NewAtlas(fonts *Collection, extent int, log *slog.Logger) *Atlas {
	if extent == 0 {
		extent = DefaultAtlasExtent
	}
	if log == nil {
		log = slog.Default()
	}
	return &Atlas{
		fonts:    fonts,
		extent:   extent,
		log:      log,
		resident: map[GlyphKey]AtlasEntry{},
		pending:  map[GlyphKey]*image.Alpha{},
	}
}

// Extent returns the atlas side length in pixels.
func (a *Atlas) Extent() int {
	return a.extent
}

// Entry returns the placement of a resident glyph.
func (a *Atlas) Entry(key GlyphKey) (AtlasEntry, bool) {
	a.residentMu.RLock()
	defer a.residentMu.RUnlock()
	entry, ok := a.resident[key]
	return entry, ok
}

// Prepare makes sure a glyph is or will become resident. It reports true
// when the glyph can be drawn right away. Missing glyphs are rasterized
// and queued for the next Upload, reporting false until then. Spaces
// never need atlas room.
func (a *Atlas) Prepare(size float32, glyph GlyphID) bool {
	if glyph.Rune == ' ' {
		return true
	}
	key := glyph.WithSize(size)

	a.residentMu.RLock()
	_, resident := a.resident[key]
	a.residentMu.RUnlock()
	if resident {
		return true
	}

	a.pendingMu.RLock()
	_, queued := a.pending[key]
	a.pendingMu.RUnlock()
	if queued {
		return false
	}

	img, ok := a.fonts.Rasterize(glyph, float32(key.Size))
	if !ok {
		return true
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		// Inkless glyphs become zero-sized entries so later lookups hit.
		a.residentMu.Lock()
		a.resident[key] = AtlasEntry{}
		a.residentMu.Unlock()
		return true
	}

	a.pendingMu.Lock()
	a.pending[key] = img
	a.pendingMu.Unlock()
	return false
}

// Upload drains the pending queue, assigning each bitmap a spot via shelf
// packing and handing it to place for the texture copy. A full atlas is
// cleared first; evicted glyphs re-enter through Prepare on the next
// frame.
func (a *Atlas) Upload(place func(offset image.Point, img *image.Alpha)) {
	a.pendingMu.Lock()
	pending := a.pending
	a.pending = map[GlyphKey]*image.Alpha{}
	a.pendingMu.Unlock()

	if len(pending) == 0 {
		return
	}

	a.residentMu.Lock()
	defer a.residentMu.Unlock()

	for key, img := range pending {
		width := img.Bounds().Dx()
		height := img.Bounds().Dy()

		if a.cursor.X+width >= a.extent {
			a.cursor.X = 0
			a.cursor.Y += a.rowHeight + 1
			a.rowHeight = 0
		}
		if a.cursor.Y+height >= a.extent {
			a.log.Warn("glyph atlas full, clearing")
			a.resident = map[GlyphKey]AtlasEntry{}
			a.cursor = image.Point{}
			a.rowHeight = 0
		}

		place(a.cursor, img)
		a.resident[key] = AtlasEntry{
			Offset: geom.V(float32(a.cursor.X), float32(a.cursor.Y)),
			Dims:   geom.V(float32(width), float32(height)),
		}

		a.cursor.X += width + 1
		if height > a.rowHeight {
			a.rowHeight = height
		}
	}
}
