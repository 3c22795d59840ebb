package tilesource

import (
	"log/slog"

	"github.com/gogpu/tilemap/mvt"
	"github.com/gogpu/tilemap/style"
	"github.com/gogpu/tilemap/tile"
)

// Collection holds one open archive per style source. Sources that fail
// to open are disabled rather than failing the whole style; their tiles
// simply never resolve.
type Collection struct {
	log     *slog.Logger
	sources map[string]Source
}

// OpenCollection opens every vector source the style declares. Each
// source lists candidate tile URLs; the first one that opens wins.
func OpenCollection(dataDir string, sources *style.SourceCollection, log *slog.Logger) *Collection {
	if log == nil {
		log = slog.Default()
	}
	c := &Collection{log: log, sources: map[string]Source{}}

	for _, name := range sources.Names() {
		decl, _ := sources.Get(name)
		if decl.Kind != style.SourceVector {
			continue
		}

		var open Source
		for _, url := range decl.Tiles {
			src, err := Open(url, dataDir)
			if err != nil {
				log.Warn("tile source unavailable",
					"source", name, "url", url, "error", err)
				continue
			}
			open = src
			break
		}
		if open == nil {
			log.Warn("tile source disabled, no loadable url", "source", name)
		}
		c.sources[name] = open
	}
	return c
}

// QueryTile resolves a tile for a named source, walking up the zoom
// pyramid when the exact tile is absent. The returned rect re-projects
// the found ancestor's coordinates into the requested tile's space.
func (c *Collection) QueryTile(name string, id tile.ID) (*mvt.Tile, tile.Rect, bool) {
	src, ok := c.sources[name]
	if !ok || src == nil {
		return nil, tile.Rect{}, false
	}

	var builder tile.RectBuilder
	for {
		decoded, err := src.QueryTile(id)
		if err != nil {
			c.log.Error("tile query failed", "source", name, "tile", id, "error", err)
			return nil, tile.Rect{}, false
		}
		if decoded != nil {
			return decoded, builder.Rect(), true
		}

		parent, ok := builder.Parent(id)
		if !ok {
			return nil, tile.Rect{}, false
		}
		id = parent
	}
}

// Clone opens independent archive handles for use on another goroutine.
// Disabled sources stay disabled.
func (c *Collection) Clone() (*Collection, error) {
	clone := &Collection{log: c.log, sources: make(map[string]Source, len(c.sources))}
	for name, src := range c.sources {
		if src == nil {
			clone.sources[name] = nil
			continue
		}
		dup, err := src.Clone()
		if err != nil {
			clone.Close()
			return nil, err
		}
		clone.sources[name] = dup
	}
	return clone, nil
}

// Close releases every open archive.
func (c *Collection) Close() {
	for _, src := range c.sources {
		if src != nil {
			src.Close()
		}
	}
}
