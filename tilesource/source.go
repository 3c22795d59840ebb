// Package tilesource reads vector tiles out of local tile archives.
//
// Two archive formats are supported: MBTiles (tiles in a sqlite
// database) and VersaTiles (a block-structured container file). Both
// hand back decoded tiles; callers never see the raw protobuf.
package tilesource

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gogpu/tilemap/mvt"
	"github.com/gogpu/tilemap/tile"
)

var (
	// ErrBadArchive reports a file that is not a valid tile archive.
	ErrBadArchive = errors.New("tilesource: malformed archive")
	// ErrUnsupportedScheme reports a tile URL no reader handles.
	ErrUnsupportedScheme = errors.New("tilesource: unsupported url scheme")
)

// Source is one open tile archive. A miss (the archive holds no data
// for the tile) returns a nil tile and a nil error. The archive set is
// fixed; the unexported method keeps outside implementations out.
type Source interface {
	QueryTile(id tile.ID) (*mvt.Tile, error)

	// Clone opens an independent handle on the same archive so another
	// goroutine can query concurrently.
	Clone() (Source, error)

	Close() error

	sealed()
}

// Open opens the archive a style tile URL points at. Supported schemes
// are mbtiles:// and versatiles://; relative paths resolve under
// dataDir.
func Open(url, dataDir string) (Source, error) {
	switch {
	case strings.HasPrefix(url, "mbtiles://"):
		return OpenMBTiles(resolvePath(dataDir, strings.TrimPrefix(url, "mbtiles://")))
	case strings.HasPrefix(url, "versatiles://"):
		return OpenVersatiles(resolvePath(dataDir, strings.TrimPrefix(url, "versatiles://")))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, url)
}

func resolvePath(dataDir, path string) string {
	if filepath.IsAbs(path) || dataDir == "" {
		return path
	}
	return filepath.Join(dataDir, path)
}
