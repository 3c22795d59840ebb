package tilesource

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gogpu/tilemap/mvt"
	"github.com/gogpu/tilemap/tile"
)

// MBTiles reads tiles from an MBTiles sqlite database. Tile blobs are
// expected to be gzip-compressed protobuf, the common encoding for
// vector MBTiles.
type MBTiles struct {
	path  string
	db    *sql.DB
	query *sql.Stmt
}

// OpenMBTiles opens the database read-only and prepares the tile query.
func OpenMBTiles(path string) (*MBTiles, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open mbtiles %s: %w", path, err)
	}

	query, err := db.Prepare(
		`SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open mbtiles %s: %w", path, err)
	}

	return &MBTiles{path: path, db: db, query: query}, nil
}

// QueryTile fetches and decodes one tile. Absent rows are a miss, not an
// error.
func (s *MBTiles) QueryTile(id tile.ID) (*mvt.Tile, error) {
	var blob []byte
	err := s.query.QueryRow(id.Zoom, id.Column, id.Row).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query tile %s: %w", id, err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", id, err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", id, err)
	}

	return mvt.Decode(data)
}

// Clone reopens the database for use on another goroutine.
func (s *MBTiles) Clone() (Source, error) {
	return OpenMBTiles(s.path)
}

func (s *MBTiles) Close() error {
	s.query.Close()
	return s.db.Close()
}

func (*MBTiles) sealed() {}
