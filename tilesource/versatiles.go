package tilesource

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"github.com/gogpu/tilemap/mvt"
	"github.com/gogpu/tilemap/tile"
)

// VersaTiles container constants. All integers in the file are big
// endian.
const (
	versatilesMagic      = "versatiles_v02"
	versatilesHeaderLen  = 66
	versatilesFormatPbf  = 0x20
	versatilesBlockLen   = 33
	versatilesBlockSpan  = 256
	versatilesTileRecLen = 12
)

// Precompression codes from the container header.
const (
	compressionNone uint8 = iota
	compressionGzip
	compressionBrotli
)

type versatilesBlock struct {
	colMin, rowMin uint8
	colMax, rowMax uint8
	offset         uint64
	tileBlobLen    uint64
	tileIndexLen   uint32
}

type blockKey struct {
	level    uint8
	col, row uint32
}

// Versatiles reads tiles from a VersaTiles container. The block index is
// decoded once at open time; clones share it and only reopen the file
// handle.
type Versatiles struct {
	path        string
	file        *os.File
	compression uint8
	blocks      map[blockKey]versatilesBlock
}

// OpenVersatiles opens a container and loads its block index. Containers
// holding anything but protobuf tiles are rejected.
func OpenVersatiles(path string) (*Versatiles, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	s, err := readVersatiles(path, file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("open versatiles %s: %w", path, err)
	}
	return s, nil
}

func readVersatiles(path string, file *os.File) (*Versatiles, error) {
	var header [versatilesHeaderLen]byte
	if _, err := file.ReadAt(header[:], 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	if string(header[:len(versatilesMagic)]) != versatilesMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrBadArchive)
	}
	if header[14] != versatilesFormatPbf {
		return nil, fmt.Errorf("%w: container holds no vector tiles", ErrBadArchive)
	}
	compression := header[15]
	if compression > compressionBrotli {
		return nil, fmt.Errorf("%w: unknown precompression %d", ErrBadArchive, compression)
	}

	indexOffset := binary.BigEndian.Uint64(header[50:58])
	indexLen := binary.BigEndian.Uint64(header[58:66])

	raw := make([]byte, indexLen)
	if _, err := file.ReadAt(raw, int64(indexOffset)); err != nil {
		return nil, fmt.Errorf("%w: block index: %v", ErrBadArchive, err)
	}
	index, err := io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: block index: %v", ErrBadArchive, err)
	}
	if len(index)%versatilesBlockLen != 0 {
		return nil, fmt.Errorf("%w: block index length %d", ErrBadArchive, len(index))
	}

	blocks := make(map[blockKey]versatilesBlock, len(index)/versatilesBlockLen)
	for rec := index; len(rec) > 0; rec = rec[versatilesBlockLen:] {
		// The record's bases are already block coordinates; only tile
		// coordinates get divided by the block span.
		key := blockKey{
			level: rec[0],
			col:   binary.BigEndian.Uint32(rec[1:5]),
			row:   binary.BigEndian.Uint32(rec[5:9]),
		}
		blocks[key] = versatilesBlock{
			colMin:       rec[9],
			rowMin:       rec[10],
			colMax:       rec[11],
			rowMax:       rec[12],
			offset:       binary.BigEndian.Uint64(rec[13:21]),
			tileBlobLen:  binary.BigEndian.Uint64(rec[21:29]),
			tileIndexLen: binary.BigEndian.Uint32(rec[29:33]),
		}
	}

	return &Versatiles{
		path:        path,
		file:        file,
		compression: compression,
		blocks:      blocks,
	}, nil
}

// QueryTile looks a tile up through the block index. Rows are flipped
// first; the container counts rows from the south edge.
func (s *Versatiles) QueryTile(id tile.ID) (*mvt.Tile, error) {
	row := id.Limit() - id.Row - 1

	block, ok := s.blocks[blockKey{
		level: uint8(id.Zoom),
		col:   id.Column / versatilesBlockSpan,
		row:   row / versatilesBlockSpan,
	}]
	if !ok {
		return nil, nil
	}

	col256 := uint8(id.Column % versatilesBlockSpan)
	row256 := uint8(row % versatilesBlockSpan)
	if col256 < block.colMin || col256 > block.colMax ||
		row256 < block.rowMin || row256 > block.rowMax {
		return nil, nil
	}

	raw := make([]byte, block.tileIndexLen)
	if _, err := s.file.ReadAt(raw, int64(block.offset+block.tileBlobLen)); err != nil {
		return nil, fmt.Errorf("tile %s: index: %w", id, err)
	}
	index, err := io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return nil, fmt.Errorf("tile %s: index: %w", id, err)
	}

	span := int(block.colMax-block.colMin) + 1
	idx := (int(row256-block.rowMin)*span + int(col256-block.colMin)) * versatilesTileRecLen
	if idx < 0 || idx+versatilesTileRecLen > len(index) {
		return nil, nil
	}

	offset := binary.BigEndian.Uint64(index[idx : idx+8])
	length := binary.BigEndian.Uint32(index[idx+8 : idx+12])
	if length == 0 {
		return nil, nil
	}

	blob := make([]byte, length)
	if _, err := s.file.ReadAt(blob, int64(block.offset+offset)); err != nil {
		return nil, fmt.Errorf("tile %s: %w", id, err)
	}

	data, err := decompress(blob, s.compression)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", id, err)
	}
	return mvt.Decode(data)
}

func decompress(blob []byte, compression uint8) ([]byte, error) {
	switch compression {
	case compressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(blob))
		if err != nil {
			return nil, err
		}
		return io.ReadAll(zr)
	case compressionBrotli:
		return io.ReadAll(brotli.NewReader(bytes.NewReader(blob)))
	}
	return blob, nil
}

// Clone reopens the file; the decoded block index is shared.
func (s *Versatiles) Clone() (Source, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	clone := *s
	clone.file = file
	return &clone, nil
}

func (s *Versatiles) Close() error {
	return s.file.Close()
}

func (*Versatiles) sealed() {}
