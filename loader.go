package tilemap

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/tilemap/style"
	"github.com/gogpu/tilemap/text"
	"github.com/gogpu/tilemap/tile"
	"github.com/gogpu/tilemap/tilesource"
)

// TileResult is one finished tile, delivered on the loader's Results
// channel. When PendingGlyphs is set the tile's labels needed glyphs the
// atlas had not uploaded yet; the caller re-requests the tile after the
// next atlas upload and Geometry and Text are nil.
type TileResult struct {
	ID            tile.ID
	Geometry      *TileGeometry
	Text          *TextBuffers
	PendingGlyphs bool
}

// TileLoader tessellates tiles on a pool of workers, one per CPU. Each
// worker owns a private queue, its own tessellator, and its own clones
// of the tile archives, so workers never contend on shared state; only
// the glyph atlas is shared. Requests are spread round-robin.
type TileLoader struct {
	queues  []chan tile.ID
	results chan TileResult
	out     chan TileResult
	next    atomic.Uint32

	mu      sync.Mutex
	pending map[tile.ID]struct{}

	wg sync.WaitGroup
}

// NewTileLoader starts the worker pool. The source collection is cloned
// per worker; the caller keeps ownership of its own handle.
func NewTileLoader(st *style.Style, sources *tilesource.Collection, fonts *text.Collection, atlas *text.Atlas, log *slog.Logger) (*TileLoader, error) {
	if log == nil {
		log = Logger()
	}
	workers := runtime.GOMAXPROCS(0)

	l := &TileLoader{
		queues:  make([]chan tile.ID, workers),
		results: make(chan TileResult, workers),
		out:     make(chan TileResult, workers),
		pending: map[tile.ID]struct{}{},
	}

	for i := range l.queues {
		cloned, err := sources.Clone()
		if err != nil {
			for _, q := range l.queues[:i] {
				close(q)
			}
			l.wg.Wait()
			return nil, err
		}

		queue := make(chan tile.ID, 16)
		l.queues[i] = queue
		l.wg.Add(1)
		go l.worker(queue, NewTessellator(st, cloned, fonts, log), cloned, atlas)
	}

	go l.forward()
	return l, nil
}

func (l *TileLoader) worker(queue <-chan tile.ID, tess *Tessellator, sources *tilesource.Collection, atlas *text.Atlas) {
	defer l.wg.Done()
	defer sources.Close()

	for id := range queue {
		geometry := tess.Tessellate(id)

		if !PrepareGlyphs(atlas, geometry.Labels) {
			l.results <- TileResult{ID: id, PendingGlyphs: true}
			continue
		}
		textBuf, _ := BuildTextGeometry(atlas, geometry.Labels)
		l.results <- TileResult{ID: id, Geometry: geometry, Text: textBuf}
	}
}

// forward moves worker results to the public channel, clearing the
// pending mark first so the caller can immediately re-request a tile it
// sees come back.
func (l *TileLoader) forward() {
	for r := range l.results {
		l.mu.Lock()
		delete(l.pending, r.ID)
		l.mu.Unlock()
		l.out <- r
	}
	close(l.out)
}

// Request queues a tile unless it is already in flight. It reports
// whether the tile was queued.
func (l *TileLoader) Request(id tile.ID) bool {
	l.mu.Lock()
	if _, inFlight := l.pending[id]; inFlight {
		l.mu.Unlock()
		return false
	}
	l.pending[id] = struct{}{}
	l.mu.Unlock()

	worker := l.next.Add(1) % uint32(len(l.queues))
	l.queues[worker] <- id
	return true
}

// Results delivers finished tiles. The channel closes after Close.
func (l *TileLoader) Results() <-chan TileResult {
	return l.out
}

// Close stops the workers after they drain their queues and closes the
// results channel.
func (l *TileLoader) Close() {
	for _, q := range l.queues {
		close(q)
	}
	l.wg.Wait()
	close(l.results)
}
