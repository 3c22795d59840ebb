package style

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// SourceKind classifies a tile source declaration.
type SourceKind uint8

const (
	SourceVector SourceKind = iota
	SourceRaster
	SourceRasterDem
	SourceGeojson
	SourceVideo
	SourceImage
)

func (k *SourceKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "vector":
		*k = SourceVector
	case "raster":
		*k = SourceRaster
	case "raster-dem":
		*k = SourceRasterDem
	case "geojson":
		*k = SourceGeojson
	case "video":
		*k = SourceVideo
	case "image":
		*k = SourceImage
	default:
		return fmt.Errorf("style: unknown source type %q", s)
	}
	return nil
}

// Source declares where a layer's tile data comes from.
type Source struct {
	Kind        SourceKind `json:"type"`
	Tiles       []string   `json:"tiles"`
	Attribution string     `json:"attribution"`
}

// SourceCollection holds the style's sources keyed by name. Names are
// kept sorted so iteration order is deterministic.
type SourceCollection struct {
	names   []string
	sources []Source
}

func (c *SourceCollection) UnmarshalJSON(data []byte) error {
	byName := map[string]Source{}
	if err := json.Unmarshal(data, &byName); err != nil {
		return err
	}

	c.names = make([]string, 0, len(byName))
	for name := range byName {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)

	c.sources = make([]Source, len(c.names))
	for i, name := range c.names {
		c.sources[i] = byName[name]
	}
	return nil
}

// Get returns the named source.
func (c *SourceCollection) Get(name string) (Source, bool) {
	for i, n := range c.names {
		if n == name {
			return c.sources[i], true
		}
	}
	return Source{}, false
}

// Names returns the source names in sorted order.
func (c *SourceCollection) Names() []string {
	return c.names
}

// Style is a parsed map style document.
type Style struct {
	Version int              `json:"version"`
	Name    string           `json:"name"`
	Sources SourceCollection `json:"sources"`
	Layers  []Layer          `json:"layers"`
}

// Parse decodes a style JSON document.
func Parse(data []byte) (*Style, error) {
	s := &Style{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("style: parse: %w", err)
	}
	return s, nil
}

// Load reads and parses a style document from disk.
func Load(path string) (*Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("style: load %s: %w", path, err)
	}
	return Parse(data)
}
