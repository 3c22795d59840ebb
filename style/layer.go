package style

import (
	"encoding/json"
	"fmt"
)

// LayerKind classifies what a layer draws.
type LayerKind uint8

const (
	LayerBackground LayerKind = iota
	LayerFill
	LayerLine
	LayerSymbol
	LayerRaster
	LayerFillExtrusion
)

func (k LayerKind) String() string {
	switch k {
	case LayerBackground:
		return "background"
	case LayerFill:
		return "fill"
	case LayerLine:
		return "line"
	case LayerSymbol:
		return "symbol"
	case LayerRaster:
		return "raster"
	case LayerFillExtrusion:
		return "fill-extrusion"
	}
	return "unknown"
}

func (k *LayerKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "background":
		*k = LayerBackground
	case "fill":
		*k = LayerFill
	case "line":
		*k = LayerLine
	case "symbol":
		*k = LayerSymbol
	case "raster":
		*k = LayerRaster
	case "fill-extrusion":
		*k = LayerFillExtrusion
	default:
		return fmt.Errorf("style: unknown layer type %q", s)
	}
	return nil
}

// Layer is one style layer in draw order.
type Layer struct {
	ID          string   `json:"id"`
	Kind        LayerKind `json:"type"`
	Source      string   `json:"source"`
	SourceLayer string   `json:"source-layer"`
	MinZoom     *float32 `json:"minzoom"`
	MaxZoom     *float32 `json:"maxzoom"`
	Filter      *Filter  `json:"filter"`
	Layout      Layout   `json:"layout"`
	Paint       Paint    `json:"paint"`
}

// Visible reports whether a feature of this layer should draw at a zoom
// level. Raster and extrusion layers never draw; they have no tessellated
// form.
func (l *Layer) Visible(feature Feature, zoom float32) bool {
	if l.Paint.Unsupported() {
		return false
	}
	if l.Layout.Visibility != VisibilityVisible {
		return false
	}
	if l.MinZoom != nil && zoom < *l.MinZoom {
		return false
	}
	if l.MaxZoom != nil && zoom > *l.MaxZoom {
		return false
	}
	if l.Kind == LayerRaster || l.Kind == LayerFillExtrusion {
		return false
	}
	if l.Filter != nil && !l.Filter.Eval(feature) {
		return false
	}
	return true
}
