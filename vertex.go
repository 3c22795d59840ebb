package tilemap

import "github.com/gogpu/tilemap/geom"

// FillMode selects the vertex shader path for geometry vertices.
// Polygon vertices are positioned as-is; line vertices extrude along
// their normal by half the stroke width.
type FillMode uint32

const (
	FillModeLine FillMode = iota
	FillModePolygon
)

// GeoVertex is one tile geometry vertex. Positions are in the tile's
// local [0,1]² space. Line vertices additionally carry the unit
// extrusion normal and the distance traveled along the path, which
// drives dash patterns.
type GeoVertex struct {
	Position    geom.Vec2
	Normal      geom.Vec2
	Advancement float32
	Fill        FillMode
}

// The background quad overshoots the tile on every side so seams never
// show between tiles.
var backgroundVertices = [4]GeoVertex{
	{Position: geom.V(-0.1, -0.1), Fill: FillModePolygon},
	{Position: geom.V(-0.1, 1.1), Fill: FillModePolygon},
	{Position: geom.V(1.1, 1.1), Fill: FillModePolygon},
	{Position: geom.V(1.1, -0.1), Fill: FillModePolygon},
}

var backgroundIndices = [6]uint32{0, 3, 1, 1, 3, 2}
