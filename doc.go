// Package tilemap turns vector tiles and a cartographic style into
// renderer-agnostic draw data: triangle meshes for fills and strokes,
// glyph quads for labels, and batched draw ranges, all ready for GPU
// upload.
//
// The pipeline runs per tile. A Tessellator resolves the tile through
// the style's sources, evaluates each style layer against the tile's
// features, and tessellates the surviving geometry. A TileLoader runs
// tessellators on a worker pool and hands finished tiles back on a
// channel. Text rendering is split across threads the same way the
// glyph atlas is: workers lay out and request glyphs, the render thread
// uploads them.
package tilemap
