// Package geom provides the small float32 vector and rectangle types used
// by the tessellation pipeline. Values are plain data, cheap to copy, and
// laid out so vertex buffers can embed them directly.
package geom

import "math"

// Vec2 represents a 2D point or vector.
type Vec2 struct {
	X, Y float32
}

// V is a convenience function to create a Vec2.
func V(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// MulV returns the component-wise product of two vectors.
func (v Vec2) MulV(w Vec2) Vec2 {
	return Vec2{X: v.X * w.X, Y: v.Y * w.Y}
}

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(w Vec2) float32 {
	return v.X*w.X + v.Y*w.Y
}

// Cross returns the 2D cross product (scalar).
func (v Vec2) Cross(w Vec2) float32 {
	return v.X*w.Y - v.Y*w.X
}

// Length returns the length of the vector.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// LengthSquared returns the squared length of the vector.
func (v Vec2) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Distance returns the distance between two points.
func (v Vec2) Distance(w Vec2) float32 {
	return v.Sub(w).Length()
}

// Normalize returns a unit vector in the same direction.
// The zero vector normalizes to itself.
func (v Vec2) Normalize() Vec2 {
	length := v.Length()
	if length == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / length, Y: v.Y / length}
}

// Perp returns the vector rotated 90 degrees counter-clockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Neg returns the negated vector.
func (v Vec2) Neg() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

// Lerp performs linear interpolation between two vectors.
func (v Vec2) Lerp(w Vec2, t float32) Vec2 {
	return Vec2{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
	}
}

// MinV returns the component-wise minimum of two vectors.
func (v Vec2) MinV(w Vec2) Vec2 {
	return Vec2{X: minf(v.X, w.X), Y: minf(v.Y, w.Y)}
}

// MaxV returns the component-wise maximum of two vectors.
func (v Vec2) MaxV(w Vec2) Vec2 {
	return Vec2{X: maxf(v.X, w.X), Y: maxf(v.Y, w.Y)}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Rect is an axis-aligned rectangle described by its minimum and maximum
// corners. An inverted rect (Min > Max on either axis) is treated as empty.
type Rect struct {
	Min, Max Vec2
}

// R is a convenience function to create a Rect.
func R(x0, y0, x1, y1 float32) Rect {
	return Rect{Min: Vec2{X: x0, Y: y0}, Max: Vec2{X: x1, Y: y1}}
}

// Width returns the horizontal extent of the rect.
func (r Rect) Width() float32 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent of the rect.
func (r Rect) Height() float32 {
	return r.Max.Y - r.Min.Y
}

// Translate returns the rect shifted by v.
func (r Rect) Translate(v Vec2) Rect {
	return Rect{Min: r.Min.Add(v), Max: r.Max.Add(v)}
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(s Rect) Rect {
	return Rect{Min: r.Min.MinV(s.Min), Max: r.Max.MaxV(s.Max)}
}

// Overlaps reports whether the two rects intersect.
func (r Rect) Overlaps(s Rect) bool {
	return r.Min.X < s.Max.X && s.Min.X < r.Max.X &&
		r.Min.Y < s.Max.Y && s.Min.Y < r.Max.Y
}

// Contains reports whether p lies inside the rect.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}
