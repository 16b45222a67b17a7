// Package core provides fundamental types and helpers shared by the
// simulation and its platform layers. It has no external dependencies so the
// simulation stays pure and testable.
package core

import "math"

// Vec2 is a point or direction in world space (pixels).
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// LenSq returns the squared length of v.
func (v Vec2) LenSq() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Len returns the length of v.
func (v Vec2) Len() float32 {
	return Sqrt32(v.LenSq())
}

// Normalize returns the unit vector of v, or the zero vector when v is zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Circle is a circular collider.
type Circle struct {
	X, Y   float32 // Center
	Radius float32
}

// Overlaps reports whether two circles intersect (touching does not count).
func (c Circle) Overlaps(o Circle) bool {
	dx := c.X - o.X
	dy := c.Y - o.Y
	r := c.Radius + o.Radius
	return dx*dx+dy*dy < r*r
}

// Rect represents an axis-aligned box in cell coordinates. Used by the
// terminal viewer for layout.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp32 restricts a float32 value to be within [min, max].
// When min > max (a map smaller than the entity) min wins.
func Clamp32(val, min, max float32) float32 {
	if val > max {
		val = max
	}
	if val < min {
		val = min
	}
	return val
}

// Sqrt32 is math.Sqrt for float32.
func Sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Atan2 is math.Atan2 for float32.
func Atan2(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

// Cos is math.Cos for float32.
func Cos(a float32) float32 {
	return float32(math.Cos(float64(a)))
}

// Sin is math.Sin for float32.
func Sin(a float32) float32 {
	return float32(math.Sin(float64(a)))
}
