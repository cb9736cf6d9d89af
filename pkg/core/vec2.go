package core

import "math"

// Vec2 represents a 2D vector, used for surface (u, v) coordinates
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Multiply returns the vector scaled by a scalar
func (v Vec2) Multiply(scalar float64) Vec2 {
	return Vec2{v.X * scalar, v.Y * scalar}
}

// Wrap maps both components into [0, 1)
func (v Vec2) Wrap() Vec2 {
	return Vec2{X: Mod(v.X, 1), Y: Mod(v.Y, 1)}
}

// Mod returns the remainder of a/b with the sign of b, so Mod(x, 1) is
// always in [0, 1).
func Mod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r < 0 {
		r += b
	}
	// -tiny + 1 rounds to exactly 1
	if r >= b {
		r = 0
	}
	return r
}
