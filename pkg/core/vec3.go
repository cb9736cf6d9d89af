package core

import (
	"fmt"
	"math"
)

// Epsilon is the float64 machine epsilon, used as the near-zero threshold
// for squared norms and for parallel ray/plane detection.
const Epsilon = 2.220446049250313e-16

// Vec3 represents a 3D vector. It is also used for linear RGB colors.
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Negate returns the negative of the vector
func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3) Multiply(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Divide returns the vector divided by a scalar.
// Dividing by zero yields non-finite components, never a panic.
func (v Vec3) Divide(scalar float64) Vec3 {
	return Vec3{v.X / scalar, v.Y / scalar, v.Z / scalar}
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// LengthSquared returns the squared magnitude of the vector
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the magnitude of the vector
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// Normalize scales the vector to unit length in place. A zero vector
// becomes non-finite; callers must check IsFinite.
func (v *Vec3) Normalize() {
	*v = v.Divide(v.Length())
}

// Unit returns a unit vector in the same direction. Like Normalize, the
// zero vector produces a non-finite result.
func (v Vec3) Unit() Vec3 {
	v.Normalize()
	return v
}

// ProjectOnto returns the projection of v onto other: (other·v / |other|²)·other
func (v Vec3) ProjectOnto(other Vec3) Vec3 {
	return other.Multiply(other.Dot(v) / other.LengthSquared())
}

// Perp returns the component of v perpendicular to other
func (v Vec3) Perp(other Vec3) Vec3 {
	return v.Subtract(v.ProjectOnto(other))
}

// Reflect mirrors v about the given normal. The result is a geometric
// reflection only when normal is unit length.
func (v Vec3) Reflect(normal Vec3) Vec3 {
	return v.Subtract(v.ProjectOnto(normal).Multiply(2))
}

// IsNearZero reports whether the squared norm is below Epsilon
func (v Vec3) IsNearZero() bool {
	return v.LengthSquared() < Epsilon
}

// NearEqual reports whether two vectors differ by a near-zero vector
func (v Vec3) NearEqual(other Vec3) bool {
	return v.Subtract(other).IsNearZero()
}

// IsFinite reports whether all components are neither NaN nor infinite
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MultiplyVec returns component-wise multiplication of two vectors
func (v Vec3) MultiplyVec(other Vec3) Vec3 {
	return Vec3{
		X: v.X * other.X,
		Y: v.Y * other.Y,
		Z: v.Z * other.Z,
	}
}

// Clamp returns a vector with components clamped to [min, max]
func (v Vec3) Clamp(minVal, maxVal float64) Vec3 {
	return Vec3{
		X: max(minVal, min(maxVal, v.X)),
		Y: max(minVal, min(maxVal, v.Y)),
		Z: max(minVal, min(maxVal, v.Z)),
	}
}

// String formats the vector as (x, y, z)
func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Sum adds up a list of vectors
func Sum(vectors ...Vec3) Vec3 {
	var total Vec3
	for _, v := range vectors {
		total = total.Add(v)
	}
	return total
}
