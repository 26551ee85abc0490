// Package math provides math types and functions for island geometry.
package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Up is the world up axis.
var Up = Vec3{0, 1, 0}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Normalize returns a unit vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// XZ returns the XZ components as Vec2.
func (v Vec3) XZ() Vec2 {
	return Vec2{v.X, v.Z}
}

// Lerp interpolates between v and other by t.
func (v Vec3) Lerp(other Vec3, t float32) Vec3 {
	return Vec3{
		v.X + t*(other.X-v.X),
		v.Y + t*(other.Y-v.Y),
		v.Z + t*(other.Z-v.Z),
	}
}

// AngleDeg returns the unsigned angle between v and other in degrees.
func (v Vec3) AngleDeg(other Vec3) float32 {
	denom := v.Length() * other.Length()
	if denom < 1e-12 {
		return 0
	}
	c := v.Dot(other) / denom
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return float32(math.Acos(float64(c)) * 180 / math.Pi)
}

// Array returns the components as an array, the layout used by mesh buffers.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Mgl converts v to an mgl32 vector.
func (v Vec3) Mgl() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// FromMgl converts an mgl32 vector.
func FromMgl(v mgl32.Vec3) Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// Rotate rotates v by q.
func (v Vec3) Rotate(q mgl32.Quat) Vec3 {
	return FromMgl(q.Rotate(v.Mgl()))
}

// RotateAround rotates point v about pivot by q.
func (v Vec3) RotateAround(pivot Vec3, q mgl32.Quat) Vec3 {
	return pivot.Add(v.Sub(pivot).Rotate(q))
}
