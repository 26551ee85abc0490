package math

import "math"

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Normalize returns a unit vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

// Array returns the components as an array, the layout used by UV buffers.
func (v Vec2) Array() [2]float32 {
	return [2]float32{v.X, v.Y}
}

// Clamp01 clamps x into [0, 1].
func Clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Lerp interpolates between a and b by t.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// InverseLerp returns where v sits between a and b, clamped to [0, 1].
func InverseLerp(a, b, v float32) float32 {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

// Abs returns |x|.
func Abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
