// Package noise provides deterministic 2D scalar fields used for vertex
// displacement and color gradients.
package noise

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Field samples a deterministic 2D scalar in [0, 1].
type Field interface {
	Sample(x, y float32) float32
}

// Simplex is an OpenSimplex field normalized to [0, 1].
type Simplex struct {
	n opensimplex.Noise
}

// NewSimplex creates a simplex field for the given seed.
func NewSimplex(seed int64) *Simplex {
	return &Simplex{n: opensimplex.NewNormalized(seed)}
}

// Sample implements Field.
func (s *Simplex) Sample(x, y float32) float32 {
	return clamp01(float32(s.n.Eval2(float64(x), float64(y))))
}

// Fractal sums octaves of a base field. The result is renormalized to [0, 1].
type Fractal struct {
	Base        Field
	Octaves     int
	Persistence float32 // amplitude falloff per octave
	Lacunarity  float32 // frequency gain per octave
}

// Sample implements Field.
func (f Fractal) Sample(x, y float32) float32 {
	if f.Octaves <= 1 {
		return f.Base.Sample(x, y)
	}

	var total, norm float32
	amplitude := float32(1)
	frequency := float32(1)
	for i := 0; i < f.Octaves; i++ {
		total += f.Base.Sample(x*frequency, y*frequency) * amplitude
		norm += amplitude
		amplitude *= f.Persistence
		frequency *= f.Lacunarity
	}
	if norm == 0 {
		return 0
	}
	return clamp01(total / norm)
}

// New returns a simplex field, wrapped in a Fractal when more than one octave
// is requested.
func New(seed int64, octaves int, persistence, lacunarity float32) Field {
	base := NewSimplex(seed)
	if octaves <= 1 {
		return base
	}
	return Fractal{Base: base, Octaves: octaves, Persistence: persistence, Lacunarity: lacunarity}
}

// Constant is a flat field, handy for tests and for disabling displacement.
type Constant float32

// Sample implements Field.
func (c Constant) Sample(_, _ float32) float32 { return float32(c) }

// Func adapts a plain function to Field.
type Func func(x, y float32) float32

// Sample implements Field.
func (f Func) Sample(x, y float32) float32 { return f(x, y) }

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
