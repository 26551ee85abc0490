// Package morph reshapes an island crust from its resolved stats.
package morph

import (
	gomath "math"

	"github.com/Faultbox/skyisles/internal/island/fault"
	"github.com/Faultbox/skyisles/internal/island/mesh"
	"github.com/Faultbox/skyisles/internal/island/stats"
	"github.com/Faultbox/skyisles/pkg/noise"
)

// Per-resource displacement weights.
const (
	foodRaise      = 0.05  // uniform lift
	dangerNoise    = 0.02  // noisy lift
	peopleFlatten  = 0.001 // sinks the rim, more at the diagonals
	defenseBumps   = 0.005 // ripple around the perimeter
	dangerNoiseFrq = 2
)

// Displacement is the offset applied to one seam group.
type Displacement struct {
	Group  int
	Vertex int // top-ring vertex the offset was computed at
	Offset float32
}

// Offset returns the vertical displacement for a top-ring vertex at (x, z).
func Offset(x, z float32, s stats.Stats, field noise.Field) float32 {
	offset := s.Food * foodRaise
	offset += field.Sample(x*dangerNoiseFrq, z*dangerNoiseFrq) * s.Danger * dangerNoise
	offset -= float32(gomath.Abs(float64(x*z))) * s.People * peopleFlatten
	offset += float32(gomath.Sin(float64(x+z))) * s.Defense * defenseBumps
	return offset
}

// Apply displaces every top-ring position of m once. All seam duplicates of a
// position move together, so the cap stays welded to the side walls. Normals
// and bounds are rebuilt afterwards.
func Apply(m *mesh.Mesh, s stats.Stats, field noise.Field) ([]Displacement, error) {
	if m == nil {
		return nil, fault.Missing("mesh")
	}
	if field == nil {
		return nil, fault.Missing("noise field")
	}

	seen := make([]bool, m.Seams.Groups())
	out := make([]Displacement, 0, len(seen))

	for _, idx := range m.TopRing {
		g := m.Seams.Group(idx)
		if g < 0 || seen[g] {
			continue
		}
		seen[g] = true

		v := m.Vertices[idx]
		offset := Offset(v.X, v.Z, s, field)
		for _, dup := range m.Seams.Duplicates(idx) {
			m.Vertices[dup].Y += offset
		}
		out = append(out, Displacement{Group: g, Vertex: idx, Offset: offset})
	}

	mesh.RecalculateNormals(m)
	mesh.RecalculateBounds(m)
	return out, nil
}
