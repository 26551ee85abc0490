// Package mesh builds floating-island meshes: a displaced crust cylinder over a
// tapering cone, plus a simplified LOD proxy.
package mesh

import (
	"math"

	"github.com/Faultbox/skyisles/internal/island/fault"
	gmath "github.com/Faultbox/skyisles/pkg/math"
)

// Color is an RGBA color with components in [0, 1].
type Color [4]float32

// Lerp interpolates between c and other by t.
func (c Color) Lerp(other Color, t float32) Color {
	return Color{
		c[0] + (other[0]-c[0])*t,
		c[1] + (other[1]-c[1])*t,
		c[2] + (other[2]-c[2])*t,
		c[3] + (other[3]-c[3])*t,
	}
}

// GenerationParams holds the sampled shape of one island. Immutable once sampled.
type GenerationParams struct {
	CrustBottomRadius float32
	CrustTopRadius    float32
	CrustHeight       float32
	BaseHeight        float32
	VertexCount       int
	NoiseIntensity    float32
	InnerRingY        float32 // between 0 and -BaseHeight
	InnerRingScale    float32 // fraction of CrustBottomRadius

	CrustColor        Color
	BaseColor         Color
	IntermediateColor Color
	BottomColor       Color
}

// Radius returns the widest crust radius.
func (p GenerationParams) Radius() float32 {
	return max(p.CrustBottomRadius, p.CrustTopRadius)
}

// Height returns the full height from apex to crust top.
func (p GenerationParams) Height() float32 {
	return p.BaseHeight + p.CrustHeight
}

// Validate rejects params the generator cannot build.
func (p GenerationParams) Validate() error {
	if p.VertexCount < 3 {
		return fault.Config("vertex_count", p.VertexCount, "must be at least 3")
	}
	positive := []struct {
		name string
		v    float32
	}{
		{"crust_bottom_radius", p.CrustBottomRadius},
		{"crust_top_radius", p.CrustTopRadius},
		{"inner_ring_scale", p.InnerRingScale},
	}
	for _, f := range positive {
		if !finite(f.v) || f.v <= 0 {
			return fault.Config(f.name, f.v, "must be greater than zero")
		}
	}
	nonNegative := []struct {
		name string
		v    float32
	}{
		{"crust_height", p.CrustHeight},
		{"base_height", p.BaseHeight},
	}
	for _, f := range nonNegative {
		if !finite(f.v) || f.v < 0 {
			return fault.Config(f.name, f.v, "must not be negative")
		}
	}
	if !finite(p.NoiseIntensity) {
		return fault.Config("noise_intensity", p.NoiseIntensity, "must be finite")
	}
	if !finite(p.InnerRingY) {
		return fault.Config("inner_ring_y", p.InnerRingY, "must be finite")
	}
	return nil
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Layout records where each ring and singleton lives in the vertex array.
type Layout struct {
	Segments     int // vertex count per ring, excluding the wrap duplicate
	RingSize     int // Segments + 1
	ConeTip      int
	BottomCenter int
	CapRingStart int
	TopCenter    int
}

// Mesh holds the island geometry in parallel arrays ready for a mesh container.
type Mesh struct {
	Vertices  []gmath.Vec3
	Normals   []gmath.Vec3
	UVs       []gmath.Vec2
	Colors    []Color
	Triangles []uint32

	// TopRing lists the deformable top-ring vertex indices.
	TopRing []int
	Seams   SeamMap
	Layout  Layout
	Bounds  Bounds
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Triangles) / 3 }

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = append([]gmath.Vec3(nil), m.Vertices...)
	c.Normals = append([]gmath.Vec3(nil), m.Normals...)
	c.UVs = append([]gmath.Vec2(nil), m.UVs...)
	c.Colors = append([]Color(nil), m.Colors...)
	c.Triangles = append([]uint32(nil), m.Triangles...)
	c.TopRing = append([]int(nil), m.TopRing...)
	c.Seams = m.Seams.clone()
	return &c
}

// checkArrays panics when the parallel arrays disagree. A mismatch is a
// programming error, never bad input.
func (m *Mesh) checkArrays() {
	n := len(m.Vertices)
	if len(m.UVs) != n || len(m.Colors) != n || len(m.Normals) != n {
		panic("mesh: attribute arrays do not match vertex count")
	}
	if len(m.Triangles)%3 != 0 {
		panic("mesh: triangle index count is not a multiple of 3")
	}
	for _, idx := range m.Triangles {
		if int(idx) >= n {
			panic("mesh: triangle index out of range")
		}
	}
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
