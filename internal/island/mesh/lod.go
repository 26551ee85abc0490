package mesh

import (
	"math"

	gmath "github.com/Faultbox/skyisles/pkg/math"
)

const (
	lodMinSegments  = 8
	lodSegmentRatio = 3
	lodTopHeight    = 0.6
)

// BuildLOD creates a low-detail, undisplaced proxy of the island crust: a
// two-ring band closed by a bottom and a top cap.
func BuildLOD(p GenerationParams) (*Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := max(lodMinSegments, p.VertexCount/lodSegmentRatio)
	ringSize := n + 1
	total := 2*ringSize + 2
	bottomCenter := 2 * ringSize
	topCenter := bottomCenter + 1
	topY := p.CrustHeight * lodTopHeight

	m := &Mesh{
		Vertices:  make([]gmath.Vec3, total),
		Normals:   make([]gmath.Vec3, total),
		UVs:       make([]gmath.Vec2, total),
		Colors:    make([]Color, total),
		Triangles: make([]uint32, 0, 12*n),
		Layout: Layout{
			Segments:     n,
			RingSize:     ringSize,
			ConeTip:      -1,
			BottomCenter: bottomCenter,
			CapRingStart: 0,
			TopCenter:    topCenter,
		},
	}

	for i := 0; i < ringSize; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		c, s := float32(math.Cos(angle)), float32(math.Sin(angle))
		uv := gmath.Vec2{X: (c + 1) * 0.5, Y: (s + 1) * 0.5}

		m.Vertices[i] = gmath.Vec3{X: c * p.CrustTopRadius, Y: topY, Z: s * p.CrustTopRadius}
		m.UVs[i] = uv
		m.Colors[i] = p.CrustColor

		m.Vertices[ringSize+i] = gmath.Vec3{X: c * p.CrustBottomRadius, Y: 0, Z: s * p.CrustBottomRadius}
		m.UVs[ringSize+i] = uv
		m.Colors[ringSize+i] = p.BaseColor
	}
	m.Vertices[bottomCenter] = gmath.Vec3{}
	m.UVs[bottomCenter] = gmath.Vec2{X: 0.5, Y: 0.5}
	m.Colors[bottomCenter] = p.BaseColor
	m.Vertices[topCenter] = gmath.Vec3{X: 0, Y: topY, Z: 0}
	m.UVs[topCenter] = gmath.Vec2{X: 0.5, Y: 0.5}
	m.Colors[topCenter] = p.CrustColor

	add := func(a, b, c int) {
		m.Triangles = append(m.Triangles, uint32(a), uint32(b), uint32(c))
	}
	for i := 0; i < n; i++ {
		add(i, ringSize+i+1, ringSize+i)
		add(i, i+1, ringSize+i+1)
	}
	for i := 0; i < n; i++ {
		add(bottomCenter, ringSize+i, ringSize+i+1)
	}
	for i := 0; i < n; i++ {
		add(topCenter, i+1, i)
	}

	m.checkArrays()
	RecalculateNormals(m)
	m.Bounds = computeBounds(m.Vertices)
	return m, nil
}
