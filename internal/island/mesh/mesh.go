package mesh

import (
	"math"

	gmath "github.com/Faultbox/skyisles/pkg/math"
	"github.com/Faultbox/skyisles/pkg/noise"
)

const (
	// innerRingNoise damps displacement near the cone tip to limit self-intersection.
	innerRingNoise = 0.1
	// colorNoiseScale is the sampling frequency of the crust color gradient.
	colorNoiseScale = 0.1
)

// Build creates an island mesh from generation params. The result depends only
// on params and the noise field.
func Build(p GenerationParams, field noise.Field) (*Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := p.VertexCount
	ringSize := n + 1
	l := Layout{
		Segments:     n,
		RingSize:     ringSize,
		ConeTip:      3 * ringSize,
		BottomCenter: 3*ringSize + 1,
		CapRingStart: 3*ringSize + 2,
		TopCenter:    4*ringSize + 2,
	}
	total := 4*ringSize + 3

	m := &Mesh{
		Vertices:  make([]gmath.Vec3, total),
		Normals:   make([]gmath.Vec3, total),
		UVs:       make([]gmath.Vec2, total),
		Colors:    make([]Color, total),
		Triangles: make([]uint32, 0, 18*n),
		Layout:    l,
	}

	// Vertices: top ring, bottom ring, inner ring, apex, bottom center, cap ring, top center
	buildRing(m.Vertices[0:ringSize], n, p.CrustTopRadius, p.CrustHeight, p.NoiseIntensity, 1, field)
	buildRing(m.Vertices[ringSize:2*ringSize], n, p.CrustBottomRadius, 0, p.NoiseIntensity, 1, field)
	innerRadius := p.CrustBottomRadius * p.InnerRingScale
	buildRing(m.Vertices[2*ringSize:3*ringSize], n, innerRadius, p.InnerRingY, p.NoiseIntensity, innerRingNoise, field)
	m.Vertices[l.ConeTip] = gmath.Vec3{X: 0, Y: -p.BaseHeight, Z: 0}
	m.Vertices[l.BottomCenter] = gmath.Vec3{}
	copy(m.Vertices[l.CapRingStart:l.CapRingStart+ringSize], m.Vertices[0:ringSize])
	m.Vertices[l.TopCenter] = gmath.Vec3{X: 0, Y: p.CrustHeight, Z: 0}

	m.Triangles = appendTriangles(m.Triangles, l)
	buildUVs(m.UVs, l)
	buildColors(m, p, field)

	m.TopRing = make([]int, ringSize)
	for i := range m.TopRing {
		m.TopRing[i] = i
	}
	m.Seams = newSeamMap(total, l)

	m.checkArrays()
	RecalculateNormals(m)
	m.Bounds = computeBounds(m.Vertices)

	return m, nil
}

// buildRing fills dst with segments+1 vertices around the Y axis. The last
// vertex repeats the first angle so UVs can wrap.
func buildRing(dst []gmath.Vec3, segments int, radius, y, intensity, modifier float32, field noise.Field) {
	for i := range dst {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := float32(math.Cos(angle)) * radius
		z := float32(math.Sin(angle)) * radius
		s := field.Sample(x/radius, z/radius) * intensity * modifier
		dst[i] = gmath.Vec3{X: x + s, Y: y + s, Z: z + s}
	}
}

func appendTriangles(tris []uint32, l Layout) []uint32 {
	n := l.Segments
	top := 0
	bottom := l.RingSize
	inner := 2 * l.RingSize
	tip := l.ConeTip
	capStart := l.CapRingStart
	center := l.TopCenter

	idx := func(v ...int) {
		for _, i := range v {
			tris = append(tris, uint32(i))
		}
	}

	// Crust side walls
	for i := 0; i < n; i++ {
		idx(top+i, bottom+i+1, bottom+i)
		idx(top+i, top+i+1, bottom+i+1)
	}

	// Cone skirt, bottom ring down to the inner ring
	for i := 0; i < n; i++ {
		idx(bottom+i, bottom+i+1, inner+i)
		idx(inner+i, bottom+i+1, inner+i+1)
	}

	// Tip fan
	for i := 0; i < n; i++ {
		idx(inner+i, inner+i+1, tip)
	}

	// Cap fan
	for i := 0; i < n; i++ {
		idx(center, capStart+i+1, capStart+i)
	}

	return tris
}

func buildUVs(uvs []gmath.Vec2, l Layout) {
	n := float32(l.Segments)

	// Cylindrical mapping for the three side rings
	for r := 0; r < 3; r++ {
		for i := 0; i < l.RingSize; i++ {
			uvs[r*l.RingSize+i] = gmath.Vec2{X: float32(i) / n, Y: 1 - 0.33*float32(r)}
		}
	}

	uvs[l.ConeTip] = gmath.Vec2{X: 0.5, Y: -1}
	uvs[l.BottomCenter] = gmath.Vec2{X: 0.5, Y: 0.5}

	// Polar mapping for the cap
	for i := 0; i < l.RingSize; i++ {
		angle := float64(i) * 2 * math.Pi / float64(l.Segments)
		uvs[l.CapRingStart+i] = gmath.Vec2{
			X: float32((math.Cos(angle) + 1) * 0.5),
			Y: float32((math.Sin(angle) + 1) * 0.5),
		}
	}
	uvs[l.TopCenter] = gmath.Vec2{X: 0.5, Y: 0.5}
}

func buildColors(m *Mesh, p GenerationParams, field noise.Field) {
	l := m.Layout
	innerColor := p.IntermediateColor.Lerp(p.BottomColor, 0.5)

	for i := 0; i < l.RingSize; i++ {
		top := m.Vertices[i]
		g := field.Sample(top.X*colorNoiseScale, top.Z*colorNoiseScale)
		m.Colors[i] = p.CrustColor.Lerp(p.IntermediateColor, g)

		bottom := m.Vertices[l.RingSize+i]
		g2 := field.Sample(bottom.X*colorNoiseScale, bottom.Z*colorNoiseScale)
		m.Colors[l.RingSize+i] = p.BaseColor.Lerp(p.BottomColor, g2)

		m.Colors[2*l.RingSize+i] = innerColor
		m.Colors[l.CapRingStart+i] = p.CrustColor
	}

	m.Colors[l.ConeTip] = p.BottomColor
	m.Colors[l.BottomCenter] = p.BaseColor
	m.Colors[l.TopCenter] = p.CrustColor
}

// RecalculateNormals rebuilds per-vertex normals from the triangle list.
// Face normals are area weighted; vertices not referenced by any triangle get +Y.
func RecalculateNormals(m *Mesh) {
	for i := range m.Normals {
		m.Normals[i] = gmath.Vec3{}
	}

	for t := 0; t+2 < len(m.Triangles); t += 3 {
		a, b, c := m.Triangles[t], m.Triangles[t+1], m.Triangles[t+2]
		va, vb, vc := m.Vertices[a], m.Vertices[b], m.Vertices[c]
		n := vb.Sub(va).Cross(vc.Sub(va))
		m.Normals[a] = m.Normals[a].Add(n)
		m.Normals[b] = m.Normals[b].Add(n)
		m.Normals[c] = m.Normals[c].Add(n)
	}

	for i, n := range m.Normals {
		if n.Length() < 1e-8 {
			m.Normals[i] = gmath.Up
			continue
		}
		m.Normals[i] = n.Normalize()
	}
}

// RecalculateBounds refreshes the bounding box after vertices moved.
func RecalculateBounds(m *Mesh) {
	m.Bounds = computeBounds(m.Vertices)
}

func computeBounds(vertices []gmath.Vec3) Bounds {
	b := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	for _, v := range vertices {
		updateBounds(&b, v.Array())
	}
	return b
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
