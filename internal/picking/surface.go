package picking

import (
	"github.com/Faultbox/skyisles/internal/island/mesh"
	"github.com/Faultbox/skyisles/pkg/math"
)

// triangleEpsilon rejects rays nearly parallel to a triangle.
const triangleEpsilon = 1e-7

// Hit describes the nearest ray intersection with a surface.
type Hit struct {
	Point    math.Vec3
	Normal   math.Vec3 // face normal, unit length
	Distance float32
	Triangle int // index of the triangle hit
}

// Surface answers ground queries for object placement.
type Surface interface {
	Raycast(origin, dir math.Vec3, maxDist float32) (Hit, bool)
}

// MeshSurface casts rays against the exact triangles of an island mesh in
// mesh-local space. The mesh must not be modified while the surface is in use.
type MeshSurface struct {
	mesh *mesh.Mesh
	box  AABB
}

// NewMeshSurface creates a ground surface over m.
func NewMeshSurface(m *mesh.Mesh) *MeshSurface {
	b := m.Bounds
	return &MeshSurface{
		mesh: m,
		box:  NewAABB(b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2]).Expand(1e-4),
	}
}

// Raycast returns the nearest front- or back-facing triangle hit within maxDist.
func (s *MeshSurface) Raycast(origin, dir math.Vec3, maxDist float32) (Hit, bool) {
	ray := NewRay(origin, dir)
	if t, ok := ray.IntersectAABB(s.box); !ok || t > maxDist {
		return Hit{}, false
	}

	best := Hit{Distance: maxDist}
	found := false
	tris := s.mesh.Triangles
	verts := s.mesh.Vertices

	for i := 0; i+2 < len(tris); i += 3 {
		a, b, c := verts[tris[i]], verts[tris[i+1]], verts[tris[i+2]]
		t, ok := intersectTriangle(ray, a, b, c)
		if !ok || t > best.Distance {
			continue
		}
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Length() == 0 {
			continue
		}
		best = Hit{
			Point:    ray.At(t),
			Normal:   n.Normalize(),
			Distance: t,
			Triangle: i / 3,
		}
		found = true
	}
	return best, found
}

// intersectTriangle is the Möller-Trumbore ray/triangle test. Both windings hit.
func intersectTriangle(r Ray, a, b, c math.Vec3) (float32, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -triangleEpsilon && det < triangleEpsilon {
		return 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
