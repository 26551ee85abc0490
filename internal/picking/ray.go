// Package picking provides ray casting against boxes and island surfaces.
package picking

import (
	gomath "math"

	"github.com/Faultbox/skyisles/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay creates a ray, normalizing the direction.
func NewRay(origin, direction math.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	origin := r.Origin.Array()
	dir := r.Direction.Array()

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < box.Min[axis] || origin[axis] > box.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - origin[axis]) / dir[axis]
		t2 := (box.Max[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}

	// Entry point, or exit point if starting inside
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// NewAABB creates an AABB from min and max corners, handling swapped corners.
func NewAABB(minX, minY, minZ, maxX, maxY, maxZ float32) AABB {
	box := AABB{
		Min: [3]float32{minX, minY, minZ},
		Max: [3]float32{maxX, maxY, maxZ},
	}
	for i := 0; i < 3; i++ {
		if box.Min[i] > box.Max[i] {
			box.Min[i], box.Max[i] = box.Max[i], box.Min[i]
		}
	}
	return box
}

// Expand grows the box by margin on every side.
func (b AABB) Expand(margin float32) AABB {
	return NewAABB(
		b.Min[0]-margin, b.Min[1]-margin, b.Min[2]-margin,
		b.Max[0]+margin, b.Max[1]+margin, b.Max[2]+margin,
	)
}
