// Package debug provides debug geometry and image output for generated layouts.
package debug

import (
	"github.com/Faultbox/skyisles/pkg/math"
	"github.com/go-gl/mathgl/mgl32"
)

// BoxWireframeVertexCount is the number of vertices in a box wireframe (12 edges × 2).
const BoxWireframeVertexCount = 24

// boxEdges lists corner index pairs. Corner bit 0 is +X, bit 1 is +Y, bit 2 is +Z.
var boxEdges = [12][2]int{
	// Bottom face
	{0, 1}, {1, 5}, {5, 4}, {4, 0},
	// Top face
	{2, 3}, {3, 7}, {7, 6}, {6, 2},
	// Vertical edges
	{0, 2}, {1, 3}, {5, 7}, {4, 6},
}

// BoxCorners returns the eight corners of an oriented box in world space.
func BoxCorners(center, half math.Vec3, rot mgl32.Quat) [8]math.Vec3 {
	var corners [8]math.Vec3
	for i := range corners {
		local := math.Vec3{X: -half.X, Y: -half.Y, Z: -half.Z}
		if i&1 != 0 {
			local.X = half.X
		}
		if i&2 != 0 {
			local.Y = half.Y
		}
		if i&4 != 0 {
			local.Z = half.Z
		}
		corners[i] = local.Rotate(rot).Add(center)
	}
	return corners
}

// BoxWireframe creates line vertices for an oriented box.
// Returns 24 vertices, format: [x, y, z] per vertex.
func BoxWireframe(center, half math.Vec3, rot mgl32.Quat) []float32 {
	corners := BoxCorners(center, half, rot)
	out := make([]float32, 0, BoxWireframeVertexCount*3)
	for _, e := range boxEdges {
		a, b := corners[e[0]], corners[e[1]]
		out = append(out, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}
	return out
}

// BoundsWireframe creates line vertices for an axis-aligned box given by its
// min and max corners, padded on all sides, then placed by rot and offset.
func BoundsWireframe(minCorner, maxCorner [3]float32, padding float32, offset math.Vec3, rot mgl32.Quat) []float32 {
	for i := 0; i < 3; i++ {
		if minCorner[i] > maxCorner[i] {
			minCorner[i], maxCorner[i] = maxCorner[i], minCorner[i]
		}
	}
	half := math.Vec3{
		X: (maxCorner[0]-minCorner[0])/2 + padding,
		Y: (maxCorner[1]-minCorner[1])/2 + padding,
		Z: (maxCorner[2]-minCorner[2])/2 + padding,
	}
	localCenter := math.Vec3{
		X: (maxCorner[0] + minCorner[0]) / 2,
		Y: (maxCorner[1] + minCorner[1]) / 2,
		Z: (maxCorner[2] + minCorner[2]) / 2,
	}
	return BoxWireframe(localCenter.Rotate(rot).Add(offset), half, rot)
}

// DefaultBoundsPadding is the default padding for island bounds.
const DefaultBoundsPadding = 0.5
