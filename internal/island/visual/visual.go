// Package visual tints island vertex colors by affinity. Material selection
// is left to the renderer, which receives the affinity alongside the mesh.
package visual

import (
	"github.com/Faultbox/skyisles/internal/island/mesh"
	"github.com/Faultbox/skyisles/internal/island/stats"
	gmath "github.com/Faultbox/skyisles/pkg/math"
)

var (
	white  = mesh.Color{1, 1, 1, 1}
	black  = mesh.Color{0, 0, 0, 1}
	gray   = mesh.Color{0.5, 0.5, 0.5, 1}
	red    = mesh.Color{1, 0, 0, 1}
	green  = mesh.Color{0, 1, 0, 1}
	blue   = mesh.Color{0, 0, 1, 1}
	yellow = mesh.Color{1, 0.92, 0.016, 1}
)

const (
	blend           = 0.5
	fullIntensityAt = 10
)

// TintColor returns the tint for s, scaled by the value on its affinity axis.
func TintColor(s stats.Stats) mesh.Color {
	intensity := gmath.Clamp01(s.Axis(s.Affinity) / fullIntensityAt)
	switch s.Affinity {
	case stats.Food:
		return gray.Lerp(green, intensity)
	case stats.Danger:
		return black.Lerp(red, intensity)
	case stats.Defense:
		return gray.Lerp(blue, intensity)
	case stats.People:
		return white.Lerp(yellow, intensity)
	}
	return white
}

// Tint blends every vertex color halfway towards the affinity tint.
func Tint(m *mesh.Mesh, s stats.Stats) {
	if m == nil {
		return
	}
	tint := TintColor(s)
	for i, c := range m.Colors {
		m.Colors[i] = c.Lerp(tint, blend)
	}
}
