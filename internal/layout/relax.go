package layout

import (
	gomath "math"

	"github.com/Faultbox/skyisles/internal/config"
	"github.com/Faultbox/skyisles/pkg/math"
)

// goldenAngle spreads fallback directions for coincident bodies.
const goldenAngle = 2.399963

// coincident is the distance below which two centers have no usable direction.
const coincident = 1e-6

// Body is one island as the relaxer sees it: a sphere in cell-local space.
type Body struct {
	Position math.Vec3
	Radius   float32
}

// Relax pushes overlapping bodies apart and back inside the half extents.
// Every iteration computes all displacements from the same snapshot and
// applies them together, so the result does not depend on body order.
func Relax(bodies []Body, half math.Vec3, rc config.RelaxConfig) {
	if len(bodies) == 0 {
		return
	}
	disp := make([]math.Vec3, len(bodies))
	limits := half.Array()

	for it := 0; it < rc.Iterations; it++ {
		clear(disp)

		for i := range bodies {
			for j := i + 1; j < len(bodies); j++ {
				delta := bodies[i].Position.Sub(bodies[j].Position)
				d := delta.Length()
				if d >= bodies[i].Radius+bodies[j].Radius+rc.Padding {
					continue
				}

				var dir math.Vec3
				mag := rc.MaxStep
				if d < coincident {
					theta := float64(i+j+1) * goldenAngle
					dir = math.Vec3{X: float32(gomath.Cos(theta)), Z: float32(gomath.Sin(theta))}
				} else {
					dir = delta.Scale(1 / d)
					mag = min(rc.Strength/(d*d), rc.MaxStep)
				}

				step := dir.Scale(mag / 2)
				disp[i] = disp[i].Add(step)
				disp[j] = disp[j].Sub(step)
			}
		}

		for i, b := range bodies {
			p := b.Position.Array()
			var push [3]float32
			for axis := 0; axis < 3; axis++ {
				excess := math.Abs(p[axis]) + b.Radius - limits[axis]
				if excess <= 0 || p[axis] == 0 {
					continue
				}
				// Never push past the center.
				amount := min(excess*rc.BoundaryStrength, math.Abs(p[axis]))
				if p[axis] > 0 {
					push[axis] = -amount
				} else {
					push[axis] = amount
				}
			}
			disp[i] = disp[i].Add(math.Vec3{X: push[0], Y: push[1], Z: push[2]})
		}

		for i := range bodies {
			bodies[i].Position = bodies[i].Position.Add(disp[i])
		}
	}
}

// Overlap returns the deepest pairwise penetration among bodies, or zero.
func Overlap(bodies []Body) float32 {
	var worst float32
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			d := bodies[i].Position.Distance(bodies[j].Position)
			if pen := bodies[i].Radius + bodies[j].Radius - d; pen > worst {
				worst = pen
			}
		}
	}
	return worst
}
