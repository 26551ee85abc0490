package populate

import (
	gomath "math"

	"github.com/Faultbox/skyisles/internal/island/fault"
	"github.com/Faultbox/skyisles/internal/island/mesh"
	"github.com/Faultbox/skyisles/internal/island/stats"
	"github.com/Faultbox/skyisles/internal/picking"
	"github.com/Faultbox/skyisles/pkg/math"
	"github.com/Faultbox/skyisles/pkg/rng"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const (
	minScale = 0.5
	maxScale = 2.0

	minContribution = 0.75
	maxContribution = 1.25

	// affinityWeight is the extra weight per resource point on the hinted axis.
	affinityWeight = 0.5
)

// Params controls one population pass.
type Params struct {
	MinSpacing            float32        `yaml:"min_spacing"`
	MaxSpacing            float32        `yaml:"max_spacing"`
	Count                 int            `yaml:"count"`
	MaxAttempts           int            `yaml:"max_attempts"`
	MaxSlopeAngle         float32        `yaml:"max_slope_angle"` // degrees from vertical
	MaxDistanceFromCenter float32        `yaml:"max_distance_from_center"`
	Affinity              stats.Affinity `yaml:"affinity"`
	RaycastHeight         float32        `yaml:"raycast_height"`
}

// Validate rejects params the populator cannot use.
func (p Params) Validate() error {
	switch {
	case p.MinSpacing < 0:
		return fault.Config("min_spacing", p.MinSpacing, "must not be negative")
	case p.MaxSpacing < p.MinSpacing:
		return fault.Config("max_spacing", p.MaxSpacing, "must not be below min_spacing")
	case p.Count < 0:
		return fault.Config("count", p.Count, "must not be negative")
	case p.MaxAttempts < 1:
		return fault.Config("max_attempts", p.MaxAttempts, "must be at least 1")
	case p.MaxDistanceFromCenter < 0 || p.MaxDistanceFromCenter > 1:
		return fault.Config("max_distance_from_center", p.MaxDistanceFromCenter, "must be within [0, 1]")
	case p.RaycastHeight <= 0:
		return fault.Config("raycast_height", p.RaycastHeight, "must be greater than zero")
	}
	return nil
}

// Placement is one accepted structure in island-local space.
type Placement struct {
	Structure    Structure
	Position     math.Vec3
	Rotation     mgl32.Quat
	Scale        float32
	Spacing      float32 // clearance required when the structure was accepted
	Contribution float32
}

// Populator places structures. It draws every random value from one shared
// generator, so the order of calls matters for reproducibility.
type Populator struct {
	rng *rng.RNG
	log *zap.Logger
}

// NewPopulator creates a populator. A nil logger disables diagnostics.
func NewPopulator(r *rng.RNG, log *zap.Logger) *Populator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Populator{rng: r, log: log}
}

// Populate fills up to p.Count slots on the island crust and adds each accepted
// structure's resources to s. Slots that run out of attempts are skipped.
func (pp *Populator) Populate(gen mesh.GenerationParams, p Params, catalog Catalog, s *stats.Stats, surface picking.Surface) ([]Placement, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if surface == nil {
		return nil, fault.Missing("ground surface")
	}
	if s == nil {
		return nil, fault.Missing("stats accumulator")
	}

	table := weightTable(catalog, p.Affinity)
	diskRadius := gen.CrustTopRadius * p.MaxDistanceFromCenter
	maxSlope := p.MaxSlopeAngle

	var (
		placements []Placement
		used       []math.Vec3
	)

	for slot := 0; slot < p.Count; slot++ {
		structure, _ := table.PickOrUniform(pp.rng)
		scale := pp.rng.Range(minScale, maxScale)
		spacing := scale * pp.rng.Range(p.MinSpacing, p.MaxSpacing)

		placed := false
		for attempt := 0; attempt < p.MaxAttempts; attempt++ {
			offset := pp.rng.InsideUnitCircle().Scale(diskRadius)
			candidate := math.Vec3{X: offset.X, Y: gen.CrustHeight, Z: offset.Y}

			if tooClose(candidate, used, spacing) {
				continue
			}

			origin := candidate.Add(math.Up.Scale(p.RaycastHeight))
			hit, ok := surface.Raycast(origin, math.Vec3{Y: -1}, p.RaycastHeight*2)
			if !ok || hit.Normal.AngleDeg(math.Up) > maxSlope {
				continue
			}

			yaw := pp.rng.Range(0, 2*gomath.Pi)
			contribution := Contribution(scale)
			placements = append(placements, Placement{
				Structure:    structure,
				Position:     hit.Point,
				Rotation:     orient(hit.Normal, yaw),
				Scale:        scale,
				Spacing:      spacing,
				Contribution: contribution,
			})
			used = append(used, candidate)
			s.AddFromStructure(structure, contribution)
			placed = true
			break
		}

		if !placed {
			pp.log.Debug("placement exhausted",
				zap.Int("slot", slot),
				zap.String("structure", structure.Name),
				zap.Float32("spacing", spacing),
				zap.Int("attempts", p.MaxAttempts))
		}
	}

	return placements, nil
}

// Contribution maps a structure scale in [0.5, 2] onto a stat multiplier in [0.75, 1.25].
func Contribution(scale float32) float32 {
	return math.Lerp(minContribution, maxContribution, math.InverseLerp(minScale, maxScale, scale))
}

func weightTable(catalog Catalog, hint stats.Affinity) *rng.WeightedTable[Structure] {
	table := &rng.WeightedTable[Structure]{}
	for _, s := range catalog {
		table.Add(s, 1+affinityWeight*s.Values.Axis(hint))
	}
	return table
}

func tooClose(candidate math.Vec3, used []math.Vec3, spacing float32) bool {
	for _, u := range used {
		if candidate.Distance(u) < spacing {
			return true
		}
	}
	return false
}

// orient tilts local up onto the surface normal, then spins around it by yaw.
func orient(normal math.Vec3, yaw float32) mgl32.Quat {
	up := math.Up.Mgl()
	align := mgl32.QuatBetweenVectors(up, normal.Normalize().Mgl())
	spin := mgl32.QuatRotate(yaw, up)
	return align.Mul(spin).Normalize()
}
