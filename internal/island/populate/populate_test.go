package populate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Faultbox/skyisles/internal/island/fault"
	"github.com/Faultbox/skyisles/internal/island/mesh"
	"github.com/Faultbox/skyisles/internal/island/stats"
	"github.com/Faultbox/skyisles/internal/picking"
	"github.com/Faultbox/skyisles/pkg/math"
	"github.com/Faultbox/skyisles/pkg/noise"
	"github.com/Faultbox/skyisles/pkg/rng"
)

// flatSurface reports a hit at y=0 with a fixed normal everywhere.
type flatSurface struct {
	normal math.Vec3
	calls  int
}

func (f *flatSurface) Raycast(origin, dir math.Vec3, maxDist float32) (picking.Hit, bool) {
	f.calls++
	return picking.Hit{
		Point:    math.Vec3{X: origin.X, Y: 0, Z: origin.Z},
		Normal:   f.normal.Normalize(),
		Distance: origin.Y,
	}, origin.Y <= maxDist
}

func testGen() mesh.GenerationParams {
	return mesh.GenerationParams{
		CrustBottomRadius: 12,
		CrustTopRadius:    15,
		CrustHeight:       2,
		BaseHeight:        8,
		VertexCount:       40,
		NoiseIntensity:    2,
		InnerRingY:        -5,
		InnerRingScale:    0.4,
	}
}

func testParams() Params {
	return Params{
		MinSpacing:            2,
		MaxSpacing:            5,
		Count:                 10,
		MaxAttempts:           15,
		MaxSlopeAngle:         45,
		MaxDistanceFromCenter: 0.6,
		RaycastHeight:         50,
	}
}

func TestPopulateSpacingAndBounds(t *testing.T) {
	gen := testGen()
	m, err := mesh.Build(gen, noise.NewSimplex(11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := testParams()

	for seed := int64(1); seed <= 5; seed++ {
		var s stats.Stats
		placements, err := NewPopulator(rng.New(seed), nil).Populate(gen, p, DefaultCatalog(), &s, picking.NewMeshSurface(m))
		if err != nil {
			t.Fatalf("seed %d: unexpected error: %v", seed, err)
		}
		if len(placements) == 0 {
			t.Fatalf("seed %d: expected at least one placement", seed)
		}
		if len(placements) > p.Count {
			t.Errorf("seed %d: expected at most %d placements, got %d", seed, p.Count, len(placements))
		}

		maxRadius := gen.CrustTopRadius * p.MaxDistanceFromCenter
		for j, pl := range placements {
			// Hits lie on a displaced surface, so allow for the noise shift.
			if r := pl.Position.XZ().Length(); r > maxRadius+2*gen.NoiseIntensity {
				t.Errorf("seed %d: placement %d at radius %f outside bound %f", seed, j, r, maxRadius)
			}
			if pl.Scale < 0.5 || pl.Scale > 2 {
				t.Errorf("seed %d: scale %f out of range", seed, pl.Scale)
			}
			if pl.Contribution < 0.75 || pl.Contribution > 1.25 {
				t.Errorf("seed %d: contribution %f out of range", seed, pl.Contribution)
			}
		}
	}
}

func TestPopulateSpacingInvariant(t *testing.T) {
	p := testParams()
	p.Count = 40
	surface := &flatSurface{normal: math.Up}

	var s stats.Stats
	placements, err := NewPopulator(rng.New(3), nil).Populate(testGen(), p, DefaultCatalog(), &s, surface)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// On a flat surface the hit point is the sampled point, so acceptance
	// order spacing can be checked directly.
	for j := range placements {
		for i := 0; i < j; i++ {
			d := placements[j].Position.Distance(placements[i].Position)
			if d < placements[j].Spacing {
				t.Errorf("placement %d is %f from %d, required %f", j, d, i, placements[j].Spacing)
			}
		}
	}
	if len(placements) == 40 {
		t.Error("expected a dense request to be under-filled")
	}
}

func TestPopulateStatsAccumulate(t *testing.T) {
	catalog := Catalog{{Name: "farm", Values: stats.Resources{Food: 2}}}
	p := testParams()
	p.Count = 3
	p.MinSpacing, p.MaxSpacing = 0, 0

	var s stats.Stats
	placements, err := NewPopulator(rng.New(1), nil).Populate(testGen(), p, catalog, &s, &flatSurface{normal: math.Up})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(placements) != 3 {
		t.Fatalf("expected 3 placements, got %d", len(placements))
	}

	var expected float32
	for _, pl := range placements {
		expected += 2 * pl.Contribution
	}
	if abs(s.Food-expected) > 1e-4 {
		t.Errorf("expected food %f, got %f", expected, s.Food)
	}
	if s.People != 0 || s.Defense != 0 || s.Danger != 0 {
		t.Errorf("expected only food, got %+v", s.Resources)
	}
}

func TestPopulateRejectsSteepSlopes(t *testing.T) {
	tilted := math.Vec3{X: 1, Y: 0.5, Z: 0} // about 63 degrees from vertical
	surface := &flatSurface{normal: tilted}

	var s stats.Stats
	placements, err := NewPopulator(rng.New(1), nil).Populate(testGen(), testParams(), DefaultCatalog(), &s, surface)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(placements) != 0 {
		t.Errorf("expected no placements on steep ground, got %d", len(placements))
	}
	if s != (stats.Stats{}) {
		t.Errorf("expected untouched stats, got %+v", s)
	}
	if surface.calls == 0 {
		t.Error("expected the surface to be queried")
	}
}

func TestPopulateErrors(t *testing.T) {
	var s stats.Stats
	pp := NewPopulator(rng.New(1), nil)

	_, err := pp.Populate(testGen(), testParams(), Catalog{}, &s, &flatSurface{normal: math.Up})
	if !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for empty catalog, got %v", err)
	}

	_, err = pp.Populate(testGen(), testParams(), DefaultCatalog(), &s, nil)
	if !errors.Is(err, fault.ErrMissingCollaborator) {
		t.Errorf("expected ErrMissingCollaborator for nil surface, got %v", err)
	}

	bad := testParams()
	bad.MaxAttempts = 0
	_, err = pp.Populate(testGen(), bad, DefaultCatalog(), &s, &flatSurface{normal: math.Up})
	if !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for zero attempts, got %v", err)
	}

	negative := Catalog{{Name: "pit", Values: stats.Resources{Danger: -1}}}
	if err := negative.Validate(); !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for negative resources, got %v", err)
	}
}

func TestPopulateDeterministic(t *testing.T) {
	run := func() []Placement {
		var s stats.Stats
		placements, err := NewPopulator(rng.New(42), nil).Populate(testGen(), testParams(), DefaultCatalog(), &s, &flatSurface{normal: math.Up})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return placements
	}

	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Error("expected identical placements for identical seeds")
	}
}

func TestAffinityWeighting(t *testing.T) {
	catalog := Catalog{
		{Name: "farm", Values: stats.Resources{Food: 10}},
		{Name: "hut", Values: stats.Resources{People: 1}},
	}
	r := rng.New(5)

	table := weightTable(catalog, stats.Food)
	if table.Total() != 7 {
		t.Fatalf("expected total weight 7, got %f", table.Total())
	}

	farms := 0
	for i := 0; i < 2000; i++ {
		s, _ := table.PickOrUniform(r)
		if s.Name == "farm" {
			farms++
		}
	}
	// farm weight 6 of 7
	if farms < 1600 || farms > 1850 {
		t.Errorf("expected about 1714 farms, got %d", farms)
	}

	if none := weightTable(catalog, stats.None); none.Total() != 2 {
		t.Errorf("expected uniform weights without a hint, got total %f", none.Total())
	}
}

func TestContribution(t *testing.T) {
	tests := []struct {
		scale, expected float32
	}{
		{0.5, 0.75},
		{1.25, 1.0},
		{2.0, 1.25},
		{3.0, 1.25},
	}
	for _, tt := range tests {
		if got := Contribution(tt.scale); abs(got-tt.expected) > 1e-5 {
			t.Errorf("scale %f: expected %f, got %f", tt.scale, tt.expected, got)
		}
	}
}

func TestOrientAlignsUp(t *testing.T) {
	normal := math.Vec3{X: 0.3, Y: 1, Z: -0.2}.Normalize()
	q := orient(normal, 1.2)
	got := math.FromMgl(q.Rotate(math.Up.Mgl()))
	if got.Sub(normal).Length() > 1e-4 {
		t.Errorf("expected rotated up %+v, got %+v", normal, got)
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
