package morph

import (
	"errors"
	"testing"

	"github.com/Faultbox/skyisles/internal/island/fault"
	"github.com/Faultbox/skyisles/internal/island/mesh"
	"github.com/Faultbox/skyisles/internal/island/stats"
	"github.com/Faultbox/skyisles/pkg/noise"
)

func buildIsland(t *testing.T, n int, field noise.Field) *mesh.Mesh {
	t.Helper()
	m, err := mesh.Build(mesh.GenerationParams{
		CrustBottomRadius: 8,
		CrustTopRadius:    10,
		CrustHeight:       2,
		BaseHeight:        6,
		VertexCount:       n,
		NoiseIntensity:    1.5,
		InnerRingY:        -3,
		InnerRingScale:    0.5,
	}, field)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func TestApplyFoodRaisesUniformly(t *testing.T) {
	m := buildIsland(t, 16, noise.Constant(0))
	before := m.Clone()
	s := stats.Stats{Resources: stats.Resources{Food: 10}}

	out, err := Apply(m, s, noise.Constant(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 16 {
		t.Errorf("expected 16 displacements, got %d", len(out))
	}

	for _, idx := range m.TopRing {
		for _, dup := range m.Seams.Duplicates(idx) {
			if d := m.Vertices[dup].Y - before.Vertices[dup].Y; abs(d-0.5) > 1e-5 {
				t.Errorf("vertex %d: expected lift 0.5, got %f", dup, d)
			}
		}
	}

	// Bottom ring and singletons never move.
	l := m.Layout
	for _, idx := range []int{l.RingSize, l.RingSize + 3, l.ConeTip, l.TopCenter, l.BottomCenter} {
		if m.Vertices[idx] != before.Vertices[idx] {
			t.Errorf("vertex %d: expected unchanged position", idx)
		}
	}

	if abs(m.Bounds.Max[1]-2.5) > 1e-5 {
		t.Errorf("expected bounds max Y 2.5, got %f", m.Bounds.Max[1])
	}
}

func TestApplyKeepsSeamsWelded(t *testing.T) {
	m := buildIsland(t, 24, noise.NewSimplex(9))
	s := stats.Stats{Resources: stats.Resources{People: 3, Defense: 5, Food: 2, Danger: 7}}

	if _, err := Apply(m, s, noise.NewSimplex(4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	capStart := m.Layout.CapRingStart
	for _, idx := range m.TopRing {
		if m.Vertices[idx] != m.Vertices[capStart+idx] {
			t.Errorf("vertex %d drifted from its cap duplicate", idx)
		}
	}
}

func TestApplyWrapSeamDisplacedOnce(t *testing.T) {
	m := buildIsland(t, 12, noise.Constant(0))
	y0 := m.Vertices[0].Y
	s := stats.Stats{Resources: stats.Resources{Food: 4}}

	if _, err := Apply(m, s, noise.Constant(0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wrap := m.Layout.Segments
	if d := m.Vertices[wrap].Y - y0; abs(d-0.2) > 1e-5 {
		t.Errorf("expected wrap vertex lifted by 0.2, got %f", d)
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		name     string
		x, z     float32
		in       stats.Resources
		field    noise.Field
		expected float32
	}{
		{"food", 3, 4, stats.Resources{Food: 2}, noise.Constant(0), 0.1},
		{"danger", 1, 1, stats.Resources{Danger: 5}, noise.Constant(0.5), 0.05},
		{"people", 2, -5, stats.Resources{People: 10}, noise.Constant(0), -0.1},
		{"defense at zero phase", 1, -1, stats.Resources{Defense: 10}, noise.Constant(0), 0},
		{"empty", 5, 5, stats.Resources{}, noise.Constant(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Offset(tt.x, tt.z, stats.Stats{Resources: tt.in}, tt.field)
			if abs(got-tt.expected) > 1e-5 {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestApplyMissing(t *testing.T) {
	if _, err := Apply(nil, stats.Stats{}, noise.Constant(0)); !errors.Is(err, fault.ErrMissingCollaborator) {
		t.Errorf("expected ErrMissingCollaborator, got %v", err)
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
