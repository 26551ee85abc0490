package island

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/skyisles/internal/config"
	"github.com/Faultbox/skyisles/internal/island/fault"
	"github.com/Faultbox/skyisles/internal/island/populate"
	"github.com/Faultbox/skyisles/internal/island/stats"
	"github.com/Faultbox/skyisles/pkg/math"
	"github.com/Faultbox/skyisles/pkg/noise"
	"github.com/Faultbox/skyisles/pkg/rng"
)

type recordingSink struct {
	submits  map[string]int
	released []string
	affinity stats.Affinity
	last     Transform
	rendered Renderable
}

func newRecordingSink() *recordingSink {
	return &recordingSink{submits: make(map[string]int)}
}

func (s *recordingSink) Submit(id string, r Renderable) {
	s.submits[id]++
	s.affinity = r.Affinity
	s.last = r.Transform
	s.rendered = r
}

func (s *recordingSink) Release(id string) {
	s.released = append(s.released, id)
}

func testDeps(seed int64, sink Sink) Deps {
	cfg := config.Default()
	return Deps{
		Config: cfg,
		RNG:    rng.New(seed),
		Noise:  noise.NewSimplex(seed),
		Sink:   sink,
	}
}

func newTestPipeline(t *testing.T, id string, deps Deps) *Pipeline {
	t.Helper()
	p, err := New(id, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestNewRequiresDeps(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Deps)
	}{
		{"config", func(d *Deps) { d.Config = nil }},
		{"rng", func(d *Deps) { d.RNG = nil }},
		{"noise", func(d *Deps) { d.Noise = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := testDeps(1, nil)
			tt.modify(&deps)
			if _, err := New("a", deps); !errors.Is(err, fault.ErrMissingCollaborator) {
				t.Errorf("expected ErrMissingCollaborator, got %v", err)
			}
		})
	}
}

func TestGenerateWithinRanges(t *testing.T) {
	p := newTestPipeline(t, "a", testDeps(7, nil))
	ic := config.Default().Island

	for i := 0; i < 50; i++ {
		p.Generate()
		gp, ok := p.Params()
		if !ok {
			t.Fatal("expected params after Generate")
		}
		if gp.CrustTopRadius < ic.CrustTopRadius.Min || gp.CrustTopRadius > ic.CrustTopRadius.Max {
			t.Errorf("crust top radius %v outside range", gp.CrustTopRadius)
		}
		if gp.VertexCount < ic.VertexCount.Min || gp.VertexCount >= ic.VertexCount.Max {
			t.Errorf("vertex count %d outside [%d, %d)", gp.VertexCount, ic.VertexCount.Min, ic.VertexCount.Max)
		}
		lo, hi := -gp.BaseHeight*ic.InnerRingDepth.Max, -gp.BaseHeight*ic.InnerRingDepth.Min
		if gp.InnerRingY < lo-1e-4 || gp.InnerRingY > hi+1e-4 {
			t.Errorf("inner ring y %v outside [%v, %v]", gp.InnerRingY, lo, hi)
		}
		if gp.CrustColor != ic.Colors.Crust {
			t.Errorf("expected crust color %v, got %v", ic.Colors.Crust, gp.CrustColor)
		}
	}
}

func TestCreateRunsAllStages(t *testing.T) {
	sink := newRecordingSink()
	deps := testDeps(3, sink)
	var stages []Stage
	deps.Hook = func(id string, s Stage) {
		if id != "isle" {
			t.Errorf("expected hook id isle, got %s", id)
		}
		stages = append(stages, s)
	}
	p := newTestPipeline(t, "isle", deps)

	if err := p.Create(stats.Food); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []Stage{StageGenerate, StageBuild, StagePopulate, StageEvaluate, StageMorph, StageVisualize}
	if !reflect.DeepEqual(stages, expected) {
		t.Errorf("expected stages %v, got %v", expected, stages)
	}

	gp, _ := p.Params()
	if got, want := p.Mesh().VertexCount(), 4*(gp.VertexCount+1)+3; got != want {
		t.Errorf("expected %d vertices, got %d", want, got)
	}
	if p.LOD() == nil {
		t.Error("expected LOD mesh with default config")
	}
	if len(p.Displacements()) != gp.VertexCount {
		t.Errorf("expected %d displaced seam groups, got %d", gp.VertexCount, len(p.Displacements()))
	}
	if sink.submits["isle"] != 1 {
		t.Errorf("expected one submit, got %d", sink.submits["isle"])
	}
	if sink.affinity != p.Affinity() {
		t.Errorf("expected sink affinity %v, got %v", p.Affinity(), sink.affinity)
	}
	if p.Affinity() == stats.None {
		t.Error("expected a resolved affinity")
	}
}

func TestCreateDeterministic(t *testing.T) {
	a := newTestPipeline(t, "a", testDeps(42, nil))
	b := newTestPipeline(t, "b", testDeps(42, nil))

	if err := a.Create(stats.None); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Create(stats.None); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pa, _ := a.Params()
	pb, _ := b.Params()
	if pa != pb {
		t.Errorf("expected identical params, got %+v and %+v", pa, pb)
	}
	if !reflect.DeepEqual(a.Mesh().Vertices, b.Mesh().Vertices) {
		t.Error("expected identical vertices")
	}
	if !reflect.DeepEqual(a.Placements(), b.Placements()) {
		t.Error("expected identical placements")
	}
	if a.Stats() != b.Stats() {
		t.Errorf("expected identical stats, got %+v and %+v", a.Stats(), b.Stats())
	}
}

func TestCreateWithoutSinkKeepsIsland(t *testing.T) {
	p := newTestPipeline(t, "a", testDeps(5, nil))
	if err := p.Create(stats.None); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Mesh() == nil {
		t.Error("expected mesh to be kept")
	}
}

func TestBuildWithoutParams(t *testing.T) {
	p := newTestPipeline(t, "a", testDeps(1, nil))
	if err := p.Build(); !errors.Is(err, fault.ErrMissingCollaborator) {
		t.Errorf("expected ErrMissingCollaborator, got %v", err)
	}
}

func TestPopulateWithoutMeshIsSkipped(t *testing.T) {
	p := newTestPipeline(t, "a", testDeps(1, nil))
	p.Generate()
	if err := p.Populate(stats.People); err != nil {
		t.Fatalf("expected populate to be skipped, got %v", err)
	}
	if len(p.Placements()) != 0 {
		t.Errorf("expected no placements, got %d", len(p.Placements()))
	}
}

func TestPopulateRejectsEmptyCatalog(t *testing.T) {
	deps := testDeps(1, nil)
	deps.Catalog = populate.Catalog{}
	p := newTestPipeline(t, "a", deps)
	p.Generate()
	if err := p.Build(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Populate(stats.None); !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}

	q := newTestPipeline(t, "b", deps)
	if err := q.Create(stats.None); !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("expected Create to return ErrConfiguration, got %v", err)
	}
}

func TestSubmitCarriesLOD(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{"enabled", true},
		{"disabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := newRecordingSink()
			deps := testDeps(4, sink)
			deps.Config.Island.LOD.Enabled = tt.enabled
			p := newTestPipeline(t, "isle", deps)
			if err := p.Create(stats.None); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			r := sink.rendered
			if r.Mesh != p.Mesh() {
				t.Error("expected the full mesh to be submitted")
			}
			if !tt.enabled {
				if r.LOD != nil {
					t.Errorf("expected no LOD mesh, got %d vertices", r.LOD.VertexCount())
				}
				return
			}
			if r.LOD == nil || r.LOD != p.LOD() {
				t.Fatal("expected the LOD mesh to be submitted")
			}
			if r.LOD.VertexCount() >= r.Mesh.VertexCount() {
				t.Errorf("expected LOD smaller than mesh, got %d and %d", r.LOD.VertexCount(), r.Mesh.VertexCount())
			}
			lc := deps.Config.Island.LOD
			if r.LODSwitch != lc.Switch || r.LODCull != lc.Cull {
				t.Errorf("expected thresholds %v/%v, got %v/%v", lc.Switch, lc.Cull, r.LODSwitch, r.LODCull)
			}
		})
	}
}

func TestPopulateRejectsBadParams(t *testing.T) {
	deps := testDeps(1, nil)
	deps.Config.Population.MaxAttempts = 0
	p := newTestPipeline(t, "a", deps)
	p.Generate()
	if err := p.Build(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Populate(stats.None); !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestClearReleasesMesh(t *testing.T) {
	sink := newRecordingSink()
	p := newTestPipeline(t, "isle", testDeps(9, sink))
	if err := p.Create(stats.None); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Clear()
	if !reflect.DeepEqual(sink.released, []string{"isle"}) {
		t.Errorf("expected release of isle, got %v", sink.released)
	}
	if p.Mesh() != nil || len(p.Placements()) != 0 {
		t.Error("expected mesh and placements to be dropped")
	}
	if p.Stats() != (stats.Stats{}) {
		t.Errorf("expected zero stats, got %+v", p.Stats())
	}

	// A second clear has nothing left to release.
	p.Clear()
	if len(sink.released) != 1 {
		t.Errorf("expected one release, got %d", len(sink.released))
	}

	if err := p.Build(); err != nil {
		t.Fatalf("expected rebuild from kept params, got %v", err)
	}
}

func TestSetTransformResubmits(t *testing.T) {
	sink := newRecordingSink()
	p := newTestPipeline(t, "isle", testDeps(2, sink))
	if err := p.Create(stats.None); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr := IdentityTransform()
	tr.Position = math.Vec3{X: 10, Y: 5}
	p.SetTransform(tr)

	if sink.submits["isle"] != 2 {
		t.Errorf("expected resubmit, got %d submits", sink.submits["isle"])
	}
	if sink.last.Position != tr.Position {
		t.Errorf("expected position %v, got %v", tr.Position, sink.last.Position)
	}
}

func TestExportYAML(t *testing.T) {
	p := newTestPipeline(t, "isle", testDeps(11, nil))
	if err := p.Create(stats.Defense); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := p.Export()
	if s.ID != "isle" || s.Seed != 11 {
		t.Errorf("expected id isle seed 11, got %s %d", s.ID, s.Seed)
	}
	if s.Placements != len(p.Placements()) {
		t.Errorf("expected %d placements, got %d", len(p.Placements()), s.Placements)
	}

	var buf bytes.Buffer
	if err := s.WriteYAML(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{"crust_top_radius:", "vertex_count:", "affinity:", "structures:"} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("expected key %s in %q", key, buf.String())
		}
	}

	back, err := ReadSummary(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != s {
		t.Errorf("expected %+v, got %+v", s, back)
	}
}

func TestRebuildFromSummary(t *testing.T) {
	deps := testDeps(13, nil)
	p := newTestPipeline(t, "cell2/island1", deps)
	if err := p.Create(stats.Food); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := IdentityTransform()
	tr.Position = math.Vec3{X: 4, Y: 8, Z: -2}
	p.SetTransform(tr)

	var buf bytes.Buffer
	if err := p.Export().WriteYAML(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved, err := ReadSummary(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Position != [3]float32{4, 8, -2} {
		t.Errorf("expected position (4,8,-2), got %v", saved.Position)
	}

	q := newTestPipeline(t, saved.ID, testDeps(saved.Seed, nil))
	q.SetParams(saved.Params(deps.Config.Island.Colors))
	if err := q.Run(saved.Affinity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, _ := p.Params()
	got, _ := q.Params()
	if got != want {
		t.Errorf("expected params %+v, got %+v", want, got)
	}
	if q.Mesh().VertexCount() != p.Mesh().VertexCount() || q.Mesh().TriangleCount() != p.Mesh().TriangleCount() {
		t.Errorf("expected rebuilt mesh %d/%d, got %d/%d",
			p.Mesh().VertexCount(), p.Mesh().TriangleCount(), q.Mesh().VertexCount(), q.Mesh().TriangleCount())
	}
}

func TestPacedHook(t *testing.T) {
	if PacedHook(0) != nil {
		t.Error("expected nil hook for zero delay")
	}

	hook := PacedHook(5 * time.Millisecond)
	start := time.Now()
	hook("a", StageBuild)
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("expected at least 5ms pause, got %v", elapsed)
	}
}

func TestTransformApply(t *testing.T) {
	tr := IdentityTransform()
	tr.Position = math.Vec3{X: 1, Y: 2, Z: 3}
	got := tr.Apply(math.Vec3{X: 1})
	if got != (math.Vec3{X: 2, Y: 2, Z: 3}) {
		t.Errorf("expected (2,2,3), got %v", got)
	}
}
