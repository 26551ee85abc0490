// Package island runs the per-island generation pipeline: sample shape
// params, build the mesh, populate it, derive stats, morph and tint.
package island

import (
	"fmt"

	"github.com/Faultbox/skyisles/internal/config"
	"github.com/Faultbox/skyisles/internal/island/fault"
	"github.com/Faultbox/skyisles/internal/island/mesh"
	"github.com/Faultbox/skyisles/internal/island/morph"
	"github.com/Faultbox/skyisles/internal/island/populate"
	"github.com/Faultbox/skyisles/internal/island/stats"
	"github.com/Faultbox/skyisles/internal/island/visual"
	"github.com/Faultbox/skyisles/internal/picking"
	"github.com/Faultbox/skyisles/pkg/math"
	"github.com/Faultbox/skyisles/pkg/noise"
	"github.com/Faultbox/skyisles/pkg/rng"
	"go.uber.org/zap"
)

// Deps holds the collaborators a pipeline needs. Sink, Hook and Log are optional.
type Deps struct {
	Config  *config.Config
	Catalog populate.Catalog
	RNG     *rng.RNG
	Noise   noise.Field
	Sink    Sink
	Hook    StageHook
	Log     *zap.Logger
}

// Pipeline owns one island from params to finished mesh.
type Pipeline struct {
	id   string
	deps Deps
	log  *zap.Logger

	transform Transform

	params     mesh.GenerationParams
	hasParams  bool
	mesh       *mesh.Mesh
	lod        *mesh.Mesh
	surface    *picking.MeshSurface
	placements []populate.Placement
	stats      stats.Stats
	morphed    []morph.Displacement
	submitted  bool
}

// New creates a pipeline for the island with the given id.
func New(id string, deps Deps) (*Pipeline, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("island %s: %w", id, fault.Missing("config"))
	}
	if deps.RNG == nil {
		return nil, fmt.Errorf("island %s: %w", id, fault.Missing("random source"))
	}
	if deps.Noise == nil {
		return nil, fmt.Errorf("island %s: %w", id, fault.Missing("noise field"))
	}
	if deps.Catalog == nil {
		deps.Catalog = deps.Config.Catalog
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		id:        id,
		deps:      deps,
		log:       log.With(zap.String("island", id)),
		transform: IdentityTransform(),
	}, nil
}

// ID returns the island id.
func (p *Pipeline) ID() string { return p.id }

// Params returns the sampled generation params and whether Generate has run.
func (p *Pipeline) Params() (mesh.GenerationParams, bool) { return p.params, p.hasParams }

// Mesh returns the built mesh, or nil.
func (p *Pipeline) Mesh() *mesh.Mesh { return p.mesh }

// LOD returns the simplified mesh, or nil when LOD is disabled.
func (p *Pipeline) LOD() *mesh.Mesh { return p.lod }

// Placements returns the accepted structures.
func (p *Pipeline) Placements() []populate.Placement { return p.placements }

// Stats returns the current resource totals.
func (p *Pipeline) Stats() stats.Stats { return p.stats }

// Displacements returns the morph offsets applied by the last Create.
func (p *Pipeline) Displacements() []morph.Displacement { return p.morphed }

// Transform returns the island's world transform.
func (p *Pipeline) Transform() Transform { return p.transform }

// SetTransform places the island. A submitted mesh is resubmitted.
func (p *Pipeline) SetTransform(t Transform) {
	p.transform = t
	if p.submitted {
		p.submit()
	}
}

// Radius returns the widest crust radius, or zero before Generate.
func (p *Pipeline) Radius() float32 {
	if !p.hasParams {
		return 0
	}
	return p.params.Radius()
}

// Height returns the apex-to-crust height, or zero before Generate.
func (p *Pipeline) Height() float32 {
	if !p.hasParams {
		return 0
	}
	return p.params.Height()
}

// Generate samples new generation params. Any previous mesh is released.
func (p *Pipeline) Generate() {
	p.Clear()

	ic := p.deps.Config.Island
	r := p.deps.RNG

	// Draw order is part of the reproducibility contract.
	depth := ic.InnerRingDepth.Sample(r)
	baseHeight := ic.BaseHeight.Sample(r)
	p.params = mesh.GenerationParams{
		CrustBottomRadius: ic.CrustBottomRadius.Sample(r),
		BaseHeight:        baseHeight,
		CrustTopRadius:    ic.CrustTopRadius.Sample(r),
		CrustHeight:       ic.CrustHeight.Sample(r),
		VertexCount:       ic.VertexCount.Sample(r),
		NoiseIntensity:    ic.NoiseIntensity.Sample(r),
		InnerRingY:        math.Lerp(0, -baseHeight, depth),
		InnerRingScale:    ic.InnerRingScale.Sample(r),
		CrustColor:        ic.Colors.Crust,
		BaseColor:         ic.Colors.Base,
		IntermediateColor: ic.Colors.Intermediate,
		BottomColor:       ic.Colors.Bottom,
	}
	p.hasParams = true

	p.log.Debug("params generated",
		zap.Float32("radius", p.params.Radius()),
		zap.Float32("height", p.params.Height()),
		zap.Int("vertices", p.params.VertexCount))
}

// SetParams replaces the generation params without drawing from the RNG.
func (p *Pipeline) SetParams(gp mesh.GenerationParams) {
	p.Clear()
	p.params = gp
	p.hasParams = true
}

// Build builds the mesh, the LOD proxy and the ground surface from the
// current params. Placements and stats from an older mesh are dropped.
func (p *Pipeline) Build() error {
	if !p.hasParams {
		return fmt.Errorf("island %s: build: %w", p.id, fault.Missing("generation params"))
	}

	m, err := mesh.Build(p.params, p.deps.Noise)
	if err != nil {
		return fmt.Errorf("island %s: build: %w", p.id, err)
	}

	var lod *mesh.Mesh
	if p.deps.Config.Island.LOD.Enabled {
		lod, err = mesh.BuildLOD(p.params)
		if err != nil {
			return fmt.Errorf("island %s: build lod: %w", p.id, err)
		}
	}

	p.release()
	p.mesh = m
	p.lod = lod
	p.surface = picking.NewMeshSurface(m)
	p.placements = nil
	p.morphed = nil
	p.stats.Reset()

	p.log.Debug("mesh built",
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()))
	return nil
}

// Populate scatters catalog structures over the built mesh. Without a mesh
// population is skipped with a warning and nil is returned. An empty or
// invalid catalog is returned as a configuration error.
func (p *Pipeline) Populate(hint stats.Affinity) error {
	if p.mesh == nil {
		p.log.Warn("populate skipped", zap.Error(fault.Missing("mesh")))
		return nil
	}
	if err := p.deps.Catalog.Validate(); err != nil {
		return fmt.Errorf("island %s: populate: %w", p.id, err)
	}

	pc := p.deps.Config.Population
	params := populate.Params{
		MinSpacing:            pc.Spacing.Min,
		MaxSpacing:            pc.Spacing.Max,
		Count:                 pc.Objects.Sample(p.deps.RNG),
		MaxAttempts:           pc.MaxAttempts,
		MaxSlopeAngle:         pc.MaxSlopeAngle,
		MaxDistanceFromCenter: pc.MaxDistanceFromCenter,
		Affinity:              hint,
		RaycastHeight:         pc.RaycastHeight,
	}

	p.stats.Reset()
	populator := populate.NewPopulator(p.deps.RNG, p.log)
	placements, err := populator.Populate(p.params, params, p.deps.Catalog, &p.stats, p.surface)
	if err != nil {
		return fmt.Errorf("island %s: populate: %w", p.id, err)
	}
	p.placements = placements

	p.log.Debug("island populated",
		zap.Stringer("hint", hint),
		zap.Int("requested", params.Count),
		zap.Int("placed", len(placements)))
	return nil
}

// Clear releases the mesh from the sink and drops placements and stats.
// Params are kept so Build can run again.
func (p *Pipeline) Clear() {
	p.release()
	p.mesh = nil
	p.lod = nil
	p.surface = nil
	p.placements = nil
	p.morphed = nil
	p.stats.Reset()
}

// Create runs every stage: generate, build, populate, resolve, evaluate,
// morph, visualize and submit.
func (p *Pipeline) Create(hint stats.Affinity) error {
	p.Generate()
	p.stage(StageGenerate)
	return p.Run(hint)
}

// Run is Create without Generate: it finishes the island from the current
// params. Callers that need the island size before building use it.
func (p *Pipeline) Run(hint stats.Affinity) error {
	if err := p.Build(); err != nil {
		return err
	}
	p.stage(StageBuild)

	if err := p.Populate(hint); err != nil {
		return err
	}
	p.stage(StagePopulate)

	p.stats.ResolveConflicts()
	p.stats.CalculateAffinity()
	p.stage(StageEvaluate)

	offsets, err := morph.Apply(p.mesh, p.stats, p.deps.Noise)
	if err != nil {
		return fmt.Errorf("island %s: morph: %w", p.id, err)
	}
	p.morphed = offsets
	p.stage(StageMorph)

	if p.deps.Sink == nil {
		p.log.Warn("visualize skipped", zap.Error(fault.Missing("mesh sink")))
		return nil
	}
	visual.Tint(p.mesh, p.stats)
	visual.Tint(p.lod, p.stats)
	p.submit()
	p.stage(StageVisualize)

	p.log.Debug("island created",
		zap.Stringer("affinity", p.stats.Affinity),
		zap.Int("placements", len(p.placements)))
	return nil
}

// Evaluate classifies the island from its current stats.
func (p *Pipeline) Evaluate() stats.Evaluation {
	return stats.Evaluate(p.stats)
}

// Affinity returns the island's dominant affinity.
func (p *Pipeline) Affinity() stats.Affinity { return p.stats.Affinity }

func (p *Pipeline) stage(s Stage) {
	if p.deps.Hook != nil {
		p.deps.Hook(p.id, s)
	}
}

func (p *Pipeline) submit() {
	if p.deps.Sink == nil || p.mesh == nil {
		return
	}
	r := Renderable{
		Mesh:      p.mesh,
		Affinity:  p.stats.Affinity,
		Transform: p.transform,
	}
	if p.lod != nil {
		lc := p.deps.Config.Island.LOD
		r.LOD, r.LODSwitch, r.LODCull = p.lod, lc.Switch, lc.Cull
	}
	p.deps.Sink.Submit(p.id, r)
	p.submitted = true
}

func (p *Pipeline) release() {
	if p.submitted && p.deps.Sink != nil {
		p.deps.Sink.Release(p.id)
	}
	p.submitted = false
}
