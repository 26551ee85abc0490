package island

import (
	"time"

	"github.com/Faultbox/skyisles/internal/island/mesh"
	"github.com/Faultbox/skyisles/internal/island/stats"
	"github.com/Faultbox/skyisles/pkg/math"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places an island in world space.
type Transform struct {
	Position math.Vec3
	Rotation mgl32.Quat
}

// IdentityTransform returns a transform at the origin with no rotation.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

// Apply maps a local point into world space.
func (t Transform) Apply(p math.Vec3) math.Vec3 {
	return p.Rotate(t.Rotation).Add(t.Position)
}

// Renderable is one finished island as handed to a Sink.
type Renderable struct {
	Mesh *mesh.Mesh
	// LOD is the simplified proxy, nil when LOD is disabled. LODSwitch and
	// LODCull are the screen-relative heights below which the proxy replaces
	// Mesh and below which nothing draws.
	LOD       *mesh.Mesh
	LODSwitch float32
	LODCull   float32

	Affinity  stats.Affinity
	Transform Transform
}

// Sink receives finished island meshes for rendering.
type Sink interface {
	Submit(id string, r Renderable)
	Release(id string)
}

// Stage names a point in the island pipeline.
type Stage string

const (
	StageGenerate  Stage = "generate"
	StageBuild     Stage = "build"
	StagePopulate  Stage = "populate"
	StageEvaluate  Stage = "evaluate"
	StageMorph     Stage = "morph"
	StageVisualize Stage = "visualize"
)

// StageHook runs after each pipeline stage. It must not touch the RNG.
type StageHook func(id string, stage Stage)

// PacedHook returns a hook that sleeps between stages.
func PacedHook(delay time.Duration) StageHook {
	if delay <= 0 {
		return nil
	}
	return func(string, Stage) {
		time.Sleep(delay)
	}
}

// Discard is a Sink that drops every mesh.
var Discard Sink = discard{}

type discard struct{}

func (discard) Submit(string, Renderable) {}
func (discard) Release(string)           {}
