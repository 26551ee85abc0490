package layout

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/skyisles/internal/config"
	"github.com/Faultbox/skyisles/internal/island"
	"github.com/Faultbox/skyisles/internal/island/fault"
	"github.com/Faultbox/skyisles/pkg/math"
	"github.com/Faultbox/skyisles/pkg/noise"
	"github.com/Faultbox/skyisles/pkg/rng"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// CellSink is told about every cell once it is linked, so a viewer can draw
// its bounds. Optional.
type CellSink interface {
	SubmitCell(c *Cell)
}

// Deps holds the collaborators a Generator needs.
type Deps struct {
	Config *config.Config
	RNG    *rng.RNG
	Noise  noise.Field
	Sink   island.Sink
	Cells  CellSink
	Hook   island.StageHook
	Log    *zap.Logger
}

// Generator builds a spiral main chain with side branches.
type Generator struct {
	deps    Deps
	cfg     config.LayoutConfig
	log     *zap.Logger
	graph   *Graph
	history *History

	coil float32 // accumulated coil azimuth, degrees
}

// NewGenerator creates a generator. The config must already be validated.
func NewGenerator(deps Deps) (*Generator, error) {
	switch {
	case deps.Config == nil:
		return nil, fault.Missing("config")
	case deps.RNG == nil:
		return nil, fault.Missing("random source")
	case deps.Noise == nil:
		return nil, fault.Missing("noise field")
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	hc := deps.Config.Layout.History
	return &Generator{
		deps:    deps,
		cfg:     deps.Config.Layout,
		log:     log,
		graph:   NewGraph(),
		history: NewHistory(hc.Bias, hc.Window),
	}, nil
}

// Graph returns the cells built so far.
func (g *Generator) Graph() *Graph { return g.graph }

// History returns the affinity history.
func (g *Generator) History() *History { return g.history }

// Generate lays out repetitions × sequence cells along the spiral. Unknown
// templates are skipped with a warning. Errors are returned only when an
// island pipeline rejects its configuration.
func (g *Generator) Generate() (*Graph, error) {
	prev := NoCell
	since := 0
	every := g.cfg.Branch.Every.Sample(g.deps.RNG)

	for rep := 0; rep < g.cfg.Repetitions; rep++ {
		for _, name := range g.cfg.Sequence {
			t, ok := g.cfg.Template(name)
			if !ok {
				g.log.Warn("cell skipped", zap.Error(fault.Unresolvable("unknown template %q", name)))
				continue
			}

			c := g.graph.Add(t, 0)
			if prevCell := g.graph.Cell(prev); prevCell != nil {
				g.placeSpiral(c, prevCell)
			}
			c.State = Placed

			if err := g.populate(c); err != nil {
				return g.graph, err
			}
			if prev != NoCell {
				if err := g.graph.Link(prev, Exit, c.Handle); err != nil {
					g.log.Warn("link skipped", zap.Error(err))
				}
			}
			g.linked(c)
			prev = c.Handle

			since++
			if since < every {
				continue
			}
			since = 0
			every = g.cfg.Branch.Every.Sample(g.deps.RNG)
			if g.deps.RNG.Chance(g.cfg.Branch.Chance) {
				if err := g.branch(c, 1); err != nil {
					return g.graph, err
				}
			}
		}
	}

	g.log.Info("layout generated",
		zap.Int("cells", g.graph.Len()),
		zap.Int("main", len(g.graph.MainChain())),
		zap.Int("islands", g.islandCount()))
	return g.graph, nil
}

// placeSpiral aligns c's entry with prev's exit, then turns it about that
// point by the accumulated coil and the elevation.
func (g *Generator) placeSpiral(c, prev *Cell) {
	pivot := prev.Anchor(Exit)
	c.Rotation = mgl32.QuatIdent()
	c.Position = pivot.Sub(c.LocalAnchor(Entry))

	sc := g.cfg.Spiral
	elevation := sc.Elevation
	if sc.ElevationJitter > 0 {
		elevation += g.deps.RNG.Range(-sc.ElevationJitter, sc.ElevationJitter)
	}

	coil := mgl32.QuatRotate(mgl32.DegToRad(g.coil), math.Up.Mgl())
	tilt := mgl32.QuatRotate(mgl32.DegToRad(-elevation), prev.RightAxis().Mgl())
	turn := tilt.Mul(coil).Normalize()

	c.Position = c.Position.RotateAround(pivot, turn)
	c.Rotation = turn.Mul(c.Rotation).Normalize()
	g.coil += sc.CoilStep
}

// branch lays out a straight side chain from parent's left or right anchor.
func (g *Generator) branch(parent *Cell, depth int) error {
	bc := g.cfg.Branch
	if depth > bc.MaxDepth || len(g.cfg.Templates) == 0 {
		return nil
	}

	side := Right
	if g.deps.RNG.Chance(0.5) {
		side = Left
	}
	if parent.Link(side) != NoCell {
		g.log.Debug("branch skipped", zap.Int("cell", int(parent.Handle)), zap.Stringer("side", side))
		return nil
	}

	start := parent.Anchor(side)
	forward := start.Sub(parent.Position).Normalize()
	rot := mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, 1}, forward.Mgl())

	length := max(1, int(gomath.Round(float64(bc.Length)*gomath.Pow(float64(bc.ScaleFactor), float64(depth-1)))))
	g.log.Debug("branch started",
		zap.Int("parent", int(parent.Handle)),
		zap.Stringer("side", side),
		zap.Int("depth", depth),
		zap.Int("length", length))

	prev := parent
	linkSide := side
	cursor := start
	for i := 0; i < length; i++ {
		t := g.cfg.Templates[g.deps.RNG.IntN(len(g.cfg.Templates))]
		c := g.graph.Add(t, depth)
		c.Rotation = rot
		c.Position = cursor.Sub(c.LocalAnchor(Entry).Rotate(rot))
		c.State = Placed

		if err := g.populate(c); err != nil {
			return err
		}
		if err := g.graph.Link(prev.Handle, linkSide, c.Handle); err != nil {
			g.log.Warn("link skipped", zap.Error(err))
		}
		g.linked(c)

		cursor = c.Anchor(Exit)
		prev = c
		linkSide = Exit

		if depth < bc.MaxDepth && g.deps.RNG.Chance(bc.SubChance) {
			if err := g.branch(c, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generator) linked(c *Cell) {
	c.State = Linked
	if g.deps.Cells != nil {
		g.deps.Cells.SubmitCell(c)
	}
}

// populate scatters islands in c, runs their pipelines and relaxes them.
func (g *Generator) populate(c *Cell) error {
	t, _ := g.cfg.Template(c.Template)
	count := t.Islands.Sample(g.deps.RNG)

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("cell%d/island%d", c.Handle, i)
		p, err := island.New(id, island.Deps{
			Config: g.deps.Config,
			RNG:    g.deps.RNG,
			Noise:  g.deps.Noise,
			Sink:   g.deps.Sink,
			Hook:   g.deps.Hook,
			Log:    g.log,
		})
		if err != nil {
			return err
		}

		p.Generate()
		local, ok := g.findSpot(c, p.Radius(), p.Height())
		if !ok {
			g.log.Debug("island dropped", zap.Error(fault.Unresolvable("%s: proximity retries exhausted", id)))
			continue
		}

		isl := &Island{Pipeline: p, Local: local, Yaw: g.deps.RNG.Range(0, 2*gomath.Pi)}
		p.SetTransform(c.IslandTransform(isl))

		hint := g.history.Next(g.deps.RNG)
		if err := p.Run(hint); err != nil {
			return err
		}
		g.history.Record(p.Affinity())
		c.Islands = append(c.Islands, isl)
	}
	c.State = Populated

	g.relax(c)
	return nil
}

// findSpot draws cell-local positions until one keeps clear of the cell's
// islands and of every island in other cells.
func (g *Generator) findSpot(c *Cell, radius, height float32) (math.Vec3, bool) {
	r := g.deps.RNG
	sc := g.cfg.Scatter
	for try := 0; try < sc.ProximityRetries; try++ {
		local := math.Vec3{
			X: r.Range(-c.Half.X, c.Half.X),
			Y: r.Range(-c.Half.Y, c.Half.Y),
			Z: r.Range(-c.Half.Z, c.Half.Z),
		}
		if g.crowded(c, local) || g.intrudes(c, c.ToWorld(local), radius, height) {
			continue
		}
		return local, true
	}
	return math.Vec3{}, false
}

func (g *Generator) crowded(c *Cell, local math.Vec3) bool {
	for _, other := range c.Islands {
		if other.Local.Distance(local) < g.cfg.Scatter.IslandSpacing {
			return true
		}
	}
	return false
}

// intrudes reports whether a footprint at world position p overlaps an
// island of another cell both horizontally and vertically.
func (g *Generator) intrudes(c *Cell, p math.Vec3, radius, height float32) bool {
	for _, other := range g.graph.Cells() {
		if other.Handle == c.Handle {
			continue
		}
		for _, isl := range other.Islands {
			q := isl.Pipeline.Transform().Position
			if footprintsOverlap(p, radius, height, q, isl.Radius(), isl.Height()) {
				return true
			}
		}
	}
	return false
}

func footprintsOverlap(a math.Vec3, ra, ha float32, b math.Vec3, rb, hb float32) bool {
	horizontal := a.XZ().Distance(b.XZ()) - (ra + rb)
	vertical := math.Abs(a.Y-b.Y) - (ha+hb)/2
	return horizontal < 0 && vertical < 0
}

func (g *Generator) relax(c *Cell) {
	if len(c.Islands) == 0 {
		return
	}
	bodies := make([]Body, len(c.Islands))
	for i, isl := range c.Islands {
		bodies[i] = Body{Position: isl.Local, Radius: isl.Radius()}
	}

	before := Overlap(bodies)
	Relax(bodies, c.Half, g.deps.Config.Relax)

	for i, isl := range c.Islands {
		isl.Local = bodies[i].Position
		isl.Pipeline.SetTransform(c.IslandTransform(isl))
	}
	g.log.Debug("cell relaxed",
		zap.Int("cell", int(c.Handle)),
		zap.Int("islands", len(c.Islands)),
		zap.Float32("overlap_before", before),
		zap.Float32("overlap_after", Overlap(bodies)))
}

func (g *Generator) islandCount() int {
	n := 0
	for _, c := range g.graph.Cells() {
		n += len(c.Islands)
	}
	return n
}
