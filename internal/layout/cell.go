// Package layout arranges islands into linked cells: a helical main chain
// with randomized side branches, each cell relaxed so its islands do not
// overlap.
package layout

import (
	"github.com/Faultbox/skyisles/internal/config"
	"github.com/Faultbox/skyisles/internal/island"
	"github.com/Faultbox/skyisles/pkg/math"
	"github.com/go-gl/mathgl/mgl32"
)

// Handle addresses a cell in a Graph.
type Handle int

// NoCell is the handle of a missing link.
const NoCell Handle = -1

// State tracks how far a cell has progressed.
type State int

const (
	Unplaced State = iota
	Placed
	Populated
	Linked
)

func (s State) String() string {
	switch s {
	case Placed:
		return "Placed"
	case Populated:
		return "Populated"
	case Linked:
		return "Linked"
	default:
		return "Unplaced"
	}
}

// Anchor names a connection point on a cell face.
type Anchor int

const (
	Entry Anchor = iota
	Exit
	Left
	Right
)

func (a Anchor) String() string {
	switch a {
	case Exit:
		return "exit"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "entry"
	}
}

// Island is one island owned by a cell.
type Island struct {
	Pipeline *island.Pipeline
	Local    math.Vec3 // cell-local position
	Yaw      float32   // radians about the cell's up axis
}

// Radius returns the island's crust radius.
func (i *Island) Radius() float32 { return i.Pipeline.Radius() }

// Height returns the island's full height.
func (i *Island) Height() float32 { return i.Pipeline.Height() }

// Cell is a bounded region that owns islands and exposes four anchors.
type Cell struct {
	Handle   Handle
	Template string
	Half     math.Vec3 // half width (X), half height (Y), half length (Z)
	Depth    int       // 0 on the main chain

	Position math.Vec3
	Rotation mgl32.Quat

	Previous Handle
	Next     Handle
	Left     Handle
	Right    Handle

	State   State
	Islands []*Island
}

func newCell(h Handle, t config.TemplateConfig, depth int) *Cell {
	return &Cell{
		Handle:   h,
		Template: t.Name,
		Half:     math.Vec3{X: t.HalfWidth, Y: t.HalfHeight, Z: t.HalfLength},
		Depth:    depth,
		Rotation: mgl32.QuatIdent(),
		Previous: NoCell,
		Next:     NoCell,
		Left:     NoCell,
		Right:    NoCell,
	}
}

// LocalAnchor returns the anchor position relative to the cell center.
func (c *Cell) LocalAnchor(a Anchor) math.Vec3 {
	switch a {
	case Exit:
		return math.Vec3{Z: c.Half.Z}
	case Left:
		return math.Vec3{X: -c.Half.X}
	case Right:
		return math.Vec3{X: c.Half.X}
	default:
		return math.Vec3{Z: -c.Half.Z}
	}
}

// Anchor returns the anchor position in world space.
func (c *Cell) Anchor(a Anchor) math.Vec3 {
	return c.ToWorld(c.LocalAnchor(a))
}

// ToWorld maps a cell-local point into world space.
func (c *Cell) ToWorld(p math.Vec3) math.Vec3 {
	return p.Rotate(c.Rotation).Add(c.Position)
}

// RightAxis returns the cell's local +X axis in world space.
func (c *Cell) RightAxis() math.Vec3 {
	return math.Vec3{X: 1}.Rotate(c.Rotation)
}

// Link returns the handle stored for the given anchor side.
func (c *Cell) Link(a Anchor) Handle {
	switch a {
	case Exit:
		return c.Next
	case Left:
		return c.Left
	case Right:
		return c.Right
	default:
		return c.Previous
	}
}

// IslandTransform returns the world transform of an island in this cell.
func (c *Cell) IslandTransform(i *Island) island.Transform {
	return island.Transform{
		Position: c.ToWorld(i.Local),
		Rotation: c.Rotation.Mul(mgl32.QuatRotate(i.Yaw, math.Up.Mgl())).Normalize(),
	}
}
