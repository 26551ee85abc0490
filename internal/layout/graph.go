package layout

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skyisles/internal/config"
)

var (
	// ErrCycle is returned when a link would point back to an ancestor.
	ErrCycle = errors.New("link would create a cycle")

	// ErrLinked is returned when a link slot or a parent slot is already taken.
	ErrLinked = errors.New("cell already linked")
)

// Graph is an arena of cells. Links between cells are handles, never pointers.
type Graph struct {
	cells []*Cell
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add creates an unplaced cell from a template.
func (g *Graph) Add(t config.TemplateConfig, depth int) *Cell {
	c := newCell(Handle(len(g.cells)), t, depth)
	g.cells = append(g.cells, c)
	return c
}

// Cell returns the cell for h, or nil for NoCell and unknown handles.
func (g *Graph) Cell(h Handle) *Cell {
	if h < 0 || int(h) >= len(g.cells) {
		return nil
	}
	return g.cells[h]
}

// Len returns the number of cells.
func (g *Graph) Len() int { return len(g.cells) }

// Cells returns every cell in creation order.
func (g *Graph) Cells() []*Cell { return g.cells }

// MainChain returns the depth-0 cells from the first cell along Next links.
func (g *Graph) MainChain() []*Cell {
	var chain []*Cell
	for _, c := range g.cells {
		if c.Depth == 0 && c.Previous == NoCell {
			for cur := c; cur != nil; cur = g.Cell(cur.Next) {
				chain = append(chain, cur)
			}
			break
		}
	}
	return chain
}

// IsAncestor reports whether a is h or is reachable from h through Previous links.
func (g *Graph) IsAncestor(a, h Handle) bool {
	for cur := g.Cell(h); cur != nil; cur = g.Cell(cur.Previous) {
		if cur.Handle == a {
			return true
		}
	}
	return false
}

// Link attaches child to parent through the parent's exit, left or right
// anchor. The child's Previous link points back to parent.
func (g *Graph) Link(parent Handle, side Anchor, child Handle) error {
	p, c := g.Cell(parent), g.Cell(child)
	if p == nil || c == nil {
		return fmt.Errorf("link %d -> %d: unknown cell", parent, child)
	}
	if side == Entry {
		return fmt.Errorf("link %d -> %d: cannot link through the entry anchor", parent, child)
	}
	if g.IsAncestor(child, parent) {
		return fmt.Errorf("link %d -> %d: %w", parent, child, ErrCycle)
	}
	if p.Link(side) != NoCell || c.Previous != NoCell {
		return fmt.Errorf("link %d -> %d: %w", parent, child, ErrLinked)
	}

	switch side {
	case Exit:
		p.Next = child
	case Left:
		p.Left = child
	case Right:
		p.Right = child
	}
	c.Previous = parent
	return nil
}
