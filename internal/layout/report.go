package layout

import (
	"io"

	"gopkg.in/yaml.v3"
)

// CellReport is a flat, serializable view of one cell.
type CellReport struct {
	Handle   int            `yaml:"handle"`
	Template string         `yaml:"template"`
	Depth    int            `yaml:"depth"`
	State    string         `yaml:"state"`
	Position [3]float32     `yaml:"position,flow"`
	Links    map[string]int `yaml:"links,omitempty"`
	Islands  []IslandReport `yaml:"islands,omitempty"`
}

// IslandReport describes one placed island.
type IslandReport struct {
	ID       string     `yaml:"id"`
	Position [3]float32 `yaml:"position,flow"`
	Radius   float32    `yaml:"radius"`
	Affinity string     `yaml:"affinity"`
}

// Report lists every cell of g in creation order.
func Report(g *Graph) []CellReport {
	reports := make([]CellReport, 0, g.Len())
	for _, c := range g.Cells() {
		r := CellReport{
			Handle:   int(c.Handle),
			Template: c.Template,
			Depth:    c.Depth,
			State:    c.State.String(),
			Position: c.Position.Array(),
		}
		for _, a := range []Anchor{Entry, Exit, Left, Right} {
			h := c.Link(a)
			if h == NoCell {
				continue
			}
			if r.Links == nil {
				r.Links = make(map[string]int)
			}
			r.Links[a.String()] = int(h)
		}
		for _, isl := range c.Islands {
			r.Islands = append(r.Islands, IslandReport{
				ID:       isl.Pipeline.ID(),
				Position: isl.Pipeline.Transform().Position.Array(),
				Radius:   isl.Radius(),
				Affinity: isl.Pipeline.Affinity().String(),
			})
		}
		reports = append(reports, r)
	}
	return reports
}

// WriteReport encodes the report of g as YAML.
func WriteReport(w io.Writer, g *Graph) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Report(g)); err != nil {
		return err
	}
	return enc.Close()
}
