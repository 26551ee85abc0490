// Package populate scatters catalog structures over an island surface under
// spacing and slope constraints and feeds their resources into island stats.
package populate

import (
	"fmt"

	"github.com/Faultbox/skyisles/internal/island/fault"
	"github.com/Faultbox/skyisles/internal/island/stats"
)

// Structure is one placeable catalog entry. Its resource values are read-only.
type Structure struct {
	Name   string          `yaml:"name"`
	Values stats.Resources `yaml:",inline"`
}

// Resources implements stats.Source.
func (s Structure) Resources() stats.Resources { return s.Values }

// Catalog is the set of structures an island may be populated with.
type Catalog []Structure

// Validate rejects an empty catalog and entries with negative resources.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fault.Config("catalog", 0, "must contain at least one structure")
	}
	for i, s := range c {
		if s.Name == "" {
			return fault.Config(fmt.Sprintf("catalog[%d].name", i), s.Name, "must not be empty")
		}
		for _, a := range stats.Axes {
			if v := s.Values.Axis(a); v < 0 {
				return fault.Config(fmt.Sprintf("catalog[%d].%s", i, a), v, "must not be negative")
			}
		}
	}
	return nil
}

// DefaultCatalog returns a small catalog covering every resource axis.
func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "hut", Values: stats.Resources{People: 2, Food: 0.5}},
		{Name: "farm", Values: stats.Resources{People: 0.5, Food: 3}},
		{Name: "tower", Values: stats.Resources{People: 0.5, Defense: 3}},
		{Name: "wall", Values: stats.Resources{Defense: 2}},
		{Name: "ruin", Values: stats.Resources{Danger: 2}},
		{Name: "nest", Values: stats.Resources{Danger: 3, Food: 0.5}},
		{Name: "tree", Values: stats.Resources{Food: 1}},
	}
}
