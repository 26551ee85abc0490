// Package stats aggregates the gameplay resources of an island, resolves
// conflicts between them and derives the dominant affinity.
package stats

import (
	"fmt"
	"strings"
)

// Affinity is the dominant resource axis of an island.
type Affinity int

const (
	None Affinity = iota
	People
	Defense
	Food
	Danger
)

// Axes lists the resource axes in tie-break order.
var Axes = [...]Affinity{People, Defense, Food, Danger}

var affinityNames = map[Affinity]string{
	None:    "None",
	People:  "People",
	Defense: "Defense",
	Food:    "Food",
	Danger:  "Danger",
}

func (a Affinity) String() string {
	if name, ok := affinityNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Affinity(%d)", int(a))
}

// ParseAffinity converts a name (case-insensitive) into an Affinity.
// An empty string parses as None.
func ParseAffinity(s string) (Affinity, error) {
	if s == "" {
		return None, nil
	}
	for a, name := range affinityNames {
		if strings.EqualFold(name, s) {
			return a, nil
		}
	}
	return None, fmt.Errorf("unknown affinity %q", s)
}

// MarshalText implements encoding.TextMarshaler so affinities read well in YAML and JSON.
func (a Affinity) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Affinity) UnmarshalText(text []byte) error {
	v, err := ParseAffinity(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Resources holds one value per resource axis.
type Resources struct {
	People  float32 `yaml:"people" json:"people"`
	Defense float32 `yaml:"defense" json:"defense"`
	Food    float32 `yaml:"food" json:"food"`
	Danger  float32 `yaml:"danger" json:"danger"`
}

// Axis returns the value on axis a. None yields 0.
func (r Resources) Axis(a Affinity) float32 {
	switch a {
	case People:
		return r.People
	case Defense:
		return r.Defense
	case Food:
		return r.Food
	case Danger:
		return r.Danger
	}
	return 0
}

// Source is anything that declares resource values, such as a catalog structure.
type Source interface {
	Resources() Resources
}

// Stats accumulates resources over one generation cycle. Values never go negative.
type Stats struct {
	Resources `yaml:",inline"`
	Affinity  Affinity `yaml:"affinity"`
}

// AddFromStructure adds the source's resources scaled by scale.
func (s *Stats) AddFromStructure(src Source, scale float32) {
	r := src.Resources()
	s.People = nonNegative(s.People + r.People*scale)
	s.Defense = nonNegative(s.Defense + r.Defense*scale)
	s.Food = nonNegative(s.Food + r.Food*scale)
	s.Danger = nonNegative(s.Danger + r.Danger*scale)
}

// RemoveFromStructure subtracts the source's unscaled resources.
func (s *Stats) RemoveFromStructure(src Source) {
	r := src.Resources()
	s.People = nonNegative(s.People - r.People)
	s.Defense = nonNegative(s.Defense - r.Defense)
	s.Food = nonNegative(s.Food - r.Food)
	s.Danger = nonNegative(s.Danger - r.Danger)
}

// ResolveConflicts applies one pass of resource interactions. Each step reads
// the values left by the previous one.
func (s *Stats) ResolveConflicts() {
	s.People = nonNegative(s.People - 0.5*s.Danger)
	s.Food = nonNegative(s.Food - 0.3*s.People)
	s.Danger = nonNegative(s.Danger - 0.6*s.Defense)
	s.Defense = nonNegative(s.Defense - 0.3*s.Food)
}

// CalculateAffinity stores and returns the axis with the largest value. Ties
// go to the earlier axis in People, Defense, Food, Danger order, so an island
// with no resources is People.
func (s *Stats) CalculateAffinity() Affinity {
	best := People
	bestValue := s.People
	for _, a := range Axes[1:] {
		if v := s.Axis(a); v > bestValue {
			best, bestValue = a, v
		}
	}
	s.Affinity = best
	return best
}

// Reset zeroes every value.
func (s *Stats) Reset() {
	*s = Stats{}
}

func nonNegative(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}
