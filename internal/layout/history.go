package layout

import (
	"github.com/Faultbox/skyisles/internal/island/stats"
	"github.com/Faultbox/skyisles/pkg/rng"
)

// History remembers resolved island affinities and biases the next hint
// towards what recently appeared.
type History struct {
	bias   float32
	window int
	seen   []stats.Affinity
}

// NewHistory creates a history. A zero window disables the bias.
func NewHistory(bias float32, window int) *History {
	return &History{bias: bias, window: window}
}

// Record appends a resolved affinity.
func (h *History) Record(a stats.Affinity) {
	if a == stats.None {
		return
	}
	h.seen = append(h.seen, a)
}

// Recent returns the affinities inside the window, oldest first.
func (h *History) Recent() []stats.Affinity {
	if h.window <= 0 {
		return nil
	}
	return h.seen[max(0, len(h.seen)-h.window):]
}

// Table builds the weighted hint table: 1 + bias per recent occurrence.
func (h *History) Table() *rng.WeightedTable[stats.Affinity] {
	counts := make(map[stats.Affinity]int)
	for _, a := range h.Recent() {
		counts[a]++
	}
	t := &rng.WeightedTable[stats.Affinity]{}
	for _, a := range stats.Axes {
		t.Add(a, 1+h.bias*float32(counts[a]))
	}
	return t
}

// Next draws the next affinity hint.
func (h *History) Next(r *rng.RNG) stats.Affinity {
	a, ok := h.Table().PickOrUniform(r)
	if !ok {
		return stats.None
	}
	return a
}
