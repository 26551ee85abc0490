package rng

// WeightedTable is a cumulative-weight sampling table. Entries with a
// non-positive weight can never be drawn.
type WeightedTable[T any] struct {
	items   []T
	weights []float32
	total   float32
}

// Add appends an item with the given weight.
func (t *WeightedTable[T]) Add(item T, weight float32) {
	if weight < 0 {
		weight = 0
	}
	t.items = append(t.items, item)
	t.weights = append(t.weights, weight)
	t.total += weight
}

// Len returns the number of entries.
func (t *WeightedTable[T]) Len() int { return len(t.items) }

// Total returns the sum of all weights.
func (t *WeightedTable[T]) Total() float32 { return t.total }

// Pick draws one entry. It consumes exactly one draw from r when the table is
// non-empty, and reports false when the draw lands on no entry.
func (t *WeightedTable[T]) Pick(r *RNG) (T, bool) {
	var zero T
	if len(t.items) == 0 {
		return zero, false
	}

	target := r.Float() * t.total
	var cumulative float32
	for i, w := range t.weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if target <= cumulative {
			return t.items[i], true
		}
	}
	return zero, false
}

// PickOrUniform draws by weight and falls back to a uniform pick when the
// weighted draw lands on nothing.
func (t *WeightedTable[T]) PickOrUniform(r *RNG) (T, bool) {
	if item, ok := t.Pick(r); ok {
		return item, true
	}
	if len(t.items) == 0 {
		var zero T
		return zero, false
	}
	return t.items[r.IntN(len(t.items))], true
}
