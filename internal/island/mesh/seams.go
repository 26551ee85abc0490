package mesh

// SeamMap maps each vertex to the group of vertices that share its ring
// position. The top ring appears twice (side walls and cap) and each ring
// repeats its first vertex at the end, so one ring position can own up to four
// vertices. Only top-ring and cap-ring vertices belong to a group.
type SeamMap struct {
	group   []int32 // vertex index -> group id, -1 if not deformable
	members [][]int // group id -> vertex indices
}

// newSeamMap groups the top ring (starting at 0) with the cap ring.
func newSeamMap(vertexCount int, l Layout) SeamMap {
	s := SeamMap{
		group:   make([]int32, vertexCount),
		members: make([][]int, l.Segments),
	}
	for i := range s.group {
		s.group[i] = -1
	}

	for i := 0; i < l.RingSize; i++ {
		g := i % l.Segments // wrap duplicate joins group 0
		s.group[i] = int32(g)
		s.group[l.CapRingStart+i] = int32(g)
		s.members[g] = append(s.members[g], i, l.CapRingStart+i)
	}
	return s
}

// Group returns the group id of vertex idx, or -1.
func (s SeamMap) Group(idx int) int {
	if idx < 0 || idx >= len(s.group) {
		return -1
	}
	return int(s.group[idx])
}

// Duplicates returns every vertex sharing idx's ring position, idx included.
// Returns nil for vertices outside the deformable rings.
func (s SeamMap) Duplicates(idx int) []int {
	g := s.Group(idx)
	if g < 0 {
		return nil
	}
	return s.members[g]
}

// Groups returns the number of unique ring positions.
func (s SeamMap) Groups() int { return len(s.members) }

func (s SeamMap) clone() SeamMap {
	c := SeamMap{
		group:   append([]int32(nil), s.group...),
		members: make([][]int, len(s.members)),
	}
	for i, m := range s.members {
		c.members[i] = append([]int(nil), m...)
	}
	return c
}
