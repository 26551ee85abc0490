package preview

import (
	"github.com/Faultbox/skyisles/internal/debug"
	"github.com/Faultbox/skyisles/internal/island"
	"github.com/Faultbox/skyisles/internal/island/mesh"
	"github.com/Faultbox/skyisles/internal/layout"
)

// Message types sent to websocket clients.
const (
	TypeScene   = "scene"
	TypeIsland  = "island"
	TypeRelease = "release"
	TypeCell    = "cell"
)

// IslandData is one submitted island mesh in world placement.
type IslandData struct {
	ID        string       `json:"id"`
	Vertices  [][3]float32 `json:"vertices"`
	Indices   []uint32     `json:"indices"`
	Colors    [][4]float32 `json:"colors"`
	Affinity  string       `json:"affinity"`
	Position  [3]float32   `json:"position"`
	Rotation  [4]float32   `json:"rotation"` // x, y, z, w
	Wireframe []float32    `json:"wireframe"`
	LOD       *LODData     `json:"lod,omitempty"`
}

// LODData is the simplified proxy of an island and its screen-height thresholds.
type LODData struct {
	Vertices [][3]float32 `json:"vertices"`
	Indices  []uint32     `json:"indices"`
	Colors   [][4]float32 `json:"colors"`
	Switch   float32      `json:"switch"`
	Cull     float32      `json:"cull"`
}

// CellData is one layout cell's debug geometry.
type CellData struct {
	Handle    int                   `json:"handle"`
	Template  string                `json:"template"`
	Depth     int                   `json:"depth"`
	Wireframe []float32             `json:"wireframe"`
	Anchors   map[string][3]float32 `json:"anchors"`
}

// Scene is the full snapshot served by /scene and sent on connect.
type Scene struct {
	Islands []IslandData `json:"islands"`
	Cells   []CellData   `json:"cells"`
}

// Message is the websocket envelope.
type Message struct {
	Type   string      `json:"type"`
	Scene  *Scene      `json:"scene,omitempty"`
	Island *IslandData `json:"island,omitempty"`
	Cell   *CellData   `json:"cell,omitempty"`
	ID     string      `json:"id,omitempty"`
}

func newIslandData(id string, r island.Renderable) IslandData {
	m, t := r.Mesh, r.Transform
	vertices, indices, colors := meshArrays(m)
	d := IslandData{
		ID:        id,
		Vertices:  vertices,
		Indices:   indices,
		Colors:    colors,
		Affinity:  r.Affinity.String(),
		Position:  t.Position.Array(),
		Rotation:  [4]float32{t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2], t.Rotation.W},
		Wireframe: debug.BoundsWireframe(m.Bounds.Min, m.Bounds.Max, debug.DefaultBoundsPadding, t.Position, t.Rotation),
	}
	if r.LOD != nil {
		lv, li, lc := meshArrays(r.LOD)
		d.LOD = &LODData{
			Vertices: lv,
			Indices:  li,
			Colors:   lc,
			Switch:   r.LODSwitch,
			Cull:     r.LODCull,
		}
	}
	return d
}

// meshArrays copies the buffers a viewer needs out of m.
func meshArrays(m *mesh.Mesh) ([][3]float32, []uint32, [][4]float32) {
	vertices := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		vertices[i] = v.Array()
	}
	colors := make([][4]float32, len(m.Colors))
	for i, c := range m.Colors {
		colors[i] = c
	}
	return vertices, append([]uint32(nil), m.Triangles...), colors
}

func newCellData(c *layout.Cell) CellData {
	anchors := make(map[string][3]float32, 4)
	for _, a := range []layout.Anchor{layout.Entry, layout.Exit, layout.Left, layout.Right} {
		anchors[a.String()] = c.Anchor(a).Array()
	}
	return CellData{
		Handle:    int(c.Handle),
		Template:  c.Template,
		Depth:     c.Depth,
		Wireframe: debug.BoxWireframe(c.Position, c.Half, c.Rotation),
		Anchors:   anchors,
	}
}
