package island

import (
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/skyisles/internal/config"
	"github.com/Faultbox/skyisles/internal/island/mesh"
	"github.com/Faultbox/skyisles/internal/island/stats"
	"gopkg.in/yaml.v3"
)

// Summary is a flat record of one island's params and population, for
// debugging and saved runs.
//
// Seed is the seed of the whole run. Inside a layout every island draws from
// the same stream, so Seed alone reproduces the island only together with ID
// and Position; the shape params are recorded so Params can rebuild it.
type Summary struct {
	ID       string     `yaml:"id"`
	Seed     int64      `yaml:"seed"`
	Position [3]float32 `yaml:"position,flow"`

	CrustBottomRadius float32 `yaml:"crust_bottom_radius"`
	CrustTopRadius    float32 `yaml:"crust_top_radius"`
	CrustHeight       float32 `yaml:"crust_height"`
	BaseHeight        float32 `yaml:"base_height"`
	VertexCount       int     `yaml:"vertex_count"`
	NoiseIntensity    float32 `yaml:"noise_intensity"`
	InnerRingY        float32 `yaml:"inner_ring_y"`
	InnerRingScale    float32 `yaml:"inner_ring_scale"`

	Vertices   int    `yaml:"vertices"`
	Triangles  int    `yaml:"triangles"`
	Placements int    `yaml:"placements"`
	Structures string `yaml:"structures"`

	People   float32        `yaml:"people"`
	Defense  float32        `yaml:"defense"`
	Food     float32        `yaml:"food"`
	Danger   float32        `yaml:"danger"`
	Affinity stats.Affinity `yaml:"affinity"`
	Traits   string         `yaml:"traits"`
	Balance  float32        `yaml:"balance"`
}

// Export captures the island's current state.
func (p *Pipeline) Export() Summary {
	s := Summary{
		ID:         p.id,
		Seed:       p.deps.RNG.Seed(),
		Position:   p.transform.Position.Array(),
		Placements: len(p.placements),
		People:     p.stats.People,
		Defense:    p.stats.Defense,
		Food:       p.stats.Food,
		Danger:     p.stats.Danger,
		Affinity:   p.stats.Affinity,
	}
	if p.hasParams {
		s.CrustBottomRadius = p.params.CrustBottomRadius
		s.CrustTopRadius = p.params.CrustTopRadius
		s.CrustHeight = p.params.CrustHeight
		s.BaseHeight = p.params.BaseHeight
		s.VertexCount = p.params.VertexCount
		s.NoiseIntensity = p.params.NoiseIntensity
		s.InnerRingY = p.params.InnerRingY
		s.InnerRingScale = p.params.InnerRingScale
	}
	if p.mesh != nil {
		s.Vertices = p.mesh.VertexCount()
		s.Triangles = p.mesh.TriangleCount()
	}

	counts := make(map[string]int)
	var order []string
	for _, pl := range p.placements {
		if counts[pl.Structure.Name] == 0 {
			order = append(order, pl.Structure.Name)
		}
		counts[pl.Structure.Name]++
	}
	parts := make([]string, len(order))
	for i, name := range order {
		parts[i] = fmt.Sprintf("%s=%d", name, counts[name])
	}
	s.Structures = strings.Join(parts, ",")

	eval := p.Evaluate()
	s.Traits = strings.Join(eval.Traits, ",")
	s.Balance = eval.Balance
	return s
}

// Params returns the recorded shape params with the given colors. Colors are
// not part of the summary.
func (s Summary) Params(colors config.ColorsConfig) mesh.GenerationParams {
	return mesh.GenerationParams{
		CrustBottomRadius: s.CrustBottomRadius,
		CrustTopRadius:    s.CrustTopRadius,
		CrustHeight:       s.CrustHeight,
		BaseHeight:        s.BaseHeight,
		VertexCount:       s.VertexCount,
		NoiseIntensity:    s.NoiseIntensity,
		InnerRingY:        s.InnerRingY,
		InnerRingScale:    s.InnerRingScale,
		CrustColor:        colors.Crust,
		BaseColor:         colors.Base,
		IntermediateColor: colors.Intermediate,
		BottomColor:       colors.Bottom,
	}
}

// WriteYAML encodes the summary as a YAML document.
func (s Summary) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return enc.Close()
}

// ReadSummary decodes a summary written by WriteYAML.
func ReadSummary(r io.Reader) (Summary, error) {
	var s Summary
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return Summary{}, fmt.Errorf("decoding summary: %w", err)
	}
	return s, nil
}
