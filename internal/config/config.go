// Package config handles generator configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/skyisles/internal/island/mesh"
	"github.com/Faultbox/skyisles/internal/island/populate"
	"github.com/Faultbox/skyisles/pkg/rng"
)

// Config holds all generator settings.
type Config struct {
	Seed       int64            `yaml:"seed"`
	Island     IslandConfig     `yaml:"island"`
	Noise      NoiseConfig      `yaml:"noise"`
	Population PopulationConfig `yaml:"population"`
	Catalog    populate.Catalog `yaml:"catalog"`
	Layout     LayoutConfig     `yaml:"layout"`
	Relax      RelaxConfig      `yaml:"relax"`
	Preview    PreviewConfig    `yaml:"preview"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// FloatRange is a [Min, Max) range sampled uniformly.
type FloatRange struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

// Sample draws one value from r. An empty range yields Min.
func (fr FloatRange) Sample(r *rng.RNG) float32 {
	return r.Range(fr.Min, fr.Max)
}

// IntRange is a half-open [Min, Max) range sampled uniformly.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Sample draws one value from r. An empty range yields Min.
func (ir IntRange) Sample(r *rng.RNG) int {
	return r.IntRange(ir.Min, ir.Max)
}

// IslandConfig holds the ranges island shapes are sampled from.
type IslandConfig struct {
	CrustBottomRadius FloatRange   `yaml:"crust_bottom_radius"`
	CrustTopRadius    FloatRange   `yaml:"crust_top_radius"`
	CrustHeight       FloatRange   `yaml:"crust_height"`
	BaseHeight        FloatRange   `yaml:"base_height"`
	InnerRingScale    FloatRange   `yaml:"inner_ring_scale"`
	InnerRingDepth    FloatRange   `yaml:"inner_ring_depth"` // fraction of base height
	VertexCount       IntRange     `yaml:"vertex_count"`
	NoiseIntensity    FloatRange   `yaml:"noise_intensity"`
	Colors            ColorsConfig `yaml:"colors"`
	LOD               LODConfig    `yaml:"lod"`
}

// LODConfig controls the simplified proxy mesh. Thresholds are screen-relative
// heights: below Switch the proxy replaces the full mesh, below Cull nothing draws.
type LODConfig struct {
	Enabled bool    `yaml:"enabled"`
	Switch  float32 `yaml:"switch"`
	Cull    float32 `yaml:"cull"`
}

// ColorsConfig holds the RGBA gradient stops of the island mesh.
type ColorsConfig struct {
	Crust        mesh.Color `yaml:"crust"`
	Base         mesh.Color `yaml:"base"`
	Intermediate mesh.Color `yaml:"intermediate"`
	Bottom       mesh.Color `yaml:"bottom"`
}

// NoiseConfig holds displacement noise settings.
type NoiseConfig struct {
	Octaves     int     `yaml:"octaves"`
	Persistence float32 `yaml:"persistence"`
	Lacunarity  float32 `yaml:"lacunarity"`
}

// PopulationConfig holds structure scattering settings.
type PopulationConfig struct {
	Spacing               FloatRange `yaml:"spacing"`
	Objects               IntRange   `yaml:"objects"`
	MaxAttempts           int        `yaml:"max_attempts"`
	MaxSlopeAngle         float32    `yaml:"max_slope_angle"`
	MaxDistanceFromCenter float32    `yaml:"max_distance_from_center"`
	RaycastHeight         float32    `yaml:"raycast_height"`
}

// LayoutConfig holds cell templates and chain generation settings.
type LayoutConfig struct {
	Templates   []TemplateConfig `yaml:"templates"`
	Sequence    []string         `yaml:"sequence"`
	Repetitions int              `yaml:"repetitions"`
	Spiral      SpiralConfig     `yaml:"spiral"`
	Branch      BranchConfig     `yaml:"branch"`
	Scatter     ScatterConfig    `yaml:"scatter"`
	History     HistoryConfig    `yaml:"history"`
}

// TemplateConfig describes one cell template. Anchors sit at the centers of
// the box faces: entry at -Z, exit at +Z, left at -X, right at +X.
type TemplateConfig struct {
	Name       string   `yaml:"name"`
	HalfWidth  float32  `yaml:"half_width"`
	HalfLength float32  `yaml:"half_length"`
	HalfHeight float32  `yaml:"half_height"`
	Islands    IntRange `yaml:"islands"`
}

// SpiralConfig holds the helix increments, in degrees.
type SpiralConfig struct {
	CoilStep        float32 `yaml:"coil_step"`
	Elevation       float32 `yaml:"elevation"`
	ElevationJitter float32 `yaml:"elevation_jitter"`
}

// BranchConfig holds side-chain settings.
type BranchConfig struct {
	Every       IntRange `yaml:"every"` // main-chain cells between branch points
	Chance      float32  `yaml:"chance"`
	SubChance   float32  `yaml:"sub_chance"`
	Length      int      `yaml:"length"`
	ScaleFactor float32  `yaml:"scale_factor"`
	MaxDepth    int      `yaml:"max_depth"`
}

// ScatterConfig holds in-cell island placement settings.
type ScatterConfig struct {
	IslandSpacing    float32 `yaml:"island_spacing"`
	ProximityRetries int     `yaml:"proximity_retries"`
}

// HistoryConfig controls how recent affinities bias the next hint.
type HistoryConfig struct {
	Bias   float32 `yaml:"bias"`
	Window int     `yaml:"window"`
}

// RelaxConfig holds separation relaxer settings.
type RelaxConfig struct {
	Iterations       int     `yaml:"iterations"`
	Strength         float32 `yaml:"strength"`
	MaxStep          float32 `yaml:"max_step"`
	BoundaryStrength float32 `yaml:"boundary_strength"`
	Padding          float32 `yaml:"padding"`
}

// PreviewConfig holds the preview server settings. StageDelay pauses between
// pipeline stages so a connected viewer can follow each step.
type PreviewConfig struct {
	Addr       string        `yaml:"addr"`
	StageDelay time.Duration `yaml:"stage_delay"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Seed: 1,
		Island: IslandConfig{
			CrustBottomRadius: FloatRange{5, 15},
			CrustTopRadius:    FloatRange{5, 15},
			CrustHeight:       FloatRange{1, 4},
			BaseHeight:        FloatRange{5, 10},
			InnerRingScale:    FloatRange{0.2, 0.6},
			InnerRingDepth:    FloatRange{0.5, 0.9},
			VertexCount:       IntRange{25, 100},
			NoiseIntensity:    FloatRange{2, 2},
			Colors: ColorsConfig{
				Crust:        mesh.Color{0, 1, 0, 1},
				Base:         mesh.Color{0.58, 0.3, 0, 1},
				Intermediate: mesh.Color{1, 0.88, 0.75, 1},
				Bottom:       mesh.Color{0.75, 0.25, 0, 1},
			},
			LOD: LODConfig{
				Enabled: true,
				Switch:  1,
				Cull:    0.5,
			},
		},
		Noise: NoiseConfig{
			Octaves:     1,
			Persistence: 0.5,
			Lacunarity:  2,
		},
		Population: PopulationConfig{
			Spacing:               FloatRange{2, 5},
			Objects:               IntRange{5, 10},
			MaxAttempts:           15,
			MaxSlopeAngle:         45,
			MaxDistanceFromCenter: 0.2,
			RaycastHeight:         50,
		},
		Catalog: populate.DefaultCatalog(),
		Layout: LayoutConfig{
			Templates: []TemplateConfig{
				{Name: "open", HalfWidth: 30, HalfLength: 30, HalfHeight: 10, Islands: IntRange{2, 5}},
				{Name: "narrow", HalfWidth: 20, HalfLength: 35, HalfHeight: 8, Islands: IntRange{2, 4}},
			},
			Sequence:    []string{"open", "narrow"},
			Repetitions: 3,
			Spiral: SpiralConfig{
				CoilStep:  45,
				Elevation: 22.5,
			},
			Branch: BranchConfig{
				Every:       IntRange{2, 4},
				Chance:      0.15,
				SubChance:   0.15,
				Length:      3,
				ScaleFactor: 0.8,
				MaxDepth:    2,
			},
			Scatter: ScatterConfig{
				IslandSpacing:    5,
				ProximityRetries: 100,
			},
			History: HistoryConfig{
				Bias:   0.5,
				Window: 4,
			},
		},
		Relax: RelaxConfig{
			Iterations:       64,
			Strength:         40,
			MaxStep:          2,
			BoundaryStrength: 0.5,
			Padding:          0,
		},
		Preview: PreviewConfig{
			Addr: "127.0.0.1:8080",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Template returns the template with the given name.
func (c *LayoutConfig) Template(name string) (TemplateConfig, bool) {
	for _, t := range c.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return TemplateConfig{}, false
}
