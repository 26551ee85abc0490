package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skyisles/internal/island/fault"
)

// Validate checks every section and returns all problems joined together.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(c.Island.validate())
	add(c.Population.validate())
	add(c.Catalog.Validate())
	add(c.Layout.validate())
	add(c.Relax.validate())

	if c.Noise.Octaves < 1 {
		add(fault.Config("noise.octaves", c.Noise.Octaves, "must be at least 1"))
	}

	return errors.Join(errs...)
}

func (r FloatRange) validate(field string, positive bool) error {
	if r.Max < r.Min {
		return fault.Config(field, r, "max must not be below min")
	}
	if positive && r.Min <= 0 {
		return fault.Config(field+".min", r.Min, "must be greater than zero")
	}
	if !positive && r.Min < 0 {
		return fault.Config(field+".min", r.Min, "must not be negative")
	}
	return nil
}

func (r IntRange) validate(field string, lowest int) error {
	if r.Max < r.Min {
		return fault.Config(field, r, "max must not be below min")
	}
	if r.Min < lowest {
		return fault.Config(field+".min", r.Min, fmt.Sprintf("must be at least %d", lowest))
	}
	return nil
}

func (ic IslandConfig) validate() error {
	checks := []error{
		ic.CrustBottomRadius.validate("island.crust_bottom_radius", true),
		ic.CrustTopRadius.validate("island.crust_top_radius", true),
		ic.CrustHeight.validate("island.crust_height", false),
		ic.BaseHeight.validate("island.base_height", false),
		ic.InnerRingScale.validate("island.inner_ring_scale", true),
		ic.InnerRingDepth.validate("island.inner_ring_depth", false),
		ic.VertexCount.validate("island.vertex_count", 3),
		ic.NoiseIntensity.validate("island.noise_intensity", false),
	}
	if lc := ic.LOD; lc.Enabled {
		if lc.Switch <= 0 || lc.Switch > 1 {
			checks = append(checks, fault.Config("island.lod.switch", lc.Switch, "must be within (0, 1]"))
		}
		if lc.Cull < 0 || lc.Cull >= lc.Switch {
			checks = append(checks, fault.Config("island.lod.cull", lc.Cull, "must be at least 0 and below switch"))
		}
	}
	return errors.Join(checks...)
}

func (pc PopulationConfig) validate() error {
	checks := []error{
		pc.Spacing.validate("population.spacing", false),
		pc.Objects.validate("population.objects", 0),
	}
	if pc.MaxAttempts < 1 {
		checks = append(checks, fault.Config("population.max_attempts", pc.MaxAttempts, "must be at least 1"))
	}
	if pc.MaxDistanceFromCenter < 0 || pc.MaxDistanceFromCenter > 1 {
		checks = append(checks, fault.Config("population.max_distance_from_center", pc.MaxDistanceFromCenter, "must be within [0, 1]"))
	}
	if pc.RaycastHeight <= 0 {
		checks = append(checks, fault.Config("population.raycast_height", pc.RaycastHeight, "must be greater than zero"))
	}
	return errors.Join(checks...)
}

func (lc LayoutConfig) validate() error {
	var checks []error
	seen := make(map[string]bool)
	for i, t := range lc.Templates {
		field := fmt.Sprintf("layout.templates[%d]", i)
		switch {
		case t.Name == "":
			checks = append(checks, fault.Config(field+".name", t.Name, "must not be empty"))
		case seen[t.Name]:
			checks = append(checks, fault.Config(field+".name", t.Name, "duplicate template"))
		}
		seen[t.Name] = true
		if t.HalfWidth <= 0 || t.HalfLength <= 0 || t.HalfHeight <= 0 {
			checks = append(checks, fault.Config(field, t.Name, "half extents must be greater than zero"))
		}
		checks = append(checks, t.Islands.validate(field+".islands", 0))
	}
	if lc.Repetitions < 0 {
		checks = append(checks, fault.Config("layout.repetitions", lc.Repetitions, "must not be negative"))
	}
	checks = append(checks, lc.Branch.Every.validate("layout.branch.every", 1))
	if lc.Branch.Length < 1 {
		checks = append(checks, fault.Config("layout.branch.length", lc.Branch.Length, "must be at least 1"))
	}
	if lc.Branch.ScaleFactor <= 0 {
		checks = append(checks, fault.Config("layout.branch.scale_factor", lc.Branch.ScaleFactor, "must be greater than zero"))
	}
	if lc.Scatter.ProximityRetries < 1 {
		checks = append(checks, fault.Config("layout.scatter.proximity_retries", lc.Scatter.ProximityRetries, "must be at least 1"))
	}
	if lc.History.Window < 0 {
		checks = append(checks, fault.Config("layout.history.window", lc.History.Window, "must not be negative"))
	}
	return errors.Join(checks...)
}

func (rc RelaxConfig) validate() error {
	switch {
	case rc.Iterations < 0:
		return fault.Config("relax.iterations", rc.Iterations, "must not be negative")
	case rc.Strength < 0:
		return fault.Config("relax.strength", rc.Strength, "must not be negative")
	case rc.MaxStep <= 0:
		return fault.Config("relax.max_step", rc.MaxStep, "must be greater than zero")
	}
	return nil
}
