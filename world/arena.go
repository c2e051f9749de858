package world

import (
	"fmt"
	"os"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"
)

// ArenaSpec is the YAML description of the static world geometry.
type ArenaSpec struct {
	Spawn    Vec           `yaml:"spawn"`
	Surfaces []SurfaceSpec `yaml:"surfaces"`
}

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v Vec) Vector() cp.Vector { return cp.Vector{X: v.X, Y: v.Y} }

// SurfaceSpec describes one surface. Exactly one of Box or Segment must be set.
type SurfaceSpec struct {
	Box       *BoxSpec     `yaml:"box,omitempty"`
	Segment   *SegmentSpec `yaml:"segment,omitempty"`
	Kinematic bool         `yaml:"kinematic,omitempty"`
	Tags      []string     `yaml:"tags,omitempty"`
}

type BoxSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type SegmentSpec struct {
	X1     float64 `yaml:"x1"`
	Y1     float64 `yaml:"y1"`
	X2     float64 `yaml:"x2"`
	Y2     float64 `yaml:"y2"`
	Radius float64 `yaml:"radius"`
}

// LoadArena reads an arena YAML file.
func LoadArena(path string) (ArenaSpec, error) {
	var spec ArenaSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("arena: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("arena: parse %s: %w", path, err)
	}
	return spec, nil
}

// Build instantiates every surface in the spec.
func (w *World) Build(spec ArenaSpec) error {
	for i, s := range spec.Surfaces {
		switch {
		case s.Box != nil && s.Segment == nil:
			pos := cp.Vector{X: s.Box.X, Y: s.Box.Y}
			if s.Kinematic {
				w.AddKinematicBoxSurface(pos, s.Box.Width, s.Box.Height, s.Tags...)
			} else {
				w.AddBoxSurface(pos, s.Box.Width, s.Box.Height, s.Tags...)
			}
		case s.Segment != nil && s.Box == nil:
			a := cp.Vector{X: s.Segment.X1, Y: s.Segment.Y1}
			b := cp.Vector{X: s.Segment.X2, Y: s.Segment.Y2}
			radius := s.Segment.Radius
			if radius <= 0 {
				radius = 1
			}
			w.AddSegmentSurface(a, b, radius, s.Tags...)
		default:
			return fmt.Errorf("arena: surface %d must set exactly one of box or segment", i)
		}
	}
	return nil
}
