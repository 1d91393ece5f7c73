package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// ArenaSpec lays out the static level: walls to run on and boxes to cut.
type ArenaSpec struct {
	Name            string     `yaml:"name"`
	Spawn           string     `yaml:"spawn"`
	DebrisTTLFrames int        `yaml:"debris_ttl_frames"`
	Walls           []WallSpec `yaml:"walls"`
	Boxes           []BoxSpec  `yaml:"boxes"`
}

type WallSpec struct {
	From      [2]float64 `yaml:"from"`
	To        [2]float64 `yaml:"to"`
	Height    float64    `yaml:"height"`
	Thickness float64    `yaml:"thickness"`
}

type BoxSpec struct {
	Center [2]float64 `yaml:"center"`
	Width  float64    `yaml:"width"`
	Depth  float64    `yaml:"depth"`
	Height float64    `yaml:"height"`
}

func LoadArenaSpec(filename string) (*ArenaSpec, error) {
	spec, err := LoadSpec[ArenaSpec](filename)
	if err != nil {
		return nil, err
	}
	for i, w := range spec.Walls {
		if w.Height <= 0 || w.Thickness <= 0 || w.From == w.To {
			return nil, fmt.Errorf("prefabs: %s: wall %d is degenerate", filename, i)
		}
	}
	for i, b := range spec.Boxes {
		if b.Width <= 0 || b.Depth <= 0 || b.Height <= 0 {
			return nil, fmt.Errorf("prefabs: %s: box %d is degenerate", filename, i)
		}
	}
	return &spec, nil
}
