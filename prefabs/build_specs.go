package prefabs

import (
	"fmt"

	"github.com/milk9111/fz5/ability"
	"gopkg.in/yaml.v3"
)

// EntityBuildSpec is a named bag of component specs keyed by component name.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

// DecodeComponentSpec re-decodes one raw component entry into T.
func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X   float64 `yaml:"x"`
	Y   float64 `yaml:"y"`
	Z   float64 `yaml:"z"`
	Yaw float64 `yaml:"yaw"`
}

type CharacterComponentSpec struct {
	Radius       float64 `yaml:"radius"`
	HalfHeight   float64 `yaml:"half_height"`
	MaxWalkSpeed float64 `yaml:"max_walk_speed"`
	Acceleration float64 `yaml:"acceleration"`
	Gravity      float64 `yaml:"gravity"`
	JumpSpeed    float64 `yaml:"jump_speed"`
}

// AbilitiesComponentSpec overrides tuning knobs by name on top of the
// defaults. Rules left out keep their default.
type AbilitiesComponentSpec struct {
	Knobs   map[string]float64 `yaml:"knobs"`
	RuleSet *RuleSetSpec       `yaml:"ruleset"`
}

type RuleSetSpec struct {
	DashWhileSlashing *bool `yaml:"dash_while_slashing"`
	SlashResetsDash   *bool `yaml:"slash_resets_dash"`
	DashSlices        *bool `yaml:"dash_slices"`
}

type CameraComponentSpec struct {
	Zoom       float64 `yaml:"zoom"`
	Smoothness float64 `yaml:"smoothness"`
}

type ScriptComponentSpec struct {
	Path string `yaml:"path"`
}

// Config builds a validated ability config from the spec.
func (s AbilitiesComponentSpec) Config() (ability.Config, error) {
	cfg, err := ability.DefaultConfig().WithKnobs(s.Knobs)
	if err != nil {
		return ability.Config{}, err
	}
	if r := s.RuleSet; r != nil {
		if r.DashWhileSlashing != nil {
			cfg.Rules.DashWhileSlashing = *r.DashWhileSlashing
		}
		if r.SlashResetsDash != nil {
			cfg.Rules.SlashResetsDash = *r.SlashResetsDash
		}
		if r.DashSlices != nil {
			cfg.Rules.DashSlices = *r.DashSlices
		}
	}
	if err := cfg.Validate(); err != nil {
		return ability.Config{}, err
	}
	return cfg, nil
}

// AbilityConfig loads the abilities component of an entity prefab.
func AbilityConfig(filename string) (ability.Config, error) {
	spec, err := LoadEntityBuildSpec(filename)
	if err != nil {
		return ability.Config{}, err
	}
	abilities, err := DecodeComponentSpec[AbilitiesComponentSpec](spec.Components["abilities"])
	if err != nil {
		return ability.Config{}, fmt.Errorf("prefabs: decode abilities in %s: %w", filename, err)
	}
	cfg, err := abilities.Config()
	if err != nil {
		return ability.Config{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return cfg, nil
}
