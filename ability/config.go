package ability

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var ErrInvalidConfig = errors.New("ability: invalid config")

// RuleSet collects the behavior switches that differ between tunings.
type RuleSet struct {
	DashWhileSlashing bool `yaml:"dash_while_slashing"`
	SlashResetsDash   bool `yaml:"slash_resets_dash"`
	DashSlices        bool `yaml:"dash_slices"`
}

// Config holds the character tuning knobs. Times are seconds, distances are
// world units, speeds are units per second.
type Config struct {
	DashSpeed    float64
	DashingTime  float64
	DashCooldown float64

	ParryingTime  float64
	ParryCooldown float64

	SlashingTime  float64
	SlashCooldown float64

	ShootingTime       float64
	ShootCooldown      float64
	ShootCheckDistance float64

	SwitchTime     float64
	SwitchCooldown float64

	Deceleration        float64
	SlideDeceleration   float64
	SlideSpeedThreshold float64

	WallCheckDistance  float64
	WallRunDotMin      float64
	WallRunDotMax      float64
	WallClimbDotMax    float64
	MaxWallRunTime     float64
	MaxWallClimbTime   float64
	WallJumpTime       float64
	WallRunSpeed       float64
	WallClimbSpeed     float64
	WallJumpForce      float64
	WallStickForce     float64
	WallResetJumpSpeed float64

	SliceReach  float64
	SliceHeight float64

	Rules RuleSet
}

func DefaultConfig() Config {
	return Config{
		DashSpeed:    3000,
		DashingTime:  0.25,
		DashCooldown: 0.5,

		ParryingTime:  0.4,
		ParryCooldown: 0.6,

		SlashingTime:  0.3,
		SlashCooldown: 0.35,

		ShootingTime:       0.1,
		ShootCooldown:      0.25,
		ShootCheckDistance: 5000,

		SwitchTime:     0.2,
		SwitchCooldown: 0.2,

		Deceleration:        2048,
		SlideDeceleration:   256,
		SlideSpeedThreshold: 500,

		WallCheckDistance:  100,
		WallRunDotMin:      -0.9,
		WallRunDotMax:      -0.1,
		WallClimbDotMax:    -0.7,
		MaxWallRunTime:     1.5,
		MaxWallClimbTime:   0.75,
		WallJumpTime:       0.3,
		WallRunSpeed:       600,
		WallClimbSpeed:     600,
		WallJumpForce:      800,
		WallStickForce:     2000,
		WallResetJumpSpeed: 600,

		SliceReach:  300,
		SliceHeight: 200,

		Rules: RuleSet{
			DashWhileSlashing: true,
			SlashResetsDash:   false,
			DashSlices:        true,
		},
	}
}

func (c *Config) knobs() map[string]*float64 {
	return map[string]*float64{
		"dash_speed":            &c.DashSpeed,
		"dashing_time":          &c.DashingTime,
		"dash_cooldown":         &c.DashCooldown,
		"parrying_time":         &c.ParryingTime,
		"parry_cooldown":        &c.ParryCooldown,
		"slashing_time":         &c.SlashingTime,
		"slash_cooldown":        &c.SlashCooldown,
		"shooting_time":         &c.ShootingTime,
		"shoot_cooldown":        &c.ShootCooldown,
		"shoot_check_distance":  &c.ShootCheckDistance,
		"switch_time":           &c.SwitchTime,
		"switch_cooldown":       &c.SwitchCooldown,
		"deceleration":          &c.Deceleration,
		"slide_deceleration":    &c.SlideDeceleration,
		"slide_speed_threshold": &c.SlideSpeedThreshold,
		"wall_check_distance":   &c.WallCheckDistance,
		"wall_run_dot_min":      &c.WallRunDotMin,
		"wall_run_dot_max":      &c.WallRunDotMax,
		"wall_climb_dot_max":    &c.WallClimbDotMax,
		"max_wall_run_time":     &c.MaxWallRunTime,
		"max_wall_climb_time":   &c.MaxWallClimbTime,
		"wall_jump_time":        &c.WallJumpTime,
		"wall_run_speed":        &c.WallRunSpeed,
		"wall_climb_speed":      &c.WallClimbSpeed,
		"wall_jump_force":       &c.WallJumpForce,
		"wall_stick_force":      &c.WallStickForce,
		"wall_reset_jump_speed": &c.WallResetJumpSpeed,
		"slice_reach":           &c.SliceReach,
		"slice_height":          &c.SliceHeight,
	}
}

// KnobNames lists every accepted knob name, sorted.
func KnobNames() []string {
	var c Config
	names := make([]string, 0, 32)
	for name := range c.knobs() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithKnobs returns a copy of c with the named knobs overridden. Unknown names
// are rejected.
func (c Config) WithKnobs(values map[string]float64) (Config, error) {
	out := c
	fields := out.knobs()
	var unknown []string
	for name, v := range values {
		ptr, ok := fields[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		*ptr = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return c, fmt.Errorf("%w: unknown knobs %s", ErrInvalidConfig, strings.Join(unknown, ", "))
	}
	return out, nil
}

// Knobs returns the knob surface of c as a name to value map.
func (c Config) Knobs() map[string]float64 {
	fields := c.knobs()
	out := make(map[string]float64, len(fields))
	for name, ptr := range fields {
		out[name] = *ptr
	}
	return out
}

// Validate reports every invalid knob.
func (c Config) Validate() error {
	var errs []string
	for _, name := range KnobNames() {
		v := *c.knobs()[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Sprintf("%s must be finite", name))
		}
	}

	nonNegative := []string{
		"dash_speed", "dashing_time", "dash_cooldown",
		"parrying_time", "parry_cooldown",
		"slashing_time", "slash_cooldown",
		"shooting_time", "shoot_cooldown", "shoot_check_distance",
		"switch_time", "switch_cooldown",
		"deceleration", "slide_deceleration", "slide_speed_threshold",
		"max_wall_run_time", "max_wall_climb_time", "wall_jump_time",
		"wall_run_speed", "wall_climb_speed",
		"wall_jump_force", "wall_stick_force", "wall_reset_jump_speed",
		"slice_reach", "slice_height",
	}
	knobs := c.Knobs()
	for _, name := range nonNegative {
		if knobs[name] < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if c.WallCheckDistance <= 0 {
		errs = append(errs, "wall_check_distance must be > 0")
	}
	if c.WallRunDotMin < -1 || c.WallRunDotMax > 1 || c.WallRunDotMin >= c.WallRunDotMax {
		errs = append(errs, "wall_run_dot_min must be < wall_run_dot_max within [-1, 1]")
	}
	if c.WallClimbDotMax < -1 || c.WallClimbDotMax > 1 {
		errs = append(errs, "wall_climb_dot_max must be within [-1, 1]")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// cooldown returns the configured cooldown started when k ends.
func (c Config) cooldown(k Kind) float64 {
	switch k {
	case Dash:
		return c.DashCooldown
	case Parry:
		return c.ParryCooldown
	case Slash:
		return c.SlashCooldown
	case Shoot:
		return c.ShootCooldown
	case Switch:
		return c.SwitchCooldown
	default:
		return 0
	}
}
