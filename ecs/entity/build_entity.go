package entity

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/fz5/ability"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
	"github.com/milk9111/fz5/physics"
	"github.com/milk9111/fz5/prefabs"
	"github.com/milk9111/fz5/probe"
	"github.com/milk9111/fz5/slicing"
	"go.uber.org/zap"
)

// Env is the shared simulation state prefab components attach to.
type Env struct {
	Physics *physics.World
	Probe   *probe.Probe
	Slicer  *slicing.Trigger
	Logger  *zap.Logger
	// Script, when set, replaces the prefab's script component.
	Script string
}

type buildContext struct {
	PrefabPath string
	Env        *Env
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag": addPlayerTag,
	"transform":  addTransform,
	"character":  addCharacter,
	"abilities":  addAbilities,
	"input":      addInput,
	"camera":     addCamera,
	"script":     addScript,
}

// abilities needs the body from character, which needs the transform.
var componentBuildOrder = []string{
	"player_tag",
	"transform",
	"character",
	"abilities",
	"input",
	"camera",
	"script",
}

func BuildEntity(w *ecs.World, env *Env, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if env == nil || env.Physics == nil {
		return 0, fmt.Errorf("build entity: physics world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath, Env: env}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}
	if env.Script != "" {
		remaining["script"] = map[string]any{"path": env.Script}
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, names[0])
	}

	return e, nil
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: mgl64.Vec3{spec.X, spec.Y, spec.Z},
		Yaw:      spec.Yaw,
	})
}

func addCharacter(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CharacterComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode character spec: %w", err)
	}
	cfg := physics.DefaultCharacterConfig()
	overrideIfSet(&cfg.Radius, spec.Radius)
	overrideIfSet(&cfg.HalfHeight, spec.HalfHeight)
	overrideIfSet(&cfg.MaxWalkSpeed, spec.MaxWalkSpeed)
	overrideIfSet(&cfg.Acceleration, spec.Acceleration)
	overrideIfSet(&cfg.Gravity, spec.Gravity)
	overrideIfSet(&cfg.JumpSpeed, spec.JumpSpeed)

	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("character requires transform on the same entity")
	}
	body := ctx.Env.Physics.AddCharacter(t.Position, cfg)
	return ecs.Add(w, e, component.CharacterBodyComponent.Kind(), &component.CharacterBody{Body: body})
}

func addAbilities(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.AbilitiesComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode abilities spec: %w", err)
	}
	cfg, err := spec.Config()
	if err != nil {
		return err
	}
	cb, ok := ecs.Get(w, e, component.CharacterBodyComponent.Kind())
	if !ok || cb.Body == nil {
		return fmt.Errorf("abilities requires character on the same entity")
	}

	var pr ability.Probe
	if ctx.Env.Probe != nil {
		pr = ctx.Env.Probe
	}
	opts := []ability.Option{
		ability.WithLogger(ctx.Env.Logger),
		ability.WithHitscan(ctx.Env.Physics),
	}
	if ctx.Env.Slicer != nil {
		opts = append(opts, ability.WithSlicer(ctx.Env.Slicer))
	}
	co, err := ability.New(cfg, cb.Body, pr, opts...)
	if err != nil {
		return err
	}
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok && t.Yaw != 0 {
		co.OnCommand(ability.LookDelta(t.Yaw, 0))
	}

	st := co.State()
	if err := ecs.Add(w, e, component.AbilitiesComponent.Kind(), &component.Abilities{
		Coordinator: co,
		Locomotion:  st.Locomotion,
		Action:      st.Action,
		Item:        st.Item,
	}); err != nil {
		return err
	}
	return ecs.Add(w, e, component.CommandQueueComponent.Kind(), &component.CommandQueue{})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{})
}

func addCamera(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CameraComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera spec: %w", err)
	}
	cam := &component.Camera{Zoom: spec.Zoom, Smoothness: spec.Smoothness}
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		cam.X, cam.Y = t.Position.X(), t.Position.Y()
	}
	return ecs.Add(w, e, component.CameraComponent.Kind(), cam)
}

func addScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ScriptComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode script spec: %w", err)
	}
	if spec.Path == "" {
		return fmt.Errorf("script path is empty")
	}
	return ecs.Add(w, e, component.ScriptComponent.Kind(), &component.Script{Path: spec.Path})
}

func overrideIfSet(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
