package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/fz5/ability"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
	"github.com/milk9111/fz5/prefabs"
	"go.uber.org/zap"
)

const scriptDispatch = `
update(__engine, __frame, __memo)
`

// scriptRuntime is one compiled script plus the memo map it keeps between
// frames.
type scriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	memo     *tengo.Map
	frame    int64
}

// ScriptInputSystem drives entities that carry a Script component. Each frame
// the script's update(engine, frame, memo) runs and the engine functions it
// calls queue ability commands.
type ScriptInputSystem struct {
	logger *zap.Logger
	cache  map[ecs.Entity]*scriptRuntime
}

func NewScriptInputSystem(logger *zap.Logger) *ScriptInputSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptInputSystem{logger: logger, cache: map[ecs.Entity]*scriptRuntime{}}
}

// Forget drops compiled copies of path so the next frame recompiles it.
func (s *ScriptInputSystem) Forget(path string) {
	if s == nil {
		return
	}
	for e, rt := range s.cache {
		if sameScript(rt.path, path) {
			delete(s.cache, e)
		}
	}
}

func (s *ScriptInputSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach3(w, component.ScriptComponent.Kind(), component.CommandQueueComponent.Kind(), component.AbilitiesComponent.Kind(), func(e ecs.Entity, sc *component.Script, queue *component.CommandQueue, a *component.Abilities) {
		if sc.Done {
			return
		}
		rt, err := s.runtime(e, sc.Path)
		if err != nil {
			s.logger.Error("script load failed", zap.String("path", sc.Path), zap.Error(err))
			sc.Done = true
			return
		}
		rt.frame++
		engine := buildScriptEngine(w, e, sc, queue, a)
		if err := rt.run(engine); err != nil {
			s.logger.Error("script update failed", zap.String("path", sc.Path), zap.Int64("frame", rt.frame), zap.Error(err))
			sc.Done = true
		}
	})

	for e := range s.cache {
		if !w.IsAlive(e) {
			delete(s.cache, e)
		}
	}
}

func (s *ScriptInputSystem) runtime(e ecs.Entity, path string) (*scriptRuntime, error) {
	if rt, ok := s.cache[e]; ok && rt.path == path {
		return rt, nil
	}
	rt, err := compileScript(path)
	if err != nil {
		return nil, err
	}
	s.cache[e] = rt
	return rt, nil
}

func compileScript(path string) (*scriptRuntime, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("script: empty path")
	}
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, fmt.Errorf("script: load %s: %w", path, err)
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + scriptDispatch))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__frame", 0)
	_ = script.Add("__memo", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", path, err)
	}
	return &scriptRuntime{
		path:     path,
		compiled: compiled,
		memo:     &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (rt *scriptRuntime) run(engine *tengo.ImmutableMap) error {
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__frame", rt.frame); err != nil {
		return err
	}
	if err := rt.compiled.Set("__memo", rt.memo); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildScriptEngine(w *ecs.World, e ecs.Entity, sc *component.Script, queue *component.CommandQueue, a *component.Abilities) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	push := func(name string, cmd func(args []tengo.Object) (ability.Command, bool)) {
		values[name] = &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
			c, ok := cmd(args)
			if !ok {
				return tengo.FalseValue, nil
			}
			queue.Push(c)
			return tengo.TrueValue, nil
		}}
	}
	simple := func(name string, c ability.Command) {
		push(name, func([]tengo.Object) (ability.Command, bool) { return c, true })
	}

	push("move", func(args []tengo.Object) (ability.Command, bool) {
		if len(args) < 2 {
			return ability.Command{}, false
		}
		fwd, ok1 := tengo.ToFloat64(args[0])
		right, ok2 := tengo.ToFloat64(args[1])
		return ability.MoveStart(fwd, right), ok1 && ok2
	})
	push("look", func(args []tengo.Object) (ability.Command, bool) {
		if len(args) < 1 {
			return ability.Command{}, false
		}
		yaw, ok := tengo.ToFloat64(args[0])
		pitch := 0.0
		if len(args) > 1 {
			pitch, _ = tengo.ToFloat64(args[1])
		}
		return ability.LookDelta(yaw, pitch), ok
	})
	push("switch_weapon", func(args []tengo.Object) (ability.Command, bool) {
		if len(args) < 1 {
			return ability.Command{}, false
		}
		slot, ok := parseItem(objectAsString(args[0]))
		return ability.SwitchWeapon(slot), ok
	})
	simple("stop", ability.MoveStop())
	simple("dash", ability.DashPressed())
	simple("release_dash", ability.DashReleased())
	simple("parry", ability.ParryPressed())
	simple("release_parry", ability.ParryReleased())
	simple("attack", ability.AttackPressed())
	simple("jump", ability.JumpPressed())

	values["done"] = &tengo.UserFunction{Name: "done", Value: func(args ...tengo.Object) (tengo.Object, error) {
		sc.Done = true
		return tengo.TrueValue, nil
	}}
	values["state"] = &tengo.UserFunction{Name: "state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return scriptState(w, e, a), nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func scriptState(w *ecs.World, e ecs.Entity, a *component.Abilities) tengo.Object {
	st := a.Coordinator.State()
	out := map[string]tengo.Object{
		"locomotion": &tengo.String{Value: st.Locomotion.String()},
		"action":     &tengo.String{Value: st.Action.String()},
		"item":       &tengo.String{Value: st.Item.String()},
		"yaw":        &tengo.Float{Value: st.Yaw},
		"pitch":      &tengo.Float{Value: st.Pitch},
	}
	if cb, ok := ecs.Get(w, e, component.CharacterBodyComponent.Kind()); ok && cb.Body != nil {
		out["position"] = vecObject(cb.Body.Feet())
		out["velocity"] = vecObject(cb.Body.Velocity())
		out["grounded"] = tengo.FalseValue
		if cb.Body.IsOnGround() {
			out["grounded"] = tengo.TrueValue
		}
	}
	return &tengo.ImmutableMap{Value: out}
}

func vecObject(v [3]float64) tengo.Object {
	return &tengo.ImmutableArray{Value: []tengo.Object{
		&tengo.Float{Value: v[0]},
		&tengo.Float{Value: v[1]},
		&tengo.Float{Value: v[2]},
	}}
}

func parseItem(name string) (ability.Item, bool) {
	for _, item := range []ability.Item{ability.Sword, ability.Gun, ability.Heal, ability.Utility} {
		if strings.EqualFold(item.String(), name) {
			return item, true
		}
	}
	return 0, false
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func sameScript(a, b string) bool {
	trim := func(s string) string {
		s = strings.TrimPrefix(s, "prefabs/")
		return strings.TrimPrefix(s, "scripts/")
	}
	return trim(a) == trim(b)
}
