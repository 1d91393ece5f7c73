package system

import (
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
	"github.com/milk9111/fz5/physics"
)

// PhysicsSystem moves characters as their coordinators direct, steps the
// world and feeds landings back.
type PhysicsSystem struct {
	world *physics.World
}

func NewPhysicsSystem(world *physics.World) *PhysicsSystem {
	return &PhysicsSystem{world: world}
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || ps.world == nil || w == nil {
		return
	}
	dt := w.Delta()
	if dt <= 0 {
		return
	}

	ecs.ForEach2(w, component.AbilitiesComponent.Kind(), component.CharacterBodyComponent.Kind(), func(e ecs.Entity, a *component.Abilities, cb *component.CharacterBody) {
		body := cb.Body
		if body == nil {
			return
		}
		body.Walk(a.Coordinator.MovementInput(), dt)
		if v, ok := a.Coordinator.VelocityOverride(); ok {
			body.SetVelocity(v)
		}
		body.ApplyForces(dt)
	})

	ps.world.Step(dt)

	ecs.ForEach(w, component.CharacterBodyComponent.Kind(), func(e ecs.Entity, cb *component.CharacterBody) {
		if cb.Body == nil {
			return
		}
		if cb.Body.TakeLanded() {
			if a, ok := ecs.Get(w, e, component.AbilitiesComponent.Kind()); ok {
				a.Coordinator.Landed()
			}
		}
		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			return
		}
		t.Position = cb.Body.Feet()
		if a, ok := ecs.Get(w, e, component.AbilitiesComponent.Kind()); ok {
			st := a.Coordinator.State()
			t.Yaw, t.Pitch = st.Yaw, st.Pitch
		}
	})
}
