package system

import (
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
	"github.com/milk9111/fz5/physics"
)

// TTLSystem counts down TTL components and destroys expired entities along
// with any destructible they own.
type TTLSystem struct {
	world *physics.World
}

func NewTTLSystem(world *physics.World) *TTLSystem {
	return &TTLSystem{world: world}
}

func (s *TTLSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.TTLComponent.Kind(), func(e ecs.Entity, ttl *component.TTL) {
		if ttl.Frames > 1 {
			ttl.Frames--
			return
		}
		if d, ok := ecs.Get(w, e, component.DestructibleComponent.Kind()); ok && d.Body != nil && s != nil {
			s.world.Remove(d.Body.ID())
		}
		ecs.DestroyEntity(w, e)
	})
}
