package system

import (
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
	"github.com/milk9111/fz5/physics"
	"github.com/milk9111/fz5/slicing"
	"go.uber.org/zap"
)

// SliceSystem applies the cuts planned by the slice trigger and gives every
// new piece an entity that expires after debrisTTL frames.
type SliceSystem struct {
	trigger   *slicing.Trigger
	world     *physics.World
	debrisTTL int
	logger    *zap.Logger
}

func NewSliceSystem(trigger *slicing.Trigger, world *physics.World, debrisTTL int, logger *zap.Logger) *SliceSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SliceSystem{trigger: trigger, world: world, debrisTTL: debrisTTL, logger: logger}
}

func (s *SliceSystem) Update(w *ecs.World) {
	if s == nil || s.world == nil || w == nil {
		return
	}
	if n := s.trigger.Apply(s.world); n > 0 {
		w.Events().Push(ecs.Event{Type: ecs.EventSliced, Data: n})
	}

	for _, piece := range s.world.TakeSpawned() {
		e := ecs.CreateEntity(w)
		_ = ecs.Add(w, e, component.DestructibleComponent.Kind(), &component.Destructible{Body: piece})
		_ = ecs.Add(w, e, component.DebrisTagComponent.Kind(), &component.DebrisTag{})
		if s.debrisTTL > 0 {
			_ = ecs.Add(w, e, component.TTLComponent.Kind(), &component.TTL{Frames: s.debrisTTL})
		}
		s.logger.Debug("debris spawned", zap.Stringer("entity", e), zap.Uint64("actor", uint64(piece.ID())))
	}
}
