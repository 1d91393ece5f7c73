package system

import (
	"github.com/milk9111/fz5/ability"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

const tracerFrames = 6

// Transition is the payload of ecs.EventTransition.
type Transition struct {
	Entity ecs.Entity
	From   string
	To     string
}

// ShotEvent is the payload of ecs.EventShot.
type ShotEvent struct {
	Entity ecs.Entity
	Shot   ability.ShotResult
}

// AbilitySystem delivers queued commands to each coordinator, advances its
// timers and reports what changed.
type AbilitySystem struct {
	logger *zap.Logger
}

func NewAbilitySystem(logger *zap.Logger) *AbilitySystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbilitySystem{logger: logger}
}

func (s *AbilitySystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach2(w, component.AbilitiesComponent.Kind(), component.CommandQueueComponent.Kind(), func(e ecs.Entity, a *component.Abilities, queue *component.CommandQueue) {
		for _, cmd := range queue.Drain() {
			a.Coordinator.OnCommand(cmd)
		}
	})

	dt := w.Delta()
	ecs.ForEach(w, component.AbilitiesComponent.Kind(), func(e ecs.Entity, a *component.Abilities) {
		co := a.Coordinator
		if co == nil {
			return
		}
		co.Tick(dt)
		s.report(w, e, a)
	})
}

// report compares the coordinator against the last observed state.
func (s *AbilitySystem) report(w *ecs.World, e ecs.Entity, a *component.Abilities) {
	st := a.Coordinator.State()
	if st.Locomotion != a.Locomotion {
		s.transition(w, e, a.Locomotion.String(), st.Locomotion.String())
		a.Locomotion = st.Locomotion
	}
	if st.Action != a.Action {
		s.transition(w, e, a.Action.String(), st.Action.String())
		a.Action = st.Action
	}
	if st.Item != a.Item {
		s.transition(w, e, a.Item.String(), st.Item.String())
		a.Item = st.Item
	}

	shot := a.Coordinator.LastShot()
	if shot.Seq == a.ShotSeq {
		return
	}
	a.ShotSeq = shot.Seq
	w.Events().Push(ecs.Event{Type: ecs.EventShot, Data: ShotEvent{Entity: e, Shot: shot}})

	tracer := ecs.CreateEntity(w)
	_ = ecs.Add(w, tracer, component.LineRenderComponent.Kind(), &component.LineRender{
		Start: shot.Origin,
		End:   shot.End,
		Width: 2,
		Color: colornames.Gold,
	})
	_ = ecs.Add(w, tracer, component.TTLComponent.Kind(), &component.TTL{Frames: tracerFrames})
}

func (s *AbilitySystem) transition(w *ecs.World, e ecs.Entity, from, to string) {
	s.logger.Info("transition", zap.Stringer("entity", e), zap.String("from", from), zap.String("to", to))
	w.Events().Push(ecs.Event{Type: ecs.EventTransition, Data: Transition{Entity: e, From: from, To: to}})
}
