package system

import (
	"testing"

	"github.com/milk9111/fz5/ability"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
	"github.com/milk9111/fz5/ecs/entity"
	"github.com/milk9111/fz5/physics"
	"github.com/milk9111/fz5/prefabs"
	"github.com/milk9111/fz5/probe"
	"github.com/milk9111/fz5/slicing"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testStep = 1.0 / 60

type harness struct {
	w   *ecs.World
	env *entity.Env
}

// useDir points prefab overrides at dir for the duration of the test.
func useDir(t *testing.T, dir string) {
	t.Helper()
	prev := prefabs.Dir()
	prefabs.SetDir(dir)
	t.Cleanup(func() { prefabs.SetDir(prev) })
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	useDir(t, "")
	logger := zaptest.NewLogger(t)
	pw := physics.NewWorld(physics.DefaultConfig(), logger)
	cfg := ability.DefaultConfig()
	return &harness{
		w: ecs.NewWorld(),
		env: &entity.Env{
			Physics: pw,
			Probe:   probe.New(pw, probe.ConfigFrom(cfg)),
			Slicer:  slicing.New(pw, slicing.ConfigFrom(cfg, false), logger),
			Logger:  logger,
		},
	}
}

func (h *harness) player(t *testing.T) ecs.Entity {
	t.Helper()
	e, err := entity.NewPlayer(h.w, h.env, "player.yaml")
	require.NoError(t, err)
	return e
}

func (h *harness) abilities(t *testing.T, e ecs.Entity) *component.Abilities {
	t.Helper()
	a, ok := ecs.Get(h.w, e, component.AbilitiesComponent.Kind())
	require.True(t, ok)
	return a
}

func (h *harness) push(t *testing.T, e ecs.Entity, cmds ...ability.Command) {
	t.Helper()
	q, ok := ecs.Get(h.w, e, component.CommandQueueComponent.Kind())
	require.True(t, ok)
	q.Push(cmds...)
}

// events collects every event of typ over n scheduler steps.
func (h *harness) run(s *ecs.Scheduler, n int, typ string) []ecs.Event {
	var out []ecs.Event
	for i := 0; i < n; i++ {
		s.Update(h.w, testStep)
		for _, ev := range h.w.Events().Peek() {
			if ev.Type == typ {
				out = append(out, ev)
			}
		}
	}
	return out
}
