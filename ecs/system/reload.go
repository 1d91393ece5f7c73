package system

import (
	"path"
	"strings"

	"github.com/milk9111/fz5/ability"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
	"github.com/milk9111/fz5/prefabs"
	"github.com/milk9111/fz5/probe"
	"github.com/milk9111/fz5/slicing"
	"go.uber.org/zap"
)

// changeSource yields prefab paths that changed since the last poll.
type changeSource interface {
	Poll() []string
}

// WatchSystem turns file change notifications into a ReloadRequest entity.
type WatchSystem struct {
	source changeSource
}

func NewWatchSystem(source changeSource) *WatchSystem {
	return &WatchSystem{source: source}
}

func (s *WatchSystem) Update(w *ecs.World) {
	if s == nil || s.source == nil || w == nil {
		return
	}
	paths := s.source.Poll()
	if len(paths) == 0 {
		return
	}
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.ReloadRequestComponent.Kind(), &component.ReloadRequest{Paths: paths})
}

// scriptCache is implemented by ScriptInputSystem.
type scriptCache interface {
	Forget(path string)
}

// ReloadSystem re-reads changed prefabs. New tuning applies to abilities
// started after the reload; running ones keep the values they began with.
type ReloadSystem struct {
	playerPrefab string
	probe        *probe.Probe
	trigger      *slicing.Trigger
	async        bool
	scripts      scriptCache
	logger       *zap.Logger
}

func NewReloadSystem(playerPrefab string, p *probe.Probe, trigger *slicing.Trigger, async bool, scripts scriptCache, logger *zap.Logger) *ReloadSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReloadSystem{
		playerPrefab: playerPrefab,
		probe:        p,
		trigger:      trigger,
		async:        async,
		scripts:      scripts,
		logger:       logger,
	}
}

func (s *ReloadSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	ecs.ForEach(w, component.ReloadRequestComponent.Kind(), func(e ecs.Entity, req *component.ReloadRequest) {
		for _, p := range req.Paths {
			s.reload(w, p)
		}
		ecs.DestroyEntity(w, e)
	})
}

func (s *ReloadSystem) reload(w *ecs.World, changed string) {
	switch {
	case strings.EqualFold(path.Ext(changed), ".tengo"):
		if s.scripts != nil {
			s.scripts.Forget(changed)
		}
		s.logger.Info("script reloaded", zap.String("path", changed))
	case path.Base(changed) == path.Base(s.playerPrefab):
		cfg, err := prefabs.AbilityConfig(s.playerPrefab)
		if err != nil {
			// keep running on the last good tuning
			s.logger.Error("player prefab rejected", zap.String("path", changed), zap.Error(err))
			return
		}
		s.apply(w, cfg)
		s.logger.Info("player tuning reloaded", zap.String("path", changed))
	default:
		return
	}
	w.Events().Push(ecs.Event{Type: ecs.EventReloaded, Data: changed})
}

func (s *ReloadSystem) apply(w *ecs.World, cfg ability.Config) {
	ecs.ForEach(w, component.AbilitiesComponent.Kind(), func(e ecs.Entity, a *component.Abilities) {
		if err := a.Coordinator.SetConfig(cfg); err != nil {
			s.logger.Error("set config", zap.Stringer("entity", e), zap.Error(err))
		}
	})
	s.probe.Configure(probe.ConfigFrom(cfg))
	s.trigger.Configure(slicing.ConfigFrom(cfg, s.async))
}
