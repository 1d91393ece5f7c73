// Package sim assembles the ability sandbox: physics world, arena, player
// and the fixed-step system schedule shared by the game and the headless
// runner.
package sim

import (
	"fmt"

	"github.com/milk9111/fz5/config"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
	"github.com/milk9111/fz5/ecs/entity"
	"github.com/milk9111/fz5/ecs/system"
	"github.com/milk9111/fz5/physics"
	"github.com/milk9111/fz5/prefabs"
	"github.com/milk9111/fz5/probe"
	"github.com/milk9111/fz5/slicing"
	"go.uber.org/zap"
)

type Options struct {
	// Interactive reads keyboard and gamepad input.
	Interactive bool
	// Script drives the player from a tengo script instead of devices.
	Script string
	Debug  bool
}

// Sim owns one running sandbox.
type Sim struct {
	World     *ecs.World
	Physics   *physics.World
	Probe     *probe.Probe
	Slicer    *slicing.Trigger
	Scheduler *ecs.Scheduler
	Player    ecs.Entity
	Arena     *prefabs.ArenaSpec

	step    float64
	debug   *system.PhysicsDebugSystem
	watcher *prefabs.Watcher
	logger  *zap.Logger
}

func New(cfg config.Config, opts Options, logger *zap.Logger) (*Sim, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefabs.SetDir(cfg.Prefabs.Dir)

	arena, err := prefabs.LoadArenaSpec(cfg.Prefabs.Arena)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	playerPrefab := cfg.Prefabs.Player
	if playerPrefab == "" {
		playerPrefab = arena.Spawn
	}
	abilityCfg, err := prefabs.AbilityConfig(playerPrefab)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	pw := physics.NewWorld(physics.DefaultConfig(), logger.Named("physics"))
	s := &Sim{
		World:   ecs.NewWorld(),
		Physics: pw,
		Probe:   probe.New(pw, probe.ConfigFrom(abilityCfg)),
		Slicer:  slicing.New(pw, slicing.ConfigFrom(abilityCfg, cfg.Sim.AsyncSlicing), logger.Named("slicing")),
		step:    cfg.Sim.Step(),
		logger:  logger,
	}

	env := &entity.Env{
		Physics: pw,
		Probe:   s.Probe,
		Slicer:  s.Slicer,
		Logger:  logger.Named("ability"),
		Script:  opts.Script,
	}
	s.Arena, err = entity.BuildArena(s.World, env, cfg.Prefabs.Arena)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	s.Player, err = entity.NewPlayer(s.World, env, playerPrefab)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	if cfg.Prefabs.Watch {
		s.watcher, err = prefabs.NewWatcher(cfg.Prefabs.Dir)
		if err != nil {
			// reload is a convenience; run without it
			logger.Warn("prefab watcher unavailable", zap.String("dir", cfg.Prefabs.Dir), zap.Error(err))
		}
	}

	scripts := system.NewScriptInputSystem(logger.Named("script"))
	var input ecs.System
	if opts.Interactive {
		input = system.NewInputSystem()
	}
	var watch ecs.System
	if s.watcher != nil {
		watch = system.NewWatchSystem(s.watcher)
	}
	s.debug = system.NewPhysicsDebugSystem(pw, opts.Debug)

	s.Scheduler = ecs.NewScheduler(
		watch,
		system.NewReloadSystem(playerPrefab, s.Probe, s.Slicer, cfg.Sim.AsyncSlicing, scripts, logger.Named("reload")),
		input,
		scripts,
		system.NewAbilitySystem(logger.Named("ability")),
		system.NewPhysicsSystem(pw),
		system.NewSliceSystem(s.Slicer, pw, s.Arena.DebrisTTLFrames, logger.Named("slicing")),
		system.NewTTLSystem(pw),
		system.NewCameraSystem(),
		system.NewRenderSystem(pw),
		s.debug,
	)
	return s, nil
}

// Update advances the sandbox by one fixed step.
func (s *Sim) Update() {
	s.Scheduler.Update(s.World, s.step)
}

func (s *Sim) Step() float64 {
	return s.step
}

func (s *Sim) ToggleDebug() {
	s.debug.Toggle()
}

// ScriptDone reports whether the player's script called done() or failed.
func (s *Sim) ScriptDone() bool {
	sc, ok := ecs.Get(s.World, s.Player, component.ScriptComponent.Kind())
	return ok && sc.Done
}

// Close waits for in-flight slice scans and stops the watcher.
func (s *Sim) Close() error {
	s.Slicer.Wait()
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
