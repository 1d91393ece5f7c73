// Command fz5sim runs the sandbox without a window, driving the player from a
// tengo script and logging every state transition and cut.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/milk9111/fz5/config"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/system"
	"github.com/milk9111/fz5/observability"
	"github.com/milk9111/fz5/sim"
	"go.uber.org/zap"
)

// report summarizes one headless run.
type report struct {
	Frames      int
	Transitions []system.Transition
	Cuts        int
	Shots       int
	Reloads     int
}

func main() {
	configPath := flag.String("config", "", "path to a config file")
	script := flag.String("script", "demo.tengo", "tengo script driving the player")
	frames := flag.Int("frames", 0, "frames to simulate; 0 uses script.frames from the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *script != "" {
		cfg.Script.Path = *script
	}
	if *frames > 0 {
		cfg.Script.Frames = *frames
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	rep, err := run(cfg, logger)
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
	fmt.Printf("frames=%d transitions=%d cuts=%d shots=%d\n", rep.Frames, len(rep.Transitions), rep.Cuts, rep.Shots)
}

// run steps the sandbox until the script finishes or the frame limit hits.
func run(cfg config.Config, logger *zap.Logger) (report, error) {
	if cfg.Script.Path == "" {
		return report{}, fmt.Errorf("fz5sim: no script")
	}
	s, err := sim.New(cfg, sim.Options{Script: cfg.Script.Path}, logger)
	if err != nil {
		return report{}, err
	}
	defer func() { _ = s.Close() }()

	var rep report
	for rep.Frames < cfg.Script.Frames && !s.ScriptDone() {
		s.Update()
		rep.Frames++
		for _, ev := range s.World.Events().Peek() {
			switch ev.Type {
			case ecs.EventTransition:
				tr := ev.Data.(system.Transition)
				rep.Transitions = append(rep.Transitions, tr)
			case ecs.EventSliced:
				rep.Cuts += ev.Data.(int)
			case ecs.EventShot:
				rep.Shots++
			case ecs.EventReloaded:
				rep.Reloads++
			}
		}
	}
	// drain scans still in flight so their cuts are counted
	s.Slicer.Wait()
	s.Update()
	for _, ev := range s.World.Events().Peek() {
		if ev.Type == ecs.EventSliced {
			rep.Cuts += ev.Data.(int)
		}
	}

	logger.Info("run finished",
		zap.Int("frames", rep.Frames),
		zap.Int("transitions", len(rep.Transitions)),
		zap.Int("cuts", rep.Cuts),
		zap.Int("shots", rep.Shots),
	)
	return rep, nil
}
