package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/fz5/config"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/sim"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
)

type Game struct {
	frames int
	width  int
	height int

	sim    *sim.Sim
	logger *zap.Logger
}

func NewGame(cfg config.Config, debug bool, logger *zap.Logger) (*Game, error) {
	s, err := sim.New(cfg, sim.Options{
		Interactive: true,
		Script:      cfg.Script.Path,
		Debug:       debug,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &Game{
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
		sim:    s,
		logger: logger,
	}, nil
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.sim.ToggleDebug()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.sim.Update()
	for _, ev := range g.sim.World.Events().Peek() {
		if ev.Type == ecs.EventSliced {
			g.logger.Debug("cuts applied", zap.Any("count", ev.Data))
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	g.sim.Scheduler.Draw(g.sim.World, screen)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Frames: %d    FPS: %.2f", g.frames, ebiten.ActualFPS()), 10, g.height-20)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

func (g *Game) Close() error {
	return g.sim.Close()
}
