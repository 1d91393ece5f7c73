package system

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/fz5/ability"
	"github.com/milk9111/fz5/common"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
	"github.com/milk9111/fz5/physics"
	"golang.org/x/image/colornames"
)

const (
	wallWidth   = 6
	facingReach = 1.8
)

// RenderSystem draws the top-down debug view: walls, destructibles,
// characters, tracers and a state readout for the player.
type RenderSystem struct {
	world *physics.World
}

func NewRenderSystem(world *physics.World) *RenderSystem {
	return &RenderSystem{world: world}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	v := cameraView(w, screen)

	for _, wall := range r.world.Walls() {
		x0, y0 := v.point(wall.A.X(), wall.A.Y())
		x1, y1 := v.point(wall.B.X(), wall.B.Y())
		vector.StrokeLine(screen, x0, y0, x1, y1, v.length(wallWidth), colornames.Slategray, true)
	}

	ecs.ForEach(w, component.DestructibleComponent.Kind(), func(e ecs.Entity, d *component.Destructible) {
		clr := color.Color(colornames.Peru)
		if ecs.Has(w, e, component.DebrisTagComponent.Kind()) {
			clr = colornames.Sandybrown
		}
		drawPolygon(screen, v, d.Body.Polygon(), clr)
	})

	ecs.ForEach3(w, component.TransformComponent.Kind(), component.CharacterBodyComponent.Kind(), component.AbilitiesComponent.Kind(),
		func(_ ecs.Entity, t *component.Transform, cb *component.CharacterBody, a *component.Abilities) {
			drawCharacter(screen, v, t, cb.Body.Radius(), a.Coordinator.State())
		})

	ecs.ForEach(w, component.LineRenderComponent.Kind(), func(_ ecs.Entity, l *component.LineRender) {
		x0, y0 := v.point(l.Start.X(), l.Start.Y())
		x1, y1 := v.point(l.End.X(), l.End.Y())
		width := l.Width
		if width <= 0 {
			width = 1
		}
		vector.StrokeLine(screen, x0, y0, x1, y1, width, l.Color, true)
	})

	if player, ok := ecs.First(w, component.PlayerTagComponent.Kind()); ok {
		if a, ok := ecs.Get(w, player, component.AbilitiesComponent.Kind()); ok {
			ebitenutil.DebugPrintAt(screen, hudText(a.Coordinator.State()), 10, 10)
		}
	}
}

func drawPolygon(screen *ebiten.Image, v view, poly []mgl64.Vec2, clr color.Color) {
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		x0, y0 := v.point(a.X(), a.Y())
		x1, y1 := v.point(b.X(), b.Y())
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, clr, true)
	}
}

func drawCharacter(screen *ebiten.Image, v view, t *component.Transform, radius float64, s ability.State) {
	cx, cy := v.point(t.Position.X(), t.Position.Y())
	clr := locomotionColor(s.Locomotion)
	vector.StrokeCircle(screen, cx, cy, v.length(radius), 2, clr, true)
	if t.Position.Z() > 0 {
		// airborne: ring grows with height
		vector.StrokeCircle(screen, cx, cy, v.length(radius+t.Position.Z()/10), 1, colornames.Lightgray, true)
	}

	forward, _ := common.YawAxes(t.Yaw)
	tip := t.Position.Add(forward.Mul(radius * facingReach))
	fx, fy := v.point(tip.X(), tip.Y())
	vector.StrokeLine(screen, cx, cy, fx, fy, 2, actionColor(s.Action), true)
}

func locomotionColor(l ability.Locomotion) color.Color {
	switch l {
	case ability.Dashing:
		return colornames.Deepskyblue
	case ability.Sliding:
		return colornames.Mediumpurple
	case ability.WallRunning:
		return colornames.Limegreen
	case ability.WallClimbing:
		return colornames.Orange
	case ability.WallJumping:
		return colornames.Yellow
	default:
		return colornames.White
	}
}

func actionColor(a ability.Action) color.Color {
	switch a {
	case ability.Parrying:
		return colornames.Cyan
	case ability.Slashing:
		return colornames.Red
	case ability.Shooting:
		return colornames.Gold
	case ability.SwitchingWeapon:
		return colornames.Gray
	default:
		return colornames.White
	}
}

func hudText(s ability.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Locomotion: %s\nAction: %s\nItem: %s\nYaw: %.0f Pitch: %.0f\n", s.Locomotion, s.Action, s.Item, s.Yaw, s.Pitch)
	for _, k := range ability.Kinds() {
		cd := s.Cooldown(k)
		if cd <= 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %.2fs\n", k, cd)
	}
	return b.String()
}

func (r *RenderSystem) Update(*ecs.World) {}
