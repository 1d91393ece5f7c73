package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/fz5/common"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
)

type CameraSystem struct {
	targetEntity ecs.Entity
}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

// Update eases every camera toward the player's floor position.
func (cs *CameraSystem) Update(w *ecs.World) {
	if !cs.targetEntity.Valid() || !w.IsAlive(cs.targetEntity) {
		if e, ok := ecs.First(w, component.PlayerTagComponent.Kind()); ok {
			cs.targetEntity = e
		}
	}

	target, ok := ecs.Get(w, cs.targetEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}

	ecs.ForEach(w, component.CameraComponent.Kind(), func(_ ecs.Entity, cam *component.Camera) {
		t := cam.Smoothness
		if t <= 0 || t > 1 {
			t = 1
		}
		cam.X = common.Lerp(cam.X, target.Position.X(), t)
		cam.Y = common.Lerp(cam.Y, target.Position.Y(), t)
	})
}

// view maps floor coordinates to screen pixels. World +Y points up the screen.
type view struct {
	camX, camY float64
	zoom       float64
	halfW      float64
	halfH      float64
}

func cameraView(w *ecs.World, screen *ebiten.Image) view {
	v := view{zoom: 1}
	if screen != nil {
		b := screen.Bounds()
		v.halfW = float64(b.Dx()) / 2
		v.halfH = float64(b.Dy()) / 2
	}
	if e, ok := ecs.First(w, component.CameraComponent.Kind()); ok {
		if cam, ok := ecs.Get(w, e, component.CameraComponent.Kind()); ok {
			v.camX, v.camY = cam.X, cam.Y
			if cam.Zoom > 0 {
				v.zoom = cam.Zoom
			}
		}
	}
	return v
}

func (v view) point(x, y float64) (float32, float32) {
	sx := (x-v.camX)*v.zoom + v.halfW
	sy := -(y-v.camY)*v.zoom + v.halfH
	return float32(sx), float32(sy)
}

func (v view) length(l float64) float32 {
	return float32(l * v.zoom)
}
