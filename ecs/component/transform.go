package component

import "github.com/go-gl/mathgl/mgl64"

// Transform is the render-facing pose, synced from physics every step.
type Transform struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64
}

var TransformComponent = NewComponent[Transform]()
