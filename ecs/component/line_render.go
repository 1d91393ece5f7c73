package component

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// LineRender is a world-space line drawn on the floor plane, used for shot
// tracers.
type LineRender struct {
	Start mgl64.Vec3
	End   mgl64.Vec3
	Width float32
	Color color.Color
}

var LineRenderComponent = NewComponent[LineRender]()
