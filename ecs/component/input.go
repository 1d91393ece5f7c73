package component

import "github.com/go-gl/mathgl/mgl64"

// Input remembers what was held last frame so the input systems only emit
// commands on edges.
type Input struct {
	Move      mgl64.Vec2
	Moving    bool
	DashHeld  bool
	ParryHeld bool
}

var InputComponent = NewComponent[Input]()
