package common

import "github.com/go-gl/mathgl/mgl64"

// ActorID identifies a physical object in the scene. Zero means no actor.
type ActorID uint64

// RayHit is the first blocking hit of a ray cast.
type RayHit struct {
	Actor    ActorID
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// Raycaster casts a segment against the scene and reports the first blocking
// hit.
type Raycaster interface {
	Raycast(from, to mgl64.Vec3) (RayHit, bool)
}
