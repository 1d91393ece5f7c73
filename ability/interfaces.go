package ability

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Body is the physics body the coordinator steers. Impulses are velocity
// changes; forces are accelerations applied over the next step.
type Body interface {
	Position() mgl64.Vec3
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
	IsOnGround() bool
	MaxWalkSpeed() float64
	SetBrakingDeceleration(f float64)
	SetJumpAllowed(allowed bool)
	AddImpulse(v mgl64.Vec3)
	AddForce(v mgl64.Vec3)
	Jump() bool
}

// Probe answers wall queries. Both return false when the hit matches last.
type Probe interface {
	ProbeWallDirection(origin, forward, right mgl64.Vec3, last Contact) (WallHit, bool)
	ProbeClimbDirection(origin, forward mgl64.Vec3, last Contact) (WallHit, bool)
}

// Attack describes one melee swing for the slicer.
type Attack struct {
	ID      uuid.UUID
	Origin  mgl64.Vec3
	Forward mgl64.Vec3
	Right   mgl64.Vec3
}

type Slicer interface {
	Trigger(a Attack)
}
