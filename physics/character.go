package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/fz5/common"
)

type CharacterConfig struct {
	Radius       float64
	HalfHeight   float64
	MaxWalkSpeed float64
	Acceleration float64
	Gravity      float64
	JumpSpeed    float64
}

func DefaultCharacterConfig() CharacterConfig {
	return CharacterConfig{
		Radius:       34,
		HalfHeight:   88,
		MaxWalkSpeed: 600,
		Acceleration: 2048,
		Gravity:      980,
		JumpSpeed:    420,
	}
}

// Character is a walking body: an upright circle in the space plus its own
// vertical integration against a flat floor at z = 0. It satisfies
// ability.Body.
type Character struct {
	world *World
	id    common.ActorID
	body  *cp.Body
	shape *cp.Shape
	cfg   CharacterConfig

	z           float64
	vz          float64
	grounded    bool
	landed      bool
	jumpAllowed bool
	braking     float64
	force       mgl64.Vec3
}

// AddCharacter places a character with its feet at pos.
func (w *World) AddCharacter(pos mgl64.Vec3, cfg CharacterConfig) *Character {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(toCP(pos.Vec2()))
	shape := cp.NewCircle(body, cfg.Radius, cp.Vector{})
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeCharacter)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryCharacter, cp.ALL_CATEGORIES))
	// the space damps debris; characters steer their own velocity
	body.SetVelocityUpdateFunc(func(b *cp.Body, _ cp.Vector, _ float64, dt float64) {
		cp.BodyUpdateVelocity(b, cp.Vector{}, 1, dt)
	})
	w.space.AddBody(body)
	w.space.AddShape(shape)

	c := &Character{
		world:       w,
		id:          w.allocID(),
		body:        body,
		shape:       shape,
		cfg:         cfg,
		z:           math.Max(pos.Z(), 0),
		grounded:    pos.Z() <= 0,
		jumpAllowed: true,
	}
	w.register(&actor{id: c.id, kind: KindCharacter, shape: shape, minZ: c.z, maxZ: c.z + 2*cfg.HalfHeight})
	w.chars = append(w.chars, c)
	return c
}

func (c *Character) ID() common.ActorID {
	if c == nil {
		return 0
	}
	return c.id
}

// Position is the center of the character, half its height above the feet.
func (c *Character) Position() mgl64.Vec3 {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	p := c.body.Position()
	return mgl64.Vec3{p.X, p.Y, c.z + c.cfg.HalfHeight}
}

// Feet is the floor contact point.
func (c *Character) Feet() mgl64.Vec3 {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	p := c.body.Position()
	return mgl64.Vec3{p.X, p.Y, c.z}
}

func (c *Character) Velocity() mgl64.Vec3 {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	return c.velocity()
}

func (c *Character) velocity() mgl64.Vec3 {
	v := c.body.Velocity()
	return mgl64.Vec3{v.X, v.Y, c.vz}
}

func (c *Character) SetVelocity(v mgl64.Vec3) {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	c.setVelocity(v)
}

func (c *Character) setVelocity(v mgl64.Vec3) {
	c.body.SetVelocity(v[0], v[1])
	c.vz = v[2]
}

func (c *Character) IsOnGround() bool {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	return c.grounded
}

func (c *Character) MaxWalkSpeed() float64 {
	return c.cfg.MaxWalkSpeed
}

func (c *Character) SetBrakingDeceleration(f float64) {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	c.braking = f
}

func (c *Character) BrakingDeceleration() float64 {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	return c.braking
}

func (c *Character) SetJumpAllowed(allowed bool) {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	c.jumpAllowed = allowed
}

// AddImpulse applies an instant velocity change.
func (c *Character) AddImpulse(v mgl64.Vec3) {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	c.setVelocity(c.velocity().Add(v))
	if v[2] > 0 {
		c.grounded = false
	}
}

// AddForce accumulates an acceleration applied by ApplyForces.
func (c *Character) AddForce(v mgl64.Vec3) {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	c.force = c.force.Add(v)
}

// Jump launches the character when it stands on the floor and jumping is
// allowed.
func (c *Character) Jump() bool {
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	if !c.grounded || !c.jumpAllowed {
		return false
	}
	c.vz = c.cfg.JumpSpeed
	c.grounded = false
	return true
}

// Walk integrates input acceleration, braking and gravity for one step.
// input is a world-space direction; zero means no input.
func (c *Character) Walk(input mgl64.Vec3, dt float64) {
	if c == nil || dt <= 0 {
		return
	}
	c.world.mu.Lock()
	defer c.world.mu.Unlock()

	v := c.body.Velocity()
	h := mgl64.Vec2{v.X, v.Y}
	if dir, ok := common.SafeNormalize2(input.Vec2()); ok {
		prev := h.Len()
		h = h.Add(dir.Mul(c.cfg.Acceleration * dt))
		if l := h.Len(); l > c.cfg.MaxWalkSpeed {
			// above walking speed, only braking brings it back down
			limit := math.Max(math.Max(prev-c.braking*dt, c.cfg.MaxWalkSpeed), 0)
			if l > limit {
				h = h.Mul(limit / l)
			}
		}
	} else if c.grounded {
		h = brake(h, c.braking*dt)
	}
	c.body.SetVelocity(h[0], h[1])
	if !c.grounded {
		c.vz -= c.cfg.Gravity * dt
	}
}

// ApplyForces turns the accumulated force into velocity and clears it.
func (c *Character) ApplyForces(dt float64) {
	if c == nil {
		return
	}
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	if c.force == (mgl64.Vec3{}) {
		return
	}
	c.setVelocity(c.velocity().Add(c.force.Mul(dt)))
	c.force = mgl64.Vec3{}
}

// TakeLanded reports whether the character touched down since the last call.
func (c *Character) TakeLanded() bool {
	if c == nil {
		return false
	}
	c.world.mu.Lock()
	defer c.world.mu.Unlock()
	landed := c.landed
	c.landed = false
	return landed
}

// stepVertical moves the character along z. Caller holds w.mu.
func (c *Character) stepVertical(dt float64) {
	c.z += c.vz * dt
	if c.z <= 0 {
		c.z = 0
		if c.vz < 0 {
			c.vz = 0
		}
		if !c.grounded {
			c.landed = true
		}
		c.grounded = true
	} else {
		c.grounded = false
	}
	if a, ok := c.world.actors[c.id]; ok {
		a.minZ = c.z
		a.maxZ = c.z + 2*c.cfg.HalfHeight
	}
}

func brake(v mgl64.Vec2, amount float64) mgl64.Vec2 {
	l := v.Len()
	if l <= amount || l == 0 {
		return mgl64.Vec2{}
	}
	return v.Mul((l - amount) / l)
}

func (c *Character) Radius() float64 {
	return c.cfg.Radius
}
