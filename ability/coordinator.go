package ability

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/milk9111/fz5/common"
	"go.uber.org/zap"
)

const (
	pitchLimit = 89
	// dashLift is the least vertical speed of a grounded dash, so the floor
	// does not snap it.
	dashLift = 1
)

type probeMemo struct {
	valid bool
	frame uint64
	yaw   float64
	pos   mgl64.Vec3
	last  Contact
	hit   WallHit
	ok    bool
}

func (m *probeMemo) matches(frame uint64, yaw float64, pos mgl64.Vec3, last Contact) bool {
	return m.valid && m.frame == frame && m.yaw == yaw && m.pos == pos && m.last == last
}

// ShotResult is the outcome of the last hitscan. Seq counts shots fired.
type ShotResult struct {
	Seq    uint64
	Origin mgl64.Vec3
	End    mgl64.Vec3
	Hit    common.RayHit
	OK     bool
}

// Coordinator owns one character's ability state. It is not safe for
// concurrent use; drive it from the simulation goroutine.
type Coordinator struct {
	cfg     Config
	state   State
	body    Body
	probe   Probe
	slicer  Slicer
	hitscan common.Raycaster
	logger  *zap.Logger

	frame      uint64
	runMemo    probeMemo
	climbMemo  probeMemo
	lastShot   ShotResult
	lastAttack uuid.UUID
}

type Option func(*Coordinator)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithSlicer(s Slicer) Option {
	return func(c *Coordinator) {
		c.slicer = s
	}
}

// WithHitscan sets the scene the shoot trace runs against.
func WithHitscan(r common.Raycaster) Option {
	return func(c *Coordinator) {
		c.hitscan = r
	}
}

func New(cfg Config, body Body, probe Probe, opts ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ability: new coordinator: %w", err)
	}
	if body == nil {
		return nil, fmt.Errorf("ability: new coordinator: body is nil")
	}
	c := &Coordinator{
		cfg:    cfg,
		state:  newState(),
		body:   body,
		probe:  probe,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	body.SetBrakingDeceleration(cfg.Deceleration)
	body.SetJumpAllowed(true)
	return c, nil
}

// State returns a copy of the current ability state.
func (c *Coordinator) State() State {
	if c == nil {
		return newState()
	}
	return c.state
}

func (c *Coordinator) Config() Config {
	if c == nil {
		return DefaultConfig()
	}
	return c.cfg
}

// SetConfig swaps the tuning. Abilities already running keep the values they
// started with; new timers and cooldowns use cfg.
func (c *Coordinator) SetConfig(cfg Config) error {
	if c == nil {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("ability: set config: %w", err)
	}
	c.cfg = cfg
	if c.state.Locomotion != Dashing && c.state.Locomotion != Sliding {
		c.body.SetBrakingDeceleration(cfg.Deceleration)
	}
	return nil
}

func (c *Coordinator) Frame() uint64 {
	if c == nil {
		return 0
	}
	return c.frame
}

func (c *Coordinator) LastShot() ShotResult {
	if c == nil {
		return ShotResult{}
	}
	return c.lastShot
}

// LastAttack is the id of the most recent slicing attack.
func (c *Coordinator) LastAttack() uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	return c.lastAttack
}

// axes returns the look direction on the horizontal plane.
func (c *Coordinator) axes() (forward, right mgl64.Vec3) {
	return common.YawAxes(c.state.Yaw)
}

// OnCommand applies one input event. Illegal commands are dropped without
// touching the state.
func (c *Coordinator) OnCommand(cmd Command) {
	if c == nil {
		return
	}
	switch cmd.Kind {
	case CommandMove:
		if cmd.Phase == Stop {
			c.moveCancel()
			return
		}
		c.move(cmd.Axis)
	case CommandLook:
		if cmd.Phase == Start {
			c.look(cmd.Axis)
		}
	case CommandDash:
		if cmd.Phase == Stop {
			c.slideCancel()
			return
		}
		c.dash()
	case CommandParry:
		if cmd.Phase == Stop {
			c.parryCancel()
			return
		}
		c.parry()
	case CommandAttack:
		if cmd.Phase == Start {
			c.attack()
		}
	case CommandSwitchWeapon:
		if cmd.Phase == Start {
			c.switchWeapon(cmd.Slot)
		}
	case CommandJump:
		if cmd.Phase == Start {
			c.jump()
		}
	}
}

// Tick advances every timer by dt, resolves expirations and re-probes the
// wall while attached to one.
func (c *Coordinator) Tick(dt float64) {
	if c == nil || dt < 0 || math.IsNaN(dt) {
		return
	}
	for i := range c.state.Timers {
		k := Kind(i)
		t := &c.state.Timers[k]
		if t.Duration > 0 {
			t.Duration -= dt
			if t.Duration <= 0 {
				t.Duration = 0
				c.expire(k)
			}
			continue
		}
		if t.Cooldown > 0 {
			t.Cooldown = math.Max(t.Cooldown-dt, 0)
		}
	}
	c.updateWall()
	c.frame++
}

// VelocityOverride is the velocity the body must adopt this frame, if any.
func (c *Coordinator) VelocityOverride() (mgl64.Vec3, bool) {
	if c == nil || c.body == nil {
		return mgl64.Vec3{}, false
	}
	v := c.body.Velocity()
	switch c.state.Locomotion {
	case Dashing:
		d := c.state.DashVelocity
		z := v[2]
		if c.body.IsOnGround() {
			z = math.Max(z, dashLift)
		}
		return mgl64.Vec3{d[0], d[1], z}, true
	case WallRunning, WallClimbing:
		nv := c.state.WallDirection.Mul(c.state.WallSpeed)
		if c.state.Locomotion == WallRunning {
			nv[2] = v[2]
		}
		nv[2] = math.Max(nv[2], 0)
		return nv, true
	case WallJumping:
		j := c.state.WallJumpVelocity
		return mgl64.Vec3{j[0], j[1], v[2]}, true
	}
	return mgl64.Vec3{}, false
}

// MovementInput is the world-space walk direction the body should accelerate
// toward, zero when the character is not steering itself.
func (c *Coordinator) MovementInput() mgl64.Vec3 {
	if c == nil || !c.state.Moving {
		return mgl64.Vec3{}
	}
	switch c.state.Locomotion {
	case Neutral, Sliding:
	default:
		return mgl64.Vec3{}
	}
	forward, right := c.axes()
	d := c.state.MoveDirection
	return forward.Mul(d[0]).Add(right.Mul(d[1]))
}

// Landed resets the wall bookkeeping when the body touches the ground.
func (c *Coordinator) Landed() {
	if c == nil {
		return
	}
	c.state.LastWallContact = Contact{}
	c.state.WallReset = false
}

func (c *Coordinator) move(axis mgl64.Vec2) {
	dir, ok := common.SafeNormalize2(axis)
	if !ok {
		c.moveCancel()
		return
	}
	c.state.Moving = true
	c.state.MoveDirection = dir
}

func (c *Coordinator) moveCancel() {
	c.state.Moving = false
	c.state.MoveDirection = DefaultMoveDirection
}

func (c *Coordinator) look(delta mgl64.Vec2) {
	c.state.Yaw = common.WrapDegrees(c.state.Yaw + delta[0])
	c.state.Pitch = mgl64.Clamp(c.state.Pitch+delta[1], -pitchLimit, pitchLimit)
}

func (c *Coordinator) dash() {
	switch {
	case c.CanDash():
		c.startDash()
	case c.CanSlide():
		c.startSlide()
	}
}

func (c *Coordinator) startDash() {
	if c.state.Locomotion == WallJumping {
		c.state.WallReset = true
	}
	c.enterLocomotion(Dashing)

	c.state.FacingYaw = c.state.Yaw
	forward, right := common.YawAxes(c.state.FacingYaw)
	d := c.state.MoveDirection
	v := forward.Mul(d[0]).Add(right.Mul(d[1])).Mul(c.cfg.DashSpeed)
	c.state.DashVelocity = mgl64.Vec3{v[0], v[1], 0}

	vel := c.body.Velocity()
	vel[2] = 0
	c.body.SetVelocity(vel)
	if c.body.IsOnGround() {
		c.body.SetJumpAllowed(false)
	}
	c.body.SetBrakingDeceleration(0)

	c.begin(Dash, c.cfg.DashingTime)
	if c.cfg.Rules.DashSlices {
		c.triggerSlice()
	}
}

func (c *Coordinator) startSlide() {
	c.enterLocomotion(Sliding)
	c.body.SetBrakingDeceleration(c.cfg.SlideDeceleration)
}

func (c *Coordinator) slideCancel() {
	if c.state.Locomotion == Sliding {
		c.exitLocomotion()
	}
}

func (c *Coordinator) parry() {
	if !c.CanParry() {
		return
	}
	c.enterAction(Parrying)
	c.begin(Parry, c.cfg.ParryingTime)
}

func (c *Coordinator) parryCancel() {
	if c.state.Action == Parrying {
		c.exitAction()
	}
}

func (c *Coordinator) attack() {
	switch {
	case c.CanSlash():
		c.enterAction(Slashing)
		if c.cfg.Rules.SlashResetsDash {
			c.state.Timers[Dash].Cooldown = 0
		}
		c.begin(Slash, c.cfg.SlashingTime)
		c.triggerSlice()
	case c.CanShoot():
		c.enterAction(Shooting)
		c.begin(Shoot, c.cfg.ShootingTime)
		c.shoot()
	default:
		return
	}
	switch c.state.Locomotion {
	case WallRunning, WallClimbing:
		c.exitLocomotion()
	}
}

func (c *Coordinator) shoot() {
	forward, _ := c.axes()
	origin := c.body.Position()
	shot := ShotResult{
		Seq:    c.lastShot.Seq + 1,
		Origin: origin,
		End:    origin.Add(forward.Mul(c.cfg.ShootCheckDistance)),
	}
	if c.hitscan != nil {
		shot.Hit, shot.OK = c.hitscan.Raycast(shot.Origin, shot.End)
	}
	if shot.OK {
		shot.End = shot.Hit.Point
	}
	c.lastShot = shot
	if shot.OK {
		c.logger.Debug("shot hit", zap.Uint64("actor", uint64(shot.Hit.Actor)), zap.Float64("distance", shot.Hit.Distance))
	}
}

func (c *Coordinator) switchWeapon(slot Item) {
	if !c.CanSwitch(slot) {
		return
	}
	if c.state.Locomotion == Sliding && slot != Gun {
		c.exitLocomotion()
	}
	from := c.state.Item
	c.state.Item = slot
	c.logger.Debug("item", zap.Stringer("from", from), zap.Stringer("to", slot))
	if c.cfg.SwitchTime > 0 {
		c.enterAction(SwitchingWeapon)
	}
	c.begin(Switch, c.cfg.SwitchTime)
}

func (c *Coordinator) jump() {
	switch {
	case c.CanWallJump():
		c.startWallJump()
	case c.CanWallRun():
		c.startWallRun()
	case c.CanWallClimb():
		c.startWallClimb()
	}
	c.body.Jump()
}

func (c *Coordinator) startWallRun() {
	hit, _ := c.wallRunProbe()
	c.enterLocomotion(WallRunning)
	c.state.WallReset = false

	speed := common.Horizontal(c.body.Velocity()).Len()
	if speed < c.body.MaxWalkSpeed() {
		speed = c.cfg.WallRunSpeed
	}
	c.state.WallSpeed = speed
	c.attach(hit)
	c.begin(WallRun, c.cfg.MaxWallRunTime)
}

func (c *Coordinator) startWallClimb() {
	hit, _ := c.wallClimbProbe()
	c.enterLocomotion(WallClimbing)
	c.state.WallReset = false
	c.state.WallSpeed = c.cfg.WallClimbSpeed
	c.attach(hit)
	c.begin(WallClimb, c.cfg.MaxWallClimbTime)
}

func (c *Coordinator) startWallJump() {
	var wall Contact
	switch c.state.Locomotion {
	case WallRunning, WallClimbing:
		wall = c.state.WallContact
	default:
		hit, _ := c.wallClimbProbe()
		wall = hit.Contact
	}
	c.enterLocomotion(WallJumping)
	c.state.LastWallContact = wall

	vel := c.body.Velocity()
	if c.state.WallReset {
		vel = common.Up.Mul(c.cfg.WallResetJumpSpeed)
	} else {
		vel[2] = 0
	}
	c.body.SetVelocity(vel)
	c.state.WallReset = false

	var impulse mgl64.Vec3
	if dir, ok := common.SafeNormalize(wall.Normal.Add(common.Up)); ok {
		impulse = dir.Mul(c.cfg.WallJumpForce)
		c.body.AddImpulse(impulse)
	}
	c.state.WallJumpVelocity = common.Horizontal(vel.Add(impulse))
	c.begin(WallJump, c.cfg.WallJumpTime)
}

func (c *Coordinator) attach(hit WallHit) {
	c.state.WallContact = hit.Contact
	c.state.WallDirection = hit.Direction
}

func (c *Coordinator) updateWall() {
	var (
		hit WallHit
		ok  bool
	)
	switch c.state.Locomotion {
	case WallRunning:
		hit, ok = c.wallRunProbe()
	case WallClimbing:
		hit, ok = c.wallClimbProbe()
	default:
		return
	}
	if !ok {
		c.exitLocomotion()
		return
	}
	c.attach(hit)
	if c.state.Locomotion == WallRunning {
		c.body.AddForce(hit.Contact.Normal.Mul(-c.cfg.WallStickForce))
	}
}

func (c *Coordinator) wallRunProbe() (WallHit, bool) {
	if c.probe == nil {
		return WallHit{}, false
	}
	pos := c.body.Position()
	last := c.state.LastWallContact
	if c.runMemo.matches(c.frame, c.state.Yaw, pos, last) {
		return c.runMemo.hit, c.runMemo.ok
	}
	forward, right := c.axes()
	hit, ok := c.probe.ProbeWallDirection(pos, forward, right, last)
	c.runMemo = probeMemo{valid: true, frame: c.frame, yaw: c.state.Yaw, pos: pos, last: last, hit: hit, ok: ok}
	return hit, ok
}

func (c *Coordinator) wallClimbProbe() (WallHit, bool) {
	if c.probe == nil {
		return WallHit{}, false
	}
	pos := c.body.Position()
	last := c.state.LastWallContact
	if c.climbMemo.matches(c.frame, c.state.Yaw, pos, last) {
		return c.climbMemo.hit, c.climbMemo.ok
	}
	forward, _ := c.axes()
	hit, ok := c.probe.ProbeClimbDirection(pos, forward, last)
	c.climbMemo = probeMemo{valid: true, frame: c.frame, yaw: c.state.Yaw, pos: pos, last: last, hit: hit, ok: ok}
	return hit, ok
}

func (c *Coordinator) triggerSlice() {
	if c.slicer == nil {
		return
	}
	forward, right := c.axes()
	a := Attack{
		ID:      uuid.New(),
		Origin:  c.body.Position(),
		Forward: forward,
		Right:   right,
	}
	c.lastAttack = a.ID
	c.slicer.Trigger(a)
}

// begin starts the duration of k. A zero duration finishes it at once.
func (c *Coordinator) begin(k Kind, duration float64) {
	if duration <= 0 {
		if c.state.Active(k) {
			c.expire(k)
			return
		}
		c.finish(k)
		return
	}
	c.state.Timers[k] = Timer{Duration: duration}
}

// finish ends the duration of k and starts its cooldown.
func (c *Coordinator) finish(k Kind) {
	c.state.Timers[k] = Timer{Cooldown: c.cfg.cooldown(k)}
}

func (c *Coordinator) expire(k Kind) {
	if lk, ok := locomotionKinds[c.state.Locomotion]; ok && lk == k {
		c.exitLocomotion()
		return
	}
	if ak, ok := actionKinds[c.state.Action]; ok && ak == k {
		c.exitAction()
		return
	}
	c.finish(k)
}

func (c *Coordinator) enterLocomotion(next Locomotion) {
	prev := c.state.Locomotion
	if prev != Neutral {
		c.exitLocomotion()
	}
	c.state.Locomotion = next
	c.logger.Debug("locomotion", zap.Stringer("from", prev), zap.Stringer("to", next))
}

// exitLocomotion runs the exit effects of the current locomotion state and
// returns to Neutral.
func (c *Coordinator) exitLocomotion() {
	cur := c.state.Locomotion
	if cur == Neutral {
		return
	}
	c.finish(locomotionKinds[cur])
	switch cur {
	case Dashing, Sliding:
		c.body.SetBrakingDeceleration(c.cfg.Deceleration)
		c.body.SetJumpAllowed(true)
	case WallRunning, WallClimbing:
		c.state.LastWallContact = c.state.WallContact
		c.state.WallContact = Contact{}
		c.state.WallDirection = mgl64.Vec3{}
		c.state.WallSpeed = 0
	case WallJumping:
		c.state.WallJumpVelocity = mgl64.Vec3{}
	}
	c.state.Locomotion = Neutral
	c.logger.Debug("locomotion", zap.Stringer("from", cur), zap.Stringer("to", Neutral))
}

func (c *Coordinator) enterAction(next Action) {
	prev := c.state.Action
	if prev != ActionNone {
		c.exitAction()
	}
	c.state.Action = next
	c.logger.Debug("action", zap.Stringer("from", prev), zap.Stringer("to", next))
}

func (c *Coordinator) exitAction() {
	cur := c.state.Action
	if cur == ActionNone {
		return
	}
	c.finish(actionKinds[cur])
	c.state.Action = ActionNone
	c.logger.Debug("action", zap.Stringer("from", cur), zap.Stringer("to", ActionNone))
}
