package ability

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/fz5/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WallCheckDistance = 0
	_, err := New(cfg, newFakeBody(), &fakeProbe{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = New(DefaultConfig(), nil, &fakeProbe{})
	require.Error(t, err)
}

func TestInitialState(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	s := h.c.State()
	assert.Equal(t, Neutral, s.Locomotion)
	assert.Equal(t, ActionNone, s.Action)
	assert.Equal(t, Sword, s.Item)
	for _, k := range Kinds() {
		assert.Zero(t, s.Timer(k), k.String())
	}
	assert.Equal(t, h.cfg.Deceleration, h.body.braking)
}

func TestDashStartsWithoutCooldown(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.send(MoveStart(1, 0), DashPressed())

	s := h.c.State()
	require.Equal(t, Dashing, s.Locomotion)
	assert.InDelta(t, h.cfg.DashSpeed, s.DashVelocity.X(), 1e-9)
	assert.InDelta(t, 0, s.DashVelocity.Y(), 1e-9)
	assert.Equal(t, 0.0, s.DashVelocity.Z())
	assert.Equal(t, 0.0, s.Cooldown(Dash))
	assert.Equal(t, h.cfg.DashingTime, s.Duration(Dash))
	assert.Equal(t, 0.0, h.body.braking)
	assert.False(t, h.body.jumpAllowed)
	assert.Len(t, h.slicer.attacks, 1)
}

func TestDashExpiresOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DashingTime = 0.25
	h := newHarness(t, cfg)
	h.body.vel = mgl64.Vec3{0, 0, -30}
	h.send(DashPressed())
	assert.Equal(t, 0.0, h.body.vel.Z())

	exits := 0
	for i := 0; i < 12; i++ {
		before := h.c.State().Locomotion
		h.c.Tick(0.0625)
		after := h.c.State()
		if before == Dashing && after.Locomotion == Neutral {
			exits++
			assert.Equal(t, cfg.DashCooldown, after.Cooldown(Dash), "cooldown starts in the expiry tick")
			assert.Equal(t, 3, i)
		}
	}
	assert.Equal(t, 1, exits)
	assert.Equal(t, cfg.Deceleration, h.body.braking)
	assert.True(t, h.body.jumpAllowed)
}

func TestDashUsesMoveDirectionAndFacing(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.send(LookDelta(90, 0), MoveStart(0, 1), DashPressed())

	s := h.c.State()
	require.Equal(t, Dashing, s.Locomotion)
	assert.Equal(t, 90.0, s.FacingYaw)
	// right of a +Y facing is -X
	assert.InDelta(t, -h.cfg.DashSpeed, s.DashVelocity.X(), 1e-6)
	assert.InDelta(t, 0, s.DashVelocity.Y(), 1e-6)
}

func TestDashOverrideVertical(t *testing.T) {
	tests := []struct {
		name     string
		grounded bool
		vz       float64
		want     float64
	}{
		{"airborne keeps falling", false, -12, -12},
		{"airborne keeps rising", false, 40, 40},
		{"grounded lifts off the floor", true, -12, dashLift},
		{"grounded at rest", true, 0, dashLift},
		{"grounded rising", true, 40, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, DefaultConfig())
			h.send(DashPressed())
			h.body.grounded = tt.grounded
			h.body.vel = mgl64.Vec3{5, 5, tt.vz}

			v, ok := h.c.VelocityOverride()
			require.True(t, ok)
			assert.InDelta(t, h.cfg.DashSpeed, v.X(), 1e-9)
			assert.InDelta(t, 0, v.Y(), 1e-9)
			assert.Equal(t, tt.want, v.Z())
		})
	}
}

func TestNoOverrideWhenNeutral(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	_, ok := h.c.VelocityOverride()
	assert.False(t, ok)
}

func TestCanSlideNeedsForwardSpeed(t *testing.T) {
	cases := []struct {
		name  string
		speed float64
		want  bool
	}{
		{"fast", 600, true},
		{"slow", 400, false},
		{"threshold", 500, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(t, DefaultConfig())
			h.equip(Gun)
			h.body.vel = mgl64.Vec3{c.speed, 0, 0}
			assert.Equal(t, c.want, h.c.CanSlide())
		})
	}
}

func TestSlideLifecycle(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.equip(Gun)
	h.body.vel = mgl64.Vec3{700, 0, 0}

	h.send(DashPressed())
	require.Equal(t, Sliding, h.c.State().Locomotion)
	assert.Equal(t, h.cfg.SlideDeceleration, h.body.braking)

	h.send(DashReleased())
	assert.Equal(t, Neutral, h.c.State().Locomotion)
	assert.Equal(t, h.cfg.Deceleration, h.body.braking)
}

func TestAttackWhileParryingIsIgnored(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.send(ParryPressed())
	require.Equal(t, Parrying, h.c.State().Action)

	assert.False(t, h.c.CanSlash())
	before := h.c.State()
	h.send(AttackPressed())
	assert.Equal(t, before, h.c.State())
	assert.Empty(t, h.slicer.attacks)

	h.send(DashPressed())
	assert.Equal(t, before, h.c.State(), "parry blocks dash")
}

func TestParryReleaseStartsCooldown(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.send(ParryPressed())
	h.c.Tick(0.0625)
	h.send(ParryReleased())

	s := h.c.State()
	assert.Equal(t, ActionNone, s.Action)
	assert.Equal(t, h.cfg.ParryCooldown, s.Cooldown(Parry))
	assert.Equal(t, 0.0, s.Duration(Parry))
	assert.False(t, h.c.CanParry())
	assert.False(t, h.c.CanSlash(), "parry cooldown blocks slash")
}

func TestParryNotAllowedWhileDashing(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.send(DashPressed())
	before := h.c.State()
	h.send(ParryPressed())
	assert.Equal(t, before, h.c.State())
}

func TestSlashTriggersSlice(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.send(LookDelta(90, 0), AttackPressed())

	s := h.c.State()
	require.Equal(t, Slashing, s.Action)
	require.Len(t, h.slicer.attacks, 1)
	a := h.slicer.attacks[0]
	assert.Equal(t, h.c.LastAttack(), a.ID)
	assert.True(t, a.Forward.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9))
	assert.True(t, a.Right.ApproxEqualThreshold(mgl64.Vec3{-1, 0, 0}, 1e-9))

	for i := 0; i < 8; i++ {
		h.c.Tick(0.0625)
	}
	s = h.c.State()
	assert.Equal(t, ActionNone, s.Action)
	assert.Greater(t, s.Cooldown(Slash), 0.0)
}

func TestDashWhileSlashingRule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.DashWhileSlashing = false
	h := newHarness(t, cfg)
	h.send(AttackPressed())
	require.Equal(t, Slashing, h.c.State().Action)
	assert.False(t, h.c.CanDash())

	h2 := newHarness(t, DefaultConfig())
	h2.send(AttackPressed())
	assert.True(t, h2.c.CanDash())
}

func TestSlashResetsDashRule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.SlashResetsDash = true
	cfg.DashingTime = 0.0625
	h := newHarness(t, cfg)
	h.send(DashPressed())
	h.c.Tick(0.0625)
	require.Greater(t, h.c.State().Cooldown(Dash), 0.0)

	h.send(AttackPressed())
	assert.Equal(t, 0.0, h.c.State().Cooldown(Dash))
}

func TestDashSlicesRule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules.DashSlices = false
	h := newHarness(t, cfg)
	h.send(DashPressed())
	assert.Empty(t, h.slicer.attacks)
}

func TestSwitchWeapon(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.send(SwitchWeapon(Sword))
	assert.Equal(t, ActionNone, h.c.State().Action, "same slot is ignored")

	h.send(SwitchWeapon(Gun))
	s := h.c.State()
	assert.Equal(t, Gun, s.Item)
	assert.Equal(t, SwitchingWeapon, s.Action)

	before := h.c.State()
	h.send(SwitchWeapon(Heal))
	assert.Equal(t, before, h.c.State(), "switch while switching is ignored")

	h.send(SwitchWeapon(Item(9)))
	assert.Equal(t, before, h.c.State())
}

func TestInstantSwitchStartsCooldown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SwitchTime = 0
	h := newHarness(t, cfg)
	h.send(SwitchWeapon(Gun))
	s := h.c.State()
	assert.Equal(t, Gun, s.Item)
	assert.Equal(t, ActionNone, s.Action)
	assert.Equal(t, cfg.SwitchCooldown, s.Cooldown(Switch))
}

func TestShootHitscan(t *testing.T) {
	caster := fakeCaster{hit: common.RayHit{Actor: 3, Distance: 250}, ok: true}
	h := newHarness(t, DefaultConfig(), WithHitscan(caster))
	h.equip(Gun)

	h.send(AttackPressed())
	s := h.c.State()
	assert.Equal(t, Shooting, s.Action)
	shot := h.c.LastShot()
	assert.True(t, shot.OK)
	assert.Equal(t, common.ActorID(3), shot.Hit.Actor)
	assert.Equal(t, uint64(1), shot.Seq)
	assert.Empty(t, h.slicer.attacks, "shooting does not slice")
}

func TestShootWithoutHitscanStillCounts(t *testing.T) {
	cfg := DefaultConfig()
	h := newHarness(t, cfg)
	h.equip(Gun)

	h.send(AttackPressed())
	shot := h.c.LastShot()
	assert.False(t, shot.OK)
	assert.Equal(t, uint64(1), shot.Seq)
	assert.InDelta(t, cfg.ShootCheckDistance, shot.End.Sub(shot.Origin).Len(), 1e-9)
}

func TestWallRunLifecycle(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	wall := leftWall()
	h.probe.run = wall
	h.body.grounded = false
	h.body.vel = mgl64.Vec3{100, 0, -50}

	assert.False(t, h.c.CanWallRun(), "not moving")
	h.send(MoveStart(1, 0))
	require.True(t, h.c.CanWallRun())

	h.send(JumpPressed())
	s := h.c.State()
	require.Equal(t, WallRunning, s.Locomotion)
	assert.Equal(t, h.cfg.WallRunSpeed, s.WallSpeed, "slow entry uses the configured speed")

	v, ok := h.c.VelocityOverride()
	require.True(t, ok)
	assert.True(t, v.Vec2().ApproxEqualThreshold(wall.Direction.Mul(h.cfg.WallRunSpeed).Vec2(), 1e-9))
	assert.Equal(t, 0.0, v.Z(), "vertical is clamped at zero")

	h.c.Tick(0.0625)
	require.Len(t, h.body.forces, 1)
	assert.True(t, h.body.forces[0].ApproxEqualThreshold(wall.Contact.Normal.Mul(-h.cfg.WallStickForce), 1e-9))

	h.probe.run = nil
	h.c.Tick(0.0625)
	s = h.c.State()
	assert.Equal(t, Neutral, s.Locomotion)
	assert.Equal(t, wall.Contact, s.LastWallContact)

	h.probe.run = wall
	assert.False(t, h.c.CanWallRun(), "same surface is debounced")

	h.c.Landed()
	assert.True(t, h.c.CanWallRun())
}

func TestWallRunKeepsFastEntrySpeed(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.run = leftWall()
	h.body.grounded = false
	h.body.vel = mgl64.Vec3{900, 0, 0}
	h.send(MoveStart(1, 0), JumpPressed())
	assert.Equal(t, 900.0, h.c.State().WallSpeed)
}

func TestWallRunPreemptsDash(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.run = leftWall()
	h.body.grounded = false
	h.send(MoveStart(1, 0), DashPressed())
	require.Equal(t, Dashing, h.c.State().Locomotion)

	h.send(JumpPressed())
	s := h.c.State()
	assert.Equal(t, WallRunning, s.Locomotion)
	assert.Equal(t, h.cfg.DashCooldown, s.Cooldown(Dash))
	assert.Equal(t, 0.0, s.Duration(Dash))
}

func TestGroundedDashCannotWallRun(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.run = leftWall()
	h.send(MoveStart(1, 0), DashPressed())
	assert.False(t, h.c.CanWallRun())
}

func TestWallRunTimesOut(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWallRunTime = 0.125
	h := newHarness(t, cfg)
	h.probe.run = leftWall()
	h.body.grounded = false
	h.send(MoveStart(1, 0), JumpPressed())
	h.c.Tick(0.0625)
	assert.Equal(t, WallRunning, h.c.State().Locomotion)
	h.c.Tick(0.0625)
	assert.Equal(t, Neutral, h.c.State().Locomotion)
}

func TestWallClimbAndJump(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	wall := frontWall(11)
	h.probe.climb = wall
	h.send(MoveStart(1, 0))
	require.True(t, h.c.CanWallClimb())

	h.send(JumpPressed())
	require.Equal(t, WallClimbing, h.c.State().Locomotion)
	v, ok := h.c.VelocityOverride()
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0, 0, h.cfg.WallClimbSpeed}, v)

	h.body.grounded = false
	h.body.vel = mgl64.Vec3{0, 0, 300}
	h.send(JumpPressed())
	s := h.c.State()
	require.Equal(t, WallJumping, s.Locomotion)
	assert.Equal(t, wall.Contact, s.LastWallContact)

	dir, _ := common.SafeNormalize(wall.Contact.Normal.Add(common.Up))
	want := dir.Mul(h.cfg.WallJumpForce)
	require.Len(t, h.body.impulses, 1)
	assert.True(t, h.body.impulses[0].ApproxEqualThreshold(want, 1e-9))
	assert.InDelta(t, want.Z(), h.body.vel.Z(), 1e-9, "vertical velocity was zeroed before the impulse")

	jv, ok := h.c.VelocityOverride()
	require.True(t, ok)
	assert.InDelta(t, want.X(), jv.X(), 1e-9)
}

func TestWallResetChain(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.climb = frontWall(11)
	h.send(MoveStart(1, 0), JumpPressed())
	h.body.grounded = false
	h.send(JumpPressed())
	require.Equal(t, WallJumping, h.c.State().Locomotion)
	assert.False(t, h.c.CanWallJump(), "needs a wall reset")
	assert.False(t, h.c.CanDash(), "no dash out of a wall jump without a slash")

	h.send(AttackPressed())
	require.Equal(t, Slashing, h.c.State().Action)
	require.Equal(t, WallJumping, h.c.State().Locomotion)
	h.send(DashPressed())
	s := h.c.State()
	require.Equal(t, Dashing, s.Locomotion)
	assert.True(t, s.WallReset)
	assert.False(t, h.c.CanWallJump(), "same wall is debounced")

	h.probe.climb = frontWall(12)
	require.True(t, h.c.CanWallJump())
	h.body.impulses = nil
	h.send(JumpPressed())
	s = h.c.State()
	assert.Equal(t, WallJumping, s.Locomotion)
	assert.False(t, s.WallReset)
	require.Len(t, h.body.impulses, 1)
	assert.InDelta(t, h.cfg.WallResetJumpSpeed+h.body.impulses[0].Z(), h.body.vel.Z(), 1e-9)
}

func TestDashAndSlideIgnoredOnWalls(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		want  Locomotion
	}{
		{
			name: "dash while wall running",
			setup: func(h *harness) {
				h.probe.run = leftWall()
				h.body.grounded = false
				h.send(MoveStart(1, 0), JumpPressed())
			},
			want: WallRunning,
		},
		{
			name: "dash while wall climbing",
			setup: func(h *harness) {
				h.probe.climb = frontWall(11)
				h.send(MoveStart(1, 0), JumpPressed())
			},
			want: WallClimbing,
		},
		{
			name: "slide while wall running",
			setup: func(h *harness) {
				h.equip(Gun)
				h.probe.run = leftWall()
				h.body.grounded = false
				h.body.vel = mgl64.Vec3{900, 0, 0}
				h.send(MoveStart(1, 0), JumpPressed())
			},
			want: WallRunning,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, DefaultConfig())
			tt.setup(h)
			before := h.c.State()
			require.Equal(t, tt.want, before.Locomotion)
			assert.False(t, h.c.CanDash())
			assert.False(t, h.c.CanSlide())

			h.send(DashPressed())
			assert.Equal(t, before, h.c.State())
			assert.Empty(t, h.slicer.attacks)
		})
	}
}

func TestSlashLetsDashLeaveWallRun(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.send(AttackPressed())
	require.Equal(t, Slashing, h.c.State().Action)

	h.probe.run = leftWall()
	h.body.grounded = false
	h.send(MoveStart(1, 0), JumpPressed())
	require.Equal(t, WallRunning, h.c.State().Locomotion)

	require.True(t, h.c.CanDash())
	h.send(DashPressed())
	s := h.c.State()
	assert.Equal(t, Dashing, s.Locomotion)
	assert.Equal(t, leftWall().Contact, s.LastWallContact, "the wall run exited first")
	assert.Equal(t, 0.0, s.Duration(WallRun))
}

func TestTransitionLogNamesPreviousState(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := newHarness(t, DefaultConfig(), WithLogger(zap.New(core)))
	h.probe.run = leftWall()
	h.body.grounded = false
	h.send(MoveStart(1, 0), DashPressed(), JumpPressed())
	require.Equal(t, WallRunning, h.c.State().Locomotion)

	entries := logs.FilterMessage("locomotion").AllUntimed()
	require.Len(t, entries, 3)
	enter := entries[2].ContextMap()
	assert.Equal(t, "dashing", enter["from"])
	assert.Equal(t, "wall_running", enter["to"])

	h.send(AttackPressed())
	actions := logs.FilterMessage("action").AllUntimed()
	require.Len(t, actions, 1)
	assert.Equal(t, "none", actions[0].ContextMap()["from"])
	assert.Equal(t, "slashing", actions[0].ContextMap()["to"])
}

func TestLandedClearsWallBookkeeping(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.c.state.WallReset = true
	h.c.state.LastWallContact = Contact{Actor: 4}
	h.c.Landed()
	s := h.c.State()
	assert.False(t, s.WallReset)
	assert.False(t, s.LastWallContact.Valid())
}

func TestAttackCancelsWallRun(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.run = leftWall()
	h.body.grounded = false
	h.send(MoveStart(1, 0), JumpPressed())
	require.Equal(t, WallRunning, h.c.State().Locomotion)

	h.send(AttackPressed())
	s := h.c.State()
	assert.Equal(t, Slashing, s.Action)
	assert.Equal(t, Neutral, s.Locomotion)
}

func TestProbeMemoizedPerFrame(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.probe.run = leftWall()
	h.body.grounded = false
	h.send(MoveStart(1, 0))

	h.c.CanWallRun()
	h.c.CanWallRun()
	h.send(JumpPressed())
	h.c.Tick(0.0625)
	assert.Equal(t, 1, h.probe.runCalls)

	h.c.CanWallRun()
	assert.Equal(t, 2, h.probe.runCalls, "new frame probes again")
}

func TestMovementInput(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	assert.Equal(t, mgl64.Vec3{}, h.c.MovementInput())

	h.send(LookDelta(90, 0), MoveStart(2, 0))
	assert.True(t, h.c.MovementInput().ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9))

	h.send(DashPressed())
	assert.Equal(t, mgl64.Vec3{}, h.c.MovementInput(), "dash steers the body")

	h.send(MoveStop())
	assert.Equal(t, DefaultMoveDirection, h.c.State().MoveDirection)
}

func TestLookClampsPitch(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.send(LookDelta(-30, 200))
	s := h.c.State()
	assert.Equal(t, 330.0, s.Yaw)
	assert.Equal(t, 89.0, s.Pitch)
}

func TestSetConfigAppliesToNewAbilities(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.send(DashPressed())

	cfg := DefaultConfig()
	cfg.DashCooldown = 2
	require.NoError(t, h.c.SetConfig(cfg))
	for i := 0; i < 8; i++ {
		h.c.Tick(0.0625)
	}
	assert.InDelta(t, 2-0.0625*4, h.c.State().Cooldown(Dash), 1e-9)

	bad := cfg
	bad.DashSpeed = -1
	err := h.c.SetConfig(bad)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Equal(t, 2.0, h.c.Config().DashCooldown)
}

func TestNilCoordinatorIsInert(t *testing.T) {
	var c *Coordinator
	c.OnCommand(DashPressed())
	c.Tick(1)
	c.Landed()
	_, ok := c.VelocityOverride()
	assert.False(t, ok)
	assert.False(t, c.CanDash())
}
