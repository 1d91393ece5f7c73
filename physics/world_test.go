package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/fz5/common"
	"github.com/milk9111/fz5/slicing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld(DefaultConfig(), zaptest.NewLogger(t))
}

func TestRaycastRespectsHeight(t *testing.T) {
	w := newTestWorld(t)
	id := w.AddWall(mgl64.Vec2{100, -100}, mgl64.Vec2{100, 100}, 200, 10)

	hit, ok := w.Raycast(mgl64.Vec3{0, 0, 50}, mgl64.Vec3{200, 0, 50})
	require.True(t, ok)
	assert.Equal(t, id, hit.Actor)
	assert.InDelta(t, 95, hit.Point.X(), 1e-6)
	assert.InDelta(t, 50, hit.Point.Z(), 1e-6)
	assert.InDelta(t, -1, hit.Normal.X(), 1e-6)
	assert.InDelta(t, 95, hit.Distance, 1e-6)

	_, ok = w.Raycast(mgl64.Vec3{0, 0, 250}, mgl64.Vec3{200, 0, 250})
	assert.False(t, ok, "ray passes over the wall")

	_, ok = w.Raycast(mgl64.Vec3{0, 0, 50}, mgl64.Vec3{50, 0, 50})
	assert.False(t, ok, "ray stops short")
}

func TestRaycastNearestWins(t *testing.T) {
	w := newTestWorld(t)
	far := w.AddWall(mgl64.Vec2{300, -100}, mgl64.Vec2{300, 100}, 200, 10)
	box := w.AddBox(mgl64.Vec2{150, 0}, 100, 100, 200)

	hit, ok := w.Raycast(mgl64.Vec3{0, 0, 50}, mgl64.Vec3{400, 0, 50})
	require.True(t, ok)
	assert.Equal(t, box.ID(), hit.Actor)
	assert.NotEqual(t, far, hit.Actor)
}

func TestRaycastIgnoresCharacters(t *testing.T) {
	w := newTestWorld(t)
	w.AddCharacter(mgl64.Vec3{100, 0, 0}, DefaultCharacterConfig())

	_, ok := w.Raycast(mgl64.Vec3{0, 0, 50}, mgl64.Vec3{200, 0, 50})
	assert.False(t, ok)
}

func TestOverlapFindsDestructiblesInBand(t *testing.T) {
	w := newTestWorld(t)
	w.AddWall(mgl64.Vec2{120, -100}, mgl64.Vec2{120, 100}, 200, 10)
	low := w.AddBox(mgl64.Vec2{150, 0}, 100, 100, 200)
	w.AddBox(mgl64.Vec2{150, 200}, 100, 100, 200)

	plane := slicing.Plane{
		Point:   mgl64.Vec3{0, 0, 100},
		Normal:  mgl64.Vec3{0, 1, 0},
		Forward: mgl64.Vec3{1, 0, 0},
		Reach:   300,
		Height:  200,
	}
	got := w.Overlap(plane)
	require.Len(t, got, 1, "walls and boxes off the blade are skipped")
	assert.Equal(t, low.ID(), got[0].Actor)
	assert.InDelta(t, 150, got[0].Center.X(), 1e-6)

	plane.Point = mgl64.Vec3{0, 0, 500}
	assert.Empty(t, w.Overlap(plane), "blade above the box")
}

func TestSliceSplitsBox(t *testing.T) {
	w := newTestWorld(t)
	box := w.AddBox(mgl64.Vec2{150, 0}, 100, 100, 200)
	require.False(t, box.Dynamic())

	ok := box.Slice(mgl64.Vec3{150, 0, 100}, mgl64.Vec3{0, 1, 0})
	require.True(t, ok)

	assert.InDelta(t, 5000, box.Area(), 1e-6)
	assert.False(t, box.Dynamic(), "the kept half stays anchored")
	for _, v := range box.Polygon() {
		assert.LessOrEqual(t, v.Y(), 1e-6)
	}

	spawned := w.TakeSpawned()
	require.Len(t, spawned, 1)
	piece := spawned[0]
	assert.NotEqual(t, box.ID(), piece.ID())
	assert.True(t, piece.Dynamic())
	assert.InDelta(t, 5000, piece.Area(), 1e-6)
	assert.Greater(t, piece.Velocity().Y(), 0.0)
	lo, hi := piece.Height()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 200.0, hi)

	assert.Len(t, w.Destructibles(), 2)
	assert.Empty(t, w.TakeSpawned())

	_, found := w.Target(piece.ID())
	assert.True(t, found)
}

func TestSliceRejects(t *testing.T) {
	tests := []struct {
		name   string
		point  mgl64.Vec3
		normal mgl64.Vec3
	}{
		{"miss", mgl64.Vec3{150, 200, 100}, mgl64.Vec3{0, 1, 0}},
		{"sliver", mgl64.Vec3{150, 49.9999, 100}, mgl64.Vec3{0, 1, 0}},
		{"horizontal", mgl64.Vec3{150, 0, 100}, mgl64.Vec3{0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			box := w.AddBox(mgl64.Vec2{150, 0}, 100, 100, 200)
			assert.False(t, box.Slice(tt.point, tt.normal))
			assert.InDelta(t, 10000, box.Area(), 1e-6)
			assert.Empty(t, w.TakeSpawned())
		})
	}
}

func TestSliceThroughCorner(t *testing.T) {
	w := newTestWorld(t)
	box := w.AddBox(mgl64.Vec2{0, 0}, 100, 100, 100)

	// diagonal through two corners leaves two triangles
	n := mgl64.Vec3{1, -1, 0}.Normalize()
	require.True(t, box.Slice(mgl64.Vec3{0, 0, 50}, n))
	assert.Len(t, box.Polygon(), 3)
	spawned := w.TakeSpawned()
	require.Len(t, spawned, 1)
	assert.Len(t, spawned[0].Polygon(), 3)
}

func TestRemove(t *testing.T) {
	w := newTestWorld(t)
	box := w.AddBox(mgl64.Vec2{150, 0}, 100, 100, 200)

	require.True(t, w.Remove(box.ID()))
	assert.True(t, box.Removed())
	assert.False(t, w.Remove(box.ID()))
	_, ok := w.Target(box.ID())
	assert.False(t, ok)
	assert.False(t, box.Slice(mgl64.Vec3{150, 0, 100}, mgl64.Vec3{0, 1, 0}))

	_, ok = w.Raycast(mgl64.Vec3{0, 0, 50}, mgl64.Vec3{300, 0, 50})
	assert.False(t, ok)
}

func TestNilWorld(t *testing.T) {
	var w *World
	assert.Zero(t, w.AddWall(mgl64.Vec2{}, mgl64.Vec2{1, 0}, 1, 1))
	assert.Nil(t, w.AddBox(mgl64.Vec2{}, 1, 1, 1))
	assert.Nil(t, w.AddCharacter(mgl64.Vec3{}, DefaultCharacterConfig()))
	_, ok := w.Raycast(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	assert.False(t, ok)
	assert.Empty(t, w.Overlap(slicing.Plane{}))
	w.Step(1)
}

func TestCharacterJumpAndLand(t *testing.T) {
	w := newTestWorld(t)
	c := w.AddCharacter(mgl64.Vec3{}, DefaultCharacterConfig())
	require.True(t, c.IsOnGround())
	assert.InDelta(t, 88, c.Position().Z(), 1e-9)

	c.SetJumpAllowed(false)
	assert.False(t, c.Jump())
	c.SetJumpAllowed(true)
	require.True(t, c.Jump())
	assert.False(t, c.Jump(), "already airborne")

	const dt = 1.0 / 60
	landedAt := -1
	for i := 0; i < 120; i++ {
		c.Walk(mgl64.Vec3{}, dt)
		w.Step(dt)
		if c.TakeLanded() {
			landedAt = i
			break
		}
	}
	require.Positive(t, landedAt)
	assert.True(t, c.IsOnGround())
	assert.Zero(t, c.Velocity().Z())
	assert.False(t, c.TakeLanded(), "landing is reported once")
}

func TestCharacterWalkAndBrake(t *testing.T) {
	w := newTestWorld(t)
	cfg := DefaultCharacterConfig()
	c := w.AddCharacter(mgl64.Vec3{}, cfg)
	c.SetBrakingDeceleration(2048)

	c.Walk(mgl64.Vec3{1, 0, 0}, 0.1)
	assert.InDelta(t, 204.8, c.Velocity().X(), 1e-6)

	for i := 0; i < 10; i++ {
		c.Walk(mgl64.Vec3{1, 0, 0}, 0.1)
	}
	assert.InDelta(t, cfg.MaxWalkSpeed, c.Velocity().Len(), 1e-6)

	c.Walk(mgl64.Vec3{}, 0.1)
	assert.InDelta(t, cfg.MaxWalkSpeed-204.8, c.Velocity().X(), 1e-6)

	c.SetVelocity(mgl64.Vec3{3000, 0, 0})
	c.Walk(mgl64.Vec3{1, 0, 0}, 0.1)
	assert.InDelta(t, 3000-204.8, c.Velocity().X(), 1e-6, "over-speed decays by braking")
}

func TestCharacterForcesAndImpulses(t *testing.T) {
	w := newTestWorld(t)
	c := w.AddCharacter(mgl64.Vec3{}, DefaultCharacterConfig())

	c.AddForce(mgl64.Vec3{0, 100, 0})
	c.AddForce(mgl64.Vec3{0, 100, 0})
	c.ApplyForces(0.5)
	assert.InDelta(t, 100, c.Velocity().Y(), 1e-9)
	c.ApplyForces(0.5)
	assert.InDelta(t, 100, c.Velocity().Y(), 1e-9, "forces are cleared")

	c.AddImpulse(mgl64.Vec3{0, 0, 300})
	assert.False(t, c.IsOnGround())
	assert.InDelta(t, 300, c.Velocity().Z(), 1e-9)
}

func TestCharacterVerticalStep(t *testing.T) {
	w := newTestWorld(t)
	c := w.AddCharacter(mgl64.Vec3{}, DefaultCharacterConfig())
	c.SetVelocity(mgl64.Vec3{0, 0, 600})
	w.Step(0.5)
	assert.InDelta(t, 300, c.Feet().Z(), 1e-9)
	assert.Equal(t, common.ActorID(1), c.ID())
}
