package ability

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/fz5/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const fakeJumpSpeed = 420

type fakeBody struct {
	pos         mgl64.Vec3
	vel         mgl64.Vec3
	grounded    bool
	maxWalk     float64
	braking     float64
	jumpAllowed bool
	impulses    []mgl64.Vec3
	forces      []mgl64.Vec3
	jumps       int
}

func newFakeBody() *fakeBody {
	return &fakeBody{grounded: true, maxWalk: 600, jumpAllowed: true}
}

func (b *fakeBody) Position() mgl64.Vec3 { return b.pos }
func (b *fakeBody) Velocity() mgl64.Vec3 { return b.vel }
func (b *fakeBody) SetVelocity(v mgl64.Vec3) { b.vel = v }
func (b *fakeBody) IsOnGround() bool { return b.grounded }
func (b *fakeBody) MaxWalkSpeed() float64 { return b.maxWalk }
func (b *fakeBody) SetBrakingDeceleration(f float64) { b.braking = f }
func (b *fakeBody) SetJumpAllowed(allowed bool) { b.jumpAllowed = allowed }

func (b *fakeBody) AddImpulse(v mgl64.Vec3) {
	b.impulses = append(b.impulses, v)
	b.vel = b.vel.Add(v)
}

func (b *fakeBody) AddForce(v mgl64.Vec3) {
	b.forces = append(b.forces, v)
}

func (b *fakeBody) Jump() bool {
	b.jumps++
	if !b.grounded || !b.jumpAllowed {
		return false
	}
	b.vel[2] = fakeJumpSpeed
	return true
}

// fakeProbe returns fixed hits and honors the debounce contact.
type fakeProbe struct {
	run        *WallHit
	climb      *WallHit
	runCalls   int
	climbCalls int
}

func (p *fakeProbe) ProbeWallDirection(_, _, _ mgl64.Vec3, last Contact) (WallHit, bool) {
	p.runCalls++
	if p.run == nil || p.run.Contact.Matches(last) {
		return WallHit{}, false
	}
	return *p.run, true
}

func (p *fakeProbe) ProbeClimbDirection(_, _ mgl64.Vec3, last Contact) (WallHit, bool) {
	p.climbCalls++
	if p.climb == nil || p.climb.Contact.Matches(last) {
		return WallHit{}, false
	}
	return *p.climb, true
}

type fakeSlicer struct {
	attacks []Attack
}

func (s *fakeSlicer) Trigger(a Attack) {
	s.attacks = append(s.attacks, a)
}

type fakeCaster struct {
	hit common.RayHit
	ok  bool
}

func (f fakeCaster) Raycast(_, _ mgl64.Vec3) (common.RayHit, bool) {
	return f.hit, f.ok
}

// leftWall is a wall on the character's left at yaw 0, angled back toward it.
func leftWall() *WallHit {
	return &WallHit{
		Contact:   Contact{Actor: 7, Normal: mgl64.Vec3{-0.5, 0.8660254037844386, 0}},
		Direction: mgl64.Vec3{0.8660254037844386, 0.5, 0},
	}
}

// frontWall is a wall straight ahead at yaw 0.
func frontWall(actor common.ActorID) *WallHit {
	return &WallHit{
		Contact:   Contact{Actor: actor, Normal: mgl64.Vec3{-1, 0, 0}},
		Direction: common.Up,
	}
}

type harness struct {
	c      *Coordinator
	body   *fakeBody
	probe  *fakeProbe
	slicer *fakeSlicer
	cfg    Config
}

func buildHarness(cfg Config, opts ...Option) (*harness, error) {
	h := &harness{
		body:   newFakeBody(),
		probe:  &fakeProbe{},
		slicer: &fakeSlicer{},
		cfg:    cfg,
	}
	c, err := New(cfg, h.body, h.probe, append([]Option{WithSlicer(h.slicer)}, opts...)...)
	if err != nil {
		return nil, err
	}
	h.c = c
	return h, nil
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()
	h, err := buildHarness(cfg, append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...)
	require.NoError(t, err)
	return h
}

func (h *harness) send(cmds ...Command) {
	for _, cmd := range cmds {
		h.c.OnCommand(cmd)
	}
}

// equip switches items and lets the switch action finish.
func (h *harness) equip(item Item) {
	h.c.OnCommand(SwitchWeapon(item))
	for i := 0; i < 64 && h.c.State().Action == SwitchingWeapon; i++ {
		h.c.Tick(0.0625)
	}
	for i := 0; i < 64 && !h.c.State().Ready(Switch); i++ {
		h.c.Tick(0.0625)
	}
}
