package slicing

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/milk9111/fz5/ability"
	"github.com/milk9111/fz5/common"
	"go.uber.org/zap"
)

const resultBuffer = 16

// Plane is the cutting blade: a vertical rectangle anchored at Point that
// extends Reach along Forward and Height around Point's height. Normal is the
// plane's up-vector and the cut normal.
type Plane struct {
	Point   mgl64.Vec3
	Normal  mgl64.Vec3
	Forward mgl64.Vec3
	Reach   float64
	Height  float64
}

// Candidate is an object overlapping the plane.
type Candidate struct {
	Actor  common.ActorID
	Center mgl64.Vec3
}

// Scene is the read side of the world a scan runs against. It must be safe to
// call from the scan goroutine.
type Scene interface {
	common.Raycaster
	Overlap(plane Plane) []Candidate
}

// Target is an object that can be cut in two.
type Target interface {
	Slice(point, normal mgl64.Vec3) bool
}

// Registry resolves live targets on the simulation goroutine.
type Registry interface {
	Target(id common.ActorID) (Target, bool)
}

// Cut is one planned slice.
type Cut struct {
	Attack uuid.UUID
	Target common.ActorID
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

type Config struct {
	Reach  float64
	Height float64
	Async  bool
}

func ConfigFrom(cfg ability.Config, async bool) Config {
	return Config{Reach: cfg.SliceReach, Height: cfg.SliceHeight, Async: async}
}

// Trigger plans cuts for melee attacks and applies them later on the
// simulation goroutine.
type Trigger struct {
	scene  Scene
	logger *zap.Logger

	mu  sync.Mutex
	cfg Config

	ready   []Cut
	results chan []Cut
	pending sync.WaitGroup
}

func New(scene Scene, cfg Config, logger *zap.Logger) *Trigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trigger{
		scene:   scene,
		cfg:     cfg,
		logger:  logger,
		results: make(chan []Cut, resultBuffer),
	}
}

func (t *Trigger) Configure(cfg Config) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.cfg = cfg
	t.mu.Unlock()
}

func (t *Trigger) config() Config {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg
}

// PlaneFor anchors the blade at the attack origin.
func (t *Trigger) PlaneFor(a ability.Attack) Plane {
	cfg := t.config()
	return Plane{
		Point:   a.Origin,
		Normal:  a.Right,
		Forward: a.Forward,
		Reach:   cfg.Reach,
		Height:  cfg.Height,
	}
}

// Trigger starts the scan for one attack. In async mode the scan runs on its
// own goroutine and its cuts are picked up by a later Apply.
func (t *Trigger) Trigger(a ability.Attack) {
	if t == nil || t.scene == nil {
		return
	}
	plane := t.PlaneFor(a)
	if !t.config().Async {
		t.ready = append(t.ready, Scan(t.scene, a.ID, plane)...)
		return
	}
	t.pending.Add(1)
	go func() {
		defer t.pending.Done()
		t.results <- Scan(t.scene, a.ID, plane)
	}()
}

// Wait blocks until every async scan has delivered its cuts. Delivered cuts
// are held for the next Apply, so scans never block on a full result buffer.
// Call it from the simulation goroutine.
func (t *Trigger) Wait() {
	if t == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		t.pending.Wait()
		close(done)
	}()
	for {
		select {
		case cuts := <-t.results:
			t.ready = append(t.ready, cuts...)
		case <-done:
			t.collect()
			return
		}
	}
}

// collect moves buffered scan results into ready without blocking.
func (t *Trigger) collect() {
	for {
		select {
		case cuts := <-t.results:
			t.ready = append(t.ready, cuts...)
		default:
			return
		}
	}
}

// Apply slices every planned cut whose target is still alive and returns how
// many objects were cut. Call it from the simulation goroutine.
func (t *Trigger) Apply(reg Registry) int {
	if t == nil || reg == nil {
		return 0
	}
	t.collect()
	applied := t.apply(reg, t.ready)
	t.ready = t.ready[:0]
	return applied
}

func (t *Trigger) apply(reg Registry, cuts []Cut) int {
	applied := 0
	for _, cut := range cuts {
		target, ok := reg.Target(cut.Target)
		if !ok {
			t.logger.Debug("slice target gone", zap.Uint64("actor", uint64(cut.Target)), zap.Stringer("attack", cut.Attack))
			continue
		}
		if !target.Slice(cut.Point, cut.Normal) {
			continue
		}
		applied++
		t.logger.Debug("sliced", zap.Uint64("actor", uint64(cut.Target)), zap.Stringer("attack", cut.Attack))
	}
	return applied
}

// Scan finds the candidates the blade can see and plans one cut for each.
func Scan(scene Scene, attack uuid.UUID, plane Plane) []Cut {
	candidates := scene.Overlap(plane)
	if len(candidates) == 0 {
		return nil
	}
	seen := make(map[common.ActorID]struct{}, len(candidates))
	cuts := make([]Cut, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Actor]; dup {
			continue
		}
		seen[c.Actor] = struct{}{}
		if !visible(scene, plane, c) {
			continue
		}
		cuts = append(cuts, Cut{Attack: attack, Target: c.Actor, Point: plane.Point, Normal: plane.Normal})
	}
	return cuts
}

// visible casts from the blade's anchor toward the candidate's projection on
// the blade and requires the candidate to be the first blocking hit.
func visible(scene Scene, plane Plane, c Candidate) bool {
	target := common.ProjectOnPlane(c.Center, plane.Point, plane.Normal)
	dir, ok := common.SafeNormalize(target.Sub(plane.Point))
	if !ok {
		return false
	}
	reach := plane.Reach
	if d := target.Sub(plane.Point).Len(); d > reach {
		reach = d
	}
	hit, ok := scene.Raycast(plane.Point, plane.Point.Add(dir.Mul(reach)))
	return ok && hit.Actor == c.Actor
}
