package physics

import (
	"math"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/fz5/common"
	"github.com/milk9111/fz5/slicing"
	"go.uber.org/zap"
)

const (
	collisionTypeWall cp.CollisionType = iota + 1
	collisionTypeDestructible
	collisionTypeCharacter
)

const (
	categoryWall uint = 1 << iota
	categoryDestructible
	categoryCharacter
)

var (
	rayFilter   = cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, categoryWall|categoryDestructible)
	bladeFilter = cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, categoryDestructible)
)

type Kind uint8

const (
	KindWall Kind = iota + 1
	KindDestructible
	KindCharacter
)

// actor ties a shape to its id and vertical extent. The space is the
// horizontal XY plane; height lives here.
type actor struct {
	id    common.ActorID
	kind  Kind
	shape *cp.Shape
	minZ  float64
	maxZ  float64
	dest  *Destructible
}

// Wall is a static vertical slab between two floor points.
type Wall struct {
	ID     common.ActorID
	A, B   mgl64.Vec2
	Height float64
}

type Config struct {
	Iterations   uint
	Damping      float64
	SliceImpulse float64
	Density      float64
}

func DefaultConfig() Config {
	return Config{Iterations: 10, Damping: 0.3, SliceImpulse: 1000, Density: 0.001}
}

// World owns the Chipmunk space. Every method is safe for concurrent use; the
// slicing scan queries it from its own goroutine.
type World struct {
	mu     sync.Mutex
	space  *cp.Space
	cfg    Config
	logger *zap.Logger

	nextID  common.ActorID
	actors  map[common.ActorID]*actor
	byShape map[*cp.Shape]*actor
	walls   []Wall
	chars   []*Character
	spawned []*Destructible
}

func NewWorld(cfg Config, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = DefaultConfig().Iterations
	}
	space := cp.NewSpace()
	space.Iterations = cfg.Iterations
	space.SetGravity(cp.Vector{})
	space.SetDamping(cfg.Damping)
	return &World{
		space:   space,
		cfg:     cfg,
		logger:  logger,
		actors:  make(map[common.ActorID]*actor),
		byShape: make(map[*cp.Shape]*actor),
	}
}

func (w *World) allocID() common.ActorID {
	w.nextID++
	return w.nextID
}

func (w *World) register(a *actor) {
	w.actors[a.id] = a
	w.byShape[a.shape] = a
}

func (w *World) unregister(id common.ActorID) {
	a, ok := w.actors[id]
	if !ok {
		return
	}
	delete(w.byShape, a.shape)
	delete(w.actors, id)
}

// AddWall adds a static wall from a to b on the floor.
func (w *World) AddWall(a, b mgl64.Vec2, height, thickness float64) common.ActorID {
	if w == nil {
		return 0
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	shape := cp.NewSegment(w.space.StaticBody, toCP(a), toCP(b), thickness/2)
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeWall)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryWall, cp.ALL_CATEGORIES))
	w.space.AddShape(shape)

	id := w.allocID()
	w.register(&actor{id: id, kind: KindWall, shape: shape, minZ: 0, maxZ: height})
	w.walls = append(w.walls, Wall{ID: id, A: a, B: b, Height: height})
	return id
}

// AddBox adds a static destructible box centered at center on the floor.
func (w *World) AddBox(center mgl64.Vec2, width, depth, height float64) *Destructible {
	if w == nil {
		return nil
	}
	hw, hd := width/2, depth/2
	verts := []cp.Vector{
		{X: center[0] - hw, Y: center[1] - hd},
		{X: center[0] + hw, Y: center[1] - hd},
		{X: center[0] + hw, Y: center[1] + hd},
		{X: center[0] - hw, Y: center[1] + hd},
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.addDestructible(w.allocID(), verts, 0, height, false)
}

func (w *World) Walls() []Wall {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Wall(nil), w.walls...)
}

// Destructibles returns every live destructible ordered by id.
func (w *World) Destructibles() []*Destructible {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Destructible, 0, len(w.actors))
	for _, a := range w.actors {
		if a.dest != nil {
			out = append(out, a.dest)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Destructible looks up a live destructible.
func (w *World) Destructible(id common.ActorID) (*Destructible, bool) {
	if w == nil {
		return nil, false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	a, ok := w.actors[id]
	if !ok || a.dest == nil {
		return nil, false
	}
	return a.dest, true
}

// Target resolves a slicing target. Removed objects report false.
func (w *World) Target(id common.ActorID) (slicing.Target, bool) {
	d, ok := w.Destructible(id)
	if !ok {
		return nil, false
	}
	return d, true
}

// Remove deletes a destructible from the space.
func (w *World) Remove(id common.ActorID) bool {
	if w == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	a, ok := w.actors[id]
	if !ok || a.dest == nil {
		return false
	}
	a.dest.detach()
	a.dest.removed = true
	return true
}

// TakeSpawned returns the pieces created by slices since the last call.
func (w *World) TakeSpawned() []*Destructible {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.spawned
	w.spawned = nil
	return out
}

// Step advances the space and the vertical motion of every character.
func (w *World) Step(dt float64) {
	if w == nil || dt <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.space.Step(dt)
	for _, c := range w.chars {
		c.stepVertical(dt)
	}
}

// Raycast finds the first wall or destructible hit along from→to. The space
// is queried with the ray's floor projection and hits are kept only where the
// ray is within the actor's height.
func (w *World) Raycast(from, to mgl64.Vec3) (common.RayHit, bool) {
	if w == nil {
		return common.RayHit{}, false
	}
	a, b := toCP(from.Vec2()), toCP(to.Vec2())
	if a.Near(b, 1e-9) {
		return common.RayHit{}, false
	}
	length := to.Sub(from).Len()

	w.mu.Lock()
	defer w.mu.Unlock()

	best := common.RayHit{}
	bestAlpha := math.Inf(1)
	w.space.SegmentQuery(a, b, 0, rayFilter, func(shape *cp.Shape, point, normal cp.Vector, alpha float64, _ interface{}) {
		act, ok := w.byShape[shape]
		if !ok || alpha >= bestAlpha {
			return
		}
		z := common.Lerp(from.Z(), to.Z(), alpha)
		if z < act.minZ || z > act.maxZ {
			return
		}
		bestAlpha = alpha
		best = common.RayHit{
			Actor:    act.id,
			Point:    mgl64.Vec3{point.X, point.Y, z},
			Normal:   mgl64.Vec3{normal.X, normal.Y, 0},
			Distance: alpha * length,
		}
	}, nil)
	return best, !math.IsInf(bestAlpha, 1)
}

// Overlap lists destructibles crossed by the blade's footprint within its
// height band.
func (w *World) Overlap(plane slicing.Plane) []slicing.Candidate {
	if w == nil {
		return nil
	}
	start := plane.Point
	end := start.Add(common.Horizontal(plane.Forward).Mul(plane.Reach))
	lo, hi := start.Z()-plane.Height/2, start.Z()+plane.Height/2

	w.mu.Lock()
	defer w.mu.Unlock()

	var out []slicing.Candidate
	seen := make(map[common.ActorID]struct{})
	w.space.SegmentQuery(toCP(start.Vec2()), toCP(end.Vec2()), 0, bladeFilter, func(shape *cp.Shape, _, _ cp.Vector, _ float64, _ interface{}) {
		act, ok := w.byShape[shape]
		if !ok || act.dest == nil {
			return
		}
		if act.maxZ < lo || act.minZ > hi {
			return
		}
		if _, dup := seen[act.id]; dup {
			return
		}
		seen[act.id] = struct{}{}
		out = append(out, slicing.Candidate{Actor: act.id, Center: act.dest.center()})
	}, nil)
	sort.Slice(out, func(i, j int) bool { return out[i].Actor < out[j].Actor })
	return out
}

func toCP(v mgl64.Vec2) cp.Vector {
	return cp.Vector{X: v[0], Y: v[1]}
}

func fromCP(v cp.Vector) mgl64.Vec2 {
	return mgl64.Vec2{v.X, v.Y}
}

// DrawDebug renders every shape in the space through drawer.
func (w *World) DrawDebug(drawer cp.Drawer) {
	if w == nil || drawer == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	cp.DrawSpace(w.space, drawer)
}
