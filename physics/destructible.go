package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/fz5/common"
	"go.uber.org/zap"
)

// minPieceArea rejects slivers.
const minPieceArea = 1.0

// Destructible is a convex prism: a floor polygon extruded from minZ to maxZ.
// Static ones are anchored; slicing turns the cut-off piece dynamic.
type Destructible struct {
	world   *World
	id      common.ActorID
	body    *cp.Body
	shape   *cp.Shape
	local   []cp.Vector
	minZ    float64
	maxZ    float64
	dynamic bool
	removed bool
}

// addDestructible builds a piece from world-space vertices. Caller holds
// w.mu.
func (w *World) addDestructible(id common.ActorID, verts []cp.Vector, minZ, maxZ float64, dynamic bool) *Destructible {
	d := &Destructible{world: w, id: id, minZ: minZ, maxZ: maxZ}
	d.attach(verts, dynamic)
	w.register(&actor{id: id, kind: KindDestructible, shape: d.shape, minZ: minZ, maxZ: maxZ, dest: d})
	return d
}

// attach creates the body and shape for verts and adds them to the space.
func (d *Destructible) attach(verts []cp.Vector, dynamic bool) {
	w := d.world
	centroid := cp.CentroidForPoly(len(verts), verts)
	d.local = make([]cp.Vector, len(verts))
	for i, v := range verts {
		d.local[i] = v.Sub(centroid)
	}
	d.dynamic = dynamic

	if dynamic {
		area := cp.AreaForPoly(len(d.local), d.local, 0)
		mass := math.Max(area*w.cfg.Density, 0.01)
		d.body = cp.NewBody(mass, cp.MomentForPoly(mass, len(d.local), d.local, cp.Vector{}, 0))
	} else {
		d.body = cp.NewStaticBody()
	}
	d.body.SetPosition(centroid)
	w.space.AddBody(d.body)

	d.shape = cp.NewPolyShapeRaw(d.body, len(d.local), d.local, 0)
	d.shape.SetFriction(0.6)
	d.shape.SetCollisionType(collisionTypeDestructible)
	d.shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryDestructible, cp.ALL_CATEGORIES))
	w.space.AddShape(d.shape)
}

// detach removes the body and shape from the space and forgets the actor.
func (d *Destructible) detach() {
	w := d.world
	if d.shape != nil {
		w.space.RemoveShape(d.shape)
	}
	if d.body != nil {
		w.space.RemoveBody(d.body)
	}
	w.unregister(d.id)
}

func (d *Destructible) ID() common.ActorID {
	if d == nil {
		return 0
	}
	return d.id
}

func (d *Destructible) Dynamic() bool {
	if d == nil {
		return false
	}
	d.world.mu.Lock()
	defer d.world.mu.Unlock()
	return d.dynamic
}

func (d *Destructible) Removed() bool {
	if d == nil {
		return true
	}
	d.world.mu.Lock()
	defer d.world.mu.Unlock()
	return d.removed
}

func (d *Destructible) Height() (minZ, maxZ float64) {
	return d.minZ, d.maxZ
}

// Center is the centroid at mid height.
func (d *Destructible) Center() mgl64.Vec3 {
	d.world.mu.Lock()
	defer d.world.mu.Unlock()
	return d.center()
}

func (d *Destructible) center() mgl64.Vec3 {
	p := d.body.Position()
	return mgl64.Vec3{p.X, p.Y, (d.minZ + d.maxZ) / 2}
}

func (d *Destructible) Velocity() mgl64.Vec2 {
	d.world.mu.Lock()
	defer d.world.mu.Unlock()
	return fromCP(d.body.Velocity())
}

// Polygon returns the floor outline in world space.
func (d *Destructible) Polygon() []mgl64.Vec2 {
	d.world.mu.Lock()
	defer d.world.mu.Unlock()
	verts := d.worldVerts()
	out := make([]mgl64.Vec2, len(verts))
	for i, v := range verts {
		out[i] = fromCP(v)
	}
	return out
}

func (d *Destructible) worldVerts() []cp.Vector {
	out := make([]cp.Vector, len(d.local))
	for i, v := range d.local {
		out[i] = d.body.LocalToWorld(v)
	}
	return out
}

func (d *Destructible) Area() float64 {
	d.world.mu.Lock()
	defer d.world.mu.Unlock()
	return cp.AreaForPoly(len(d.local), d.local, 0)
}

// Slice cuts the piece with a vertical plane through point. The half behind
// the normal keeps this id; the half in front becomes a new dynamic piece
// pushed along the normal. Horizontal cut planes and cuts that miss or leave a
// sliver report false.
func (d *Destructible) Slice(point, normal mgl64.Vec3) bool {
	if d == nil {
		return false
	}
	w := d.world
	w.mu.Lock()
	defer w.mu.Unlock()
	if d.removed {
		return false
	}

	n := cp.Vector{X: normal.X(), Y: normal.Y()}
	if n.Length() < 1e-6 {
		return false
	}
	n = n.Normalize()
	p := cp.Vector{X: point.X(), Y: point.Y()}

	verts := d.worldVerts()
	front := clipHalfPlane(verts, p, n)
	back := clipHalfPlane(verts, p, n.Neg())
	if polyArea(front) < minPieceArea || polyArea(back) < minPieceArea {
		return false
	}

	vel := d.body.Velocity()
	wasDynamic := d.dynamic
	d.detach()
	d.attach(back, wasDynamic)
	w.register(&actor{id: d.id, kind: KindDestructible, shape: d.shape, minZ: d.minZ, maxZ: d.maxZ, dest: d})

	piece := w.addDestructible(w.allocID(), front, d.minZ, d.maxZ, true)
	impulse := n.Mult(w.cfg.SliceImpulse)
	piece.body.SetVelocityVector(vel.Add(impulse))
	if wasDynamic {
		d.body.SetVelocityVector(vel.Sub(impulse))
	}
	w.spawned = append(w.spawned, piece)

	w.logger.Debug("destructible sliced",
		zap.Uint64("actor", uint64(d.id)),
		zap.Uint64("piece", uint64(piece.id)),
		zap.Bool("was_dynamic", wasDynamic),
	)
	return true
}

// clipHalfPlane keeps the part of a convex polygon where (v-p)·n >= 0.
func clipHalfPlane(verts []cp.Vector, p, n cp.Vector) []cp.Vector {
	if len(verts) < 3 {
		return nil
	}
	out := make([]cp.Vector, 0, len(verts)+1)
	for i := range verts {
		a := verts[i]
		b := verts[(i+1)%len(verts)]
		da := a.Sub(p).Dot(n)
		db := b.Sub(p).Dot(n)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out = append(out, a.Lerp(b, t))
		}
	}
	out = dedupe(out)
	if len(out) < 3 {
		return nil
	}
	return out
}

// dedupe drops consecutive coincident vertices left by cuts through a corner.
func dedupe(verts []cp.Vector) []cp.Vector {
	out := verts[:0]
	for i, v := range verts {
		if i > 0 && v.Near(out[len(out)-1], 1e-9) {
			continue
		}
		out = append(out, v)
	}
	if len(out) > 1 && out[0].Near(out[len(out)-1], 1e-9) {
		out = out[:len(out)-1]
	}
	return out
}

func polyArea(verts []cp.Vector) float64 {
	if len(verts) < 3 {
		return 0
	}
	return math.Abs(cp.AreaForPoly(len(verts), verts, 0))
}
