package probe

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/fz5/ability"
	"github.com/milk9111/fz5/common"
)

// Config is the probe's slice of the character tuning.
type Config struct {
	CheckDistance float64
	RunDotMin     float64
	RunDotMax     float64
	ClimbDotMax   float64
}

func ConfigFrom(cfg ability.Config) Config {
	return Config{
		CheckDistance: cfg.WallCheckDistance,
		RunDotMin:     cfg.WallRunDotMin,
		RunDotMax:     cfg.WallRunDotMax,
		ClimbDotMax:   cfg.WallClimbDotMax,
	}
}

// Probe classifies nearby surfaces with short ray casts.
type Probe struct {
	caster common.Raycaster
	cfg    Config
}

func New(caster common.Raycaster, cfg Config) *Probe {
	return &Probe{caster: caster, cfg: cfg}
}

func (p *Probe) Configure(cfg Config) {
	if p == nil {
		return
	}
	p.cfg = cfg
}

// ProbeWallDirection casts left, then right when the left ray hits nothing,
// and returns the run direction along a qualifying wall.
func (p *Probe) ProbeWallDirection(origin, forward, right mgl64.Vec3, last ability.Contact) (ability.WallHit, bool) {
	if p == nil || p.caster == nil {
		return ability.WallHit{}, false
	}
	reach := right.Mul(p.cfg.CheckDistance)
	hit, ok := p.caster.Raycast(origin, origin.Sub(reach))
	if !ok {
		hit, ok = p.caster.Raycast(origin, origin.Add(reach))
		if !ok {
			return ability.WallHit{}, false
		}
	}
	contact := contactFrom(hit)
	if contact.Matches(last) {
		return ability.WallHit{}, false
	}
	dot := hit.Normal.Dot(forward)
	if dot <= p.cfg.RunDotMin || dot >= p.cfg.RunDotMax {
		return ability.WallHit{}, false
	}
	dir, ok := WallTangent(hit.Normal, forward)
	if !ok {
		return ability.WallHit{}, false
	}
	return ability.WallHit{Contact: contact, Direction: dir}, true
}

// ProbeClimbDirection casts forward and returns up when facing into a wall.
func (p *Probe) ProbeClimbDirection(origin, forward mgl64.Vec3, last ability.Contact) (ability.WallHit, bool) {
	if p == nil || p.caster == nil {
		return ability.WallHit{}, false
	}
	hit, ok := p.caster.Raycast(origin, origin.Add(forward.Mul(p.cfg.CheckDistance)))
	if !ok {
		return ability.WallHit{}, false
	}
	contact := contactFrom(hit)
	if contact.Matches(last) {
		return ability.WallHit{}, false
	}
	if hit.Normal.Dot(forward) > p.cfg.ClimbDotMax {
		return ability.WallHit{}, false
	}
	return ability.WallHit{Contact: contact, Direction: common.Up}, true
}

// WallTangent is the horizontal direction along a wall with the given normal,
// signed to agree with forward.
func WallTangent(normal, forward mgl64.Vec3) (mgl64.Vec3, bool) {
	t, ok := common.SafeNormalize(normal.Cross(common.Up))
	if !ok {
		return mgl64.Vec3{}, false
	}
	if t.Dot(forward) < 0 {
		t = t.Mul(-1)
	}
	return t, true
}

func contactFrom(hit common.RayHit) ability.Contact {
	return ability.Contact{Actor: hit.Actor, Normal: hit.Normal, Point: hit.Point}
}
