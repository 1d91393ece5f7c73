package ability

import "github.com/milk9111/fz5/common"

// Legality predicates. Each one is a pure read of the ability state, the
// body, and the memoized probe.

func (c *Coordinator) CanDash() bool {
	if c == nil {
		return false
	}
	s := &c.state
	if s.Item != Sword || !s.available(Dash) || !s.Ready(Parry) {
		return false
	}
	if s.Action == Parrying {
		return false
	}
	if s.Action == Slashing {
		// a slash lets the dash leave any locomotion state
		return c.cfg.Rules.DashWhileSlashing
	}
	return s.Locomotion == Neutral
}

func (c *Coordinator) CanSlide() bool {
	if c == nil || c.body == nil {
		return false
	}
	if c.state.Item != Gun || c.state.Locomotion != Neutral {
		return false
	}
	forward, _ := c.axes()
	return common.Horizontal(c.body.Velocity()).Dot(forward) >= c.cfg.SlideSpeedThreshold
}

func (c *Coordinator) CanParry() bool {
	if c == nil {
		return false
	}
	s := &c.state
	if s.Item != Sword || !s.available(Parry) {
		return false
	}
	return s.Locomotion != Dashing && s.Locomotion != WallJumping
}

func (c *Coordinator) CanShoot() bool {
	if c == nil {
		return false
	}
	return c.state.Item == Gun && c.state.available(Shoot)
}

func (c *Coordinator) CanSlash() bool {
	if c == nil {
		return false
	}
	s := &c.state
	if s.Item != Sword || !s.available(Slash) || !s.Ready(Parry) {
		return false
	}
	return s.Action != Parrying
}

func (c *Coordinator) CanWallRun() bool {
	if c == nil || c.body == nil || !c.state.Moving {
		return false
	}
	if c.state.Locomotion == Dashing && c.body.IsOnGround() {
		return false
	}
	_, ok := c.wallRunProbe()
	return ok
}

func (c *Coordinator) CanWallClimb() bool {
	if c == nil || c.body == nil || !c.state.Moving {
		return false
	}
	if !c.body.IsOnGround() {
		return false
	}
	_, ok := c.wallClimbProbe()
	return ok
}

func (c *Coordinator) CanWallJump() bool {
	if c == nil {
		return false
	}
	switch c.state.Locomotion {
	case WallRunning, WallClimbing:
		return true
	}
	if !c.state.WallReset {
		return false
	}
	_, ok := c.wallClimbProbe()
	return ok
}

func (c *Coordinator) CanSwitch(slot Item) bool {
	if c == nil || !slot.Valid() {
		return false
	}
	s := &c.state
	return slot != s.Item && s.Action == ActionNone && s.Ready(Switch)
}
