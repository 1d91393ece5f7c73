package ability

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/fz5/common"
)

type Locomotion uint8

const (
	Neutral Locomotion = iota
	Dashing
	Sliding
	WallRunning
	WallClimbing
	WallJumping
)

func (l Locomotion) String() string {
	switch l {
	case Neutral:
		return "neutral"
	case Dashing:
		return "dashing"
	case Sliding:
		return "sliding"
	case WallRunning:
		return "wall_running"
	case WallClimbing:
		return "wall_climbing"
	case WallJumping:
		return "wall_jumping"
	default:
		return "unknown"
	}
}

type Action uint8

const (
	ActionNone Action = iota
	Parrying
	Slashing
	Shooting
	SwitchingWeapon
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case Parrying:
		return "parrying"
	case Slashing:
		return "slashing"
	case Shooting:
		return "shooting"
	case SwitchingWeapon:
		return "switching_weapon"
	default:
		return "unknown"
	}
}

// Item is the equipped item. It doubles as the weapon slot index.
type Item uint8

const (
	Sword Item = iota
	Gun
	Heal
	Utility
	itemCount
)

func (i Item) String() string {
	switch i {
	case Sword:
		return "sword"
	case Gun:
		return "gun"
	case Heal:
		return "heal"
	case Utility:
		return "utility"
	default:
		return "unknown"
	}
}

func (i Item) Valid() bool {
	return i < itemCount
}

// Kind names a timed ability. Each kind owns one duration and one cooldown
// timer.
type Kind uint8

const (
	Dash Kind = iota
	Slide
	Parry
	Slash
	Shoot
	WallRun
	WallClimb
	WallJump
	Switch
	kindCount
)

var kindNames = [kindCount]string{
	Dash:      "dash",
	Slide:     "slide",
	Parry:     "parry",
	Slash:     "slash",
	Shoot:     "shoot",
	WallRun:   "wall_run",
	WallClimb: "wall_climb",
	WallJump:  "wall_jump",
	Switch:    "switch",
}

func (k Kind) String() string {
	if k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds lists every timed ability in timer order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Timer holds the remaining active time and the remaining cooldown of one
// ability, in seconds. Duration counts down first.
type Timer struct {
	Duration float64
	Cooldown float64
}

// Contact identifies a wall surface: which actor and which face of it.
type Contact struct {
	Actor  common.ActorID
	Normal mgl64.Vec3
	Point  mgl64.Vec3
}

func (c Contact) Valid() bool {
	return c.Actor != 0
}

// Matches reports whether both contacts refer to the same surface.
func (c Contact) Matches(o Contact) bool {
	if !c.Valid() || !o.Valid() {
		return false
	}
	return c.Actor == o.Actor && c.Normal.ApproxEqualThreshold(o.Normal, 1e-6)
}

// WallHit is a qualifying probe result: the surface and the direction to
// travel along it.
type WallHit struct {
	Contact   Contact
	Direction mgl64.Vec3
}

// State is the per-character ability state. It is a plain value; the
// coordinator hands out copies.
type State struct {
	Locomotion Locomotion
	Action     Action
	Item       Item
	Timers     [kindCount]Timer

	Moving        bool
	MoveDirection mgl64.Vec2
	Yaw           float64
	Pitch         float64
	FacingYaw     float64

	DashVelocity     mgl64.Vec3
	WallSpeed        float64
	WallDirection    mgl64.Vec3
	WallContact      Contact
	LastWallContact  Contact
	WallReset        bool
	WallJumpVelocity mgl64.Vec3
}

// DefaultMoveDirection is (forward, right) input pointing straight ahead.
var DefaultMoveDirection = mgl64.Vec2{1, 0}

func newState() State {
	return State{
		Locomotion:    Neutral,
		Action:        ActionNone,
		Item:          Sword,
		MoveDirection: DefaultMoveDirection,
	}
}

func (s State) Timer(k Kind) Timer {
	if k >= kindCount {
		return Timer{}
	}
	return s.Timers[k]
}

func (s State) Cooldown(k Kind) float64 {
	return s.Timer(k).Cooldown
}

func (s State) Duration(k Kind) float64 {
	return s.Timer(k).Duration
}

// Ready reports whether the ability is off cooldown.
func (s State) Ready(k Kind) bool {
	return s.Cooldown(k) <= 0
}

// available reports whether k is neither running nor cooling down.
func (s State) available(k Kind) bool {
	t := s.Timer(k)
	return t.Duration <= 0 && t.Cooldown <= 0
}

var locomotionKinds = map[Locomotion]Kind{
	Dashing:      Dash,
	Sliding:      Slide,
	WallRunning:  WallRun,
	WallClimbing: WallClimb,
	WallJumping:  WallJump,
}

var actionKinds = map[Action]Kind{
	Parrying:        Parry,
	Slashing:        Slash,
	Shooting:        Shoot,
	SwitchingWeapon: Switch,
}

// Active reports whether the state driven by k is current.
func (s State) Active(k Kind) bool {
	if lk, ok := locomotionKinds[s.Locomotion]; ok && lk == k {
		return true
	}
	if ak, ok := actionKinds[s.Action]; ok && ak == k {
		return true
	}
	return false
}
