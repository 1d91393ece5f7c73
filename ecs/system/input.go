package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/fz5/ability"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
)

const (
	stickDeadzone = 0.2
	// degrees per second at full deflection
	turnRate  = 180.0
	pitchRate = 90.0
)

// inputSnapshot is one frame of device state, already reduced to the game's
// actions.
type inputSnapshot struct {
	Move   mgl64.Vec2
	Yaw    float64
	Pitch  float64
	Dash   bool
	Parry  bool
	Attack bool
	Jump   bool
	Switch ability.Item
	// SwitchPressed is false when no slot key went down this frame
	SwitchPressed bool
}

// InputSystem turns keyboard and gamepad state into ability commands for
// entities that are not script driven.
type InputSystem struct{}

func NewInputSystem() *InputSystem {
	return &InputSystem{}
}

func (i *InputSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	snap := readDevices(w.Delta())
	ecs.ForEach2(w, component.InputComponent.Kind(), component.CommandQueueComponent.Kind(), func(e ecs.Entity, input *component.Input, queue *component.CommandQueue) {
		if ecs.Has(w, e, component.ScriptComponent.Kind()) {
			return
		}
		queue.Push(commandsFor(input, snap)...)
	})
}

func readDevices(dt float64) inputSnapshot {
	var s inputSnapshot

	if ebiten.IsKeyPressed(ebiten.KeyW) {
		s.Move[0]++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		s.Move[0]--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		s.Move[1]++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		s.Move[1]--
	}

	turn, tilt := 0.0, 0.0
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		turn++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		turn--
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		tilt++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		tilt--
	}

	s.Dash = ebiten.IsKeyPressed(ebiten.KeyShiftLeft)
	s.Parry = ebiten.IsKeyPressed(ebiten.KeyF)
	s.Attack = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) || inpututil.IsKeyJustPressed(ebiten.KeyJ)
	s.Jump = inpututil.IsKeyJustPressed(ebiten.KeySpace)

	slots := []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4}
	for slot, key := range slots {
		if inpututil.IsKeyJustPressed(key) {
			s.Switch = ability.Item(slot)
			s.SwitchPressed = true
		}
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if math.Hypot(lx, ly) > stickDeadzone {
			// stick up is negative
			s.Move = mgl64.Vec2{-ly, lx}
		}
		if rx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal); math.Abs(rx) > stickDeadzone {
			turn = rx
		}
		if ry := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical); math.Abs(ry) > stickDeadzone {
			tilt = -ry
		}
		s.Dash = s.Dash || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontBottomRight)
		s.Parry = s.Parry || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontBottomLeft)
		s.Attack = s.Attack || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightLeft)
		s.Jump = s.Jump || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonFrontTopLeft) {
			s.Switch, s.SwitchPressed = ability.Sword, true
		}
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonFrontTopRight) {
			s.Switch, s.SwitchPressed = ability.Gun, true
		}
	}

	s.Yaw = turn * turnRate * dt
	s.Pitch = tilt * pitchRate * dt
	return s
}

// commandsFor emits commands for the edges between the previous frame held in
// prev and snap, then records snap into prev.
func commandsFor(prev *component.Input, snap inputSnapshot) []ability.Command {
	var cmds []ability.Command

	moving := snap.Move != (mgl64.Vec2{})
	switch {
	case moving && (!prev.Moving || snap.Move != prev.Move):
		cmds = append(cmds, ability.MoveStart(snap.Move[0], snap.Move[1]))
	case !moving && prev.Moving:
		cmds = append(cmds, ability.MoveStop())
	}
	prev.Moving, prev.Move = moving, snap.Move

	if snap.Yaw != 0 || snap.Pitch != 0 {
		cmds = append(cmds, ability.LookDelta(snap.Yaw, snap.Pitch))
	}

	if snap.Dash != prev.DashHeld {
		if snap.Dash {
			cmds = append(cmds, ability.DashPressed())
		} else {
			cmds = append(cmds, ability.DashReleased())
		}
		prev.DashHeld = snap.Dash
	}
	if snap.Parry != prev.ParryHeld {
		if snap.Parry {
			cmds = append(cmds, ability.ParryPressed())
		} else {
			cmds = append(cmds, ability.ParryReleased())
		}
		prev.ParryHeld = snap.Parry
	}

	if snap.SwitchPressed {
		cmds = append(cmds, ability.SwitchWeapon(snap.Switch))
	}
	if snap.Attack {
		cmds = append(cmds, ability.AttackPressed())
	}
	if snap.Jump {
		cmds = append(cmds, ability.JumpPressed())
	}
	return cmds
}
