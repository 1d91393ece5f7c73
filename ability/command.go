package ability

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type CommandKind uint8

const (
	CommandMove CommandKind = iota + 1
	CommandLook
	CommandDash
	CommandParry
	CommandAttack
	CommandSwitchWeapon
	CommandJump
)

func (k CommandKind) String() string {
	switch k {
	case CommandMove:
		return "move"
	case CommandLook:
		return "look"
	case CommandDash:
		return "dash"
	case CommandParry:
		return "parry"
	case CommandAttack:
		return "attack"
	case CommandSwitchWeapon:
		return "switch_weapon"
	case CommandJump:
		return "jump"
	default:
		return "unknown"
	}
}

type Phase uint8

const (
	Start Phase = iota
	Stop
)

// Command is one discrete input event. Axis carries (forward, right) for
// moves and (yaw, pitch) degrees for looks.
type Command struct {
	Kind  CommandKind
	Phase Phase
	Axis  mgl64.Vec2
	Slot  Item
}

func (c Command) String() string {
	switch c.Kind {
	case CommandMove:
		if c.Phase == Stop {
			return "move_stop"
		}
		return fmt.Sprintf("move_start(%.2f,%.2f)", c.Axis[0], c.Axis[1])
	case CommandLook:
		return fmt.Sprintf("look(%.2f,%.2f)", c.Axis[0], c.Axis[1])
	case CommandSwitchWeapon:
		return fmt.Sprintf("switch_weapon(%s)", c.Slot)
	}
	if c.Phase == Stop {
		return c.Kind.String() + "_released"
	}
	return c.Kind.String() + "_pressed"
}

func MoveStart(forward, right float64) Command {
	return Command{Kind: CommandMove, Phase: Start, Axis: mgl64.Vec2{forward, right}}
}

func MoveStop() Command {
	return Command{Kind: CommandMove, Phase: Stop}
}

func LookDelta(yaw, pitch float64) Command {
	return Command{Kind: CommandLook, Phase: Start, Axis: mgl64.Vec2{yaw, pitch}}
}

func DashPressed() Command {
	return Command{Kind: CommandDash, Phase: Start}
}

func DashReleased() Command {
	return Command{Kind: CommandDash, Phase: Stop}
}

func ParryPressed() Command {
	return Command{Kind: CommandParry, Phase: Start}
}

func ParryReleased() Command {
	return Command{Kind: CommandParry, Phase: Stop}
}

func AttackPressed() Command {
	return Command{Kind: CommandAttack, Phase: Start}
}

func SwitchWeapon(slot Item) Command {
	return Command{Kind: CommandSwitchWeapon, Phase: Start, Slot: slot}
}

func JumpPressed() Command {
	return Command{Kind: CommandJump, Phase: Start}
}
