package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/fz5/ability"
	"github.com/milk9111/fz5/ecs/component"
	"github.com/stretchr/testify/assert"
)

func TestCommandsForEdges(t *testing.T) {
	prev := &component.Input{}

	cmds := commandsFor(prev, inputSnapshot{Move: mgl64.Vec2{1, 0}, Dash: true})
	assert.Equal(t, []ability.Command{ability.MoveStart(1, 0), ability.DashPressed()}, cmds)

	cmds = commandsFor(prev, inputSnapshot{Move: mgl64.Vec2{1, 0}, Dash: true})
	assert.Empty(t, cmds, "held keys repeat nothing")

	cmds = commandsFor(prev, inputSnapshot{Move: mgl64.Vec2{0, 1}})
	assert.Equal(t, []ability.Command{ability.MoveStart(0, 1), ability.DashReleased()}, cmds)

	cmds = commandsFor(prev, inputSnapshot{})
	assert.Equal(t, []ability.Command{ability.MoveStop()}, cmds)
	assert.False(t, prev.Moving)
}

func TestCommandsForPressesAndLook(t *testing.T) {
	tests := []struct {
		name string
		snap inputSnapshot
		want []ability.Command
	}{
		{"look", inputSnapshot{Yaw: 3, Pitch: -1}, []ability.Command{ability.LookDelta(3, -1)}},
		{"parry", inputSnapshot{Parry: true}, []ability.Command{ability.ParryPressed()}},
		{"switch", inputSnapshot{Switch: ability.Gun, SwitchPressed: true}, []ability.Command{ability.SwitchWeapon(ability.Gun)}},
		{"attack and jump", inputSnapshot{Attack: true, Jump: true}, []ability.Command{ability.AttackPressed(), ability.JumpPressed()}},
		{"nothing", inputSnapshot{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commandsFor(&component.Input{}, tt.snap))
		})
	}
}

func TestCommandsForParryRelease(t *testing.T) {
	prev := &component.Input{ParryHeld: true}
	assert.Equal(t, []ability.Command{ability.ParryReleased()}, commandsFor(prev, inputSnapshot{}))
	assert.False(t, prev.ParryHeld)
}
