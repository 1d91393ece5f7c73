package component

import "github.com/milk9111/fz5/ability"

// CommandQueue buffers commands until the ability system delivers them.
type CommandQueue struct {
	Commands []ability.Command
}

func (q *CommandQueue) Push(cmds ...ability.Command) {
	if q == nil {
		return
	}
	q.Commands = append(q.Commands, cmds...)
}

// Drain returns the queued commands in arrival order and empties the queue.
func (q *CommandQueue) Drain() []ability.Command {
	if q == nil || len(q.Commands) == 0 {
		return nil
	}
	out := q.Commands
	q.Commands = nil
	return out
}

var CommandQueueComponent = NewComponent[CommandQueue]()
