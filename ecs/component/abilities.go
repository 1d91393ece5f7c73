package component

import "github.com/milk9111/fz5/ability"

// Abilities holds the coordinator driving one character's abilities.
type Abilities struct {
	Coordinator *ability.Coordinator
	// last observed state, for transition events
	Locomotion ability.Locomotion
	Action     ability.Action
	Item       ability.Item
	ShotSeq    uint64
}

var AbilitiesComponent = NewComponent[Abilities]()
