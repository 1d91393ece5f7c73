package component

import "github.com/milk9111/fz5/physics"

// CharacterBody links an entity to its walking body.
type CharacterBody struct {
	Body *physics.Character
}

var CharacterBodyComponent = NewComponent[CharacterBody]()

// Destructible links an entity to a sliceable prism.
type Destructible struct {
	Body *physics.Destructible
}

var DestructibleComponent = NewComponent[Destructible]()
