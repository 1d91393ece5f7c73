package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/fz5/ecs"
	"github.com/milk9111/fz5/ecs/component"
	"github.com/milk9111/fz5/prefabs"
)

// BuildArena adds the arena's walls to the physics world and gives every box
// a destructible entity.
func BuildArena(w *ecs.World, env *Env, arenaPath string) (*prefabs.ArenaSpec, error) {
	if w == nil || env == nil || env.Physics == nil {
		return nil, fmt.Errorf("build arena: world is nil")
	}
	spec, err := prefabs.LoadArenaSpec(arenaPath)
	if err != nil {
		return nil, fmt.Errorf("build arena: %w", err)
	}

	for _, wall := range spec.Walls {
		env.Physics.AddWall(mgl64.Vec2(wall.From), mgl64.Vec2(wall.To), wall.Height, wall.Thickness)
	}
	for _, box := range spec.Boxes {
		body := env.Physics.AddBox(mgl64.Vec2(box.Center), box.Width, box.Depth, box.Height)
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.DestructibleComponent.Kind(), &component.Destructible{Body: body}); err != nil {
			return nil, fmt.Errorf("build arena: %w", err)
		}
	}
	return spec, nil
}
