package entity

import (
	"github.com/milk9111/fz5/ecs"
)

func NewPlayer(w *ecs.World, env *Env, prefabPath string) (ecs.Entity, error) {
	if prefabPath == "" {
		prefabPath = "player.yaml"
	}
	return BuildEntity(w, env, prefabPath)
}
