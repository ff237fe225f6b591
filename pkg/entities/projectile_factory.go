package entities

import (
	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/types"
)

// NewProjectile 创建投射物实体
// 直线飞行型会初始化已命中集合
func NewProjectile(em *ecs.EntityManager, pos types.Position, p components.ProjectileComponent) ecs.EntityID {
	if p.Motion == components.MotionFree && p.HitSet == nil {
		p.HitSet = make(map[ecs.EntityID]bool)
	}

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{Position: pos})
	ecs.AddComponent(em, id, &p)
	return id
}
