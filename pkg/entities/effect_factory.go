package entities

import (
	"math"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/types"
)

// NewElementCast 创建地面施法令牌
func NewElementCast(em *ecs.EntityManager, element types.ElementType, level int, pos types.Position, triggerTime float64) ecs.EntityID {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{Position: pos})
	ecs.AddComponent(em, id, &components.ElementCastComponent{
		Element:     element,
		Level:       level,
		TriggerTime: triggerTime,
	})
	return id
}

// NewDamagePopup 创建伤害飘字，duration 秒后由 LifetimeSystem 移除
func NewDamagePopup(em *ecs.EntityManager, pos types.Position, amount float64, color string, duration float64) ecs.EntityID {
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{Position: pos})
	ecs.AddComponent(em, id, &components.DamagePopupComponent{
		Amount: math.Round(amount),
		Color:  color,
	})
	ecs.AddComponent(em, id, &components.LifetimeComponent{MaxLifetime: duration})
	return id
}
