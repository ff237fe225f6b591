package components

import (
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/stats"
	"github.com/decker502/tdcore/pkg/types"
)

// ElementState 塔上附着的元素
type ElementState struct {
	Type  types.ElementType
	Level int
}

// TowerComponent 标识实体为塔（植物）
//
// Stats/Payload 是由 (Type, Level, Element) 计算出的派生值，
// 等级或元素变化时以及每帧开火前都会重新计算
type TowerComponent struct {
	Type    types.PlantType
	Level   int           // 由外部进度决定，塔存续期间不变
	Element *ElementState // 至多一个元素，nil 表示无元素

	Stats   stats.TowerStats
	Payload stats.Payload

	LastShotTime float64 // 上次开火时间，初始为很早的时间使首发立即可用

	// LockedTarget 锁定型塔（狙击手）记住的目标，0 表示无
	LockedTarget ecs.EntityID

	// ManualReadyAt 手动发射的冷却结束时间（阳光花）
	ManualReadyAt float64
}
