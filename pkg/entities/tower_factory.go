package entities

import (
	"fmt"
	"math"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/game"
	"github.com/decker502/tdcore/pkg/stats"
	"github.com/decker502/tdcore/pkg/types"
)

// InitialLastShotTime 新塔的"上次开火时间"，保证第一发不受冷却限制
const InitialLastShotTime = -999.0

// NewTower 在指定格子创建塔实体
// 调用方负责校验格子合法性、是否被占用以及金币
//
// 参数:
//   - plantType: 植物类型
//   - cell: 可种植格子坐标
//   - level: 塔等级（来自外部进度）
func NewTower(em *ecs.EntityManager, gs *game.GameState, catalog *config.Catalog, plantType types.PlantType, cell types.Position, level int) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	base, err := catalog.Plant(plantType)
	if err != nil {
		return 0, err
	}
	if level < 1 {
		level = 1
	}

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{Position: cell})
	ecs.AddComponent(em, id, &components.TowerComponent{
		Type:         plantType,
		Level:        level,
		Stats:        stats.Resolve(base, catalog.Leveling, level, nil, catalog.Engine),
		LastShotTime: InitialLastShotTime,
	})

	if base.IsProducer() {
		ecs.AddComponent(em, id, &components.IncomeComponent{
			Interval:   base.Income.Interval,
			PerCycle:   int(math.Round(stats.IncomePerCycle(base.Income, level))),
			LastPayout: gs.Time,
		})
	}

	return id, nil
}
