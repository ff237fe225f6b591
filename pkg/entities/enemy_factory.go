package entities

import (
	"fmt"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/game"
	"github.com/decker502/tdcore/pkg/utils"
)

// EnemySpec 创建敌人的参数
type EnemySpec struct {
	Group config.GroupConfig

	// StartDistance 出生点沿路线的距离，普通生成为 0，召唤的分身在召唤者前方
	StartDistance float64
}

// NewEnemy 创建敌人实体
//
// 参数:
//   - em: 实体管理器
//   - gs: 对局状态（提供路线和当前时间）
//   - catalog: 数值表
//   - spec: 敌人参数
//
// 返回:
//   - ecs.EntityID: 创建的敌人ID
//   - error: 种类未知或路线不存在
func NewEnemy(em *ecs.EntityManager, gs *game.GameState, catalog *config.Catalog, spec EnemySpec) (ecs.EntityID, error) {
	if em == nil {
		return 0, fmt.Errorf("entity manager cannot be nil")
	}
	g := spec.Group
	base, err := catalog.Enemy(g.Kind)
	if err != nil {
		return 0, err
	}
	laneIndex := g.LaneIndex()
	lane := gs.Lane(laneIndex)
	if lane == nil {
		return 0, fmt.Errorf("lane %d does not exist", laneIndex)
	}

	reward := g.Reward
	if reward <= 0 {
		reward = base.Reward
	}
	leak := base.LeakDamage
	if g.LeakDamage != nil {
		leak = *g.LeakDamage
	}
	hp := catalog.EnemyHP(g.Kind, g.Level)

	seg, t, pos := utils.LocateAlongPath(lane, spec.StartDistance)
	traveled := spec.StartDistance
	total := gs.LaneLength(laneIndex)
	if traveled > total {
		traveled = total
	}
	if traveled < 0 {
		traveled = 0
	}

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{Position: pos})
	ecs.AddComponent(em, id, &components.EnemyComponent{
		Kind:       g.Kind,
		Level:      g.Level,
		Speed:      base.Speed,
		Reward:     reward,
		LeakDamage: leak,
		SpawnTime:  gs.Time,
	})
	ecs.AddComponent(em, id, &components.HealthComponent{Current: hp, Max: hp})
	ecs.AddComponent(em, id, &components.LaneProgressComponent{
		Lane:     laneIndex,
		Segment:  seg,
		T:        t,
		Traveled: traveled,
		Progress: utils.ProgressFraction(traveled, total),
	})
	ecs.AddComponent(em, id, &components.StatusEffectComponent{})

	if base.Ability != nil {
		ecs.AddComponent(em, id, &components.AbilityComponent{
			NextTrigger: gs.Time + base.Ability.FirstDelay,
		})
	}

	return id, nil
}
