package systems

import (
	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/types"
)

// enemyView 一次查询中需要的敌人组件集合
type enemyView struct {
	ID       ecs.EntityID
	Enemy    *components.EnemyComponent
	Health   *components.HealthComponent
	Lane     *components.LaneProgressComponent
	Position *components.PositionComponent
	Status   *components.StatusEffectComponent
}

// aliveEnemies 返回存活的敌人（血量 > 0 且未被标记删除），按创建顺序排列
func aliveEnemies(em *ecs.EntityManager) []enemyView {
	ids := ecs.GetEntitiesWith3[*components.EnemyComponent, *components.HealthComponent, *components.LaneProgressComponent](em)
	out := make([]enemyView, 0, len(ids))
	for _, id := range ids {
		if v, ok := enemyByID(em, id); ok {
			out = append(out, v)
		}
	}
	return out
}

// enemyByID 查询单个存活敌人
func enemyByID(em *ecs.EntityManager, id ecs.EntityID) (enemyView, bool) {
	if id == 0 || em.IsMarkedForDestroy(id) {
		return enemyView{}, false
	}
	enemy, ok := ecs.GetComponent[*components.EnemyComponent](em, id)
	if !ok {
		return enemyView{}, false
	}
	health, ok := ecs.GetComponent[*components.HealthComponent](em, id)
	if !ok || health.Current <= 0 {
		return enemyView{}, false
	}
	lane, _ := ecs.GetComponent[*components.LaneProgressComponent](em, id)
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	status, _ := ecs.GetComponent[*components.StatusEffectComponent](em, id)
	if lane == nil || pos == nil {
		return enemyView{}, false
	}
	return enemyView{ID: id, Enemy: enemy, Health: health, Lane: lane, Position: pos, Status: status}, true
}

// towerView 塔的组件集合
type towerView struct {
	ID       ecs.EntityID
	Tower    *components.TowerComponent
	Position types.Position
}

// activeTowers 返回未被标记删除的塔，按放置顺序排列
func activeTowers(em *ecs.EntityManager) []towerView {
	ids := ecs.GetEntitiesWith2[*components.TowerComponent, *components.PositionComponent](em)
	out := make([]towerView, 0, len(ids))
	for _, id := range ids {
		if em.IsMarkedForDestroy(id) {
			continue
		}
		tower, _ := ecs.GetComponent[*components.TowerComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		out = append(out, towerView{ID: id, Tower: tower, Position: pos.Position})
	}
	return out
}

// CountEnemies 存活敌人数量
func CountEnemies(em *ecs.EntityManager) int {
	return len(aliveEnemies(em))
}

// CountProjectiles 未被消耗的投射物数量
func CountProjectiles(em *ecs.EntityManager) int {
	n := 0
	for _, id := range ecs.GetEntitiesWith1[*components.ProjectileComponent](em) {
		if !em.IsMarkedForDestroy(id) {
			n++
		}
	}
	return n
}
