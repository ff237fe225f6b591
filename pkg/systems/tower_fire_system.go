package systems

import (
	"log"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/entities"
	"github.com/decker502/tdcore/pkg/game"
	"github.com/decker502/tdcore/pkg/types"
	"github.com/decker502/tdcore/pkg/utils"
)

// TowerFireSystem 塔的目标选择与开火
//
// 目标策略：
//   - closest：射程内进度最大的敌人，进度相同取先创建者
//   - lockOn：保持锁定目标直到其死亡或离开射程，否则重新选择血量最高者
//
// 开火条件：now - lastShotTime >= 1/fireRate；射速或伤害为 0 的塔永远不开火
type TowerFireSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	catalog       *config.Catalog
	verbose       bool
}

// NewTowerFireSystem 创建开火系统
func NewTowerFireSystem(em *ecs.EntityManager, gs *game.GameState, catalog *config.Catalog) *TowerFireSystem {
	return &TowerFireSystem{
		entityManager: em,
		gameState:     gs,
		catalog:       catalog,
	}
}

// SetVerbose 开启开火日志
func (s *TowerFireSystem) SetVerbose(v bool) {
	s.verbose = v
}

// Update 每座塔刷新属性后判定开火
func (s *TowerFireSystem) Update() {
	now := s.gameState.Time
	enemies := aliveEnemies(s.entityManager)

	for _, tw := range activeTowers(s.entityManager) {
		tower := tw.Tower
		if err := RefreshTowerStats(s.catalog, tower); err != nil {
			continue
		}
		if !tower.Stats.CanFire() {
			continue
		}
		if now-tower.LastShotTime < tower.Stats.Cooldown() {
			continue
		}

		base, _ := s.catalog.Plant(tower.Type)
		var target *enemyView
		if base != nil && base.Targeting == config.TargetLockOn {
			target = s.selectLockOn(tower, tw.Position, enemies)
		} else {
			target = selectClosestToGoal(enemies, tw.Position, tower.Stats.Range)
		}
		if target == nil {
			continue
		}

		tower.LastShotTime = now
		s.fire(tw, base, target)
	}
}

// selectClosestToGoal 射程内进度最大的敌人
// enemies 按创建顺序排列，严格大于才替换，所以进度相同时先创建者优先
func selectClosestToGoal(enemies []enemyView, from types.Position, rangeLimit float64) *enemyView {
	var best *enemyView
	for i := range enemies {
		e := &enemies[i]
		if e.Health.Current <= 0 {
			continue
		}
		if utils.Distance(e.Position.Position, from) > rangeLimit {
			continue
		}
		if best == nil || e.Lane.Progress > best.Lane.Progress {
			best = e
		}
	}
	return best
}

// selectLockOn 锁定型目标选择
func (s *TowerFireSystem) selectLockOn(tower *components.TowerComponent, from types.Position, enemies []enemyView) *enemyView {
	if tower.LockedTarget != 0 {
		for i := range enemies {
			e := &enemies[i]
			if e.ID == tower.LockedTarget && e.Health.Current > 0 && utils.Distance(e.Position.Position, from) <= tower.Stats.Range {
				return e
			}
		}
	}

	var best *enemyView
	for i := range enemies {
		e := &enemies[i]
		if e.Health.Current <= 0 || utils.Distance(e.Position.Position, from) > tower.Stats.Range {
			continue
		}
		if best == nil || e.Health.Current > best.Health.Current {
			best = e
		}
	}
	if best == nil {
		tower.LockedTarget = 0
		return nil
	}
	tower.LockedTarget = best.ID
	return best
}

// fire 创建一枚投射物
// 穿透型沿指向目标的方向直线飞行，其余追踪目标
func (s *TowerFireSystem) fire(tw towerView, base *config.PlantConfig, target *enemyView) {
	tower := tw.Tower
	speed := tower.Stats.ProjectileSpeed
	if speed <= 0 {
		speed = s.catalog.Engine.FallbackProjectileSpeed
	}

	p := components.ProjectileComponent{
		Source:     tw.ID,
		SourceType: tower.Type,
		Color:      tower.Stats.ProjectileColor,
		Speed:      speed,
		Damage:     tower.Stats.Damage,
		Payload:    tower.Payload,
	}

	if tower.Stats.Piercing {
		dx := target.Position.X - tw.Position.X
		dy := target.Position.Y - tw.Position.Y
		p.Motion = components.MotionFree
		p.DirX, p.DirY = utils.Normalize(dx, dy)
		if p.DirX == 0 && p.DirY == 0 {
			p.DirX = 1
		}
		if base != nil {
			p.PierceLimit = base.PierceLimit
			p.DamageDecay = base.DamageDecay
			p.Bounces = base.Bounces
		}
		p.Bounces += tower.Payload.ExtraBounces
	} else {
		p.Motion = components.MotionHoming
		p.Target = target.ID
	}

	id := entities.NewProjectile(s.entityManager, tw.Position, p)
	if s.verbose {
		log.Printf("[TowerFireSystem] Tower %d (%s) fired projectile %d at enemy %d", tw.ID, tower.Type, id, target.ID)
	}
}

// ManualFire 手动发射（阳光花）
// 向全图进度最大的敌人发射一枚追踪弹，不受射程限制，有独立冷却
//
// 返回:
//   - bool: 是否发射成功（塔不存在、不支持手动发射、冷却中或无目标时为 false）
func (s *TowerFireSystem) ManualFire(towerID ecs.EntityID) bool {
	if s.entityManager.IsMarkedForDestroy(towerID) {
		return false
	}
	tower, ok := ecs.GetComponent[*components.TowerComponent](s.entityManager, towerID)
	if !ok {
		return false
	}
	pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, towerID)
	if !ok {
		return false
	}
	base, err := s.catalog.Plant(tower.Type)
	if err != nil || base.ManualFire == nil {
		return false
	}
	now := s.gameState.Time
	if now < tower.ManualReadyAt {
		return false
	}

	enemies := aliveEnemies(s.entityManager)
	var target *enemyView
	for i := range enemies {
		if target == nil || enemies[i].Lane.Progress > target.Lane.Progress {
			target = &enemies[i]
		}
	}
	if target == nil {
		return false
	}

	speed := base.ManualFire.ProjectileSpeed
	if speed <= 0 {
		speed = s.catalog.Engine.FallbackProjectileSpeed
	}
	damage := base.ManualFire.Damage * (1 + float64(tower.Level-1)*s.catalog.Leveling.DamagePerLevel)

	entities.NewProjectile(s.entityManager, pos.Position, components.ProjectileComponent{
		Motion:     components.MotionHoming,
		Source:     towerID,
		SourceType: tower.Type,
		Color:      tower.Stats.ProjectileColor,
		Target:     target.ID,
		Speed:      speed,
		Damage:     utils.Round2(damage),
		Payload:    tower.Payload,
	})
	tower.ManualReadyAt = now + base.ManualFire.Cooldown
	tower.LastShotTime = now
	return true
}
