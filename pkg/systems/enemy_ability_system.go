package systems

import (
	"log"
	"math"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/entities"
	"github.com/decker502/tdcore/pkg/event"
	"github.com/decker502/tdcore/pkg/game"
	"github.com/decker502/tdcore/pkg/types"
	"github.com/decker502/tdcore/pkg/utils"
)

// EnemyAbilitySystem 特殊敌人的能力
//
//   - 治疗者：周期性治疗半径内的其他敌人
//   - 破坏者：周期性随机摧毁一座塔
//   - 狂暴者：持续为光环内的其他敌人刷新短时加速
//   - 召唤者：周期性在自身前方召唤一个分身
type EnemyAbilitySystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	catalog       *config.Catalog
	events        *event.Dispatcher
}

// NewEnemyAbilitySystem 创建敌人能力系统
func NewEnemyAbilitySystem(em *ecs.EntityManager, gs *game.GameState, catalog *config.Catalog, events *event.Dispatcher) *EnemyAbilitySystem {
	return &EnemyAbilitySystem{
		entityManager: em,
		gameState:     gs,
		catalog:       catalog,
		events:        events,
	}
}

// Update 触发到期的能力
// 本帧召唤出的分身不参与本帧的能力结算
func (s *EnemyAbilitySystem) Update() {
	now := s.gameState.Time
	enemies := aliveEnemies(s.entityManager)

	for i := range enemies {
		e := enemies[i]
		if e.Health.Current <= 0 {
			continue
		}
		ability, ok := ecs.GetComponent[*components.AbilityComponent](s.entityManager, e.ID)
		if !ok {
			continue
		}
		base, err := s.catalog.Enemy(e.Enemy.Kind)
		if err != nil || base.Ability == nil {
			continue
		}
		cfg := base.Ability

		switch e.Enemy.Kind {
		case types.EnemyRager:
			s.rage(e, enemies, cfg)
			continue
		case types.EnemyHealer, types.EnemySaboteur, types.EnemySummoner:
		default:
			continue
		}

		if now < ability.NextTrigger {
			continue
		}
		switch e.Enemy.Kind {
		case types.EnemyHealer:
			s.heal(e, enemies, cfg)
		case types.EnemySaboteur:
			s.sabotage(e)
		case types.EnemySummoner:
			s.summon(e, cfg)
		}
		ability.NextTrigger = now + cfg.Interval
	}
}

// heal 治疗量 = max(minHeal, ceil(healPercent × maxHP))，不超过上限
func (s *EnemyAbilitySystem) heal(healer enemyView, enemies []enemyView, cfg *config.AbilityConfig) {
	for _, other := range enemies {
		if other.ID == healer.ID || other.Health.Current <= 0 {
			continue
		}
		if utils.Distance(other.Position.Position, healer.Position.Position) > cfg.Radius {
			continue
		}
		amount := math.Max(cfg.MinHeal, math.Ceil(cfg.HealPercent*other.Health.Max))
		other.Health.Current = math.Min(other.Health.Max, other.Health.Current+amount)
	}
}

// sabotage 使用对局随机数均匀选择一座塔摧毁
func (s *EnemyAbilitySystem) sabotage(saboteur enemyView) {
	towers := activeTowers(s.entityManager)
	if len(towers) == 0 {
		return
	}
	victim := towers[s.gameState.Rand.Intn(len(towers))]
	s.entityManager.DestroyEntity(victim.ID)
	log.Printf("[EnemyAbilitySystem] Saboteur %d destroyed tower %d (%s)", saboteur.ID, victim.ID, victim.Tower.Type)

	if s.events != nil {
		s.events.Dispatch(event.Event{Type: event.TowerDestroyed, Time: s.gameState.Time, Data: event.TowerData{
			ID:       uint64(victim.ID),
			Type:     victim.Tower.Type,
			Position: victim.Position,
		}})
	}
}

// rage 刷新光环内其他敌人的加速窗口
func (s *EnemyAbilitySystem) rage(rager enemyView, enemies []enemyView, cfg *config.AbilityConfig) {
	until := s.gameState.Time + cfg.Window
	for _, other := range enemies {
		if other.ID == rager.ID || other.Status == nil {
			continue
		}
		if utils.Distance(other.Position.Position, rager.Position.Position) > cfg.Radius {
			continue
		}
		other.Status.SpeedBoostMultiplier = math.Max(other.Status.SpeedBoostMultiplier, cfg.Multiplier)
		other.Status.SpeedBoostUntil = math.Max(other.Status.SpeedBoostUntil, until)
	}
}

// summon 在同一路线前方 aheadDistance 处召唤分身，继承召唤者等级
func (s *EnemyAbilitySystem) summon(summoner enemyView, cfg *config.AbilityConfig) {
	kind := cfg.CloneKind
	if kind == types.EnemyUnknown {
		kind = types.EnemyBasic
	}
	lane := summoner.Lane.Lane
	start := summoner.Lane.Traveled + cfg.AheadDistance
	// 出生点到达或越过终点的分身会直接泄漏，放弃本次召唤
	if start >= s.gameState.LaneLength(lane) {
		return
	}
	_, err := entities.NewEnemy(s.entityManager, s.gameState, s.catalog, entities.EnemySpec{
		Group: config.GroupConfig{
			Kind:  kind,
			Count: 1,
			Level: summoner.Enemy.Level,
			Lane:  &lane,
		},
		StartDistance: start,
	})
	if err != nil {
		log.Printf("[EnemyAbilitySystem] WARNING: summoner %d failed to summon: %v", summoner.ID, err)
	}
}
