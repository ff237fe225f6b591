package systems

import (
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/game"
	"github.com/decker502/tdcore/pkg/utils"
)

// AuraSystem 元素光环：塔射程内的敌人每秒受到 auraDPS 伤害
type AuraSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	combat        *CombatSystem
}

// NewAuraSystem 创建光环系统
func NewAuraSystem(em *ecs.EntityManager, gs *game.GameState, combat *CombatSystem) *AuraSystem {
	return &AuraSystem{
		entityManager: em,
		gameState:     gs,
		combat:        combat,
	}
}

// Update 按本帧时长结算光环伤害
func (s *AuraSystem) Update(deltaTime float64) {
	for _, tw := range activeTowers(s.entityManager) {
		dps := tw.Tower.Payload.AuraDPS
		if dps <= 0 || tw.Tower.Element == nil {
			continue
		}
		for _, e := range aliveEnemies(s.entityManager) {
			if utils.Distance(e.Position.Position, tw.Position) <= tw.Tower.Stats.Range {
				s.combat.DealDamage(e.ID, dps*deltaTime, tw.Tower.Stats.Color)
			}
		}
	}
}
