package systems

import (
	"math"

	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/game"
)

// StatusEffectSystem 状态效果的惰性过期与灼烧结算
//
// 灼烧按上一帧到本帧之间实际重叠的时间积分：
// damage = dps × (min(now, burnUntil) - prevTime)，
// 因此一次完整灼烧的总伤害与帧率无关。
type StatusEffectSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	combat        *CombatSystem
	burnColor     string
}

// NewStatusEffectSystem 创建状态效果系统
// burnColor 为灼烧飘字颜色
func NewStatusEffectSystem(em *ecs.EntityManager, gs *game.GameState, combat *CombatSystem, burnColor string) *StatusEffectSystem {
	return &StatusEffectSystem{
		entityManager: em,
		gameState:     gs,
		combat:        combat,
		burnColor:     burnColor,
	}
}

// Update 结算灼烧并清除过期效果
func (s *StatusEffectSystem) Update() {
	now := s.gameState.Time
	prev := s.gameState.PrevTime

	for _, e := range aliveEnemies(s.entityManager) {
		st := e.Status
		if st == nil {
			continue
		}

		if st.BurnDPS > 0 {
			slice := math.Min(now, st.BurnUntil) - prev
			if slice > 0 {
				s.combat.DealDamage(e.ID, st.BurnDPS*slice, s.burnColor)
			}
			if now >= st.BurnUntil {
				st.BurnDPS = 0
				st.BurnUntil = 0
			}
		}

		if st.SlowUntil > 0 && now >= st.SlowUntil {
			st.SlowPct = 0
			st.SlowUntil = 0
		}
		if st.ArmorBreakUntil > 0 && now >= st.ArmorBreakUntil {
			st.ArmorBreakMultiplier = 0
			st.ArmorBreakUntil = 0
		}
		if st.SpeedBoostUntil > 0 && now >= st.SpeedBoostUntil {
			st.SpeedBoostMultiplier = 0
			st.SpeedBoostUntil = 0
		}
	}
}
