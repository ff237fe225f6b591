package systems

import (
	"math"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/entities"
	"github.com/decker502/tdcore/pkg/event"
	"github.com/decker502/tdcore/pkg/game"
	"github.com/decker502/tdcore/pkg/stats"
	"github.com/decker502/tdcore/pkg/utils"
)

// CombatSystem 伤害结算
//
// 所有伤害来源（投射物、灼烧、地面施法、光环）都通过 DealDamage 结算：
//   - 破甲窗口内伤害乘以破甲倍率
//   - 生成伤害飘字
//   - 击杀奖励只发放一次
type CombatSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	catalog       *config.Catalog
	events        *event.Dispatcher
}

// NewCombatSystem 创建伤害结算系统
// events 可以为 nil
func NewCombatSystem(em *ecs.EntityManager, gs *game.GameState, catalog *config.Catalog, events *event.Dispatcher) *CombatSystem {
	return &CombatSystem{
		entityManager: em,
		gameState:     gs,
		catalog:       catalog,
		events:        events,
	}
}

// DealDamage 对敌人造成伤害
//
// 参数:
//   - target: 敌人ID
//   - amount: 破甲前的伤害
//   - color: 飘字颜色
//
// 返回:
//   - bool: 本次伤害是否完成击杀
func (s *CombatSystem) DealDamage(target ecs.EntityID, amount float64, color string) bool {
	if amount <= 0 {
		return false
	}
	e, ok := enemyByID(s.entityManager, target)
	if !ok {
		return false
	}

	now := s.gameState.Time
	if st := e.Status; st != nil && st.ArmorBreakMultiplier > 0 && now < st.ArmorBreakUntil {
		amount *= st.ArmorBreakMultiplier
	}

	e.Health.Current -= amount
	entities.NewDamagePopup(s.entityManager, e.Position.Position, amount, color, s.catalog.Engine.PopupDuration)

	if e.Health.Current > 0 {
		return false
	}
	if !e.Enemy.RewardPaid {
		e.Enemy.RewardPaid = true
		s.gameState.AddGold(e.Enemy.Reward)
		s.dispatch(event.EnemyKilled, event.EnemyData{
			ID:     uint64(e.ID),
			Kind:   e.Enemy.Kind,
			Lane:   e.Lane.Lane,
			Reward: e.Enemy.Reward,
		})
	}
	return true
}

// ApplyPayload 把元素载荷施加到存活的敌人身上
//
// 减速取较强者并延长；破甲倍率更高时覆盖，否则只延长时间；
// 灼烧直接覆盖；击退沿敌人自身路线后退（不低于起点）
func (s *CombatSystem) ApplyPayload(target ecs.EntityID, p stats.Payload) {
	e, ok := enemyByID(s.entityManager, target)
	if !ok || e.Status == nil {
		return
	}
	now := s.gameState.Time
	st := e.Status

	if p.HasSlow() {
		st.SlowPct = math.Max(st.SlowPct, p.SlowPct)
		st.SlowUntil = math.Max(st.SlowUntil, now+p.SlowDuration)
	}
	if p.HasArmorBreak() {
		until := now + p.ArmorBreakDuration
		if st.ArmorBreakMultiplier == 0 || p.ArmorBreakMultiplier > st.ArmorBreakMultiplier {
			st.ArmorBreakMultiplier = p.ArmorBreakMultiplier
			st.ArmorBreakUntil = until
		} else if until > st.ArmorBreakUntil {
			st.ArmorBreakUntil = until
		}
	}
	if p.HasBurn() {
		st.BurnDPS = p.BurnDPS
		st.BurnUntil = now + p.BurnDuration
	}
	if p.KnockbackDistance > 0 {
		s.Rewind(e, p.KnockbackDistance)
	}
}

// Rewind 沿路线后退，进度不会小于 0
func (s *CombatSystem) Rewind(e enemyView, distance float64) {
	lane := s.gameState.Lane(e.Lane.Lane)
	if lane == nil || distance <= 0 {
		return
	}
	seg, t, pos, traveled := utils.RewindAlongPath(lane, e.Lane.Traveled, distance)
	e.Lane.Segment = seg
	e.Lane.T = t
	e.Lane.Traveled = traveled
	e.Lane.Progress = utils.ProgressFraction(traveled, s.gameState.LaneLength(e.Lane.Lane))
	e.Position.Position = pos
}

// RemoveDead 标记删除血量归零的敌人
// 返回: 本次清理的数量
func (s *CombatSystem) RemoveDead() int {
	removed := 0
	ids := ecs.GetEntitiesWith2[*components.EnemyComponent, *components.HealthComponent](s.entityManager)
	for _, id := range ids {
		health, _ := ecs.GetComponent[*components.HealthComponent](s.entityManager, id)
		if health.Current <= 0 && !s.entityManager.IsMarkedForDestroy(id) {
			s.entityManager.DestroyEntity(id)
			removed++
		}
	}
	return removed
}

func (s *CombatSystem) dispatch(t event.EventType, data interface{}) {
	if s.events == nil {
		return
	}
	s.events.Dispatch(event.Event{Type: t, Time: s.gameState.Time, Data: data})
}
