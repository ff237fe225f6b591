package systems

import (
	"log"

	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/event"
	"github.com/decker502/tdcore/pkg/game"
	"github.com/decker502/tdcore/pkg/utils"
)

// MovementSystem 敌人沿路线移动与泄漏结算
//
// 实际速度 = 基础速度 × (1 - 减速比例，减速生效时) × (加速倍率，加速生效时)。
// 越过终点的敌人扣除泄漏伤害后立即标记删除，不会再被任何伤害来源击杀，
// 因此泄漏的敌人永远不会发放击杀奖励。
type MovementSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	events        *event.Dispatcher
	verbose       bool
}

// NewMovementSystem 创建移动系统
func NewMovementSystem(em *ecs.EntityManager, gs *game.GameState, events *event.Dispatcher) *MovementSystem {
	return &MovementSystem{
		entityManager: em,
		gameState:     gs,
		events:        events,
	}
}

// SetVerbose 开启泄漏日志
func (s *MovementSystem) SetVerbose(v bool) {
	s.verbose = v
}

// Update 推进所有存活敌人
func (s *MovementSystem) Update(deltaTime float64) {
	gs := s.gameState
	now := gs.Time

	for _, e := range aliveEnemies(s.entityManager) {
		lane := gs.Lane(e.Lane.Lane)
		if lane == nil {
			continue
		}

		speed := e.Enemy.Speed
		if st := e.Status; st != nil {
			if now < st.SlowUntil {
				speed *= 1 - st.SlowPct
			}
			if st.SpeedBoostMultiplier > 0 && now < st.SpeedBoostUntil {
				speed *= st.SpeedBoostMultiplier
			}
		}
		if speed < 0 {
			speed = 0
		}

		seg, t, pos, traveled, reachedEnd := utils.AdvanceAlongPath(lane, e.Lane.Traveled, speed*deltaTime)
		e.Lane.Segment = seg
		e.Lane.T = t
		e.Lane.Traveled = traveled
		e.Lane.Progress = utils.ProgressFraction(traveled, gs.LaneLength(e.Lane.Lane))
		e.Position.Position = pos

		if reachedEnd {
			lost := gs.LoseLives(e.Enemy.LeakDamage)
			s.entityManager.DestroyEntity(e.ID)
			if s.verbose {
				log.Printf("[MovementSystem] Enemy %d (%s) leaked on lane %d, lives -%d -> %d",
					e.ID, e.Enemy.Kind, e.Lane.Lane, lost, gs.Lives)
			}
			if s.events != nil {
				s.events.Dispatch(event.Event{Type: event.EnemyLeaked, Time: now, Data: event.EnemyData{
					ID:         uint64(e.ID),
					Kind:       e.Enemy.Kind,
					Lane:       e.Lane.Lane,
					LeakDamage: e.Enemy.LeakDamage,
				}})
			}
		}
	}
}
