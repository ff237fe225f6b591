package systems

import (
	"math"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/game"
)

// IncomeSystem 产出型植物的被动收益
//
// 追赶式结算：cycles = floor((now - lastPayout) / interval)，
// 发放 cycles × perCycle 并把 lastPayout 推进 cycles × interval，
// 一帧跨越多个周期或帧被跳过时都不会丢失收益。
type IncomeSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
}

// NewIncomeSystem 创建收益系统
func NewIncomeSystem(em *ecs.EntityManager, gs *game.GameState) *IncomeSystem {
	return &IncomeSystem{
		entityManager: em,
		gameState:     gs,
	}
}

// Update 结算所有产出型植物
// 返回: 本帧发放的金币
func (s *IncomeSystem) Update() int {
	now := s.gameState.Time
	paid := 0

	for _, id := range ecs.GetEntitiesWith1[*components.IncomeComponent](s.entityManager) {
		if s.entityManager.IsMarkedForDestroy(id) {
			continue
		}
		income, _ := ecs.GetComponent[*components.IncomeComponent](s.entityManager, id)
		if income.Interval <= 0 {
			continue
		}
		cycles := math.Floor((now - income.LastPayout) / income.Interval)
		if cycles <= 0 {
			continue
		}
		amount := income.PerCycle * int(cycles)
		s.gameState.AddGold(amount)
		income.LastPayout += cycles * income.Interval
		paid += amount
	}
	return paid
}
