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

// ElementCastSystem 地面施法令牌的引信结算
//
// 令牌到达触发时间后按元素的施法效果作用一次，然后被移除。
// 效果强度 = 基础值 + 每级加成 × 施法者元素等级；半径为 0 时作用于全图敌人。
type ElementCastSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	catalog       *config.Catalog
	combat        *CombatSystem
	events        *event.Dispatcher
}

// NewElementCastSystem 创建施法结算系统
func NewElementCastSystem(em *ecs.EntityManager, gs *game.GameState, catalog *config.Catalog, combat *CombatSystem, events *event.Dispatcher) *ElementCastSystem {
	return &ElementCastSystem{
		entityManager: em,
		gameState:     gs,
		catalog:       catalog,
		combat:        combat,
		events:        events,
	}
}

// Update 结算到期的施法令牌
func (s *ElementCastSystem) Update() {
	now := s.gameState.Time
	ids := ecs.GetEntitiesWith2[*components.ElementCastComponent, *components.PositionComponent](s.entityManager)
	for _, id := range ids {
		if s.entityManager.IsMarkedForDestroy(id) {
			continue
		}
		cast, _ := ecs.GetComponent[*components.ElementCastComponent](s.entityManager, id)
		if now < cast.TriggerTime {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

		el, err := s.catalog.Element(cast.Element)
		if err != nil {
			log.Printf("[ElementCastSystem] WARNING: %v, cast %d discarded", err, id)
		} else {
			s.resolve(cast, pos.Position, &el.Cast)
		}
		s.entityManager.DestroyEntity(id)
	}
}

// resolve 施加一次施法效果
func (s *ElementCastSystem) resolve(cast *components.ElementCastComponent, at types.Position, cfg *config.CastConfig) {
	now := s.gameState.Time
	lv := float64(cast.Level)
	damage := cfg.Damage + cfg.DamagePerLevel*lv
	duration := cfg.Duration + cfg.DurationPerLevel*lv
	popup := damage

	targets := s.targets(at, cfg.Radius)

	switch cfg.Effect {
	case config.CastStun:
		for _, e := range targets {
			s.combat.DealDamage(e.ID, damage, cfg.Color)
			if e.Status != nil {
				e.Status.SlowPct = math.Max(e.Status.SlowPct, cfg.SlowPct)
				e.Status.SlowUntil = math.Max(e.Status.SlowUntil, now+duration)
			}
		}
	case config.CastBurst, config.CastDamage:
		for _, e := range targets {
			s.combat.DealDamage(e.ID, damage, cfg.Color)
		}
	case config.CastRewind:
		for _, e := range targets {
			s.combat.Rewind(e, cfg.Distance)
			s.combat.DealDamage(e.ID, damage, cfg.Color)
		}
	case config.CastArmorBreak:
		mult := cfg.Multiplier + cfg.MultiplierPerLevel*lv
		for _, e := range targets {
			if e.Status == nil {
				continue
			}
			if mult > e.Status.ArmorBreakMultiplier {
				e.Status.ArmorBreakMultiplier = mult
			}
			e.Status.ArmorBreakUntil = math.Max(e.Status.ArmorBreakUntil, now+duration)
		}
		popup = 0
	case config.CastGrant:
		gold := cfg.Gold + cfg.GoldPerLevel*cast.Level
		s.gameState.AddGold(gold)
		popup = float64(gold)
	}

	if popup > 0 {
		entities.NewDamagePopup(s.entityManager, at, popup, cfg.Color, s.catalog.Engine.PopupDuration)
	}
	if s.events != nil {
		s.events.Dispatch(event.Event{Type: event.ElementCast, Time: now, Data: event.ElementData{
			Element:  cast.Element,
			Level:    cast.Level,
			Position: at,
		}})
	}
}

// targets 施法范围内的存活敌人，radius <= 0 表示全图
func (s *ElementCastSystem) targets(at types.Position, radius float64) []enemyView {
	all := aliveEnemies(s.entityManager)
	if radius <= 0 {
		return all
	}
	out := all[:0]
	for _, e := range all {
		if utils.Distance(e.Position.Position, at) <= radius {
			out = append(out, e)
		}
	}
	return out
}
