package systems

import (
	"sort"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/game"
	"github.com/decker502/tdcore/pkg/types"
	"github.com/decker502/tdcore/pkg/utils"
)

// ProjectileSystem 投射物飞行与命中结算
//
// 追踪弹：朝目标直线移动，本帧移动距离足以到达时结算并消失；目标不存在时直接作废。
// 直线弹：对本帧起点到终点的线段做扫掠检测，命中按进度从大到小依次结算，
// 每个敌人只会被同一枚投射物命中一次；达到穿透上限后消失，否则伤害按衰减系数递减。
// 越过地图边界时有反弹次数则反射方向，否则超出边距后消失。
type ProjectileSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	combat        *CombatSystem
	engine        config.EngineConfig
}

// NewProjectileSystem 创建投射物系统
func NewProjectileSystem(em *ecs.EntityManager, gs *game.GameState, combat *CombatSystem, engine config.EngineConfig) *ProjectileSystem {
	return &ProjectileSystem{
		entityManager: em,
		gameState:     gs,
		combat:        combat,
		engine:        engine,
	}
}

// Update 推进所有投射物
func (s *ProjectileSystem) Update(deltaTime float64) {
	ids := ecs.GetEntitiesWith2[*components.ProjectileComponent, *components.PositionComponent](s.entityManager)
	for _, id := range ids {
		if s.entityManager.IsMarkedForDestroy(id) {
			continue
		}
		p, _ := ecs.GetComponent[*components.ProjectileComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

		switch p.Motion {
		case components.MotionFree:
			s.updateFree(id, p, pos, deltaTime)
		default:
			s.updateHoming(id, p, pos, deltaTime)
		}
	}
}

func (s *ProjectileSystem) updateHoming(id ecs.EntityID, p *components.ProjectileComponent, pos *components.PositionComponent, deltaTime float64) {
	target, ok := enemyByID(s.entityManager, p.Target)
	if !ok {
		s.entityManager.DestroyEntity(id)
		return
	}

	targetPos := target.Position.Position
	dist := utils.Distance(pos.Position, targetPos)
	step := p.Speed * deltaTime
	if dist <= step {
		s.hit(target.ID, targetPos, p.Damage, p)
		s.entityManager.DestroyEntity(id)
		return
	}

	dx, dy := utils.Normalize(targetPos.X-pos.X, targetPos.Y-pos.Y)
	pos.X += dx * step
	pos.Y += dy * step
}

func (s *ProjectileSystem) updateFree(id ecs.EntityID, p *components.ProjectileComponent, pos *components.PositionComponent, deltaTime float64) {
	prev := pos.Position
	next := types.Position{
		X: prev.X + p.DirX*p.Speed*deltaTime,
		Y: prev.Y + p.DirY*p.Speed*deltaTime,
	}

	var hits []enemyView
	for _, e := range aliveEnemies(s.entityManager) {
		if p.HitSet[e.ID] {
			continue
		}
		if utils.PointSegmentDistance(e.Position.Position, prev, next) <= s.engine.ProjectileHitRadius {
			hits = append(hits, e)
		}
	}
	// 稳定排序保留创建顺序作为进度相同时的次序
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Lane.Progress > hits[j].Lane.Progress
	})

	for _, e := range hits {
		// 同一次扫掠中已被前面的溅射击杀
		if _, ok := enemyByID(s.entityManager, e.ID); !ok {
			continue
		}
		s.hit(e.ID, e.Position.Position, p.Damage, p)
		if p.HitSet == nil {
			p.HitSet = make(map[ecs.EntityID]bool)
		}
		p.HitSet[e.ID] = true
		p.Hits++
		if p.PierceLimit > 0 && p.Hits >= p.PierceLimit {
			s.entityManager.DestroyEntity(id)
			return
		}
		if p.DamageDecay > 0 {
			p.Damage *= p.DamageDecay
		}
	}

	w, h := s.gameState.MapWidth, s.gameState.MapHeight
	if next.X < 0 || next.X > w || next.Y < 0 || next.Y > h {
		if p.Bounces > 0 {
			next = s.reflect(p, next, w, h)
			p.Bounces--
		} else if !utils.InBounds(next, w, h, s.engine.BoundaryMargin) {
			s.entityManager.DestroyEntity(id)
			return
		}
	}
	pos.Position = next
}

// reflect 在越界的轴上镜像位置并反转方向
func (s *ProjectileSystem) reflect(p *components.ProjectileComponent, next types.Position, w, h float64) types.Position {
	if next.X < 0 {
		next.X = -next.X
		p.DirX = -p.DirX
	} else if next.X > w {
		next.X = 2*w - next.X
		p.DirX = -p.DirX
	}
	if next.Y < 0 {
		next.Y = -next.Y
		p.DirY = -p.DirY
	} else if next.Y > h {
		next.Y = 2*h - next.Y
		p.DirY = -p.DirY
	}
	return next
}

// hit 对目标结算伤害与载荷，并对周围其他敌人造成溅射
func (s *ProjectileSystem) hit(target ecs.EntityID, at types.Position, damage float64, p *components.ProjectileComponent) {
	s.strike(target, damage, p)

	if !p.Payload.HasSplash() {
		return
	}
	splash := damage * p.Payload.SplashPercent
	for _, other := range aliveEnemies(s.entityManager) {
		if other.ID == target {
			continue
		}
		if utils.Distance(other.Position.Position, at) <= p.Payload.SplashRadius {
			s.strike(other.ID, splash, p)
		}
	}
}

func (s *ProjectileSystem) strike(target ecs.EntityID, damage float64, p *components.ProjectileComponent) {
	if damage <= 0 {
		return
	}
	if _, ok := enemyByID(s.entityManager, target); !ok {
		return
	}
	if s.combat.DealDamage(target, damage, p.Color) {
		return
	}
	s.combat.ApplyPayload(target, p.Payload)
}
