package components

import (
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/stats"
	"github.com/decker502/tdcore/pkg/types"
)

// ProjectileMotion 投射物的运动模型
type ProjectileMotion int

const (
	// MotionHoming 追踪：朝固定目标移动，目标消失则投射物作废
	MotionHoming ProjectileMotion = iota
	// MotionFree 直线飞行：穿透/反弹型，按扫掠线段做碰撞
	MotionFree
)

// ProjectileComponent 投射物数据
type ProjectileComponent struct {
	Motion     ProjectileMotion
	Source     ecs.EntityID    // 发射的塔
	SourceType types.PlantType // 发射塔的类型
	Color      string

	Target ecs.EntityID // 追踪目标（仅 MotionHoming）
	DirX   float64      // 单位方向（仅 MotionFree）
	DirY   float64

	Speed   float64
	Damage  float64 // 当前伤害，穿透衰减后会降低
	Payload stats.Payload

	// 穿透/反弹状态（仅 MotionFree）
	HitSet      map[ecs.EntityID]bool // 已命中的敌人，不再重复检测
	Hits        int                   // 已命中次数
	PierceLimit int                   // 达到后投射物消失，0 表示不限
	DamageDecay float64               // 每次命中后的伤害乘数，0 表示不衰减
	Bounces     int                   // 剩余反弹次数，0 表示越界即消失
}
