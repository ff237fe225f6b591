// Package stats 将 (植物基础属性, 等级, 附着元素) 换算为实际战斗属性
//
// 本包只包含纯函数，不持有任何状态。
// 塔在等级或元素变化时、以及每次开火判定前都会重新计算。
package stats

import (
	"math"

	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/types"
	"github.com/decker502/tdcore/pkg/utils"
)

// TowerStats 塔的实际战斗属性
type TowerStats struct {
	Range           float64 `json:"range"`
	Damage          float64 `json:"damage"`
	FireRate        float64 `json:"fireRate"`
	ProjectileSpeed float64 `json:"projectileSpeed"`
	Piercing        bool    `json:"piercing"`
	Color           string  `json:"color"`
	ProjectileColor string  `json:"projectileColor"`
}

// CanFire 是否具备自动开火能力（射速或伤害为 0 的塔永远不开火）
func (s TowerStats) CanFire() bool {
	return s.FireRate > 0 && s.Damage > 0
}

// Cooldown 两次开火的最小间隔
func (s TowerStats) Cooldown() float64 {
	if s.FireRate <= 0 {
		return math.Inf(1)
	}
	return 1 / s.FireRate
}

// Attachment 塔上附着的元素
type Attachment struct {
	Type   types.ElementType
	Level  int
	Config *config.ElementConfig
}

// Payload 元素载荷：开火时复制到投射物上
type Payload struct {
	SlowPct              float64 `json:"slowPct,omitempty"`
	SlowDuration         float64 `json:"slowDuration,omitempty"`
	BurnDPS              float64 `json:"burnDps,omitempty"`
	BurnDuration         float64 `json:"burnDuration,omitempty"`
	ArmorBreakMultiplier float64 `json:"armorBreakMultiplier,omitempty"`
	ArmorBreakDuration   float64 `json:"armorBreakDuration,omitempty"`
	SplashRadius         float64 `json:"splashRadius,omitempty"`
	SplashPercent        float64 `json:"splashPercent,omitempty"`
	KnockbackDistance    float64 `json:"knockbackDistance,omitempty"`
	AuraDPS              float64 `json:"auraDps,omitempty"`
	ExtraBounces         int     `json:"extraBounces,omitempty"`
}

// HasSlow 是否带减速
func (p Payload) HasSlow() bool { return p.SlowPct > 0 && p.SlowDuration > 0 }

// HasBurn 是否带灼烧
func (p Payload) HasBurn() bool { return p.BurnDPS > 0 && p.BurnDuration > 0 }

// HasArmorBreak 是否带破甲
func (p Payload) HasArmorBreak() bool { return p.ArmorBreakMultiplier > 0 && p.ArmorBreakDuration > 0 }

// HasSplash 是否带溅射
func (p Payload) HasSplash() bool { return p.SplashRadius > 0 && p.SplashPercent > 0 }

// Resolve 计算塔的实际属性
// 参数:
//   - base: 植物基础属性
//   - leveling: 每级成长率
//   - level: 塔等级（小于 1 按 1 处理）
//   - element: 附着元素，可为 nil
//   - defaults: 无元素时使用的默认配色（通常来自 EngineConfig）
//
// 等级缩放先于元素修正；每一步结果保留两位小数。
func Resolve(base *config.PlantConfig, leveling config.LevelingConfig, level int, element *Attachment, defaults config.EngineConfig) TowerStats {
	lv := level
	if lv < 1 {
		lv = 1
	}
	steps := float64(lv - 1)

	s := TowerStats{
		Damage:          utils.Round2(base.Damage * (1 + steps*leveling.DamagePerLevel)),
		Range:           utils.Round2(base.Range * (1 + steps*leveling.RangePerLevel)),
		ProjectileSpeed: base.ProjectileSpeed,
		Piercing:        base.Piercing,
		Color:           defaults.DefaultColor,
		ProjectileColor: defaults.DefaultProjectileColor,
	}
	if base.FireRate != 0 {
		s.FireRate = utils.Round2(base.FireRate * (1 + steps*leveling.FireRatePerLevel))
	}

	if element == nil || element.Config == nil {
		return s
	}
	el := element.Config
	if el.FireRateMultiplier != 0 {
		s.FireRate = utils.Round2(s.FireRate * el.FireRateMultiplier)
	}
	if el.FireRatePenalty != 0 {
		s.FireRate = math.Max(0, utils.Round2(s.FireRate-el.FireRatePenalty))
	}
	damageMul := el.DamageMultiplier
	if damageMul == 0 {
		damageMul = 1
	}
	damageMul += el.DamageBonusPerLevel * float64(element.Level-1)
	s.Damage = utils.Round2(s.Damage * damageMul)
	s.Piercing = s.Piercing || el.Piercing
	s.Color = el.Color
	s.ProjectileColor = el.ProjectileColor
	return s
}

// ResolvePayload 计算元素载荷，每项按各自的每级加成线性增长
func ResolvePayload(element *Attachment) Payload {
	var p Payload
	if element == nil || element.Config == nil {
		return p
	}
	el := element.Config
	steps := float64(element.Level - 1)

	if el.Slow != nil {
		p.SlowPct = el.Slow.Pct
		p.SlowDuration = el.Slow.Duration
	}
	if el.Burn != nil {
		p.BurnDPS = el.Burn.DamagePerSecond + el.Burn.BonusPerLevel*steps
		p.BurnDuration = el.Burn.Duration
	}
	if el.ArmorBreak != nil {
		p.ArmorBreakMultiplier = el.ArmorBreak.Multiplier + el.ArmorBreak.BonusPerLevel*steps
		p.ArmorBreakDuration = el.ArmorBreak.Duration
	}
	if el.Splash != nil {
		p.SplashRadius = el.Splash.Radius
		p.SplashPercent = el.Splash.DamagePercent + el.Splash.BonusPerLevel*steps
	}
	if el.Knockback != nil {
		p.KnockbackDistance = el.Knockback.Distance
	}
	if el.Aura != nil {
		p.AuraDPS = el.Aura.DamagePerSecond + el.Aura.BonusPerLevel*steps
	}
	if el.Bounce != nil {
		p.ExtraBounces = el.Bounce.Count + el.Bounce.BonusPerLevel*(element.Level-1)
	}
	return p
}

// IncomePerCycle 产出型植物每个周期的产出
func IncomePerCycle(income *config.IncomeConfig, level int) float64 {
	if income == nil {
		return 0
	}
	lv := level
	if lv < 1 {
		lv = 1
	}
	return income.Base + income.BonusPerLevel*float64(lv-1)
}
