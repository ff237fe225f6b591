package config

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/decker502/tdcore/pkg/embedded"
	"github.com/decker502/tdcore/pkg/types"
	"gopkg.in/yaml.v3"
)

// DefaultCatalogPath 内置数值表路径
const DefaultCatalogPath = "data/catalog.yaml"

// CatalogVersion 当前支持的数值表版本
const CatalogVersion = 1

var (
	// ErrUnsupportedVersion 配置文件版本不受支持
	ErrUnsupportedVersion = errors.New("unsupported config version")
	// ErrUnknownPlantType 数值表中没有该植物
	ErrUnknownPlantType = errors.New("unknown plant type")
	// ErrUnknownElementType 数值表中没有该元素
	ErrUnknownElementType = errors.New("unknown element type")
	// ErrUnknownEnemyKind 数值表中没有该敌人
	ErrUnknownEnemyKind = errors.New("unknown enemy kind")
)

// Targeting 塔的目标选择策略
type Targeting string

const (
	// TargetClosest 攻击范围内最接近终点的敌人（默认）
	TargetClosest Targeting = "closest"
	// TargetLockOn 锁定血量最高的敌人，直到其死亡或离开射程
	TargetLockOn Targeting = "lockOn"
)

// CastEffect 地面施法的效果类型
type CastEffect string

const (
	CastStun       CastEffect = "stun"       // 全体伤害 + 重度减速
	CastBurst      CastEffect = "burst"      // 半径内高额伤害
	CastRewind     CastEffect = "rewind"     // 全体后退 + 伤害
	CastArmorBreak CastEffect = "armorBreak" // 全体破甲窗口
	CastDamage     CastEffect = "damage"     // 全体伤害
	CastGrant      CastEffect = "grant"      // 直接获得金币
)

// LevelingConfig 塔等级成长率（每级线性增加的比例）
type LevelingConfig struct {
	DamagePerLevel   float64 `yaml:"damagePerLevel"`
	RangePerLevel    float64 `yaml:"rangePerLevel"`
	FireRatePerLevel float64 `yaml:"fireRatePerLevel"`
}

// EngineConfig 引擎常量
type EngineConfig struct {
	LevelMultiplier         float64 `yaml:"levelMultiplier"`
	GroupPause              float64 `yaml:"groupPause"`
	NextWaveDelay           float64 `yaml:"nextWaveDelay"`
	FirstWaveDelay          float64 `yaml:"firstWaveDelay"`
	PlaceTolerance          float64 `yaml:"placeTolerance"`
	ElementAttachRadius     float64 `yaml:"elementAttachRadius"`
	ProjectileHitRadius     float64 `yaml:"projectileHitRadius"`
	PopupDuration           float64 `yaml:"popupDuration"`
	CastFuse                float64 `yaml:"castFuse"`
	DefaultCastCooldown     float64 `yaml:"defaultCastCooldown"`
	FallbackProjectileSpeed float64 `yaml:"fallbackProjectileSpeed"`
	BoundaryMargin          float64 `yaml:"boundaryMargin"`
	StarLevelOffsets        []int   `yaml:"starLevelOffsets"`
	DefaultColor            string  `yaml:"defaultColor"`
	DefaultProjectileColor  string  `yaml:"defaultProjectileColor"`
}

// IncomeConfig 产出型植物的收益参数
type IncomeConfig struct {
	Interval      float64 `yaml:"interval"`
	Base          float64 `yaml:"base"`
	BonusPerLevel float64 `yaml:"bonusPerLevel"`
}

// ManualFireConfig 手动发射参数（阳光花）
type ManualFireConfig struct {
	Damage          float64 `yaml:"damage"`
	Cooldown        float64 `yaml:"cooldown"`
	ProjectileSpeed float64 `yaml:"projectileSpeed"`
}

// PlantConfig 单个植物（塔）的基础属性
type PlantConfig struct {
	Name            string              `yaml:"name"`
	Cost            int                 `yaml:"cost"`
	Range           float64             `yaml:"range"`
	Damage          float64             `yaml:"damage"`
	FireRate        float64             `yaml:"fireRate"`
	ProjectileSpeed float64             `yaml:"projectileSpeed"`
	Piercing        bool                `yaml:"piercing"`
	Targeting       Targeting           `yaml:"targeting"`
	Bounces         int                 `yaml:"bounces"`     // 边界反弹次数，0 表示越界即消失
	PierceLimit     int                 `yaml:"pierceLimit"` // 最多命中敌人数，0 表示不限
	DamageDecay     float64             `yaml:"damageDecay"` // 每次命中后伤害乘数，0 表示不衰减
	Income          *IncomeConfig       `yaml:"income"`
	ManualFire      *ManualFireConfig   `yaml:"manualFire"`
	BlockedElements []types.ElementType `yaml:"blockedElements"`
}

// IsProducer 是否为纯产出型植物
func (p *PlantConfig) IsProducer() bool {
	return p.Income != nil && p.Income.Interval > 0
}

// Blocks 该植物是否拒绝附着指定元素
func (p *PlantConfig) Blocks(e types.ElementType) bool {
	for _, b := range p.BlockedElements {
		if b == e {
			return true
		}
	}
	return false
}

// ArmorBreakConfig 破甲载荷
type ArmorBreakConfig struct {
	Multiplier    float64 `yaml:"multiplier"`
	BonusPerLevel float64 `yaml:"bonusPerLevel"`
	Duration      float64 `yaml:"duration"`
}

// BurnConfig 灼烧载荷
type BurnConfig struct {
	DamagePerSecond float64 `yaml:"damagePerSecond"`
	BonusPerLevel   float64 `yaml:"bonusPerLevel"`
	Duration        float64 `yaml:"duration"`
}

// SplashConfig 溅射载荷
type SplashConfig struct {
	Radius        float64 `yaml:"radius"`
	DamagePercent float64 `yaml:"damagePercent"`
	BonusPerLevel float64 `yaml:"bonusPerLevel"`
}

// SlowConfig 减速载荷
type SlowConfig struct {
	Pct      float64 `yaml:"pct"`
	Duration float64 `yaml:"duration"`
}

// KnockbackConfig 击退载荷
type KnockbackConfig struct {
	Distance float64 `yaml:"distance"`
}

// AuraConfig 塔周围持续伤害
type AuraConfig struct {
	DamagePerSecond float64 `yaml:"damagePerSecond"`
	BonusPerLevel   float64 `yaml:"bonusPerLevel"`
}

// BounceConfig 额外反弹次数
type BounceConfig struct {
	Count         int `yaml:"count"`
	BonusPerLevel int `yaml:"bonusPerLevel"`
}

// CastConfig 地面施法参数
// 数值类字段的实际值均为 base + perLevel * level（level 为施法者元素等级）
type CastConfig struct {
	Effect             CastEffect `yaml:"effect"`
	Cooldown           float64    `yaml:"cooldown"`
	Radius             float64    `yaml:"radius"` // 0 表示全图
	Damage             float64    `yaml:"damage"`
	DamagePerLevel     float64    `yaml:"damagePerLevel"`
	SlowPct            float64    `yaml:"slowPct"`
	Duration           float64    `yaml:"duration"`
	DurationPerLevel   float64    `yaml:"durationPerLevel"`
	Distance           float64    `yaml:"distance"`
	Multiplier         float64    `yaml:"multiplier"`
	MultiplierPerLevel float64    `yaml:"multiplierPerLevel"`
	Gold               int        `yaml:"gold"`
	GoldPerLevel       int        `yaml:"goldPerLevel"`
	Color              string     `yaml:"color"`
}

// ElementConfig 单个元素的属性
type ElementConfig struct {
	Name                string            `yaml:"name"`
	Cost                int               `yaml:"cost"`
	Color               string            `yaml:"color"`
	ProjectileColor     string            `yaml:"projectileColor"`
	FireRateMultiplier  float64           `yaml:"fireRateMultiplier"`
	FireRatePenalty     float64           `yaml:"fireRatePenalty"`
	DamageMultiplier    float64           `yaml:"damageMultiplier"`
	DamageBonusPerLevel float64           `yaml:"damageBonusPerLevel"`
	Piercing            bool              `yaml:"piercing"`
	ArmorBreak          *ArmorBreakConfig `yaml:"armorBreak"`
	Burn                *BurnConfig       `yaml:"burn"`
	Splash              *SplashConfig     `yaml:"splash"`
	Slow                *SlowConfig       `yaml:"slow"`
	Knockback           *KnockbackConfig  `yaml:"knockback"`
	Aura                *AuraConfig       `yaml:"aura"`
	Bounce              *BounceConfig     `yaml:"bounce"`
	Cast                CastConfig        `yaml:"cast"`
}

// AbilityConfig 特殊敌人能力参数
// 各字段的含义取决于敌人种类，未使用的字段保持零值
type AbilityConfig struct {
	Interval      float64         `yaml:"interval"`
	FirstDelay    float64         `yaml:"firstDelay"`
	Radius        float64         `yaml:"radius"`
	HealPercent   float64         `yaml:"healPercent"`
	MinHeal       float64         `yaml:"minHeal"`
	Multiplier    float64         `yaml:"multiplier"`
	Window        float64         `yaml:"window"`
	AheadDistance float64         `yaml:"aheadDistance"`
	CloneKind     types.EnemyKind `yaml:"cloneKind"`
}

// EnemyConfig 单个敌人种类的基础属性（等级 0 时的数值）
type EnemyConfig struct {
	Name       string         `yaml:"name"`
	HP         float64        `yaml:"hp"`
	Speed      float64        `yaml:"speed"`
	LeakDamage int            `yaml:"leakDamage"`
	Reward     int            `yaml:"reward"` // 波次未指定奖励时使用
	Ability    *AbilityConfig `yaml:"ability"`
}

// Catalog 全部数值表
type Catalog struct {
	Version  int                                  `yaml:"version"`
	Leveling LevelingConfig                       `yaml:"leveling"`
	Engine   EngineConfig                         `yaml:"engine"`
	Plants   map[types.PlantType]*PlantConfig     `yaml:"plants"`
	Elements map[types.ElementType]*ElementConfig `yaml:"elements"`
	Enemies  map[types.EnemyKind]*EnemyConfig     `yaml:"enemies"`
}

// LoadCatalog 从 YAML 文件加载数值表
// 参数：
//
//	path - "data/" 开头读取内置文件，否则读取磁盘文件
//
// 返回：
//
//	*Catalog - 已填充默认值并通过校验的数值表
//	error - 读取、解析或校验失败
func LoadCatalog(path string) (*Catalog, error) {
	data, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return catalog, nil
}

// ParseCatalog 解析数值表 YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	applyCatalogDefaults(&catalog)

	if err := validateCatalog(&catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// DefaultCatalog 加载内置数值表
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(DefaultCatalogPath)
}

// MustDefaultCatalog 加载内置数值表，失败时 panic
// 内置文件随二进制发布，加载失败属于构建错误
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// applyCatalogDefaults 为缺失的引擎常量设置默认值
func applyCatalogDefaults(c *Catalog) {
	if c.Version == 0 {
		c.Version = CatalogVersion
	}
	e := &c.Engine
	setDefault(&e.LevelMultiplier, 0.02)
	setDefault(&e.GroupPause, 1.5)
	setDefault(&e.NextWaveDelay, 2)
	setDefault(&e.FirstWaveDelay, 0.8)
	setDefault(&e.PlaceTolerance, 0.5)
	setDefault(&e.ElementAttachRadius, 0.6)
	setDefault(&e.ProjectileHitRadius, 0.45)
	setDefault(&e.PopupDuration, 0.6)
	setDefault(&e.CastFuse, 2)
	setDefault(&e.DefaultCastCooldown, 20)
	setDefault(&e.FallbackProjectileSpeed, 8)
	if len(e.StarLevelOffsets) == 0 {
		e.StarLevelOffsets = []int{0, 50, 100}
	}
	if e.DefaultColor == "" {
		e.DefaultColor = "#d1d5db"
	}
	if e.DefaultProjectileColor == "" {
		e.DefaultProjectileColor = "#9ca3af"
	}

	for _, p := range c.Plants {
		if p.Targeting == "" {
			p.Targeting = TargetClosest
		}
	}
	for _, el := range c.Elements {
		if el.Cast.Cooldown == 0 {
			el.Cast.Cooldown = e.DefaultCastCooldown
		}
		if el.Cast.Color == "" {
			el.Cast.Color = el.Color
		}
	}
}

func setDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

// validateCatalog 验证数值表的完整性和合法性
func validateCatalog(c *Catalog) error {
	if c.Version != CatalogVersion {
		return fmt.Errorf("%w: catalog version %d", ErrUnsupportedVersion, c.Version)
	}
	if len(c.Plants) == 0 {
		return fmt.Errorf("at least one plant is required")
	}
	if len(c.Enemies) == 0 {
		return fmt.Errorf("at least one enemy kind is required")
	}

	for t, p := range c.Plants {
		if p == nil {
			return fmt.Errorf("plant %s: empty definition", t)
		}
		if p.Cost < 0 {
			return fmt.Errorf("plant %s: cost cannot be negative, got %d", t, p.Cost)
		}
		if p.Range < 0 || p.Damage < 0 || p.FireRate < 0 || p.ProjectileSpeed < 0 {
			return fmt.Errorf("plant %s: combat stats cannot be negative", t)
		}
		if p.Targeting != TargetClosest && p.Targeting != TargetLockOn {
			return fmt.Errorf("plant %s: targeting must be closest or lockOn, got %q", t, p.Targeting)
		}
		if p.DamageDecay < 0 || p.PierceLimit < 0 || p.Bounces < 0 {
			return fmt.Errorf("plant %s: pierce/bounce settings cannot be negative", t)
		}
		if p.Income != nil && p.Income.Interval <= 0 {
			return fmt.Errorf("plant %s: income interval must be positive", t)
		}
		if p.ManualFire != nil && p.ManualFire.Cooldown <= 0 {
			return fmt.Errorf("plant %s: manual fire cooldown must be positive", t)
		}
	}

	validEffects := map[CastEffect]bool{
		CastStun: true, CastBurst: true, CastRewind: true,
		CastArmorBreak: true, CastDamage: true, CastGrant: true,
	}
	for t, el := range c.Elements {
		if el == nil {
			return fmt.Errorf("element %s: empty definition", t)
		}
		if el.Cost < 0 {
			return fmt.Errorf("element %s: cost cannot be negative, got %d", t, el.Cost)
		}
		if el.FireRatePenalty < 0 {
			return fmt.Errorf("element %s: fireRatePenalty cannot be negative", t)
		}
		if !validEffects[el.Cast.Effect] {
			return fmt.Errorf("element %s: unknown cast effect %q", t, el.Cast.Effect)
		}
	}

	for k, e := range c.Enemies {
		if e == nil {
			return fmt.Errorf("enemy %s: empty definition", k)
		}
		if e.HP <= 0 {
			return fmt.Errorf("enemy %s: hp must be positive, got %v", k, e.HP)
		}
		if e.Speed < 0 {
			return fmt.Errorf("enemy %s: speed cannot be negative, got %v", k, e.Speed)
		}
		if e.LeakDamage < 0 || e.Reward < 0 {
			return fmt.Errorf("enemy %s: leakDamage/reward cannot be negative", k)
		}
		if e.Ability != nil && e.Ability.CloneKind != types.EnemyUnknown {
			if _, ok := c.Enemies[e.Ability.CloneKind]; !ok {
				return fmt.Errorf("enemy %s: clone kind %s: %w", k, e.Ability.CloneKind, ErrUnknownEnemyKind)
			}
		}
	}
	return nil
}

// Plant 查询植物配置
func (c *Catalog) Plant(t types.PlantType) (*PlantConfig, error) {
	p, ok := c.Plants[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlantType, t)
	}
	return p, nil
}

// Element 查询元素配置
func (c *Catalog) Element(t types.ElementType) (*ElementConfig, error) {
	el, ok := c.Elements[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownElementType, t)
	}
	return el, nil
}

// Enemy 查询敌人配置
func (c *Catalog) Enemy(k types.EnemyKind) (*EnemyConfig, error) {
	e, ok := c.Enemies[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEnemyKind, k)
	}
	return e, nil
}

// PlantTypes 返回数值表中的植物类型（按枚举顺序）
func (c *Catalog) PlantTypes() []types.PlantType {
	out := make([]types.PlantType, 0, len(c.Plants))
	for t := range c.Plants {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ElementTypes 返回数值表中的元素类型（按枚举顺序）
func (c *Catalog) ElementTypes() []types.ElementType {
	out := make([]types.ElementType, 0, len(c.Elements))
	for t := range c.Elements {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EnemyHP 按等级缩放后的敌人血量
func (c *Catalog) EnemyHP(k types.EnemyKind, level int) float64 {
	e, ok := c.Enemies[k]
	if !ok {
		return 0
	}
	return math.Round(e.HP * (1 + c.Engine.LevelMultiplier*float64(level)))
}
