package systems

import (
	"math/rand"

	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/types"
)

// 程序化波次参数
const (
	// WavesPerFlag 每隔多少波出现一次大波（容量 ×2.5）
	WavesPerFlag = 10
	// levelPerWave 每波敌人等级增量
	levelPerWave = 2
	// maxGroupsPerWave 单波最多组数
	maxGroupsPerWave = 8
)

// enemyCost 各种类敌人占用的难度容量
var enemyCost = map[types.EnemyKind]int{
	types.EnemyBasic:    1,
	types.EnemyFast:     1,
	types.EnemyArmored:  2,
	types.EnemyHealer:   3,
	types.EnemyRager:    3,
	types.EnemySaboteur: 4,
	types.EnemySummoner: 4,
}

// WaveGenerator 无尽模式的默认波次生成器
//
// 难度容量随波次号增长，按容量从已解锁的敌人种类中随机抽取敌人组，
// 每组通过平滑权重路线分配器选择路线。
// 随机源来自对局种子，同一种子生成的波次序列完全相同。
type WaveGenerator struct {
	catalog   *config.Catalog
	rng       *rand.Rand
	laneCount int
	lanes     *LaneAllocator
}

// NewWaveGenerator 创建波次生成器
// 路线状态保存在生成器自己的实体管理器中，与对局实体互不影响
func NewWaveGenerator(catalog *config.Catalog, rng *rand.Rand, laneCount int) *WaveGenerator {
	lanes := NewLaneAllocator(ecs.NewEntityManager(), rng)
	lanes.InitializeLanes(laneCount, 1)
	return &WaveGenerator{
		catalog:   catalog,
		rng:       rng,
		laneCount: laneCount,
		lanes:     lanes,
	}
}

// CalculateLevelCapacity 计算波次的难度容量
// 公式: capacity = int(int(waveNumber * 0.8) / 2) + 1，大波 ×2.5 并向零取整
func CalculateLevelCapacity(waveNumber int, isFlagWave bool) int {
	base := int(float64(waveNumber)*0.8)/2 + 1
	if isFlagWave {
		return int(float64(base) * 2.5)
	}
	return base
}

// IsFlagWave 是否为大波
func IsFlagWave(waveNumber int) bool {
	return waveNumber > 0 && waveNumber%WavesPerFlag == 0
}

// Generate 生成第 waveNumber 波（从 1 开始）
func (g *WaveGenerator) Generate(waveNumber int) config.WaveConfig {
	if waveNumber < 1 {
		waveNumber = 1
	}
	capacity := CalculateLevelCapacity(waveNumber, IsFlagWave(waveNumber))
	level := (waveNumber - 1) * levelPerWave
	count := 3 + waveNumber/3

	var wave config.WaveConfig
	budget := capacity
	for budget > 0 && len(wave.Groups) < maxGroupsPerWave {
		candidates := g.unlocked(budget)
		if len(candidates) == 0 {
			break
		}
		kind := candidates[g.rng.Intn(len(candidates))]
		budget -= enemyCost[kind]

		lane := 0
		if g.laneCount > 1 {
			lane = g.lanes.SelectLane()
		}
		wave.Groups = append(wave.Groups, config.GroupConfig{
			Kind:     kind,
			Count:    groupCount(kind, count),
			Interval: groupInterval(kind),
			Level:    level,
			Lane:     &lane,
		})
	}

	if len(wave.Groups) == 0 {
		lane := 0
		wave.Groups = append(wave.Groups, config.GroupConfig{Kind: types.EnemyBasic, Count: count, Interval: 0.8, Level: level, Lane: &lane})
	}
	return wave
}

// unlocked 返回容量允许且数值表中存在的敌人种类（按枚举顺序）
func (g *WaveGenerator) unlocked(budget int) []types.EnemyKind {
	out := make([]types.EnemyKind, 0, len(enemyCost))
	for _, kind := range types.AllEnemyKinds() {
		cost, ok := enemyCost[kind]
		if !ok || cost > budget {
			continue
		}
		if _, err := g.catalog.Enemy(kind); err != nil {
			continue
		}
		out = append(out, kind)
	}
	return out
}

// groupCount 高容量种类数量更少
func groupCount(kind types.EnemyKind, base int) int {
	n := base / enemyCost[kind]
	if n < 1 {
		return 1
	}
	return n
}

func groupInterval(kind types.EnemyKind) float64 {
	switch enemyCost[kind] {
	case 1:
		return 0.6
	case 2:
		return 1.2
	default:
		return 1.8
	}
}
