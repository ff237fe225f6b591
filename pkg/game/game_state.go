// Package game 保存单局对局的全部可变标量状态
//
// 与实体（敌人、塔、投射物）相关的状态保存在 ecs.EntityManager 中；
// 这里是金币、生命、时间、波次进度等"全局"数据。
// 每局对局创建一个 GameState，不存在全局单例。
package game

import (
	"hash/fnv"
	"math/rand"

	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/types"
	"github.com/decker502/tdcore/pkg/utils"
)

// SpawnCursor 当前波次的生成游标
// 最后一组生成完毕后置为 nil，表示本波"已全部生成"
type SpawnCursor struct {
	GroupIndex    int     // 当前组索引
	Remaining     int     // 当前组剩余数量
	NextSpawnTime float64 // 下次生成时间
}

// GameState 单局对局状态
type GameState struct {
	Time     float64 // 当前游戏时间
	PrevTime float64 // 上一帧的游戏时间（灼烧积分使用）

	Gold  int
	Lives int

	Running bool // false 表示暂停或已失败
	Lost    bool // 生命归零后冻结，只能重置或重新加载

	Mode             types.MatchMode
	LifeBonusPerWave int

	Lanes          []types.Lane
	LaneLengths    []float64
	MapWidth       float64
	MapHeight      float64
	PlantableCells []types.Position

	Waves      []config.WaveConfig
	WaveIndex  int
	WaveActive bool
	Cursor     *SpawnCursor

	// 自动开始下一波的时间，HasNextWaveStart 为 false 时不生效
	HasNextWaveStart  bool
	NextWaveStartTime float64

	// 地面施法冷却：元素 -> 冷却结束时间，过期条目每帧清理
	ElementCooldowns map[types.ElementType]float64

	AllowedPlants   []types.PlantType
	AllowedElements []types.ElementType
	Options         config.LevelOptions

	WavesCleared int // 已清除的波次数
	LivesLost    int // 累计损失的生命（用于判定无伤通关）

	Rand *rand.Rand
}

// NewGameState 根据关卡配置创建对局状态
// 参数:
//   - level: 已校验的关卡配置
//   - waves: 实际使用的波次（已按星级调整）
//   - firstWaveDelay: 首波自动开始的延迟（未开启自动开始时忽略）
func NewGameState(level *config.LevelConfig, waves []config.WaveConfig, firstWaveDelay float64) *GameState {
	gs := &GameState{
		Gold:             level.StartGold,
		Lives:            level.Lives,
		Running:          true,
		Mode:             level.Options.Mode,
		LifeBonusPerWave: level.Options.LifeBonusPerWave,
		Lanes:            level.Map.Lanes,
		MapWidth:         level.Map.Width,
		MapHeight:        level.Map.Height,
		PlantableCells:   level.Map.PlantableCells,
		Waves:            waves,
		ElementCooldowns: make(map[types.ElementType]float64),
		AllowedPlants:    level.Options.AllowedPlants,
		AllowedElements:  level.Options.AllowedElements,
		Options:          level.Options,
		Rand:             rand.New(rand.NewSource(seedFor(level))),
	}

	gs.LaneLengths = make([]float64, len(gs.Lanes))
	for i, lane := range gs.Lanes {
		gs.LaneLengths[i] = utils.PathLength(lane)
	}

	if level.Options.AutoStartFirstWave {
		gs.HasNextWaveStart = true
		gs.NextWaveStartTime = firstWaveDelay
	}
	return gs
}

// seedFor 关卡未指定种子时由关卡ID派生，保证同一关卡可复现
func seedFor(level *config.LevelConfig) int64 {
	if level.Options.Seed != 0 {
		return level.Options.Seed
	}
	h := fnv.New64a()
	h.Write([]byte(level.ID))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

// AddGold 增加金币
func (gs *GameState) AddGold(amount int) {
	if amount <= 0 {
		return
	}
	gs.Gold += amount
}

// SpendGold 扣除金币，如果金币不足返回 false 且不扣除
func (gs *GameState) SpendGold(amount int) bool {
	if amount < 0 || gs.Gold < amount {
		return false
	}
	gs.Gold -= amount
	return true
}

// CanAfford 金币是否足够
func (gs *GameState) CanAfford(amount int) bool {
	return gs.Gold >= amount
}

// LoseLives 扣除生命，最低为 0
// 返回: 实际扣除的生命
func (gs *GameState) LoseLives(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > gs.Lives {
		amount = gs.Lives
	}
	gs.Lives -= amount
	gs.LivesLost += amount
	return amount
}

// AddLives 增加生命（非闯关模式的每波奖励）
func (gs *GameState) AddLives(amount int) {
	if amount > 0 {
		gs.Lives += amount
	}
}

// Lane 返回路线，索引越界返回 nil
func (gs *GameState) Lane(index int) types.Lane {
	if index < 0 || index >= len(gs.Lanes) {
		return nil
	}
	return gs.Lanes[index]
}

// LaneLength 返回路线总长，索引越界返回 0
func (gs *GameState) LaneLength(index int) float64 {
	if index < 0 || index >= len(gs.LaneLengths) {
		return 0
	}
	return gs.LaneLengths[index]
}

// CurrentWave 返回当前波次，已全部完成时返回 nil
func (gs *GameState) CurrentWave() *config.WaveConfig {
	if gs.WaveIndex < 0 || gs.WaveIndex >= len(gs.Waves) {
		return nil
	}
	return &gs.Waves[gs.WaveIndex]
}

// AllWavesDone 预设波次是否已全部清除
func (gs *GameState) AllWavesDone() bool {
	return gs.WaveIndex >= len(gs.Waves)
}

// CooldownRemaining 元素地面施法的剩余冷却时间
func (gs *GameState) CooldownRemaining(e types.ElementType) float64 {
	readyAt, ok := gs.ElementCooldowns[e]
	if !ok || readyAt <= gs.Time {
		return 0
	}
	return readyAt - gs.Time
}

// PruneCooldowns 删除已结束的冷却条目
func (gs *GameState) PruneCooldowns() {
	for e, readyAt := range gs.ElementCooldowns {
		if readyAt <= gs.Time {
			delete(gs.ElementCooldowns, e)
		}
	}
}

// PlantAllowed 植物是否允许在本关使用
func (gs *GameState) PlantAllowed(t types.PlantType) bool {
	return config.ContainsPlant(gs.AllowedPlants, t)
}

// ElementAllowed 元素是否允许在本关使用
func (gs *GameState) ElementAllowed(e types.ElementType) bool {
	return config.ContainsElement(gs.AllowedElements, e)
}
