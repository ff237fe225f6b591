package config

import (
	"fmt"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/decker502/tdcore/pkg/embedded"
	"github.com/decker502/tdcore/pkg/types"
	"github.com/decker502/tdcore/pkg/utils"
	"gopkg.in/yaml.v3"
)

// LevelVersion 当前支持的关卡文件版本
const LevelVersion = 1

// LevelsDir 内置关卡目录
const LevelsDir = "data/levels"

// 自动生成可种植格子时的网格间距
const plantGridSpacing = 1.5

// LevelConfig 关卡配置数据结构
// 包含初始资源、地图（路线与可种植格子）、波次和对局选项
type LevelConfig struct {
	Version   int          `yaml:"version"`   // 文件格式版本，缺省视为 1
	ID        string       `yaml:"id"`        // 关卡ID，如 "1"
	Name      string       `yaml:"name"`      // 关卡名称
	StartGold int          `yaml:"startGold"` // 初始金币
	Lives     int          `yaml:"lives"`     // 初始生命
	Map       MapConfig    `yaml:"map"`       // 地图
	Waves     []WaveConfig `yaml:"waves"`     // 波次列表
	Options   LevelOptions `yaml:"options"`   // 对局选项
}

// MapConfig 地图配置
type MapConfig struct {
	Width          float64          `yaml:"width"`          // 地图宽（格）
	Height         float64          `yaml:"height"`         // 地图高（格）
	RoadWidthCells float64          `yaml:"roadWidthCells"` // 道路宽度，用于自动生成可种植格子
	Lanes          []types.Lane     `yaml:"lanes"`          // 敌人路线，按索引引用
	PlantableCells []types.Position `yaml:"plantableCells"` // 可种植格子，留空时自动生成
}

// WaveConfig 单个波次：按顺序消费的敌人组
type WaveConfig struct {
	Groups []GroupConfig `yaml:"groups"`
}

// GroupConfig 一组敌人的生成请求
type GroupConfig struct {
	Kind       types.EnemyKind `yaml:"kind"`       // 敌人种类
	Count      int             `yaml:"count"`      // 数量
	Interval   float64         `yaml:"interval"`   // 两次生成的间隔（秒）
	Level      int             `yaml:"level"`      // 等级，只影响血量
	Reward     int             `yaml:"reward"`     // 击杀奖励，0 使用种类默认值
	Lane       *int            `yaml:"lane"`       // 可选：指定路线，缺省为 0
	LeakDamage *int            `yaml:"leakDamage"` // 可选：覆盖泄漏伤害
}

// LaneIndex 返回该组使用的路线索引
func (g GroupConfig) LaneIndex() int {
	if g.Lane == nil {
		return 0
	}
	return *g.Lane
}

// LevelOptions 对局选项
type LevelOptions struct {
	AutoStartFirstWave bool                      `yaml:"autoStartFirstWave"`
	FirstWaveDelay     *float64                  `yaml:"firstWaveDelay"` // 缺省使用引擎常量
	TowerLevels        map[string]int            `yaml:"towerLevels"`    // 植物ID 或 "element:<id>" -> 等级
	ElementLevels      map[types.ElementType]int `yaml:"elementLevels"`  // 等价于 towerLevels 中的 element:<id>
	AllowedPlants      []types.PlantType         `yaml:"allowedPlants"`   // 为空表示全部可用
	AllowedElements    []types.ElementType       `yaml:"allowedElements"` // 为空表示全部可用
	Mode               types.MatchMode           `yaml:"mode"`
	LifeBonusPerWave   int                       `yaml:"lifeBonusPerWave"` // 非闯关模式每清一波奖励的生命
	Star               int                       `yaml:"star"`             // 难度星级 1-3
	Seed               int64                     `yaml:"seed"`             // 随机种子，0 表示按关卡ID生成
}

// TowerLevel 返回植物等级（缺省为 1）
func (o *LevelOptions) TowerLevel(t types.PlantType) int {
	return clampLevel(o.TowerLevels[t.String()])
}

// ElementLevel 返回地面施法使用的元素等级（缺省为 1）
func (o *LevelOptions) ElementLevel(e types.ElementType) int {
	return clampLevel(o.TowerLevels[e.ItemID()])
}

func clampLevel(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// LoadLevelConfig 从 YAML 文件加载关卡配置
// 参数：
//
//	filepath - "data/" 开头读取内置关卡，否则读取磁盘文件
//
// 返回：
//
//	*LevelConfig - 已填充默认值并通过校验的关卡
//	error - 读取、解析或校验失败
func LoadLevelConfig(filepath string) (*LevelConfig, error) {
	// 读取文件内容
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config file %s: %w", filepath, err)
	}

	cfg, err := ParseLevelConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid level config in %s: %w", filepath, err)
	}
	return cfg, nil
}

// LoadLevelByID 按ID加载内置关卡
func LoadLevelByID(id string) (*LevelConfig, error) {
	return LoadLevelConfig(path.Join(LevelsDir, id+".yaml"))
}

// ListLevelIDs 列出内置关卡ID（排序后）
func ListLevelIDs() ([]string, error) {
	files, err := embedded.Glob(LevelsDir + "/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, strings.TrimSuffix(path.Base(f), ".yaml"))
	}
	sort.Strings(ids)
	return ids, nil
}

// ParseLevelConfig 解析关卡 YAML：解析 -> 默认值 -> 校验
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	var levelConfig LevelConfig
	if err := yaml.Unmarshal(data, &levelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse level config YAML: %w", err)
	}

	// 应用默认值（向后兼容性）
	applyDefaults(&levelConfig)

	// 验证必填字段
	if err := validateLevelConfig(&levelConfig); err != nil {
		return nil, err
	}

	return &levelConfig, nil
}

// applyDefaults 为 LevelConfig 中缺失的可选字段设置默认值
func applyDefaults(config *LevelConfig) {
	if config.Version == 0 {
		config.Version = LevelVersion
	}

	if config.Options.Star == 0 {
		config.Options.Star = 1
	}

	// elementLevels 合并进 towerLevels，towerLevels 中已有的键优先
	if len(config.Options.ElementLevels) > 0 {
		if config.Options.TowerLevels == nil {
			config.Options.TowerLevels = make(map[string]int)
		}
		for e, lvl := range config.Options.ElementLevels {
			if _, exists := config.Options.TowerLevels[e.ItemID()]; !exists {
				config.Options.TowerLevels[e.ItemID()] = lvl
			}
		}
	}

	// 地图尺寸缺省时取路线包围盒
	if config.Map.Width == 0 || config.Map.Height == 0 {
		maxX, maxY := 0.0, 0.0
		for _, lane := range config.Map.Lanes {
			for _, p := range lane {
				maxX = math.Max(maxX, p.X)
				maxY = math.Max(maxY, p.Y)
			}
		}
		if config.Map.Width == 0 {
			config.Map.Width = math.Ceil(maxX) + 1
		}
		if config.Map.Height == 0 {
			config.Map.Height = math.Ceil(maxY) + 1
		}
	}

	if config.Map.RoadWidthCells == 0 {
		config.Map.RoadWidthCells = 2
	}

	if len(config.Map.PlantableCells) == 0 {
		config.Map.PlantableCells = GeneratePlantableCells(config.Map)
	}
}

// validateLevelConfig 验证关卡配置的完整性和合法性
func validateLevelConfig(config *LevelConfig) error {
	if config.Version != LevelVersion {
		return fmt.Errorf("%w: level version %d", ErrUnsupportedVersion, config.Version)
	}

	if config.ID == "" {
		return fmt.Errorf("level ID is required")
	}

	if config.StartGold < 0 {
		return fmt.Errorf("startGold cannot be negative, got %d", config.StartGold)
	}

	if config.Lives <= 0 {
		return fmt.Errorf("lives must be positive, got %d", config.Lives)
	}

	if len(config.Map.Lanes) == 0 {
		return fmt.Errorf("at least one lane is required")
	}
	for i, lane := range config.Map.Lanes {
		if len(lane) < 2 {
			return fmt.Errorf("lane %d: at least two points are required, got %d", i, len(lane))
		}
		if utils.PathLength(lane) <= 0 {
			return fmt.Errorf("lane %d: length must be positive", i)
		}
	}

	if len(config.Waves) == 0 && !config.Options.Mode.IsEndless() {
		return fmt.Errorf("at least one wave is required")
	}
	for i, wave := range config.Waves {
		if err := ValidateWave(wave, len(config.Map.Lanes)); err != nil {
			return fmt.Errorf("wave %d: %w", i, err)
		}
	}

	if config.Options.Star < 1 || config.Options.Star > 3 {
		return fmt.Errorf("star must be between 1 and 3, got %d", config.Options.Star)
	}
	if config.Options.FirstWaveDelay != nil && *config.Options.FirstWaveDelay < 0 {
		return fmt.Errorf("firstWaveDelay cannot be negative")
	}
	if config.Options.LifeBonusPerWave < 0 {
		return fmt.Errorf("lifeBonusPerWave cannot be negative")
	}
	for key, lvl := range config.Options.TowerLevels {
		if lvl < 0 {
			return fmt.Errorf("towerLevels[%s]: level cannot be negative, got %d", key, lvl)
		}
	}

	return nil
}

// ValidateWave 校验单个波次（程序化生成的波次同样经过此校验）
func ValidateWave(wave WaveConfig, laneCount int) error {
	if len(wave.Groups) == 0 {
		return fmt.Errorf("at least one group is required")
	}
	for j, g := range wave.Groups {
		if g.Kind == types.EnemyUnknown {
			return fmt.Errorf("group %d: %w", j, ErrUnknownEnemyKind)
		}
		if g.Count < 1 {
			return fmt.Errorf("group %d: count must be at least 1, got %d", j, g.Count)
		}
		if g.Interval < 0 {
			return fmt.Errorf("group %d: interval cannot be negative", j)
		}
		if g.Level < 0 {
			return fmt.Errorf("group %d: level cannot be negative, got %d", j, g.Level)
		}
		if g.Reward < 0 {
			return fmt.Errorf("group %d: reward cannot be negative", j)
		}
		if g.Lane != nil && (*g.Lane < 0 || *g.Lane >= laneCount) {
			return fmt.Errorf("group %d: lane must be between 0 and %d, got %d", j, laneCount-1, *g.Lane)
		}
		if g.LeakDamage != nil && *g.LeakDamage < 0 {
			return fmt.Errorf("group %d: leakDamage cannot be negative", j)
		}
	}
	return nil
}

// GeneratePlantableCells 按道路宽度生成可种植格子
// 距任意路线的距离不小于 max(0.8, roadWidth*0.55) 的网格点可种植
func GeneratePlantableCells(m MapConfig) []types.Position {
	threshold := math.Max(0.8, m.RoadWidthCells*0.55)
	cells := make([]types.Position, 0)
	for y := 0.5; y < m.Height-0.5; y += plantGridSpacing {
		for x := 0.5; x < m.Width-0.5; x += plantGridSpacing {
			p := types.Position{X: x, Y: y}
			if nearestLaneDistance(p, m.Lanes) >= threshold {
				cells = append(cells, p)
			}
		}
	}
	return cells
}

func nearestLaneDistance(p types.Position, lanes []types.Lane) float64 {
	best := math.Inf(1)
	for _, lane := range lanes {
		for i := 0; i+1 < len(lane); i++ {
			best = math.Min(best, utils.PointSegmentDistance(p, lane[i], lane[i+1]))
		}
	}
	return best
}

// WavesWithStar 返回按星级调整等级后的波次副本
// 星级 s 给每组敌人的等级加上 offsets[s-1]
func WavesWithStar(waves []WaveConfig, star int, offsets []int) []WaveConfig {
	offset := 0
	if star >= 1 && star <= len(offsets) {
		offset = offsets[star-1]
	}
	out := make([]WaveConfig, len(waves))
	for i, w := range waves {
		groups := make([]GroupConfig, len(w.Groups))
		copy(groups, w.Groups)
		for j := range groups {
			groups[j].Level += offset
		}
		out[i] = WaveConfig{Groups: groups}
	}
	return out
}

// ContainsPlant 检查植物是否在允许列表中（空列表表示全部允许）
func ContainsPlant(list []types.PlantType, t types.PlantType) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

// ContainsElement 检查元素是否在允许列表中（空列表表示全部允许）
func ContainsElement(list []types.ElementType, e types.ElementType) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if v == e {
			return true
		}
	}
	return false
}
