package systems

import (
	"log"

	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/entities"
	"github.com/decker502/tdcore/pkg/event"
	"github.com/decker502/tdcore/pkg/game"
)

// WaveFactory 按波次号（从 1 开始）生成波次，用于无尽模式
type WaveFactory func(waveNumber int) config.WaveConfig

// WaveSpawnSystem 波次调度
//
// 状态机：Idle -> Spawning(groupIndex, remaining, nextSpawnTime) -> Idle
//   - 每帧至多生成一个敌人
//   - 一组生成完毕后间隔 groupPause 进入下一组
//   - 最后一组生成完毕后游标置空（"已全部生成"）
//   - 游标为空且场上没有敌人和投射物时本波"已清除"
//
// 清除后：波次索引 +1，非闯关模式奖励生命，无尽模式在波次耗尽时追加生成的波次，
// 还有后续波次时安排 nextWaveDelay 后自动开始。
type WaveSpawnSystem struct {
	entityManager *ecs.EntityManager
	gameState     *game.GameState
	catalog       *config.Catalog
	events        *event.Dispatcher
	waveFactory   WaveFactory
	verbose       bool
}

// NewWaveSpawnSystem 创建波次调度系统
//
// 参数：
//
//	em - 实体管理器
//	gs - 对局状态
//	catalog - 数值表（敌人属性与引擎常量）
//	events - 事件分发器，可为 nil
//	factory - 无尽模式的波次生成函数，非无尽模式可为 nil
func NewWaveSpawnSystem(em *ecs.EntityManager, gs *game.GameState, catalog *config.Catalog, events *event.Dispatcher, factory WaveFactory) *WaveSpawnSystem {
	return &WaveSpawnSystem{
		entityManager: em,
		gameState:     gs,
		catalog:       catalog,
		events:        events,
		waveFactory:   factory,
	}
}

// SetVerbose 开启生成日志
func (s *WaveSpawnSystem) SetVerbose(v bool) {
	s.verbose = v
}

// StartWave 开始当前波次
// 已有波次进行中、对局已失败或没有剩余波次时拒绝；无尽模式波次耗尽时先生成一波
func (s *WaveSpawnSystem) StartWave() bool {
	gs := s.gameState
	if gs.WaveActive || gs.Lost {
		return false
	}
	s.appendEndlessWave()
	wave := gs.CurrentWave()
	if wave == nil {
		return false
	}

	gs.WaveActive = true
	gs.HasNextWaveStart = false
	if len(wave.Groups) > 0 {
		gs.Cursor = &game.SpawnCursor{
			GroupIndex:    0,
			Remaining:     wave.Groups[0].Count,
			NextSpawnTime: gs.Time,
		}
	} else {
		gs.Cursor = nil
	}

	log.Printf("[WaveSpawnSystem] Wave %d started at t=%.2f (%d groups)", gs.WaveIndex+1, gs.Time, len(wave.Groups))
	s.dispatch(event.WaveStarted, event.WaveData{WaveIndex: gs.WaveIndex})
	return true
}

// CheckAutoStart 到达预定时间时自动开始下一波
func (s *WaveSpawnSystem) CheckAutoStart() bool {
	gs := s.gameState
	if gs.WaveActive || !gs.HasNextWaveStart {
		return false
	}
	if gs.Time < gs.NextWaveStartTime {
		return false
	}
	if !s.StartWave() {
		gs.HasNextWaveStart = false
		return false
	}
	return true
}

// Update 按游标生成敌人，每帧至多一个
func (s *WaveSpawnSystem) Update() {
	gs := s.gameState
	if !gs.WaveActive || gs.Cursor == nil {
		return
	}
	wave := gs.CurrentWave()
	if wave == nil {
		gs.Cursor = nil
		return
	}

	c := gs.Cursor
	if gs.Time < c.NextSpawnTime {
		return
	}
	if c.GroupIndex >= len(wave.Groups) {
		gs.Cursor = nil
		return
	}
	group := wave.Groups[c.GroupIndex]

	if c.Remaining > 0 {
		id, err := entities.NewEnemy(s.entityManager, gs, s.catalog, entities.EnemySpec{Group: group})
		if err != nil {
			log.Printf("[WaveSpawnSystem] ERROR: failed to spawn %s: %v", group.Kind, err)
		} else {
			if s.verbose {
				log.Printf("[WaveSpawnSystem] Spawned %s (level %d) on lane %d, entityID=%d", group.Kind, group.Level, group.LaneIndex(), id)
			}
			s.dispatch(event.EnemySpawned, event.EnemyData{ID: uint64(id), Kind: group.Kind, Lane: group.LaneIndex()})
		}
		c.Remaining--
		c.NextSpawnTime = gs.Time + group.Interval
	}

	if c.Remaining > 0 {
		return
	}
	next := c.GroupIndex + 1
	if next < len(wave.Groups) {
		gs.Cursor = &game.SpawnCursor{
			GroupIndex:    next,
			Remaining:     wave.Groups[next].Count,
			NextSpawnTime: gs.Time + s.catalog.Engine.GroupPause,
		}
		return
	}
	gs.Cursor = nil
	if s.verbose {
		log.Printf("[WaveSpawnSystem] Wave %d fully spawned", gs.WaveIndex+1)
	}
}

// CheckWaveCleared 游标为空且没有敌人和投射物时结束本波
// 返回: 本帧是否清除了一波
func (s *WaveSpawnSystem) CheckWaveCleared() bool {
	gs := s.gameState
	if !gs.WaveActive || gs.Cursor != nil || gs.Lives <= 0 {
		return false
	}
	if CountEnemies(s.entityManager) > 0 || CountProjectiles(s.entityManager) > 0 {
		return false
	}

	cleared := gs.WaveIndex
	gs.WaveActive = false
	gs.WaveIndex++
	gs.WavesCleared++

	if !gs.Mode.IsCampaign() {
		gs.AddLives(gs.LifeBonusPerWave)
	}
	s.appendEndlessWave()

	if !gs.AllWavesDone() {
		gs.HasNextWaveStart = true
		gs.NextWaveStartTime = gs.Time + s.catalog.Engine.NextWaveDelay
	} else {
		gs.HasNextWaveStart = false
	}

	log.Printf("[WaveSpawnSystem] Wave %d cleared at t=%.2f (lives=%d, gold=%d)", cleared+1, gs.Time, gs.Lives, gs.Gold)
	s.dispatch(event.WaveCleared, event.WaveData{WaveIndex: cleared})
	return true
}

// appendEndlessWave 无尽模式预设波次耗尽时按波次号生成下一波，生成结果无效时不追加
func (s *WaveSpawnSystem) appendEndlessWave() bool {
	gs := s.gameState
	if !gs.Mode.IsEndless() || !gs.AllWavesDone() || s.waveFactory == nil {
		return false
	}
	n := gs.WaveIndex + 1
	wave := s.waveFactory(n)
	if err := config.ValidateWave(wave, len(gs.Lanes)); err != nil {
		log.Printf("[WaveSpawnSystem] ERROR: generated wave %d is invalid: %v", n, err)
		return false
	}
	gs.Waves = append(gs.Waves, wave)
	return true
}

// Halt 失败时停止生成并取消自动开始
func (s *WaveSpawnSystem) Halt() {
	gs := s.gameState
	gs.WaveActive = false
	gs.Cursor = nil
	gs.HasNextWaveStart = false
}

func (s *WaveSpawnSystem) dispatch(t event.EventType, data interface{}) {
	if s.events == nil {
		return
	}
	s.events.Dispatch(event.Event{Type: t, Time: s.gameState.Time, Data: data})
}
