// Package match 对局编排：加载关卡、按固定步长推进所有系统、处理玩家操作
//
// Match 不是并发安全的。调用方（ebiten 的 Update 循环、服务器的驱动协程）
// 必须保证 Update 与玩家操作串行调用。
package match

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/event"
	"github.com/decker502/tdcore/pkg/game"
	"github.com/decker502/tdcore/pkg/systems"
	"github.com/decker502/tdcore/pkg/types"
)

// ErrNoLevel 尚未加载关卡
var ErrNoLevel = errors.New("no level loaded")

// Outcome 对局结果
type Outcome int

const (
	// OutcomeNone 对局进行中
	OutcomeNone Outcome = iota
	// OutcomeWon 非无尽模式清除了全部波次
	OutcomeWon
	// OutcomeLost 生命归零
	OutcomeLost
)

// String 返回结果ID
func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "none"
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (o *Outcome) UnmarshalText(text []byte) error {
	for _, v := range []Outcome{OutcomeNone, OutcomeWon, OutcomeLost} {
		if v.String() == string(text) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", string(text))
}

// LevelInput 加载关卡的输入
type LevelInput struct {
	Level *config.LevelConfig

	// EndlessWaveFactory 无尽模式波次耗尽时按波次号（从 1 开始）生成新波次
	// 为 nil 时使用内置的 WaveGenerator
	EndlessWaveFactory func(waveNumber int) config.WaveConfig
}

// Match 单局对局
type Match struct {
	catalog  *config.Catalog
	events   *event.Dispatcher
	recorder *event.Recorder
	verbose  bool

	input  *LevelInput
	em     *ecs.EntityManager
	gs     *game.GameState
	result Outcome

	lastRejection RejectReason

	combat     *systems.CombatSystem
	lifetime   *systems.LifetimeSystem
	income     *systems.IncomeSystem
	waves      *systems.WaveSpawnSystem
	movement   *systems.MovementSystem
	status     *systems.StatusEffectSystem
	casts      *systems.ElementCastSystem
	abilities  *systems.EnemyAbilitySystem
	towerFire  *systems.TowerFireSystem
	projectile *systems.ProjectileSystem
	aura       *systems.AuraSystem
}

// New 创建空对局，调用 LoadLevel 后才能推进
func New(catalog *config.Catalog) *Match {
	m := &Match{
		catalog:  catalog,
		events:   event.NewDispatcher(),
		recorder: &event.Recorder{},
	}
	m.events.SubscribeAll(m.recorder)
	return m
}

// SetVerbose 开启逐帧日志（生成、泄漏、开火、被拒绝的操作）
func (m *Match) SetVerbose(v bool) {
	m.verbose = v
	if m.waves != nil {
		m.waves.SetVerbose(v)
		m.movement.SetVerbose(v)
		m.towerFire.SetVerbose(v)
	}
}

// Subscribe 订阅对局事件，重新加载关卡后订阅仍然有效
func (m *Match) Subscribe(eventType event.EventType, listener event.Listener) {
	m.events.Subscribe(eventType, listener)
}

// Catalog 返回对局使用的数值表
func (m *Match) Catalog() *config.Catalog {
	return m.catalog
}

// Loaded 是否已加载关卡
func (m *Match) Loaded() bool {
	return m.gs != nil
}

// LoadLevel 加载关卡并重置全部对局状态
func (m *Match) LoadLevel(in LevelInput) error {
	if in.Level == nil {
		return fmt.Errorf("load level: %w", ErrNoLevel)
	}
	level := in.Level
	engine := m.catalog.Engine

	waves := config.WavesWithStar(level.Waves, level.Options.Star, engine.StarLevelOffsets)
	firstDelay := engine.FirstWaveDelay
	if level.Options.FirstWaveDelay != nil {
		firstDelay = *level.Options.FirstWaveDelay
	}

	em := ecs.NewEntityManager()
	gs := game.NewGameState(level, waves, firstDelay)

	var factory systems.WaveFactory
	if gs.Mode.IsEndless() {
		if in.EndlessWaveFactory != nil {
			factory = in.EndlessWaveFactory
		} else {
			gen := systems.NewWaveGenerator(m.catalog, rand.New(rand.NewSource(gs.Rand.Int63())), len(gs.Lanes))
			factory = gen.Generate
		}
	}

	m.input = &in
	m.em = em
	m.gs = gs
	m.result = OutcomeNone
	m.lastRejection = RejectNone
	m.recorder.Drain()
	m.buildSystems(factory)

	log.Printf("[Match] Loaded level %s (%s): %d waves, %d lanes, gold=%d, lives=%d, star=%d",
		level.ID, gs.Mode, len(waves), len(gs.Lanes), gs.Gold, gs.Lives, level.Options.Star)
	return nil
}

// Reset 按上次的输入重新开始对局
func (m *Match) Reset() error {
	if m.input == nil {
		return fmt.Errorf("reset: %w", ErrNoLevel)
	}
	return m.LoadLevel(*m.input)
}

func (m *Match) buildSystems(factory systems.WaveFactory) {
	em, gs, c := m.em, m.gs, m.catalog

	burnColor := c.Engine.DefaultColor
	if fire, err := c.Element(types.ElementFire); err == nil {
		burnColor = fire.Color
	}

	m.combat = systems.NewCombatSystem(em, gs, c, m.events)
	m.lifetime = systems.NewLifetimeSystem(em)
	m.income = systems.NewIncomeSystem(em, gs)
	m.waves = systems.NewWaveSpawnSystem(em, gs, c, m.events, factory)
	m.movement = systems.NewMovementSystem(em, gs, m.events)
	m.status = systems.NewStatusEffectSystem(em, gs, m.combat, burnColor)
	m.casts = systems.NewElementCastSystem(em, gs, c, m.combat, m.events)
	m.abilities = systems.NewEnemyAbilitySystem(em, gs, c, m.events)
	m.towerFire = systems.NewTowerFireSystem(em, gs, c)
	m.projectile = systems.NewProjectileSystem(em, gs, m.combat, c.Engine)
	m.aura = systems.NewAuraSystem(em, gs, m.combat)

	m.waves.SetVerbose(m.verbose)
	m.movement.SetVerbose(m.verbose)
	m.towerFire.SetVerbose(m.verbose)
}

// Update 推进一帧
//
// 顺序：飘字过期、时间推进、收益、自动开波、生成、移动与泄漏、状态与灼烧、
// 地面施法、敌人能力、塔开火、投射物、光环、清理，然后检查失败、清波与胜利。
// 暂停、失败或未加载关卡时不做任何事。
func (m *Match) Update(dt float64) {
	gs := m.gs
	if gs == nil || !gs.Running || gs.Lost || dt <= 0 {
		return
	}

	m.lifetime.Update(dt)

	gs.PrevTime = gs.Time
	gs.Time += dt

	m.income.Update()
	m.waves.CheckAutoStart()
	m.waves.Update()
	m.movement.Update(dt)
	m.status.Update()
	m.casts.Update()
	m.abilities.Update()
	m.towerFire.Update()
	m.projectile.Update(dt)
	m.aura.Update(dt)

	m.combat.RemoveDead()
	m.em.RemoveMarkedEntities()

	// 生命归零先于清波结算，每波生命奖励不能挽回失败
	if gs.Lives <= 0 {
		m.lose()
		gs.PruneCooldowns()
		return
	}
	m.waves.CheckWaveCleared()
	m.checkWon()
	gs.PruneCooldowns()
}

// lose 冻结对局：停止生成，清空敌人和投射物，取消自动开波
func (m *Match) lose() {
	gs := m.gs
	m.waves.Halt()
	for _, id := range ecs.GetEntitiesWith1[*components.EnemyComponent](m.em) {
		m.em.DestroyEntity(id)
	}
	for _, id := range ecs.GetEntitiesWith1[*components.ProjectileComponent](m.em) {
		m.em.DestroyEntity(id)
	}
	m.em.RemoveMarkedEntities()

	gs.Running = false
	gs.Lost = true
	m.result = OutcomeLost

	log.Printf("[Match] Defeat at t=%.2f after %d waves", gs.Time, gs.WavesCleared)
	m.events.Dispatch(event.Event{Type: event.MatchLost, Time: gs.Time, Data: m.outcomeData()})
}

// checkWon 非无尽模式清除全部波次且场上没有敌人时获胜
func (m *Match) checkWon() {
	gs := m.gs
	if m.result != OutcomeNone || gs.Mode.IsEndless() {
		return
	}
	if gs.WaveActive || !gs.AllWavesDone() || len(gs.Waves) == 0 {
		return
	}
	if systems.CountEnemies(m.em) > 0 {
		return
	}
	m.result = OutcomeWon
	data := m.outcomeData()
	log.Printf("[Match] Victory at t=%.2f (lives=%d, flawless=%v)", gs.Time, gs.Lives, data.Flawless)
	m.events.Dispatch(event.Event{Type: event.MatchWon, Time: gs.Time, Data: data})
}

func (m *Match) outcomeData() event.OutcomeData {
	return event.OutcomeData{
		WavesCleared: m.gs.WavesCleared,
		LivesLost:    m.gs.LivesLost,
		Flawless:     m.gs.LivesLost == 0,
	}
}

// Outcome 当前对局结果
func (m *Match) Outcome() Outcome {
	return m.result
}

// Flawless 是否没有损失任何生命
func (m *Match) Flawless() bool {
	return m.gs != nil && m.gs.LivesLost == 0
}

// Events 取出自上次调用以来发生的事件
func (m *Match) Events() []event.Event {
	return m.recorder.Drain()
}

// LastRejection 最近一次被拒绝的操作原因
func (m *Match) LastRejection() RejectReason {
	return m.lastRejection
}

// Level 当前关卡配置，未加载时为 nil
func (m *Match) Level() *config.LevelConfig {
	if m.input == nil {
		return nil
	}
	return m.input.Level
}
