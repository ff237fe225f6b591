package match

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/entities"
	"github.com/decker502/tdcore/pkg/event"
	"github.com/decker502/tdcore/pkg/systems"
	"github.com/decker502/tdcore/pkg/types"
	"github.com/decker502/tdcore/pkg/utils"
)

// RejectReason 玩家操作被拒绝的原因
// 被拒绝的操作不改变任何状态，也不扣除金币
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectNoLevel
	RejectMatchLost
	RejectUnknownType
	RejectNotAllowed
	RejectInsufficientGold
	RejectOffGrid
	RejectOccupied
	RejectElementBlocked
	RejectElementMismatch
	RejectOnCooldown
	RejectNotReady
	RejectWaveActive
	RejectNoWaves
)

var rejectReasonIDs = map[RejectReason]string{
	RejectNone:             "none",
	RejectNoLevel:          "noLevel",
	RejectMatchLost:        "matchLost",
	RejectUnknownType:      "unknownType",
	RejectNotAllowed:       "notAllowed",
	RejectInsufficientGold: "insufficientGold",
	RejectOffGrid:          "offGrid",
	RejectOccupied:         "occupied",
	RejectElementBlocked:   "elementBlocked",
	RejectElementMismatch:  "elementMismatch",
	RejectOnCooldown:       "onCooldown",
	RejectNotReady:         "notReady",
	RejectWaveActive:       "waveActive",
	RejectNoWaves:          "noWaves",
}

// String 返回原因ID
func (r RejectReason) String() string {
	if id, ok := rejectReasonIDs[r]; ok {
		return id
	}
	return "unknown"
}

// MarshalText 实现 encoding.TextMarshaler
func (r RejectReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (r *RejectReason) UnmarshalText(text []byte) error {
	for reason, id := range rejectReasonIDs {
		if id == string(text) {
			*r = reason
			return nil
		}
	}
	return fmt.Errorf("unknown reject reason %q", string(text))
}

// cellEpsilon 两座塔坐标相差小于该值视为同一格
const cellEpsilon = 1e-6

func (m *Match) reject(action string, reason RejectReason) bool {
	m.lastRejection = reason
	if m.verbose {
		log.Printf("[Match] %s rejected: %s", action, reason)
	}
	return false
}

func (m *Match) accept() bool {
	m.lastRejection = RejectNone
	return true
}

// PlaceTower 在最近的可种植格子上放置塔
//
// 拒绝条件：未加载关卡、已失败、类型未知或不允许、金币不足、
// 附近没有可种植格子、格子已被占用
func (m *Match) PlaceTower(plant types.PlantType, at types.Position) bool {
	const action = "PlaceTower"
	gs := m.gs
	if gs == nil {
		return m.reject(action, RejectNoLevel)
	}
	if gs.Lost {
		return m.reject(action, RejectMatchLost)
	}
	base, err := m.catalog.Plant(plant)
	if err != nil {
		return m.reject(action, RejectUnknownType)
	}
	if !config.ContainsPlant(gs.AllowedPlants, plant) {
		return m.reject(action, RejectNotAllowed)
	}
	if !gs.CanAfford(base.Cost) {
		return m.reject(action, RejectInsufficientGold)
	}
	cell, ok := utils.NearestCell(gs.PlantableCells, at, m.catalog.Engine.PlaceTolerance)
	if !ok {
		return m.reject(action, RejectOffGrid)
	}
	if m.towerAt(cell) != 0 {
		return m.reject(action, RejectOccupied)
	}

	id, err := entities.NewTower(m.em, gs, m.catalog, plant, cell, gs.Options.TowerLevel(plant))
	if err != nil {
		log.Printf("[Match] ERROR: failed to create tower %s: %v", plant, err)
		return m.reject(action, RejectUnknownType)
	}
	gs.SpendGold(base.Cost)

	if m.verbose {
		log.Printf("[Match] Placed %s at (%.1f, %.1f), entityID=%d, gold=%d", plant, cell.X, cell.Y, id, gs.Gold)
	}
	m.events.Dispatch(event.Event{Type: event.TowerPlaced, Time: gs.Time, Data: event.TowerData{
		ID:       uint64(id),
		Type:     plant,
		Position: cell,
	}})
	return m.accept()
}

// towerAt 返回位于该格子的塔，没有时返回 0
func (m *Match) towerAt(cell types.Position) ecs.EntityID {
	for _, id := range ecs.GetEntitiesWith2[*components.TowerComponent, *components.PositionComponent](m.em) {
		if m.em.IsMarkedForDestroy(id) {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](m.em, id)
		if utils.Distance(pos.Position, cell) < cellEpsilon {
			return id
		}
	}
	return 0
}

// nearestTower 返回距离小于 radius 的最近的塔
func (m *Match) nearestTower(at types.Position, radius float64) (ecs.EntityID, *components.TowerComponent) {
	var (
		bestID    ecs.EntityID
		bestTower *components.TowerComponent
	)
	best := math.Inf(1)
	for _, id := range ecs.GetEntitiesWith2[*components.TowerComponent, *components.PositionComponent](m.em) {
		if m.em.IsMarkedForDestroy(id) {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](m.em, id)
		d := utils.Distance(pos.Position, at)
		if d < radius && d < best {
			tower, _ := ecs.GetComponent[*components.TowerComponent](m.em, id)
			best, bestID, bestTower = d, id, tower
		}
	}
	return bestID, bestTower
}

// ApplyElement 投放元素
//
// 投放点附近有塔时附着到塔上：空塔获得 1 级元素，同类元素等级 +1，不同类元素拒绝。
// 附近没有塔时在地面施法：检查冷却，经过引信时间后按元素施法效果生效一次。
// 两种方式都扣除元素价格。
func (m *Match) ApplyElement(element types.ElementType, at types.Position) bool {
	const action = "ApplyElement"
	gs := m.gs
	if gs == nil {
		return m.reject(action, RejectNoLevel)
	}
	if gs.Lost {
		return m.reject(action, RejectMatchLost)
	}
	el, err := m.catalog.Element(element)
	if err != nil {
		return m.reject(action, RejectUnknownType)
	}
	if !config.ContainsElement(gs.AllowedElements, element) {
		return m.reject(action, RejectNotAllowed)
	}
	if !gs.CanAfford(el.Cost) {
		return m.reject(action, RejectInsufficientGold)
	}

	if id, tower := m.nearestTower(at, m.catalog.Engine.ElementAttachRadius); tower != nil {
		return m.attachElement(id, tower, element, el.Cost)
	}
	return m.castElement(element, el, at)
}

func (m *Match) attachElement(id ecs.EntityID, tower *components.TowerComponent, element types.ElementType, cost int) bool {
	const action = "ApplyElement"
	gs := m.gs
	base, err := m.catalog.Plant(tower.Type)
	if err != nil {
		return m.reject(action, RejectUnknownType)
	}
	if base.Blocks(element) {
		return m.reject(action, RejectElementBlocked)
	}

	prev := tower.Element
	switch {
	case prev == nil:
		tower.Element = &components.ElementState{Type: element, Level: 1}
	case prev.Type != element:
		return m.reject(action, RejectElementMismatch)
	default:
		tower.Element = &components.ElementState{Type: element, Level: prev.Level + 1}
	}
	if err := systems.RefreshTowerStats(m.catalog, tower); err != nil {
		log.Printf("[Match] ERROR: failed to refresh tower %d: %v", id, err)
		tower.Element = prev
		return m.reject(action, RejectUnknownType)
	}
	gs.SpendGold(cost)

	pos, _ := ecs.GetComponent[*components.PositionComponent](m.em, id)
	m.events.Dispatch(event.Event{Type: event.ElementApplied, Time: gs.Time, Data: event.ElementData{
		Element:  element,
		Level:    tower.Element.Level,
		TowerID:  uint64(id),
		Position: pos.Position,
	}})
	return m.accept()
}

func (m *Match) castElement(element types.ElementType, el *config.ElementConfig, at types.Position) bool {
	const action = "ApplyElement"
	gs := m.gs
	if gs.CooldownRemaining(element) > 0 {
		return m.reject(action, RejectOnCooldown)
	}

	cooldown := el.Cast.Cooldown
	if cooldown <= 0 {
		cooldown = m.catalog.Engine.DefaultCastCooldown
	}
	level := gs.Options.ElementLevel(element)

	entities.NewElementCast(m.em, element, level, at, gs.Time+m.catalog.Engine.CastFuse)
	gs.ElementCooldowns[element] = gs.Time + cooldown
	gs.SpendGold(el.Cost)

	m.events.Dispatch(event.Event{Type: event.ElementApplied, Time: gs.Time, Data: event.ElementData{
		Element:  element,
		Level:    level,
		Position: at,
	}})
	return m.accept()
}

// ManualFire 阳光花手动发射
func (m *Match) ManualFire(towerID ecs.EntityID) bool {
	const action = "ManualFire"
	if m.gs == nil {
		return m.reject(action, RejectNoLevel)
	}
	if m.gs.Lost {
		return m.reject(action, RejectMatchLost)
	}
	if !m.towerFire.ManualFire(towerID) {
		return m.reject(action, RejectNotReady)
	}
	return m.accept()
}

// StartWave 手动开始下一波
func (m *Match) StartWave() bool {
	const action = "StartWave"
	gs := m.gs
	switch {
	case gs == nil:
		return m.reject(action, RejectNoLevel)
	case gs.Lost:
		return m.reject(action, RejectMatchLost)
	case gs.WaveActive:
		return m.reject(action, RejectWaveActive)
	}
	if !m.waves.StartWave() {
		return m.reject(action, RejectNoWaves)
	}
	return m.accept()
}

// TogglePause 切换暂停；失败后无法恢复
// 返回: 切换后是否在运行
func (m *Match) TogglePause() bool {
	gs := m.gs
	if gs == nil {
		m.reject("TogglePause", RejectNoLevel)
		return false
	}
	if gs.Lost {
		m.reject("TogglePause", RejectMatchLost)
		return false
	}
	gs.Running = !gs.Running
	m.lastRejection = RejectNone
	log.Printf("[Match] Running=%v at t=%.2f", gs.Running, gs.Time)
	return gs.Running
}
