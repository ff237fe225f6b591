package match

import (
	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/types"
)

// EnemyView 渲染用的敌人快照
type EnemyView struct {
	ID       uint64          `json:"id"`
	Kind     types.EnemyKind `json:"kind"`
	Level    int             `json:"level"`
	Lane     int             `json:"lane"`
	Position types.Position  `json:"position"`
	HP       float64         `json:"hp"`
	MaxHP    float64         `json:"maxHp"`
	Progress float64         `json:"progress"`
	Slowed   bool            `json:"slowed,omitempty"`
	Burning  bool            `json:"burning,omitempty"`
	Boosted  bool            `json:"boosted,omitempty"`
}

// TowerView 渲染用的塔快照
type TowerView struct {
	ID           uint64             `json:"id"`
	Type         types.PlantType    `json:"type"`
	Level        int                `json:"level"`
	Position     types.Position     `json:"position"`
	Element      *types.ElementType `json:"element,omitempty"`
	ElementLevel int                `json:"elementLevel,omitempty"`
	Range        float64            `json:"range"`
	Color        string             `json:"color"`
	ManualReady  bool               `json:"manualReady,omitempty"`
}

// ProjectileView 渲染用的投射物快照
type ProjectileView struct {
	ID       uint64         `json:"id"`
	Position types.Position `json:"position"`
	Color    string         `json:"color"`
	Piercing bool           `json:"piercing,omitempty"`
}

// CastView 等待生效的地面施法
type CastView struct {
	ID          uint64            `json:"id"`
	Element     types.ElementType `json:"element"`
	Level       int               `json:"level"`
	Position    types.Position    `json:"position"`
	TriggerTime float64           `json:"triggerTime"`
}

// PopupView 伤害飘字
type PopupView struct {
	Position types.Position `json:"position"`
	Amount   float64        `json:"amount"`
	Color    string         `json:"color"`
	Age      float64        `json:"age"`
}

// HUD 标量界面状态
type HUD struct {
	Time         float64         `json:"time"`
	Gold         int             `json:"gold"`
	Lives        int             `json:"lives"`
	WaveIndex    int             `json:"waveIndex"` // 从 0 开始，等于已清除的波次数
	TotalWaves   int             `json:"totalWaves"`
	WaveActive   bool            `json:"waveActive"`
	Running      bool            `json:"running"`
	Lost         bool            `json:"lost"`
	Mode         types.MatchMode `json:"mode"`
	WavesCleared int             `json:"wavesCleared,omitempty"` // 仅非闯关模式
	NextWaveIn   *float64        `json:"nextWaveIn,omitempty"`

	// Cooldowns 元素地面施法的剩余冷却，只包含仍在冷却中的元素
	Cooldowns map[types.ElementType]float64 `json:"cooldowns,omitempty"`
}

// Snapshot 对局的完整快照
type Snapshot struct {
	HUD         HUD              `json:"hud"`
	Outcome     Outcome          `json:"outcome"`
	Enemies     []EnemyView      `json:"enemies"`
	Towers      []TowerView      `json:"towers"`
	Projectiles []ProjectileView `json:"projectiles"`
	Casts       []CastView       `json:"casts"`
	Popups      []PopupView      `json:"popups"`
}

// HUD 返回标量状态，未加载关卡时返回零值
func (m *Match) HUD() HUD {
	gs := m.gs
	if gs == nil {
		return HUD{}
	}
	h := HUD{
		Time:       gs.Time,
		Gold:       gs.Gold,
		Lives:      gs.Lives,
		WaveIndex:  gs.WaveIndex,
		TotalWaves: len(gs.Waves),
		WaveActive: gs.WaveActive,
		Running:    gs.Running,
		Lost:       gs.Lost,
		Mode:       gs.Mode,
	}
	if !gs.Mode.IsCampaign() {
		h.WavesCleared = gs.WavesCleared
	}
	if gs.HasNextWaveStart && !gs.WaveActive {
		in := gs.NextWaveStartTime - gs.Time
		if in < 0 {
			in = 0
		}
		h.NextWaveIn = &in
	}
	for _, e := range types.AllElementTypes() {
		if rem := gs.CooldownRemaining(e); rem > 0 {
			if h.Cooldowns == nil {
				h.Cooldowns = make(map[types.ElementType]float64)
			}
			h.Cooldowns[e] = rem
		}
	}
	return h
}

// Snapshot 复制当前全部实体状态，返回值与对局内部状态不共享
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{HUD: m.HUD(), Outcome: m.result}
	if m.em == nil {
		return s
	}
	em := m.em
	now := m.gs.Time

	for _, id := range ecs.GetEntitiesWith2[*components.EnemyComponent, *components.PositionComponent](em) {
		if em.IsMarkedForDestroy(id) {
			continue
		}
		enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		v := EnemyView{ID: uint64(id), Kind: enemy.Kind, Level: enemy.Level, Position: pos.Position}
		if h, ok := ecs.GetComponent[*components.HealthComponent](em, id); ok {
			v.HP, v.MaxHP = h.Current, h.Max
		}
		if lp, ok := ecs.GetComponent[*components.LaneProgressComponent](em, id); ok {
			v.Lane, v.Progress = lp.Lane, lp.Progress
		}
		if st, ok := ecs.GetComponent[*components.StatusEffectComponent](em, id); ok {
			v.Slowed = st.SlowPct > 0 && now < st.SlowUntil
			v.Burning = st.BurnDPS > 0 && now < st.BurnUntil
			v.Boosted = st.SpeedBoostMultiplier > 0 && now < st.SpeedBoostUntil
		}
		s.Enemies = append(s.Enemies, v)
	}

	for _, id := range ecs.GetEntitiesWith2[*components.TowerComponent, *components.PositionComponent](em) {
		if em.IsMarkedForDestroy(id) {
			continue
		}
		tower, _ := ecs.GetComponent[*components.TowerComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		v := TowerView{
			ID:       uint64(id),
			Type:     tower.Type,
			Level:    tower.Level,
			Position: pos.Position,
			Range:    tower.Stats.Range,
			Color:    tower.Stats.Color,
		}
		if tower.Element != nil {
			el := tower.Element.Type
			v.Element = &el
			v.ElementLevel = tower.Element.Level
		}
		if base, err := m.catalog.Plant(tower.Type); err == nil && base.ManualFire != nil {
			v.ManualReady = now >= tower.ManualReadyAt
		}
		s.Towers = append(s.Towers, v)
	}

	for _, id := range ecs.GetEntitiesWith2[*components.ProjectileComponent, *components.PositionComponent](em) {
		if em.IsMarkedForDestroy(id) {
			continue
		}
		p, _ := ecs.GetComponent[*components.ProjectileComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		s.Projectiles = append(s.Projectiles, ProjectileView{
			ID:       uint64(id),
			Position: pos.Position,
			Color:    p.Color,
			Piercing: p.Motion == components.MotionFree,
		})
	}

	for _, id := range ecs.GetEntitiesWith2[*components.ElementCastComponent, *components.PositionComponent](em) {
		if em.IsMarkedForDestroy(id) {
			continue
		}
		c, _ := ecs.GetComponent[*components.ElementCastComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		s.Casts = append(s.Casts, CastView{
			ID:          uint64(id),
			Element:     c.Element,
			Level:       c.Level,
			Position:    pos.Position,
			TriggerTime: c.TriggerTime,
		})
	}

	for _, id := range ecs.GetEntitiesWith3[*components.DamagePopupComponent, *components.PositionComponent, *components.LifetimeComponent](em) {
		if em.IsMarkedForDestroy(id) {
			continue
		}
		p, _ := ecs.GetComponent[*components.DamagePopupComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		life, _ := ecs.GetComponent[*components.LifetimeComponent](em, id)
		s.Popups = append(s.Popups, PopupView{
			Position: pos.Position,
			Amount:   p.Amount,
			Color:    p.Color,
			Age:      life.CurrentLifetime,
		})
	}
	return s
}
