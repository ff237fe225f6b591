package event

import (
	"github.com/decker502/tdcore/pkg/types"
)

// WaveData 波次事件数据
type WaveData struct {
	WaveIndex int `json:"waveIndex"`
}

// EnemyData 敌人事件数据
type EnemyData struct {
	ID         uint64          `json:"id"`
	Kind       types.EnemyKind `json:"kind"`
	Lane       int             `json:"lane"`
	Reward     int             `json:"reward,omitempty"`
	LeakDamage int             `json:"leakDamage,omitempty"`
}

// TowerData 塔事件数据
type TowerData struct {
	ID       uint64          `json:"id"`
	Type     types.PlantType `json:"type"`
	Position types.Position  `json:"position"`
}

// ElementData 元素事件数据
type ElementData struct {
	Element  types.ElementType `json:"element"`
	Level    int               `json:"level"`
	TowerID  uint64            `json:"towerId,omitempty"` // 附着到塔时非 0
	Position types.Position    `json:"position"`
}

// OutcomeData 胜负事件数据
type OutcomeData struct {
	WavesCleared int  `json:"wavesCleared"`
	LivesLost    int  `json:"livesLost"`
	Flawless     bool `json:"flawless"`
}
