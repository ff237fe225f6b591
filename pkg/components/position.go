package components

import "github.com/decker502/tdcore/pkg/types"

// PositionComponent 实体在地图上的坐标（格）
type PositionComponent struct {
	types.Position
}
