package utils

import (
	"math"

	"github.com/decker502/tdcore/pkg/types"
)

// 调试视图网格参数
// 模拟坐标以"格"为单位，渲染时乘以 CellPixels 再加上偏移
const (
	CellPixels   = 48.0 // 每格像素
	BoardOffsetX = 24.0 // 棋盘左上角X（像素）
	BoardOffsetY = 64.0 // 棋盘左上角Y（像素，上方留给 HUD）
)

// WorldToScreen 将格坐标转换为屏幕坐标（格中心对齐整数坐标）
func WorldToScreen(p types.Position) (x, y float64) {
	return BoardOffsetX + p.X*CellPixels, BoardOffsetY + p.Y*CellPixels
}

// ScreenToWorld 将屏幕坐标转换为格坐标（不取整）
func ScreenToWorld(x, y int) types.Position {
	return types.Position{
		X: (float64(x) - BoardOffsetX) / CellPixels,
		Y: (float64(y) - BoardOffsetY) / CellPixels,
	}
}

// NearestCell 在可种植格子中查找与 p 距离不超过 tolerance 的最近格子
// 参数:
//   - cells: 可种植格子列表
//   - p: 目标坐标
//   - tolerance: 允许的最大距离
//
// 返回:
//   - cell: 最近的格子
//   - ok: 是否找到
func NearestCell(cells []types.Position, p types.Position, tolerance float64) (cell types.Position, ok bool) {
	best := math.Inf(1)
	for _, c := range cells {
		d := Distance(c, p)
		if d <= tolerance && d < best {
			best = d
			cell = c
			ok = true
		}
	}
	return cell, ok
}

// InBounds 检查坐标是否在地图范围内（含 margin 外扩）
func InBounds(p types.Position, width, height, margin float64) bool {
	return p.X >= -margin && p.X <= width+margin && p.Y >= -margin && p.Y <= height+margin
}
