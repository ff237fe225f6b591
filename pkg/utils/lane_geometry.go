package utils

import (
	"math"

	"github.com/decker502/tdcore/pkg/types"
)

// minSegmentLength 退化线段（两个点重合）的最小长度，避免除零
const minSegmentLength = 0.0001

// Distance 两点间欧氏距离
func Distance(a, b types.Position) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// SegmentLength 线段长度
func SegmentLength(a, b types.Position) float64 {
	return Distance(a, b)
}

// PathLength 折线总长度
func PathLength(path []types.Position) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		total += SegmentLength(path[i], path[i+1])
	}
	return total
}

// Lerp 在线段 a→b 上按比例 t 插值
func Lerp(a, b types.Position, t float64) types.Position {
	return types.Position{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// PointSegmentDistance 点 p 到线段 a→b 的最短距离
// 用于投射物的扫掠碰撞检测（上一帧位置 → 本帧位置）
func PointSegmentDistance(p, a, b types.Position) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Distance(p, types.Position{X: a.X + abx*t, Y: a.Y + aby*t})
}

// DistanceAlong 计算 (segment, t) 对应的沿路径已行进距离
func DistanceAlong(path []types.Position, segment int, t float64) float64 {
	if len(path) < 2 {
		return 0
	}
	if segment > len(path)-2 {
		segment = len(path) - 2
	}
	d := 0.0
	for i := 0; i < segment; i++ {
		d += SegmentLength(path[i], path[i+1])
	}
	return d + SegmentLength(path[segment], path[segment+1])*t
}

// LocateAlongPath 把沿路径距离换算为 (线段索引, 段内比例, 坐标)
// distance 会被限制在 [0, PathLength] 内；超过终点时停在最后一段 t=1
func LocateAlongPath(path []types.Position, distance float64) (segment int, t float64, pos types.Position) {
	if len(path) == 0 {
		return 0, 0, types.Position{}
	}
	if len(path) == 1 {
		return 0, 0, path[0]
	}
	if distance < 0 {
		distance = 0
	}

	last := len(path) - 2
	acc := 0.0
	for i := 0; i <= last; i++ {
		segLen := SegmentLength(path[i], path[i+1])
		if distance < acc+segLen || i == last {
			l := math.Max(minSegmentLength, segLen)
			t = (distance - acc) / l
			if t > 1 {
				t = 1
			}
			return i, t, Lerp(path[i], path[i+1], t)
		}
		acc += segLen
	}
	return last, 1, path[len(path)-1]
}

// AdvanceAlongPath 沿路径前进 delta 距离
// 跨段时按实际距离滚动到后续线段（而不是段内比例直接相减），
// 因此不同长度的线段之间速度保持一致。
//
// 返回:
//   - traveled: 前进后的累计距离
//   - reachedEnd: 是否越过终点（泄漏）
func AdvanceAlongPath(path []types.Position, traveled, delta float64) (segment int, t float64, pos types.Position, newTraveled float64, reachedEnd bool) {
	total := PathLength(path)
	newTraveled = traveled + delta
	if newTraveled >= total {
		segment, t, pos = LocateAlongPath(path, total)
		return segment, t, pos, total, true
	}
	segment, t, pos = LocateAlongPath(path, newTraveled)
	return segment, t, pos, newTraveled, false
}

// RewindAlongPath 沿路径后退 distance 距离（击退）
// 结果不会小于路径起点
func RewindAlongPath(path []types.Position, traveled, distance float64) (segment int, t float64, pos types.Position, newTraveled float64) {
	newTraveled = traveled - distance
	if newTraveled < 0 {
		newTraveled = 0
	}
	segment, t, pos = LocateAlongPath(path, newTraveled)
	return segment, t, pos, newTraveled
}

// ProgressFraction 已行进距离占总长的比例 [0, 1]
func ProgressFraction(traveled, total float64) float64 {
	if total <= 0 {
		return 0
	}
	p := traveled / total
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Normalize 返回单位向量，零向量返回 (0, 0)
func Normalize(dx, dy float64) (float64, float64) {
	l := math.Hypot(dx, dy)
	if l == 0 {
		return 0, 0
	}
	return dx / l, dy / l
}

// Round2 保留两位小数（塔属性展示与计算统一精度）
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
