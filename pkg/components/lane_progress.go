package components

// LaneProgressComponent 敌人沿路线的行进状态
//
// Traveled 是权威值，Segment/T/Progress 都由它换算得到；
// 除击退外 Progress 单调不减
type LaneProgressComponent struct {
	Lane     int     // 路线索引，创建后不变
	Segment  int     // 当前线段索引
	T        float64 // 段内比例 [0, 1]
	Traveled float64 // 沿路线已行进的距离
	Progress float64 // Traveled / 路线总长，用于挑选"最接近终点"的目标
}
