package components

// LaneStateComponent 路线状态组件
//
// 用于平滑权重路线分配算法（无尽模式程序化生成波次），存储每条路线的权重和选取历史
type LaneStateComponent struct {
	LaneIndex        int     // 路线索引（0-based）
	Weight           float64 // 路线权重（初始值为 1）
	LastPicked       int     // 距离上次被选取的计数器
	SecondLastPicked int     // 距离上上次被选取的计数器
}
