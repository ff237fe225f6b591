package components

// IncomeComponent 产出型植物的收益状态
type IncomeComponent struct {
	Interval   float64 // 产出周期（秒）
	PerCycle   int     // 每周期产出，放置时按等级计算
	LastPayout float64 // 上次结算时间，只按整周期推进
}
