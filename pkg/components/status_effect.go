package components

// StatusEffectComponent 敌人身上的限时效果
// 各效果在 now >= *Until 时由 StatusEffectSystem 惰性清除（字段归零）
type StatusEffectComponent struct {
	// 减速：实际速度 *= (1 - SlowPct)
	SlowPct   float64
	SlowUntil float64

	// 破甲：受到的伤害 *= ArmorBreakMultiplier
	ArmorBreakMultiplier float64
	ArmorBreakUntil      float64

	// 灼烧：按实际经过的时间积分扣血
	BurnDPS   float64
	BurnUntil float64

	// 加速（狂暴者光环）：实际速度 *= SpeedBoostMultiplier
	SpeedBoostMultiplier float64
	SpeedBoostUntil      float64
}
