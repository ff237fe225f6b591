package components

// DamagePopupComponent 伤害飘字
// 与 LifetimeComponent 一起使用，到期后由 LifetimeSystem 清理
type DamagePopupComponent struct {
	Amount float64
	Color  string
}
