package components

// HealthComponent 存储敌人的生命值
// 血量只会减少（治疗者的治疗除外），<= 0 即视为死亡，在本帧清理阶段移除
type HealthComponent struct {
	Current float64 // 当前生命值
	Max     float64 // 最大生命值
}
