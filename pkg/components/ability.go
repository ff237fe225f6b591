package components

// AbilityComponent 特殊敌人的能力计时
// 只有带能力的敌人（治疗者、破坏者、召唤者、狂暴者）拥有此组件
type AbilityComponent struct {
	NextTrigger float64 // 下次触发时间；狂暴者每帧生效，不使用此字段
}
