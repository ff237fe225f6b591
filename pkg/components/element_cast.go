package components

import "github.com/decker502/tdcore/pkg/types"

// ElementCastComponent 地面施法令牌
// 投放在空地上的元素经过固定引信时间后生效一次，然后被移除
type ElementCastComponent struct {
	Element     types.ElementType
	Level       int     // 施法者的元素等级，决定效果强度
	TriggerTime float64 // 生效时间
}
