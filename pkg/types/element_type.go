package types

import "fmt"

// ElementType 定义元素类型
// 元素可附着在塔上（增益/载荷），也可以直接投放在空地上（一次性施法）
type ElementType int

const (
	// ElementUnknown 未知元素
	ElementUnknown ElementType = iota
	// ElementGold 金：破甲
	ElementGold
	// ElementFire 火：灼烧
	ElementFire
	// ElementElectric 电：溅射
	ElementElectric
	// ElementIce 冰：减速
	ElementIce
	// ElementWind 风：击退 + 光环
	ElementWind
)

var elementTypeIDs = map[ElementType]string{
	ElementGold:     "gold",
	ElementFire:     "fire",
	ElementElectric: "electric",
	ElementIce:      "ice",
	ElementWind:     "wind",
}

// AllElementTypes 返回所有已知元素类型
func AllElementTypes() []ElementType {
	return []ElementType{ElementGold, ElementFire, ElementElectric, ElementIce, ElementWind}
}

// String 返回元素的配置ID
func (e ElementType) String() string {
	if id, ok := elementTypeIDs[e]; ok {
		return id
	}
	return "unknown"
}

// ParseElementType 从配置ID解析元素类型
// 同时接受进度系统使用的 "element:<id>" 形式
func ParseElementType(id string) (ElementType, bool) {
	if len(id) > len(ElementItemPrefix) && id[:len(ElementItemPrefix)] == ElementItemPrefix {
		id = id[len(ElementItemPrefix):]
	}
	for e, name := range elementTypeIDs {
		if name == id {
			return e, true
		}
	}
	return ElementUnknown, false
}

// ElementItemPrefix 解锁物品列表中元素条目的前缀
const ElementItemPrefix = "element:"

// ItemID 返回元素在解锁物品列表中的ID（如 "element:fire"）
func (e ElementType) ItemID() string {
	return ElementItemPrefix + e.String()
}

// MarshalText 实现 encoding.TextMarshaler
func (e ElementType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (e *ElementType) UnmarshalText(text []byte) error {
	parsed, ok := ParseElementType(string(text))
	if !ok {
		return fmt.Errorf("unknown element type %q", string(text))
	}
	*e = parsed
	return nil
}
