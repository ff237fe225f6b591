// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import "fmt"

// PlantType 定义植物（塔）的类型
type PlantType int

const (
	// PlantUnknown 未知植物类型
	PlantUnknown PlantType = iota
	// PlantSunflower 向日葵：纯产出，无攻击能力
	PlantSunflower
	// PlantBottleGrass 瓶子草：单体追踪弹
	PlantBottleGrass
	// PlantFourLeafClover 四叶草：直线穿透
	PlantFourLeafClover
	// PlantMachineGun 机枪：高攻速
	PlantMachineGun
	// PlantSniper 狙击手：全图锁定
	PlantSniper
	// PlantRocket 火箭：穿透 + 边界反弹
	PlantRocket
	// PlantSunlightFlower 阳光花：仅手动发射
	PlantSunlightFlower
)

var plantTypeIDs = map[PlantType]string{
	PlantSunflower:      "sunflower",
	PlantBottleGrass:    "bottleGrass",
	PlantFourLeafClover: "fourLeafClover",
	PlantMachineGun:     "machineGun",
	PlantSniper:         "sniper",
	PlantRocket:         "rocket",
	PlantSunlightFlower: "sunlightFlower",
}

// AllPlantTypes 返回所有已知植物类型（按枚举顺序）
func AllPlantTypes() []PlantType {
	return []PlantType{
		PlantSunflower,
		PlantBottleGrass,
		PlantFourLeafClover,
		PlantMachineGun,
		PlantSniper,
		PlantRocket,
		PlantSunlightFlower,
	}
}

// String 返回植物类型的配置ID（与 YAML 中一致）
func (p PlantType) String() string {
	if id, ok := plantTypeIDs[p]; ok {
		return id
	}
	return "unknown"
}

// ParsePlantType 从配置ID解析植物类型
func ParsePlantType(id string) (PlantType, bool) {
	for t, name := range plantTypeIDs {
		if name == id {
			return t, true
		}
	}
	return PlantUnknown, false
}

// MarshalText 实现 encoding.TextMarshaler（快照输出为字符串ID）
func (p PlantType) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (p *PlantType) UnmarshalText(text []byte) error {
	t, ok := ParsePlantType(string(text))
	if !ok {
		return fmt.Errorf("unknown plant type %q", string(text))
	}
	*p = t
	return nil
}
