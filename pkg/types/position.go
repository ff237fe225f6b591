package types

// Position 地图坐标（单位：格，不是像素）
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Lane 一条敌人行进路线（至少两个点的折线）
type Lane []Position
