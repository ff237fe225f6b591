package types

import "fmt"

// EnemyKind 定义敌人的种类
type EnemyKind int

const (
	// EnemyUnknown 未知敌人类型
	EnemyUnknown EnemyKind = iota
	// EnemyBasic 普通（圆形）
	EnemyBasic
	// EnemyFast 快速（三角）
	EnemyFast
	// EnemyArmored 重甲/BOSS（方形）
	EnemyArmored
	// EnemyHealer 治疗者：周期性治疗周围敌人
	EnemyHealer
	// EnemySaboteur 破坏者（远程狙击）：周期性摧毁一座塔
	EnemySaboteur
	// EnemyRager 狂暴者：光环加速周围敌人
	EnemyRager
	// EnemySummoner 召唤者：周期性在前方召唤分身
	EnemySummoner
)

var enemyKindIDs = map[EnemyKind]string{
	EnemyBasic:    "basic",
	EnemyFast:     "fast",
	EnemyArmored:  "armored",
	EnemyHealer:   "healer",
	EnemySaboteur: "saboteur",
	EnemyRager:    "rager",
	EnemySummoner: "summoner",
}

// 旧版关卡文件使用形状名作为敌人ID，这里保留兼容
var enemyKindAliases = map[string]EnemyKind{
	"circle":     EnemyBasic,
	"triangle":   EnemyFast,
	"square":     EnemyArmored,
	"evilSniper": EnemySaboteur,
}

// AllEnemyKinds 返回所有已知敌人类型
func AllEnemyKinds() []EnemyKind {
	return []EnemyKind{
		EnemyBasic,
		EnemyFast,
		EnemyArmored,
		EnemyHealer,
		EnemySaboteur,
		EnemyRager,
		EnemySummoner,
	}
}

// String 返回敌人类型的配置ID
func (k EnemyKind) String() string {
	if id, ok := enemyKindIDs[k]; ok {
		return id
	}
	return "unknown"
}

// ParseEnemyKind 从配置ID（或旧版形状名）解析敌人类型
func ParseEnemyKind(id string) (EnemyKind, bool) {
	for k, name := range enemyKindIDs {
		if name == id {
			return k, true
		}
	}
	if k, ok := enemyKindAliases[id]; ok {
		return k, true
	}
	return EnemyUnknown, false
}

// MarshalText 实现 encoding.TextMarshaler
func (k EnemyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (k *EnemyKind) UnmarshalText(text []byte) error {
	parsed, ok := ParseEnemyKind(string(text))
	if !ok {
		return fmt.Errorf("unknown enemy kind %q", string(text))
	}
	*k = parsed
	return nil
}
