package types

import "fmt"

// MatchMode 对局模式
type MatchMode int

const (
	// ModeCampaign 闯关模式：固定波次，无每波生命奖励
	ModeCampaign MatchMode = iota
	// ModeEndless 无尽模式：波次耗尽后按波次号程序化生成
	ModeEndless
	// ModeEndlessTest 无尽测试模式：规则与无尽相同，用于数值调试
	ModeEndlessTest
	// ModeRandom 随机模式：固定的随机生成波次，有每波生命奖励
	ModeRandom
)

var matchModeIDs = map[MatchMode]string{
	ModeCampaign:    "campaign",
	ModeEndless:     "endless",
	ModeEndlessTest: "endlessTest",
	ModeRandom:      "random",
}

// String 返回模式ID
func (m MatchMode) String() string {
	if id, ok := matchModeIDs[m]; ok {
		return id
	}
	return "unknown"
}

// ParseMatchMode 解析模式ID，空字符串视为闯关模式
func ParseMatchMode(id string) (MatchMode, bool) {
	if id == "" {
		return ModeCampaign, true
	}
	for m, name := range matchModeIDs {
		if name == id {
			return m, true
		}
	}
	return ModeCampaign, false
}

// IsEndless 是否为无尽类模式（需要程序化生成波次）
func (m MatchMode) IsEndless() bool {
	return m == ModeEndless || m == ModeEndlessTest
}

// IsCampaign 是否为闯关模式
func (m MatchMode) IsCampaign() bool {
	return m == ModeCampaign
}

// MarshalText 实现 encoding.TextMarshaler
func (m MatchMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (m *MatchMode) UnmarshalText(text []byte) error {
	parsed, ok := ParseMatchMode(string(text))
	if !ok {
		return fmt.Errorf("unknown match mode %q", string(text))
	}
	*m = parsed
	return nil
}
