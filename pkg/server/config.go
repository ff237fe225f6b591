package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 远程驱动服务配置
type Config struct {
	Addr        string   `yaml:"addr"`
	TickRate    int      `yaml:"tickRate"`    // 每秒推进次数
	CORSOrigins []string `yaml:"corsOrigins"` // 为空时只允许本机

	// 每个客户端的操作限流
	ActionsPerSecond float64 `yaml:"actionsPerSecond"`
	ActionBurst      int     `yaml:"actionBurst"`

	// 进度存档：PlayerKey 为空时不记录进度
	AppName   string `yaml:"appName"`
	PlayerKey string `yaml:"playerKey"`

	// 快照广播间隔，0 表示每次推进后都广播
	BroadcastInterval time.Duration `yaml:"broadcastInterval"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Addr:             "127.0.0.1:8090",
		TickRate:         60,
		ActionsPerSecond: 10,
		ActionBurst:      20,
		AppName:          "tdcore",
	}
}

// LoadConfig 读取 YAML 配置，缺省字段取默认值
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read server config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid server config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TickRate <= 0 || c.TickRate > 1000 {
		return fmt.Errorf("tickRate must be in (0, 1000], got %d", c.TickRate)
	}
	if c.ActionsPerSecond <= 0 {
		return fmt.Errorf("actionsPerSecond must be positive, got %v", c.ActionsPerSecond)
	}
	if c.ActionBurst < 1 {
		return fmt.Errorf("actionBurst must be at least 1, got %d", c.ActionBurst)
	}
	if c.BroadcastInterval < 0 {
		return fmt.Errorf("broadcastInterval must not be negative")
	}
	return nil
}

func (c Config) corsOrigins() []string {
	if len(c.CORSOrigins) > 0 {
		return c.CORSOrigins
	}
	return []string{"http://localhost:*", "http://127.0.0.1:*"}
}
