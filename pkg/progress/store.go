package progress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/quasilyte/gdata/v2"
)

// ErrNotFound 存储中没有该玩家的记录
var ErrNotFound = errors.New("progress record not found")

// Store 进度记录的持久化后端
// 以玩家键存取已编码的记录字节，不关心编码格式
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// 存储路径常量
const progressObject = "progress"

// GdataStore 基于 gdata 的跨平台存储
// manager 为 nil 时进入降级模式：读取总是 ErrNotFound，写入静默丢弃
type GdataStore struct {
	manager *gdata.Manager
}

// NewGdataStore 包装一个 gdata 管理器
func NewGdataStore(manager *gdata.Manager) *GdataStore {
	return &GdataStore{manager: manager}
}

// OpenGdataStore 按应用名打开 gdata 存储
func OpenGdataStore(appName string) (*GdataStore, error) {
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open gdata for %q: %w", appName, err)
	}
	return NewGdataStore(manager), nil
}

// Load 读取玩家记录
func (s *GdataStore) Load(key string) ([]byte, error) {
	if s.manager == nil || !s.manager.ObjectPropExists(progressObject, key) {
		return nil, ErrNotFound
	}
	data, err := s.manager.LoadObjectProp(progressObject, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress %q: %w", key, err)
	}
	return data, nil
}

// Save 写入玩家记录
func (s *GdataStore) Save(key string, data []byte) error {
	if s.manager == nil {
		return nil
	}
	if err := s.manager.SaveObjectProp(progressObject, key, data); err != nil {
		return fmt.Errorf("failed to save progress %q: %w", key, err)
	}
	return nil
}

// MemoryStore 进程内存储，用于测试与无持久化环境
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore 创建空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load 读取副本
func (s *MemoryStore) Load(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save 保存副本
func (s *MemoryStore) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}
