// Package progress 保存玩家的关卡星级与解锁进度。
//
// Cache 由调用方显式构造并持有，读取时按 TTL 判定失效并从 Store 重新加载。
package progress

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTTL 缓存有效期
const DefaultTTL = 5 * time.Second

// DefaultUnlockedItems 新玩家默认拥有的物品
var DefaultUnlockedItems = []string{"sunflower", "bottleGrass"}

// UnlockRule 以指定星级通关某关后解锁一件物品
type UnlockRule struct {
	Level  int
	Star   int
	ItemID string
}

// DefaultUnlockRules 默认解锁表
var DefaultUnlockRules = []UnlockRule{
	{Level: 1, Star: 1, ItemID: "element:fire"},
	{Level: 3, Star: 3, ItemID: "fourLeafClover"},
	{Level: 6, Star: 3, ItemID: "element:wind"},
	{Level: 15, Star: 3, ItemID: "machineGun"},
	{Level: 20, Star: 3, ItemID: "element:ice"},
	{Level: 23, Star: 3, ItemID: "sniper"},
	{Level: 27, Star: 3, ItemID: "element:electric"},
	{Level: 30, Star: 3, ItemID: "element:gold"},
}

// Record 单个玩家的进度
type Record struct {
	Stars         map[string]int `yaml:"stars" json:"stars"`
	Unlocked      int            `yaml:"unlocked" json:"unlocked"`           // 已解锁关卡数，至少为 1
	UnlockedItems []string       `yaml:"unlockedItems" json:"unlockedItems"` // 已解锁的植物/元素 id
}

// NewRecord 返回新玩家的初始记录
func NewRecord() Record {
	return Record{
		Stars:         make(map[string]int),
		Unlocked:      1,
		UnlockedItems: append([]string(nil), DefaultUnlockedItems...),
	}
}

func (r *Record) normalize() {
	if r.Stars == nil {
		r.Stars = make(map[string]int)
	}
	if r.Unlocked < 1 {
		r.Unlocked = 1
	}
	if len(r.UnlockedItems) == 0 {
		r.UnlockedItems = append([]string(nil), DefaultUnlockedItems...)
	}
}

func (r Record) clone() Record {
	out := Record{
		Stars:         make(map[string]int, len(r.Stars)),
		Unlocked:      r.Unlocked,
		UnlockedItems: append([]string(nil), r.UnlockedItems...),
	}
	for k, v := range r.Stars {
		out.Stars[k] = v
	}
	return out
}

// HasItem 是否已解锁该物品
func (r Record) HasItem(id string) bool {
	for _, item := range r.UnlockedItems {
		if item == id {
			return true
		}
	}
	return false
}

// Options Cache 构造参数
type Options struct {
	TTL   time.Duration
	Rules []UnlockRule
	Now   func() time.Time
}

// Cache 单个玩家的进度缓存
type Cache struct {
	mu       sync.Mutex
	store    Store
	key      string
	ttl      time.Duration
	rules    []UnlockRule
	now      func() time.Time
	record   Record
	loadedAt time.Time
	loaded   bool
}

// NewCache 创建玩家 key 的进度缓存；opts 为零值时使用默认 TTL 与解锁表
func NewCache(store Store, key string, opts Options) *Cache {
	c := &Cache{
		store: store,
		key:   key,
		ttl:   opts.TTL,
		rules: opts.Rules,
		now:   opts.Now,
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.rules == nil {
		c.rules = DefaultUnlockRules
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Get 返回记录副本；缓存过期时先从存储重新加载
func (c *Cache) Get() (Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureFresh(); err != nil {
		return NewRecord(), err
	}
	return c.record.clone(), nil
}

// MaxStar 关卡的最高星级，未通关为 0
func (c *Cache) MaxStar(levelID string) (int, error) {
	r, err := c.Get()
	if err != nil {
		return 0, err
	}
	return r.Stars[levelID], nil
}

// Refresh 强制下一次读取重新加载
func (c *Cache) Refresh() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

// RecordResult 记录一次通关
//
// 星级只增不减；数字关卡 n 通关后解锁到第 n+1 关；
// 满足解锁规则的物品加入记录。返回本次新解锁的物品。
func (c *Cache) RecordResult(levelID string, star int) ([]string, error) {
	if star < 1 || star > 3 {
		return nil, fmt.Errorf("invalid star %d for level %q", star, levelID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureFresh(); err != nil {
		return nil, err
	}

	next := c.record.clone()
	best := next.Stars[levelID]
	if star > best {
		best = star
		next.Stars[levelID] = star
	}

	var unlocked []string
	if n, ok := LevelNumber(levelID); ok {
		if n+1 > next.Unlocked {
			next.Unlocked = n + 1
		}
		for _, rule := range c.rules {
			if rule.Level == n && best >= rule.Star && !next.HasItem(rule.ItemID) {
				next.UnlockedItems = append(next.UnlockedItems, rule.ItemID)
				unlocked = append(unlocked, rule.ItemID)
			}
		}
	}

	data, err := yaml.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := c.store.Save(c.key, data); err != nil {
		return nil, err
	}
	c.record = next
	c.loadedAt = c.now()
	c.loaded = true

	log.Printf("[Progress] %s cleared %s at %d star(s), best %d, new unlocks %v", c.key, levelID, star, best, unlocked)
	return unlocked, nil
}

func (c *Cache) ensureFresh() error {
	if c.loaded && c.now().Sub(c.loadedAt) < c.ttl {
		return nil
	}
	record, err := c.load()
	if err != nil {
		return err
	}
	c.record = record
	c.loadedAt = c.now()
	c.loaded = true
	return nil
}

func (c *Cache) load() (Record, error) {
	data, err := c.store.Load(c.key)
	if errors.Is(err, ErrNotFound) {
		return NewRecord(), nil
	}
	if err != nil {
		return Record{}, err
	}
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal progress %q: %w", c.key, err)
	}
	r.normalize()
	return r, nil
}

// LevelNumber 解析关卡编号，接受 "3" 与 "L3" 两种写法
func LevelNumber(levelID string) (int, bool) {
	s := strings.TrimPrefix(strings.TrimPrefix(levelID, "L"), "l")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
