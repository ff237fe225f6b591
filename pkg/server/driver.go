package server

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/decker502/tdcore/pkg/event"
	"github.com/decker502/tdcore/pkg/match"
	"github.com/decker502/tdcore/pkg/progress"
)

// ErrDriverStopped 驱动循环已退出
var ErrDriverStopped = errors.New("match driver stopped")

// Publisher 接收每次推进后的快照与事件
type Publisher interface {
	Broadcast(msgType string, data any)
}

type action struct {
	fn   func(m *match.Match)
	done chan struct{}
}

// Driver 独占一个对局，在单个 goroutine 中按固定步长推进
// 玩家操作经由通道串行执行，与 Update 不会并发
type Driver struct {
	m         *match.Match
	dt        float64
	interval  time.Duration
	actions   chan action
	stopped   chan struct{}
	publisher Publisher
	progress  *progress.Cache

	broadcastEvery time.Duration
	lastBroadcast  time.Time

	mu     sync.RWMutex
	latest match.Snapshot
}

// NewDriver 创建驱动；progress 为 nil 时不记录通关
func NewDriver(m *match.Match, tickRate int, publisher Publisher, cache *progress.Cache) *Driver {
	d := &Driver{
		m:         m,
		dt:        1 / float64(tickRate),
		interval:  time.Second / time.Duration(tickRate),
		actions:   make(chan action),
		stopped:   make(chan struct{}),
		publisher: publisher,
		progress:  cache,
		latest:    m.Snapshot(),
	}
	m.Subscribe(event.MatchWon, event.ListenerFunc(d.onWon))
	return d
}

func (d *Driver) onWon(e event.Event) {
	if d.progress == nil {
		return
	}
	level := d.m.Level()
	if level == nil {
		return
	}
	if _, err := d.progress.RecordResult(level.ID, level.Options.Star); err != nil {
		log.Printf("[Driver] Failed to record progress for %s: %v", level.ID, err)
	}
}

// Run 驱动循环，直到 ctx 结束
func (d *Driver) Run(ctx context.Context) error {
	defer close(d.stopped)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	log.Printf("[Driver] Running at %v per tick", d.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a := <-d.actions:
			a.fn(d.m)
			d.publish(true)
			close(a.done)
		case <-ticker.C:
			if !d.m.Loaded() {
				continue
			}
			start := time.Now()
			d.m.Update(d.dt)
			tickDuration.Observe(time.Since(start).Seconds())
			d.publish(false)
		}
	}
}

// Do 在驱动 goroutine 中执行 fn 并等待完成
func (d *Driver) Do(ctx context.Context, fn func(m *match.Match)) error {
	a := action{fn: fn, done: make(chan struct{})}
	select {
	case d.actions <- a:
	case <-d.stopped:
		return ErrDriverStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-a.done:
		return nil
	case <-d.stopped:
		return ErrDriverStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Latest 最近一次推进或操作后的快照
func (d *Driver) Latest() match.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.latest
}

func (d *Driver) publish(force bool) {
	snap := d.m.Snapshot()
	d.mu.Lock()
	d.latest = snap
	d.mu.Unlock()

	entityCount.WithLabelValues("enemy").Set(float64(len(snap.Enemies)))
	entityCount.WithLabelValues("tower").Set(float64(len(snap.Towers)))
	entityCount.WithLabelValues("projectile").Set(float64(len(snap.Projectiles)))
	matchGold.Set(float64(snap.HUD.Gold))
	matchLives.Set(float64(snap.HUD.Lives))

	events := d.m.Events()
	if d.publisher == nil {
		return
	}
	if len(events) > 0 {
		d.publisher.Broadcast("events", events)
	}
	now := time.Now()
	if force || len(events) > 0 || now.Sub(d.lastBroadcast) >= d.broadcastEvery {
		d.lastBroadcast = now
		d.publisher.Broadcast("snapshot", snap)
	}
}
