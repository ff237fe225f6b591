// Package event 对局内的信号分发
//
// 系统在状态变化时派发事件（波次开始/清除、击杀、泄漏、胜负等），
// 外部（视图、服务端、进度存储）订阅感兴趣的事件类型。
// 分发是同步的，监听器在 Update 内部被调用，不允许修改对局状态。
package event

// EventType 事件类型
type EventType string

const (
	WaveStarted    EventType = "waveStarted"
	WaveCleared    EventType = "waveCleared"
	EnemySpawned   EventType = "enemySpawned"
	EnemyKilled    EventType = "enemyKilled"
	EnemyLeaked    EventType = "enemyLeaked"
	TowerPlaced    EventType = "towerPlaced"
	TowerDestroyed EventType = "towerDestroyed"
	ElementApplied EventType = "elementApplied"
	ElementCast    EventType = "elementCast"
	MatchWon       EventType = "matchWon"
	MatchLost      EventType = "matchLost"
)

// Event 事件
type Event struct {
	Type EventType   `json:"type"`
	Time float64     `json:"time"`
	Data interface{} `json:"data,omitempty"`
}

// Listener 事件订阅者
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc 函数适配为 Listener
type ListenerFunc func(event Event)

// OnEvent 实现 Listener
func (f ListenerFunc) OnEvent(event Event) {
	f(event)
}

// Dispatcher 事件分发器
type Dispatcher struct {
	listeners map[EventType][]Listener
	all       []Listener
}

// NewDispatcher 创建分发器
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[EventType][]Listener),
	}
}

// Subscribe 订阅指定类型的事件
func (d *Dispatcher) Subscribe(eventType EventType, listener Listener) {
	d.listeners[eventType] = append(d.listeners[eventType], listener)
}

// SubscribeAll 订阅所有事件
func (d *Dispatcher) SubscribeAll(listener Listener) {
	d.all = append(d.all, listener)
}

// Dispatch 同步派发事件：先按类型订阅者，再全部订阅者
func (d *Dispatcher) Dispatch(event Event) {
	for _, l := range d.listeners[event.Type] {
		l.OnEvent(event)
	}
	for _, l := range d.all {
		l.OnEvent(event)
	}
}

// Recorder 缓存事件直到被取走
// 对局用它实现 Events()：每次调用返回自上次以来的全部事件
type Recorder struct {
	events []Event
}

// OnEvent 实现 Listener
func (r *Recorder) OnEvent(event Event) {
	r.events = append(r.events, event)
}

// Drain 取走缓存的事件
func (r *Recorder) Drain() []Event {
	out := r.events
	r.events = nil
	return out
}
