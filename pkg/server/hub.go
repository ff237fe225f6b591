package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// 来源检查交给 cors 配置的同一白名单
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message 推送给订阅者的消息
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub 管理快照订阅连接
// 连接表只在 Run 所在的 goroutine 中读写
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	allow      func(origin string) bool
}

// NewHub 创建 Hub；allow 为 nil 时接受任何来源
func NewHub(allow func(origin string) bool) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		allow:      allow,
	}
}

// Run 处理注册、注销与广播，直到 ctx 结束
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for conn := range h.clients {
			conn.Close()
		}
		wsConnections.Set(0)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case conn := <-h.register:
			h.clients[conn] = true
			wsConnections.Set(float64(len(h.clients)))
			log.Printf("[Hub] Client connected (%d total)", len(h.clients))
		case conn := <-h.unregister:
			if h.clients[conn] {
				delete(h.clients, conn)
				conn.Close()
				wsConnections.Set(float64(len(h.clients)))
				log.Printf("[Hub] Client disconnected (%d remaining)", len(h.clients))
			}
		case msg := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					delete(h.clients, conn)
					conn.Close()
				}
			}
			wsConnections.Set(float64(len(h.clients)))
			wsMessages.Inc()
		}
	}
}

// Broadcast 非阻塞广播，队列满时丢弃
func (h *Hub) Broadcast(msgType string, data any) {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		log.Printf("[Hub] Failed to marshal %s: %v", msgType, err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
	}
}

// HandleWebSocket 升级连接并登记为订阅者；客户端发来的消息被忽略
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.allow != nil && !h.allow(r.Header.Get("Origin")) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Hub] WebSocket upgrade error: %v", err)
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
