// Package server 通过 HTTP 与 WebSocket 托管一局对局。
//
// 对局只在 Driver 的 goroutine 中被读写；HTTP 处理函数把操作投递给 Driver，
// WebSocket 订阅者收到每次推进后的快照与事件。
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/match"
	"github.com/decker502/tdcore/pkg/progress"
)

// Server 对局服务
type Server struct {
	cfg      Config
	driver   *Driver
	hub      *Hub
	limiter  *ClientRateLimiter
	progress *progress.Cache
	router   *chi.Mux
}

// Options 可替换的依赖，零值使用默认实现
type Options struct {
	Catalog  *config.Catalog
	Levels   LevelLoader
	Progress *progress.Cache
	// DisableLogging 关闭请求日志（测试用）
	DisableLogging bool
}

// New 创建服务；不启动任何 goroutine
func New(cfg Config, opts Options) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}
	catalog := opts.Catalog
	if catalog == nil {
		var err error
		if catalog, err = config.DefaultCatalog(); err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}
	levels := opts.Levels
	if levels == nil {
		levels = config.LoadLevelByID
	}

	s := &Server{
		cfg:      cfg,
		hub:      NewHub(originMatcher(cfg.corsOrigins())),
		limiter:  NewClientRateLimiter(cfg.ActionsPerSecond, cfg.ActionBurst),
		progress: opts.Progress,
	}
	s.driver = NewDriver(match.New(catalog), cfg.TickRate, s.hub, opts.Progress)
	s.driver.broadcastEvery = cfg.BroadcastInterval
	s.router = s.newRouter(levels, opts.DisableLogging)
	return s, nil
}

func (s *Server) newRouter(levels LevelLoader, disableLogging bool) *chi.Mux {
	h := &handlers{driver: s.driver, levels: levels, server: s}

	r := chi.NewRouter()
	if !disableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.corsOrigins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/levels", h.handleListLevels)
		r.Get("/progress", h.handleProgress)
		r.Get("/match/snapshot", h.handleSnapshot)
		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Middleware)
			r.Post("/match", h.handleLoad)
			r.Post("/match/{action}", h.handleAction)
		})
	})
	r.Get("/ws", s.hub.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Handler 返回 HTTP 处理器
func (s *Server) Handler() http.Handler {
	return s.router
}

// Driver 返回对局驱动
func (s *Server) Driver() *Driver {
	return s.driver
}

// Run 启动 Hub、驱动循环与限流清理，阻塞到 ctx 结束
func (s *Server) Run(ctx context.Context) {
	go s.hub.Run(ctx)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.limiter.Cleanup(10 * time.Minute)
			}
		}
	}()
	if err := s.driver.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[Server] Driver stopped: %v", err)
	}
}

// ListenAndServe 监听 cfg.Addr，ctx 结束时优雅关闭
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go s.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// originMatcher 支持 "http://localhost:*" 形式的通配；空 Origin（非浏览器客户端）放行
func originMatcher(patterns []string) func(origin string) bool {
	return func(origin string) bool {
		if origin == "" {
			return true
		}
		for _, p := range patterns {
			if p == "*" || p == origin {
				return true
			}
			if ok, _ := path.Match(p, origin); ok {
				return true
			}
		}
		return false
	}
}
