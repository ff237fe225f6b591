// tdserver 通过 HTTP/WebSocket 托管一局对局
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/decker502/tdcore/pkg/progress"
	"github.com/decker502/tdcore/pkg/server"
)

var (
	configFlag = flag.String("config", "", "YAML 配置文件，留空使用默认值")
	addrFlag   = flag.String("addr", "", "监听地址，覆盖配置文件")
	playerFlag = flag.String("player", "", "记录进度的玩家键，覆盖配置文件")
)

func main() {
	flag.Parse()

	cfg := server.DefaultConfig()
	if *configFlag != "" {
		loaded, err := server.LoadConfig(*configFlag)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}
	if *playerFlag != "" {
		cfg.PlayerKey = *playerFlag
	}

	var cache *progress.Cache
	if cfg.PlayerKey != "" {
		store, err := progress.OpenGdataStore(cfg.AppName)
		if err != nil {
			// 存储不可用时降级为仅内存
			log.Printf("[tdserver] Warning: %v (progress kept in memory)", err)
			cache = progress.NewCache(progress.NewMemoryStore(), cfg.PlayerKey, progress.Options{})
		} else {
			cache = progress.NewCache(store, cfg.PlayerKey, progress.Options{})
		}
	}

	srv, err := server.New(cfg, server.Options{Progress: cache})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("[tdserver] Shut down")
}
