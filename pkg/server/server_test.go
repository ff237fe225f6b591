package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/match"
	"github.com/decker502/tdcore/pkg/progress"
	"github.com/decker502/tdcore/pkg/types"
)

// serverLevel 一条总长 10 的路线，一个基础敌人
func serverLevel(id string) (*config.LevelConfig, error) {
	if id != "1" {
		return nil, fmt.Errorf("level %q not found", id)
	}
	return &config.LevelConfig{
		Version:   config.LevelVersion,
		ID:        "1",
		StartGold: 500,
		Lives:     10,
		Map: config.MapConfig{
			Width:          12,
			Height:         8,
			Lanes:          []types.Lane{{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 4}}},
			PlantableCells: []types.Position{{X: 3, Y: 3}, {X: 9, Y: 3}},
		},
		Waves: []config.WaveConfig{{Groups: []config.GroupConfig{
			{Kind: types.EnemyBasic, Count: 1, Interval: 1, Level: 1, Reward: 5},
		}}},
		Options: config.LevelOptions{Star: 1},
	}, nil
}

type testServer struct {
	*Server
	url   string
	cache *progress.Cache
}

func newTestServer(t *testing.T, mutate func(*Config)) *testServer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TickRate = 100
	if mutate != nil {
		mutate(&cfg)
	}
	cache := progress.NewCache(progress.NewMemoryStore(), "tester", progress.Options{})
	s, err := New(cfg, Options{
		Catalog:        config.MustDefaultCatalog(),
		Levels:         serverLevel,
		Progress:       cache,
		DisableLogging: true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return &testServer{Server: s, url: ts.URL, cache: cache}
}

func (ts *testServer) post(t *testing.T, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	resp, err := http.Post(ts.url+path, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func (ts *testServer) action(t *testing.T, name string, body any) ActionResponse {
	t.Helper()
	resp, data := ts.post(t, "/api/match/"+name, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s status = %d, body %s", name, resp.StatusCode, data)
	}
	var out ActionResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return out
}

func TestLoadLevelEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("加载成功", func(t *testing.T) {
		resp, data := ts.post(t, "/api/match", LoadRequest{LevelID: "1"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, body %s", resp.StatusCode, data)
		}
		var hud match.HUD
		json.Unmarshal(data, &hud)
		if hud.Gold != 500 || hud.Lives != 10 || hud.TotalWaves != 1 {
			t.Errorf("hud = %+v", hud)
		}
	})

	tests := []struct {
		name string
		body any
		want int
	}{
		{"未知关卡", LoadRequest{LevelID: "99"}, http.StatusNotFound},
		{"缺少关卡ID", LoadRequest{}, http.StatusBadRequest},
		{"星级越界", LoadRequest{LevelID: "1", Star: 5}, http.StatusBadRequest},
		{"非法JSON", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := ts.post(t, "/api/match", tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.want, data)
			}
		})
	}
}

func TestActionEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("未加载关卡", func(t *testing.T) {
		out := ts.action(t, "start", nil)
		if out.Accepted || out.Reason != match.RejectNoLevel {
			t.Errorf("start = %+v, want rejected NoLevel", out)
		}
	})

	ts.post(t, "/api/match", LoadRequest{LevelID: "1"})

	t.Run("种植", func(t *testing.T) {
		plant := types.PlantBottleGrass
		out := ts.action(t, "place", ActionRequest{Plant: &plant, X: 3, Y: 3})
		if !out.Accepted || out.HUD.Gold != 400 {
			t.Errorf("place = %+v", out)
		}
		out = ts.action(t, "place", ActionRequest{Plant: &plant, X: 3, Y: 3})
		if out.Accepted || out.Reason != match.RejectOccupied {
			t.Errorf("second place = %+v, want Occupied", out)
		}
	})

	t.Run("元素附着", func(t *testing.T) {
		ice := types.ElementIce
		out := ts.action(t, "element", ActionRequest{Element: &ice, X: 3, Y: 3})
		if !out.Accepted {
			t.Errorf("element = %+v", out)
		}
	})

	t.Run("开始波次", func(t *testing.T) {
		out := ts.action(t, "start", nil)
		if !out.Accepted || !out.HUD.WaveActive {
			t.Errorf("start = %+v", out)
		}
		out = ts.action(t, "start", nil)
		if out.Accepted || out.Reason != match.RejectWaveActive {
			t.Errorf("second start = %+v, want WaveActive", out)
		}
	})

	t.Run("暂停切换", func(t *testing.T) {
		out := ts.action(t, "pause", nil)
		if !out.Accepted || out.Running == nil || *out.Running {
			t.Errorf("pause = %+v", out)
		}
		out = ts.action(t, "pause", nil)
		if out.Running == nil || !*out.Running {
			t.Errorf("resume = %+v", out)
		}
	})

	t.Run("手动发射非阳光花", func(t *testing.T) {
		out := ts.action(t, "fire", ActionRequest{TowerID: 12345})
		if out.Accepted || out.Reason != match.RejectNotReady {
			t.Errorf("fire = %+v", out)
		}
	})

	t.Run("参数错误", func(t *testing.T) {
		for _, name := range []string{"place", "element"} {
			resp, _ := ts.post(t, "/api/match/"+name, ActionRequest{})
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("%s without target: status %d", name, resp.StatusCode)
			}
		}
		resp, _ := ts.post(t, "/api/match/dance", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("unknown action status = %d", resp.StatusCode)
		}
		resp, _ = ts.post(t, "/api/match/place", map[string]any{"plant": "cactus"})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("unknown plant status = %d", resp.StatusCode)
		}
	})

	t.Run("快照", func(t *testing.T) {
		resp, err := http.Get(ts.url + "/api/match/snapshot")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var snap match.Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			t.Fatal(err)
		}
		if len(snap.Towers) != 1 || snap.Towers[0].Type != types.PlantBottleGrass {
			t.Errorf("towers = %+v", snap.Towers)
		}
	})
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(c *Config) {
		c.ActionsPerSecond = 0.001
		c.ActionBurst = 2
	})
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, _ := ts.post(t, "/api/match/start", nil)
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}

	// 只读接口不限流
	resp, err := http.Get(ts.url + "/api/match/snapshot")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("snapshot status = %d", resp.StatusCode)
	}
}

func TestWebSocketStreamsSnapshots(t *testing.T) {
	ts := newTestServer(t, nil)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.url, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ts.post(t, "/api/match", LoadRequest{LevelID: "1"})

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg struct {
			Type string         `json:"type"`
			Data match.Snapshot `json:"data"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type != "snapshot" {
			continue
		}
		if msg.Data.HUD.Lives != 10 {
			t.Errorf("snapshot lives = %d, want 10", msg.Data.HUD.Lives)
		}
		return
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	ts := newTestServer(t, nil)
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.url, "http")+"/ws", header)
	if err == nil {
		t.Fatal("dial succeeded, want rejection")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.action(t, "start", nil)

	resp, err := http.Get(ts.url + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body bytes.Buffer
	body.ReadFrom(resp.Body)
	for _, want := range []string{"tdcore_actions_total", "tdcore_tick_duration_seconds"} {
		if !strings.Contains(body.String(), want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestDriverRecordsProgressOnWin(t *testing.T) {
	cache := progress.NewCache(progress.NewMemoryStore(), "tester", progress.Options{})
	m := match.New(config.MustDefaultCatalog())
	d := NewDriver(m, 60, nil, cache)

	level, _ := serverLevel("1")
	if err := m.LoadLevel(match.LevelInput{Level: level}); err != nil {
		t.Fatal(err)
	}
	m.StartWave()
	for i := 0; i < 400 && m.Outcome() == match.OutcomeNone; i++ {
		m.Update(0.05)
		d.publish(false)
	}
	if m.Outcome() != match.OutcomeWon {
		t.Fatalf("outcome = %v, want won", m.Outcome())
	}

	r, err := cache.Get()
	if err != nil {
		t.Fatal(err)
	}
	if r.Stars["1"] != 1 || r.Unlocked != 2 || !r.HasItem("element:fire") {
		t.Errorf("progress = %+v", r)
	}
	if d.Latest().Outcome != match.OutcomeWon {
		t.Errorf("latest outcome = %v", d.Latest().Outcome)
	}
}

func TestDriverStopped(t *testing.T) {
	d := NewDriver(match.New(config.MustDefaultCatalog()), 60, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
	if err := d.Do(context.Background(), func(*match.Match) {}); err != ErrDriverStopped {
		t.Errorf("Do after stop = %v, want ErrDriverStopped", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("缺省字段取默认值", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		os.WriteFile(path, []byte("addr: \":9000\"\ntickRate: 30\nbroadcastInterval: 100ms\n"), 0o644)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Addr != ":9000" || cfg.TickRate != 30 || cfg.ActionBurst != 20 || cfg.BroadcastInterval != 100*time.Millisecond {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("非法值", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		os.WriteFile(path, []byte("tickRate: 0\n"), 0o644)
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("文件不存在", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("expected read error")
		}
	})
}

func TestOriginMatcher(t *testing.T) {
	allow := originMatcher([]string{"http://localhost:*", "https://td.example"})
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"https://td.example", true},
		{"https://evil.example", false},
		{"http://localhost.evil:80/x", false},
	}
	for _, tt := range tests {
		if got := allow(tt.origin); got != tt.want {
			t.Errorf("allow(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
