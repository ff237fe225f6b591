// tdsim 以固定步长无界面运行一局，输出结果
//
// 用法：
//
//	go run ./cmd/tdsim -level 1 -place "bottleGrass@3,3;sunflower@9,3" -duration 120
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/match"
	"github.com/decker502/tdcore/pkg/types"
)

var (
	levelFlag    = flag.String("level", "1", "内置关卡ID，或 .yaml 关卡文件路径")
	dtFlag       = flag.Float64("dt", 1.0/60, "固定步长（秒）")
	durationFlag = flag.Float64("duration", 300, "最长模拟时间（秒）")
	placeFlag    = flag.String("place", "", "开局种植，格式 plant@x,y;plant@x,y")
	starFlag     = flag.Int("star", 0, "难度星级 1-3，0 使用关卡设置")
	startFlag    = flag.Bool("start", true, "开局立即开始第一波")
	verbose      = flag.Bool("verbose", false, "显示逐帧日志")
	snapshotFlag = flag.Bool("snapshot", false, "结束时输出完整快照 JSON")
)

// placement 一次开局种植
type placement struct {
	Plant types.PlantType
	At    types.Position
}

// parsePlacements 解析 "bottleGrass@3,3;sunflower@9,3"
func parsePlacements(s string) ([]placement, error) {
	var out []placement
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, coords, ok := strings.Cut(item, "@")
		if !ok {
			return nil, fmt.Errorf("placement %q: missing '@'", item)
		}
		plant, ok := types.ParsePlantType(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("placement %q: unknown plant %q", item, name)
		}
		xs, ys, ok := strings.Cut(coords, ",")
		if !ok {
			return nil, fmt.Errorf("placement %q: want x,y", item)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("placement %q: %w", item, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("placement %q: %w", item, err)
		}
		out = append(out, placement{Plant: plant, At: types.Position{X: x, Y: y}})
	}
	return out, nil
}

func loadLevel(arg string) (*config.LevelConfig, error) {
	if strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml") {
		return config.LoadLevelConfig(arg)
	}
	return config.LoadLevelByID(arg)
}

func main() {
	flag.Parse()
	if *dtFlag <= 0 {
		log.Fatalf("dt must be positive, got %v", *dtFlag)
	}

	level, err := loadLevel(*levelFlag)
	if err != nil {
		log.Fatalf("Failed to load level: %v", err)
	}
	if *starFlag != 0 {
		if *starFlag < 1 || *starFlag > 3 {
			log.Fatalf("star must be between 1 and 3, got %d", *starFlag)
		}
		level.Options.Star = *starFlag
	}
	placements, err := parsePlacements(*placeFlag)
	if err != nil {
		log.Fatalf("Invalid -place: %v", err)
	}

	catalog, err := config.DefaultCatalog()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	m := match.New(catalog)
	if err := m.LoadLevel(match.LevelInput{Level: level}); err != nil {
		log.Fatalf("Failed to start match: %v", err)
	}
	m.SetVerbose(*verbose)

	for _, p := range placements {
		if !m.PlaceTower(p.Plant, p.At) {
			log.Printf("[tdsim] Placement %s at (%.1f, %.1f) rejected: %s", p.Plant, p.At.X, p.At.Y, m.LastRejection())
		}
	}
	if *startFlag && !m.HUD().WaveActive {
		m.StartWave()
	}

	for m.Outcome() == match.OutcomeNone && m.HUD().Time < *durationFlag {
		m.Update(*dtFlag)
		m.Events()
	}

	hud := m.HUD()
	fmt.Printf("outcome=%s time=%.2f wave=%d/%d gold=%d lives=%d flawless=%v\n",
		m.Outcome(), hud.Time, hud.WaveIndex, hud.TotalWaves, hud.Gold, hud.Lives, m.Flawless())

	if *snapshotFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m.Snapshot()); err != nil {
			log.Fatalf("Failed to encode snapshot: %v", err)
		}
	}
	if m.Outcome() == match.OutcomeLost {
		os.Exit(1)
	}
}
