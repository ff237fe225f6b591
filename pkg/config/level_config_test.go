package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decker502/tdcore/pkg/types"
)

const minimalLevel = `
id: test
startGold: 100
lives: 10
map:
  width: 12
  height: 6
  lanes:
    - [{x: 0, y: 3}, {x: 11, y: 3}]
waves:
  - groups:
      - {kind: basic, count: 3, interval: 1, level: 1, reward: 5}
`

func TestParseLevelConfig(t *testing.T) {
	cfg, err := ParseLevelConfig([]byte(minimalLevel))
	if err != nil {
		t.Fatalf("ParseLevelConfig failed: %v", err)
	}

	if cfg.Version != LevelVersion {
		t.Errorf("version = %d, want %d", cfg.Version, LevelVersion)
	}
	if cfg.Options.Mode != types.ModeCampaign {
		t.Errorf("mode = %s, want campaign", cfg.Options.Mode)
	}
	if cfg.Options.Star != 1 {
		t.Errorf("star = %d, want 1", cfg.Options.Star)
	}
	if len(cfg.Map.PlantableCells) == 0 {
		t.Error("plantable cells should be generated")
	}
	for _, c := range cfg.Map.PlantableCells {
		if c.Y > 1.9 && c.Y < 4.1 {
			t.Errorf("cell %+v is on the road", c)
		}
	}
	if cfg.Waves[0].Groups[0].LaneIndex() != 0 {
		t.Error("default lane should be 0")
	}
}

func TestParseLevelConfigLegacyKindNames(t *testing.T) {
	data := strings.Replace(minimalLevel, "kind: basic", "kind: square", 1)
	cfg, err := ParseLevelConfig([]byte(data))
	if err != nil {
		t.Fatalf("ParseLevelConfig failed: %v", err)
	}
	if cfg.Waves[0].Groups[0].Kind != types.EnemyArmored {
		t.Errorf("kind = %s, want armored", cfg.Waves[0].Groups[0].Kind)
	}
}

func TestParseLevelConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
	}{
		{"缺少ID", [2]string{"id: test", "id: \"\""}},
		{"生命为零", [2]string{"lives: 10", "lives: 0"}},
		{"负数金币", [2]string{"startGold: 100", "startGold: -1"}},
		{"路线只有一个点", [2]string{"[{x: 0, y: 3}, {x: 11, y: 3}]", "[{x: 0, y: 3}]"}},
		{"数量为零", [2]string{"count: 3", "count: 0"}},
		{"负间隔", [2]string{"interval: 1", "interval: -1"}},
		{"路线越界", [2]string{"reward: 5}", "reward: 5, lane: 2}"}},
		{"未知敌人", [2]string{"kind: basic", "kind: dragon"}},
		{"版本不支持", [2]string{"id: test", "version: 9\nid: test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Replace(minimalLevel, tt.replace[0], tt.replace[1], 1)
			if _, err := ParseLevelConfig([]byte(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEndlessLevelMayOmitWaves(t *testing.T) {
	data := `
id: e
lives: 5
map:
  lanes: [[{x: 0, y: 0}, {x: 4, y: 0}]]
options:
  mode: endless
`
	cfg, err := ParseLevelConfig([]byte(data))
	if err != nil {
		t.Fatalf("ParseLevelConfig failed: %v", err)
	}
	if cfg.Map.Width != 5 || cfg.Map.Height != 1 {
		t.Errorf("map size defaulted to %vx%v", cfg.Map.Width, cfg.Map.Height)
	}
}

func TestTowerAndElementLevels(t *testing.T) {
	data := minimalLevel + `
options:
  towerLevels:
    bottleGrass: 3
    element:fire: 4
  elementLevels:
    fire: 9
    ice: 2
`
	cfg, err := ParseLevelConfig([]byte(data))
	if err != nil {
		t.Fatalf("ParseLevelConfig failed: %v", err)
	}
	o := cfg.Options
	if got := o.TowerLevel(types.PlantBottleGrass); got != 3 {
		t.Errorf("bottleGrass level = %d, want 3", got)
	}
	if got := o.TowerLevel(types.PlantSniper); got != 1 {
		t.Errorf("sniper level = %d, want 1", got)
	}
	// towerLevels 优先于 elementLevels
	if got := o.ElementLevel(types.ElementFire); got != 4 {
		t.Errorf("fire level = %d, want 4", got)
	}
	if got := o.ElementLevel(types.ElementIce); got != 2 {
		t.Errorf("ice level = %d, want 2", got)
	}
}

func TestWavesWithStar(t *testing.T) {
	waves := []WaveConfig{{Groups: []GroupConfig{{Kind: types.EnemyBasic, Count: 1, Level: 3}}}}
	offsets := []int{0, 50, 100}

	for star, want := range map[int]int{1: 3, 2: 53, 3: 103, 0: 3} {
		got := WavesWithStar(waves, star, offsets)
		if got[0].Groups[0].Level != want {
			t.Errorf("star %d: level = %d, want %d", star, got[0].Groups[0].Level, want)
		}
	}
	if waves[0].Groups[0].Level != 3 {
		t.Error("input waves must not be modified")
	}
}

func TestBuiltinLevelsLoad(t *testing.T) {
	ids, err := ListLevelIDs()
	if err != nil {
		t.Fatalf("ListLevelIDs failed: %v", err)
	}
	if len(ids) == 0 {
		t.Fatal("no built-in levels")
	}
	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			if _, err := LoadLevelByID(id); err != nil {
				t.Errorf("LoadLevelByID(%s): %v", id, err)
			}
		})
	}

	random, err := LoadLevelByID("random")
	if err != nil {
		t.Fatal(err)
	}
	if random.Options.Mode != types.ModeRandom || random.Options.Seed == 0 {
		t.Errorf("random level options = %+v", random.Options)
	}
}

func TestLoadLevelConfigFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte(minimalLevel), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLevelConfig(path); err != nil {
		t.Errorf("LoadLevelConfig failed: %v", err)
	}
	if _, err := LoadLevelConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
