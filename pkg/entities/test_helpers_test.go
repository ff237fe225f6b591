package entities

import (
	"testing"

	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/game"
	"github.com/decker502/tdcore/pkg/types"
)

// newTestState 创建一条两段、总长 10 的路线上的对局状态
func newTestState(t *testing.T) (*game.GameState, *config.Catalog) {
	t.Helper()
	catalog, err := config.DefaultCatalog()
	if err != nil {
		t.Fatalf("加载默认数值表失败: %v", err)
	}
	level := &config.LevelConfig{
		ID:        "test",
		StartGold: 1000,
		Lives:     10,
		Map: config.MapConfig{
			Width:  12,
			Height: 8,
			Lanes: []types.Lane{
				{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 4}},
				{{X: 0, Y: 6}, {X: 10, Y: 6}},
			},
			PlantableCells: []types.Position{{X: 2, Y: 2}, {X: 4, Y: 2}},
		},
	}
	return game.NewGameState(level, nil, 0), catalog
}
