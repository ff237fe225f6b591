package systems

import (
	"testing"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/entities"
	"github.com/decker502/tdcore/pkg/event"
	"github.com/decker502/tdcore/pkg/game"
	"github.com/decker502/tdcore/pkg/types"
)

// testWorld 系统测试共用的对局环境
//
// 地图 12x8，两条路线：
//   - 路线 0: (0,0) -> (6,0) -> (6,4)，总长 10
//   - 路线 1: (0,6) -> (10,6)，总长 10
type testWorld struct {
	em       *ecs.EntityManager
	gs       *game.GameState
	catalog  *config.Catalog
	events   *event.Dispatcher
	recorder *event.Recorder
	combat   *CombatSystem
}

func newTestWorld(t *testing.T, waves ...config.WaveConfig) *testWorld {
	t.Helper()
	catalog, err := config.DefaultCatalog()
	if err != nil {
		t.Fatalf("加载默认数值表失败: %v", err)
	}
	level := &config.LevelConfig{
		ID:        "systems-test",
		StartGold: 1000,
		Lives:     10,
		Map: config.MapConfig{
			Width:  12,
			Height: 8,
			Lanes: []types.Lane{
				{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 4}},
				{{X: 0, Y: 6}, {X: 10, Y: 6}},
			},
			PlantableCells: []types.Position{{X: 3, Y: 3}, {X: 9, Y: 3}},
		},
		Waves: waves,
	}
	em := ecs.NewEntityManager()
	gs := game.NewGameState(level, waves, 0)
	events := event.NewDispatcher()
	recorder := &event.Recorder{}
	events.SubscribeAll(recorder)

	return &testWorld{
		em:       em,
		gs:       gs,
		catalog:  catalog,
		events:   events,
		recorder: recorder,
		combat:   NewCombatSystem(em, gs, catalog, events),
	}
}

// spawn 在指定路线的指定距离处创建 0 级敌人
func (w *testWorld) spawn(t *testing.T, kind types.EnemyKind, lane int, traveled float64) ecs.EntityID {
	t.Helper()
	l := lane
	id, err := entities.NewEnemy(w.em, w.gs, w.catalog, entities.EnemySpec{
		Group:         config.GroupConfig{Kind: kind, Count: 1, Lane: &l},
		StartDistance: traveled,
	})
	if err != nil {
		t.Fatalf("NewEnemy() error = %v", err)
	}
	return id
}

func (w *testWorld) placeTower(t *testing.T, plant types.PlantType, pos types.Position, level int) ecs.EntityID {
	t.Helper()
	id, err := entities.NewTower(w.em, w.gs, w.catalog, plant, pos, level)
	if err != nil {
		t.Fatalf("NewTower() error = %v", err)
	}
	return id
}

// advance 推进游戏时间（不运行任何系统）
func (w *testWorld) advance(dt float64) {
	w.gs.PrevTime = w.gs.Time
	w.gs.Time += dt
}

func (w *testWorld) hp(id ecs.EntityID) float64 {
	h, ok := ecs.GetComponent[*components.HealthComponent](w.em, id)
	if !ok {
		return 0
	}
	return h.Current
}

func (w *testWorld) status(id ecs.EntityID) *components.StatusEffectComponent {
	st, _ := ecs.GetComponent[*components.StatusEffectComponent](w.em, id)
	return st
}

func (w *testWorld) laneProgress(id ecs.EntityID) *components.LaneProgressComponent {
	lp, _ := ecs.GetComponent[*components.LaneProgressComponent](w.em, id)
	return lp
}

func (w *testWorld) projectiles() []*components.ProjectileComponent {
	var out []*components.ProjectileComponent
	for _, id := range ecs.GetEntitiesWith1[*components.ProjectileComponent](w.em) {
		if w.em.IsMarkedForDestroy(id) {
			continue
		}
		p, _ := ecs.GetComponent[*components.ProjectileComponent](w.em, id)
		out = append(out, p)
	}
	return out
}

func (w *testWorld) countEvents(events []event.Event, t event.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func approx(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
