package entities

import (
	"testing"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/stats"
	"github.com/decker502/tdcore/pkg/types"
)

func TestNewTower(t *testing.T) {
	gs, catalog := newTestState(t)
	gs.Time = 4
	cell := types.Position{X: 2, Y: 2}

	t.Run("攻击型植物", func(t *testing.T) {
		em := ecs.NewEntityManager()
		id, err := NewTower(em, gs, catalog, types.PlantMachineGun, cell, 2)
		if err != nil {
			t.Fatalf("NewTower() error = %v", err)
		}
		tower, ok := ecs.GetComponent[*components.TowerComponent](em, id)
		if !ok {
			t.Fatal("缺少 TowerComponent")
		}
		want := stats.Resolve(catalog.Plants[types.PlantMachineGun], catalog.Leveling, 2, nil, catalog.Engine)
		if tower.Stats != want {
			t.Errorf("stats = %+v, want %+v", tower.Stats, want)
		}
		if tower.LastShotTime != InitialLastShotTime {
			t.Errorf("LastShotTime = %v", tower.LastShotTime)
		}
		if tower.Element != nil {
			t.Error("新塔不应带元素")
		}
		if ecs.HasComponent[*components.IncomeComponent](em, id) {
			t.Error("攻击型植物不应有收益组件")
		}
	})

	t.Run("产出型植物", func(t *testing.T) {
		em := ecs.NewEntityManager()
		id, err := NewTower(em, gs, catalog, types.PlantSunflower, cell, 3)
		if err != nil {
			t.Fatalf("NewTower() error = %v", err)
		}
		income, ok := ecs.GetComponent[*components.IncomeComponent](em, id)
		if !ok {
			t.Fatal("向日葵缺少 IncomeComponent")
		}
		if income.PerCycle != 12 || income.Interval != 10 || income.LastPayout != 4 {
			t.Errorf("income = %+v", income)
		}
		tower, _ := ecs.GetComponent[*components.TowerComponent](em, id)
		if tower.Stats.CanFire() {
			t.Error("向日葵不应具备开火能力")
		}
	})

	t.Run("等级小于 1 按 1 处理", func(t *testing.T) {
		em := ecs.NewEntityManager()
		id, _ := NewTower(em, gs, catalog, types.PlantBottleGrass, cell, 0)
		tower, _ := ecs.GetComponent[*components.TowerComponent](em, id)
		if tower.Level != 1 {
			t.Errorf("Level = %d, want 1", tower.Level)
		}
	})

	t.Run("未知植物", func(t *testing.T) {
		em := ecs.NewEntityManager()
		if _, err := NewTower(em, gs, catalog, types.PlantUnknown, cell, 1); err == nil {
			t.Fatal("expected error")
		}
	})
}
