package systems

import (
	"testing"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/entities"
	"github.com/decker502/tdcore/pkg/event"
	"github.com/decker502/tdcore/pkg/types"
)

func newAbilitySystem(w *testWorld) *EnemyAbilitySystem {
	return NewEnemyAbilitySystem(w.em, w.gs, w.catalog, w.events)
}

func (w *testWorld) setHP(id ecs.EntityID, hp float64) {
	h, _ := ecs.GetComponent[*components.HealthComponent](w.em, id)
	h.Current = hp
}

func TestHealer(t *testing.T) {
	w := newTestWorld(t)
	healer := w.spawn(t, types.EnemyHealer, 1, 5)  // (5,6)
	hurt := w.spawn(t, types.EnemyArmored, 1, 6)   // (6,6)
	almost := w.spawn(t, types.EnemyArmored, 1, 4) // (4,6)
	far := w.spawn(t, types.EnemyArmored, 1, 0)    // (0,6)
	w.setHP(hurt, 100)
	w.setHP(almost, 140)
	w.setHP(far, 100)
	w.setHP(healer, 100)
	sys := newAbilitySystem(w)

	w.advance(3)
	sys.Update()
	if w.hp(hurt) != 100 {
		t.Fatalf("首次触发前不应治疗, hp = %v", w.hp(hurt))
	}

	w.advance(0.5)
	sys.Update()

	tests := []struct {
		name string
		id   ecs.EntityID
		want float64
	}{
		{"半径内按最小治疗量", hurt, 118},
		{"不超过上限", almost, 150},
		{"半径外不治疗", far, 100},
		{"不治疗自身", healer, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.hp(tt.id); got != tt.want {
				t.Errorf("hp = %v, want %v", got, tt.want)
			}
		})
	}

	ability, _ := ecs.GetComponent[*components.AbilityComponent](w.em, healer)
	if ability.NextTrigger != 7 {
		t.Errorf("NextTrigger = %v, want 7", ability.NextTrigger)
	}
}

func TestSaboteur(t *testing.T) {
	w := newTestWorld(t)
	t1 := w.placeTower(t, types.PlantBottleGrass, types.Position{X: 3, Y: 3}, 1)
	t2 := w.placeTower(t, types.PlantBottleGrass, types.Position{X: 9, Y: 3}, 1)
	w.spawn(t, types.EnemySaboteur, 0, 1)
	sys := newAbilitySystem(w)

	w.advance(19)
	sys.Update()
	if w.em.IsMarkedForDestroy(t1) || w.em.IsMarkedForDestroy(t2) {
		t.Fatal("冷却未到不应摧毁塔")
	}

	w.advance(1)
	sys.Update()

	destroyed := 0
	for _, id := range []ecs.EntityID{t1, t2} {
		if w.em.IsMarkedForDestroy(id) {
			destroyed++
		}
	}
	if destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", destroyed)
	}
	if n := w.countEvents(w.recorder.Drain(), event.TowerDestroyed); n != 1 {
		t.Errorf("TowerDestroyed events = %d, want 1", n)
	}
}

func TestSaboteurWithoutTowers(t *testing.T) {
	w := newTestWorld(t)
	id := w.spawn(t, types.EnemySaboteur, 0, 1)
	w.advance(20)
	newAbilitySystem(w).Update()

	ability, _ := ecs.GetComponent[*components.AbilityComponent](w.em, id)
	if ability.NextTrigger != 40 {
		t.Errorf("NextTrigger = %v, want 40", ability.NextTrigger)
	}
}

func TestRagerBoost(t *testing.T) {
	w := newTestWorld(t)
	rager := w.spawn(t, types.EnemyRager, 1, 5)
	ally := w.spawn(t, types.EnemyBasic, 1, 6)
	far := w.spawn(t, types.EnemyBasic, 0, 0)
	sys := newAbilitySystem(w)

	w.advance(1)
	sys.Update()

	if st := w.status(ally); st.SpeedBoostMultiplier != 2 || !approx(st.SpeedBoostUntil, 1.6) {
		t.Errorf("ally boost = %v until %v", st.SpeedBoostMultiplier, st.SpeedBoostUntil)
	}
	if st := w.status(far); st.SpeedBoostMultiplier != 0 {
		t.Errorf("光环外不应加速: %+v", st)
	}
	if st := w.status(rager); st.SpeedBoostMultiplier != 0 {
		t.Errorf("狂暴者不加速自身: %+v", st)
	}

	// 每帧刷新窗口
	w.advance(0.5)
	sys.Update()
	if st := w.status(ally); !approx(st.SpeedBoostUntil, 2.1) {
		t.Errorf("boost until = %v, want 2.1", st.SpeedBoostUntil)
	}
}

func TestSummoner(t *testing.T) {
	w := newTestWorld(t)
	lane := 1
	summoner, err := entities.NewEnemy(w.em, w.gs, w.catalog, entities.EnemySpec{
		Group:         config.GroupConfig{Kind: types.EnemySummoner, Count: 1, Level: 3, Lane: &lane},
		StartDistance: 2,
	})
	if err != nil {
		t.Fatalf("NewEnemy() error = %v", err)
	}
	sys := newAbilitySystem(w)

	w.advance(5)
	sys.Update()

	enemies := aliveEnemies(w.em)
	if len(enemies) != 2 {
		t.Fatalf("enemies = %d, want 2", len(enemies))
	}
	clone := enemies[1]
	if clone.ID == summoner {
		t.Fatal("分身应是新创建的实体")
	}
	if clone.Enemy.Kind != types.EnemyBasic || clone.Enemy.Level != 3 {
		t.Errorf("clone kind = %v level = %d", clone.Enemy.Kind, clone.Enemy.Level)
	}
	if clone.Lane.Lane != 1 || !approx(clone.Lane.Traveled, 2.6) {
		t.Errorf("clone lane = %d traveled = %v", clone.Lane.Lane, clone.Lane.Traveled)
	}
	if clone.Health.Max != 53 || clone.Health.Current != 53 {
		t.Errorf("clone hp = %v/%v, want 53", clone.Health.Current, clone.Health.Max)
	}

	// 分身在下次触发前不会再次出现
	w.advance(1)
	sys.Update()
	if n := len(aliveEnemies(w.em)); n != 2 {
		t.Errorf("enemies = %d, want 2", n)
	}
}

func TestSummonerNearLaneEnd(t *testing.T) {
	w := newTestWorld(t)
	lane := 1 // 长度 10
	summoner, err := entities.NewEnemy(w.em, w.gs, w.catalog, entities.EnemySpec{
		Group:         config.GroupConfig{Kind: types.EnemySummoner, Count: 1, Level: 1, Lane: &lane},
		StartDistance: 9.5,
	})
	if err != nil {
		t.Fatalf("NewEnemy() error = %v", err)
	}
	sys := newAbilitySystem(w)

	w.advance(5)
	sys.Update()

	enemies := aliveEnemies(w.em)
	if len(enemies) != 1 || enemies[0].ID != summoner {
		t.Errorf("出生点越过终点时不应召唤分身, enemies = %d", len(enemies))
	}
}
