package systems

import (
	"testing"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/types"
)

func TestTowerTargetsClosestToGoal(t *testing.T) {
	t.Run("选择进度最大的敌人", func(t *testing.T) {
		w := newTestWorld(t)
		w.placeTower(t, types.PlantBottleGrass, types.Position{X: 3, Y: 2}, 1)
		w.spawn(t, types.EnemyBasic, 0, 2)
		ahead := w.spawn(t, types.EnemyBasic, 0, 4)

		NewTowerFireSystem(w.em, w.gs, w.catalog).Update()

		ps := w.projectiles()
		if len(ps) != 1 {
			t.Fatalf("projectiles = %d, want 1", len(ps))
		}
		if ps[0].Motion != components.MotionHoming || ps[0].Target != ahead {
			t.Errorf("projectile = %+v, want homing at %d", ps[0], ahead)
		}
		if ps[0].Damage != 26 || ps[0].Speed != 8 {
			t.Errorf("damage/speed = %v/%v", ps[0].Damage, ps[0].Speed)
		}
	})

	t.Run("进度相同时先创建者优先", func(t *testing.T) {
		w := newTestWorld(t)
		w.placeTower(t, types.PlantBottleGrass, types.Position{X: 3, Y: 3}, 1)
		first := w.spawn(t, types.EnemyBasic, 1, 3) // (3,6)
		w.spawn(t, types.EnemyBasic, 0, 3)          // (3,0)

		NewTowerFireSystem(w.em, w.gs, w.catalog).Update()

		ps := w.projectiles()
		if len(ps) != 1 || ps[0].Target != first {
			t.Fatalf("应选择先创建的敌人 %d, got %+v", first, ps)
		}
	})

	t.Run("射程外不开火", func(t *testing.T) {
		w := newTestWorld(t)
		w.placeTower(t, types.PlantBottleGrass, types.Position{X: 9, Y: 3}, 1)
		w.spawn(t, types.EnemyBasic, 0, 1)

		NewTowerFireSystem(w.em, w.gs, w.catalog).Update()
		if n := len(w.projectiles()); n != 0 {
			t.Errorf("projectiles = %d, want 0", n)
		}
	})
}

func TestTowerCooldown(t *testing.T) {
	w := newTestWorld(t)
	id := w.placeTower(t, types.PlantBottleGrass, types.Position{X: 3, Y: 2}, 1)
	w.spawn(t, types.EnemyArmored, 0, 3)
	sys := NewTowerFireSystem(w.em, w.gs, w.catalog)

	sys.Update()
	w.advance(0.5)
	sys.Update()
	if n := len(w.projectiles()); n != 1 {
		t.Fatalf("冷却中不应开火, projectiles = %d", n)
	}

	w.advance(0.5)
	sys.Update()
	if n := len(w.projectiles()); n != 2 {
		t.Fatalf("冷却结束应开火, projectiles = %d", n)
	}
	tower, _ := ecs.GetComponent[*components.TowerComponent](w.em, id)
	if tower.LastShotTime != 1 {
		t.Errorf("LastShotTime = %v, want 1", tower.LastShotTime)
	}
}

func TestProducerNeverFires(t *testing.T) {
	w := newTestWorld(t)
	w.placeTower(t, types.PlantSunflower, types.Position{X: 3, Y: 2}, 5)
	w.placeTower(t, types.PlantSunlightFlower, types.Position{X: 3, Y: 3}, 1)
	w.spawn(t, types.EnemyBasic, 0, 3)

	NewTowerFireSystem(w.em, w.gs, w.catalog).Update()
	if n := len(w.projectiles()); n != 0 {
		t.Errorf("projectiles = %d, want 0", n)
	}
}

func TestLockOnTargeting(t *testing.T) {
	w := newTestWorld(t)
	towerID := w.placeTower(t, types.PlantSniper, types.Position{X: 3, Y: 3}, 1)
	basic := w.spawn(t, types.EnemyBasic, 0, 4)
	armored := w.spawn(t, types.EnemyArmored, 1, 1)
	sys := NewTowerFireSystem(w.em, w.gs, w.catalog)
	tower, _ := ecs.GetComponent[*components.TowerComponent](w.em, towerID)

	sys.Update()
	if tower.LockedTarget != armored {
		t.Fatalf("应锁定血量最高的敌人 %d, got %d", armored, tower.LockedTarget)
	}

	t.Run("锁定目标存活时保持", func(t *testing.T) {
		h, _ := ecs.GetComponent[*components.HealthComponent](w.em, armored)
		h.Current = 10
		w.advance(6)
		sys.Update()
		ps := w.projectiles()
		if tower.LockedTarget != armored || ps[len(ps)-1].Target != armored {
			t.Errorf("locked = %d, want %d", tower.LockedTarget, armored)
		}
	})

	t.Run("锁定目标死亡后重新选择", func(t *testing.T) {
		h, _ := ecs.GetComponent[*components.HealthComponent](w.em, armored)
		h.Current = 0
		w.advance(6)
		sys.Update()
		if tower.LockedTarget != basic {
			t.Errorf("locked = %d, want %d", tower.LockedTarget, basic)
		}
	})
}

func TestPiercingTowerFiresFreeFlight(t *testing.T) {
	w := newTestWorld(t)
	w.placeTower(t, types.PlantRocket, types.Position{X: 3, Y: 3}, 1)
	w.spawn(t, types.EnemyArmored, 0, 3) // (3,0)

	NewTowerFireSystem(w.em, w.gs, w.catalog).Update()

	ps := w.projectiles()
	if len(ps) != 1 {
		t.Fatalf("projectiles = %d, want 1", len(ps))
	}
	p := ps[0]
	if p.Motion != components.MotionFree {
		t.Fatal("穿透塔应发射直线弹")
	}
	if !approx(p.DirX, 0) || !approx(p.DirY, -1) {
		t.Errorf("dir = (%v,%v), want (0,-1)", p.DirX, p.DirY)
	}
	if p.PierceLimit != 5 || p.DamageDecay != 0.85 || p.Bounces != 2 {
		t.Errorf("pierce settings = %d/%v/%d", p.PierceLimit, p.DamageDecay, p.Bounces)
	}
	if p.HitSet == nil {
		t.Error("HitSet 应已初始化")
	}
}

func TestElementPayloadCopiedToProjectile(t *testing.T) {
	w := newTestWorld(t)
	id := w.placeTower(t, types.PlantBottleGrass, types.Position{X: 3, Y: 2}, 1)
	tower, _ := ecs.GetComponent[*components.TowerComponent](w.em, id)
	tower.Element = &components.ElementState{Type: types.ElementIce, Level: 1}
	w.spawn(t, types.EnemyArmored, 0, 3)

	NewTowerFireSystem(w.em, w.gs, w.catalog).Update()

	ps := w.projectiles()
	if len(ps) != 1 {
		t.Fatalf("projectiles = %d, want 1", len(ps))
	}
	if ps[0].Payload.SlowPct != 0.5 || ps[0].Payload.SlowDuration != 2.5 {
		t.Errorf("payload = %+v", ps[0].Payload)
	}
	if ps[0].Color != "#2563eb" {
		t.Errorf("color = %s", ps[0].Color)
	}
}

func TestManualFire(t *testing.T) {
	w := newTestWorld(t)
	flower := w.placeTower(t, types.PlantSunlightFlower, types.Position{X: 9, Y: 3}, 1)
	gun := w.placeTower(t, types.PlantMachineGun, types.Position{X: 3, Y: 3}, 1)
	sys := NewTowerFireSystem(w.em, w.gs, w.catalog)

	if sys.ManualFire(flower) {
		t.Fatal("没有敌人时不应发射")
	}

	target := w.spawn(t, types.EnemySaboteur, 0, 1)
	if !sys.ManualFire(flower) {
		t.Fatal("应发射成功")
	}
	ps := w.projectiles()
	if len(ps) != 1 || ps[0].Target != target || ps[0].Damage != 300 || ps[0].Speed != 16 {
		t.Fatalf("projectile = %+v", ps)
	}

	if sys.ManualFire(flower) {
		t.Error("冷却中不应发射")
	}
	w.advance(8)
	if !sys.ManualFire(flower) {
		t.Error("冷却结束应可发射")
	}
	if sys.ManualFire(gun) {
		t.Error("不支持手动发射的塔应被拒绝")
	}
	if sys.ManualFire(999) {
		t.Error("不存在的塔应被拒绝")
	}
}
