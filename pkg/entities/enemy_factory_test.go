package entities

import (
	"math"
	"testing"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/config"
	"github.com/decker502/tdcore/pkg/ecs"
	"github.com/decker502/tdcore/pkg/types"
)

func intPtr(v int) *int { return &v }

func TestNewEnemy(t *testing.T) {
	gs, catalog := newTestState(t)
	gs.Time = 3

	tests := []struct {
		name       string
		group      config.GroupConfig
		start      float64
		wantHP     float64
		wantReward int
		wantLeak   int
		wantLane   int
		wantPos    types.Position
		hasAbility bool
	}{
		{
			name:       "普通敌人使用波次奖励",
			group:      config.GroupConfig{Kind: types.EnemyBasic, Count: 1, Level: 1, Reward: 5},
			wantHP:     math.Round(50 * 1.02),
			wantReward: 5,
			wantLeak:   1,
			wantPos:    types.Position{X: 0, Y: 0},
		},
		{
			name:       "奖励为 0 时使用种类默认值",
			group:      config.GroupConfig{Kind: types.EnemyArmored, Count: 1, Level: 10},
			wantHP:     math.Round(150 * 1.2),
			wantReward: 60,
			wantLeak:   2,
			wantPos:    types.Position{X: 0, Y: 0},
		},
		{
			name:       "路线与泄漏伤害覆盖",
			group:      config.GroupConfig{Kind: types.EnemyFast, Count: 1, Lane: intPtr(1), LeakDamage: intPtr(4)},
			wantHP:     30,
			wantReward: 42,
			wantLeak:   4,
			wantLane:   1,
			wantPos:    types.Position{X: 0, Y: 6},
		},
		{
			name:       "治疗者带能力计时",
			group:      config.GroupConfig{Kind: types.EnemyHealer, Count: 1},
			start:      7,
			wantHP:     140,
			wantReward: 48,
			wantLeak:   1,
			wantPos:    types.Position{X: 6, Y: 1},
			hasAbility: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em := ecs.NewEntityManager()
			id, err := NewEnemy(em, gs, catalog, EnemySpec{Group: tt.group, StartDistance: tt.start})
			if err != nil {
				t.Fatalf("NewEnemy() error = %v", err)
			}
			if id == 0 {
				t.Fatal("Expected valid entity ID, got 0")
			}

			enemy, ok := ecs.GetComponent[*components.EnemyComponent](em, id)
			if !ok {
				t.Fatal("敌人缺少 EnemyComponent")
			}
			if enemy.Reward != tt.wantReward || enemy.LeakDamage != tt.wantLeak {
				t.Errorf("reward/leak = %d/%d, want %d/%d", enemy.Reward, enemy.LeakDamage, tt.wantReward, tt.wantLeak)
			}
			if enemy.SpawnTime != 3 {
				t.Errorf("SpawnTime = %v, want 3", enemy.SpawnTime)
			}

			health, _ := ecs.GetComponent[*components.HealthComponent](em, id)
			if health.Current != tt.wantHP || health.Max != tt.wantHP {
				t.Errorf("hp = %v/%v, want %v", health.Current, health.Max, tt.wantHP)
			}

			lp, _ := ecs.GetComponent[*components.LaneProgressComponent](em, id)
			if lp.Lane != tt.wantLane {
				t.Errorf("lane = %d, want %d", lp.Lane, tt.wantLane)
			}
			if lp.Traveled != tt.start {
				t.Errorf("traveled = %v, want %v", lp.Traveled, tt.start)
			}

			pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
			if math.Abs(pos.X-tt.wantPos.X) > 1e-9 || math.Abs(pos.Y-tt.wantPos.Y) > 1e-9 {
				t.Errorf("pos = %+v, want %+v", pos.Position, tt.wantPos)
			}

			ability, has := ecs.GetComponent[*components.AbilityComponent](em, id)
			if has != tt.hasAbility {
				t.Fatalf("has ability = %v, want %v", has, tt.hasAbility)
			}
			if has && ability.NextTrigger != 3+3.5 {
				t.Errorf("NextTrigger = %v, want 6.5", ability.NextTrigger)
			}
			if !ecs.HasComponent[*components.StatusEffectComponent](em, id) {
				t.Error("敌人缺少 StatusEffectComponent")
			}
		})
	}
}

func TestNewEnemyErrors(t *testing.T) {
	gs, catalog := newTestState(t)
	em := ecs.NewEntityManager()

	t.Run("路线不存在", func(t *testing.T) {
		_, err := NewEnemy(em, gs, catalog, EnemySpec{Group: config.GroupConfig{Kind: types.EnemyBasic, Lane: intPtr(5)}})
		if err == nil {
			t.Fatal("expected error for missing lane")
		}
	})

	t.Run("未知种类", func(t *testing.T) {
		_, err := NewEnemy(em, gs, catalog, EnemySpec{Group: config.GroupConfig{Kind: types.EnemyUnknown}})
		if err == nil {
			t.Fatal("expected error for unknown kind")
		}
	})

	if em.Count() != 0 {
		t.Errorf("失败时不应创建实体, got %d", em.Count())
	}
}
