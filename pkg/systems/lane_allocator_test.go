package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/ecs"
)

// TestCalculateWeightP 测试权重占比计算
func TestCalculateWeightP(t *testing.T) {
	tests := []struct {
		name     string
		weights  []float64
		expected []float64
	}{
		{"均匀权重", []float64{1, 1, 1, 1}, []float64{0.25, 0.25, 0.25, 0.25}},
		{"全零权重", []float64{0, 0}, []float64{0, 0}},
		{"不均匀权重", []float64{1, 3}, []float64{0.25, 0.75}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateWeightP(tt.weights)
			for i := range result {
				if math.Abs(result[i]-tt.expected[i]) > 1e-9 {
					t.Errorf("index %d: expected %.4f, got %.4f", i, tt.expected[i], result[i])
				}
			}
		})
	}
}

// TestCalculateSmoothWeight 测试平滑权重的截断
func TestCalculateSmoothWeight(t *testing.T) {
	tests := []struct {
		name        string
		weightP     float64
		pLast       float64
		pSecondLast float64
		expected    float64
	}{
		{"正常范围", 0.5, 1.0, 0.5, 0.75},
		{"下限截断", 0.5, -3, -1, 0.005},
		{"上限截断", 0.5, 150, 10, 50},
		{"权重过小", 1e-7, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSmoothWeight(tt.weightP, tt.pLast, tt.pSecondLast)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %.4f, got %.4f", tt.expected, got)
			}
		})
	}
}

func newAllocator(lanes int, seed int64) (*LaneAllocator, *ecs.EntityManager) {
	em := ecs.NewEntityManager()
	la := NewLaneAllocator(em, rand.New(rand.NewSource(seed)))
	la.InitializeLanes(lanes, 1)
	return la, em
}

// TestUpdateLaneCounters 测试计数器更新
func TestUpdateLaneCounters(t *testing.T) {
	la, _ := newAllocator(2, 1)
	la.UpdateLaneCounters(1)

	states := la.states()
	if states[0].LastPicked != 1 || states[0].SecondLastPicked != 1 {
		t.Errorf("lane 0 = %+v", states[0])
	}
	if states[1].LastPicked != 0 || states[1].SecondLastPicked != 0 {
		t.Errorf("lane 1 = %+v", states[1])
	}
}

// TestSelectLane 测试路线选择
func TestSelectLane(t *testing.T) {
	t.Run("两条路线都会被选中", func(t *testing.T) {
		la, _ := newAllocator(2, 42)
		counts := make([]int, 2)
		for i := 0; i < 200; i++ {
			lane := la.SelectLane()
			if lane < 0 || lane > 1 {
				t.Fatalf("lane = %d out of range", lane)
			}
			counts[lane]++
		}
		for lane, n := range counts {
			if n < 50 {
				t.Errorf("lane %d selected %d times, distribution too skewed", lane, n)
			}
		}
	})

	t.Run("单条路线", func(t *testing.T) {
		la, _ := newAllocator(1, 1)
		for i := 0; i < 5; i++ {
			if lane := la.SelectLane(); lane != 0 {
				t.Fatalf("lane = %d, want 0", lane)
			}
		}
	})

	t.Run("没有路线", func(t *testing.T) {
		la, _ := newAllocator(0, 1)
		if lane := la.SelectLane(); lane != 0 {
			t.Errorf("lane = %d, want 0", lane)
		}
	})

	t.Run("权重为零的路线不会被选中", func(t *testing.T) {
		la, em := newAllocator(3, 7)
		st, _ := ecs.GetComponent[*components.LaneStateComponent](em, la.laneEntities[1])
		st.Weight = 0
		for i := 0; i < 50; i++ {
			if lane := la.SelectLane(); lane == 1 {
				t.Fatal("selected a zero-weight lane")
			}
		}
	})

	t.Run("同一种子结果相同", func(t *testing.T) {
		a, _ := newAllocator(3, 99)
		b, _ := newAllocator(3, 99)
		for i := 0; i < 30; i++ {
			if x, y := a.SelectLane(), b.SelectLane(); x != y {
				t.Fatalf("step %d: %d != %d", i, x, y)
			}
		}
	})
}
