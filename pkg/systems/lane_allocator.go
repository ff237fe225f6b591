package systems

import (
	"log"
	"math/rand"

	"github.com/decker502/tdcore/pkg/components"
	"github.com/decker502/tdcore/pkg/ecs"
)

// LaneAllocator 路线分配器
//
// 平滑权重分配：刚被选过的路线概率降低，很久没被选的路线概率升高，
// 使程序化生成的敌人组在多条路线之间分布自然且避免连续重复
type LaneAllocator struct {
	entityManager *ecs.EntityManager
	laneEntities  []ecs.EntityID
	rng           *rand.Rand
}

// NewLaneAllocator 创建路线分配器
//
// 参数:
//   - em: 保存路线状态的实体管理器
//   - rng: 随机源（对局种子派生，保证可复现）
func NewLaneAllocator(em *ecs.EntityManager, rng *rand.Rand) *LaneAllocator {
	return &LaneAllocator{
		entityManager: em,
		laneEntities:  make([]ecs.EntityID, 0),
		rng:           rng,
	}
}

// InitializeLanes 初始化所有路线的状态组件
//
// 参数:
//   - laneCount: 路线数量
//   - initialWeight: 初始权重
func (la *LaneAllocator) InitializeLanes(laneCount int, initialWeight float64) {
	la.laneEntities = make([]ecs.EntityID, laneCount)

	for i := 0; i < laneCount; i++ {
		entity := la.entityManager.CreateEntity()
		ecs.AddComponent(la.entityManager, entity, &components.LaneStateComponent{
			LaneIndex: i,
			Weight:    initialWeight,
		})
		la.laneEntities[i] = entity
	}
}

// SelectLane 按平滑权重选择一条路线并更新计数器
//
// 返回:
//   - 选中的路线索引（0-based）；没有可选路线时返回 0
func (la *LaneAllocator) SelectLane() int {
	states := la.states()
	legal := make([]*components.LaneStateComponent, 0, len(states))
	for _, st := range states {
		if st.Weight > 0 {
			legal = append(legal, st)
		}
	}
	if len(legal) == 0 {
		return 0
	}
	if len(legal) == 1 {
		la.UpdateLaneCounters(legal[0].LaneIndex)
		return legal[0].LaneIndex
	}

	weights := make([]float64, len(legal))
	for i, st := range legal {
		weights[i] = st.Weight
	}
	weightP := CalculateWeightP(weights)

	smooth := make([]float64, len(legal))
	total := 0.0
	for i, st := range legal {
		pLast := CalculatePLast(st.LastPicked, weightP[i])
		pSecondLast := CalculatePSecondLast(st.SecondLastPicked, weightP[i])
		smooth[i] = CalculateSmoothWeight(weightP[i], pLast, pSecondLast)
		total += smooth[i]
	}
	if total <= 0 {
		log.Printf("[LaneAllocator] WARNING: All smooth weights are zero, using lane %d", legal[0].LaneIndex)
		la.UpdateLaneCounters(legal[0].LaneIndex)
		return legal[0].LaneIndex
	}

	selected := legal[len(legal)-1].LaneIndex
	r := la.rng.Float64() * total
	acc := 0.0
	for i, sw := range smooth {
		acc += sw
		if acc >= r {
			selected = legal[i].LaneIndex
			break
		}
	}
	la.UpdateLaneCounters(selected)
	return selected
}

// UpdateLaneCounters 更新选中路线的计数器
//
//  1. 所有权重 > 0 的路线 LastPicked 和 SecondLastPicked 均 +1
//  2. 选中路线的 SecondLastPicked 取选中前的 LastPicked
//  3. 选中路线的 LastPicked 归零
func (la *LaneAllocator) UpdateLaneCounters(selectedLane int) {
	states := la.states()
	for _, st := range states {
		if st.Weight > 0 {
			st.LastPicked++
			st.SecondLastPicked++
		}
	}
	for _, st := range states {
		if st.LaneIndex == selectedLane {
			st.SecondLastPicked = st.LastPicked - 1
			st.LastPicked = 0
			break
		}
	}
}

func (la *LaneAllocator) states() []*components.LaneStateComponent {
	out := make([]*components.LaneStateComponent, 0, len(la.laneEntities))
	for _, entity := range la.laneEntities {
		if st, ok := ecs.GetComponent[*components.LaneStateComponent](la.entityManager, entity); ok {
			out = append(out, st)
		}
	}
	return out
}

// CalculateWeightP 计算权重占比
func CalculateWeightP(laneWeights []float64) []float64 {
	sum := 0.0
	for _, w := range laneWeights {
		sum += w
	}

	weightP := make([]float64, len(laneWeights))
	for i, w := range laneWeights {
		if sum > 0 {
			weightP[i] = w / sum
		}
	}
	return weightP
}

// CalculatePLast 计算影响因子 PLast
//
// 公式: PLast = (6 × LastPicked × WeightP + 6 × WeightP - 3) / 4
func CalculatePLast(lastPicked int, weightP float64) float64 {
	return (6.0*float64(lastPicked)*weightP + 6.0*weightP - 3.0) / 4.0
}

// CalculatePSecondLast 计算影响因子 PSecondLast
//
// 公式: PSecondLast = (SecondLastPicked × WeightP + WeightP - 1) / 4
func CalculatePSecondLast(secondLastPicked int, weightP float64) float64 {
	return (float64(secondLastPicked)*weightP + weightP - 1.0) / 4.0
}

// CalculateSmoothWeight 计算平滑权重
//
// 公式: SmoothWeight = WeightP × clamp(PLast + PSecondLast, 0.01, 100)
func CalculateSmoothWeight(weightP float64, pLast float64, pSecondLast float64) float64 {
	if weightP < 1e-6 {
		return 0
	}

	sum := pLast + pSecondLast
	if sum < 0.01 {
		sum = 0.01
	} else if sum > 100.0 {
		sum = 100.0
	}

	return weightP * sum
}
