package components

import "github.com/decker502/tdcore/pkg/types"

// EnemyComponent 标识实体为敌人
// 保存不随时间变化的基础数据，移动状态见 LaneProgressComponent，
// 状态效果见 StatusEffectComponent
type EnemyComponent struct {
	Kind       types.EnemyKind // 敌人种类
	Level      int             // 等级，只影响血量
	Speed      float64         // 基础速度（格/秒），与等级无关
	Reward     int             // 击杀奖励
	LeakDamage int             // 到达终点时扣除的生命
	SpawnTime  float64         // 生成时间

	// RewardPaid 击杀奖励是否已发放
	// 无论哪个伤害来源完成击杀，奖励只发放一次
	RewardPaid bool
}
