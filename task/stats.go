package task

// EpisodeStats episode累计统计
type EpisodeStats struct {
	Seed            uint64  // 本episode使用的随机数种子（未重设时为上一次设置的种子）
	Steps           int32   // 已执行步数
	TotalReward     float64 // 累计奖励
	Spawned         int     // 累计生成车辆数
	Exited          int     // 累计驶出车辆数
	SwitchCount     int32   // 已接受的切换次数
	LongWaitSteps   int32   // 触发长时间等待惩罚的步数
	OverSwitchSteps int32   // 触发频繁切换惩罚的步数
}

func (s *EpisodeStats) record(res StepResult, switchCount int32) {
	s.Steps++
	s.TotalReward += res.Reward.Total
	s.Spawned += res.Spawned
	s.Exited += res.Exited
	s.SwitchCount = switchCount
	if res.Reward.LongWaits > 0 {
		s.LongWaitSteps++
	}
	if res.Reward.OverSwitching {
		s.OverSwitchSteps++
	}
}
