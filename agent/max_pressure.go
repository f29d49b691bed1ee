// 提供Max Pressure基线决策器
// 每隔固定步数比较南北与东西方向的排队车辆数，红灯方向压力更大时请求切换
package agent

import (
	"flag"

	"github.com/tsinghua-fib-lab/agentsociety-tlenv/env"
)

var (
	phaseSteps     = flag.Int("agent.mp_phase_steps", 40, "最大压力法每次评估间隔的步数")
	maxRepeatCount = flag.Int("agent.mp_max_repeat_count", 6, "最大压力法每个相位最多重复的次数")
)

// MaxPressure 最大压力决策器
// 功能：按观测中的车辆数计算两个相位的压力，选取压力最大的相位
type MaxPressure struct {
	phaseSteps     int // 评估间隔
	maxRepeatCount int // 同一相位最多连续保持的评估次数

	elapsed     int // 距上一次评估的步数
	repeatCount int // 当前相位已连续保持的评估次数
}

// NewMaxPressure 按命令行参数创建最大压力决策器
func NewMaxPressure() *MaxPressure {
	return &MaxPressure{
		phaseSteps:     *phaseSteps,
		maxRepeatCount: *maxRepeatCount,
	}
}

func (a *MaxPressure) Reset() {
	a.elapsed = 0
	a.repeatCount = 0
}

// Act 计算动作
// 算法说明：
// 1. 未到评估时间则保持
// 2. 红灯方向压力更大则切换
// 3. 压力最大的仍是当前相位时延长，达到最大重复次数且红灯方向有车时强制切换
func (a *MaxPressure) Act(obs env.Observation) int {
	a.elapsed++
	if a.elapsed < a.phaseSteps {
		return env.ActionKeep
	}
	a.elapsed = 0

	ns := obs[0] + obs[1]
	ew := obs[2] + obs[3]
	green, red := ns, ew
	if obs[env.ObservationSize-1] == 1 {
		green, red = ew, ns
	}
	if red > green || (a.repeatCount >= a.maxRepeatCount && red > 0) {
		a.repeatCount = 1
		return env.ActionSwitch
	}
	a.repeatCount++
	return env.ActionKeep
}
