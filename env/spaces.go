package env

import (
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/randengine"
)

// 动作取值
const (
	ActionKeep   = 0 // 保持当前相位
	ActionSwitch = 1 // 请求切换相位
)

// ObservationSize 观测向量长度：[N车辆数, S车辆数, E车辆数, W车辆数, 相位标志]
const ObservationSize = 5

// ActionSpace 离散动作空间{0, ..., N-1}
type ActionSpace struct {
	N int `json:"n"`
}

// Contains 动作是否属于动作空间
func (s ActionSpace) Contains(action int) bool {
	return action >= 0 && action < s.N
}

// Sample 从动作空间中均匀采样
func (s ActionSpace) Sample(g *randengine.Engine) int {
	return g.Intn(s.N)
}

// ObservationSpace 观测空间
// 说明：车辆数的声明上界为10，实际取值受车道容量限制，不做截断
type ObservationSpace struct {
	Low   float32 `json:"low"`
	High  float32 `json:"high"`
	Shape [1]int  `json:"shape"`
}

// Contains 观测是否落在声明范围内
func (s ObservationSpace) Contains(obs Observation) bool {
	for _, v := range obs {
		if v < s.Low || v > s.High {
			return false
		}
	}
	return true
}

var (
	// DefaultActionSpace 保持/切换
	DefaultActionSpace = ActionSpace{N: 2}
	// DefaultObservationSpace 5维，取值[0, 10]
	DefaultObservationSpace = ObservationSpace{Low: 0, High: 10, Shape: [1]int{ObservationSize}}
)
