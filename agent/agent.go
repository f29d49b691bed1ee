// Package agent 提供用于驱动环境的基线决策器
package agent

import (
	"fmt"

	"github.com/tsinghua-fib-lab/agentsociety-tlenv/env"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/randengine"
)

// 决策器名
const (
	NameRandom      = "random"
	NameMaxPressure = "max_pressure"
)

// Agent 根据观测给出动作
type Agent interface {
	Reset()
	Act(obs env.Observation) int
}

// New 根据名称创建决策器
// 参数：name-决策器名，space-动作空间，seed-随机决策器的随机数种子
func New(name string, space env.ActionSpace, seed uint64) (Agent, error) {
	switch name {
	case NameRandom:
		return NewRandom(space, seed), nil
	case NameMaxPressure:
		return NewMaxPressure(), nil
	}
	return nil, fmt.Errorf("agent: unknown agent %q", name)
}

// Random 随机决策器
// 说明：持有独立的随机数引擎，不影响仿真的随机数序列
type Random struct {
	space     env.ActionSpace
	generator *randengine.Engine
}

// NewRandom 创建随机决策器
func NewRandom(space env.ActionSpace, seed uint64) *Random {
	return &Random{space: space, generator: randengine.New(seed)}
}

func (a *Random) Reset() {}

// Act 从动作空间均匀采样
func (a *Random) Act(env.Observation) int {
	return a.space.Sample(a.generator)
}
