// Package env 提供单路口信号灯控制的强化学习环境接口（reset/step）
package env

import (
	"errors"
	"fmt"

	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/task"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/config"
)

var (
	ErrInvalidAction = errors.New("env: invalid action")
)

// Observation [N车辆数, S车辆数, E车辆数, W车辆数, 相位标志]，相位标志0为南北绿灯，1为东西绿灯
type Observation [ObservationSize]float32

// Info 附加信息
type Info map[string]any

// Env 强化学习环境
// 功能：包装仿真任务上下文，提供reset/step接口，同一个Env被无界面训练与可视化演示共用
// 说明：非线程安全，并发访问由调用方加锁
type Env struct {
	ctx *task.Context

	ActionSpace      ActionSpace
	ObservationSpace ObservationSpace
}

// New 创建环境
// 参数：rc-运行时配置
func New(rc *config.RuntimeConfig) *Env {
	return &Env{
		ctx:              task.NewContext(rc),
		ActionSpace:      DefaultActionSpace,
		ObservationSpace: DefaultObservationSpace,
	}
}

// Context 获取底层仿真任务上下文（只读使用）
func (e *Env) Context() *task.Context {
	return e.ctx
}

// Reset 开始新的episode
// 参数：seed-非nil时重设随机数种子
// 返回：初始观测（全部车道为空，南北绿灯）与空的附加信息
func (e *Env) Reset(seed *uint64) (Observation, Info) {
	e.ctx.Init(seed)
	return e.Observation(), Info{}
}

// Step 执行一个动作并推进一步
// 参数：action-0保持，1请求切换（冷却期内的请求被静默丢弃）
// 返回：观测、奖励、是否终止、是否截断（总为false）、附加信息、错误
// 说明：动作不在{0,1}内时返回ErrInvalidAction，状态不变
func (e *Env) Step(action int) (obs Observation, reward float64, terminated, truncated bool, info Info, err error) {
	if !e.ActionSpace.Contains(action) {
		err = fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidAction, action, e.ActionSpace.N)
		return
	}
	res := e.ctx.Step(action == ActionSwitch)
	info = Info{
		"switched":     res.Switched,
		"switch_count": e.ctx.Junction().SwitchCount(),
		"entered":      res.Reward.Entered,
		"not_entered":  res.Reward.NotEntered,
		"long_waits":   res.Reward.LongWaits,
	}
	return e.Observation(), res.Reward.Total, res.Terminated, false, info, nil
}

// Observation 当前观测
func (e *Env) Observation() Observation {
	var obs Observation
	for i, n := range e.ctx.LaneManager().Counts() {
		obs[i] = float32(n)
	}
	if e.ctx.Junction().Phase() == entity.PhaseEWGreen {
		obs[ObservationSize-1] = 1
	}
	return obs
}

// Snapshot 渲染用只读快照
func (e *Env) Snapshot() task.Snapshot {
	return e.ctx.Snapshot()
}

// Stats 本episode累计统计
func (e *Env) Stats() task.EpisodeStats {
	return e.ctx.Stats()
}

// Done 当前episode是否已终止
func (e *Env) Done() bool {
	return e.ctx.Done()
}
