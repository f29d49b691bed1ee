package task

import (
	"flag"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// StepResult 一步仿真的结果
type StepResult struct {
	Switched   bool            // 本步信号灯是否切换
	Spawned    int             // 本步生成车辆数
	Exited     int             // 本步驶出画面被移除的车辆数
	Reward     RewardBreakdown // 奖励明细
	Terminated bool            // 是否到达episode终点
}

// prepare 准备阶段，每步执行一次
// 功能：推进时钟并处理外部动作
// 参数：switchRequested-本步是否请求切换信号灯
// 返回：切换请求是否被接受
// 算法说明：
// 1. 更新时钟：增加内部步数并计算当前时间
// 2. 心跳日志：定期输出系统状态信息
// 3. 切换请求交给信号灯，冷却期内的请求被丢弃
func (ctx *Context) prepare(switchRequested bool) bool {
	ctx.clock.Advance()

	if *heartBeatInterval > 0 && ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		log.Infof(
			"STEP: %d(%v) phase=%v cars=%v switches=%d reward=%.2f",
			ctx.clock.InternalStep, ctx.clock,
			ctx.junction.Phase(), ctx.laneManager.Counts(),
			ctx.junction.SwitchCount(), ctx.stats.TotalReward,
		)
	}

	if !switchRequested {
		return false
	}
	return ctx.junction.RequestSwitch()
}

// update 更新阶段，每步执行一次
// 功能：生成车辆，逐车道推进并移除驶出画面的车辆
// 返回：本步生成与移除的车辆数
func (ctx *Context) update() (spawned, exited int) {
	spawned = len(ctx.laneManager.Spawn())
	exited = len(ctx.laneManager.Update(ctx.junction.Phase()))
	return
}

// Step 推进一步仿真
// 功能：按固定顺序完成一个仿真步：动作、生成、推进与移除、奖励、终止判断
// 参数：switchRequested-本步是否请求切换信号灯
// 返回：本步结果
// 说明：等待超时与频繁切换只扣分，不会结束episode；到达总步数后继续调用仍保持终止状态
func (ctx *Context) Step(switchRequested bool) StepResult {
	res := StepResult{}
	res.Switched = ctx.prepare(switchRequested)
	res.Spawned, res.Exited = ctx.update()
	res.Reward = ctx.reward()
	res.Terminated = ctx.clock.Done()

	ctx.lastReward = res.Reward
	ctx.stats.record(res, ctx.junction.SwitchCount())
	log.Debugf("step %d: %+v", ctx.clock.InternalStep, res)
	if res.Terminated && ctx.clock.InternalStep == ctx.clock.END_STEP {
		log.Infof("episode complete: %+v", ctx.stats)
	}
	return res
}
