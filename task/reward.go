package task

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity/lane"
)

// RewardBreakdown 一步奖励的组成
type RewardBreakdown struct {
	Entered       int  // 曾进入路口的在场车辆数
	NotEntered    int  // 尚未进入路口的在场车辆数
	LongWaits     int  // 触发长时间等待惩罚的次数（按步计为0或1，按车道计为车道数）
	OverSwitching bool // 切换次数是否已达到上限
	Completed     bool // 本步是否恰好到达总步数

	Crossed    float64 // 通行奖励
	Waiting    float64 // 等待惩罚
	LongWait   float64 // 长时间等待惩罚
	OverSwitch float64 // 频繁切换惩罚
	Completion float64 // 完成奖励
	Total      float64 // 合计
}

// reward 根据推进与移除后的状态计算本步奖励
// 算法说明：
// 1. 在场车辆中已进入路口的每辆+Crossed，未进入的每辆-Waiting
// 2. 存在连续等待不少于LongWaitLimit的车辆时-LongWait（按配置每步一次或每车道一次）
// 3. 已接受的切换次数不少于OverSwitchCount时每步-OverSwitch
// 4. 步数恰好到达总步数时+CompletionBonus
// 说明：奖励不做归一化
func (ctx *Context) reward() RewardBreakdown {
	p := ctx.runtimeConfig.Reward
	now := ctx.clock.Now()
	cars := ctx.laneManager.Cars()

	r := RewardBreakdown{}
	r.Entered = lo.CountBy(cars, func(c entity.ICar) bool {
		return c.EnteredIntersection()
	})
	r.NotEntered = len(cars) - r.Entered

	longWait := func(c entity.ICar) bool {
		return c.Waiting() && c.WaitingFor(now) >= p.LongWaitLimit
	}
	if p.LongWaitPerLane {
		r.LongWaits = lo.CountBy(ctx.laneManager.Lanes(), func(l *lane.Lane) bool {
			return lo.SomeBy(l.Cars(), longWait)
		})
	} else if lo.SomeBy(cars, longWait) {
		r.LongWaits = 1
	}

	r.OverSwitching = ctx.junction.SwitchCount() >= p.OverSwitchCount
	r.Completed = ctx.clock.InternalStep == ctx.clock.END_STEP

	r.Crossed = p.Crossed * float64(r.Entered)
	r.Waiting = -p.Waiting * float64(r.NotEntered)
	r.LongWait = -p.LongWait * float64(r.LongWaits)
	if r.OverSwitching {
		r.OverSwitch = -p.OverSwitch
	}
	if r.Completed {
		r.Completion = p.CompletionBonus
	}
	r.Total = r.Crossed + r.Waiting + r.LongWait + r.OverSwitch + r.Completion
	return r
}
