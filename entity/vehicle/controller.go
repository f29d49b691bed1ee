package vehicle

import (
	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity"
)

// Action 车辆动作结构体
// 功能：描述车辆本步允许的最大位移
type Action struct {
	D float64 // 本步位移（像素），0表示停车
}

// Update 更新车辆动作
// 功能：采用取最小的方式合并多个策略的动作，任一策略要求停车即停车
func (a *Action) Update(others ...Action) {
	for _, o := range others {
		if o.D < a.D {
			a.D = o.D
		}
	}
}

// decide 计算本步动作
// 算法说明：
// 1. 初始动作为按车速前进
// 2. 信号灯策略：非绿灯且车头位于停车区内则停车
// 3. 跟车策略：与前车间距小于最小间距则停车
func (c *Car) decide(phase entity.Phase, gap float64) Action {
	ac := Action{D: c.speed}
	ac.Update(
		c.policySignal(phase),
		c.policyCarFollow(gap),
	)
	return ac
}

// policySignal 策略1：信号灯遵从
// 功能：本方向不是绿灯，且车头已进入停车区（停车线到路口边界之间，长度为车长+停车余量）而尚未越过路口边界时停车
// 返回：ac-停车时D为0，否则无约束
func (c *Car) policySignal(phase entity.Phase) (ac Action) {
	ac.D = mathutil.INF
	if phase.Green(c.direction) {
		return
	}
	if inStopZone(c.direction, c.position.X, c.position.Y) {
		ac.D = 0
	}
	return
}

// inStopZone 判断车辆是否位于停车区内
func inStopZone(d entity.Direction, x, y float64) bool {
	switch d {
	case entity.South:
		return y >= entity.IntersectionY1-entity.CarLength-entity.StopMargin && y < entity.IntersectionY1
	case entity.North:
		return y <= entity.IntersectionY2+entity.StopMargin && y+entity.CarLength > entity.IntersectionY2
	case entity.East:
		return x >= entity.IntersectionX1-entity.CarLength-entity.StopMargin && x < entity.IntersectionX1
	case entity.West:
		return x <= entity.IntersectionX2+entity.StopMargin && x+entity.CarLength > entity.IntersectionX2
	}
	return false
}

// policyCarFollow 策略2：跟车
// 功能：前车车尾与本车车头的间距小于最小跟车间距时停车
// 参数：gap-车头到前车车尾的距离，本车是车道第一辆车时为mathutil.INF
// 返回：ac-停车时D为0，否则无约束
func (c *Car) policyCarFollow(gap float64) (ac Action) {
	ac.D = mathutil.INF
	if gap < entity.CarGap {
		ac.D = 0
	}
	return
}
