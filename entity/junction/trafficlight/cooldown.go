// 提供带最短驻留时间的两相位信号灯
// 相位只在外部请求时切换，两次被接受的切换之间至少间隔一个冷却时间，没有全红相位
package trafficlight

import (
	"fmt"
	"time"

	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity"
)

// cooldownTrafficLight 冷却信号灯控制器
// 功能：维护南北/东西两相位，按请求切换，冷却期内的请求静默丢弃
type cooldownTrafficLight struct {
	cooldown time.Duration // 最短驻留时间

	phase          entity.Phase  // 当前相位
	lastSwitchTime time.Duration // 上一次接受切换的时间
	switchCount    int32         // 已接受的切换次数
}

// NewCooldownTrafficLight 创建冷却信号灯控制器
// 参数：cooldown-两次切换之间的最短间隔
// 返回：处于初始状态的控制器
func NewCooldownTrafficLight(cooldown time.Duration) *cooldownTrafficLight {
	l := &cooldownTrafficLight{cooldown: cooldown}
	l.Reset()
	return l
}

func (l *cooldownTrafficLight) String() string {
	return fmt.Sprintf("TrafficLight{Phase:%v, Switches:%d, Last:%v}", l.phase, l.switchCount, l.lastSwitchTime)
}

// Reset 恢复初始状态
// 说明：上一次切换时间设为负的冷却时间，使reset后的第一次请求总能被接受
func (l *cooldownTrafficLight) Reset() {
	l.phase = entity.PhaseNSGreen
	l.lastSwitchTime = -l.cooldown
	l.switchCount = 0
}

func (l *cooldownTrafficLight) Phase() entity.Phase {
	return l.phase
}

func (l *cooldownTrafficLight) SwitchCount() int32 {
	return l.switchCount
}

func (l *cooldownTrafficLight) LastSwitchTime() time.Duration {
	return l.lastSwitchTime
}

// RequestSwitch 请求切换相位
// 参数：now-当前仿真时间
// 返回：请求是否被接受
func (l *cooldownTrafficLight) RequestSwitch(now time.Duration) bool {
	if now-l.lastSwitchTime < l.cooldown {
		return false
	}
	l.phase = l.phase.Other()
	l.switchCount++
	l.lastSwitchTime = now
	return true
}
