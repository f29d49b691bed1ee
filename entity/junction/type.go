package junction

import (
	"time"

	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity"
)

// 依赖倒置，表达junction对信号灯实现的接口需求

// 给交通参与者和观测提供的信控读取接口
type ITrafficLightGetter interface {
	Phase() entity.Phase           // 当前相位
	SwitchCount() int32            // 本episode已接受的切换次数
	LastSwitchTime() time.Duration // 上一次接受切换的时间
}

// 信号灯接口
type ITrafficLight interface {
	ITrafficLightGetter
	Reset()                               // 恢复初始状态（南北绿灯，立即可切换）
	RequestSwitch(now time.Duration) bool // 请求切换相位，冷却期内的请求被丢弃
}
