package junction

import (
	"fmt"

	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity/junction/trafficlight"
)

// Junction 信号灯控制的十字路口
// 功能：持有路口的信号灯，对外提供相位读取与切换请求
type Junction struct {
	ctx entity.ITaskContext

	trafficLight ITrafficLight // 信号灯模块
}

// New 创建路口
// 功能：按运行时配置的冷却时间创建两相位信号灯
// 参数：ctx-任务上下文
func New(ctx entity.ITaskContext) *Junction {
	return &Junction{
		ctx:          ctx,
		trafficLight: trafficlight.NewCooldownTrafficLight(ctx.RuntimeConfig().SwitchCooldown),
	}
}

func (j *Junction) String() string {
	return fmt.Sprintf("Junction{%v}", j.trafficLight)
}

// Init 信号灯恢复初始状态
func (j *Junction) Init() {
	j.trafficLight.Reset()
}

// Phase 当前相位
func (j *Junction) Phase() entity.Phase {
	return j.trafficLight.Phase()
}

// SwitchCount 本episode已接受的切换次数
func (j *Junction) SwitchCount() int32 {
	return j.trafficLight.SwitchCount()
}

// TrafficLight 获取只读信号灯
func (j *Junction) TrafficLight() ITrafficLightGetter {
	return j.trafficLight
}

// RequestSwitch 在当前仿真时间请求切换信号灯相位
// 返回：请求是否被接受，冷却期内的请求不报错，直接丢弃
func (j *Junction) RequestSwitch() bool {
	now := j.ctx.Clock().Now()
	ok := j.trafficLight.RequestSwitch(now)
	if ok {
		log.Debugf("switch to %v at %v (count=%d)", j.trafficLight.Phase(), now, j.trafficLight.SwitchCount())
	} else {
		log.Tracef("switch request at %v dropped, last switch at %v", now, j.trafficLight.LastSwitchTime())
	}
	return ok
}
