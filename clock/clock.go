package clock

import (
	"fmt"
	"time"
)

// Clock 仿真时钟
// 功能：管理仿真系统的时间推进，每步按固定间隔前进
// 说明：信号灯冷却与车辆等待计时都从该时钟读取时间，与真实流逝时间解耦
type Clock struct {
	DT       time.Duration // 每个模拟步时间间隔
	END_STEP int32         // 结束步，模拟区间[0, END)

	T            time.Duration // 当前时间
	InternalStep int32         // 当前步数
}

// New 根据配置创建新的时钟实例
// 参数：dt-每步时间间隔，total-总步数
// 返回：初始化完成的时钟实例
func New(dt time.Duration, total int32) *Clock {
	c := &Clock{
		DT:       dt,
		END_STEP: total,
	}
	c.Init()
	return c
}

// Init 重置时钟状态
// 说明：步数归零，时间归零
func (c *Clock) Init() {
	c.InternalStep = 0
	c.T = 0
}

// Advance 时钟前进一步
// 说明：时间由步数乘以间隔计算，不做累加，避免误差积累
func (c *Clock) Advance() {
	c.InternalStep++
	c.T = time.Duration(c.InternalStep) * c.DT
}

// Now 获取当前仿真时间
func (c *Clock) Now() time.Duration {
	return c.T
}

// Done 判断是否已到达结束步
func (c *Clock) Done() bool {
	return c.InternalStep >= c.END_STEP
}

// String 获取时钟的字符串表示
// 功能：将当前时间格式化为可读的字符串（HH:MM:SS.mmm）
func (c *Clock) String() string {
	t := c.T
	h := t / time.Hour
	t -= h * time.Hour
	m := t / time.Minute
	t -= m * time.Minute
	s := t / time.Second
	t -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d.%03d", int64(h), int64(m), int64(s), int64(t/time.Millisecond))
}
