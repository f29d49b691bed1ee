package entity

import (
	"fmt"
	"time"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/container"
)

// Direction 车辆驶入路口的方向
// 说明：North表示自下而上行驶（驶向北方），其余同理
type Direction int32

const (
	North Direction = iota // 向北行驶（y减小）
	South                  // 向南行驶（y增大）
	East                   // 向东行驶（x增大）
	West                   // 向西行驶（x减小）
)

// Directions 全部方向，顺序与观测向量一致
var Directions = [4]Direction{North, South, East, West}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case East:
		return "E"
	case West:
		return "W"
	}
	return fmt.Sprintf("Direction(%d)", int32(d))
}

// Phase 信号灯相位
type Phase int32

const (
	PhaseNSGreen Phase = iota // 南北向绿灯
	PhaseEWGreen              // 东西向绿灯
)

func (p Phase) String() string {
	switch p {
	case PhaseNSGreen:
		return "NS_GREEN"
	case PhaseEWGreen:
		return "EW_GREEN"
	}
	return fmt.Sprintf("Phase(%d)", int32(p))
}

// Green 判断该相位下指定方向是否为绿灯
func (p Phase) Green(d Direction) bool {
	switch d {
	case North, South:
		return p == PhaseNSGreen
	case East, West:
		return p == PhaseEWGreen
	}
	return false
}

// Other 另一个相位
func (p Phase) Other() Phase {
	if p == PhaseNSGreen {
		return PhaseEWGreen
	}
	return PhaseNSGreen
}

// VisualState 车辆的显示状态，仅供渲染使用
type VisualState int32

const (
	VisualNormal   VisualState = iota // 正常
	VisualStressed                    // 等待过久
)

func (s VisualState) String() string {
	if s == VisualStressed {
		return "stressed"
	}
	return "normal"
}

// entity/vehicle/car.go的依赖倒置
type ICar interface {
	// 自身属性

	ID() int32                // 获取车辆ID
	Direction() Direction     // 获取行驶方向
	Position() geometry.Point // 获取车辆位置（左上角）
	V() float64               // 获取车速（像素/步）
	Length() float64          // 获取车长

	// 状态

	Waiting() bool                              // 本步是否处于停车状态
	WaitingFor(now time.Duration) time.Duration // 连续停车时长
	EnteredIntersection() bool                  // 是否曾进入路口
	VisualState() VisualState                   // 显示状态
	Progress() float64                          // 沿行驶方向已行驶的距离
	Exited() bool                               // 是否已驶出画面

	// 更新

	DecideAndMove(phase Phase, gap float64, now time.Duration) // gap-车头到前车车尾的距离
}

// 车辆链表节点类型
type VehicleNode = container.ListNode[ICar]

// 车辆链表类型
type VehicleList = container.List[ICar]
