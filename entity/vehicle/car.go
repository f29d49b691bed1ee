package vehicle

import (
	"fmt"
	"math"
	"time"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity"
)

// Car 车辆实体
// 功能：绑定到一个驶入方向的运动学个体，每步自行决定停车或前进
// 说明：方向与车速在创建时确定，之后不再改变；位置只沿行驶方向对应的坐标轴变化
type Car struct {
	id        int32
	direction entity.Direction
	speed     float64        // 车速（像素/步）
	spawn     geometry.Point // 生成位置
	position  geometry.Point // 当前位置（车辆左上角）
	stressed  time.Duration  // 连续等待超过该时长后显示为焦虑状态

	waiting     bool          // 本步是否停车
	waitStart   time.Duration // 开始停车的时间（waiting为false时无意义）
	entered     bool          // 是否曾进入路口（单调，不会重置）
	visualState entity.VisualState
}

// New 创建车辆
// 参数：id-车辆ID，d-行驶方向，speed-车速，stressed-显示焦虑状态的等待时长
func New(id int32, d entity.Direction, speed float64, stressed time.Duration) *Car {
	p := entity.SpawnPoint(d)
	return &Car{
		id:        id,
		direction: d,
		speed:     speed,
		spawn:     p,
		position:  p,
		stressed:  stressed,
	}
}

func (c *Car) String() string {
	return fmt.Sprintf("Car{ID:%d, Dir:%v, Pos:(%.1f,%.1f), V:%.2f}", c.id, c.direction, c.position.X, c.position.Y, c.speed)
}

func (c *Car) ID() int32 {
	return c.id
}

func (c *Car) Direction() entity.Direction {
	return c.direction
}

func (c *Car) Position() geometry.Point {
	return c.position
}

func (c *Car) V() float64 {
	return c.speed
}

func (c *Car) Length() float64 {
	return entity.CarLength
}

func (c *Car) Waiting() bool {
	return c.waiting
}

// WaitingFor 连续停车时长，未停车时为0
func (c *Car) WaitingFor(now time.Duration) time.Duration {
	if !c.waiting {
		return 0
	}
	return now - c.waitStart
}

func (c *Car) EnteredIntersection() bool {
	return c.entered
}

func (c *Car) VisualState() entity.VisualState {
	return c.visualState
}

// Progress 沿行驶方向已行驶的距离
func (c *Car) Progress() float64 {
	return math.Abs(c.position.X-c.spawn.X) + math.Abs(c.position.Y-c.spawn.Y)
}

// Exited 是否已越过画面远端的移除边界
func (c *Car) Exited() bool {
	return entity.Exited(c.direction, c.position)
}

// DecideAndMove 决定本步停车或前进并更新状态
// 功能：依次评估信号灯与跟车约束，任一约束要求停车即停车，否则按车速前进
// 参数：phase-当前信号灯相位，gap-车头到同车道前车车尾的距离（没有前车为mathutil.INF），now-当前仿真时间
// 算法说明：
// 1. 计算控制动作（取各策略允许位移的最小值）
// 2. 维护停车计时：开始停车时记录时间，恢复行驶时清除
// 3. 未停车则沿行驶方向移动
// 4. 位置处于路口区域内则标记已进入路口
// 5. 更新显示状态
func (c *Car) DecideAndMove(phase entity.Phase, gap float64, now time.Duration) {
	ac := c.decide(phase, gap)
	stop := ac.D <= 0

	if stop {
		if !c.waiting {
			c.waiting = true
			c.waitStart = now
			log.Debugf("%v starts waiting at %v", c, now)
		}
	} else {
		if c.waiting {
			c.waiting = false
			c.waitStart = 0
		}
		c.move(ac.D)
	}

	if entity.InIntersection(c.position) {
		c.entered = true
	}

	if c.waiting && now-c.waitStart > c.stressed {
		c.visualState = entity.VisualStressed
	} else {
		c.visualState = entity.VisualNormal
	}
}

// move 沿行驶方向移动d
func (c *Car) move(d float64) {
	switch c.direction {
	case entity.North:
		c.position.Y -= d
	case entity.South:
		c.position.Y += d
	case entity.East:
		c.position.X += d
	case entity.West:
		c.position.X -= d
	}
}
