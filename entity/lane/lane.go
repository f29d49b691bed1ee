package lane

import (
	"fmt"
	"time"

	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity"
)

// Lane 车道实体
// 功能：一个驶入方向的单车道，按生成顺序保存车辆（链表头为最靠前的车辆）
// 说明：车道只会在尾部加入车辆，移除时保持剩余车辆的相对顺序，因此链表中的前驱就是前车
type Lane struct {
	direction entity.Direction
	capacity  int // 最大车辆数

	vehicles *entity.VehicleList
}

// newLane 创建车道
// 参数：d-车道方向，capacity-最大车辆数
func newLane(d entity.Direction, capacity int) *Lane {
	return &Lane{
		direction: d,
		capacity:  capacity,
		vehicles: &entity.VehicleList{
			ID: fmt.Sprintf("lane %v vehicles", d),
		},
	}
}

func (l *Lane) String() string {
	return fmt.Sprintf("Lane{Dir:%v, Len:%d/%d}", l.direction, l.vehicles.Len(), l.capacity)
}

// 获取车道方向
func (l *Lane) Direction() entity.Direction {
	return l.direction
}

// 获取车道容量
func (l *Lane) Capacity() int {
	return l.capacity
}

// 获取车道上的车辆数
func (l *Lane) Len() int {
	return l.vehicles.Len()
}

// Full 车道是否已满
func (l *Lane) Full() bool {
	return l.vehicles.Len() >= l.capacity
}

// Cars 按从前到后的顺序获取车道上的车辆
func (l *Lane) Cars() []entity.ICar {
	return l.vehicles.Values()
}

// Vehicles 获取车辆链表（只读）
func (l *Lane) Vehicles() *entity.VehicleList {
	return l.vehicles
}

// Add 将新生成的车辆加入车道尾部
// 功能：车道已满时拒绝加入
// 返回：是否加入成功
func (l *Lane) Add(car entity.ICar) bool {
	if car.Direction() != l.direction {
		log.Panicf("add %v to %v", car, l)
	}
	if l.Full() {
		return false
	}
	l.vehicles.PushBack(&entity.VehicleNode{S: car.Progress(), Value: car})
	return true
}

// advance 从前到后依次更新车道上的车辆
// 功能：前车已在本步先行更新并写回进度，后车据此得到与前车的间距
// 参数：phase-当前信号灯相位，now-当前仿真时间
func (l *Lane) advance(phase entity.Phase, now time.Duration) {
	for node := l.vehicles.First(); node != nil; node = node.Next() {
		node.Value.DecideAndMove(phase, node.Gap(), now)
		node.S = node.Value.Progress()
	}
}

// cull 移除已驶出画面的车辆
// 返回：被移除的车辆（按原顺序）
func (l *Lane) cull() []entity.ICar {
	removed := l.vehicles.RemoveIf(func(node *entity.VehicleNode) bool {
		return node.Value.Exited()
	})
	cars := make([]entity.ICar, len(removed))
	for i, node := range removed {
		cars[i] = node.Value
	}
	return cars
}

// clear 清空车道
func (l *Lane) clear() {
	l.vehicles.Clear()
}
