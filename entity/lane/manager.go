package lane

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity/vehicle"
)

// LaneManager Lane管理器
// 功能：管理四个驶入方向的车道，负责车辆生成、逐车道更新与移除
type LaneManager struct {
	ctx entity.ITaskContext

	lanes  [len(entity.Directions)]*Lane // 按方向索引
	nextID int32                         // 下一辆车的ID
}

// NewManager 创建Lane管理器实例
// 功能：按运行时配置的车道容量创建四条车道
// 参数：ctx-任务上下文
func NewManager(ctx entity.ITaskContext) *LaneManager {
	m := &LaneManager{ctx: ctx}
	for _, d := range entity.Directions {
		m.lanes[d] = newLane(d, ctx.RuntimeConfig().LaneCapacity)
	}
	return m
}

// Init 清空所有车道并重置车辆ID
func (m *LaneManager) Init() {
	for _, l := range m.lanes {
		l.clear()
	}
	m.nextID = 0
}

// Get 根据方向获取车道
func (m *LaneManager) Get(d entity.Direction) *Lane {
	if d < 0 || int(d) >= len(m.lanes) {
		log.Panicf("no lane for direction %v", d)
	}
	return m.lanes[d]
}

// Lanes 按N、S、E、W顺序获取全部车道
func (m *LaneManager) Lanes() []*Lane {
	return m.lanes[:]
}

// Spawn 车辆生成
// 功能：每条车道以配置的概率尝试生成一辆车，车道已满时拒绝
// 返回：本步新生成的车辆
// 算法说明：
// 1. 按N、S、E、W顺序为每条车道抽取一次是否生成，无论车道是否已满都消耗随机数
// 2. 需要生成且车道未满时抽取车速并创建车辆，车速此后不再改变
func (m *LaneManager) Spawn() []entity.ICar {
	rc := m.ctx.RuntimeConfig()
	g := m.ctx.Generator()
	spawned := make([]entity.ICar, 0)
	for _, l := range m.lanes {
		if !g.PTrue(rc.SpawnProbability) || l.Full() {
			continue
		}
		speed := g.Uniform(rc.MinSpeed, rc.MaxSpeed)
		car := vehicle.New(m.nextID, l.direction, speed, rc.Reward.StressedDuration)
		if !l.Add(car) {
			log.Panicf("%v refused %v after capacity check", l, car)
		}
		m.nextID++
		spawned = append(spawned, car)
	}
	return spawned
}

// Update 更新阶段
// 功能：逐车道从前到后更新车辆，然后移除驶出画面的车辆
// 参数：phase-当前信号灯相位
// 返回：本步被移除的车辆
func (m *LaneManager) Update(phase entity.Phase) []entity.ICar {
	now := m.ctx.Clock().Now()
	culled := make([]entity.ICar, 0)
	for _, l := range m.lanes {
		l.advance(phase, now)
		culled = append(culled, l.cull()...)
	}
	return culled
}

// Cars 获取所有车道上的车辆（按车道顺序，车道内从前到后）
func (m *LaneManager) Cars() []entity.ICar {
	return lo.FlatMap(m.lanes[:], func(l *Lane, _ int) []entity.ICar {
		return l.Cars()
	})
}

// Counts 按N、S、E、W顺序获取各车道车辆数
func (m *LaneManager) Counts() [len(entity.Directions)]int {
	var counts [len(entity.Directions)]int
	for i, l := range m.lanes {
		counts[i] = l.Len()
	}
	return counts
}
