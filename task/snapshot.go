package task

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity/lane"
)

// CarView 供渲染使用的车辆只读视图
type CarView struct {
	ID      int32   `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Length  float64 `json:"length"`
	Width   float64 `json:"width"`
	State   string  `json:"state"` // normal|stressed
	Waiting bool    `json:"waiting"`
}

// Snapshot 供渲染使用的仿真只读快照
type Snapshot struct {
	Step  int32                `json:"step"`
	Time  string               `json:"time"`
	Phase string               `json:"phase"`
	Lanes map[string][]CarView `json:"lanes"` // 方向 -> 从前到后的车辆
}

// Snapshot 生成当前状态的只读快照
// 说明：快照与仿真状态不共享可变数据，渲染方可在任意协程中读取
func (ctx *Context) Snapshot() Snapshot {
	return Snapshot{
		Step:  ctx.clock.InternalStep,
		Time:  ctx.clock.String(),
		Phase: ctx.junction.Phase().String(),
		Lanes: lo.SliceToMap(ctx.laneManager.Lanes(), func(l *lane.Lane) (string, []CarView) {
			return l.Direction().String(), lo.Map(l.Cars(), func(c entity.ICar, _ int) CarView {
				return newCarView(c)
			})
		}),
	}
}

func newCarView(c entity.ICar) CarView {
	return CarView{
		ID:      c.ID(),
		X:       c.Position().X,
		Y:       c.Position().Y,
		Length:  c.Length(),
		Width:   entity.CarWidth,
		State:   c.VisualState().String(),
		Waiting: c.Waiting(),
	}
}
