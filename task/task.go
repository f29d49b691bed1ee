package task

import (
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/clock"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity/junction"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity/lane"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/randengine"
)

// Context 仿真任务上下文
// 功能：包含一个路口仿真的所有变量和状态（时钟、随机数、车道、信号灯、统计），不使用全局变量
// 说明：强化学习环境与可视化演示共用同一个Context，区别只在运行时配置
type Context struct {
	// 时钟
	clock *clock.Clock
	// 随机数引擎，车辆生成与车速只从这里取随机数
	generator *randengine.Engine
	// 最近一次设置的随机数种子
	seed uint64

	// 车道管理器
	laneManager *lane.LaneManager
	// 路口（信号灯）
	junction *junction.Junction

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 本episode统计
	stats EpisodeStats
	// 上一步奖励明细
	lastReward RewardBreakdown
}

// NewContext 创建新的仿真任务上下文
// 功能：根据运行时配置创建时钟、随机数引擎、车道与路口，并初始化到episode起点
// 参数：rc-运行时配置
func NewContext(rc *config.RuntimeConfig) *Context {
	ctx := &Context{
		runtimeConfig: rc,
		clock:         clock.New(rc.Interval, rc.Total),
		generator:     randengine.New(rc.Seed),
		seed:          rc.Seed,
	}
	ctx.laneManager = lane.NewManager(ctx)
	ctx.junction = junction.New(ctx)
	ctx.Init(nil)
	return ctx
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) Generator() *randengine.Engine {
	return ctx.generator
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) LaneManager() *lane.LaneManager {
	return ctx.laneManager
}

func (ctx *Context) Junction() *junction.Junction {
	return ctx.junction
}

// Stats 本episode统计
func (ctx *Context) Stats() EpisodeStats {
	return ctx.stats
}

// LastReward 上一步的奖励明细
func (ctx *Context) LastReward() RewardBreakdown {
	return ctx.lastReward
}

// Init 回到episode起点
// 功能：清空车道、信号灯恢复南北绿灯且立即可切换、时钟与统计归零
// 参数：seed-非nil时重新设置随机数种子，nil时沿用当前随机数序列
func (ctx *Context) Init(seed *uint64) {
	if seed != nil {
		ctx.seed = *seed
		ctx.generator.Reseed(ctx.seed)
	}
	ctx.stats = EpisodeStats{Seed: ctx.seed}
	ctx.clock.Init()
	ctx.laneManager.Init()
	ctx.junction.Init()
	ctx.lastReward = RewardBreakdown{}
	log.Debugf("episode initialized: %v", ctx.junction)
}

// Done 是否已到达episode终点
func (ctx *Context) Done() bool {
	return ctx.clock.Done()
}
