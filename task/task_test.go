package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/entity"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/task"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/config"
)

func newContext(t *testing.T, modify func(c *config.Config)) *task.Context {
	cfg := config.Default(config.PresetRL)
	cfg.Env.Seed = 42
	if modify != nil {
		modify(&cfg)
	}
	rc, err := config.NewRuntimeConfig(cfg)
	require.NoError(t, err)
	return task.NewContext(rc)
}

func spawnEveryStep(c *config.Config) {
	p := 1.0
	c.Env.SpawnProbability = &p
}

func TestKeepTerminatesExactlyAtHorizon(t *testing.T) {
	ctx := newContext(t, nil)
	for i := int32(1); i <= 2000; i++ {
		res := ctx.Step(false)
		if i < 2000 {
			require.False(t, res.Terminated, "step %d", i)
			require.False(t, res.Reward.Completed, "step %d", i)
			require.Zero(t, res.Reward.Completion, "step %d", i)
		} else {
			assert.True(t, res.Terminated)
			assert.True(t, res.Reward.Completed)
			assert.Equal(t, 20.0, res.Reward.Completion)
		}
	}
	assert.Equal(t, int32(2000), ctx.Stats().Steps)
	assert.Equal(t, int32(0), ctx.Stats().SwitchCount)
	assert.Equal(t, entity.PhaseNSGreen, ctx.Junction().Phase())

	// 终点之后继续调用仍保持终止，但不再给完成奖励
	res := ctx.Step(false)
	assert.True(t, res.Terminated)
	assert.False(t, res.Reward.Completed)
}

func TestOccupancyNeverExceedsCapacity(t *testing.T) {
	ctx := newContext(t, spawnEveryStep)
	capacity := ctx.RuntimeConfig().LaneCapacity
	for i := 0; i < 2000; i++ {
		ctx.Step(i%37 == 0)
		for _, l := range ctx.LaneManager().Lanes() {
			require.LessOrEqual(t, l.Len(), capacity)
		}
	}
	assert.Greater(t, ctx.Stats().Spawned, 0)
	assert.Greater(t, ctx.Stats().Exited, 0)
}

func TestSameSeedSameTrajectory(t *testing.T) {
	run := func(ctx *task.Context) ([]float64, task.Snapshot) {
		rewards := make([]float64, 0, 600)
		for i := 0; i < 600; i++ {
			rewards = append(rewards, ctx.Step(i%50 == 0).Reward.Total)
		}
		return rewards, ctx.Snapshot()
	}
	a := newContext(t, nil)
	b := newContext(t, nil)
	ra, sa := run(a)
	rb, sb := run(b)
	assert.Equal(t, ra, rb)
	assert.Equal(t, sa, sb)

	// 重设相同种子后重放
	seed := uint64(42)
	a.Init(&seed)
	rc, sc := run(a)
	assert.Equal(t, ra, rc)
	assert.Equal(t, sa, sc)
	assert.Equal(t, uint64(42), a.Stats().Seed)
}

func TestInitResetsEpisode(t *testing.T) {
	ctx := newContext(t, spawnEveryStep)
	for i := 0; i < 100; i++ {
		ctx.Step(true)
	}
	require.NotZero(t, ctx.Junction().SwitchCount())
	ctx.Init(nil)
	assert.Equal(t, int32(0), ctx.Clock().InternalStep)
	assert.Equal(t, [4]int{}, ctx.LaneManager().Counts())
	assert.Equal(t, entity.PhaseNSGreen, ctx.Junction().Phase())
	assert.Equal(t, int32(0), ctx.Junction().SwitchCount())
	assert.Equal(t, task.EpisodeStats{Seed: 42}, ctx.Stats())

	// 第一个切换请求立即被接受，紧接着的请求被丢弃
	assert.True(t, ctx.Step(true).Switched)
	assert.False(t, ctx.Step(true).Switched)
	assert.Equal(t, entity.PhaseEWGreen, ctx.Junction().Phase())
}

func TestSwitchRequestsWithinCooldown(t *testing.T) {
	ctx := newContext(t, nil)
	dt := ctx.RuntimeConfig().Interval
	accepted := 0
	// 500ms内的多次请求只有第一次被接受
	for elapsed := time.Duration(0); elapsed < 500*time.Millisecond; elapsed += dt {
		if ctx.Step(true).Switched {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, int32(1), ctx.Junction().SwitchCount())
}

func TestOverSwitchingPenalizesWithoutTerminating(t *testing.T) {
	ctx := newContext(t, nil)
	penalized := 0
	for i := int32(1); i <= 2000; i++ {
		res := ctx.Step(true)
		if i < 2000 {
			require.False(t, res.Terminated, "step %d", i)
		}
		if ctx.Junction().SwitchCount() >= 20 {
			require.True(t, res.Reward.OverSwitching)
			require.Equal(t, -10.0, res.Reward.OverSwitch)
			penalized++
		} else {
			require.Zero(t, res.Reward.OverSwitch)
		}
	}
	// 冷却时间2s，每步50ms，第20次切换发生在第761步
	assert.Equal(t, 2000-760, penalized)
	assert.Equal(t, int32(2000-760), ctx.Stats().OverSwitchSteps)
}

func TestLongWaitPenalizesWithoutTerminating(t *testing.T) {
	ctx := newContext(t, spawnEveryStep)
	sawLongWait := false
	for i := 1; i <= 1000; i++ {
		res := ctx.Step(false)
		require.False(t, res.Terminated)
		if res.Reward.LongWaits > 0 {
			sawLongWait = true
			assert.Equal(t, 1, res.Reward.LongWaits)
			assert.Equal(t, -50.0, res.Reward.LongWait)
		}
	}
	// 东西方向一直红灯，车辆在停车线前排队
	assert.True(t, sawLongWait)
	for _, d := range []entity.Direction{entity.East, entity.West} {
		l := ctx.LaneManager().Get(d)
		assert.Equal(t, l.Capacity(), l.Len())
		for _, c := range l.Cars() {
			assert.False(t, c.EnteredIntersection())
		}
	}
}

func TestLongWaitPerLane(t *testing.T) {
	ctx := newContext(t, func(c *config.Config) {
		spawnEveryStep(c)
		c.Reward.LongWaitPerLane = true
	})
	var last task.StepResult
	for i := 0; i < 1000; i++ {
		last = ctx.Step(false)
	}
	assert.Equal(t, 2, last.Reward.LongWaits)
	assert.Equal(t, -100.0, last.Reward.LongWait)
}

func TestRewardComposition(t *testing.T) {
	ctx := newContext(t, spawnEveryStep)
	for i := 0; i < 1500; i++ {
		res := ctx.Step(i%100 == 0)
		r := res.Reward
		cars := ctx.LaneManager().Cars()
		require.Equal(t, len(cars), r.Entered+r.NotEntered)
		require.InDelta(t, 2*float64(r.Entered), r.Crossed, 1e-9)
		require.InDelta(t, -0.1*float64(r.NotEntered), r.Waiting, 1e-9)
		require.InDelta(t, r.Crossed+r.Waiting+r.LongWait+r.OverSwitch+r.Completion, r.Total, 1e-9)
		require.Equal(t, r, ctx.LastReward())
	}
}

func TestSnapshot(t *testing.T) {
	ctx := newContext(t, spawnEveryStep)
	for i := 0; i < 10; i++ {
		ctx.Step(false)
	}
	s := ctx.Snapshot()
	assert.Equal(t, int32(10), s.Step)
	assert.Equal(t, "00:00:00.500", s.Time)
	assert.Equal(t, "NS_GREEN", s.Phase)
	require.Len(t, s.Lanes, 4)
	for _, d := range entity.Directions {
		views := s.Lanes[d.String()]
		cars := ctx.LaneManager().Get(d).Cars()
		require.Len(t, views, len(cars))
		for i, v := range views {
			assert.Equal(t, cars[i].ID(), v.ID)
			assert.Equal(t, cars[i].Position().X, v.X)
			assert.Equal(t, cars[i].Position().Y, v.Y)
			assert.Equal(t, "normal", v.State)
		}
	}
}
