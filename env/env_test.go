package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/env"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/randengine"
)

func newEnv(t *testing.T, preset string) *env.Env {
	rc, err := config.NewRuntimeConfig(config.Default(preset))
	require.NoError(t, err)
	return env.New(rc)
}

func TestResetReturnsEmptyObservation(t *testing.T) {
	e := newEnv(t, config.PresetRL)
	seed := uint64(7)
	obs, info := e.Reset(&seed)
	assert.Equal(t, env.Observation{0, 0, 0, 0, 0}, obs)
	assert.Empty(t, info)
	assert.True(t, e.ObservationSpace.Contains(obs))
	assert.False(t, e.Done())
}

func TestStepObservationShape(t *testing.T) {
	e := newEnv(t, config.PresetRL)
	e.Reset(nil)
	g := randengine.New(3)
	for i := 0; i < 2000; i++ {
		obs, _, terminated, truncated, info, err := e.Step(e.ActionSpace.Sample(g))
		require.NoError(t, err)
		require.Len(t, obs, 5)
		require.Contains(t, []float32{0, 1}, obs[4])
		require.True(t, e.ObservationSpace.Contains(obs))
		require.False(t, truncated)
		require.Equal(t, i == 1999, terminated)
		require.Contains(t, info, "switch_count")
	}
	assert.True(t, e.Done())
	assert.Equal(t, int32(2000), e.Stats().Steps)
}

func TestSwitchFlipsLightFlag(t *testing.T) {
	e := newEnv(t, config.PresetRL)
	e.Reset(nil)
	obs, _, _, _, info, err := e.Step(env.ActionSwitch)
	require.NoError(t, err)
	assert.Equal(t, float32(1), obs[4])
	assert.Equal(t, true, info["switched"])

	// 冷却期内的切换请求不报错
	obs, _, _, _, info, err = e.Step(env.ActionSwitch)
	require.NoError(t, err)
	assert.Equal(t, float32(1), obs[4])
	assert.Equal(t, false, info["switched"])
	assert.Equal(t, int32(1), info["switch_count"])
}

func TestInvalidActionRejected(t *testing.T) {
	e := newEnv(t, config.PresetRL)
	e.Reset(nil)
	for i := 0; i < 10; i++ {
		_, _, _, _, _, err := e.Step(env.ActionKeep)
		require.NoError(t, err)
	}
	before := e.Snapshot()
	stats := e.Stats()
	for _, action := range []int{-1, 2, 100} {
		_, reward, terminated, _, info, err := e.Step(action)
		assert.ErrorIs(t, err, env.ErrInvalidAction)
		assert.Zero(t, reward)
		assert.False(t, terminated)
		assert.Nil(t, info)
	}
	assert.Equal(t, before, e.Snapshot())
	assert.Equal(t, stats, e.Stats())
}

func TestResetWithSeedReproduces(t *testing.T) {
	e := newEnv(t, config.PresetRL)
	play := func() []float64 {
		seed := uint64(11)
		e.Reset(&seed)
		rewards := make([]float64, 0, 300)
		for i := 0; i < 300; i++ {
			_, r, _, _, _, err := e.Step(i % 2)
			require.NoError(t, err)
			rewards = append(rewards, r)
		}
		return rewards
	}
	assert.Equal(t, play(), play())
}

func TestDemoPresetConstantSpeed(t *testing.T) {
	e := newEnv(t, config.PresetDemo)
	e.Reset(nil)
	for i := 0; i < 500; i++ {
		_, _, _, _, _, err := e.Step(env.ActionKeep)
		require.NoError(t, err)
	}
	cars := e.Context().LaneManager().Cars()
	require.NotEmpty(t, cars)
	for _, c := range cars {
		assert.Equal(t, 2.0, c.V())
	}
	for _, l := range e.Context().LaneManager().Lanes() {
		assert.LessOrEqual(t, l.Len(), 4)
	}
}

func TestActionSpace(t *testing.T) {
	s := env.DefaultActionSpace
	assert.True(t, s.Contains(0))
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(2))
	assert.False(t, s.Contains(-1))

	g := randengine.New(1)
	seen := map[int]int{}
	for i := 0; i < 1000; i++ {
		seen[s.Sample(g)]++
	}
	assert.Len(t, seen, 2)
	assert.Greater(t, seen[0], 400)
	assert.Greater(t, seen[1], 400)
}
