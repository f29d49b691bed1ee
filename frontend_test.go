package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/config"
)

func TestDemoPeriodDefaultsToRealTime(t *testing.T) {
	rc, err := config.NewRuntimeConfig(config.Default(config.PresetDemo))
	require.NoError(t, err)

	period, err := demoPeriod(0, rc.Interval)
	require.NoError(t, err)
	assert.Equal(t, rc.Interval, period)
	// 5秒的等待在画面上也是5秒
	steps := int(rc.Reward.StressedDuration / rc.Interval)
	assert.Equal(t, rc.Reward.StressedDuration, time.Duration(steps)*period)
}

func TestDemoPeriodFromFPS(t *testing.T) {
	period, err := demoPeriod(20, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, period)

	period, err = demoPeriod(60, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, time.Second/60, period)

	_, err = demoPeriod(-1, 50*time.Millisecond)
	assert.Error(t, err)
}
