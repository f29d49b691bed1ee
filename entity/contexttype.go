package entity

import (
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/clock"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/randengine"
)

type ITaskContext interface {
	Clock() *clock.Clock
	RuntimeConfig() *config.RuntimeConfig
	Generator() *randengine.Engine
}
