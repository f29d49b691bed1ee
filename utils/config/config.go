package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v2"
)

// 预设参数名
const (
	PresetRL   = "rl"   // 强化学习环境
	PresetDemo = "demo" // 可视化演示
)

var (
	ErrBadConfig = errors.New("config: invalid value")
)

// preset 一套环境参数默认值
type preset struct {
	spawnProbability float64
	laneCapacity     int
	minSpeed         float64
	maxSpeed         float64
}

var presets = map[string]preset{
	PresetRL:   {spawnProbability: 0.05, laneCapacity: 5, minSpeed: 2.5, maxSpeed: 5.0},
	PresetDemo: {spawnProbability: 0.02, laneCapacity: 4, minSpeed: 2, maxSpeed: 2},
}

// RewardParams 补全默认值后的奖励参数
type RewardParams struct {
	Crossed          float64
	Waiting          float64
	LongWait         float64
	LongWaitLimit    time.Duration
	LongWaitPerLane  bool
	OverSwitch       float64
	OverSwitchCount  int32
	CompletionBonus  float64
	StressedDuration time.Duration
}

// RuntimeConfig 运行时配置
// 功能：存储补全默认值并完成校验的配置信息
// 说明：将YAML配置转换为运行时可用的配置对象，时间统一转换为time.Duration
type RuntimeConfig struct {
	All Config // 全部配置

	Total            int32         // episode总步数
	Interval         time.Duration // 每步仿真时间
	SpawnProbability float64       // 每步每车道生成概率
	LaneCapacity     int           // 车道容量
	MinSpeed         float64       // 车速下界
	MaxSpeed         float64       // 车速上界
	Seed             uint64        // 随机数种子
	SwitchCooldown   time.Duration // 信号灯切换冷却时间
	Reward           RewardParams  // 奖励参数
}

// Parse 解析YAML配置
// 功能：严格模式解析配置文件内容，未知字段视为错误
func Parse(file []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		return c, fmt.Errorf("config: parse yaml: %w", err)
	}
	return c, nil
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，补全默认值并进行配置校验
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针，配置非法时返回ErrBadConfig
// 算法说明：
// 1. 根据preset选取环境参数默认值（默认rl）
// 2. 对未设置的字段填入默认值
// 3. 校验取值范围
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	if config.Env.Preset == "" {
		config.Env.Preset = PresetRL
	}
	p, ok := presets[config.Env.Preset]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q", ErrBadConfig, config.Env.Preset)
	}

	rc := &RuntimeConfig{
		All:              config,
		Total:            config.Control.Step.Total,
		Interval:         seconds(config.Control.Step.Interval),
		SpawnProbability: valueOr(config.Env.SpawnProbability, p.spawnProbability),
		LaneCapacity:     config.Env.LaneCapacity,
		MinSpeed:         config.Env.MinSpeed,
		MaxSpeed:         config.Env.MaxSpeed,
		Seed:             config.Env.Seed,
		SwitchCooldown:   seconds(config.Env.SwitchCooldown),
	}
	if rc.Total == 0 {
		rc.Total = 2000
	}
	if config.Control.Step.Interval == 0 {
		rc.Interval = 50 * time.Millisecond
	}
	if rc.LaneCapacity == 0 {
		rc.LaneCapacity = p.laneCapacity
	}
	if rc.MinSpeed == 0 && rc.MaxSpeed == 0 {
		rc.MinSpeed, rc.MaxSpeed = p.minSpeed, p.maxSpeed
	}
	if config.Env.SwitchCooldown == 0 {
		rc.SwitchCooldown = 2 * time.Second
	}

	r := config.Reward
	rc.Reward = RewardParams{
		Crossed:          valueOr(r.Crossed, 2),
		Waiting:          valueOr(r.Waiting, 0.1),
		LongWait:         valueOr(r.LongWait, 50),
		LongWaitLimit:    seconds(r.LongWaitLimit),
		LongWaitPerLane:  r.LongWaitPerLane,
		OverSwitch:       valueOr(r.OverSwitch, 10),
		OverSwitchCount:  r.OverSwitchCount,
		CompletionBonus:  valueOr(r.CompletionBonus, 20),
		StressedDuration: seconds(r.StressedDuration),
	}
	if r.LongWaitLimit == 0 {
		rc.Reward.LongWaitLimit = 10 * time.Second
	}
	if r.OverSwitchCount == 0 {
		rc.Reward.OverSwitchCount = 20
	}
	if r.StressedDuration == 0 {
		rc.Reward.StressedDuration = 5 * time.Second
	}

	if err := rc.validate(); err != nil {
		return nil, err
	}
	return rc, nil
}

func (rc *RuntimeConfig) validate() error {
	switch {
	case rc.Total < 0:
		return fmt.Errorf("%w: control.step.total %d < 0", ErrBadConfig, rc.Total)
	case rc.Interval <= 0:
		return fmt.Errorf("%w: control.step.interval must be positive", ErrBadConfig)
	case rc.SpawnProbability < 0 || rc.SpawnProbability > 1:
		return fmt.Errorf("%w: env.spawn_probability %v not in [0,1]", ErrBadConfig, rc.SpawnProbability)
	case rc.LaneCapacity < 1:
		return fmt.Errorf("%w: env.lane_capacity %d < 1", ErrBadConfig, rc.LaneCapacity)
	case rc.MinSpeed <= 0 || rc.MinSpeed > rc.MaxSpeed:
		return fmt.Errorf("%w: env speed range [%v,%v]", ErrBadConfig, rc.MinSpeed, rc.MaxSpeed)
	case rc.SwitchCooldown < 0:
		return fmt.Errorf("%w: env.switch_cooldown must not be negative", ErrBadConfig)
	}
	return nil
}

// Default 返回指定preset的空白配置
func Default(presetName string) Config {
	return Config{Env: Env{Preset: presetName}}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// seconds 秒转time.Duration，四舍五入到纳秒避免浮点误差
func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
