package config

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
// 说明：控制一个episode的总步数与每步推进的仿真时间
type ControlStep struct {
	Total    int32   `yaml:"total"`    // 总步数（episode长度）
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
}

// Env 路口环境配置
// 功能：定义车辆生成、车道容量、车速范围等环境参数
// 说明：未设置的字段由preset补全，rl与demo两套参数对应无头训练与可视化演示
type Env struct {
	Preset           string   `yaml:"preset,omitempty"`            // 预设参数（rl|demo）
	SpawnProbability *float64 `yaml:"spawn_probability,omitempty"` // 每步每车道生成车辆的概率
	LaneCapacity     int      `yaml:"lane_capacity,omitempty"`     // 每条车道的最大车辆数
	MinSpeed         float64  `yaml:"min_speed,omitempty"`         // 车速下界（像素/步）
	MaxSpeed         float64  `yaml:"max_speed,omitempty"`         // 车速上界（像素/步）
	Seed             uint64   `yaml:"seed,omitempty"`              // 随机数种子
	SwitchCooldown   float64  `yaml:"switch_cooldown,omitempty"`   // 信号灯切换冷却时间（秒）
}

// Reward 奖励函数配置
// 功能：定义奖励公式中的各项系数
// 说明：奖励公式对训练结果影响很大，默认值不应随意修改
type Reward struct {
	Crossed          *float64 `yaml:"crossed,omitempty"`            // 每辆已进入路口车辆的奖励
	Waiting          *float64 `yaml:"waiting,omitempty"`            // 每辆未进入路口车辆的惩罚
	LongWait         *float64 `yaml:"long_wait,omitempty"`          // 存在长时间等待车辆的惩罚
	LongWaitLimit    float64  `yaml:"long_wait_limit,omitempty"`    // 长时间等待的判定阈值（秒）
	LongWaitPerLane  bool     `yaml:"long_wait_per_lane,omitempty"` // 长时间等待惩罚是否按车道分别计算
	OverSwitch       *float64 `yaml:"over_switch,omitempty"`        // 切换次数过多的惩罚（每步）
	OverSwitchCount  int32    `yaml:"over_switch_count,omitempty"`  // 切换次数过多的判定阈值
	CompletionBonus  *float64 `yaml:"completion_bonus,omitempty"`   // episode结束时的奖励
	StressedDuration float64  `yaml:"stressed_duration,omitempty"`  // 车辆显示为焦虑状态的等待时长（秒）
}

// Mongo 指定episode记录输出到MongoDB的配置
type Mongo struct {
	URI string `yaml:"uri"` // MongoDB连接字符串，为空则不记录
	DB  string `yaml:"db"`  // 数据库名
	Col string `yaml:"col"` // 集合名
}

// Output 输出配置
type Output struct {
	Mongo Mongo `yaml:"mongo"`
}

// Server 服务配置
type Server struct {
	Listen string `yaml:"listen,omitempty"` // 环境RPC服务监听地址
	Viewer string `yaml:"viewer,omitempty"` // 可视化websocket监听地址，为空则不启动
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
type Config struct {
	Control Control `yaml:"control"`          // 模拟过程控制
	Env     Env     `yaml:"env"`              // 路口环境
	Reward  Reward  `yaml:"reward,omitempty"` // 奖励函数
	Output  Output  `yaml:"output,omitempty"` // 输出
	Server  Server  `yaml:"server,omitempty"` // 服务
}
