// 随机数引擎，包装了golang.org/x/exp/rand，提供了一些常用的随机数生成方法
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能
// 说明：基于golang.org/x/exp/rand库，由模拟器显式持有，相同种子产生相同轨迹（非线程安全）
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改代码的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// Reseed 使用新种子重置随机数序列
func (e *Engine) Reseed(seed uint64) {
	e.Seed(seed + *seedOffset)
}

// PTrue 以指定概率返回true
// 功能：根据给定概率返回布尔值
// 参数：p-返回true的概率（0.0到1.0之间）
// 说明：无论结果如何都会消耗一次随机数，保证序列与调用次数一一对应
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Uniform 生成[low, high)范围内均匀分布的随机浮点数
// 说明：low==high时仍消耗一次随机数并返回low
func (e *Engine) Uniform(low, high float64) float64 {
	return low + (high-low)*e.Float64()
}
