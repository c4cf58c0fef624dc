// Package monitor 提供序列确认速率监视器
//
// Monitor 根据确认时间戳估计每分钟消息数（MPM）：
//
//   - 每次确认以与上次确认的间隔计算瞬时速率 60s/gap
//   - 瞬时速率按 MeasurementImpact 做指数加权平均
//   - 第一个间隔直接作为初始估计
//   - 间隔超过 MonitorInterval 时丢弃历史重新估计
//   - 最后一次确认早于 MonitorInterval 时 MPM 读数为 0
//
// 设计参考 connmgr/msgrate 的吞吐量估计。
package monitor

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
//                              配置
// ============================================================================

// Config 监视器配置
type Config struct {
	// MonitorInterval 采样窗口
	// 超过该时长没有确认，历史估计失效，默认 60s
	MonitorInterval time.Duration

	// MeasurementImpact 测量影响因子
	// 新测量对现有估计的影响程度，取值 (0, 1]，默认 0.2
	MeasurementImpact float64
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MonitorInterval:   60 * time.Second,
		MeasurementImpact: 0.2,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.MonitorInterval <= 0 {
		c.MonitorInterval = def.MonitorInterval
	}
	if c.MeasurementImpact <= 0 || c.MeasurementImpact > 1 {
		c.MeasurementImpact = def.MeasurementImpact
	}
	return c
}

// ============================================================================
//                              Monitor 实现
// ============================================================================

// Monitor 确认速率监视器（并发安全）
type Monitor struct {
	config Config
	clock  clock.Clock

	mu sync.RWMutex

	// rate 平滑后的每分钟消息数
	rate float64

	// last 最近一次确认时间
	last time.Time

	// seeded rate 是否已由第一个间隔初始化
	seeded bool

	// samples 累计确认次数
	samples uint64
}

// New 创建监视器，clk 为 nil 时使用系统时钟
func New(config Config, clk clock.Clock) *Monitor {
	if clk == nil {
		clk = clock.New()
	}
	return &Monitor{
		config: config.normalized(),
		clock:  clk,
	}
}

// Config 返回生效的配置
func (m *Monitor) Config() Config {
	return m.config
}

// RecordAcknowledgment 记录一次确认
func (m *Monitor) RecordAcknowledgment(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.samples++
	if m.last.IsZero() {
		m.last = now
		return
	}

	gap := now.Sub(m.last)
	if gap < 0 {
		// 时钟回退的样本不参与估计
		return
	}
	m.last = now

	if gap > m.config.MonitorInterval {
		m.rate = 0
		m.seeded = false
		return
	}
	if gap < time.Millisecond {
		gap = time.Millisecond
	}

	measured := float64(time.Minute) / float64(gap)
	if !m.seeded {
		m.rate = measured
		m.seeded = true
		return
	}
	impact := m.config.MeasurementImpact
	m.rate = (1-impact)*m.rate + impact*measured
}

// MPM 返回当前每分钟消息数估计
func (m *Monitor) MPM() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.seeded || m.clock.Since(m.last) > m.config.MonitorInterval {
		return 0
	}
	return int(math.Round(math.Max(0, m.rate)))
}

// Samples 返回累计确认次数
func (m *Monitor) Samples() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.samples
}

// LastAcknowledgment 返回最近一次确认时间
func (m *Monitor) LastAcknowledgment() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}
