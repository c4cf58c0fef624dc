package destination

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-rmseq/internal/core/rm/monitor"
	"github.com/dep2p/go-rmseq/pkg/types"
)

// ============================================================================
//                              配置
// ============================================================================

// Config 目的端配置
type Config struct {
	// DeliveryAssurance 新序列的投递保证模式
	DeliveryAssurance types.DeliveryAssurance

	// AckPolicy 新序列的确认策略
	AckPolicy types.AckPolicy

	// Monitor 速率监视器配置
	Monitor monitor.Config

	// FlushInterval 后台检查到期确认的间隔
	FlushInterval time.Duration

	// TerminatedCacheSize 记住的已终止序列数
	TerminatedCacheSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		DeliveryAssurance:   types.AtLeastOnce,
		AckPolicy:           types.AckPolicy{},
		Monitor:             monitor.DefaultConfig(),
		FlushInterval:       100 * time.Millisecond,
		TerminatedCacheSize: 1024,
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.FlushInterval <= 0 {
		c.FlushInterval = def.FlushInterval
	}
	if c.TerminatedCacheSize <= 0 {
		c.TerminatedCacheSize = def.TerminatedCacheSize
	}
	return c
}

// ============================================================================
//                              选项
// ============================================================================

// Option 构造选项
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock 指定时钟（测试中使用 clock.NewMock()）
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		o.clock = clk
	}
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	return o
}
