package rmseq

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-rmseq/config"
	rmif "github.com/dep2p/go-rmseq/pkg/interfaces/rm"
	"github.com/dep2p/go-rmseq/pkg/types"
)

// Option 用户配置选项函数
type Option func(*endpointConfig) error

// endpointConfig 端点构建配置
type endpointConfig struct {
	config *config.Config

	sender     rmif.AckSender
	clock      clock.Clock
	registerer prometheus.Registerer

	// 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

// newEndpointConfig 创建默认构建配置
func newEndpointConfig() *endpointConfig {
	return &endpointConfig{
		config: config.NewConfig(),
	}
}

// WithConfig 使用完整配置（覆盖之前的配置选项）
func WithConfig(cfg *config.Config) Option {
	return func(c *endpointConfig) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		c.config = config.CloneConfig(cfg)
		return nil
	}
}

// WithConfigFile 从配置文件加载配置（.json/.yaml/.yml）
func WithConfigFile(path string) Option {
	return func(c *endpointConfig) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		c.config = cfg
		return nil
	}
}

// WithPreset 应用预设（"immediate" 或 "batched"）
func WithPreset(name string) Option {
	return func(c *endpointConfig) error {
		return config.ApplyPreset(c.config, name)
	}
}

// WithDeliveryAssurance 设置投递保证
func WithDeliveryAssurance(mode types.DeliveryAssurance) Option {
	return func(c *endpointConfig) error {
		if mode == 0 {
			return fmt.Errorf("delivery assurance must not be empty")
		}
		c.config.Reliability = c.config.Reliability.WithDeliveryAssurance(mode)
		return nil
	}
}

// WithAcksPolicy 设置确认策略
//
// interval 为 0 表示每次确认立即发送。
func WithAcksPolicy(threshold int, interval time.Duration) Option {
	return func(c *endpointConfig) error {
		c.config.Reliability = c.config.Reliability.WithAcksPolicy(threshold, interval)
		return nil
	}
}

// WithFlushInterval 设置后台刷新周期
func WithFlushInterval(d time.Duration) Option {
	return func(c *endpointConfig) error {
		c.config.Destination.FlushInterval = config.Duration(d)
		return nil
	}
}

// WithAckSender 设置确认发送器
func WithAckSender(sender rmif.AckSender) Option {
	return func(c *endpointConfig) error {
		c.sender = sender
		return nil
	}
}

// WithClock 设置时钟（测试使用）
func WithClock(clk clock.Clock) Option {
	return func(c *endpointConfig) error {
		c.clock = clk
		return nil
	}
}

// WithRegisterer 将指标注册到指定 Registerer
//
// 未设置时端点使用自己的 prometheus.Registry。
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *endpointConfig) error {
		c.registerer = reg
		return nil
	}
}

// WithFxOption 追加自定义 Fx 选项
func WithFxOption(opts ...fx.Option) Option {
	return func(c *endpointConfig) error {
		c.userFxOptions = append(c.userFxOptions, opts...)
		return nil
	}
}
