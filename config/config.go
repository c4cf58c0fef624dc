// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载和保存配置
//   - 支持预设配置（immediate/batched）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Reliability.DeliveryAssurance.InOrder = true
//
//	// 应用预设到现有配置
//	config.ApplyPreset(cfg, "batched")
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import "go.uber.org/multierr"

// Config 是 rmseq 的完整配置结构
//
// 配置按照功能模块组织：
//   - Reliability: 投递保证、确认策略、速率测量
//   - Destination: 目的端序列管理
//   - Metrics: Prometheus 指标
type Config struct {
	// Reliability 可靠消息配置
	Reliability ReliabilityConfig `json:"reliability" yaml:"reliability"`

	// Destination 目的端配置
	Destination DestinationConfig `json:"destination" yaml:"destination"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// NewConfig 创建默认配置
//
// 返回的配置使用所有组件的默认值，适用于大多数场景。
func NewConfig() *Config {
	return &Config{
		Reliability: DefaultReliabilityConfig(),
		Destination: DefaultDestinationConfig(),
		Metrics:     DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
//
// 检查所有子配置，返回合并后的全部错误。
func (c *Config) Validate() error {
	return multierr.Combine(
		c.Reliability.Validate(),
		c.Destination.Validate(),
		c.Metrics.Validate(),
	)
}
