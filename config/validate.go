package config

import (
	"errors"
	"fmt"
)

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，额外处理 nil。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 未启用任何投递保证 -> AtLeastOnce
//   - 速率测量窗口或权重非法 -> 使用默认值
//   - 目的端参数非法 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	def := DefaultReliabilityConfig()
	if c.Reliability.ToDeliveryAssurance() == 0 {
		c.Reliability.DeliveryAssurance = def.DeliveryAssurance
	}
	if c.Reliability.MonitorInterval <= 0 {
		c.Reliability.MonitorInterval = def.MonitorInterval
	}
	if c.Reliability.MeasurementImpact <= 0 || c.Reliability.MeasurementImpact > 1 {
		c.Reliability.MeasurementImpact = def.MeasurementImpact
	}

	destDef := DefaultDestinationConfig()
	if c.Destination.FlushInterval <= 0 {
		c.Destination.FlushInterval = destDef.FlushInterval
	}
	if c.Destination.TerminatedCacheSize < 1 {
		c.Destination.TerminatedCacheSize = destDef.TerminatedCacheSize
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}
	return c, nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := ValidateAll(c); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}
