package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-rmseq/pkg/types"
)

// DeliveryAssuranceConfig 投递保证配置
//
// ExactlyOnce 等价于同时启用 AtMostOnce 和 AtLeastOnce。
type DeliveryAssuranceConfig struct {
	AtMostOnce  bool `json:"at_most_once" yaml:"at_most_once"`
	AtLeastOnce bool `json:"at_least_once" yaml:"at_least_once"`
	ExactlyOnce bool `json:"exactly_once" yaml:"exactly_once"`
	InOrder     bool `json:"in_order" yaml:"in_order"`
}

// AcksPolicyConfig 确认策略配置
type AcksPolicyConfig struct {
	// IntraMessageThreshold 速率阈值（条/分钟），达到后延迟发送确认
	// 默认值: 0
	IntraMessageThreshold int `json:"intra_message_threshold" yaml:"intra_message_threshold"`

	// AcknowledgementInterval 延迟确认的最长间隔，0 表示立即确认
	// 默认值: 0
	AcknowledgementInterval Duration `json:"acknowledgement_interval" yaml:"acknowledgement_interval"`
}

// ReliabilityConfig 可靠消息配置
type ReliabilityConfig struct {
	// DeliveryAssurance 投递保证
	// 默认值: AtLeastOnce
	DeliveryAssurance DeliveryAssuranceConfig `json:"delivery_assurance" yaml:"delivery_assurance"`

	// AcksPolicy 确认策略
	AcksPolicy AcksPolicyConfig `json:"acks_policy" yaml:"acks_policy"`

	// MonitorInterval 速率测量窗口，超过该时长无确认时速率归零
	// 默认值: 60s
	MonitorInterval Duration `json:"monitor_interval" yaml:"monitor_interval"`

	// MeasurementImpact 新样本在速率平滑中的权重 (0, 1]
	// 默认值: 0.2
	MeasurementImpact float64 `json:"measurement_impact" yaml:"measurement_impact"`
}

// DefaultReliabilityConfig 返回默认的可靠消息配置
func DefaultReliabilityConfig() ReliabilityConfig {
	return ReliabilityConfig{
		DeliveryAssurance: DeliveryAssuranceConfig{AtLeastOnce: true},
		MonitorInterval:   Duration(60 * time.Second),
		MeasurementImpact: 0.2,
	}
}

// Validate 验证可靠消息配置的有效性
func (c ReliabilityConfig) Validate() error {
	var errs error
	if c.AcksPolicy.IntraMessageThreshold < 0 {
		errs = multierr.Append(errs, fmt.Errorf("reliability: intra_message_threshold must be >= 0"))
	}
	if c.AcksPolicy.AcknowledgementInterval < 0 {
		errs = multierr.Append(errs, fmt.Errorf("reliability: acknowledgement_interval must be >= 0"))
	}
	if c.MonitorInterval <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("reliability: monitor_interval must be > 0"))
	}
	if c.MeasurementImpact <= 0 || c.MeasurementImpact > 1 {
		errs = multierr.Append(errs, fmt.Errorf("reliability: measurement_impact must be in (0, 1]"))
	}
	if c.ToDeliveryAssurance() == 0 {
		errs = multierr.Append(errs, fmt.Errorf("reliability: no delivery assurance enabled"))
	}
	return errs
}

// ToDeliveryAssurance 转换为投递保证标志
func (c ReliabilityConfig) ToDeliveryAssurance() types.DeliveryAssurance {
	var mode types.DeliveryAssurance
	da := c.DeliveryAssurance
	if da.AtMostOnce {
		mode = mode.With(types.AtMostOnce)
	}
	if da.AtLeastOnce {
		mode = mode.With(types.AtLeastOnce)
	}
	if da.ExactlyOnce {
		mode = mode.With(types.ExactlyOnce)
	}
	if da.InOrder {
		mode = mode.With(types.InOrder)
	}
	return mode
}

// ToAckPolicy 转换为确认策略
func (c ReliabilityConfig) ToAckPolicy() types.AckPolicy {
	return types.AckPolicy{
		IntraMessageThreshold:   c.AcksPolicy.IntraMessageThreshold,
		AcknowledgementInterval: c.AcksPolicy.AcknowledgementInterval.Duration(),
	}
}

// WithDeliveryAssurance 用标志设置投递保证
func (c ReliabilityConfig) WithDeliveryAssurance(mode types.DeliveryAssurance) ReliabilityConfig {
	c.DeliveryAssurance = DeliveryAssuranceConfig{
		AtMostOnce:  mode.Has(types.AtMostOnce),
		AtLeastOnce: mode.Has(types.AtLeastOnce),
		InOrder:     mode.Has(types.InOrder),
	}
	return c
}

// WithAcksPolicy 设置确认策略
func (c ReliabilityConfig) WithAcksPolicy(threshold int, interval time.Duration) ReliabilityConfig {
	c.AcksPolicy = AcksPolicyConfig{
		IntraMessageThreshold:   threshold,
		AcknowledgementInterval: Duration(interval),
	}
	return c
}
