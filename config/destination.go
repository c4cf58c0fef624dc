package config

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// DestinationConfig 目的端配置
type DestinationConfig struct {
	// FlushInterval 后台刷新到期确认的周期
	// 默认值: 100ms
	FlushInterval Duration `json:"flush_interval" yaml:"flush_interval"`

	// TerminatedCacheSize 记住的已终止序列数
	// 默认值: 1024
	TerminatedCacheSize int `json:"terminated_cache_size" yaml:"terminated_cache_size"`
}

// DefaultDestinationConfig 返回默认的目的端配置
func DefaultDestinationConfig() DestinationConfig {
	return DestinationConfig{
		FlushInterval:       Duration(100 * time.Millisecond),
		TerminatedCacheSize: 1024,
	}
}

// Validate 验证目的端配置的有效性
func (c DestinationConfig) Validate() error {
	var errs error
	if c.FlushInterval <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("destination: flush_interval must be > 0"))
	}
	if c.TerminatedCacheSize < 1 {
		errs = multierr.Append(errs, fmt.Errorf("destination: terminated_cache_size must be >= 1"))
	}
	return errs
}
