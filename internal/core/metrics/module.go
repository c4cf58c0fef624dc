package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-rmseq/config"
	rmif "github.com/dep2p/go-rmseq/pkg/interfaces/rm"
)

// Config 指标配置
type Config struct {
	// Enabled 是否启用指标收集
	Enabled bool

	// Namespace 指标名前缀
	Namespace string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Namespace: "rmseq",
	}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled:   cfg.Metrics.Enabled,
		Namespace: cfg.Metrics.Namespace,
	}
}

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg  *config.Config   `optional:"true"`
	Destination rmif.Destination
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewCollectorFromParams),
	fx.Invoke(registerCollector),
)

// NewCollectorFromParams 从参数创建 Collector
//
// 指标被禁用时返回 nil。
func NewCollectorFromParams(p Params) *Collector {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if !cfg.Enabled {
		return nil
	}
	return NewCollector(cfg.Namespace, p.Destination)
}

// registerParams 注册依赖参数
type registerParams struct {
	fx.In

	Collector  *Collector
	Registerer prometheus.Registerer `optional:"true"`
}

// registerCollector 将收集器注册到 Registerer
func registerCollector(p registerParams) error {
	if p.Collector == nil || p.Registerer == nil {
		return nil
	}
	if err := p.Registerer.Register(p.Collector); err != nil {
		return fmt.Errorf("register metrics collector: %w", err)
	}
	return nil
}
