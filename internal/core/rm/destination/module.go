package destination

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-rmseq/config"
	rmif "github.com/dep2p/go-rmseq/pkg/interfaces/rm"
)

// ============================================================================
//                              配置转换
// ============================================================================

// ConfigFromUnified 从统一配置创建目的端配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}

	c := DefaultConfig()
	c.DeliveryAssurance = cfg.Reliability.ToDeliveryAssurance()
	c.AckPolicy = cfg.Reliability.ToAckPolicy()
	c.Monitor.MonitorInterval = cfg.Reliability.MonitorInterval.Duration()
	c.Monitor.MeasurementImpact = cfg.Reliability.MeasurementImpact
	c.FlushInterval = cfg.Destination.FlushInterval.Duration()
	c.TerminatedCacheSize = cfg.Destination.TerminatedCacheSize
	return c.normalized()
}

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 统一配置（可选）
	Config *config.Config `optional:"true"`

	// Sender 确认发送器（可选，由传输层提供）
	Sender rmif.AckSender `optional:"true"`

	// Clock 时钟（可选，测试中注入 Mock）
	Clock clock.Clock `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Manager 序列管理器
	Manager *Manager

	// Destination 序列管理器接口
	Destination rmif.Destination
}

// ProvideManager 提供序列管理器
func ProvideManager(input ModuleInput) (ModuleOutput, error) {
	var opts []Option
	if input.Clock != nil {
		opts = append(opts, WithClock(input.Clock))
	}

	manager, err := NewManager(ConfigFromUnified(input.Config), input.Sender, opts...)
	if err != nil {
		return ModuleOutput{}, err
	}

	return ModuleOutput{
		Manager:     manager,
		Destination: manager,
	}, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("rm/destination",
		fx.Provide(ProvideManager),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Manager *Manager
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return input.Manager.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return input.Manager.Stop()
		},
	})
}
