package rmseq

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-rmseq/internal/core/metrics"
	"github.com/dep2p/go-rmseq/internal/core/rm/destination"
	rmif "github.com/dep2p/go-rmseq/pkg/interfaces/rm"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序：
//  1. 配置与外部依赖（AckSender、Clock、Registerer）
//  2. 目的端序列管理器
//  3. 指标（配置启用时）
//  4. 用户扩展
func buildFxApp(cfg *endpointConfig, ep *Endpoint) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := cfg.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg.config),
	}

	if cfg.sender != nil {
		sender := cfg.sender
		modules = append(modules, fx.Provide(func() rmif.AckSender { return sender }))
	}
	if cfg.clock != nil {
		clk := cfg.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 目的端
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, destination.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 3. 指标（条件加载）
	// ════════════════════════════════════════════════════════════════════════
	if cfg.config.Metrics.Enabled {
		reg := cfg.registerer
		if reg == nil {
			ep.registry = prometheus.NewRegistry()
			reg = ep.registry
		}
		modules = append(modules,
			fx.Provide(func() prometheus.Registerer { return reg }),
			metrics.Module,
		)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 用户扩展（Fx Options）
	// ════════════════════════════════════════════════════════════════════════
	if len(cfg.userFxOptions) > 0 {
		modules = append(modules, cfg.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. Endpoint 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(func(m *destination.Manager) {
		ep.manager = m
	}))

	// ════════════════════════════════════════════════════════════════════════
	// 6. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}
