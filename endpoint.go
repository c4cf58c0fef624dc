package rmseq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-rmseq/config"
	"github.com/dep2p/go-rmseq/internal/core/rm/destination"
	"github.com/dep2p/go-rmseq/internal/util/logger"
	rmif "github.com/dep2p/go-rmseq/pkg/interfaces/rm"
	"github.com/dep2p/go-rmseq/pkg/types"
)

var log = logger.Logger("rmseq")

// stopTimeout Close 停止 Fx 应用的超时
const stopTimeout = 15 * time.Second

// ════════════════════════════════════════════════════════════════════════════
//                              Endpoint
// ════════════════════════════════════════════════════════════════════════════

// Endpoint 可靠消息目的端
//
// Endpoint 组装序列管理器、后台确认刷新与指标。
// 关闭后不可重新启动。
type Endpoint struct {
	config *endpointConfig

	app      appLifecycle
	manager  *destination.Manager
	registry *prometheus.Registry

	mu      sync.Mutex
	started bool
	closed  bool
}

// appLifecycle fx.App 的生命周期方法
type appLifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// New 创建端点（未启动）
//
// 示例：
//
//	ep, err := rmseq.New(
//	    rmseq.WithPreset("batched"),
//	    rmseq.WithDeliveryAssurance(types.ExactlyOnce),
//	    rmseq.WithAckSender(sender),
//	)
func New(opts ...Option) (*Endpoint, error) {
	cfg := newEndpointConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	ep := &Endpoint{config: cfg}

	app, err := buildFxApp(cfg, ep)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	ep.app = app
	return ep, nil
}

// Start 快捷启动函数
//
// 等价于 New() + Endpoint.Start()。
func Start(ctx context.Context, opts ...Option) (*Endpoint, error) {
	ep, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := ep.Start(ctx); err != nil {
		return nil, fmt.Errorf("start endpoint: %w", err)
	}
	return ep, nil
}

// Start 启动端点
func (e *Endpoint) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEndpointClosed
	}
	if e.started {
		return ErrAlreadyStarted
	}

	if err := e.app.Start(ctx); err != nil {
		log.Error("端点启动失败", "error", err)
		return err
	}
	e.started = true

	log.Info("端点已启动",
		"assurance", e.config.config.Reliability.ToDeliveryAssurance(),
		"ackSender", e.config.sender != nil,
		"metrics", e.config.config.Metrics.Enabled)
	return nil
}

// Close 停止端点并关闭所有序列
func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if !e.started {
		return nil
	}
	e.started = false

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := e.app.Stop(ctx); err != nil {
		log.Error("端点停止失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}
	log.Info("端点已关闭")
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              访问器
// ════════════════════════════════════════════════════════════════════════════

// Destination 返回序列管理器
func (e *Endpoint) Destination() rmif.Destination {
	return e.manager
}

// Manager 返回具体的序列管理器（用于恢复序列等扩展操作）
func (e *Endpoint) Manager() *destination.Manager {
	return e.manager
}

// Config 返回生效配置的副本
func (e *Endpoint) Config() *config.Config {
	return config.CloneConfig(e.config.config)
}

// Registry 返回端点自有的指标注册表
//
// 指标被禁用或通过 WithRegisterer 指定了外部注册表时返回 nil。
func (e *Endpoint) Registry() *prometheus.Registry {
	return e.registry
}

// Stats 返回所有序列的诊断快照
func (e *Endpoint) Stats() []types.SequenceStats {
	return e.manager.Stats()
}

// Flush 立即发送所有到期的确认
func (e *Endpoint) Flush(ctx context.Context) error {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()

	if !started {
		return ErrNotStarted
	}
	return e.manager.FlushAcknowledgements(ctx)
}
