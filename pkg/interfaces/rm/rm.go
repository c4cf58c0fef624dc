// Package rm 定义可靠投递（目的端序列）相关接口
//
// 调用约定（上游分发器）：
//
//  1. 收到编号消息后调用 ApplyDeliveryAssurance 判定是否投递
//  2. 未被拒绝则投递给应用，并调用 Acknowledge 记录
//  3. 调用 SendAcknowledgement 判断是否立即发送确认帧，
//     发送后调用 AcknowledgmentSent
//
// 确认帧的序列化与发送由传输层实现 AckSender 完成，不在本模块范围内。
package rm

import (
	"context"

	"github.com/dep2p/go-rmseq/pkg/types"
)

// ============================================================================
//                              AckSender 接口
// ============================================================================

// AckSender 确认帧发送器（由传输层实现）
type AckSender interface {
	// SendAcknowledgement 将确认快照发送到 acksTo 端点
	SendAcknowledgement(ctx context.Context, acksTo types.EndpointReference, ack types.SequenceAcknowledgement) error
}

// AckSenderFunc 函数适配器
type AckSenderFunc func(ctx context.Context, acksTo types.EndpointReference, ack types.SequenceAcknowledgement) error

// SendAcknowledgement 调用 f
func (f AckSenderFunc) SendAcknowledgement(ctx context.Context, acksTo types.EndpointReference, ack types.SequenceAcknowledgement) error {
	return f(ctx, acksTo, ack)
}

// ============================================================================
//                              DestinationSequence 接口
// ============================================================================

// DestinationSequence 目的端序列
//
// 所有方法并发安全。
type DestinationSequence interface {
	// ID 返回序列标识
	ID() types.SequenceID

	// AcksTo 返回确认目标端点
	AcksTo() types.EndpointReference

	// ApplyDeliveryAssurance 判定消息 n 是否为重复消息
	//
	// 返回 true 表示重复、不得再次投递。InOrder 模式下可能阻塞，
	// 直到所有前驱消息被确认、ctx 取消或序列关闭。
	ApplyDeliveryAssurance(ctx context.Context, n uint64) (bool, error)

	// Acknowledge 记录消息 n 已收到
	//
	// n 超过声明的最后消息号时返回 *types.SequenceFault。
	Acknowledge(n uint64) error

	// SetLastMessageNumber 声明序列的最后消息号
	SetLastMessageNumber(n uint64) error

	// SendAcknowledgement 是否应立即发送确认帧
	SendAcknowledgement() bool

	// AcknowledgmentSent 通知确认帧已发送
	AcknowledgmentSent()

	// Acknowledgement 返回确认帧内容快照
	Acknowledgement() types.SequenceAcknowledgement

	// IsAcknowledged 检查消息 n 是否已确认
	IsAcknowledged(n uint64) bool

	// AllPredecessorsAcknowledged 检查 1..n-1 是否全部确认
	AllPredecessorsAcknowledged(n uint64) bool

	// LastMessageNumber 返回声明的最后消息号
	LastMessageNumber() (uint64, bool)

	// AllAcknowledged 序列已声明结束且 1..last 全部确认
	AllAcknowledged() bool

	// CorrelationID 返回关联标识
	CorrelationID() string

	// SetCorrelationID 设置关联标识（只能设置一次）
	SetCorrelationID(id string) error

	// Monitor 返回速率监视器
	Monitor() RateMonitor

	// Stats 返回诊断快照
	Stats() types.SequenceStats

	// Close 关闭序列，释放所有等待中的调用
	Close()
}

// RateMonitor 确认速率监视器
type RateMonitor interface {
	// MPM 返回平滑后的每分钟消息数
	MPM() int

	// Samples 返回累计确认次数
	Samples() uint64
}

// ============================================================================
//                              Destination 接口
// ============================================================================

// Destination 目的端序列管理器
type Destination interface {
	// CreateSequence 以新标识创建序列
	CreateSequence(acksTo types.EndpointReference) (DestinationSequence, error)

	// Sequence 按标识查找序列
	Sequence(id types.SequenceID) (DestinationSequence, error)

	// Terminate 终止并移除序列
	Terminate(id types.SequenceID) error

	// FlushAcknowledgements 发送所有到期的确认
	FlushAcknowledgements(ctx context.Context) error

	// Stats 返回所有序列的诊断快照
	Stats() []types.SequenceStats
}
