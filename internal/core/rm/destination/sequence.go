package destination

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/spaolacci/murmur3"

	"github.com/dep2p/go-rmseq/internal/core/rm/ackrange"
	"github.com/dep2p/go-rmseq/internal/core/rm/assurance"
	"github.com/dep2p/go-rmseq/internal/core/rm/monitor"
	"github.com/dep2p/go-rmseq/internal/core/rm/schedule"
	"github.com/dep2p/go-rmseq/internal/util/logger"
	rmif "github.com/dep2p/go-rmseq/pkg/interfaces/rm"
	"github.com/dep2p/go-rmseq/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("rm/destination")

// ============================================================================
//                              Sequence 实现
// ============================================================================

// Sequence 目的端序列
type Sequence struct {
	id        types.SequenceID
	acksTo    types.EndpointReference
	evaluator assurance.Evaluator
	clock     clock.Clock
	monitor   *monitor.Monitor

	mu sync.Mutex

	// ranges 已确认区间
	ranges *ackrange.Set

	// lastMessageNumber 声明的最后消息号（0 表示未声明）
	lastMessageNumber uint64

	correlationID string

	scheduler *schedule.Scheduler

	// changed 区间每次变化时关闭并替换，唤醒 InOrder 等待者
	changed chan struct{}

	// waiters 当前阻塞在 InOrder 等待中的调用数
	waiters int

	closed bool
}

var _ rmif.DestinationSequence = (*Sequence)(nil)

// NewSequence 创建新序列
func NewSequence(id types.SequenceID, acksTo types.EndpointReference, config Config, opts ...Option) *Sequence {
	o := applyOptions(opts)
	return &Sequence{
		id:        id,
		acksTo:    acksTo,
		evaluator: assurance.NewEvaluator(config.DeliveryAssurance),
		clock:     o.clock,
		monitor:   monitor.New(config.Monitor, o.clock),
		ranges:    ackrange.New(),
		scheduler: schedule.New(config.AckPolicy, o.clock.Now()),
		changed:   make(chan struct{}),
	}
}

// RecoverSequence 从已保存的状态恢复序列
//
// acksTo 为恢复后确认帧的发送目标；lastMessageNumber 为 0 表示未声明；
// ranges 会被校验并合并。
func RecoverSequence(id types.SequenceID, acksTo types.EndpointReference, lastMessageNumber uint64, ranges []types.AckRange, config Config, opts ...Option) (*Sequence, error) {
	set, err := ackrange.FromRanges(ranges)
	if err != nil {
		return nil, fmt.Errorf("recover sequence %s: %w", id, err)
	}
	if highest, ok := set.Highest(); ok && lastMessageNumber != 0 && highest > lastMessageNumber {
		return nil, types.NewLastMessageNumberExceeded(id, highest, lastMessageNumber)
	}

	s := NewSequence(id, acksTo, config, opts...)
	s.ranges = set
	s.lastMessageNumber = lastMessageNumber
	return s, nil
}

// ID 返回序列标识
func (s *Sequence) ID() types.SequenceID {
	return s.id
}

// AcksTo 返回确认目标端点
func (s *Sequence) AcksTo() types.EndpointReference {
	return s.acksTo
}

// DeliveryAssurance 返回投递保证模式
func (s *Sequence) DeliveryAssurance() types.DeliveryAssurance {
	return s.evaluator.Mode()
}

// ============================================================================
//                              确认
// ============================================================================

// Acknowledge 记录消息 n 已收到
func (s *Sequence) Acknowledge(n uint64) error {
	if n == 0 {
		return types.ErrInvalidMessageNumber
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSequenceClosed
	}
	if s.lastMessageNumber != 0 && n > s.lastMessageNumber {
		fault := types.NewLastMessageNumberExceeded(s.id, n, s.lastMessageNumber)
		log.Warn("消息号超过最后消息号",
			"sequence", s.id.ShortString(),
			"messageNumber", n,
			"lastMessageNumber", s.lastMessageNumber)
		return fault
	}

	added := s.ranges.Insert(n)
	s.monitor.RecordAcknowledgment(s.clock.Now())
	s.scheduler.Schedule(s.monitor.MPM())

	if added {
		s.notifyLocked()
		log.Debug("确认消息",
			"sequence", s.id.ShortString(),
			"messageNumber", n,
			"ranges", s.ranges.Len())
	}
	return nil
}

// notifyLocked 唤醒所有 InOrder 等待者
func (s *Sequence) notifyLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// IsAcknowledged 检查消息 n 是否已确认
func (s *Sequence) IsAcknowledged(n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return n != 0 && s.ranges.Contains(n)
}

// AllPredecessorsAcknowledged 检查 1..n-1 是否全部确认
func (s *Sequence) AllPredecessorsAcknowledged(n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return assurance.AllPredecessorsAcknowledged(s.ranges, n)
}

// ============================================================================
//                              投递保证
// ============================================================================

// ApplyDeliveryAssurance 判定消息 n 是否为重复消息
//
// 本方法只读，不记录 n；投递成功后调用方需调用 Acknowledge。
// InOrder 模式下阻塞直到前驱全部确认，每次区间变化后重新判定。
func (s *Sequence) ApplyDeliveryAssurance(ctx context.Context, n uint64) (bool, error) {
	if n == 0 {
		return false, types.ErrInvalidMessageNumber
	}

	s.mu.Lock()
	for {
		if s.closed {
			s.mu.Unlock()
			return false, ErrSequenceClosed
		}

		switch s.evaluator.Evaluate(s.ranges, n) {
		case assurance.Duplicate:
			s.mu.Unlock()
			log.Debug("重复消息", "sequence", s.id.ShortString(), "messageNumber", n)
			return true, nil
		case assurance.Deliver:
			s.mu.Unlock()
			return false, nil
		}

		changed := s.changed
		s.waiters++
		s.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			s.mu.Lock()
			s.waiters--
			s.mu.Unlock()
			return false, ctx.Err()
		}

		s.mu.Lock()
		s.waiters--
	}
}

// Waiters 返回当前阻塞在 InOrder 等待中的调用数
func (s *Sequence) Waiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters
}

// ============================================================================
//                              序列终止
// ============================================================================

// SetLastMessageNumber 声明序列的最后消息号
//
// 一经设置不可更改；已确认的消息号超过 n 时返回故障。
func (s *Sequence) SetLastMessageNumber(n uint64) error {
	if n == 0 {
		return types.ErrInvalidMessageNumber
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastMessageNumber != 0 && s.lastMessageNumber != n {
		return fmt.Errorf("%w: %d (requested %d)", ErrLastMessageNumberSet, s.lastMessageNumber, n)
	}
	if highest, ok := s.ranges.Highest(); ok && highest > n {
		return types.NewLastMessageNumberExceeded(s.id, highest, n)
	}
	s.lastMessageNumber = n
	return nil
}

// LastMessageNumber 返回声明的最后消息号
func (s *Sequence) LastMessageNumber() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMessageNumber, s.lastMessageNumber != 0
}

// AllAcknowledged 序列已声明结束且 1..last 全部确认
func (s *Sequence) AllAcknowledged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allAcknowledgedLocked()
}

func (s *Sequence) allAcknowledgedLocked() bool {
	return s.lastMessageNumber != 0 && s.ranges.CoversThrough(s.lastMessageNumber)
}

// ============================================================================
//                              确认发送
// ============================================================================

// SendAcknowledgement 是否应立即发送确认帧
func (s *Sequence) SendAcknowledgement() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.Due(s.clock.Now())
}

// AcknowledgmentSent 通知确认帧已发送
func (s *Sequence) AcknowledgmentSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler.Sent(s.clock.Now())
}

// Acknowledgement 返回确认帧内容快照
func (s *Sequence) Acknowledgement() types.SequenceAcknowledgement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acknowledgementLocked()
}

func (s *Sequence) acknowledgementLocked() types.SequenceAcknowledgement {
	return types.SequenceAcknowledgement{
		Identifier: s.id,
		Ranges:     s.ranges.Ranges(),
		Final:      s.allAcknowledgedLocked(),
	}
}

// prepareAcknowledgement 原子地检查是否到期并取快照
func (s *Sequence) prepareAcknowledgement() (types.SequenceAcknowledgement, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scheduler.Due(s.clock.Now()) {
		return types.SequenceAcknowledgement{}, 0, false
	}
	return s.acknowledgementLocked(), s.scheduler.Generation(), true
}

// acknowledgmentSentThrough 标记截至 generation 的确认已发送
func (s *Sequence) acknowledgmentSentThrough(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler.SentThrough(s.clock.Now(), generation)
}

// ============================================================================
//                              访问器
// ============================================================================

// Monitor 返回速率监视器
func (s *Sequence) Monitor() rmif.RateMonitor {
	return s.monitor
}

// CorrelationID 返回关联标识（默认为空）
func (s *Sequence) CorrelationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.correlationID
}

// SetCorrelationID 设置关联标识
//
// 只能设置一次；再次设置相同的值无效果，不同的值返回 ErrCorrelationIDSet。
func (s *Sequence) SetCorrelationID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.correlationID != "" && s.correlationID != id {
		return fmt.Errorf("%w: %q (requested %q)", ErrCorrelationIDSet, s.correlationID, id)
	}
	s.correlationID = id
	return nil
}

// Stats 返回诊断快照
func (s *Sequence) Stats() types.SequenceStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	highest, _ := s.ranges.Highest()
	return types.SequenceStats{
		ID:                s.id,
		MPM:               s.monitor.MPM(),
		Ranges:            s.ranges.Len(),
		Acknowledged:      s.ranges.Count(),
		Highest:           highest,
		LastMessageNumber: s.lastMessageNumber,
		AckPending:        s.scheduler.Pending(),
		LastAckSent:       s.scheduler.LastSent(),
	}
}

// Equal 两个序列相等当且仅当标识相等
func (s *Sequence) Equal(other any) bool {
	o, ok := other.(*Sequence)
	if !ok || s == nil || o == nil {
		return false
	}
	return s.id == o.id
}

// Hash 返回基于标识的哈希值
func (s *Sequence) Hash() uint64 {
	return murmur3.Sum64([]byte(s.id))
}

// Close 关闭序列，释放所有 InOrder 等待者
func (s *Sequence) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.changed)
}

// String 返回字符串表示
func (s *Sequence) String() string {
	return fmt.Sprintf("Sequence(%s)", s.id)
}
