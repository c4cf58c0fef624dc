// Package schedule 实现确认发送调度
//
// 每次确认调用 Schedule 标记有待发送的确认。策略：
//
//   - AcknowledgementInterval 为 0：立即确认
//   - AcknowledgementInterval 非 0 且当前 MPM >= IntraMessageThreshold：
//     延迟到距上次发送满一个间隔后再确认
//   - 否则立即确认
//
// 一旦某次确认被判定为立即确认，该批待发送确认整体立即到期。
//
// Scheduler 不是并发安全的，由持有它的 Sequence 加锁保护。
package schedule

import (
	"time"

	"github.com/dep2p/go-rmseq/pkg/types"
)

// Scheduler 确认发送调度器
type Scheduler struct {
	policy types.AckPolicy

	// pending 自上次发送以来是否有新的确认
	pending bool

	// immediate 待发送确认中是否有需要立即发送的
	immediate bool

	// generation 每次 Schedule 递增，用于识别发送期间到达的新确认
	generation uint64

	// lastSent 上次发送时间（初始为创建时间）
	lastSent time.Time
}

// New 创建调度器
func New(policy types.AckPolicy, now time.Time) *Scheduler {
	return &Scheduler{
		policy:   policy,
		lastSent: now,
	}
}

// Policy 返回确认策略
func (s *Scheduler) Policy() types.AckPolicy {
	return s.policy
}

// Deferred 判断在给定 MPM 下是否延迟确认
func (s *Scheduler) Deferred(mpm int) bool {
	return !s.policy.IsImmediate() && mpm >= s.policy.IntraMessageThreshold
}

// Schedule 记录一次待发送确认
func (s *Scheduler) Schedule(mpm int) {
	s.pending = true
	s.generation++
	if !s.Deferred(mpm) {
		s.immediate = true
	}
}

// Pending 是否有未发送的确认
func (s *Scheduler) Pending() bool {
	return s.pending
}

// Generation 返回当前代数
func (s *Scheduler) Generation() uint64 {
	return s.generation
}

// Due 检查此刻是否应发送确认
func (s *Scheduler) Due(now time.Time) bool {
	if !s.pending {
		return false
	}
	if s.immediate {
		return true
	}
	return now.Sub(s.lastSent) >= s.policy.AcknowledgementInterval
}

// NextDue 返回待发送确认的到期时间
func (s *Scheduler) NextDue() (time.Time, bool) {
	if !s.pending {
		return time.Time{}, false
	}
	if s.immediate {
		return s.lastSent, true
	}
	return s.lastSent.Add(s.policy.AcknowledgementInterval), true
}

// Sent 标记确认已发送
func (s *Scheduler) Sent(now time.Time) {
	s.pending = false
	s.immediate = false
	s.lastSent = now
}

// SentThrough 标记截至 generation 的确认已发送
//
// 若发送期间有新的确认到达（代数已变化），保留待发送状态。
func (s *Scheduler) SentThrough(now time.Time, generation uint64) {
	if generation == s.generation {
		s.Sent(now)
		return
	}
	s.lastSent = now
}

// LastSent 返回上次发送时间
func (s *Scheduler) LastSent() time.Time {
	return s.lastSent
}
