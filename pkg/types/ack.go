package types

import (
	"fmt"
	"time"
)

// ============================================================================
//                              AckRange - 确认区间
// ============================================================================

// AckRange 闭区间 [Lower, Upper]
type AckRange struct {
	// Lower 下界（含）
	Lower uint64 `json:"lower"`

	// Upper 上界（含）
	Upper uint64 `json:"upper"`
}

// Contains 检查 n 是否落在区间内
func (r AckRange) Contains(n uint64) bool {
	return r.Lower <= n && n <= r.Upper
}

// Size 返回区间内的消息数
func (r AckRange) Size() uint64 {
	return r.Upper - r.Lower + 1
}

// String 返回区间的字符串表示
func (r AckRange) String() string {
	return fmt.Sprintf("{%d,%d}", r.Lower, r.Upper)
}

// ============================================================================
//                              AckPolicy - 确认策略
// ============================================================================

// AckPolicy 确认发送策略（只读配置）
//
// 零值表示立即确认。AcknowledgementInterval 非零时，在消息速率
// 达到 IntraMessageThreshold（每分钟消息数）时延迟确认。
type AckPolicy struct {
	// IntraMessageThreshold 触发延迟确认的最低 MPM
	IntraMessageThreshold int

	// AcknowledgementInterval 延迟确认间隔
	AcknowledgementInterval time.Duration
}

// IsImmediate 检查策略是否总是立即确认
func (p AckPolicy) IsImmediate() bool {
	return p.AcknowledgementInterval <= 0
}

// ============================================================================
//                              SequenceAcknowledgement - 确认快照
// ============================================================================

// SequenceAcknowledgement 一次确认帧的内容
type SequenceAcknowledgement struct {
	// Identifier 序列标识
	Identifier SequenceID `json:"identifier"`

	// Ranges 已确认区间（升序、已合并）
	Ranges []AckRange `json:"ranges"`

	// Final 序列已声明结束且全部确认
	Final bool `json:"final,omitempty"`
}

// Covers 检查快照是否包含消息 n
func (a SequenceAcknowledgement) Covers(n uint64) bool {
	for _, r := range a.Ranges {
		if r.Contains(n) {
			return true
		}
		if r.Lower > n {
			return false
		}
	}
	return false
}
