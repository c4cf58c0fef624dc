// Package assurance 实现投递保证判定
//
// 判定是纯逻辑：只读取区间集合，从不插入。记录消息号由
// Sequence.Acknowledge 单独完成，二者保持分离。
package assurance

import "github.com/dep2p/go-rmseq/pkg/types"

// RangeView 判定所需的只读区间视图
type RangeView interface {
	// Contains 检查 n 是否已确认
	Contains(n uint64) bool

	// CoversThrough 检查 [1, n] 是否全部确认
	CoversThrough(n uint64) bool
}

// Verdict 判定结果
type Verdict int

const (
	// Deliver 可以投递给应用
	Deliver Verdict = iota
	// Duplicate 重复消息，不得再次投递
	Duplicate
	// Wait 前驱消息尚未全部确认，需要等待
	Wait
)

// String 返回判定结果的字符串表示
func (v Verdict) String() string {
	switch v {
	case Deliver:
		return "deliver"
	case Duplicate:
		return "duplicate"
	case Wait:
		return "wait"
	default:
		return "unknown"
	}
}

// AllPredecessorsAcknowledged 检查 1..n-1 是否全部确认且没有缺口
//
// n <= 1 时没有前驱，恒为 true；否则包含 1 的区间必须延伸到 n-1。
func AllPredecessorsAcknowledged(view RangeView, n uint64) bool {
	if n <= 1 {
		return true
	}
	return view.CoversThrough(n - 1)
}

// Evaluator 投递保证判定器
type Evaluator struct {
	mode types.DeliveryAssurance
}

// NewEvaluator 创建判定器
func NewEvaluator(mode types.DeliveryAssurance) Evaluator {
	return Evaluator{mode: mode}
}

// Mode 返回投递保证模式
func (e Evaluator) Mode() types.DeliveryAssurance {
	return e.mode
}

// IsDuplicate AtMostOnce 下 n 已确认即为重复
func (e Evaluator) IsDuplicate(view RangeView, n uint64) bool {
	return e.mode.Has(types.AtMostOnce) && view.Contains(n)
}

// MustWait InOrder 下前驱未全部确认时需要等待
func (e Evaluator) MustWait(view RangeView, n uint64) bool {
	return e.mode.Has(types.InOrder) && !AllPredecessorsAcknowledged(view, n)
}

// Evaluate 判定消息 n 的处理方式
//
// 先判重，再判序：重复消息直接拒绝，不进入等待。
func (e Evaluator) Evaluate(view RangeView, n uint64) Verdict {
	if e.IsDuplicate(view, n) {
		return Duplicate
	}
	if e.MustWait(view, n) {
		return Wait
	}
	return Deliver
}
