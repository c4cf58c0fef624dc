// Package types 定义 go-rmseq 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              序列相关错误
// ============================================================================

var (
	// ErrInvalidMessageNumber 无效的消息号（消息号从 1 开始）
	ErrInvalidMessageNumber = errors.New("invalid message number: must be positive")

	// ErrInvalidRange 无效的确认区间
	ErrInvalidRange = errors.New("invalid ack range")

	// ErrEmptySequenceID 空序列标识
	ErrEmptySequenceID = errors.New("empty sequence ID")
)

// ============================================================================
//                              SequenceFault - 序列故障
// ============================================================================

// FaultCode 序列故障代码
type FaultCode string

const (
	// FaultLastMessageNumberExceeded 消息号超过声明的最后消息号
	FaultLastMessageNumberExceeded FaultCode = "LastMessageNumberExceeded"
)

// SequenceFault 序列级故障
//
// 对序列是致命的，对进程不是；同步返回给调用方，不在内部重试。
type SequenceFault struct {
	// Code 故障代码
	Code FaultCode

	// Sequence 出错的序列
	Sequence SequenceID

	// MessageNumber 触发故障的消息号
	MessageNumber uint64

	// LastMessageNumber 声明的最后消息号
	LastMessageNumber uint64
}

// ErrSequenceTerminationExceeded 用于 errors.Is 匹配 LastMessageNumberExceeded 故障
var ErrSequenceTerminationExceeded = &SequenceFault{Code: FaultLastMessageNumberExceeded}

// NewLastMessageNumberExceeded 创建 LastMessageNumberExceeded 故障
func NewLastMessageNumberExceeded(id SequenceID, n, last uint64) *SequenceFault {
	return &SequenceFault{
		Code:              FaultLastMessageNumberExceeded,
		Sequence:          id,
		MessageNumber:     n,
		LastMessageNumber: last,
	}
}

func (f *SequenceFault) Error() string {
	if f.Sequence == "" {
		return string(f.Code)
	}
	return fmt.Sprintf("sequence %s: %s: message number %d exceeds last message number %d",
		f.Sequence, f.Code, f.MessageNumber, f.LastMessageNumber)
}

// Is 故障代码相同即视为匹配
func (f *SequenceFault) Is(target error) bool {
	t, ok := target.(*SequenceFault)
	if !ok {
		return false
	}
	return t.Code == f.Code
}

// ============================================================================
//                              ParseError - 解析错误
// ============================================================================

// ParseError 字符串解析错误
type ParseError struct {
	Kind  string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Kind, e.Value)
}
