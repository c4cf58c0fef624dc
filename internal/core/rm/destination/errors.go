package destination

import "errors"

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrSequenceClosed 序列已关闭
	ErrSequenceClosed = errors.New("sequence closed")

	// ErrSequenceExists 序列已存在
	ErrSequenceExists = errors.New("sequence already exists")

	// ErrUnknownSequence 未知序列
	ErrUnknownSequence = errors.New("unknown sequence")

	// ErrSequenceTerminated 序列已终止
	ErrSequenceTerminated = errors.New("sequence terminated")

	// ErrLastMessageNumberSet 最后消息号已设置为不同的值
	ErrLastMessageNumberSet = errors.New("last message number already set")
	// ErrCorrelationIDSet 关联标识已设置为不同的值
	ErrCorrelationIDSet = errors.New("correlation id already set")

	// ErrNilSequence 空序列
	ErrNilSequence = errors.New("nil sequence")

	// ErrNoSender 未配置确认发送器
	ErrNoSender = errors.New("no ack sender configured")

	// ErrAlreadyStarted 已启动
	ErrAlreadyStarted = errors.New("destination already started")
)
