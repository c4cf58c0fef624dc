package types

import "time"

// SequenceStats 单个序列的诊断快照
type SequenceStats struct {
	// ID 序列标识
	ID SequenceID

	// MPM 平滑后的每分钟消息数
	MPM int

	// Ranges 当前区间数
	Ranges int

	// Acknowledged 已确认消息总数
	Acknowledged uint64

	// Highest 已确认的最大消息号（0 表示尚无确认）
	Highest uint64

	// LastMessageNumber 声明的最后消息号（0 表示未声明）
	LastMessageNumber uint64

	// AckPending 是否有未发送的确认
	AckPending bool

	// LastAckSent 上次发送确认的时间
	LastAckSent time.Time
}
