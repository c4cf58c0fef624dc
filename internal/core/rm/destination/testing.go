package destination

import (
	"context"
	"sync"
	"time"

	"github.com/dep2p/go-rmseq/pkg/types"
)

// ============================================================================
//                              Mock AckSender
// ============================================================================

// MockAckSender 模拟确认发送器（用于测试）
type MockAckSender struct {
	mu sync.Mutex

	// Sent 已发送的确认记录
	Sent []*SentAck

	// SendError 如果设置，SendAcknowledgement 返回此错误
	SendError error

	// OnSend 发送时的回调
	OnSend func(acksTo types.EndpointReference, ack types.SequenceAcknowledgement)
}

// SentAck 一次发送记录
type SentAck struct {
	AcksTo    types.EndpointReference
	Ack       types.SequenceAcknowledgement
	Timestamp time.Time
}

// NewMockAckSender 创建模拟确认发送器
func NewMockAckSender() *MockAckSender {
	return &MockAckSender{}
}

// SendAcknowledgement 记录发送请求
func (s *MockAckSender) SendAcknowledgement(_ context.Context, acksTo types.EndpointReference, ack types.SequenceAcknowledgement) error {
	s.mu.Lock()
	if s.SendError != nil {
		err := s.SendError
		s.mu.Unlock()
		return err
	}
	s.Sent = append(s.Sent, &SentAck{AcksTo: acksTo, Ack: ack, Timestamp: time.Now()})
	onSend := s.OnSend
	s.mu.Unlock()

	if onSend != nil {
		onSend(acksTo, ack)
	}
	return nil
}

// SetError 设置发送错误
func (s *MockAckSender) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SendError = err
}

// Count 返回已发送的确认数
func (s *MockAckSender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sent)
}

// Last 返回最后一次发送的确认
func (s *MockAckSender) Last() (*SentAck, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Sent) == 0 {
		return nil, false
	}
	return s.Sent[len(s.Sent)-1], true
}

// Reset 重置状态
func (s *MockAckSender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = nil
	s.SendError = nil
}
