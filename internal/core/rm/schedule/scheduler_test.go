package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-rmseq/pkg/types"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestScheduler_Immediate(t *testing.T) {
	s := New(types.AckPolicy{}, epoch)

	assert.False(t, s.Due(epoch), "尚无确认")

	s.Schedule(0)
	assert.True(t, s.Pending())
	assert.True(t, s.Due(epoch))

	s.Sent(epoch)
	assert.False(t, s.Due(epoch))
	assert.False(t, s.Due(epoch.Add(time.Hour)), "发送后直到新确认前不到期")

	s.Schedule(0)
	assert.True(t, s.Due(epoch))
}

func TestScheduler_Deferred(t *testing.T) {
	policy := types.AckPolicy{AcknowledgementInterval: 200 * time.Millisecond}
	s := New(policy, epoch)

	s.Schedule(0)
	s.Schedule(0)
	s.Schedule(0)
	assert.False(t, s.Due(epoch.Add(100*time.Millisecond)))

	due, ok := s.NextDue()
	require.True(t, ok)
	assert.Equal(t, epoch.Add(200*time.Millisecond), due)

	assert.True(t, s.Due(epoch.Add(200*time.Millisecond)))

	s.Sent(epoch.Add(250 * time.Millisecond))
	assert.False(t, s.Due(epoch.Add(time.Second)), "无新确认")

	s.Schedule(0)
	assert.False(t, s.Due(epoch.Add(400*time.Millisecond)), "间隔从上次发送算起")
	assert.True(t, s.Due(epoch.Add(450*time.Millisecond)))
}

func TestScheduler_DeferredWithoutAcks(t *testing.T) {
	s := New(types.AckPolicy{AcknowledgementInterval: time.Second}, epoch)

	assert.False(t, s.Due(epoch.Add(time.Hour)), "间隔已过但没有待发送确认")
	_, ok := s.NextDue()
	assert.False(t, ok)
}

func TestScheduler_Threshold(t *testing.T) {
	policy := types.AckPolicy{
		IntraMessageThreshold:   100,
		AcknowledgementInterval: time.Second,
	}
	s := New(policy, epoch)

	assert.False(t, s.Deferred(99))
	assert.True(t, s.Deferred(100))

	// 高速率：延迟
	s.Schedule(500)
	assert.False(t, s.Due(epoch))

	// 低速率确认到达：整批立即到期
	s.Schedule(10)
	assert.True(t, s.Due(epoch))
	due, ok := s.NextDue()
	require.True(t, ok)
	assert.Equal(t, epoch, due)
}

func TestScheduler_SentThrough(t *testing.T) {
	s := New(types.AckPolicy{}, epoch)

	s.Schedule(0)
	gen := s.Generation()

	// 发送期间到达新确认
	s.Schedule(0)
	s.SentThrough(epoch.Add(time.Second), gen)
	assert.True(t, s.Pending())
	assert.Equal(t, epoch.Add(time.Second), s.LastSent())

	s.SentThrough(epoch.Add(2*time.Second), s.Generation())
	assert.False(t, s.Pending())
}

func TestScheduler_Policy(t *testing.T) {
	policy := types.AckPolicy{IntraMessageThreshold: 3, AcknowledgementInterval: time.Second}
	s := New(policy, epoch)

	assert.Equal(t, policy, s.Policy())
	assert.Equal(t, epoch, s.LastSent())
}
