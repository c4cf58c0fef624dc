package monitor

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 60*time.Second, config.MonitorInterval)
	assert.Equal(t, 0.2, config.MeasurementImpact)
}

func TestNew_NormalizesConfig(t *testing.T) {
	m := New(Config{MeasurementImpact: 3}, clock.NewMock())

	assert.Equal(t, DefaultConfig(), m.Config())
}

func TestMonitor_StartsAtZero(t *testing.T) {
	mock := clock.NewMock()
	m := New(DefaultConfig(), mock)

	assert.Equal(t, 0, m.MPM())

	m.RecordAcknowledgment(mock.Now())
	assert.Equal(t, 0, m.MPM(), "单个样本无法估计速率")
	assert.Equal(t, uint64(1), m.Samples())
}

// record 以固定间隔记录 count 次确认
func record(m *Monitor, mock *clock.Mock, count int, gap time.Duration) {
	for i := 0; i < count; i++ {
		mock.Add(gap)
		m.RecordAcknowledgment(mock.Now())
	}
}

func TestMonitor_SteadyRate(t *testing.T) {
	mock := clock.NewMock()
	m := New(DefaultConfig(), mock)

	record(m, mock, 10, 100*time.Millisecond)
	assert.Equal(t, 600, m.MPM())
}

func TestMonitor_FasterAcksYieldHigherMPM(t *testing.T) {
	mock := clock.NewMock()
	m := New(DefaultConfig(), mock)

	record(m, mock, 10, 50*time.Millisecond)
	fast := m.MPM()

	record(m, mock, 5, 100*time.Millisecond)
	slow := m.MPM()

	assert.Greater(t, fast, slow)
	assert.Greater(t, slow, 0)
}

func TestMonitor_IdleDecay(t *testing.T) {
	mock := clock.NewMock()
	config := DefaultConfig()
	config.MonitorInterval = 10 * time.Second
	m := New(config, mock)

	record(m, mock, 5, 100*time.Millisecond)
	assert.Greater(t, m.MPM(), 0)

	mock.Add(11 * time.Second)
	assert.Equal(t, 0, m.MPM(), "窗口外读数归零")

	// 长间隔后的确认不延续旧估计
	m.RecordAcknowledgment(mock.Now())
	assert.Equal(t, 0, m.MPM())

	record(m, mock, 1, time.Second)
	assert.Equal(t, 60, m.MPM())
}

func TestMonitor_SameInstant(t *testing.T) {
	mock := clock.NewMock()
	m := New(DefaultConfig(), mock)

	m.RecordAcknowledgment(mock.Now())
	m.RecordAcknowledgment(mock.Now())

	assert.Equal(t, 60000, m.MPM(), "零间隔按 1ms 计")
}

func TestMonitor_ClockGoingBackwards(t *testing.T) {
	mock := clock.NewMock()
	m := New(DefaultConfig(), mock)

	record(m, mock, 3, time.Second)
	before := m.MPM()

	m.RecordAcknowledgment(mock.Now().Add(-time.Minute))
	assert.Equal(t, before, m.MPM())
	assert.GreaterOrEqual(t, m.MPM(), 0)
}
