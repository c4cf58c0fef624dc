package destination

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/multierr"

	rmif "github.com/dep2p/go-rmseq/pkg/interfaces/rm"
	"github.com/dep2p/go-rmseq/pkg/types"
)

// ============================================================================
//                              Manager 实现
// ============================================================================

// Manager 目的端序列管理器
type Manager struct {
	config Config
	sender rmif.AckSender
	clock  clock.Clock

	mu        sync.RWMutex
	sequences map[types.SequenceID]*Sequence

	// terminated 最近终止的序列 -> 终止时间
	terminated *lru.Cache[types.SequenceID, time.Time]

	// 刷新计数
	framesSent atomic.Uint64
	sendErrors atomic.Uint64

	// 后台刷新
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ rmif.Destination = (*Manager)(nil)

// NewManager 创建序列管理器
//
// sender 可以为 nil，此时不启动后台刷新，FlushAcknowledgements 返回 ErrNoSender。
func NewManager(config Config, sender rmif.AckSender, opts ...Option) (*Manager, error) {
	config = config.normalized()
	o := applyOptions(opts)

	terminated, err := lru.New[types.SequenceID, time.Time](config.TerminatedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create terminated cache: %w", err)
	}

	return &Manager{
		config:     config,
		sender:     sender,
		clock:      o.clock,
		sequences:  make(map[types.SequenceID]*Sequence),
		terminated: terminated,
	}, nil
}

// Config 返回生效的配置
func (m *Manager) Config() Config {
	return m.config
}

// CreateSequence 以新标识创建并注册序列
func (m *Manager) CreateSequence(acksTo types.EndpointReference) (rmif.DestinationSequence, error) {
	seq := NewSequence(types.NewSequenceID(), acksTo, m.config, WithClock(m.clock))
	if err := m.AddSequence(seq); err != nil {
		return nil, err
	}
	return seq, nil
}

// AddSequence 注册已有序列（例如恢复的序列）
func (m *Manager) AddSequence(seq *Sequence) error {
	if seq == nil {
		return ErrNilSequence
	}
	if seq.ID().IsEmpty() {
		return types.ErrEmptySequenceID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sequences[seq.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrSequenceExists, seq.ID())
	}
	m.sequences[seq.ID()] = seq
	m.terminated.Remove(seq.ID())

	log.Info("序列已创建",
		"sequence", seq.ID().ShortString(),
		"acksTo", seq.AcksTo(),
		"assurance", seq.DeliveryAssurance())
	return nil
}

// Sequence 按标识查找序列
func (m *Manager) Sequence(id types.SequenceID) (rmif.DestinationSequence, error) {
	m.mu.RLock()
	seq, ok := m.sequences[id]
	m.mu.RUnlock()

	if ok {
		return seq, nil
	}
	if m.terminated.Contains(id) {
		return nil, fmt.Errorf("%w: %s", ErrSequenceTerminated, id)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSequence, id)
}

// Terminate 终止并移除序列
//
// 序列被关闭，阻塞中的 InOrder 调用返回 ErrSequenceClosed。
func (m *Manager) Terminate(id types.SequenceID) error {
	m.mu.Lock()
	seq, ok := m.sequences[id]
	if ok {
		delete(m.sequences, id)
		m.terminated.Add(id, m.clock.Now())
	}
	m.mu.Unlock()

	if !ok {
		if m.terminated.Contains(id) {
			return fmt.Errorf("%w: %s", ErrSequenceTerminated, id)
		}
		return fmt.Errorf("%w: %s", ErrUnknownSequence, id)
	}

	seq.Close()
	log.Info("序列已终止", "sequence", id.ShortString())
	return nil
}

// Sequences 返回所有序列（按标识排序）
func (m *Manager) Sequences() []rmif.DestinationSequence {
	seqs := m.snapshot()
	out := make([]rmif.DestinationSequence, len(seqs))
	for i, seq := range seqs {
		out[i] = seq
	}
	return out
}

// Len 返回序列数
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sequences)
}

// Stats 返回所有序列的诊断快照
func (m *Manager) Stats() []types.SequenceStats {
	seqs := m.snapshot()
	stats := make([]types.SequenceStats, len(seqs))
	for i, seq := range seqs {
		stats[i] = seq.Stats()
	}
	return stats
}

// snapshot 复制序列列表，避免持有注册表锁调用序列方法
func (m *Manager) snapshot() []*Sequence {
	m.mu.RLock()
	seqs := make([]*Sequence, 0, len(m.sequences))
	for _, seq := range m.sequences {
		seqs = append(seqs, seq)
	}
	m.mu.RUnlock()

	sort.Slice(seqs, func(i, j int) bool { return seqs[i].ID() < seqs[j].ID() })
	return seqs
}

// ============================================================================
//                              确认刷新
// ============================================================================

// FlushAcknowledgements 发送所有到期的确认
//
// 发送失败的序列保持待发送状态，错误合并后返回。
func (m *Manager) FlushAcknowledgements(ctx context.Context) error {
	if m.sender == nil {
		return ErrNoSender
	}

	var errs error
	for _, seq := range m.snapshot() {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}

		ack, generation, due := seq.prepareAcknowledgement()
		if !due {
			continue
		}

		if err := m.sender.SendAcknowledgement(ctx, seq.AcksTo(), ack); err != nil {
			log.Warn("发送确认失败",
				"sequence", seq.ID().ShortString(),
				"acksTo", seq.AcksTo(),
				"err", err)
			m.sendErrors.Add(1)
			errs = multierr.Append(errs, fmt.Errorf("sequence %s: %w", seq.ID(), err))
			continue
		}

		seq.acknowledgmentSentThrough(generation)
		m.framesSent.Add(1)
		log.Debug("确认已发送",
			"sequence", seq.ID().ShortString(),
			"ranges", len(ack.Ranges),
			"final", ack.Final)
	}
	return errs
}

// AckFramesSent 返回已成功发送的确认帧数
func (m *Manager) AckFramesSent() uint64 {
	return m.framesSent.Load()
}

// AckSendErrors 返回发送确认帧失败的次数
func (m *Manager) AckSendErrors() uint64 {
	return m.sendErrors.Load()
}

// Start 启动后台确认刷新
func (m *Manager) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true

	if m.sender == nil {
		log.Info("未配置确认发送器，不启动后台刷新")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	ticker := m.clock.Ticker(m.config.FlushInterval)

	m.wg.Add(1)
	go m.flushLoop(ctx, ticker)

	log.Info("目的端已启动", "flushInterval", m.config.FlushInterval)
	return nil
}

// flushLoop 按 FlushInterval 刷新到期确认
func (m *Manager) flushLoop(ctx context.Context, ticker *clock.Ticker) {
	defer m.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.FlushAcknowledgements(ctx); err != nil && ctx.Err() == nil {
				log.Debug("刷新确认出错", "err", err)
			}
		}
	}
}

// Stop 停止后台刷新并关闭所有序列
func (m *Manager) Stop() error {
	m.mu.Lock()
	m.started = false
	cancel := m.cancel
	m.cancel = nil
	seqs := make([]*Sequence, 0, len(m.sequences))
	for id, seq := range m.sequences {
		seqs = append(seqs, seq)
		m.terminated.Add(id, m.clock.Now())
	}
	m.sequences = make(map[types.SequenceID]*Sequence)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()

	for _, seq := range seqs {
		seq.Close()
	}

	log.Info("目的端已停止", "sequences", len(seqs))
	return nil
}
