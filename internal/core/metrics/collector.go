package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-rmseq/pkg/types"
)

// StatsSource 提供序列诊断快照
type StatsSource interface {
	Stats() []types.SequenceStats
}

// FlushCounter 提供确认帧发送计数（可选）
type FlushCounter interface {
	AckFramesSent() uint64
	AckSendErrors() uint64
}

// ============================================================================
//                              Collector
// ============================================================================

// Collector 序列指标收集器
type Collector struct {
	source StatsSource

	active       *prometheus.Desc
	mpm          *prometheus.Desc
	ranges       *prometheus.Desc
	acknowledged *prometheus.Desc
	highest      *prometheus.Desc
	pending      *prometheus.Desc
	framesSent   *prometheus.Desc
	sendErrors   *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector 创建收集器
func NewCollector(namespace string, source StatsSource) *Collector {
	seqLabels := []string{"sequence"}
	name := func(sub string) string {
		return prometheus.BuildFQName(namespace, "", sub)
	}

	return &Collector{
		source: source,
		active: prometheus.NewDesc(name("sequences_active"),
			"Number of active destination sequences.", nil, nil),
		mpm: prometheus.NewDesc(name("sequence_messages_per_minute"),
			"Smoothed acknowledgement rate of a sequence.", seqLabels, nil),
		ranges: prometheus.NewDesc(name("sequence_ack_ranges"),
			"Number of disjoint acknowledgement ranges of a sequence.", seqLabels, nil),
		acknowledged: prometheus.NewDesc(name("sequence_acknowledged_messages"),
			"Number of acknowledged message numbers of a sequence.", seqLabels, nil),
		highest: prometheus.NewDesc(name("sequence_highest_message_number"),
			"Highest acknowledged message number of a sequence.", seqLabels, nil),
		pending: prometheus.NewDesc(name("sequence_ack_pending"),
			"1 if an acknowledgement frame is waiting to be sent.", seqLabels, nil),
		framesSent: prometheus.NewDesc(name("ack_frames_sent_total"),
			"Acknowledgement frames sent successfully.", nil, nil),
		sendErrors: prometheus.NewDesc(name("ack_send_errors_total"),
			"Acknowledgement frames that failed to send.", nil, nil),
	}
}

// Describe 实现 prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.active
	ch <- c.mpm
	ch <- c.ranges
	ch <- c.acknowledged
	ch <- c.highest
	ch <- c.pending
	ch <- c.framesSent
	ch <- c.sendErrors
}

// Collect 实现 prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(len(stats)))

	for _, s := range stats {
		id := s.ID.String()
		ch <- prometheus.MustNewConstMetric(c.mpm, prometheus.GaugeValue, float64(s.MPM), id)
		ch <- prometheus.MustNewConstMetric(c.ranges, prometheus.GaugeValue, float64(s.Ranges), id)
		ch <- prometheus.MustNewConstMetric(c.acknowledged, prometheus.GaugeValue, float64(s.Acknowledged), id)
		ch <- prometheus.MustNewConstMetric(c.highest, prometheus.GaugeValue, float64(s.Highest), id)
		ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, boolToFloat(s.AckPending), id)
	}

	if fc, ok := c.source.(FlushCounter); ok {
		ch <- prometheus.MustNewConstMetric(c.framesSent, prometheus.CounterValue, float64(fc.AckFramesSent()))
		ch <- prometheus.MustNewConstMetric(c.sendErrors, prometheus.CounterValue, float64(fc.AckSendErrors()))
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
