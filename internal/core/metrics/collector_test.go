package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-rmseq/pkg/types"
)

type fakeSource struct {
	stats []types.SequenceStats
}

func (f *fakeSource) Stats() []types.SequenceStats {
	return f.stats
}

type fakeFlushSource struct {
	fakeSource
	sent, errs uint64
}

func (f *fakeFlushSource) AckFramesSent() uint64 { return f.sent }
func (f *fakeFlushSource) AckSendErrors() uint64 { return f.errs }

func TestCollector_Gauges(t *testing.T) {
	src := &fakeSource{stats: []types.SequenceStats{
		{ID: "seq-a", MPM: 120, Ranges: 2, Acknowledged: 5, Highest: 6, AckPending: true},
		{ID: "seq-b", MPM: 0, Ranges: 1, Acknowledged: 3, Highest: 3},
	}}
	c := NewCollector("rmseq", src)

	expected := `
# HELP rmseq_sequences_active Number of active destination sequences.
# TYPE rmseq_sequences_active gauge
rmseq_sequences_active 2
# HELP rmseq_sequence_ack_ranges Number of disjoint acknowledgement ranges of a sequence.
# TYPE rmseq_sequence_ack_ranges gauge
rmseq_sequence_ack_ranges{sequence="seq-a"} 2
rmseq_sequence_ack_ranges{sequence="seq-b"} 1
# HELP rmseq_sequence_ack_pending 1 if an acknowledgement frame is waiting to be sent.
# TYPE rmseq_sequence_ack_pending gauge
rmseq_sequence_ack_pending{sequence="seq-a"} 1
rmseq_sequence_ack_pending{sequence="seq-b"} 0
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"rmseq_sequences_active", "rmseq_sequence_ack_ranges", "rmseq_sequence_ack_pending")
	require.NoError(t, err)

	// 1 + 5*2，无发送计数
	assert.Equal(t, 11, testutil.CollectAndCount(c))
}

func TestCollector_FlushCounters(t *testing.T) {
	src := &fakeFlushSource{sent: 7, errs: 2}
	c := NewCollector("wsrm", src)

	expected := `
# HELP wsrm_ack_frames_sent_total Acknowledgement frames sent successfully.
# TYPE wsrm_ack_frames_sent_total counter
wsrm_ack_frames_sent_total 7
# HELP wsrm_ack_send_errors_total Acknowledgement frames that failed to send.
# TYPE wsrm_ack_send_errors_total counter
wsrm_ack_send_errors_total 2
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"wsrm_ack_frames_sent_total", "wsrm_ack_send_errors_total")
	require.NoError(t, err)
}

func TestCollector_Register(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c := NewCollector("rmseq", &fakeSource{})
	require.NoError(t, reg.Register(c))

	// 重复注册失败
	assert.Error(t, reg.Register(NewCollector("rmseq", &fakeSource{})))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "rmseq_sequences_active", families[0].GetName())
}
