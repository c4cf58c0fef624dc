// Package metrics 提供 Prometheus 监控指标
//
// Collector 在每次抓取时读取目的端序列快照，导出：
//   - rmseq_sequences_active: 活跃序列数
//   - rmseq_sequence_messages_per_minute: 每个序列的确认速率
//   - rmseq_sequence_ack_ranges: 每个序列的确认区间数
//   - rmseq_sequence_acknowledged_messages: 每个序列已确认的消息数
//   - rmseq_sequence_highest_message_number: 每个序列已确认的最大消息号
//   - rmseq_sequence_ack_pending: 每个序列是否有待发送的确认帧
//   - rmseq_ack_frames_sent_total / rmseq_ack_send_errors_total: 确认帧发送计数
//
// 指标在抓取时计算，不在确认路径上加锁或计数。
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector("rmseq", manager)
//	reg.MustRegister(collector)
//
// # Fx 模块
//
//	app := fx.New(
//	    destination.Module(),
//	    metrics.Module,
//	    fx.Provide(func() prometheus.Registerer { return prometheus.NewRegistry() }),
//	)
//
// 未提供 prometheus.Registerer 时不注册。
package metrics
