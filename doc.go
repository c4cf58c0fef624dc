// Package rmseq 提供可靠消息目的端序列跟踪
//
// rmseq 在接收端跟踪 WS-ReliableMessaging 风格的消息序列：
//   - 以合并后的确认区间记录已收到的消息号
//   - 按投递保证（AtMostOnce / AtLeastOnce / ExactlyOnce / InOrder）判定重复与按序投递
//   - 按确认策略和确认速率决定何时发送确认帧
//   - 校验最后消息号，超出时返回 LastMessageNumberExceeded 故障
//
// # 快速开始
//
//	ep, err := rmseq.Start(ctx,
//	    rmseq.WithDeliveryAssurance(types.ExactlyOnce|types.InOrder),
//	    rmseq.WithAckSender(sender),
//	)
//	if err != nil {
//	    return err
//	}
//	defer ep.Close()
//
//	seq, _ := ep.Destination().CreateSequence("http://client/acks")
//
//	// 分发器处理编号为 n 的消息
//	dup, err := seq.ApplyDeliveryAssurance(ctx, n)
//	if err == nil && !dup {
//	    deliver(msg)
//	    seq.Acknowledge(n)
//	}
//
// 确认帧由 Endpoint 的后台刷新按 FlushInterval 交给 AckSender 发送。
//
// # 组件
//
//   - internal/core/rm/ackrange: 确认区间集合
//   - internal/core/rm/assurance: 投递保证判定
//   - internal/core/rm/monitor: 确认速率监视
//   - internal/core/rm/schedule: 确认发送调度
//   - internal/core/rm/destination: 序列与序列管理器
//   - internal/core/metrics: Prometheus 指标
package rmseq
