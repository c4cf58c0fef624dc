// Package destination 实现可靠投递的目的端序列
//
// # 核心组件
//
// Sequence - 目的端序列（单个序列的全部状态）:
//   - 已确认区间集合（ackrange.Set）
//   - 投递保证判定（assurance.Evaluator），InOrder 时阻塞等待前驱
//   - 确认发送调度（schedule.Scheduler）
//   - 速率监视（monitor.Monitor）
//   - 最后消息号检查（LastMessageNumberExceeded 故障）
//
// Manager - 序列管理器:
//   - 按 SequenceID 注册、查找、终止序列
//   - 记住最近终止的序列，区分 UnknownSequence 与 SequenceTerminated
//   - 后台按 FlushInterval 发送到期的延迟确认（需要 AckSender）
//
// # 并发模型
//
// 每个 Sequence 持有一把互斥锁，保护区间、最后消息号、调度器与监视器的更新；
// 不同序列之间没有共享锁。InOrder 等待通过每次区间变化时关闭的 channel 唤醒，
// 唤醒后重新判定，可被 ctx 取消或 Close 释放。
//
// # 使用示例
//
//	seq := destination.NewSequence(id, acksTo, destination.DefaultConfig())
//
//	dup, err := seq.ApplyDeliveryAssurance(ctx, n)
//	if err != nil || dup {
//	    return err
//	}
//	deliver(msg)
//	if err := seq.Acknowledge(n); err != nil {
//	    return err // *types.SequenceFault
//	}
//	if seq.SendAcknowledgement() {
//	    send(seq.Acknowledgement())
//	    seq.AcknowledgmentSent()
//	}
package destination
