// Package types 定义 go-rmseq 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在可靠投递各组件之间传递数据。
//
// # 文件组织
//
//   - ids.go    - SequenceID, EndpointReference
//   - enums.go  - DeliveryAssurance 投递保证标志
//   - ack.go    - AckRange, AckPolicy, SequenceAcknowledgement
//   - stats.go  - SequenceStats 诊断快照
//   - errors.go - 公共错误与 SequenceFault
//
// # 与线上格式的关系
//
// SequenceAcknowledgement 是确认帧的内存表示，Ranges 已按升序合并，
// 可以直接序列化为线上格式中重复的 AcknowledgementRange 元素。
// 序列化本身不在本模块范围内。
package types
