package types

import "github.com/google/uuid"

// ============================================================================
//                              SequenceID - 序列标识
// ============================================================================

// SequenceID 序列唯一标识符
//
// 序列建立时分配，此后不可变。两个 Sequence 相等当且仅当 SequenceID 相等。
type SequenceID string

// sequenceIDPrefix 新建序列标识的 URI 前缀
const sequenceIDPrefix = "urn:uuid:"

// NewSequenceID 生成新的序列标识（urn:uuid 形式）
func NewSequenceID() SequenceID {
	return SequenceID(sequenceIDPrefix + uuid.NewString())
}

// String 返回字符串表示
func (id SequenceID) String() string {
	return string(id)
}

// IsEmpty 检查是否为空
func (id SequenceID) IsEmpty() bool {
	return id == ""
}

// ShortString 返回用于日志的短标识
func (id SequenceID) ShortString() string {
	s := string(id)
	if len(s) > len(sequenceIDPrefix)+8 && s[:len(sequenceIDPrefix)] == sequenceIDPrefix {
		return s[len(sequenceIDPrefix) : len(sequenceIDPrefix)+8]
	}
	if len(s) > 16 {
		return s[:16]
	}
	return s
}

// ============================================================================
//                              EndpointReference - 端点引用
// ============================================================================

// EndpointReference 不透明的端点引用（AcksTo / FaultTo）
//
// 本模块原样透传，不做解析；解析与寻址由传输层负责。
type EndpointReference string

// String 返回字符串表示
func (e EndpointReference) String() string {
	return string(e)
}
