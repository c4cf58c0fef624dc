package types

import "strings"

// ============================================================================
//                              DeliveryAssurance - 投递保证
// ============================================================================

// DeliveryAssurance 投递保证模式
//
// 这是一个标志集合而非互斥枚举，多个标志可以组合使用。
type DeliveryAssurance uint8

const (
	// AtMostOnce 至多一次：已确认的消息不再投递给应用
	AtMostOnce DeliveryAssurance = 1 << iota
	// AtLeastOnce 至少一次
	AtLeastOnce
	// InOrder 按序投递：所有前驱消息确认前阻塞
	InOrder
)

// ExactlyOnce 恰好一次（AtMostOnce + AtLeastOnce）
const ExactlyOnce = AtMostOnce | AtLeastOnce

// Has 检查是否包含指定标志
func (d DeliveryAssurance) Has(flag DeliveryAssurance) bool {
	return flag != 0 && d&flag == flag
}

// With 返回附加了指定标志的新值
func (d DeliveryAssurance) With(flag DeliveryAssurance) DeliveryAssurance {
	return d | flag
}

// String 返回投递保证的字符串表示
func (d DeliveryAssurance) String() string {
	if d == 0 {
		return "None"
	}
	var parts []string
	if d.Has(AtMostOnce) {
		parts = append(parts, "AtMostOnce")
	}
	if d.Has(AtLeastOnce) {
		parts = append(parts, "AtLeastOnce")
	}
	if d.Has(InOrder) {
		parts = append(parts, "InOrder")
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, "|")
}

// ParseDeliveryAssurance 解析投递保证字符串
//
// 支持以 "|" 或 "," 分隔的组合，例如 "AtMostOnce|InOrder"、"ExactlyOnce"。
// 大小写不敏感，空字符串返回 0。
func ParseDeliveryAssurance(s string) (DeliveryAssurance, error) {
	var d DeliveryAssurance
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "":
		case "atmostonce", "at_most_once":
			d |= AtMostOnce
		case "atleastonce", "at_least_once":
			d |= AtLeastOnce
		case "exactlyonce", "exactly_once":
			d |= ExactlyOnce
		case "inorder", "in_order":
			d |= InOrder
		case "none":
		default:
			return 0, &ParseError{Kind: "delivery assurance", Value: part}
		}
	}
	return d, nil
}
