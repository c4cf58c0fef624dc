// Package ackrange 实现已确认消息号的区间集合
//
// Set 以升序保存互不相交、互不相邻的闭区间：
//
//	ranges[i].Upper + 1 < ranges[i+1].Lower
//
// 相邻即合并。集合只增不减，唯一的修改入口是 Insert。
//
// Set 不是并发安全的，由持有它的 Sequence 加锁保护。
package ackrange

import (
	"fmt"
	"sort"

	"github.com/dep2p/go-rmseq/pkg/types"
)

// Set 已确认消息号区间集合
type Set struct {
	ranges []types.AckRange
}

// New 创建空集合
func New() *Set {
	return &Set{}
}

// FromRanges 从恢复的区间列表构建集合
//
// 输入可以无序、重叠或相邻，会被排序并合并；
// Lower 为 0 或 Lower > Upper 的区间返回错误。
func FromRanges(ranges []types.AckRange) (*Set, error) {
	sorted := make([]types.AckRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Lower == 0 || r.Lower > r.Upper {
			return nil, fmt.Errorf("%w: %s", types.ErrInvalidRange, r)
		}
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lower < sorted[j].Lower })

	s := &Set{ranges: make([]types.AckRange, 0, len(sorted))}
	for _, r := range sorted {
		n := len(s.ranges)
		if n > 0 && touches(s.ranges[n-1], r) {
			if r.Upper > s.ranges[n-1].Upper {
				s.ranges[n-1].Upper = r.Upper
			}
			continue
		}
		s.ranges = append(s.ranges, r)
	}
	return s, nil
}

// touches 检查 next（Lower 不小于 prev.Lower）是否与 prev 重叠或相邻
func touches(prev, next types.AckRange) bool {
	return next.Lower <= prev.Upper || next.Lower-prev.Upper == 1
}

// Insert 记录消息号 n，返回集合是否发生变化
//
// n 为 0 违反前置条件，直接 panic。
func (s *Set) Insert(n uint64) bool {
	if n == 0 {
		panic("ackrange: message number must be positive")
	}

	// next: 第一个 Lower > n 的区间；prev: 其前一个区间
	next := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].Lower > n })
	prev := next - 1

	if prev >= 0 && s.ranges[prev].Upper >= n {
		return false
	}

	// prev.Upper < n 且 n < next.Lower，以下加一不会溢出
	joinsPrev := prev >= 0 && s.ranges[prev].Upper+1 == n
	joinsNext := next < len(s.ranges) && n+1 == s.ranges[next].Lower

	switch {
	case joinsPrev && joinsNext:
		s.ranges[prev].Upper = s.ranges[next].Upper
		s.ranges = append(s.ranges[:next], s.ranges[next+1:]...)
	case joinsPrev:
		s.ranges[prev].Upper = n
	case joinsNext:
		s.ranges[next].Lower = n
	default:
		s.ranges = append(s.ranges, types.AckRange{})
		copy(s.ranges[next+1:], s.ranges[next:])
		s.ranges[next] = types.AckRange{Lower: n, Upper: n}
	}
	return true
}

// Contains 检查 n 是否已记录
func (s *Set) Contains(n uint64) bool {
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].Upper >= n })
	return i < len(s.ranges) && s.ranges[i].Lower <= n
}

// CoversThrough 检查 [1, n] 是否全部记录（n 为 0 时恒为 true）
func (s *Set) CoversThrough(n uint64) bool {
	if n == 0 {
		return true
	}
	return len(s.ranges) > 0 && s.ranges[0].Lower == 1 && s.ranges[0].Upper >= n
}

// Ranges 返回区间列表的副本（升序）
func (s *Set) Ranges() []types.AckRange {
	out := make([]types.AckRange, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Len 返回区间数
func (s *Set) Len() int {
	return len(s.ranges)
}

// IsEmpty 检查集合是否为空
func (s *Set) IsEmpty() bool {
	return len(s.ranges) == 0
}

// Highest 返回已记录的最大消息号
func (s *Set) Highest() (uint64, bool) {
	if len(s.ranges) == 0 {
		return 0, false
	}
	return s.ranges[len(s.ranges)-1].Upper, true
}

// Count 返回已记录的消息总数
func (s *Set) Count() uint64 {
	var total uint64
	for _, r := range s.ranges {
		total += r.Size()
	}
	return total
}

// Clone 返回深拷贝
func (s *Set) Clone() *Set {
	return &Set{ranges: s.Ranges()}
}

// String 返回集合的字符串表示
func (s *Set) String() string {
	return fmt.Sprint(s.ranges)
}
