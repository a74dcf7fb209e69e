// Package parsed 将交易记录解码为保持协议顺序的指令树
package parsed

import (
	"sol-tx-filter/internal/logic/codec"
)

// Instruction 已解码的指令节点。ProgramIndex / Accounts 为账户索引中的位置。
// 构建器只填充一层 Inner，但类型本身可任意嵌套，遍历时不能假设深度。
type Instruction struct {
	ProgramIndex uint8
	Accounts     []uint8
	Payload      codec.Payload
	Inner        []*Instruction
}

// List 顶层指令列表，下标与交易中的指令位置一致；被丢弃的指令位置为 nil
type List []*Instruction

// Walk 先序深度优先遍历：先访问节点，再递归其 Inner，然后才是下一个兄弟节点。
// fn 返回 true 时停止遍历，Walk 返回 true。
func (l List) Walk(fn func(ix *Instruction) bool) bool {
	for _, ix := range l {
		if ix == nil {
			continue
		}
		if walk(ix, fn) {
			return true
		}
	}
	return false
}

func walk(ix *Instruction, fn func(ix *Instruction) bool) bool {
	if fn(ix) {
		return true
	}
	for _, inner := range ix.Inner {
		if inner == nil {
			continue
		}
		if walk(inner, fn) {
			return true
		}
	}
	return false
}

// Len 返回非空节点总数（含所有层级的内部指令）
func (l List) Len() int {
	n := 0
	l.Walk(func(*Instruction) bool {
		n++
		return false
	})
	return n
}
