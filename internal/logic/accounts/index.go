package accounts

import (
	"sol-tx-filter/internal/pkg/logger"
)

// Kind 标识账户索引的形态
type Kind uint8

const (
	// Static 仅有交易自身的静态账户列表
	Static Kind = iota
	// Dynamic 静态账户 + Address Lookup Table 加载的 writable / readonly 扩展
	Dynamic
)

func (k Kind) String() string {
	if k == Dynamic {
		return "Dynamic"
	}
	return "Static"
}

// Index 交易内的位置 → 账户映射。
// 位置空间为 static ++ writable ++ readonly，按此顺序拼接。
//
// Index 只引用构造时传入的切片，不做拷贝：原始交易记录在 Index 使用期间不得被修改或重排。
type Index[T comparable] struct {
	kind     Kind
	static   []T
	writable []T
	readonly []T
}

// From 构造账户索引，两个扩展都为空时返回 Static 形态
func From[T comparable](static, writable, readonly []T) Index[T] {
	if len(writable) == 0 && len(readonly) == 0 {
		return Index[T]{kind: Static, static: static}
	}
	return Index[T]{
		kind:     Dynamic,
		static:   static,
		writable: writable,
		readonly: readonly,
	}
}

func (idx Index[T]) Kind() Kind {
	return idx.kind
}

// Get 按位置解析账户，越界返回 false
func (idx Index[T]) Get(pos int) (T, bool) {
	var zero T
	if pos < 0 {
		return zero, false
	}
	if pos < len(idx.static) {
		return idx.static[pos], true
	}
	if idx.kind == Static {
		return zero, false
	}

	offset := pos - len(idx.static)
	if offset < 0 {
		logger.Errorf("[AccountIndex::Get] negative writable offset: pos=%d, static=%d", pos, len(idx.static))
		return zero, false
	}
	if offset < len(idx.writable) {
		return idx.writable[offset], true
	}

	offset -= len(idx.writable)
	if offset < len(idx.readonly) {
		return idx.readonly[offset], true
	}
	return zero, false
}

// Contains 依次扫描 static、writable、readonly，命中即返回
func (idx Index[T]) Contains(key T) bool {
	for _, seg := range idx.segments() {
		for _, k := range seg {
			if k == key {
				return true
			}
		}
	}
	return false
}

// All 按位置顺序返回全部账户（新切片）
func (idx Index[T]) All() []T {
	out := make([]T, 0, idx.Count())
	for _, seg := range idx.segments() {
		out = append(out, seg...)
	}
	return out
}

func (idx Index[T]) Count() int {
	return len(idx.static) + len(idx.writable) + len(idx.readonly)
}

func (idx Index[T]) segments() [3][]T {
	return [3][]T{idx.static, idx.writable, idx.readonly}
}
