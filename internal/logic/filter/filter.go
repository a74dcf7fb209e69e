// Package filter 对交易记录执行可组合的谓词过滤
package filter

import (
	"sol-tx-filter/internal/logic/accounts"
	"sol-tx-filter/internal/logic/core"
	"sol-tx-filter/internal/logic/parsed"
)

// TxView 过滤器可见的只读交易视图
type TxView interface {
	Accounts() accounts.Index[string]
	Signatures() ([]string, bool)
	Instructions() (parsed.List, bool)
	Meta() (*core.Meta, bool)
}

// Filter 单个过滤器。C 为过滤器私有的评估上下文，每次评估通过 NewContext 新建，
// 不在交易之间或过滤器之间共享；过滤器自身配置构造后只读，可被并发评估共享。
type Filter[C any] interface {
	Name() string
	NewContext() C
	Filter(tx TxView, ctx C) bool
}

// Stage 擦除上下文类型后的过滤器，供 Pipeline 按顺序执行
type Stage interface {
	Name() string
	Accept(tx TxView) bool
}

// Bind 将 Filter[C] 包装为 Stage，每次 Accept 都创建新的上下文
func Bind[C any](f Filter[C]) Stage {
	return boundStage[C]{filter: f}
}

type boundStage[C any] struct {
	filter Filter[C]
}

func (s boundStage[C]) Name() string {
	return s.filter.Name()
}

func (s boundStage[C]) Accept(tx TxView) bool {
	return s.filter.Filter(tx, s.filter.NewContext())
}

// noContext 无状态过滤器使用的空上下文
type noContext struct{}
