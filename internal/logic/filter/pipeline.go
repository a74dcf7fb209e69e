package filter

import (
	"fmt"
	"runtime/debug"

	"sol-tx-filter/internal/logic/core"
	"sol-tx-filter/internal/logic/parsed"
	"sol-tx-filter/internal/pkg/logger"
)

// Pipeline 按配置顺序执行过滤器，全部通过才接受（逻辑与，遇到拒绝即停止）。空 Pipeline 接受所有交易
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Names 返回各过滤器名称（按执行顺序）
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

func (p *Pipeline) Accept(tx TxView) bool {
	for _, s := range p.stages {
		if !s.Accept(tx) {
			return false
		}
	}
	return true
}

// Evaluate 对单笔交易记录执行过滤。过滤过程中的 panic（如上游数据不满足指令账户布局）
// 被转换为 error，该交易视为拒绝
func (p *Pipeline) Evaluate(tx *core.TransactionWithMeta) (accepted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[Pipeline::Evaluate] panic recovered: tx=%s, err=%v\nstack=%s",
				parsed.Signature(tx), r, debug.Stack())
			accepted = false
			err = fmt.Errorf("panic during filter evaluation: %v", r)
		}
	}()

	return p.Accept(NewView(tx)), nil
}
