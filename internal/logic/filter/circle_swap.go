package filter

import (
	"sol-tx-filter/internal/logic/parsed"
)

// seenSources 已访问转账的来源账户集合，只增不删
type seenSources map[string]struct{}

// CircleSwap 检测环形 token 转账（如 A→B、B→C、C→A）。
// 按先序深度优先顺序遍历指令树，转账目标账户出现在此前访问过的来源账户中即接受。
// 单笔 A→A 不会命中：目标只与此前其他转账记录的来源比较。
type CircleSwap struct{}

func (CircleSwap) Name() string            { return TypeCircleSwap }
func (CircleSwap) NewContext() seenSources { return make(seenSources) }

func (CircleSwap) Filter(tx TxView, seen seenSources) bool {
	list, ok := tx.Instructions()
	if !ok {
		return false
	}
	index := tx.Accounts()

	return list.Walk(func(ix *parsed.Instruction) bool {
		transfer, ok := parsed.ExtractTokenTransfer(ix)
		if !ok {
			return false
		}
		dst, ok := index.Get(int(transfer.Destination))
		if !ok {
			return false
		}
		if _, hit := seen[dst]; hit {
			return true
		}
		if src, ok := index.Get(int(transfer.Source)); ok {
			seen[src] = struct{}{}
		}
		return false
	})
}
