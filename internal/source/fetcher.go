package source

import (
	"context"
	"errors"

	"sol-tx-filter/internal/logic/core"
)

var ErrNotFound = errors.New("transaction not found")

type FetchTransactionParam struct {
	Signature string
}

// FetchTransactionsNearByParam 以目标交易所在 slot 为中心，向前 Backward、向后 Forward 个 slot
type FetchTransactionsNearByParam struct {
	Signature string
	Backward  uint32
	Forward   uint32
}

// Fetcher 交易记录来源
type Fetcher interface {
	FetchTransaction(ctx context.Context, param FetchTransactionParam) (*core.ConfirmedTransaction, error)
	FetchTransactionsNearBy(ctx context.Context, param FetchTransactionsNearByParam) ([]core.BlockTransaction, error)
}

// slotWindow 返回闭区间 [slot-backward, slot+forward]，下界截断到 0
func slotWindow(slot uint64, backward, forward uint32) (from, to uint64) {
	from = slot - min(slot, uint64(backward))
	return from, slot + uint64(forward)
}
