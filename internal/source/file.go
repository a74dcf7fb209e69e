package source

import (
	"context"
	"fmt"
	"os"
	"sort"

	"sol-tx-filter/internal/logic/core"
)

// FileSource 从本地 JSON 文件读取交易记录（getTransaction 结果数组）
type FileSource struct {
	records []core.ConfirmedTransaction
}

func LoadFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	records, err := core.ParseConfirmedTransactions(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &FileSource{records: records}, nil
}

func NewFileSource(records []core.ConfirmedTransaction) *FileSource {
	return &FileSource{records: records}
}

// Records 返回全部记录，顺序与文件一致
func (s *FileSource) Records() []core.ConfirmedTransaction {
	return s.records
}

func (s *FileSource) FetchTransaction(_ context.Context, param FetchTransactionParam) (*core.ConfirmedTransaction, error) {
	for i := range s.records {
		sigs := s.records[i].Transaction.Signatures
		if len(sigs) > 0 && sigs[0] == param.Signature {
			return &s.records[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, param.Signature)
}

// FetchTransactionsNearBy 按 slot 分组返回窗口内的记录，slot 升序
func (s *FileSource) FetchTransactionsNearBy(ctx context.Context, param FetchTransactionsNearByParam) ([]core.BlockTransaction, error) {
	target, err := s.FetchTransaction(ctx, FetchTransactionParam{Signature: param.Signature})
	if err != nil {
		return nil, err
	}
	from, to := slotWindow(target.Slot, param.Backward, param.Forward)

	bySlot := make(map[uint64]*core.BlockTransaction)
	for _, r := range s.records {
		if r.Slot < from || r.Slot > to {
			continue
		}
		block, ok := bySlot[r.Slot]
		if !ok {
			block = &core.BlockTransaction{Slot: r.Slot, BlockTime: r.BlockTime}
			bySlot[r.Slot] = block
		}
		block.Transactions = append(block.Transactions, r.TransactionWithMeta)
	}

	blocks := make([]core.BlockTransaction, 0, len(bySlot))
	for _, b := range bySlot {
		blocks = append(blocks, *b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Slot < blocks[j].Slot })
	return blocks, nil
}
