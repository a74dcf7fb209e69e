package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/zeromicro/go-zero/core/jsonx"

	"sol-tx-filter/internal/logic/core"
	"sol-tx-filter/internal/pkg/logger"
)

// 节点返回的“slot 无区块”类错误码：跳过、缺失或已被清理
const (
	errCodeBlockCleanedUp      = -32001
	errCodeSlotSkipped         = -32007
	errCodeLongTermStorageSlot = -32009
	errCodeBlockNotAvailable   = -32004
)

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (e *rpcError) blockMissing() bool {
	switch e.Code {
	case errCodeBlockCleanedUp, errCodeSlotSkipped, errCodeLongTermStorageSlot, errCodeBlockNotAvailable:
		return true
	}
	return false
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// RpcFetcher 通过 Solana JSON-RPC 拉取原始编译格式（encoding=json）的交易
type RpcFetcher struct {
	client  rpc.RpcClient
	timeout time.Duration
}

func NewRpcFetcher(endpoint string, timeout time.Duration) *RpcFetcher {
	return &RpcFetcher{client: rpc.NewRpcClient(endpoint), timeout: timeout}
}

func (f *RpcFetcher) call(ctx context.Context, out any, params ...any) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	body, err := f.client.Call(ctx, params...)
	if err != nil {
		return fmt.Errorf("%v: %w", params[0], err)
	}
	var resp rpcResponse
	if err := jsonx.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%v: decode response: %w", params[0], err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return ErrNotFound
	}
	return jsonx.Unmarshal(resp.Result, out)
}

func (f *RpcFetcher) FetchTransaction(ctx context.Context, param FetchTransactionParam) (*core.ConfirmedTransaction, error) {
	var tx core.ConfirmedTransaction
	err := f.call(ctx, &tx, "getTransaction", param.Signature, map[string]any{
		"encoding":                       "json",
		"commitment":                     "confirmed",
		"maxSupportedTransactionVersion": 0,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transaction %s: %w", param.Signature, err)
	}
	return &tx, nil
}

// FetchTransactionsNearBy 先定位目标交易的 slot，再逐个拉取窗口内的区块。
// 跳过或缺失的 slot 记录日志后忽略。
func (f *RpcFetcher) FetchTransactionsNearBy(ctx context.Context, param FetchTransactionsNearByParam) ([]core.BlockTransaction, error) {
	target, err := f.FetchTransaction(ctx, FetchTransactionParam{Signature: param.Signature})
	if err != nil {
		return nil, err
	}

	from, to := slotWindow(target.Slot, param.Backward, param.Forward)
	blocks := make([]core.BlockTransaction, 0, to-from+1)
	for slot := from; slot <= to; slot++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var block core.BlockTransaction
		err := f.call(ctx, &block, "getBlock", slot, map[string]any{
			"encoding":                       "json",
			"commitment":                     "confirmed",
			"transactionDetails":             "full",
			"rewards":                        false,
			"maxSupportedTransactionVersion": 0,
		})
		var rpcErr *rpcError
		if errors.Is(err, ErrNotFound) || (errors.As(err, &rpcErr) && rpcErr.blockMissing()) {
			logger.Warnf("[RpcFetcher::NearBy] tx=%s, slot=%d skipped: %v", param.Signature, slot, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetch block %d: %w", slot, err)
		}
		block.Slot = slot
		blocks = append(blocks, block)
	}
	return blocks, nil
}
