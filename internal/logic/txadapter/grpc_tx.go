package txadapter

import (
	"errors"
	"fmt"

	"sol-tx-filter/internal/logic/core"
	"sol-tx-filter/internal/types"

	"github.com/mr-tron/base58"
	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/jsonx"
)

var ErrInvalidGrpcTx = errors.New("invalid grpc transaction")

// buildRawMessage 将 gRPC message 转换为原始编译格式的 RawMessage。
// 指令数据直接以 RawData 保存，避免 base58 往返编码。
func buildRawMessage(msg *pb.Message) (*core.RawMessage, error) {
	accountKeys, err := types.EncodeBase58List(msg.AccountKeys)
	if err != nil {
		return nil, fmt.Errorf("accountKeys: %w", err)
	}

	raw := &core.RawMessage{
		AccountKeys:  accountKeys,
		Instructions: make([]core.CompiledInstruction, 0, len(msg.Instructions)),
	}
	if h := msg.Header; h != nil {
		raw.Header = core.MessageHeader{
			NumRequiredSignatures:       uint8(h.NumRequiredSignatures),
			NumReadonlySignedAccounts:   uint8(h.NumReadonlySignedAccounts),
			NumReadonlyUnsignedAccounts: uint8(h.NumReadonlyUnsignedAccounts),
		}
	}
	if len(msg.RecentBlockhash) > 0 {
		hash, err := types.HashFromBytes(msg.RecentBlockhash)
		if err != nil {
			return nil, fmt.Errorf("recentBlockhash: %w", err)
		}
		raw.RecentBlockhash = hash.String()
	}

	for i, inst := range msg.Instructions {
		compiled, err := buildCompiled(inst.ProgramIdIndex, inst.Accounts, inst.Data, nil)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		raw.Instructions = append(raw.Instructions, compiled)
	}

	for i, lookup := range msg.AddressTableLookups {
		key, err := types.PubkeyFromBytes(lookup.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("addressTableLookup %d: %w", i, err)
		}
		raw.AddressTableLookups = append(raw.AddressTableLookups, core.AddressTableLookup{
			AccountKey:      key.String(),
			WritableIndexes: core.Positions(lookup.WritableIndexes),
			ReadonlyIndexes: core.Positions(lookup.ReadonlyIndexes),
		})
	}
	return raw, nil
}

func buildCompiled(programIndex uint32, accounts, data []byte, stackHeight *uint32) (core.CompiledInstruction, error) {
	if programIndex > 255 {
		return core.CompiledInstruction{}, fmt.Errorf("%w: programIdIndex %d out of range", ErrInvalidGrpcTx, programIndex)
	}
	rawData := data
	if rawData == nil {
		rawData = []byte{}
	}
	return core.CompiledInstruction{
		ProgramIDIndex: uint8(programIndex),
		Accounts:       core.Positions(accounts),
		StackHeight:    stackHeight,
		RawData:        rawData,
	}, nil
}

// buildMeta 转换执行元数据：余额、日志、inner 指令与 Address Lookup 加载结果
func buildMeta(meta *pb.TransactionStatusMeta) (*core.Meta, error) {
	out := &core.Meta{
		Fee:                  meta.Fee,
		PreBalances:          meta.PreBalances,
		PostBalances:         meta.PostBalances,
		ComputeUnitsConsumed: meta.ComputeUnitsConsumed,
	}
	if !meta.LogMessagesNone {
		out.LogMessages = meta.LogMessages
	}

	// TransactionError 为 bincode 编码，这里只保留原始字节，用于成功/失败判定
	if meta.Err != nil {
		errJSON, err := jsonx.Marshal(map[string][]byte{"bincode": meta.Err.Err})
		if err != nil {
			return nil, fmt.Errorf("meta.err: %w", err)
		}
		out.Err = errJSON
	}

	writable, err := types.EncodeBase58List(meta.LoadedWritableAddresses)
	if err != nil {
		return nil, fmt.Errorf("loadedWritableAddresses: %w", err)
	}
	readonly, err := types.EncodeBase58List(meta.LoadedReadonlyAddresses)
	if err != nil {
		return nil, fmt.Errorf("loadedReadonlyAddresses: %w", err)
	}
	if len(writable) > 0 || len(readonly) > 0 {
		out.LoadedAddresses = &core.LoadedAddresses{Writable: writable, Readonly: readonly}
	}

	if meta.InnerInstructionsNone {
		return out, nil
	}
	out.InnerInstructions = make([]core.InnerInstructions, 0, len(meta.InnerInstructions))
	for _, group := range meta.InnerInstructions {
		if group.Index > 255 {
			return nil, fmt.Errorf("%w: inner group index %d out of range", ErrInvalidGrpcTx, group.Index)
		}
		inners := make([]core.InnerInstruction, 0, len(group.Instructions))
		for j, inner := range group.Instructions {
			compiled, err := buildCompiled(inner.ProgramIdIndex, inner.Accounts, inner.Data, inner.StackHeight)
			if err != nil {
				return nil, fmt.Errorf("inner %d/%d: %w", group.Index, j, err)
			}
			inners = append(inners, core.InnerInstruction{Compiled: &compiled})
		}
		out.InnerInstructions = append(out.InnerInstructions, core.InnerInstructions{
			Index:        uint8(group.Index),
			Instructions: inners,
		})
	}
	return out, nil
}

// AdaptGrpcTx 将 gRPC 推送的交易数据转换为与 RPC JSON 一致的 TransactionWithMeta（EncodingJSON + MessageRaw），
// 使下游的账户索引、指令树和过滤器无需区分数据来源。如 panic 会被 recover。
func AdaptGrpcTx(tx *pb.SubscribeUpdateTransactionInfo) (_ *core.TransactionWithMeta, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("AdaptGrpcTx panic: %v", r)
		}
	}()

	if tx.Transaction == nil || tx.Transaction.Message == nil {
		return nil, fmt.Errorf("%w: missing transaction message", ErrInvalidGrpcTx)
	}
	if len(tx.Transaction.Signatures) == 0 {
		return nil, fmt.Errorf("%w: missing signature", ErrInvalidGrpcTx)
	}

	signatures := make([]string, len(tx.Transaction.Signatures))
	for i, sig := range tx.Transaction.Signatures {
		signatures[i] = base58.Encode(sig)
	}

	raw, err := buildRawMessage(tx.Transaction.Message)
	if err != nil {
		return nil, fmt.Errorf("buildRawMessage error: %w", err)
	}

	result := &core.TransactionWithMeta{
		Transaction: core.EncodedTransaction{
			Encoding:   core.EncodingJSON,
			Signatures: signatures,
			Message:    &core.UiMessage{Format: core.MessageRaw, Raw: raw},
		},
	}
	if tx.Transaction.Message.Versioned {
		result.Version = []byte("0")
	} else {
		result.Version = []byte(`"legacy"`)
	}

	if tx.Meta != nil {
		meta, err := buildMeta(tx.Meta)
		if err != nil {
			return nil, fmt.Errorf("buildMeta error: %w", err)
		}
		result.Meta = meta
	}
	return result, nil
}
