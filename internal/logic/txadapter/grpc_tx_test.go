package txadapter

import (
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	sdktoken "github.com/blocto/solana-go-sdk/program/token"
	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sol-tx-filter/internal/consts"
	"sol-tx-filter/internal/logic/codec"
	"sol-tx-filter/internal/logic/parsed"
	"sol-tx-filter/internal/types"
)

func key(b byte) []byte {
	k := make([]byte, 32)
	k[0] = b
	return k
}

func grpcTransferTx() *pb.SubscribeUpdateTransactionInfo {
	tokenProgram := types.PubkeyFromBase58(consts.TokenProgramStr)
	data := sdktoken.Transfer(sdktoken.TransferParam{
		From:    common.PublicKeyFromBytes(key(1)),
		To:      common.PublicKeyFromBytes(key(2)),
		Auth:    common.PublicKeyFromBytes(key(3)),
		Signers: []common.PublicKey{},
		Amount:  500,
	}).Data

	stackHeight := uint32(2)
	sig := make([]byte, 64)
	sig[0] = 9

	return &pb.SubscribeUpdateTransactionInfo{
		Signature: sig,
		Transaction: &pb.Transaction{
			Signatures: [][]byte{sig},
			Message: &pb.Message{
				Header:          &pb.MessageHeader{NumRequiredSignatures: 1},
				AccountKeys:     [][]byte{key(3), key(1), tokenProgram[:]},
				RecentBlockhash: key(7),
				Versioned:       true,
				Instructions: []*pb.CompiledInstruction{
					{ProgramIdIndex: 2, Accounts: []byte{1, 3, 0}, Data: data},
				},
				AddressTableLookups: []*pb.MessageAddressTableLookup{
					{AccountKey: key(8), WritableIndexes: []byte{4}},
				},
			},
		},
		Meta: &pb.TransactionStatusMeta{
			Fee:                     5000,
			PreBalances:             []uint64{10, 0, 1},
			PostBalances:            []uint64{5, 0, 1},
			LogMessages:             []string{"Program log: ok"},
			LoadedWritableAddresses: [][]byte{key(2)},
			InnerInstructions: []*pb.InnerInstructions{
				{Index: 0, Instructions: []*pb.InnerInstruction{
					{ProgramIdIndex: 2, Accounts: []byte{3, 1, 0}, Data: data, StackHeight: &stackHeight},
				}},
			},
		},
	}
}

func TestAdaptGrpcTx(t *testing.T) {
	tx, err := AdaptGrpcTx(grpcTransferTx())
	require.NoError(t, err)

	raw := tx.Transaction.Message.Raw
	require.NotNil(t, raw)
	assert.Len(t, tx.Transaction.Signatures, 1)
	assert.Equal(t, uint8(1), raw.Header.NumRequiredSignatures)
	assert.Equal(t, consts.TokenProgramStr, raw.AccountKeys[2])
	assert.Equal(t, "0", string(tx.Version))
	require.Len(t, raw.AddressTableLookups, 1)
	assert.Equal(t, []uint8{4}, []uint8(raw.AddressTableLookups[0].WritableIndexes))

	require.NotNil(t, tx.Meta)
	assert.True(t, tx.Meta.Succeeded())
	assert.Equal(t, uint64(5000), tx.Meta.Fee)
	writable, readonly := tx.Meta.Loaded()
	assert.Equal(t, []string{types.Pubkey(key(2)).String()}, writable)
	assert.Empty(t, readonly)

	// 指令树：主指令 + 一条 inner，账户索引 3 来自 ALT writable
	list := parsed.Build(tx)
	require.Len(t, list, 1)
	require.NotNil(t, list[0])
	assert.Equal(t, codec.KindSplToken, list[0].Payload.Kind())
	require.Len(t, list[0].Inner, 1)
	assert.Equal(t, []uint8{3, 1, 0}, list[0].Inner[0].Accounts)

	index := parsed.AccountIndex(tx)
	dest, ok := index.Get(3)
	require.True(t, ok)
	assert.Equal(t, types.Pubkey(key(2)).String(), dest)
}

func TestAdaptGrpcTxFailedMeta(t *testing.T) {
	in := grpcTransferTx()
	in.Meta.Err = &pb.TransactionError{Err: []byte{8, 0, 0, 0}}
	in.Meta.InnerInstructionsNone = true
	in.Meta.LogMessagesNone = true

	tx, err := AdaptGrpcTx(in)
	require.NoError(t, err)
	assert.False(t, tx.Meta.Succeeded())
	assert.Empty(t, tx.Meta.InnerInstructions)
	assert.Empty(t, tx.Meta.LogMessages)
}

func TestAdaptGrpcTxInvalid(t *testing.T) {
	_, err := AdaptGrpcTx(&pb.SubscribeUpdateTransactionInfo{})
	assert.ErrorIs(t, err, ErrInvalidGrpcTx)

	noSig := grpcTransferTx()
	noSig.Transaction.Signatures = nil
	_, err = AdaptGrpcTx(noSig)
	assert.ErrorIs(t, err, ErrInvalidGrpcTx)

	badKey := grpcTransferTx()
	badKey.Transaction.Message.AccountKeys[0] = []byte{1, 2}
	_, err = AdaptGrpcTx(badKey)
	assert.ErrorIs(t, err, types.ErrPubkeyLength)

	badIndex := grpcTransferTx()
	badIndex.Transaction.Message.Instructions[0].ProgramIdIndex = 300
	_, err = AdaptGrpcTx(badIndex)
	assert.ErrorIs(t, err, ErrInvalidGrpcTx)
}
