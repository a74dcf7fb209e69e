package parsed

import (
	"encoding/json"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	sdktoken "github.com/blocto/solana-go-sdk/program/token"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sol-tx-filter/internal/consts"
	"sol-tx-filter/internal/logic/codec"
	"sol-tx-filter/internal/logic/core"
	"sol-tx-filter/internal/logic/programs/spltoken"
)

const (
	keySource = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	keyDest   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	keyAuth   = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

func transferData(amount uint64) string {
	ix := sdktoken.Transfer(sdktoken.TransferParam{
		From:    common.PublicKeyFromString(keySource),
		To:      common.PublicKeyFromString(keyDest),
		Auth:    common.PublicKeyFromString(keyAuth),
		Signers: []common.PublicKey{},
		Amount:  amount,
	})
	return base58.Encode(ix.Data)
}

// 账户: 0 source, 1 dest, 2 auth, 3 token program, 4 compute budget；ALT: 5 writable, 6 readonly
func rawTx(ixs []core.CompiledInstruction, meta *core.Meta) *core.TransactionWithMeta {
	return &core.TransactionWithMeta{
		Transaction: core.EncodedTransaction{
			Encoding:   core.EncodingJSON,
			Signatures: []string{"sig1"},
			Message: &core.UiMessage{
				Format: core.MessageRaw,
				Raw: &core.RawMessage{
					AccountKeys:  []string{keySource, keyDest, keyAuth, consts.TokenProgramStr, consts.ComputeBudgetProgramIdStr},
					Instructions: ixs,
				},
			},
		},
		Meta: meta,
	}
}

func TestBuildEmptyCases(t *testing.T) {
	assert.Empty(t, Build(rawTx(nil, &core.Meta{})))
	assert.Empty(t, Build(rawTx([]core.CompiledInstruction{{ProgramIDIndex: 3, Data: transferData(1)}}, nil)))

	parsedTx := &core.TransactionWithMeta{
		Transaction: core.EncodedTransaction{
			Encoding:   core.EncodingJSON,
			Signatures: []string{"sig"},
			Message:    &core.UiMessage{Format: core.MessageParsed, Parsed: &core.ParsedMessage{}},
		},
		Meta: &core.Meta{},
	}
	assert.Empty(t, Build(parsedTx))

	for _, enc := range []core.TransactionEncoding{core.EncodingLegacyBinary, core.EncodingBinary, core.EncodingAccounts} {
		tx := &core.TransactionWithMeta{Transaction: core.EncodedTransaction{Encoding: enc}, Meta: &core.Meta{}}
		assert.Empty(t, Build(tx), enc.String())
	}
}

func TestBuildTopLevelGapsAndErrors(t *testing.T) {
	list := Build(rawTx([]core.CompiledInstruction{
		{ProgramIDIndex: 3, Accounts: core.Positions{0, 1, 2}, Data: transferData(10)},
		{ProgramIDIndex: 50, Data: ""},
		{ProgramIDIndex: 3, Accounts: core.Positions{0}, Data: base58.Encode([]byte{99})},
		{ProgramIDIndex: 4, Data: base58.Encode([]byte{2, 1, 0, 0, 0})},
	}, &core.Meta{}))

	require.Len(t, list, 4)
	require.NotNil(t, list[0])
	assert.Equal(t, codec.SplTokenPayload{Instruction: spltoken.Transfer{Amount: 10}}, list[0].Payload)
	assert.Equal(t, []uint8{0, 1, 2}, list[0].Accounts)

	assert.Nil(t, list[1], "unresolvable program position leaves a gap")

	require.NotNil(t, list[2])
	assert.Equal(t, codec.KindError, list[2].Payload.Kind())

	require.NotNil(t, list[3])
	assert.Equal(t, codec.UnknownPayload{}, list[3].Payload)
	assert.Equal(t, 3, list.Len())
}

func TestBuildInnerInstructions(t *testing.T) {
	meta := &core.Meta{
		LoadedAddresses: &core.LoadedAddresses{Writable: []string{"W1"}, Readonly: []string{consts.TokenProgram2022Str}},
		InnerInstructions: []core.InnerInstructions{
			{Index: 0, Instructions: []core.InnerInstruction{
				{Compiled: &core.CompiledInstruction{ProgramIDIndex: 3, Accounts: core.Positions{0, 1, 2}, Data: transferData(1)}},
				{Parsed: json.RawMessage(`{"program": "spl-token", "parsed": {}}`)},
				{Compiled: &core.CompiledInstruction{ProgramIDIndex: 6, Accounts: core.Positions{1, 5, 2}, Data: transferData(2)}},
			}},
			// 父指令被丢弃
			{Index: 1, Instructions: []core.InnerInstruction{
				{Compiled: &core.CompiledInstruction{ProgramIDIndex: 3, Data: transferData(3)}},
			}},
			// 父指令位置越界
			{Index: 9, Instructions: []core.InnerInstruction{
				{Compiled: &core.CompiledInstruction{ProgramIDIndex: 3, Data: transferData(4)}},
			}},
		},
	}
	list := Build(rawTx([]core.CompiledInstruction{
		{ProgramIDIndex: 4, Data: ""},
		{ProgramIDIndex: 99, Data: ""},
	}, meta))

	require.Len(t, list, 2)
	require.NotNil(t, list[0])
	require.Len(t, list[0].Inner, 2)
	assert.Equal(t, codec.SplTokenPayload{Instruction: spltoken.Transfer{Amount: 1}}, list[0].Inner[0].Payload)
	// 位置 6 解析到 ALT readonly 段
	assert.Equal(t, codec.SplToken2022Payload{Instruction: spltoken.Transfer{Amount: 2}}, list[0].Inner[1].Payload)
	assert.Empty(t, list[0].Inner[0].Inner)
	assert.Nil(t, list[1])
}

func TestBuildPrefersRawData(t *testing.T) {
	ix := sdktoken.TransferChecked(sdktoken.TransferCheckedParam{
		From:     common.PublicKeyFromString(keySource),
		To:       common.PublicKeyFromString(keyDest),
		Mint:     common.PublicKeyFromString(consts.USDCMintStr),
		Auth:     common.PublicKeyFromString(keyAuth),
		Signers:  []common.PublicKey{},
		Amount:   5,
		Decimals: 6,
	})
	list := Build(rawTx([]core.CompiledInstruction{
		{ProgramIDIndex: 3, Accounts: core.Positions{0, 4, 1, 2}, Data: "not-used", RawData: ix.Data},
	}, &core.Meta{}))

	require.Len(t, list, 1)
	assert.Equal(t, codec.SplTokenPayload{Instruction: spltoken.TransferChecked{Amount: 5, Decimals: 6}}, list[0].Payload)
}

func TestAccountIndexModes(t *testing.T) {
	tx := rawTx(nil, &core.Meta{LoadedAddresses: &core.LoadedAddresses{Writable: []string{"W"}, Readonly: []string{"R"}}})
	idx := AccountIndex(tx)
	assert.Equal(t, 7, idx.Count())
	last, ok := idx.Get(6)
	assert.True(t, ok)
	assert.Equal(t, "R", last)

	accountsTx := &core.TransactionWithMeta{Transaction: core.EncodedTransaction{
		Encoding:    core.EncodingAccounts,
		AccountKeys: []core.ParsedAccount{{Pubkey: "a"}, {Pubkey: "b"}},
	}}
	assert.Equal(t, []string{"a", "b"}, AccountIndex(accountsTx).All())

	binaryTx := &core.TransactionWithMeta{Transaction: core.EncodedTransaction{Encoding: core.EncodingBinary}}
	assert.Equal(t, 0, AccountIndex(binaryTx).Count())
}

func TestWalkPreOrder(t *testing.T) {
	leaf := func(n uint8) *Instruction { return &Instruction{ProgramIndex: n} }
	deep := leaf(3)
	deep.Inner = []*Instruction{leaf(4)}
	list := List{
		{ProgramIndex: 1, Inner: []*Instruction{leaf(2), deep}},
		nil,
		leaf(5),
	}

	var order []uint8
	stopped := list.Walk(func(ix *Instruction) bool {
		order = append(order, ix.ProgramIndex)
		return false
	})
	assert.False(t, stopped)
	assert.Equal(t, []uint8{1, 2, 3, 4, 5}, order)

	order = order[:0]
	stopped = list.Walk(func(ix *Instruction) bool {
		order = append(order, ix.ProgramIndex)
		return ix.ProgramIndex == 4
	})
	assert.True(t, stopped)
	assert.Equal(t, []uint8{1, 2, 3, 4}, order)
}
