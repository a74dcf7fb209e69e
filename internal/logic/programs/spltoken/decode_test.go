package spltoken

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	sdktoken "github.com/blocto/solana-go-sdk/program/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sol-tx-filter/internal/types"
)

var (
	testSource = common.PublicKeyFromString("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	testDest   = common.PublicKeyFromString("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	testMint   = common.PublicKeyFromString("So11111111111111111111111111111111111111112")
	testAuth   = common.PublicKeyFromString("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
)

func TestDecodeTransfer(t *testing.T) {
	for _, amount := range []uint64{0, 1, 1_000_000, math.MaxUint64} {
		ix := sdktoken.Transfer(sdktoken.TransferParam{
			From:    testSource,
			To:      testDest,
			Auth:    testAuth,
			Signers: []common.PublicKey{},
			Amount:  amount,
		})
		decoded, err := Decode(ix.Data)
		require.NoError(t, err)
		assert.Equal(t, Transfer{Amount: amount}, decoded)
	}
}

func TestDecodeTransferChecked(t *testing.T) {
	ix := sdktoken.TransferChecked(sdktoken.TransferCheckedParam{
		From:     testSource,
		To:       testDest,
		Mint:     testMint,
		Auth:     testAuth,
		Signers:  []common.PublicKey{},
		Amount:   123456789,
		Decimals: 6,
	})

	for name, decode := range map[string]func([]byte) (Instruction, error){
		"token":      Decode,
		"token-2022": Decode2022,
	} {
		t.Run(name, func(t *testing.T) {
			decoded, err := decode(ix.Data)
			require.NoError(t, err)
			assert.Equal(t, TransferChecked{Amount: 123456789, Decimals: 6}, decoded)
			assert.Equal(t, sdktoken.InstructionTransferChecked, decoded.Opcode())
		})
	}
}

func TestDecodeInitializeMint(t *testing.T) {
	mintAuth := types.Pubkey(testAuth)
	freeze := types.Pubkey(testSource)

	data := []byte{byte(sdktoken.InstructionInitializeMint), 9}
	data = append(data, mintAuth[:]...)
	data = append(data, 1)
	data = append(data, freeze[:]...)

	decoded, err := Decode(data)
	require.NoError(t, err)
	mint, ok := decoded.(InitializeMint)
	require.True(t, ok, "got %T", decoded)
	assert.Equal(t, uint8(9), mint.Decimals)
	assert.Equal(t, mintAuth, mint.MintAuthority)
	require.NotNil(t, mint.FreezeAuthority)
	assert.Equal(t, freeze, *mint.FreezeAuthority)

	// InitializeMint2 无 freeze authority
	data2 := []byte{byte(sdktoken.InstructionInitializeMint2), 6}
	data2 = append(data2, mintAuth[:]...)
	data2 = append(data2, 0)
	decoded, err = Decode(data2)
	require.NoError(t, err)
	assert.Equal(t, InitializeMint2{Decimals: 6, MintAuthority: mintAuth}, decoded)
}

func TestDecodeMisc(t *testing.T) {
	decoded, err := Decode([]byte{byte(sdktoken.InstructionCloseAccount)})
	require.NoError(t, err)
	assert.Equal(t, CloseAccount{}, decoded)

	decoded, err = Decode([]byte{byte(sdktoken.InstructionSetAuthority), 2, 0})
	require.NoError(t, err)
	assert.Equal(t, SetAuthority{AuthorityType: 2}, decoded)

	decoded, err = Decode(append([]byte{byte(InstructionUiAmountToAmount)}, "1.5"...))
	require.NoError(t, err)
	assert.Equal(t, UiAmountToAmount{UiAmount: "1.5"}, decoded)

	data := []byte{byte(InstructionGetAccountDataSize)}
	data = binary.LittleEndian.AppendUint16(data, 7)
	data = binary.LittleEndian.AppendUint16(data, 14)
	decoded, err = Decode2022(data)
	require.NoError(t, err)
	assert.Equal(t, GetAccountDataSize{ExtensionTypes: []uint16{7, 14}}, decoded)

	// 尾随字节被忽略
	data = binary.LittleEndian.AppendUint64([]byte{byte(sdktoken.InstructionBurn)}, 77)
	decoded, err = Decode(append(data, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, Burn{Amount: 77}, decoded)
}

func TestDecodeExtensions(t *testing.T) {
	data := []byte{26, 1, 2, 3}

	decoded, err := Decode2022(data)
	require.NoError(t, err)
	ext, ok := decoded.(Extension)
	require.True(t, ok, "got %T", decoded)
	assert.Equal(t, sdktoken.Instruction(26), ext.Opcode())
	assert.Equal(t, []byte{1, 2, 3}, ext.Data)
	assert.Equal(t, "TransferFeeExtension", ext.Name())

	_, err = Decode(data)
	assert.ErrorIs(t, err, ErrInvalidInstruction)

	_, err = Decode2022([]byte{45})
	assert.ErrorIs(t, err, ErrInvalidInstruction)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown opcode", []byte{200}},
		{"transfer short amount", []byte{3, 1, 2, 3}},
		{"transfer checked missing decimals", binary.LittleEndian.AppendUint64([]byte{12}, 5)},
		{"init account2 short owner", append([]byte{16}, make([]byte, 10)...)},
		{"set authority bad option", []byte{6, 0, 9}},
		{"ui amount invalid utf8", []byte{24, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.ErrorIs(t, err, ErrInvalidInstruction)
		})
	}
}
