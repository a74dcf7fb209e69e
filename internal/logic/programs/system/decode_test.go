package system

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	sdksystem "github.com/blocto/solana-go-sdk/program/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sol-tx-filter/internal/types"
)

var (
	testFrom = common.PublicKeyFromString("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	testTo   = common.PublicKeyFromString("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

func TestDecodeTransferAmountRoundTrip(t *testing.T) {
	for _, amount := range []uint64{0, 1, 5000, 1 << 32, math.MaxUint64 - 1, math.MaxUint64} {
		ix := sdksystem.Transfer(sdksystem.TransferParam{From: testFrom, To: testTo, Amount: amount})

		decoded, err := Decode(ix.Data)
		require.NoError(t, err)
		transfer, ok := decoded.(Transfer)
		require.True(t, ok, "got %T", decoded)
		assert.Equal(t, amount, transfer.Lamports)
		assert.Equal(t, sdksystem.InstructionTransfer, decoded.Tag())
	}
}

func TestDecodeCreateAccount(t *testing.T) {
	ix := sdksystem.CreateAccount(sdksystem.CreateAccountParam{
		From:     testFrom,
		New:      testTo,
		Owner:    common.TokenProgramID,
		Lamports: 2039280,
		Space:    165,
	})

	decoded, err := Decode(ix.Data)
	require.NoError(t, err)
	create, ok := decoded.(CreateAccount)
	require.True(t, ok, "got %T", decoded)
	assert.Equal(t, uint64(2039280), create.Lamports)
	assert.Equal(t, uint64(165), create.Space)
	assert.Equal(t, types.Pubkey(common.TokenProgramID), create.Owner)
}

func TestDecodeSeeded(t *testing.T) {
	base := types.Pubkey(testFrom)
	owner := types.Pubkey(testTo)

	data := binary.LittleEndian.AppendUint32(nil, uint32(sdksystem.InstructionCreateAccountWithSeed))
	data = append(data, base[:]...)
	data = binary.LittleEndian.AppendUint64(data, 3)
	data = append(data, "abc"...)
	data = binary.LittleEndian.AppendUint64(data, 10)
	data = binary.LittleEndian.AppendUint64(data, 20)
	data = append(data, owner[:]...)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CreateAccountWithSeed{Base: base, Seed: "abc", Lamports: 10, Space: 20, Owner: owner}, decoded)

	// 截断 owner
	_, err = Decode(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrInvalidInstructionData)
}

func TestDecodeUnitVariantsAndTrailingBytes(t *testing.T) {
	decoded, err := Decode([]byte{4, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, AdvanceNonceAccount{}, decoded)

	decoded, err = Decode([]byte{12, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, UpgradeNonceAccount{}, decoded)
	assert.Equal(t, "UpgradeNonceAccount", TagName(decoded.Tag()))

	data := binary.LittleEndian.AppendUint32(nil, uint32(sdksystem.InstructionAllocate))
	data = binary.LittleEndian.AppendUint64(data, 42)
	data = append(data, 0xff, 0xff)
	decoded, err = Decode(data)
	require.NoError(t, err)
	assert.Equal(t, Allocate{Space: 42}, decoded)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short tag", []byte{2, 0}},
		{"unknown tag", []byte{13, 0, 0, 0}},
		{"transfer without amount", []byte{2, 0, 0, 0, 1, 2, 3}},
		{"assign short owner", append([]byte{1, 0, 0, 0}, make([]byte, 31)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.ErrorIs(t, err, ErrInvalidInstructionData)
		})
	}
}
