package system

import (
	"errors"
	"fmt"

	sdksystem "github.com/blocto/solana-go-sdk/program/system"
	"github.com/near/borsh-go"

	"sol-tx-filter/internal/logic/programs/layout"
	"sol-tx-filter/internal/types"
)

var ErrInvalidInstructionData = errors.New("invalid system instruction data")

const (
	u64Size    = 8
	pubkeySize = types.PubkeyLength
)

// Decode 解析 System Program 指令数据。允许尾随多余字节
func Decode(data []byte) (Instruction, error) {
	r := layout.NewReader(data)
	raw, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstructionData, err)
	}
	tag := sdksystem.Instruction(raw)
	body := r.Remaining()

	var ix Instruction
	switch tag {
	case sdksystem.InstructionCreateAccount:
		ix, err = decodeFixed[CreateAccount](body, u64Size+u64Size+pubkeySize)
	case sdksystem.InstructionAssign:
		ix, err = decodeFixed[Assign](body, pubkeySize)
	case sdksystem.InstructionTransfer:
		ix, err = decodeFixed[Transfer](body, u64Size)
	case sdksystem.InstructionCreateAccountWithSeed:
		ix, err = decodeCreateAccountWithSeed(r)
	case sdksystem.InstructionAdvanceNonceAccount:
		ix = AdvanceNonceAccount{}
	case sdksystem.InstructionWithdrawNonceAccount:
		ix, err = decodeFixed[WithdrawNonceAccount](body, u64Size)
	case sdksystem.InstructionInitializeNonceAccount:
		ix, err = decodeFixed[InitializeNonceAccount](body, pubkeySize)
	case sdksystem.InstructionAuthorizeNonceAccount:
		ix, err = decodeFixed[AuthorizeNonceAccount](body, pubkeySize)
	case sdksystem.InstructionAllocate:
		ix, err = decodeFixed[Allocate](body, u64Size)
	case sdksystem.InstructionAllocateWithSeed:
		ix, err = decodeAllocateWithSeed(r)
	case sdksystem.InstructionAssignWithSeed:
		ix, err = decodeAssignWithSeed(r)
	case sdksystem.InstructionTransferWithSeed:
		ix, err = decodeTransferWithSeed(r)
	case InstructionUpgradeNonceAccount:
		ix = UpgradeNonceAccount{}
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrInvalidInstructionData, raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInstructionData, TagName(tag), err)
	}
	return ix, nil
}

// decodeFixed 用 borsh 解析定长字段（u64 / pubkey 与 bincode 定长编码一致）
func decodeFixed[T Instruction](body []byte, size int) (ix Instruction, err error) {
	if len(body) < size {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", layout.ErrShortBuffer, size, len(body))
	}

	defer func() {
		if r := recover(); r != nil {
			ix, err = nil, fmt.Errorf("borsh.Deserialize panic: %v", r)
		}
	}()

	var v T
	if err := borsh.Deserialize(&v, body[:size]); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeCreateAccountWithSeed(r *layout.Reader) (Instruction, error) {
	var ix CreateAccountWithSeed
	var err error
	if ix.Base, err = r.Pubkey(); err != nil {
		return nil, err
	}
	if ix.Seed, err = r.BincodeString(); err != nil {
		return nil, err
	}
	if ix.Lamports, err = r.U64(); err != nil {
		return nil, err
	}
	if ix.Space, err = r.U64(); err != nil {
		return nil, err
	}
	if ix.Owner, err = r.Pubkey(); err != nil {
		return nil, err
	}
	return ix, nil
}

func decodeAllocateWithSeed(r *layout.Reader) (Instruction, error) {
	var ix AllocateWithSeed
	var err error
	if ix.Base, err = r.Pubkey(); err != nil {
		return nil, err
	}
	if ix.Seed, err = r.BincodeString(); err != nil {
		return nil, err
	}
	if ix.Space, err = r.U64(); err != nil {
		return nil, err
	}
	if ix.Owner, err = r.Pubkey(); err != nil {
		return nil, err
	}
	return ix, nil
}

func decodeAssignWithSeed(r *layout.Reader) (Instruction, error) {
	var ix AssignWithSeed
	var err error
	if ix.Base, err = r.Pubkey(); err != nil {
		return nil, err
	}
	if ix.Seed, err = r.BincodeString(); err != nil {
		return nil, err
	}
	if ix.Owner, err = r.Pubkey(); err != nil {
		return nil, err
	}
	return ix, nil
}

func decodeTransferWithSeed(r *layout.Reader) (Instruction, error) {
	var ix TransferWithSeed
	var err error
	if ix.Lamports, err = r.U64(); err != nil {
		return nil, err
	}
	if ix.FromSeed, err = r.BincodeString(); err != nil {
		return nil, err
	}
	if ix.FromOwner, err = r.Pubkey(); err != nil {
		return nil, err
	}
	return ix, nil
}
