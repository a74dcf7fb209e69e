// Package system 解码 System Program 指令（bincode：u32 小端 tag + 定长字段）
package system

import (
	sdksystem "github.com/blocto/solana-go-sdk/program/system"

	"sol-tx-filter/internal/types"
)

// InstructionUpgradeNonceAccount sdk 未收录的 tag 12
const InstructionUpgradeNonceAccount sdksystem.Instruction = 12

// Instruction 已解码的 System 指令，具体类型为本包中的结构体
type Instruction interface {
	Tag() sdksystem.Instruction
}

type CreateAccount struct {
	Lamports uint64
	Space    uint64
	Owner    types.Pubkey
}

type Assign struct {
	Owner types.Pubkey
}

type Transfer struct {
	Lamports uint64
}

type CreateAccountWithSeed struct {
	Base     types.Pubkey
	Seed     string
	Lamports uint64
	Space    uint64
	Owner    types.Pubkey
}

type AdvanceNonceAccount struct{}

type WithdrawNonceAccount struct {
	Lamports uint64
}

type InitializeNonceAccount struct {
	Authority types.Pubkey
}

type AuthorizeNonceAccount struct {
	Authority types.Pubkey
}

type Allocate struct {
	Space uint64
}

type AllocateWithSeed struct {
	Base  types.Pubkey
	Seed  string
	Space uint64
	Owner types.Pubkey
}

type AssignWithSeed struct {
	Base  types.Pubkey
	Seed  string
	Owner types.Pubkey
}

type TransferWithSeed struct {
	Lamports  uint64
	FromSeed  string
	FromOwner types.Pubkey
}

type UpgradeNonceAccount struct{}

func (CreateAccount) Tag() sdksystem.Instruction          { return sdksystem.InstructionCreateAccount }
func (Assign) Tag() sdksystem.Instruction                 { return sdksystem.InstructionAssign }
func (Transfer) Tag() sdksystem.Instruction               { return sdksystem.InstructionTransfer }
func (CreateAccountWithSeed) Tag() sdksystem.Instruction  { return sdksystem.InstructionCreateAccountWithSeed }
func (AdvanceNonceAccount) Tag() sdksystem.Instruction    { return sdksystem.InstructionAdvanceNonceAccount }
func (WithdrawNonceAccount) Tag() sdksystem.Instruction   { return sdksystem.InstructionWithdrawNonceAccount }
func (InitializeNonceAccount) Tag() sdksystem.Instruction { return sdksystem.InstructionInitializeNonceAccount }
func (AuthorizeNonceAccount) Tag() sdksystem.Instruction  { return sdksystem.InstructionAuthorizeNonceAccount }
func (Allocate) Tag() sdksystem.Instruction               { return sdksystem.InstructionAllocate }
func (AllocateWithSeed) Tag() sdksystem.Instruction       { return sdksystem.InstructionAllocateWithSeed }
func (AssignWithSeed) Tag() sdksystem.Instruction         { return sdksystem.InstructionAssignWithSeed }
func (TransferWithSeed) Tag() sdksystem.Instruction       { return sdksystem.InstructionTransferWithSeed }
func (UpgradeNonceAccount) Tag() sdksystem.Instruction    { return InstructionUpgradeNonceAccount }

// TagName 返回指令名，未知 tag 返回 "Unknown"
func TagName(tag sdksystem.Instruction) string {
	if name, ok := tagNames[tag]; ok {
		return name
	}
	return "Unknown"
}

var tagNames = map[sdksystem.Instruction]string{
	sdksystem.InstructionCreateAccount:          "CreateAccount",
	sdksystem.InstructionAssign:                 "Assign",
	sdksystem.InstructionTransfer:               "Transfer",
	sdksystem.InstructionCreateAccountWithSeed:  "CreateAccountWithSeed",
	sdksystem.InstructionAdvanceNonceAccount:    "AdvanceNonceAccount",
	sdksystem.InstructionWithdrawNonceAccount:   "WithdrawNonceAccount",
	sdksystem.InstructionInitializeNonceAccount: "InitializeNonceAccount",
	sdksystem.InstructionAuthorizeNonceAccount:  "AuthorizeNonceAccount",
	sdksystem.InstructionAllocate:               "Allocate",
	sdksystem.InstructionAllocateWithSeed:       "AllocateWithSeed",
	sdksystem.InstructionAssignWithSeed:         "AssignWithSeed",
	sdksystem.InstructionTransferWithSeed:       "TransferWithSeed",
	InstructionUpgradeNonceAccount:              "UpgradeNonceAccount",
}
