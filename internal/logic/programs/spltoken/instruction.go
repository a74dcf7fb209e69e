// Package spltoken 解码 SPL Token / Token-2022 指令（首字节 opcode + 小端定长字段）
package spltoken

import (
	sdktoken "github.com/blocto/solana-go-sdk/program/token"

	"sol-tx-filter/internal/types"
)

// sdk 只收录到 InitializeMint2（20），以下为后续 opcode
const (
	InstructionGetAccountDataSize       sdktoken.Instruction = 21
	InstructionInitializeImmutableOwner sdktoken.Instruction = 22
	InstructionAmountToUiAmount         sdktoken.Instruction = 23
	InstructionUiAmountToAmount         sdktoken.Instruction = 24
	InstructionFirstExtension           sdktoken.Instruction = 25
	InstructionLastExtension            sdktoken.Instruction = 44
)

// Instruction 已解码的 token 指令
type Instruction interface {
	Opcode() sdktoken.Instruction
}

type InitializeMint struct {
	Decimals        uint8
	MintAuthority   types.Pubkey
	FreezeAuthority *types.Pubkey
}

type InitializeMint2 InitializeMint

type InitializeAccount struct{}

type InitializeAccount2 struct {
	Owner types.Pubkey
}

type InitializeAccount3 struct {
	Owner types.Pubkey
}

type InitializeMultisig struct {
	M uint8
}

type InitializeMultisig2 struct {
	M uint8
}

type Transfer struct {
	Amount uint64
}

type Approve struct {
	Amount uint64
}

type Revoke struct{}

// AuthorityType 0 MintTokens, 1 FreezeAccount, 2 AccountOwner, 3 CloseAccount；Token-2022 有更多取值
type AuthorityType uint8

type SetAuthority struct {
	AuthorityType AuthorityType
	NewAuthority  *types.Pubkey
}

type MintTo struct {
	Amount uint64
}

type Burn struct {
	Amount uint64
}

type CloseAccount struct{}

type FreezeAccount struct{}

type ThawAccount struct{}

type TransferChecked struct {
	Amount   uint64
	Decimals uint8
}

type ApproveChecked struct {
	Amount   uint64
	Decimals uint8
}

type MintToChecked struct {
	Amount   uint64
	Decimals uint8
}

type BurnChecked struct {
	Amount   uint64
	Decimals uint8
}

type SyncNative struct{}

// GetAccountDataSize Token-2022 附带需要计算的扩展类型列表
type GetAccountDataSize struct {
	ExtensionTypes []uint16
}

type InitializeImmutableOwner struct{}

type AmountToUiAmount struct {
	Amount uint64
}

type UiAmountToAmount struct {
	UiAmount string
}

// Extension Token-2022 扩展指令族（opcode 25..44），数据保持原样不展开
type Extension struct {
	Code sdktoken.Instruction
	Data []byte
}

func (InitializeMint) Opcode() sdktoken.Instruction           { return sdktoken.InstructionInitializeMint }
func (InitializeMint2) Opcode() sdktoken.Instruction          { return sdktoken.InstructionInitializeMint2 }
func (InitializeAccount) Opcode() sdktoken.Instruction        { return sdktoken.InstructionInitializeAccount }
func (InitializeAccount2) Opcode() sdktoken.Instruction       { return sdktoken.InstructionInitializeAccount2 }
func (InitializeAccount3) Opcode() sdktoken.Instruction       { return sdktoken.InstructionInitializeAccount3 }
func (InitializeMultisig) Opcode() sdktoken.Instruction       { return sdktoken.InstructionInitializeMultisig }
func (InitializeMultisig2) Opcode() sdktoken.Instruction      { return sdktoken.InstructionInitializeMultisig2 }
func (Transfer) Opcode() sdktoken.Instruction                 { return sdktoken.InstructionTransfer }
func (Approve) Opcode() sdktoken.Instruction                  { return sdktoken.InstructionApprove }
func (Revoke) Opcode() sdktoken.Instruction                   { return sdktoken.InstructionRevoke }
func (SetAuthority) Opcode() sdktoken.Instruction             { return sdktoken.InstructionSetAuthority }
func (MintTo) Opcode() sdktoken.Instruction                   { return sdktoken.InstructionMintTo }
func (Burn) Opcode() sdktoken.Instruction                     { return sdktoken.InstructionBurn }
func (CloseAccount) Opcode() sdktoken.Instruction             { return sdktoken.InstructionCloseAccount }
func (FreezeAccount) Opcode() sdktoken.Instruction            { return sdktoken.InstructionFreezeAccount }
func (ThawAccount) Opcode() sdktoken.Instruction              { return sdktoken.InstructionThawAccount }
func (TransferChecked) Opcode() sdktoken.Instruction          { return sdktoken.InstructionTransferChecked }
func (ApproveChecked) Opcode() sdktoken.Instruction           { return sdktoken.InstructionApproveChecked }
func (MintToChecked) Opcode() sdktoken.Instruction            { return sdktoken.InstructionMintToChecked }
func (BurnChecked) Opcode() sdktoken.Instruction              { return sdktoken.InstructionBurnChecked }
func (SyncNative) Opcode() sdktoken.Instruction               { return sdktoken.InstructionSyncNative }
func (GetAccountDataSize) Opcode() sdktoken.Instruction       { return InstructionGetAccountDataSize }
func (InitializeImmutableOwner) Opcode() sdktoken.Instruction { return InstructionInitializeImmutableOwner }
func (AmountToUiAmount) Opcode() sdktoken.Instruction         { return InstructionAmountToUiAmount }
func (UiAmountToAmount) Opcode() sdktoken.Instruction         { return InstructionUiAmountToAmount }
func (e Extension) Opcode() sdktoken.Instruction              { return e.Code }

// OpcodeName 返回指令名，未知 opcode 返回 "Unknown"
func OpcodeName(op sdktoken.Instruction) string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "Unknown"
}

// Name 返回扩展指令名
func (e Extension) Name() string {
	return OpcodeName(e.Code)
}

var opcodeNames = map[sdktoken.Instruction]string{
	sdktoken.InstructionInitializeMint:      "InitializeMint",
	sdktoken.InstructionInitializeAccount:   "InitializeAccount",
	sdktoken.InstructionInitializeMultisig:  "InitializeMultisig",
	sdktoken.InstructionTransfer:            "Transfer",
	sdktoken.InstructionApprove:             "Approve",
	sdktoken.InstructionRevoke:              "Revoke",
	sdktoken.InstructionSetAuthority:        "SetAuthority",
	sdktoken.InstructionMintTo:              "MintTo",
	sdktoken.InstructionBurn:                "Burn",
	sdktoken.InstructionCloseAccount:        "CloseAccount",
	sdktoken.InstructionFreezeAccount:       "FreezeAccount",
	sdktoken.InstructionThawAccount:         "ThawAccount",
	sdktoken.InstructionTransferChecked:     "TransferChecked",
	sdktoken.InstructionApproveChecked:      "ApproveChecked",
	sdktoken.InstructionMintToChecked:       "MintToChecked",
	sdktoken.InstructionBurnChecked:         "BurnChecked",
	sdktoken.InstructionInitializeAccount2:  "InitializeAccount2",
	sdktoken.InstructionSyncNative:          "SyncNative",
	sdktoken.InstructionInitializeAccount3:  "InitializeAccount3",
	sdktoken.InstructionInitializeMultisig2: "InitializeMultisig2",
	sdktoken.InstructionInitializeMint2:     "InitializeMint2",
	InstructionGetAccountDataSize:           "GetAccountDataSize",
	InstructionInitializeImmutableOwner:     "InitializeImmutableOwner",
	InstructionAmountToUiAmount:             "AmountToUiAmount",
	InstructionUiAmountToAmount:             "UiAmountToAmount",
	25:                                      "InitializeMintCloseAuthority",
	26:                                      "TransferFeeExtension",
	27:                                      "ConfidentialTransferExtension",
	28:                                      "DefaultAccountStateExtension",
	29:                                      "Reallocate",
	30:                                      "MemoTransferExtension",
	31:                                      "CreateNativeMint",
	32:                                      "InitializeNonTransferableMint",
	33:                                      "InterestBearingMintExtension",
	34:                                      "CpiGuardExtension",
	35:                                      "InitializePermanentDelegate",
	36:                                      "TransferHookExtension",
	37:                                      "ConfidentialTransferFeeExtension",
	38:                                      "WithdrawExcessLamports",
	39:                                      "MetadataPointerExtension",
	40:                                      "GroupPointerExtension",
	41:                                      "GroupMemberPointerExtension",
	42:                                      "ConfidentialMintBurnExtension",
	43:                                      "ScaledUiAmountExtension",
	44:                                      "PausableExtension",
}
