package spltoken

import (
	"errors"
	"fmt"
	"unicode/utf8"

	sdktoken "github.com/blocto/solana-go-sdk/program/token"

	"sol-tx-filter/internal/logic/programs/layout"
)

var ErrInvalidInstruction = errors.New("invalid token instruction")

// Decode 按 SPL Token 程序规则解析 opcode 0..24
func Decode(data []byte) (Instruction, error) {
	return unpack(data, false)
}

// Decode2022 按 Token-2022 程序规则解析，额外接受扩展指令 25..44
func Decode2022(data []byte) (Instruction, error) {
	return unpack(data, true)
}

func unpack(data []byte, extensions bool) (Instruction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidInstruction)
	}

	op := sdktoken.Instruction(data[0])
	r := layout.NewReader(data[1:])

	ix, err := unpackBody(op, r, extensions)
	if err != nil {
		return nil, fmt.Errorf("%w: opcode %d: %v", ErrInvalidInstruction, op, err)
	}
	return ix, nil
}

func unpackBody(op sdktoken.Instruction, r *layout.Reader, extensions bool) (Instruction, error) {
	switch op {
	case sdktoken.InstructionInitializeMint:
		m, err := unpackMint(r)
		if err != nil {
			return nil, err
		}
		return m, nil
	case sdktoken.InstructionInitializeMint2:
		m, err := unpackMint(r)
		if err != nil {
			return nil, err
		}
		return InitializeMint2(m), nil

	case sdktoken.InstructionInitializeAccount:
		return InitializeAccount{}, nil
	case sdktoken.InstructionInitializeAccount2:
		owner, err := r.Pubkey()
		if err != nil {
			return nil, err
		}
		return InitializeAccount2{Owner: owner}, nil
	case sdktoken.InstructionInitializeAccount3:
		owner, err := r.Pubkey()
		if err != nil {
			return nil, err
		}
		return InitializeAccount3{Owner: owner}, nil

	case sdktoken.InstructionInitializeMultisig:
		m, err := r.U8()
		if err != nil {
			return nil, err
		}
		return InitializeMultisig{M: m}, nil
	case sdktoken.InstructionInitializeMultisig2:
		m, err := r.U8()
		if err != nil {
			return nil, err
		}
		return InitializeMultisig2{M: m}, nil

	case sdktoken.InstructionTransfer,
		sdktoken.InstructionApprove,
		sdktoken.InstructionMintTo,
		sdktoken.InstructionBurn,
		InstructionAmountToUiAmount:
		amount, err := r.U64()
		if err != nil {
			return nil, err
		}
		return withAmount(op, amount), nil

	case sdktoken.InstructionTransferChecked,
		sdktoken.InstructionApproveChecked,
		sdktoken.InstructionMintToChecked,
		sdktoken.InstructionBurnChecked:
		amount, err := r.U64()
		if err != nil {
			return nil, err
		}
		decimals, err := r.U8()
		if err != nil {
			return nil, err
		}
		return withAmountChecked(op, amount, decimals), nil

	case sdktoken.InstructionSetAuthority:
		authType, err := r.U8()
		if err != nil {
			return nil, err
		}
		newAuthority, err := r.PubkeyOption()
		if err != nil {
			return nil, err
		}
		return SetAuthority{AuthorityType: AuthorityType(authType), NewAuthority: newAuthority}, nil

	case sdktoken.InstructionRevoke:
		return Revoke{}, nil
	case sdktoken.InstructionCloseAccount:
		return CloseAccount{}, nil
	case sdktoken.InstructionFreezeAccount:
		return FreezeAccount{}, nil
	case sdktoken.InstructionThawAccount:
		return ThawAccount{}, nil
	case sdktoken.InstructionSyncNative:
		return SyncNative{}, nil
	case InstructionInitializeImmutableOwner:
		return InitializeImmutableOwner{}, nil

	case InstructionGetAccountDataSize:
		var exts []uint16
		for r.Len() >= 2 {
			v, _ := r.U16()
			exts = append(exts, v)
		}
		return GetAccountDataSize{ExtensionTypes: exts}, nil

	case InstructionUiAmountToAmount:
		rest := r.Remaining()
		if !utf8.Valid(rest) {
			return nil, errors.New("ui amount is not valid utf-8")
		}
		return UiAmountToAmount{UiAmount: string(rest)}, nil
	}

	if extensions && op >= InstructionFirstExtension && op <= InstructionLastExtension {
		return Extension{Code: op, Data: append([]byte(nil), r.Remaining()...)}, nil
	}
	return nil, errors.New("unknown opcode")
}

func unpackMint(r *layout.Reader) (InitializeMint, error) {
	var m InitializeMint
	var err error
	if m.Decimals, err = r.U8(); err != nil {
		return m, err
	}
	if m.MintAuthority, err = r.Pubkey(); err != nil {
		return m, err
	}
	if m.FreezeAuthority, err = r.PubkeyOption(); err != nil {
		return m, err
	}
	return m, nil
}

func withAmount(op sdktoken.Instruction, amount uint64) Instruction {
	switch op {
	case sdktoken.InstructionApprove:
		return Approve{Amount: amount}
	case sdktoken.InstructionMintTo:
		return MintTo{Amount: amount}
	case sdktoken.InstructionBurn:
		return Burn{Amount: amount}
	case InstructionAmountToUiAmount:
		return AmountToUiAmount{Amount: amount}
	default:
		return Transfer{Amount: amount}
	}
}

func withAmountChecked(op sdktoken.Instruction, amount uint64, decimals uint8) Instruction {
	switch op {
	case sdktoken.InstructionApproveChecked:
		return ApproveChecked{Amount: amount, Decimals: decimals}
	case sdktoken.InstructionMintToChecked:
		return MintToChecked{Amount: amount, Decimals: decimals}
	case sdktoken.InstructionBurnChecked:
		return BurnChecked{Amount: amount, Decimals: decimals}
	default:
		return TransferChecked{Amount: amount, Decimals: decimals}
	}
}
