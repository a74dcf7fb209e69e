package parsed

import (
	"sol-tx-filter/internal/logic/codec"
	"sol-tx-filter/internal/logic/programs/spltoken"
)

// TokenTransfer 统一后的 token 转账数据，账户字段均为账户索引中的位置
type TokenTransfer struct {
	Source      uint8
	Destination uint8
	Signer      uint8
	Amount      uint64
	Mint        *uint8
	Decimals    *uint8
}

// ExtractTokenTransfer 识别 SPL Token / Token-2022 的 Transfer 与 TransferChecked：
//   - Transfer:        [0]=source, [1]=destination, [2]=signer
//   - TransferChecked: [0]=source, [1]=mint, [2]=destination, [3]=signer
//
// 调用方须保证 Accounts 长度满足对应布局，不足时直接 panic（上游数据错误）。
func ExtractTokenTransfer(ix *Instruction) (TokenTransfer, bool) {
	tokenIx, ok := codec.TokenInstruction(ix.Payload)
	if !ok {
		return TokenTransfer{}, false
	}

	switch v := tokenIx.(type) {
	case spltoken.Transfer:
		return TokenTransfer{
			Source:      ix.Accounts[0],
			Destination: ix.Accounts[1],
			Signer:      ix.Accounts[2],
			Amount:      v.Amount,
		}, true

	case spltoken.TransferChecked:
		mint := ix.Accounts[1]
		decimals := v.Decimals
		return TokenTransfer{
			Source:      ix.Accounts[0],
			Destination: ix.Accounts[2],
			Signer:      ix.Accounts[3],
			Amount:      v.Amount,
			Mint:        &mint,
			Decimals:    &decimals,
		}, true

	default:
		return TokenTransfer{}, false
	}
}
