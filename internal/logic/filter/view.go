package filter

import (
	"sol-tx-filter/internal/logic/accounts"
	"sol-tx-filter/internal/logic/core"
	"sol-tx-filter/internal/logic/parsed"
)

// View 基于单笔交易记录的 TxView。指令树在首次访问时构建。
// View 引用原始记录，不得跨越记录的生命周期使用。
type View struct {
	tx    *core.TransactionWithMeta
	index accounts.Index[string]

	built bool
	list  parsed.List
}

func NewView(tx *core.TransactionWithMeta) *View {
	return &View{tx: tx, index: parsed.AccountIndex(tx)}
}

func (v *View) Accounts() accounts.Index[string] {
	return v.index
}

// Signatures 二进制表示形式下签名不可用
func (v *View) Signatures() ([]string, bool) {
	switch v.tx.Transaction.Encoding {
	case core.EncodingJSON, core.EncodingAccounts:
		return v.tx.Transaction.Signatures, true
	default:
		return nil, false
	}
}

// Instructions 仅原始编译格式的 message 可构建指令树
func (v *View) Instructions() (parsed.List, bool) {
	msg := v.tx.Transaction.Message
	if v.tx.Transaction.Encoding != core.EncodingJSON || msg == nil || msg.Format != core.MessageRaw {
		return nil, false
	}
	if !v.built {
		v.list = parsed.Build(v.tx)
		v.built = true
	}
	return v.list, true
}

func (v *View) Meta() (*core.Meta, bool) {
	return v.tx.Meta, v.tx.Meta != nil
}
