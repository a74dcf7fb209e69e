package parsed

import (
	"sol-tx-filter/internal/logic/accounts"
	"sol-tx-filter/internal/logic/codec"
	"sol-tx-filter/internal/logic/core"
	"sol-tx-filter/internal/pkg/logger"
)

// AccountIndex 构造交易的账户索引：
//   - 原始 message: 静态 accountKeys + meta 中 ALT 加载的 writable / readonly
//   - jsonParsed message / accounts 模式: 节点返回的完整账户列表（已包含 ALT 账户）
//   - 二进制模式: 空索引
func AccountIndex(tx *core.TransactionWithMeta) accounts.Index[string] {
	switch tx.Transaction.Encoding {
	case core.EncodingJSON:
		msg := tx.Transaction.Message
		if msg == nil {
			break
		}
		if msg.Format == core.MessageRaw && msg.Raw != nil {
			var writable, readonly []string
			if tx.Meta != nil {
				writable, readonly = tx.Meta.Loaded()
			}
			return accounts.From(msg.Raw.AccountKeys, writable, readonly)
		}
		if msg.Parsed != nil {
			return accounts.From(pubkeys(msg.Parsed.AccountKeys), nil, nil)
		}
	case core.EncodingAccounts:
		return accounts.From(pubkeys(tx.Transaction.AccountKeys), nil, nil)
	}
	return accounts.From[string](nil, nil, nil)
}

func pubkeys(list []core.ParsedAccount) []string {
	keys := make([]string, len(list))
	for i, a := range list {
		keys[i] = a.Pubkey
	}
	return keys
}

// Build 构建指令树。不支持的交易表示形式或缺少 meta 时返回空列表（记录日志，不返回错误）
func Build(tx *core.TransactionWithMeta) List {
	sig := Signature(tx)

	msg := tx.Transaction.Message
	if tx.Transaction.Encoding != core.EncodingJSON || msg == nil || msg.Format != core.MessageRaw || msg.Raw == nil {
		format := "-"
		if msg != nil {
			format = msg.Format.String()
		}
		logger.Errorf("[InstructionTree::Build] unsupported transaction representation: tx=%s, encoding=%s, message=%s",
			sig, tx.Transaction.Encoding, format)
		return List{}
	}
	if tx.Meta == nil {
		logger.Errorf("[InstructionTree::Build] missing meta: tx=%s", sig)
		return List{}
	}

	b := &builder{sig: sig, index: AccountIndex(tx)}
	list := b.topLevel(msg.Raw.Instructions)
	b.attachInner(list, tx.Meta.InnerInstructions)
	return list
}

// Signature 返回交易首个签名，没有时返回 "-"
func Signature(tx *core.TransactionWithMeta) string {
	if len(tx.Transaction.Signatures) == 0 {
		return "-"
	}
	return tx.Transaction.Signatures[0]
}

type builder struct {
	sig   string
	index accounts.Index[string]
}

func (b *builder) topLevel(ixs []core.CompiledInstruction) List {
	list := make(List, len(ixs))
	for i := range ixs {
		node, ok := b.decode(&ixs[i])
		if !ok {
			logger.Errorf("[InstructionTree::Build] unresolvable program position, dropped: tx=%s, ixIndex=%d, programIndex=%d",
				b.sig, i, ixs[i].ProgramIDIndex)
			continue
		}
		list[i] = node
	}
	return list
}

func (b *builder) attachInner(list List, groups []core.InnerInstructions) {
	for _, group := range groups {
		parentIdx := int(group.Index)
		if parentIdx >= len(list) || list[parentIdx] == nil {
			logger.Errorf("[InstructionTree::Build] inner instructions without parent, skipped: tx=%s, ixIndex=%d", b.sig, parentIdx)
			continue
		}
		parent := list[parentIdx]

		for j, inner := range group.Instructions {
			if inner.Compiled == nil {
				logger.Errorf("[InstructionTree::Build] parsed inner instruction not supported, skipped: tx=%s, ixIndex=%d, innerIndex=%d",
					b.sig, parentIdx, j)
				continue
			}
			node, ok := b.decode(inner.Compiled)
			if !ok {
				logger.Errorf("[InstructionTree::Build] unresolvable program position, dropped: tx=%s, ixIndex=%d, innerIndex=%d, programIndex=%d",
					b.sig, parentIdx, j, inner.Compiled.ProgramIDIndex)
				continue
			}
			parent.Inner = append(parent.Inner, node)
		}
	}
}

// decode 解析程序位置并解码数据；解码失败时节点仍保留，Payload 为 ErrorPayload
func (b *builder) decode(ix *core.CompiledInstruction) (*Instruction, bool) {
	program, ok := b.index.Get(int(ix.ProgramIDIndex))
	if !ok {
		return nil, false
	}

	var data codec.Data
	if ix.RawData != nil {
		data = codec.Binary(ix.RawData)
	} else {
		data = codec.Base58(ix.Data)
	}

	payload, err := codec.TryDecode(codec.ProgramBase58(program), data)
	if err != nil {
		logger.Errorf("[InstructionTree::Decode] decode failed: tx=%s, program=%s, err=%v", b.sig, program, err)
		payload = codec.ErrorPayload{Message: err.Error()}
	}

	return &Instruction{
		ProgramIndex: ix.ProgramIDIndex,
		Accounts:     ix.Accounts,
		Payload:      payload,
	}, true
}
