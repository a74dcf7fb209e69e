package core

import (
	"bytes"
	"encoding/json"
)

// TransactionEncoding 表示 RPC 返回交易时使用的表示形式。
// 只有 EncodingJSON + MessageRaw（结构化、未预解析）能被指令树构建器处理。
type TransactionEncoding uint8

const (
	EncodingJSON         TransactionEncoding = iota // {"signatures": [...], "message": {...}}
	EncodingLegacyBinary                            // 旧版 base58 字符串
	EncodingBinary                                  // ["<data>", "base64"]
	EncodingAccounts                                // transactionDetails=accounts，仅包含签名与账户列表
)

func (e TransactionEncoding) String() string {
	switch e {
	case EncodingJSON:
		return "Json"
	case EncodingLegacyBinary:
		return "LegacyBinary"
	case EncodingBinary:
		return "Binary"
	case EncodingAccounts:
		return "Accounts"
	default:
		return "Unknown"
	}
}

// MessageFormat 区分 JSON 形式下的 message 是原始编译格式还是 jsonParsed 预解析格式
type MessageFormat uint8

const (
	MessageRaw MessageFormat = iota
	MessageParsed
)

func (f MessageFormat) String() string {
	if f == MessageParsed {
		return "Parsed"
	}
	return "Raw"
}

// ConfirmedTransaction 对应 getTransaction 的返回结果
type ConfirmedTransaction struct {
	Slot      uint64 `json:"slot"`
	BlockTime *int64 `json:"blockTime,omitempty"`
	TransactionWithMeta
}

// BlockTransaction 表示一个区块内的交易集合，用于按签名前后窗口拉取的结果
type BlockTransaction struct {
	Slot         uint64                `json:"slot"`
	BlockTime    *int64                `json:"blockTime,omitempty"`
	BlockHeight  *uint64               `json:"blockHeight,omitempty"`
	Transactions []TransactionWithMeta `json:"transactions,omitempty"`
}

// TransactionWithMeta 一笔交易记录：交易本体 + 执行元数据（meta 可能缺失）
type TransactionWithMeta struct {
	Transaction EncodedTransaction `json:"transaction"`
	Meta        *Meta              `json:"meta"`
	Version     json.RawMessage    `json:"version,omitempty"`
}

// EncodedTransaction 交易本体。Encoding 决定哪些字段有效：
//   - EncodingJSON: Signatures + Message
//   - EncodingAccounts: Signatures + AccountKeys
//   - EncodingLegacyBinary / EncodingBinary: Blob（+ BlobEncoding）
type EncodedTransaction struct {
	Encoding     TransactionEncoding
	Signatures   []string
	Message      *UiMessage
	AccountKeys  []ParsedAccount
	Blob         string
	BlobEncoding string
}

// UiMessage 是 JSON 形式下的 message，Raw 与 Parsed 二选一
type UiMessage struct {
	Format MessageFormat
	Raw    *RawMessage
	Parsed *ParsedMessage
}

type MessageHeader struct {
	NumRequiredSignatures       uint8 `json:"numRequiredSignatures"`
	NumReadonlySignedAccounts   uint8 `json:"numReadonlySignedAccounts"`
	NumReadonlyUnsignedAccounts uint8 `json:"numReadonlyUnsignedAccounts"`
}

// RawMessage 原始编译格式的 message，账户引用全部为 accountKeys 的位置索引
type RawMessage struct {
	Header              MessageHeader         `json:"header"`
	AccountKeys         []string              `json:"accountKeys"`
	RecentBlockhash     string                `json:"recentBlockhash"`
	Instructions        []CompiledInstruction `json:"instructions"`
	AddressTableLookups []AddressTableLookup  `json:"addressTableLookups,omitempty"`
}

type AddressTableLookup struct {
	AccountKey      string    `json:"accountKey"`
	WritableIndexes Positions `json:"writableIndexes"`
	ReadonlyIndexes Positions `json:"readonlyIndexes"`
}

// ParsedMessage jsonParsed 格式的 message，指令已由节点预解析，这里只保留原始 JSON
type ParsedMessage struct {
	AccountKeys     []ParsedAccount   `json:"accountKeys"`
	RecentBlockhash string            `json:"recentBlockhash"`
	Instructions    []json.RawMessage `json:"instructions"`
}

type ParsedAccount struct {
	Pubkey   string `json:"pubkey"`
	Writable bool   `json:"writable"`
	Signer   bool   `json:"signer"`
	Source   string `json:"source,omitempty"`
}

// CompiledInstruction 编译格式的指令。
// Data 为 base58 文本（RPC JSON）；RawData 非空时表示已是原始字节（gRPC 来源），优先使用。
type CompiledInstruction struct {
	ProgramIDIndex uint8     `json:"programIdIndex"`
	Accounts       Positions `json:"accounts"`
	Data           string    `json:"data"`
	StackHeight    *uint32   `json:"stackHeight,omitempty"`
	RawData        []byte    `json:"-"`
}

// InnerInstructions 一组 CPI 指令，Index 为父指令在主指令列表中的位置（从 0 开始）
type InnerInstructions struct {
	Index        uint8              `json:"index"`
	Instructions []InnerInstruction `json:"instructions"`
}

// InnerInstruction 内部指令可能是编译格式，也可能是节点预解析格式（不支持）
type InnerInstruction struct {
	Compiled *CompiledInstruction
	Parsed   json.RawMessage
}

type LoadedAddresses struct {
	Writable []string `json:"writable"`
	Readonly []string `json:"readonly"`
}

// Meta 交易执行元数据
type Meta struct {
	Err                  json.RawMessage     `json:"err"`
	Status               json.RawMessage     `json:"status,omitempty"`
	Fee                  uint64              `json:"fee"`
	PreBalances          []uint64            `json:"preBalances"`
	PostBalances         []uint64            `json:"postBalances"`
	InnerInstructions    []InnerInstructions `json:"innerInstructions,omitempty"`
	LogMessages          []string            `json:"logMessages,omitempty"`
	ComputeUnitsConsumed *uint64             `json:"computeUnitsConsumed,omitempty"`
	LoadedAddresses      *LoadedAddresses    `json:"loadedAddresses,omitempty"`
}

// Succeeded 判断交易是否执行成功：err 为空，且（已废弃的）status 不是 {"Err": ...}
func (m *Meta) Succeeded() bool {
	if !isJSONNull(m.Err) {
		return false
	}
	if isJSONNull(m.Status) {
		return true
	}
	var status map[string]json.RawMessage
	if err := unmarshal(m.Status, &status); err != nil {
		return true
	}
	_, failed := status["Err"]
	return !failed
}

// Loaded 返回 Address Lookup Table 加载的 writable / readonly 地址，未加载时均为 nil
func (m *Meta) Loaded() (writable, readonly []string) {
	if m.LoadedAddresses == nil {
		return nil, nil
	}
	return m.LoadedAddresses.Writable, m.LoadedAddresses.Readonly
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
