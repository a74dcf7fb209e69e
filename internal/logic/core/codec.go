package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/jsonx"
)

var (
	ErrEmptyTransaction   = errors.New("empty transaction")
	ErrUnknownTransaction = errors.New("unrecognized transaction representation")
)

func unmarshal(data []byte, v any) error {
	return jsonx.Unmarshal(data, v)
}

// ParseConfirmedTransactions 解析 JSON 数组形式的 getTransaction 结果列表
func ParseConfirmedTransactions(data []byte) ([]ConfirmedTransaction, error) {
	var txs []ConfirmedTransaction
	if err := unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("parse confirmed transactions: %w", err)
	}
	return txs, nil
}

// Positions 指令内的账户位置索引（1 字节），JSON 中为数字数组而非 base64
type Positions []uint8

func (p *Positions) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		*p = nil
		return nil
	}
	var wide []uint16
	if err := unmarshal(data, &wide); err != nil {
		return err
	}
	out := make(Positions, len(wide))
	for i, v := range wide {
		if v > 0xFF {
			return fmt.Errorf("account position %d out of range at %d", v, i)
		}
		out[i] = uint8(v)
	}
	*p = out
	return nil
}

func (p Positions) MarshalJSON() ([]byte, error) {
	wide := make([]uint16, len(p))
	for i, v := range p {
		wide[i] = uint16(v)
	}
	return jsonx.Marshal(wide)
}

type jsonTransaction struct {
	Signatures  []string        `json:"signatures"`
	Message     json.RawMessage `json:"message,omitempty"`
	AccountKeys []ParsedAccount `json:"accountKeys,omitempty"`
}

func (t *EncodedTransaction) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || isJSONNull(data) {
		return ErrEmptyTransaction
	}

	switch data[0] {
	case '"':
		*t = EncodedTransaction{Encoding: EncodingLegacyBinary, BlobEncoding: "base58"}
		return unmarshal(data, &t.Blob)

	case '[':
		var pair []string
		if err := unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("%w: binary pair has %d elements", ErrUnknownTransaction, len(pair))
		}
		*t = EncodedTransaction{Encoding: EncodingBinary, Blob: pair[0], BlobEncoding: pair[1]}
		return nil

	case '{':
		var shape jsonTransaction
		if err := unmarshal(data, &shape); err != nil {
			return err
		}
		switch {
		case len(shape.Message) > 0:
			var msg UiMessage
			if err := unmarshal(shape.Message, &msg); err != nil {
				return fmt.Errorf("parse message: %w", err)
			}
			*t = EncodedTransaction{Encoding: EncodingJSON, Signatures: shape.Signatures, Message: &msg}
		case shape.AccountKeys != nil:
			*t = EncodedTransaction{Encoding: EncodingAccounts, Signatures: shape.Signatures, AccountKeys: shape.AccountKeys}
		default:
			return fmt.Errorf("%w: object without message or accountKeys", ErrUnknownTransaction)
		}
		return nil
	}

	return fmt.Errorf("%w: leading byte %q", ErrUnknownTransaction, data[0])
}

func (t EncodedTransaction) MarshalJSON() ([]byte, error) {
	switch t.Encoding {
	case EncodingLegacyBinary:
		return jsonx.Marshal(t.Blob)
	case EncodingBinary:
		return jsonx.Marshal([]string{t.Blob, t.BlobEncoding})
	case EncodingAccounts:
		return jsonx.Marshal(jsonTransaction{Signatures: t.Signatures, AccountKeys: t.AccountKeys})
	default:
		var msg []byte
		if t.Message != nil {
			var err error
			if msg, err = jsonx.Marshal(t.Message); err != nil {
				return nil, err
			}
		}
		return jsonx.Marshal(jsonTransaction{Signatures: t.Signatures, Message: msg})
	}
}

func (m *UiMessage) UnmarshalJSON(data []byte) error {
	var shape struct {
		AccountKeys []json.RawMessage `json:"accountKeys"`
	}
	if err := unmarshal(data, &shape); err != nil {
		return err
	}

	// jsonParsed 格式的 accountKeys 为对象数组，原始格式为 base58 字符串数组
	if len(shape.AccountKeys) > 0 && bytes.HasPrefix(bytes.TrimSpace(shape.AccountKeys[0]), []byte("{")) {
		var parsed ParsedMessage
		if err := unmarshal(data, &parsed); err != nil {
			return err
		}
		*m = UiMessage{Format: MessageParsed, Parsed: &parsed}
		return nil
	}

	var raw RawMessage
	if err := unmarshal(data, &raw); err != nil {
		return err
	}
	*m = UiMessage{Format: MessageRaw, Raw: &raw}
	return nil
}

func (m UiMessage) MarshalJSON() ([]byte, error) {
	if m.Format == MessageParsed && m.Parsed != nil {
		return jsonx.Marshal(m.Parsed)
	}
	if m.Raw == nil {
		return []byte("null"), nil
	}
	return jsonx.Marshal(m.Raw)
}

func (i *InnerInstruction) UnmarshalJSON(data []byte) error {
	var shape map[string]json.RawMessage
	if err := unmarshal(data, &shape); err != nil {
		return err
	}
	if _, ok := shape["programIdIndex"]; ok {
		var compiled CompiledInstruction
		if err := unmarshal(data, &compiled); err != nil {
			return err
		}
		*i = InnerInstruction{Compiled: &compiled}
		return nil
	}
	*i = InnerInstruction{Parsed: append(json.RawMessage(nil), data...)}
	return nil
}

func (i InnerInstruction) MarshalJSON() ([]byte, error) {
	if i.Compiled != nil {
		return jsonx.Marshal(i.Compiled)
	}
	if len(i.Parsed) == 0 {
		return []byte("null"), nil
	}
	return i.Parsed, nil
}
