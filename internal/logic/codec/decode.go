// Package codec 按程序地址将指令数据解码为封闭的 Payload 变体
package codec

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"sol-tx-filter/internal/consts"
	"sol-tx-filter/internal/logic/programs/spltoken"
	"sol-tx-filter/internal/logic/programs/system"
	"sol-tx-filter/internal/types"
)

var (
	ErrBadBase58        = errors.New("bad base58")
	ErrBadPubkeyLength  = errors.New("bad pubkey length")
	ErrMalformedPayload = errors.New("malformed payload")
)

// Program 程序地址输入：原始 32 字节或 base58 文本
type Program struct {
	key    types.Pubkey
	text   string
	isText bool
}

func ProgramPubkey(key types.Pubkey) Program {
	return Program{key: key}
}

func ProgramBase58(text string) Program {
	return Program{text: text, isText: true}
}

func (p Program) resolve() (types.Pubkey, error) {
	if !p.isText {
		return p.key, nil
	}
	raw, err := base58.Decode(p.text)
	if err != nil {
		return types.Pubkey{}, fmt.Errorf("%w: program %q: %v", ErrBadBase58, p.text, err)
	}
	if len(raw) != types.PubkeyLength {
		return types.Pubkey{}, fmt.Errorf("%w: program %q decodes to %d bytes", ErrBadPubkeyLength, p.text, len(raw))
	}
	return types.Pubkey(raw), nil
}

// Data 指令数据输入：原始字节或 base58 文本
type Data struct {
	raw    []byte
	text   string
	isText bool
}

func Binary(raw []byte) Data {
	return Data{raw: raw}
}

func Base58(text string) Data {
	return Data{text: text, isText: true}
}

func (d Data) resolve() ([]byte, error) {
	if !d.isText {
		return d.raw, nil
	}
	// 无数据的指令在 RPC JSON 中为空字符串
	if d.text == "" {
		return []byte{}, nil
	}
	raw, err := base58.Decode(d.text)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrBadBase58, err)
	}
	return raw, nil
}

type decoder func(data []byte) (Payload, error)

// 固定分发表，只按程序地址精确匹配，不支持外部注册
var decoders = map[types.Pubkey]decoder{
	consts.SystemProgram:    decodeSystem,
	consts.TokenProgram:     decodeToken,
	consts.TokenProgram2022: decodeToken2022,
}

// TryDecode 解码指令，失败时返回 ErrBadBase58 / ErrBadPubkeyLength / ErrMalformedPayload
func TryDecode(program Program, data Data) (Payload, error) {
	key, err := program.resolve()
	if err != nil {
		return nil, err
	}
	raw, err := data.resolve()
	if err != nil {
		return nil, err
	}

	decode, ok := decoders[key]
	if !ok {
		return UnknownPayload{}, nil
	}
	return decode(raw)
}

// Decode 同 TryDecode，失败时返回携带错误描述的 ErrorPayload
func Decode(program Program, data Data) Payload {
	p, err := TryDecode(program, data)
	if err != nil {
		return ErrorPayload{Message: err.Error()}
	}
	return p
}

func decodeSystem(data []byte) (Payload, error) {
	ix, err := system.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return SystemPayload{Instruction: ix}, nil
}

func decodeToken(data []byte) (Payload, error) {
	ix, err := spltoken.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return SplTokenPayload{Instruction: ix}, nil
}

func decodeToken2022(data []byte) (Payload, error) {
	ix, err := spltoken.Decode2022(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return SplToken2022Payload{Instruction: ix}, nil
}
