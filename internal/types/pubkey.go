package types

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// PubkeyLength 账户地址（ed25519 公钥）的固定字节长度
const PubkeyLength = 32

// ErrPubkeyLength 表示字节长度不是 32
var ErrPubkeyLength = errors.New("invalid pubkey length")

type Pubkey [PubkeyLength]byte

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// PubkeyFromBytes 从原始字节构造 Pubkey，长度必须恰好为 32
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	var p Pubkey
	if len(b) != PubkeyLength {
		return p, fmt.Errorf("%w: got %d, want %d", ErrPubkeyLength, len(b), PubkeyLength)
	}
	copy(p[:], b)
	return p, nil
}

// TryPubkeyFromBase58 解析 base58 字符串为 Pubkey，失败时返回 error（用于不信任输入路径）
func TryPubkeyFromBase58(s string) (Pubkey, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("failed to decode base58 pubkey %q: %w", s, err)
	}
	if len(data) != PubkeyLength {
		return Pubkey{}, fmt.Errorf("%w: got %d, want 32, input=%q", ErrPubkeyLength, len(data), s)
	}
	var p Pubkey
	copy(p[:], data)
	return p, nil
}

// PubkeyFromBase58 用于常量地址初始化，解析失败直接 panic
func PubkeyFromBase58(s string) Pubkey {
	p, err := TryPubkeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return p
}

// EncodeBase58List 将原始 32 字节地址列表编码为 base58 字符串列表，长度不合法时返回 error
func EncodeBase58List(keys [][]byte) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		if len(k) != PubkeyLength {
			return nil, fmt.Errorf("%w: index %d got %d bytes", ErrPubkeyLength, i, len(k))
		}
		out[i] = base58.Encode(k)
	}
	return out, nil
}
