// Package layout 提供链上指令数据的小端定长字段读取
package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"sol-tx-filter/internal/types"
)

var ErrShortBuffer = errors.New("insufficient instruction data")

// Reader 顺序读取小端字段，读取越界时返回 ErrShortBuffer，不 panic
type Reader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining 返回未读取部分（不拷贝）
func (r *Reader) Remaining() []byte {
	return r.buf[r.off:]
}

func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.off, r.Len())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) Pubkey() (types.Pubkey, error) {
	b, err := r.next(types.PubkeyLength)
	if err != nil {
		return types.Pubkey{}, err
	}
	return types.Pubkey(b), nil
}

// PubkeyOption 读取 COption<Pubkey>：1 字节 tag（0 = None，1 = Some）+ 32 字节
func (r *Reader) PubkeyOption() (*types.Pubkey, error) {
	tag, err := r.U8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		key, err := r.Pubkey()
		if err != nil {
			return nil, err
		}
		return &key, nil
	default:
		return nil, fmt.Errorf("invalid option tag %d", tag)
	}
}

// BincodeString 读取 bincode 编码的字符串：u64 长度前缀 + UTF-8 字节
func (r *Reader) BincodeString() (string, error) {
	n, err := r.U64()
	if err != nil {
		return "", err
	}
	if n > uint64(r.Len()) {
		return "", fmt.Errorf("%w: string length %d exceeds remaining %d", ErrShortBuffer, n, r.Len())
	}
	b, _ := r.next(int(n))
	if !utf8.Valid(b) {
		return "", errors.New("string is not valid utf-8")
	}
	return string(b), nil
}
