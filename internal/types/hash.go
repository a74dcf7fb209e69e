package types

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// Hash 区块哈希 / recent blockhash
type Hash [32]byte

func (h Hash) String() string {
	return base58.Encode(h[:])
}

func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != 32 {
		return h, fmt.Errorf("invalid hash length: %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}
