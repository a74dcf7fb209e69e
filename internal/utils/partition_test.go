package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionHashBytes(t *testing.T) {
	b := make([]byte, 64)
	b[7], b[15], b[19], b[27] = 1, 2, 3, 13

	assert.Equal(t, uint32(0), PartitionHashBytes(b[:10], 8))
	assert.Equal(t, uint32(0), PartitionHashBytes(b, 1))
	assert.Equal(t, uint32(13&7), PartitionHashBytes(b, 8))

	want := (uint32(1)<<24 | uint32(2)<<16 | uint32(3)<<8 | uint32(13)) % 10
	assert.Equal(t, want, PartitionHashBytes(b, 10))
}
