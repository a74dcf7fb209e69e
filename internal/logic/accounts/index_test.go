package accounts

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromKind(t *testing.T) {
	assert.Equal(t, Static, From([]string{"a"}, nil, nil).Kind())
	assert.Equal(t, Static, From([]string{"a"}, []string{}, []string{}).Kind())
	assert.Equal(t, Dynamic, From([]string{"a"}, nil, []string{"b"}).Kind())
	assert.Equal(t, Dynamic, From(nil, []string{"b"}, nil).Kind())
}

func TestGetResolutionOrder(t *testing.T) {
	idx := From([]string{"a", "b"}, []string{"c"}, []string{"d", "e"})

	want := []string{"a", "b", "c", "d", "e"}
	for pos, key := range want {
		got, ok := idx.Get(pos)
		assert.True(t, ok, "pos %d", pos)
		assert.Equal(t, key, got, "pos %d", pos)
	}

	_, ok := idx.Get(5)
	assert.False(t, ok)
	_, ok = idx.Get(-1)
	assert.False(t, ok)
	assert.Equal(t, 5, idx.Count())
	assert.Equal(t, want, idx.All())
}

func TestGetReadonlyOnly(t *testing.T) {
	idx := From([]string{"a"}, nil, []string{"r"})
	got, ok := idx.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "r", got)
}

func TestGetStatic(t *testing.T) {
	idx := From([]string{"a", "b"}, nil, nil)
	got, ok := idx.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "b", got)
	_, ok = idx.Get(2)
	assert.False(t, ok)
}

func TestContainsMatchesAll(t *testing.T) {
	indices := []Index[string]{
		From[string](nil, nil, nil),
		From([]string{"a", "b"}, nil, nil),
		From([]string{"a"}, []string{"c"}, nil),
		From([]string{"a", "b"}, []string{"c"}, []string{"d", "e"}),
	}
	lookups := []string{"a", "b", "c", "d", "e", "z", ""}

	for _, idx := range indices {
		all := idx.All()
		assert.Equal(t, idx.Count(), len(all))
		for _, x := range lookups {
			assert.Equal(t, slices.Contains(all, x), idx.Contains(x), "key %q in %v", x, all)
		}
	}
}
