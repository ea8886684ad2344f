package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_Evicts(t *testing.T) {
	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)
	_, _ = c.Get("a") // a 变为最近使用
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())

	c.Put("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_GetOrCreate(t *testing.T) {
	c, err := NewLRU[int, string](4)
	require.NoError(t, err)

	calls := 0
	create := func() (string, error) { calls++; return "v", nil }
	for i := 0; i < 3; i++ {
		v, err := c.GetOrCreate(1, create)
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = c.GetOrCreate(2, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Len())
}

func TestNewLRU_InvalidCapacity(t *testing.T) {
	_, err := NewLRU[string, int](0)
	assert.Error(t, err)
}
