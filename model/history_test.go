package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_PushWraparound(t *testing.T) {
	h := NewHistory[int](3)
	assert.Equal(t, 3, h.Capacity())
	assert.Equal(t, 0, h.Size())

	h.Push(1)
	h.Push(2)
	h.Push(3)
	require.Equal(t, 3, h.Size())
	assert.Equal(t, 1, h.At(0))
	assert.Equal(t, 3, h.At(2))
	assert.Equal(t, 3, h.Latest())

	h.Push(4) // overwrites the oldest element (1)
	require.Equal(t, 3, h.Size())
	assert.Equal(t, 2, h.At(0))
	assert.Equal(t, 3, h.At(1))
	assert.Equal(t, 4, h.At(2))
	assert.Equal(t, 4, h.Latest())
}

func TestHistory_LatestOnEmpty(t *testing.T) {
	h := NewHistory[float64](5)
	assert.Equal(t, 0.0, h.Latest())
}

func TestHistory_CapacityOne(t *testing.T) {
	h := NewHistory[string](1)
	h.Push("a")
	h.Push("b")
	assert.Equal(t, 1, h.Size())
	assert.Equal(t, "b", h.Latest())
	assert.Equal(t, "b", h.At(0))
}

func TestHistory_CopyTo(t *testing.T) {
	h := NewHistory[int](4)
	for _, v := range []int{10, 20, 30, 40, 50} {
		h.Push(v)
	}
	dst := make([]int, 4)
	n := h.CopyTo(dst, 4)
	assert.Equal(t, 4, n)
	assert.Equal(t, []int{20, 30, 40, 50}, dst)
}

func TestHistory_CopyToZeroMax(t *testing.T) {
	h := NewHistory[int](4)
	h.Push(1)
	dst := make([]int, 4)
	n := h.CopyTo(dst, 0)
	assert.Equal(t, 0, n)
}

func TestHistory_CopyToPartial(t *testing.T) {
	h := NewHistory[int](10)
	h.Push(1)
	h.Push(2)
	dst := make([]int, 2)
	n := h.CopyTo(dst, 5)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{1, 2}, dst[:n])
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory[int](3)
	h.Push(1)
	h.Push(2)
	h.Clear()
	assert.Equal(t, 0, h.Size())
	assert.Equal(t, 0, h.Latest())
	h.Push(9)
	assert.Equal(t, 9, h.Latest())
}

func TestHistory_ZeroCapacityClampsToOne(t *testing.T) {
	h := NewHistory[int](0)
	assert.Equal(t, 1, h.Capacity())
}
