package htable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shixiongfei/nio/internal/htable"
)

func TestSetGetErase(t *testing.T) {
	tb := htable.New[string]()

	replaced, failed := tb.Set(1, "one")
	require.False(t, failed)
	assert.False(t, replaced)

	v, ok := tb.Get(1)
	require.True(t, ok)
	assert.Equal(t, "one", v)

	replaced, failed = tb.Set(1, "uno")
	require.False(t, failed)
	assert.True(t, replaced)

	v, ok = tb.Get(1)
	require.True(t, ok)
	assert.Equal(t, "uno", v)

	erased, ok := tb.Erase(1)
	require.True(t, ok)
	assert.Equal(t, "uno", erased)

	_, ok = tb.Get(1)
	assert.False(t, ok)
}

func TestGetMissing(t *testing.T) {
	tb := htable.New[int]()
	_, ok := tb.Get(42)
	assert.False(t, ok)

	_, ok = tb.Erase(42)
	assert.False(t, ok)
}

func TestResizeOnNinthInsert(t *testing.T) {
	tb := htable.New[int]()

	var resizes [][2]int
	tb.OnResize(func(oldSize, newSize int) {
		resizes = append(resizes, [2]int{oldSize, newSize})
	})

	for i := 0; i < 9; i++ {
		_, failed := tb.Set(i, i)
		require.False(t, failed)
	}

	assert.Equal(t, 9, tb.Len())
	assert.Equal(t, 16, tb.Size())
	require.Len(t, resizes, 2)
	assert.Equal(t, [2]int{0, 8}, resizes[0])
	assert.Equal(t, [2]int{8, 16}, resizes[1])
}

func TestIterateVisitsEveryEntry(t *testing.T) {
	tb := htable.New[int]()
	want := map[int]int{}
	for i := 0; i < 20; i++ {
		tb.Set(i, i*10)
		want[i] = i * 10
	}

	got := map[int]int{}
	tb.Iterate(func(handle int, value int) {
		got[handle] = value
	})
	assert.Equal(t, want, got)
}

func TestEraseThenReinsert(t *testing.T) {
	tb := htable.New[int]()
	tb.Set(5, 1)
	tb.Erase(5)

	_, ok := tb.Get(5)
	assert.False(t, ok)

	replaced, failed := tb.Set(5, 2)
	require.False(t, failed)
	assert.False(t, replaced)

	v, ok := tb.Get(5)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}
