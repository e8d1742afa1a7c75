package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueWrapsAround(t *testing.T) {
	rq := NewRingQueue[int](3)
	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	require.NoError(t, rq.Enqueue(3))
	assert.ErrorIs(t, rq.Enqueue(4), ErrQueueFull)

	v, err := rq.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	require.NoError(t, rq.Enqueue(4))

	p, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, 2, p)

	got := []int{}
	for !rq.IsEmpty() {
		v, err := rq.Dequeue()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 3, 4}, got)

	_, err = rq.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestOrderedTableKeepsInsertionOrder(t *testing.T) {
	tbl := NewOrderedTable[uint64, string]()
	tbl.Put(5, "e")
	tbl.Put(1, "a")
	tbl.Put(3, "c")
	tbl.Put(1, "A")

	assert.Equal(t, []uint64{5, 1, 3}, tbl.Keys())
	v, ok := tbl.Get(1)
	require.True(t, ok)
	assert.Equal(t, "A", v)

	assert.True(t, tbl.Delete(5))
	assert.False(t, tbl.Delete(5))
	assert.Equal(t, []uint64{1, 3}, tbl.Keys())

	tbl.Put(9, "i")
	vals := []string{}
	tbl.Each(func(k uint64, v string) bool {
		vals = append(vals, v)
		return true
	})
	assert.Equal(t, []string{"A", "c", "i"}, vals)
	assert.Equal(t, 3, tbl.Len())

	v, ok = tbl.Get(3)
	require.True(t, ok)
	assert.Equal(t, "c", v)
}
