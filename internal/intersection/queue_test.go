package intersection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityQueue_FIFO(t *testing.T) {
	var q PriorityQueue

	_, ok := q.Head()
	assert.False(t, ok)
	_, ok = q.Pop()
	assert.False(t, ok)

	assert.True(t, q.Push(3))
	assert.True(t, q.Push(1))
	assert.False(t, q.Push(3), "duplicates are rejected")
	assert.True(t, q.Push(4))
	assert.Equal(t, []int{3, 1, 4}, q.Items())

	head, _ := q.Head()
	second, _ := q.Second()
	assert.Equal(t, 3, head)
	assert.Equal(t, 1, second)

	got, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, 3, got)
	assert.Equal(t, []int{1, 4}, q.Items())
	assert.False(t, q.Contains(3))
}

func TestPriorityQueue_Remove(t *testing.T) {
	var q PriorityQueue
	for _, s := range []int{2, 4, 1, 3} {
		q.Push(s)
	}
	items := q.Items()

	assert.True(t, q.Remove(1))
	assert.False(t, q.Remove(1))
	assert.Equal(t, []int{2, 4, 3}, q.Items())
	assert.Equal(t, []int{2, 4, 1, 3}, items, "Items returns a copy")
	assert.Equal(t, 3, q.Len())

	_, ok := (&PriorityQueue{}).Second()
	assert.False(t, ok)
}
