package pagestate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameQueueRunsInOrder(t *testing.T) {
	q := NewFrameQueue()
	var got []int
	q.AddPostFrameCallback(func() { got = append(got, 1) })
	q.AddPostFrameCallback(func() { got = append(got, 2) })
	q.AddPostFrameCallback(nil)

	require.Equal(t, 2, q.Len())
	require.Equal(t, 2, q.Flush())
	require.Equal(t, []int{1, 2}, got)
	require.Equal(t, 0, q.Len())
}

func TestFrameQueueDefersCallbacksAddedDuringFlush(t *testing.T) {
	q := NewFrameQueue()
	ran := 0
	q.AddPostFrameCallback(func() {
		ran++
		q.AddPostFrameCallback(func() { ran++ })
	})

	q.Flush()
	require.Equal(t, 1, ran)
	require.Equal(t, 1, q.Len())

	q.Flush()
	require.Equal(t, 2, ran)
}
