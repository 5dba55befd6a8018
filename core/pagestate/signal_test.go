package pagestate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignalFulfillIsIdempotent(t *testing.T) {
	s := NewSignal[string]()
	require.False(t, s.Fulfilled())

	require.True(t, s.Fulfill("first"))
	require.False(t, s.Fulfill("second"))

	v, ok := s.Value()
	require.True(t, ok)
	require.Equal(t, "first", v)

	got, err := s.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, "first", got)
}

func TestSignalReleasesEveryWaiter(t *testing.T) {
	s := NewSignal[int]()
	var wg sync.WaitGroup
	results := make([]int, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := s.Wait(context.Background())
			if err == nil {
				results[i] = v
			}
		}(i)
	}
	s.Fulfill(7)
	wg.Wait()
	for _, v := range results {
		require.Equal(t, 7, v)
	}
}

func TestSignalWaitHonoursContext(t *testing.T) {
	s := NewSignal[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReplacedSignalStaysFulfilled(t *testing.T) {
	old := NewSignal[struct{}]()
	old.Fulfill(struct{}{})
	fresh := NewSignal[struct{}]()

	require.True(t, old.Fulfilled())
	require.False(t, fresh.Fulfilled())
	select {
	case <-old.Done():
	default:
		t.Fatal("old signal should still be done")
	}
}
