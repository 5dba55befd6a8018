package preview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/previewkit/core/pagestate"
)

type mounted struct{}

func (mounted) Mounted() bool { return true }

type runRecord struct {
	key string
	err error
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []runRecord
}

func (f *fakeRecorder) RecordRegistration(context.Context, string, string)        {}
func (f *fakeRecorder) RecordAwait(context.Context, string, time.Duration, error) {}
func (f *fakeRecorder) RecordPrune(context.Context, int)                          {}
func (f *fakeRecorder) RecordRun(_ context.Context, key string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, runRecord{key: key, err: err})
}

const pageKey pagestate.Key = "cart"

func TestRunLeavesEntryPendingAfterSuccess(t *testing.T) {
	frames := pagestate.NewFrameQueue()
	reg := pagestate.New(frames)
	runner := NewRunner(reg, nil, nil)

	err := runner.Run(context.Background(), pageKey, func(ctx context.Context) error {
		reg.RegisterContainer(pageKey, mounted{})
		frames.Flush()
		c, err := reg.Context(ctx, pageKey)
		require.NoError(t, err)
		require.NotNil(t, c)
		return nil
	})
	require.NoError(t, err)

	st := reg.Entry(pageKey)
	require.False(t, st.Ready)
	require.True(t, st.HasContainer)
}

func TestRunResetsAndPropagatesSetupFailure(t *testing.T) {
	frames := pagestate.NewFrameQueue()
	reg := pagestate.New(frames)
	rec := &fakeRecorder{}
	runner := NewRunner(reg, nil, rec)
	setupErr := errors.New("seed cart: constraint failed")

	reg.RegisterContainer(pageKey, mounted{})
	frames.Flush()
	require.True(t, reg.Entry(pageKey).Ready)

	calls := 0
	err := runner.Run(context.Background(), pageKey, func(ctx context.Context) error {
		calls++
		require.False(t, reg.Entry(pageKey).Ready, "entry is reset before setup")
		return setupErr
	})
	require.True(t, err == setupErr, "error identity must be preserved")
	require.EqualError(t, err, "seed cart: constraint failed")
	require.Equal(t, 1, calls, "setup is never retried")
	require.False(t, reg.Entry(pageKey).Ready)

	require.Len(t, rec.runs, 1)
	require.Equal(t, string(pageKey), rec.runs[0].key)
	require.ErrorIs(t, rec.runs[0].err, setupErr)
}

func TestRunResetsOnPanic(t *testing.T) {
	reg := pagestate.New(pagestate.Immediate{})
	runner := NewRunner(reg, nil, nil)

	require.Panics(t, func() {
		_ = runner.Run(context.Background(), pageKey, func(ctx context.Context) error {
			reg.RegisterContainer(pageKey, mounted{})
			require.True(t, reg.Entry(pageKey).Ready)
			panic("boom")
		})
	})
	require.False(t, reg.Entry(pageKey).Ready)
}

func TestStaleRegistrationFromPreviousRunIsNotVisible(t *testing.T) {
	frames := pagestate.NewFrameQueue()
	reg := pagestate.New(frames)
	runner := NewRunner(reg, nil, nil)

	// a render from before the run is still in the frame queue
	reg.RegisterContainer(pageKey, mounted{})

	err := runner.Run(context.Background(), pageKey, func(ctx context.Context) error {
		frames.Flush()
		short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
		defer cancel()
		_, err := reg.Context(short, pageKey)
		return err
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNavigationRoot(t *testing.T) {
	ResetNavigationRoot()
	t.Cleanup(ResetNavigationRoot)

	_, err := Nav()
	require.ErrorIs(t, err, ErrNotInitialized)

	SetNavigationRoot(nil)
	_, err = Nav()
	require.ErrorIs(t, err, ErrNotInitialized)

	nav := &recordingNav{}
	SetNavigationRoot(func() Navigator { return nav })
	SetNavigationRoot(func() Navigator { return nav })
	got, err := Nav()
	require.NoError(t, err)
	require.Same(t, nav, got)
}

func TestGetContextRequiresDefaultRegistry(t *testing.T) {
	pagestate.Teardown()
	_, err := GetContext[*cartPage](context.Background())
	require.ErrorIs(t, err, pagestate.ErrNotInitialized)
	_, err = GetState[*cartPage](context.Background())
	require.ErrorIs(t, err, pagestate.ErrNotInitialized)
}

func TestGetStateUsesDefaultRegistry(t *testing.T) {
	reg := pagestate.Initialize(pagestate.Immediate{})
	t.Cleanup(pagestate.Teardown)
	page := &cartPage{}
	reg.RegisterInstance(pagestate.KeyFor[*cartPage](), page)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := GetState[*cartPage](ctx)
	require.NoError(t, err)
	require.Same(t, page, got)
}
