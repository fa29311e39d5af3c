package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/poerates/storage/mock"
	"github.com/sig-0/poerates/storage/types"
)

func TestScheduler_New(t *testing.T) {
	t.Parallel()

	t.Run("invalid interval", func(t *testing.T) {
		t.Parallel()

		for _, interval := range []time.Duration{0, -time.Minute} {
			s, err := NewScheduler(&mockRefresher{}, &mock.Storage{}, interval)

			assert.Nil(t, s)
			assert.ErrorIs(t, err, errInvalidInterval)
		}
	})

	t.Run("default scheduler", func(t *testing.T) {
		t.Parallel()

		s, err := NewScheduler(&mockRefresher{}, &mock.Storage{}, time.Minute)
		require.NoError(t, err)

		assert.NotNil(t, s.logger)
		assert.NotNil(t, s.session)
		assert.Equal(t, time.Second, s.queryInterval)
		assert.Equal(t, time.Minute, s.interval)

		// The first refresh is due immediately
		require.Equal(t, 1, s.q.Len())
		assert.False(t, s.q.Index(0).manual)
		assert.True(t, s.q.Index(0).at.Before(time.Now().Add(time.Second)))
	})

	t.Run("query interval", func(t *testing.T) {
		t.Parallel()

		s, err := NewScheduler(
			&mockRefresher{},
			&mock.Storage{},
			time.Minute,
			WithQueryInterval(time.Millisecond*10),
		)
		require.NoError(t, err)

		assert.Equal(t, time.Millisecond*10, s.queryInterval)
	})
}

func TestScheduler_Trigger(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(&mockRefresher{}, &mock.Storage{}, time.Hour)
	require.NoError(t, err)

	assert.True(t, s.Trigger())
	assert.False(t, s.Trigger()) // coalesced while pending

	assert.Equal(t, 2, s.q.Len())
}

func TestScheduler_Start(t *testing.T) {
	t.Parallel()

	t.Run("ctx canceled", func(t *testing.T) {
		t.Parallel()

		var (
			errCh  = make(chan error, 1)
			s, err = NewScheduler(&mockRefresher{
				refreshFn: func(_ context.Context, _ *Session) (*types.Snapshot, error) {
					return &types.Snapshot{}, nil
				},
			}, &mock.Storage{}, time.Hour, WithQueryInterval(time.Millisecond*10))
		)

		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- s.Start(ctx)
		}()

		cancel()

		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("scheduler did not shut down in time")
		}
	})

	t.Run("snapshot saved and presented", func(t *testing.T) {
		t.Parallel()

		var (
			expected = &types.Snapshot{
				ID:     "snapshot",
				Market: testMarket,
			}

			saved     atomic.Pointer[types.Snapshot]
			presented = make(chan *types.Snapshot, 1)
			errCh     = make(chan error, 1)

			storage = &mock.Storage{
				SaveSnapshotFn: func(_ context.Context, snapshot *types.Snapshot) error {
					saved.Store(snapshot)

					return nil
				},
			}
			refresher = &mockRefresher{
				refreshFn: func(_ context.Context, _ *Session) (*types.Snapshot, error) {
					return expected, nil
				},
			}
		)

		s, err := NewScheduler(
			refresher,
			storage,
			time.Hour,
			WithQueryInterval(time.Millisecond*10),
			WithOnSnapshot(func(snapshot *types.Snapshot) {
				select {
				case presented <- snapshot:
				default:
				}
			}),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case snapshot := <-presented:
			assert.Same(t, expected, snapshot)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for snapshot")
		}

		cancel()
		require.NoError(t, <-errCh)

		assert.Same(t, expected, saved.Load())
	})

	t.Run("periodic refreshes share the session", func(t *testing.T) {
		t.Parallel()

		var (
			sessions  = make(chan *Session, 10)
			refreshed = make(chan struct{})
			count     atomic.Int32
			errCh     = make(chan error, 1)

			refresher = &mockRefresher{
				refreshFn: func(_ context.Context, session *Session) (*types.Snapshot, error) {
					select {
					case sessions <- session:
					default:
					}

					if count.Add(1) == 2 {
						close(refreshed)
					}

					return &types.Snapshot{}, nil
				},
			}
		)

		s, err := NewScheduler(
			refresher,
			&mock.Storage{},
			time.Millisecond*50,
			WithQueryInterval(time.Millisecond*10),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case <-refreshed:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for periodic refresh")
		}

		cancel()
		require.NoError(t, <-errCh)

		first, second := <-sessions, <-sessions
		assert.Same(t, first, second)
	})

	t.Run("failed refresh is not retried early", func(t *testing.T) {
		t.Parallel()

		var (
			count  atomic.Int32
			called = make(chan struct{})
			errCh  = make(chan error, 1)

			refresher = &mockRefresher{
				refreshFn: func(_ context.Context, _ *Session) (*types.Snapshot, error) {
					if count.Add(1) == 1 {
						close(called)
					}

					return nil, errors.New("fetch error")
				},
			}
			storage = &mock.Storage{
				SaveSnapshotFn: func(_ context.Context, _ *types.Snapshot) error {
					t.Error("failed refresh should not be saved")

					return nil
				},
			}
		)

		s, err := NewScheduler(refresher, storage, time.Hour, WithQueryInterval(time.Millisecond*10))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case <-called:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for refresh")
		}

		// Give the loop a few ticks
		time.Sleep(time.Millisecond * 100)

		cancel()
		require.NoError(t, <-errCh)

		assert.Equal(t, int32(1), count.Load())

		status := s.Status()
		assert.True(t, status.Failing)
		assert.Equal(t, "fetch error", status.LastError)
		assert.NotNil(t, status.LastFailureAt)
		assert.Nil(t, status.LastSuccessAt)
	})

	t.Run("success clears the failure", func(t *testing.T) {
		t.Parallel()

		var (
			count     atomic.Int32
			recovered = make(chan struct{})
			errCh     = make(chan error, 1)

			refresher = &mockRefresher{
				refreshFn: func(_ context.Context, _ *Session) (*types.Snapshot, error) {
					if count.Add(1) == 1 {
						return nil, errors.New("fetch error")
					}

					return &types.Snapshot{}, nil
				},
			}
		)

		s, err := NewScheduler(
			refresher,
			&mock.Storage{},
			time.Hour,
			WithQueryInterval(time.Millisecond*10),
			WithOnSnapshot(func(*types.Snapshot) {
				close(recovered)
			}),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- s.Start(ctx)
		}()

		require.Eventually(t, func() bool {
			return s.Status().Failing
		}, 5*time.Second, 5*time.Millisecond)

		require.True(t, s.Trigger())

		select {
		case <-recovered:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for on-demand refresh")
		}

		cancel()
		require.NoError(t, <-errCh)

		status := s.Status()
		assert.False(t, status.Failing)
		assert.NotNil(t, status.LastSuccessAt)
		assert.NotNil(t, status.LastFailureAt)
		assert.Equal(t, "fetch error", status.LastError)
	})

	t.Run("on-demand refresh", func(t *testing.T) {
		t.Parallel()

		var (
			count    atomic.Int32
			second   = make(chan struct{})
			errCh    = make(chan error, 1)
			firstRan = make(chan struct{})

			refresher = &mockRefresher{
				refreshFn: func(_ context.Context, _ *Session) (*types.Snapshot, error) {
					switch count.Add(1) {
					case 1:
						close(firstRan)
					case 2:
						close(second)
					}

					return &types.Snapshot{}, nil
				},
			}
		)

		s, err := NewScheduler(refresher, &mock.Storage{}, time.Hour, WithQueryInterval(time.Millisecond*10))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			errCh <- s.Start(ctx)
		}()

		select {
		case <-firstRan:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for first refresh")
		}

		require.True(t, s.Trigger())

		select {
		case <-second:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for on-demand refresh")
		}

		cancel()
		require.NoError(t, <-errCh)

		// A new on-demand refresh can be queued once the previous one ran
		assert.True(t, s.Trigger())
	})
}
