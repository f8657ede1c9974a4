package locks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SerialisesSameKey(t *testing.T) {
	l := NewLocal()

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(context.Background(), []string{StaffKey(1)}, func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					old := atomic.LoadInt32(&maxSeen)
					if n <= old || atomic.CompareAndSwapInt32(&maxSeen, old, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
	assert.Empty(t, l.slots, "released slots must be dropped")
}

func TestLocal_HonoursContext(t *testing.T) {
	l := NewLocal()
	key := StaffKey(7)

	locked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = l.WithLock(context.Background(), []string{key}, func(ctx context.Context) error {
			close(locked)
			<-done
			return nil
		})
	}()
	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	called := false
	err := l.WithLock(ctx, []string{key}, func(ctx context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, ErrAcquire)
	assert.False(t, called)

	close(done)
	require.Eventually(t, func() bool {
		return l.WithLock(context.Background(), []string{key}, func(context.Context) error { return nil }) == nil
	}, time.Second, 5*time.Millisecond)
}

func TestLocal_PropagatesError(t *testing.T) {
	l := NewLocal()
	boom := errors.New("boom")

	err := l.WithLock(context.Background(), []string{"a", "b", "a"}, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, l.WithLock(context.Background(), nil, func(context.Context) error { return nil }), ErrNoKeys)
}

func TestKeys(t *testing.T) {
	day := time.Date(2025, 6, 15, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, "location:3:2025-06-15", LocationDayKey(3, day))
	assert.Equal(t, "staff:12", StaffKey(12))
	assert.Equal(t, []string{"location:1:2025-06-15", "staff:10", "staff:2"},
		normalize([]string{"staff:2", "staff:10", "location:1:2025-06-15", "staff:2"}))
}
