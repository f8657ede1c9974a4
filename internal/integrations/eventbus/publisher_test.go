package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
)

type failureCounter struct {
	n int32
}

func (c *failureCounter) ObservePublishFailure() { atomic.AddInt32(&c.n, 1) }

func (c *failureCounter) count() int { return int(atomic.LoadInt32(&c.n)) }

type fakeBroker struct {
	mu       sync.Mutex
	keys     []string
	failNext bool
	closed   bool
}

func (b *fakeBroker) Publish(_ context.Context, _, key string, _ amqp.Publishing) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failNext {
		b.failNext = false
		return errors.New("channel closed")
	}
	b.keys = append(b.keys, key)
	return nil
}

func (b *fakeBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *fakeBroker) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.keys...)
}

func testOptions(buffer int) Options {
	return Options{
		Exchange:       "reservations",
		BufferSize:     buffer,
		DialTimeout:    time.Second,
		PublishTimeout: time.Second,
	}
}

func reservationWithEntries(t *testing.T, n int) (*domain.Reservation, []domain.TimelineEntry) {
	t.Helper()
	start := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	window, err := domain.NewTimeRange(start, start.Add(time.Hour))
	require.NoError(t, err)

	entries := make([]domain.TimelineEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, domain.NewTimelineEntry(domain.CreatedMetadata{BookingCode: "BK-2025-0001"}, start))
	}
	return &domain.Reservation{ID: 1, BookingCode: "BK-2025-0001", TimeRange: window}, entries
}

func TestPublisher_DeliversInOrderAndDrainsOnClose(t *testing.T) {
	b := &fakeBroker{}
	p := newPublisher(testOptions(16), func(Options) (broker, error) { return b, nil }, &failureCounter{}, logger.NewNop())

	res, created := reservationWithEntries(t, 1)
	require.NoError(t, p.Publish(context.Background(), res, created))
	changed := []domain.TimelineEntry{
		domain.NewTimelineEntry(domain.StatusChangedMetadata{From: domain.StatusPending, To: domain.StatusConfirmed}, time.Now()),
	}
	require.NoError(t, p.Publish(context.Background(), res, changed))

	require.NoError(t, p.Close())

	assert.Equal(t, []string{"reservation.created", "reservation.status_changed"}, b.published())
	assert.True(t, b.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), res, created), ErrClosed)
	assert.NoError(t, p.Close())
}

func TestPublisher_UnreachableBrokerDoesNotBlockPublish(t *testing.T) {
	release := make(chan struct{})
	var dials int32
	dial := func(Options) (broker, error) {
		atomic.AddInt32(&dials, 1)
		<-release
		return nil, errors.New("dial tcp: i/o timeout")
	}
	failures := &failureCounter{}
	p := newPublisher(testOptions(16), dial, failures, logger.NewNop())
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	res, entries := reservationWithEntries(t, 1)

	done := make(chan error, 2)
	go func() {
		done <- p.Publish(context.Background(), res, entries)
		done <- p.Publish(context.Background(), res, entries)
	}()
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("Publish waited for the broker")
		}
	}

	close(release)
	require.NoError(t, p.Close())

	assert.Equal(t, 2, failures.count())
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials), "second event is dropped within the reconnect backoff")
}

func TestPublisher_QueueFull(t *testing.T) {
	release := make(chan struct{})
	b := &fakeBroker{}
	dial := func(Options) (broker, error) {
		<-release
		return b, nil
	}
	p := newPublisher(testOptions(1), dial, &failureCounter{}, logger.NewNop())

	res, entries := reservationWithEntries(t, 3)
	err := p.Publish(context.Background(), res, entries)
	assert.ErrorIs(t, err, ErrQueueFull)

	close(release)
	require.NoError(t, p.Close())
	assert.NotEmpty(t, b.published())
}

func TestPublisher_RedialsAfterPublishError(t *testing.T) {
	first := &fakeBroker{failNext: true}
	second := &fakeBroker{}
	brokers := []*fakeBroker{first, second}
	var dials int
	dial := func(Options) (broker, error) {
		b := brokers[dials]
		dials++
		return b, nil
	}
	failures := &failureCounter{}
	p := newPublisher(testOptions(16), dial, failures, logger.NewNop())

	res, entries := reservationWithEntries(t, 2)
	require.NoError(t, p.Publish(context.Background(), res, entries))
	require.NoError(t, p.Close())

	assert.Equal(t, 2, dials)
	assert.Equal(t, 1, failures.count())
	assert.True(t, first.closed)
	assert.Equal(t, []string{"reservation.created"}, second.published())
}
