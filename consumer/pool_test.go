package consumer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjordlane/sqs-consumer/chassis/queue"
)

func TestPoolAcknowledgesOnlySuccessfulHandlings(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeQueue{
		steps: []pollStep{
			{messages: []*queue.Message{msg("m1", "rh1"), msg("m2", "rh2"), msg("m3", "rh3")}},
			{messages: []*queue.Message{msg("m4", "rh4")}},
		},
		done: cancel,
	}

	var handled int32
	pool := NewPool(Config{
		Queue: fake,
		Handler: func(ctx context.Context, m *queue.Message) error {
			atomic.AddInt32(&handled, 1)
			if m.ID == "m2" {
				return errors.New("business failure")
			}
			return nil
		},
	}, 3)
	require.NoError(t, pool.Run(ctx))

	assert.EqualValues(t, 4, atomic.LoadInt32(&handled))
	sort.Strings(fake.acks)
	assert.Equal(t, []string{"rh1", "rh3", "rh4"}, fake.acks,
		"the failed message stays unacknowledged, independent of its batch")
}

func TestPoolBoundsConcurrency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batch := []*queue.Message{
		msg("m1", "rh1"), msg("m2", "rh2"), msg("m3", "rh3"),
		msg("m4", "rh4"), msg("m5", "rh5"), msg("m6", "rh6"),
	}
	fake := &fakeQueue{
		steps: []pollStep{{messages: batch}},
		done:  cancel,
	}

	const workers = 2
	var inFlight, peak int32
	pool := NewPool(Config{
		Queue: fake,
		Handler: func(ctx context.Context, m *queue.Message) error {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return nil
		},
	}, workers)
	require.NoError(t, pool.Run(ctx))

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(workers))
	assert.Len(t, fake.acks, len(batch))
}

func TestPoolDrainsFetchedMessagesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancellation fires while the batch is being dispatched; every fetched
	// message must still reach a worker.
	var once sync.Once
	fake := &fakeQueue{
		steps: []pollStep{
			{messages: []*queue.Message{msg("m1", "rh1"), msg("m2", "rh2"), msg("m3", "rh3")}},
		},
	}
	fake.done = cancel

	var handled int32
	pool := NewPool(Config{
		Queue: fake,
		Handler: func(hctx context.Context, m *queue.Message) error {
			once.Do(cancel)
			atomic.AddInt32(&handled, 1)
			return nil
		},
	}, 1)
	require.NoError(t, pool.Run(ctx))

	assert.EqualValues(t, 3, atomic.LoadInt32(&handled),
		"messages fetched before cancellation are handled, not dropped")
	assert.Len(t, fake.acks, 3)
}

func TestPoolContinuesAfterPollError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pollErr := errors.New("throttled")
	fake := &fakeQueue{
		steps: []pollStep{
			{err: pollErr},
			{messages: []*queue.Message{msg("m1", "rh1")}},
		},
		done: cancel,
	}

	var mu sync.Mutex
	var reported []error
	var handled int32
	pool := NewPool(Config{
		Queue: fake,
		Handler: func(ctx context.Context, m *queue.Message) error {
			atomic.AddInt32(&handled, 1)
			return nil
		},
		OnError: func(err error) {
			mu.Lock()
			reported = append(reported, err)
			mu.Unlock()
		},
	}, 2)
	require.NoError(t, pool.Run(ctx))

	assert.EqualValues(t, 1, atomic.LoadInt32(&handled))
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], pollErr)
}

func TestPoolDefaultsToOneWorker(t *testing.T) {
	pool := NewPool(Config{}, 0)
	assert.Equal(t, 1, pool.workers)
}
