package consumer

import (
	"context"
	"sync"

	log "github.com/fjordlane/sqs-consumer/chassis/logging"

	"github.com/fjordlane/sqs-consumer/chassis/queue"
)

// Pool - concurrent consumer: one poller goroutine feeds a bounded set of
// workers over a channel. Each worker acknowledges its own message
// independently of the others, so one slow handler never blocks the rest of
// a batch.
type Pool struct {
	cfg     Config
	workers int
}

// NewPool ...
func NewPool(cfg Config, workers int) *Pool {
	if cfg.WaitTime > queue.MaxWaitTime {
		cfg.WaitTime = queue.MaxWaitTime
	}
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		cfg:     cfg,
		workers: workers,
	}
}

// Run polls until ctx is cancelled, dispatching every received message to
// the worker pool, then returns nil. On cancellation polling stops, the
// workers drain all messages already fetched, and in-flight handlers finish
// on their own terms.
func (p *Pool) Run(ctx context.Context) error {
	messageCh := make(chan *queue.Message)

	var group sync.WaitGroup
	for wrk := 1; wrk <= p.workers; wrk++ {
		group.Add(1)
		go func(workerID int) {
			defer group.Done()
			for msg := range messageCh {
				handleAndAck(ctx, p.cfg, msg)
			}
			log.WithFields(log.Fields{
				"event":  "worker_drained",
				"worker": workerID,
			}).Debug("exit goroutine")
		}(wrk)
	}

	bo := newPollBackoff()
	for ctx.Err() == nil {
		messages, err := p.cfg.Queue.Receive(ctx, p.cfg.WaitTime)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			pollFailures.Inc()
			report(p.cfg, "receive_failed", err)
			idle(ctx, bo.NextBackOff())
			continue
		}
		bo.Reset()
		receivedTotal.Add(float64(len(messages)))
		for _, msg := range messages {
			// Hand over unconditionally: a message fetched before
			// cancellation still has to be handled or left for redelivery,
			// never dropped.
			messageCh <- msg
		}
	}
	close(messageCh)
	group.Wait()
	log.WithFields(log.Fields{
		"event": "ctx_canceled",
	}).Info("exit consumer pool")
	return nil
}
