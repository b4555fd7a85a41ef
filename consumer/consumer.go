// Package consumer implements the receive → handle → acknowledge loop shared
// by the example programs.
//
// Delivery is at-least-once: the queue may hand the same logical message to
// the handler more than once (same ID, different receipt handle). Handlers
// must tolerate duplicate invocations, e.g. by deduplicating on the message
// ID (see chassis/storage). A message is removed from the queue only after
// its handler returns nil; a failed handler leaves the delivery
// unacknowledged and the queue redelivers it once the visibility timeout
// elapses.
package consumer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	log "github.com/fjordlane/sqs-consumer/chassis/logging"

	"github.com/fjordlane/sqs-consumer/chassis/queue"
)

// Handler processes one delivery. Returning nil acknowledges the message;
// returning an error leaves it on the queue for redelivery.
type Handler func(ctx context.Context, msg *queue.Message) error

// Config ...
type Config struct {
	Queue    queue.Client
	Handler  Handler
	WaitTime time.Duration

	// OnError, when set, receives every poll and acknowledge failure in
	// addition to the log line. Handler errors are per-message and are not
	// reported here.
	OnError func(error)
}

// Loop - single-threaded blocking consumer: poll, handle and acknowledge
// run sequentially, with the poll as the only suspension point.
type Loop struct {
	cfg Config
}

// NewLoop ...
func NewLoop(cfg Config) *Loop {
	if cfg.WaitTime > queue.MaxWaitTime {
		cfg.WaitTime = queue.MaxWaitTime
	}
	return &Loop{cfg: cfg}
}

// Run polls until ctx is cancelled, then returns nil. A batch received
// before cancellation is always processed to the end: every fetched message
// is either handled and acknowledged or left for redelivery, never dropped
// mid-way.
func (l *Loop) Run(ctx context.Context) error {
	bo := newPollBackoff()
	for {
		select {
		case <-ctx.Done():
			log.WithFields(log.Fields{
				"event": "ctx_canceled",
			}).Info("exit consumer loop")
			return nil
		default:
		}
		messages, err := l.cfg.Queue.Receive(ctx, l.cfg.WaitTime)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			pollFailures.Inc()
			report(l.cfg, "receive_failed", err)
			idle(ctx, bo.NextBackOff())
			continue
		}
		bo.Reset()
		receivedTotal.Add(float64(len(messages)))
		for _, msg := range messages {
			handleAndAck(ctx, l.cfg, msg)
		}
	}
}

// handleAndAck runs the handler for one delivery and acknowledges it on
// success. A handler failure is isolated to its message: the delivery stays
// on the queue and the caller moves on.
func handleAndAck(ctx context.Context, cfg Config, msg *queue.Message) {
	if err := cfg.Handler(ctx, msg); err != nil {
		handlerFailures.Inc()
		log.WithFields(log.Fields{
			"event":     "handler_failed",
			"messageID": msg.ID,
		}).Error(err)
		return
	}
	handledTotal.Inc()
	// Acknowledgements ride a fresh context: a shutdown arriving while a
	// batch drains must not turn an already handled message into a
	// redelivery.
	if err := cfg.Queue.Acknowledge(context.Background(), msg); err != nil {
		ackFailures.Inc()
		log.WithFields(log.Fields{
			"event":     "ack_message_failed",
			"messageID": msg.ID,
		}).Error(err)
		if cfg.OnError != nil {
			cfg.OnError(err)
		}
		return
	}
	ackedTotal.Inc()
}

func report(cfg Config, event string, err error) {
	log.WithFields(log.Fields{
		"event": event,
	}).Error(err)
	if cfg.OnError != nil {
		cfg.OnError(err)
	}
}

func newPollBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0 // keep polling for as long as the loop lives
	return bo
}

func idle(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
