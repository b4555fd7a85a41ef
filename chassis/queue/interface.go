package queue

import (
	"context"
	"errors"
	"time"
)

// MaxWaitTime is the longest long-poll duration the queue service accepts.
const MaxWaitTime = 20 * time.Second

// ErrQueueNotFound is returned when a queue name does not resolve.
var ErrQueueNotFound = errors.New("queue: no queue with the given name")

// Config - unified configuration for queue service
type Config struct {
	Name string

	// AWS specific
	Region             string
	AccessKey          string
	SecretKey          string
	CredentialsFile    string
	CredentialsProfile string
	Retries            int
}

// Message is one delivery. The same logical message may be delivered more
// than once (same ID, different ReceiptHandle); ReceiptHandle identifies
// this delivery only and is the token required to acknowledge it.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Client interface for queue interaction (SQS based). Implementations must
// be safe for concurrent use; Acknowledge in particular is called from
// several workers at once.
type Client interface {
	// Send puts a message on the queue and returns its ID.
	Send(ctx context.Context, body string) (string, error)
	// Receive issues one poll. A zero wait is a non-blocking short poll; a
	// positive wait blocks until a message arrives or the wait elapses,
	// capped at MaxWaitTime. An empty batch is a normal outcome and does not
	// mean the queue is empty.
	Receive(ctx context.Context, wait time.Duration) ([]*Message, error)
	// Acknowledge removes one delivery from the queue. A stale or already
	// acknowledged receipt handle is a benign no-op.
	Acknowledge(ctx context.Context, msg *Message) error
}
