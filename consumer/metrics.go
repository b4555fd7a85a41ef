package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	receivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_messages_received_total",
		Help: "Messages fetched from the queue.",
	})
	handledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_messages_handled_total",
		Help: "Messages whose handler returned without error.",
	})
	handlerFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_handler_failures_total",
		Help: "Handler invocations that returned an error.",
	})
	ackedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_messages_acknowledged_total",
		Help: "Deliveries acknowledged (deleted) after successful handling.",
	})
	ackFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_acknowledge_failures_total",
		Help: "Acknowledge calls that failed; such messages may be redelivered.",
	})
	pollFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consumer_poll_failures_total",
		Help: "Receive calls that failed and were retried after backoff.",
	})
)
