package messaging

import (
	"context"
	"errors"
	"strings"
)

// Common broker errors.
var (
	// ErrBrokerClosed is returned when operations are attempted on a closed broker.
	ErrBrokerClosed = errors.New("messaging: broker is closed")

	// ErrUnknownQueue is returned when consuming from an undeclared queue.
	ErrUnknownQueue = errors.New("messaging: unknown queue")
)

// Delivery is one message taken off a queue.
type Delivery struct {
	Exchange   string
	RoutingKey string
	Body       []byte
}

// DeliveryHandler processes one delivery. Returning an error only logs the
// failure: the message is acked either way, because inbound processing is
// fire-and-forget for this service.
type DeliveryHandler func(ctx context.Context, delivery Delivery) error

// Broker abstracts the message broker. The AMQP adapter talks to RabbitMQ;
// the in-memory adapter routes between goroutines for tests and
// single-instance deployments.
type Broker interface {
	// DeclareTopology creates the exchanges, queues and bindings.
	// It is idempotent and runs once at startup.
	DeclareTopology(ctx context.Context, topology Topology) error

	// Publish sends a message to an exchange with a routing key.
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error

	// Consume registers a handler for a queue. Consumption starts
	// immediately on a background goroutine and stops when ctx is done or
	// the broker closes.
	Consume(ctx context.Context, queue string, handler DeliveryHandler) error

	// Close shuts the broker connection down.
	Close() error
}

// matchRoutingKey reports whether a topic binding pattern matches a routing
// key. "*" matches exactly one dot-separated word, "#" matches zero or more.
func matchRoutingKey(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}
	switch pattern[0] {
	case "#":
		if matchWords(pattern[1:], key) {
			return true
		}
		return len(key) > 0 && matchWords(pattern, key[1:])
	case "*":
		return len(key) > 0 && matchWords(pattern[1:], key[1:])
	default:
		return len(key) > 0 && pattern[0] == key[0] && matchWords(pattern[1:], key[1:])
	}
}
