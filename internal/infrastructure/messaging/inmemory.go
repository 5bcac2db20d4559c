package messaging

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryBroker is an in-process implementation of Broker. Suitable for
// tests and single-instance deployments; the routing semantics (topic
// exchanges, queue bindings) mirror the AMQP adapter so the two are
// interchangeable behind configuration.
type InMemoryBroker struct {
	mu        sync.RWMutex
	bindings  []Binding
	queues    map[string]chan Delivery
	logger    *slog.Logger
	closed    bool
	closeCh   chan struct{}
	wg        sync.WaitGroup
	queueSize int
}

// NewInMemoryBroker creates a broker with no declared topology.
func NewInMemoryBroker(logger *slog.Logger) *InMemoryBroker {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryBroker{
		queues:    make(map[string]chan Delivery),
		logger:    logger.With("component", "inmemory-broker"),
		closeCh:   make(chan struct{}),
		queueSize: 128,
	}
}

// DeclareTopology registers the bindings and creates queue buffers.
func (b *InMemoryBroker) DeclareTopology(_ context.Context, topology Topology) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}

	b.bindings = append(b.bindings, topology.Bindings...)
	for _, binding := range topology.Bindings {
		if _, ok := b.queues[binding.Queue]; !ok {
			b.queues[binding.Queue] = make(chan Delivery, b.queueSize)
		}
	}
	return nil
}

// Publish routes the message to every queue whose binding matches.
func (b *InMemoryBroker) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBrokerClosed
	}

	var targets []chan Delivery
	for _, binding := range b.bindings {
		if binding.Exchange == exchange && matchRoutingKey(binding.RoutingKey, routingKey) {
			targets = append(targets, b.queues[binding.Queue])
		}
	}
	b.mu.RUnlock()

	delivery := Delivery{Exchange: exchange, RoutingKey: routingKey, Body: body}
	for _, queue := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case queue <- delivery:
		default:
			b.logger.Warn("dropping message for full queue",
				"exchange", exchange,
				"routing_key", routingKey,
			)
		}
	}
	return nil
}

// Consume drains the queue on a background goroutine.
func (b *InMemoryBroker) Consume(ctx context.Context, queue string, handler DeliveryHandler) error {
	b.mu.RLock()
	ch, ok := b.queues[queue]
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return ErrBrokerClosed
	}
	if !ok {
		return ErrUnknownQueue
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.closeCh:
				return
			case delivery := <-ch:
				if err := handler(ctx, delivery); err != nil {
					b.logger.Error("delivery handler failed",
						"queue", queue,
						"routing_key", delivery.RoutingKey,
						"error", err,
					)
				}
			}
		}
	}()
	return nil
}

// Close stops all consumers and rejects further operations.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("in-memory broker closed")
	return nil
}
