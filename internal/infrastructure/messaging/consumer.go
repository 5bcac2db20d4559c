package messaging

import (
	"context"
	"fmt"
	"log/slog"
)

// Consumer wires queues to their delivery handlers and starts consumption.
// Handlers run with panic recovery so one malformed message cannot take a
// consumer goroutine down.
type Consumer struct {
	broker   Broker
	logger   *slog.Logger
	handlers map[string]DeliveryHandler
}

// NewConsumer creates a consumer over a broker.
func NewConsumer(broker Broker, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		broker:   broker,
		logger:   logger.With("component", "event-consumer"),
		handlers: make(map[string]DeliveryHandler),
	}
}

// Register associates a handler with a queue. Registering the same queue
// twice replaces the previous handler. Must be called before Start.
func (c *Consumer) Register(queue string, handler DeliveryHandler) {
	c.handlers[queue] = handler
}

// Start begins consuming every registered queue. Consumption runs on
// background goroutines until ctx is done or the broker closes.
func (c *Consumer) Start(ctx context.Context) error {
	for queue, handler := range c.handlers {
		if err := c.broker.Consume(ctx, queue, c.recovered(queue, handler)); err != nil {
			return fmt.Errorf("messaging: failed to start consumer for queue %q: %w", queue, err)
		}
		c.logger.Info("consuming queue", "queue", queue)
	}
	return nil
}

// recovered wraps a handler so panics are logged instead of propagated.
func (c *Consumer) recovered(queue string, handler DeliveryHandler) DeliveryHandler {
	return func(ctx context.Context, delivery Delivery) (err error) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("handler panicked",
					"queue", queue,
					"routing_key", delivery.RoutingKey,
					"panic", r,
				)
				err = fmt.Errorf("messaging: handler panic: %v", r)
			}
		}()
		return handler(ctx, delivery)
	}
}
