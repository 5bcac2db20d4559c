package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPBroker is the RabbitMQ implementation of Broker. It keeps one
// connection with a publishing channel and opens a dedicated channel per
// consumed queue.
type AMQPBroker struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	pubCh   *amqp.Channel
	logger  *slog.Logger
	closed  bool
	wg      sync.WaitGroup
	cancels []context.CancelFunc
}

// NewAMQPBroker dials the broker and opens the publishing channel.
func NewAMQPBroker(url string, logger *slog.Logger) (*AMQPBroker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("messaging: failed to dial broker: %w", err)
	}

	pubCh, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("messaging: failed to open channel: %w", err)
	}

	return &AMQPBroker{
		conn:   conn,
		pubCh:  pubCh,
		logger: logger.With("component", "amqp-broker"),
	}, nil
}

// DeclareTopology declares the exchanges, queues and bindings. Everything is
// durable and non-exclusive so declarations are idempotent across restarts
// and shared between instances.
func (b *AMQPBroker) DeclareTopology(_ context.Context, topology Topology) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}

	for _, exchange := range topology.Exchanges {
		if err := b.pubCh.ExchangeDeclare(exchange.Name, exchange.Kind, true, false, false, false, nil); err != nil {
			return fmt.Errorf("messaging: failed to declare exchange %q: %w", exchange.Name, err)
		}
	}
	for _, binding := range topology.Bindings {
		if _, err := b.pubCh.QueueDeclare(binding.Queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("messaging: failed to declare queue %q: %w", binding.Queue, err)
		}
		if err := b.pubCh.QueueBind(binding.Queue, binding.RoutingKey, binding.Exchange, false, nil); err != nil {
			return fmt.Errorf("messaging: failed to bind queue %q: %w", binding.Queue, err)
		}
	}
	return nil
}

// Publish sends a persistent JSON message.
func (b *AMQPBroker) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}

	err := b.pubCh.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("messaging: failed to publish to %s/%s: %w", exchange, routingKey, err)
	}
	return nil
}

// Consume opens a channel for the queue and processes deliveries on a
// background goroutine. Messages are acked whether or not the handler
// succeeds; handler errors are logged by the caller's handler chain.
func (b *AMQPBroker) Consume(ctx context.Context, queue string, handler DeliveryHandler) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBrokerClosed
	}

	ch, err := b.conn.Channel()
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("messaging: failed to open consumer channel: %w", err)
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		b.mu.Unlock()
		return fmt.Errorf("messaging: failed to consume queue %q: %w", queue, err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	b.cancels = append(b.cancels, cancel)
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		defer ch.Close()
		for {
			select {
			case <-consumeCtx.Done():
				return
			case msg, ok := <-deliveries:
				if !ok {
					return
				}
				delivery := Delivery{
					Exchange:   msg.Exchange,
					RoutingKey: msg.RoutingKey,
					Body:       msg.Body,
				}
				if err := handler(consumeCtx, delivery); err != nil {
					b.logger.Error("delivery handler failed",
						"queue", queue,
						"routing_key", msg.RoutingKey,
						"error", err,
					)
				}
				if err := msg.Ack(false); err != nil {
					b.logger.Error("failed to ack delivery",
						"queue", queue,
						"error", err,
					)
				}
			}
		}
	}()
	return nil
}

// Close stops consumers and closes the connection.
func (b *AMQPBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, cancel := range b.cancels {
		cancel()
	}
	b.mu.Unlock()

	b.wg.Wait()

	if err := b.conn.Close(); err != nil {
		return fmt.Errorf("messaging: failed to close connection: %w", err)
	}
	b.logger.Info("amqp broker closed")
	return nil
}
