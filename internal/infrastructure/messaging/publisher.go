package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/newunimol/attendance-service/internal/domain/shared"
	"github.com/newunimol/attendance-service/pkg/circuitbreaker"
)

const defaultPublishTimeout = 5 * time.Second

// Publisher turns domain events into broker messages. Publishing is
// best-effort: every failure is logged and swallowed, so a broker outage
// never fails the state change that produced the event.
type Publisher struct {
	broker  Broker
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
	timeout time.Duration
}

// NewPublisher creates a publisher over a broker. The circuit breaker keeps
// request latency bounded while the broker is down instead of timing out on
// every mutation.
func NewPublisher(broker Broker, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "event-publisher")

	return &Publisher{
		broker: broker,
		breaker: circuitbreaker.BrokerBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from,
				"to", to,
			)
		}),
		logger:  logger,
		timeout: defaultPublishTimeout,
	}
}

// Publish serializes the event and routes it to the broker. It always
// returns nil.
func (p *Publisher) Publish(ctx context.Context, event shared.Event) error {
	exchange, routingKey, err := RouteFor(event.EventType())
	if err != nil {
		p.logger.Error("cannot route event",
			"event_type", event.EventType(),
			"error", err,
		)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to serialize event",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
			"error", err,
		)
		return nil
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.breaker.Execute(pubCtx, func(ctx context.Context) error {
		return p.broker.Publish(ctx, exchange, routingKey, body)
	})
	if err != nil {
		p.logger.Error("failed to publish event",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
			"exchange", exchange,
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}

	p.logger.Debug("event published",
		"event_type", event.EventType(),
		"aggregate_id", event.AggregateID(),
		"routing_key", routingKey,
	)
	return nil
}

var _ shared.EventPublisher = (*Publisher)(nil)
