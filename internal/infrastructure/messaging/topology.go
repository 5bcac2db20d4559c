// Package messaging implements the broker side of the attendance service:
// the static exchange/queue topology, an AMQP broker adapter, an in-memory
// broker for tests and single-instance runs, the best-effort event publisher
// and the queue consumer.
package messaging

import (
	"fmt"

	"github.com/newunimol/attendance-service/internal/domain/shared"
)

// Exchange and queue names. Together with the routing keys (which equal the
// shared.EventType constants) these form the wire contract with the other
// services on the broker and must not change.
const (
	ExchangeAttendance    = "attendance-exchange"
	ExchangeMicroservices = "microservices-exchange"

	QueueAttendanceCreated = "created"
	QueueAttendanceUpdated = "updated"
	QueueAttendanceDeleted = "deleted"
	QueueAttendanceStats   = "stats"
	QueueCourseScheduled   = "course-scheduled"
	QueueCourseUpdated     = "course-updated"
	QueueReportRequested   = "report-requested"
)

// Exchange describes one broker exchange.
type Exchange struct {
	Name string
	Kind string // "topic" for all attendance exchanges
}

// Binding routes messages from an exchange to a queue by routing key.
type Binding struct {
	Queue      string
	Exchange   string
	RoutingKey string
}

// Topology is the full static broker layout. It is configuration, not
// runtime state: both the publisher and the consumer assume it has been
// declared at startup.
type Topology struct {
	Exchanges []Exchange
	Bindings  []Binding
}

// DefaultTopology returns the attendance service topology.
func DefaultTopology() Topology {
	return Topology{
		Exchanges: []Exchange{
			{Name: ExchangeAttendance, Kind: "topic"},
			{Name: ExchangeMicroservices, Kind: "topic"},
		},
		Bindings: []Binding{
			{Queue: QueueAttendanceCreated, Exchange: ExchangeAttendance, RoutingKey: string(shared.EventAttendanceCreated)},
			{Queue: QueueAttendanceUpdated, Exchange: ExchangeAttendance, RoutingKey: string(shared.EventAttendanceUpdated)},
			{Queue: QueueAttendanceDeleted, Exchange: ExchangeAttendance, RoutingKey: string(shared.EventAttendanceDeleted)},
			{Queue: QueueAttendanceStats, Exchange: ExchangeAttendance, RoutingKey: string(shared.EventAttendanceStatsGenerated)},
			{Queue: QueueCourseScheduled, Exchange: ExchangeMicroservices, RoutingKey: string(shared.EventCourseScheduled)},
			{Queue: QueueCourseUpdated, Exchange: ExchangeMicroservices, RoutingKey: string(shared.EventCourseUpdated)},
			{Queue: QueueReportRequested, Exchange: ExchangeMicroservices, RoutingKey: string(shared.EventReportRequested)},
		},
	}
}

// RouteFor resolves the exchange and routing key for an outbound event type.
// Lifecycle and stats events go to the attendance exchange; everything else
// this service emits would be cross-service traffic on the microservices
// exchange.
func RouteFor(eventType shared.EventType) (exchange, routingKey string, err error) {
	switch eventType {
	case shared.EventAttendanceCreated,
		shared.EventAttendanceUpdated,
		shared.EventAttendanceDeleted,
		shared.EventAttendanceStatsGenerated:
		return ExchangeAttendance, string(eventType), nil
	case shared.EventReportRequested,
		shared.EventCourseScheduled,
		shared.EventCourseUpdated:
		return ExchangeMicroservices, string(eventType), nil
	default:
		return "", "", fmt.Errorf("messaging: no route for event type %q", eventType)
	}
}
