package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event. Event types double as the
// broker routing keys, so the constants below are a fixed wire contract with
// the other services on the exchange.
type EventType string

const (
	// Attendance lifecycle events (published to the attendance exchange)
	EventAttendanceCreated EventType = "attendance.created"
	EventAttendanceUpdated EventType = "attendance.updated"
	EventAttendanceDeleted EventType = "attendance.deleted"

	// Statistics reply event (published to the attendance exchange)
	EventAttendanceStatsGenerated EventType = "attendance.stats.generated"

	// Inbound events (consumed from the microservices exchange)
	EventReportRequested EventType = "report.requested"
	EventCourseScheduled EventType = "course.scheduled"
	EventCourseUpdated   EventType = "course.updated"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string
}

// BaseEvent provides common event functionality. Its fields stay off the
// wire: the broker payload is the flat JSON of the concrete event struct.
type BaseEvent struct {
	Type        EventType `json:"-"`
	Timestamp   time.Time `json:"-"`
	AggregateId string    `json:"-"`
}

// EventType implements Event.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// EventHandler is a function that handles an event.
type EventHandler func(ctx context.Context, event Event) error

// EventPublisher defines the interface for publishing domain events.
// Publication is best-effort: implementations log and swallow broker
// failures instead of surfacing them to the mutating caller.
type EventPublisher interface {
	// Publish sends an event to the broker.
	Publish(ctx context.Context, event Event) error
}
