package attendance

import (
	"time"

	"github.com/newunimol/attendance-service/internal/domain/shared"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

// Report types accepted on a ReportRequestedEvent. Any other value is
// silently ignored by the consumer.
const (
	// ReportTypePercentage requests a student-by-course attendance percentage.
	ReportTypePercentage = "percentage"

	// ReportTypeAverage requests the average presences per lesson of a course.
	ReportTypeAverage = "average"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE EVENTS
// The JSON field names below are a fixed wire contract shared with the other
// services bound to the attendance exchange.
// ══════════════════════════════════════════════════════════════════════════════

// CreatedEvent is emitted after a record is persisted for the first time.
type CreatedEvent struct {
	shared.BaseEvent
	AttendanceID string          `json:"attendanceId"`
	StudentID    string          `json:"studentId"`
	CourseID     string          `json:"courseId"`
	LessonDate   timeutil.Date   `json:"lessonDate"`
	Status       Status          `json:"status"`
	CheckIn      *timeutil.Clock `json:"checkIn,omitempty"`
	CheckOut     *timeutil.Clock `json:"checkOut,omitempty"`
}

// NewCreatedEvent creates a CreatedEvent from a persisted record.
func NewCreatedEvent(record *Record) CreatedEvent {
	return CreatedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventAttendanceCreated, record.ID),
		AttendanceID: record.ID,
		StudentID:    record.StudentID,
		CourseID:     record.CourseID,
		LessonDate:   record.LessonDate,
		Status:       record.Status,
		CheckIn:      record.CheckIn,
		CheckOut:     record.CheckOut,
	}
}

// UpdatedEvent is emitted after an update command commits. OldStatus is the
// status the record held before the patch was applied.
type UpdatedEvent struct {
	shared.BaseEvent
	AttendanceID string          `json:"attendanceId"`
	OldStatus    Status          `json:"oldStatus"`
	NewStatus    Status          `json:"newStatus"`
	LessonDate   timeutil.Date   `json:"lessonDate"`
	CheckIn      *timeutil.Clock `json:"checkIn,omitempty"`
	CheckOut     *timeutil.Clock `json:"checkOut,omitempty"`
}

// NewUpdatedEvent creates an UpdatedEvent from the committed record and the
// pre-mutation status.
func NewUpdatedEvent(record *Record, oldStatus Status) UpdatedEvent {
	return UpdatedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventAttendanceUpdated, record.ID),
		AttendanceID: record.ID,
		OldStatus:    oldStatus,
		NewStatus:    record.Status,
		LessonDate:   record.LessonDate,
		CheckIn:      record.CheckIn,
		CheckOut:     record.CheckOut,
	}
}

// DeletedEvent is emitted after a record is removed from the store. Fields
// are captured before deletion.
type DeletedEvent struct {
	shared.BaseEvent
	AttendanceID string        `json:"attendanceId"`
	StudentID    string        `json:"studentId"`
	CourseID     string        `json:"courseId"`
	LessonDate   timeutil.Date `json:"lessonDate"`
}

// NewDeletedEvent creates a DeletedEvent from the record about to be deleted.
func NewDeletedEvent(record *Record) DeletedEvent {
	return DeletedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventAttendanceDeleted, record.ID),
		AttendanceID: record.ID,
		StudentID:    record.StudentID,
		CourseID:     record.CourseID,
		LessonDate:   record.LessonDate,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// REPORT REQUEST / REPLY EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// ReportRequestedEvent arrives from the microservices exchange and asks this
// service to compute statistics. RequestID is the caller-supplied
// correlation token and is echoed verbatim on the reply.
type ReportRequestedEvent struct {
	shared.BaseEvent
	RequestID  string `json:"requestId"`
	StudentID  string `json:"studentId,omitempty"` // empty for course averages
	CourseID   string `json:"courseId"`
	ReportType string `json:"reportType"`
}

// NewReportRequestedEvent creates an inbound report request event.
func NewReportRequestedEvent(requestID, studentID, courseID, reportType string) ReportRequestedEvent {
	return ReportRequestedEvent{
		BaseEvent:  shared.NewBaseEvent(shared.EventReportRequested, requestID),
		RequestID:  requestID,
		StudentID:  studentID,
		CourseID:   courseID,
		ReportType: reportType,
	}
}

// StatsGeneratedEvent is the correlated reply to a ReportRequestedEvent.
// Percentage reports fill PresentLessons and AttendancePercentage; average
// reports fill AveragePresencesPerLesson; the unused fields stay unset.
type StatsGeneratedEvent struct {
	shared.BaseEvent
	RequestID                 string    `json:"requestId"`
	StudentID                 string    `json:"studentId,omitempty"`
	CourseID                  string    `json:"courseId"`
	TotalLessons              float64   `json:"totalLessons"`
	PresentLessons            *float64  `json:"presentLessons,omitempty"`
	AttendancePercentage      *float64  `json:"attendancePercentage,omitempty"`
	AveragePresencesPerLesson *float64  `json:"averagePresencesPerLesson,omitempty"`
	Timestamp                 time.Time `json:"timestamp"`
}

// NewPercentageStatsEvent builds the reply for a percentage report.
func NewPercentageStatsEvent(requestID, studentID, courseID string, totalLessons, presentLessons, percentage float64) StatsGeneratedEvent {
	now := time.Now().UTC()
	return StatsGeneratedEvent{
		BaseEvent:            shared.NewBaseEvent(shared.EventAttendanceStatsGenerated, requestID),
		RequestID:            requestID,
		StudentID:            studentID,
		CourseID:             courseID,
		TotalLessons:         totalLessons,
		PresentLessons:       &presentLessons,
		AttendancePercentage: &percentage,
		Timestamp:            now,
	}
}

// NewAverageStatsEvent builds the reply for a course average report.
func NewAverageStatsEvent(requestID, courseID string, totalLessons, average float64) StatsGeneratedEvent {
	now := time.Now().UTC()
	return StatsGeneratedEvent{
		BaseEvent:                 shared.NewBaseEvent(shared.EventAttendanceStatsGenerated, requestID),
		RequestID:                 requestID,
		CourseID:                  courseID,
		TotalLessons:              totalLessons,
		AveragePresencesPerLesson: &average,
		Timestamp:                 now,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE EVENTS (inbound, emitted by the course-management service)
// ══════════════════════════════════════════════════════════════════════════════

// CourseScheduledEvent announces a newly scheduled course lesson.
type CourseScheduledEvent struct {
	shared.BaseEvent
	CourseID   string        `json:"courseId"`
	CourseName string        `json:"courseName,omitempty"`
	LessonDate timeutil.Date `json:"lessonDate,omitempty"`
}

// CourseUpdatedEvent announces a change to a scheduled course.
type CourseUpdatedEvent struct {
	shared.BaseEvent
	CourseID   string        `json:"courseId"`
	CourseName string        `json:"courseName,omitempty"`
	LessonDate timeutil.Date `json:"lessonDate,omitempty"`
}
