package eventhandler

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/newunimol/attendance-service/internal/domain/attendance"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE EVENT HANDLER
// The course queues exist so the service can react to course scheduling.
// Today the reaction is acknowledgement and logging; the queues stay bound
// because the topology is a shared wire contract.
// ══════════════════════════════════════════════════════════════════════════════

// OnCourseEventHandler handles course.scheduled and course.updated messages
// from the course-management service.
type OnCourseEventHandler struct {
	logger *slog.Logger
}

// NewOnCourseEventHandler creates the course event handler.
func NewOnCourseEventHandler(logger *slog.Logger) *OnCourseEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnCourseEventHandler{logger: logger.With("handler", "on_course_event")}
}

// Handle processes one course event payload. Always returns nil.
func (h *OnCourseEventHandler) Handle(_ context.Context, body []byte) error {
	var event attendance.CourseScheduledEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("dropping malformed course event", "error", err)
		return nil
	}

	h.logger.Info("course event received",
		"course_id", event.CourseID,
		"course_name", event.CourseName,
		"lesson_date", event.LessonDate,
	)
	return nil
}
