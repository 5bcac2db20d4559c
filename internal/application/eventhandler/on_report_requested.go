// Package eventhandler contains the consumers of inbound broker events.
package eventhandler

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/newunimol/attendance-service/internal/application/query"
	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON REPORT REQUESTED HANDLER
// Serves the asynchronous statistics protocol: a ReportRequested message
// arrives on the microservices exchange, the handler computes the requested
// statistic and replies with an AttendanceStatsGenerated event carrying the
// same requestId. There is no error reply; a request that cannot be served
// simply produces no reply, and the requester times out on its own side.
// ══════════════════════════════════════════════════════════════════════════════

// Deduper tracks processed request ids so redelivered requests do not
// produce duplicate replies.
type Deduper interface {
	// MarkSeen records the request id and reports whether it was seen before.
	MarkSeen(ctx context.Context, requestID string) (bool, error)
}

// OnReportRequestedHandler handles inbound report requests.
type OnReportRequestedHandler struct {
	stats     *query.StatisticsQueries
	publisher shared.EventPublisher
	deduper   Deduper
	logger    *slog.Logger
}

// NewOnReportRequestedHandler creates the report request handler.
func NewOnReportRequestedHandler(
	stats *query.StatisticsQueries,
	publisher shared.EventPublisher,
	deduper Deduper,
	logger *slog.Logger,
) *OnReportRequestedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnReportRequestedHandler{
		stats:     stats,
		publisher: publisher,
		deduper:   deduper,
		logger:    logger.With("handler", "on_report_requested"),
	}
}

// Handle processes one report request payload. It always returns nil: a
// malformed, unknown or failing request is logged and dropped, never
// redelivered.
func (h *OnReportRequestedHandler) Handle(ctx context.Context, body []byte) error {
	var req attendance.ReportRequestedEvent
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Warn("dropping malformed report request", "error", err)
		return nil
	}
	if req.RequestID == "" {
		h.logger.Warn("dropping report request without request id")
		return nil
	}

	// Fail open on dedup errors: a duplicate reply is better than a dropped
	// request when the dedup store is unreachable.
	if h.deduper != nil {
		seen, err := h.deduper.MarkSeen(ctx, req.RequestID)
		if err != nil {
			h.logger.Warn("dedup check failed, processing anyway",
				"request_id", req.RequestID,
				"error", err,
			)
		} else if seen {
			h.logger.Info("skipping already processed report request",
				"request_id", req.RequestID,
			)
			return nil
		}
	}

	switch req.ReportType {
	case attendance.ReportTypePercentage:
		h.handlePercentage(ctx, req)
	case attendance.ReportTypeAverage:
		h.handleAverage(ctx, req)
	default:
		// Unknown report types are ignored without a reply. The exchange
		// carries traffic for other services too.
		h.logger.Debug("ignoring unknown report type",
			"request_id", req.RequestID,
			"report_type", req.ReportType,
		)
	}
	return nil
}

func (h *OnReportRequestedHandler) handlePercentage(ctx context.Context, req attendance.ReportRequestedEvent) {
	report, err := h.stats.StudentCoursePercentage(ctx, req.StudentID, req.CourseID)
	if err != nil {
		h.logger.Error("failed to compute attendance percentage",
			"request_id", req.RequestID,
			"student_id", req.StudentID,
			"course_id", req.CourseID,
			"error", err,
		)
		return
	}

	reply := attendance.NewPercentageStatsEvent(
		req.RequestID,
		req.StudentID,
		req.CourseID,
		report.TotalCourseLessons,
		report.PresentLessons,
		report.AttendancePercentage,
	)
	_ = h.publisher.Publish(ctx, reply)

	h.logger.Info("percentage report generated",
		"request_id", req.RequestID,
		"student_id", req.StudentID,
		"course_id", req.CourseID,
		"attendance_percentage", report.AttendancePercentage,
	)
}

func (h *OnReportRequestedHandler) handleAverage(ctx context.Context, req attendance.ReportRequestedEvent) {
	report, err := h.stats.CourseAverage(ctx, req.CourseID)
	if err != nil {
		h.logger.Error("failed to compute course average",
			"request_id", req.RequestID,
			"course_id", req.CourseID,
			"error", err,
		)
		return
	}

	reply := attendance.NewAverageStatsEvent(
		req.RequestID,
		req.CourseID,
		report.TotalLessons,
		report.AveragePresencesPerLesson,
	)
	_ = h.publisher.Publish(ctx, reply)

	h.logger.Info("average report generated",
		"request_id", req.RequestID,
		"course_id", req.CourseID,
		"average_presences_per_lesson", report.AveragePresencesPerLesson,
	)
}
