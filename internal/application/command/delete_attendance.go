package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE ATTENDANCE COMMAND
// Removes a record. The deleted event carries the record's fields, so they
// are captured before the store drops them.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteAttendanceCommand identifies the record to delete.
type DeleteAttendanceCommand struct {
	// AttendanceID is the ID of the record to delete.
	AttendanceID string
}

// Validate validates the command.
func (c DeleteAttendanceCommand) Validate() error {
	if c.AttendanceID == "" {
		return shared.NewDomainError("attendance", "Delete", shared.ErrEmptyValue, "attendance_id is required")
	}
	return nil
}

// DeleteAttendanceResult contains the deleted record's last state.
type DeleteAttendanceResult struct {
	Record *attendance.Record
}

// DeleteAttendanceHandler handles the DeleteAttendanceCommand.
type DeleteAttendanceHandler struct {
	repo      attendance.Repository
	publisher shared.EventPublisher
	logger    *slog.Logger
}

// NewDeleteAttendanceHandler creates a new DeleteAttendanceHandler.
func NewDeleteAttendanceHandler(
	repo attendance.Repository,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *DeleteAttendanceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteAttendanceHandler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the delete attendance command.
func (h *DeleteAttendanceHandler) Handle(ctx context.Context, cmd DeleteAttendanceCommand) (*DeleteAttendanceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	record, err := h.repo.GetByID(ctx, cmd.AttendanceID)
	if err != nil {
		return nil, fmt.Errorf("delete_attendance: failed to get record: %w", err)
	}

	if err := h.repo.Delete(ctx, cmd.AttendanceID); err != nil {
		return nil, fmt.Errorf("delete_attendance: failed to delete record: %w", err)
	}

	_ = h.publisher.Publish(ctx, attendance.NewDeletedEvent(record))

	h.logger.Info("attendance record deleted",
		"attendance_id", record.ID,
		"student_id", record.StudentID,
		"course_id", record.CourseID,
	)

	return &DeleteAttendanceResult{Record: record}, nil
}
