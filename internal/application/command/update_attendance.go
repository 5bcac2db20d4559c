package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/internal/domain/shared"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE ATTENDANCE COMMAND
// Applies a partial patch to a record. The patch is all-or-nothing: when any
// field violates the state machine, nothing is written. Updates of the same
// record are serialized so concurrent patches cannot interleave their
// read-validate-write cycles.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateAttendanceCommand contains a partial update for a record. Nil fields
// are left untouched.
type UpdateAttendanceCommand struct {
	// AttendanceID is the ID of the record to update.
	AttendanceID string

	// Status is the new status, if changing.
	Status *attendance.Status

	// CheckIn is the late arrival time, if recording one.
	CheckIn *timeutil.Clock

	// CheckOut is the early exit time, if recording one.
	CheckOut *timeutil.Clock
}

// Validate validates the command.
func (c UpdateAttendanceCommand) Validate() error {
	if c.AttendanceID == "" {
		return shared.NewDomainError("attendance", "Update", shared.ErrEmptyValue, "attendance_id is required")
	}
	return nil
}

func (c UpdateAttendanceCommand) patch() attendance.Patch {
	return attendance.Patch{
		Status:   c.Status,
		CheckIn:  c.CheckIn,
		CheckOut: c.CheckOut,
	}
}

// UpdateAttendanceResult contains the updated record and its prior status.
type UpdateAttendanceResult struct {
	Record    *attendance.Record
	OldStatus attendance.Status
}

// UpdateAttendanceHandler handles the UpdateAttendanceCommand.
type UpdateAttendanceHandler struct {
	repo      attendance.Repository
	publisher shared.EventPublisher
	logger    *slog.Logger
	locks     *recordLocks
}

// NewUpdateAttendanceHandler creates a new UpdateAttendanceHandler.
func NewUpdateAttendanceHandler(
	repo attendance.Repository,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *UpdateAttendanceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateAttendanceHandler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		locks:     newRecordLocks(),
	}
}

// Handle executes the update attendance command. An empty patch is a no-op
// that still returns the current record and emits nothing.
func (h *UpdateAttendanceHandler) Handle(ctx context.Context, cmd UpdateAttendanceCommand) (*UpdateAttendanceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	unlock := h.locks.lock(cmd.AttendanceID)
	defer unlock()

	record, err := h.repo.GetByID(ctx, cmd.AttendanceID)
	if err != nil {
		return nil, fmt.Errorf("update_attendance: failed to get record: %w", err)
	}

	oldStatus := record.Status
	patch := cmd.patch()

	if patch.IsEmpty() {
		return &UpdateAttendanceResult{Record: record, OldStatus: oldStatus}, nil
	}

	if err := record.Apply(patch); err != nil {
		return nil, err
	}

	if err := h.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("update_attendance: failed to save record: %w", err)
	}

	_ = h.publisher.Publish(ctx, attendance.NewUpdatedEvent(record, oldStatus))

	h.logger.Info("attendance record updated",
		"attendance_id", record.ID,
		"old_status", oldStatus,
		"new_status", record.Status,
	)

	return &UpdateAttendanceResult{Record: record, OldStatus: oldStatus}, nil
}
