// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/internal/domain/shared"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE ATTENDANCE COMMAND
// Registers one student's attendance at one lesson. Check-out can never be set
// here: a record starts its life without an early exit.
// ══════════════════════════════════════════════════════════════════════════════

// CreateAttendanceCommand contains the data to create an attendance record.
type CreateAttendanceCommand struct {
	// StudentID is the ID of the student.
	StudentID string

	// CourseID is the ID of the course the lesson belongs to.
	CourseID string

	// LessonDate is the calendar date of the lesson.
	LessonDate timeutil.Date

	// Status is the initial attendance status.
	Status attendance.Status

	// CheckIn is the optional late arrival time.
	CheckIn *timeutil.Clock
}

// Validate validates the command.
func (c CreateAttendanceCommand) Validate() error {
	return c.input().Validate()
}

func (c CreateAttendanceCommand) input() attendance.CreateInput {
	return attendance.CreateInput{
		StudentID:  c.StudentID,
		CourseID:   c.CourseID,
		LessonDate: c.LessonDate,
		Status:     c.Status,
		CheckIn:    c.CheckIn,
	}
}

// CreateAttendanceResult contains the created record.
type CreateAttendanceResult struct {
	Record *attendance.Record
}

// CreateAttendanceHandler handles the CreateAttendanceCommand.
type CreateAttendanceHandler struct {
	repo      attendance.Repository
	publisher shared.EventPublisher
	logger    *slog.Logger
}

// NewCreateAttendanceHandler creates a new CreateAttendanceHandler.
func NewCreateAttendanceHandler(
	repo attendance.Repository,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *CreateAttendanceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateAttendanceHandler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the create attendance command. The record is persisted
// first and the created event published after; a publish failure never fails
// the creation.
func (h *CreateAttendanceHandler) Handle(ctx context.Context, cmd CreateAttendanceCommand) (*CreateAttendanceResult, error) {
	in := cmd.input()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	record := attendance.NewRecord(uuid.NewString(), in)

	if err := h.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("create_attendance: failed to save record: %w", err)
	}

	_ = h.publisher.Publish(ctx, attendance.NewCreatedEvent(record))

	h.logger.Info("attendance record created",
		"attendance_id", record.ID,
		"student_id", record.StudentID,
		"course_id", record.CourseID,
		"status", record.Status,
	)

	return &CreateAttendanceResult{Record: record}, nil
}
