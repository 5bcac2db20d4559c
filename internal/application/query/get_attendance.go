// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/internal/domain/shared"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE READ QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceQueries serves the read side of the attendance API. Every result
// is a detached copy of store state.
type AttendanceQueries struct {
	repo attendance.Repository
}

// NewAttendanceQueries creates the read-side query service.
func NewAttendanceQueries(repo attendance.Repository) *AttendanceQueries {
	return &AttendanceQueries{repo: repo}
}

// GetByID returns a single record by id.
func (q *AttendanceQueries) GetByID(ctx context.Context, id string) (*attendance.Record, error) {
	if id == "" {
		return nil, shared.NewDomainError("attendance", "Get", shared.ErrEmptyValue, "attendance_id is required")
	}
	record, err := q.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get_attendance: %w", err)
	}
	return record, nil
}

// ListByStudent returns all records of one student.
func (q *AttendanceQueries) ListByStudent(ctx context.Context, studentID string) ([]*attendance.Record, error) {
	if studentID == "" {
		return nil, shared.NewDomainError("attendance", "ListByStudent", shared.ErrEmptyValue, "student_id is required")
	}
	records, err := q.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("get_attendance: failed to list by student: %w", err)
	}
	return records, nil
}

// ListByCourse returns all records of one course.
func (q *AttendanceQueries) ListByCourse(ctx context.Context, courseID string) ([]*attendance.Record, error) {
	if courseID == "" {
		return nil, shared.NewDomainError("attendance", "ListByCourse", shared.ErrEmptyValue, "course_id is required")
	}
	records, err := q.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get_attendance: failed to list by course: %w", err)
	}
	return records, nil
}

// ListByDate returns all records on one lesson date.
func (q *AttendanceQueries) ListByDate(ctx context.Context, date timeutil.Date) ([]*attendance.Record, error) {
	if date.IsZero() {
		return nil, shared.NewDomainError("attendance", "ListByDate", shared.ErrEmptyValue, "date is required")
	}
	records, err := q.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("get_attendance: failed to list by date: %w", err)
	}
	return records, nil
}
