// Package attendance contains the attendance record aggregate: the entity,
// its lifecycle state machine, the repository port and the domain events it
// emits. One record tracks one student at one lesson of one course.
package attendance

import (
	"github.com/newunimol/attendance-service/internal/domain/shared"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

// Status is the attendance state of a record.
type Status string

const (
	// StatusAbsent marks the student as absent from the lesson.
	StatusAbsent Status = "absent"

	// StatusPresent marks the student as present at the lesson.
	StatusPresent Status = "present"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusAbsent || s == StatusPresent
}

// Record is one per-lesson attendance entry.
//
// The state machine has two states, absent and present. Status flips freely
// between them; CheckIn and CheckOut are gated on the record's status at the
// moment the patch is applied:
//   - CheckIn (late arrival) is only recordable while the record is absent.
//   - CheckOut (early exit) is only recordable while the record is present.
type Record struct {
	ID         string
	StudentID  string
	CourseID   string
	LessonDate timeutil.Date
	Status     Status
	CheckIn    *timeutil.Clock
	CheckOut   *timeutil.Clock
}

// CreateInput carries the caller-supplied fields for a new record.
// CheckOut is deliberately absent: a record never starts with an early exit.
type CreateInput struct {
	StudentID  string
	CourseID   string
	LessonDate timeutil.Date
	Status     Status
	CheckIn    *timeutil.Clock
}

// Validate validates the creation input.
func (in CreateInput) Validate() error {
	if in.StudentID == "" {
		return shared.NewDomainError("attendance", "Create", shared.ErrEmptyValue, "student_id is required")
	}
	if in.CourseID == "" {
		return shared.NewDomainError("attendance", "Create", shared.ErrEmptyValue, "course_id is required")
	}
	if in.LessonDate.IsZero() {
		return shared.NewDomainError("attendance", "Create", shared.ErrEmptyValue, "lesson_date is required")
	}
	if !in.Status.IsValid() {
		return shared.NewDomainError("attendance", "Create", shared.ErrInvalidInput, "status must be absent or present")
	}
	return nil
}

// NewRecord creates a record with the given id. CheckOut is always unset on
// creation regardless of input.
func NewRecord(id string, in CreateInput) *Record {
	return &Record{
		ID:         id,
		StudentID:  in.StudentID,
		CourseID:   in.CourseID,
		LessonDate: in.LessonDate,
		Status:     in.Status,
		CheckIn:    in.CheckIn,
		CheckOut:   nil,
	}
}

// Patch carries the optional fields of an update command. Nil fields are
// left untouched on the record.
type Patch struct {
	Status   *Status
	CheckIn  *timeutil.Clock
	CheckOut *timeutil.Clock
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.CheckIn == nil && p.CheckOut == nil
}

// Apply validates the patch against the record's current status and applies
// all fields atomically. Validation happens against the status the record
// held before the patch, so supplying a new status in the same patch does
// not relax the check-in/check-out gates. On error the record is unchanged.
func (r *Record) Apply(p Patch) error {
	if p.Status != nil && !p.Status.IsValid() {
		return shared.NewDomainError("attendance", "Update", shared.ErrInvalidInput, "status must be absent or present")
	}
	if p.CheckIn != nil && r.Status != StatusAbsent {
		return shared.NewDomainError("attendance", "Update", shared.ErrInvalidTransition,
			"late arrival check-in is only allowed on absent records")
	}
	if p.CheckOut != nil && r.Status != StatusPresent {
		return shared.NewDomainError("attendance", "Update", shared.ErrInvalidTransition,
			"early exit check-out is only allowed on present records")
	}

	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.CheckIn != nil {
		checkIn := *p.CheckIn
		r.CheckIn = &checkIn
	}
	if p.CheckOut != nil {
		checkOut := *p.CheckOut
		r.CheckOut = &checkOut
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	if r.CheckIn != nil {
		checkIn := *r.CheckIn
		clone.CheckIn = &checkIn
	}
	if r.CheckOut != nil {
		checkOut := *r.CheckOut
		clone.CheckOut = &checkOut
	}
	return &clone
}

// Attendance domain errors.
var (
	ErrRecordNotFound = shared.NewDomainError("attendance", "Find", shared.ErrNotFound, "attendance record not found")
)
