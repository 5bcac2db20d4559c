package attendance

import (
	"context"

	"github.com/newunimol/attendance-service/pkg/timeutil"
)

// Repository is the persistence port for attendance records. The store owns
// the canonical copy of every record; callers receive detached copies and
// write changes back through Save.
//
// Implementations must keep list results snapshot-consistent: one call
// observes one point-in-time view, with no element duplicated or dropped by
// concurrent mutation.
type Repository interface {
	// GetByID returns the record with the given id, or
	// shared.ErrNotFound if no such record exists.
	GetByID(ctx context.Context, id string) (*Record, error)

	// Save inserts or overwrites the record under its id.
	Save(ctx context.Context, record *Record) error

	// Delete removes the record with the given id, or returns
	// shared.ErrNotFound if no such record exists.
	Delete(ctx context.Context, id string) error

	// ListByStudent returns all records for a student. Empty result, nil error
	// when the student has none.
	ListByStudent(ctx context.Context, studentID string) ([]*Record, error)

	// ListByCourse returns all records for a course.
	ListByCourse(ctx context.Context, courseID string) ([]*Record, error)

	// ListByDate returns all records for a lesson date.
	ListByDate(ctx context.Context, date timeutil.Date) ([]*Record, error)
}
