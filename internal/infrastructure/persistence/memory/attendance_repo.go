// Package memory implements an in-memory attendance record store. It backs
// tests and single-instance deployments; production uses the postgres store,
// selected via configuration.
package memory

import (
	"context"
	"sync"

	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

// AttendanceRepository implements attendance.Repository with a mutex-guarded
// map. Every record crossing the boundary is deep-copied, so callers never
// share memory with the canonical copy and list results are point-in-time
// snapshots.
type AttendanceRepository struct {
	mu      sync.RWMutex
	records map[string]*attendance.Record
}

// NewAttendanceRepository creates an empty in-memory store.
func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{
		records: make(map[string]*attendance.Record),
	}
}

// GetByID returns a copy of the record with the given id.
func (r *AttendanceRepository) GetByID(_ context.Context, id string) (*attendance.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, attendance.ErrRecordNotFound
	}
	return record.Clone(), nil
}

// Save inserts or overwrites the record under its id.
func (r *AttendanceRepository) Save(_ context.Context, record *attendance.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.ID] = record.Clone()
	return nil
}

// Delete removes the record with the given id.
func (r *AttendanceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return attendance.ErrRecordNotFound
	}
	delete(r.records, id)
	return nil
}

// ListByStudent returns all records for a student.
func (r *AttendanceRepository) ListByStudent(_ context.Context, studentID string) ([]*attendance.Record, error) {
	return r.filter(func(record *attendance.Record) bool {
		return record.StudentID == studentID
	}), nil
}

// ListByCourse returns all records for a course.
func (r *AttendanceRepository) ListByCourse(_ context.Context, courseID string) ([]*attendance.Record, error) {
	return r.filter(func(record *attendance.Record) bool {
		return record.CourseID == courseID
	}), nil
}

// ListByDate returns all records for a lesson date.
func (r *AttendanceRepository) ListByDate(_ context.Context, date timeutil.Date) ([]*attendance.Record, error) {
	return r.filter(func(record *attendance.Record) bool {
		return record.LessonDate.Equal(date)
	}), nil
}

// Len returns the number of stored records.
func (r *AttendanceRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// filter copies all records matching the predicate under one read lock,
// which gives each caller a consistent snapshot.
func (r *AttendanceRepository) filter(match func(*attendance.Record) bool) []*attendance.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*attendance.Record, 0)
	for _, record := range r.records {
		if match(record) {
			result = append(result, record.Clone())
		}
	}
	return result
}
