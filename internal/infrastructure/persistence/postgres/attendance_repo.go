package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/pkg/timeutil"

	"github.com/jackc/pgx/v5"
)

const defaultQueryTimeout = 30 * time.Second

// AttendanceRepository implements attendance.Repository for PostgreSQL.
// Every statement runs under the configured query timeout.
type AttendanceRepository struct {
	conn         *Connection
	queryTimeout time.Duration
}

// NewAttendanceRepository creates a repository over an open connection. A
// non-positive queryTimeout falls back to 30s.
func NewAttendanceRepository(conn *Connection, queryTimeout time.Duration) *AttendanceRepository {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &AttendanceRepository{conn: conn, queryTimeout: queryTimeout}
}

func (r *AttendanceRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.queryTimeout)
}

const recordColumns = `id, student_id, course_id, lesson_date, status, check_in, check_out`

// GetByID returns the record with the given id.
func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (*attendance.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE id = $1
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.conn.QueryRow(ctx, query, id)
	return scanRecord(row)
}

// Save inserts the record or overwrites the existing row under its id.
func (r *AttendanceRepository) Save(ctx context.Context, record *attendance.Record) error {
	query := `
		INSERT INTO attendance_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			student_id = EXCLUDED.student_id,
			course_id = EXCLUDED.course_id,
			lesson_date = EXCLUDED.lesson_date,
			status = EXCLUDED.status,
			check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out
	`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.conn.Exec(ctx, query,
		record.ID,
		record.StudentID,
		record.CourseID,
		record.LessonDate.Time(),
		string(record.Status),
		clockToTime(record.CheckIn),
		clockToTime(record.CheckOut),
	)
	if err != nil {
		return fmt.Errorf("failed to save attendance record: %w", err)
	}
	return nil
}

// Delete removes the record with the given id.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.conn.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

// ListByStudent returns all records for a student.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string) ([]*attendance.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE student_id = $1
		ORDER BY lesson_date
	`
	return r.list(ctx, query, studentID)
}

// ListByCourse returns all records for a course.
func (r *AttendanceRepository) ListByCourse(ctx context.Context, courseID string) ([]*attendance.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE course_id = $1
		ORDER BY lesson_date
	`
	return r.list(ctx, query, courseID)
}

// ListByDate returns all records for a lesson date.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date timeutil.Date) ([]*attendance.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE lesson_date = $1
	`
	return r.list(ctx, query, date.Time())
}

func (r *AttendanceRepository) list(ctx context.Context, query string, args ...any) ([]*attendance.Record, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	records := make([]*attendance.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (*attendance.Record, error) {
	var (
		record     attendance.Record
		lessonDate time.Time
		status     string
		checkIn    *time.Time
		checkOut   *time.Time
	)

	err := row.Scan(
		&record.ID,
		&record.StudentID,
		&record.CourseID,
		&lessonDate,
		&status,
		&checkIn,
		&checkOut,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to scan attendance record: %w", err)
	}

	record.LessonDate = timeutil.DateOf(lessonDate)
	record.Status = attendance.Status(status)
	record.CheckIn = timeToClock(checkIn)
	record.CheckOut = timeToClock(checkOut)
	return &record, nil
}

func clockToTime(c *timeutil.Clock) *time.Time {
	if c == nil {
		return nil
	}
	t := time.Date(0, 1, 1, c.Hour, c.Minute, c.Second, 0, time.UTC)
	return &t
}

func timeToClock(t *time.Time) *timeutil.Clock {
	if t == nil {
		return nil
	}
	c := timeutil.ClockOf(*t)
	return &c
}
