package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/internal/domain/shared"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

func newRecord(id, studentID, courseID string, date timeutil.Date) *attendance.Record {
	return attendance.NewRecord(id, attendance.CreateInput{
		StudentID:  studentID,
		CourseID:   courseID,
		LessonDate: date,
		Status:     attendance.StatusAbsent,
	})
}

func TestRepository_SaveAndGet(t *testing.T) {
	repo := NewAttendanceRepository()
	ctx := context.Background()

	record := newRecord("att1", "student1", "course1", timeutil.NewDate(2026, 3, 2))
	require.NoError(t, repo.Save(ctx, record))

	got, err := repo.GetByID(ctx, "att1")
	require.NoError(t, err)
	assert.Equal(t, "student1", got.StudentID)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, shared.IsNotFound(err))
}

func TestRepository_ReturnsDetachedCopies(t *testing.T) {
	repo := NewAttendanceRepository()
	ctx := context.Background()

	record := newRecord("att1", "student1", "course1", timeutil.NewDate(2026, 3, 2))
	require.NoError(t, repo.Save(ctx, record))

	// Mutating the saved pointer or a fetched copy must not leak into the store.
	record.Status = attendance.StatusPresent

	got, err := repo.GetByID(ctx, "att1")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, got.Status)

	got.Status = attendance.StatusPresent
	again, err := repo.GetByID(ctx, "att1")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, again.Status)
}

func TestRepository_Delete(t *testing.T) {
	repo := NewAttendanceRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newRecord("att1", "student1", "course1", timeutil.NewDate(2026, 3, 2))))
	require.NoError(t, repo.Delete(ctx, "att1"))
	assert.Equal(t, 0, repo.Len())

	err := repo.Delete(ctx, "att1")
	assert.True(t, shared.IsNotFound(err))
}

func TestRepository_Listings(t *testing.T) {
	repo := NewAttendanceRepository()
	ctx := context.Background()

	day1 := timeutil.NewDate(2026, 3, 2)
	day2 := timeutil.NewDate(2026, 3, 9)

	require.NoError(t, repo.Save(ctx, newRecord("a1", "student1", "course1", day1)))
	require.NoError(t, repo.Save(ctx, newRecord("a2", "student1", "course2", day2)))
	require.NoError(t, repo.Save(ctx, newRecord("a3", "student2", "course1", day1)))

	byStudent, err := repo.ListByStudent(ctx, "student1")
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	byCourse, err := repo.ListByCourse(ctx, "course1")
	require.NoError(t, err)
	assert.Len(t, byCourse, 2)

	byDate, err := repo.ListByDate(ctx, day1)
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	none, err := repo.ListByStudent(ctx, "student3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepository_ConcurrentAccess(t *testing.T) {
	repo := NewAttendanceRepository()
	ctx := context.Background()
	date := timeutil.NewDate(2026, 3, 2)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("att%d", i)
			_ = repo.Save(ctx, newRecord(id, "student1", "course1", date))
			_, _ = repo.ListByCourse(ctx, "course1")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, repo.Len())
}

func TestRequestDeduper_MarkSeen(t *testing.T) {
	deduper := NewRequestDeduper(0)
	ctx := context.Background()

	seen, err := deduper.MarkSeen(ctx, "req-1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = deduper.MarkSeen(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = deduper.MarkSeen(ctx, "req-2")
	require.NoError(t, err)
	assert.False(t, seen)
}
