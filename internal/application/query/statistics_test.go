package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/internal/infrastructure/persistence/memory"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

func seedRecord(t *testing.T, repo *memory.AttendanceRepository, id, studentID, courseID string, date timeutil.Date, status attendance.Status) {
	t.Helper()
	record := attendance.NewRecord(id, attendance.CreateInput{
		StudentID:  studentID,
		CourseID:   courseID,
		LessonDate: date,
		Status:     status,
	})
	require.NoError(t, repo.Save(context.Background(), record))
}

func TestStudentCoursePercentage(t *testing.T) {
	repo := memory.NewAttendanceRepository()
	stats := NewStatisticsQueries(repo)

	day1 := timeutil.NewDate(2026, 3, 2)
	day2 := timeutil.NewDate(2026, 3, 9)
	day3 := timeutil.NewDate(2026, 3, 16)
	day4 := timeutil.NewDate(2026, 3, 23)

	// Four lessons; student1 present at two of them.
	seedRecord(t, repo, "a1", "student1", "course1", day1, attendance.StatusPresent)
	seedRecord(t, repo, "a2", "student1", "course1", day2, attendance.StatusAbsent)
	seedRecord(t, repo, "a3", "student1", "course1", day3, attendance.StatusPresent)
	seedRecord(t, repo, "a4", "student1", "course1", day4, attendance.StatusAbsent)

	// Another student's records establish the same lesson dates.
	seedRecord(t, repo, "b1", "student2", "course1", day1, attendance.StatusPresent)
	seedRecord(t, repo, "b2", "student2", "course1", day2, attendance.StatusPresent)

	report, err := stats.StudentCoursePercentage(context.Background(), "student1", "course1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, report.TotalCourseLessons)
	assert.Equal(t, 2.0, report.PresentLessons)
	assert.Equal(t, 50.0, report.AttendancePercentage)
}

func TestStudentCoursePercentage_CountsLessonsTheStudentMissedEntirely(t *testing.T) {
	repo := memory.NewAttendanceRepository()
	stats := NewStatisticsQueries(repo)

	// student1 is tracked at one lesson, but the course met twice: lessons
	// other students attended still count in the denominator.
	seedRecord(t, repo, "a1", "student1", "course1", timeutil.NewDate(2026, 3, 2), attendance.StatusPresent)
	seedRecord(t, repo, "b1", "student2", "course1", timeutil.NewDate(2026, 3, 9), attendance.StatusPresent)

	report, err := stats.StudentCoursePercentage(context.Background(), "student1", "course1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, report.TotalCourseLessons)
	assert.Equal(t, 1.0, report.PresentLessons)
	assert.Equal(t, 50.0, report.AttendancePercentage)
}

func TestStudentCoursePercentage_NoLessons(t *testing.T) {
	stats := NewStatisticsQueries(memory.NewAttendanceRepository())

	report, err := stats.StudentCoursePercentage(context.Background(), "student1", "course1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.TotalCourseLessons)
	assert.Equal(t, 0.0, report.AttendancePercentage)
}

func TestCourseAverage(t *testing.T) {
	repo := memory.NewAttendanceRepository()
	stats := NewStatisticsQueries(repo)

	day1 := timeutil.NewDate(2026, 3, 2)
	day2 := timeutil.NewDate(2026, 3, 9)

	// Lesson 1: two present. Lesson 2: one present, one absent.
	seedRecord(t, repo, "a1", "student1", "course1", day1, attendance.StatusPresent)
	seedRecord(t, repo, "a2", "student2", "course1", day1, attendance.StatusPresent)
	seedRecord(t, repo, "a3", "student1", "course1", day2, attendance.StatusPresent)
	seedRecord(t, repo, "a4", "student2", "course1", day2, attendance.StatusAbsent)

	report, err := stats.CourseAverage(context.Background(), "course1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, report.TotalLessons)
	assert.Equal(t, 1.5, report.AveragePresencesPerLesson)
}

func TestCourseAverage_NoLessons(t *testing.T) {
	stats := NewStatisticsQueries(memory.NewAttendanceRepository())

	report, err := stats.CourseAverage(context.Background(), "course1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.TotalLessons)
	assert.Equal(t, 0.0, report.AveragePresencesPerLesson)
}

func TestCourseAverage_IgnoresOtherCourses(t *testing.T) {
	repo := memory.NewAttendanceRepository()
	stats := NewStatisticsQueries(repo)

	seedRecord(t, repo, "a1", "student1", "course1", timeutil.NewDate(2026, 3, 2), attendance.StatusPresent)
	seedRecord(t, repo, "b1", "student1", "course2", timeutil.NewDate(2026, 3, 2), attendance.StatusPresent)
	seedRecord(t, repo, "b2", "student1", "course2", timeutil.NewDate(2026, 3, 9), attendance.StatusPresent)

	report, err := stats.CourseAverage(context.Background(), "course1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, report.TotalLessons)
	assert.Equal(t, 1.0, report.AveragePresencesPerLesson)
}
