package query

import (
	"context"
	"fmt"

	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/internal/domain/shared"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS QUERIES
// Both statistics treat a lesson as one distinct lesson date within a course,
// so a course that met on 10 dates has 10 lessons regardless of how many
// students were tracked on each of them.
// ══════════════════════════════════════════════════════════════════════════════

// PercentageReport is a student's attendance percentage in one course.
type PercentageReport struct {
	StudentID            string  `json:"studentId"`
	CourseID             string  `json:"courseId"`
	TotalCourseLessons   float64 `json:"totalCourseLessons"`
	PresentLessons       float64 `json:"presentLessons"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

// AverageReport is the average number of present students per lesson of a
// course.
type AverageReport struct {
	CourseID                  string  `json:"courseId"`
	TotalLessons              float64 `json:"totalLessons"`
	AveragePresencesPerLesson float64 `json:"averagePresencesPerLesson"`
}

// StatisticsQueries computes attendance statistics. Each computation reads
// the course's records in a single snapshot, so the numerator and denominator
// of one report always describe the same point in time.
type StatisticsQueries struct {
	repo attendance.Repository
}

// NewStatisticsQueries creates the statistics query service.
func NewStatisticsQueries(repo attendance.Repository) *StatisticsQueries {
	return &StatisticsQueries{repo: repo}
}

// StudentCoursePercentage computes the share of a course's lessons at which
// the student was present. A course with no recorded lessons yields zero
// percent rather than an error.
func (q *StatisticsQueries) StudentCoursePercentage(ctx context.Context, studentID, courseID string) (*PercentageReport, error) {
	if studentID == "" {
		return nil, shared.NewDomainError("attendance", "Percentage", shared.ErrEmptyValue, "student_id is required")
	}
	if courseID == "" {
		return nil, shared.NewDomainError("attendance", "Percentage", shared.ErrEmptyValue, "course_id is required")
	}

	records, err := q.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("statistics: failed to list course records: %w", err)
	}

	lessons := distinctDates(records)
	totalLessons := float64(len(lessons))

	var presentLessons float64
	for _, record := range records {
		if record.StudentID == studentID && record.Status == attendance.StatusPresent {
			presentLessons++
		}
	}

	var percentage float64
	if totalLessons > 0 {
		percentage = presentLessons / totalLessons * 100
	}

	return &PercentageReport{
		StudentID:            studentID,
		CourseID:             courseID,
		TotalCourseLessons:   totalLessons,
		PresentLessons:       presentLessons,
		AttendancePercentage: percentage,
	}, nil
}

// CourseAverage computes the mean number of present students over the
// course's lessons. A course with no recorded lessons yields a zero average.
func (q *StatisticsQueries) CourseAverage(ctx context.Context, courseID string) (*AverageReport, error) {
	if courseID == "" {
		return nil, shared.NewDomainError("attendance", "Average", shared.ErrEmptyValue, "course_id is required")
	}

	records, err := q.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("statistics: failed to list course records: %w", err)
	}

	lessons := distinctDates(records)
	totalLessons := float64(len(lessons))

	var totalPresences float64
	for _, record := range records {
		if record.Status == attendance.StatusPresent {
			totalPresences++
		}
	}

	var average float64
	if totalLessons > 0 {
		average = totalPresences / totalLessons
	}

	return &AverageReport{
		CourseID:                  courseID,
		TotalLessons:              totalLessons,
		AveragePresencesPerLesson: average,
	}, nil
}

// distinctDates returns the set of lesson dates appearing in the records.
func distinctDates(records []*attendance.Record) map[timeutil.Date]struct{} {
	dates := make(map[timeutil.Date]struct{}, len(records))
	for _, record := range records {
		dates[record.LessonDate] = struct{}{}
	}
	return dates
}
