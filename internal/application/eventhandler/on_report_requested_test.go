package eventhandler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newunimol/attendance-service/internal/application/query"
	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/internal/domain/shared"
	"github.com/newunimol/attendance-service/internal/infrastructure/persistence/memory"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturingPublisher) Publish(_ context.Context, event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) published() []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shared.Event(nil), p.events...)
}

type failingDeduper struct{}

func (failingDeduper) MarkSeen(context.Context, string) (bool, error) {
	return false, errors.New("dedup store down")
}

func newHandler(t *testing.T) (*OnReportRequestedHandler, *capturingPublisher, *memory.AttendanceRepository) {
	t.Helper()
	repo := memory.NewAttendanceRepository()
	pub := &capturingPublisher{}
	stats := query.NewStatisticsQueries(repo)
	handler := NewOnReportRequestedHandler(stats, pub, memory.NewRequestDeduper(0), nil)
	return handler, pub, repo
}

func seed(t *testing.T, repo *memory.AttendanceRepository, id, studentID, courseID string, date timeutil.Date, status attendance.Status) {
	t.Helper()
	record := attendance.NewRecord(id, attendance.CreateInput{
		StudentID:  studentID,
		CourseID:   courseID,
		LessonDate: date,
		Status:     status,
	})
	require.NoError(t, repo.Save(context.Background(), record))
}

func requestBody(t *testing.T, requestID, studentID, courseID, reportType string) []byte {
	t.Helper()
	body, err := json.Marshal(attendance.NewReportRequestedEvent(requestID, studentID, courseID, reportType))
	require.NoError(t, err)
	return body
}

func TestHandle_PercentageReply(t *testing.T) {
	handler, pub, repo := newHandler(t)

	seed(t, repo, "a1", "student1", "course1", timeutil.NewDate(2026, 3, 2), attendance.StatusPresent)
	seed(t, repo, "a2", "student1", "course1", timeutil.NewDate(2026, 3, 9), attendance.StatusAbsent)

	err := handler.Handle(context.Background(), requestBody(t, "req-1", "student1", "course1", attendance.ReportTypePercentage))
	require.NoError(t, err)

	events := pub.published()
	require.Len(t, events, 1)
	reply, ok := events[0].(attendance.StatsGeneratedEvent)
	require.True(t, ok)

	assert.Equal(t, "req-1", reply.RequestID)
	assert.Equal(t, "student1", reply.StudentID)
	assert.Equal(t, "course1", reply.CourseID)
	assert.Equal(t, 2.0, reply.TotalLessons)
	require.NotNil(t, reply.PresentLessons)
	assert.Equal(t, 1.0, *reply.PresentLessons)
	require.NotNil(t, reply.AttendancePercentage)
	assert.Equal(t, 50.0, *reply.AttendancePercentage)
	assert.Nil(t, reply.AveragePresencesPerLesson)
	assert.Equal(t, shared.EventAttendanceStatsGenerated, reply.EventType())
}

func TestHandle_AverageReply(t *testing.T) {
	handler, pub, repo := newHandler(t)

	day := timeutil.NewDate(2026, 3, 2)
	seed(t, repo, "a1", "student1", "course1", day, attendance.StatusPresent)
	seed(t, repo, "a2", "student2", "course1", day, attendance.StatusPresent)

	err := handler.Handle(context.Background(), requestBody(t, "req-2", "", "course1", attendance.ReportTypeAverage))
	require.NoError(t, err)

	events := pub.published()
	require.Len(t, events, 1)
	reply, ok := events[0].(attendance.StatsGeneratedEvent)
	require.True(t, ok)

	assert.Equal(t, "req-2", reply.RequestID)
	assert.Empty(t, reply.StudentID)
	assert.Equal(t, 1.0, reply.TotalLessons)
	require.NotNil(t, reply.AveragePresencesPerLesson)
	assert.Equal(t, 2.0, *reply.AveragePresencesPerLesson)
	assert.Nil(t, reply.PresentLessons)
	assert.Nil(t, reply.AttendancePercentage)
}

func TestHandle_UnknownReportTypeEmitsNothing(t *testing.T) {
	handler, pub, _ := newHandler(t)

	err := handler.Handle(context.Background(), requestBody(t, "req-3", "student1", "course1", "median"))
	require.NoError(t, err)
	assert.Empty(t, pub.published())
}

func TestHandle_MalformedPayloadEmitsNothing(t *testing.T) {
	handler, pub, _ := newHandler(t)

	err := handler.Handle(context.Background(), []byte("{not json"))
	require.NoError(t, err)
	assert.Empty(t, pub.published())
}

func TestHandle_MissingRequestIDEmitsNothing(t *testing.T) {
	handler, pub, _ := newHandler(t)

	err := handler.Handle(context.Background(), requestBody(t, "", "student1", "course1", attendance.ReportTypePercentage))
	require.NoError(t, err)
	assert.Empty(t, pub.published())
}

func TestHandle_RedeliveredRequestRepliesOnce(t *testing.T) {
	handler, pub, repo := newHandler(t)
	seed(t, repo, "a1", "student1", "course1", timeutil.NewDate(2026, 3, 2), attendance.StatusPresent)

	body := requestBody(t, "req-4", "student1", "course1", attendance.ReportTypePercentage)
	require.NoError(t, handler.Handle(context.Background(), body))
	require.NoError(t, handler.Handle(context.Background(), body))

	assert.Len(t, pub.published(), 1)
}

func TestHandle_DedupFailureFailsOpen(t *testing.T) {
	repo := memory.NewAttendanceRepository()
	pub := &capturingPublisher{}
	handler := NewOnReportRequestedHandler(query.NewStatisticsQueries(repo), pub, failingDeduper{}, nil)

	seed(t, repo, "a1", "student1", "course1", timeutil.NewDate(2026, 3, 2), attendance.StatusPresent)

	err := handler.Handle(context.Background(), requestBody(t, "req-5", "student1", "course1", attendance.ReportTypePercentage))
	require.NoError(t, err)
	assert.Len(t, pub.published(), 1)
}

func TestCourseEventHandler_AcksEverything(t *testing.T) {
	handler := NewOnCourseEventHandler(nil)

	assert.NoError(t, handler.Handle(context.Background(), []byte(`{"courseId":"course1","courseName":"Algorithms"}`)))
	assert.NoError(t, handler.Handle(context.Background(), []byte("{broken")))
}
