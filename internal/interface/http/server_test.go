package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newunimol/attendance-service/internal/application/auth"
	"github.com/newunimol/attendance-service/internal/application/command"
	"github.com/newunimol/attendance-service/internal/application/query"
	"github.com/newunimol/attendance-service/internal/domain/shared"
	"github.com/newunimol/attendance-service/internal/infrastructure/persistence/memory"
)

// stubAuthorizer maps bearer tokens to roles without real JWT parsing.
type stubAuthorizer struct{}

func (stubAuthorizer) ExtractRole(tokenString string) (auth.Role, error) {
	switch tokenString {
	case "teacher-token":
		return auth.RoleTeacher, nil
	case "student-token":
		return auth.RoleStudent, nil
	case "admin-token":
		return "", shared.NewDomainError("token", "ExtractRole", shared.ErrForbidden, "unknown role")
	default:
		return "", shared.NewDomainError("token", "ExtractRole", shared.ErrUnauthorized, "invalid token")
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, shared.Event) error { return nil }

func newTestServer(t *testing.T) (*Server, *memory.AttendanceRepository) {
	t.Helper()
	repo := memory.NewAttendanceRepository()

	server := NewServer(DefaultConfig(), Dependencies{
		CreateHandler: command.NewCreateAttendanceHandler(repo, nopPublisher{}, nil),
		UpdateHandler: command.NewUpdateAttendanceHandler(repo, nopPublisher{}, nil),
		DeleteHandler: command.NewDeleteAttendanceHandler(repo, nopPublisher{}, nil),
		Queries:       query.NewAttendanceQueries(repo),
		Statistics:    query.NewStatisticsQueries(repo),
		Authorizer:    stubAuthorizer{},
	})
	return server, repo
}

func doRequest(server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)
	return rec
}

func createRecord(t *testing.T, server *Server) string {
	t.Helper()
	rec := doRequest(server, http.MethodPost, "/api/createAttendance", "teacher-token", map[string]any{
		"studentId":  "student1",
		"courseId":   "course1",
		"lessonDate": "2026-03-02",
		"status":     "absent",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp attendanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AttendanceID)
	return resp.AttendanceID
}

func TestCreateAttendance_Endpoint(t *testing.T) {
	server, repo := newTestServer(t)

	id := createRecord(t, server)
	assert.Equal(t, 1, repo.Len())

	rec := doRequest(server, http.MethodGet, "/api/getAttendance/"+id, "student-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp attendanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "student1", resp.StudentID)
	assert.Nil(t, resp.CheckOut)
}

func TestCreateAttendance_ValidationError(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodPost, "/api/createAttendance", "teacher-token", map[string]any{
		"courseId":   "course1",
		"lessonDate": "2026-03-02",
		"status":     "absent",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAttendance_InvalidTransition(t *testing.T) {
	server, _ := newTestServer(t)
	id := createRecord(t, server)

	// A check-out on an absent record violates the state machine.
	rec := doRequest(server, http.MethodPut, "/api/updateAttendance/"+id, "teacher-token", map[string]any{
		"checkOut": "12:00:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAttendance_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodPut, "/api/updateAttendance/missing", "teacher-token", map[string]any{
		"status": "present",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAttendance_Endpoint(t *testing.T) {
	server, repo := newTestServer(t)
	id := createRecord(t, server)

	rec := doRequest(server, http.MethodDelete, "/api/deleteAttendance/"+id, "teacher-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, repo.Len())

	// The confirmation body carries the deleted record.
	var deleted attendanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.Equal(t, id, deleted.AttendanceID)

	rec = doRequest(server, http.MethodDelete, "/api/deleteAttendance/"+id, "teacher-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuth_MissingTokenIsBadRequest(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/api/getAttendance/att1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth_InvalidTokenIsUnauthorized(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/api/getAttendance/att1", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_UnknownRoleIsForbidden(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/api/getAttendance/att1", "admin-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuth_StudentCannotMutate(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodPost, "/api/createAttendance", "student-token", map[string]any{
		"studentId":  "student1",
		"courseId":   "course1",
		"lessonDate": "2026-03-02",
		"status":     "absent",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuth_CourseAverageIsTeacherOnly(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/api/attendances/course/course1/attendance-average", "student-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(server, http.MethodGet, "/api/attendances/course/course1/attendance-average", "teacher-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatisticsEndpoints(t *testing.T) {
	server, _ := newTestServer(t)
	id := createRecord(t, server)

	// Flip the record to present so the percentage is non-zero.
	rec := doRequest(server, http.MethodPut, "/api/updateAttendance/"+id, "teacher-token", map[string]any{
		"status": "present",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(server, http.MethodGet, "/api/attendances/student/student1/course/course1/attendance-percentage", "student-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var percentage query.PercentageReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &percentage))
	assert.Equal(t, 1.0, percentage.TotalCourseLessons)
	assert.Equal(t, 100.0, percentage.AttendancePercentage)

	rec = doRequest(server, http.MethodGet, "/api/attendances/course/course1/attendance-average", "teacher-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var average query.AverageReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &average))
	assert.Equal(t, 1.0, average.AveragePresencesPerLesson)
}

func TestListEndpoints(t *testing.T) {
	server, _ := newTestServer(t)
	createRecord(t, server)

	rec := doRequest(server, http.MethodGet, "/api/getStudentAttendances/student1", "student-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var list []attendanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = doRequest(server, http.MethodGet, "/api/getAttendancesByDay/2026-03-02", "student-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(server, http.MethodGet, "/api/getAttendancesByDay/not-a-date", "student-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
