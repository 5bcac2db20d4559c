package http

import (
	"encoding/json"
	"net/http"

	"github.com/newunimol/attendance-service/internal/application/command"
	"github.com/newunimol/attendance-service/internal/domain/attendance"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / RESPONSE SHAPES
// ══════════════════════════════════════════════════════════════════════════════

// createAttendanceRequest is the POST /api/createAttendance body. There is no
// checkOut field: an early exit can only be recorded on an existing record.
type createAttendanceRequest struct {
	StudentID  string          `json:"studentId"`
	CourseID   string          `json:"courseId"`
	LessonDate timeutil.Date   `json:"lessonDate"`
	Status     string          `json:"status"`
	CheckIn    *timeutil.Clock `json:"checkIn,omitempty"`
}

// updateAttendanceRequest is the PUT /api/updateAttendance/{id} body. All
// fields are optional; absent fields leave the record untouched.
type updateAttendanceRequest struct {
	Status   *string         `json:"status,omitempty"`
	CheckIn  *timeutil.Clock `json:"checkIn,omitempty"`
	CheckOut *timeutil.Clock `json:"checkOut,omitempty"`
}

// attendanceResponse is the JSON shape of one record.
type attendanceResponse struct {
	AttendanceID string            `json:"attendanceId"`
	StudentID    string            `json:"studentId"`
	CourseID     string            `json:"courseId"`
	LessonDate   timeutil.Date     `json:"lessonDate"`
	Status       attendance.Status `json:"status"`
	CheckIn      *timeutil.Clock   `json:"checkIn,omitempty"`
	CheckOut     *timeutil.Clock   `json:"checkOut,omitempty"`
}

func toResponse(record *attendance.Record) attendanceResponse {
	return attendanceResponse{
		AttendanceID: record.ID,
		StudentID:    record.StudentID,
		CourseID:     record.CourseID,
		LessonDate:   record.LessonDate,
		Status:       record.Status,
		CheckIn:      record.CheckIn,
		CheckOut:     record.CheckOut,
	}
}

func toResponseList(records []*attendance.Record) []attendanceResponse {
	out := make([]attendanceResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toResponse(record))
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body is not valid JSON")
		return
	}

	result, err := s.deps.CreateHandler.Handle(r.Context(), command.CreateAttendanceCommand{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		LessonDate: req.LessonDate,
		Status:     attendance.Status(req.Status),
		CheckIn:    req.CheckIn,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(result.Record))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body is not valid JSON")
		return
	}

	var status *attendance.Status
	if req.Status != nil {
		converted := attendance.Status(*req.Status)
		status = &converted
	}

	result, err := s.deps.UpdateHandler.Handle(r.Context(), command.UpdateAttendanceCommand{
		AttendanceID: r.PathValue("id"),
		Status:       status,
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(result.Record))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.DeleteHandler.Handle(r.Context(), command.DeleteAttendanceCommand{
		AttendanceID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// The deleted record is echoed back, callers use it as the confirmation.
	writeJSON(w, http.StatusOK, toResponse(result.Record))
}

// ══════════════════════════════════════════════════════════════════════════════
// READ HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := s.deps.Queries.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(record))
}

func (s *Server) handleGetByStudent(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Queries.ListByStudent(r.Context(), r.PathValue("studentId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponseList(records))
}

func (s *Server) handleGetByCourse(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Queries.ListByCourse(r.Context(), r.PathValue("courseId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponseList(records))
}

func (s *Server) handleGetByDay(w http.ResponseWriter, r *http.Request) {
	date, err := timeutil.ParseDate(r.PathValue("date"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_date", "Date must be in YYYY-MM-DD format")
		return
	}

	records, err := s.deps.Queries.ListByDate(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponseList(records))
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handlePercentage(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Statistics.StudentCoursePercentage(r.Context(), r.PathValue("studentId"), r.PathValue("courseId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAverage(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Statistics.CourseAverage(r.Context(), r.PathValue("courseId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
