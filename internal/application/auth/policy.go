// Package auth defines the role-based access policy of the attendance API.
package auth

// Role is a caller role carried in the access token.
type Role string

const (
	// RoleTeacher can manage attendance records and read every report.
	RoleTeacher Role = "DOCENTE"

	// RoleStudent can read records and their own attendance percentage.
	RoleStudent Role = "STUDENTE"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// Operation is one guarded API operation.
type Operation string

const (
	OpCreateAttendance     Operation = "create_attendance"
	OpUpdateAttendance     Operation = "update_attendance"
	OpDeleteAttendance     Operation = "delete_attendance"
	OpReadAttendance       Operation = "read_attendance"
	OpReadPercentageReport Operation = "read_percentage_report"
	OpReadAverageReport    Operation = "read_average_report"
)

// CanPerform reports whether the role is allowed to execute the operation.
// Teachers hold every permission; students are limited to reads, and the
// course average stays teacher-only because it exposes other students'
// presence data in aggregate.
func CanPerform(role Role, op Operation) bool {
	switch op {
	case OpCreateAttendance, OpUpdateAttendance, OpDeleteAttendance, OpReadAverageReport:
		return role == RoleTeacher
	case OpReadAttendance, OpReadPercentageReport:
		return role == RoleTeacher || role == RoleStudent
	default:
		return false
	}
}
