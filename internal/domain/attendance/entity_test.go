package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/newunimol/attendance-service/internal/domain/shared"
	"github.com/newunimol/attendance-service/pkg/timeutil"
)

func clockPtr(h, m, s int) *timeutil.Clock {
	c := timeutil.NewClock(h, m, s)
	return &c
}

func statusPtr(s Status) *Status {
	return &s
}

func TestNewRecord_CheckOutAlwaysUnset(t *testing.T) {
	in := CreateInput{
		StudentID:  "student1",
		CourseID:   "course1",
		LessonDate: timeutil.NewDate(2026, 3, 10),
		Status:     StatusPresent,
		CheckIn:    clockPtr(9, 15, 0),
	}

	record := NewRecord("att1", in)

	assert.Equal(t, "att1", record.ID)
	assert.Equal(t, StatusPresent, record.Status)
	assert.NotNil(t, record.CheckIn)
	assert.Nil(t, record.CheckOut)
}

func TestCreateInput_Validate(t *testing.T) {
	valid := CreateInput{
		StudentID:  "student1",
		CourseID:   "course1",
		LessonDate: timeutil.NewDate(2026, 3, 10),
		Status:     StatusAbsent,
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.StudentID = ""
	assert.Error(t, missing.Validate())

	badStatus := valid
	badStatus.Status = "late"
	err := badStatus.Validate()
	assert.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestApply_CheckInOnlyWhileAbsent(t *testing.T) {
	record := NewRecord("att1", CreateInput{
		StudentID:  "student1",
		CourseID:   "course1",
		LessonDate: timeutil.NewDate(2026, 3, 10),
		Status:     StatusAbsent,
	})

	err := record.Apply(Patch{CheckIn: clockPtr(9, 30, 0)})
	assert.NoError(t, err)
	assert.Equal(t, "09:30:00", record.CheckIn.String())

	// Once present, a further check-in is rejected.
	record.Status = StatusPresent
	err = record.Apply(Patch{CheckIn: clockPtr(10, 0, 0)})
	assert.True(t, shared.IsInvalidTransition(err))
	assert.Equal(t, "09:30:00", record.CheckIn.String())
}

func TestApply_CheckOutOnlyWhilePresent(t *testing.T) {
	record := NewRecord("att1", CreateInput{
		StudentID:  "student1",
		CourseID:   "course1",
		LessonDate: timeutil.NewDate(2026, 3, 10),
		Status:     StatusAbsent,
	})

	err := record.Apply(Patch{CheckOut: clockPtr(12, 0, 0)})
	assert.True(t, shared.IsInvalidTransition(err))
	assert.Nil(t, record.CheckOut)

	record.Status = StatusPresent
	err = record.Apply(Patch{CheckOut: clockPtr(12, 0, 0)})
	assert.NoError(t, err)
	assert.Equal(t, "12:00:00", record.CheckOut.String())
}

func TestApply_ValidatesAgainstPrePatchStatus(t *testing.T) {
	// Setting present and a check-out in the same patch must fail: the gate
	// looks at the status before the patch, which is absent.
	record := NewRecord("att1", CreateInput{
		StudentID:  "student1",
		CourseID:   "course1",
		LessonDate: timeutil.NewDate(2026, 3, 10),
		Status:     StatusAbsent,
	})

	err := record.Apply(Patch{
		Status:   statusPtr(StatusPresent),
		CheckOut: clockPtr(12, 0, 0),
	})
	assert.True(t, shared.IsInvalidTransition(err))

	// Nothing was applied.
	assert.Equal(t, StatusAbsent, record.Status)
	assert.Nil(t, record.CheckOut)
}

func TestApply_AllOrNothing(t *testing.T) {
	record := NewRecord("att1", CreateInput{
		StudentID:  "student1",
		CourseID:   "course1",
		LessonDate: timeutil.NewDate(2026, 3, 10),
		Status:     StatusPresent,
	})

	// Valid check-out plus an invalid check-in: neither lands.
	err := record.Apply(Patch{
		CheckIn:  clockPtr(9, 0, 0),
		CheckOut: clockPtr(12, 0, 0),
	})
	assert.True(t, shared.IsInvalidTransition(err))
	assert.Nil(t, record.CheckIn)
	assert.Nil(t, record.CheckOut)
}

func TestApply_StatusFlipsFreely(t *testing.T) {
	record := NewRecord("att1", CreateInput{
		StudentID:  "student1",
		CourseID:   "course1",
		LessonDate: timeutil.NewDate(2026, 3, 10),
		Status:     StatusAbsent,
	})

	assert.NoError(t, record.Apply(Patch{Status: statusPtr(StatusPresent)}))
	assert.Equal(t, StatusPresent, record.Status)

	assert.NoError(t, record.Apply(Patch{Status: statusPtr(StatusAbsent)}))
	assert.Equal(t, StatusAbsent, record.Status)
}

func TestApply_RejectsUnknownStatus(t *testing.T) {
	record := NewRecord("att1", CreateInput{
		StudentID:  "student1",
		CourseID:   "course1",
		LessonDate: timeutil.NewDate(2026, 3, 10),
		Status:     StatusAbsent,
	})

	bad := Status("late")
	err := record.Apply(Patch{Status: &bad})
	assert.True(t, shared.IsValidation(err))
	assert.Equal(t, StatusAbsent, record.Status)
}

func TestClone_IsDeep(t *testing.T) {
	record := NewRecord("att1", CreateInput{
		StudentID:  "student1",
		CourseID:   "course1",
		LessonDate: timeutil.NewDate(2026, 3, 10),
		Status:     StatusAbsent,
		CheckIn:    clockPtr(9, 0, 0),
	})

	clone := record.Clone()
	clone.Status = StatusPresent
	*clone.CheckIn = timeutil.NewClock(10, 0, 0)

	assert.Equal(t, StatusAbsent, record.Status)
	assert.Equal(t, "09:00:00", record.CheckIn.String())
}
