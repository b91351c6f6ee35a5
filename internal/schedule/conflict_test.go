package schedule

import (
	"testing"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(day int, start, end string) models.ScheduleSlot {
	return models.ScheduleSlot{Day: day, StartTime: start, EndTime: end}
}

func TestParseClock(t *testing.T) {
	valid := map[string]Clock{"00:00": 0, "08:30": 510, "23:59": 1439}
	for in, want := range valid {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
		assert.Equal(t, in, got.String())
	}

	for _, in := range []string{"", "8:30", "24:00", "12:60", "ab:cd", "12-30", "12:3", "+1:30", "12:30:00"} {
		_, err := ParseClock(in)
		assert.ErrorIs(t, err, ErrInvalidClock, in)
	}
}

func TestSlotsOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b models.ScheduleSlot
		want bool
	}{
		{"touching boundary", slot(1, "08:00", "09:00"), slot(1, "09:00", "10:00"), false},
		{"partial overlap", slot(1, "08:00", "09:30"), slot(1, "09:00", "10:00"), true},
		{"different day", slot(1, "08:00", "10:00"), slot(2, "08:00", "10:00"), false},
		{"contained", slot(3, "09:15", "09:45"), slot(3, "09:00", "10:00"), true},
		{"identical", slot(0, "13:00", "14:00"), slot(0, "13:00", "14:00"), true},
		{"before", slot(5, "07:00", "08:00"), slot(5, "08:30", "09:00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SlotsOverlap(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			got, err = SlotsOverlap(tt.b, tt.a)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "overlap is symmetric")
		})
	}
}

func TestWindowOf_RejectsBadInput(t *testing.T) {
	_, err := WindowOf(slot(7, "08:00", "09:00"))
	assert.ErrorIs(t, err, ErrInvalidDay)

	_, err = WindowOf(slot(1, "8am", "09:00"))
	assert.ErrorIs(t, err, ErrInvalidClock)

	_, err = WindowOf(slot(1, "08:00", ""))
	assert.ErrorIs(t, err, ErrInvalidClock)
}

func TestFindConflict(t *testing.T) {
	courses := []CourseSlots{
		{CourseID: 1, CourseName: "Algebra", Slots: []models.ScheduleSlot{slot(1, "08:00", "09:00")}},
		{CourseID: 2, CourseName: "Physics", Slots: []models.ScheduleSlot{
			slot(2, "10:00", "11:00"),
			{Day: 3, StartTime: "13:00", EndTime: "15:00", Room: "Lab 2"},
		}},
	}

	conflict, err := FindConflict(slot(3, "14:00", "16:00"), courses, nil)
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, uint(2), conflict.CourseID)
	assert.Equal(t, "Physics", conflict.CourseName)
	assert.Equal(t, "Wednesday 13:00-15:00 (Lab 2)", conflict.Description)
	assert.False(t, conflict.Pending)

	conflict, err = FindConflict(slot(1, "09:00", "10:00"), courses, nil)
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestFindConflict_PendingSlots(t *testing.T) {
	pending := []models.ScheduleSlot{slot(4, "10:00", "12:00")}

	conflict, err := FindConflict(slot(4, "11:00", "11:30"), nil, pending)
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.True(t, conflict.Pending)
	assert.Equal(t, PendingCourseName, conflict.CourseName)
	assert.Equal(t, "Thursday 10:00-12:00", conflict.Description)
}

func TestFindConflict_MalformedTimeIsAnError(t *testing.T) {
	courses := []CourseSlots{{CourseID: 9, Slots: []models.ScheduleSlot{slot(1, "8:00", "09:00")}}}

	_, err := FindConflict(slot(1, "08:00", "09:00"), courses, nil)
	assert.ErrorIs(t, err, ErrInvalidClock)

	_, err = FindConflict(slot(1, "0800", "09:00"), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidClock)
}

func TestValidateSession(t *testing.T) {
	slots := []models.ScheduleSlot{
		slot(1, "08:00", "09:00"),
		slot(1, "09:00", "10:00"),
		slot(1, "09:30", "10:30"),
	}

	conflict, err := ValidateSession(slots, nil)
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.True(t, conflict.Pending)
	assert.Equal(t, "09:00", conflict.Slot.StartTime)

	conflict, err = ValidateSession(slots[:2], nil)
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestExcludeCourse(t *testing.T) {
	courses := []CourseSlots{{CourseID: 1}, {CourseID: 2}, {CourseID: 3}}
	out := ExcludeCourse(courses, 2)
	assert.Len(t, out, 2)
	assert.Equal(t, uint(3), out[1].CourseID)
}
