// Package schedule detects overlapping weekly course slots.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SAP-F-2025/classroom-service/internal/models"
)

var (
	ErrInvalidClock = errors.New("invalid time, expected HH:MM")
	ErrInvalidDay   = errors.New("invalid day of week, expected 0-6")
)

// PendingCourseName names the owner of slots that are not saved yet.
const PendingCourseName = "this form"

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses a strict two-digit "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := parseDigits(s[:2])
	if err != nil || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := parseDigits(s[3:])
	if err != nil || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(h*60 + m), nil
}

func parseDigits(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Window is a parsed slot: one weekday and a [Start, End) time range.
type Window struct {
	Day   int
	Start Clock
	End   Clock
}

// WindowOf validates and parses a slot.
func WindowOf(slot models.ScheduleSlot) (Window, error) {
	if slot.Day < 0 || slot.Day > 6 {
		return Window{}, fmt.Errorf("%w: %d", ErrInvalidDay, slot.Day)
	}
	start, err := ParseClock(slot.StartTime)
	if err != nil {
		return Window{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := ParseClock(slot.EndTime)
	if err != nil {
		return Window{}, fmt.Errorf("end_time: %w", err)
	}
	return Window{Day: slot.Day, Start: start, End: end}, nil
}

// Overlaps reports whether two windows share a weekday and intersect as
// half-open intervals. Touching boundaries do not overlap.
func Overlaps(a, b Window) bool {
	return a.Day == b.Day && a.Start < b.End && a.End > b.Start
}

// SlotsOverlap parses both slots and compares them.
func SlotsOverlap(a, b models.ScheduleSlot) (bool, error) {
	wa, err := WindowOf(a)
	if err != nil {
		return false, err
	}
	wb, err := WindowOf(b)
	if err != nil {
		return false, err
	}
	return Overlaps(wa, wb), nil
}

// CourseSlots is the persisted schedule of one course.
type CourseSlots struct {
	CourseID   uint
	CourseName string
	Slots      []models.ScheduleSlot
}

// FromCourse collects the schedule of a stored course.
func FromCourse(c *models.Course) CourseSlots {
	return CourseSlots{CourseID: c.ID, CourseName: c.Name, Slots: c.Schedule}
}

type Conflict struct {
	Slot        models.ScheduleSlot `json:"slot"`
	CourseID    uint                `json:"course_id"`
	CourseName  string              `json:"course_name"`
	Description string              `json:"description"`
	Pending     bool                `json:"pending"`
}

func (c *Conflict) String() string {
	return fmt.Sprintf("conflicts with %s: %s", c.CourseName, c.Description)
}

// Describe renders a slot for people, e.g. "Monday 08:00-09:00 (Room 101)".
func Describe(slot models.ScheduleSlot) string {
	day := "Day " + strconv.Itoa(slot.Day)
	if slot.Day >= 0 && slot.Day <= 6 {
		day = time.Weekday(slot.Day).String()
	}
	desc := fmt.Sprintf("%s %s-%s", day, slot.StartTime, slot.EndTime)
	if slot.Room != "" {
		desc += " (" + slot.Room + ")"
	}
	return desc
}

// FindConflict returns the first slot that overlaps candidate, looking at
// the stored courses in order and then at the unsaved slots of the same
// form. Every time string is validated before any comparison.
func FindConflict(candidate models.ScheduleSlot, courses []CourseSlots, pending []models.ScheduleSlot) (*Conflict, error) {
	want, err := WindowOf(candidate)
	if err != nil {
		return nil, err
	}

	for _, course := range courses {
		for _, slot := range course.Slots {
			w, err := WindowOf(slot)
			if err != nil {
				return nil, fmt.Errorf("course %d: %w", course.CourseID, err)
			}
			if Overlaps(want, w) {
				return &Conflict{
					Slot:        slot,
					CourseID:    course.CourseID,
					CourseName:  course.CourseName,
					Description: Describe(slot),
				}, nil
			}
		}
	}

	for _, slot := range pending {
		w, err := WindowOf(slot)
		if err != nil {
			return nil, err
		}
		if Overlaps(want, w) {
			return &Conflict{
				Slot:        slot,
				CourseName:  PendingCourseName,
				Description: Describe(slot),
				Pending:     true,
			}, nil
		}
	}

	return nil, nil
}

// ValidateSession checks every slot of one form submission against the
// stored courses and against the slots listed before it.
func ValidateSession(slots []models.ScheduleSlot, courses []CourseSlots) (*Conflict, error) {
	for i, slot := range slots {
		conflict, err := FindConflict(slot, courses, slots[:i])
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		if conflict != nil {
			return conflict, nil
		}
	}
	return nil, nil
}

// ExcludeCourse drops one course, used when a course's own schedule is
// being replaced.
func ExcludeCourse(courses []CourseSlots, courseID uint) []CourseSlots {
	out := make([]CourseSlots, 0, len(courses))
	for _, c := range courses {
		if c.CourseID != courseID {
			out = append(out, c)
		}
	}
	return out
}
