// Package schedule projects weekly recurring class records onto concrete
// calendar dates. Projection is pure: it holds no state and is safe to call
// concurrently from any number of rendering passes.
package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Entry is one recurring weekly class definition, exactly as returned by
// the "my schedule" endpoint.
type Entry struct {
	ScheduleID  string `json:"scheduleId" validate:"required"`
	CourseID    string `json:"courseId"`
	CourseCode  string `json:"courseCode"`
	CourseTitle string `json:"courseTitle" validate:"required"`
	CourseType  string `json:"courseType"` // LECTURE | LAB | SEMINAR
	TeacherName string `json:"teacherName"`
	WeekDay     string `json:"weekDay" validate:"required"` // "Monday".."Sunday" or "1".."7"
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime" validate:"required"`
	Room        string `json:"room"`
	Parity      string `json:"parity"` // odd | even | all
	GroupID     string `json:"groupId"`
	GroupName   string `json:"groupName"`
	GroupIndex  string `json:"groupIndex"`
	Weeks       []int  `json:"weeks"`
}

// Occurrence is a single dated instantiation of an Entry. Occurrences are
// recomputed on every projection and never persisted.
type Occurrence struct {
	ScheduleID  string
	CourseCode  string
	CourseTitle string
	CourseType  string
	TeacherName string
	Room        string
	GroupName   string
	Weekday     int       // ISO weekday, 1 = Monday
	Date        time.Time // midnight local on the concrete day
	StartTime   string    // normalized HH:mm
	EndTime     string    // normalized HH:mm
	DurationMin int
}

// CalendarState is the institution's academic calendar for "today", as
// returned by the academic-calendar endpoint. The week number is an
// institutional counter, not an ISO week number.
type CalendarState struct {
	WeekNumber  int    `json:"weekNumber"`
	Parity      string `json:"parity"` // ODD | EVEN
	CurrentDate string `json:"currentDate"`
}

// Entry parity values. Calendar parity arrives upper-case; comparison is
// case-insensitive.
const (
	ParityOdd  = "odd"
	ParityEven = "even"
	ParityAll  = "all"
)

var weekdayNames = map[string]int{
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
	"sunday":    7,
}

// ParseWeekday converts a weekday as delivered by the backend (an English
// name or a digit) into an ISO weekday number 1..7.
func ParseWeekday(s string) (int, bool) {
	if n, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return n, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 7 {
		return 0, false
	}
	return n, true
}

// isoWeekday returns t's weekday with Monday = 1 and Sunday = 7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// mondayOf returns midnight on the Monday of the calendar week containing t.
func mondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, 1-isoWeekday(day))
}

// parseClock parses "HH:mm" or "HH:mm:ss" into minutes from midnight.
// Seconds are ignored; the schedule grid is minute-grained.
func parseClock(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// formatClock renders minutes from midnight as zero-padded HH:mm, so that
// lexicographic comparison of start times matches chronological order.
func formatClock(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	return pad2(h) + ":" + pad2(m)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
