package schedule

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// timeNow is a test seam for ProjectToday's clock fallback.
var timeNow = time.Now

// ProjectWeek returns the dated occurrences of entries that fall in the
// academic week covering anchor, per cal. Entries are included only when
// their week set contains the current academic week number and their parity
// is "all" or matches the current parity. Malformed entries (bad weekday,
// unparseable times, non-positive duration, missing fields) are dropped
// silently; the caller always receives the clean subset.
//
// A nil cal yields an empty projection: the UI must stay renderable before
// calendar data has loaded, and the academic week numbering is the backend's
// to decide, never recomputed locally.
//
// The result is sorted by weekday ascending, then start time ascending.
func ProjectWeek(entries []Entry, anchor time.Time, cal *CalendarState) []Occurrence {
	out := make([]Occurrence, 0, len(entries))
	if cal == nil {
		return out
	}

	monday := mondayOf(anchor)

	for _, e := range entries {
		if occ, ok := projectEntry(e, monday, cal); ok {
			out = append(out, occ)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weekday != out[j].Weekday {
			return out[i].Weekday < out[j].Weekday
		}
		return out[i].StartTime < out[j].StartTime
	})

	return out
}

// ProjectToday is ProjectWeek restricted to the single weekday matching
// today. It applies the identical week-number and parity tests, as a view of
// the same projection, so the today view and the week view cannot disagree.
// "Today" is taken from cal.CurrentDate (the calendar endpoint is the
// authority), falling back to the local clock when it does not parse.
func ProjectToday(entries []Entry, cal *CalendarState) []Occurrence {
	if cal == nil {
		return []Occurrence{}
	}

	today := timeNow()
	if d, err := time.ParseInLocation("2006-01-02", cal.CurrentDate, today.Location()); err == nil {
		today = d
	}

	week := ProjectWeek(entries, today, cal)
	wd := isoWeekday(today)

	out := make([]Occurrence, 0, len(week))
	for _, occ := range week {
		if occ.Weekday == wd {
			out = append(out, occ)
		}
	}
	return out
}

func projectEntry(e Entry, monday time.Time, cal *CalendarState) (Occurrence, bool) {
	if err := validate.Struct(e); err != nil {
		return Occurrence{}, false
	}

	wd, ok := ParseWeekday(e.WeekDay)
	if !ok {
		return Occurrence{}, false
	}

	if !slices.Contains(e.Weeks, cal.WeekNumber) {
		return Occurrence{}, false
	}
	if !parityMatches(e.Parity, cal.Parity) {
		return Occurrence{}, false
	}

	start, ok := parseClock(e.StartTime)
	if !ok {
		return Occurrence{}, false
	}
	end, ok := parseClock(e.EndTime)
	if !ok {
		return Occurrence{}, false
	}
	if end <= start {
		return Occurrence{}, false
	}

	return Occurrence{
		ScheduleID:  e.ScheduleID,
		CourseCode:  e.CourseCode,
		CourseTitle: e.CourseTitle,
		CourseType:  e.CourseType,
		TeacherName: e.TeacherName,
		Room:        e.Room,
		GroupName:   e.GroupName,
		Weekday:     wd,
		Date:        monday.AddDate(0, 0, wd-1),
		StartTime:   formatClock(start),
		EndTime:     formatClock(end),
		DurationMin: end - start,
	}, true
}

// parityMatches reports whether an entry with entryParity renders during a
// week of calParity. An empty entry parity counts as "all". Entries carry
// lower-case parities while the calendar reports upper-case, hence the
// case-insensitive comparison.
func parityMatches(entryParity, calParity string) bool {
	if entryParity == "" || strings.EqualFold(entryParity, ParityAll) {
		return true
	}
	return strings.EqualFold(entryParity, calParity)
}
