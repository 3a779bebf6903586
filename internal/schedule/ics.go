package schedule

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ExportICS renders a set of projected occurrences as an iCalendar document,
// one VEVENT per occurrence, with start/end in the occurrence's location.
// Useful for handing a projected week to any external calendar app.
func ExportICS(occurrences []Occurrence) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//unicampus//schedule//EN")

	for _, occ := range occurrences {
		start, ok := eventTime(occ.Date, occ.StartTime)
		if !ok {
			return "", fmt.Errorf("occurrence %s: bad start time %q", occ.ScheduleID, occ.StartTime)
		}

		ev := cal.AddEvent(fmt.Sprintf("%s-%s@unicampus", occ.ScheduleID, occ.Date.Format("20060102")))
		ev.SetDtStampTime(time.Now())
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(time.Duration(occ.DurationMin) * time.Minute))
		ev.SetSummary(summaryOf(occ))
		if occ.Room != "" {
			ev.SetLocation(occ.Room)
		}
		if desc := descriptionOf(occ); desc != "" {
			ev.SetDescription(desc)
		}
	}

	return cal.Serialize(), nil
}

func summaryOf(occ Occurrence) string {
	if occ.CourseCode != "" {
		return occ.CourseCode + " " + occ.CourseTitle
	}
	return occ.CourseTitle
}

func descriptionOf(occ Occurrence) string {
	desc := ""
	if occ.CourseType != "" {
		desc = occ.CourseType
	}
	if occ.TeacherName != "" {
		if desc != "" {
			desc += ", "
		}
		desc += occ.TeacherName
	}
	if occ.GroupName != "" {
		if desc != "" {
			desc += ", "
		}
		desc += occ.GroupName
	}
	return desc
}

func eventTime(date time.Time, clock string) (time.Time, bool) {
	minutes, ok := parseClock(clock)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		minutes/60, minutes%60, 0, 0, date.Location()), true
}
