package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/unicampus-app/unicampus/internal/schedule"
)

// timeNow is a test seam.
var timeNow = time.Now

// Today prints today's classes.
func (a *App) Today(ctx context.Context) error {
	occurrences, err := a.schedule.Today(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load schedule: %s\n", err.Error())
		return err
	}
	if len(occurrences) == 0 {
		fmt.Fprintln(a.out, "No classes today.")
		return nil
	}
	a.printOccurrences(occurrences)
	return nil
}

// Week prints the timetable of the week containing dateArg, or of the
// current week when dateArg is empty.
func (a *App) Week(ctx context.Context, dateArg string) error {
	anchor, err := parseAnchor(dateArg)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: week [yyyy-mm-dd]")
		return err
	}

	occurrences, err := a.schedule.Week(ctx, anchor)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load schedule: %s\n", err.Error())
		return err
	}
	if len(occurrences) == 0 {
		fmt.Fprintln(a.out, "No classes this week.")
		return nil
	}
	a.printOccurrences(occurrences)
	return nil
}

// Export writes the week containing dateArg as an iCalendar file in the
// current directory.
func (a *App) Export(ctx context.Context, dateArg string) error {
	anchor, err := parseAnchor(dateArg)
	if err != nil {
		fmt.Fprintln(a.out, "Usage: export [yyyy-mm-dd]")
		return err
	}

	doc, err := a.schedule.ExportWeekICS(ctx, anchor)
	if err != nil {
		fmt.Fprintf(a.out, "Export failed: %s\n", err.Error())
		return err
	}

	name := fmt.Sprintf("week-%s.ics", anchor.Format("2006-01-02"))
	if err := os.WriteFile(name, []byte(doc), 0o644); err != nil {
		fmt.Fprintf(a.out, "Could not write %s: %s\n", name, err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Wrote %s\n", name)
	return nil
}

func parseAnchor(dateArg string) (time.Time, error) {
	if dateArg == "" {
		return timeNow(), nil
	}
	return time.ParseInLocation("2006-01-02", dateArg, timeNow().Location())
}

func (a *App) printOccurrences(occurrences []schedule.Occurrence) {
	day := -1
	for _, occ := range occurrences {
		if occ.Weekday != day {
			day = occ.Weekday
			fmt.Fprintf(a.out, "%s\n", occ.Date.Format("Monday, 2 January"))
		}
		fmt.Fprintf(a.out, "  %s-%s  %s %s", occ.StartTime, occ.EndTime, occ.CourseCode, occ.CourseTitle)
		if occ.CourseType != "" {
			fmt.Fprintf(a.out, " (%s)", occ.CourseType)
		}
		if occ.Room != "" {
			fmt.Fprintf(a.out, ", room %s", occ.Room)
		}
		if occ.TeacherName != "" {
			fmt.Fprintf(a.out, ", %s", occ.TeacherName)
		}
		fmt.Fprintln(a.out)
	}
}
