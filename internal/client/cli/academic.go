package cli

import (
	"context"
	"fmt"
)

// Grades prints the grade book grouped by year and semester.
func (a *App) Grades(ctx context.Context) error {
	years, err := a.academic.Grades(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load grades: %s\n", err.Error())
		return err
	}
	if len(years) == 0 {
		fmt.Fprintln(a.out, "No grades yet.")
		return nil
	}

	for _, year := range years {
		fmt.Fprintf(a.out, "Year %d\n", year.Year)
		for _, sem := range year.Semesters {
			fmt.Fprintf(a.out, "  Semester %d\n", sem.Semester)
			for _, c := range sem.Courses {
				fmt.Fprintf(a.out, "    %-8s %-40s %5.2f  %s\n", c.Code, c.Title, c.TotalGrade, c.Status)
			}
		}
	}
	return nil
}

// Courses prints the enrolled courses.
func (a *App) Courses(ctx context.Context) error {
	courses, err := a.academic.Courses(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load courses: %s\n", err.Error())
		return err
	}
	if len(courses) == 0 {
		fmt.Fprintln(a.out, "No enrolled courses.")
		return nil
	}

	for _, c := range courses {
		fmt.Fprintf(a.out, "%-8s %-40s %-10s %d ECTS", c.Code, c.Title, c.Type, c.Credits)
		if c.Instructor != "" {
			fmt.Fprintf(a.out, "  %s", c.Instructor)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

// Messages prints the inbox.
func (a *App) Messages(ctx context.Context) error {
	msgs, err := a.academic.Messages(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load messages: %s\n", err.Error())
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "Inbox is empty.")
		return nil
	}

	for _, m := range msgs {
		marker := " "
		if m.Unread {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s [%s] %s: %s\n", marker, m.ID, m.Sender, m.Subject)
	}
	return nil
}

// ReadMessage marks one message as read and prints its body.
func (a *App) ReadMessage(ctx context.Context, id string) error {
	msgs, err := a.academic.Messages(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load messages: %s\n", err.Error())
		return err
	}

	for _, m := range msgs {
		if m.ID != id {
			continue
		}
		fmt.Fprintf(a.out, "From: %s\nSubject: %s\n\n%s\n", m.Sender, m.Subject, m.Body)
		if m.Unread {
			if err := a.academic.MarkMessageRead(ctx, id); err != nil {
				fmt.Fprintf(a.out, "Could not mark as read: %s\n", err.Error())
				return err
			}
		}
		return nil
	}

	fmt.Fprintf(a.out, "No message with id %s\n", id)
	return nil
}
