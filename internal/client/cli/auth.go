package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/unicampus-app/unicampus/internal/client/services"
	"github.com/unicampus-app/unicampus/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for the university email and password and signs in.
// The password byte slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Login(ctx, email, password); err != nil {
		switch {
		case errors.Is(err, common.ErrUnauthorized):
			fmt.Fprintln(a.out, "Wrong email or password.")
		case errors.Is(err, common.ErrNetworkUnavailable):
			fmt.Fprintln(a.out, "Server unreachable, check your connection.")
		default:
			fmt.Fprintf(a.out, "Login failed: %s\n", err.Error())
		}
		return err
	}

	a.userName = email
	fmt.Fprintln(a.out, "Signed in.")
	return nil
}

// Logout ends the backend session and wipes the stored credentials.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Logout failed: %s\n", err.Error())
		return err
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// Profile fetches and prints the signed-in user's profile.
func (a *App) Profile(ctx context.Context) error {
	user, err := a.auth.Profile(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load profile: %s\n", err.Error())
		return err
	}

	fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
	if user.MatriculationNumber != "" {
		fmt.Fprintf(a.out, "Matriculation: %s\n", user.MatriculationNumber)
	}
	if ai := user.AcademicInfo; ai != nil {
		fmt.Fprintf(a.out, "%s, year %d, semester %d, group %s\n", ai.Program, ai.StudyYear, ai.Semester, ai.GroupName)
		if ai.GPA > 0 {
			fmt.Fprintf(a.out, "GPA: %.2f\n", ai.GPA)
		}
	}
	return nil
}

// ResetPassword walks the three-step reset wizard: request a code for the
// given email, verify it, then set a new password.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.GenerateResetCode(ctx, email); err != nil {
		fmt.Fprintf(a.out, "Could not send reset code: %s\n", err.Error())
		return err
	}
	fmt.Fprintln(a.out, "A reset code was sent to your email.")

	code, err := getSimpleText(a.reader, "Enter reset code", a.out)
	if err != nil {
		return err
	}
	if err := a.auth.VerifyResetCode(ctx, email, code); err != nil {
		fmt.Fprintf(a.out, "Code rejected: %s\n", err.Error())
		return err
	}

	password, err := getPassword(a.out, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.ResetPassword(ctx, email, code, password); err != nil {
		if errors.Is(err, services.ErrWeakPassword) {
			fmt.Fprintln(a.out, "Password too weak: use at least 8 characters with mixed case, a digit and a symbol.")
		} else {
			fmt.Fprintf(a.out, "Reset failed: %s\n", err.Error())
		}
		return err
	}

	fmt.Fprintln(a.out, "Password changed, you can now sign in.")
	return nil
}
