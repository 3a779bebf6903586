package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Profile(ctx context.Context) error
	Today(ctx context.Context) error
	Week(ctx context.Context, dateArg string) error
	Export(ctx context.Context, dateArg string) error
	Grades(ctx context.Context) error
	Courses(ctx context.Context) error
	Messages(ctx context.Context) error
	ReadMessage(ctx context.Context, id string) error
}

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands when signed out: help, login, reset, exit.
// Commands when signed in: help, profile, today, week [yyyy-mm-dd],
// export [yyyy-mm-dd], grades, courses, messages, read <id>, logout, exit.
//
// Errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("uc> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: profile, today, week [yyyy-mm-dd], export [yyyy-mm-dd], grades, courses, messages, read <id>, logout, exit")
			} else {
				printlnFn("Available commands: login, reset, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "today":
			_ = a.Today(ctx)

		case "week":
			_ = a.Week(ctx, first(args))

		case "export":
			_ = a.Export(ctx, first(args))

		case "grades":
			_ = a.Grades(ctx)

		case "courses":
			_ = a.Courses(ctx)

		case "messages":
			_ = a.Messages(ctx)

		case "read":
			if len(args) == 0 {
				printlnFn("Usage: read <id>")
				continue
			}
			_ = a.ReadMessage(ctx, args[0])

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (a *App) getStatus() string {
	if a.userName != "" {
		return fmt.Sprintf("(%s)", a.userName)
	}
	if a.isLoggedIn() {
		return "(signed in)"
	}
	return ""
}

func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the unicampus CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
