// Package console is the interactive menu layer. It owns all user-facing
// text; domain errors are turned into messages with apperr.UserMessage.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/attendance"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/audit"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/enrollment"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/grade"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
)

// Statistics are the admin overview counts.
type Statistics struct {
	Students    int
	Instructors int
	Courses     int
	Enrollments int
	Sessions    int
	Grades      int
}

// Deps are the services the menus drive.
type Deps struct {
	Auth       *identity.Authenticator
	Directory  *identity.Directory
	Courses    course.Service
	Enrollment enrollment.Service
	Attendance attendance.Service
	Grades     grade.Service
	Stats      func() Statistics
	Term       string
	Logger     *slog.Logger
	// Refresh runs on the console goroutine before each menu is shown.
	Refresh func()
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

type Console struct {
	deps Deps
	in   *bufio.Scanner
	out  io.Writer
}

func New(in io.Reader, out io.Writer, deps Deps) *Console {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Console{
		deps: deps,
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

// Run loops over login prompts until the user types exit, input ends, or
// ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.header("SISTEM AKADEMIK UNIVERSITAS")
		identifier, ok := c.prompt("NIM / NIDN / username (exit to quit): ")
		if !ok || identifier == "exit" {
			c.println("Goodbye.")
			return nil
		}
		password, ok := c.prompt("Password: ")
		if !ok {
			return nil
		}

		user, err := c.deps.Auth.Login(ctx, identity.Credentials{Identifier: identifier, Password: password})
		if err != nil {
			c.fail(err)
			continue
		}
		c.printf("Welcome, %s (%s).\n", user.Base().Name, user.Role())

		sessionCtx := audit.WithActor(ctx, user.Key())
		var quit bool
		switch u := user.(type) {
		case *identity.Student:
			quit = c.studentMenu(sessionCtx, u)
		case *identity.Instructor:
			quit = c.instructorMenu(sessionCtx, u)
		case *identity.Admin:
			quit = c.adminMenu(sessionCtx, u)
		}
		if quit {
			c.println("Goodbye.")
			return nil
		}
		c.println("Logged out.")
	}
}

// menu prints the options and reads a choice. The second result is false
// when the user wants to quit the program.
func (c *Console) menu(title string, options []string) (string, bool) {
	if c.deps.Refresh != nil {
		c.deps.Refresh()
	}
	c.header(title)
	for i, opt := range options {
		c.printf("%d. %s\n", i+1, opt)
	}
	c.println("0. Logout")
	choice, ok := c.prompt("Choice: ")
	if !ok || choice == "exit" {
		return "", false
	}
	return choice, true
}

func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) header(title string) {
	c.printf("\n=== %s ===\n", title)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) fail(err error) {
	c.println("Error: " + apperr.UserMessage(err))
	if apperr.GetCode(err) == apperr.CodeUnknown && c.deps.Logger != nil {
		c.deps.Logger.Error("unexpected error in console", "error", err)
	}
}

func (c *Console) invalidChoice() {
	c.println("Invalid choice.")
}

// pickCourse lists courses and accepts a list number or a course code.
func (c *Console) pickCourse(courses []*course.Course, label string) (*course.Course, bool) {
	if len(courses) == 0 {
		c.println("No courses available.")
		return nil, false
	}
	for i, crs := range courses {
		c.printf("%d. %s\n", i+1, crs)
	}
	answer, ok := c.prompt(label)
	if !ok || answer == "" {
		return nil, false
	}
	if crs := matchCourse(courses, answer); crs != nil {
		return crs, true
	}
	c.fail(course.NotFound(answer))
	return nil, false
}

func matchCourse(courses []*course.Course, answer string) *course.Course {
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(courses) {
		return courses[n-1]
	}
	for _, crs := range courses {
		if strings.EqualFold(crs.Code, answer) {
			return crs
		}
	}
	return nil
}

// pickIndex reads a 1-based position in a list of n items.
func (c *Console) pickIndex(n int, label string) (int, bool) {
	answer, ok := c.prompt(label)
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(answer)
	if err != nil || idx < 1 || idx > n {
		c.invalidChoice()
		return 0, false
	}
	return idx - 1, true
}

func (c *Console) profile(user identity.User, extra ...string) {
	p := user.Base()
	c.header("PROFILE")
	c.printf("Name  : %s\n", p.Name)
	c.printf("Email : %s\n", p.Email)
	c.printf("Role  : %s\n", user.Role())
	for _, line := range extra {
		c.println(line)
	}
}
