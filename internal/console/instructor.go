package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/attendance"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
)

var instructorOptions = []string{
	"View profile",
	"Courses taught",
	"Open attendance session",
	"Attendance sessions",
	"Enter score",
	"Class roster and average",
}

func (c *Console) instructorMenu(ctx context.Context, i *identity.Instructor) bool {
	for {
		choice, ok := c.menu("INSTRUCTOR MENU ("+i.Name+")", instructorOptions)
		if !ok {
			return true
		}
		switch choice {
		case "1":
			c.profile(i, "NIDN  : "+i.NIDN, "Dept  : "+i.Department)
		case "2":
			c.taughtCourses(i)
		case "3":
			c.openSession(ctx, i)
		case "4":
			c.sessionSummary(i)
		case "5":
			c.enterScore(ctx, i)
		case "6":
			c.classRoster(i)
		case "0":
			return false
		default:
			c.invalidChoice()
		}
	}
}

func (c *Console) taughtCourses(i *identity.Instructor) {
	courses := c.deps.Courses.TaughtBy(i)
	c.header("COURSES TAUGHT")
	if len(courses) == 0 {
		c.println("You are not assigned to any course.")
		return
	}
	for _, crs := range courses {
		c.println(crs.String())
	}
}

func (c *Console) openSession(ctx context.Context, i *identity.Instructor) {
	crs, ok := c.pickCourse(c.deps.Courses.TaughtBy(i), "Course: ")
	if !ok {
		return
	}
	today := c.deps.Now().Format(attendance.DateLayout)
	answer, ok := c.prompt("Date [" + today + "]: ")
	if !ok {
		return
	}
	if answer == "" {
		answer = today
	}
	date, err := attendance.ParseDate(answer)
	if err != nil {
		c.fail(err)
		return
	}

	session, err := c.deps.Attendance.OpenSession(ctx, i, crs, date)
	if err != nil {
		c.fail(err)
		if session == nil {
			return
		}
	}
	c.println("Session opened: " + session.String())
}

func (c *Console) sessionSummary(i *identity.Instructor) {
	summary := c.deps.Attendance.Summary(i)
	c.header("ATTENDANCE SESSIONS")
	if len(summary) == 0 {
		c.println("No sessions yet.")
		return
	}
	for n, line := range summary {
		c.printf("%d. %s (%s) - %d present\n", n+1, line.Session.Course.Name,
			line.Session.Date.Format(attendance.DateLayout), line.PresentCount)
	}
}

// enterScore picks one of the instructor's courses, then a student holding
// it in their registration form.
func (c *Console) enterScore(ctx context.Context, i *identity.Instructor) {
	crs, ok := c.pickCourse(c.deps.Courses.TaughtBy(i), "Course: ")
	if !ok {
		return
	}
	students := c.deps.Enrollment.StudentsIn(crs.Code)
	if len(students) == 0 {
		c.println("No students have registered for this course.")
		return
	}
	for n, s := range students {
		c.printf("%d. %s - %s\n", n+1, s.NIM, s.Name)
	}
	idx, ok := c.pickIndex(len(students), "Student: ")
	if !ok {
		return
	}

	answer, ok := c.prompt("Score (0-100): ")
	if !ok {
		return
	}
	score, err := strconv.ParseFloat(strings.ReplaceAll(answer, ",", "."), 64)
	if err != nil {
		c.fail(apperr.WithMetadata(apperr.CodeInvalidScore, "score is not a number", map[string]string{"detail": answer}))
		return
	}
	policy, ok := c.prompt("Policy (" + strings.Join(c.deps.Grades.Policies(), "/") + ", blank for default): ")
	if !ok {
		return
	}

	record, err := c.deps.Grades.EnterScore(ctx, i, students[idx], crs, score, policy)
	if err != nil {
		c.fail(err)
		if record == nil {
			return
		}
	}
	c.println("Grade saved: " + record.String())
}

func (c *Console) classRoster(i *identity.Instructor) {
	crs, ok := c.pickCourse(c.deps.Courses.TaughtBy(i), "Course: ")
	if !ok {
		return
	}
	roster := c.deps.Grades.CourseRoster(i, crs)
	c.header("ROSTER " + crs.Code)
	if len(roster) == 0 {
		c.println("No grades entered yet.")
		return
	}
	for _, r := range roster {
		c.println(scoreLine(r))
	}
	c.printf("Class average: %.2f\n", c.deps.Grades.ClassAverage(i, crs))
}
