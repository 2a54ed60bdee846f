package console

import (
	"context"
	"strings"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/grade"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
)

var studentOptions = []string{
	"View profile",
	"View registration form (KRS)",
	"Register courses",
	"Add a course",
	"Drop a course",
	"Check in to a session",
	"View grades and GPA",
	"Attendance history",
}

func (c *Console) studentMenu(ctx context.Context, s *identity.Student) bool {
	for {
		choice, ok := c.menu("STUDENT MENU ("+s.Name+")", studentOptions)
		if !ok {
			return true
		}
		switch choice {
		case "1":
			c.profile(s, "NIM   : "+s.NIM, "Major : "+s.Program)
		case "2":
			c.viewKRS(s)
		case "3":
			c.registerCourses(ctx, s)
		case "4":
			c.addCourse(ctx, s)
		case "5":
			c.dropCourse(ctx, s)
		case "6":
			c.checkIn(ctx, s)
		case "7":
			c.viewGrades(s)
		case "8":
			c.attendanceHistory(s)
		case "0":
			return false
		default:
			c.invalidChoice()
		}
	}
}

func (c *Console) viewKRS(s *identity.Student) {
	record, err := c.deps.Enrollment.RecordFor(s)
	if err != nil {
		c.fail(err)
		return
	}
	c.header("KRS")
	c.println(record.Render())
}

// registerCourses accepts a comma separated list of numbers or codes.
func (c *Console) registerCourses(ctx context.Context, s *identity.Student) {
	catalog := c.deps.Courses.List()
	c.header("REGISTER COURSES - " + c.deps.Term)
	for i, crs := range catalog {
		c.printf("%d. %s\n", i+1, crs)
	}
	answer, ok := c.prompt("Courses (e.g. 1,3,IF104): ")
	if !ok {
		return
	}

	var selected []*course.Course
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		crs := matchCourse(catalog, part)
		if crs == nil {
			c.fail(course.NotFound(part))
			return
		}
		selected = append(selected, crs)
	}

	record, err := c.deps.Enrollment.Register(ctx, s, selected, c.deps.Term)
	if err != nil {
		c.fail(err)
		if record == nil {
			return
		}
	}
	c.printf("Registered %d course(s), %d credits.\n", record.Len(), record.TotalCredits())
}

func (c *Console) addCourse(ctx context.Context, s *identity.Student) {
	crs, ok := c.pickCourse(c.deps.Courses.List(), "Course to add: ")
	if !ok {
		return
	}
	if err := c.deps.Enrollment.AddCourse(ctx, s, crs); err != nil {
		c.fail(err)
		return
	}
	c.println("Course added: " + crs.Code)
}

func (c *Console) dropCourse(ctx context.Context, s *identity.Student) {
	record, err := c.deps.Enrollment.RecordFor(s)
	if err != nil {
		c.fail(err)
		return
	}
	crs, ok := c.pickCourse(record.Courses(), "Course to drop: ")
	if !ok {
		return
	}
	if err := c.deps.Enrollment.DropCourse(ctx, s, crs); err != nil {
		c.fail(err)
		return
	}
	c.println("Course dropped: " + crs.Code)
}

func (c *Console) checkIn(ctx context.Context, s *identity.Student) {
	sessions := c.deps.Attendance.EligibleSessionsFor(s)
	if len(sessions) == 0 {
		c.println("No open sessions for your courses.")
		return
	}
	c.header("OPEN SESSIONS")
	for i, session := range sessions {
		c.printf("%d. %s\n", i+1, session)
	}
	idx, ok := c.pickIndex(len(sessions), "Session: ")
	if !ok {
		return
	}
	if err := c.deps.Attendance.CheckIn(ctx, s, sessions[idx]); err != nil {
		c.fail(err)
		return
	}
	c.println("Checked in: " + sessions[idx].String())
}

func (c *Console) viewGrades(s *identity.Student) {
	records := c.deps.Grades.RecordsFor(s)
	c.header("GRADES")
	if len(records) == 0 {
		c.println("No grades yet.")
		return
	}
	for _, r := range records {
		c.println(r.String())
	}
	c.printf("GPA: %.2f\n", c.deps.Grades.GPA(s))
}

func (c *Console) attendanceHistory(s *identity.Student) {
	sessions := c.deps.Attendance.History(s)
	c.header("ATTENDANCE HISTORY")
	if len(sessions) == 0 {
		c.println("No attendance recorded.")
		return
	}
	for _, session := range sessions {
		c.println(session.String())
	}
}

// scoreLine is shared with the instructor roster view.
func scoreLine(r *grade.Record) string {
	return r.Student.NIM + " " + r.Student.Name + ": " + grade.FormatScore(r.Score) + " (" + r.Letter + ")"
}
