package console

import (
	"context"
	"strconv"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
)

var adminOptions = []string{
	"List courses",
	"Add course",
	"Edit course",
	"Delete course",
	"List students",
	"List instructors",
	"Statistics",
}

func (c *Console) adminMenu(ctx context.Context, a *identity.Admin) bool {
	for {
		choice, ok := c.menu("ADMIN MENU ("+a.Name+")", adminOptions)
		if !ok {
			return true
		}
		switch choice {
		case "1":
			c.listCourses()
		case "2":
			c.addCatalogCourse(ctx)
		case "3":
			c.editCourse(ctx)
		case "4":
			c.deleteCourse(ctx)
		case "5":
			c.listStudents()
		case "6":
			c.listInstructors()
		case "7":
			c.statistics()
		case "0":
			return false
		default:
			c.invalidChoice()
		}
	}
}

func (c *Console) listCourses() {
	c.header("COURSES")
	courses := c.deps.Courses.List()
	if len(courses) == 0 {
		c.println("The catalog is empty.")
		return
	}
	for i, crs := range courses {
		c.printf("%d. %s\n", i+1, crs)
	}
}

func (c *Console) addCatalogCourse(ctx context.Context) {
	c.header("ADD COURSE")
	code, ok := c.prompt("Code: ")
	if !ok {
		return
	}
	name, ok := c.prompt("Name: ")
	if !ok {
		return
	}
	credits, ok := c.readCredits("Credits (1-4): ")
	if !ok {
		return
	}
	instructor, ok := c.readInstructor("Instructor NIDN (blank for none): ")
	if !ok {
		return
	}

	crs, err := c.deps.Courses.Add(ctx, course.Input{Code: code, Name: name, Credits: credits, Instructor: instructor})
	if err != nil {
		c.fail(err)
		if crs == nil {
			return
		}
	}
	c.println("Course added: " + crs.String())
}

// editCourse keeps a field when its answer is blank; "-" as NIDN
// unassigns the instructor.
func (c *Console) editCourse(ctx context.Context) {
	crs, ok := c.pickCourse(c.deps.Courses.List(), "Course to edit: ")
	if !ok {
		return
	}
	var patch course.Patch

	if code, ok := c.prompt("New code [" + crs.Code + "]: "); !ok {
		return
	} else if code != "" {
		patch.Code = &code
	}
	if name, ok := c.prompt("New name [" + crs.Name + "]: "); !ok {
		return
	} else if name != "" {
		patch.Name = &name
	}
	answer, ok := c.prompt("New credits [" + strconv.Itoa(crs.Credits) + "]: ")
	if !ok {
		return
	}
	if answer != "" {
		credits, err := strconv.Atoi(answer)
		if err != nil {
			c.fail(invalidCreditsInput(answer))
			return
		}
		patch.Credits = &credits
	}
	nidn, ok := c.prompt("New instructor NIDN (blank keeps, - unassigns): ")
	if !ok {
		return
	}
	switch nidn {
	case "":
	case "-":
		patch.Unassign = true
	default:
		instructor, err := c.deps.Directory.InstructorByNIDN(nidn)
		if err != nil {
			c.fail(err)
			return
		}
		patch.Instructor = instructor
	}

	updated, err := c.deps.Courses.Update(ctx, crs.Code, patch)
	if err != nil {
		c.fail(err)
		if updated == nil {
			return
		}
	}
	c.println("Course updated: " + updated.String())
}

func (c *Console) deleteCourse(ctx context.Context) {
	crs, ok := c.pickCourse(c.deps.Courses.List(), "Course to delete: ")
	if !ok {
		return
	}
	confirm, ok := c.prompt("Delete " + crs.Code + "? (y/n): ")
	if !ok || confirm != "y" {
		return
	}
	if err := c.deps.Courses.Delete(ctx, crs.Code); err != nil {
		c.fail(err)
		return
	}
	c.println("Course deleted: " + crs.Code)
}

func (c *Console) listStudents() {
	c.header("STUDENTS")
	for i, s := range c.deps.Directory.Students() {
		c.printf("%d. %s - %s (%s)\n", i+1, s.NIM, s.Name, s.Program)
	}
}

func (c *Console) listInstructors() {
	c.header("INSTRUCTORS")
	for i, in := range c.deps.Directory.Instructors() {
		c.printf("%d. %s - %s (%s)\n", i+1, in.NIDN, in.Name, in.Department)
	}
}

func (c *Console) statistics() {
	if c.deps.Stats == nil {
		return
	}
	st := c.deps.Stats()
	c.header("STATISTICS")
	c.printf("Students            : %d\n", st.Students)
	c.printf("Instructors         : %d\n", st.Instructors)
	c.printf("Courses             : %d\n", st.Courses)
	c.printf("Registration forms  : %d\n", st.Enrollments)
	c.printf("Attendance sessions : %d\n", st.Sessions)
	c.printf("Grade records       : %d\n", st.Grades)
}

func (c *Console) readCredits(label string) (int, bool) {
	answer, ok := c.prompt(label)
	if !ok {
		return 0, false
	}
	credits, err := strconv.Atoi(answer)
	if err != nil {
		c.fail(invalidCreditsInput(answer))
		return 0, false
	}
	return credits, true
}

func (c *Console) readInstructor(label string) (*identity.Instructor, bool) {
	nidn, ok := c.prompt(label)
	if !ok {
		return nil, false
	}
	if nidn == "" {
		return nil, true
	}
	instructor, err := c.deps.Directory.InstructorByNIDN(nidn)
	if err != nil {
		c.fail(err)
		return nil, false
	}
	return instructor, true
}

func invalidCreditsInput(answer string) error {
	return apperr.WithMetadata(apperr.CodeInvalidCredits, "credits is not a number", map[string]string{"detail": answer})
}
