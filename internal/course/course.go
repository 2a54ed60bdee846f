package course

import (
	"fmt"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
)

const (
	MinCredits = 1
	MaxCredits = 4
)

// Course is shared by pointer between the catalog, enrollment records,
// sessions and grade records, so an edit is visible through every holder.
type Course struct {
	ID         int
	Code       string
	Name       string
	Credits    int
	Instructor *identity.Instructor
}

func (c *Course) String() string {
	instructor := "unassigned"
	if c.Instructor != nil {
		instructor = c.Instructor.Name
	}
	return fmt.Sprintf("%s - %s (%d credits) - Instructor: %s", c.Code, c.Name, c.Credits, instructor)
}

// TaughtBy reports whether the instructor is assigned to the course.
func (c *Course) TaughtBy(instructor *identity.Instructor) bool {
	return c.Instructor != nil && instructor != nil && c.Instructor.NIDN == instructor.NIDN
}

// Catalog indexes courses by code and keeps insertion order for listings.
type Catalog struct {
	byCode map[string]*Course
	order  []*Course
}

func NewCatalog() *Catalog {
	return &Catalog{byCode: make(map[string]*Course)}
}

func (c *Catalog) Add(course *Course) error {
	if _, ok := c.byCode[course.Code]; ok {
		return duplicateCode(course.Code)
	}
	c.byCode[course.Code] = course
	c.order = append(c.order, course)
	return nil
}

func (c *Catalog) Get(code string) (*Course, error) {
	if course, ok := c.byCode[code]; ok {
		return course, nil
	}
	return nil, NotFound(code)
}

func (c *Catalog) Has(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

func (c *Catalog) List() []*Course {
	out := make([]*Course, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Catalog) Len() int { return len(c.order) }

// rekey moves a course to a new code after its Code field changed.
func (c *Catalog) rekey(oldCode string, course *Course) {
	delete(c.byCode, oldCode)
	c.byCode[course.Code] = course
}

func (c *Catalog) remove(code string) {
	course, ok := c.byCode[code]
	if !ok {
		return
	}
	delete(c.byCode, code)
	for i, cur := range c.order {
		if cur == course {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// NotFound is the lookup-miss error for a course code.
func NotFound(code string) error {
	return apperr.WithMetadata(apperr.CodeCourseNotFound, "course not found: "+code, map[string]string{"detail": code})
}

func duplicateCode(code string) error {
	return apperr.WithMetadata(apperr.CodeDuplicateCourseCode, "course code already exists: "+code, map[string]string{"detail": code})
}
