package enrollment

import (
	"fmt"
	"strings"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
)

// Record is a student's registration form (KRS) for one term. Courses keep
// their selection order and appear at most once.
type Record struct {
	ID      int
	Student *identity.Student
	Term    string
	courses []*course.Course
}

func NewRecord(student *identity.Student, term string) *Record {
	return &Record{Student: student, Term: term}
}

// AddCourse appends the course unless the form already holds it.
func (r *Record) AddCourse(c *course.Course) error {
	if r.HasCourse(c.Code) {
		return apperr.WithMetadata(apperr.CodeDuplicateCourse,
			"course already in registration form: "+c.Code, map[string]string{"detail": c.Code})
	}
	r.courses = append(r.courses, c)
	return nil
}

func (r *Record) RemoveCourse(c *course.Course) error {
	for i, cur := range r.courses {
		if cur.Code == c.Code {
			r.courses = append(r.courses[:i], r.courses[i+1:]...)
			return nil
		}
	}
	return course.NotFound(c.Code)
}

func (r *Record) HasCourse(code string) bool {
	for _, c := range r.courses {
		if c.Code == code {
			return true
		}
	}
	return false
}

func (r *Record) Courses() []*course.Course {
	out := make([]*course.Course, len(r.courses))
	copy(out, r.courses)
	return out
}

func (r *Record) Len() int { return len(r.courses) }

func (r *Record) TotalCredits() int {
	total := 0
	for _, c := range r.courses {
		total += c.Credits
	}
	return total
}

func (r *Record) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "KRS %s - Semester %s\n", r.Student.Name, r.Term)
	for i, c := range r.courses {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c)
	}
	fmt.Fprintf(&b, "Total credits: %d", r.TotalCredits())
	return b.String()
}

func sumCredits(courses []*course.Course) int {
	total := 0
	for _, c := range courses {
		total += c.Credits
	}
	return total
}

// Book holds one registration form per student, keyed by NIM.
type Book struct {
	byNIM map[string]*Record
	order []*Record
}

func NewBook() *Book {
	return &Book{byNIM: make(map[string]*Record)}
}

func (b *Book) Get(nim string) (*Record, bool) {
	r, ok := b.byNIM[nim]
	return r, ok
}

// Put stores a record; an existing record for the same student is replaced.
func (b *Book) Put(r *Record) {
	if old, ok := b.byNIM[r.Student.NIM]; ok {
		for i, cur := range b.order {
			if cur == old {
				b.order[i] = r
				break
			}
		}
	} else {
		b.order = append(b.order, r)
	}
	b.byNIM[r.Student.NIM] = r
}

func (b *Book) All() []*Record {
	out := make([]*Record, len(b.order))
	copy(out, b.order)
	return out
}

func (b *Book) Len() int { return len(b.order) }
