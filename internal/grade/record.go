package grade

import (
	"fmt"
	"strconv"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/grading"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
)

// Record is the single grade a student holds for a course. Letter and
// Weight are derived from Score under Policy.
type Record struct {
	ID        int
	Student   *identity.Student
	Course    *course.Course
	Score     float64
	Letter    string
	Weight    float64
	Policy    string
	EnteredBy *identity.Instructor
}

func (r *Record) String() string {
	return fmt.Sprintf("%s - %s: %s (%s)", r.Course.Code, r.Course.Name, FormatScore(r.Score), r.Letter)
}

func (r *Record) apply(score float64, policy grading.Policy, by *identity.Instructor) {
	g := policy.Convert(score)
	r.Score = score
	r.Letter = g.Letter
	r.Weight = g.Weight
	r.Policy = policy.Name()
	if r.EnteredBy == nil {
		r.EnteredBy = by
	}
}

// FormatScore prints a score without trailing zeros.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// Book holds grade records in entry order, at most one per student and course.
type Book struct {
	records []*Record
}

func NewBook() *Book {
	return &Book{}
}

func (b *Book) Find(nim, code string) *Record {
	for _, r := range b.records {
		if r.Student.NIM == nim && r.Course.Code == code {
			return r
		}
	}
	return nil
}

// Upsert overwrites the existing record for the pair or appends a new one.
// A correction keeps the instructor who entered the grade first. The second
// result reports whether an existing record was updated.
func (b *Book) Upsert(student *identity.Student, c *course.Course, score float64, policy grading.Policy, by *identity.Instructor) (*Record, bool) {
	if r := b.Find(student.NIM, c.Code); r != nil {
		r.apply(score, policy, by)
		return r, true
	}
	r := &Record{Student: student, Course: c}
	r.apply(score, policy, by)
	b.records = append(b.records, r)
	return r, false
}

// Restore adds a loaded record as is.
func (b *Book) Restore(r *Record) {
	b.records = append(b.records, r)
}

func (b *Book) All() []*Record {
	out := make([]*Record, len(b.records))
	copy(out, b.records)
	return out
}

func (b *Book) Len() int { return len(b.records) }
