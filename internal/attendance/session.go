package attendance

import (
	"fmt"
	"time"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
)

const DateLayout = "2006-01-02"

// Session is one dated class meeting. Present students keep check-in order.
type Session struct {
	ID         int
	Course     *course.Course
	Instructor *identity.Instructor
	Date       time.Time
	present    []*identity.Student
}

func (s *Session) String() string {
	return fmt.Sprintf("ID %d - %s - %s", s.ID, s.Course.Name, s.Date.Format(DateLayout))
}

func (s *Session) CheckIn(student *identity.Student) error {
	if s.IsPresent(student) {
		return apperr.WithMetadata(apperr.CodeAlreadyCheckedIn,
			"student already checked in: "+student.NIM, map[string]string{"detail": student.NIM})
	}
	s.present = append(s.present, student)
	return nil
}

func (s *Session) IsPresent(student *identity.Student) bool {
	for _, p := range s.present {
		if p.NIM == student.NIM {
			return true
		}
	}
	return false
}

func (s *Session) Present() []*identity.Student {
	out := make([]*identity.Student, len(s.present))
	copy(out, s.present)
	return out
}

func (s *Session) PresentCount() int { return len(s.present) }

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.CodeInvalidDate, "date must be YYYY-MM-DD", err)
	}
	return t, nil
}

// Ledger stores sessions and hands out ids from a counter that starts at 1
// and never goes back.
type Ledger struct {
	lastID   int
	sessions []*Session
	byID     map[int]*Session
}

func NewLedger() *Ledger {
	return &Ledger{byID: make(map[int]*Session)}
}

func (l *Ledger) open(c *course.Course, instructor *identity.Instructor, date time.Time) *Session {
	l.lastID++
	s := &Session{ID: l.lastID, Course: c, Instructor: instructor, Date: Day(date)}
	l.sessions = append(l.sessions, s)
	l.byID[s.ID] = s
	return s
}

// Restore adds a loaded session and advances the counter past its id.
func (l *Ledger) Restore(s *Session, present ...*identity.Student) {
	s.Date = Day(s.Date)
	s.present = append(s.present, present...)
	l.sessions = append(l.sessions, s)
	l.byID[s.ID] = s
	if s.ID > l.lastID {
		l.lastID = s.ID
	}
}

func (l *Ledger) find(instructor *identity.Instructor, c *course.Course, date time.Time) *Session {
	day := Day(date)
	for _, s := range l.sessions {
		if s.Course.Code == c.Code && s.Instructor.NIDN == instructor.NIDN && s.Date.Equal(day) {
			return s
		}
	}
	return nil
}

func (l *Ledger) Get(id int) (*Session, bool) {
	s, ok := l.byID[id]
	return s, ok
}

func (l *Ledger) All() []*Session {
	out := make([]*Session, len(l.sessions))
	copy(out, l.sessions)
	return out
}

func (l *Ledger) Len() int { return len(l.sessions) }
