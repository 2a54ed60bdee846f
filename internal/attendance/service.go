package attendance

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/audit"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/enrollment"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"
)

// Enrollments resolves a student's registration form.
type Enrollments interface {
	RecordFor(student *identity.Student) (*enrollment.Record, error)
}

// SummaryLine is one row of an instructor's session overview.
type SummaryLine struct {
	Session      *Session
	PresentCount int
}

type Service interface {
	OpenSession(ctx context.Context, instructor *identity.Instructor, c *course.Course, date time.Time) (*Session, error)
	EligibleSessionsFor(student *identity.Student) []*Session
	CheckIn(ctx context.Context, student *identity.Student, session *Session) error
	SessionsByInstructor(instructor *identity.Instructor) []*Session
	Summary(instructor *identity.Instructor) []SummaryLine
	History(student *identity.Student) []*Session
	Present(id int) ([]*identity.Student, error)
	Session(id int) (*Session, error)
	Count() int
}

type service struct {
	ledger      *Ledger
	enrollments Enrollments
	repo        Repository
	audit       audit.Recorder
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewService(ledger *Ledger, enrollments Enrollments, repo Repository, recorder audit.Recorder, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		ledger:      ledger,
		enrollments: enrollments,
		repo:        repo,
		audit:       recorder,
		logger:      logger.With(slog.String("component", "attendance")),
		metrics:     m,
	}
}

// OpenSession trusts the caller to pass a course the instructor teaches.
func (s *service) OpenSession(ctx context.Context, instructor *identity.Instructor, c *course.Course, date time.Time) (*Session, error) {
	if existing := s.ledger.find(instructor, c, date); existing != nil {
		return nil, apperr.WithMetadata(apperr.CodeDuplicateSession,
			"session already open for "+c.Code+" on "+existing.Date.Format(DateLayout),
			map[string]string{"detail": c.Code + " " + existing.Date.Format(DateLayout)})
	}

	session := s.ledger.open(c, instructor, date)

	s.metrics.RecordSessionOpened(ctx)
	s.record(ctx, audit.ActionCreate, session.ID, map[string]string{
		"course": c.Code,
		"date":   session.Date.Format(DateLayout),
	})
	s.logger.InfoContext(ctx, "attendance session opened", "id", session.ID, "course", c.Code)

	if err := s.repo.SaveSession(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist session", "id", session.ID, "error", err)
		return session, apperr.Persistence("save session", err)
	}
	return session, nil
}

// EligibleSessionsFor lists sessions of registered courses the student has
// not checked in to. No registration form means no sessions.
func (s *service) EligibleSessionsFor(student *identity.Student) []*Session {
	record, err := s.enrollments.RecordFor(student)
	if err != nil {
		return nil
	}
	var out []*Session
	for _, session := range s.ledger.All() {
		if record.HasCourse(session.Course.Code) && !session.IsPresent(student) {
			out = append(out, session)
		}
	}
	return out
}

func (s *service) CheckIn(ctx context.Context, student *identity.Student, session *Session) error {
	record, err := s.enrollments.RecordFor(student)
	if err != nil || !record.HasCourse(session.Course.Code) {
		return apperr.WithMetadata(apperr.CodeNotEnrolled,
			"student is not enrolled in "+session.Course.Code, map[string]string{"detail": session.Course.Code})
	}
	if err := session.CheckIn(student); err != nil {
		return err
	}

	s.metrics.RecordCheckIn(ctx)
	s.record(ctx, audit.ActionUpdate, session.ID, map[string]string{"checked_in": student.NIM})

	if err := s.repo.SaveCheckIn(ctx, session, student); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist check-in", "id", session.ID, "nim", student.NIM, "error", err)
		return apperr.Persistence("save check-in", err)
	}
	return nil
}

func (s *service) SessionsByInstructor(instructor *identity.Instructor) []*Session {
	var out []*Session
	for _, session := range s.ledger.All() {
		if session.Instructor.NIDN == instructor.NIDN {
			out = append(out, session)
		}
	}
	return out
}

func (s *service) Summary(instructor *identity.Instructor) []SummaryLine {
	sessions := s.SessionsByInstructor(instructor)
	out := make([]SummaryLine, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, SummaryLine{Session: session, PresentCount: session.PresentCount()})
	}
	return out
}

func (s *service) History(student *identity.Student) []*Session {
	var out []*Session
	for _, session := range s.ledger.All() {
		if session.IsPresent(student) {
			out = append(out, session)
		}
	}
	return out
}

func (s *service) Present(id int) ([]*identity.Student, error) {
	session, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	return session.Present(), nil
}

func (s *service) Session(id int) (*Session, error) {
	session, ok := s.ledger.Get(id)
	if !ok {
		return nil, apperr.WithMetadata(apperr.CodeSessionNotFound,
			"session not found: "+strconv.Itoa(id), map[string]string{"detail": strconv.Itoa(id)})
	}
	return session, nil
}

func (s *service) Count() int {
	return s.ledger.Len()
}

func (s *service) record(ctx context.Context, action audit.Action, id int, details map[string]string) {
	s.audit.Record(ctx, audit.Stamp(audit.Event{
		Action:   action,
		Entity:   "attendance",
		EntityID: strconv.Itoa(id),
		Actor:    audit.ActorFrom(ctx),
		Details:  details,
	}))
}
