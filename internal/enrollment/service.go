package enrollment

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/audit"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"
)

// Config holds the academic load rules.
type Config struct {
	MaxCredits int
	MinCourses int
}

func DefaultConfig() Config {
	return Config{MaxCredits: 24, MinCourses: 1}
}

// View is a read-only snapshot of a registration form.
type View struct {
	Term         string
	Courses      []*course.Course
	TotalCredits int
}

type Service interface {
	Register(ctx context.Context, student *identity.Student, courses []*course.Course, term string) (*Record, error)
	DropCourse(ctx context.Context, student *identity.Student, c *course.Course) error
	AddCourse(ctx context.Context, student *identity.Student, c *course.Course) error
	RecordFor(student *identity.Student) (*Record, error)
	View(student *identity.Student) (View, error)
	ReferencesCourse(code string) bool
	StudentsIn(code string) []*identity.Student
	Count() int
}

type service struct {
	book    *Book
	repo    Repository
	cfg     Config
	audit   audit.Recorder
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(book *Book, repo Repository, cfg Config, recorder audit.Recorder, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		book:    book,
		repo:    repo,
		cfg:     cfg,
		audit:   recorder,
		logger:  logger.With(slog.String("component", "enrollment")),
		metrics: m,
	}
}

// Register creates the student's single registration form. Checks run in a
// fixed order: empty selection, credit cap, existing form, duplicates in
// the selection. On a persistence failure the form is kept and returned
// with the error.
func (s *service) Register(ctx context.Context, student *identity.Student, courses []*course.Course, term string) (*Record, error) {
	if len(courses) == 0 {
		return nil, apperr.New(apperr.CodeEmptySelection, "no courses selected")
	}
	if total := sumCredits(courses); total > s.cfg.MaxCredits {
		return nil, s.capExceeded(total)
	}
	if _, ok := s.book.Get(student.NIM); ok {
		return nil, apperr.WithMetadata(apperr.CodeAlreadyRegistered,
			"student already has a registration form: "+student.NIM, map[string]string{"detail": student.NIM})
	}

	record := NewRecord(student, term)
	for _, c := range courses {
		if err := record.AddCourse(c); err != nil {
			return nil, err
		}
	}
	s.book.Put(record)

	s.metrics.RecordRegistration(ctx)
	s.record(ctx, audit.ActionCreate, student.NIM, map[string]string{
		"term":    term,
		"courses": strconv.Itoa(record.Len()),
		"credits": strconv.Itoa(record.TotalCredits()),
	})
	s.logger.InfoContext(ctx, "registration form created",
		"nim", student.NIM, "courses", record.Len(), "credits", record.TotalCredits())

	if err := s.repo.Save(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist registration form", "nim", student.NIM, "error", err)
		return record, apperr.Persistence("save enrollment", err)
	}
	return record, nil
}

func (s *service) DropCourse(ctx context.Context, student *identity.Student, c *course.Course) error {
	record, err := s.RecordFor(student)
	if err != nil {
		return err
	}
	if !record.HasCourse(c.Code) {
		return course.NotFound(c.Code)
	}
	if record.Len()-1 < s.cfg.MinCourses {
		return apperr.WithMetadata(apperr.CodeMinimumCourseViolation,
			"registration form must keep at least "+strconv.Itoa(s.cfg.MinCourses)+" course(s)",
			map[string]string{"detail": strconv.Itoa(s.cfg.MinCourses)})
	}
	if err := record.RemoveCourse(c); err != nil {
		return err
	}

	s.metrics.RecordCourseDropped(ctx)
	s.record(ctx, audit.ActionUpdate, student.NIM, map[string]string{"dropped": c.Code})

	if err := s.persist(ctx, record, func() error { return s.repo.RemoveCourse(ctx, record, c) }); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist dropped course", "nim", student.NIM, "code", c.Code, "error", err)
		return apperr.Persistence("drop course", err)
	}
	return nil
}

// AddCourse extends an existing form; the credit cap applies to the result.
func (s *service) AddCourse(ctx context.Context, student *identity.Student, c *course.Course) error {
	record, err := s.RecordFor(student)
	if err != nil {
		return err
	}
	if record.HasCourse(c.Code) {
		return apperr.WithMetadata(apperr.CodeDuplicateCourse,
			"course already in registration form: "+c.Code, map[string]string{"detail": c.Code})
	}
	if total := record.TotalCredits() + c.Credits; total > s.cfg.MaxCredits {
		return s.capExceeded(total)
	}
	if err := record.AddCourse(c); err != nil {
		return err
	}

	s.metrics.RecordCourseAdded(ctx)
	s.record(ctx, audit.ActionUpdate, student.NIM, map[string]string{"added": c.Code})

	if err := s.persist(ctx, record, func() error { return s.repo.AddCourse(ctx, record, c) }); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist added course", "nim", student.NIM, "code", c.Code, "error", err)
		return apperr.Persistence("add course", err)
	}
	return nil
}

func (s *service) RecordFor(student *identity.Student) (*Record, error) {
	record, ok := s.book.Get(student.NIM)
	if !ok {
		return nil, apperr.WithMetadata(apperr.CodeNotRegistered,
			"student has no registration form: "+student.NIM, map[string]string{"detail": student.NIM})
	}
	return record, nil
}

func (s *service) View(student *identity.Student) (View, error) {
	record, err := s.RecordFor(student)
	if err != nil {
		return View{}, err
	}
	return View{
		Term:         record.Term,
		Courses:      record.Courses(),
		TotalCredits: record.TotalCredits(),
	}, nil
}

func (s *service) ReferencesCourse(code string) bool {
	for _, r := range s.book.All() {
		if r.HasCourse(code) {
			return true
		}
	}
	return false
}

// StudentsIn lists the students whose form holds the course, in
// registration order.
func (s *service) StudentsIn(code string) []*identity.Student {
	var out []*identity.Student
	for _, r := range s.book.All() {
		if r.HasCourse(code) {
			out = append(out, r.Student)
		}
	}
	return out
}

func (s *service) Count() int {
	return s.book.Len()
}

// persist writes a single detail change. A form whose initial save failed
// has no row yet, so the whole form is saved instead.
func (s *service) persist(ctx context.Context, record *Record, detail func() error) error {
	if record.ID == 0 {
		return s.repo.Save(ctx, record)
	}
	return detail()
}

func (s *service) capExceeded(total int) error {
	return apperr.WithMetadata(apperr.CodeCreditCapExceeded,
		"credit load "+strconv.Itoa(total)+" exceeds "+strconv.Itoa(s.cfg.MaxCredits),
		map[string]string{"detail": strconv.Itoa(total) + "/" + strconv.Itoa(s.cfg.MaxCredits)})
}

func (s *service) record(ctx context.Context, action audit.Action, nim string, details map[string]string) {
	s.audit.Record(ctx, audit.Stamp(audit.Event{
		Action:   action,
		Entity:   "enrollment",
		EntityID: nim,
		Actor:    audit.ActorFrom(ctx),
		Details:  details,
	}))
}
