package grade

import (
	"context"
	"log/slog"
	"math"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/audit"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/grading"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"

	"github.com/go-playground/validator/v10"
)

// ScoreInput is the validated score form.
type ScoreInput struct {
	Score float64 `validate:"min=0,max=100"`
}

type Config struct {
	// DefaultPolicy applies when score entry names no policy.
	DefaultPolicy string
}

type Service interface {
	EnterScore(ctx context.Context, instructor *identity.Instructor, student *identity.Student, c *course.Course, score float64, policy string) (*Record, error)
	GPA(student *identity.Student) float64
	ClassAverage(instructor *identity.Instructor, c *course.Course) float64
	RecordsFor(student *identity.Student) []*Record
	CourseRoster(instructor *identity.Instructor, c *course.Course) []*Record
	Count() int
	Policies() []string
}

type service struct {
	book     *Book
	policies *grading.Registry
	repo     Repository
	cfg      Config
	validate *validator.Validate
	audit    audit.Recorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(book *Book, policies *grading.Registry, repo Repository, cfg Config, recorder audit.Recorder, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		book:     book,
		policies: policies,
		repo:     repo,
		cfg:      cfg,
		validate: validator.New(),
		audit:    recorder,
		logger:   logger.With(slog.String("component", "grade")),
		metrics:  m,
	}
}

// EnterScore creates or corrects the student's grade for the course. The
// caller is trusted to pass a course the instructor teaches.
func (s *service) EnterScore(ctx context.Context, instructor *identity.Instructor, student *identity.Student, c *course.Course, score float64, policy string) (*Record, error) {
	if math.IsNaN(score) || s.validate.Struct(ScoreInput{Score: score}) != nil {
		return nil, apperr.WithMetadata(apperr.CodeInvalidScore,
			"score must be between 0 and 100", map[string]string{"detail": FormatScore(score)})
	}
	if policy == "" {
		policy = s.cfg.DefaultPolicy
	}
	p, err := s.policies.Resolve(policy)
	if err != nil {
		return nil, err
	}

	record, updated := s.book.Upsert(student, c, score, p, instructor)

	action := audit.ActionCreate
	if updated {
		action = audit.ActionUpdate
	}
	s.metrics.RecordScoreEntered(ctx, p.Name(), updated)
	s.audit.Record(ctx, audit.Stamp(audit.Event{
		Action:   action,
		Entity:   "grade",
		EntityID: student.NIM + "/" + c.Code,
		Actor:    audit.ActorFrom(ctx),
		Details: map[string]string{
			"score":  FormatScore(score),
			"letter": record.Letter,
			"policy": p.Name(),
		},
	}))
	s.logger.InfoContext(ctx, "score entered",
		"nim", student.NIM, "course", c.Code, "letter", record.Letter, "updated", updated)

	if err := s.repo.Save(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist grade", "nim", student.NIM, "course", c.Code, "error", err)
		return record, apperr.Persistence("save grade", err)
	}
	return record, nil
}

// GPA is the credit-weighted mean grade point, rounded to two decimals.
func (s *service) GPA(student *identity.Student) float64 {
	var points float64
	var credits int
	for _, r := range s.RecordsFor(student) {
		points += r.Weight * float64(r.Course.Credits)
		credits += r.Course.Credits
	}
	if credits == 0 {
		return 0
	}
	return round2(points / float64(credits))
}

// ClassAverage is the mean score of the grades the instructor entered for
// the course.
func (s *service) ClassAverage(instructor *identity.Instructor, c *course.Course) float64 {
	roster := s.CourseRoster(instructor, c)
	if len(roster) == 0 {
		return 0
	}
	var total float64
	for _, r := range roster {
		total += r.Score
	}
	return round2(total / float64(len(roster)))
}

func (s *service) RecordsFor(student *identity.Student) []*Record {
	var out []*Record
	for _, r := range s.book.All() {
		if r.Student.NIM == student.NIM {
			out = append(out, r)
		}
	}
	return out
}

func (s *service) CourseRoster(instructor *identity.Instructor, c *course.Course) []*Record {
	var out []*Record
	for _, r := range s.book.All() {
		if r.Course.Code == c.Code && r.EnteredBy != nil && r.EnteredBy.NIDN == instructor.NIDN {
			out = append(out, r)
		}
	}
	return out
}

func (s *service) Count() int {
	return s.book.Len()
}

func (s *service) Policies() []string {
	return s.policies.Names()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
