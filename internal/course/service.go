package course

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/audit"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"

	"github.com/go-playground/validator/v10"
)

// Input is the admin form for a new course.
type Input struct {
	Code       string `validate:"required"`
	Name       string `validate:"required"`
	Credits    int    `validate:"min=1,max=4"`
	Instructor *identity.Instructor
}

// Patch lists the fields to change on an existing course. Nil fields are
// left alone; Unassign clears the instructor.
type Patch struct {
	Code       *string
	Name       *string
	Credits    *int
	Instructor *identity.Instructor
	Unassign   bool
}

// ReferenceChecker reports whether any registration form holds a course.
type ReferenceChecker interface {
	ReferencesCourse(code string) bool
}

type Service interface {
	Add(ctx context.Context, in Input) (*Course, error)
	Update(ctx context.Context, code string, patch Patch) (*Course, error)
	Delete(ctx context.Context, code string) error
	Get(code string) (*Course, error)
	List() []*Course
	TaughtBy(instructor *identity.Instructor) []*Course
}

type service struct {
	catalog  *Catalog
	repo     Repository
	refs     ReferenceChecker
	validate *validator.Validate
	audit    audit.Recorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(catalog *Catalog, repo Repository, refs ReferenceChecker, recorder audit.Recorder, logger *slog.Logger, m *metrics.Metrics) Service {
	return &service{
		catalog:  catalog,
		repo:     repo,
		refs:     refs,
		validate: validator.New(),
		audit:    recorder,
		logger:   logger.With(slog.String("component", "course")),
		metrics:  m,
	}
}

// Add validates and stores a new course. On a persistence failure the
// course stays in the catalog and is returned together with the error.
func (s *service) Add(ctx context.Context, in Input) (*Course, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if s.catalog.Has(in.Code) {
		return nil, duplicateCode(in.Code)
	}

	c := &Course{Code: in.Code, Name: in.Name, Credits: in.Credits, Instructor: in.Instructor}
	if err := s.catalog.Add(c); err != nil {
		return nil, err
	}

	s.metrics.RecordCatalogChange(ctx, "create")
	s.record(ctx, audit.ActionCreate, c.Code, map[string]string{
		"name":    c.Name,
		"credits": strconv.Itoa(c.Credits),
	})

	if err := s.repo.Save(ctx, c); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist course", "code", c.Code, "error", err)
		return c, apperr.Persistence("save course", err)
	}
	s.logger.InfoContext(ctx, "course added", "code", c.Code)
	return c, nil
}

// Update applies the patch only when every changed field is valid.
func (s *service) Update(ctx context.Context, code string, patch Patch) (*Course, error) {
	c, err := s.catalog.Get(code)
	if err != nil {
		return nil, err
	}

	newCode, newName, newCredits := c.Code, c.Name, c.Credits
	if patch.Code != nil {
		newCode = strings.TrimSpace(*patch.Code)
		if newCode == "" {
			return nil, apperr.WithMetadata(apperr.CodeMissingField, "course code is required", map[string]string{"detail": "code"})
		}
		if newCode != c.Code && s.catalog.Has(newCode) {
			return nil, duplicateCode(newCode)
		}
	}
	if patch.Name != nil {
		newName = strings.TrimSpace(*patch.Name)
		if newName == "" {
			return nil, apperr.WithMetadata(apperr.CodeMissingField, "course name is required", map[string]string{"detail": "name"})
		}
	}
	if patch.Credits != nil {
		newCredits = *patch.Credits
		if newCredits < MinCredits || newCredits > MaxCredits {
			return nil, invalidCredits(newCredits)
		}
	}

	oldCode := c.Code
	c.Code, c.Name, c.Credits = newCode, newName, newCredits
	switch {
	case patch.Unassign:
		c.Instructor = nil
	case patch.Instructor != nil:
		c.Instructor = patch.Instructor
	}
	if oldCode != c.Code {
		s.catalog.rekey(oldCode, c)
	}

	s.metrics.RecordCatalogChange(ctx, "update")
	details := map[string]string{"name": c.Name, "credits": strconv.Itoa(c.Credits)}
	if oldCode != c.Code {
		details["old_code"] = oldCode
	}
	s.record(ctx, audit.ActionUpdate, c.Code, details)

	if err := s.repo.Update(ctx, c, oldCode); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist course update", "code", c.Code, "error", err)
		return c, apperr.Persistence("update course", err)
	}
	return c, nil
}

// Delete refuses while any registration form references the course.
func (s *service) Delete(ctx context.Context, code string) error {
	c, err := s.catalog.Get(code)
	if err != nil {
		return err
	}
	if s.refs != nil && s.refs.ReferencesCourse(c.Code) {
		return apperr.WithMetadata(apperr.CodeCourseInUse,
			"course is referenced by a registration form: "+c.Code, map[string]string{"detail": c.Code})
	}

	s.catalog.remove(c.Code)
	s.metrics.RecordCatalogChange(ctx, "delete")
	s.record(ctx, audit.ActionDelete, c.Code, nil)

	if err := s.repo.Delete(ctx, c.Code); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist course deletion", "code", c.Code, "error", err)
		return apperr.Persistence("delete course", err)
	}
	return nil
}

func (s *service) Get(code string) (*Course, error) {
	return s.catalog.Get(strings.TrimSpace(code))
}

func (s *service) List() []*Course {
	return s.catalog.List()
}

func (s *service) TaughtBy(instructor *identity.Instructor) []*Course {
	var out []*Course
	for _, c := range s.catalog.List() {
		if c.TaughtBy(instructor) {
			out = append(out, c)
		}
	}
	return out
}

func (s *service) record(ctx context.Context, action audit.Action, code string, details map[string]string) {
	s.audit.Record(ctx, audit.Stamp(audit.Event{
		Action:   action,
		Entity:   "course",
		EntityID: code,
		Actor:    audit.ActorFrom(ctx),
		Details:  details,
	}))
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Field() == "Credits" {
			credits, _ := fe.Value().(int)
			return invalidCredits(credits)
		}
		return apperr.WithMetadata(apperr.CodeMissingField,
			strings.ToLower(fe.Field())+" is required", map[string]string{"detail": strings.ToLower(fe.Field())})
	}
	return apperr.Wrap(apperr.CodeMissingField, "invalid course input", err)
}

func invalidCredits(credits int) error {
	return apperr.WithMetadata(apperr.CodeInvalidCredits,
		"credits must be between 1 and 4", map[string]string{"detail": strconv.Itoa(credits)})
}
