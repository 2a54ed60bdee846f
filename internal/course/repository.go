package course

import (
	"context"
	"time"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"

	"github.com/uptrace/bun"
)

type CourseModel struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID           int    `bun:"id,pk,autoincrement"`
	Code         string `bun:"code,unique,notnull"`
	Name         string `bun:"name,notnull"`
	Credits      int    `bun:"credits,notnull"`
	InstructorID int    `bun:"instructor_id,nullzero"`
}

// Models lists the tables owned by this package.
func Models() []any {
	return []any{(*CourseModel)(nil)}
}

// ToCourse rebuilds the entity; instructor is the already resolved
// instructor_id reference, or nil.
func (m CourseModel) ToCourse(instructor *identity.Instructor) *Course {
	return &Course{
		ID:         m.ID,
		Code:       m.Code,
		Name:       m.Name,
		Credits:    m.Credits,
		Instructor: instructor,
	}
}

type Repository interface {
	Save(ctx context.Context, course *Course) error
	Update(ctx context.Context, course *Course, oldCode string) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]CourseModel, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Save(ctx context.Context, course *Course) error {
	start := time.Now()
	row := toModel(course)
	_, err := r.db.NewInsert().Model(&row).Returning("id").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "courses", time.Since(start), err)

	if err != nil {
		return err
	}
	course.ID = row.ID
	return nil
}

func (r *repository) Update(ctx context.Context, course *Course, oldCode string) error {
	start := time.Now()
	row := toModel(course)
	result, err := r.db.NewUpdate().
		Model(&row).
		Column("code", "name", "credits", "instructor_id").
		Where("code = ?", oldCode).
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "update", "courses", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return NotFound(oldCode)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, code string) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*CourseModel)(nil)).
		Where("code = ?", code).
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "delete", "courses", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperr.WithMetadata(apperr.CodeCourseNotFound, "course not found: "+code, map[string]string{"detail": code})
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]CourseModel, error) {
	start := time.Now()
	var rows []CourseModel
	err := r.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "courses", time.Since(start), err)

	return rows, err
}

func toModel(course *Course) CourseModel {
	row := CourseModel{
		ID:      course.ID,
		Code:    course.Code,
		Name:    course.Name,
		Credits: course.Credits,
	}
	if course.Instructor != nil {
		row.InstructorID = course.Instructor.ID
	}
	return row
}

type nopRepository struct{}

// NewNopRepository keeps the catalog purely in memory.
func NewNopRepository() Repository { return nopRepository{} }

func (nopRepository) Save(context.Context, *Course) error           { return nil }
func (nopRepository) Update(context.Context, *Course, string) error { return nil }
func (nopRepository) Delete(context.Context, string) error          { return nil }
func (nopRepository) List(context.Context) ([]CourseModel, error)   { return nil, nil }
