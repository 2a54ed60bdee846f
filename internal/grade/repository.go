package grade

import (
	"context"
	"time"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"

	"github.com/uptrace/bun"
)

type GradeModel struct {
	bun.BaseModel `bun:"table:grades,alias:g"`

	ID           int     `bun:"id,pk,autoincrement"`
	StudentID    int     `bun:"student_id,notnull,unique:student_course"`
	CourseID     int     `bun:"course_id,notnull,unique:student_course"`
	Score        float64 `bun:"score,notnull"`
	Letter       string  `bun:"letter,notnull"`
	Weight       float64 `bun:"weight,notnull"`
	Policy       string  `bun:"policy,notnull"`
	InstructorID int     `bun:"instructor_id,nullzero"`
}

// Models lists the tables owned by this package.
func Models() []any {
	return []any{(*GradeModel)(nil)}
}

type Repository interface {
	// Save upserts on (student, course).
	Save(ctx context.Context, record *Record) error
	List(ctx context.Context) ([]GradeModel, error)
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

func (r *repository) Save(ctx context.Context, record *Record) error {
	start := time.Now()
	row := GradeModel{
		StudentID: record.Student.ID,
		CourseID:  record.Course.ID,
		Score:     record.Score,
		Letter:    record.Letter,
		Weight:    record.Weight,
		Policy:    record.Policy,
	}
	if record.EnteredBy != nil {
		row.InstructorID = record.EnteredBy.ID
	}
	_, err := r.db.NewInsert().
		Model(&row).
		On("CONFLICT (student_id, course_id) DO UPDATE").
		Set("score = EXCLUDED.score").
		Set("letter = EXCLUDED.letter").
		Set("weight = EXCLUDED.weight").
		Set("policy = EXCLUDED.policy").
		Returning("id").
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "upsert", "grades", time.Since(start), err)

	if err != nil {
		return err
	}
	record.ID = row.ID
	return nil
}

func (r *repository) List(ctx context.Context) ([]GradeModel, error) {
	start := time.Now()
	var rows []GradeModel
	err := r.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "grades", time.Since(start), err)

	return rows, err
}

type nopRepository struct{}

// NewNopRepository keeps grades purely in memory.
func NewNopRepository() Repository { return nopRepository{} }

func (nopRepository) Save(context.Context, *Record) error        { return nil }
func (nopRepository) List(context.Context) ([]GradeModel, error) { return nil, nil }
