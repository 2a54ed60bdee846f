package enrollment

import (
	"context"
	"time"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"

	"github.com/uptrace/bun"
)

type EnrollmentModel struct {
	bun.BaseModel `bun:"table:enrollments,alias:e"`

	ID        int    `bun:"id,pk,autoincrement"`
	StudentID int    `bun:"student_id,unique,notnull"`
	Term      string `bun:"term,notnull"`

	Details []EnrollmentDetailModel `bun:"rel:has-many,join:id=enrollment_id"`
}

type EnrollmentDetailModel struct {
	bun.BaseModel `bun:"table:enrollment_details,alias:ed"`

	ID           int `bun:"id,pk,autoincrement"`
	EnrollmentID int `bun:"enrollment_id,notnull"`
	CourseID     int `bun:"course_id,notnull"`
}

// Models lists the tables owned by this package.
func Models() []any {
	return []any{(*EnrollmentModel)(nil), (*EnrollmentDetailModel)(nil)}
}

type Repository interface {
	Save(ctx context.Context, record *Record) error
	AddCourse(ctx context.Context, record *Record, c *course.Course) error
	RemoveCourse(ctx context.Context, record *Record, c *course.Course) error
	// List returns every form with its details in selection order.
	List(ctx context.Context) ([]EnrollmentModel, error)
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
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		start := time.Now()
		row := EnrollmentModel{StudentID: record.Student.ID, Term: record.Term}
		_, err := tx.NewInsert().Model(&row).Returning("id").Exec(ctx)

		r.metrics.RecordQuery(ctx, "insert", "enrollments", time.Since(start), err)

		if err != nil {
			return err
		}
		record.ID = row.ID

		courses := record.Courses()
		if len(courses) == 0 {
			return nil
		}
		details := make([]EnrollmentDetailModel, 0, len(courses))
		for _, c := range courses {
			details = append(details, EnrollmentDetailModel{EnrollmentID: row.ID, CourseID: c.ID})
		}

		start = time.Now()
		_, err = tx.NewInsert().Model(&details).Exec(ctx)

		r.metrics.RecordQuery(ctx, "insert", "enrollment_details", time.Since(start), err)

		return err
	})
}

func (r *repository) AddCourse(ctx context.Context, record *Record, c *course.Course) error {
	start := time.Now()
	detail := EnrollmentDetailModel{EnrollmentID: record.ID, CourseID: c.ID}
	_, err := r.db.NewInsert().Model(&detail).Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "enrollment_details", time.Since(start), err)

	return err
}

func (r *repository) RemoveCourse(ctx context.Context, record *Record, c *course.Course) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*EnrollmentDetailModel)(nil)).
		Where("enrollment_id = ?", record.ID).
		Where("course_id = ?", c.ID).
		Exec(ctx)

	r.metrics.RecordQuery(ctx, "delete", "enrollment_details", time.Since(start), err)

	return err
}

func (r *repository) List(ctx context.Context) ([]EnrollmentModel, error) {
	start := time.Now()
	var rows []EnrollmentModel
	err := r.db.NewSelect().
		Model(&rows).
		Relation("Details", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("ed.id ASC")
		}).
		Order("e.id ASC").
		Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "enrollments", time.Since(start), err)

	return rows, err
}

type nopRepository struct{}

// NewNopRepository keeps registration forms purely in memory.
func NewNopRepository() Repository { return nopRepository{} }

func (nopRepository) Save(context.Context, *Record) error                         { return nil }
func (nopRepository) AddCourse(context.Context, *Record, *course.Course) error    { return nil }
func (nopRepository) RemoveCourse(context.Context, *Record, *course.Course) error { return nil }
func (nopRepository) List(context.Context) ([]EnrollmentModel, error)             { return nil, nil }
