package attendance

import (
	"context"
	"time"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"

	"github.com/uptrace/bun"
)

// SessionModel keeps the in-memory id so the counter survives restarts.
type SessionModel struct {
	bun.BaseModel `bun:"table:attendance,alias:a"`

	ID           int       `bun:"id,pk"`
	CourseID     int       `bun:"course_id,notnull"`
	InstructorID int       `bun:"instructor_id,notnull"`
	Date         time.Time `bun:"date,type:date,notnull"`

	Details []AttendanceDetailModel `bun:"rel:has-many,join:id=attendance_id"`
}

type AttendanceDetailModel struct {
	bun.BaseModel `bun:"table:attendance_details,alias:ad"`

	ID           int       `bun:"id,pk,autoincrement"`
	AttendanceID int       `bun:"attendance_id,notnull"`
	StudentID    int       `bun:"student_id,notnull"`
	CheckedInAt  time.Time `bun:"checked_in_at,notnull,default:current_timestamp"`
}

// Models lists the tables owned by this package.
func Models() []any {
	return []any{(*SessionModel)(nil), (*AttendanceDetailModel)(nil)}
}

type Repository interface {
	SaveSession(ctx context.Context, session *Session) error
	SaveCheckIn(ctx context.Context, session *Session, student *identity.Student) error
	// List returns sessions by id with check-ins in arrival order.
	List(ctx context.Context) ([]SessionModel, error)
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

func (r *repository) SaveSession(ctx context.Context, session *Session) error {
	start := time.Now()
	row := SessionModel{
		ID:           session.ID,
		CourseID:     session.Course.ID,
		InstructorID: session.Instructor.ID,
		Date:         session.Date,
	}
	_, err := r.db.NewInsert().Model(&row).Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "attendance", time.Since(start), err)

	return err
}

func (r *repository) SaveCheckIn(ctx context.Context, session *Session, student *identity.Student) error {
	start := time.Now()
	row := AttendanceDetailModel{
		AttendanceID: session.ID,
		StudentID:    student.ID,
		CheckedInAt:  time.Now().UTC(),
	}
	_, err := r.db.NewInsert().Model(&row).Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "attendance_details", time.Since(start), err)

	return err
}

func (r *repository) List(ctx context.Context) ([]SessionModel, error) {
	start := time.Now()
	var rows []SessionModel
	err := r.db.NewSelect().
		Model(&rows).
		Relation("Details", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("ad.id ASC")
		}).
		Order("a.id ASC").
		Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "attendance", time.Since(start), err)

	return rows, err
}

type nopRepository struct{}

// NewNopRepository keeps sessions purely in memory.
func NewNopRepository() Repository { return nopRepository{} }

func (nopRepository) SaveSession(context.Context, *Session) error                    { return nil }
func (nopRepository) SaveCheckIn(context.Context, *Session, *identity.Student) error { return nil }
func (nopRepository) List(context.Context) ([]SessionModel, error)                   { return nil, nil }
