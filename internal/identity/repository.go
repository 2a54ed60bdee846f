package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"

	"github.com/uptrace/bun"
)

// UserModel is the users table. One table holds every role; role-specific
// columns stay empty for the other roles.
type UserModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int    `bun:"id,pk,autoincrement"`
	Role         string `bun:"role,notnull"`
	LoginKey     string `bun:"login_key,unique,notnull"`
	Name         string `bun:"name,notnull"`
	Email        string `bun:"email"`
	PasswordHash string `bun:"password_hash,notnull"`
	Program      string `bun:"program"`
	Cohort       int    `bun:"cohort"`
	Department   string `bun:"department"`
}

// Models lists the tables owned by this package.
func Models() []any {
	return []any{(*UserModel)(nil)}
}

type Repository interface {
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user User) error
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

func (r *repository) List(ctx context.Context) ([]User, error) {
	start := time.Now()
	var rows []UserModel
	err := r.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx)

	r.metrics.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		u, err := row.toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *repository) Create(ctx context.Context, user User) error {
	start := time.Now()
	row := toModel(user)
	_, err := r.db.NewInsert().Model(&row).Returning("id").Exec(ctx)

	r.metrics.RecordQuery(ctx, "insert", "users", time.Since(start), err)

	if err != nil {
		return err
	}
	user.Base().ID = row.ID
	return nil
}

func toModel(user User) UserModel {
	p := user.Base()
	row := UserModel{
		ID:           p.ID,
		Role:         string(user.Role()),
		LoginKey:     user.Key(),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
	}
	switch v := user.(type) {
	case *Student:
		row.Program = v.Program
		row.Cohort = v.Cohort
	case *Instructor:
		row.Department = v.Department
	}
	return row
}

func (m UserModel) toUser() (User, error) {
	profile := Profile{ID: m.ID, Name: m.Name, Email: m.Email, PasswordHash: m.PasswordHash}
	switch Role(m.Role) {
	case RoleStudent:
		return &Student{Profile: profile, NIM: m.LoginKey, Program: m.Program, Cohort: m.Cohort}, nil
	case RoleInstructor:
		return &Instructor{Profile: profile, NIDN: m.LoginKey, Department: m.Department}, nil
	case RoleAdmin:
		return &Admin{Profile: profile, Username: m.LoginKey}, nil
	default:
		return nil, fmt.Errorf("user %d has unknown role %q", m.ID, m.Role)
	}
}
