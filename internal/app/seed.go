package app

import (
	"context"
	"fmt"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
)

// Passwords of the seeded accounts.
const (
	SeedAdminPassword      = "admin123"
	SeedInstructorPassword = "dosen123"
	SeedStudentPassword    = "mhs12345"
)

// Seed installs the starter data set: one admin, two instructors, three
// students and six courses. Rows are written through repos so a fresh
// database ends up with the same content.
func Seed(ctx context.Context, repos Repositories, st Stores) error {
	adminHash, err := identity.HashPassword(SeedAdminPassword)
	if err != nil {
		return err
	}
	instructorHash, err := identity.HashPassword(SeedInstructorPassword)
	if err != nil {
		return err
	}
	studentHash, err := identity.HashPassword(SeedStudentPassword)
	if err != nil {
		return err
	}

	sari := &identity.Instructor{
		Profile:    identity.Profile{Name: "Dr. Sari Wulandari", Email: "sari@kampus.ac.id", PasswordHash: instructorHash},
		NIDN:       "12345678",
		Department: "Informatika",
	}
	andi := &identity.Instructor{
		Profile:    identity.Profile{Name: "Andi Pratama, M.Kom", Email: "andi@kampus.ac.id", PasswordHash: instructorHash},
		NIDN:       "87654321",
		Department: "Sistem Informasi",
	}
	users := []identity.User{
		&identity.Admin{
			Profile:  identity.Profile{Name: "Administrator", Email: "admin@kampus.ac.id", PasswordHash: adminHash},
			Username: "admin",
		},
		sari,
		andi,
		&identity.Student{
			Profile: identity.Profile{Name: "Budi Santoso", Email: "budi@mhs.kampus.ac.id", PasswordHash: studentHash},
			NIM:     "230101001", Program: "Informatika", Cohort: 2023,
		},
		&identity.Student{
			Profile: identity.Profile{Name: "Ani Lestari", Email: "ani@mhs.kampus.ac.id", PasswordHash: studentHash},
			NIM:     "230101002", Program: "Informatika", Cohort: 2023,
		},
		&identity.Student{
			Profile: identity.Profile{Name: "Citra Dewi", Email: "citra@mhs.kampus.ac.id", PasswordHash: studentHash},
			NIM:     "230201003", Program: "Sistem Informasi", Cohort: 2023,
		},
	}

	for i, u := range users {
		if err := repos.Users.Create(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Key(), err)
		}
		if u.Base().ID == 0 {
			u.Base().ID = i + 1
		}
		if err := st.Directory.Add(u); err != nil {
			return err
		}
	}

	courses := []*course.Course{
		{Code: "IF101", Name: "Algoritma dan Pemrograman", Credits: 4, Instructor: sari},
		{Code: "IF102", Name: "Struktur Data", Credits: 3, Instructor: sari},
		{Code: "IF103", Name: "Basis Data", Credits: 3, Instructor: andi},
		{Code: "IF104", Name: "Jaringan Komputer", Credits: 3, Instructor: andi},
		{Code: "IF105", Name: "Matematika Diskrit", Credits: 2, Instructor: sari},
		{Code: "UM101", Name: "Pendidikan Kewarganegaraan", Credits: 2},
	}
	for i, c := range courses {
		if err := repos.Courses.Save(ctx, c); err != nil {
			return fmt.Errorf("seed course %s: %w", c.Code, err)
		}
		if c.ID == 0 {
			c.ID = i + 1
		}
		if err := st.Catalog.Add(c); err != nil {
			return err
		}
	}
	return nil
}

// nopUsers stands in for the users table when persistence is off.
type nopUsers struct{}

func (nopUsers) List(context.Context) ([]identity.User, error) { return nil, nil }
func (nopUsers) Create(context.Context, identity.User) error   { return nil }
