package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/attendance"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/enrollment"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/grade"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
)

// Stores is the in-memory academic state.
type Stores struct {
	Directory   *identity.Directory
	Catalog     *course.Catalog
	Enrollments *enrollment.Book
	Sessions    *attendance.Ledger
	Grades      *grade.Book
}

func NewStores() Stores {
	return Stores{
		Directory:   identity.NewDirectory(),
		Catalog:     course.NewCatalog(),
		Enrollments: enrollment.NewBook(),
		Sessions:    attendance.NewLedger(),
		Grades:      grade.NewBook(),
	}
}

// Repositories are the write-through targets, one per table group.
type Repositories struct {
	Users       identity.Repository
	Courses     course.Repository
	Enrollments enrollment.Repository
	Attendance  attendance.Repository
	Grades      grade.Repository
}

// Hydrate rebuilds the in-memory state from stored rows, resolving foreign
// keys into shared pointers. Rows pointing at missing users or courses are
// skipped with a warning.
func Hydrate(ctx context.Context, repos Repositories, st Stores, logger *slog.Logger) error {
	users, err := repos.Users.List(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		if err := st.Directory.Add(u); err != nil {
			logger.WarnContext(ctx, "skipping user", "key", u.Key(), "error", err)
		}
	}

	courseRows, err := repos.Courses.List(ctx)
	if err != nil {
		return fmt.Errorf("load courses: %w", err)
	}
	coursesByID := make(map[int]*course.Course, len(courseRows))
	for _, row := range courseRows {
		var instructor *identity.Instructor
		if row.InstructorID != 0 {
			if instructor, err = st.Directory.InstructorByID(row.InstructorID); err != nil {
				logger.WarnContext(ctx, "course instructor not found", "code", row.Code, "instructor_id", row.InstructorID)
			}
		}
		c := row.ToCourse(instructor)
		if err := st.Catalog.Add(c); err != nil {
			logger.WarnContext(ctx, "skipping course", "code", row.Code, "error", err)
			continue
		}
		coursesByID[c.ID] = c
	}

	enrollmentRows, err := repos.Enrollments.List(ctx)
	if err != nil {
		return fmt.Errorf("load enrollments: %w", err)
	}
	for _, row := range enrollmentRows {
		student, err := st.Directory.StudentByID(row.StudentID)
		if err != nil {
			logger.WarnContext(ctx, "skipping enrollment", "id", row.ID, "error", err)
			continue
		}
		record := enrollment.NewRecord(student, row.Term)
		record.ID = row.ID
		for _, d := range row.Details {
			c, ok := coursesByID[d.CourseID]
			if !ok {
				logger.WarnContext(ctx, "enrollment course not found", "id", row.ID, "course_id", d.CourseID)
				continue
			}
			_ = record.AddCourse(c)
		}
		st.Enrollments.Put(record)
	}

	sessionRows, err := repos.Attendance.List(ctx)
	if err != nil {
		return fmt.Errorf("load attendance: %w", err)
	}
	for _, row := range sessionRows {
		c, ok := coursesByID[row.CourseID]
		if !ok {
			logger.WarnContext(ctx, "skipping session", "id", row.ID, "course_id", row.CourseID)
			continue
		}
		instructor, err := st.Directory.InstructorByID(row.InstructorID)
		if err != nil {
			logger.WarnContext(ctx, "skipping session", "id", row.ID, "error", err)
			continue
		}
		present := make([]*identity.Student, 0, len(row.Details))
		for _, d := range row.Details {
			student, err := st.Directory.StudentByID(d.StudentID)
			if err != nil {
				logger.WarnContext(ctx, "attendance student not found", "id", row.ID, "student_id", d.StudentID)
				continue
			}
			present = append(present, student)
		}
		st.Sessions.Restore(&attendance.Session{ID: row.ID, Course: c, Instructor: instructor, Date: row.Date}, present...)
	}

	gradeRows, err := repos.Grades.List(ctx)
	if err != nil {
		return fmt.Errorf("load grades: %w", err)
	}
	for _, row := range gradeRows {
		student, err := st.Directory.StudentByID(row.StudentID)
		if err != nil {
			logger.WarnContext(ctx, "skipping grade", "id", row.ID, "error", err)
			continue
		}
		c, ok := coursesByID[row.CourseID]
		if !ok {
			logger.WarnContext(ctx, "skipping grade", "id", row.ID, "course_id", row.CourseID)
			continue
		}
		record := &grade.Record{
			ID:      row.ID,
			Student: student,
			Course:  c,
			Score:   row.Score,
			Letter:  row.Letter,
			Weight:  row.Weight,
			Policy:  row.Policy,
		}
		if row.InstructorID != 0 {
			record.EnteredBy, _ = st.Directory.InstructorByID(row.InstructorID)
		}
		st.Grades.Restore(record)
	}

	logger.InfoContext(ctx, "academic state loaded",
		"users", len(users),
		"courses", st.Catalog.Len(),
		"enrollments", st.Enrollments.Len(),
		"sessions", st.Sessions.Len(),
		"grades", st.Grades.Len(),
	)
	return nil
}
