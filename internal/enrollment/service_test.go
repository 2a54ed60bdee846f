package enrollment_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/audit"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/enrollment"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	saved   int
	added   []string
	removed []string
	fail    error
}

func (f *fakeRepo) Save(_ context.Context, r *enrollment.Record) error {
	f.saved++
	if f.fail != nil {
		return f.fail
	}
	r.ID = f.saved
	return nil
}

func (f *fakeRepo) AddCourse(_ context.Context, _ *enrollment.Record, c *course.Course) error {
	f.added = append(f.added, c.Code)
	return f.fail
}

func (f *fakeRepo) RemoveCourse(_ context.Context, _ *enrollment.Record, c *course.Course) error {
	f.removed = append(f.removed, c.Code)
	return f.fail
}

func (f *fakeRepo) List(context.Context) ([]enrollment.EnrollmentModel, error) { return nil, nil }

func newService(repo enrollment.Repository) (enrollment.Service, *audit.Memory) {
	mem := audit.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return enrollment.NewService(enrollment.NewBook(), repo, enrollment.DefaultConfig(), mem, logger, metrics.NewMock()), mem
}

func student(nim string) *identity.Student {
	return &identity.Student{Profile: identity.Profile{ID: 1, Name: "Budi"}, NIM: nim}
}

func courses(credits ...int) []*course.Course {
	out := make([]*course.Course, 0, len(credits))
	for i, c := range credits {
		out = append(out, &course.Course{ID: i + 1, Code: fmt.Sprintf("IF%03d", i+1), Name: fmt.Sprintf("Course %d", i+1), Credits: c})
	}
	return out
}

func TestRecordAddCourse(t *testing.T) {
	r := enrollment.NewRecord(student("230101001"), "2024/1")
	cs := courses(3, 2)

	require.NoError(t, r.AddCourse(cs[0]))
	require.NoError(t, r.AddCourse(cs[1]))

	err := r.AddCourse(cs[0])
	assert.True(t, apperr.IsCode(err, apperr.CodeDuplicateCourse))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 5, r.TotalCredits())

	rendered := r.Render()
	assert.True(t, strings.HasPrefix(rendered, "KRS Budi - Semester 2024/1\n"))
	assert.Contains(t, rendered, "1. IF001 - Course 1 (3 credits) - Instructor: unassigned")
	assert.Contains(t, rendered, "Total credits: 5")

	require.NoError(t, r.RemoveCourse(cs[0]))
	assert.False(t, r.HasCourse("IF001"))
	assert.True(t, apperr.IsCode(r.RemoveCourse(cs[0]), apperr.CodeCourseNotFound))
}

func TestRegister_CreditCap(t *testing.T) {
	ctx := context.Background()

	t.Run("ExactlyAtCap", func(t *testing.T) {
		svc, _ := newService(&fakeRepo{})
		record, err := svc.Register(ctx, student("230101001"), courses(4, 4, 4, 4, 4, 4), "2024/1")
		require.NoError(t, err)
		assert.Equal(t, 24, record.TotalCredits())
		assert.Equal(t, 1, svc.Count())
	})

	t.Run("OverCap", func(t *testing.T) {
		svc, _ := newService(&fakeRepo{})
		_, err := svc.Register(ctx, student("230101001"), courses(4, 4, 4, 4, 4, 4, 4), "2024/1")
		assert.True(t, apperr.IsCode(err, apperr.CodeCreditCapExceeded))
		assert.True(t, apperr.IsKind(err, apperr.KindBusinessRule))
		assert.Zero(t, svc.Count())
	})
}

func TestRegister_CheckOrder(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc, mem := newService(repo)
	budi := student("230101001")

	_, err := svc.Register(ctx, budi, nil, "2024/1")
	assert.True(t, apperr.IsCode(err, apperr.CodeEmptySelection))

	_, err = svc.Register(ctx, budi, courses(3, 3), "2024/1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.saved)
	require.Len(t, mem.Events(), 1)

	// The cap is checked before the existing form.
	_, err = svc.Register(ctx, budi, courses(4, 4, 4, 4, 4, 4, 4), "2024/1")
	assert.True(t, apperr.IsCode(err, apperr.CodeCreditCapExceeded))

	_, err = svc.Register(ctx, budi, courses(2), "2024/1")
	assert.True(t, apperr.IsCode(err, apperr.CodeAlreadyRegistered))
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestRegister_DuplicateInSelection(t *testing.T) {
	svc, _ := newService(&fakeRepo{})
	budi := student("230101001")
	cs := courses(3, 2)

	_, err := svc.Register(context.Background(), budi, []*course.Course{cs[0], cs[1], cs[0]}, "2024/1")
	assert.True(t, apperr.IsCode(err, apperr.CodeDuplicateCourse))

	_, err = svc.RecordFor(budi)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotRegistered))
}

func TestRegister_PersistenceFailureKeepsRecord(t *testing.T) {
	svc, _ := newService(&fakeRepo{fail: errors.New("db down")})
	budi := student("230101001")

	record, err := svc.Register(context.Background(), budi, courses(3), "2024/1")
	assert.True(t, apperr.IsCode(err, apperr.CodePersistenceFailed))
	require.NotNil(t, record)

	got, err := svc.RecordFor(budi)
	require.NoError(t, err)
	assert.Same(t, record, got)
}

func TestDropCourse(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc, _ := newService(repo)
	budi := student("230101001")
	cs := courses(3, 2, 2)

	err := svc.DropCourse(ctx, budi, cs[0])
	assert.True(t, apperr.IsCode(err, apperr.CodeNotRegistered))

	_, err = svc.Register(ctx, budi, cs[:2], "2024/1")
	require.NoError(t, err)

	err = svc.DropCourse(ctx, budi, cs[2])
	assert.True(t, apperr.IsCode(err, apperr.CodeCourseNotFound))

	require.NoError(t, svc.DropCourse(ctx, budi, cs[0]))
	assert.Equal(t, []string{"IF001"}, repo.removed)

	err = svc.DropCourse(ctx, budi, cs[1])
	assert.True(t, apperr.IsCode(err, apperr.CodeMinimumCourseViolation))

	view, err := svc.View(budi)
	require.NoError(t, err)
	require.Len(t, view.Courses, 1)
	assert.Equal(t, "IF002", view.Courses[0].Code)
	assert.Equal(t, 2, view.TotalCredits)
}

func TestDropCourse_ConfigurableFloor(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := enrollment.NewService(enrollment.NewBook(), enrollment.NewNopRepository(),
		enrollment.Config{MaxCredits: 24, MinCourses: 0}, audit.Nop(), logger, metrics.NewMock())
	budi := student("230101001")
	cs := courses(3)

	_, err := svc.Register(ctx, budi, cs, "2024/1")
	require.NoError(t, err)
	require.NoError(t, svc.DropCourse(ctx, budi, cs[0]))

	view, err := svc.View(budi)
	require.NoError(t, err)
	assert.Empty(t, view.Courses)
}

func TestAddCourseAfterRegistration(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc, _ := newService(repo)
	budi := student("230101001")
	cs := courses(4, 4, 4, 4, 4, 3, 1, 2)

	_, err := svc.Register(ctx, budi, cs[:5], "2024/1")
	require.NoError(t, err)

	require.NoError(t, svc.AddCourse(ctx, budi, cs[5]))
	assert.True(t, apperr.IsCode(svc.AddCourse(ctx, budi, cs[5]), apperr.CodeDuplicateCourse))
	require.NoError(t, svc.AddCourse(ctx, budi, cs[6]))
	assert.True(t, apperr.IsCode(svc.AddCourse(ctx, budi, cs[7]), apperr.CodeCreditCapExceeded))
	assert.Equal(t, []string{"IF006", "IF007"}, repo.added)

	assert.True(t, svc.ReferencesCourse("IF006"))
	assert.False(t, svc.ReferencesCourse("IF008"))
	assert.Equal(t, []*identity.Student{budi}, svc.StudentsIn("IF006"))
	assert.Empty(t, svc.StudentsIn("IF008"))

	err = svc.AddCourse(ctx, student("230101002"), cs[7])
	assert.True(t, apperr.IsCode(err, apperr.CodeNotRegistered))
}

func TestDetailWritesAfterFailedSave(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{fail: errors.New("db down")}
	svc, _ := newService(repo)
	budi := student("230101001")
	cs := courses(3, 2, 2)

	record, err := svc.Register(ctx, budi, cs[:2], "2024/1")
	assert.True(t, apperr.IsCode(err, apperr.CodePersistenceFailed))
	require.Zero(t, record.ID)

	// Still failing: the retry is attempted and reported, no orphan detail row.
	err = svc.AddCourse(ctx, budi, cs[2])
	assert.True(t, apperr.IsCode(err, apperr.CodePersistenceFailed))
	assert.Equal(t, 2, repo.saved)
	assert.Zero(t, record.ID)

	repo.fail = nil
	require.NoError(t, svc.DropCourse(ctx, budi, cs[0]))
	assert.Equal(t, 3, repo.saved)
	assert.Equal(t, 3, record.ID)
	assert.Empty(t, repo.added)
	assert.Empty(t, repo.removed)

	// Once the form has a row, changes go back to detail writes.
	require.NoError(t, svc.AddCourse(ctx, budi, cs[0]))
	assert.Equal(t, []string{"IF001"}, repo.added)
	assert.Equal(t, 3, repo.saved)
}
