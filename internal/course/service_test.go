package course_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/audit"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	saved   []string
	updated []string
	deleted []string
	fail    error
}

func (f *fakeRepo) Save(_ context.Context, c *course.Course) error {
	f.saved = append(f.saved, c.Code)
	return f.fail
}

func (f *fakeRepo) Update(_ context.Context, c *course.Course, oldCode string) error {
	f.updated = append(f.updated, oldCode+"->"+c.Code)
	return f.fail
}

func (f *fakeRepo) Delete(_ context.Context, code string) error {
	f.deleted = append(f.deleted, code)
	return f.fail
}

func (f *fakeRepo) List(context.Context) ([]course.CourseModel, error) { return nil, nil }

type refs map[string]bool

func (r refs) ReferencesCourse(code string) bool { return r[code] }

func newService(t *testing.T, repo course.Repository, r course.ReferenceChecker) (course.Service, *course.Catalog, *audit.Memory) {
	t.Helper()
	catalog := course.NewCatalog()
	mem := audit.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return course.NewService(catalog, repo, r, mem, logger, metrics.NewMock()), catalog, mem
}

func ptr[T any](v T) *T { return &v }

func TestAddCourse(t *testing.T) {
	ctx := audit.WithActor(context.Background(), "admin")
	repo := &fakeRepo{}
	svc, catalog, mem := newService(t, repo, refs{})
	sari := &identity.Instructor{Profile: identity.Profile{ID: 7, Name: "Sari"}, NIDN: "12345678"}

	c, err := svc.Add(ctx, course.Input{Code: " IF101 ", Name: "Algoritma", Credits: 3, Instructor: sari})
	require.NoError(t, err)
	assert.Equal(t, "IF101", c.Code)
	assert.Equal(t, "IF101 - Algoritma (3 credits) - Instructor: Sari", c.String())
	assert.Equal(t, 1, catalog.Len())
	assert.Equal(t, []string{"IF101"}, repo.saved)

	events := mem.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionCreate, events[0].Action)
	assert.Equal(t, "admin", events[0].Actor)

	t.Run("DuplicateCode", func(t *testing.T) {
		_, err := svc.Add(ctx, course.Input{Code: "IF101", Name: "Lain", Credits: 2})
		assert.True(t, apperr.IsCode(err, apperr.CodeDuplicateCourseCode))
	})

	t.Run("InvalidCredits", func(t *testing.T) {
		for _, credits := range []int{0, 5, -1} {
			_, err := svc.Add(ctx, course.Input{Code: "IF999", Name: "X", Credits: credits})
			assert.True(t, apperr.IsCode(err, apperr.CodeInvalidCredits), "credits %d", credits)
		}
	})

	t.Run("MissingName", func(t *testing.T) {
		_, err := svc.Add(ctx, course.Input{Code: "IF998", Name: "  ", Credits: 2})
		assert.True(t, apperr.IsCode(err, apperr.CodeMissingField))
	})

	assert.Equal(t, 1, catalog.Len())
}

func TestAddCourse_PersistenceFailureKeepsCourse(t *testing.T) {
	repo := &fakeRepo{fail: errors.New("connection refused")}
	svc, catalog, _ := newService(t, repo, refs{})

	c, err := svc.Add(context.Background(), course.Input{Code: "IF101", Name: "Algoritma", Credits: 3})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindPersistence))
	require.NotNil(t, c)

	got, err := catalog.Get("IF101")
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestUpdateCourse(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc, catalog, _ := newService(t, repo, refs{})
	sari := &identity.Instructor{Profile: identity.Profile{ID: 7, Name: "Sari"}, NIDN: "12345678"}

	c, err := svc.Add(ctx, course.Input{Code: "IF101", Name: "Algoritma", Credits: 3, Instructor: sari})
	require.NoError(t, err)
	_, err = svc.Add(ctx, course.Input{Code: "IF102", Name: "Basis Data", Credits: 3})
	require.NoError(t, err)

	t.Run("RenameAndRecode", func(t *testing.T) {
		updated, err := svc.Update(ctx, "IF101", course.Patch{Code: ptr("IF201"), Name: ptr("Algoritma Lanjut"), Credits: ptr(4)})
		require.NoError(t, err)
		assert.Same(t, c, updated)
		assert.Equal(t, "IF201", c.Code)
		assert.Equal(t, 4, c.Credits)
		assert.Equal(t, []string{"IF101->IF201"}, repo.updated)

		_, err = catalog.Get("IF101")
		assert.True(t, apperr.IsCode(err, apperr.CodeCourseNotFound))
		got, err := catalog.Get("IF201")
		require.NoError(t, err)
		assert.Same(t, c, got)
	})

	t.Run("RecodeToExisting", func(t *testing.T) {
		_, err := svc.Update(ctx, "IF201", course.Patch{Code: ptr("IF102")})
		assert.True(t, apperr.IsCode(err, apperr.CodeDuplicateCourseCode))
		assert.Equal(t, "IF201", c.Code)
	})

	t.Run("InvalidCreditsLeavesCourseUntouched", func(t *testing.T) {
		_, err := svc.Update(ctx, "IF201", course.Patch{Name: ptr("Baru"), Credits: ptr(5)})
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidCredits))
		assert.Equal(t, "Algoritma Lanjut", c.Name)
	})

	t.Run("Unassign", func(t *testing.T) {
		_, err := svc.Update(ctx, "IF201", course.Patch{Unassign: true})
		require.NoError(t, err)
		assert.Nil(t, c.Instructor)
		assert.Contains(t, c.String(), "Instructor: unassigned")
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := svc.Update(ctx, "XX000", course.Patch{Name: ptr("X")})
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestDeleteCourse(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc, catalog, _ := newService(t, repo, refs{"IF101": true})

	_, err := svc.Add(ctx, course.Input{Code: "IF101", Name: "Algoritma", Credits: 3})
	require.NoError(t, err)
	_, err = svc.Add(ctx, course.Input{Code: "IF102", Name: "Basis Data", Credits: 3})
	require.NoError(t, err)

	err = svc.Delete(ctx, "IF101")
	assert.True(t, apperr.IsCode(err, apperr.CodeCourseInUse))
	assert.Equal(t, 2, catalog.Len())

	require.NoError(t, svc.Delete(ctx, "IF102"))
	assert.Equal(t, 1, catalog.Len())
	assert.Equal(t, []string{"IF102"}, repo.deleted)

	err = svc.Delete(ctx, "IF102")
	assert.True(t, apperr.IsCode(err, apperr.CodeCourseNotFound))
}

func TestTaughtBy(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, course.NewNopRepository(), nil)
	sari := &identity.Instructor{Profile: identity.Profile{ID: 7, Name: "Sari"}, NIDN: "12345678"}
	andi := &identity.Instructor{Profile: identity.Profile{ID: 8, Name: "Andi"}, NIDN: "87654321"}

	_, err := svc.Add(ctx, course.Input{Code: "IF101", Name: "Algoritma", Credits: 3, Instructor: sari})
	require.NoError(t, err)
	_, err = svc.Add(ctx, course.Input{Code: "IF102", Name: "Basis Data", Credits: 3, Instructor: andi})
	require.NoError(t, err)
	_, err = svc.Add(ctx, course.Input{Code: "IF103", Name: "Jaringan", Credits: 2, Instructor: sari})
	require.NoError(t, err)

	taught := svc.TaughtBy(sari)
	require.Len(t, taught, 2)
	assert.Equal(t, "IF101", taught[0].Code)
	assert.Equal(t, "IF103", taught[1].Code)
	assert.Len(t, svc.List(), 3)
}
