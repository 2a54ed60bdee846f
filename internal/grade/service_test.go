package grade_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/audit"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/grade"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/grading"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	saved int
	fail  error
}

func (f *fakeRepo) Save(context.Context, *grade.Record) error {
	f.saved++
	return f.fail
}

func (f *fakeRepo) List(context.Context) ([]grade.GradeModel, error) { return nil, nil }

var (
	sari  = &identity.Instructor{Profile: identity.Profile{ID: 10, Name: "Sari"}, NIDN: "12345678"}
	andi  = &identity.Instructor{Profile: identity.Profile{ID: 11, Name: "Andi"}, NIDN: "87654321"}
	budi  = &identity.Student{Profile: identity.Profile{ID: 1, Name: "Budi"}, NIM: "230101001"}
	ani   = &identity.Student{Profile: identity.Profile{ID: 2, Name: "Ani"}, NIM: "230101002"}
	algo  = &course.Course{ID: 1, Code: "IF101", Name: "Algoritma", Credits: 3, Instructor: sari}
	basis = &course.Course{ID: 2, Code: "IF102", Name: "Basis Data", Credits: 2, Instructor: sari}
)

func newService(repo grade.Repository) (grade.Service, *audit.Memory) {
	mem := audit.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := grade.NewService(grade.NewBook(), grading.NewRegistry(), repo,
		grade.Config{DefaultPolicy: grading.Standard}, mem, logger, metrics.NewMock())
	return svc, mem
}

func TestEnterScore_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc, mem := newService(repo)

	first, err := svc.EnterScore(ctx, sari, budi, algo, 70, "")
	require.NoError(t, err)
	assert.Equal(t, "B+", first.Letter)

	second, err := svc.EnterScore(ctx, sari, budi, algo, 90, "")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 90.0, second.Score)
	assert.Equal(t, "A", second.Letter)
	assert.Equal(t, 4.0, second.Weight)
	assert.Equal(t, grading.Standard, second.Policy)

	assert.Equal(t, 1, svc.Count())
	assert.Len(t, svc.RecordsFor(budi), 1)
	assert.Equal(t, 2, repo.saved)
	assert.Equal(t, "IF101 - Algoritma: 90 (A)", second.String())

	events := mem.Events()
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionCreate, events[0].Action)
	assert.Equal(t, audit.ActionUpdate, events[1].Action)
}

func TestEnterScore_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(&fakeRepo{})

	for _, score := range []float64{-1, 100.5, math.NaN(), math.Inf(1)} {
		_, err := svc.EnterScore(ctx, sari, budi, algo, score, "")
		assert.True(t, apperr.IsCode(err, apperr.CodeInvalidScore), "score %v", score)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	}

	for _, score := range []float64{0, 100} {
		_, err := svc.EnterScore(ctx, sari, ani, algo, score, "")
		assert.NoError(t, err)
	}

	_, err := svc.EnterScore(ctx, sari, budi, algo, 80, "curve")
	assert.True(t, apperr.IsCode(err, apperr.CodeUnknownPolicy))
	assert.True(t, apperr.IsKind(err, apperr.KindPolicy))
	assert.Empty(t, svc.RecordsFor(budi))
}

func TestEnterScore_PolicySelection(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(&fakeRepo{})

	r, err := svc.EnterScore(ctx, sari, budi, algo, 80, "Strict")
	require.NoError(t, err)
	assert.Equal(t, "B+", r.Letter)
	assert.Equal(t, 3.3, r.Weight)
	assert.Equal(t, grading.Strict, r.Policy)

	r, err = svc.EnterScore(ctx, sari, budi, basis, 80, grading.Legacy)
	require.NoError(t, err)
	assert.Equal(t, "B", r.Letter)

	assert.Equal(t, []string{"legacy", "lenient", "standard", "strict"}, svc.Policies())
}

func TestGPA(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(&fakeRepo{})

	assert.Equal(t, 0.0, svc.GPA(budi))

	_, err := svc.EnterScore(ctx, sari, budi, algo, 85, "")
	require.NoError(t, err)
	_, err = svc.EnterScore(ctx, sari, budi, basis, 65, "")
	require.NoError(t, err)

	assert.Equal(t, 3.6, svc.GPA(budi))
	assert.Equal(t, 0.0, svc.GPA(ani))
}

func TestGPA_RoundsToTwoDecimals(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(&fakeRepo{})
	jaringan := &course.Course{ID: 3, Code: "IF103", Name: "Jaringan", Credits: 3, Instructor: sari}

	_, err := svc.EnterScore(ctx, sari, budi, algo, 80, "")
	require.NoError(t, err)
	_, err = svc.EnterScore(ctx, sari, budi, basis, 75, "")
	require.NoError(t, err)
	_, err = svc.EnterScore(ctx, sari, budi, jaringan, 70, "")
	require.NoError(t, err)

	// (4.0*3 + 3.7*2 + 3.3*3) / 8 = 3.6625
	assert.Equal(t, 3.66, svc.GPA(budi))
}

func TestClassAverage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(&fakeRepo{})

	assert.Equal(t, 0.0, svc.ClassAverage(sari, algo))

	_, err := svc.EnterScore(ctx, sari, budi, algo, 80, "")
	require.NoError(t, err)
	_, err = svc.EnterScore(ctx, sari, ani, algo, 71, "")
	require.NoError(t, err)
	_, err = svc.EnterScore(ctx, sari, budi, basis, 10, "")
	require.NoError(t, err)

	assert.Equal(t, 75.5, svc.ClassAverage(sari, algo))
	assert.Len(t, svc.CourseRoster(sari, algo), 2)

	// Only grades entered by the acting instructor count.
	assert.Equal(t, 0.0, svc.ClassAverage(andi, algo))
}

func TestEnterScore_CorrectionKeepsFirstInstructor(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(&fakeRepo{})

	_, err := svc.EnterScore(ctx, sari, budi, algo, 60, "")
	require.NoError(t, err)

	// The course changed hands and the new instructor corrects the score.
	r, err := svc.EnterScore(ctx, andi, budi, algo, 82, "")
	require.NoError(t, err)
	assert.Same(t, sari, r.EnteredBy)
	assert.Equal(t, "A", r.Letter)

	assert.Equal(t, 82.0, svc.ClassAverage(sari, algo))
	assert.Len(t, svc.CourseRoster(sari, algo), 1)
	assert.Empty(t, svc.CourseRoster(andi, algo))
}

func TestEnterScore_PersistenceFailureKeepsRecord(t *testing.T) {
	svc, _ := newService(&fakeRepo{fail: errors.New("db down")})

	r, err := svc.EnterScore(context.Background(), sari, budi, algo, 88, "")
	assert.True(t, apperr.IsKind(err, apperr.KindPersistence))
	require.NotNil(t, r)
	assert.Len(t, svc.RecordsFor(budi), 1)
}
