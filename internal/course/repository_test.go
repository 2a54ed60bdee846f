package course_test

import (
	"context"
	"testing"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"
	"github.com/abin1769/Sistem-Akademik-Universitas/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseRepository_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, course.Models()...)

	repo := course.NewRepository(pgContainer.DB, metrics.NewMock())
	ctx := context.Background()
	sari := &identity.Instructor{Profile: identity.Profile{ID: 7, Name: "Sari"}, NIDN: "12345678"}

	t.Run("SaveAndList", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "courses")

		c := &course.Course{Code: "IF101", Name: "Algoritma", Credits: 3, Instructor: sari}
		require.NoError(t, repo.Save(ctx, c))
		assert.NotZero(t, c.ID)
		require.NoError(t, repo.Save(ctx, &course.Course{Code: "IF102", Name: "Basis Data", Credits: 2}))

		rows, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 7, rows[0].InstructorID)
		assert.Zero(t, rows[1].InstructorID)

		rebuilt := rows[0].ToCourse(sari)
		assert.Equal(t, c.String(), rebuilt.String())
	})

	t.Run("UpdateByOldCode", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "courses")

		c := &course.Course{Code: "IF101", Name: "Algoritma", Credits: 3}
		require.NoError(t, repo.Save(ctx, c))

		c.Code = "IF201"
		c.Credits = 4
		c.Instructor = sari
		require.NoError(t, repo.Update(ctx, c, "IF101"))

		rows, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "IF201", rows[0].Code)
		assert.Equal(t, 4, rows[0].Credits)
		assert.Equal(t, 7, rows[0].InstructorID)

		err = repo.Update(ctx, c, "NOPE")
		assert.True(t, apperr.IsCode(err, apperr.CodeCourseNotFound))
	})

	t.Run("Delete", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "courses")

		require.NoError(t, repo.Save(ctx, &course.Course{Code: "IF101", Name: "Algoritma", Credits: 3}))
		require.NoError(t, repo.Delete(ctx, "IF101"))

		rows, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)

		err = repo.Delete(ctx, "IF101")
		assert.True(t, apperr.IsCode(err, apperr.CodeCourseNotFound))
	})
}
