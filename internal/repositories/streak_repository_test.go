package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pairlingua/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStreakTestRepository(t *testing.T) (*streakRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, cleanup := setupMockDB(t)
	return NewStreakRepository(db), mock, cleanup
}

func TestStreakRepository_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := setupStreakTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`FROM user_streaks WHERE user_id = \? FOR UPDATE`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "current_streak", "longest_streak", "last_study_date"}).
				AddRow(7, 3, 9, fixedNow))

		streak, err := repo.Get(context.Background(), 7)

		require.NoError(t, err)
		require.NotNil(t, streak)
		assert.Equal(t, 3, streak.CurrentStreak)
		assert.Equal(t, 9, streak.LongestStreak)
	})

	t.Run("never studied", func(t *testing.T) {
		repo, mock, cleanup := setupStreakTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`FROM user_streaks`).WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

		streak, err := repo.Get(context.Background(), 7)

		require.NoError(t, err)
		assert.Nil(t, streak)
	})
}

func TestStreakRepository_Upsert(t *testing.T) {
	repo, mock, cleanup := setupStreakTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO user_streaks .* ON DUPLICATE KEY UPDATE`).
		WithArgs(7, 4, 9, "2026-03-14").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.Upsert(context.Background(), &models.UserStreak{UserID: 7, CurrentStreak: 4, LongestStreak: 9, LastStudyDate: fixedNow})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
