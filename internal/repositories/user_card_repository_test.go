package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/pairlingua/backend/internal/models"
	"github.com/pairlingua/backend/internal/sm2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserCardTestRepository(t *testing.T) (*userCardRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, cleanup := setupMockDB(t)
	return NewUserCardRepository(db), mock, cleanup
}

func addUserCardRow(rows *sqlmock.Rows, id int64, wordPairID int) *sqlmock.Rows {
	return rows.AddRow(id, 7, wordPairID, 2.5, 1, 1, fixedNow, 4, fixedNow, 1, 1, 1.0, 1200, true, "active", fixedNow, fixedNow)
}

func TestUserCardRepository_ListOverdue(t *testing.T) {
	tests := []struct {
		name          string
		filter        models.CardFilter
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedCount int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := userCardRows().
					AddRow(1, 7, 10, 2.5, 0, 0, nil, nil, nil, 0, 0, 0.0, nil, true, "active", fixedNow, fixedNow)
				addUserCardRow(rows, 2, 11)
				mock.ExpectQuery(`WHERE uc.user_id = \? AND \(uc.due_at IS NULL OR uc.due_at <= \?\) AND uc.status = 'active' AND wp.status = 'active' ORDER BY uc.due_at ASC, uc.id ASC LIMIT \?`).
					WithArgs(7, fixedNow, 10).
					WillReturnRows(rows)
			},
			expectedCount: 2,
		},
		{
			name:   "with filter",
			filter: models.CardFilter{ExcludeIDs: []int{5}, Tiers: []string{"A1", "A2"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`AND uc.word_pair_id NOT IN \(\?\) AND wp.tier IN \(\?, \?\) ORDER BY`).
					WithArgs(7, fixedNow, 5, "A1", "A2", 10).
					WillReturnRows(userCardRows())
			},
			expectedCount: 0,
		},
		{
			name:   "with tags",
			filter: models.CardFilter{Tiers: []string{"B1"}, Tags: []string{"verbs"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`AND wp.tier IN \(\?\) AND JSON_OVERLAPS\(wp.tags, CAST\(\? AS JSON\)\) ORDER BY`).
					WithArgs(7, fixedNow, "B1", `["verbs"]`, 10).
					WillReturnRows(addUserCardRow(userCardRows(), 2, 11))
			},
			expectedCount: 1,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM user_cards uc`).WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
		{
			name: "scan error",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := userCardRows().
					AddRow("invalid", 7, 10, 2.5, 0, 0, nil, nil, nil, 0, 0, 0.0, nil, true, "active", fixedNow, fixedNow)
				mock.ExpectQuery(`FROM user_cards uc`).WillReturnRows(rows)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserCardTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			cards, err := repo.ListOverdue(context.Background(), 7, fixedNow, tt.filter, 10)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, cards)
			} else {
				require.NoError(t, err)
				assert.Len(t, cards, tt.expectedCount)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserCardRepository_ListOverdue_NullableColumns(t *testing.T) {
	repo, mock, cleanup := setupUserCardTestRepository(t)
	defer cleanup()

	rows := userCardRows().
		AddRow(1, 7, 10, 2.5, 0, 0, nil, nil, nil, 0, 0, 0.0, nil, true, "active", fixedNow, fixedNow)
	addUserCardRow(rows, 2, 11)
	mock.ExpectQuery(`FROM user_cards uc`).WillReturnRows(rows)

	cards, err := repo.ListOverdue(context.Background(), 7, fixedNow, models.CardFilter{}, 10)

	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Nil(t, cards[0].DueAt)
	assert.Nil(t, cards[0].LastQuality)
	assert.Nil(t, cards[0].AverageResponseTimeMs)
	require.NotNil(t, cards[1].LastQuality)
	assert.Equal(t, 4, *cards[1].LastQuality)
	require.NotNil(t, cards[1].AverageResponseTimeMs)
	assert.Equal(t, 1200, *cards[1].AverageResponseTimeMs)
	assert.Equal(t, models.CardActive, cards[1].Status)
}

func TestUserCardRepository_GetByUserAndWordPair(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := setupUserCardTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`WHERE uc.user_id = \? AND uc.word_pair_id = \? FOR UPDATE`).
			WithArgs(7, 10).
			WillReturnRows(addUserCardRow(userCardRows(), 3, 10))

		card, err := repo.GetByUserAndWordPair(context.Background(), 7, 10)

		require.NoError(t, err)
		require.NotNil(t, card)
		assert.Equal(t, int64(3), card.ID)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock, cleanup := setupUserCardTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`FOR UPDATE`).WithArgs(7, 10).WillReturnRows(userCardRows())

		card, err := repo.GetByUserAndWordPair(context.Background(), 7, 10)

		require.NoError(t, err)
		assert.Nil(t, card)
	})
}

func TestUserCardRepository_EnsureCard(t *testing.T) {
	t.Run("existing card", func(t *testing.T) {
		repo, mock, cleanup := setupUserCardTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO user_cards .* ON DUPLICATE KEY UPDATE id = id`).
			WithArgs(7, 10, sm2.InitialEaseFactor, 0, 0, fixedNow, 0, 0, 0.0, true, "active", fixedNow, fixedNow).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`FOR UPDATE`).WithArgs(7, 10).WillReturnRows(addUserCardRow(userCardRows(), 3, 10))

		card, created, err := repo.EnsureCard(context.Background(), 7, 10, fixedNow)

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(3), card.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates with initial state", func(t *testing.T) {
		repo, mock, cleanup := setupUserCardTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO user_cards .* ON DUPLICATE KEY UPDATE id = id`).
			WithArgs(7, 10, sm2.InitialEaseFactor, 0, 0, fixedNow, 0, 0, 0.0, true, "active", fixedNow, fixedNow).
			WillReturnResult(sqlmock.NewResult(21, 1))
		mock.ExpectQuery(`FOR UPDATE`).WithArgs(7, 10).
			WillReturnRows(userCardRows().AddRow(21, 7, 10, 2.5, 0, 0, fixedNow, nil, nil, 0, 0, 0.0, nil, true, "active", fixedNow, fixedNow))

		card, created, err := repo.EnsureCard(context.Background(), 7, 10, fixedNow)

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, int64(21), card.ID)
		assert.Equal(t, 2.5, card.EaseFactor)
		assert.Equal(t, 0, card.IntervalDays)
		require.NotNil(t, card.DueAt)
		assert.Equal(t, fixedNow, *card.DueAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserts before taking the row lock inside a transaction", func(t *testing.T) {
		db, mock, cleanup := setupMockDB(t)
		defer cleanup()
		repo := NewUserCardRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO user_cards`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`FOR UPDATE`).WithArgs(7, 10).WillReturnRows(addUserCardRow(userCardRows(), 30, 10))
		mock.ExpectCommit()

		var card *models.UserCard
		err := NewTransactor(db).WithinTx(context.Background(), func(ctx context.Context) error {
			var err error
			card, _, err = repo.EnsureCard(ctx, 7, 10, fixedNow)
			return err
		})

		require.NoError(t, err)
		assert.Equal(t, int64(30), card.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deadlock is retried by the transactor", func(t *testing.T) {
		db, mock, cleanup := setupMockDB(t)
		defer cleanup()
		repo := NewUserCardRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO user_cards`).
			WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO user_cards`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`FOR UPDATE`).WithArgs(7, 10).WillReturnRows(addUserCardRow(userCardRows(), 30, 10))
		mock.ExpectCommit()

		var card *models.UserCard
		err := NewTransactor(db).WithinTx(context.Background(), func(ctx context.Context) error {
			var err error
			card, _, err = repo.EnsureCard(ctx, 7, 10, fixedNow)
			return err
		})

		require.NoError(t, err)
		assert.Equal(t, int64(30), card.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert error", func(t *testing.T) {
		repo, mock, cleanup := setupUserCardTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO user_cards`).WillReturnError(errors.New("database error"))

		card, _, err := repo.EnsureCard(context.Background(), 7, 10, fixedNow)

		assert.Error(t, err)
		assert.Nil(t, card)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row missing after insert", func(t *testing.T) {
		repo, mock, cleanup := setupUserCardTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO user_cards`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`FOR UPDATE`).WithArgs(7, 10).WillReturnRows(userCardRows())

		card, _, err := repo.EnsureCard(context.Background(), 7, 10, fixedNow)

		assert.Error(t, err)
		assert.Nil(t, card)
	})
}

func TestUserCardRepository_Update(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE user_cards SET`).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "no rows",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE user_cards SET`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: true,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE user_cards SET`).WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserCardTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Update(context.Background(), &models.UserCard{ID: 3, Status: models.CardActive})

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserCardRepository_CountDue(t *testing.T) {
	repo, mock, cleanup := setupUserCardTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_cards WHERE user_id = \? AND status = 'active'`).
		WithArgs(7, fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountDue(context.Background(), 7, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCardRepository_SetStatus(t *testing.T) {
	t.Run("updates existing card", func(t *testing.T) {
		repo, mock, cleanup := setupUserCardTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`FOR UPDATE`).WithArgs(7, 10).WillReturnRows(addUserCardRow(userCardRows(), 3, 10))
		mock.ExpectExec(`UPDATE user_cards SET status = \?, updated_at = \? WHERE id = \?`).
			WithArgs("suspended", fixedNow, int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		found, err := repo.SetStatus(context.Background(), 7, 10, models.CardSuspended, fixedNow)

		require.NoError(t, err)
		assert.True(t, found)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing card", func(t *testing.T) {
		repo, mock, cleanup := setupUserCardTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`FOR UPDATE`).WithArgs(7, 10).WillReturnRows(userCardRows())

		found, err := repo.SetStatus(context.Background(), 7, 10, models.CardSuspended, fixedNow)

		require.NoError(t, err)
		assert.False(t, found)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserCardRepository_ProgressCounts(t *testing.T) {
	repo, mock, cleanup := setupUserCardTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`FROM user_cards WHERE user_id = \?`).
		WithArgs(fixedNow, 7).
		WillReturnRows(sqlmock.NewRows([]string{"due", "learned", "learning", "suspended", "total", "correct"}).
			AddRow(4, 10, 3, 1, 80, 60))

	counts, err := repo.ProgressCounts(context.Background(), 7, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, models.ProgressCounts{Due: 4, Learned: 10, Learning: 3, Suspended: 1, TotalReviews: 80, CorrectReviews: 60}, *counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
