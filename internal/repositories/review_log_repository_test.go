package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pairlingua/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReviewLogTestRepository(t *testing.T) (*reviewLogRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, cleanup := setupMockDB(t)
	return NewReviewLogRepository(db), mock, cleanup
}

func TestReviewLogRepository_Insert(t *testing.T) {
	sessionID := "0b6f4c2e-8f1a-4d5e-9c3b-2a1f0e9d8c7b"
	responseTime := 1500

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO review_logs`).
					WithArgs(7, 10, int64(3), 4, responseTime, "web", sessionID, 2.5, 2.5, 1, 6, fixedNow).
					WillReturnResult(sqlmock.NewResult(99, 1))
			},
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO review_logs`).WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupReviewLogTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			entry := &models.ReviewLogEntry{
				UserID: 7, WordPairID: 10, UserCardID: 3, Quality: 4, ResponseTimeMs: &responseTime,
				Source: "web", SessionID: &sessionID, EaseFactorBefore: 2.5, EaseFactorAfter: 2.5,
				IntervalBefore: 1, IntervalAfter: 6, ReviewedAt: fixedNow,
			}
			err := repo.Insert(context.Background(), entry)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(99), entry.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReviewLogRepository_ListBySession(t *testing.T) {
	repo, mock, cleanup := setupReviewLogTestRepository(t)
	defer cleanup()

	columns := []string{"id", "user_id", "word_pair_id", "user_card_id", "quality", "response_time_ms", "source",
		"session_id", "ease_factor_before", "ease_factor_after", "interval_before", "interval_after", "reviewed_at"}
	mock.ExpectQuery(`FROM review_logs WHERE user_id = \? AND session_id = \? ORDER BY reviewed_at ASC, id ASC`).
		WithArgs(7, "s-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, 7, 10, 3, 5, 900, "web", "s-1", 2.5, 2.6, 0, 1, fixedNow).
			AddRow(2, 7, 11, 4, 1, nil, "web", "s-1", 2.5, 1.96, 6, 1, fixedNow))

	entries, err := repo.ListBySession(context.Background(), 7, "s-1")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].ResponseTimeMs)
	assert.Equal(t, 900, *entries[0].ResponseTimeMs)
	assert.Nil(t, entries[1].ResponseTimeMs)
	require.NotNil(t, entries[1].SessionID)
	assert.Equal(t, "s-1", *entries[1].SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
