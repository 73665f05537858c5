package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// setupMockDB creates a mock database shared by the repository tests
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return db, mock, cleanup
}

var wordPairRowColumns = []string{
	"id", "source_term", "target_term", "audio_url", "tier", "frequency_rank",
	"tags", "examples", "status", "created_at", "updated_at",
}

func wordPairRows() *sqlmock.Rows {
	return sqlmock.NewRows(wordPairRowColumns)
}

var userCardRowColumns = []string{
	"id", "user_id", "word_pair_id", "ease_factor", "repetition_count", "interval_days",
	"due_at", "last_quality", "last_reviewed_at", "total_reviews", "correct_reviews", "accuracy",
	"average_response_time_ms", "is_learning", "status", "created_at", "updated_at",
}

func userCardRows() *sqlmock.Rows {
	return sqlmock.NewRows(userCardRowColumns)
}
