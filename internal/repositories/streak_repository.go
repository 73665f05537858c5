package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pairlingua/backend/internal/models"
)

// streakRepository implements storage of daily study streaks
type streakRepository struct {
	db *sql.DB
}

// NewStreakRepository creates a new streak repository
func NewStreakRepository(db *sql.DB) *streakRepository {
	return &streakRepository{
		db: db,
	}
}

// Get retrieves the streak of a user, locking the row inside a transaction
//
// Returns "nil" without error when the user never studied.
func (r *streakRepository) Get(ctx context.Context, userID int) (*models.UserStreak, error) {
	query := `
		SELECT user_id, current_streak, longest_streak, last_study_date
		FROM user_streaks
		WHERE user_id = ?
		FOR UPDATE
	`

	var streak models.UserStreak
	err := conn(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(
		&streak.UserID, &streak.CurrentStreak, &streak.LongestStreak, &streak.LastStudyDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user streak: %w", err)
	}

	return &streak, nil
}

// Upsert inserts or overwrites the streak of a user
func (r *streakRepository) Upsert(ctx context.Context, streak *models.UserStreak) error {
	query := `
		INSERT INTO user_streaks (user_id, current_streak, longest_streak, last_study_date)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			current_streak = VALUES(current_streak),
			longest_streak = VALUES(longest_streak),
			last_study_date = VALUES(last_study_date)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		streak.UserID, streak.CurrentStreak, streak.LongestStreak, streak.LastStudyDate.Format("2006-01-02"),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user streak: %w", err)
	}

	return nil
}
