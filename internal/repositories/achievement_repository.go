package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pairlingua/backend/internal/models"
)

// achievementRepository implements the achievement catalog and per-user unlocks
type achievementRepository struct {
	db *sql.DB
}

// NewAchievementRepository creates a new achievement repository
func NewAchievementRepository(db *sql.DB) *achievementRepository {
	return &achievementRepository{
		db: db,
	}
}

// GetByCode retrieves an active achievement by code
//
// Returns "nil" without error when no active achievement has the code.
func (r *achievementRepository) GetByCode(ctx context.Context, code string) (*models.Achievement, error) {
	query := `
		SELECT id, code, title, COALESCE(description, ''), COALESCE(requirement_type, ''),
			COALESCE(requirement_value, 0), points, is_active
		FROM achievements
		WHERE code = ? AND is_active = TRUE
	`

	var a models.Achievement
	err := conn(ctx, r.db).QueryRowContext(ctx, query, code).Scan(
		&a.ID, &a.Code, &a.Title, &a.Description, &a.RequirementType, &a.RequirementValue, &a.Points, &a.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query achievement: %w", err)
	}

	return &a, nil
}

// HasUserAchievement reports whether the user already earned the achievement
func (r *achievementRepository) HasUserAchievement(ctx context.Context, userID, achievementID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_achievements WHERE user_id = ? AND achievement_id = ?)`

	var exists bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, userID, achievementID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user achievement: %w", err)
	}

	return exists, nil
}

// Grant records that the user earned the achievement
//
// Returns "false" without error when the unique key shows it was already earned.
func (r *achievementRepository) Grant(ctx context.Context, userID, achievementID int, earnedAt time.Time, contextData string) (bool, error) {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, earned_at, context_data)
		VALUES (?, ?, ?, ?)
	`

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, userID, achievementID, earnedAt, contextData); err != nil {
		if isDuplicateEntry(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert user achievement: %w", err)
	}

	return true, nil
}
