package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pairlingua/backend/internal/models"
)

// reviewLogRepository implements the append-only review history
type reviewLogRepository struct {
	db *sql.DB
}

// NewReviewLogRepository creates a new review log repository
func NewReviewLogRepository(db *sql.DB) *reviewLogRepository {
	return &reviewLogRepository{
		db: db,
	}
}

// Insert appends a review log entry
func (r *reviewLogRepository) Insert(ctx context.Context, entry *models.ReviewLogEntry) error {
	query := `
		INSERT INTO review_logs (user_id, word_pair_id, user_card_id, quality, response_time_ms, source, session_id,
			ease_factor_before, ease_factor_after, interval_before, interval_after, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		entry.UserID, entry.WordPairID, entry.UserCardID, entry.Quality, entry.ResponseTimeMs, entry.Source,
		entry.SessionID, entry.EaseFactorBefore, entry.EaseFactorAfter, entry.IntervalBefore, entry.IntervalAfter,
		entry.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get review log ID: %w", err)
	}
	entry.ID = id

	return nil
}

// ListBySession retrieves the review log entries of a user's session in review order
func (r *reviewLogRepository) ListBySession(ctx context.Context, userID int, sessionID string) ([]models.ReviewLogEntry, error) {
	query := `
		SELECT id, user_id, word_pair_id, user_card_id, quality, response_time_ms, source, session_id,
			ease_factor_before, ease_factor_after, interval_before, interval_after, reviewed_at
		FROM review_logs
		WHERE user_id = ? AND session_id = ?
		ORDER BY reviewed_at ASC, id ASC
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query review logs: %w", err)
	}
	defer rows.Close()

	entries := []models.ReviewLogEntry{}
	for rows.Next() {
		var (
			entry        models.ReviewLogEntry
			responseTime sql.NullInt64
			session      sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.WordPairID, &entry.UserCardID, &entry.Quality,
			&responseTime, &entry.Source, &session, &entry.EaseFactorBefore, &entry.EaseFactorAfter,
			&entry.IntervalBefore, &entry.IntervalAfter, &entry.ReviewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review log: %w", err)
		}
		if responseTime.Valid {
			value := int(responseTime.Int64)
			entry.ResponseTimeMs = &value
		}
		if session.Valid {
			entry.SessionID = &session.String
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}
