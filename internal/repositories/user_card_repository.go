package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pairlingua/backend/internal/models"
	"github.com/pairlingua/backend/internal/sm2"
)

const userCardColumns = `uc.id, uc.user_id, uc.word_pair_id, uc.ease_factor, uc.repetition_count, uc.interval_days,
	uc.due_at, uc.last_quality, uc.last_reviewed_at, uc.total_reviews, uc.correct_reviews, uc.accuracy,
	uc.average_response_time_ms, uc.is_learning, uc.status, uc.created_at, uc.updated_at`

// userCardRepository implements storage of per-user card state
type userCardRepository struct {
	db *sql.DB
}

// NewUserCardRepository creates a new user card repository
func NewUserCardRepository(db *sql.DB) *userCardRepository {
	return &userCardRepository{
		db: db,
	}
}

// ListOverdue retrieves active cards due at or before "now" whose word pair is active, most overdue first
//
// Cards without a due timestamp are treated as immediately due and come first.
func (r *userCardRepository) ListOverdue(ctx context.Context, userID int, now time.Time, filter models.CardFilter, limit int) ([]models.UserCard, error) {
	var sb strings.Builder
	args := []any{userID, now}

	fmt.Fprintf(&sb, `
		SELECT %s
		FROM user_cards uc
		JOIN word_pairs wp ON wp.id = uc.word_pair_id
		WHERE uc.user_id = ? AND (uc.due_at IS NULL OR uc.due_at <= ?)
		AND uc.status = 'active' AND wp.status = 'active'`, userCardColumns)

	if len(filter.ExcludeIDs) > 0 {
		fmt.Fprintf(&sb, " AND uc.word_pair_id NOT IN (%s)", placeholders(len(filter.ExcludeIDs)))
		args = append(args, intArgs(filter.ExcludeIDs)...)
	}
	if len(filter.Tiers) > 0 {
		fmt.Fprintf(&sb, " AND wp.tier IN (%s)", placeholders(len(filter.Tiers)))
		args = append(args, stringArgs(filter.Tiers)...)
	}
	if len(filter.Tags) > 0 {
		sb.WriteString(" AND JSON_OVERLAPS(wp.tags, CAST(? AS JSON))")
		args = append(args, tagsJSON(filter.Tags))
	}

	sb.WriteString(" ORDER BY uc.due_at ASC, uc.id ASC LIMIT ?")
	args = append(args, limit)

	rows, err := conn(ctx, r.db).QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue cards: %w", err)
	}
	defer rows.Close()

	cards := []models.UserCard{}
	for rows.Next() {
		card, err := scanUserCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return cards, nil
}

// GetByUserAndWordPair retrieves the card of a user for a word pair, locking the row inside a transaction
//
// Returns "nil" without error when the card does not exist.
func (r *userCardRepository) GetByUserAndWordPair(ctx context.Context, userID, wordPairID int) (*models.UserCard, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_cards uc
		WHERE uc.user_id = ? AND uc.word_pair_id = ?
		FOR UPDATE
	`, userCardColumns)

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, userID, wordPairID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user card: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating rows: %w", err)
		}
		return nil, nil
	}

	return scanUserCard(rows)
}

// insertIfAbsent inserts a new card unless the (user, word pair) pair already has one
//
// Reports whether a row was inserted. On insert card.ID is set.
func (r *userCardRepository) insertIfAbsent(ctx context.Context, card *models.UserCard) (bool, error) {
	query := `
		INSERT INTO user_cards (user_id, word_pair_id, ease_factor, repetition_count, interval_days, due_at,
			total_reviews, correct_reviews, accuracy, is_learning, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		card.UserID, card.WordPairID, card.EaseFactor, card.RepetitionCount, card.IntervalDays, card.DueAt,
		card.TotalReviews, card.CorrectReviews, card.Accuracy, card.IsLearning, string(card.Status),
		card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert user card: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows != 1 {
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("failed to get user card ID: %w", err)
	}
	card.ID = id

	return true, nil
}

// EnsureCard returns the card of a user for a word pair, creating it when missing
//
// New cards start with the initial ease factor, a zero interval and "dueAt" as due timestamp.
// The row is inserted before it is read with a lock, so two transactions creating the same card
// never hold gap locks on the missing key. The second return value reports whether this call
// created the card.
func (r *userCardRepository) EnsureCard(ctx context.Context, userID, wordPairID int, dueAt time.Time) (*models.UserCard, bool, error) {
	due := dueAt
	created, err := r.insertIfAbsent(ctx, &models.UserCard{
		UserID:     userID,
		WordPairID: wordPairID,
		EaseFactor: sm2.InitialEaseFactor,
		DueAt:      &due,
		IsLearning: true,
		Status:     models.CardActive,
		CreatedAt:  dueAt,
		UpdatedAt:  dueAt,
	})
	if err != nil {
		return nil, false, err
	}

	card, err := r.GetByUserAndWordPair(ctx, userID, wordPairID)
	if err != nil {
		return nil, false, err
	}
	if card == nil {
		return nil, false, fmt.Errorf("user card for word pair %d missing after insert", wordPairID)
	}

	return card, created, nil
}

// Update persists the scheduling and statistics fields of a card
func (r *userCardRepository) Update(ctx context.Context, card *models.UserCard) error {
	query := `
		UPDATE user_cards SET
			ease_factor = ?,
			repetition_count = ?,
			interval_days = ?,
			due_at = ?,
			last_quality = ?,
			last_reviewed_at = ?,
			total_reviews = ?,
			correct_reviews = ?,
			accuracy = ?,
			average_response_time_ms = ?,
			is_learning = ?,
			status = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		card.EaseFactor, card.RepetitionCount, card.IntervalDays, card.DueAt, card.LastQuality,
		card.LastReviewedAt, card.TotalReviews, card.CorrectReviews, card.Accuracy, card.AverageResponseTimeMs,
		card.IsLearning, string(card.Status), card.UpdatedAt, card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user card: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user card %d not found", card.ID)
	}

	return nil
}

// CountDue counts every active card of the user due at or before "now"
func (r *userCardRepository) CountDue(ctx context.Context, userID int, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM user_cards
		WHERE user_id = ? AND status = 'active' AND (due_at IS NULL OR due_at <= ?)
	`

	var count int
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, userID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count due cards: %w", err)
	}

	return count, nil
}

// SetStatus changes the status of a user's card
//
// Returns "false" without error when the user has no card for the word pair.
func (r *userCardRepository) SetStatus(ctx context.Context, userID, wordPairID int, status models.CardStatus, now time.Time) (bool, error) {
	card, err := r.GetByUserAndWordPair(ctx, userID, wordPairID)
	if err != nil {
		return false, err
	}
	if card == nil {
		return false, nil
	}

	query := `UPDATE user_cards SET status = ?, updated_at = ? WHERE id = ?`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, string(status), now, card.ID); err != nil {
		return false, fmt.Errorf("failed to update user card status: %w", err)
	}

	return true, nil
}

// ProgressCounts aggregates card counts for a user
func (r *userCardRepository) ProgressCounts(ctx context.Context, userID int, now time.Time) (*models.ProgressCounts, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'active' AND (due_at IS NULL OR due_at <= ?) THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN repetition_count >= 2 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN repetition_count < 2 AND total_reviews > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'suspended' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(total_reviews), 0),
			COALESCE(SUM(correct_reviews), 0)
		FROM user_cards
		WHERE user_id = ?
	`

	var counts models.ProgressCounts
	err := conn(ctx, r.db).QueryRowContext(ctx, query, now, userID).Scan(
		&counts.Due, &counts.Learned, &counts.Learning, &counts.Suspended, &counts.TotalReviews, &counts.CorrectReviews,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user cards: %w", err)
	}

	return &counts, nil
}

func scanUserCard(rows *sql.Rows) (*models.UserCard, error) {
	var (
		card           models.UserCard
		dueAt          sql.NullTime
		lastQuality    sql.NullInt64
		lastReviewedAt sql.NullTime
		avgResponse    sql.NullInt64
		status         string
	)

	if err := rows.Scan(&card.ID, &card.UserID, &card.WordPairID, &card.EaseFactor, &card.RepetitionCount,
		&card.IntervalDays, &dueAt, &lastQuality, &lastReviewedAt, &card.TotalReviews, &card.CorrectReviews,
		&card.Accuracy, &avgResponse, &card.IsLearning, &status, &card.CreatedAt, &card.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan user card: %w", err)
	}

	card.Status = models.CardStatus(status)
	if dueAt.Valid {
		card.DueAt = &dueAt.Time
	}
	if lastQuality.Valid {
		value := int(lastQuality.Int64)
		card.LastQuality = &value
	}
	if lastReviewedAt.Valid {
		card.LastReviewedAt = &lastReviewedAt.Time
	}
	if avgResponse.Valid {
		value := int(avgResponse.Int64)
		card.AverageResponseTimeMs = &value
	}

	return &card, nil
}
