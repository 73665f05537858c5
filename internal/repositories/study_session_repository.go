package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pairlingua/backend/internal/models"
)

const studySessionColumns = `id, user_id, active_pair_ids, session_data, created_at, updated_at, expires_at`

// studySessionRepository implements storage of study sessions
type studySessionRepository struct {
	db *sql.DB
}

// NewStudySessionRepository creates a new study session repository
func NewStudySessionRepository(db *sql.DB) *studySessionRepository {
	return &studySessionRepository{
		db: db,
	}
}

// GetLatestLive retrieves the most recently created non-expired session of a user
//
// Returns "nil" without error when the user has no live session.
func (r *studySessionRepository) GetLatestLive(ctx context.Context, userID int, now time.Time) (*models.StudySession, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM study_sessions
		WHERE user_id = ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY created_at DESC
		LIMIT 1
	`, studySessionColumns)

	session, err := scanStudySession(conn(ctx, r.db).QueryRowContext(ctx, query, userID, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// GetByID retrieves a session by ID regardless of its owner or expiry
//
// Returns "nil" without error when the session does not exist.
func (r *studySessionRepository) GetByID(ctx context.Context, id string) (*models.StudySession, error) {
	query := fmt.Sprintf(`SELECT %s FROM study_sessions WHERE id = ?`, studySessionColumns)

	session, err := scanStudySession(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Create inserts a new session
func (r *studySessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	activeJSON, err := json.Marshal(nonNilInts(session.ActivePairIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal active pair IDs: %w", err)
	}

	var metadata any
	if session.Metadata != nil {
		data, err := json.Marshal(session.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal session metadata: %w", err)
		}
		metadata = string(data)
	}

	query := `
		INSERT INTO study_sessions (id, user_id, active_pair_ids, session_data, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = conn(ctx, r.db).ExecContext(ctx, query,
		session.ID, session.UserID, string(activeJSON), metadata, session.CreatedAt, session.UpdatedAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert study session: %w", err)
	}

	return nil
}

// UpdateActivePairs overwrites the active word pair set of a session
func (r *studySessionRepository) UpdateActivePairs(ctx context.Context, id string, pairIDs []int, now time.Time) error {
	activeJSON, err := json.Marshal(nonNilInts(pairIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal active pair IDs: %w", err)
	}

	query := `UPDATE study_sessions SET active_pair_ids = ?, updated_at = ? WHERE id = ?`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, string(activeJSON), now, id)
	if err != nil {
		return fmt.Errorf("failed to update study session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("study session %s not found", id)
	}

	return nil
}

func scanStudySession(row *sql.Row) (*models.StudySession, error) {
	var (
		session    models.StudySession
		activeJSON []byte
		metadata   []byte
		expiresAt  sql.NullTime
	)

	err := row.Scan(&session.ID, &session.UserID, &activeJSON, &metadata, &session.CreatedAt, &session.UpdatedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan study session: %w", err)
	}

	session.ActivePairIDs = []int{}
	if len(activeJSON) > 0 {
		if err := json.Unmarshal(activeJSON, &session.ActivePairIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal active pair IDs: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &session.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session metadata: %w", err)
		}
	}
	if expiresAt.Valid {
		session.ExpiresAt = &expiresAt.Time
	}

	return &session, nil
}

func nonNilInts(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
