package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pairlingua/backend/internal/apperrors"
	"github.com/pairlingua/backend/internal/models"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long a study session stays live after creation
const DefaultSessionTTL = 2 * time.Hour

// cardSelector is the part of the due-card selector used to refill sessions
type cardSelector interface {
	Select(ctx context.Context, req SelectionRequest, now time.Time) (*Selection, error)
}

type sessionManager struct {
	sessions StudySessionRepository
	selector cardSelector
	ttl      time.Duration
	logger   *zap.Logger
}

// NewSessionManager creates a new session manager
//
// A non-positive "ttl" falls back to DefaultSessionTTL.
func NewSessionManager(sessions StudySessionRepository, selector cardSelector, ttl time.Duration, logger *zap.Logger) *sessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionManager{
		sessions: sessions,
		selector: selector,
		ttl:      ttl,
		logger:   logger,
	}
}

// GetOrCreate returns the user's latest live session or starts a new one
func (m *sessionManager) GetOrCreate(ctx context.Context, userID int, now time.Time) (*models.StudySession, error) {
	session, err := m.sessions.GetLatestLive(ctx, userID, now)
	if err != nil {
		m.logger.Error("failed to get live session", zap.Int("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get live session: %w", err)
	}
	if session != nil {
		return session, nil
	}

	expiresAt := now.Add(m.ttl)
	session = &models.StudySession{
		ID:            uuid.NewString(),
		UserID:        userID,
		ActivePairIDs: []int{},
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     &expiresAt,
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		m.logger.Error("failed to create session", zap.Int("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.logger.Debug("study session created", zap.Int("userID", userID), zap.String("sessionID", session.ID))
	return session, nil
}

// Overwrite replaces the active set of the session with "pairIDs"
func (m *sessionManager) Overwrite(ctx context.Context, session *models.StudySession, pairIDs []int, now time.Time) error {
	if err := m.sessions.UpdateActivePairs(ctx, session.ID, pairIDs, now); err != nil {
		m.logger.Error("failed to overwrite session", zap.String("sessionID", session.ID), zap.Error(err))
		return fmt.Errorf("failed to overwrite session: %w", err)
	}
	session.ActivePairIDs = pairIDs
	session.UpdatedAt = now
	return nil
}

// ReplaceCard swaps a completed word pair out of a session for one more due card
//
// The completed pair and the rest of the active set are excluded from selection. When nothing is left to
// study a NotFound error is returned and the session stays untouched. Expired sessions can still be refilled.
func (m *sessionManager) ReplaceCard(ctx context.Context, userID int, sessionID string, completedWordPairID int, now time.Time) (*models.StudyCard, *models.StudySession, error) {
	session, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		m.logger.Error("failed to get session", zap.String("sessionID", sessionID), zap.Error(err))
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.UserID != userID {
		return nil, nil, apperrors.NotFound("study session %s not found", sessionID)
	}

	remaining := make([]int, 0, len(session.ActivePairIDs))
	for _, id := range session.ActivePairIDs {
		if id != completedWordPairID {
			remaining = append(remaining, id)
		}
	}

	exclude := make([]int, 0, len(remaining)+1)
	exclude = append(exclude, remaining...)
	exclude = append(exclude, completedWordPairID)

	selection, err := m.selector.Select(ctx, SelectionRequest{
		UserID:     userID,
		Limit:      1,
		OverdueCap: 1,
		IncludeNew: true,
		ExcludeIDs: exclude,
	}, now)
	if err != nil {
		return nil, nil, err
	}
	if len(selection.Cards) == 0 {
		return nil, nil, apperrors.NotFound("no more cards available")
	}

	card := selection.Cards[0]
	if err := m.Overwrite(ctx, session, append(remaining, card.WordPairID), now); err != nil {
		return nil, nil, err
	}

	return &card, session, nil
}
