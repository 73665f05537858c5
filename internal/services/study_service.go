package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pairlingua/backend/internal/apperrors"
	"github.com/pairlingua/backend/internal/cache"
	"github.com/pairlingua/backend/internal/models"
	"github.com/pairlingua/backend/internal/sm2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// MinDueCardsLimit and MaxDueCardsLimit bound the size of a due-card fetch
	MinDueCardsLimit = 1
	MaxDueCardsLimit = 50
	// DefaultDueCacheTTL is how long a due-card listing stays cached
	DefaultDueCacheTTL = 30 * time.Second
	// minutesPerCard is the study time estimate for one card
	minutesPerCard = 2
)

// StudyRepositories groups the storage collaborators of the study service
type StudyRepositories struct {
	WordPairs    WordPairRepository
	Cards        UserCardRepository
	ReviewLogs   ReviewLogRepository
	Sessions     StudySessionRepository
	Achievements AchievementRepository
	Streaks      StreakRepository
}

// StudyOptions configures the study service
type StudyOptions struct {
	DueCacheTTL time.Duration
	SessionTTL  time.Duration
	// Now is the clock, time.Now when nil
	Now func() time.Time
}

type studyService struct {
	selector    *dueCardSelector
	sessions    *sessionManager
	reviews     *reviewProcessor
	repos       StudyRepositories
	cache       Cache
	dueCacheTTL time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// NewStudyService creates the study service and its components
func NewStudyService(repos StudyRepositories, tx Transactor, cache Cache, rng Random, opts StudyOptions, logger *zap.Logger) *studyService {
	if opts.DueCacheTTL <= 0 {
		opts.DueCacheTTL = DefaultDueCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	selector := NewDueCardSelector(repos.WordPairs, repos.Cards, rng, logger)

	return &studyService{
		selector:    selector,
		sessions:    NewSessionManager(repos.Sessions, selector, opts.SessionTTL, logger),
		reviews:     NewReviewProcessor(tx, repos.WordPairs, repos.Cards, repos.ReviewLogs, repos.Streaks, repos.Achievements, cache, logger),
		repos:       repos,
		cache:       cache,
		dueCacheTTL: opts.DueCacheTTL,
		now:         opts.Now,
		logger:      logger,
	}
}

// GetDueCards returns the next cards to study and registers them as the session's working set
//
// "limit" must be between 1 and 50. Overdue cards take at most half of the slots, the rest is filled
// with new cards when "includeNew" is set. Listings are cached per user, limit and filter for a short TTL.
func (s *studyService) GetDueCards(ctx context.Context, userID int, req models.DueCardsRequest) (*models.DueCardsResponse, error) {
	if err := validateDueCardsRequest(req); err != nil {
		return nil, err
	}

	key := cache.DueCardsKey(userID, req.Limit, dueCardsFilterParts(req)...)
	if cached, ok := s.cachedDueCards(ctx, key); ok {
		return cached, nil
	}

	now := s.now()

	var (
		session  *models.StudySession
		totalDue int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		session, err = s.sessions.GetOrCreate(gctx, userID, now)
		return err
	})
	g.Go(func() error {
		var err error
		totalDue, err = s.repos.Cards.CountDue(gctx, userID, now)
		if err != nil {
			s.logger.Error("failed to count due cards", zap.Int("userID", userID), zap.Error(err))
			return fmt.Errorf("failed to count due cards: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Internal("failed to prepare due cards", err)
	}

	selection, err := s.selector.Select(ctx, SelectionRequest{
		UserID:        userID,
		Limit:         req.Limit,
		OverdueCap:    req.Limit / 2,
		IncludeNew:    req.IncludeNew,
		ExerciseTypes: req.ExerciseTypes,
		Tiers:         req.Tiers,
		Tags:          req.Tags,
		ExcludeIDs:    session.ActivePairIDs,
	}, now)
	if err != nil {
		return nil, apperrors.Internal("failed to select due cards", err)
	}

	activeIDs := make([]int, len(selection.Cards))
	for i, card := range selection.Cards {
		activeIDs[i] = card.WordPairID
	}
	if err := s.sessions.Overwrite(ctx, session, activeIDs, now); err != nil {
		return nil, apperrors.Internal("failed to update session", err)
	}

	response := &models.DueCardsResponse{
		Cards:            selection.Cards,
		TotalDue:         totalDue + selection.Created,
		SessionID:        session.ID,
		EstimatedMinutes: len(selection.Cards) * minutesPerCard,
	}

	s.cacheDueCards(ctx, key, response)

	return response, nil
}

// SubmitReviewBatch applies a batch of review responses atomically
func (s *studyService) SubmitReviewBatch(ctx context.Context, userID int, batch models.ReviewBatch) (*models.ReviewBatchResponse, error) {
	return s.reviews.Process(ctx, userID, batch, s.now())
}

// ReplaceSessionCard swaps a completed card of the session for the next due card
func (s *studyService) ReplaceSessionCard(ctx context.Context, userID int, req models.ReplaceCardRequest) (*models.ReplaceCardResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, apperrors.Validation("sessionId is required")
	}
	if req.CompletedWordPairID <= 0 {
		return nil, apperrors.Validation("completedWordPairId must be positive")
	}

	card, session, err := s.sessions.ReplaceCard(ctx, userID, req.SessionID, req.CompletedWordPairID, s.now())
	if err != nil {
		return nil, apperrors.Wrap("failed to replace session card", err)
	}

	return &models.ReplaceCardResponse{NewCard: *card, SessionID: session.ID}, nil
}

// GetSessionStats summarizes the reviews submitted within a session
func (s *studyService) GetSessionStats(ctx context.Context, userID int, sessionID string) (*models.SessionStats, error) {
	session, err := s.repos.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		s.logger.Error("failed to get session", zap.String("sessionID", sessionID), zap.Error(err))
		return nil, apperrors.Internal("failed to get session", err)
	}
	if session == nil || session.UserID != userID {
		return nil, apperrors.NotFound("study session %s not found", sessionID)
	}

	entries, err := s.repos.ReviewLogs.ListBySession(ctx, userID, sessionID)
	if err != nil {
		s.logger.Error("failed to list session reviews", zap.String("sessionID", sessionID), zap.Error(err))
		return nil, apperrors.Internal("failed to list session reviews", err)
	}

	stats := &models.SessionStats{
		SessionID:    session.ID,
		StartedAt:    session.CreatedAt,
		CardsStudied: len(entries),
	}
	if len(entries) == 0 {
		return stats, nil
	}

	var (
		responseTotal int
		responseCount int
	)
	for _, entry := range entries {
		if sm2.IsCorrect(entry.Quality) {
			stats.CardsCorrect++
		}
		stats.PointsEarned += points(entry.Quality, entry.EaseFactorAfter)
		if entry.ResponseTimeMs != nil {
			responseTotal += *entry.ResponseTimeMs
			responseCount++
		}
	}

	stats.Accuracy = float64(stats.CardsCorrect) / float64(stats.CardsStudied)
	if responseCount > 0 {
		average := int(math.Round(float64(responseTotal) / float64(responseCount)))
		stats.AverageResponseTimeMs = &average
	}

	first := entries[0].ReviewedAt
	last := entries[len(entries)-1].ReviewedAt
	stats.LastReviewAt = &last
	if first.Before(stats.StartedAt) {
		stats.StartedAt = first
	}
	stats.TimeSpentMinutes = int(math.Ceil(last.Sub(stats.StartedAt).Minutes()))

	return stats, nil
}

// GetProgressOverview summarizes the learning progress of a user
func (s *studyService) GetProgressOverview(ctx context.Context, userID int) (*models.ProgressOverview, error) {
	now := s.now()

	var (
		counts *models.ProgressCounts
		streak *models.UserStreak
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.repos.Cards.ProgressCounts(gctx, userID, now)
		return err
	})
	g.Go(func() error {
		var err error
		streak, err = s.repos.Streaks.Get(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to get progress overview", zap.Int("userID", userID), zap.Error(err))
		return nil, apperrors.Internal("failed to get progress overview", err)
	}

	overview := &models.ProgressOverview{
		CardsDue:       counts.Due,
		CardsLearned:   counts.Learned,
		CardsLearning:  counts.Learning,
		CardsSuspended: counts.Suspended,
	}
	if counts.TotalReviews > 0 {
		overview.Accuracy = float64(counts.CorrectReviews) / float64(counts.TotalReviews)
	}
	if streak != nil {
		overview.CurrentStreak = streak.CurrentStreak
		overview.LongestStreak = streak.LongestStreak
	}

	return overview, nil
}

// SetCardSuspended suspends or resumes the user's card for a word pair
//
// Cached due-card listings of the user are dropped on success.
func (s *studyService) SetCardSuspended(ctx context.Context, userID, wordPairID int, suspended bool) error {
	if wordPairID <= 0 {
		return apperrors.Validation("word pair id must be positive")
	}

	status := models.CardActive
	if suspended {
		status = models.CardSuspended
	}

	found, err := s.repos.Cards.SetStatus(ctx, userID, wordPairID, status, s.now())
	if err != nil {
		s.logger.Error("failed to set card status", zap.Int("userID", userID), zap.Int("wordPairID", wordPairID), zap.Error(err))
		return apperrors.Internal("failed to set card status", err)
	}
	if !found {
		return apperrors.NotFound("card for word pair %d not found", wordPairID)
	}

	if err := s.cache.DeletePrefix(ctx, cache.DueCardsPrefix(userID)); err != nil {
		s.logger.Warn("failed to invalidate due cards cache", zap.Int("userID", userID), zap.Error(err))
	}

	return nil
}

func validateDueCardsRequest(req models.DueCardsRequest) error {
	if req.Limit < MinDueCardsLimit || req.Limit > MaxDueCardsLimit {
		return apperrors.Validation("limit must be between %d and %d, got %d", MinDueCardsLimit, MaxDueCardsLimit, req.Limit)
	}
	for _, t := range req.ExerciseTypes {
		if !t.IsValid() {
			return apperrors.Validation("unsupported exercise type %q", t)
		}
	}
	for _, tier := range req.Tiers {
		if !models.IsValidTier(tier) {
			return apperrors.Validation("unsupported tier %q", tier)
		}
	}
	return nil
}

// dueCardsFilterParts renders the filter of a request in a canonical order for the cache key
func dueCardsFilterParts(req models.DueCardsRequest) []string {
	types := make([]string, len(req.ExerciseTypes))
	for i, t := range req.ExerciseTypes {
		types[i] = string(t)
	}
	sort.Strings(types)

	tiers := append([]string(nil), req.Tiers...)
	sort.Strings(tiers)

	tags := append([]string(nil), req.Tags...)
	sort.Strings(tags)

	return []string{
		"new=" + strconv.FormatBool(req.IncludeNew),
		"types=" + strings.Join(types, ","),
		"tiers=" + strings.Join(tiers, ","),
		"tags=" + strings.Join(tags, ","),
	}
}

func (s *studyService) cachedDueCards(ctx context.Context, key string) (*models.DueCardsResponse, bool) {
	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read due cards cache", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	var response models.DueCardsResponse
	if err := json.Unmarshal([]byte(value), &response); err != nil {
		s.logger.Warn("failed to decode cached due cards", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &response, true
}

func (s *studyService) cacheDueCards(ctx context.Context, key string, response *models.DueCardsResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn("failed to encode due cards", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.dueCacheTTL); err != nil {
		s.logger.Warn("failed to write due cards cache", zap.String("key", key), zap.Error(err))
	}
}
