package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pairlingua/backend/internal/apperrors"
	"github.com/pairlingua/backend/internal/cache"
	"github.com/pairlingua/backend/internal/models"
	"github.com/pairlingua/backend/internal/sm2"
	"go.uber.org/zap"
)

const (
	// MaxBatchSize is the largest number of items accepted in one review batch
	MaxBatchSize = 50
	// defaultReviewSource tags reviews submitted without a source
	defaultReviewSource = "web"
	// responseTimeDecay is the weight of the prior estimate in the response-time moving average
	responseTimeDecay = 0.8
	// perfectBatchMinSize is the smallest all-correct batch that counts as a perfect day
	perfectBatchMinSize = 5
	// pointsEpsilon absorbs float noise before points are truncated
	pointsEpsilon = 1e-9
)

// basePoints is indexed by quality
var basePoints = [...]int{0, 1, 2, 5, 10, 15}

// batchCriterion decides whether a processed batch unlocks an achievement
type batchCriterion struct {
	code string
	met  func(results []models.ReviewResult) bool
}

var batchCriteria = []batchCriterion{
	{
		code: "perfect_day",
		met: func(results []models.ReviewResult) bool {
			if len(results) < perfectBatchMinSize {
				return false
			}
			for _, r := range results {
				if !r.Correct {
					return false
				}
			}
			return true
		},
	},
}

type reviewProcessor struct {
	tx           Transactor
	wordPairs    WordPairRepository
	cards        UserCardRepository
	logs         ReviewLogRepository
	streaks      StreakRepository
	achievements AchievementRepository
	cache        Cache
	logger       *zap.Logger
}

// NewReviewProcessor creates a new review batch processor
func NewReviewProcessor(
	tx Transactor,
	wordPairs WordPairRepository,
	cards UserCardRepository,
	logs ReviewLogRepository,
	streaks StreakRepository,
	achievements AchievementRepository,
	cache Cache,
	logger *zap.Logger,
) *reviewProcessor {
	return &reviewProcessor{
		tx:           tx,
		wordPairs:    wordPairs,
		cards:        cards,
		logs:         logs,
		streaks:      streaks,
		achievements: achievements,
		cache:        cache,
		logger:       logger,
	}
}

// Process applies a review batch as one transaction
//
// The batch is validated before anything is written. Each item reschedules its card, updates the card
// statistics and appends a review log entry. The streak and achievements are evaluated in the same
// transaction. After commit the user's cached due-card listings are dropped.
func (p *reviewProcessor) Process(ctx context.Context, userID int, batch models.ReviewBatch, now time.Time) (*models.ReviewBatchResponse, error) {
	if err := validateBatch(batch); err != nil {
		return nil, err
	}
	if err := p.checkWordPairsExist(ctx, batch.Items); err != nil {
		return nil, err
	}

	response := &models.ReviewBatchResponse{
		Results:              make([]models.ReviewResult, 0, len(batch.Items)),
		UnlockedAchievements: []string{},
	}

	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		response.Results = response.Results[:0]
		for _, item := range batch.Items {
			result, err := p.applyReview(ctx, userID, item, batch.SessionID, now)
			if err != nil {
				return err
			}
			response.Results = append(response.Results, *result)
		}

		hadCorrect := false
		for _, r := range response.Results {
			if r.Correct {
				hadCorrect = true
				break
			}
		}

		streak, updated, err := p.touchStreak(ctx, userID, hadCorrect, now)
		if err != nil {
			return err
		}
		response.StreakUpdated = updated
		response.CurrentStreak = streak

		unlocked, err := p.evaluateAchievements(ctx, userID, response.Results, now)
		if err != nil {
			return err
		}
		response.UnlockedAchievements = unlocked

		return nil
	})
	if err != nil {
		p.logger.Error("failed to process review batch", zap.Int("userID", userID), zap.Error(err))
		return nil, apperrors.Wrap("failed to process review batch", err)
	}

	correct := 0
	for _, r := range response.Results {
		response.TotalPoints += r.PointsEarned
		if r.Correct {
			correct++
		}
	}
	response.Accuracy = float64(correct) / float64(len(response.Results))

	if err := p.cache.DeletePrefix(ctx, cache.DueCardsPrefix(userID)); err != nil {
		p.logger.Warn("failed to invalidate due cards cache", zap.Int("userID", userID), zap.Error(err))
	}

	p.logger.Info("review batch processed",
		zap.Int("userID", userID),
		zap.Int("items", len(response.Results)),
		zap.Int("points", response.TotalPoints),
	)

	return response, nil
}

func validateBatch(batch models.ReviewBatch) error {
	if len(batch.Items) == 0 || len(batch.Items) > MaxBatchSize {
		return apperrors.Validation("batch must contain between 1 and %d items, got %d", MaxBatchSize, len(batch.Items))
	}
	for i, item := range batch.Items {
		if item.WordPairID <= 0 {
			return apperrors.Validation("item %d: word pair id must be positive", i)
		}
		if item.Quality < int(sm2.QualityBlackout) || item.Quality > int(sm2.QualityPerfect) {
			return apperrors.Validation("item %d: quality must be between %d and %d, got %d", i, sm2.QualityBlackout, sm2.QualityPerfect, item.Quality)
		}
		if item.ResponseTimeMs != nil && *item.ResponseTimeMs < 0 {
			return apperrors.Validation("item %d: response time must not be negative", i)
		}
	}
	return nil
}

func (p *reviewProcessor) checkWordPairsExist(ctx context.Context, items []models.ReviewItem) error {
	seen := make(map[int]struct{}, len(items))
	ids := make([]int, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.WordPairID]; !ok {
			seen[item.WordPairID] = struct{}{}
			ids = append(ids, item.WordPairID)
		}
	}

	existing, err := p.wordPairs.ExistingIDs(ctx, ids)
	if err != nil {
		p.logger.Error("failed to check word pairs", zap.Error(err))
		return apperrors.Internal("failed to check word pairs", err)
	}
	for _, id := range existing {
		delete(seen, id)
	}
	for _, id := range ids {
		if _, missing := seen[id]; missing {
			return apperrors.NotFound("word pair %d not found", id)
		}
	}
	return nil
}

func (p *reviewProcessor) applyReview(ctx context.Context, userID int, item models.ReviewItem, sessionID *string, now time.Time) (*models.ReviewResult, error) {
	card, _, err := p.cards.EnsureCard(ctx, userID, item.WordPairID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve card for word pair %d: %w", item.WordPairID, err)
	}

	easeBefore := card.EaseFactor
	intervalBefore := card.IntervalDays

	next := sm2.Next(item.Quality, card.EaseFactor, card.IntervalDays, card.RepetitionCount)
	correct := sm2.IsCorrect(item.Quality)

	card.EaseFactor = math.Min(next.EaseFactor, sm2.MaxEaseFactor)
	card.IntervalDays = next.IntervalDays
	card.RepetitionCount = next.RepetitionCount
	dueAt := now.AddDate(0, 0, next.IntervalDays)
	card.DueAt = &dueAt
	quality := item.Quality
	card.LastQuality = &quality
	reviewedAt := now
	card.LastReviewedAt = &reviewedAt

	card.TotalReviews++
	if correct {
		card.CorrectReviews++
	}
	card.Accuracy = float64(card.CorrectReviews) / float64(card.TotalReviews)
	if item.ResponseTimeMs != nil {
		card.AverageResponseTimeMs = movingAverage(card.AverageResponseTimeMs, *item.ResponseTimeMs)
	}
	card.IsLearning = card.RepetitionCount < 2
	card.UpdatedAt = now

	if err := p.cards.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update card for word pair %d: %w", item.WordPairID, err)
	}

	source := item.Source
	if source == "" {
		source = defaultReviewSource
	}
	entry := &models.ReviewLogEntry{
		UserID:           userID,
		WordPairID:       item.WordPairID,
		UserCardID:       card.ID,
		Quality:          item.Quality,
		ResponseTimeMs:   item.ResponseTimeMs,
		Source:           source,
		SessionID:        sessionID,
		EaseFactorBefore: easeBefore,
		EaseFactorAfter:  card.EaseFactor,
		IntervalBefore:   intervalBefore,
		IntervalAfter:    card.IntervalDays,
		ReviewedAt:       now,
	}
	if err := p.logs.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log review of word pair %d: %w", item.WordPairID, err)
	}

	return &models.ReviewResult{
		WordPairID:      item.WordPairID,
		Correct:         correct,
		NewEaseFactor:   card.EaseFactor,
		NewIntervalDays: card.IntervalDays,
		NextReviewAt:    dueAt,
		PointsEarned:    points(item.Quality, card.EaseFactor),
	}, nil
}

// touchStreak advances the daily streak when the batch had a correct answer
//
// Returns the current streak and whether today was touched.
func (p *reviewProcessor) touchStreak(ctx context.Context, userID int, hadCorrect bool, now time.Time) (int, bool, error) {
	streak, err := p.streaks.Get(ctx, userID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get streak: %w", err)
	}

	if !hadCorrect {
		if streak == nil {
			return 0, false, nil
		}
		return streak.CurrentStreak, false, nil
	}

	today := truncateToDay(now)
	if streak == nil {
		streak = &models.UserStreak{UserID: userID}
	}

	switch last := truncateToDay(streak.LastStudyDate); {
	case streak.CurrentStreak > 0 && last.Equal(today):
	case streak.CurrentStreak > 0 && last.AddDate(0, 0, 1).Equal(today):
		streak.CurrentStreak++
	default:
		streak.CurrentStreak = 1
	}
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastStudyDate = today

	if err := p.streaks.Upsert(ctx, streak); err != nil {
		return 0, false, fmt.Errorf("failed to save streak: %w", err)
	}

	return streak.CurrentStreak, true, nil
}

func (p *reviewProcessor) evaluateAchievements(ctx context.Context, userID int, results []models.ReviewResult, now time.Time) ([]string, error) {
	unlocked := []string{}
	for _, criterion := range batchCriteria {
		if !criterion.met(results) {
			continue
		}

		achievement, err := p.achievements.GetByCode(ctx, criterion.code)
		if err != nil {
			return nil, fmt.Errorf("failed to get achievement %s: %w", criterion.code, err)
		}
		if achievement == nil {
			p.logger.Debug("achievement not in catalog", zap.String("code", criterion.code))
			continue
		}

		has, err := p.achievements.HasUserAchievement(ctx, userID, achievement.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check achievement %s: %w", criterion.code, err)
		}
		if has {
			continue
		}

		granted, err := p.achievements.Grant(ctx, userID, achievement.ID, now, fmt.Sprintf(`{"batchSize":%d}`, len(results)))
		if err != nil {
			return nil, fmt.Errorf("failed to grant achievement %s: %w", criterion.code, err)
		}
		if granted {
			unlocked = append(unlocked, achievement.Code)
		}
	}
	return unlocked, nil
}

// points rewards a review by quality with a bonus for hard (low ease) cards
func points(quality int, easeFactor float64) int {
	if quality < 0 || quality >= len(basePoints) {
		return 0
	}
	bonus := math.Max(0, (3.0-easeFactor)*5)
	return int(float64(basePoints[quality]) + bonus + pointsEpsilon)
}

func movingAverage(prior *int, sample int) *int {
	value := sample
	if prior != nil {
		value = int(math.Round(responseTimeDecay*float64(*prior) + (1-responseTimeDecay)*float64(sample)))
	}
	return &value
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
