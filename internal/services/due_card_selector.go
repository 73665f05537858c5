package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pairlingua/backend/internal/models"
	"github.com/pairlingua/backend/internal/sm2"
	"go.uber.org/zap"
)

const (
	// distractorCount is the number of wrong options shown with a multiple choice exercise
	distractorCount = 3
	// adaptiveReviewThreshold is the review count below which cards alternate between the easy exercises
	adaptiveReviewThreshold = 3
	// adaptiveAccuracyThreshold is the accuracy above which cards get the harder exercises
	adaptiveAccuracyThreshold = 0.8
)

// SelectionRequest describes one due-card selection
type SelectionRequest struct {
	UserID int
	// Limit is the maximum number of cards returned
	Limit int
	// OverdueCap is the maximum number of slots taken by overdue cards
	OverdueCap    int
	IncludeNew    bool
	ExerciseTypes []models.ExerciseType
	Tiers         []string
	Tags          []string
	// ExcludeIDs are word pair IDs already in the user's working set
	ExcludeIDs []int
}

// Selection is the outcome of a due-card selection
type Selection struct {
	Cards []models.StudyCard
	// Created is the number of cards lazily created by the new-card pass
	Created int
}

type dueCardSelector struct {
	wordPairs WordPairRepository
	cards     UserCardRepository
	rng       Random
	logger    *zap.Logger
}

// NewDueCardSelector creates a new due-card selector
func NewDueCardSelector(wordPairs WordPairRepository, cards UserCardRepository, rng Random, logger *zap.Logger) *dueCardSelector {
	return &dueCardSelector{
		wordPairs: wordPairs,
		cards:     cards,
		rng:       rng,
		logger:    logger,
	}
}

// Select chooses the cards to present next
//
// Overdue cards come first, most overdue first, and take at most req.OverdueCap slots.
// When req.IncludeNew is set, remaining slots are filled with word pairs the user has never seen;
// their cards are created on the fly and are due immediately.
func (s *dueCardSelector) Select(ctx context.Context, req SelectionRequest, now time.Time) (*Selection, error) {
	filter := models.CardFilter{Tiers: req.Tiers, Tags: req.Tags, ExcludeIDs: req.ExcludeIDs}

	overdueCap := req.OverdueCap
	if overdueCap > req.Limit {
		overdueCap = req.Limit
	}

	var overdue []models.UserCard
	if overdueCap > 0 {
		var err error
		overdue, err = s.cards.ListOverdue(ctx, req.UserID, now, filter, overdueCap)
		if err != nil {
			s.logger.Error("failed to list overdue cards", zap.Int("userID", req.UserID), zap.Error(err))
			return nil, fmt.Errorf("failed to list overdue cards: %w", err)
		}
	}

	overdueIDs := make([]int, len(overdue))
	for i, card := range overdue {
		overdueIDs[i] = card.WordPairID
	}
	pairs, err := s.wordPairs.GetByIDs(ctx, overdueIDs)
	if err != nil {
		s.logger.Error("failed to get word pairs of overdue cards", zap.Error(err))
		return nil, fmt.Errorf("failed to get word pairs: %w", err)
	}
	pairByID := make(map[int]models.WordPair, len(pairs)+req.Limit)
	for _, pair := range pairs {
		pairByID[pair.ID] = pair
	}

	selected := make([]models.UserCard, 0, req.Limit)
	selected = append(selected, overdue...)
	created := 0

	remaining := req.Limit - len(overdue)
	if req.IncludeNew && remaining > 0 {
		unseen, err := s.wordPairs.ListUnseen(ctx, req.UserID, filter, remaining, s.rng.Int63())
		if err != nil {
			s.logger.Error("failed to list unseen word pairs", zap.Int("userID", req.UserID), zap.Error(err))
			return nil, fmt.Errorf("failed to list unseen word pairs: %w", err)
		}

		for _, pair := range unseen {
			card, isCreated, err := s.cards.EnsureCard(ctx, req.UserID, pair.ID, now)
			if err != nil {
				s.logger.Error("failed to create user card",
					zap.Int("userID", req.UserID),
					zap.Int("wordPairID", pair.ID),
					zap.Error(err),
				)
				return nil, fmt.Errorf("failed to create user card: %w", err)
			}
			if isCreated {
				created++
			}
			pairByID[pair.ID] = pair
			selected = append(selected, *card)
		}
	}

	cards := make([]models.StudyCard, 0, len(selected))
	for i := range selected {
		pair, ok := pairByID[selected[i].WordPairID]
		if !ok {
			s.logger.Warn("word pair of selected card vanished", zap.Int("wordPairID", selected[i].WordPairID))
			continue
		}
		card, err := s.buildStudyCard(ctx, &selected[i], pair, req.ExerciseTypes, now)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}

	return &Selection{Cards: cards, Created: created}, nil
}

func (s *dueCardSelector) buildStudyCard(ctx context.Context, card *models.UserCard, pair models.WordPair, allowed []models.ExerciseType, now time.Time) (*models.StudyCard, error) {
	exerciseType := s.chooseExerciseType(card, allowed)

	studyCard := &models.StudyCard{
		WordPairID:   pair.ID,
		SourceTerm:   pair.SourceTerm,
		TargetTerm:   pair.TargetTerm,
		AudioURL:     pair.AudioURL,
		Tier:         pair.Tier,
		ExerciseType: exerciseType,
		Distractors:  []string{},
		EaseFactor:   card.EaseFactor,
		DueAt:        card.DueAt,
		IsNew:        card.TotalReviews == 0,
		ReviewCount:  card.TotalReviews,
		Retention:    retention(card, now),
	}

	switch exerciseType {
	case models.ExerciseMultipleChoice:
		distractors, err := s.distractors(ctx, pair)
		if err != nil {
			return nil, err
		}
		studyCard.Distractors = distractors
	case models.ExerciseTyping:
		studyCard.TargetTerm = ""
	}

	return studyCard, nil
}

// chooseExerciseType picks uniformly from "allowed" when given, otherwise adapts to the card's history
func (s *dueCardSelector) chooseExerciseType(card *models.UserCard, allowed []models.ExerciseType) models.ExerciseType {
	if len(allowed) > 0 {
		return allowed[s.rng.Intn(len(allowed))]
	}

	switch {
	case card.TotalReviews == 0:
		return models.ExerciseMatching
	case card.TotalReviews < adaptiveReviewThreshold:
		return s.pick(models.ExerciseMatching, models.ExerciseMultipleChoice)
	case card.Accuracy > adaptiveAccuracyThreshold:
		return s.pick(models.ExerciseTyping, models.ExerciseMultipleChoice)
	default:
		return models.ExerciseMatching
	}
}

func (s *dueCardSelector) pick(options ...models.ExerciseType) models.ExerciseType {
	return options[s.rng.Intn(len(options))]
}

// distractors returns target terms of other active word pairs, similar ones first
func (s *dueCardSelector) distractors(ctx context.Context, pair models.WordPair) ([]string, error) {
	similar, err := s.wordPairs.ListSimilar(ctx, pair, distractorCount, s.rng.Int63())
	if err != nil {
		s.logger.Error("failed to list similar word pairs", zap.Int("wordPairID", pair.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to list similar word pairs: %w", err)
	}

	options := similar
	if len(options) < distractorCount {
		exclude := make([]int, 0, len(options)+1)
		exclude = append(exclude, pair.ID)
		for _, p := range options {
			exclude = append(exclude, p.ID)
		}

		random, err := s.wordPairs.ListRandom(ctx, exclude, distractorCount-len(options), s.rng.Int63())
		if err != nil {
			s.logger.Error("failed to list random word pairs", zap.Int("wordPairID", pair.ID), zap.Error(err))
			return nil, fmt.Errorf("failed to list random word pairs: %w", err)
		}
		options = append(options, random...)
	}

	distractors := make([]string, 0, distractorCount)
	for _, p := range options {
		if p.ID == pair.ID {
			continue
		}
		distractors = append(distractors, p.TargetTerm)
		if len(distractors) == distractorCount {
			break
		}
	}

	return distractors, nil
}

func retention(card *models.UserCard, now time.Time) float64 {
	if card.LastReviewedAt == nil {
		return 1
	}
	days := int(now.Sub(*card.LastReviewedAt).Hours() / 24)
	return sm2.RetentionProbability(days, card.EaseFactor, card.IntervalDays)
}
