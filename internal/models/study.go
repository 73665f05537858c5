package models

import "time"

// ExerciseType is the way a card is presented to the user
type ExerciseType string

const (
	ExerciseMatching       ExerciseType = "matching"
	ExerciseMultipleChoice ExerciseType = "multiple_choice"
	ExerciseTyping         ExerciseType = "typing"
)

// IsValid reports whether the exercise type is supported
func (e ExerciseType) IsValid() bool {
	switch e {
	case ExerciseMatching, ExerciseMultipleChoice, ExerciseTyping:
		return true
	}
	return false
}

// DueCardsRequest describes a due-card fetch
type DueCardsRequest struct {
	Limit         int            `json:"limit"`
	IncludeNew    bool           `json:"includeNew"`
	ExerciseTypes []ExerciseType `json:"exerciseTypes,omitempty"`
	Tiers         []string       `json:"tiers,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
}

// StudyCard is a card prepared for presentation
type StudyCard struct {
	WordPairID   int          `json:"id"`
	SourceTerm   string       `json:"sourceTerm"`
	TargetTerm   string       `json:"targetTerm,omitempty"` // hidden for typing exercises
	AudioURL     string       `json:"audioUrl,omitempty"`
	Tier         string       `json:"tier"`
	ExerciseType ExerciseType `json:"type"`
	Distractors  []string     `json:"distractors"`
	EaseFactor   float64      `json:"easeFactor"`
	DueAt        *time.Time   `json:"dueAt,omitempty"`
	IsNew        bool         `json:"isNew"`
	ReviewCount  int          `json:"reviewCount"`
	Retention    float64      `json:"retention"`
}

// DueCardsResponse is returned by a due-card fetch
type DueCardsResponse struct {
	Cards            []StudyCard `json:"cards"`
	TotalDue         int         `json:"totalDue"`
	SessionID        string      `json:"sessionId"`
	EstimatedMinutes int         `json:"estimatedMinutes"`
}

// ReviewItem is one user response inside a review batch
type ReviewItem struct {
	WordPairID     int    `json:"wordPairId"`
	Quality        int    `json:"quality"`
	ResponseTimeMs *int   `json:"responseTimeMs,omitempty"`
	Source         string `json:"source"`
}

// ReviewBatch is an ordered list of responses submitted together
type ReviewBatch struct {
	Items     []ReviewItem `json:"items"`
	SessionID *string      `json:"sessionId,omitempty"`
}

// ReviewResult is the outcome of one processed review item
type ReviewResult struct {
	WordPairID      int       `json:"wordPairId"`
	Correct         bool      `json:"correct"`
	NewEaseFactor   float64   `json:"newEaseFactor"`
	NewIntervalDays int       `json:"newIntervalDays"`
	NextReviewAt    time.Time `json:"nextReviewAt"`
	PointsEarned    int       `json:"pointsEarned"`
}

// ReviewBatchResponse aggregates the outcome of a review batch
type ReviewBatchResponse struct {
	Results              []ReviewResult `json:"results"`
	TotalPoints          int            `json:"totalPoints"`
	Accuracy             float64        `json:"accuracy"`
	StreakUpdated        bool           `json:"streakUpdated"`
	CurrentStreak        int            `json:"currentStreak"`
	UnlockedAchievements []string       `json:"unlockedAchievements"`
}

// ReplaceCardRequest asks for one completed card to be swapped out of a session
type ReplaceCardRequest struct {
	SessionID           string `json:"sessionId"`
	CompletedWordPairID int    `json:"completedWordPairId"`
}

// ReplaceCardResponse carries the card that took the completed card's slot
type ReplaceCardResponse struct {
	NewCard   StudyCard `json:"newCard"`
	SessionID string    `json:"sessionId"`
}

// SessionStats summarizes the review log of one study session
type SessionStats struct {
	SessionID             string     `json:"sessionId"`
	StartedAt             time.Time  `json:"startedAt"`
	LastReviewAt          *time.Time `json:"lastReviewAt,omitempty"`
	CardsStudied          int        `json:"cardsStudied"`
	CardsCorrect          int        `json:"cardsCorrect"`
	Accuracy              float64    `json:"accuracy"`
	AverageResponseTimeMs *int       `json:"averageResponseTimeMs,omitempty"`
	PointsEarned          int        `json:"pointsEarned"`
	TimeSpentMinutes      int        `json:"timeSpentMinutes"`
}

// ProgressOverview summarizes a user's learning progress
type ProgressOverview struct {
	CardsDue       int     `json:"cardsDue"`
	CardsLearned   int     `json:"cardsLearned"`
	CardsLearning  int     `json:"cardsLearning"`
	CardsSuspended int     `json:"cardsSuspended"`
	Accuracy       float64 `json:"accuracy"`
	CurrentStreak  int     `json:"currentStreak"`
	LongestStreak  int     `json:"longestStreak"`
}
