package models

import "time"

// CardStatus is the orthogonal availability flag of a user card
type CardStatus string

const (
	// CardActive cards take part in due-card selection
	CardActive CardStatus = "active"
	// CardSuspended cards are hidden from due-card selection
	CardSuspended CardStatus = "suspended"
)

// CardStage is the learning stage derived from a card's history
type CardStage string

const (
	// StageNew cards have never been reviewed
	StageNew CardStage = "new"
	// StageLearning cards have fewer than two consecutive correct reviews
	StageLearning CardStage = "learning"
	// StageReviewing cards have graduated to growing intervals
	StageReviewing CardStage = "reviewing"
)

// UserCard represents the learning state of one word pair for one user
type UserCard struct {
	ID                    int64      `json:"id"`
	UserID                int        `json:"userId"`
	WordPairID            int        `json:"wordPairId"`
	EaseFactor            float64    `json:"easeFactor"`
	RepetitionCount       int        `json:"repetitionCount"`
	IntervalDays          int        `json:"intervalDays"`
	DueAt                 *time.Time `json:"dueAt,omitempty"` // nil means immediately due
	LastQuality           *int       `json:"lastQuality,omitempty"`
	LastReviewedAt        *time.Time `json:"lastReviewedAt,omitempty"`
	TotalReviews          int        `json:"totalReviews"`
	CorrectReviews        int        `json:"correctReviews"`
	Accuracy              float64    `json:"accuracy"` // correct/total in [0,1]
	AverageResponseTimeMs *int       `json:"averageResponseTimeMs,omitempty"`
	IsLearning            bool       `json:"isLearning"`
	Status                CardStatus `json:"status"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// Stage derives the learning stage of the card
func (c *UserCard) Stage() CardStage {
	switch {
	case c.TotalReviews == 0:
		return StageNew
	case c.RepetitionCount < 2:
		return StageLearning
	default:
		return StageReviewing
	}
}

// IsDue reports whether the card should be reviewed at "now"
func (c *UserCard) IsDue(now time.Time) bool {
	if c.DueAt == nil {
		return true
	}
	return !c.DueAt.After(now)
}

// IsSuspended reports whether the card is excluded from selection
func (c *UserCard) IsSuspended() bool {
	return c.Status == CardSuspended
}

// CardFilter narrows overdue and new-card queries
type CardFilter struct {
	Tiers []string
	// Tags keeps word pairs sharing at least one tag
	Tags       []string
	ExcludeIDs []int
}

// ProgressCounts holds aggregate card counts for one user
type ProgressCounts struct {
	Due            int
	Learned        int
	Learning       int
	Suspended      int
	TotalReviews   int
	CorrectReviews int
}
